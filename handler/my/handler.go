package my

import (
	"context"
	"log"
	"time"

	"github.com/bwmarrin/discordgo"

	"regbot/utils"
)

// MyRegistrationButtonHandler shows the clicking user their stored record.
func MyRegistrationButtonHandler(s *discordgo.Session, i *discordgo.InteractionCreate) {
	user := utils.InteractionUser(i)
	if user == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	sub, err := records.Get(ctx, user.ID)
	if err != nil {
		log.Printf("Error getting registration of %s: %v", user.ID, err)
		s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseChannelMessageWithSource,
			Data: &discordgo.InteractionResponseData{
				Content: "❌ Could not look up your registration right now. Please try again later.",
				Flags:   discordgo.MessageFlagsEphemeral,
			},
		})
		return
	}

	err = s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: BuildMyRegistrationPanel(user, sub),
	})
	if err != nil {
		log.Printf("Error responding with registration panel: %v", err)
	}
}
