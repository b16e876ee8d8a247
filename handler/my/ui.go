package my

import (
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"

	"regbot/model"
)

// BuildMyRegistrationPanel renders the user's own record as an ephemeral card.
// sub may be nil when the user never registered.
func BuildMyRegistrationPanel(user *discordgo.User, sub *model.Submission) *discordgo.InteractionResponseData {
	embed := &discordgo.MessageEmbed{
		Author: &discordgo.MessageEmbedAuthor{
			Name:    user.Username,
			IconURL: user.AvatarURL(""),
		},
		Title:     "My registration",
		Color:     0x5865F2, // Discord Blurple
		Timestamp: time.Now().Format(time.RFC3339),
	}

	switch {
	case sub == nil:
		embed.Description = "You have not registered yet. Press **REGISTER** to start."
	case sub.Status == model.StatusReset:
		embed.Description = "Your registration was reset by a moderator. Press **REGISTER** to register again."
	default:
		embed.Fields = []*discordgo.MessageEmbedField{
			{Name: "Email", Value: valueOrDash(sub.Email), Inline: true},
			{Name: "Player ID", Value: "`" + valueOrDash(sub.PlayerID) + "`", Inline: true},
			{Name: "Status", Value: statusLabel(sub.Status), Inline: true},
		}
		if !sub.UpdatedAt.IsZero() {
			embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
				Name:  "Last updated",
				Value: fmt.Sprintf("<t:%d:f>", sub.UpdatedAt.Unix()),
			})
		}
		embed.Footer = &discordgo.MessageEmbedFooter{Text: "Something wrong? Ask a moderator to update it."}
	}

	return &discordgo.InteractionResponseData{
		Embeds: []*discordgo.MessageEmbed{embed},
		Flags:  discordgo.MessageFlagsEphemeral,
	}
}

func statusLabel(status model.Status) string {
	switch status {
	case model.StatusConfirmed:
		return "✅ Confirmed"
	case "":
		return "-"
	}
	return string(status)
}

func valueOrDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
