package dialogue

import (
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"

	"regbot/model"
)

// Custom IDs of the registration components. The confirmation buttons carry
// the dialogue session id after the colon.
const (
	RegisterButtonID       = "register_button"
	MyRegistrationButtonID = "my_registration_button"
	ConfirmButtonID        = "register_confirm"
	CancelButtonID         = "register_cancel"
)

const (
	colorPanel = 0x5865F2
	colorInfo  = 0x3498DB
	colorOK    = 0x57F287
	colorMuted = 0x99AAB5
)

// Titles of the audit log embed.
const (
	LogTitleNew    = "New Submission"
	LogTitleEdited = "Submission (edited)"
)

// RegisterPanel builds the public message holding the REGISTER button.
func RegisterPanel(digits int) *discordgo.MessageSend {
	desc := "Hello Defender!\n\n" +
		"Please follow these steps to register for your reward:\n\n" +
		"1️⃣ Click the **REGISTER** button below.\n" +
		"2️⃣ The bot will send you a private message (DM).\n" +
		"3️⃣ In that DM, send your **Email** and **Player ID** together in one message, separated by a space.\n\n" +
		"✅ Example:\n" +
		fmt.Sprintf("`email@example.com %s`\n\n", exampleID(digits)) +
		"📌 Make sure the information is correct; otherwise, your reward cannot be added.\n\n" +
		"🔵 Click the button below to start your registration:"
	return &discordgo.MessageSend{
		Embeds: []*discordgo.MessageEmbed{{
			Title:       "Community Registration",
			Description: desc,
			Color:       colorPanel,
		}},
		Components: []discordgo.MessageComponent{
			discordgo.ActionsRow{Components: []discordgo.MessageComponent{
				discordgo.Button{
					Label:    "REGISTER",
					Style:    discordgo.PrimaryButton,
					CustomID: RegisterButtonID,
				},
				discordgo.Button{
					Label:    "My registration",
					Style:    discordgo.SecondaryButton,
					CustomID: MyRegistrationButtonID,
				},
			}},
		},
	}
}

func detailsFields(email, playerID string) []*discordgo.MessageEmbedField {
	return []*discordgo.MessageEmbedField{
		{Name: "Email", Value: orDash(email), Inline: true},
		{Name: "Player ID", Value: "`" + orDash(playerID) + "`", Inline: true},
	}
}

func confirmEmbed(email, playerID, footer string) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:  "Confirm your details",
		Color:  colorInfo,
		Fields: detailsFields(email, playerID),
		Footer: &discordgo.MessageEmbedFooter{Text: footer},
	}
}

// ConfirmPrompt builds the DM asking the user to confirm the parsed values.
func ConfirmPrompt(sessionID, email, playerID string) *discordgo.MessageSend {
	return &discordgo.MessageSend{
		Embeds: []*discordgo.MessageEmbed{confirmEmbed(email, playerID, "If wrong, press Cancel and try again.")},
		Components: []discordgo.MessageComponent{
			discordgo.ActionsRow{Components: []discordgo.MessageComponent{
				discordgo.Button{
					Label:    "Confirm",
					Style:    discordgo.SuccessButton,
					CustomID: ConfirmButtonID + ":" + sessionID,
				},
				discordgo.Button{
					Label:    "Cancel",
					Style:    discordgo.DangerButton,
					CustomID: CancelButtonID + ":" + sessionID,
				},
			}},
		},
	}
}

// closedPrompt replaces the confirmation prompt once it can no longer be answered.
func closedPrompt(channelID, messageID, email, playerID, footer string) *discordgo.MessageEdit {
	embeds := []*discordgo.MessageEmbed{confirmEmbed(email, playerID, footer)}
	embeds[0].Color = colorMuted
	components := []discordgo.MessageComponent{}
	return &discordgo.MessageEdit{
		Channel:    channelID,
		ID:         messageID,
		Embeds:     &embeds,
		Components: &components,
	}
}

// LogEmbed renders a submission for the audit log channel.
func LogEmbed(title string, sub model.Submission) *discordgo.MessageEmbed {
	who := fmt.Sprintf("<@%s> (`%s`)", sub.UserID, sub.UserID)
	if sub.DisplayName != "" {
		who = fmt.Sprintf("%s (`%s`)", sub.DisplayName, sub.UserID)
	}
	return &discordgo.MessageEmbed{
		Title: title,
		Color: colorInfo,
		Fields: append([]*discordgo.MessageEmbedField{
			{Name: "Discord", Value: who, Inline: false},
		}, detailsFields(sub.Email, sub.PlayerID)...),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}

// SuccessEmbed is the final DM after a confirmed registration.
func SuccessEmbed(brand, email, playerID string) *discordgo.MessageEmbed {
	e := &discordgo.MessageEmbed{
		Description: msgSuccess,
		Color:       colorOK,
		Fields:      detailsFields(email, playerID),
	}
	if brand != "" {
		e.Author = &discordgo.MessageEmbedAuthor{Name: brand + " Verify"}
	}
	return e
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
