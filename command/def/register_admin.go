package def

import (
	"github.com/bwmarrin/discordgo"
)

// RegisterAdminCommand carries every moderator action on registrations.
var RegisterAdminCommand = &discordgo.ApplicationCommand{
	Name:        "register_admin",
	Description: "Registration admin actions",
	Options: []*discordgo.ApplicationCommandOption{
		{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "action",
			Description: "Action to run",
			Required:    true,
			Choices: []*discordgo.ApplicationCommandOptionChoice{
				{
					Name:  "Post REGISTER panel",
					Value: "setup",
				},
				{
					Name:  "Reset user",
					Value: "reset",
				},
				{
					Name:  "Update email",
					Value: "update_email",
				},
				{
					Name:  "Update player id",
					Value: "update_player_id",
				},
				{
					Name:  "Update email and player id",
					Value: "update_record",
				},
				{
					Name:  "Refresh log entry",
					Value: "edit_log",
				},
				{
					Name:  "Grant registered role",
					Value: "grant_role",
				},
				{
					Name:  "Count submissions",
					Value: "count",
				},
				{
					Name:  "Export CSV",
					Value: "export",
				},
			},
		},
		{
			Type:        discordgo.ApplicationCommandOptionUser,
			Name:        "user",
			Description: "Target user",
			Required:    false,
		},
		{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "email",
			Description: "New email",
			Required:    false,
		},
		{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "player_id",
			Description: "New player id",
			Required:    false,
		},
	},
}
