package bot

import (
	"github.com/bwmarrin/discordgo"

	"regbot/handler"
)

func registerEventHandlers(s *discordgo.Session) {
	s.AddHandler(handler.OnInteractionCreate)
	s.AddHandler(handler.OnMessageCreate)

	// DM replies arrive as MessageCreate; their content needs the message content intent
	s.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMessages |
		discordgo.IntentsDirectMessages | discordgo.IntentsMessageContent
}
