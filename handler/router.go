package handler

import (
	"log"
	"strings"

	"github.com/bwmarrin/discordgo"
)

var (
	commandHandlers   = make(map[string]func(s *discordgo.Session, i *discordgo.InteractionCreate))
	componentHandlers = make(map[string]func(s *discordgo.Session, i *discordgo.InteractionCreate))
	dmHandlers        []func(s *discordgo.Session, m *discordgo.MessageCreate)
)

// AddCommandHandler registers a handler for a slash command.
func AddCommandHandler(name string, handler func(s *discordgo.Session, i *discordgo.InteractionCreate)) {
	commandHandlers[name] = handler
}

// AddComponentHandler registers a handler for a message component. customID
// is matched against the part before the first ":".
func AddComponentHandler(customID string, handler func(s *discordgo.Session, i *discordgo.InteractionCreate)) {
	componentHandlers[customID] = handler
}

// AddDMHandler registers a handler for direct messages sent to the bot.
func AddDMHandler(handler func(s *discordgo.Session, m *discordgo.MessageCreate)) {
	dmHandlers = append(dmHandlers, handler)
}

// ComponentArg returns the part of a custom ID after the first ":".
func ComponentArg(customID string) string {
	parts := strings.SplitN(customID, ":", 2)
	if len(parts) < 2 {
		return ""
	}
	return parts[1]
}

// OnInteractionCreate is the main interaction router.
// It should be registered as the primary interaction handler.
func OnInteractionCreate(s *discordgo.Session, i *discordgo.InteractionCreate) {
	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		name := i.ApplicationCommandData().Name
		if handler, ok := commandHandlers[name]; ok {
			handler(s, i)
		} else {
			log.Printf("[router] no handler for command %q", name)
		}
	case discordgo.InteractionMessageComponent:
		customID := i.MessageComponentData().CustomID
		parts := strings.SplitN(customID, ":", 2)
		handlerKey := parts[0]

		if handler, ok := componentHandlers[handlerKey]; ok {
			handler(s, i)
		} else {
			log.Printf("[router] no handler for component %q", customID)
		}
	}
}

// OnMessageCreate routes direct messages from users to the DM handlers.
func OnMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot || m.GuildID != "" {
		return
	}
	if s.State != nil && s.State.User != nil && m.Author.ID == s.State.User.ID {
		return
	}
	for _, handler := range dmHandlers {
		handler(s, m)
	}
}
