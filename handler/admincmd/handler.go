package admincmd

import (
	"bytes"
	"context"
	"log"
	"time"

	"github.com/bwmarrin/discordgo"

	"regbot/admin"
	"regbot/command/def"
	"regbot/handler"
	"regbot/utils"
)

var svc *admin.Service

// RegisterHandlers wires /register_admin and /ping.
func RegisterHandlers(s *admin.Service) {
	svc = s
	handler.AddCommandHandler(def.RegisterAdminCommand.Name, RegisterAdminCommandHandler)
	handler.AddCommandHandler(def.PingCommand.Name, PingCommandHandler)
}

// PingCommandHandler answers /ping.
func PingCommandHandler(s *discordgo.Session, i *discordgo.InteractionCreate) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: "Pong!",
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		log.Printf("Error responding to ping: %v", err)
	}
}

// parseRequest reads the command options into a Request.
func parseRequest(i *discordgo.InteractionCreate) Request {
	data := i.ApplicationCommandData()
	req := Request{}
	if i.Member != nil && i.Member.User != nil {
		req.ActorID = i.Member.User.ID
	}

	for _, option := range data.Options {
		switch option.Name {
		case "action":
			req.Action = option.StringValue()
		case "user":
			if id, ok := option.Value.(string); ok {
				req.UserID = id
			}
		case "email":
			req.Email = option.StringValue()
		case "player_id":
			req.PlayerID = option.StringValue()
		}
	}

	if data.Resolved != nil && req.UserID != "" {
		member := data.Resolved.Members[req.UserID]
		user := data.Resolved.Users[req.UserID]
		req.UserName = utils.DisplayName(member, user)
	}
	return req
}

// RegisterAdminCommandHandler handles the /register_admin command
func RegisterAdminCommandHandler(s *discordgo.Session, i *discordgo.InteractionCreate) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Flags: discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		log.Printf("Error sending deferred response: %v", err)
		return
	}

	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("Panic in register_admin goroutine: %v", r)
				s.InteractionResponseEdit(i.Interaction, &discordgo.WebhookEdit{
					Content: utils.StringPtr("❌ Internal error."),
				})
			}
		}()

		if !utils.InAdminChannel(i.ChannelID) {
			s.InteractionResponseEdit(i.Interaction, &discordgo.WebhookEdit{
				Content: utils.StringPtr("Use this in the mod commands channel."),
			})
			return
		}
		if i.Member == nil || !utils.CheckAuth(i.Member.User.ID, i.Member.Roles, i.Member.Permissions) {
			s.InteractionResponseEdit(i.Interaction, &discordgo.WebhookEdit{
				Content: utils.StringPtr("❌ You do not have permission to do this."),
			})
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		defer cancel()

		req := parseRequest(i)
		resp := Run(ctx, svc, req)
		log.Printf("[admin] %s ran %s on %q", req.ActorID, req.Action, req.UserID)

		edit := &discordgo.WebhookEdit{Content: utils.StringPtr(resp.Content)}
		if resp.File != nil {
			edit.Files = []*discordgo.File{{
				Name:        resp.FileName,
				ContentType: "text/csv",
				Reader:      bytes.NewReader(resp.File),
			}}
		}
		if _, err := s.InteractionResponseEdit(i.Interaction, edit); err != nil {
			log.Printf("Error editing interaction response: %v", err)
		}
	}()
}
