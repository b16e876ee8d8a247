package register

import (
	"context"
	"log"
	"time"

	"github.com/bwmarrin/discordgo"

	"regbot/dialogue"
	"regbot/handler"
	"regbot/utils"
)

var mgr *dialogue.Manager

// RegisterHandlers wires the REGISTER button, the confirmation buttons and
// DM replies to the dialogue manager.
func RegisterHandlers(m *dialogue.Manager) {
	mgr = m
	handler.AddComponentHandler(dialogue.RegisterButtonID, RegisterButtonHandler)
	handler.AddComponentHandler(dialogue.ConfirmButtonID, ConfirmButtonHandler)
	handler.AddComponentHandler(dialogue.CancelButtonID, CancelButtonHandler)
	handler.AddDMHandler(DMReplyHandler)
}

func deferEphemeral(s *discordgo.Session, i *discordgo.InteractionCreate) bool {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Flags: discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		log.Printf("Error sending deferred response: %v", err)
		return false
	}
	return true
}

func reply(s *discordgo.Session, i *discordgo.InteractionCreate, text string) {
	if _, err := s.InteractionResponseEdit(i.Interaction, &discordgo.WebhookEdit{
		Content: utils.StringPtr(text),
	}); err != nil {
		log.Printf("Error editing interaction response: %v", err)
	}
}

// StartReply is the ephemeral answer to a REGISTER press.
func StartReply(out dialogue.StartOutcome) string {
	switch out {
	case dialogue.Started:
		return dialogue.MsgDMSent
	case dialogue.AlreadySubmitted:
		return dialogue.MsgAlreadySubmitted
	case dialogue.InProgress:
		return dialogue.MsgInProgress
	case dialogue.DMUnavailable:
		return dialogue.MsgDMUnavailable
	default:
		return dialogue.MsgShuttingDown
	}
}

// ChoiceReply is the ephemeral answer to a Confirm or Cancel press.
func ChoiceReply(out dialogue.ChoiceOutcome) string {
	switch out {
	case dialogue.ChoiceConfirmed:
		return dialogue.MsgSaved
	case dialogue.ChoiceCancelled:
		return dialogue.MsgCancelled
	case dialogue.ChoiceNotOwner:
		return dialogue.MsgNotOwner
	default:
		return dialogue.MsgExpired
	}
}

// RegisterButtonHandler handles a press on the public REGISTER button.
func RegisterButtonHandler(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if !deferEphemeral(s, i) {
		return
	}

	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("Panic in register button goroutine: %v", r)
				reply(s, i, "Something went wrong. Please try again.")
			}
		}()

		user := utils.InteractionUser(i)
		if user == nil {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		out := mgr.Start(ctx, dialogue.Trigger{
			UserID:      user.ID,
			DisplayName: utils.DisplayName(i.Member, user),
			Notify: func(ctx context.Context, text string) {
				_, err := s.FollowupMessageCreate(i.Interaction, true, &discordgo.WebhookParams{
					Content: text,
					Flags:   discordgo.MessageFlagsEphemeral,
				}, discordgo.WithContext(ctx))
				if err != nil {
					log.Printf("Error sending fallback notice to %s: %v", user.ID, err)
				}
			},
		})
		reply(s, i, StartReply(out))
	}()
}

func choiceHandler(confirm bool) func(s *discordgo.Session, i *discordgo.InteractionCreate) {
	return func(s *discordgo.Session, i *discordgo.InteractionCreate) {
		if !deferEphemeral(s, i) {
			return
		}

		go func() {
			defer func() {
				if r := recover(); r != nil {
					log.Printf("Panic in confirmation goroutine: %v", r)
				}
			}()

			user := utils.InteractionUser(i)
			if user == nil {
				return
			}
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			sessionID := handler.ComponentArg(i.MessageComponentData().CustomID)
			reply(s, i, ChoiceReply(mgr.Choose(ctx, sessionID, user.ID, confirm)))
		}()
	}
}

// ConfirmButtonHandler handles Confirm on a DM confirmation prompt.
var ConfirmButtonHandler = choiceHandler(true)

// CancelButtonHandler handles Cancel on a DM confirmation prompt.
var CancelButtonHandler = choiceHandler(false)

// DMReplyHandler forwards a direct message to the sender's dialogue.
func DMReplyHandler(s *discordgo.Session, m *discordgo.MessageCreate) {
	if mgr == nil {
		return
	}
	mgr.HandleReply(m.Author.ID, m.Content)
}
