// Package admin implements the moderator actions on registrations.
package admin

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/bwmarrin/discordgo"

	"regbot/dialogue"
	"regbot/directory"
	"regbot/model"
	"regbot/store"
	"regbot/utils"
	"regbot/validate"
)

var (
	// ErrInvalidInput wraps a validation failure in an admin edit. Nothing is written.
	ErrInvalidInput = errors.New("invalid input")
	// ErrNotConfigured means a channel the action needs is not configured.
	ErrNotConfigured = errors.New("not configured")
	// ErrNoRecord means the user has no stored submission.
	ErrNoRecord = errors.New("no submission on record")
)

// Reset modes.
const (
	ResetDelete = "delete"
	ResetMark   = "mark"
)

// Service runs administrative actions against the store, the directory and
// the dialogue manager's already-submitted set.
type Service struct {
	store     store.Store
	dir       directory.Directory
	mgr       *dialogue.Manager
	cfg       model.Registration
	resetMode string
}

func NewService(st store.Store, dir directory.Directory, mgr *dialogue.Manager, resetMode string) *Service {
	if resetMode == "" {
		resetMode = ResetDelete
	}
	return &Service{store: st, dir: dir, mgr: mgr, cfg: mgr.Config(), resetMode: resetMode}
}

// Setup posts the REGISTER panel and saves its location.
func (s *Service) Setup(ctx context.Context) (string, error) {
	if s.cfg.PostChannelID == "" {
		return "", fmt.Errorf("post channel: %w", ErrNotConfigured)
	}
	id, err := s.dir.Send(ctx, s.cfg.PostChannelID, dialogue.RegisterPanel(s.cfg.PlayerIDDigits))
	if err != nil {
		return "", fmt.Errorf("post panel: %w", err)
	}
	if s.cfg.PanelStatePath != "" {
		if err := utils.SavePanelState(s.cfg.PanelStatePath, s.cfg.PostChannelID, id); err != nil {
			log.Printf("[admin] failed to save panel state: %v", err)
		}
	}
	log.Printf("[admin] REGISTER panel posted in %s (%s)", s.cfg.PostChannelID, id)
	return id, nil
}

// EnsurePanel re-posts the REGISTER panel when the saved message is gone.
// It does nothing when no panel was ever posted.
func (s *Service) EnsurePanel(ctx context.Context) error {
	if s.cfg.PanelStatePath == "" {
		return nil
	}
	state, err := utils.LoadPanelState(s.cfg.PanelStatePath)
	if err != nil {
		return fmt.Errorf("load panel state: %w", err)
	}
	if state == nil {
		return nil
	}
	_, err = s.dir.Message(ctx, state.ChannelID, state.MessageID)
	if err == nil {
		return nil
	}
	if !errors.Is(err, directory.ErrMessageNotFound) {
		return fmt.Errorf("check panel: %w", err)
	}
	log.Printf("[admin] REGISTER panel %s is gone, posting a new one", state.MessageID)
	_, err = s.Setup(ctx)
	return err
}

// Reset clears the user's registration so they can register again. It
// reports whether the user had a row. The already-submitted marker is only
// cleared once the store change succeeded.
func (s *Service) Reset(ctx context.Context, actorID, userID string) (bool, error) {
	var had bool
	if s.resetMode == ResetMark {
		sub, err := s.store.Get(ctx, userID)
		if err != nil {
			return false, err
		}
		if sub != nil {
			if err := s.store.Upsert(ctx, userID, model.SubmissionFields{
				Status:    model.Ptr(model.StatusReset),
				UpdatedBy: model.Ptr(actorID),
			}); err != nil {
				return false, err
			}
			had = true
		}
	} else {
		removed, err := s.store.Remove(ctx, userID)
		if err != nil {
			return false, err
		}
		had = removed
	}

	forgot := s.mgr.Forget(userID)
	log.Printf("[admin] %s reset registration of %s (mode %s, row found: %v)", actorID, userID, s.resetMode, had)
	return had || forgot, nil
}

// editFields stamps the acting admin and, when known, the user's current
// display name onto an edit.
func editFields(actorID, displayName string) model.SubmissionFields {
	fields := model.SubmissionFields{UpdatedBy: model.Ptr(actorID)}
	if displayName != "" {
		fields.DisplayName = model.Ptr(displayName)
	}
	return fields
}

// UpdateEmail replaces the stored email.
func (s *Service) UpdateEmail(ctx context.Context, actorID, userID, displayName, email string) error {
	if err := validate.CheckEmail(email); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	fields := editFields(actorID, displayName)
	fields.Email = model.Ptr(email)
	return s.store.Upsert(ctx, userID, fields)
}

// UpdatePlayerID replaces the stored player id.
func (s *Service) UpdatePlayerID(ctx context.Context, actorID, userID, displayName, playerID string) error {
	if err := validate.CheckPlayerID(playerID, s.cfg.PlayerIDDigits); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	fields := editFields(actorID, displayName)
	fields.PlayerID = model.Ptr(playerID)
	return s.store.Upsert(ctx, userID, fields)
}

// UpdateRecord replaces both fields. Either invalid value rejects the whole edit.
func (s *Service) UpdateRecord(ctx context.Context, actorID, userID, displayName, email, playerID string) error {
	if err := validate.CheckEmail(email); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if err := validate.CheckPlayerID(playerID, s.cfg.PlayerIDDigits); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	fields := editFields(actorID, displayName)
	fields.Email = model.Ptr(email)
	fields.PlayerID = model.Ptr(playerID)
	return s.store.Upsert(ctx, userID, fields)
}

// EditLogResult says how the audit entry was refreshed.
type EditLogResult int

const (
	LogEdited EditLogResult = iota
	LogReposted
)

// EditLog re-renders the audit entry from the stored row. The existing log
// message is edited when it can be; otherwise a new one is posted and its
// id saved.
func (s *Service) EditLog(ctx context.Context, actorID, userID, displayName string) (EditLogResult, error) {
	if s.cfg.LogChannelID == "" {
		return 0, fmt.Errorf("log channel: %w", ErrNotConfigured)
	}
	sub, err := s.store.Get(ctx, userID)
	if err != nil {
		return 0, err
	}
	if sub == nil {
		return 0, ErrNoRecord
	}
	if displayName != "" {
		sub.DisplayName = displayName
	}
	embed := dialogue.LogEmbed(dialogue.LogTitleEdited, *sub)

	if sub.LogMessageID != "" {
		embeds := []*discordgo.MessageEmbed{embed}
		err := s.dir.Edit(ctx, &discordgo.MessageEdit{
			Channel: s.cfg.LogChannelID,
			ID:      sub.LogMessageID,
			Embeds:  &embeds,
		})
		if err == nil {
			return LogEdited, nil
		}
		log.Printf("[admin] edit log message %s failed, re-posting: %v", sub.LogMessageID, err)
	}

	id, err := s.dir.Send(ctx, s.cfg.LogChannelID, &discordgo.MessageSend{
		Embeds: []*discordgo.MessageEmbed{embed},
	})
	if err != nil {
		return 0, fmt.Errorf("post log message: %w", err)
	}
	if err := s.store.Upsert(ctx, userID, model.SubmissionFields{
		LogMessageID: model.Ptr(id),
		UpdatedBy:    model.Ptr(actorID),
	}); err != nil {
		return LogReposted, fmt.Errorf("save log message id: %w", err)
	}
	return LogReposted, nil
}

// GrantRole gives the registration role to userID by hand. The member is
// looked up first so a user who left the server is reported as such.
func (s *Service) GrantRole(ctx context.Context, userID string) error {
	if _, err := s.dir.Member(ctx, userID); err != nil {
		return err
	}
	return s.dir.GrantRole(ctx, userID)
}

// Count is the number of users in the already-submitted set.
func (s *Service) Count() int {
	return s.mgr.Count()
}

// Export returns the whole table as CSV.
func (s *Service) Export(ctx context.Context) ([]byte, error) {
	return s.store.Export(ctx)
}
