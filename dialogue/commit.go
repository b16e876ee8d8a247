package dialogue

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/bwmarrin/discordgo"

	"regbot/directory"
	"regbot/model"
)

// CommitReport holds the result of each commit step. A nil error means the
// step succeeded or had nothing to do.
type CommitReport struct {
	LogMessageID string

	Gate    error
	Log     error
	Store   error
	Role    error
	Success error
}

// Failed lists the steps that returned an error, in commit order.
func (r CommitReport) Failed() []string {
	var names []string
	for _, s := range []struct {
		name string
		err  error
	}{
		{"gate", r.Gate},
		{"log", r.Log},
		{"store", r.Store},
		{"role", r.Role},
		{"success", r.Success},
	} {
		if s.err != nil {
			names = append(names, s.name)
		}
	}
	return names
}

// commit runs the confirmed fan-out in order. Every step runs regardless
// of the ones before it.
func (d *dialogue) commit(ctx context.Context) CommitReport {
	var r CommitReport
	userID := d.trigger.UserID
	sub := model.Submission{
		UserID:      userID,
		DisplayName: d.trigger.DisplayName,
		Email:       d.email,
		PlayerID:    d.playerID,
		Status:      model.StatusConfirmed,
	}

	r.Gate = d.step(ctx, "gate", func(context.Context) error {
		d.m.gate.Add(userID)
		d.m.metrics.Confirmed.Set(float64(d.m.gate.Len()))
		return nil
	})

	r.Log = d.step(ctx, "log", func(ctx context.Context) error {
		if d.m.cfg.LogChannelID == "" {
			return nil
		}
		id, err := d.m.dir.Send(ctx, d.m.cfg.LogChannelID, &discordgo.MessageSend{
			Embeds: []*discordgo.MessageEmbed{LogEmbed(LogTitleNew, sub)},
		})
		if err != nil {
			return err
		}
		r.LogMessageID = id
		return nil
	})

	r.Store = d.step(ctx, "store", func(ctx context.Context) error {
		return d.m.store.Upsert(ctx, userID, model.SubmissionFields{
			DisplayName:  model.Ptr(sub.DisplayName),
			Email:        model.Ptr(sub.Email),
			PlayerID:     model.Ptr(sub.PlayerID),
			Status:       model.Ptr(model.StatusConfirmed),
			LogMessageID: model.Ptr(r.LogMessageID),
			UpdatedBy:    model.Ptr(userID),
		})
	})

	r.Role = d.step(ctx, "role", func(ctx context.Context) error {
		return d.m.dir.GrantRole(ctx, userID)
	})

	r.Success = d.step(ctx, "success", func(ctx context.Context) error {
		_, err := d.m.dir.Send(ctx, d.channelID, &discordgo.MessageSend{
			Embeds: []*discordgo.MessageEmbed{SuccessEmbed(d.m.cfg.Brand, sub.Email, sub.PlayerID)},
		})
		return err
	})

	return r
}

// step runs fn with its own timeout, turning a panic into an error. Failures
// are logged and counted; role problems the operator has to fix are warnings.
func (d *dialogue) step(ctx context.Context, name string, fn func(context.Context) error) (err error) {
	callCtx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
		if err == nil {
			return
		}
		if name == "role" && isRoleWarning(err) {
			log.Printf("[dialogue] warning: user %s: role not granted: %v", d.trigger.UserID, err)
		} else {
			log.Printf("[dialogue] user %s: commit step %s failed: %v", d.trigger.UserID, name, err)
		}
		if !errors.Is(err, directory.ErrRoleNotConfigured) {
			d.m.metrics.SinkFailed(name)
		}
	}()
	return fn(callCtx)
}

func isRoleWarning(err error) bool {
	return errors.Is(err, directory.ErrRoleNotFound) ||
		errors.Is(err, directory.ErrForbidden) ||
		errors.Is(err, directory.ErrRoleNotConfigured)
}
