package dialogue

import (
	"context"
	"errors"
	"log"
	"sync/atomic"
	"time"

	"github.com/bwmarrin/discordgo"

	"regbot/validate"
)

type event interface{ isEvent() }

type replyEvent struct {
	content string
}

type choiceEvent struct {
	confirm bool
	ack     chan<- ChoiceOutcome
}

func (replyEvent) isEvent()  {}
func (choiceEvent) isEvent() {}

// dialogue is one user's conversation. Only its run goroutine mutates it
// once started; state is atomic so the Manager can report it.
type dialogue struct {
	m         *Manager
	trigger   Trigger
	sessionID string
	channelID string

	state    atomic.Int32
	attempts int
	email    string
	playerID string
	promptID string

	events chan event
	done   chan struct{}
}

func newDialogue(m *Manager, t Trigger) *dialogue {
	return &dialogue{
		m:         m,
		trigger:   t,
		sessionID: newSessionID(),
		attempts:  m.cfg.MaxAttempts,
		events:    make(chan event, 4),
		done:      make(chan struct{}),
	}
}

func (d *dialogue) State() State     { return State(d.state.Load()) }
func (d *dialogue) setState(s State) { d.state.Store(int32(s)) }

// run drives the dialogue until it reaches a terminal state.
func (d *dialogue) run(ctx context.Context) {
	defer d.finish()

	timer := time.NewTimer(d.m.cfg.ReplyTimeout)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			d.end(Abandoned)
			return
		case <-timer.C:
			d.onTimeout(ctx)
			return
		case ev := <-d.events:
			var rearm bool
			switch ev := ev.(type) {
			case replyEvent:
				rearm = d.onReply(ctx, ev.content)
			case choiceEvent:
				d.onChoice(ctx, ev)
			}
			if d.State().Terminal() {
				return
			}
			if rearm {
				timer.Reset(d.timeout())
			}
		}
	}
}

func (d *dialogue) timeout() time.Duration {
	if d.State() == AwaitingConfirmation {
		return d.m.cfg.ConfirmTimeout
	}
	return d.m.cfg.ReplyTimeout
}

// onReply validates a DM reply. It reports whether the wait timer restarts.
func (d *dialogue) onReply(ctx context.Context, content string) bool {
	if d.State() != AwaitingReply {
		return false
	}
	d.setState(Validating)

	digits := d.m.cfg.PlayerIDDigits
	email, playerID, err := validate.ParseReply(content, digits)
	if err != nil {
		rule := "unknown"
		var v *validate.Violation
		if errors.As(err, &v) {
			rule = v.Rule.String()
		}
		d.m.metrics.Rejected(rule)
		d.attempts--
		log.Printf("[dialogue] user %s: invalid reply (%s), %d attempt(s) left", d.trigger.UserID, rule, d.attempts)

		sendErr := d.say(ctx, correction(err, digits, d.attempts))
		if d.attempts <= 0 {
			d.end(Abandoned)
			return false
		}
		if sendErr != nil {
			d.deliveryFailed(ctx, sendErr)
			return false
		}
		d.setState(AwaitingReply)
		return true
	}

	d.email, d.playerID = email, playerID
	callCtx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()
	id, err := d.m.dir.Send(callCtx, d.channelID, ConfirmPrompt(d.sessionID, email, playerID))
	if err != nil {
		d.deliveryFailed(ctx, err)
		return false
	}
	d.promptID = id
	d.setState(AwaitingConfirmation)
	return true
}

func (d *dialogue) onChoice(ctx context.Context, ev choiceEvent) {
	if d.State() != AwaitingConfirmation {
		ev.ack <- ChoiceExpired
		return
	}
	if !ev.confirm {
		ev.ack <- ChoiceCancelled
		d.closePrompt(ctx, "Cancelled.")
		d.end(Cancelled)
		return
	}

	ev.ack <- ChoiceConfirmed
	d.closePrompt(ctx, "Confirmed.")
	// the fan-out completes even when shutdown starts mid-commit
	report := d.commit(context.WithoutCancel(ctx))
	if failed := report.Failed(); len(failed) > 0 {
		log.Printf("[dialogue] user %s committed with failed step(s): %v", d.trigger.UserID, failed)
	}
	d.end(Committed)
}

func (d *dialogue) onTimeout(ctx context.Context) {
	text := msgReplyTimeout
	if d.State() == AwaitingConfirmation {
		text = msgConfirmTimeout
		d.closePrompt(ctx, "Timed out.")
	}
	if err := d.say(ctx, text); err != nil {
		log.Printf("[dialogue] user %s: timeout notice not delivered: %v", d.trigger.UserID, err)
	}
	d.end(TimedOut)
}

// deliveryFailed ends the dialogue after the DM broke and tells the user on
// the surface they started from.
func (d *dialogue) deliveryFailed(ctx context.Context, err error) {
	log.Printf("[dialogue] user %s: DM delivery failed: %v", d.trigger.UserID, err)
	if d.trigger.Notify != nil {
		callCtx, cancel := context.WithTimeout(ctx, callTimeout)
		defer cancel()
		d.trigger.Notify(callCtx, MsgDMUnavailable)
	}
	d.end(Abandoned)
}

func (d *dialogue) say(ctx context.Context, text string) error {
	callCtx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()
	_, err := d.m.dir.Send(callCtx, d.channelID, &discordgo.MessageSend{Content: text})
	return err
}

// closePrompt removes the buttons from the confirmation prompt. Best effort.
func (d *dialogue) closePrompt(ctx context.Context, footer string) {
	if d.promptID == "" {
		return
	}
	callCtx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()
	edit := closedPrompt(d.channelID, d.promptID, d.email, d.playerID, footer)
	if err := d.m.dir.Edit(callCtx, edit); err != nil {
		log.Printf("[dialogue] user %s: close prompt: %v", d.trigger.UserID, err)
	}
}

func (d *dialogue) end(s State) {
	d.setState(s)
	d.m.metrics.Outcome(s.String())
	log.Printf("[dialogue] user %s ended: %s", d.trigger.UserID, s)
}

func (d *dialogue) finish() {
	d.m.sessions.Delete(d.sessionID)
	d.m.active.CompareAndDelete(d.trigger.UserID, d)
	close(d.done)
}
