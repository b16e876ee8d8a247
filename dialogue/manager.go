// Package dialogue runs the per-user registration conversation: REGISTER
// press, DM prompt, validated reply, confirmation and the commit fan-out.
//
// Each dialogue is a goroutine that owns its state. Discord handlers feed it
// events through the Manager; nothing is shared between users except the
// Gate and the record store.
package dialogue

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/google/uuid"

	"regbot/directory"
	"regbot/metrics"
	"regbot/model"
	"regbot/store"
)

// Defaults applied to zero values in the registration config.
const (
	DefaultPlayerIDDigits = 9
	DefaultMaxAttempts    = 3
	DefaultReplyTimeout   = 120 * time.Second
	DefaultConfirmTimeout = 90 * time.Second
)

// callTimeout bounds a single Discord or store call made by a dialogue.
const callTimeout = 15 * time.Second

// Trigger describes a REGISTER press.
type Trigger struct {
	UserID      string
	DisplayName string
	// Notify reaches the user on the surface where they pressed REGISTER.
	// It is used when the DM breaks mid-dialogue and may be nil.
	Notify func(ctx context.Context, text string)
}

// Manager owns the Gate and every running dialogue.
type Manager struct {
	cfg     model.Registration
	store   store.Store
	dir     directory.Directory
	metrics *metrics.Metrics

	gate     Gate
	active   sync.Map // user id -> *dialogue
	sessions sync.Map // session id -> *dialogue

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewManager(cfg model.Registration, st store.Store, dir directory.Directory, m *metrics.Metrics) *Manager {
	if cfg.PlayerIDDigits <= 0 {
		cfg.PlayerIDDigits = DefaultPlayerIDDigits
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultMaxAttempts
	}
	if cfg.ReplyTimeout <= 0 {
		cfg.ReplyTimeout = DefaultReplyTimeout
	}
	if cfg.ConfirmTimeout <= 0 {
		cfg.ConfirmTimeout = DefaultConfirmTimeout
	}
	if m == nil {
		m = metrics.New(nil)
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Manager{
		cfg:     cfg,
		store:   st,
		dir:     dir,
		metrics: m,
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Config returns the registration settings with defaults applied.
func (m *Manager) Config() model.Registration { return m.cfg }

// Preload fills the Gate with every confirmed user in the store.
func (m *Manager) Preload(ctx context.Context) error {
	ids, err := m.store.LoadConfirmedIDs(ctx)
	if err != nil {
		return fmt.Errorf("preload confirmed ids: %w", err)
	}
	for _, id := range ids {
		m.gate.Add(id)
	}
	m.metrics.Confirmed.Set(float64(m.gate.Len()))
	log.Printf("[dialogue] preloaded %d confirmed user(s)", len(ids))
	return nil
}

// Start handles a REGISTER press. The already-submitted check runs before
// any DM is opened.
func (m *Manager) Start(ctx context.Context, t Trigger) StartOutcome {
	if m.ctx.Err() != nil {
		return ShuttingDown
	}
	if m.gate.Has(t.UserID) {
		return AlreadySubmitted
	}

	d := newDialogue(m, t)
	if _, loaded := m.active.LoadOrStore(t.UserID, d); loaded {
		return InProgress
	}
	// a commit may have finished between the first check and the claim
	if m.gate.Has(t.UserID) {
		m.active.CompareAndDelete(t.UserID, d)
		return AlreadySubmitted
	}

	callCtx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()
	channelID, err := m.dir.OpenDM(callCtx, t.UserID)
	if err == nil {
		_, err = m.dir.Send(callCtx, channelID, &discordgo.MessageSend{Content: greeting(m.cfg.PlayerIDDigits)})
	}
	if err != nil {
		log.Printf("[dialogue] cannot DM user %s: %v", t.UserID, err)
		m.active.CompareAndDelete(t.UserID, d)
		return DMUnavailable
	}

	d.channelID = channelID
	d.setState(AwaitingReply)
	m.sessions.Store(d.sessionID, d)
	m.metrics.DialoguesStarted.Inc()
	log.Printf("[dialogue] started for user %s (session %s)", t.UserID, d.sessionID)

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		d.run(m.ctx)
	}()
	return Started
}

// HandleReply routes a DM from userID to that user's dialogue. It reports
// whether a dialogue took the message.
func (m *Manager) HandleReply(userID, content string) bool {
	v, ok := m.active.Load(userID)
	if !ok {
		return false
	}
	d := v.(*dialogue)
	select {
	case d.events <- replyEvent{content: content}:
		return true
	case <-d.done:
		return false
	default:
		log.Printf("[dialogue] dropped reply from user %s: dialogue busy", userID)
		return false
	}
}

// Choose applies a Confirm or Cancel press from userID to the dialogue
// behind sessionID. It returns once the choice is accepted, before the
// commit fan-out runs.
func (m *Manager) Choose(ctx context.Context, sessionID, userID string, confirm bool) ChoiceOutcome {
	v, ok := m.sessions.Load(sessionID)
	if !ok {
		return ChoiceExpired
	}
	d := v.(*dialogue)
	if d.trigger.UserID != userID {
		return ChoiceNotOwner
	}

	ack := make(chan ChoiceOutcome, 1)
	select {
	case d.events <- choiceEvent{confirm: confirm, ack: ack}:
	case <-d.done:
		return ChoiceExpired
	case <-ctx.Done():
		return ChoiceExpired
	}

	select {
	case out := <-ack:
		return out
	case <-d.done:
		select {
		case out := <-ack:
			return out
		default:
			return ChoiceExpired
		}
	case <-ctx.Done():
		return ChoiceExpired
	}
}

// Forget clears the already-submitted marker for userID.
func (m *Manager) Forget(userID string) bool {
	removed := m.gate.Remove(userID)
	m.metrics.Confirmed.Set(float64(m.gate.Len()))
	return removed
}

// Submitted reports whether userID is in the already-submitted set.
func (m *Manager) Submitted(userID string) bool {
	return m.gate.Has(userID)
}

// Count is the size of the already-submitted set.
func (m *Manager) Count() int {
	return m.gate.Len()
}

// Active reports the current state of userID's dialogue, or Idle.
func (m *Manager) Active(userID string) State {
	v, ok := m.active.Load(userID)
	if !ok {
		return Idle
	}
	return v.(*dialogue).State()
}

// Wait blocks until every running dialogue has ended.
func (m *Manager) Wait() {
	m.wg.Wait()
}

// Shutdown stops accepting dialogues, ends the running ones and waits for
// them. A commit in progress is allowed to finish.
func (m *Manager) Shutdown() {
	m.cancel()
	m.wg.Wait()
}

func newSessionID() string {
	return uuid.NewString()
}
