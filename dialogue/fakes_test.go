package dialogue

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/bwmarrin/discordgo"

	"regbot/model"
)

type sentMessage struct {
	channelID string
	msg       *discordgo.MessageSend
}

func (s sentMessage) text() string {
	if s.msg.Content != "" {
		return s.msg.Content
	}
	var b strings.Builder
	for _, e := range s.msg.Embeds {
		b.WriteString(e.Title)
		b.WriteString(e.Description)
	}
	return b.String()
}

// fakeDirectory records every call. DM channels are named "dm-<user>".
type fakeDirectory struct {
	mu       sync.Mutex
	openErr  error
	failSend func(channelID string, msg *discordgo.MessageSend) error
	grantErr error

	opens   int
	sent    []sentMessage
	edits   []*discordgo.MessageEdit
	granted []string
	nextID  int
}

func (f *fakeDirectory) OpenDM(ctx context.Context, userID string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.opens++
	if f.openErr != nil {
		return "", f.openErr
	}
	return "dm-" + userID, nil
}

func (f *fakeDirectory) Send(ctx context.Context, channelID string, msg *discordgo.MessageSend) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failSend != nil {
		if err := f.failSend(channelID, msg); err != nil {
			return "", err
		}
	}
	f.nextID++
	f.sent = append(f.sent, sentMessage{channelID: channelID, msg: msg})
	return fmt.Sprintf("msg-%d", f.nextID), nil
}

func (f *fakeDirectory) Edit(ctx context.Context, edit *discordgo.MessageEdit) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.edits = append(f.edits, edit)
	return nil
}

func (f *fakeDirectory) Message(ctx context.Context, channelID, messageID string) (*discordgo.Message, error) {
	return &discordgo.Message{ID: messageID, ChannelID: channelID}, nil
}

func (f *fakeDirectory) GrantRole(ctx context.Context, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.grantErr != nil {
		return f.grantErr
	}
	f.granted = append(f.granted, userID)
	return nil
}

func (f *fakeDirectory) Member(ctx context.Context, userID string) (*discordgo.Member, error) {
	return &discordgo.Member{User: &discordgo.User{ID: userID}}, nil
}

func (f *fakeDirectory) sentTo(channelID string) []sentMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []sentMessage
	for _, s := range f.sent {
		if s.channelID == channelID {
			out = append(out, s)
		}
	}
	return out
}

func (f *fakeDirectory) openCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.opens
}

func (f *fakeDirectory) grantedUsers() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.granted...)
}

func (f *fakeDirectory) editCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.edits)
}

// sessionFromPrompt pulls the session id out of a confirmation prompt.
func sessionFromPrompt(msg *discordgo.MessageSend) (string, bool) {
	if len(msg.Components) == 0 {
		return "", false
	}
	row, ok := msg.Components[0].(discordgo.ActionsRow)
	if !ok || len(row.Components) == 0 {
		return "", false
	}
	btn, ok := row.Components[0].(discordgo.Button)
	if !ok {
		return "", false
	}
	name, session, found := strings.Cut(btn.CustomID, ":")
	if !found || name != ConfirmButtonID {
		return "", false
	}
	return session, true
}

var errStoreDown = errors.New("store down")

// memStore is an in-memory store with failure injection.
type memStore struct {
	mu        sync.Mutex
	rows      map[string]model.Submission
	upsertErr error
	panicked  bool
}

func newMemStore() *memStore {
	return &memStore{rows: map[string]model.Submission{}}
}

func (s *memStore) Upsert(ctx context.Context, userID string, fields model.SubmissionFields) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.panicked {
		panic("store exploded")
	}
	if s.upsertErr != nil {
		return s.upsertErr
	}
	sub := s.rows[userID]
	sub.UserID = userID
	sub.Apply(fields, sub.UpdatedAt)
	s.rows[userID] = sub
	return nil
}

func (s *memStore) Remove(ctx context.Context, userID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.rows[userID]
	delete(s.rows, userID)
	return ok, nil
}

func (s *memStore) Get(ctx context.Context, userID string) (*model.Submission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sub, ok := s.rows[userID]
	if !ok {
		return nil, nil
	}
	return &sub, nil
}

func (s *memStore) LoadConfirmedIDs(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var ids []string
	for id, sub := range s.rows {
		if sub.Confirmed() {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func (s *memStore) Export(ctx context.Context) ([]byte, error) { return nil, nil }
func (s *memStore) Close() error                               { return nil }

func (s *memStore) row(userID string) (model.Submission, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sub, ok := s.rows[userID]
	return sub, ok
}
