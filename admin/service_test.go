package admin

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"regbot/dialogue"
	"regbot/directory"
	"regbot/model"
	"regbot/store"
	"regbot/utils"
)

type fakeDirectory struct {
	mu        sync.Mutex
	sent      map[string][]*discordgo.MessageSend
	edits     []*discordgo.MessageEdit
	editErr   error
	messages  map[string]bool
	granted   []string
	memberErr error
	nextID    int
}

func newFakeDirectory() *fakeDirectory {
	return &fakeDirectory{sent: map[string][]*discordgo.MessageSend{}, messages: map[string]bool{}}
}

func (f *fakeDirectory) OpenDM(ctx context.Context, userID string) (string, error) {
	return "dm-" + userID, nil
}

func (f *fakeDirectory) Send(ctx context.Context, channelID string, msg *discordgo.MessageSend) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	id := fmt.Sprintf("m%d", f.nextID)
	f.sent[channelID] = append(f.sent[channelID], msg)
	f.messages[id] = true
	return id, nil
}

func (f *fakeDirectory) Edit(ctx context.Context, edit *discordgo.MessageEdit) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.editErr != nil {
		return f.editErr
	}
	f.edits = append(f.edits, edit)
	return nil
}

func (f *fakeDirectory) Message(ctx context.Context, channelID, messageID string) (*discordgo.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.messages[messageID] {
		return nil, directory.ErrMessageNotFound
	}
	return &discordgo.Message{ID: messageID, ChannelID: channelID}, nil
}

func (f *fakeDirectory) GrantRole(ctx context.Context, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.granted = append(f.granted, userID)
	return nil
}

func (f *fakeDirectory) Member(ctx context.Context, userID string) (*discordgo.Member, error) {
	if f.memberErr != nil {
		return nil, f.memberErr
	}
	return &discordgo.Member{User: &discordgo.User{ID: userID}}, nil
}

// brokenStore fails every mutation and reads through to the wrapped store.
type brokenStore struct {
	store.Store
	err error
}

func (b brokenStore) Upsert(ctx context.Context, userID string, fields model.SubmissionFields) error {
	return b.err
}

func (b brokenStore) Remove(ctx context.Context, userID string) (bool, error) {
	return false, b.err
}

type fixture struct {
	svc   *Service
	dir   *fakeDirectory
	store store.Store
	mgr   *dialogue.Manager
	cfg   model.Registration
}

func newFixture(t *testing.T, resetMode string) *fixture {
	t.Helper()
	dir := t.TempDir()
	cfg := model.Registration{
		PostChannelID:  "post",
		LogChannelID:   "log",
		PlayerIDDigits: 9,
		PanelStatePath: filepath.Join(dir, "panel_state.json"),
	}
	st := store.NewCSVStore(filepath.Join(dir, "submissions.csv"))
	fd := newFakeDirectory()
	mgr := dialogue.NewManager(cfg, st, fd, nil)
	t.Cleanup(mgr.Shutdown)
	return &fixture{svc: NewService(st, fd, mgr, resetMode), dir: fd, store: st, mgr: mgr, cfg: cfg}
}

func (f *fixture) seedConfirmed(t *testing.T, userID string) {
	t.Helper()
	require.NoError(t, f.store.Upsert(context.Background(), userID, model.SubmissionFields{
		Email:    model.Ptr("a@b.co"),
		PlayerID: model.Ptr("123456789"),
		Status:   model.Ptr(model.StatusConfirmed),
	}))
	require.NoError(t, f.mgr.Preload(context.Background()))
}

func TestResetDeleteAllowsRegisteringAgain(t *testing.T) {
	f := newFixture(t, ResetDelete)
	ctx := context.Background()
	f.seedConfirmed(t, "7")
	require.Equal(t, dialogue.AlreadySubmitted, f.mgr.Start(ctx, dialogue.Trigger{UserID: "7"}))

	had, err := f.svc.Reset(ctx, "admin", "7")
	require.NoError(t, err)
	assert.True(t, had)

	sub, err := f.store.Get(ctx, "7")
	require.NoError(t, err)
	assert.Nil(t, sub)
	assert.Equal(t, 0, f.svc.Count())
	assert.Equal(t, dialogue.Started, f.mgr.Start(ctx, dialogue.Trigger{UserID: "7"}))
}

func TestResetMarkKeepsRow(t *testing.T) {
	f := newFixture(t, ResetMark)
	ctx := context.Background()
	f.seedConfirmed(t, "7")

	_, err := f.svc.Reset(ctx, "admin", "7")
	require.NoError(t, err)

	sub, err := f.store.Get(ctx, "7")
	require.NoError(t, err)
	require.NotNil(t, sub)
	assert.Equal(t, model.StatusReset, sub.Status)
	assert.Equal(t, "admin", sub.UpdatedBy)
	assert.Equal(t, "a@b.co", sub.Email)

	ids, err := f.store.LoadConfirmedIDs(ctx)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestFailedResetKeepsUserSubmitted(t *testing.T) {
	ctx := context.Background()
	for _, mode := range []string{ResetDelete, ResetMark} {
		t.Run(mode, func(t *testing.T) {
			f := newFixture(t, mode)
			f.seedConfirmed(t, "7")
			svc := NewService(brokenStore{Store: f.store, err: errors.New("disk full")}, f.dir, f.mgr, mode)

			_, err := svc.Reset(ctx, "admin", "7")
			assert.ErrorContains(t, err, "disk full")
			assert.True(t, f.mgr.Submitted("7"))
			assert.Equal(t, dialogue.AlreadySubmitted, f.mgr.Start(ctx, dialogue.Trigger{UserID: "7"}))
		})
	}
}

func TestUpdatesRefreshDisplayName(t *testing.T) {
	f := newFixture(t, ResetDelete)
	ctx := context.Background()
	f.seedConfirmed(t, "7")

	require.NoError(t, f.svc.UpdateEmail(ctx, "admin", "7", "Seven", "new@b.co"))
	sub, err := f.store.Get(ctx, "7")
	require.NoError(t, err)
	assert.Equal(t, "Seven", sub.DisplayName)

	require.NoError(t, f.svc.UpdatePlayerID(ctx, "admin", "7", "", "987654321"))
	sub, err = f.store.Get(ctx, "7")
	require.NoError(t, err)
	assert.Equal(t, "Seven", sub.DisplayName)
	assert.Equal(t, "987654321", sub.PlayerID)

	require.NoError(t, f.svc.UpdateRecord(ctx, "admin", "7", "Seven II", "x@b.co", "111222333"))
	sub, err = f.store.Get(ctx, "7")
	require.NoError(t, err)
	assert.Equal(t, "Seven II", sub.DisplayName)
}

func TestUpdatesValidateBeforeWriting(t *testing.T) {
	f := newFixture(t, ResetDelete)
	ctx := context.Background()
	f.seedConfirmed(t, "7")

	assert.ErrorIs(t, f.svc.UpdateEmail(ctx, "admin", "7", "", "not-an-email"), ErrInvalidInput)
	assert.ErrorIs(t, f.svc.UpdatePlayerID(ctx, "admin", "7", "", "12345"), ErrInvalidInput)
	assert.ErrorIs(t, f.svc.UpdateRecord(ctx, "admin", "7", "", "new@b.co", "abc"), ErrInvalidInput)

	sub, err := f.store.Get(ctx, "7")
	require.NoError(t, err)
	assert.Equal(t, "a@b.co", sub.Email)
	assert.Equal(t, "123456789", sub.PlayerID)

	require.NoError(t, f.svc.UpdateRecord(ctx, "admin", "7", "", "new@b.co", "987654321"))
	sub, err = f.store.Get(ctx, "7")
	require.NoError(t, err)
	assert.Equal(t, "new@b.co", sub.Email)
	assert.Equal(t, "987654321", sub.PlayerID)
	assert.Equal(t, model.StatusConfirmed, sub.Status)
	assert.Equal(t, "admin", sub.UpdatedBy)
}

func TestEditLog(t *testing.T) {
	f := newFixture(t, ResetDelete)
	ctx := context.Background()

	_, err := f.svc.EditLog(ctx, "admin", "7", "")
	assert.ErrorIs(t, err, ErrNoRecord)

	f.seedConfirmed(t, "7")
	res, err := f.svc.EditLog(ctx, "admin", "7", "Alice")
	require.NoError(t, err)
	assert.Equal(t, LogReposted, res)
	require.Len(t, f.dir.sent["log"], 1)
	assert.Equal(t, dialogue.LogTitleEdited, f.dir.sent["log"][0].Embeds[0].Title)

	sub, err := f.store.Get(ctx, "7")
	require.NoError(t, err)
	require.NotEmpty(t, sub.LogMessageID)

	res, err = f.svc.EditLog(ctx, "admin", "7", "")
	require.NoError(t, err)
	assert.Equal(t, LogEdited, res)
	require.Len(t, f.dir.edits, 1)
	assert.Equal(t, sub.LogMessageID, f.dir.edits[0].ID)

	f.dir.editErr = errors.New("unknown message")
	res, err = f.svc.EditLog(ctx, "admin", "7", "")
	require.NoError(t, err)
	assert.Equal(t, LogReposted, res)
	assert.Len(t, f.dir.sent["log"], 2)
}

func TestSetupAndEnsurePanel(t *testing.T) {
	f := newFixture(t, ResetDelete)
	ctx := context.Background()

	require.NoError(t, f.svc.EnsurePanel(ctx))
	assert.Empty(t, f.dir.sent["post"])

	id, err := f.svc.Setup(ctx)
	require.NoError(t, err)
	state, err := utils.LoadPanelState(f.cfg.PanelStatePath)
	require.NoError(t, err)
	require.NotNil(t, state)
	assert.Equal(t, id, state.MessageID)

	require.NoError(t, f.svc.EnsurePanel(ctx))
	assert.Len(t, f.dir.sent["post"], 1)

	f.dir.mu.Lock()
	delete(f.dir.messages, id)
	f.dir.mu.Unlock()
	require.NoError(t, f.svc.EnsurePanel(ctx))
	assert.Len(t, f.dir.sent["post"], 2)
}

func TestExportAndGrant(t *testing.T) {
	f := newFixture(t, ResetDelete)
	ctx := context.Background()
	f.seedConfirmed(t, "7")

	data, err := f.svc.Export(ctx)
	require.NoError(t, err)
	assert.Contains(t, string(data), "discord_user_id,discord_name,email,player_id")
	assert.Contains(t, string(data), "123456789")

	require.NoError(t, f.svc.GrantRole(ctx, "7"))
	assert.Equal(t, []string{"7"}, f.dir.granted)
	assert.Equal(t, 1, f.svc.Count())
}

func TestGrantRoleLooksUpMemberFirst(t *testing.T) {
	f := newFixture(t, ResetDelete)
	f.dir.memberErr = directory.ErrMemberNotFound

	err := f.svc.GrantRole(context.Background(), "7")
	assert.ErrorIs(t, err, directory.ErrMemberNotFound)
	assert.Empty(t, f.dir.granted)
}
