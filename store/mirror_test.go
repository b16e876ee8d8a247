package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"regbot/model"
)

// failingStore fails every call.
type failingStore struct{ closed bool }

var errBackendDown = errors.New("backend down")

func (f *failingStore) Upsert(context.Context, string, model.SubmissionFields) error {
	return errBackendDown
}
func (f *failingStore) Remove(context.Context, string) (bool, error) { return false, errBackendDown }
func (f *failingStore) Get(context.Context, string) (*model.Submission, error) {
	return nil, errBackendDown
}
func (f *failingStore) LoadConfirmedIDs(context.Context) ([]string, error) {
	return nil, errBackendDown
}
func (f *failingStore) Export(context.Context) ([]byte, error) { return nil, errBackendDown }
func (f *failingStore) Close() error {
	f.closed = true
	return nil
}

func TestMirrorWritesEveryBackend(t *testing.T) {
	ctx := context.Background()
	primary := NewCSVStore(filepath.Join(t.TempDir(), "a.csv"))
	secondary := NewCSVStore(filepath.Join(t.TempDir(), "b.csv"))
	m := NewMirror(Named{"csv", primary}, Named{"csv-copy", secondary})

	require.NoError(t, m.Upsert(ctx, "1", confirmedFields("A", "a@b.co", "111111111")))

	for _, s := range []Store{primary, secondary} {
		sub, err := s.Get(ctx, "1")
		require.NoError(t, err)
		require.NotNil(t, sub)
		assert.Equal(t, "a@b.co", sub.Email)
	}

	removed, err := m.Remove(ctx, "1")
	require.NoError(t, err)
	assert.True(t, removed)
	sub, err := secondary.Get(ctx, "1")
	require.NoError(t, err)
	assert.Nil(t, sub)
}

func TestMirrorIgnoresSecondaryFailure(t *testing.T) {
	ctx := context.Background()
	primary := NewCSVStore(filepath.Join(t.TempDir(), "a.csv"))
	broken := &failingStore{}
	m := NewMirror(Named{"csv", primary}, Named{"broken", broken})

	require.NoError(t, m.Upsert(ctx, "1", confirmedFields("A", "a@b.co", "111111111")))
	ids, err := m.LoadConfirmedIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"1"}, ids)

	require.NoError(t, m.Close())
	assert.True(t, broken.closed)
}

func TestMirrorReturnsPrimaryFailure(t *testing.T) {
	ctx := context.Background()
	secondary := NewCSVStore(filepath.Join(t.TempDir(), "b.csv"))
	m := NewMirror(Named{"broken", &failingStore{}}, Named{"csv", secondary})

	err := m.Upsert(ctx, "1", confirmedFields("A", "a@b.co", "111111111"))
	assert.ErrorIs(t, err, errBackendDown)

	sub, err := secondary.Get(ctx, "1")
	require.NoError(t, err)
	assert.NotNil(t, sub)
}

func TestOpenSelectsBackends(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	cfg := model.StoreConfig{
		Backend: "CSV",
		Mirror:  []string{"sqlite", "csv"},
		CSV:     model.CSVConfig{Path: filepath.Join(dir, "s.csv")},
		SQLite:  model.SQLiteConfig{Path: filepath.Join(dir, "s.db")},
	}
	s, err := Open(ctx, cfg)
	require.NoError(t, err)
	defer s.Close()

	m, ok := s.(*Mirror)
	require.True(t, ok)
	require.Len(t, m.secondaries, 1)
	assert.Equal(t, "sqlite", m.secondaries[0].Name)

	_, err = Open(ctx, model.StoreConfig{Backend: "mongo"})
	assert.ErrorContains(t, err, "unknown store backend")

	_, err = Open(ctx, model.StoreConfig{Backend: "csv"})
	assert.Error(t, err)
}
