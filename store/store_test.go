package store

import (
	"bytes"
	"context"
	"encoding/csv"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"regbot/db"
	"regbot/model"
)

type backendFactory struct {
	name string
	open func(t *testing.T) Store
}

func backends() []backendFactory {
	return []backendFactory{
		{"csv", func(t *testing.T) Store {
			return NewCSVStore(filepath.Join(t.TempDir(), "data", "submissions.csv"))
		}},
		{"sheets", func(t *testing.T) Store {
			s, err := newSheetsStore(context.Background(), &memWorksheet{})
			require.NoError(t, err)
			return s
		}},
		{"sqlite", func(t *testing.T) Store {
			s, err := db.Open(filepath.Join(t.TempDir(), "regbot.db"))
			require.NoError(t, err)
			return s
		}},
		{"redis", func(t *testing.T) Store {
			mr := miniredis.RunT(t)
			return newRedisStore(redis.NewClient(&redis.Options{Addr: mr.Addr()}), "test")
		}},
	}
}

func confirmedFields(name, email, playerID string) model.SubmissionFields {
	return model.SubmissionFields{
		DisplayName: model.Ptr(name),
		Email:       model.Ptr(email),
		PlayerID:    model.Ptr(playerID),
		Status:      model.Ptr(model.StatusConfirmed),
	}
}

func readExport(t *testing.T, data []byte) [][]string {
	t.Helper()
	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	require.NotEmpty(t, records)
	assert.Equal(t, model.Columns, records[0])
	return records[1:]
}

func TestStoreBackends(t *testing.T) {
	for _, b := range backends() {
		t.Run(b.name, func(t *testing.T) {
			ctx := context.Background()

			t.Run("upsert creates then updates one row", func(t *testing.T) {
				s := b.open(t)
				defer s.Close()

				require.NoError(t, s.Upsert(ctx, "42", confirmedFields("Alice", "a@b.co", "123456789")))
				require.NoError(t, s.Upsert(ctx, "42", confirmedFields("Alice", "a@b.co", "123456789")))

				rows := readExport(t, mustExport(t, s))
				require.Len(t, rows, 1)
				assert.Equal(t, "42", rows[0][0])
				assert.Equal(t, "123456789", rows[0][3])
			})

			t.Run("partial update keeps other fields", func(t *testing.T) {
				s := b.open(t)
				defer s.Close()

				require.NoError(t, s.Upsert(ctx, "42", confirmedFields("Alice", "a@b.co", "012345678")))
				require.NoError(t, s.Upsert(ctx, "42", model.SubmissionFields{
					Email:     model.Ptr("new@b.co"),
					UpdatedBy: model.Ptr("admin-1"),
				}))

				sub, err := s.Get(ctx, "42")
				require.NoError(t, err)
				require.NotNil(t, sub)
				assert.Equal(t, "Alice", sub.DisplayName)
				assert.Equal(t, "new@b.co", sub.Email)
				assert.Equal(t, "012345678", sub.PlayerID)
				assert.Equal(t, model.StatusConfirmed, sub.Status)
				assert.Equal(t, "admin-1", sub.UpdatedBy)
				assert.False(t, sub.UpdatedAt.IsZero())
			})

			t.Run("get missing returns nil", func(t *testing.T) {
				s := b.open(t)
				defer s.Close()

				sub, err := s.Get(ctx, "nobody")
				require.NoError(t, err)
				assert.Nil(t, sub)
			})

			t.Run("remove", func(t *testing.T) {
				s := b.open(t)
				defer s.Close()

				require.NoError(t, s.Upsert(ctx, "1", confirmedFields("A", "a@b.co", "111111111")))
				require.NoError(t, s.Upsert(ctx, "2", confirmedFields("B", "b@b.co", "222222222")))

				removed, err := s.Remove(ctx, "1")
				require.NoError(t, err)
				assert.True(t, removed)

				removed, err = s.Remove(ctx, "1")
				require.NoError(t, err)
				assert.False(t, removed)

				ids, err := s.LoadConfirmedIDs(ctx)
				require.NoError(t, err)
				assert.Equal(t, []string{"2"}, ids)
			})

			t.Run("confirmed ids skip reset rows", func(t *testing.T) {
				s := b.open(t)
				defer s.Close()

				require.NoError(t, s.Upsert(ctx, "1", confirmedFields("A", "a@b.co", "111111111")))
				require.NoError(t, s.Upsert(ctx, "2", confirmedFields("B", "b@b.co", "222222222")))
				require.NoError(t, s.Upsert(ctx, "2", model.SubmissionFields{Status: model.Ptr(model.StatusReset)}))

				ids, err := s.LoadConfirmedIDs(ctx)
				require.NoError(t, err)
				assert.Equal(t, []string{"1"}, ids)

				rows := readExport(t, mustExport(t, s))
				assert.Len(t, rows, 2)
			})

			t.Run("empty export has only the header", func(t *testing.T) {
				s := b.open(t)
				defer s.Close()

				assert.Empty(t, readExport(t, mustExport(t, s)))
			})

			t.Run("concurrent upserts for different users", func(t *testing.T) {
				s := b.open(t)
				defer s.Close()

				var wg sync.WaitGroup
				for _, id := range []string{"10", "11", "12", "13", "14"} {
					wg.Add(1)
					go func() {
						defer wg.Done()
						assert.NoError(t, s.Upsert(ctx, id, confirmedFields("u"+id, id+"@b.co", "123456789")))
					}()
				}
				wg.Wait()

				ids, err := s.LoadConfirmedIDs(ctx)
				require.NoError(t, err)
				assert.ElementsMatch(t, []string{"10", "11", "12", "13", "14"}, ids)
			})
		})
	}
}

func mustExport(t *testing.T, s Store) []byte {
	t.Helper()
	data, err := s.Export(context.Background())
	require.NoError(t, err)
	return data
}

func TestCSVStoreLoadsMinimalLayout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "submissions.csv")
	require.NoError(t, writeFile(path, "discord_user_id,email,player_id\n7,x@y.io,000000001\n"))

	s := NewCSVStore(path)
	sub, err := s.Get(context.Background(), "7")
	require.NoError(t, err)
	require.NotNil(t, sub)
	assert.Equal(t, "x@y.io", sub.Email)
	assert.Equal(t, "000000001", sub.PlayerID)
	assert.False(t, sub.Confirmed())
}

func TestCSVStoreStampsUpdatedAt(t *testing.T) {
	s := NewCSVStore(filepath.Join(t.TempDir(), "submissions.csv"))
	fixed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return fixed }

	require.NoError(t, s.Upsert(context.Background(), "1", confirmedFields("A", "a@b.co", "111111111")))
	sub, err := s.Get(context.Background(), "1")
	require.NoError(t, err)
	assert.True(t, fixed.Equal(sub.UpdatedAt))
}
