package store

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"

	"regbot/model"
)

// RedisStore keeps one hash per user plus two sets: every known id and the
// confirmed ids. Partial updates are plain HSETs of the provided fields, so
// writes for different users never touch the same key.
type RedisStore struct {
	rdb    *redis.Client
	prefix string
	now    func() time.Time
}

// NewRedisStore connects to the server at url and pings it.
func NewRedisStore(ctx context.Context, cfg model.RedisConfig) (*RedisStore, error) {
	if cfg.URL == "" {
		return nil, errors.New("redis store: url is required")
	}
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("redis store: parse url: %w", err)
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("redis store: ping: %w", err)
	}
	return newRedisStore(rdb, cfg.Prefix), nil
}

func newRedisStore(rdb *redis.Client, prefix string) *RedisStore {
	if prefix == "" {
		prefix = "regbot"
	}
	return &RedisStore{rdb: rdb, prefix: prefix, now: time.Now}
}

func (s *RedisStore) key(userID string) string { return s.prefix + ":submission:" + userID }
func (s *RedisStore) idsKey() string           { return s.prefix + ":ids" }
func (s *RedisStore) confirmedKey() string     { return s.prefix + ":confirmed" }

func (s *RedisStore) Upsert(ctx context.Context, userID string, fields model.SubmissionFields) error {
	values := map[string]any{
		"discord_user_id": userID,
		"updated_at":      s.now().UTC().Format(time.RFC3339),
	}
	set := func(name string, v *string) {
		if v != nil {
			values[name] = *v
		}
	}
	set("discord_name", fields.DisplayName)
	set("email", fields.Email)
	set("player_id", fields.PlayerID)
	set("log_message_id", fields.LogMessageID)
	set("updated_by", fields.UpdatedBy)
	if fields.Status != nil {
		values["status"] = string(*fields.Status)
	}

	_, err := s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, s.key(userID), values)
		pipe.SAdd(ctx, s.idsKey(), userID)
		if fields.Status != nil {
			if *fields.Status == model.StatusConfirmed {
				pipe.SAdd(ctx, s.confirmedKey(), userID)
			} else {
				pipe.SRem(ctx, s.confirmedKey(), userID)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis store: upsert %s: %w", userID, err)
	}
	return nil
}

func (s *RedisStore) Remove(ctx context.Context, userID string) (bool, error) {
	var del *redis.IntCmd
	_, err := s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		del = pipe.Del(ctx, s.key(userID))
		pipe.SRem(ctx, s.idsKey(), userID)
		pipe.SRem(ctx, s.confirmedKey(), userID)
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("redis store: remove %s: %w", userID, err)
	}
	return del.Val() > 0, nil
}

func (s *RedisStore) Get(ctx context.Context, userID string) (*model.Submission, error) {
	values, err := s.rdb.HGetAll(ctx, s.key(userID)).Result()
	if err != nil {
		return nil, fmt.Errorf("redis store: get %s: %w", userID, err)
	}
	if len(values) == 0 {
		return nil, nil
	}
	sub, err := fromHash(values)
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func (s *RedisStore) LoadConfirmedIDs(ctx context.Context) ([]string, error) {
	ids, err := s.rdb.SMembers(ctx, s.confirmedKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("redis store: load confirmed: %w", err)
	}
	sort.Strings(ids)
	return ids, nil
}

func (s *RedisStore) Export(ctx context.Context) ([]byte, error) {
	ids, err := s.rdb.SMembers(ctx, s.idsKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("redis store: list ids: %w", err)
	}

	cmds := make([]*redis.MapStringStringCmd, len(ids))
	_, err = s.rdb.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for i, id := range ids {
			cmds[i] = pipe.HGetAll(ctx, s.key(id))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("redis store: export: %w", err)
	}

	subs := make([]model.Submission, 0, len(ids))
	for _, cmd := range cmds {
		if len(cmd.Val()) == 0 {
			continue
		}
		sub, err := fromHash(cmd.Val())
		if err != nil {
			return nil, err
		}
		subs = append(subs, sub)
	}
	sortByUser(subs)

	var buf bytes.Buffer
	if err := model.WriteTable(&buf, subs); err != nil {
		return nil, fmt.Errorf("redis store: export: %w", err)
	}
	return buf.Bytes(), nil
}

func (s *RedisStore) Close() error {
	return s.rdb.Close()
}

func fromHash(values map[string]string) (model.Submission, error) {
	row := make([]string, len(model.Columns))
	for i, name := range model.Columns {
		row[i] = values[name]
	}
	sub, err := model.SubmissionFromRow(model.Columns, row)
	if err != nil {
		return sub, fmt.Errorf("redis store: %w", err)
	}
	return sub, nil
}
