package db

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"time"

	"regbot/model"
)

const submissionColumns = `discord_user_id, discord_name, email, player_id, status, log_message_id, updated_by, updated_at`

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSubmission(scanner rowScanner) (*model.Submission, error) {
	var sub model.Submission
	var status string
	var updatedAt int64
	err := scanner.Scan(
		&sub.UserID, &sub.DisplayName, &sub.Email, &sub.PlayerID,
		&status, &sub.LogMessageID, &sub.UpdatedBy, &updatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	sub.Status = model.Status(status)
	sub.UpdatedAt = time.Unix(updatedAt, 0).UTC()
	return &sub, nil
}

// Upsert inserts the row for userID or merges the non-nil fields into it.
func (s *SQLiteStore) Upsert(ctx context.Context, userID string, fields model.SubmissionFields) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite store: begin: %w", err)
	}
	defer tx.Rollback()

	sub, err := scanSubmission(tx.QueryRowContext(ctx,
		`SELECT `+submissionColumns+` FROM submissions WHERE discord_user_id = ?`, userID))
	if err != nil {
		return fmt.Errorf("sqlite store: read %s: %w", userID, err)
	}
	if sub == nil {
		sub = &model.Submission{UserID: userID}
	}
	sub.Apply(fields, s.now())

	if err := upsertSubmissionInTx(ctx, tx, sub); err != nil {
		return fmt.Errorf("sqlite store: upsert %s: %w", userID, err)
	}
	return tx.Commit()
}

func upsertSubmissionInTx(ctx context.Context, tx *sql.Tx, sub *model.Submission) error {
	query := `
		INSERT INTO submissions (` + submissionColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(discord_user_id) DO UPDATE SET
		discord_name = excluded.discord_name,
		email = excluded.email,
		player_id = excluded.player_id,
		status = excluded.status,
		log_message_id = excluded.log_message_id,
		updated_by = excluded.updated_by,
		updated_at = excluded.updated_at;
	`
	_, err := tx.ExecContext(ctx, query,
		sub.UserID, sub.DisplayName, sub.Email, sub.PlayerID,
		string(sub.Status), sub.LogMessageID, sub.UpdatedBy, sub.UpdatedAt.Unix(),
	)
	return err
}

func (s *SQLiteStore) Remove(ctx context.Context, userID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `DELETE FROM submissions WHERE discord_user_id = ?`, userID)
	if err != nil {
		return false, fmt.Errorf("sqlite store: remove %s: %w", userID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("sqlite store: remove %s: %w", userID, err)
	}
	return n > 0, nil
}

func (s *SQLiteStore) Get(ctx context.Context, userID string) (*model.Submission, error) {
	sub, err := scanSubmission(s.db.QueryRowContext(ctx,
		`SELECT `+submissionColumns+` FROM submissions WHERE discord_user_id = ?`, userID))
	if err != nil {
		return nil, fmt.Errorf("sqlite store: get %s: %w", userID, err)
	}
	return sub, nil
}

func (s *SQLiteStore) LoadConfirmedIDs(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT discord_user_id FROM submissions WHERE status = ? ORDER BY discord_user_id`,
		string(model.StatusConfirmed))
	if err != nil {
		return nil, fmt.Errorf("sqlite store: load confirmed: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("sqlite store: load confirmed: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *SQLiteStore) Export(ctx context.Context) ([]byte, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+submissionColumns+` FROM submissions ORDER BY discord_user_id`)
	if err != nil {
		return nil, fmt.Errorf("sqlite store: export: %w", err)
	}
	defer rows.Close()

	var subs []model.Submission
	for rows.Next() {
		sub, err := scanSubmission(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite store: export: %w", err)
		}
		subs = append(subs, *sub)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite store: export: %w", err)
	}

	var buf bytes.Buffer
	if err := model.WriteTable(&buf, subs); err != nil {
		return nil, fmt.Errorf("sqlite store: export: %w", err)
	}
	return buf.Bytes(), nil
}
