package db

import (
	"database/sql"
	"fmt"
)

// createTables creates the submissions table if it does not exist.
func createTables(conn *sql.DB) error {
	createSubmissionsTableSQL := `
	CREATE TABLE IF NOT EXISTS submissions (
		discord_user_id TEXT PRIMARY KEY,
		discord_name TEXT NOT NULL DEFAULT '',
		email TEXT NOT NULL DEFAULT '',
		player_id TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL DEFAULT '',
		log_message_id TEXT NOT NULL DEFAULT '',
		updated_by TEXT NOT NULL DEFAULT '',
		updated_at INTEGER NOT NULL
	);`
	if _, err := conn.Exec(createSubmissionsTableSQL); err != nil {
		return fmt.Errorf("sqlite store: create submissions table: %w", err)
	}

	createStatusIndexSQL := `CREATE INDEX IF NOT EXISTS idx_submissions_status ON submissions (status);`
	if _, err := conn.Exec(createStatusIndexSQL); err != nil {
		return fmt.Errorf("sqlite store: create status index: %w", err)
	}
	return nil
}
