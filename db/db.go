// Package db is the SQLite backend of the submission store.
package db

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const dbDriver = "sqlite3"

// SQLiteStore keeps submissions in a single SQLite table keyed by discord user id.
type SQLiteStore struct {
	db  *sql.DB
	mu  sync.Mutex
	now func() time.Time
}

// Open opens (and creates if needed) the database at path and applies the schema.
func Open(path string) (*SQLiteStore, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("sqlite store: create dir: %w", err)
		}
	}
	conn, err := sql.Open(dbDriver, path)
	if err != nil {
		return nil, fmt.Errorf("sqlite store: open %s: %w", path, err)
	}
	// sqlite allows a single writer; one connection also keeps :memory: databases shared.
	conn.SetMaxOpenConns(1)

	if err := createTables(conn); err != nil {
		conn.Close()
		return nil, err
	}
	log.Printf("[store] sqlite: database %s initialized", path)
	return &SQLiteStore{db: conn, now: time.Now}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
