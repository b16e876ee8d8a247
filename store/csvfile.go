package store

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"regbot/model"
)

// CSVStore keeps the table in a single delimited file.
// The file is rewritten on every mutation, so operations are serialized.
type CSVStore struct {
	mu   sync.Mutex
	path string
	now  func() time.Time
}

// NewCSVStore returns a store backed by the file at path. The file and its
// directory are created on first write.
func NewCSVStore(path string) *CSVStore {
	return &CSVStore{path: path, now: time.Now}
}

func (s *CSVStore) Upsert(ctx context.Context, userID string, fields model.SubmissionFields) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	subs, err := s.read()
	if err != nil {
		return err
	}
	idx := indexOf(subs, userID)
	if idx < 0 {
		subs = append(subs, model.Submission{UserID: userID})
		idx = len(subs) - 1
	}
	subs[idx].Apply(fields, s.now())
	return s.write(subs)
}

func (s *CSVStore) Remove(ctx context.Context, userID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	subs, err := s.read()
	if err != nil {
		return false, err
	}
	idx := indexOf(subs, userID)
	if idx < 0 {
		return false, nil
	}
	subs = append(subs[:idx], subs[idx+1:]...)
	return true, s.write(subs)
}

func (s *CSVStore) Get(ctx context.Context, userID string) (*model.Submission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	subs, err := s.read()
	if err != nil {
		return nil, err
	}
	if idx := indexOf(subs, userID); idx >= 0 {
		return &subs[idx], nil
	}
	return nil, nil
}

func (s *CSVStore) LoadConfirmedIDs(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	subs, err := s.read()
	if err != nil {
		return nil, err
	}
	return confirmedIDs(subs), nil
}

func (s *CSVStore) Export(ctx context.Context) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	subs, err := s.read()
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := model.WriteTable(&buf, subs); err != nil {
		return nil, fmt.Errorf("csv store: export: %w", err)
	}
	return buf.Bytes(), nil
}

func (s *CSVStore) Close() error { return nil }

func (s *CSVStore) read() ([]model.Submission, error) {
	f, err := os.Open(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("csv store: open %s: %w", s.path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	header, err := r.Read()
	if err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("csv store: read header: %w", err)
	}

	var subs []model.Submission
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("csv store: read row: %w", err)
		}
		sub, err := model.SubmissionFromRow(header, row)
		if err != nil {
			return nil, fmt.Errorf("csv store: %w", err)
		}
		if sub.UserID == "" {
			continue
		}
		subs = append(subs, sub)
	}
	return subs, nil
}

// write replaces the file through a temp file and rename.
func (s *CSVStore) write(subs []model.Submission) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("csv store: create dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("csv store: create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := model.WriteTable(tmp, subs); err != nil {
		tmp.Close()
		return fmt.Errorf("csv store: write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("csv store: close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("csv store: replace %s: %w", s.path, err)
	}
	return nil
}

func indexOf(subs []model.Submission, userID string) int {
	for i := range subs {
		if subs[i].UserID == userID {
			return i
		}
	}
	return -1
}
