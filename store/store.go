// Package store persists registration submissions.
//
// Every backend implements Store. Backends report failures as error values
// and never panic, so a storage outage surfaces to callers as a soft failure
// that can be logged without interrupting a running dialogue.
package store

import (
	"context"
	"sort"

	"regbot/model"
)

// Store is the durable table of submissions keyed by user id.
type Store interface {
	// Upsert inserts a row for userID or updates only the non-nil fields of
	// an existing one. updated_at is always refreshed.
	Upsert(ctx context.Context, userID string, fields model.SubmissionFields) error
	// Remove deletes the row for userID and reports whether one existed.
	Remove(ctx context.Context, userID string) (bool, error)
	// Get returns the row for userID, or nil when there is none.
	Get(ctx context.Context, userID string) (*model.Submission, error)
	// LoadConfirmedIDs returns the ids of every confirmed submission.
	LoadConfirmedIDs(ctx context.Context) ([]string, error)
	// Export returns the whole table as CSV with a header row.
	Export(ctx context.Context) ([]byte, error)
	Close() error
}

func confirmedIDs(subs []model.Submission) []string {
	var ids []string
	for i := range subs {
		if subs[i].Confirmed() {
			ids = append(ids, subs[i].UserID)
		}
	}
	return ids
}

func sortByUser(subs []model.Submission) {
	sort.Slice(subs, func(i, j int) bool { return subs[i].UserID < subs[j].UserID })
}
