package model

import "time"

// Status is the lifecycle state of a Submission.
type Status string

const (
	// StatusPending is held in memory while a dialogue runs; it is never persisted.
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusReset     Status = "reset"
)

// Submission is one user's registration record.
type Submission struct {
	UserID       string
	DisplayName  string
	Email        string
	PlayerID     string
	Status       Status
	LogMessageID string
	UpdatedBy    string
	UpdatedAt    time.Time
}

// SubmissionFields is a partial update. Nil fields are left unchanged.
type SubmissionFields struct {
	DisplayName  *string
	Email        *string
	PlayerID     *string
	Status       *Status
	LogMessageID *string
	UpdatedBy    *string
}

// Apply merges f into s and stamps UpdatedAt with now.
func (s *Submission) Apply(f SubmissionFields, now time.Time) {
	if f.DisplayName != nil {
		s.DisplayName = *f.DisplayName
	}
	if f.Email != nil {
		s.Email = *f.Email
	}
	if f.PlayerID != nil {
		s.PlayerID = *f.PlayerID
	}
	if f.Status != nil {
		s.Status = *f.Status
	}
	if f.LogMessageID != nil {
		s.LogMessageID = *f.LogMessageID
	}
	if f.UpdatedBy != nil {
		s.UpdatedBy = *f.UpdatedBy
	}
	s.UpdatedAt = now.UTC()
}

// Confirmed reports whether the submission counts towards the already-submitted set.
func (s *Submission) Confirmed() bool {
	return s.Status == StatusConfirmed
}

// Ptr returns a pointer to v. It keeps SubmissionFields literals short.
func Ptr[T any](v T) *T {
	return &v
}
