package model

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"
)

// Columns is the header of the persisted submissions table.
var Columns = []string{
	"discord_user_id",
	"discord_name",
	"email",
	"player_id",
	"status",
	"log_message_id",
	"updated_by",
	"updated_at",
}

// Row renders the submission in Columns order.
func (s *Submission) Row() []string {
	updatedAt := ""
	if !s.UpdatedAt.IsZero() {
		updatedAt = s.UpdatedAt.UTC().Format(time.RFC3339)
	}
	return []string{
		s.UserID,
		s.DisplayName,
		s.Email,
		s.PlayerID,
		string(s.Status),
		s.LogMessageID,
		s.UpdatedBy,
		updatedAt,
	}
}

// SubmissionFromRow maps a row onto a Submission using the given header.
// Unknown columns are ignored and missing ones stay empty, so tables written
// with the three-column layout still load.
func SubmissionFromRow(header, row []string) (Submission, error) {
	var sub Submission
	for i, name := range header {
		if i >= len(row) {
			break
		}
		v := row[i]
		switch name {
		case "discord_user_id":
			sub.UserID = v
		case "discord_name":
			sub.DisplayName = v
		case "email":
			sub.Email = v
		case "player_id":
			sub.PlayerID = v
		case "status":
			sub.Status = Status(v)
		case "log_message_id":
			sub.LogMessageID = v
		case "updated_by":
			sub.UpdatedBy = v
		case "updated_at":
			if v == "" {
				continue
			}
			t, err := parseTimestamp(v)
			if err != nil {
				return sub, fmt.Errorf("row %q: updated_at: %w", sub.UserID, err)
			}
			sub.UpdatedAt = t
		}
	}
	return sub, nil
}

// parseTimestamp accepts RFC 3339 and the naive ISO form the old bot wrote.
func parseTimestamp(v string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02T15:04:05.999999", v)
}

// WriteTable writes the header followed by one row per submission.
func WriteTable(w io.Writer, subs []Submission) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Columns); err != nil {
		return err
	}
	for i := range subs {
		if err := cw.Write(subs[i].Row()); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// RowFor renders the submission in the order of header, leaving unknown columns empty.
func (s *Submission) RowFor(header []string) []string {
	full := s.Row()
	out := make([]string, len(header))
	for i, name := range header {
		for j, col := range Columns {
			if col == name {
				out[i] = full[j]
				break
			}
		}
	}
	return out
}
