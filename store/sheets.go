package store

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log"
	"slices"
	"strings"
	"sync"
	"time"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"regbot/model"
)

// worksheet is the slice of the Sheets API the store needs. Row numbers are
// 1-based like the spreadsheet UI; row 1 is the header.
type worksheet interface {
	rows(ctx context.Context) ([][]string, error)
	update(ctx context.Context, rowNumber int, row []string) error
	append(ctx context.Context, row []string) error
	deleteRow(ctx context.Context, rowNumber int) error
}

// SheetsStore keeps the table in a Google Sheets worksheet, one row per user,
// located by the discord_user_id column.
type SheetsStore struct {
	mu  sync.Mutex
	ws  worksheet
	now func() time.Time
}

// NewSheetsStore authenticates with the service account in cfg and opens the
// configured worksheet, creating it with a header row when it does not exist.
func NewSheetsStore(ctx context.Context, cfg model.SheetsConfig) (*SheetsStore, error) {
	if cfg.SheetID == "" || cfg.SheetName == "" {
		return nil, errors.New("sheets store: sheet_id and sheet_name are required")
	}
	creds, err := sheetsCredentials(cfg)
	if err != nil {
		return nil, err
	}
	svc, err := sheets.NewService(ctx,
		option.WithCredentialsJSON(creds),
		option.WithScopes(sheets.SpreadsheetsScope),
	)
	if err != nil {
		return nil, fmt.Errorf("sheets store: create service: %w", err)
	}
	ws, err := openWorksheet(ctx, svc, cfg.SheetID, cfg.SheetName)
	if err != nil {
		return nil, err
	}
	return newSheetsStore(ctx, ws)
}

func newSheetsStore(ctx context.Context, ws worksheet) (*SheetsStore, error) {
	s := &SheetsStore{ws: ws, now: time.Now}
	rows, err := ws.rows(ctx)
	if err != nil {
		return nil, fmt.Errorf("sheets store: read worksheet: %w", err)
	}
	if len(rows) == 0 {
		if err := ws.append(ctx, model.Columns); err != nil {
			return nil, fmt.Errorf("sheets store: write header: %w", err)
		}
	}
	return s, nil
}

// sheetsCredentials prefers the raw JSON and falls back to base64 encoded JSON.
func sheetsCredentials(cfg model.SheetsConfig) ([]byte, error) {
	if raw := strings.TrimSpace(cfg.CredentialsJSON); raw != "" {
		return []byte(raw), nil
	}
	if enc := strings.TrimSpace(cfg.CredentialsB64); enc != "" {
		data, err := base64.StdEncoding.DecodeString(enc)
		if err != nil {
			return nil, fmt.Errorf("sheets store: decode base64 credentials: %w", err)
		}
		return data, nil
	}
	return nil, errors.New("sheets store: no service account credentials configured")
}

func (s *SheetsStore) Upsert(ctx context.Context, userID string, fields model.SubmissionFields) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	header, subs, err := s.load(ctx)
	if err != nil {
		return err
	}
	if len(header) == 0 {
		header = model.Columns
		if err := s.ws.append(ctx, header); err != nil {
			return fmt.Errorf("sheets store: write header: %w", err)
		}
	} else if full, grown := withAllColumns(header); grown {
		if err := s.ws.update(ctx, 1, full); err != nil {
			return fmt.Errorf("sheets store: extend header: %w", err)
		}
		log.Printf("[store] sheets: extended header from %d to %d columns", len(header), len(full))
		header = full
	}
	if idx := indexOf(subs, userID); idx >= 0 {
		sub := subs[idx]
		sub.Apply(fields, s.now())
		if err := s.ws.update(ctx, idx+2, sub.RowFor(header)); err != nil {
			return fmt.Errorf("sheets store: update %s: %w", userID, err)
		}
		log.Printf("[store] sheets: updated row %d for %s", idx+2, userID)
		return nil
	}

	sub := model.Submission{UserID: userID}
	sub.Apply(fields, s.now())
	if err := s.ws.append(ctx, sub.RowFor(header)); err != nil {
		return fmt.Errorf("sheets store: append %s: %w", userID, err)
	}
	log.Printf("[store] sheets: appended row for %s", userID)
	return nil
}

func (s *SheetsStore) Remove(ctx context.Context, userID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, subs, err := s.load(ctx)
	if err != nil {
		return false, err
	}
	idx := indexOf(subs, userID)
	if idx < 0 {
		return false, nil
	}
	if err := s.ws.deleteRow(ctx, idx+2); err != nil {
		return false, fmt.Errorf("sheets store: delete %s: %w", userID, err)
	}
	return true, nil
}

func (s *SheetsStore) Get(ctx context.Context, userID string) (*model.Submission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, subs, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	if idx := indexOf(subs, userID); idx >= 0 {
		return &subs[idx], nil
	}
	return nil, nil
}

func (s *SheetsStore) LoadConfirmedIDs(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, subs, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	return confirmedIDs(subs), nil
}

func (s *SheetsStore) Export(ctx context.Context) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, subs, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	rows := subs[:0]
	for _, sub := range subs {
		if sub.UserID != "" {
			rows = append(rows, sub)
		}
	}
	var buf bytes.Buffer
	if err := model.WriteTable(&buf, rows); err != nil {
		return nil, fmt.Errorf("sheets store: export: %w", err)
	}
	return buf.Bytes(), nil
}

func (s *SheetsStore) Close() error { return nil }

// load reads the header and the rows below it. Row i of subs lives on sheet
// row i+2; blank rows keep their slot so the numbering stays aligned.
func (s *SheetsStore) load(ctx context.Context) ([]string, []model.Submission, error) {
	rows, err := s.ws.rows(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("sheets store: read worksheet: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil, nil
	}
	header := rows[0]
	subs := make([]model.Submission, 0, len(rows)-1)
	for _, row := range rows[1:] {
		sub, err := model.SubmissionFromRow(header, row)
		if err != nil {
			return nil, nil, fmt.Errorf("sheets store: %w", err)
		}
		subs = append(subs, sub)
	}
	return header, subs, nil
}

// withAllColumns appends the columns header is missing, keeping existing
// positions so rows written under the old header still line up.
func withAllColumns(header []string) ([]string, bool) {
	full := append([]string(nil), header...)
	for _, col := range model.Columns {
		if !slices.Contains(header, col) {
			full = append(full, col)
		}
	}
	return full, len(full) > len(header)
}

// apiWorksheet talks to the Sheets v4 REST API.
type apiWorksheet struct {
	svc           *sheets.Service
	spreadsheetID string
	title         string
	gridID        int64
}

func openWorksheet(ctx context.Context, svc *sheets.Service, spreadsheetID, title string) (*apiWorksheet, error) {
	ss, err := svc.Spreadsheets.Get(spreadsheetID).Fields("sheets.properties").Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("sheets store: open spreadsheet: %w", err)
	}
	for _, sh := range ss.Sheets {
		if sh.Properties != nil && sh.Properties.Title == title {
			return &apiWorksheet{svc: svc, spreadsheetID: spreadsheetID, title: title, gridID: sh.Properties.SheetId}, nil
		}
	}

	resp, err := svc.Spreadsheets.BatchUpdate(spreadsheetID, &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{{
			AddSheet: &sheets.AddSheetRequest{
				Properties: &sheets.SheetProperties{
					Title:          title,
					GridProperties: &sheets.GridProperties{RowCount: 1000, ColumnCount: 12},
				},
			},
		}},
	}).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("sheets store: add worksheet %q: %w", title, err)
	}
	if len(resp.Replies) == 0 || resp.Replies[0].AddSheet == nil {
		return nil, fmt.Errorf("sheets store: add worksheet %q: empty reply", title)
	}
	log.Printf("[store] sheets: created worksheet %q", title)
	return &apiWorksheet{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		title:         title,
		gridID:        resp.Replies[0].AddSheet.Properties.SheetId,
	}, nil
}

func (w *apiWorksheet) a1(cells string) string {
	return "'" + strings.ReplaceAll(w.title, "'", "''") + "'!" + cells
}

func (w *apiWorksheet) rows(ctx context.Context) ([][]string, error) {
	vr, err := w.svc.Spreadsheets.Values.Get(w.spreadsheetID, w.a1("A:Z")).Context(ctx).Do()
	if err != nil {
		return nil, err
	}
	out := make([][]string, len(vr.Values))
	for i, row := range vr.Values {
		out[i] = make([]string, len(row))
		for j, cell := range row {
			out[i][j] = fmt.Sprint(cell)
		}
	}
	return out, nil
}

// update writes row starting at column A; the range grows to fit the values.
func (w *apiWorksheet) update(ctx context.Context, rowNumber int, row []string) error {
	_, err := w.svc.Spreadsheets.Values.Update(w.spreadsheetID,
		w.a1(fmt.Sprintf("A%d", rowNumber)),
		&sheets.ValueRange{Values: [][]interface{}{cells(row)}},
	).ValueInputOption("RAW").Context(ctx).Do()
	return err
}

func (w *apiWorksheet) append(ctx context.Context, row []string) error {
	_, err := w.svc.Spreadsheets.Values.Append(w.spreadsheetID,
		w.a1("A:Z"),
		&sheets.ValueRange{Values: [][]interface{}{cells(row)}},
	).ValueInputOption("RAW").InsertDataOption("INSERT_ROWS").Context(ctx).Do()
	return err
}

func (w *apiWorksheet) deleteRow(ctx context.Context, rowNumber int) error {
	_, err := w.svc.Spreadsheets.BatchUpdate(w.spreadsheetID, &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{{
			DeleteDimension: &sheets.DeleteDimensionRequest{
				Range: &sheets.DimensionRange{
					SheetId:    w.gridID,
					Dimension:  "ROWS",
					StartIndex: int64(rowNumber - 1),
					EndIndex:   int64(rowNumber),
					// the first worksheet has id 0, which omitempty would drop
					ForceSendFields: []string{"SheetId"},
				},
			},
		}},
	}).Context(ctx).Do()
	return err
}

// cells stores values as text so player ids keep their leading zeros.
func cells(row []string) []interface{} {
	out := make([]interface{}, len(row))
	for i, v := range row {
		out[i] = v
	}
	return out
}
