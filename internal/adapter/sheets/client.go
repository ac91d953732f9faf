// Package sheets is the Google Sheets tabular store.
package sheets

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	gsheets "google.golang.org/api/sheets/v4"

	"github.com/heartmarshall/guildqueue/internal/domain"
)

// Grid size of sheets created by CreateSheet.
const (
	newSheetRows = 1000
	newSheetCols = 40
)

type sheetMeta struct {
	id   int64
	rows int64
	cols int64
}

// Store reads and writes one spreadsheet.
type Store struct {
	srv           *gsheets.Service
	spreadsheetID string
	log           *slog.Logger

	mu   sync.Mutex
	meta map[string]sheetMeta
}

// New authenticates with service-account credentials and returns a Store.
func New(ctx context.Context, log *slog.Logger, spreadsheetID, credentialsJSON string, opts ...option.ClientOption) (*Store, error) {
	all := []option.ClientOption{option.WithScopes(gsheets.SpreadsheetsScope)}
	if credentialsJSON != "" {
		all = append(all, option.WithCredentialsJSON([]byte(credentialsJSON)))
	}
	all = append(all, opts...)

	srv, err := gsheets.NewService(ctx, all...)
	if err != nil {
		return nil, fmt.Errorf("sheets: new service: %w", err)
	}
	return NewWithService(srv, log, spreadsheetID), nil
}

// NewWithService wraps an existing API client.
func NewWithService(srv *gsheets.Service, log *slog.Logger, spreadsheetID string) *Store {
	return &Store{
		srv:           srv,
		spreadsheetID: spreadsheetID,
		log:           log.With("adapter", "sheets"),
		meta:          make(map[string]sheetMeta),
	}
}

// ---------------------------------------------------------------------------
// Tabular store
// ---------------------------------------------------------------------------

// ReadMatrix returns all values of sheet. Returns domain.ErrNotFound when the
// sheet does not exist.
func (s *Store) ReadMatrix(ctx context.Context, sheet string) ([][]string, error) {
	resp, err := s.srv.Spreadsheets.Values.Get(s.spreadsheetID, quote(sheet)).Context(ctx).Do()
	if err != nil {
		return nil, mapError(err, sheet)
	}

	rows := make([][]string, len(resp.Values))
	for i, r := range resp.Values {
		rows[i] = make([]string, len(r))
		for j, v := range r {
			rows[i][j] = fmt.Sprint(v)
		}
	}
	return rows, nil
}

// WriteMatrix replaces the whole content of sheet in a single batchUpdate.
// Cells outside rows are cleared. The sheet is created when absent.
func (s *Store) WriteMatrix(ctx context.Context, sheet string, rows [][]string) error {
	meta, err := s.sheetMeta(ctx, sheet)
	if errors.Is(err, domain.ErrNotFound) {
		if err := s.CreateSheet(ctx, sheet); err != nil && !errors.Is(err, domain.ErrAlreadyExists) {
			return err
		}
		meta, err = s.sheetMeta(ctx, sheet)
	}
	if err != nil {
		return err
	}

	width := 0
	for _, r := range rows {
		width = max(width, len(r))
	}

	var reqs []*gsheets.Request
	if n := int64(len(rows)) - meta.rows; n > 0 {
		reqs = append(reqs, &gsheets.Request{AppendDimension: &gsheets.AppendDimensionRequest{
			SheetId: meta.id, Dimension: "ROWS", Length: n, ForceSendFields: []string{"SheetId"},
		}})
		meta.rows += n
	}
	if n := int64(width) - meta.cols; n > 0 {
		reqs = append(reqs, &gsheets.Request{AppendDimension: &gsheets.AppendDimensionRequest{
			SheetId: meta.id, Dimension: "COLUMNS", Length: n, ForceSendFields: []string{"SheetId"},
		}})
		meta.cols += n
	}
	reqs = append(reqs, &gsheets.Request{UpdateCells: &gsheets.UpdateCellsRequest{
		Range:  &gsheets.GridRange{SheetId: meta.id, ForceSendFields: []string{"SheetId"}},
		Rows:   toRowData(rows),
		Fields: "userEnteredValue",
	}})

	_, err = s.srv.Spreadsheets.BatchUpdate(s.spreadsheetID, &gsheets.BatchUpdateSpreadsheetRequest{
		Requests: reqs,
	}).Context(ctx).Do()
	if err != nil {
		s.forget(sheet)
		return mapError(err, sheet)
	}

	s.mu.Lock()
	s.meta[sheet] = meta
	s.mu.Unlock()
	return nil
}

// ListSheets returns sheet titles in spreadsheet order.
func (s *Store) ListSheets(ctx context.Context) ([]string, error) {
	return s.refresh(ctx)
}

// CreateSheet adds a sheet with a 1000x40 grid.
// Returns domain.ErrAlreadyExists when the title is taken.
func (s *Store) CreateSheet(ctx context.Context, sheet string) error {
	resp, err := s.srv.Spreadsheets.BatchUpdate(s.spreadsheetID, &gsheets.BatchUpdateSpreadsheetRequest{
		Requests: []*gsheets.Request{{AddSheet: &gsheets.AddSheetRequest{
			Properties: &gsheets.SheetProperties{
				Title:          sheet,
				GridProperties: &gsheets.GridProperties{RowCount: newSheetRows, ColumnCount: newSheetCols},
			},
		}}},
	}).Context(ctx).Do()
	if err != nil {
		var gerr *googleapi.Error
		if errors.As(err, &gerr) && gerr.Code == http.StatusBadRequest && strings.Contains(gerr.Message, "already exists") {
			return fmt.Errorf("sheet %s: %w", sheet, domain.ErrAlreadyExists)
		}
		return mapError(err, sheet)
	}

	if len(resp.Replies) > 0 && resp.Replies[0].AddSheet != nil && resp.Replies[0].AddSheet.Properties != nil {
		p := resp.Replies[0].AddSheet.Properties
		s.mu.Lock()
		s.meta[sheet] = sheetMeta{id: p.SheetId, rows: newSheetRows, cols: newSheetCols}
		s.mu.Unlock()
	}
	s.log.InfoContext(ctx, "sheet created", slog.String("sheet", sheet))
	return nil
}

// Ping fetches spreadsheet metadata.
func (s *Store) Ping(ctx context.Context) error {
	_, err := s.refresh(ctx)
	return err
}

// ---------------------------------------------------------------------------
// Log sheet
// ---------------------------------------------------------------------------

// LogSheet appends audit records as rows of a dedicated sheet.
type LogSheet struct {
	store *Store
	sheet string
}

// LogSheet returns an audit sink writing to the named sheet.
func (s *Store) LogSheet(sheet string) *LogSheet {
	return &LogSheet{store: s, sheet: sheet}
}

// Log appends one record: timestamp, member id, nick, action, details.
func (l *LogSheet) Log(ctx context.Context, rec domain.AuditRecord) error {
	row := []any{
		rec.At.UTC().Format("2006-01-02T15:04:05Z"),
		fmt.Sprint(rec.MemberID),
		rec.Nick,
		rec.Action.String(),
		rec.Details,
	}
	_, err := l.store.srv.Spreadsheets.Values.Append(l.store.spreadsheetID, quote(l.sheet), &gsheets.ValueRange{
		Values: [][]any{row},
	}).ValueInputOption("RAW").InsertDataOption("INSERT_ROWS").Context(ctx).Do()
	if err != nil {
		return mapError(err, l.sheet)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func (s *Store) sheetMeta(ctx context.Context, sheet string) (sheetMeta, error) {
	s.mu.Lock()
	m, ok := s.meta[sheet]
	s.mu.Unlock()
	if ok {
		return m, nil
	}

	if _, err := s.refresh(ctx); err != nil {
		return sheetMeta{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok = s.meta[sheet]
	if !ok {
		return sheetMeta{}, fmt.Errorf("sheet %s: %w", sheet, domain.ErrNotFound)
	}
	return m, nil
}

// refresh reloads sheet ids and grid sizes and returns the titles in
// spreadsheet order.
func (s *Store) refresh(ctx context.Context) ([]string, error) {
	resp, err := s.srv.Spreadsheets.Get(s.spreadsheetID).Fields("sheets.properties").Context(ctx).Do()
	if err != nil {
		return nil, mapError(err, "*")
	}

	meta := make(map[string]sheetMeta, len(resp.Sheets))
	names := make([]string, 0, len(resp.Sheets))
	for _, sh := range resp.Sheets {
		p := sh.Properties
		if p == nil {
			continue
		}
		names = append(names, p.Title)
		m := sheetMeta{id: p.SheetId}
		if p.GridProperties != nil {
			m.rows = p.GridProperties.RowCount
			m.cols = p.GridProperties.ColumnCount
		}
		meta[p.Title] = m
	}

	s.mu.Lock()
	s.meta = meta
	s.mu.Unlock()
	return names, nil
}

func (s *Store) forget(sheet string) {
	s.mu.Lock()
	delete(s.meta, sheet)
	s.mu.Unlock()
}

func toRowData(rows [][]string) []*gsheets.RowData {
	out := make([]*gsheets.RowData, len(rows))
	for i, r := range rows {
		cells := make([]*gsheets.CellData, len(r))
		for j, v := range r {
			c := &gsheets.CellData{}
			if v != "" {
				v := v
				c.UserEnteredValue = &gsheets.ExtendedValue{StringValue: &v}
			}
			cells[j] = c
		}
		out[i] = &gsheets.RowData{Values: cells}
	}
	return out
}

// quote builds an A1 range that selects the whole sheet.
func quote(sheet string) string {
	return "'" + strings.ReplaceAll(sheet, "'", "''") + "'"
}

func mapError(err error, sheet string) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		switch {
		case gerr.Code == http.StatusNotFound:
			return fmt.Errorf("sheet %s: %w", sheet, domain.ErrNotFound)
		case gerr.Code == http.StatusBadRequest && strings.Contains(gerr.Message, "Unable to parse range"):
			return fmt.Errorf("sheet %s: %w", sheet, domain.ErrNotFound)
		}
	}
	return fmt.Errorf("sheet %s: %w", sheet, err)
}
