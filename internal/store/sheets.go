package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/iwvelando/str-forecast/pkg/snapshot"
	"github.com/spf13/cast"
	"go.uber.org/zap"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"
)

const defaultSheetRange = "properties!A1:ZZ"

// Sheets keeps the snapshots in a spreadsheet range: a header row of keys
// followed by one row per property. Every change rewrites the whole range.
type Sheets struct {
	mu            sync.Mutex
	service       *sheetsapi.Service
	spreadsheetID string
	sheetRange    string
	logger        *zap.Logger
}

// NewSheets builds a Google Sheets backed store using a service account
// credentials file.
func NewSheets(ctx context.Context, spreadsheetID, credentialsPath, sheetRange string, logger *zap.Logger) (*Sheets, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if spreadsheetID == "" {
		return nil, fmt.Errorf("sheets store requires a spreadsheet id")
	}
	if sheetRange == "" {
		sheetRange = defaultSheetRange
	}

	service, err := sheetsapi.NewService(ctx, option.WithCredentialsFile(credentialsPath), option.WithScopes(sheetsapi.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize sheets client: %w", err)
	}

	return &Sheets{
		service:       service,
		spreadsheetID: spreadsheetID,
		sheetRange:    sheetRange,
		logger:        logger,
	}, nil
}

// Save implements Store.
func (s *Sheets) Save(ctx context.Context, name string, snap snapshot.Snapshot) error {
	name, err := checkName(name)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.read(ctx)
	if err != nil {
		return err
	}
	rows[name] = prepare(name, snap)
	return s.write(ctx, rows)
}

// LoadAll implements Store.
func (s *Sheets) LoadAll(ctx context.Context) ([]snapshot.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.read(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]snapshot.Snapshot, 0, len(rows))
	for _, snap := range rows {
		out = append(out, snap)
	}
	sortByName(out)
	return out, nil
}

// Delete implements Store.
func (s *Sheets) Delete(ctx context.Context, name string) error {
	name, err := checkName(name)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.read(ctx)
	if err != nil {
		return err
	}
	if _, ok := rows[name]; !ok {
		return nil
	}
	delete(rows, name)
	return s.write(ctx, rows)
}

// Close implements Store.
func (s *Sheets) Close(_ context.Context) error {
	return nil
}

func (s *Sheets) read(ctx context.Context) (map[string]snapshot.Snapshot, error) {
	resp, err := s.service.Spreadsheets.Values.Get(s.spreadsheetID, s.sheetRange).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read range %s: %w", s.sheetRange, err)
	}
	return rowsFromValues(resp.Values), nil
}

func (s *Sheets) write(ctx context.Context, rows map[string]snapshot.Snapshot) error {
	if _, err := s.service.Spreadsheets.Values.Clear(s.spreadsheetID, s.sheetRange, &sheetsapi.ClearValuesRequest{}).Context(ctx).Do(); err != nil {
		return fmt.Errorf("clear range %s: %w", s.sheetRange, err)
	}

	payload := &sheetsapi.ValueRange{Values: valuesFromRows(rows)}
	call := s.service.Spreadsheets.Values.Update(s.spreadsheetID, s.sheetRange, payload).
		ValueInputOption("RAW").
		Context(ctx)
	if _, err := call.Do(); err != nil {
		return fmt.Errorf("update range %s: %w", s.sheetRange, err)
	}

	s.logger.Debug("rewrote property sheet",
		zap.String("op", "store.Sheets.write"),
		zap.String("range", s.sheetRange),
		zap.Int("properties", len(rows)),
	)
	return nil
}

// rowsFromValues reads a header row followed by data rows. Cells come back
// from the API as interface values and are coerced to strings.
func rowsFromValues(values [][]interface{}) map[string]snapshot.Snapshot {
	rows := make(map[string]snapshot.Snapshot)
	if len(values) == 0 {
		return rows
	}
	header := make([]string, len(values[0]))
	for i, cell := range values[0] {
		header[i] = cast.ToString(cell)
	}
	for _, record := range values[1:] {
		snap := make(snapshot.Snapshot, len(header))
		for i, key := range header {
			if key == "" {
				continue
			}
			// The API drops trailing empty cells, so a short row still owns
			// every header column.
			snap[key] = ""
			if i < len(record) {
				snap[key] = cast.ToString(record[i])
			}
		}
		if name := snap.Name(); name != "" {
			rows[name] = snap
		}
	}
	return rows
}

func valuesFromRows(rows map[string]snapshot.Snapshot) [][]interface{} {
	snapshots := make([]snapshot.Snapshot, 0, len(rows))
	for _, snap := range rows {
		snapshots = append(snapshots, snap)
	}
	sortByName(snapshots)
	header := headerFor(snapshots)

	values := make([][]interface{}, 0, len(snapshots)+1)
	headerRow := make([]interface{}, len(header))
	for i, key := range header {
		headerRow[i] = key
	}
	values = append(values, headerRow)
	for _, snap := range snapshots {
		row := make([]interface{}, len(header))
		for i, key := range header {
			row[i] = snap[key]
		}
		values = append(values, row)
	}
	return values
}
