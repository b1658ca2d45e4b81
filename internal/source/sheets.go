package source

import (
	"context"
	"fmt"
	"strings"

	"github.com/godilite/satisfaction-radar/internal/survey"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// Sheets reads worksheets from Google Sheets. Workbook names are resolved to
// spreadsheet IDs through a static map supplied by configuration.
type Sheets struct {
	svc *sheets.Service
	ids map[string]string
}

// NewSheets authenticates with a service-account credentials file. The
// credentials are trusted as given.
func NewSheets(ctx context.Context, credentialsFile string, ids map[string]string, opts ...option.ClientOption) (*Sheets, error) {
	opts = append([]option.ClientOption{
		option.WithScopes(sheets.SpreadsheetsReadonlyScope),
	}, opts...)
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	svc, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create sheets client: %w", err)
	}
	return &Sheets{svc: svc, ids: ids}, nil
}

func (s *Sheets) Fetch(ctx context.Context, t survey.Table) (*Sheet, error) {
	id, ok := s.ids[t.Workbook]
	if !ok {
		return nil, fmt.Errorf("%w: no spreadsheet id for workbook %q", ErrTableNotFound, t.Workbook)
	}

	resp, err := s.svc.Spreadsheets.Values.Get(id, sheetRange(t.Sheet)).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("get values %s: %w", t, err)
	}

	grid := make([][]string, len(resp.Values))
	for i, line := range resp.Values {
		grid[i] = make([]string, len(line))
		for j, v := range line {
			grid[i][j] = fmt.Sprint(v)
		}
	}
	return fromGrid(grid), nil
}

// sheetRange quotes a sheet title for A1 notation.
func sheetRange(sheet string) string {
	return "'" + strings.ReplaceAll(sheet, "'", "''") + "'"
}
