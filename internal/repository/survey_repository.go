package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/godilite/satisfaction-radar/internal/repository/models"
	"github.com/godilite/satisfaction-radar/internal/source"
	"github.com/godilite/satisfaction-radar/internal/survey"
)

// dateLayouts are tried in order. Sheets store day/month/year text; the SQL
// mirror and excel date cells may surface ISO or month-first forms.
var dateLayouts = []string{
	"2/1/2006",
	"2/1/2006 15:04:05",
	"2006-01-02",
	time.RFC3339,
	"01-02-06",
}

// SurveyRepository converts raw worksheet rows into typed records. Every call
// reads the source again.
type SurveyRepository struct {
	src source.Source
}

func NewSurveyRepository(src source.Source) *SurveyRepository {
	return &SurveyRepository{src: src}
}

// ListOffices reads the office directory. Rows without a code are skipped and
// the first entry wins when a code repeats.
func (r *SurveyRepository) ListOffices(ctx context.Context, dir survey.Directory) ([]models.Office, error) {
	sheet, err := r.src.Fetch(ctx, dir.Table)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", dir.Table, err)
	}
	if err := requireColumns(dir.Table, sheet, dir.CodeColumn, dir.RegionColumn, dir.CapitalColumn); err != nil {
		return nil, err
	}

	code, region, capital := col(dir.CodeColumn), col(dir.RegionColumn), col(dir.CapitalColumn)
	seen := make(map[string]bool, len(sheet.Rows))
	offices := make([]models.Office, 0, len(sheet.Rows))
	for _, row := range sheet.Rows {
		c := row[code]
		if c == "" || seen[c] {
			continue
		}
		seen[c] = true
		offices = append(offices, models.Office{
			Code:    c,
			Region:  row[region],
			Capital: row[capital],
		})
	}
	return offices, nil
}

// ListResponses reads and types every response row of a dataset.
func (r *SurveyRepository) ListResponses(ctx context.Context, ds survey.Dataset) ([]models.Response, error) {
	sheet, err := r.src.Fetch(ctx, ds.Responses)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", ds.Responses, err)
	}

	required := []string{ds.DateColumn}
	if ds.HasDirectory() {
		required = append(required, ds.OfficeColumn)
	}
	for _, q := range ds.Questions {
		required = append(required, q.Column)
	}
	if err := requireColumns(ds.Responses, sheet, required...); err != nil {
		return nil, err
	}

	out := make([]models.Response, 0, len(sheet.Rows))
	for i, row := range sheet.Rows {
		// header is row 1
		rowNum := i + 2

		date, err := ParseDate(row[col(ds.DateColumn)])
		if err != nil {
			return nil, &SchemaMismatchError{Table: ds.Responses.String(), Column: ds.DateColumn, Row: rowNum, Reason: err.Error()}
		}

		resp := models.Response{
			Row:    rowNum,
			Date:   date,
			Scores: make([]sql.NullFloat64, len(ds.Questions)),
		}
		if ds.HasDirectory() {
			resp.OfficeCode = row[col(ds.OfficeColumn)]
		}

		for j, q := range ds.Questions {
			score, err := parseScore(row[col(q.Column)])
			if err != nil {
				return nil, &SchemaMismatchError{Table: ds.Responses.String(), Column: q.Column, Row: rowNum, Reason: err.Error()}
			}
			resp.Scores[j] = score
		}
		out = append(out, resp)
	}
	return out, nil
}

// ParseDate parses a response date, day first.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

func parseScore(s string) (sql.NullFloat64, error) {
	if s == "" {
		return sql.NullFloat64{}, nil
	}
	v, err := strconv.ParseFloat(strings.Replace(s, ",", ".", 1), 64)
	if err != nil {
		return sql.NullFloat64{}, fmt.Errorf("not a number: %q", s)
	}
	return sql.NullFloat64{Float64: v, Valid: true}, nil
}

func requireColumns(t survey.Table, sheet *source.Sheet, cols ...string) error {
	for _, c := range cols {
		if !sheet.HasColumn(c) {
			return &SchemaMismatchError{Table: t.String(), Column: c}
		}
	}
	return nil
}

func col(name string) string {
	return strings.TrimSpace(name)
}
