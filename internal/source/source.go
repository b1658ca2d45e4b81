// Package source reads survey worksheets from the backing store. Every Fetch
// goes to the store; nothing is cached between calls.
package source

import (
	"context"
	"errors"
	"strings"

	"github.com/godilite/satisfaction-radar/internal/survey"
)

var ErrTableNotFound = errors.New("table not found")

// Source fetches all rows of a worksheet.
type Source interface {
	Fetch(ctx context.Context, t survey.Table) (*Sheet, error)
}

// Sheet is a worksheet read as a header plus field-name keyed rows.
// Header names and cell values are trimmed of surrounding whitespace.
type Sheet struct {
	Header []string
	Rows   []map[string]string
}

// HasColumn reports whether the header contains name.
func (s *Sheet) HasColumn(name string) bool {
	name = strings.TrimSpace(name)
	for _, h := range s.Header {
		if h == name {
			return true
		}
	}
	return false
}

// fromGrid turns a row-major grid whose first row is the header into a Sheet.
// Short rows are padded with empty values and fully blank rows are skipped.
func fromGrid(grid [][]string) *Sheet {
	if len(grid) == 0 {
		return &Sheet{}
	}

	header := make([]string, len(grid[0]))
	for i, h := range grid[0] {
		header[i] = strings.TrimSpace(h)
	}

	rows := make([]map[string]string, 0, len(grid)-1)
	for _, line := range grid[1:] {
		row := make(map[string]string, len(header))
		blank := true
		for i, col := range header {
			if col == "" {
				continue
			}
			var v string
			if i < len(line) {
				v = strings.TrimSpace(line[i])
			}
			if v != "" {
				blank = false
			}
			row[col] = v
		}
		if !blank {
			rows = append(rows, row)
		}
	}

	return &Sheet{Header: header, Rows: rows}
}
