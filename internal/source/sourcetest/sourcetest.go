// Package sourcetest provides fixtures for code that reads survey worksheets.
package sourcetest

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/godilite/satisfaction-radar/internal/source"
	"github.com/godilite/satisfaction-radar/internal/survey"
	"github.com/xuri/excelize/v2"
)

// Memory is an in-memory source.Source. Tables are stored as grids whose
// first row is the header, the same shape a worksheet export has.
type Memory struct {
	mu     sync.Mutex
	tables map[survey.Table][][]string
	calls  map[survey.Table]int

	// Err, when set, is returned by every Fetch.
	Err error
}

func NewMemory() *Memory {
	return &Memory{
		tables: make(map[survey.Table][][]string),
		calls:  make(map[survey.Table]int),
	}
}

// Put replaces a table. header is the first grid row.
func (m *Memory) Put(t survey.Table, header []string, rows ...[]string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	grid := append([][]string{header}, rows...)
	m.tables[t] = grid
}

// Calls returns how many times a table was fetched.
func (m *Memory) Calls(t survey.Table) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[t]
}

func (m *Memory) Fetch(ctx context.Context, t survey.Table) (*source.Sheet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls[t]++

	if m.Err != nil {
		return nil, m.Err
	}
	grid, ok := m.tables[t]
	if !ok {
		return nil, fmt.Errorf("%w: %s", source.ErrTableNotFound, t)
	}

	header := make([]string, len(grid[0]))
	for i, h := range grid[0] {
		header[i] = strings.TrimSpace(h)
	}

	sheet := &source.Sheet{Header: header}
	for _, line := range grid[1:] {
		row := make(map[string]string, len(header))
		for i, col := range header {
			if i < len(line) {
				row[col] = strings.TrimSpace(line[i])
			} else {
				row[col] = ""
			}
		}
		sheet.Rows = append(sheet.Rows, row)
	}
	return sheet, nil
}

// WriteWorkbook saves an .xlsx file named "<workbook>.xlsx" under dir with one
// worksheet per entry in sheets, and returns its path.
func WriteWorkbook(tb testing.TB, dir, workbook string, sheets map[string][][]any) string {
	tb.Helper()

	f := excelize.NewFile()
	defer f.Close()

	first := true
	for name, grid := range sheets {
		if first {
			if err := f.SetSheetName("Sheet1", name); err != nil {
				tb.Fatalf("rename sheet: %v", err)
			}
			first = false
		} else if _, err := f.NewSheet(name); err != nil {
			tb.Fatalf("new sheet %q: %v", name, err)
		}

		for i, line := range grid {
			cell, err := excelize.CoordinatesToCellName(1, i+1)
			if err != nil {
				tb.Fatalf("cell name: %v", err)
			}
			row := line
			if err := f.SetSheetRow(name, cell, &row); err != nil {
				tb.Fatalf("write row %d of %q: %v", i+1, name, err)
			}
		}
	}

	path := filepath.Join(dir, workbook+".xlsx")
	if err := f.SaveAs(path); err != nil {
		tb.Fatalf("save workbook: %v", err)
	}
	return path
}

// WriteSampleWorkbooks writes the two survey workbooks under dir:
//
//   - EVALUACIONES COLECTIVAS: offices A01 (Arequipa) and L01 (Lima); three
//     Serviplus responses, two in May 2024 and one in March 2024.
//   - BD TRANSPORTE: two responses, in March and April 2024.
//
// The May Serviplus means are 3, 3, 3, 3, 3, 3.5.
func WriteSampleWorkbooks(tb testing.TB, dir string) {
	tb.Helper()

	WriteWorkbook(tb, dir, "EVALUACIONES COLECTIVAS", map[string][][]any{
		"AGENCIAS": {
			{"REGIÓN", "CAPITAL", "CODIGO"},
			{"Sur", "Arequipa", "A01"},
			{"Centro", "Lima", "L01"},
		},
		"SATISFACCION CLIENTE": {
			{"FECHA", "OFICINA", "Pregunta 1", "Pregunta 2", "Pregunta 3", "Pregunta 4", "Pregunta 5", "Pregunta 6"},
			{"10/5/2024", "A01", 4, 3, 2, 4, 3, 4},
			{"20/5/2024", "L01", 2, 3, 4, 2, 3, 3},
			{"15/3/2024", "L01", 1, 1, 1, 1, 1, 1},
		},
	})

	WriteWorkbook(tb, dir, "BD TRANSPORTE", map[string][][]any{
		"SATISFACCION DEL CLIENTE": {
			{"FECHA", "Pregunta 1", "Pregunta 2", "Pregunta 3", "Pregunta 4", "Pregunta 5", "Pregunta 6", "Pregunta 7"},
			{"3/3/2024", 4, 4, 3, 3, 2, 4, 4},
			{"18/4/2024", 3, 2, 3, 4, 4, 3, 2},
		},
	})
}
