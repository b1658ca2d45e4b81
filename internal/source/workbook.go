package source

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/godilite/satisfaction-radar/internal/survey"
	"github.com/xuri/excelize/v2"
)

// Workbooks reads worksheets from .xlsx files in a directory. The workbook
// "BD TRANSPORTE" is read from "<dir>/BD TRANSPORTE.xlsx".
type Workbooks struct {
	dir string
}

func NewWorkbooks(dir string) *Workbooks {
	return &Workbooks{dir: dir}
}

// Path returns the file backing a workbook name.
func (w *Workbooks) Path(workbook string) string {
	return filepath.Join(w.dir, workbook+".xlsx")
}

func (w *Workbooks) Fetch(ctx context.Context, t survey.Table) (*Sheet, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path := w.Path(t.Workbook)
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook %q: %w", path, err)
	}
	defer f.Close()

	idx, err := f.GetSheetIndex(t.Sheet)
	if err != nil {
		return nil, fmt.Errorf("lookup sheet %s: %w", t, err)
	}
	if idx < 0 {
		return nil, fmt.Errorf("%w: %s", ErrTableNotFound, t)
	}

	grid, err := f.GetRows(t.Sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", t, err)
	}
	return fromGrid(grid), nil
}
