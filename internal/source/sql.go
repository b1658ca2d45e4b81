package source

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"unicode"

	"github.com/godilite/satisfaction-radar/internal/survey"
)

// SQL reads worksheets mirrored into database tables, one table per sheet.
type SQL struct {
	db *sql.DB
}

func NewSQL(db *sql.DB) *SQL {
	return &SQL{db: db}
}

// TableName maps a worksheet to its mirror table: workbook and sheet are
// snake-cased and joined by a double underscore, e.g.
// "bd_transporte__satisfaccion_del_cliente".
func TableName(t survey.Table) string {
	return snake(t.Workbook) + "__" + snake(t.Sheet)
}

func snake(s string) string {
	var b strings.Builder
	underscore := false
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			b.WriteRune(r)
			underscore = false
			continue
		}
		if !underscore && b.Len() > 0 {
			b.WriteByte('_')
			underscore = true
		}
	}
	return strings.TrimSuffix(b.String(), "_")
}

func (s *SQL) Fetch(ctx context.Context, t survey.Table) (*Sheet, error) {
	query := `SELECT * FROM "` + TableName(t) + `"`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", t, err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("columns %s: %w", t, err)
	}

	grid := [][]string{cols}
	for rows.Next() {
		vals := make([]sql.NullString, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan %s row: %w", t, err)
		}

		line := make([]string, len(cols))
		for i, v := range vals {
			if v.Valid {
				line[i] = v.String
			}
		}
		grid = append(grid, line)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", t, err)
	}
	return fromGrid(grid), nil
}
