package source_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"

	dbbuilder "github.com/godilite/satisfaction-radar/pkg/database"

	"github.com/godilite/satisfaction-radar/internal/source"
	"github.com/godilite/satisfaction-radar/internal/source/sourcetest"
	"github.com/godilite/satisfaction-radar/internal/survey"
)

var transporte = survey.Table{Workbook: "BD TRANSPORTE", Sheet: "SATISFACCION DEL CLIENTE"}

func TestWorkbooksFetch(t *testing.T) {
	dir := t.TempDir()
	sourcetest.WriteWorkbook(t, dir, transporte.Workbook, map[string][][]any{
		transporte.Sheet: {
			{"FECHA", "Pregunta 1", "Pregunta 2"},
			{"03/01/2024", 4, 3},
			{"15/02/2024", 2, ""},
		},
	})

	w := source.NewWorkbooks(dir)
	ctx := context.Background()

	t.Run("reads rows", func(t *testing.T) {
		sheet, err := w.Fetch(ctx, transporte)
		require.NoError(t, err)
		assert.Equal(t, []string{"FECHA", "Pregunta 1", "Pregunta 2"}, sheet.Header)
		require.Len(t, sheet.Rows, 2)
		assert.Equal(t, "4", sheet.Rows[0]["Pregunta 1"])
		assert.Equal(t, "", sheet.Rows[1]["Pregunta 2"])
	})

	t.Run("missing sheet", func(t *testing.T) {
		_, err := w.Fetch(ctx, survey.Table{Workbook: transporte.Workbook, Sheet: "OTRA"})
		assert.ErrorIs(t, err, source.ErrTableNotFound)
	})

	t.Run("missing workbook", func(t *testing.T) {
		_, err := w.Fetch(ctx, survey.Table{Workbook: "NOPE", Sheet: "X"})
		assert.Error(t, err)
	})

	t.Run("canceled context", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		_, err := w.Fetch(cctx, transporte)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestTableName(t *testing.T) {
	assert.Equal(t, "bd_transporte__satisfaccion_del_cliente", source.TableName(transporte))
	assert.Equal(t, "evaluaciones_colectivas__agencias", source.TableName(survey.AgenciesDirectory.Table))
	assert.Equal(t, "a_b__c", source.TableName(survey.Table{Workbook: " A - B ", Sheet: "C!"}))
}

func TestSQLFetch(t *testing.T) {
	ctx := context.Background()

	t.Run("sqlite table", func(t *testing.T) {
		db, err := dbbuilder.New(
			dbbuilder.WithDriver("sqlite3"),
			dbbuilder.WithDataSource(":memory:"),
			dbbuilder.WithMaxOpenConns(1),
		)
		require.NoError(t, err)
		defer db.Close()

		_, err = db.Exec(`
			CREATE TABLE "bd_transporte__satisfaccion_del_cliente" (
				"FECHA" TEXT, "Pregunta 1" INTEGER, "Pregunta 2" REAL
			);
			INSERT INTO "bd_transporte__satisfaccion_del_cliente" VALUES
				('03/01/2024', 4, 3.5),
				('15/02/2024', 2, NULL);
		`)
		require.NoError(t, err)

		sheet, err := source.NewSQL(db).Fetch(ctx, transporte)
		require.NoError(t, err)
		assert.Equal(t, []string{"FECHA", "Pregunta 1", "Pregunta 2"}, sheet.Header)
		require.Len(t, sheet.Rows, 2)
		assert.Equal(t, "4", sheet.Rows[0]["Pregunta 1"])
		assert.Equal(t, "3.5", sheet.Rows[0]["Pregunta 2"])
		assert.Equal(t, "", sheet.Rows[1]["Pregunta 2"])
	})

	t.Run("query failure", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`SELECT \* FROM "bd_transporte__satisfaccion_del_cliente"`).
			WillReturnError(errors.New("connection reset"))

		_, err = source.NewSQL(db).Fetch(ctx, transporte)
		assert.ErrorContains(t, err, "connection reset")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("row iteration failure", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		rows := sqlmock.NewRows([]string{"FECHA"}).
			AddRow("03/01/2024").
			RowError(0, errors.New("broken pipe"))
		mock.ExpectQuery(`SELECT`).WillReturnRows(rows)

		_, err = source.NewSQL(db).Fetch(ctx, transporte)
		assert.ErrorContains(t, err, "broken pipe")
	})
}

func TestSheetsFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, "/spreadsheets/sheet-123/values/") {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"range":          "'SATISFACCION DEL CLIENTE'!A1:C3",
			"majorDimension": "ROWS",
			"values": [][]any{
				{"FECHA", "Pregunta 1", "Pregunta 2"},
				{"03/01/2024", "4", "3"},
				{"15/02/2024", "2"},
			},
		})
	}))
	defer srv.Close()

	ctx := context.Background()
	s, err := source.NewSheets(ctx, "", map[string]string{transporte.Workbook: "sheet-123"},
		option.WithEndpoint(srv.URL+"/"),
		option.WithoutAuthentication(),
	)
	require.NoError(t, err)

	t.Run("reads values", func(t *testing.T) {
		sheet, err := s.Fetch(ctx, transporte)
		require.NoError(t, err)
		require.Len(t, sheet.Rows, 2)
		assert.Equal(t, "3", sheet.Rows[0]["Pregunta 2"])
		assert.Equal(t, "", sheet.Rows[1]["Pregunta 2"])
	})

	t.Run("unknown workbook", func(t *testing.T) {
		_, err := s.Fetch(ctx, survey.Table{Workbook: "OTHER", Sheet: "X"})
		assert.ErrorIs(t, err, source.ErrTableNotFound)
	})
}
