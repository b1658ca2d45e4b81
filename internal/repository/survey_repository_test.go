package repository_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/godilite/satisfaction-radar/internal/repository"
	"github.com/godilite/satisfaction-radar/internal/source"
	"github.com/godilite/satisfaction-radar/internal/source/sourcetest"
	"github.com/godilite/satisfaction-radar/internal/survey"
)

var serviplusHeader = []string{"OFICINA", "FECHA", "Pregunta 1", "Pregunta 2", "Pregunta 3 ", "Pregunta 4", "Pregunta 5", "Pregunta 6"}

func TestListOffices(t *testing.T) {
	ctx := context.Background()
	dir := survey.AgenciesDirectory

	t.Run("typed rows", func(t *testing.T) {
		src := sourcetest.NewMemory()
		src.Put(dir.Table, []string{"REGIÓN", "CAPITAL", "CODIGO"},
			[]string{"Norte", "Quito", "101"},
			[]string{"Sur", "Cuenca", "102"},
			[]string{"Sur", "Loja", ""},
			[]string{"Este", "Tena", "101"},
		)

		offices, err := repository.NewSurveyRepository(src).ListOffices(ctx, dir)
		require.NoError(t, err)
		require.Len(t, offices, 2)
		assert.Equal(t, "Quito", offices[0].Capital)
		assert.Equal(t, "Norte", offices[0].Region)
		assert.Equal(t, "102", offices[1].Code)
	})

	t.Run("missing column", func(t *testing.T) {
		src := sourcetest.NewMemory()
		src.Put(dir.Table, []string{"REGIÓN", "CODIGO"}, []string{"Norte", "101"})

		_, err := repository.NewSurveyRepository(src).ListOffices(ctx, dir)
		assert.ErrorIs(t, err, repository.ErrSchemaMismatch)

		var sm *repository.SchemaMismatchError
		require.True(t, errors.As(err, &sm))
		assert.Equal(t, "CAPITAL", sm.Column)
		assert.Equal(t, 0, sm.Row)
	})

	t.Run("source failure", func(t *testing.T) {
		src := sourcetest.NewMemory()
		src.Err = errors.New("quota exceeded")

		_, err := repository.NewSurveyRepository(src).ListOffices(ctx, dir)
		assert.ErrorContains(t, err, "quota exceeded")
		assert.NotErrorIs(t, err, repository.ErrSchemaMismatch)
	})
}

func TestListResponses(t *testing.T) {
	ctx := context.Background()
	ds := survey.Serviplus()

	t.Run("typed rows with missing scores", func(t *testing.T) {
		src := sourcetest.NewMemory()
		src.Put(ds.Responses, serviplusHeader,
			[]string{"101", "05/05/2024", "4", "3", "2", "1", "4", "3"},
			[]string{"102", "7/5/2024", "3,5", "", "2", "1", "4", "3"},
		)

		rows, err := repository.NewSurveyRepository(src).ListResponses(ctx, ds)
		require.NoError(t, err)
		require.Len(t, rows, 2)

		assert.Equal(t, "101", rows[0].OfficeCode)
		assert.Equal(t, time.May, rows[0].Date.Month())
		assert.Equal(t, 5, rows[0].Date.Day())
		assert.Equal(t, 2, rows[0].Row)
		require.Len(t, rows[0].Scores, 6)
		assert.Equal(t, 2.0, rows[0].Scores[2].Float64)

		assert.Equal(t, 3.5, rows[1].Scores[0].Float64)
		assert.False(t, rows[1].Scores[1].Valid)
	})

	t.Run("missing question column", func(t *testing.T) {
		src := sourcetest.NewMemory()
		src.Put(ds.Responses, serviplusHeader[:7], []string{"101", "05/05/2024", "4", "3", "2", "1", "4"})

		_, err := repository.NewSurveyRepository(src).ListResponses(ctx, ds)
		var sm *repository.SchemaMismatchError
		require.ErrorAs(t, err, &sm)
		assert.Equal(t, "Pregunta 6", sm.Column)
	})

	t.Run("office column only required with directory", func(t *testing.T) {
		tr := survey.Transporte()
		src := sourcetest.NewMemory()
		src.Put(tr.Responses,
			[]string{"FECHA", "Pregunta 1", "Pregunta 2", "Pregunta 3", "Pregunta 4", "Pregunta 5", "Pregunta 6", "Pregunta 7"},
			[]string{"2024-01-03", "1", "2", "3", "4", "1", "2", "3"},
		)

		rows, err := repository.NewSurveyRepository(src).ListResponses(ctx, tr)
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Empty(t, rows[0].OfficeCode)
		assert.Len(t, rows[0].Scores, 7)
	})

	t.Run("non numeric score", func(t *testing.T) {
		src := sourcetest.NewMemory()
		src.Put(ds.Responses, serviplusHeader, []string{"101", "05/05/2024", "4", "bueno", "2", "1", "4", "3"})

		_, err := repository.NewSurveyRepository(src).ListResponses(ctx, ds)
		var sm *repository.SchemaMismatchError
		require.ErrorAs(t, err, &sm)
		assert.Equal(t, "Pregunta 2", sm.Column)
		assert.Equal(t, 2, sm.Row)
		assert.Contains(t, sm.Error(), "bueno")
	})

	t.Run("bad date", func(t *testing.T) {
		src := sourcetest.NewMemory()
		src.Put(ds.Responses, serviplusHeader, []string{"101", "mayo", "4", "3", "2", "1", "4", "3"})

		_, err := repository.NewSurveyRepository(src).ListResponses(ctx, ds)
		assert.ErrorIs(t, err, repository.ErrSchemaMismatch)
	})

	t.Run("missing table", func(t *testing.T) {
		_, err := repository.NewSurveyRepository(sourcetest.NewMemory()).ListResponses(ctx, ds)
		assert.ErrorIs(t, err, source.ErrTableNotFound)
	})
}

func TestParseDate(t *testing.T) {
	cases := []struct {
		in    string
		month time.Month
		day   int
	}{
		{in: "05/03/2024", month: time.March, day: 5},
		{in: "5/3/2024", month: time.March, day: 5},
		{in: "31/12/2023 10:30:00", month: time.December, day: 31},
		{in: "2024-07-09", month: time.July, day: 9},
		{in: "2024-07-09T00:00:00Z", month: time.July, day: 9},
	}

	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			d, err := repository.ParseDate(tc.in)
			require.NoError(t, err)
			assert.Equal(t, tc.month, d.Month())
			assert.Equal(t, tc.day, d.Day())
		})
	}

	_, err := repository.ParseDate("")
	assert.Error(t, err)
	_, err = repository.ParseDate("13/13/2024")
	assert.Error(t, err)
}
