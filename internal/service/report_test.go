package service

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gonum.org/v1/plot/vg"

	"github.com/godilite/satisfaction-radar/internal/render"
	"github.com/godilite/satisfaction-radar/internal/service/mocks"
	"github.com/godilite/satisfaction-radar/internal/survey"
)

func TestNewReportService(t *testing.T) {
	agg := NewAggregator(survey.DefaultCatalog(survey.JoinAlways), &mocks.MockSurveyRepository{}, zap.NewNop())

	assert.Panics(t, func() { NewReportService(nil, &mocks.MockRenderer{}, nil) })
	assert.Panics(t, func() { NewReportService(agg, nil, nil) })
	assert.NotNil(t, NewReportService(agg, &mocks.MockRenderer{}, nil).logger)
}

func TestGenerate(t *testing.T) {
	ctx := context.Background()
	catalog := survey.DefaultCatalog(survey.JoinAlways)

	t.Run("serviplus end to end", func(t *testing.T) {
		repo := serviplusRepo(
			response("101", 3, 5, 4, 3, 2, 1, 4, 3),
			response("102", 20, 5, 2, 3, 4, 3, 2, 1),
			response("101", 9, 3, 1, 1, 1, 1, 1, 1),
		)
		agg := NewAggregator(catalog, repo, zap.NewNop())
		svc := NewReportService(agg, render.NewRadarRenderer(render.WithSize(3*vg.Inch, 3*vg.Inch)), zap.NewNop())

		report, err := svc.Generate(ctx, Query{Dataset: "Serviplus", Category: "Todas", Month: 5})

		require.NoError(t, err)
		assert.Equal(t, "satisfaction_serviplus_None_month_5.png", report.Filename)
		assert.Equal(t, []float64{3, 3, 3, 2, 3, 2}, report.Scores.Values)
		assert.Len(t, report.Scores.Labels, 6)
		assert.True(t, bytes.HasPrefix(report.Chart.PNG, []byte("\x89PNG")))
		assert.Equal(t, "Satisfacción del Cliente Serviplus", report.Chart.Plot.Title.Text)
	})

	t.Run("renderer receives dataset styling", func(t *testing.T) {
		repo := serviplusRepo(response("101", 3, 5, 4, 3, 2, 1, 4, 3))
		renderer := &mocks.MockRenderer{
			RenderFunc: func(in render.Input) (*render.Chart, error) {
				bandColors := survey.Serviplus().BandColors
				assert.Equal(t, bandColors[:], in.BandColors)
				assert.Equal(t, survey.Serviplus().Labels(), in.Labels)
				assert.Equal(t, []float64{4, 3, 2, 1, 4, 3}, in.Scores)
				return &render.Chart{PNG: []byte("png")}, nil
			},
		}
		svc := NewReportService(NewAggregator(catalog, repo, zap.NewNop()), renderer, zap.NewNop())

		report, err := svc.Generate(ctx, Query{Dataset: "Serviplus", Category: "Quito", Month: 5})

		require.NoError(t, err)
		assert.Equal(t, "satisfaction_serviplus_Quito_month_5.png", report.Filename)
	})

	t.Run("no data renders nothing", func(t *testing.T) {
		repo := serviplusRepo(response("101", 3, 3, 4, 3, 2, 1, 4, 3))
		renderer := &mocks.MockRenderer{
			RenderFunc: func(in render.Input) (*render.Chart, error) {
				t.Fatal("renderer must not run without data")
				return nil, nil
			},
		}
		svc := NewReportService(NewAggregator(catalog, repo, zap.NewNop()), renderer, zap.NewNop())

		report, err := svc.Generate(ctx, Query{Dataset: "Serviplus", Month: 5})

		assert.ErrorIs(t, err, ErrNoDataForFilter)
		assert.Nil(t, report)
	})

	t.Run("render failure", func(t *testing.T) {
		repo := serviplusRepo(response("101", 3, 5, 4, 3, 2, 1, 4, 3))
		renderer := &mocks.MockRenderer{
			RenderFunc: func(in render.Input) (*render.Chart, error) {
				return nil, render.ErrInvalidRenderInput
			},
		}
		svc := NewReportService(NewAggregator(catalog, repo, zap.NewNop()), renderer, zap.NewNop())

		_, err := svc.Generate(ctx, Query{Dataset: "Serviplus", Month: 5})

		assert.True(t, errors.Is(err, render.ErrInvalidRenderInput))
	})
}

func TestExportFilename(t *testing.T) {
	cases := []struct {
		dataset  string
		category string
		month    int
		want     string
	}{
		{dataset: "Serviplus", month: 5, want: "satisfaction_serviplus_None_month_5.png"},
		{dataset: "Transporte", month: 1, want: "satisfaction_transporte_None_month_1.png"},
		{dataset: "Serviplus", category: "Santo Domingo", month: 12, want: "satisfaction_serviplus_Santo_Domingo_month_12.png"},
		{dataset: "Serviplus", category: "Quito", want: "satisfaction_serviplus_Quito_month_all.png"},
	}

	for _, tc := range cases {
		t.Run(tc.want, func(t *testing.T) {
			assert.Equal(t, tc.want, ExportFilename(tc.dataset, tc.category, tc.month))
		})
	}
}
