package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/godilite/satisfaction-radar/internal/render"
)

// ReportService produces the chart and export artifact for a query.
type ReportService struct {
	aggregator *Aggregator
	renderer   Renderer
	logger     *zap.Logger
}

// NewReportService creates a new ReportService instance.
func NewReportService(aggregator *Aggregator, renderer Renderer, logger *zap.Logger) *ReportService {
	if aggregator == nil {
		panic("aggregator must not be nil")
	}
	if renderer == nil {
		panic("renderer must not be nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportService{
		aggregator: aggregator,
		renderer:   renderer,
		logger:     logger,
	}
}

// Scores aggregates without rendering.
func (s *ReportService) Scores(ctx context.Context, q Query) (ScoreVector, error) {
	return s.aggregator.Aggregate(ctx, q)
}

// Generate aggregates q, renders the radar chart and names the export file.
func (s *ReportService) Generate(ctx context.Context, q Query) (*Report, error) {
	q = q.Normalize()

	scores, err := s.aggregator.Aggregate(ctx, q)
	if err != nil {
		return nil, err
	}
	chart, err := s.RenderScores(scores)
	if err != nil {
		return nil, err
	}

	filename := ExportFilename(scores.Dataset, q.Category, q.Month)
	s.logger.Info("report generated",
		zap.String("dataset", scores.Dataset),
		zap.String("file", filename),
		zap.Int("png_bytes", len(chart.PNG)))

	return &Report{
		Query:    q,
		Scores:   scores,
		Chart:    chart,
		Filename: filename,
	}, nil
}

// RenderScores draws an already aggregated score vector with its dataset's
// title and band colors.
func (s *ReportService) RenderScores(scores ScoreVector) (*render.Chart, error) {
	ds, err := s.aggregator.Dataset(scores.Dataset)
	if err != nil {
		return nil, err
	}

	chart, err := s.renderer.Render(render.Input{
		Scores:     scores.Values,
		Labels:     scores.Labels,
		Title:      ds.Title,
		BandColors: ds.BandColors[:],
	})
	if err != nil {
		s.logger.Error("render failed", zap.String("dataset", scores.Dataset), zap.Error(err))
		return nil, fmt.Errorf("render %s: %w", scores.Dataset, err)
	}
	return chart, nil
}

// Categories lists the category filter values for a dataset.
func (s *ReportService) Categories(ctx context.Context, dataset string) ([]string, error) {
	return s.aggregator.Categories(ctx, dataset)
}

// Datasets lists dataset names in display order.
func (s *ReportService) Datasets() []string {
	return s.aggregator.Datasets()
}

// ExportFilename names the PNG export, e.g.
// satisfaction_serviplus_None_month_5.png. An empty category becomes "None"
// and a zero month "all".
func ExportFilename(dataset, category string, month int) string {
	cat := "None"
	if category != "" {
		cat = fileSafe(category)
	}
	period := "all"
	if month != 0 {
		period = fmt.Sprintf("%d", month)
	}
	return fmt.Sprintf("satisfaction_%s_%s_month_%s.png", strings.ToLower(fileSafe(dataset)), cat, period)
}

func fileSafe(s string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}
