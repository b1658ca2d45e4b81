package mocks

import (
	"context"
	"errors"

	"github.com/godilite/satisfaction-radar/internal/render"
	"github.com/godilite/satisfaction-radar/internal/service"
)

// MockReportService is a mock implementation of the ReportService interface
// for testing the handler layer. It uses function-based mocking for flexibility.
type MockReportService struct {
	ScoresFunc       func(ctx context.Context, q service.Query) (service.ScoreVector, error)
	RenderScoresFunc func(scores service.ScoreVector) (*render.Chart, error)
	CategoriesFunc   func(ctx context.Context, dataset string) ([]string, error)
}

func (m *MockReportService) Scores(ctx context.Context, q service.Query) (service.ScoreVector, error) {
	if m.ScoresFunc != nil {
		return m.ScoresFunc(ctx, q)
	}
	return service.ScoreVector{}, errors.New("ScoresFunc not implemented")
}

func (m *MockReportService) RenderScores(scores service.ScoreVector) (*render.Chart, error) {
	if m.RenderScoresFunc != nil {
		return m.RenderScoresFunc(scores)
	}
	return nil, errors.New("RenderScoresFunc not implemented")
}

func (m *MockReportService) Categories(ctx context.Context, dataset string) ([]string, error) {
	if m.CategoriesFunc != nil {
		return m.CategoriesFunc(ctx, dataset)
	}
	return nil, errors.New("CategoriesFunc not implemented")
}
