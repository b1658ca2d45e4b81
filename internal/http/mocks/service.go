package mocks

import (
	"context"
	"errors"

	"github.com/godilite/satisfaction-radar/internal/service"
)

// MockReportService is a function-based mock of the UI report service.
type MockReportService struct {
	GenerateFunc   func(ctx context.Context, q service.Query) (*service.Report, error)
	CategoriesFunc func(ctx context.Context, dataset string) ([]string, error)
	DatasetsFunc   func() []string
}

func (m *MockReportService) Generate(ctx context.Context, q service.Query) (*service.Report, error) {
	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, q)
	}
	return nil, errors.New("GenerateFunc not implemented")
}

func (m *MockReportService) Categories(ctx context.Context, dataset string) ([]string, error) {
	if m.CategoriesFunc != nil {
		return m.CategoriesFunc(ctx, dataset)
	}
	return nil, errors.New("CategoriesFunc not implemented")
}

func (m *MockReportService) Datasets() []string {
	if m.DatasetsFunc != nil {
		return m.DatasetsFunc()
	}
	return nil
}
