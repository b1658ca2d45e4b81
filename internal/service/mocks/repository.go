package mocks

import (
	"context"
	"errors"

	"github.com/godilite/satisfaction-radar/internal/repository/models"
	"github.com/godilite/satisfaction-radar/internal/survey"
)

// MockSurveyRepository is a mock implementation of the SurveyRepository interface
// for testing the service layer.
type MockSurveyRepository struct {
	ListOfficesFunc   func(ctx context.Context, dir survey.Directory) ([]models.Office, error)
	ListResponsesFunc func(ctx context.Context, ds survey.Dataset) ([]models.Response, error)
}

// ListOffices implements the SurveyRepository interface
func (m *MockSurveyRepository) ListOffices(ctx context.Context, dir survey.Directory) ([]models.Office, error) {
	if m.ListOfficesFunc != nil {
		return m.ListOfficesFunc(ctx, dir)
	}
	return nil, errors.New("ListOfficesFunc not implemented")
}

// ListResponses implements the SurveyRepository interface
func (m *MockSurveyRepository) ListResponses(ctx context.Context, ds survey.Dataset) ([]models.Response, error) {
	if m.ListResponsesFunc != nil {
		return m.ListResponsesFunc(ctx, ds)
	}
	return nil, errors.New("ListResponsesFunc not implemented")
}
