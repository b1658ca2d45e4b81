package service

import (
	"context"

	"github.com/godilite/satisfaction-radar/internal/render"
	"github.com/godilite/satisfaction-radar/internal/repository/models"
	"github.com/godilite/satisfaction-radar/internal/survey"
)

// SurveyRepository defines the typed reads the aggregator needs.
type SurveyRepository interface {
	ListOffices(ctx context.Context, dir survey.Directory) ([]models.Office, error)
	ListResponses(ctx context.Context, ds survey.Dataset) ([]models.Response, error)
}

// Renderer turns a score vector into a chart.
type Renderer interface {
	Render(in render.Input) (*render.Chart, error)
}
