package http

import (
	"context"

	"github.com/godilite/satisfaction-radar/internal/service"
)

type ReportService interface {
	Generate(ctx context.Context, q service.Query) (*service.Report, error)
	Categories(ctx context.Context, dataset string) ([]string, error)
	Datasets() []string
}
