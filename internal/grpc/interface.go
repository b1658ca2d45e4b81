package grpc

import (
	"context"
	"time"

	"github.com/godilite/satisfaction-radar/internal/render"
	"github.com/godilite/satisfaction-radar/internal/service"
)

// Cacher defines the interface for cache operations.
type Cacher interface {
	Close() error
	Get(ctx context.Context, key string, dest any) error
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
}

type ReportService interface {
	Scores(ctx context.Context, q service.Query) (service.ScoreVector, error)
	RenderScores(scores service.ScoreVector) (*render.Chart, error)
	Categories(ctx context.Context, dataset string) ([]string, error)
}
