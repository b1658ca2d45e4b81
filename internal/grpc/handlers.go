package grpc

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/godilite/satisfaction-radar/internal/render"
	"github.com/godilite/satisfaction-radar/internal/repository"
	"github.com/godilite/satisfaction-radar/internal/service"
)

const defaultGRPCTimeout = 30 * time.Second

type CacheKeyType string

const (
	cacheKeyScores     CacheKeyType = "grpc:scores"
	cacheKeyCategories CacheKeyType = "grpc:categories"
)

type GRPCHandlers struct {
	reports  ReportService
	cache    Cacher
	logger   *zap.Logger
	sfGroup  singleflight.Group
	cacheTTL time.Duration
}

var _ ReportServiceServer = (*GRPCHandlers)(nil)

// NewGRPCHandlers initializes the gRPC handlers. A nil cache or a ttl <= 0
// disables caching.
func NewGRPCHandlers(reports ReportService, cache Cacher, logger *zap.Logger, ttl time.Duration) *GRPCHandlers {
	if reports == nil {
		panic("nil ReportService provided to NewGRPCHandlers")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GRPCHandlers{
		reports:  reports,
		cache:    cache,
		logger:   logger.Named("grpc-handler"),
		cacheTTL: ttl,
	}
}

func parseQuery(req *structpb.Struct) (service.Query, error) {
	fields := req.GetFields()

	var q service.Query
	if v, ok := fields["dataset"]; ok {
		q.Dataset = v.GetStringValue()
	}
	if strings.TrimSpace(q.Dataset) == "" {
		return q, status.Error(codes.InvalidArgument, "dataset is required")
	}
	if v, ok := fields["category"]; ok {
		q.Category = v.GetStringValue()
	}
	if v, ok := fields["month"]; ok {
		if _, isNum := v.GetKind().(*structpb.Value_NumberValue); !isNum {
			return q, status.Error(codes.InvalidArgument, "month must be a number")
		}
		m := v.GetNumberValue()
		if m != math.Trunc(m) {
			return q, status.Error(codes.InvalidArgument, "month must be a whole number")
		}
		q.Month = int(m)
	}
	return q.Normalize(), nil
}

func normalizeKey(prefix CacheKeyType, q service.Query) string {
	return fmt.Sprintf("%s:%s:%s:%d", prefix, strings.ToLower(q.Dataset), q.Category, q.Month)
}

func (s *GRPCHandlers) handleError(ctx context.Context, op string, err error) error {
	switch ctx.Err() {
	case context.Canceled:
		s.logger.Warn("request canceled", zap.String("op", op))
		return status.Error(codes.Canceled, "request canceled")
	case context.DeadlineExceeded:
		s.logger.Warn("request timeout", zap.String("op", op))
		return status.Error(codes.DeadlineExceeded, "request timed out")
	}

	switch {
	case errors.Is(err, service.ErrNoDataForFilter):
		s.logger.Info("no data for filter", zap.String("op", op), zap.Error(err))
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, service.ErrInvalidFilter), errors.Is(err, service.ErrUnknownDataset):
		s.logger.Info("invalid request", zap.String("op", op), zap.Error(err))
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, repository.ErrSchemaMismatch):
		s.logger.Error("schema mismatch", zap.String("op", op), zap.Error(err))
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, service.ErrDataSourceUnavailable):
		s.logger.Error("data source failure", zap.String("op", op), zap.Error(err))
		return status.Error(codes.Unavailable, "data source unavailable")
	case errors.Is(err, render.ErrInvalidRenderInput):
		s.logger.Error("render failure", zap.String("op", op), zap.Error(err))
		return status.Error(codes.Internal, "chart rendering failed")
	default:
		s.logger.Error("unexpected error", zap.String("op", op), zap.Error(err))
		return status.Errorf(codes.Internal, "%s failed: %v", op, err)
	}
}

func (s *GRPCHandlers) scores(ctx context.Context, q service.Query) (service.ScoreVector, error) {
	return FindAndCache(ctx, s.cache, &s.sfGroup, normalizeKey(cacheKeyScores, q), s.cacheTTL, s.logger,
		func(fetchCtx context.Context) (service.ScoreVector, error) {
			return s.reports.Scores(fetchCtx, q)
		})
}

func (s *GRPCHandlers) ComputeScores(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	q, err := parseQuery(req)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultGRPCTimeout)
	defer cancel()

	scores, err := s.scores(ctx, q)
	if err != nil {
		return nil, s.handleError(ctx, "ComputeScores", err)
	}

	labels := make([]any, len(scores.Labels))
	for i, l := range scores.Labels {
		labels[i] = l
	}
	values := make([]any, len(scores.Values))
	for i, v := range scores.Values {
		values[i] = v
	}

	out, err := structpb.NewStruct(map[string]any{
		"dataset":  scores.Dataset,
		"labels":   labels,
		"scores":   values,
		"rows":     scores.Rows,
		"filename": service.ExportFilename(scores.Dataset, q.Category, q.Month),
	})
	if err != nil {
		return nil, s.handleError(ctx, "ComputeScores", err)
	}
	return out, nil
}

// RenderChart returns the PNG bytes; the export file name travels in the
// FilenameHeader response header.
func (s *GRPCHandlers) RenderChart(ctx context.Context, req *structpb.Struct) (*wrapperspb.BytesValue, error) {
	q, err := parseQuery(req)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultGRPCTimeout)
	defer cancel()

	scores, err := s.scores(ctx, q)
	if err != nil {
		return nil, s.handleError(ctx, "RenderChart", err)
	}

	chart, err := s.reports.RenderScores(scores)
	if err != nil {
		return nil, s.handleError(ctx, "RenderChart", err)
	}

	filename := service.ExportFilename(scores.Dataset, q.Category, q.Month)
	if err := grpc.SetHeader(ctx, metadata.Pairs(FilenameHeader, filename)); err != nil {
		// No server stream in ctx (direct calls in tests); the body is still valid.
		s.logger.Debug("set header skipped", zap.Error(err))
	}

	return wrapperspb.Bytes(chart.PNG), nil
}

func (s *GRPCHandlers) ListCategories(ctx context.Context, req *structpb.Struct) (*structpb.ListValue, error) {
	dataset := strings.TrimSpace(req.GetFields()["dataset"].GetStringValue())
	if dataset == "" {
		return nil, status.Error(codes.InvalidArgument, "dataset is required")
	}

	ctx, cancel := context.WithTimeout(ctx, defaultGRPCTimeout)
	defer cancel()

	key := normalizeKey(cacheKeyCategories, service.Query{Dataset: dataset})
	categories, err := FindAndCache(ctx, s.cache, &s.sfGroup, key, s.cacheTTL, s.logger,
		func(fetchCtx context.Context) ([]string, error) {
			return s.reports.Categories(fetchCtx, dataset)
		})
	if err != nil {
		return nil, s.handleError(ctx, "ListCategories", err)
	}

	items := make([]any, len(categories))
	for i, c := range categories {
		items[i] = c
	}
	out, err := structpb.NewList(items)
	if err != nil {
		return nil, s.handleError(ctx, "ListCategories", err)
	}
	return out, nil
}
