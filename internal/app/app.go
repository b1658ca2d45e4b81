package app

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"

	"github.com/godilite/satisfaction-radar/internal/config"
	handler "github.com/godilite/satisfaction-radar/internal/grpc"
	webui "github.com/godilite/satisfaction-radar/internal/http"
	"github.com/godilite/satisfaction-radar/internal/render"
	"github.com/godilite/satisfaction-radar/internal/repository"
	"github.com/godilite/satisfaction-radar/internal/service"
	"github.com/godilite/satisfaction-radar/internal/source"
	"github.com/godilite/satisfaction-radar/internal/survey"
	"github.com/godilite/satisfaction-radar/pkg/cache"
	dbbuilder "github.com/godilite/satisfaction-radar/pkg/database"
	grpcsrv "github.com/godilite/satisfaction-radar/pkg/grpc/server"
)

const shutdownTimeout = 10 * time.Second

type App struct {
	logger     *zap.Logger
	dbPool     *sql.DB
	cache      handler.Cacher
	reports    *service.ReportService
	grpcServer *grpcsrv.Server
	httpServer *webui.Server
}

func NewApp(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	reports, dbPool, err := NewReportService(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	cacheClient, err := newCache(ctx, cfg, logger)
	if err != nil {
		closeDB(dbPool, logger)
		return nil, err
	}

	grpcHandlers := handler.NewGRPCHandlers(reports, cacheClient, logger, cfg.CacheTTL)

	grpcServer, err := grpcsrv.New(
		grpcsrv.WithPort(cfg.GRPCPort),
		grpcsrv.WithLogger(logger),
		grpcsrv.WithLogging(true),
		grpcsrv.WithReflection(cfg.GRPCReflectionEnabled),
	)
	if err != nil {
		closeDB(dbPool, logger)
		_ = cacheClient.Close()
		return nil, fmt.Errorf("failed to create gRPC server: %w", err)
	}

	grpcServer.RegisterServiceWithHealth(handler.ReportServiceName, func(s *grpc.Server) {
		handler.RegisterReportServiceServer(s, grpcHandlers)
	})

	httpServer, err := webui.New(reports,
		webui.WithPort(cfg.HTTPPort),
		webui.WithLogger(logger),
		webui.WithAllowedOrigins(cfg.CORSAllowedOrigins...),
	)
	if err != nil {
		closeDB(dbPool, logger)
		_ = cacheClient.Close()
		return nil, fmt.Errorf("failed to create HTTP server: %w", err)
	}

	logger.Info("application configured",
		zap.String("data_source", cfg.DataSource),
		zap.String("join_scope", cfg.JoinScope.String()),
		zap.Strings("datasets", reports.Datasets()),
		zap.Duration("cache_ttl", cfg.CacheTTL))

	return &App{
		logger:     logger,
		dbPool:     dbPool,
		cache:      cacheClient,
		reports:    reports,
		grpcServer: grpcServer,
		httpServer: httpServer,
	}, nil
}

// NewReportService builds the report pipeline over the configured data
// source. The returned pool is non-nil only for the sql source; the caller
// closes it.
func NewReportService(ctx context.Context, cfg *config.Config, logger *zap.Logger, opts ...render.Option) (*service.ReportService, *sql.DB, error) {
	src, dbPool, err := newSource(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}

	catalog := survey.DefaultCatalog(cfg.JoinScope)
	surveyRepo := repository.NewSurveyRepository(src)
	aggregator := service.NewAggregator(catalog, surveyRepo, logger)
	return service.NewReportService(aggregator, render.NewRadarRenderer(opts...), logger), dbPool, nil
}

func newSource(ctx context.Context, cfg *config.Config, logger *zap.Logger) (source.Source, *sql.DB, error) {
	switch cfg.DataSource {
	case config.SourceSQL:
		dbPool, err := dbbuilder.New(
			dbbuilder.WithDriver(cfg.DBDriver),
			dbbuilder.WithDataSource(cfg.DBPath),
			dbbuilder.WithLogger(logger),
		)
		if err != nil {
			return nil, nil, fmt.Errorf("database init failed: %w", err)
		}
		logger.Info("Database pool initialized", zap.String("driver", cfg.DBDriver))
		return source.NewSQL(dbPool), dbPool, nil

	case config.SourceGSheets:
		sheets, err := source.NewSheets(ctx, cfg.GoogleCredentialsFile, cfg.SpreadsheetIDs)
		if err != nil {
			return nil, nil, fmt.Errorf("google sheets init failed: %w", err)
		}
		logger.Info("Google Sheets client initialized", zap.Int("spreadsheets", len(cfg.SpreadsheetIDs)))
		return sheets, nil, nil

	default:
		logger.Info("Reading workbooks", zap.String("dir", cfg.WorkbookDir))
		return source.NewWorkbooks(cfg.WorkbookDir), nil, nil
	}
}

// newCache connects to redis only when both an address and a positive TTL
// are configured.
func newCache(ctx context.Context, cfg *config.Config, logger *zap.Logger) (handler.Cacher, error) {
	if cfg.RedisAddr == "" || cfg.CacheTTL <= 0 {
		logger.Info("Score cache disabled")
		return cache.Nop{}, nil
	}

	cacheClient, err := cache.New(ctx, cache.WithAddress(cfg.RedisAddr))
	if err != nil {
		return nil, fmt.Errorf("cache init failed: %w", err)
	}
	logger.Info("Cache client initialized", zap.String("addr", cfg.RedisAddr))
	return cacheClient, nil
}

func closeDB(db *sql.DB, logger *zap.Logger) {
	if db == nil {
		return
	}
	if err := db.Close(); err != nil {
		logger.Error("database shutdown error", zap.Error(err))
	}
}

// Reports exposes the report service for in-process callers.
func (a *App) Reports() *service.ReportService {
	return a.reports
}

func (a *App) GRPCAddr() net.Addr { return a.grpcServer.Addr() }

func (a *App) HTTPAddr() net.Addr { return a.httpServer.Addr() }

// Start begins serving gRPC and HTTP and returns immediately.
func (a *App) Start() {
	a.logger.Info("application starting")
	a.grpcServer.Start()
	a.httpServer.Start()
}

// Run starts the application and blocks until a shutdown signal is received.
func (a *App) Run() error {
	a.Start()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	err := a.Shutdown(ctx)
	_ = a.logger.Sync()
	return err
}

// Shutdown stops both servers and releases the data source and cache.
func (a *App) Shutdown(ctx context.Context) error {
	a.logger.Info("application shutting down")

	var firstErr error
	if err := a.httpServer.Shutdown(ctx); err != nil {
		firstErr = err
	}
	if err := a.grpcServer.Shutdown(ctx); err != nil && firstErr == nil {
		firstErr = err
	}

	if err := a.cache.Close(); err != nil {
		a.logger.Error("cache shutdown error", zap.Error(err))
	}
	closeDB(a.dbPool, a.logger)

	if firstErr != nil {
		a.logger.Warn("shutdown completed with errors", zap.Error(firstErr))
		return firstErr
	}
	a.logger.Info("graceful shutdown completed successfully")
	return nil
}
