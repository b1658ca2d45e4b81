package http

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

//go:embed templates/*.html static/*
var assets embed.FS

type Option func(*Options)

type Options struct {
	port           int
	listener       net.Listener
	logger         *zap.Logger
	allowedOrigins []string
}

func WithPort(port int) Option {
	return func(o *Options) {
		o.port = port
	}
}

// WithListener serves on lis instead of listening on the configured port.
func WithListener(lis net.Listener) Option {
	return func(o *Options) {
		o.listener = lis
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(o *Options) {
		o.logger = logger
	}
}

func WithAllowedOrigins(origins ...string) Option {
	return func(o *Options) {
		o.allowedOrigins = origins
	}
}

// Server is the browser-facing report UI.
type Server struct {
	httpServer *http.Server
	lis        net.Listener
	logger     *zap.Logger
}

// New builds the router and binds the listener. Serving starts with Start.
func New(reports ReportService, opts ...Option) (*Server, error) {
	if reports == nil {
		panic("nil ReportService provided to http.New")
	}

	options := &Options{
		port:           8080,
		logger:         zap.NewNop(),
		allowedOrigins: []string{"*"},
	}
	for _, opt := range opts {
		opt(options)
	}
	logger := options.logger
	if logger == nil {
		logger = zap.NewNop()
	}

	router, err := NewRouter(reports, logger, options.allowedOrigins)
	if err != nil {
		return nil, err
	}

	lis := options.listener
	if lis == nil {
		if options.port < 0 || options.port > 65535 {
			return nil, fmt.Errorf("invalid port %d: must be between 0 and 65535", options.port)
		}
		lis, err = net.Listen("tcp", fmt.Sprintf(":%d", options.port))
		if err != nil {
			return nil, fmt.Errorf("failed to listen on port %d: %w", options.port, err)
		}
	}

	return &Server{
		httpServer: &http.Server{
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
			WriteTimeout:      60 * time.Second,
		},
		lis:    lis,
		logger: logger.Named("http-server"),
	}, nil
}

// NewRouter mounts the UI, JSON and static routes.
func NewRouter(reports ReportService, logger *zap.Logger, allowedOrigins []string) (http.Handler, error) {
	tmpl, err := template.ParseFS(assets, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	static, err := fs.Sub(assets, "static")
	if err != nil {
		return nil, fmt.Errorf("static assets: %w", err)
	}

	h := &Handler{
		reports: reports,
		tmpl:    tmpl,
		logger:  logger.Named("http-handler"),
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(logger.Named("http")))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		ExposedHeaders: []string{"Content-Disposition"},
		MaxAge:         300,
	}))

	h.RegisterRoutes(r)
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(static))))

	return r, nil
}

// Start runs the server in a goroutine and returns immediately.
func (s *Server) Start() {
	s.logger.Info("HTTP server starting", zap.String("addr", s.lis.Addr().String()))

	go func() {
		if err := s.httpServer.Serve(s.lis); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("HTTP server failed", zap.Error(err))
		}
	}()
}

// Shutdown drains in-flight requests until ctx expires.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("HTTP server shutting down")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.logger.Warn("forced shutdown due to timeout", zap.Error(err))
		return err
	}
	s.logger.Info("HTTP server stopped")
	return nil
}

// Addr returns the server's listening address.
func (s *Server) Addr() net.Addr {
	return s.lis.Addr()
}
