package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"
)

type Options struct {
	Driver          string
	DataSource      string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	PingTimeout     time.Duration
	RetryAttempts   int
	RetryDelay      time.Duration
	Logger          *zap.Logger
}

type Option func(*Options)

func WithDriver(driver string) Option {
	return func(o *Options) { o.Driver = driver }
}

func WithDataSource(dsn string) Option {
	return func(o *Options) { o.DataSource = dsn }
}

func WithMaxOpenConns(count int) Option {
	return func(o *Options) { o.MaxOpenConns = count }
}

func WithMaxIdleConns(count int) Option {
	return func(o *Options) { o.MaxIdleConns = count }
}

func WithConnMaxLifetime(duration time.Duration) Option {
	return func(o *Options) { o.ConnMaxLifetime = duration }
}

func WithConnMaxIdleTime(duration time.Duration) Option {
	return func(o *Options) { o.ConnMaxIdleTime = duration }
}

func WithPingTimeout(duration time.Duration) Option {
	return func(o *Options) { o.PingTimeout = duration }
}

func WithRetry(attempts int, delay time.Duration) Option {
	return func(o *Options) {
		o.RetryAttempts = attempts
		o.RetryDelay = delay
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(o *Options) { o.Logger = logger }
}

// New opens a read pool for the survey mirror tables. The pool is only read
// from, so the defaults favour a handful of short-lived connections.
func New(opts ...Option) (*sql.DB, error) {
	options := &Options{
		Driver:          "sqlite3",
		DataSource:      ":memory:",
		MaxOpenConns:    4,
		MaxIdleConns:    2,
		ConnMaxLifetime: 5 * time.Minute,
		ConnMaxIdleTime: 2 * time.Minute,
		PingTimeout:     5 * time.Second,
		RetryAttempts:   3,
		RetryDelay:      time.Second,
	}

	for _, opt := range opts {
		opt(options)
	}

	if options.Driver == "" {
		return nil, fmt.Errorf("database driver cannot be empty")
	}
	if options.DataSource == "" {
		return nil, fmt.Errorf("database data source cannot be empty")
	}
	if options.RetryAttempts < 1 {
		options.RetryAttempts = 1
	}
	logger := options.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	var lastErr error
	for attempt := 1; attempt <= options.RetryAttempts; attempt++ {
		db, err := open(options)
		if err == nil {
			return db, nil
		}
		lastErr = err

		logger.Warn("database connect attempt failed",
			zap.String("driver", options.Driver),
			zap.Int("attempt", attempt),
			zap.Error(err))

		// linear backoff
		if attempt < options.RetryAttempts {
			time.Sleep(time.Duration(attempt) * options.RetryDelay)
		}
	}

	return nil, fmt.Errorf("failed to connect to database after %d attempts: %w", options.RetryAttempts, lastErr)
}

func open(o *Options) (*sql.DB, error) {
	db, err := sql.Open(o.Driver, o.DataSource)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(o.MaxOpenConns)
	db.SetMaxIdleConns(o.MaxIdleConns)
	db.SetConnMaxLifetime(o.ConnMaxLifetime)
	db.SetConnMaxIdleTime(o.ConnMaxIdleTime)

	ctx, cancel := context.WithTimeout(context.Background(), o.PingTimeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}
