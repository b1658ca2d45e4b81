package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrMiss is returned by Get when the key is absent.
var ErrMiss = redis.Nil

// Cache stores JSON-encoded values in redis under a key prefix.
type Cache struct {
	client *redis.Client
	prefix string
}

type Options struct {
	Address  string
	Password string
	DB       int
	Prefix   string
}

type Option func(*Options)

func WithAddress(addr string) Option {
	return func(o *Options) {
		o.Address = addr
	}
}

func WithPassword(pass string) Option {
	return func(o *Options) {
		o.Password = pass
	}
}

func WithDB(db int) Option {
	return func(o *Options) {
		o.DB = db
	}
}

func WithPrefix(prefix string) Option {
	return func(o *Options) {
		o.Prefix = prefix
	}
}

func New(ctx context.Context, opts ...Option) (*Cache, error) {
	options := &Options{
		Address: "localhost:6379",
		Prefix:  "radar:",
	}

	for _, opt := range opts {
		opt(options)
	}

	client := redis.NewClient(&redis.Options{
		Addr:     options.Address,
		Password: options.Password,
		DB:       options.DB,
	})

	if _, err := client.Ping(ctx).Result(); err != nil {
		_ = client.Close()
		return nil, err
	}

	return NewWithClient(client, options.Prefix), nil
}

// NewWithClient wraps an existing client.
func NewWithClient(client *redis.Client, prefix string) *Cache {
	return &Cache{client: client, prefix: prefix}
}

func (c *Cache) Get(ctx context.Context, key string, dest any) error {
	val, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if err != nil {
		return err
	}
	return json.Unmarshal(val, dest)
}

func (c *Cache) Set(ctx context.Context, key string, value any, expiration time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.prefix+key, data, expiration).Err()
}

func (c *Cache) Close() error {
	return c.client.Close()
}

// IsMiss reports whether err means the key was not cached.
func IsMiss(err error) bool {
	return errors.Is(err, redis.Nil)
}

// Nop is a cache that stores nothing; every Get is a miss.
type Nop struct{}

func (Nop) Get(ctx context.Context, key string, dest any) error { return ErrMiss }

func (Nop) Set(ctx context.Context, key string, value any, expiration time.Duration) error {
	return nil
}

func (Nop) Close() error { return nil }
