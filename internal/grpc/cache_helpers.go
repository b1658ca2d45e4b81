package grpc

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/godilite/satisfaction-radar/pkg/cache"
)

type FetchFunc[T any] func(ctx context.Context) (T, error)

const defaultSetTimeout = 5 * time.Second

// jitterTTL spreads expirations by up to ±10% so keys written together do
// not expire together.
func jitterTTL(ttl time.Duration) time.Duration {
	spread := int64(ttl / 10)
	if spread <= 0 {
		return ttl
	}
	return ttl + time.Duration(rand.Int63n(2*spread)-spread)
}

func storeInBackground[T any](c Cacher, key string, ttl time.Duration, logger *zap.Logger, v T) {
	go func() {
		setCtx, cancel := context.WithTimeout(context.Background(), defaultSetTimeout)
		defer cancel()

		if err := c.Set(setCtx, key, v, jitterTTL(ttl)); err != nil {
			logger.Warn("cache set failed", zap.String("key", key), zap.Error(err))
			return
		}
		logger.Debug("cache populated", zap.String("key", key))
	}()
}

// FindAndCache reads key from c, falling back to fn on a miss. Concurrent
// misses for one key share a single fn call. A ttl <= 0 bypasses the cache
// but still collapses concurrent calls.
func FindAndCache[T any](
	ctx context.Context,
	c Cacher,
	sf *singleflight.Group,
	key string,
	ttl time.Duration,
	logger *zap.Logger,
	fn FetchFunc[T],
) (T, error) {
	var zero T
	if logger == nil {
		logger = zap.NewNop()
	}

	useCache := c != nil && ttl > 0
	if useCache {
		var cached T
		err := c.Get(ctx, key, &cached)
		switch {
		case err == nil:
			logger.Debug("cache hit", zap.String("key", key))
			return cached, nil
		case cache.IsMiss(err):
			logger.Debug("cache miss", zap.String("key", key))
		default:
			logger.Warn("cache get error (treating as miss)", zap.String("key", key), zap.Error(err))
		}
	}

	v, err, shared := sf.Do(key, func() (any, error) {
		value, err := fn(ctx)
		if err != nil {
			return nil, err
		}
		if useCache {
			storeInBackground(c, key, ttl, logger, value)
		}
		return value, nil
	})
	if err != nil {
		return zero, err
	}

	value, ok := v.(T)
	if !ok {
		logger.Error("singleflight type mismatch", zap.String("key", key))
		return zero, fmt.Errorf("type mismatch for key %q", key)
	}
	if shared {
		logger.Debug("singleflight shared result", zap.String("key", key))
	}
	return value, nil
}
