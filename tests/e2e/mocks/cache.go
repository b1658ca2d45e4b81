package mocks

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/godilite/satisfaction-radar/pkg/cache"
)

// TrackingCache is an in-memory JSON cache that counts calls. It round-trips
// values through JSON the way the redis cache does.
type TrackingCache struct {
	mu       sync.Mutex
	GetCalls int
	SetCalls int
	data     map[string]CacheEntry
}

type CacheEntry struct {
	Value  []byte
	Expiry time.Time
}

func NewTrackingCache() *TrackingCache {
	return &TrackingCache{
		data: make(map[string]CacheEntry),
	}
}

func (c *TrackingCache) Get(ctx context.Context, key string, dest any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.GetCalls++
	if entry, exists := c.data[key]; exists && time.Now().Before(entry.Expiry) {
		return json.Unmarshal(entry.Value, dest)
	}
	return cache.ErrMiss
}

func (c *TrackingCache) Set(ctx context.Context, key string, value any, exp time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.SetCalls++
	c.data[key] = CacheEntry{
		Value:  data,
		Expiry: time.Now().Add(exp),
	}
	return nil
}

// Sets returns SetCalls under the lock; sets happen in the background.
func (c *TrackingCache) Sets() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.SetCalls
}

func (c *TrackingCache) Close() error {
	return nil
}
