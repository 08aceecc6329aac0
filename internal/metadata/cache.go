package metadata

import (
	"context"
	"errors"
	"time"

	"github.com/patrickmn/go-cache"
)

const (
	defaultCacheTTL     = 30 * time.Minute
	defaultCacheCleanup = 10 * time.Minute
)

// Cache memoises provider responses for the life of the process. Misses are
// cached too so repeated queries for an unknown title stay offline.
type Cache struct {
	store *cache.Cache
}

type cachedMiss struct{ err error }

// NewCache returns a cache whose entries expire after ttl.
func NewCache(ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	return &Cache{store: cache.New(ttl, defaultCacheCleanup)}
}

// Len reports the number of live entries.
func (c *Cache) Len() int {
	if c == nil {
		return 0
	}
	return c.store.ItemCount()
}

// Cached returns the value stored under key or computes it with fetch.
// Not-found results are remembered; transient and provider errors are not.
// A nil cache always calls fetch.
func Cached[T any](ctx context.Context, c *Cache, key string, fetch func(context.Context) (T, error)) (T, error) {
	var zero T
	if c == nil {
		return fetch(ctx)
	}
	if raw, ok := c.store.Get(key); ok {
		switch v := raw.(type) {
		case cachedMiss:
			return zero, v.err
		case T:
			return v, nil
		}
	}
	value, err := fetch(ctx)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			c.store.Set(key, cachedMiss{err: err}, cache.DefaultExpiration)
		}
		return zero, err
	}
	c.store.Set(key, value, cache.DefaultExpiration)
	return value, nil
}
