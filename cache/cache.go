package cache

import (
	"context"
	"time"

	gocache "github.com/Code-Hex/go-generics-cache"
	"golang.org/x/sync/singleflight"
)

// TTL is an expiring key -> value cache with a fetch coordinator. Concurrent
// GetOrFetch calls for the same key share a single fetch; a failed fetch
// caches nothing.
type TTL[V any] struct {
	entries *gocache.Cache[string, V]
	ttl     time.Duration
	group   singleflight.Group
}

func NewTTL[V any](ttl time.Duration) *TTL[V] {
	return &TTL[V]{
		entries: gocache.New[string, V](),
		ttl:     ttl,
	}
}

func (c *TTL[V]) Get(key string) (V, bool) {
	return c.entries.Get(key)
}

func (c *TTL[V]) Set(key string, value V) {
	c.entries.Set(key, value, gocache.WithExpiration(c.ttl))
}

func (c *TTL[V]) Delete(key string) {
	c.entries.Delete(key)
}

// GetOrFetch returns the cached value for key, or runs fetch and caches its
// result for the configured TTL.
func (c *TTL[V]) GetOrFetch(ctx context.Context, key string, fetch func(ctx context.Context) (V, error)) (V, error) {
	if value, ok := c.entries.Get(key); ok {
		return value, nil
	}

	result, err, _ := c.group.Do(key, func() (interface{}, error) {
		if value, ok := c.entries.Get(key); ok {
			return value, nil
		}
		value, err := fetch(ctx)
		if err != nil {
			return nil, err
		}
		c.Set(key, value)
		return value, nil
	})
	if err != nil {
		var zero V
		return zero, err
	}
	return result.(V), nil
}
