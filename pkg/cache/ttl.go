package cache

import (
	"context"
	"time"
)

// TTLCache stores every entry with one fixed TTL, ignoring the per-kind
// defaults callers pass.
type TTLCache struct {
	Cache
	ttl time.Duration
}

// WithTTL wraps c so that Set always uses ttl. A non-positive ttl returns c
// unchanged.
func WithTTL(c Cache, ttl time.Duration) Cache {
	if ttl <= 0 {
		return c
	}
	return &TTLCache{Cache: c, ttl: ttl}
}

func (c *TTLCache) Set(ctx context.Context, key string, data []byte, _ time.Duration) error {
	return c.Cache.Set(ctx, key, data, c.ttl)
}

// Clear forwards to the wrapped cache when it is a [Clearer].
func (c *TTLCache) Clear(ctx context.Context) (int, error) {
	if cl, ok := c.Cache.(Clearer); ok {
		return cl.Clear(ctx)
	}
	return 0, nil
}
