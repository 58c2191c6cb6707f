// Package cache stores analysis, layout and artifact bytes keyed by content
// hashes.
//
// Three backends implement [Cache]: [NullCache] (caching disabled),
// [FileCache] for the CLI, and [RedisCache] for the server. Keys come from a
// [Keyer] so every backend agrees on them:
//
//	k := cache.NewScopedKeyer(cache.NewDefaultKeyer(), buildinfo.Version+":")
//	key := k.AnalysisKey(cache.Hash(treeJSON), cache.AnalysisKeyOpts{MaxFileSize: 100 << 10})
//	data, hit, err := c.Get(ctx, key)
package cache

import (
	"context"
	"time"
)

// Cache is a byte store with per-entry expiry. A miss is (nil, false, nil);
// errors are reserved for backend failures.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Clearer is implemented by caches that can drop every entry they own.
type Clearer interface {
	Clear(ctx context.Context) (int, error)
}

// Default TTLs per entry kind.
const (
	AnalysisTTL = 24 * time.Hour
	LayoutTTL   = 24 * time.Hour
	ArtifactTTL = 7 * 24 * time.Hour
)
