package ports

import (
	"context"
	"time"
)

// CacheEntry represents a cached completion with metadata.
type CacheEntry struct {
	Key       string
	Response  *CompletionResponse
	ModelID   string
	CreatedAt time.Time
	ExpiresAt time.Time
	HitCount  int64
}

// CacheStats holds aggregate cache statistics.
type CacheStats struct {
	Hits    int64
	Misses  int64
	Entries int64
}

// ResponseCachePort caches completion responses keyed by a deterministic
// fingerprint of the request.
type ResponseCachePort interface {
	GetResponse(ctx context.Context, fingerprint string) (*CompletionResponse, bool)
	SetResponse(ctx context.Context, fingerprint string, response *CompletionResponse, ttl time.Duration) error
	Stats(ctx context.Context) (CacheStats, error)
	Close() error
}
