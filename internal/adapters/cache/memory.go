package cache

import (
	"context"
	"sync"
	"time"

	"github.com/jbctechsolutions/parley/internal/application/ports"
)

// MemoryCache implements ResponseCachePort with an in-process map. Entries
// expire lazily on access.
type MemoryCache struct {
	mu         sync.RWMutex
	entries    map[string]*ports.CacheEntry
	defaultTTL time.Duration

	hits   int64
	misses int64
}

// Ensure MemoryCache implements ResponseCachePort.
var _ ports.ResponseCachePort = (*MemoryCache)(nil)

// NewMemoryCache creates a new in-memory response cache.
func NewMemoryCache(defaultTTL time.Duration) *MemoryCache {
	if defaultTTL <= 0 {
		defaultTTL = 24 * time.Hour
	}
	return &MemoryCache{
		entries:    make(map[string]*ports.CacheEntry),
		defaultTTL: defaultTTL,
	}
}

// GetResponse retrieves a cached response by request fingerprint.
func (m *MemoryCache) GetResponse(ctx context.Context, fingerprint string) (*ports.CompletionResponse, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.entries[fingerprint]
	if !ok || time.Now().After(entry.ExpiresAt) {
		if ok {
			delete(m.entries, fingerprint)
		}
		m.misses++
		return nil, false
	}

	entry.HitCount++
	m.hits++
	return entry.Response, true
}

// SetResponse caches a response with its request fingerprint.
func (m *MemoryCache) SetResponse(ctx context.Context, fingerprint string, response *ports.CompletionResponse, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = m.defaultTTL
	}

	now := time.Now()
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[fingerprint] = &ports.CacheEntry{
		Key:       fingerprint,
		Response:  response,
		ModelID:   response.ModelUsed,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
	return nil
}

// Stats returns aggregate cache statistics.
func (m *MemoryCache) Stats(ctx context.Context) (ports.CacheStats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return ports.CacheStats{
		Hits:    m.hits,
		Misses:  m.misses,
		Entries: int64(len(m.entries)),
	}, nil
}

// Close releases resources. Memory caches have none.
func (m *MemoryCache) Close() error {
	return nil
}
