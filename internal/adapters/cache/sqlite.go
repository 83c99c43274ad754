package cache

import (
	"context"
	"database/sql"
	"sync/atomic"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/jbctechsolutions/parley/internal/application/ports"
)

// SQLiteCache implements ResponseCachePort with a SQLite database so cached
// responses survive restarts.
type SQLiteCache struct {
	db         *sql.DB
	defaultTTL time.Duration

	hits   int64
	misses int64
}

// Ensure SQLiteCache implements ResponseCachePort.
var _ ports.ResponseCachePort = (*SQLiteCache)(nil)

const schema = `
CREATE TABLE IF NOT EXISTS response_cache (
	key              TEXT PRIMARY KEY,
	model_id         TEXT NOT NULL,
	content          TEXT NOT NULL,
	input_tokens     INTEGER NOT NULL DEFAULT 0,
	output_tokens    INTEGER NOT NULL DEFAULT 0,
	finish_reason    TEXT NOT NULL DEFAULT '',
	duration_ns      INTEGER NOT NULL DEFAULT 0,
	hit_count        INTEGER NOT NULL DEFAULT 0,
	created_at       TIMESTAMP NOT NULL,
	expires_at       TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_response_cache_expires ON response_cache(expires_at);
`

// NewSQLiteCache opens (or creates) the cache database at path.
func NewSQLiteCache(path string, defaultTTL time.Duration) (*SQLiteCache, error) {
	if defaultTTL <= 0 {
		defaultTTL = 24 * time.Hour
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLiteCache{db: db, defaultTTL: defaultTTL}, nil
}

// GetResponse retrieves a cached response by request fingerprint.
func (s *SQLiteCache) GetResponse(ctx context.Context, fingerprint string) (*ports.CompletionResponse, bool) {
	row := s.db.QueryRowContext(ctx, `
		SELECT content, input_tokens, output_tokens, finish_reason, model_id, duration_ns
		FROM response_cache
		WHERE key = ? AND expires_at > ?
	`, fingerprint, time.Now())

	var resp ports.CompletionResponse
	var durationNs int64
	err := row.Scan(&resp.Content, &resp.InputTokens, &resp.OutputTokens, &resp.FinishReason, &resp.ModelUsed, &durationNs)
	if err != nil {
		atomic.AddInt64(&s.misses, 1)
		return nil, false
	}
	resp.Duration = time.Duration(durationNs)

	atomic.AddInt64(&s.hits, 1)
	_, _ = s.db.ExecContext(ctx, `UPDATE response_cache SET hit_count = hit_count + 1 WHERE key = ?`, fingerprint)

	return &resp, true
}

// SetResponse caches a response with its request fingerprint, replacing any
// previous entry for the same key.
func (s *SQLiteCache) SetResponse(ctx context.Context, fingerprint string, response *ports.CompletionResponse, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = s.defaultTTL
	}
	now := time.Now()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO response_cache (key, model_id, content, input_tokens, output_tokens, finish_reason, duration_ns, created_at, expires_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			model_id = excluded.model_id,
			content = excluded.content,
			input_tokens = excluded.input_tokens,
			output_tokens = excluded.output_tokens,
			finish_reason = excluded.finish_reason,
			duration_ns = excluded.duration_ns,
			created_at = excluded.created_at,
			expires_at = excluded.expires_at
	`, fingerprint, response.ModelUsed, response.Content, response.InputTokens, response.OutputTokens,
		response.FinishReason, int64(response.Duration), now, now.Add(ttl))
	return err
}

// Stats returns aggregate cache statistics.
func (s *SQLiteCache) Stats(ctx context.Context) (ports.CacheStats, error) {
	var entries int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM response_cache WHERE expires_at > ?`, time.Now()).Scan(&entries)
	if err != nil {
		return ports.CacheStats{}, err
	}

	return ports.CacheStats{
		Hits:    atomic.LoadInt64(&s.hits),
		Misses:  atomic.LoadInt64(&s.misses),
		Entries: entries,
	}, nil
}

// Cleanup removes expired entries.
func (s *SQLiteCache) Cleanup(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM response_cache WHERE expires_at <= ?`, time.Now())
	return err
}

// Close closes the underlying database.
func (s *SQLiteCache) Close() error {
	return s.db.Close()
}
