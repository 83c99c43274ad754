package cache

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/jbctechsolutions/parley/internal/application/ports"
)

func sampleResponse(content string) *ports.CompletionResponse {
	return &ports.CompletionResponse{
		Content:      content,
		InputTokens:  10,
		OutputTokens: 5,
		FinishReason: "stop",
		ModelUsed:    "gpt-4",
		Duration:     1500 * time.Millisecond,
	}
}

// caches under test share one behavioral contract.
func runCacheContract(t *testing.T, newCache func(t *testing.T, ttl time.Duration) ports.ResponseCachePort) {
	ctx := context.Background()

	t.Run("miss then hit", func(t *testing.T) {
		c := newCache(t, time.Hour)
		defer c.Close()

		if _, found := c.GetResponse(ctx, "fp-1"); found {
			t.Error("expected miss for unknown fingerprint")
		}

		if err := c.SetResponse(ctx, "fp-1", sampleResponse("hello"), 0); err != nil {
			t.Fatalf("SetResponse() error: %v", err)
		}

		got, found := c.GetResponse(ctx, "fp-1")
		if !found {
			t.Fatal("expected hit after set")
		}
		if got.Content != "hello" {
			t.Errorf("Content = %q, want %q", got.Content, "hello")
		}
		if got.ModelUsed != "gpt-4" {
			t.Errorf("ModelUsed = %q, want gpt-4", got.ModelUsed)
		}
		if got.OutputTokens != 5 {
			t.Errorf("OutputTokens = %d, want 5", got.OutputTokens)
		}
	})

	t.Run("expired entry misses", func(t *testing.T) {
		c := newCache(t, time.Hour)
		defer c.Close()

		if err := c.SetResponse(ctx, "fp-exp", sampleResponse("stale"), time.Millisecond); err != nil {
			t.Fatalf("SetResponse() error: %v", err)
		}
		time.Sleep(20 * time.Millisecond)

		if _, found := c.GetResponse(ctx, "fp-exp"); found {
			t.Error("expected expired entry to miss")
		}
	})

	t.Run("replace existing entry", func(t *testing.T) {
		c := newCache(t, time.Hour)
		defer c.Close()

		if err := c.SetResponse(ctx, "fp-2", sampleResponse("old"), 0); err != nil {
			t.Fatalf("SetResponse() error: %v", err)
		}
		if err := c.SetResponse(ctx, "fp-2", sampleResponse("new"), 0); err != nil {
			t.Fatalf("SetResponse() error: %v", err)
		}

		got, found := c.GetResponse(ctx, "fp-2")
		if !found || got.Content != "new" {
			t.Errorf("got %+v, want replaced entry with content 'new'", got)
		}
	})

	t.Run("stats track hits and misses", func(t *testing.T) {
		c := newCache(t, time.Hour)
		defer c.Close()

		c.GetResponse(ctx, "nope")
		c.SetResponse(ctx, "fp-3", sampleResponse("x"), 0)
		c.GetResponse(ctx, "fp-3")

		stats, err := c.Stats(ctx)
		if err != nil {
			t.Fatalf("Stats() error: %v", err)
		}
		if stats.Hits != 1 {
			t.Errorf("Hits = %d, want 1", stats.Hits)
		}
		if stats.Misses != 1 {
			t.Errorf("Misses = %d, want 1", stats.Misses)
		}
		if stats.Entries != 1 {
			t.Errorf("Entries = %d, want 1", stats.Entries)
		}
	})
}

func TestMemoryCache(t *testing.T) {
	runCacheContract(t, func(t *testing.T, ttl time.Duration) ports.ResponseCachePort {
		return NewMemoryCache(ttl)
	})
}

func TestSQLiteCache(t *testing.T) {
	runCacheContract(t, func(t *testing.T, ttl time.Duration) ports.ResponseCachePort {
		c, err := NewSQLiteCache(filepath.Join(t.TempDir(), "cache.db"), ttl)
		if err != nil {
			t.Fatalf("NewSQLiteCache() error: %v", err)
		}
		return c
	})
}

func TestSQLiteCache_Cleanup(t *testing.T) {
	c, err := NewSQLiteCache(filepath.Join(t.TempDir(), "cache.db"), time.Hour)
	if err != nil {
		t.Fatalf("NewSQLiteCache() error: %v", err)
	}
	defer c.Close()

	ctx := context.Background()
	if err := c.SetResponse(ctx, "live", sampleResponse("a"), time.Hour); err != nil {
		t.Fatalf("SetResponse() error: %v", err)
	}
	if err := c.SetResponse(ctx, "dead", sampleResponse("b"), time.Millisecond); err != nil {
		t.Fatalf("SetResponse() error: %v", err)
	}
	time.Sleep(20 * time.Millisecond)

	if err := c.Cleanup(ctx); err != nil {
		t.Fatalf("Cleanup() error: %v", err)
	}

	stats, err := c.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats() error: %v", err)
	}
	if stats.Entries != 1 {
		t.Errorf("Entries = %d, want 1 after cleanup", stats.Entries)
	}
}

func TestFingerprint(t *testing.T) {
	base := ports.CompletionRequest{
		ModelID: "gpt-4",
		Messages: []ports.Message{
			{Role: "user", Content: "hello"},
			{Role: "assistant", Content: "hi"},
		},
		MaxTokens:   5000,
		Temperature: 0,
	}

	t.Run("deterministic", func(t *testing.T) {
		if Fingerprint(base) != Fingerprint(base) {
			t.Error("same request should produce the same fingerprint")
		}
	})

	t.Run("message order matters", func(t *testing.T) {
		reordered := base
		reordered.Messages = []ports.Message{
			{Role: "assistant", Content: "hi"},
			{Role: "user", Content: "hello"},
		}
		if Fingerprint(base) == Fingerprint(reordered) {
			t.Error("reordered messages should produce a different fingerprint")
		}
	})

	t.Run("parameters matter", func(t *testing.T) {
		changed := base
		changed.MaxTokens = 1000
		if Fingerprint(base) == Fingerprint(changed) {
			t.Error("different max tokens should produce a different fingerprint")
		}

		changed = base
		changed.ModelID = "gpt-3.5-turbo"
		if Fingerprint(base) == Fingerprint(changed) {
			t.Error("different model should produce a different fingerprint")
		}
	})

	t.Run("long content still fingerprints", func(t *testing.T) {
		long := base
		long.Messages = []ports.Message{{Role: "user", Content: string(make([]byte, 5000))}}
		if got := Fingerprint(long); len(got) != 64 {
			t.Errorf("fingerprint length = %d, want 64 hex chars", len(got))
		}
	})
}
