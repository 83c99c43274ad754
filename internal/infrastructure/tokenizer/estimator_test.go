package tokenizer

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/jbctechsolutions/parley/internal/infrastructure/logging"
)

func testLogger(buf *bytes.Buffer) *logging.Logger {
	return logging.New(logging.Config{
		Level:  logging.LevelDebug,
		Format: logging.FormatText,
		Output: buf,
	})
}

func TestCount_ClaudeHeuristic(t *testing.T) {
	estimator := NewEstimator(testLogger(&bytes.Buffer{}))
	ctx := context.Background()

	tests := []struct {
		name  string
		text  string
		model string
		want  int
	}{
		{
			name:  "empty string",
			text:  "",
			model: "anthropic.claude-3-sonnet-20240229-v1:0",
			want:  0,
		},
		{
			name:  "shorter than one token floors to zero",
			text:  "abc",
			model: "anthropic.claude-3-sonnet-20240229-v1:0",
			want:  0,
		},
		{
			name:  "exactly one token",
			text:  "abcd",
			model: "anthropic.claude-3-sonnet-20240229-v1:0",
			want:  1,
		},
		{
			name:  "floors rather than rounds",
			text:  "abcdefg",
			model: "anthropic.claude-3-sonnet-20240229-v1:0",
			want:  1,
		},
		{
			name:  "case insensitive model match",
			text:  strings.Repeat("x", 40),
			model: "Anthropic.CLAUDE-3-haiku",
			want:  10,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := estimator.Count(ctx, tt.text, tt.model); got != tt.want {
				t.Errorf("Count(%q, %q) = %d, want %d", tt.text, tt.model, got, tt.want)
			}
		})
	}
}

func TestCount_ExactTokenizer(t *testing.T) {
	estimator := NewEstimator(testLogger(&bytes.Buffer{}))
	ctx := context.Background()

	got := estimator.Count(ctx, "The quick brown fox jumps over the lazy dog.", "gpt-4")
	if got < 8 || got > 15 {
		t.Errorf("Count() = %d, want between 8 and 15", got)
	}

	if got := estimator.Count(ctx, "", "gpt-4"); got != 0 {
		t.Errorf("Count(empty) = %d, want 0", got)
	}
}

func TestCount_CachesEncodingPerModel(t *testing.T) {
	estimator := NewEstimator(testLogger(&bytes.Buffer{}))
	ctx := context.Background()

	first := estimator.Count(ctx, "hello world", "gpt-4")
	second := estimator.Count(ctx, "hello world", "gpt-4")
	if first != second {
		t.Errorf("repeated counts differ: %d vs %d", first, second)
	}

	estimator.mu.RLock()
	defer estimator.mu.RUnlock()
	if _, ok := estimator.encodings["gpt-4"]; !ok {
		t.Error("expected encoding for gpt-4 to be cached")
	}
}

func TestCount_UnknownModelDegradesToZeroWithWarning(t *testing.T) {
	buf := &bytes.Buffer{}
	estimator := NewEstimator(testLogger(buf))

	got := estimator.Count(context.Background(), "some text worth counting", "made-up-model-9000")
	if got != 0 {
		t.Errorf("Count() = %d, want 0 for unknown model", got)
	}
	if !strings.Contains(buf.String(), "made-up-model-9000") {
		t.Error("expected a warning naming the unknown model")
	}
	if !strings.Contains(buf.String(), "WARN") {
		t.Error("expected the fallback to log at warn level")
	}
}

func TestIsClaudeModel(t *testing.T) {
	tests := []struct {
		model string
		want  bool
	}{
		{"anthropic.claude-3-sonnet-20240229-v1:0", true},
		{"Claude-2", true},
		{"gpt-4", false},
		{"gpt-3.5-turbo", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := IsClaudeModel(tt.model); got != tt.want {
			t.Errorf("IsClaudeModel(%q) = %v, want %v", tt.model, got, tt.want)
		}
	}
}
