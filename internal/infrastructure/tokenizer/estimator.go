// Package tokenizer provides token counting infrastructure using tiktoken.
package tokenizer

import (
	"context"
	"strings"
	"sync"

	"github.com/pkoukk/tiktoken-go"

	"github.com/jbctechsolutions/parley/internal/infrastructure/logging"
)

// Estimator counts tokens per model. Claude models use a characters-per-token
// heuristic because their tokenizer is not publicly available; other models
// use the exact tiktoken encoding. Encodings are cached per model.
type Estimator struct {
	mu        sync.RWMutex
	encodings map[string]*tiktoken.Tiktoken
	logger    *logging.Logger
}

// claudeCharsPerToken approximates Claude tokenization at four characters
// per token, rounded down.
const claudeCharsPerToken = 4

// NewEstimator creates a new token estimator.
func NewEstimator(logger *logging.Logger) *Estimator {
	if logger == nil {
		logger = logging.Default()
	}
	return &Estimator{
		encodings: make(map[string]*tiktoken.Tiktoken),
		logger:    logger,
	}
}

// Count returns the token count of text for the given model. When no exact
// tokenizer exists for the model the count degrades to zero after logging a
// warning; callers treat zero as "unknown", never as an error.
func (e *Estimator) Count(ctx context.Context, text, model string) int {
	if text == "" {
		return 0
	}

	if IsClaudeModel(model) {
		return len(text) / claudeCharsPerToken
	}

	encoding, err := e.encodingFor(model)
	if err != nil {
		logging.LogTokenizerFallback(ctx, e.logger, model, err)
		return 0
	}

	return len(encoding.Encode(text, nil, nil))
}

// IsClaudeModel reports whether the model identifier names a Claude model.
func IsClaudeModel(model string) bool {
	return strings.Contains(strings.ToLower(model), "claude")
}

// encodingFor returns the cached tiktoken encoding for a model, loading it
// on first use.
func (e *Estimator) encodingFor(model string) (*tiktoken.Tiktoken, error) {
	e.mu.RLock()
	encoding, ok := e.encodings[model]
	e.mu.RUnlock()
	if ok {
		return encoding, nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if encoding, ok := e.encodings[model]; ok {
		return encoding, nil
	}

	encoding, err := tiktoken.EncodingForModel(model)
	if err != nil {
		return nil, err
	}
	e.encodings[model] = encoding
	return encoding, nil
}
