// Package ports defines the interfaces between the application layer and its
// adapters.
package ports

import (
	"context"
	"time"
)

// ProviderInfo contains provider metadata
type ProviderInfo struct {
	Name        string
	Description string
	BaseURL     string
}

// Message represents a chat message on the wire
type Message struct {
	Role    string // system, user, assistant
	Content string
}

// CompletionRequest is the input for LLM completion
type CompletionRequest struct {
	ModelID     string
	Messages    []Message
	MaxTokens   int
	Temperature float32
}

// CompletionResponse is the output from LLM completion
type CompletionResponse struct {
	Content      string
	InputTokens  int
	OutputTokens int
	FinishReason string
	ModelUsed    string
	Duration     time.Duration
}

// ProviderPort is the main interface for LLM providers. Implementations
// translate the normalized request into the provider's native chat format,
// preserving message role and order exactly.
type ProviderPort interface {
	Info() ProviderInfo
	ListModels(ctx context.Context) ([]string, error)
	SupportsModel(ctx context.Context, modelID string) (bool, error)
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)
}
