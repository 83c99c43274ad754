// Package bedrock provides an adapter for Claude models served through the
// AWS Bedrock runtime.
package bedrock

import "time"

// MessageRole represents the role of a message participant. The Bedrock
// Anthropic schema only accepts user and assistant turns in the messages
// array; system content travels in the top-level system field.
type MessageRole string

const (
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
)

// ContentBlock represents a content block in a message.
type ContentBlock struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

// Message represents a single message in the conversation.
type Message struct {
	Role    MessageRole    `json:"role"`
	Content []ContentBlock `json:"content"`
}

// InvokeRequest is the model invocation body for Anthropic models on
// Bedrock.
type InvokeRequest struct {
	AnthropicVersion string    `json:"anthropic_version"`
	Messages         []Message `json:"messages"`
	MaxTokens        int       `json:"max_tokens"`
	System           string    `json:"system,omitempty"`
	Temperature      *float32  `json:"temperature,omitempty"`
	TopP             *float32  `json:"top_p,omitempty"`
	StopSequences    []string  `json:"stop_sequences,omitempty"`
}

// Usage contains token usage information from the response.
type Usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// StreamEventType represents the type of a streamed chunk payload.
type StreamEventType string

const (
	EventMessageStart      StreamEventType = "message_start"
	EventContentBlockStart StreamEventType = "content_block_start"
	EventContentBlockDelta StreamEventType = "content_block_delta"
	EventContentBlockStop  StreamEventType = "content_block_stop"
	EventMessageDelta      StreamEventType = "message_delta"
	EventMessageStop       StreamEventType = "message_stop"
	EventPing              StreamEventType = "ping"
)

// StreamEvent represents one decoded chunk payload from the response stream.
type StreamEvent struct {
	Type         StreamEventType `json:"type"`
	Message      *StreamMessage  `json:"message,omitempty"`
	Index        *int            `json:"index,omitempty"`
	ContentBlock *ContentBlock   `json:"content_block,omitempty"`
	Delta        *StreamDelta    `json:"delta,omitempty"`
	Usage        *Usage          `json:"usage,omitempty"`
}

// StreamMessage carries message metadata from the message_start event.
type StreamMessage struct {
	ID    string      `json:"id"`
	Model string      `json:"model"`
	Role  MessageRole `json:"role"`
	Usage *Usage      `json:"usage,omitempty"`
}

// StreamDelta carries incremental content and stop information.
type StreamDelta struct {
	Type       string `json:"type,omitempty"`
	Text       string `json:"text,omitempty"`
	StopReason string `json:"stop_reason,omitempty"`
}

// AnthropicVersion is the Bedrock-specific Anthropic schema version.
const AnthropicVersion = "bedrock-2023-05-31"

// DefaultModelID is the fixed default text model served by this adapter.
const DefaultModelID = "anthropic.claude-3-sonnet-20240229-v1:0"

// DefaultMaxTokens bounds responses when the caller does not set a limit;
// the Bedrock Anthropic schema requires max_tokens on every request.
const DefaultMaxTokens = 4096

// Config contains configuration for the Bedrock provider.
type Config struct {
	Region  string // AWS region; empty defers to the ambient AWS config
	ModelID string // Fixed model identifier, DefaultModelID when empty
	Timeout time.Duration
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		ModelID: DefaultModelID,
		Timeout: 120 * time.Second,
	}
}

// SupportedModels returns the model identifiers supported by this adapter.
func SupportedModels() []string {
	return []string{
		DefaultModelID,
		"anthropic.claude-3-haiku-20240307-v1:0",
		"anthropic.claude-3-opus-20240229-v1:0",
	}
}
