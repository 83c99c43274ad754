// Package azure provides an adapter for the Azure OpenAI Chat Completions API.
package azure

import "time"

// MessageRole represents the role of a message participant.
type MessageRole string

const (
	RoleSystem    MessageRole = "system"
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
)

// FinishReason indicates why the model stopped generating.
type FinishReason string

const (
	FinishReasonStop          FinishReason = "stop"
	FinishReasonLength        FinishReason = "length"
	FinishReasonContentFilter FinishReason = "content_filter"
)

// Message represents a single message in the chat conversation.
type Message struct {
	Role    MessageRole `json:"role"`
	Content string      `json:"content"`
}

// ChatCompletionRequest is the request body for the Azure OpenAI Chat
// Completions API. The model is selected by the deployment in the URL path,
// not by a body field.
type ChatCompletionRequest struct {
	Messages    []Message `json:"messages"`
	MaxTokens   *int      `json:"max_tokens,omitempty"`
	Temperature *float32  `json:"temperature,omitempty"`
	TopP        *float32  `json:"top_p,omitempty"`
	N           *int      `json:"n,omitempty"`
	Stop        []string  `json:"stop,omitempty"`
	User        string    `json:"user,omitempty"`
}

// ChatCompletionResponse is the response body from the Azure OpenAI Chat
// Completions API.
type ChatCompletionResponse struct {
	ID      string   `json:"id"`
	Object  string   `json:"object"`
	Created int64    `json:"created"`
	Model   string   `json:"model"`
	Choices []Choice `json:"choices"`
	Usage   Usage    `json:"usage"`
}

// Choice represents a single completion choice.
type Choice struct {
	Index        int          `json:"index"`
	Message      Message      `json:"message"`
	FinishReason FinishReason `json:"finish_reason"`
}

// Usage contains token usage information from the response.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// ErrorResponse represents an error from the Azure OpenAI API.
type ErrorResponse struct {
	Error ErrorInfo `json:"error"`
}

// ErrorInfo contains detailed error information.
type ErrorInfo struct {
	Message string `json:"message"`
	Type    string `json:"type,omitempty"`
	Code    string `json:"code,omitempty"`
}

// Config contains configuration for the Azure OpenAI client.
type Config struct {
	Endpoint   string // Resource endpoint, e.g. https://myresource.openai.azure.com
	APIKey     string
	Deployment string // Deployment name selecting the served model
	APIVersion string
	Timeout    time.Duration
}

// DefaultAPIVersion is the Azure OpenAI API version this adapter targets.
const DefaultAPIVersion = "2023-05-15"

// DefaultConfig returns a Config with default values for the given
// credentials and deployment.
func DefaultConfig(endpoint, apiKey, deployment string) Config {
	return Config{
		Endpoint:   endpoint,
		APIKey:     apiKey,
		Deployment: deployment,
		APIVersion: DefaultAPIVersion,
		Timeout:    60 * time.Second,
	}
}

// Deployments the picker offers by default.
const (
	ModelGPT4       = "gpt-4"
	ModelGPT35Turbo = "gpt-3.5-turbo"
	ModelGPT4Turbo  = "gpt-4-turbo"
)

// SupportedModels returns the deployment names supported by this adapter.
func SupportedModels() []string {
	return []string{ModelGPT4, ModelGPT35Turbo, ModelGPT4Turbo}
}
