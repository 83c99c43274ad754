package azure

import (
	"context"
	"slices"
	"time"

	"github.com/jbctechsolutions/parley/internal/application/ports"
	"github.com/jbctechsolutions/parley/internal/domain/errors"
)

// Provider implements the ports.ProviderPort interface for Azure OpenAI.
type Provider struct {
	client *Client
	config Config
}

// Ensure Provider implements ProviderPort at compile time.
var _ ports.ProviderPort = (*Provider)(nil)

// Name is the registry name for this provider.
const Name = "azure"

// NewProvider creates a new Azure OpenAI provider with the given
// configuration. Missing endpoint, API key, or deployment is a
// missing-credentials condition; no usable client is returned and the caller
// is expected to report the failure and skip the provider.
func NewProvider(config Config) (*Provider, error) {
	if config.Endpoint == "" {
		return nil, errors.NewError(errors.CodeConfig, "azure endpoint not set", errors.ErrMissingCredentials)
	}
	if config.APIKey == "" {
		return nil, errors.NewError(errors.CodeConfig, "azure API key not set", errors.ErrMissingCredentials)
	}
	if config.Deployment == "" {
		return nil, errors.NewError(errors.CodeConfig, "azure deployment not set", errors.ErrMissingCredentials)
	}

	return &Provider{
		client: NewClient(config),
		config: config,
	}, nil
}

// Info returns metadata about this provider.
func (p *Provider) Info() ports.ProviderInfo {
	return ports.ProviderInfo{
		Name:        Name,
		Description: "Azure OpenAI chat completions for GPT deployments",
		BaseURL:     p.config.Endpoint,
	}
}

// ListModels returns the deployment names the picker offers.
func (p *Provider) ListModels(ctx context.Context) ([]string, error) {
	return SupportedModels(), nil
}

// SupportsModel checks if this provider supports the given model.
// The configured deployment is always supported in addition to the
// well-known deployment names.
func (p *Provider) SupportsModel(ctx context.Context, modelID string) (bool, error) {
	if modelID == p.config.Deployment {
		return true, nil
	}
	return slices.Contains(SupportedModels(), modelID), nil
}

// Complete sends a completion request and returns the response.
func (p *Provider) Complete(ctx context.Context, req ports.CompletionRequest) (*ports.CompletionResponse, error) {
	startTime := time.Now()

	deployment := req.ModelID
	if deployment == "" {
		deployment = p.config.Deployment
	}

	resp, err := p.client.Chat(ctx, deployment, p.buildRequest(req))
	if err != nil {
		return nil, err
	}

	return p.buildResponse(resp, startTime), nil
}

// buildRequest converts a ports.CompletionRequest to an Azure
// ChatCompletionRequest, preserving message role and order exactly.
func (p *Provider) buildRequest(req ports.CompletionRequest) *ChatCompletionRequest {
	messages := make([]Message, 0, len(req.Messages))
	for _, msg := range req.Messages {
		messages = append(messages, Message{
			Role:    MessageRole(msg.Role),
			Content: msg.Content,
		})
	}

	azureReq := &ChatCompletionRequest{
		Messages: messages,
	}
	if req.MaxTokens > 0 {
		azureReq.MaxTokens = &req.MaxTokens
	}
	// Temperature zero is meaningful here (deterministic sampling), so it is
	// always sent rather than treated as unset.
	azureReq.Temperature = &req.Temperature

	return azureReq
}

// buildResponse converts an Azure ChatCompletionResponse to a
// ports.CompletionResponse, keeping only the top choice.
func (p *Provider) buildResponse(resp *ChatCompletionResponse, startTime time.Time) *ports.CompletionResponse {
	var content string
	var finishReason string

	if len(resp.Choices) > 0 {
		content = resp.Choices[0].Message.Content
		finishReason = string(resp.Choices[0].FinishReason)
	}

	return &ports.CompletionResponse{
		Content:      content,
		InputTokens:  resp.Usage.PromptTokens,
		OutputTokens: resp.Usage.CompletionTokens,
		FinishReason: finishReason,
		ModelUsed:    resp.Model,
		Duration:     time.Since(startTime),
	}
}
