package bedrock

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"

	"github.com/jbctechsolutions/parley/internal/application/ports"
	"github.com/jbctechsolutions/parley/internal/domain/errors"
)

// Name is the registry name of this provider.
const Name = "bedrock"

// streamReader is the event stream surface the provider consumes. The
// SDK's response event stream satisfies it.
type streamReader interface {
	Events() <-chan types.ResponseStream
	Close() error
	Err() error
}

// runtimeClient is the subset of the Bedrock runtime API the provider
// needs, with the response narrowed to its event stream so tests can
// substitute a canned one.
type runtimeClient interface {
	InvokeStream(ctx context.Context, params *bedrockruntime.InvokeModelWithResponseStreamInput) (streamReader, error)
}

// sdkClient adapts the concrete Bedrock runtime client to runtimeClient.
type sdkClient struct {
	client *bedrockruntime.Client
}

func (c *sdkClient) InvokeStream(ctx context.Context, params *bedrockruntime.InvokeModelWithResponseStreamInput) (streamReader, error) {
	out, err := c.client.InvokeModelWithResponseStream(ctx, params)
	if err != nil {
		return nil, err
	}
	return out.GetStream(), nil
}

// Provider implements the ProviderPort for Claude models on AWS Bedrock.
type Provider struct {
	client runtimeClient
	config Config
}

// Ensure Provider implements ports.ProviderPort.
var _ ports.ProviderPort = (*Provider)(nil)

// NewProvider creates a Bedrock provider using ambient AWS credentials
// (environment, shared config, or instance role).
func NewProvider(ctx context.Context, config Config) (*Provider, error) {
	if config.ModelID == "" {
		config.ModelID = DefaultModelID
	}

	var opts []func(*awsconfig.LoadOptions) error
	if config.Region != "" {
		opts = append(opts, awsconfig.WithRegion(config.Region))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, errors.NewError(errors.CodeConfig, "loading AWS configuration for bedrock", fmt.Errorf("%w: %v", errors.ErrClientInit, err))
	}
	if awsCfg.Region == "" {
		return nil, errors.NewError(errors.CodeConfig, "bedrock requires an AWS region", errors.ErrMissingCredentials)
	}

	return &Provider{
		client: &sdkClient{client: bedrockruntime.NewFromConfig(awsCfg)},
		config: config,
	}, nil
}

// NewProviderWithClient creates a provider backed by an existing runtime
// client.
func NewProviderWithClient(client runtimeClient, config Config) *Provider {
	if config.ModelID == "" {
		config.ModelID = DefaultModelID
	}
	return &Provider{client: client, config: config}
}

// Info returns metadata about the provider.
func (p *Provider) Info() ports.ProviderInfo {
	return ports.ProviderInfo{
		Name:        Name,
		Description: "Anthropic Claude models via AWS Bedrock",
		BaseURL:     "bedrock-runtime." + p.config.Region + ".amazonaws.com",
	}
}

// ListModels returns the models this provider can serve.
func (p *Provider) ListModels(ctx context.Context) ([]string, error) {
	return SupportedModels(), nil
}

// SupportsModel reports whether the given model identifier is served here.
func (p *Provider) SupportsModel(ctx context.Context, modelID string) (bool, error) {
	if modelID == p.config.ModelID {
		return true, nil
	}
	for _, m := range SupportedModels() {
		if m == modelID {
			return true, nil
		}
	}
	return false, nil
}

// Complete generates a completion for the given request. The response is
// streamed from Bedrock and accumulated into a single string before
// returning.
func (p *Provider) Complete(ctx context.Context, req ports.CompletionRequest) (*ports.CompletionResponse, error) {
	modelID := req.ModelID
	if modelID == "" {
		modelID = p.config.ModelID
	}

	body, err := p.buildRequest(req)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, errors.NewError(errors.CodeProvider, "encoding bedrock request", err)
	}

	if p.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.config.Timeout)
		defer cancel()
	}

	start := time.Now()
	stream, err := p.client.InvokeStream(ctx, &bedrockruntime.InvokeModelWithResponseStreamInput{
		ModelId:     &modelID,
		ContentType: stringPtr("application/json"),
		Accept:      stringPtr("application/json"),
		Body:        payload,
	})
	if err != nil {
		return nil, errors.NewError(errors.CodeProvider, "invoking bedrock model "+modelID, fmt.Errorf("%w: %v", errors.ErrGeneration, err))
	}

	resp, err := p.collectStream(stream)
	if err != nil {
		return nil, err
	}
	resp.ModelUsed = modelID
	resp.Duration = time.Since(start)
	return resp, nil
}

// buildRequest translates the port request into the Bedrock Anthropic
// schema. System messages are concatenated into the top-level system
// field in their original relative order; user and assistant turns keep
// their order in the messages array.
func (p *Provider) buildRequest(req ports.CompletionRequest) (*InvokeRequest, error) {
	var systemParts []string
	messages := make([]Message, 0, len(req.Messages))

	for _, msg := range req.Messages {
		switch msg.Role {
		case "system":
			systemParts = append(systemParts, msg.Content)
		case "user":
			messages = append(messages, Message{
				Role:    RoleUser,
				Content: []ContentBlock{{Type: "text", Text: msg.Content}},
			})
		case "assistant":
			messages = append(messages, Message{
				Role:    RoleAssistant,
				Content: []ContentBlock{{Type: "text", Text: msg.Content}},
			})
		default:
			return nil, errors.NewError(errors.CodeValidation, "unsupported message role "+msg.Role, errors.ErrInvalidRole)
		}
	}

	if len(messages) == 0 {
		return nil, errors.NewError(errors.CodeValidation, "bedrock request requires at least one user or assistant message", nil)
	}

	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}
	temperature := req.Temperature

	return &InvokeRequest{
		AnthropicVersion: AnthropicVersion,
		Messages:         messages,
		MaxTokens:        maxTokens,
		System:           strings.Join(systemParts, "\n\n"),
		Temperature:      &temperature,
	}, nil
}

// collectStream drains the response event stream and accumulates content
// deltas into the final response.
func (p *Provider) collectStream(stream streamReader) (*ports.CompletionResponse, error) {
	defer stream.Close()

	var (
		content      strings.Builder
		inputTokens  int
		outputTokens int
		finishReason string
	)

	for event := range stream.Events() {
		chunk, ok := event.(*types.ResponseStreamMemberChunk)
		if !ok {
			continue
		}

		var ev StreamEvent
		if err := json.Unmarshal(chunk.Value.Bytes, &ev); err != nil {
			return nil, errors.NewError(errors.CodeProvider, "decoding bedrock stream chunk", fmt.Errorf("%w: %v", errors.ErrGeneration, err))
		}

		switch ev.Type {
		case EventMessageStart:
			if ev.Message != nil && ev.Message.Usage != nil {
				inputTokens = ev.Message.Usage.InputTokens
			}
		case EventContentBlockDelta:
			if ev.Delta != nil {
				content.WriteString(ev.Delta.Text)
			}
		case EventMessageDelta:
			if ev.Delta != nil && ev.Delta.StopReason != "" {
				finishReason = ev.Delta.StopReason
			}
			if ev.Usage != nil {
				outputTokens = ev.Usage.OutputTokens
			}
		}
	}

	if err := stream.Err(); err != nil {
		return nil, errors.NewError(errors.CodeProvider, "reading bedrock response stream", fmt.Errorf("%w: %v", errors.ErrGeneration, err))
	}

	return &ports.CompletionResponse{
		Content:      content.String(),
		InputTokens:  inputTokens,
		OutputTokens: outputTokens,
		FinishReason: finishReason,
	}, nil
}

func stringPtr(s string) *string {
	return &s
}
