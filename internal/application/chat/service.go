// Package chat provides application services for chat-based interactions.
package chat

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jbctechsolutions/parley/internal/adapters/cache"
	adapterProvider "github.com/jbctechsolutions/parley/internal/adapters/provider"
	"github.com/jbctechsolutions/parley/internal/application/ports"
	domainchat "github.com/jbctechsolutions/parley/internal/domain/chat"
	"github.com/jbctechsolutions/parley/internal/infrastructure/logging"
	"github.com/jbctechsolutions/parley/internal/infrastructure/tokenizer"
	"github.com/jbctechsolutions/parley/internal/infrastructure/tracing"
)

// Settings holds the generation parameters chosen by the user.
type Settings struct {
	Provider    string
	Model       string
	MaxTokens   int
	Temperature float32
}

// Result is the outcome of a generation. Text is always set: failures carry
// an apologetic message suitable for appending to the transcript, so a
// provider outage never leaves the conversation without an assistant turn.
type Result struct {
	Text         string
	InputTokens  int
	OutputTokens int
	Duration     time.Duration
	FromCache    bool
	Failed       bool
	Err          error
}

// Service coordinates providers, caching, and token accounting for chat
// generations.
type Service struct {
	registry  *adapterProvider.Registry
	estimator *tokenizer.Estimator
	cache     ports.ResponseCachePort
	cacheTTL  time.Duration
	logger    *logging.Logger
	tracer    *tracing.Tracer
}

// Option customizes a Service.
type Option func(*Service)

// WithCache enables response caching with the given TTL.
func WithCache(c ports.ResponseCachePort, ttl time.Duration) Option {
	return func(s *Service) {
		s.cache = c
		s.cacheTTL = ttl
	}
}

// WithLogger sets the service logger.
func WithLogger(l *logging.Logger) Option {
	return func(s *Service) {
		s.logger = l
	}
}

// WithTracer sets the service tracer.
func WithTracer(t *tracing.Tracer) Option {
	return func(s *Service) {
		s.tracer = t
	}
}

// NewService creates a new chat service.
func NewService(registry *adapterProvider.Registry, estimator *tokenizer.Estimator, opts ...Option) (*Service, error) {
	if registry == nil {
		return nil, fmt.Errorf("registry cannot be nil")
	}
	if estimator == nil {
		return nil, fmt.Errorf("estimator cannot be nil")
	}

	s := &Service{
		registry:  registry,
		estimator: estimator,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logging.Default()
	}
	if s.tracer == nil {
		s.tracer = tracing.Default()
	}

	return s, nil
}

// Generate produces the assistant's reply for the given transcript. The
// transcript is sent in full, in order; the returned Result always carries
// text even when the provider fails.
func (s *Service) Generate(ctx context.Context, sessionID int, settings Settings, messages []domainchat.Message) Result {
	ctx = logging.WithCorrelationID(ctx, uuid.NewString())
	ctx = logging.WithSessionID(ctx, sessionID)
	ctx = logging.WithProvider(ctx, settings.Provider)

	ctx, span := s.tracer.StartGenerateSpan(ctx, sessionID, settings.Provider, settings.Model)

	result := s.generate(ctx, span, settings, messages)
	if result.Failed {
		span.EndWithError(result.Err)
	} else {
		span.SetTokens(result.InputTokens, result.OutputTokens)
		span.End()
	}
	return result
}

func (s *Service) generate(ctx context.Context, span *tracing.GenerateSpan, settings Settings, messages []domainchat.Message) Result {
	start := time.Now()

	prov, err := s.registry.GetRequired(settings.Provider)
	if err != nil {
		logging.LogGenerationFailed(ctx, s.logger, settings.Provider, settings.Model, err, time.Since(start))
		return failedResult(err, time.Since(start))
	}

	req := buildCompletionRequest(settings, messages)

	if s.cache != nil {
		key := cache.Fingerprint(req)
		if cached, found := s.cache.GetResponse(ctx, key); found {
			logging.LogCacheHit(ctx, s.logger, key)
			span.SetCacheHit(true)
			return Result{
				Text:         cached.Content,
				InputTokens:  cached.InputTokens,
				OutputTokens: cached.OutputTokens,
				Duration:     time.Since(start),
				FromCache:    true,
			}
		}
		logging.LogCacheMiss(ctx, s.logger, key)
		span.SetCacheHit(false)
	}

	logging.LogProviderRequest(ctx, s.logger, settings.Provider, settings.Model, len(req.Messages))

	pctx, pspan := s.tracer.StartProviderSpan(ctx, settings.Provider, settings.Model)
	resp, err := prov.Complete(pctx, req)
	if err != nil {
		pspan.EndWithError(err)
		logging.LogGenerationFailed(ctx, s.logger, settings.Provider, settings.Model, err, time.Since(start))
		return failedResult(err, time.Since(start))
	}
	pspan.SetResponse(resp.OutputTokens, resp.FinishReason)
	pspan.End()

	logging.LogProviderResponse(ctx, s.logger, settings.Provider, settings.Model, resp.OutputTokens, resp.Duration)

	if s.cache != nil {
		key := cache.Fingerprint(req)
		if err := s.cache.SetResponse(ctx, key, resp, s.cacheTTL); err != nil {
			s.logger.WarnContext(ctx, "caching response failed", "error", err.Error())
		}
	}

	return Result{
		Text:         resp.Content,
		InputTokens:  resp.InputTokens,
		OutputTokens: resp.OutputTokens,
		Duration:     time.Since(start),
	}
}

// CountTokens estimates the token count of text under the given model.
func (s *Service) CountTokens(ctx context.Context, text, model string) int {
	return s.estimator.Count(ctx, text, model)
}

// TranscriptTokens sums the estimated token counts of every message in the
// transcript under the given model.
func (s *Service) TranscriptTokens(ctx context.Context, messages []domainchat.Message, model string) int {
	total := 0
	for _, msg := range messages {
		total += s.estimator.Count(ctx, msg.Content, model)
	}
	return total
}

// Providers lists registered provider names in registration order.
func (s *Service) Providers() []string {
	return s.registry.List()
}

// ProviderModels lists the models a registered provider can serve.
func (s *Service) ProviderModels(ctx context.Context, name string) ([]string, error) {
	prov, err := s.registry.GetRequired(name)
	if err != nil {
		return nil, err
	}
	return prov.ListModels(ctx)
}

// buildCompletionRequest translates domain messages into the normalized
// provider request, preserving role and order exactly.
func buildCompletionRequest(settings Settings, messages []domainchat.Message) ports.CompletionRequest {
	wire := make([]ports.Message, len(messages))
	for i, msg := range messages {
		wire[i] = ports.Message{Role: string(msg.Role), Content: msg.Content}
	}

	return ports.CompletionRequest{
		ModelID:     settings.Model,
		Messages:    wire,
		MaxTokens:   settings.MaxTokens,
		Temperature: settings.Temperature,
	}
}

func failedResult(err error, duration time.Duration) Result {
	return Result{
		Text:     fmt.Sprintf("An error occurred: %v", err),
		Duration: duration,
		Failed:   true,
		Err:      err,
	}
}
