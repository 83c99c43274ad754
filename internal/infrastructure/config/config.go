// Package config provides configuration structs and utilities for the parley
// application.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"time"
)

// Config represents the root configuration for the parley application.
type Config struct {
	Providers ProviderConfigs `yaml:"providers"`
	Defaults  DefaultsConfig  `yaml:"defaults"`
	Logging   LoggingConfig   `yaml:"logging"`
	History   HistoryConfig   `yaml:"history"`
	Cache     CacheConfig     `yaml:"cache"`
	Tracing   TracingConfig   `yaml:"tracing"`
}

// ProviderConfigs holds configuration for all supported LLM providers.
type ProviderConfigs struct {
	Azure   AzureConfig   `yaml:"azure"`
	Bedrock BedrockConfig `yaml:"bedrock"`
}

// AzureConfig holds configuration for Azure-hosted OpenAI deployments.
type AzureConfig struct {
	Endpoint   string        `yaml:"endpoint"`
	APIKey     string        `yaml:"api_key"`
	Deployment string        `yaml:"deployment"`
	APIVersion string        `yaml:"api_version"`
	Enabled    bool          `yaml:"enabled"`
	Timeout    time.Duration `yaml:"timeout"`
}

// BedrockConfig holds configuration for Claude models on AWS Bedrock.
// Credentials come from the ambient AWS environment, never from this file.
type BedrockConfig struct {
	Region  string        `yaml:"region"`
	ModelID string        `yaml:"model_id"`
	Enabled bool          `yaml:"enabled"`
	Timeout time.Duration `yaml:"timeout"`
}

// DefaultsConfig holds default generation settings.
type DefaultsConfig struct {
	Provider  string `yaml:"provider"`
	Model     string `yaml:"model"`
	MaxTokens int    `yaml:"max_tokens"`
}

// LoggingConfig holds configuration for application logging.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, text
}

// HistoryConfig holds configuration for transcript persistence.
type HistoryConfig struct {
	Path  string `yaml:"path"`
	Watch bool   `yaml:"watch"`
}

// CacheConfig holds configuration for response caching.
type CacheConfig struct {
	Enabled    bool          `yaml:"enabled"`
	Path       string        `yaml:"path"`
	DefaultTTL time.Duration `yaml:"default_ttl"`
}

// TracingConfig holds configuration for distributed tracing.
type TracingConfig struct {
	Enabled      bool    `yaml:"enabled"`
	ExporterType string  `yaml:"exporter_type"` // none, stdout, otlp
	OTLPEndpoint string  `yaml:"otlp_endpoint"`
	SampleRate   float64 `yaml:"sample_rate"`
	ServiceName  string  `yaml:"service_name"`
}

// Default configuration values.
const (
	DefaultTimeout        = 60 * time.Second
	DefaultBedrockTimeout = 120 * time.Second
	DefaultLogLevel       = "warn"
	DefaultLogFormat      = "text"
	DefaultHistoryFile    = "chat_history.json"

	DefaultProvider  = "azure"
	DefaultModel     = "gpt-4"
	DefaultMaxTokens = 5000

	// Cache defaults
	DefaultCacheEnabled = false
	DefaultCacheTTL     = 24 * time.Hour

	// Tracing defaults
	DefaultTracingEnabled      = false
	DefaultTracingExporterType = "none"
	DefaultTracingSampleRate   = 1.0
	DefaultTracingServiceName  = "parley"
)

// MaxTokens bounds accepted by the generation settings.
const (
	MinGenerationTokens = 100
	MaxGenerationTokens = 16000
)

// Valid log levels.
var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// Valid log formats.
var validLogFormats = map[string]bool{
	"json": true,
	"text": true,
}

// Valid tracing exporter types.
var validTracingExporterTypes = map[string]bool{
	"none":   true,
	"stdout": true,
	"otlp":   true,
}

// NewDefaultConfig creates a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		Providers: ProviderConfigs{
			Azure: AzureConfig{
				Enabled: true,
				Timeout: DefaultTimeout,
			},
			Bedrock: BedrockConfig{
				Enabled: true,
				Timeout: DefaultBedrockTimeout,
			},
		},
		Defaults: DefaultsConfig{
			Provider:  DefaultProvider,
			Model:     DefaultModel,
			MaxTokens: DefaultMaxTokens,
		},
		Logging: LoggingConfig{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
		History: HistoryConfig{
			Path: DefaultHistoryFile,
		},
		Cache: CacheConfig{
			Enabled:    DefaultCacheEnabled,
			DefaultTTL: DefaultCacheTTL,
		},
		Tracing: TracingConfig{
			Enabled:      DefaultTracingEnabled,
			ExporterType: DefaultTracingExporterType,
			SampleRate:   DefaultTracingSampleRate,
			ServiceName:  DefaultTracingServiceName,
		},
	}
}

// Validate checks if the configuration is valid and returns an error if not.
func (c *Config) Validate() error {
	var errs []error

	if err := c.Logging.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("logging: %w", err))
	}

	if err := c.Providers.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("providers: %w", err))
	}

	if err := c.Defaults.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("defaults: %w", err))
	}

	if err := c.Cache.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("cache: %w", err))
	}

	if err := c.Tracing.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("tracing: %w", err))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// Validate checks if the LoggingConfig is valid.
func (l *LoggingConfig) Validate() error {
	var errs []error

	if l.Level != "" && !validLogLevels[l.Level] {
		errs = append(errs, fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", l.Level))
	}

	if l.Format != "" && !validLogFormats[l.Format] {
		errs = append(errs, fmt.Errorf("invalid log format %q: must be one of json, text", l.Format))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// Validate checks if the ProviderConfigs is valid.
func (p *ProviderConfigs) Validate() error {
	var errs []error

	if err := p.Azure.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("azure: %w", err))
	}

	if err := p.Bedrock.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("bedrock: %w", err))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// Validate checks if the AzureConfig is valid. Missing credentials are not
// a validation error; an enabled provider without them is skipped at wiring
// time so the other provider stays usable.
func (a *AzureConfig) Validate() error {
	var errs []error

	if a.Endpoint != "" {
		if _, err := url.ParseRequestURI(a.Endpoint); err != nil {
			errs = append(errs, fmt.Errorf("invalid endpoint URL %q", a.Endpoint))
		}
	}

	if a.Timeout < 0 {
		errs = append(errs, errors.New("timeout must be non-negative"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// Validate checks if the BedrockConfig is valid.
func (b *BedrockConfig) Validate() error {
	if b.Timeout < 0 {
		return errors.New("timeout must be non-negative")
	}
	return nil
}

// Validate checks if the DefaultsConfig is valid.
func (d *DefaultsConfig) Validate() error {
	var errs []error

	if d.MaxTokens != 0 && (d.MaxTokens < MinGenerationTokens || d.MaxTokens > MaxGenerationTokens) {
		errs = append(errs, fmt.Errorf("max_tokens must be between %d and %d", MinGenerationTokens, MaxGenerationTokens))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// Validate checks if the CacheConfig is valid.
func (c *CacheConfig) Validate() error {
	if c.DefaultTTL < 0 {
		return errors.New("default_ttl must be non-negative")
	}
	return nil
}

// Validate checks if the TracingConfig is valid.
func (t *TracingConfig) Validate() error {
	var errs []error

	if t.ExporterType != "" && !validTracingExporterTypes[t.ExporterType] {
		errs = append(errs, fmt.Errorf("invalid exporter type %q: must be one of none, stdout, otlp", t.ExporterType))
	}

	if t.SampleRate < 0 || t.SampleRate > 1 {
		errs = append(errs, errors.New("sample_rate must be between 0.0 and 1.0"))
	}

	if t.Enabled && t.ExporterType == "otlp" && t.OTLPEndpoint == "" {
		errs = append(errs, errors.New("otlp_endpoint is required when exporter_type is otlp"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}
