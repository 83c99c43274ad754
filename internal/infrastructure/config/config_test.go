package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestNewDefaultConfig(t *testing.T) {
	cfg := NewDefaultConfig()

	if !cfg.Providers.Azure.Enabled {
		t.Error("azure should be enabled by default")
	}
	if !cfg.Providers.Bedrock.Enabled {
		t.Error("bedrock should be enabled by default")
	}
	if cfg.Defaults.Provider != "azure" {
		t.Errorf("default provider = %q, want azure", cfg.Defaults.Provider)
	}
	if cfg.Defaults.MaxTokens != 5000 {
		t.Errorf("default max_tokens = %d, want 5000", cfg.Defaults.MaxTokens)
	}
	if cfg.Cache.Enabled {
		t.Error("cache should be disabled by default")
	}
	if cfg.Tracing.Enabled {
		t.Error("tracing should be disabled by default")
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate, got: %v", err)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr string
	}{
		{
			name:   "valid default",
			modify: func(c *Config) {},
		},
		{
			name:    "invalid log level",
			modify:  func(c *Config) { c.Logging.Level = "verbose" },
			wantErr: "invalid log level",
		},
		{
			name:    "invalid log format",
			modify:  func(c *Config) { c.Logging.Format = "xml" },
			wantErr: "invalid log format",
		},
		{
			name:    "invalid azure endpoint",
			modify:  func(c *Config) { c.Providers.Azure.Endpoint = "not a url" },
			wantErr: "invalid endpoint URL",
		},
		{
			name:    "negative bedrock timeout",
			modify:  func(c *Config) { c.Providers.Bedrock.Timeout = -time.Second },
			wantErr: "timeout must be non-negative",
		},
		{
			name:    "max tokens below minimum",
			modify:  func(c *Config) { c.Defaults.MaxTokens = 50 },
			wantErr: "max_tokens must be between",
		},
		{
			name:    "max tokens above maximum",
			modify:  func(c *Config) { c.Defaults.MaxTokens = 20000 },
			wantErr: "max_tokens must be between",
		},
		{
			name:    "invalid tracing exporter",
			modify:  func(c *Config) { c.Tracing.ExporterType = "jaeger" },
			wantErr: "invalid exporter type",
		},
		{
			name: "otlp without endpoint",
			modify: func(c *Config) {
				c.Tracing.Enabled = true
				c.Tracing.ExporterType = "otlp"
			},
			wantErr: "otlp_endpoint is required",
		},
		{
			name:   "missing azure credentials is not an error",
			modify: func(c *Config) { c.Providers.Azure = AzureConfig{Enabled: true} },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewDefaultConfig()
			tt.modify(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() error = %v, want nil", err)
				}
				return
			}
			if err == nil {
				t.Fatal("Validate() expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoader_LoadMissingFileReturnsDefaults(t *testing.T) {
	dir := t.TempDir()
	loader, err := NewLoader(dir)
	if err != nil {
		t.Fatalf("NewLoader() error: %v", err)
	}

	cfg, err := loader.Load("")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Defaults.Model != DefaultModel {
		t.Errorf("model = %q, want default %q", cfg.Defaults.Model, DefaultModel)
	}
	if cfg.History.Path != filepath.Join(dir, DefaultHistoryFile) {
		t.Errorf("history path = %q, want under config dir", cfg.History.Path)
	}
}

func TestLoader_LoadParsesFile(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	content := `
providers:
  azure:
    endpoint: https://example.openai.azure.com
    api_key: secret
    deployment: gpt-4-prod
    enabled: true
  bedrock:
    region: us-west-2
defaults:
  provider: bedrock
  max_tokens: 1200
`
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	loader, err := NewLoader(dir)
	if err != nil {
		t.Fatalf("NewLoader() error: %v", err)
	}

	cfg, err := loader.Load(configPath)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Providers.Azure.Deployment != "gpt-4-prod" {
		t.Errorf("deployment = %q, want gpt-4-prod", cfg.Providers.Azure.Deployment)
	}
	if cfg.Providers.Bedrock.Region != "us-west-2" {
		t.Errorf("region = %q, want us-west-2", cfg.Providers.Bedrock.Region)
	}
	if cfg.Defaults.Provider != "bedrock" {
		t.Errorf("default provider = %q, want bedrock", cfg.Defaults.Provider)
	}
	if cfg.Defaults.MaxTokens != 1200 {
		t.Errorf("max_tokens = %d, want 1200", cfg.Defaults.MaxTokens)
	}
	// Unset fields keep their defaults.
	if cfg.Logging.Level != DefaultLogLevel {
		t.Errorf("log level = %q, want default %q", cfg.Logging.Level, DefaultLogLevel)
	}
}

func TestLoader_EnvOverrides(t *testing.T) {
	t.Setenv(EnvAzureEndpoint, "https://env.openai.azure.com")
	t.Setenv(EnvAzureKey, "env-key")
	t.Setenv(EnvAzureDeployment, "env-deployment")
	t.Setenv(EnvAWSRegion, "eu-central-1")

	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	content := `
providers:
  azure:
    endpoint: https://file.openai.azure.com
    api_key: file-key
`
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	loader, err := NewLoader(dir)
	if err != nil {
		t.Fatalf("NewLoader() error: %v", err)
	}

	cfg, err := loader.Load(configPath)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Providers.Azure.Endpoint != "https://env.openai.azure.com" {
		t.Errorf("endpoint = %q, env should win over file", cfg.Providers.Azure.Endpoint)
	}
	if cfg.Providers.Azure.APIKey != "env-key" {
		t.Errorf("api key = %q, env should win over file", cfg.Providers.Azure.APIKey)
	}
	if cfg.Providers.Azure.Deployment != "env-deployment" {
		t.Errorf("deployment = %q, want env-deployment", cfg.Providers.Azure.Deployment)
	}
	if cfg.Providers.Bedrock.Region != "eu-central-1" {
		t.Errorf("region = %q, want eu-central-1", cfg.Providers.Bedrock.Region)
	}
}

func TestLoader_SaveAndReload(t *testing.T) {
	t.Setenv(EnvAWSRegion, "")
	t.Setenv(EnvAzureEndpoint, "")

	dir := t.TempDir()
	loader, err := NewLoader(dir)
	if err != nil {
		t.Fatalf("NewLoader() error: %v", err)
	}

	cfg := NewDefaultConfig()
	cfg.Defaults.MaxTokens = 2048
	cfg.Providers.Bedrock.Region = "us-east-1"

	if err := loader.Save(cfg, ""); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	data, err := os.ReadFile(loader.DefaultConfigPath())
	if err != nil {
		t.Fatalf("reading saved config: %v", err)
	}
	if !strings.HasPrefix(string(data), "# Parley Configuration") {
		t.Error("saved config should start with the header comment")
	}

	info, err := os.Stat(loader.DefaultConfigPath())
	if err != nil {
		t.Fatalf("stat saved config: %v", err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("config mode = %v, want 0600", info.Mode().Perm())
	}

	reloaded, err := loader.Load("")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if reloaded.Defaults.MaxTokens != 2048 {
		t.Errorf("max_tokens = %d, want 2048", reloaded.Defaults.MaxTokens)
	}
	if reloaded.Providers.Bedrock.Region != "us-east-1" {
		t.Errorf("region = %q, want us-east-1", reloaded.Providers.Bedrock.Region)
	}
}
