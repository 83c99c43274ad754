// Package config provides configuration loading and management.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Environment variables that override file configuration.
const (
	EnvAzureEndpoint   = "AZURE_OPENAI_ENDPOINT"
	EnvAzureKey        = "AZURE_OPENAI_KEY"
	EnvAzureDeployment = "AZURE_OPENAI_DEPLOYMENT"
	EnvAWSRegion       = "AWS_REGION"
)

// Loader handles loading configuration from files.
type Loader struct {
	configDir string
}

// NewLoader creates a new configuration loader.
// If configDir is empty, it defaults to ~/.parley.
func NewLoader(configDir string) (*Loader, error) {
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		configDir = filepath.Join(homeDir, ".parley")
	}

	return &Loader{configDir: configDir}, nil
}

// Load loads configuration from the specified file or default location,
// then applies environment overrides. If the file doesn't exist, the
// defaults are used.
func (l *Loader) Load(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = filepath.Join(l.configDir, "config.yaml")
	}

	cfg := NewDefaultConfig()

	if _, err := os.Stat(configPath); err == nil {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	applyEnvOverrides(cfg)

	if cfg.History.Path == DefaultHistoryFile {
		cfg.History.Path = filepath.Join(l.configDir, DefaultHistoryFile)
	}
	if cfg.Cache.Path == "" {
		cfg.Cache.Path = filepath.Join(l.configDir, "cache.db")
	}

	return cfg, nil
}

// applyEnvOverrides lets credentials set in the environment take precedence
// over the config file.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv(EnvAzureEndpoint); v != "" {
		cfg.Providers.Azure.Endpoint = v
	}
	if v := os.Getenv(EnvAzureKey); v != "" {
		cfg.Providers.Azure.APIKey = v
	}
	if v := os.Getenv(EnvAzureDeployment); v != "" {
		cfg.Providers.Azure.Deployment = v
	}
	if v := os.Getenv(EnvAWSRegion); v != "" {
		cfg.Providers.Bedrock.Region = v
	}
}

// Save saves configuration to the specified file or default location.
func (l *Loader) Save(cfg *Config, configPath string) error {
	if configPath == "" {
		configPath = filepath.Join(l.configDir, "config.yaml")
	}

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := `# Parley Configuration
# Documentation: https://github.com/jbctechsolutions/parley
#
`
	content := header + string(data)

	// Config may carry API keys, keep it private to the user.
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ConfigDir returns the configuration directory path.
func (l *Loader) ConfigDir() string {
	return l.configDir
}

// DefaultConfigPath returns the default configuration file path.
func (l *Loader) DefaultConfigPath() string {
	return filepath.Join(l.configDir, "config.yaml")
}
