package config

import (
	"github.com/recipeops/ladle/internal/extract"
	"github.com/recipeops/ladle/internal/mapper"
	"github.com/recipeops/ladle/internal/route"
	"github.com/recipeops/ladle/internal/validate"
)

// Config holds ladle configuration.
// Stored at: {home}/config.yaml
type Config struct {
	Structuring StructuringCfg   `mapstructure:"structuring" yaml:"structuring"`
	Vision      VisionCfg        `mapstructure:"vision" yaml:"vision"`
	Routing     route.Thresholds `mapstructure:"routing" yaml:"routing"`
	Mapping     mapper.Tiers     `mapstructure:"mapping" yaml:"mapping"`
	Limits      extract.Limits   `mapstructure:"limits" yaml:"limits"`
	Validation  validate.Options `mapstructure:"validation" yaml:"validation"`
	Defaults    DefaultsCfg      `mapstructure:"defaults" yaml:"defaults"`
}

// StructuringCfg configures the LLM structuring provider.
type StructuringCfg struct {
	Type           string  `mapstructure:"type" yaml:"type"` // "openrouter", "mock"
	Model          string  `mapstructure:"model" yaml:"model"`
	APIKey         string  `mapstructure:"api_key" yaml:"api_key"` // supports ${ENV_VAR} syntax
	RateLimit      float64 `mapstructure:"rate_limit" yaml:"rate_limit"` // requests per minute
	TimeoutSeconds int     `mapstructure:"timeout_seconds" yaml:"timeout_seconds"`
	MaxRetries     int     `mapstructure:"max_retries" yaml:"max_retries"`
}

// VisionCfg configures the vision text-extraction provider.
type VisionCfg struct {
	Type           string `mapstructure:"type" yaml:"type"` // "openai", "mock"
	Model          string `mapstructure:"model" yaml:"model"`
	APIKey         string `mapstructure:"api_key" yaml:"api_key"` // supports ${ENV_VAR} syntax
	TimeoutSeconds int    `mapstructure:"timeout_seconds" yaml:"timeout_seconds"`
	MaxRetries     int    `mapstructure:"max_retries" yaml:"max_retries"`
}

// DefaultsCfg holds batch-level settings.
type DefaultsCfg struct {
	MaxWorkers  int    `mapstructure:"max_workers" yaml:"max_workers"`
	CatalogPath string `mapstructure:"catalog_path" yaml:"catalog_path"`
}

// DefaultConfig returns configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Structuring: StructuringCfg{
			Type:           "openrouter",
			Model:          "anthropic/claude-sonnet-4",
			APIKey:         "${OPENROUTER_API_KEY}",
			RateLimit:      150.0,
			TimeoutSeconds: 120,
			MaxRetries:     5,
		},
		Vision: VisionCfg{
			Type:           "openai",
			Model:          "gpt-4o",
			APIKey:         "${OPENAI_API_KEY}",
			TimeoutSeconds: 120,
			MaxRetries:     3,
		},
		Routing:    route.DefaultThresholds(),
		Mapping:    mapper.DefaultTiers(),
		Limits:     extract.DefaultLimits(),
		Validation: validate.DefaultOptions(),
		Defaults: DefaultsCfg{
			MaxWorkers: 4,
		},
	}
}
