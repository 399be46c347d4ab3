// Package config defines the application configuration for the persona chat
// service. Values load from an optional YAML file overlaid with environment
// variables via pkg/config struct tags.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/lewisedginton/persona_chatbot/pkg/logger"
)

// AppConfig holds all application configuration
type AppConfig struct {
	// Service configuration
	ServiceName string `env:"SERVICE_NAME" yaml:"service_name" default:"persona-chatbot"`
	Version     string `env:"VERSION" yaml:"version" default:"dev"`
	Environment string `env:"ENVIRONMENT" yaml:"environment" default:"development"`

	// Server configuration
	Port           int           `env:"PORT" yaml:"port" default:"8080"`
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" yaml:"request_timeout" default:"60s"`
	IdleTimeout    time.Duration `env:"IDLE_TIMEOUT" yaml:"idle_timeout" default:"60s"`

	// LLM provider selection and credentials
	LLM       LLMConfig       `yaml:"llm,inline"`
	OpenAI    OpenAIConfig    `yaml:"openai,inline"`
	Anthropic AnthropicConfig `yaml:"anthropic,inline"`

	// Memory subsystem tuning
	Memory MemoryConfig `yaml:"memory,inline"`

	// Storage backend for memories, summaries and custom personas
	Storage StorageConfig `yaml:"storage,inline"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging,inline"`

	// Monitoring configuration
	Monitoring MonitoringConfig `yaml:"monitoring,inline"`

	// Health check configuration
	Health HealthConfig `yaml:"health,inline"`

	// Security configuration
	Security SecurityConfig `yaml:"security,inline"`
}

// Validate validates the configuration and returns an error if invalid
func (c *AppConfig) Validate() error {
	var result error

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		result = multierror.Append(result, fmt.Errorf("log_level must be one of [debug, info, warn, error], got %q", c.Logging.Level))
	}

	if c.Logging.Format != "json" && c.Logging.Format != "text" {
		result = multierror.Append(result, fmt.Errorf("log_format must be either 'json' or 'text', got %q", c.Logging.Format))
	}

	if c.Port < 1 || c.Port > 65535 {
		result = multierror.Append(result, fmt.Errorf("port must be between 1 and 65535, got %d", c.Port))
	}

	if c.RequestTimeout <= 0 {
		result = multierror.Append(result, fmt.Errorf("request_timeout must be greater than 0"))
	}

	switch c.LLM.Provider {
	case ProviderOpenAI:
		if c.OpenAI.APIKey == "" {
			result = multierror.Append(result, fmt.Errorf("openai api key is required when llm provider is %q", ProviderOpenAI))
		}
	case ProviderClaude:
		if c.Anthropic.APIKey == "" {
			result = multierror.Append(result, fmt.Errorf("anthropic api key is required when llm provider is %q", ProviderClaude))
		}
	default:
		result = multierror.Append(result, fmt.Errorf("llm provider must be one of [%s, %s], got %q", ProviderOpenAI, ProviderClaude, c.LLM.Provider))
	}

	if err := c.Memory.Validate(); err != nil {
		result = multierror.Append(result, err)
	}

	if err := c.Storage.Validate(); err != nil {
		result = multierror.Append(result, err)
	}

	if c.Security.MaxRequestSize <= 0 {
		result = multierror.Append(result, fmt.Errorf("max_request_size must be greater than 0"))
	}

	return result
}

// GetLogLevel returns the parsed logger level
func (c *AppConfig) GetLogLevel() logger.Level {
	return logger.ParseLevel(strings.ToLower(c.Logging.Level))
}

// IsProduction returns true if running in production environment
func (c *AppConfig) IsProduction() bool {
	return strings.ToLower(c.Environment) == "production"
}

// IsDevelopment returns true if running in development environment
func (c *AppConfig) IsDevelopment() bool {
	env := strings.ToLower(c.Environment)
	return env == "development" || env == "dev"
}

// LogConfig logs the current configuration (without sensitive data)
func (c *AppConfig) LogConfig(log logger.Logger) {
	log.Info("Application configuration loaded",
		logger.StringField("service_name", c.ServiceName),
		logger.StringField("version", c.Version),
		logger.StringField("environment", c.Environment),
		logger.IntField("port", c.Port),
		logger.StringField("llm_provider", c.LLM.Provider),
		logger.StringField("storage_backend", c.Storage.Backend),
		logger.StringField("log_level", c.Logging.Level),
		logger.StringField("log_format", c.Logging.Format),
		logger.IntField("memory_relevance_limit", c.Memory.RelevanceLimit),
		logger.IntField("memory_summary_interval", c.Memory.SummaryInterval),
		logger.BoolField("metrics_enabled", c.Monitoring.MetricsEnabled),
	)
}
