package config

import "time"

// LLM provider constants
const (
	ProviderClaude = "claude"
	ProviderOpenAI = "openai"
)

// LLMConfig holds LLM provider selection and shared generation parameters
type LLMConfig struct {
	// Provider specifies which LLM provider to use: "openai" or "claude"
	Provider string `env:"LLM_PROVIDER" yaml:"provider" default:"openai"`

	// MaxTokens caps the reply length per turn
	MaxTokens int `env:"LLM_MAX_TOKENS" yaml:"max_tokens" default:"500"`

	// Temperature controls reply randomness; persona chat runs warm
	Temperature float64 `env:"LLM_TEMPERATURE" yaml:"temperature" default:"0.8"`
}

// OpenAIConfig holds OpenAI-specific configuration
type OpenAIConfig struct {
	APIKey     string        `env:"OPENAI_API_KEY" yaml:"api_key"`
	Model      string        `env:"OPENAI_MODEL" yaml:"model" default:"gpt-4o-mini"`
	APIBaseURL string        `env:"OPENAI_API_URL" yaml:"api_base_url" default:"https://api.openai.com/v1"`
	MaxRetries int           `env:"OPENAI_MAX_RETRIES" yaml:"max_retries" default:"3"`
	Timeout    time.Duration `env:"OPENAI_TIMEOUT" yaml:"timeout" default:"30s"`
}

// AnthropicConfig holds Anthropic-specific configuration
type AnthropicConfig struct {
	APIKey     string        `env:"ANTHROPIC_API_KEY" yaml:"api_key"`
	Model      string        `env:"CLAUDE_MODEL" yaml:"model" default:"claude-sonnet-4-5-20250929"`
	APIBaseURL string        `env:"ANTHROPIC_API_URL" yaml:"api_base_url" default:"https://api.anthropic.com"`
	MaxRetries int           `env:"ANTHROPIC_MAX_RETRIES" yaml:"max_retries" default:"3"`
	Timeout    time.Duration `env:"ANTHROPIC_TIMEOUT" yaml:"timeout" default:"30s"`
}
