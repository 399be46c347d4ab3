package config

import (
	"fmt"

	"github.com/hashicorp/go-multierror"
)

// MemoryConfig holds tuning knobs for the conversational memory subsystem.
// The defaults match the behavior the front-end was built against; change
// them with care since they alter what gets injected into prompts.
type MemoryConfig struct {
	// RelevanceLimit is how many memories are injected into each prompt
	RelevanceLimit int `env:"MEMORY_RELEVANCE_LIMIT" yaml:"relevance_limit" default:"3"`

	// SummaryInterval triggers summary compression every N transcript turns
	SummaryInterval int `env:"MEMORY_SUMMARY_INTERVAL" yaml:"summary_interval" default:"6"`

	// MaxKeyFacts bounds the key-fact list stored per summary
	MaxKeyFacts int `env:"MEMORY_MAX_KEY_FACTS" yaml:"max_key_facts" default:"5"`

	// ContentMaxChars truncates memory content at creation
	ContentMaxChars int `env:"MEMORY_CONTENT_MAX_CHARS" yaml:"content_max_chars" default:"200"`
}

// Validate checks MemoryConfig bounds
func (m MemoryConfig) Validate() error {
	var result error
	if m.RelevanceLimit < 1 {
		result = multierror.Append(result, fmt.Errorf("memory relevance_limit must be at least 1, got %d", m.RelevanceLimit))
	}
	if m.SummaryInterval < 2 {
		result = multierror.Append(result, fmt.Errorf("memory summary_interval must be at least 2, got %d", m.SummaryInterval))
	}
	if m.MaxKeyFacts < 1 {
		result = multierror.Append(result, fmt.Errorf("memory max_key_facts must be at least 1, got %d", m.MaxKeyFacts))
	}
	if m.ContentMaxChars < 10 {
		result = multierror.Append(result, fmt.Errorf("memory content_max_chars must be at least 10, got %d", m.ContentMaxChars))
	}
	return result
}
