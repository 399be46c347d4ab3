// Package summary_compressor folds a window of recent chat turns into a short
// narrative summary plus a bounded list of key facts. The narrative is a cheap
// template rather than a model call; the contract leaves room to swap in a
// model-backed summarizer later.
package summary_compressor //nolint:revive // var-naming: using underscores for domain clarity

import (
	"regexp"
	"strings"

	"github.com/lewisedginton/persona_chatbot/internal/models"
	"github.com/lewisedginton/persona_chatbot/pkg/logger"
)

// WindowSize is how many trailing turns a compression covers and how often
// the assembler triggers one.
const WindowSize = 6

const (
	defaultMaxKeyFacts  = 5
	summaryMaxChars     = 300
	factSnippetMaxChars = 100
)

var namePattern = regexp.MustCompile(`my name is (\w+)`)

// Config holds configuration for the compressor.
type Config struct {
	// MaxKeyFacts bounds the key-fact list. Zero means the default of 5.
	MaxKeyFacts int

	Logger logger.Logger
}

// Compressor produces conversation summaries from turn windows.
type Compressor struct {
	maxFacts int
	log      logger.Logger
}

// New creates a new summary compressor.
func New(config Config) *Compressor {
	if config.Logger == nil {
		panic("logger cannot be nil")
	}
	if config.MaxKeyFacts == 0 {
		config.MaxKeyFacts = defaultMaxKeyFacts
	}
	return &Compressor{
		maxFacts: config.MaxKeyFacts,
		log:      config.Logger.WithFields(logger.StringField("component", "summary_compressor")),
	}
}

// Compress builds the narrative summary and key facts for a window of turns.
// Facts are collected in turn order and the list is cut to the configured
// bound.
func (c *Compressor) Compress(window []models.Turn, personaName string) (string, []string) {
	summary := c.narrative(window, personaName)
	facts := c.keyFacts(window)

	c.log.Debug("conversation window compressed",
		logger.IntField("turns", len(window)),
		logger.IntField("key_facts", len(facts)))
	return summary, facts
}

// narrative concatenates the window's "role: content" lines and embeds the
// first 300 characters in a one-sentence template.
func (c *Compressor) narrative(window []models.Turn, personaName string) string {
	lines := make([]string, 0, len(window))
	for _, turn := range window {
		lines = append(lines, turn.Role+": "+turn.Content)
	}
	conversation := strings.Join(lines, "\n")

	runes := []rune(conversation)
	if len(runes) > summaryMaxChars {
		conversation = string(runes[:summaryMaxChars])
	}
	return "Recent conversation with " + personaName + " covered: " + conversation + "..."
}

// keyFacts scans user turns for name, work and location disclosures.
func (c *Compressor) keyFacts(window []models.Turn) []string {
	facts := make([]string, 0, c.maxFacts)
	for _, turn := range window {
		if turn.Role != models.RoleUser {
			continue
		}
		lower := strings.ToLower(turn.Content)

		if match := namePattern.FindStringSubmatch(lower); match != nil {
			facts = append(facts, "User's name: "+match[1])
		}
		if strings.Contains(lower, "i work") || strings.Contains(lower, "my job") {
			facts = append(facts, "Work/Job mentioned: "+snippet(turn.Content))
		}
		if strings.Contains(lower, "i live") {
			facts = append(facts, "Location mentioned: "+snippet(turn.Content))
		}
	}

	if len(facts) > c.maxFacts {
		facts = facts[:c.maxFacts]
	}
	return facts
}

// snippet returns the first 100 characters of text, original casing.
func snippet(text string) string {
	runes := []rune(text)
	if len(runes) > factSnippetMaxChars {
		return string(runes[:factSnippetMaxChars])
	}
	return text
}
