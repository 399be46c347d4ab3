// Package prompt_assembler orchestrates one chat turn: it builds the persona
// instruction from identity material and remembered context, calls the
// completion service, and feeds the exchange back into the memory subsystem.
package prompt_assembler //nolint:revive // var-naming: using underscores for domain clarity

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/lewisedginton/persona_chatbot/internal/fact_extractor"
	"github.com/lewisedginton/persona_chatbot/internal/memory_store"
	"github.com/lewisedginton/persona_chatbot/internal/models"
	"github.com/lewisedginton/persona_chatbot/internal/personas"
	"github.com/lewisedginton/persona_chatbot/internal/summary_compressor"
	"github.com/lewisedginton/persona_chatbot/pkg/logger"
	"github.com/lewisedginton/persona_chatbot/pkg/metrics"
)

// Defaults applied when the config leaves fields zero.
const (
	defaultRelevanceLimit = 3
	defaultMaxTokens      = 500
	defaultTemperature    = 0.8

	// minTurnsForExtraction skips fact extraction on the very first
	// exchange, where there is no prior context to anchor against.
	minTurnsForExtraction = 2
)

// Config holds configuration for the assembler.
type Config struct {
	Model      models.CompletionService
	Store      *memory_store.Store
	Extractor  *fact_extractor.Extractor
	Compressor *summary_compressor.Compressor

	// RelevanceLimit is how many memories get woven into the instruction.
	// Zero means the default of 3.
	RelevanceLimit int

	// SummaryInterval triggers compression every N transcript turns and
	// sizes the compression window. Zero means the default of 6.
	SummaryInterval int

	// MaxTokens and Temperature are passed through to the completion
	// service. Zero means 500 and 0.8 respectively.
	MaxTokens   int
	Temperature float64

	// Metrics is optional.
	Metrics *metrics.Metrics

	Logger logger.Logger
}

// Assembler runs chat turns for personas.
type Assembler struct {
	model      models.CompletionService
	store      *memory_store.Store
	extractor  *fact_extractor.Extractor
	compressor *summary_compressor.Compressor

	relevanceLimit  int
	summaryInterval int
	maxTokens       int
	temperature     float64

	metrics *metrics.Metrics
	log     logger.Logger
}

// New creates a new prompt assembler.
func New(config Config) *Assembler {
	if config.Logger == nil {
		panic("logger cannot be nil")
	}
	if config.Model == nil {
		panic("completion service cannot be nil")
	}
	if config.Store == nil {
		panic("memory store cannot be nil")
	}
	if config.Extractor == nil {
		panic("fact extractor cannot be nil")
	}
	if config.Compressor == nil {
		panic("summary compressor cannot be nil")
	}
	if config.RelevanceLimit == 0 {
		config.RelevanceLimit = defaultRelevanceLimit
	}
	if config.SummaryInterval == 0 {
		config.SummaryInterval = summary_compressor.WindowSize
	}
	if config.MaxTokens == 0 {
		config.MaxTokens = defaultMaxTokens
	}
	if config.Temperature == 0 {
		config.Temperature = defaultTemperature
	}

	return &Assembler{
		model:           config.Model,
		store:           config.Store,
		extractor:       config.Extractor,
		compressor:      config.Compressor,
		relevanceLimit:  config.RelevanceLimit,
		summaryInterval: config.SummaryInterval,
		maxTokens:       config.MaxTokens,
		temperature:     config.Temperature,
		metrics:         config.Metrics,
		log:             config.Logger.WithFields(logger.StringField("component", "prompt_assembler")),
	}
}

// RunTurn executes one chat turn and returns the persona's reply. On any
// completion failure the turn is surfaced as-is and no memory is written.
func (a *Assembler) RunTurn(ctx context.Context, persona personas.Persona, turns []models.Turn) (string, error) {
	start := time.Now()
	personaID := persona.Slug()
	log := a.log.WithFields(logger.PersonaField(personaID))

	currentMessage := latestUserMessage(turns)

	relevant := a.store.GetRelevantMemories(personaID, currentMessage, a.relevanceLimit)
	summary, hasSummary := a.store.GetSummary(personaID)

	instruction := a.composeInstruction(persona, summary, hasSummary, relevant)

	log.Debug("running chat turn",
		logger.IntField("turns", len(turns)),
		logger.IntField("memories", len(relevant)))

	reply, err := a.model.Complete(ctx, models.Request{
		SystemPrompt: instruction,
		Turns:        turns,
		MaxTokens:    a.maxTokens,
		Temperature:  a.temperature,
	})
	if err != nil {
		a.incMetric(metrics.ChatMetricTurnsFailed)
		return "", fmt.Errorf("completion failed for persona %s: %w", personaID, err)
	}

	a.remember(ctx, persona, personaID, turns, reply)

	a.incMetric(metrics.ChatMetricTurnsTotal)
	if a.metrics != nil {
		a.metrics.ObserveTurnDuration(time.Since(start))
	}
	return reply, nil
}

// remember feeds a completed exchange back into the memory subsystem. It only
// runs after a successful completion.
func (a *Assembler) remember(ctx context.Context, persona personas.Persona, personaID string, turns []models.Turn, reply string) {
	if len(turns) < minTurnsForExtraction {
		return
	}

	userMessage := latestUserMessage(turns)
	if extraction, ok := a.extractor.Extract(userMessage, reply); ok {
		a.store.AddMemory(ctx, personaID, extraction.Content, extraction.Context, extraction.Importance)
		a.incMetric(metrics.ChatMetricMemoriesCreated)
	}

	if len(turns)%a.summaryInterval == 0 {
		window := turns[len(turns)-a.summaryInterval:]
		summaryText, keyFacts := a.compressor.Compress(window, persona.Name)
		a.store.UpdateSummary(ctx, personaID, summaryText, keyFacts)
		a.incMetric(metrics.ChatMetricSummariesCompressed)
	}
}

// composeInstruction builds the system instruction: persona identity, then
// style and grounding material, then remembered context.
func (a *Assembler) composeInstruction(persona personas.Persona, summary memory_store.ConversationSummary, hasSummary bool, relevant []memory_store.Memory) string {
	var b strings.Builder

	if persona.SystemPrompt != "" {
		b.WriteString(persona.SystemPrompt)
	} else {
		b.WriteString("You are role-playing as " + persona.Name + ". " + persona.Description +
			" Always stay in character and respond in this style.")
	}

	if len(persona.StyleExamples) > 0 {
		b.WriteString("\n\nExamples of your writing style:")
		for _, example := range persona.StyleExamples {
			b.WriteString("\n- " + example)
		}
	}

	if len(persona.GroundingSnippets) > 0 {
		b.WriteString("\n\nReference material from your own words:")
		for _, snippet := range persona.GroundingSnippets {
			b.WriteString("\n- " + snippet)
		}
	}

	if hasSummary {
		b.WriteString("\n\nPrevious conversation context: " + summary.Summary)
		if len(summary.KeyFacts) > 0 {
			b.WriteString("\nKey facts you remember: " + strings.Join(summary.KeyFacts, ", "))
		}
	}

	if len(relevant) > 0 {
		b.WriteString("\n\nRelevant memories from past conversations:")
		for i, memory := range relevant {
			b.WriteString(fmt.Sprintf("\n%d. %s (Context: %s)", i+1, memory.Content, memory.Context))
		}
	}

	return b.String()
}

// latestUserMessage returns the content of the most recent user turn, or the
// empty string when there is none.
func latestUserMessage(turns []models.Turn) string {
	for i := len(turns) - 1; i >= 0; i-- {
		if turns[i].Role == models.RoleUser {
			return turns[i].Content
		}
	}
	return ""
}

func (a *Assembler) incMetric(which int) {
	if a.metrics != nil {
		a.metrics.IncChatCounter(which)
	}
}
