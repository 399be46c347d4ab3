// Package personas supplies the chat characters: a built-in catalog plus
// user-authored definitions loaded from a FileProvider backend. The chat core
// never mutates persona data.
package personas

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/lewisedginton/persona_chatbot/internal/storage_manager"
	"github.com/lewisedginton/persona_chatbot/pkg/logger"
)

// Persona describes one chat character. SystemPrompt, when set, replaces the
// default role-play instruction derived from Name and Description.
type Persona struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Avatar      string `json:"avatar,omitempty"`

	// SystemPrompt is an explicit instruction override.
	SystemPrompt string `json:"systemPrompt,omitempty"`

	// Specialties are display-only topic tags.
	Specialties []string `json:"specialties,omitempty"`

	// StyleExamples are short writing samples in the persona's voice.
	StyleExamples []string `json:"styleExamples,omitempty"`

	// GroundingSnippets are excerpts of the persona's source material.
	GroundingSnippets []string `json:"groundingSnippets,omitempty"`
}

// Slug derives the persona's stable identifier from its display name:
// lowercase with whitespace runs collapsed to single hyphens. It is
// recomputed from the name every time, never stored, so renaming a persona
// orphans memories recorded under the old slug.
func (p Persona) Slug() string {
	return strings.Join(strings.Fields(strings.ToLower(p.Name)), "-")
}

// customPrefix is where user-authored persona definitions live in storage.
const customPrefix = "custom"

var errNoStorage = errors.New("no storage provider configured for custom personas")

// Config holds configuration for the persona manager.
type Config struct {
	// FileProvider backs custom persona definitions. Nil means built-ins
	// only.
	FileProvider storage_manager.FileProvider

	Logger logger.Logger
}

// Manager serves the built-in catalog merged with stored custom personas.
type Manager struct {
	provider storage_manager.FileProvider
	log      logger.Logger
}

// New creates a new persona manager.
func New(config Config) *Manager {
	if config.Logger == nil {
		panic("logger cannot be nil")
	}
	return &Manager{
		provider: config.FileProvider,
		log:      config.Logger.WithFields(logger.StringField("component", "personas")),
	}
}

// All returns every available persona, built-ins first, then custom personas
// in storage listing order. Unreadable custom definitions are logged and
// skipped.
func (m *Manager) All(ctx context.Context) []Persona {
	result := append([]Persona(nil), builtin...)
	return append(result, m.custom(ctx)...)
}

// Find returns the persona with the given slug, if any.
func (m *Manager) Find(ctx context.Context, slug string) (Persona, bool) {
	for _, p := range m.All(ctx) {
		if p.Slug() == slug {
			return p, true
		}
	}
	return Persona{}, false
}

// Save persists a custom persona definition keyed by its slug.
func (m *Manager) Save(ctx context.Context, p Persona) error {
	if m.provider == nil {
		return errNoStorage
	}
	data, err := json.Marshal(p)
	if err != nil {
		return err
	}
	return m.provider.Write(ctx, customPrefix+"/"+p.Slug()+".json", data)
}

// custom loads user-authored personas from storage.
func (m *Manager) custom(ctx context.Context) []Persona {
	if m.provider == nil {
		return nil
	}

	files, err := m.provider.List(ctx, customPrefix)
	if err != nil {
		m.log.Warn("failed to list custom personas", logger.ErrorField(err))
		return nil
	}

	var result []Persona
	for _, file := range files {
		if !strings.HasSuffix(file, ".json") {
			continue
		}
		data, err := m.provider.Read(ctx, file)
		if err != nil {
			m.log.Warn("failed to read custom persona",
				logger.StringField("file", file), logger.ErrorField(err))
			continue
		}
		var p Persona
		if err := json.Unmarshal(data, &p); err != nil {
			m.log.Warn("skipping malformed custom persona",
				logger.StringField("file", file), logger.ErrorField(err))
			continue
		}
		if p.Name == "" {
			m.log.Warn("skipping custom persona without a name",
				logger.StringField("file", file))
			continue
		}
		result = append(result, p)
	}
	return result
}
