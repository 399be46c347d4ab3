// Package fact_extractor decides whether a chat exchange is worth remembering
// and produces the memory candidate when it is.
package fact_extractor //nolint:revive // var-naming: using underscores for domain clarity

import (
	"strings"

	"github.com/lewisedginton/persona_chatbot/pkg/logger"
)

// Self-disclosure markers scanned for in user messages, case-insensitive. A
// message containing any of these is considered worth remembering.
var selfDisclosureMarkers = []string{
	"my name is",
	"i am",
	"i work",
	"i like",
	"i don't like",
	"i prefer",
	"my favorite",
	"i live",
	"i study",
	"my job",
	"my hobby",
	"i enjoy",
	"remember that",
	"important:",
	"note:",
	"by the way",
}

// Markers scanned for in the model's reply when the user message matched
// nothing.
var replyMarkers = []string{"remember", "note"}

const (
	defaultContentMaxChars = 200

	// extractionImportance is assigned to every extracted memory, above the
	// store default so marker-matched facts outrank generic ones.
	extractionImportance = 6
)

// Extraction is the memory candidate produced for one exchange.
type Extraction struct {
	Content    string
	Context    string
	Importance int
}

// Config holds configuration for the extractor.
type Config struct {
	// ContentMaxChars caps extracted content length before the ellipsis.
	// Zero means the default of 200.
	ContentMaxChars int

	Logger logger.Logger
}

// Extractor scans exchanges for facts worth keeping as memories.
type Extractor struct {
	maxChars int
	log      logger.Logger
}

// New creates a new fact extractor.
func New(config Config) *Extractor {
	if config.Logger == nil {
		panic("logger cannot be nil")
	}
	if config.ContentMaxChars == 0 {
		config.ContentMaxChars = defaultContentMaxChars
	}
	return &Extractor{
		maxChars: config.ContentMaxChars,
		log:      config.Logger.WithFields(logger.StringField("component", "fact_extractor")),
	}
}

// Extract applies the extraction policy to one exchange and reports whether a
// memory should be created. First match wins: user self-disclosure beats
// reply markers, and at most one extraction comes out of an exchange.
func (e *Extractor) Extract(userMessage, reply string) (Extraction, bool) {
	extraction := Extraction{
		Context:    `User asked: "` + userMessage + `"`,
		Importance: extractionImportance,
	}

	lowerUser := strings.ToLower(userMessage)
	for _, marker := range selfDisclosureMarkers {
		if strings.Contains(lowerUser, marker) {
			extraction.Content = "User shared: " + truncate(userMessage, e.maxChars)
			e.log.Debug("user self-disclosure extracted", logger.StringField("marker", marker))
			return extraction, true
		}
	}

	lowerReply := strings.ToLower(reply)
	for _, marker := range replyMarkers {
		if strings.Contains(lowerReply, marker) {
			extraction.Content = "AI noted: " + truncate(reply, e.maxChars)
			e.log.Debug("reply note extracted", logger.StringField("marker", marker))
			return extraction, true
		}
	}

	return Extraction{}, false
}

// truncate cuts text to at most max runes, appending an ellipsis when
// anything was cut.
func truncate(text string, max int) string {
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	return string(runes[:max]) + "..."
}
