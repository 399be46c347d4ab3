// Package memory_store holds per-persona conversational memory: atomic
// remembered facts plus one rolling summary per persona, persisted as two
// JSON blobs through a storage FileProvider.
package memory_store

// Memory is an atomic remembered fact. Memories are never mutated after
// creation, only appended or bulk-deleted per persona.
type Memory struct {
	ID         string `json:"id"`
	PersonaID  string `json:"personaId"`
	Content    string `json:"content"`
	Context    string `json:"context"`
	Timestamp  int64  `json:"timestamp"`  // epoch milliseconds
	Importance int    `json:"importance"` // 1-10 scale
}

// ConversationSummary is the rolling summary for one persona. Updates are
// full overwrites; old key facts are discarded, never merged.
type ConversationSummary struct {
	PersonaID   string   `json:"personaId"`
	Summary     string   `json:"summary"`
	KeyFacts    []string `json:"keyFacts"`
	LastUpdated int64    `json:"lastUpdated"` // epoch milliseconds
}

// Stats reports per-persona memory statistics. LastInteraction is nil when
// the persona has no memories.
type Stats struct {
	TotalMemories   int    `json:"totalMemories"`
	LastInteraction *int64 `json:"lastInteraction"`
}
