package memory_store

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/lewisedginton/persona_chatbot/internal/storage_manager"
	"github.com/lewisedginton/persona_chatbot/pkg/logger"
)

// Blob names under the store's storage namespace.
const (
	memoriesBlob  = "memories.json"
	summariesBlob = "summaries.json"
)

// Defaults applied when callers pass zero values.
const (
	DefaultImportance     = 5
	DefaultRelevanceLimit = 5
)

// Config holds configuration for the memory store.
type Config struct {
	// FileProvider backs persistence. Nil means pure in-memory operation.
	FileProvider storage_manager.FileProvider

	Logger logger.Logger
}

// Store keeps all personas' memories and summaries in memory and flushes the
// full state to storage on every mutation. Reads immediately after a write in
// the same process always observe the write.
type Store struct {
	mu        sync.Mutex
	memories  []Memory
	summaries map[string]ConversationSummary

	provider storage_manager.FileProvider
	log      logger.Logger
}

// New creates a memory store and rehydrates any persisted state. A corrupt or
// absent blob is not fatal; the affected collection starts empty.
func New(ctx context.Context, config Config) *Store {
	if config.Logger == nil {
		panic("logger cannot be nil")
	}

	s := &Store{
		summaries: make(map[string]ConversationSummary),
		provider:  config.FileProvider,
		log:       config.Logger.WithFields(logger.StringField("component", "memory_store")),
	}

	if s.provider == nil {
		s.log.Info("no storage provider configured, memories will not survive restarts")
		return s
	}
	s.load(ctx)
	return s
}

// AddMemory appends a new memory for the persona and persists. Content is
// stored verbatim; callers decide any truncation. Importance outside 1-10 is
// clamped; zero means the default of 5.
func (s *Store) AddMemory(ctx context.Context, personaID, content, memoryContext string, importance int) Memory {
	if importance == 0 {
		importance = DefaultImportance
	}
	if importance < 1 {
		importance = 1
	}
	if importance > 10 {
		importance = 10
	}

	now := time.Now().UnixMilli()
	memory := Memory{
		ID:         fmt.Sprintf("%d-%s", now, uuid.NewString()[:8]),
		PersonaID:  personaID,
		Content:    content,
		Context:    memoryContext,
		Timestamp:  now,
		Importance: importance,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.memories = append(s.memories, memory)
	s.persist(ctx)

	s.log.Debug("memory added",
		logger.PersonaField(personaID),
		logger.StringField("memory_id", memory.ID))
	return memory
}

// GetRelevantMemories returns the persona's memories ranked against the query
// text. Each memory scores similarity(query, content) + similarity(query,
// context) + importance/10; ties keep insertion order. A limit of zero means
// the default of 5.
func (s *Store) GetRelevantMemories(personaID, query string, limit int) []Memory {
	if limit <= 0 {
		limit = DefaultRelevanceLimit
	}

	s.mu.Lock()
	candidates := s.memoriesForLocked(personaID)
	s.mu.Unlock()

	scores := make([]float64, len(candidates))
	for i, m := range candidates {
		scores[i] = Similarity(query, m.Content) + Similarity(query, m.Context) + float64(m.Importance)/10
	}
	indexes := make([]int, len(candidates))
	for i := range indexes {
		indexes[i] = i
	}
	sort.SliceStable(indexes, func(a, b int) bool {
		return scores[indexes[a]] > scores[indexes[b]]
	})

	if limit > len(indexes) {
		limit = len(indexes)
	}
	result := make([]Memory, 0, limit)
	for _, idx := range indexes[:limit] {
		result = append(result, candidates[idx])
	}
	return result
}

// GetAllMemories returns the persona's memories in insertion order.
func (s *Store) GetAllMemories(personaID string) []Memory {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.memoriesForLocked(personaID)
}

// UpdateSummary upserts the persona's conversation summary. The previous
// summary and key facts are fully replaced.
func (s *Store) UpdateSummary(ctx context.Context, personaID, summary string, keyFacts []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.summaries[personaID] = ConversationSummary{
		PersonaID:   personaID,
		Summary:     summary,
		KeyFacts:    append([]string(nil), keyFacts...),
		LastUpdated: time.Now().UnixMilli(),
	}
	s.persist(ctx)

	s.log.Debug("summary updated",
		logger.PersonaField(personaID),
		logger.IntField("key_facts", len(keyFacts)))
}

// GetSummary returns the persona's summary and whether one exists.
func (s *Store) GetSummary(personaID string) (ConversationSummary, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	summary, ok := s.summaries[personaID]
	return summary, ok
}

// ClearMemories removes all memories and the summary for the persona.
// Clearing an already-empty persona is a no-op.
func (s *Store) ClearMemories(ctx context.Context, personaID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.memories[:0]
	removed := 0
	for _, m := range s.memories {
		if m.PersonaID == personaID {
			removed++
			continue
		}
		kept = append(kept, m)
	}
	s.memories = kept
	delete(s.summaries, personaID)
	s.persist(ctx)

	s.log.Info("memories cleared",
		logger.PersonaField(personaID),
		logger.IntField("removed", removed))
}

// GetMemoryStats reports the persona's memory count and last interaction time.
func (s *Store) GetMemoryStats(personaID string) Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := Stats{}
	for _, m := range s.memories {
		if m.PersonaID != personaID {
			continue
		}
		stats.TotalMemories++
		if stats.LastInteraction == nil || m.Timestamp > *stats.LastInteraction {
			ts := m.Timestamp
			stats.LastInteraction = &ts
		}
	}
	return stats
}

// memoriesForLocked copies the persona's memories. Callers must hold mu.
func (s *Store) memoriesForLocked(personaID string) []Memory {
	result := make([]Memory, 0)
	for _, m := range s.memories {
		if m.PersonaID == personaID {
			result = append(result, m)
		}
	}
	return result
}

// load rehydrates both blobs from storage. Missing blobs mean a fresh store;
// unreadable or corrupt blobs are logged and skipped.
func (s *Store) load(ctx context.Context) {
	if data, ok := s.readBlob(ctx, memoriesBlob); ok {
		var memories []Memory
		if err := json.Unmarshal(data, &memories); err != nil {
			s.log.Warn("corrupt memories blob, starting empty", logger.ErrorField(err))
		} else {
			s.memories = memories
		}
	}

	if data, ok := s.readBlob(ctx, summariesBlob); ok {
		var summaries map[string]ConversationSummary
		if err := json.Unmarshal(data, &summaries); err != nil {
			s.log.Warn("corrupt summaries blob, starting empty", logger.ErrorField(err))
		} else if summaries != nil {
			s.summaries = summaries
		}
	}

	s.log.Info("memory store loaded",
		logger.IntField("memories", len(s.memories)),
		logger.IntField("summaries", len(s.summaries)))
}

// readBlob returns the blob's bytes and whether it was present and readable.
func (s *Store) readBlob(ctx context.Context, name string) ([]byte, bool) {
	exists, err := s.provider.Exists(ctx, name)
	if err != nil {
		s.log.Warn("failed to check stored blob", logger.StringField("blob", name), logger.ErrorField(err))
		return nil, false
	}
	if !exists {
		return nil, false
	}
	data, err := s.provider.Read(ctx, name)
	if err != nil {
		s.log.Warn("failed to read stored blob", logger.StringField("blob", name), logger.ErrorField(err))
		return nil, false
	}
	return data, true
}

// persist flushes the full state of both collections. Failures are logged and
// swallowed so the store keeps working in memory. Callers must hold mu.
func (s *Store) persist(ctx context.Context) {
	if s.provider == nil {
		return
	}

	if data, err := json.Marshal(s.memories); err != nil {
		s.log.Warn("failed to serialize memories", logger.ErrorField(err))
	} else if err := s.provider.Write(ctx, memoriesBlob, data); err != nil {
		s.log.Warn("failed to persist memories", logger.ErrorField(err))
	}

	if data, err := json.Marshal(s.summaries); err != nil {
		s.log.Warn("failed to serialize summaries", logger.ErrorField(err))
	} else if err := s.provider.Write(ctx, summariesBlob, data); err != nil {
		s.log.Warn("failed to persist summaries", logger.ErrorField(err))
	}
}
