package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appconfig "github.com/lewisedginton/persona_chatbot/internal/config"
	"github.com/lewisedginton/persona_chatbot/internal/fact_extractor"
	"github.com/lewisedginton/persona_chatbot/internal/memory_store"
	"github.com/lewisedginton/persona_chatbot/internal/models"
	"github.com/lewisedginton/persona_chatbot/internal/personas"
	"github.com/lewisedginton/persona_chatbot/internal/prompt_assembler"
	"github.com/lewisedginton/persona_chatbot/internal/storage_manager"
	"github.com/lewisedginton/persona_chatbot/internal/summary_compressor"
	"github.com/lewisedginton/persona_chatbot/pkg/logger"
	"github.com/lewisedginton/persona_chatbot/pkg/metrics"
)

type mockModel struct {
	reply string
	err   error
}

func (m *mockModel) Name() string { return "mock-model" }

func (m *mockModel) Complete(_ context.Context, _ models.Request) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	return m.reply, nil
}

func newTestServer(t *testing.T, model models.CompletionService) *Server {
	t.Helper()

	log := logger.NewLogger(logger.Config{
		Level:   logger.ErrorLevel,
		Service: "test",
		Output:  io.Discard,
	})

	cfg := &appconfig.AppConfig{
		Port:           8080,
		RequestTimeout: 10 * time.Second,
		Memory: appconfig.MemoryConfig{
			RelevanceLimit:  3,
			SummaryInterval: 6,
			MaxKeyFacts:     5,
			ContentMaxChars: 200,
		},
		Security: appconfig.SecurityConfig{
			CORSAllowedOrigins: []string{"http://localhost:3000"},
			MaxRequestSize:     1 << 20,
		},
		Health: appconfig.HealthConfig{
			Enabled:          true,
			LivenessPath:     "/health/live",
			ReadinessPath:    "/health/ready",
			Timeout:          5 * time.Second,
			FailureThreshold: 1,
		},
	}

	provider := storage_manager.NewLocalFileProvider(t.TempDir())
	storageManager := storage_manager.NewWithProvider(provider)
	store := memory_store.New(context.Background(), memory_store.Config{
		FileProvider: storageManager.GetProvider(memoryNamespace),
		Logger:       log,
	})

	m := metrics.NewMetrics(true, true, log)

	s := &Server{
		cfg:            cfg,
		log:            log,
		storageManager: storageManager,
		memoryStore:    store,
		personaManager: personas.New(personas.Config{FileProvider: storageManager.GetProvider(personaNamespace), Logger: log}),
		model:          model,
		metrics:        &m,
	}
	s.assembler = prompt_assembler.New(prompt_assembler.Config{
		Model:           model,
		Store:           store,
		Extractor:       fact_extractor.New(fact_extractor.Config{Logger: log}),
		Compressor:      summary_compressor.New(summary_compressor.Config{Logger: log}),
		RelevanceLimit:  cfg.Memory.RelevanceLimit,
		SummaryInterval: cfg.Memory.SummaryInterval,
		Metrics:         s.metrics,
		Logger:          log,
	})
	s.healthChecker = s.createHealthChecker()

	return s
}

func postChat(t *testing.T, handler http.Handler, body any) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/chat", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func chatBody(messages ...models.Turn) map[string]any {
	return map[string]any{
		"persona":  personas.Persona{Name: "Captain Marlow", Description: "A sea captain."},
		"messages": messages,
	}
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var resp errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.Error
}

func TestChatReturnsReply(t *testing.T) {
	s := newTestServer(t, &mockModel{reply: "Ahoy!"})
	handler := s.router()

	rec := postChat(t, handler, chatBody(models.Turn{Role: "user", Content: "hello"}))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp chatResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Ahoy!", resp.Message)
}

func TestChatRecordsMemories(t *testing.T) {
	s := newTestServer(t, &mockModel{reply: "Nice to meet you."})
	handler := s.router()

	rec := postChat(t, handler, chatBody(
		models.Turn{Role: "user", Content: "hello"},
		models.Turn{Role: "assistant", Content: "hi"},
		models.Turn{Role: "user", Content: "my name is Alex"},
	))
	require.Equal(t, http.StatusOK, rec.Code)

	memories := s.memoryStore.GetAllMemories("captain-marlow")
	require.Len(t, memories, 1)
	assert.Contains(t, memories[0].Content, "User shared: my name is Alex")
}

func TestChatRejectsInvalidBody(t *testing.T) {
	s := newTestServer(t, &mockModel{reply: "x"})
	handler := s.router()

	req := httptest.NewRequest(http.MethodPost, "/api/chat", bytes.NewReader([]byte("{not json")))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestChatRejectsMissingPersonaOrMessages(t *testing.T) {
	s := newTestServer(t, &mockModel{reply: "x"})
	handler := s.router()

	rec := postChat(t, handler, map[string]any{"messages": []models.Turn{}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Missing persona or messages", decodeError(t, rec))

	rec = postChat(t, handler, map[string]any{"persona": personas.Persona{Name: "X"}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestChatErrorStatusMapping(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"missing key", fmt.Errorf("openai: %w", models.ErrMissingAPIKey), http.StatusInternalServerError},
		{"authentication", fmt.Errorf("api error: %w", models.ErrAuthentication), http.StatusUnauthorized},
		{"quota", fmt.Errorf("api error: %w", models.ErrQuotaExceeded), http.StatusTooManyRequests},
		{"empty reply", fmt.Errorf("openai: %w", models.ErrEmptyReply), http.StatusBadGateway},
		{"generic upstream", fmt.Errorf("connection reset"), http.StatusBadGateway},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := newTestServer(t, &mockModel{err: tc.err})
			handler := s.router()

			rec := postChat(t, handler, chatBody(models.Turn{Role: "user", Content: "hello"}))
			assert.Equal(t, tc.status, rec.Code)
			assert.NotEmpty(t, decodeError(t, rec))
		})
	}
}

func TestChatFailureWritesNoMemories(t *testing.T) {
	s := newTestServer(t, &mockModel{err: models.ErrQuotaExceeded})
	handler := s.router()

	rec := postChat(t, handler, chatBody(
		models.Turn{Role: "user", Content: "hello"},
		models.Turn{Role: "assistant", Content: "hi"},
		models.Turn{Role: "user", Content: "my name is Alex"},
	))
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Empty(t, s.memoryStore.GetAllMemories("captain-marlow"))
}

func TestListPersonas(t *testing.T) {
	s := newTestServer(t, &mockModel{reply: "x"})
	handler := s.router()

	req := httptest.NewRequest(http.MethodGet, "/api/personas", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var list []personas.Persona
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.NotEmpty(t, list)
	assert.Equal(t, "Sherlock Holmes", list[0].Name)
}

func TestGetMemoryStatsAndSummary(t *testing.T) {
	s := newTestServer(t, &mockModel{reply: "x"})
	handler := s.router()
	ctx := context.Background()

	req := httptest.NewRequest(http.MethodGet, "/api/personas/captain-marlow/memory", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp memoryResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 0, resp.Stats.TotalMemories)
	assert.Nil(t, resp.Stats.LastInteraction)
	assert.Nil(t, resp.Summary)

	s.memoryStore.AddMemory(ctx, "captain-marlow", "User shared: i sail", "ctx", 6)
	s.memoryStore.UpdateSummary(ctx, "captain-marlow", "Sailing talk.", []string{"fact"})

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Stats.TotalMemories)
	assert.NotNil(t, resp.Stats.LastInteraction)
	require.NotNil(t, resp.Summary)
	assert.Equal(t, "Sailing talk.", resp.Summary.Summary)
}

func TestClearMemory(t *testing.T) {
	s := newTestServer(t, &mockModel{reply: "x"})
	handler := s.router()
	ctx := context.Background()

	s.memoryStore.AddMemory(ctx, "captain-marlow", "to be cleared", "", 5)
	s.memoryStore.UpdateSummary(ctx, "captain-marlow", "summary", nil)

	req := httptest.NewRequest(http.MethodDelete, "/api/personas/captain-marlow/memory", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, s.memoryStore.GetAllMemories("captain-marlow"))
	_, ok := s.memoryStore.GetSummary("captain-marlow")
	assert.False(t, ok)
}

func TestHealthEndpoints(t *testing.T) {
	s := newTestServer(t, &mockModel{reply: "x"})
	handler := s.router()

	for _, path := range []string{"/health/live", "/health/ready"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}
}

func TestChatRequestSizeLimit(t *testing.T) {
	s := newTestServer(t, &mockModel{reply: "x"})
	s.cfg.Security.MaxRequestSize = 64
	handler := s.router()

	rec := postChat(t, handler, chatBody(models.Turn{Role: "user", Content: string(bytes.Repeat([]byte("a"), 200))}))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
