package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/lewisedginton/persona_chatbot/internal/memory_store"
	"github.com/lewisedginton/persona_chatbot/internal/models"
	"github.com/lewisedginton/persona_chatbot/internal/personas"
	"github.com/lewisedginton/persona_chatbot/pkg/httpmiddleware"
	"github.com/lewisedginton/persona_chatbot/pkg/logger"
	"github.com/lewisedginton/persona_chatbot/pkg/metrics"
)

type chatRequest struct {
	Persona  personas.Persona `json:"persona"`
	Messages []models.Turn    `json:"messages"`
}

type chatResponse struct {
	Message string `json:"message"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type memoryResponse struct {
	Stats   memory_store.Stats                `json:"stats"`
	Summary *memory_store.ConversationSummary `json:"summary"`
}

// router builds the HTTP routing tree with the full middleware stack.
func (s *Server) router() http.Handler {
	r := chi.NewRouter()

	mwConfig := httpmiddleware.DefaultConfig()
	mwConfig.Logger = s.log
	mwConfig.EnableLogging = true
	mwConfig.Timeout = s.cfg.RequestTimeout
	mwConfig.CORS = &httpmiddleware.CORSConfig{
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "Content-Type", logger.CorrelationIDHeader},
		AllowedOrigins:   s.cfg.Security.CORSAllowedOrigins,
		AllowCredentials: false,
		MaxAge:           300,
	}
	httpmiddleware.ApplyToRouter(r, mwConfig)
	r.Use(s.metrics.HTTPMiddleware())

	r.Route("/api", func(r chi.Router) {
		r.Post("/chat", s.handleChat)
		r.Get("/personas", s.handleListPersonas)
		r.Route("/personas/{id}/memory", func(r chi.Router) {
			r.Get("/", s.handleGetMemory)
			r.Delete("/", s.handleClearMemory)
		})
	})

	if s.cfg.Health.Enabled {
		r.Get(s.cfg.Health.LivenessPath, s.healthChecker.LivenessHandler())
		r.Get(s.cfg.Health.ReadinessPath, s.healthChecker.ReadinessHandler())
	}

	return r
}

// handleChat runs one persona chat turn.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Security.MaxRequestSize)

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Persona.Name == "" || req.Messages == nil {
		s.writeError(w, http.StatusBadRequest, "Missing persona or messages")
		return
	}

	reply, err := s.assembler.RunTurn(r.Context(), req.Persona, req.Messages)
	if err != nil {
		log := logger.GetLoggerFromContext(r.Context(), s.log)
		log.Error("chat turn failed",
			logger.PersonaField(req.Persona.Slug()),
			logger.ErrorField(err))
		s.writeError(w, statusForError(err), messageForError(err))
		return
	}

	s.writeJSON(w, http.StatusOK, chatResponse{Message: reply})
}

// handleListPersonas returns the full persona catalog.
func (s *Server) handleListPersonas(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.personaManager.All(r.Context()))
}

// handleGetMemory reports memory stats and the current summary for a persona.
func (s *Server) handleGetMemory(w http.ResponseWriter, r *http.Request) {
	personaID := chi.URLParam(r, "id")

	resp := memoryResponse{Stats: s.memoryStore.GetMemoryStats(personaID)}
	if summary, ok := s.memoryStore.GetSummary(personaID); ok {
		resp.Summary = &summary
	}

	s.writeJSON(w, http.StatusOK, resp)
}

// handleClearMemory wipes a persona's memories and summary.
func (s *Server) handleClearMemory(w http.ResponseWriter, r *http.Request) {
	personaID := chi.URLParam(r, "id")

	s.memoryStore.ClearMemories(r.Context(), personaID)
	s.metrics.IncChatCounter(metrics.ChatMetricMemoriesCleared)

	w.WriteHeader(http.StatusNoContent)
}

// statusForError maps completion service errors to stable HTTP statuses.
// A missing API key is a server misconfiguration. Anything unclassified
// from the upstream provider is a bad gateway.
func statusForError(err error) int {
	switch {
	case errors.Is(err, models.ErrMissingAPIKey):
		return http.StatusInternalServerError
	case errors.Is(err, models.ErrAuthentication):
		return http.StatusUnauthorized
	case errors.Is(err, models.ErrQuotaExceeded):
		return http.StatusTooManyRequests
	default:
		return http.StatusBadGateway
	}
}

// messageForError renders a stable user-facing message per error category.
func messageForError(err error) string {
	switch {
	case errors.Is(err, models.ErrMissingAPIKey):
		return "LLM API key is not configured. Please check the server configuration."
	case errors.Is(err, models.ErrAuthentication):
		return "Invalid LLM API key. Please check your configuration."
	case errors.Is(err, models.ErrQuotaExceeded):
		return "LLM API quota exceeded. Please check your usage limits."
	default:
		return "Failed to process chat request. Please try again."
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.log.Error("failed to encode response", logger.ErrorField(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, errorResponse{Error: message})
}
