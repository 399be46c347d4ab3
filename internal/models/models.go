// Package models defines the completion-service boundary the chat core talks
// to. Providers implement CompletionService; the core treats them as an opaque
// text-completion call and never retries at this layer.
package models

import (
	"context"
)

// Turn roles as sent to the completion service.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Turn is a single role-tagged message in the transcript.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request carries one completion call: a leading system instruction plus the
// full alternating transcript.
type Request struct {
	SystemPrompt string
	Turns        []Turn
	MaxTokens    int
	Temperature  float64
}

// CompletionService generates a single reply for a transcript.
// Implementations must return ErrEmptyReply (possibly wrapped) when the
// upstream responds without usable text.
type CompletionService interface {
	// Name returns the provider/model identifier for logging
	Name() string

	// Complete performs one completion call and returns the reply text
	Complete(ctx context.Context, req Request) (string, error)
}
