// Package openai implements the completion service against OpenAI's chat
// completions API.
package openai

import (
	"context"
	"errors"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/lewisedginton/persona_chatbot/internal/models"
	"github.com/lewisedginton/persona_chatbot/pkg/logger"
)

// Model implements models.CompletionService for OpenAI's GPT models.
type Model struct {
	client    *openai.Client
	modelName string
	log       logger.Logger
}

// Config holds configuration for the OpenAI completion service.
type Config struct {
	APIKey     string
	Model      string
	BaseURL    string
	MaxRetries int
	Logger     logger.Logger
}

// New creates a new OpenAI model instance.
func New(cfg Config) (*Model, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai: %w", models.ErrMissingAPIKey)
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("model name is required")
	}
	if cfg.Logger == nil {
		panic("logger cannot be nil")
	}

	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if cfg.MaxRetries > 0 {
		opts = append(opts, option.WithMaxRetries(cfg.MaxRetries))
	}

	client := openai.NewClient(opts...)

	return &Model{
		client:    &client,
		modelName: cfg.Model,
		log:       cfg.Logger.WithFields(logger.StringField("component", "openai_model")),
	}, nil
}

// Name returns the model name.
func (m *Model) Name() string {
	return m.modelName
}

// Complete performs a single non-streaming chat completion.
func (m *Model) Complete(ctx context.Context, req models.Request) (string, error) {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(req.Turns)+1)
	if req.SystemPrompt != "" {
		messages = append(messages, openai.SystemMessage(req.SystemPrompt))
	}
	for _, turn := range req.Turns {
		switch turn.Role {
		case models.RoleAssistant:
			messages = append(messages, openai.AssistantMessage(turn.Content))
		default:
			messages = append(messages, openai.UserMessage(turn.Content))
		}
	}

	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(m.modelName),
		Messages: messages,
	}
	if req.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(req.MaxTokens))
	}
	if req.Temperature > 0 {
		params.Temperature = openai.Float(req.Temperature)
	}

	m.log.Debug("sending completion request",
		logger.IntField("messages_count", len(messages)))

	completion, err := m.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", m.wrapError(err)
	}

	if len(completion.Choices) == 0 || completion.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("openai: %w", models.ErrEmptyReply)
	}

	return completion.Choices[0].Message.Content, nil
}

// wrapError attaches a stable category to upstream API errors.
func (m *Model) wrapError(err error) error {
	var apierr *openai.Error
	if errors.As(err, &apierr) {
		if category := models.CategoryForStatus(apierr.StatusCode); category != nil {
			return fmt.Errorf("openai api error: %w: %w", category, err)
		}
	}
	return fmt.Errorf("openai api error: %w", err)
}
