// Package anthropic implements the completion service against Anthropic's
// Messages API.
package anthropic

import (
	"context"
	"errors"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/lewisedginton/persona_chatbot/internal/models"
	"github.com/lewisedginton/persona_chatbot/pkg/logger"
)

const defaultMaxTokens = 1024

// ClaudeModel implements models.CompletionService for Anthropic Claude models.
type ClaudeModel struct {
	client    anthropic.Client
	modelName string
	log       logger.Logger
}

// Config holds configuration for the Claude completion service.
type Config struct {
	APIKey     string
	Model      string
	BaseURL    string
	MaxRetries int
	Logger     logger.Logger
}

// New creates a new Claude model instance.
func New(cfg Config) (*ClaudeModel, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("anthropic: %w", models.ErrMissingAPIKey)
	}
	if cfg.Model == "" {
		cfg.Model = string(anthropic.ModelClaudeSonnet4_5_20250929)
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

	return &ClaudeModel{
		client:    anthropic.NewClient(opts...),
		modelName: cfg.Model,
		log:       cfg.Logger.WithFields(logger.StringField("component", "claude_model")),
	}, nil
}

// Name returns the name of the model.
func (c *ClaudeModel) Name() string {
	return c.modelName
}

// Complete performs a single non-streaming message completion.
func (c *ClaudeModel) Complete(ctx context.Context, req models.Request) (string, error) {
	messages := make([]anthropic.MessageParam, 0, len(req.Turns))
	for _, turn := range req.Turns {
		block := anthropic.NewTextBlock(turn.Content)
		switch turn.Role {
		case models.RoleAssistant:
			messages = append(messages, anthropic.NewAssistantMessage(block))
		default:
			messages = append(messages, anthropic.NewUserMessage(block))
		}
	}

	maxTokens := int64(defaultMaxTokens)
	if req.MaxTokens > 0 {
		maxTokens = int64(req.MaxTokens)
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(c.modelName),
		MaxTokens: maxTokens,
		Messages:  messages,
	}
	if req.SystemPrompt != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.SystemPrompt}}
	}
	if req.Temperature > 0 {
		params.Temperature = anthropic.Float(req.Temperature)
	}

	c.log.Debug("sending completion request",
		logger.IntField("messages_count", len(messages)))

	resp, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return "", c.wrapError(err)
	}

	var reply string
	for _, block := range resp.Content {
		if block.Type == "text" {
			reply += block.Text
		}
	}
	if reply == "" {
		return "", fmt.Errorf("anthropic: %w", models.ErrEmptyReply)
	}

	return reply, nil
}

// wrapError attaches a stable category to upstream API errors.
func (c *ClaudeModel) wrapError(err error) error {
	var apierr *anthropic.Error
	if errors.As(err, &apierr) {
		if category := models.CategoryForStatus(apierr.StatusCode); category != nil {
			return fmt.Errorf("claude api error: %w: %w", category, err)
		}
	}
	return fmt.Errorf("claude api error: %w", err)
}
