// Package cli defines the chatbot's command line surface.
package cli

import (
	"fmt"

	"github.com/urfave/cli/v2"

	appconfig "github.com/lewisedginton/persona_chatbot/internal/config"
	"github.com/lewisedginton/persona_chatbot/pkg/config"
	"github.com/lewisedginton/persona_chatbot/pkg/logger"
)

// getLogger retrieves the logger from the CLI context metadata.
func getLogger(ctx *cli.Context) logger.Logger {
	if ctx.App.Metadata != nil {
		if log, ok := ctx.App.Metadata["logger"].(logger.Logger); ok {
			return log
		}
	}

	return logger.NewLogger(logger.Config{
		Level:   logger.InfoLevel,
		Format:  "json",
		Service: "persona-chatbot",
	})
}

// loadConfig loads and validates the application configuration from the
// optional config file plus environment variables.
func loadConfig(ctx *cli.Context) (*appconfig.AppConfig, error) {
	cfg := &appconfig.AppConfig{}
	if err := config.GetConfig(cfg, ctx.String("config-file"), true); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}
