package cli

import (
	"fmt"

	"github.com/urfave/cli/v2"

	appconfig "github.com/lewisedginton/persona_chatbot/internal/config"
	"github.com/lewisedginton/persona_chatbot/internal/personas"
	"github.com/lewisedginton/persona_chatbot/internal/storage_manager"
)

// PersonasCommand returns a command for inspecting the persona catalog
func PersonasCommand() *cli.Command {
	return &cli.Command{
		Name:    "personas",
		Aliases: []string{"p"},
		Usage:   "Persona catalog operations",
		Subcommands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "List available personas",
				Action: personasListAction,
			},
		},
	}
}

func personasListAction(ctx *cli.Context) error {
	log := getLogger(ctx)

	managerConfig := personas.Config{Logger: log}

	// Include custom personas when local storage is configured; without it
	// only the built-in catalog is shown.
	if cfg, err := loadConfig(ctx); err == nil && cfg.Storage.Backend == appconfig.StorageBackendLocal {
		provider := storage_manager.NewLocalFileProvider(cfg.Storage.LocalDir)
		managerConfig.FileProvider = storage_manager.NewPrefixedFileProvider(provider, "personas")
	}

	manager := personas.New(managerConfig)
	for _, p := range manager.All(ctx.Context) {
		fmt.Printf("%s %s (%s)\n", p.Avatar, p.Name, p.Slug())
		fmt.Printf("    %s\n", p.Description)
	}
	return nil
}
