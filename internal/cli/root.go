// Package cli holds the pathways command tree.
package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/pathways/internal/app"
	"github.com/MrSnakeDoc/pathways/internal/config"
	"github.com/MrSnakeDoc/pathways/internal/logger"
	"github.com/MrSnakeDoc/pathways/internal/version"
)

// NewRootCommand creates the root command. Without a subcommand it serves.
func NewRootCommand() *cobra.Command {
	serve := NewServeCommand()

	cmd := &cobra.Command{
		Use:           "pathways",
		Short:         "Pathways storage service",
		Long:          "Persists learning pathways, settings and remote-sync config behind a key/value storage API.",
		Version:       version.String(),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          serve.RunE,
	}

	cmd.AddCommand(serve)
	cmd.AddCommand(NewExportCommand())
	cmd.AddCommand(NewImportCommand())
	return cmd
}

// openApp loads the environment config and opens the configured store.
// Configuration errors panic from config.Load.
func openApp(ctx context.Context) (*app.App, logger.Logger, error) {
	cfg := config.Load()
	log := logger.New(cfg.LogLevel, cfg.PrettyLog)

	a, err := app.New(ctx, cfg, log)
	if err != nil {
		return nil, nil, err
	}
	return a, log, nil
}

func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}
