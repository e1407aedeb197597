package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/hubmarks/internal/app"
	"github.com/MrSnakeDoc/hubmarks/internal/config"
	"github.com/MrSnakeDoc/hubmarks/internal/logger"
	"github.com/MrSnakeDoc/hubmarks/internal/version"
)

var verbose bool

// rootCmd runs the server when no subcommand is given
var rootCmd = &cobra.Command{
	Use:   "hubmarks",
	Short: "Bookmark service for learning hub content",
	Long: `Hubmarks keeps a bookmark collection of lessons, prompts, modules,
use cases and tools, persisted to memory, SQLite or Redis.

Configuration is read from HUBMARKS_* environment variables.`,
	Version:       version.String(),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runServe,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(importHTMLCmd)
	rootCmd.AddCommand(clearCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "❌ hubmarks: %v\n", err)
		os.Exit(1)
	}
}

// openStorage loads the configuration and opens the bookmark store for one-shot commands.
func openStorage(ctx context.Context) (*app.Storage, error) {
	cfg := config.Load()

	level := "warn"
	if verbose {
		level = "debug"
	}

	return app.OpenStorage(ctx, cfg, logger.New(level, cfg.PrettyLog))
}

// commandContext returns the command context, or Background when run outside Execute.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
