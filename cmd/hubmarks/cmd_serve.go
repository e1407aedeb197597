package main

import (
	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/hubmarks/internal/app"
	"github.com/MrSnakeDoc/hubmarks/internal/config"
	"github.com/MrSnakeDoc/hubmarks/internal/logger"
)

// serveCmd starts the HTTP server and the schedulers
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	if verbose {
		cfg.LogLevel = "debug"
	}

	log := logger.New(cfg.LogLevel, cfg.PrettyLog)
	defer func() { _ = log.Sync() }()

	a, err := app.New(cfg, log)
	if err != nil {
		return err
	}
	return a.Run()
}
