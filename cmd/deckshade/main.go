package main

import (
	"context"
	"fmt"
	"os"
	"slices"

	"github.com/deckshade/deckshade/internal/cmd"
	"github.com/deckshade/deckshade/internal/config"
	"github.com/deckshade/deckshade/internal/logging"
)

var version = "dev"

func main() {
	ctx := context.Background()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger. With --json the console stays clean for the
	// machine-readable output.
	log := logging.NewLogger(logging.Config{
		Level:   cfg.Logging.Level,
		LogFile: cfg.Paths.LogFile,
		NoColor: cfg.Logging.Color == "never",
		Quiet:   slices.Contains(os.Args[1:], "--json"),
	})

	// Execute root command
	rootCmd := cmd.NewRootCmd(cfg, log, version)
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		log.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}
