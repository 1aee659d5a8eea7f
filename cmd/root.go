// Package cmd wires the lolmetrics CLI: the pipeline orchestrator, the
// read-only artifact server and a store inspector.
package cmd

import (
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"lolmetrics/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "lolmetrics",
	Short: "Friend-group match ingestion and metrics pipeline",
	Long: "Ingest competitive match records for a tracked friend group, " +
		"build filtered and flattened views in the document store, and " +
		"compute the metric artifact catalogue.",
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(statusCmd)
}

// loadConfig reads the environment configuration and applies the log level.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}

	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("parse LOG_LEVEL: %w", err)
	}
	log.SetLevel(level)
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	return cfg, nil
}
