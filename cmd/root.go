// Package cmd implements the nimbus-console command line interface.
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nimbusops/console/internal/config"
	"github.com/nimbusops/console/internal/log"
	"github.com/nimbusops/console/internal/state"
)

var rootCmd = &cobra.Command{
	Use:   "nimbus-console",
	Short: "Web console for the Nimbus AIOps platform",
	Long: `nimbus-console serves the operator web interface for a Nimbus AIOps
backend: chat surfaces with streaming responses, the artifact canvas,
the PII detection log viewer, and the panel query editor.

Run without arguments to start the server.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd, args)
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// setup loads configuration and builds the logger every command shares.
func setup() (*config.Config, log.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("validating config: %w", err)
	}

	logger := log.New(log.Config{
		Level: log.ParseLevel(cfg.LogLevel),
		JSON:  cfg.LogFormat == "json",
	})
	return cfg, logger, nil
}

// stateDir resolves the preference directory, honoring the config override.
func stateDir(cfg *config.Config) (string, error) {
	if cfg.StateDir != "" {
		return cfg.StateDir, nil
	}
	dir, err := state.DefaultDir()
	if err != nil {
		return "", fmt.Errorf("resolving state dir: %w", err)
	}
	return dir, nil
}
