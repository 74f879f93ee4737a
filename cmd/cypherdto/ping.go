package main

import (
	"context"
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/saulfrancisco-ruizacevedo/go-cypherdto"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newPingCommand() *cobra.Command {
	var (
		configPath string
		timeout    time.Duration
	)
	cmd := &cobra.Command{
		Use:   "ping",
		Short: "Check connectivity to the configured Neo4j database",
		Long: `Load cypherdto.yaml (or --config) with CYPHERDTO_* environment overrides
and verify that the database is reachable with those settings.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cypherdto.LoadConfig(configPath)
			if err != nil {
				return err
			}
			logger, err := cfg.NewLogger()
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			executor, err := cypherdto.NewExecutorFromConfig(cfg, logger)
			if err != nil {
				return err
			}
			defer executor.Close(ctx)

			successColor := color.New(color.FgGreen, color.Bold)
			errorColor := color.New(color.FgRed, color.Bold)

			if err := executor.Verify(ctx); err != nil {
				errorColor.Fprintf(cmd.ErrOrStderr(), "✗ %s (%s): %v\n", cfg.URI, cfg.Database, err)
				return fmt.Errorf("could not connect to database '%s': %w", cfg.Database, err)
			}
			logger.Info("connected", zap.String("uri", cfg.URI), zap.String("database", cfg.Database))
			successColor.Fprintf(cmd.OutOrStdout(), "✓ connected to %s (%s)\n", cfg.URI, cfg.Database)
			return nil
		},
	}
	cmd.Flags().StringVar(&configPath, "config", "", "path to a config file (default ./cypherdto.yaml)")
	cmd.Flags().DurationVar(&timeout, "timeout", 10*time.Second, "connection timeout")
	return cmd
}
