// Package cmd defines and implements the CLI commands for the
// harvester executable.
package cmd

import (
	"context"
	"fmt"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/alpentrace/harvester/internal/config"
	"github.com/alpentrace/harvester/internal/logging"
)

var cfgFile string

type ctxKey string

const (
	configKey ctxKey = "config"
	loggerKey ctxKey = "logger"
)

// newRootCmd creates and configures the root command. Configuration
// and the logger are built once in PersistentPreRunE and handed to
// subcommands through the context.
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "harvester",
		Short: "Concurrent real-estate listing harvester.",
		Long: `harvester discovers property listings on a configured source site,
scrapes them with a bounded worker pool, normalizes every record against
a fixed field schema and persists the run to a JSON file or a size-bounded
document store.`,

		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// A missing .env file is not an error; explicit config wins.
			_ = godotenv.Load()

			cfg, err := config.Load(cfgFile, cmd.Flags())
			if err != nil {
				return fmt.Errorf("load configuration: %w", err)
			}

			logger, err := logging.New(cfg.Logging)
			if err != nil {
				return fmt.Errorf("initialize logger: %w", err)
			}

			ctx := context.WithValue(cmd.Context(), configKey, cfg)
			ctx = context.WithValue(ctx, loggerKey, logger)
			cmd.SetContext(ctx)
			return nil
		},

		PersistentPostRun: func(cmd *cobra.Command, _ []string) {
			if logger, ok := cmd.Context().Value(loggerKey).(*zap.Logger); ok && logger != nil {
				_ = logger.Sync()
			}
		},
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is environment only)")

	cmd.AddCommand(newHarvestCmd())
	cmd.AddCommand(newSourcesCmd())

	return cmd
}

func resolveConfig(ctx context.Context) (config.Config, error) {
	cfg, ok := ctx.Value(configKey).(config.Config)
	if !ok {
		return config.Config{}, fmt.Errorf("configuration not initialized")
	}
	return cfg, nil
}

func resolveLogger(ctx context.Context) (*zap.Logger, error) {
	logger, ok := ctx.Value(loggerKey).(*zap.Logger)
	if !ok || logger == nil {
		return nil, fmt.Errorf("logger not initialized")
	}
	return logger, nil
}

// Execute runs the root command under the given context.
func Execute(ctx context.Context) error {
	return newRootCmd().ExecuteContext(ctx)
}
