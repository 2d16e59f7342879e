package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/okian/pairdesk/internal/config"
	"github.com/okian/pairdesk/pkg/logger"
)

type rootFlags struct {
	configPath string
	envFile    string
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}
	root := &cobra.Command{
		Use:           "pairdesk",
		Short:         "Scheduled pair matching and session reminders",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), flags)
		},
	}
	root.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "", "YAML configuration file (overrides PAIRDESK_CONFIG)")
	root.PersistentFlags().StringVar(&flags.envFile, "env-file", "", "dotenv file (overrides PAIRDESK_ENV_FILE)")

	root.AddCommand(
		newServeCmd(flags),
		newTickCmd(flags),
		newSeedCmd(flags),
	)
	return root
}

// loadConfig applies the command-line overrides, loads the configuration
// and configures logging from it.
func loadConfig(ctx context.Context, flags *rootFlags) (*config.Config, error) {
	if flags.configPath != "" {
		if err := os.Setenv("PAIRDESK_CONFIG", flags.configPath); err != nil {
			return nil, err
		}
	}
	if flags.envFile != "" {
		if err := os.Setenv("PAIRDESK_ENV_FILE", flags.envFile); err != nil {
			return nil, err
		}
	}

	cfg, err := config.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	if err := logger.SetFormat(cfg.LogFormat); err != nil {
		logger.Get().Warn(ctx, "invalid log_format; keeping text", logger.String("log_format", cfg.LogFormat), logger.Error(err))
	}
	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		logger.Get().Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}
	return cfg, nil
}
