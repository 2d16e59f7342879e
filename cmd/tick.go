package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	app "github.com/okian/pairdesk/internal/app"
	"github.com/okian/pairdesk/pkg/logger"
)

func newTickCmd(flags *rootFlags) *cobra.Command {
	var at string
	cmd := &cobra.Command{
		Use:   "tick",
		Short: "Run one matching tick now and print its report",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			now := time.Now()
			if at != "" {
				t, err := time.Parse(time.RFC3339, at)
				if err != nil {
					return fmt.Errorf("--at must be RFC3339: %w", err)
				}
				now = t
			}

			cfg, err := loadConfig(ctx, flags)
			if err != nil {
				return err
			}
			st, err := openStore(ctx, cfg)
			if err != nil {
				return fmt.Errorf("open store: %w", err)
			}
			opts, cleanup, err := serviceOptions(ctx, cfg, st, logger.Get())
			if err != nil {
				_ = st.Close()
				return err
			}
			defer cleanup()

			svc := app.New(append(opts, app.WithoutScheduler())...)
			if err := svc.Start(ctx); err != nil {
				_ = st.Close()
				return err
			}
			defer svc.Stop()

			rep, tickErr := svc.RunTick(ctx, now)
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(rep); err != nil {
				return err
			}
			return tickErr
		},
	}
	cmd.Flags().StringVar(&at, "at", "", "pretend the tick fires at this RFC3339 time")
	return cmd
}
