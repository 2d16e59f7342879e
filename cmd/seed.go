package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/okian/pairdesk/internal/matching"
	"github.com/okian/pairdesk/internal/seed"
	"github.com/okian/pairdesk/pkg/logger"
)

type seedFlags struct {
	count        int
	at           string
	reset        bool
	missingPrefs int
	userBase     int64
	emailDomain  string
}

func newSeedCmd(flags *rootFlags) *cobra.Command {
	sf := &seedFlags{}
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Book synthetic appointments for the next slot",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSeed(cmd.Context(), flags, sf)
		},
	}
	cmd.Flags().IntVarP(&sf.count, "count", "n", 20, "number of appointments")
	cmd.Flags().StringVar(&sf.at, "at", "", "book the slot a tick at this RFC3339 time would match")
	cmd.Flags().BoolVar(&sf.reset, "reset", false, "delete existing appointments and preferences first")
	cmd.Flags().IntVar(&sf.missingPrefs, "missing-prefs-every", 0, "leave every n-th user without preferences")
	cmd.Flags().Int64Var(&sf.userBase, "user-base", 0, "first generated user id")
	cmd.Flags().StringVar(&sf.emailDomain, "email-domain", "", "domain of generated addresses")
	return cmd
}

func runSeed(ctx context.Context, flags *rootFlags, sf *seedFlags) error {
	now := time.Now()
	if sf.at != "" {
		t, err := time.Parse(time.RFC3339, sf.at)
		if err != nil {
			return fmt.Errorf("--at must be RFC3339: %w", err)
		}
		now = t
	}

	cfg, err := loadConfig(ctx, flags)
	if err != nil {
		return err
	}
	if cfg.StoreDriver == "memory" {
		logger.Get().Warn(ctx, "seeding the memory store only lasts for this process")
	}
	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	st, err := openStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer func() { _ = st.Close() }()

	if sf.reset {
		t, ok := st.(interface{ Truncate(context.Context) error })
		if !ok {
			return fmt.Errorf("store %q cannot be reset", cfg.StoreDriver)
		}
		if err := t.Truncate(ctx); err != nil {
			return err
		}
	}

	slot := matching.NewCollector(st,
		matching.WithLocation(loc),
		matching.WithSlotLength(cfg.SlotLength),
		matching.WithLogger(logger.Get()),
	).SlotAt(now)

	gen := seed.New(slot,
		seed.WithUserBase(sf.userBase),
		seed.WithEmailDomain(sf.emailDomain),
		seed.WithMissingPreferences(sf.missingPrefs),
	)
	return gen.Seed(ctx, st, sf.count)
}
