package main

import (
	"context"
	"fmt"

	"github.com/okian/pairdesk/internal/adapters/mail"
	"github.com/okian/pairdesk/internal/adapters/repository"
	app "github.com/okian/pairdesk/internal/app"
	"github.com/okian/pairdesk/internal/config"
	"github.com/okian/pairdesk/internal/domain/station"
	"github.com/okian/pairdesk/internal/scheduler"
	"github.com/okian/pairdesk/pkg/logger"
)

// openStore connects the configured store and prepares its schema.
func openStore(ctx context.Context, cfg *config.Config) (repository.Store, error) {
	switch cfg.StoreDriver {
	case "postgres":
		st, err := repository.NewPostgresStore(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, err
		}
		if err := st.Migrate(ctx); err != nil {
			_ = st.Close()
			return nil, err
		}
		return st, nil
	case "mongo":
		st, err := repository.NewMongoStore(ctx, cfg.MongoURI, repository.WithDatabase(cfg.MongoDatabase))
		if err != nil {
			return nil, err
		}
		if err := st.EnsureIndexes(ctx); err != nil {
			_ = st.Close()
			return nil, err
		}
		return st, nil
	case "", "memory":
		return repository.NewMemoryStore(), nil
	}
	return nil, fmt.Errorf("%w: unknown store_driver %q", config.ErrInvalidConfig, cfg.StoreDriver)
}

// newMailer builds the configured mail provider.
func newMailer(cfg *config.Config, l logger.Logger) mail.Mailer {
	if cfg.MailProvider == "sendgrid" {
		return mail.NewSendGridMailer(cfg.SendGridAPIKey, cfg.MailFromName, cfg.MailFrom, cfg.AppName)
	}
	return mail.NewConsoleMailer(l.Named("mail"))
}

// serviceOptions translates the configuration into service options. The
// returned cleanup releases resources the options hold.
func serviceOptions(ctx context.Context, cfg *config.Config, st repository.Store, l logger.Logger) ([]app.Option, func(), error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, nil, fmt.Errorf("%w: timezone: %w", config.ErrInvalidConfig, err)
	}
	policy, err := station.ParsePolicy(cfg.StationOverflow)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", config.ErrInvalidConfig, err)
	}

	opts := []app.Option{
		app.WithLogger(l),
		app.WithStore(st),
		app.WithMailer(newMailer(cfg, l)),
		app.WithSite(mail.Site{
			AppName:     cfg.AppName,
			FrontendURL: cfg.FrontendURL,
			Venue:       cfg.Venue,
			FeedbackURL: cfg.FeedbackURL,
		}),
		app.WithWorkerCount(cfg.NotifyWorkers),
		app.WithQueueSize(cfg.NotifyQueueSize),
		app.WithDedupeSize(cfg.NotifyDedupeSize),
		app.WithLocation(loc),
		app.WithSlotLength(cfg.SlotLength),
		app.WithIOTimeout(cfg.IOTimeout),
		app.WithStationPolicy(policy),
		app.WithMorningSkipStart(cfg.MorningReminderSkipStart),
		app.WithSchedule(app.JobMatch, cfg.MatchSchedule),
		app.WithSchedule(app.JobMorningReminder, cfg.MorningReminderSchedule),
		app.WithSchedule(app.JobFeedback, cfg.FeedbackSchedule),
	}

	cleanup := func() {}
	if cfg.LockEnabled() {
		client, err := scheduler.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return nil, nil, err
		}
		locker := scheduler.NewRedisLocker(client)
		opts = append(opts, app.WithLocker(locker, cfg.LockTTL))
		cleanup = func() { _ = locker.Close() }
		l.Info(ctx, "job lock enabled", logger.String("redis_addr", cfg.RedisAddr))
	}
	return opts, cleanup, nil
}
