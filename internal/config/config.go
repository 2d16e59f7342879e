// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New(ctx) to build a Config with defaults.
// - Load layers a .env file, an optional YAML file and PAIRDESK_* env vars on top.
// - External errors are wrapped with this package's sentinel errors.
package config

import (
	"context"
	"time"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level" validate:"oneof=debug info warn warning error"`

	// LogFormat selects the slog handler: text or json.
	LogFormat string `koanf:"log_format" validate:"oneof=text json"`

	// Addr configures the ops HTTP listen address, e.g. ":9090".
	Addr string `koanf:"addr" validate:"required"`

	// Timezone is the IANA zone slots and cron specs are evaluated in.
	Timezone string `koanf:"timezone" validate:"required"`

	// SlotLength is how far ahead of now the matched slot starts.
	SlotLength time.Duration `koanf:"slot_length" validate:"gt=0"`

	// IOTimeout bounds every store call and mail send.
	IOTimeout time.Duration `koanf:"io_timeout" validate:"gt=0"`

	// Cron specs for the three scheduled jobs. Empty disables a reminder job.
	MatchSchedule           string `koanf:"match_schedule" validate:"required"`
	MorningReminderSchedule string `koanf:"morning_reminder_schedule"`
	FeedbackSchedule        string `koanf:"feedback_schedule"`

	// MorningReminderSkipStart is the start time that gets no morning reminder.
	MorningReminderSkipStart string `koanf:"morning_reminder_skip_start"`

	// StationOverflow is extend or fail.
	StationOverflow string `koanf:"station_overflow" validate:"oneof=extend fail"`

	// StoreDriver selects the appointment store: memory, postgres or mongo.
	StoreDriver   string `koanf:"store_driver" validate:"oneof=memory postgres mongo"`
	PostgresDSN   string `koanf:"postgres_dsn" validate:"required_if=StoreDriver postgres"`
	MongoURI      string `koanf:"mongo_uri" validate:"required_if=StoreDriver mongo"`
	MongoDatabase string `koanf:"mongo_database"`

	// MailProvider selects delivery: console or sendgrid.
	MailProvider   string `koanf:"mail_provider" validate:"oneof=console sendgrid"`
	SendGridAPIKey string `koanf:"sendgrid_api_key" validate:"required_if=MailProvider sendgrid"`
	MailFrom       string `koanf:"mail_from" validate:"required,email"`
	MailFromName   string `koanf:"mail_from_name"`
	AppName        string `koanf:"app_name"`
	FrontendURL    string `koanf:"frontend_url"`
	Venue          string `koanf:"venue"`
	FeedbackURL    string `koanf:"feedback_url"`

	// NotifyWorkers sets the number of mail delivery workers.
	NotifyWorkers int `koanf:"notify_workers" validate:"gte=1"`

	// NotifyQueueSize bounds the in-memory notification queue.
	NotifyQueueSize int `koanf:"notify_queue_size" validate:"gte=1"`

	// NotifyDedupeSize sets how many delivery keys are remembered.
	NotifyDedupeSize int `koanf:"notify_dedupe_size"`

	// Redis lock for running several replicas. Disabled when RedisAddr is empty.
	RedisAddr     string        `koanf:"redis_addr"`
	RedisPassword string        `koanf:"redis_password"`
	RedisDB       int           `koanf:"redis_db"`
	LockTTL       time.Duration `koanf:"lock_ttl"`
}

// New creates a Config with defaults. Context is accepted first to satisfy
// the project-wide convention and is currently unused.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:                 "info",
		LogFormat:                "text",
		Addr:                     ":9090",
		Timezone:                 "America/Los_Angeles",
		SlotLength:               time.Hour,
		IOTimeout:                10 * time.Second,
		MatchSchedule:            "* * * * *",
		MorningReminderSchedule:  "0 11 * * *",
		FeedbackSchedule:         "0 19 * * *",
		MorningReminderSkipStart: "12:00",
		StationOverflow:          "extend",
		StoreDriver:              "memory",
		MongoDatabase:            "pairdesk",
		MailProvider:             "console",
		MailFrom:                 "no-reply@pairdesk.local",
		MailFromName:             "pairdesk",
		AppName:                  "pairdesk",
		NotifyWorkers:            4,
		NotifyQueueSize:          256,
		NotifyDedupeSize:         10_000,
		LockTTL:                  50 * time.Second,
	}
}

// Location resolves Timezone.
func (c *Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.Timezone)
}

// LockEnabled reports whether ticks are guarded by a Redis lock.
func (c *Config) LockEnabled() bool {
	return c.RedisAddr != ""
}
