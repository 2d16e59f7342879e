package repository

import "time"

// Option configures the SQL and document store backends.
type Option func(*options)

type options struct {
	maxOpenConns    int
	connMaxLifetime time.Duration
	pingAttempts    int
	database        string
}

func defaultOptions() options {
	return options{
		maxOpenConns:    10,
		connMaxLifetime: 30 * time.Minute,
		pingAttempts:    10,
		database:        "pairdesk",
	}
}

// WithMaxOpenConns caps the SQL connection pool.
func WithMaxOpenConns(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxOpenConns = n
		}
	}
}

// WithConnMaxLifetime recycles SQL connections after d.
func WithConnMaxLifetime(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.connMaxLifetime = d
		}
	}
}

// WithPingAttempts sets how many times the backend is pinged before giving up.
// Each attempt waits 100ms longer than the previous one.
func WithPingAttempts(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.pingAttempts = n
		}
	}
}

// WithDatabase sets the MongoDB database name.
func WithDatabase(name string) Option {
	return func(o *options) {
		if name != "" {
			o.database = name
		}
	}
}

// retryPing calls ping until it succeeds, backing off linearly.
func retryPing(attempts int, ping func() error) error {
	var err error
	for i := 1; i <= attempts; i++ {
		if err = ping(); err == nil {
			return nil
		}
		time.Sleep(time.Duration(i) * 100 * time.Millisecond)
	}
	return err
}
