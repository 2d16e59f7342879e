package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // postgres driver

	"github.com/okian/pairdesk/internal/domain/model"
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id    BIGINT PRIMARY KEY,
	name  TEXT NOT NULL DEFAULT '',
	email TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS user_prefs (
	user_id             BIGINT PRIMARY KEY REFERENCES users (id),
	language            TEXT NOT NULL,
	skill_level         TEXT NOT NULL,
	partner_skill_level TEXT NOT NULL,
	project_role        TEXT NOT NULL,
	platform            TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS appointment (
	seq                   BIGSERIAL,
	id                    TEXT PRIMARY KEY,
	user_id               BIGINT NOT NULL REFERENCES users (id),
	date                  TEXT NOT NULL,
	start_time            TEXT NOT NULL,
	end_time              TEXT NOT NULL DEFAULT '',
	duration              INTEGER NOT NULL DEFAULT 0,
	is_paired             BOOLEAN NOT NULL DEFAULT FALSE,
	paired_appointment_id TEXT,
	paired_user_id        BIGINT,
	station               TEXT
);

CREATE INDEX IF NOT EXISTS appointment_slot_idx ON appointment (date, start_time, is_paired);
`

const selectAppointments = `
SELECT a.id, a.user_id, a.date, a.start_time, a.end_time, a.duration, a.is_paired,
       COALESCE(a.paired_appointment_id, '') AS paired_appointment_id,
       COALESCE(a.paired_user_id, 0)         AS paired_user_id,
       COALESCE(a.station, '')               AS station,
       COALESCE(u.name, '')                  AS "contact.name",
       COALESCE(u.email, '')                 AS "contact.email"
FROM appointment a
LEFT JOIN users u ON u.id = a.user_id
`

// PostgresStore is a Store backed by PostgreSQL through sqlx.
type PostgresStore struct {
	db *sqlx.DB
}

// NewPostgresStore opens dsn and waits for the database to answer.
func NewPostgresStore(ctx context.Context, dsn string, opts ...Option) (*PostgresStore, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	db, err := sqlx.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxOpenConns(o.maxOpenConns)
	db.SetConnMaxLifetime(o.connMaxLifetime)

	if err := retryPing(o.pingAttempts, func() error { return db.PingContext(ctx) }); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres ping timeout: %w", err)
	}
	return &PostgresStore{db: db}, nil
}

// Migrate creates the tables the scheduler reads and writes.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListUnpaired(ctx context.Context, slot model.Slot) ([]model.Appointment, error) {
	var out []model.Appointment
	q := selectAppointments + `WHERE a.date = $1 AND a.start_time = $2 AND a.is_paired = FALSE ORDER BY a.seq`
	if err := s.db.SelectContext(ctx, &out, q, slot.Date, slot.Start); err != nil {
		return nil, fmt.Errorf("list unpaired %s: %w", slot, err)
	}
	return out, nil
}

func (s *PostgresStore) GetPreferences(ctx context.Context, userID int64) (model.Preferences, error) {
	var p model.Preferences
	err := s.db.GetContext(ctx, &p, `
SELECT user_id, language, skill_level, partner_skill_level, project_role, platform
FROM user_prefs WHERE user_id = $1`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Preferences{}, fmt.Errorf("preferences of user %d: %w", userID, ErrNotFound)
	}
	if err != nil {
		return model.Preferences{}, fmt.Errorf("preferences of user %d: %w", userID, err)
	}
	return p, nil
}

const pairUpdate = `
UPDATE appointment
SET is_paired = TRUE, station = $1, paired_appointment_id = $2, paired_user_id = $3
WHERE id = $4 AND is_paired = FALSE`

func (s *PostgresStore) CommitPair(ctx context.Context, a, b model.Appointment, station string) (err error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for _, side := range [][2]model.Appointment{{a, b}, {b, a}} {
		self, other := side[0], side[1]
		res, execErr := tx.ExecContext(ctx, pairUpdate, station, other.ID, other.UserID, self.ID)
		if execErr != nil {
			return fmt.Errorf("pair %s: %w", self.ID, execErr)
		}
		if n, _ := res.RowsAffected(); n != 1 {
			return fmt.Errorf("pair %s/%s: %w", a.ID, b.ID, ErrAlreadyPaired)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit pair: %w", err)
	}
	return nil
}

func (s *PostgresStore) AssignStation(ctx context.Context, appointmentID, station string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE appointment SET station = $1 WHERE id = $2 AND is_paired = FALSE`, station, appointmentID)
	if err != nil {
		return fmt.Errorf("assign station %s: %w", appointmentID, err)
	}
	if n, _ := res.RowsAffected(); n == 1 {
		return nil
	}

	var exists bool
	if err := s.db.GetContext(ctx, &exists, `SELECT EXISTS (SELECT 1 FROM appointment WHERE id = $1)`, appointmentID); err != nil {
		return fmt.Errorf("assign station %s: %w", appointmentID, err)
	}
	if !exists {
		return fmt.Errorf("appointment %s: %w", appointmentID, ErrNotFound)
	}
	return fmt.Errorf("appointment %s: %w", appointmentID, ErrAlreadyPaired)
}

func (s *PostgresStore) ListByDate(ctx context.Context, date string) ([]model.Appointment, error) {
	var out []model.Appointment
	if err := s.db.SelectContext(ctx, &out, selectAppointments+`WHERE a.date = $1 ORDER BY a.seq`, date); err != nil {
		return nil, fmt.Errorf("list %s: %w", date, err)
	}
	return out, nil
}

func (s *PostgresStore) Insert(ctx context.Context, appts []model.Appointment, prefs []model.Preferences) (err error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for _, a := range appts {
		if _, err = tx.ExecContext(ctx, `
INSERT INTO users (id, name, email) VALUES ($1, $2, $3)
ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, email = EXCLUDED.email`,
			a.UserID, a.Contact.Name, a.Contact.Email); err != nil {
			return fmt.Errorf("insert user %d: %w", a.UserID, err)
		}
	}
	for _, p := range prefs {
		if _, err = tx.NamedExecContext(ctx, `
INSERT INTO user_prefs (user_id, language, skill_level, partner_skill_level, project_role, platform)
VALUES (:user_id, :language, :skill_level, :partner_skill_level, :project_role, :platform)
ON CONFLICT (user_id) DO UPDATE SET
	language = EXCLUDED.language, skill_level = EXCLUDED.skill_level,
	partner_skill_level = EXCLUDED.partner_skill_level,
	project_role = EXCLUDED.project_role, platform = EXCLUDED.platform`, p); err != nil {
			return fmt.Errorf("insert preferences %d: %w", p.UserID, err)
		}
	}
	for _, a := range appts {
		if _, err = tx.ExecContext(ctx, `
INSERT INTO appointment (id, user_id, date, start_time, end_time, duration, is_paired)
VALUES ($1, $2, $3, $4, $5, $6, $7) ON CONFLICT (id) DO NOTHING`,
			a.ID, a.UserID, a.Date, a.StartTime, a.EndTime, a.Duration, a.IsPaired); err != nil {
			return fmt.Errorf("insert appointment %s: %w", a.ID, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit insert: %w", err)
	}
	return nil
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}

// Truncate deletes every row. Used by tests and the seed command's reset flag.
func (s *PostgresStore) Truncate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `TRUNCATE appointment, user_prefs, users RESTART IDENTITY`); err != nil {
		return fmt.Errorf("truncate: %w", err)
	}
	return nil
}
