// Package repository defines the appointment store interface and its backends.
package repository

import (
	"context"

	"github.com/okian/pairdesk/internal/domain/model"
)

// Store provides the reads and guarded writes the scheduled jobs need.
type Store interface {
	// ListUnpaired returns unpaired appointments booked for slot, in store order.
	ListUnpaired(ctx context.Context, slot model.Slot) ([]model.Appointment, error)

	// GetPreferences returns a user's matching preferences.
	// Returns ErrNotFound if the user never filled them in.
	GetPreferences(ctx context.Context, userID int64) (model.Preferences, error)

	// CommitPair marks a and b paired with each other at station.
	// Only rows that are still unpaired are touched; if either side is
	// already paired nothing changes and ErrAlreadyPaired is returned.
	CommitPair(ctx context.Context, a, b model.Appointment, station string) error

	// AssignStation sets the station of a solo appointment that is still unpaired.
	// Returns ErrAlreadyPaired if it was paired in the meantime and ErrNotFound
	// if it does not exist.
	AssignStation(ctx context.Context, appointmentID, station string) error

	// ListByDate returns every appointment on date (DD-MM-YYYY), paired or not.
	ListByDate(ctx context.Context, date string) ([]model.Appointment, error)

	// Insert adds appointments and upserts preferences. Used for seeding.
	Insert(ctx context.Context, appts []model.Appointment, prefs []model.Preferences) error

	Close() error
}
