package repository

import (
	"context"
	"fmt"
	"sync"

	"github.com/okian/pairdesk/internal/domain/model"
)

// MemoryStore is an in-process Store that keeps insertion order.
type MemoryStore struct {
	mu    sync.RWMutex
	order []string
	appts map[string]*model.Appointment
	prefs map[int64]model.Preferences
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		appts: make(map[string]*model.Appointment),
		prefs: make(map[int64]model.Preferences),
	}
}

func (s *MemoryStore) ListUnpaired(ctx context.Context, slot model.Slot) ([]model.Appointment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []model.Appointment
	for _, id := range s.order {
		a := s.appts[id]
		if !a.IsPaired && a.Date == slot.Date && a.StartTime == slot.Start {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (s *MemoryStore) GetPreferences(ctx context.Context, userID int64) (model.Preferences, error) {
	if err := ctx.Err(); err != nil {
		return model.Preferences{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.prefs[userID]
	if !ok {
		return model.Preferences{}, fmt.Errorf("preferences of user %d: %w", userID, ErrNotFound)
	}
	return p, nil
}

func (s *MemoryStore) CommitPair(ctx context.Context, a, b model.Appointment, station string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	ra, ok := s.appts[a.ID]
	if !ok {
		return fmt.Errorf("appointment %s: %w", a.ID, ErrNotFound)
	}
	rb, ok := s.appts[b.ID]
	if !ok {
		return fmt.Errorf("appointment %s: %w", b.ID, ErrNotFound)
	}
	if ra.IsPaired || rb.IsPaired {
		return fmt.Errorf("pair %s/%s: %w", a.ID, b.ID, ErrAlreadyPaired)
	}

	ra.IsPaired, rb.IsPaired = true, true
	ra.Station, rb.Station = station, station
	ra.PairedAppointmentID, rb.PairedAppointmentID = rb.ID, ra.ID
	ra.PairedUserID, rb.PairedUserID = rb.UserID, ra.UserID
	return nil
}

func (s *MemoryStore) AssignStation(ctx context.Context, appointmentID, station string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.appts[appointmentID]
	if !ok {
		return fmt.Errorf("appointment %s: %w", appointmentID, ErrNotFound)
	}
	if r.IsPaired {
		return fmt.Errorf("appointment %s: %w", appointmentID, ErrAlreadyPaired)
	}
	r.Station = station
	return nil
}

func (s *MemoryStore) ListByDate(ctx context.Context, date string) ([]model.Appointment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []model.Appointment
	for _, id := range s.order {
		if a := s.appts[id]; a.Date == date {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (s *MemoryStore) Insert(ctx context.Context, appts []model.Appointment, prefs []model.Preferences) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range appts {
		a := appts[i]
		if _, exists := s.appts[a.ID]; !exists {
			s.order = append(s.order, a.ID)
		}
		s.appts[a.ID] = &a
	}
	for _, p := range prefs {
		s.prefs[p.UserID] = p
	}
	return nil
}

// Get returns a copy of one appointment.
func (s *MemoryStore) Get(id string) (model.Appointment, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.appts[id]
	if !ok {
		return model.Appointment{}, false
	}
	return *a, true
}

// Count returns the number of stored appointments.
func (s *MemoryStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}

func (s *MemoryStore) Close() error { return nil }

// Truncate deletes everything.
func (s *MemoryStore) Truncate(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.order = nil
	s.appts = make(map[string]*model.Appointment)
	s.prefs = make(map[int64]model.Preferences)
	return nil
}
