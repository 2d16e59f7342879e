package scheduler

import "errors"

var (
	// ErrInFlight is returned when a job is triggered while its previous run is still going.
	ErrInFlight = errors.New("job already running")
	// ErrLocked is returned when another replica holds the job's lock.
	ErrLocked = errors.New("job locked by another replica")
	// ErrUnknownJob is returned for names that were never registered.
	ErrUnknownJob = errors.New("unknown job")
	// ErrStopped is returned when a job is triggered while the scheduler is stopping or stopped.
	ErrStopped = errors.New("scheduler stopped")
	// ErrDuplicateJob is returned when a name is registered twice.
	ErrDuplicateJob = errors.New("job already registered")
)
