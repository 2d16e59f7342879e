package matching

import (
	"context"
	"errors"
	"fmt"

	"github.com/okian/pairdesk/internal/adapters/repository"
	"github.com/okian/pairdesk/internal/domain/model"
	"github.com/okian/pairdesk/internal/domain/station"
	"github.com/okian/pairdesk/pkg/logger"
	"github.com/okian/pairdesk/pkg/metrics"
)

// Committer persists outcomes and assigns their stations.
type Committer struct {
	store     repository.Store
	allocator station.Allocator
	cfg       settings
}

// NewCommitter creates a committer writing to store.
func NewCommitter(store repository.Store, opts ...Option) *Committer {
	cfg := newSettings(opts)
	return &Committer{
		store:     store,
		allocator: station.Allocator{Policy: cfg.policy},
		cfg:       cfg,
	}
}

// Commit writes outcomes in order. The i-th outcome gets the i-th station.
//
// Outcomes whose appointments were already paired are logged and left out
// of the result. The first other failure stops the loop; outcomes committed
// before it are returned along with the error.
func (c *Committer) Commit(ctx context.Context, outcomes []model.Outcome) ([]model.Outcome, error) {
	if err := c.allocator.Check(len(outcomes)); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCommit, err)
	}

	committed := make([]model.Outcome, 0, len(outcomes))
	for i, o := range outcomes {
		label, err := c.allocator.Label(i)
		if err != nil {
			return committed, fmt.Errorf("%w: %w", ErrCommit, err)
		}

		err = c.write(ctx, o, label)
		switch {
		case err == nil:
			o.Station = label
			committed = append(committed, o)
			metrics.RecordOutcome(o.Kind.String())
		case errors.Is(err, repository.ErrAlreadyPaired), errors.Is(err, repository.ErrNotFound):
			metrics.RecordCommitReplay()
			c.cfg.logger.Warn(ctx, "outcome skipped",
				logger.String("kind", o.Kind.String()),
				logger.String("appointment_id", o.First.RequestID),
				logger.String("station", label),
				logger.Error(err),
			)
		default:
			metrics.RecordCommitError()
			return committed, fmt.Errorf("%w: %s outcome for %s: %w", ErrCommit, o.Kind, o.First.RequestID, err)
		}
	}
	return committed, nil
}

func (c *Committer) write(ctx context.Context, o model.Outcome, label string) error {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.ioTimeout)
	defer cancel()

	if o.Kind == model.Pair && o.Second != nil {
		return c.store.CommitPair(ctx, appointmentOf(o.First), appointmentOf(*o.Second), label)
	}
	return c.store.AssignStation(ctx, o.First.RequestID, label)
}

func appointmentOf(c model.Candidate) model.Appointment {
	return model.Appointment{
		ID:        c.RequestID,
		UserID:    c.SubjectID,
		Date:      c.Slot.Date,
		StartTime: c.Slot.Start,
		Contact:   c.Contact,
	}
}
