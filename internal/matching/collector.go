package matching

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/okian/pairdesk/internal/adapters/repository"
	"github.com/okian/pairdesk/internal/domain/model"
	"github.com/okian/pairdesk/pkg/logger"
	"github.com/okian/pairdesk/pkg/metrics"
)

// Collector gathers the unpaired candidates of the upcoming slot.
type Collector struct {
	store repository.Store
	cfg   settings
}

// NewCollector creates a collector reading from store.
func NewCollector(store repository.Store, opts ...Option) *Collector {
	return &Collector{store: store, cfg: newSettings(opts)}
}

// SlotAt returns the slot that starts one slot length after now, in the
// configured zone.
func (c *Collector) SlotAt(now time.Time) model.Slot {
	t := now.In(c.cfg.location).Add(c.cfg.slotLength)
	return model.Slot{
		Date:  t.Format(model.DateLayout),
		Start: t.Format(model.TimeLayout),
	}
}

// Collect lists the unpaired appointments of the upcoming slot and joins
// them with their owners' preferences, keeping store order. Appointments
// whose owner has no preferences, or preferences with unknown values, are
// skipped. Any store error aborts.
func (c *Collector) Collect(ctx context.Context, now time.Time) (model.Slot, []model.Candidate, error) {
	slot := c.SlotAt(now)

	listCtx, cancel := context.WithTimeout(ctx, c.cfg.ioTimeout)
	appts, err := c.store.ListUnpaired(listCtx, slot)
	cancel()
	if err != nil {
		return slot, nil, fmt.Errorf("%w: list %s: %w", ErrCollect, slot, err)
	}

	cands := make([]model.Candidate, 0, len(appts))
	for _, a := range appts {
		prefCtx, cancel := context.WithTimeout(ctx, c.cfg.ioTimeout)
		p, err := c.store.GetPreferences(prefCtx, a.UserID)
		cancel()
		if errors.Is(err, repository.ErrNotFound) {
			metrics.RecordCandidateSkipped()
			c.cfg.logger.Debug(ctx, "skipping appointment without preferences",
				logger.String("appointment_id", a.ID),
				logger.Int64("user_id", a.UserID),
			)
			continue
		}
		if err != nil {
			return slot, nil, fmt.Errorf("%w: preferences of user %d: %w", ErrCollect, a.UserID, err)
		}
		if p, err = p.Normalize(); err != nil {
			metrics.RecordCandidateSkipped()
			c.cfg.logger.Warn(ctx, "skipping appointment with invalid preferences",
				logger.String("appointment_id", a.ID),
				logger.Error(err),
			)
			continue
		}
		cands = append(cands, model.NewCandidate(a, p))
	}

	metrics.UpdateCandidates(len(cands))
	return slot, cands, nil
}
