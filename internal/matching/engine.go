// Package matching runs the scheduled jobs: the matching tick and the
// daily reminder and feedback mails.
package matching

import (
	"context"
	"fmt"
	"time"

	"github.com/okian/pairdesk/internal/adapters/repository"
	"github.com/okian/pairdesk/internal/domain/model"
	"github.com/okian/pairdesk/internal/domain/notify"
	"github.com/okian/pairdesk/internal/domain/pairing"
	"github.com/okian/pairdesk/pkg/logger"
	"github.com/okian/pairdesk/pkg/metrics"
)

// TickReport summarises one matching tick.
type TickReport struct {
	RunID         string        `json:"run_id"`
	StartedAt     time.Time     `json:"started_at"`
	Duration      time.Duration `json:"duration"`
	Slot          string        `json:"slot"`
	Candidates    int           `json:"candidates"`
	Pairs         int           `json:"pairs"`
	Solos         int           `json:"solos"`
	Committed     int           `json:"committed"`
	Notifications notify.Report `json:"notifications"`
	Error         string        `json:"error,omitempty"`
}

// Engine sequences collect, select, commit and notify.
type Engine struct {
	store     repository.Store
	collector *Collector
	committer *Committer
	notifier  *Notifier
	cfg       settings
}

// NewEngine wires the stages over store and d.
func NewEngine(store repository.Store, d Dispatcher, opts ...Option) *Engine {
	return &Engine{
		store:     store,
		collector: NewCollector(store, opts...),
		committer: NewCommitter(store, opts...),
		notifier:  NewNotifier(d, opts...),
		cfg:       newSettings(opts),
	}
}

// RunTick matches the slot starting one slot length after now.
//
// A collection error aborts the tick before anything is written. A commit
// error keeps what was committed, notifies those attendees and is returned.
// Notification failures only show up in the report.
func (e *Engine) RunTick(ctx context.Context, now time.Time) (TickReport, error) {
	ctx, runID := ensureRunID(ctx)
	log := e.cfg.logger.With(logger.String("run_id", runID))
	start := time.Now()
	rep := TickReport{RunID: runID, StartedAt: start}

	finish := func(result string, err error) (TickReport, error) {
		rep.Duration = time.Since(start)
		if err != nil {
			rep.Error = err.Error()
		}
		metrics.RecordTick(result)
		metrics.RecordTickDuration(float64(rep.Duration.Milliseconds()))
		return rep, err
	}

	slot, cands, err := e.collector.Collect(ctx, now)
	rep.Slot = slot.String()
	if err != nil {
		log.Error(ctx, "tick aborted", logger.String("slot", rep.Slot), logger.Error(err))
		return finish(metrics.TickResultError, err)
	}
	rep.Candidates = len(cands)
	if len(cands) == 0 {
		log.Debug(ctx, "no candidates", logger.String("slot", rep.Slot))
		return finish(metrics.TickResultEmpty, nil)
	}

	outcomes := pairing.Select(cands, e.cfg.score)
	for _, o := range outcomes {
		if o.Kind == model.Pair {
			rep.Pairs++
		} else {
			rep.Solos++
		}
	}

	committed, commitErr := e.committer.Commit(ctx, outcomes)
	rep.Committed = len(committed)
	if commitErr != nil {
		log.Error(ctx, "commit stopped", logger.Int("committed", len(committed)), logger.Error(commitErr))
	}

	rep.Notifications = e.notifier.Notify(ctx, committed)

	log.Info(ctx, "tick done",
		logger.String("slot", rep.Slot),
		logger.Int("candidates", rep.Candidates),
		logger.Int("pairs", rep.Pairs),
		logger.Int("solos", rep.Solos),
		logger.Int("committed", rep.Committed),
		logger.Int("mails_sent", rep.Notifications.Sent),
		logger.Int("mails_failed", rep.Notifications.Failed),
	)

	if commitErr != nil {
		return finish(metrics.TickResultError, commitErr)
	}
	return finish(metrics.TickResultOK, nil)
}

// MorningReminders mails every attendee booked today, except sessions
// starting at the configured skip time.
func (e *Engine) MorningReminders(ctx context.Context, now time.Time) (notify.Report, error) {
	skip := e.cfg.skipStart
	return e.daily(ctx, now, notify.KindMorningReminder, func(a model.Appointment) bool {
		return skip == "" || a.StartTime != skip
	})
}

// FeedbackMails asks every attendee booked today for feedback.
func (e *Engine) FeedbackMails(ctx context.Context, now time.Time) (notify.Report, error) {
	return e.daily(ctx, now, notify.KindPostSession, func(model.Appointment) bool { return true })
}

func (e *Engine) daily(ctx context.Context, now time.Time, kind notify.Kind, keep func(model.Appointment) bool) (notify.Report, error) {
	ctx, runID := ensureRunID(ctx)
	date := now.In(e.cfg.location).Format(model.DateLayout)

	listCtx, cancel := context.WithTimeout(ctx, e.cfg.ioTimeout)
	appts, err := e.store.ListByDate(listCtx, date)
	cancel()
	if err != nil {
		return notify.Report{}, fmt.Errorf("%w: list %s: %w", ErrCollect, date, err)
	}

	jobs := make([]notify.Job, 0, len(appts))
	for _, a := range appts {
		if a.Contact.Email == "" || !keep(a) {
			continue
		}
		jobs = append(jobs, notify.Job{
			Kind:          kind,
			AppointmentID: a.ID,
			To:            a.Contact,
			Date:          a.Date,
			StartTime:     a.StartTime,
			Station:       a.Station,
			RunID:         runID,
		})
	}

	rep := e.notifier.send(ctx, jobs)
	e.cfg.logger.Info(ctx, "daily mails done",
		logger.String("kind", string(kind)),
		logger.String("date", date),
		logger.String("run_id", runID),
		logger.Int("sent", rep.Sent),
		logger.Int("failed", rep.Failed),
		logger.Int("duplicate", rep.Duplicate),
	)
	return rep, nil
}
