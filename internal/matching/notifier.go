package matching

import (
	"context"

	"github.com/okian/pairdesk/internal/domain/model"
	"github.com/okian/pairdesk/internal/domain/notify"
)

// Dispatcher delivers a batch of jobs and reports once all are done.
type Dispatcher interface {
	Deliver(ctx context.Context, jobs []notify.Job) notify.Report
}

// Notifier turns committed outcomes into confirmation mails.
type Notifier struct {
	dispatcher Dispatcher
	cfg        settings
}

// NewNotifier creates a notifier sending through d.
func NewNotifier(d Dispatcher, opts ...Option) *Notifier {
	return &Notifier{dispatcher: d, cfg: newSettings(opts)}
}

// Notify sends one pair confirmation to each side of every pair and one
// solo confirmation per solo. Delivery failures are counted, not returned.
func (n *Notifier) Notify(ctx context.Context, committed []model.Outcome) notify.Report {
	runID := RunID(ctx)
	jobs := make([]notify.Job, 0, 2*len(committed))
	for _, o := range committed {
		kind := notify.KindSoloReminder
		if o.Kind == model.Pair {
			kind = notify.KindPairReminder
		}
		for _, m := range o.Members() {
			jobs = append(jobs, notify.Job{
				Kind:          kind,
				AppointmentID: m.RequestID,
				To:            m.Contact,
				Date:          m.Slot.Date,
				StartTime:     m.Slot.Start,
				Station:       o.Station,
				RunID:         runID,
			})
		}
	}
	return n.send(ctx, jobs)
}

func (n *Notifier) send(ctx context.Context, jobs []notify.Job) notify.Report {
	if len(jobs) == 0 {
		return notify.Report{}
	}
	return n.dispatcher.Deliver(ctx, jobs)
}
