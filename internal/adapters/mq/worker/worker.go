// Package worker delivers queued notification jobs.
package worker

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/okian/pairdesk/internal/adapters/mail"
	"github.com/okian/pairdesk/internal/adapters/mq/queue"
	"github.com/okian/pairdesk/internal/domain/dedupe"
	"github.com/okian/pairdesk/internal/domain/notify"
	"github.com/okian/pairdesk/pkg/logger"
	"github.com/okian/pairdesk/pkg/metrics"
)

// Default worker configuration constants.
const (
	defaultWorkerCount  = 4
	defaultSendTimeout  = 10 * time.Second
	poolShutdownTimeout = 30 * time.Second
)

// Renderer fills message bodies from templates.
type Renderer interface {
	Render(m *mail.Message) error
}

// Worker delivers jobs read from a queue.
type Worker interface {
	// Run starts the worker loop until ctx is canceled or the queue closes.
	Run(ctx context.Context)

	// Shutdown stops the worker and waits for the current job.
	Shutdown(ctx context.Context) error
}

// InMemoryWorker renders and sends one job at a time.
type InMemoryWorker struct {
	queue    queue.Queue
	mailer   mail.Mailer
	renderer Renderer
	deduper  dedupe.Deduper
	timeout  time.Duration
	name     string

	shutdown     chan struct{}
	shutdownOnce sync.Once
	done         chan struct{}

	logger logger.Logger
}

// NewInMemoryWorker creates a new worker with configuration options.
func NewInMemoryWorker(q queue.Queue, mailer mail.Mailer, renderer Renderer, d dedupe.Deduper, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:    q,
		mailer:   mailer,
		renderer: renderer,
		deduper:  d,
		timeout:  defaultSendTimeout,
		name:     "worker",
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.logger == nil {
		w.logger = logger.Get().Named(w.name)
	}
	return w
}

// Run starts the worker loop.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	jobs := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case j, ok := <-jobs:
			if !ok {
				return
			}
			w.deliver(ctx, j)
		}
	}
}

// Shutdown gracefully stops the worker. It is safe to call more than once.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	w.shutdownOnce.Do(func() { close(w.shutdown) })
	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// deliver sends one job and reports the result through the job's callback.
// Failures are logged and counted; they never stop the worker.
func (w *InMemoryWorker) deliver(ctx context.Context, j notify.Job) {
	start := time.Now()
	kind := string(j.Kind)
	fields := []logger.Field{
		logger.String("kind", kind),
		logger.String("appointment_id", j.AppointmentID),
		logger.String("run_id", j.RunID),
	}

	key := j.Key()
	if w.deduper != nil && w.deduper.SeenAndRecord(ctx, key) {
		metrics.RecordNotification(kind, metrics.NotifyStatusDup)
		w.logger.Debug(ctx, "notification already sent", fields...)
		j.Finish(notify.StatusDuplicate, nil)
		return
	}

	err := w.send(ctx, j)
	metrics.RecordDeliveryLatency(float64(time.Since(start).Milliseconds()))
	if err != nil {
		if w.deduper != nil {
			w.deduper.Unrecord(ctx, key)
		}
		metrics.RecordNotification(kind, metrics.NotifyStatusFailed)
		w.logger.Error(ctx, "notification failed", append(fields, logger.Error(err))...)
		j.Finish(notify.StatusFailed, err)
		return
	}

	metrics.RecordNotification(kind, metrics.NotifyStatusSent)
	w.logger.Debug(ctx, "notification sent", fields...)
	j.Finish(notify.StatusSent, nil)
}

func (w *InMemoryWorker) send(ctx context.Context, j notify.Job) error {
	m, err := mail.NewJobMessage(j)
	if err != nil {
		return err
	}
	if err := w.renderer.Render(m); err != nil {
		return err
	}
	sendCtx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()
	return w.mailer.Send(sendCtx, m)
}

// Pool runs several workers over one queue and dispatches batches to them.
type Pool struct {
	workers []*InMemoryWorker
	queue   queue.Queue

	stopOnce sync.Once
	logger   logger.Logger
}

// NewPool creates a pool of workerCount workers sharing q.
func NewPool(workerCount int, q queue.Queue, mailer mail.Mailer, renderer Renderer, d dedupe.Deduper, opts ...Option) *Pool {
	if workerCount < 1 {
		workerCount = defaultWorkerCount
	}

	pool := &Pool{
		workers: make([]*InMemoryWorker, workerCount),
		queue:   q,
		logger:  logger.Get().Named("worker-pool"),
	}
	for i := 0; i < workerCount; i++ {
		wopts := append([]Option{WithName("worker-" + strconv.Itoa(i))}, opts...)
		pool.workers[i] = NewInMemoryWorker(q, mailer, renderer, d, wopts...)
	}
	return pool
}

// Start starts all workers in the pool.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		go w.Run(ctx)
	}
	metrics.UpdateWorkerCount(len(p.workers))
}

// Size returns the number of workers.
func (p *Pool) Size() int {
	return len(p.workers)
}

// Deliver queues jobs and waits until every one of them has a result or
// ctx is done. Queueing waits for room, so batches larger than the queue
// are fed as workers drain it. Jobs that cannot be queued before ctx ends
// or the queue closes are counted as dropped.
func (p *Pool) Deliver(ctx context.Context, jobs []notify.Job) notify.Report {
	var (
		mu     sync.Mutex
		report notify.Report
		wg     sync.WaitGroup
	)

	for _, j := range jobs {
		wg.Add(1)
		var once sync.Once
		j.Done = func(s notify.Status, _ error) {
			once.Do(func() {
				mu.Lock()
				report.Add(s)
				mu.Unlock()
				wg.Done()
			})
		}
		if err := p.queue.Put(ctx, j); err != nil {
			metrics.RecordNotification(string(j.Kind), metrics.NotifyStatusDropped)
			p.logger.Warn(ctx, "notification dropped",
				logger.String("kind", string(j.Kind)),
				logger.String("appointment_id", j.AppointmentID),
				logger.Error(err),
			)
			j.Finish(notify.StatusDropped, err)
		}
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		p.logger.Warn(ctx, "delivery wait abandoned", logger.Error(ctx.Err()))
	}

	mu.Lock()
	defer mu.Unlock()
	return report
}

// Shutdown closes the queue and waits for workers to drain it.
func (p *Pool) Shutdown(ctx context.Context) error {
	p.stopOnce.Do(func() {
		if err := p.queue.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}

		shutdownCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
		defer cancel()
		for i, w := range p.workers {
			select {
			case <-w.done:
			case <-shutdownCtx.Done():
				p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
			}
		}
		metrics.UpdateWorkerCount(0)
	})
	return nil
}
