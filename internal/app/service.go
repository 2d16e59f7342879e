// Package service wires the store, mail delivery, matching engine and
// scheduler into one long-running service.
package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/okian/pairdesk/internal/adapters/mail"
	jobqueue "github.com/okian/pairdesk/internal/adapters/mq/queue"
	workerpool "github.com/okian/pairdesk/internal/adapters/mq/worker"
	"github.com/okian/pairdesk/internal/adapters/repository"
	"github.com/okian/pairdesk/internal/domain/dedupe"
	"github.com/okian/pairdesk/internal/domain/notify"
	"github.com/okian/pairdesk/internal/domain/station"
	"github.com/okian/pairdesk/internal/matching"
	"github.com/okian/pairdesk/internal/scheduler"
	"github.com/okian/pairdesk/pkg/logger"
	"github.com/okian/pairdesk/pkg/metrics"
)

// Names of the scheduled jobs.
const (
	JobMatch           = "match"
	JobMorningReminder = "morning_reminder"
	JobFeedback        = "feedback"
)

const stopTimeout = 30 * time.Second

// Service runs the scheduled matching and reminder jobs.
type Service struct {
	mu sync.RWMutex

	// Core components
	store    repository.Store
	mailer   mail.Mailer
	renderer *mail.Renderer
	deduper  dedupe.Deduper
	queue    jobqueue.Queue
	pool     *workerpool.Pool
	engine   *matching.Engine
	sched    *scheduler.Scheduler
	locker   scheduler.Locker

	// Configuration
	site          mail.Site
	workerCount   int
	queueSize     int
	dedupeSize    int
	location      *time.Location
	slotLength    time.Duration
	ioTimeout     time.Duration
	lockTTL       time.Duration
	stationPolicy station.Policy
	skipStart     string
	schedules     map[string]string
	useScheduler  bool

	// State
	started   bool
	ticks     int
	lastTick  *matching.TickReport
	lastDaily map[string]notify.Report

	logger logger.Logger
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount:   4,
		queueSize:     256,
		dedupeSize:    10000,
		slotLength:    matching.DefaultSlotLength,
		ioTimeout:     matching.DefaultIOTimeout,
		stationPolicy: station.PolicyExtend,
		skipStart:     matching.DefaultSkipStart,
		schedules: map[string]string{
			JobMatch:           "* * * * *",
			JobMorningReminder: "0 11 * * *",
			JobFeedback:        "0 19 * * *",
		},
		useScheduler: true,
		lastDaily:    make(map[string]notify.Report),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start builds the components, starts the delivery workers and, unless
// disabled, the scheduler.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get()
	}
	if s.location == nil {
		loc, err := time.LoadLocation(matching.DefaultTimezone)
		if err != nil {
			return fmt.Errorf("load default timezone: %w", err)
		}
		s.location = loc
	}

	s.logger.Info(ctx, "starting pairdesk service...")

	if s.store == nil {
		s.store = repository.NewMemoryStore()
		s.logger.Info(ctx, "using in-memory store")
	}
	if s.mailer == nil {
		s.mailer = mail.NewConsoleMailer(s.logger.Named("mail"))
		s.logger.Info(ctx, "using console mailer")
	}

	renderer, err := mail.NewRenderer(s.site)
	if err != nil {
		return err
	}
	s.renderer = renderer
	s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))
	s.queue = jobqueue.NewInMemoryQueue(jobqueue.WithCapacity(s.queueSize))
	s.pool = workerpool.NewPool(s.workerCount, s.queue, s.mailer, s.renderer, s.deduper,
		workerpool.WithSendTimeout(s.ioTimeout),
	)
	s.pool.Start(ctx)

	s.engine = matching.NewEngine(s.store, s.pool,
		matching.WithLocation(s.location),
		matching.WithSlotLength(s.slotLength),
		matching.WithIOTimeout(s.ioTimeout),
		matching.WithStationPolicy(s.stationPolicy),
		matching.WithMorningSkipStart(s.skipStart),
		matching.WithLogger(s.logger.Named("matching")),
	)

	schedOpts := []scheduler.Option{
		scheduler.WithLocation(s.location),
		scheduler.WithLogger(s.logger.Named("scheduler")),
	}
	if s.locker != nil {
		schedOpts = append(schedOpts, scheduler.WithLocker(s.locker, s.lockTTL))
	}
	s.sched = scheduler.New(schedOpts...)
	for name, fn := range map[string]scheduler.JobFunc{
		JobMatch:           s.matchJob,
		JobMorningReminder: s.dailyJob(JobMorningReminder, s.engine.MorningReminders),
		JobFeedback:        s.dailyJob(JobFeedback, s.engine.FeedbackMails),
	} {
		spec := s.schedules[name]
		if spec == "" {
			continue
		}
		if err := s.sched.Register(name, spec, fn); err != nil {
			_ = s.pool.Shutdown(ctx)
			return err
		}
	}
	if s.useScheduler {
		s.sched.Start(ctx)
	}

	s.started = true
	s.logger.Info(ctx, "pairdesk service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.Int("dedupeSize", s.dedupeSize),
		logger.String("timezone", s.location.String()),
		logger.Bool("scheduler", s.useScheduler),
	)

	return nil
}

// Stop stops the scheduler, drains pending mail and closes the store.
func (s *Service) Stop() {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return
	}
	s.started = false
	sched, pool, store := s.sched, s.pool, s.store
	s.mu.Unlock()

	// Running jobs take the lock, so components are stopped without it.
	ctx, cancel := context.WithTimeout(context.Background(), stopTimeout)
	defer cancel()
	s.logger.Info(ctx, "stopping pairdesk service...")

	if err := sched.Stop(ctx); err != nil {
		s.logger.Warn(ctx, "scheduler stop", logger.Error(err))
	}
	_ = pool.Shutdown(ctx)
	if err := store.Close(); err != nil {
		s.logger.Warn(ctx, "store close", logger.Error(err))
	}

	s.logger.Info(ctx, "pairdesk service stopped")
}

// RunTick runs one matching tick for the slot after now, outside the
// schedule. The service must be started.
func (s *Service) RunTick(ctx context.Context, now time.Time) (matching.TickReport, error) {
	s.mu.RLock()
	engine := s.engine
	s.mu.RUnlock()
	if engine == nil {
		return matching.TickReport{}, ErrNotStarted
	}

	rep, err := engine.RunTick(ctx, now)

	s.mu.Lock()
	s.ticks++
	s.lastTick = &rep
	s.mu.Unlock()
	return rep, err
}

// Trigger runs a registered job now, through the scheduler's guards.
func (s *Service) Trigger(ctx context.Context, job string) error {
	s.mu.RLock()
	sched := s.sched
	s.mu.RUnlock()
	if sched == nil {
		return ErrNotStarted
	}
	return sched.Trigger(ctx, job)
}

func (s *Service) matchJob(ctx context.Context, now time.Time) error {
	_, err := s.RunTick(ctx, now)
	return err
}

func (s *Service) dailyJob(name string, run func(context.Context, time.Time) (notify.Report, error)) scheduler.JobFunc {
	return func(ctx context.Context, now time.Time) error {
		rep, err := run(ctx, now)
		if err != nil {
			return err
		}
		s.mu.Lock()
		s.lastDaily[name] = rep
		s.mu.Unlock()
		return nil
	}
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started":     s.started,
		"workerCount": s.workerCount,
		"queueSize":   s.queueSize,
		"dedupeSize":  s.dedupeSize,
		"ticks":       s.ticks,
	}

	if s.started {
		queueLen := s.queue.Len(ctx)
		stats["queueLength"] = queueLen
		stats["dedupeEntries"] = s.deduper.Size()
		stats["jobs"] = s.sched.Jobs()
		if s.lastTick != nil {
			stats["lastTick"] = *s.lastTick
		}
		if len(s.lastDaily) > 0 {
			daily := make(map[string]notify.Report, len(s.lastDaily))
			for k, v := range s.lastDaily {
				daily[k] = v
			}
			stats["lastDaily"] = daily
		}

		metrics.UpdateQueueSize(queueLen)
		metrics.UpdateWorkerCount(s.pool.Size())
	}

	return stats
}

// Size returns the current number of entries in the deduper.
func (s *Service) Size() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.deduper == nil {
		return 0
	}
	return s.deduper.Size()
}
