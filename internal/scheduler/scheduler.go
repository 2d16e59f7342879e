// Package scheduler runs named jobs on cron schedules with a reentrancy
// guard and an optional cross-replica lock.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/okian/pairdesk/pkg/logger"
	"github.com/okian/pairdesk/pkg/metrics"
)

// Job results used as the "result" label of job_runs_total.
const (
	resultOK      = "ok"
	resultError   = "error"
	resultSkipped = "skipped"
	resultLocked  = "locked"
)

// JobFunc is one scheduled unit of work. now is the fire time in the
// scheduler's zone.
type JobFunc func(ctx context.Context, now time.Time) error

// Locker grants a key to at most one caller until ttl expires.
type Locker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (bool, error)
}

type job struct {
	name    string
	spec    string
	fn      JobFunc
	running atomic.Bool
	id      cron.EntryID
}

// Scheduler owns a cron runner and the jobs registered on it.
type Scheduler struct {
	cron     *cron.Cron
	location *time.Location
	locker   Locker
	lockTTL  time.Duration
	clock    func() time.Time
	logger   logger.Logger

	mu      sync.Mutex
	jobs    map[string]*job
	ctx     context.Context
	cancel  context.CancelFunc
	wg       sync.WaitGroup
	started  bool
	stopping bool
}

// New creates a stopped scheduler.
func New(opts ...Option) *Scheduler {
	s := &Scheduler{
		location: time.UTC,
		lockTTL:  defaultLockTTL,
		clock:    time.Now,
		jobs:     make(map[string]*job),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("scheduler")
	}
	s.cron = cron.New(
		cron.WithLocation(s.location),
		cron.WithChain(cron.Recover(cronLogger{s.logger})),
	)
	return s
}

// Register adds a job under name using a standard five-field cron spec.
func (s *Scheduler) Register(name, spec string, fn JobFunc) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.jobs[name]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateJob, name)
	}
	j := &job{name: name, spec: spec, fn: fn}
	id, err := s.cron.AddFunc(spec, func() { s.fire(j) })
	if err != nil {
		return fmt.Errorf("job %s: invalid schedule %q: %w", name, spec, err)
	}
	j.id = id
	s.jobs[name] = j
	return nil
}

// Start begins firing jobs. Runs use a context derived from ctx that is
// canceled by Stop.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return
	}
	s.ctx, s.cancel = context.WithCancel(ctx)
	s.started = true
	s.stopping = false
	s.cron.Start()
	for name, j := range s.jobs {
		s.logger.Info(ctx, "job scheduled",
			logger.String("job", name),
			logger.String("spec", j.spec),
			logger.Time("next", s.cron.Entry(j.id).Next),
		)
	}
}

// Stop stops firing new runs and waits for running ones until ctx is done,
// then cancels them. Triggers after Stop return ErrStopped until the next Start.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return nil
	}
	s.started = false
	s.stopping = true
	cancel := s.cancel
	s.mu.Unlock()

	cronDone := s.cron.Stop()
	done := make(chan struct{})
	go func() {
		<-cronDone.Done()
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		cancel()
		return nil
	case <-ctx.Done():
		cancel()
		return fmt.Errorf("scheduler stop: %w", ctx.Err())
	}
}

// Trigger runs a job now, through the same guards as a scheduled run.
func (s *Scheduler) Trigger(ctx context.Context, name string) error {
	s.mu.Lock()
	j, ok := s.jobs[name]
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownJob, name)
	}
	return s.run(ctx, j, s.clock())
}

// Jobs returns the registered job names with their next fire time.
// Next is zero while the scheduler is stopped.
func (s *Scheduler) Jobs() map[string]time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]time.Time, len(s.jobs))
	for name, j := range s.jobs {
		out[name] = s.cron.Entry(j.id).Next
	}
	return out
}

func (s *Scheduler) fire(j *job) {
	s.mu.Lock()
	ctx := s.ctx
	s.mu.Unlock()
	if ctx == nil {
		return
	}
	_ = s.run(ctx, j, s.clock())
}

func (s *Scheduler) run(ctx context.Context, j *job, now time.Time) error {
	// Add must not race the Wait in Stop.
	s.mu.Lock()
	if s.stopping {
		s.mu.Unlock()
		metrics.RecordJobRun(j.name, resultSkipped)
		return fmt.Errorf("%w: %s", ErrStopped, j.name)
	}
	s.wg.Add(1)
	s.mu.Unlock()
	defer s.wg.Done()

	if !j.running.CompareAndSwap(false, true) {
		metrics.RecordJobRun(j.name, resultSkipped)
		s.logger.Warn(ctx, "job still running, skipping", logger.String("job", j.name))
		return fmt.Errorf("%w: %s", ErrInFlight, j.name)
	}
	defer j.running.Store(false)

	now = now.In(s.location)
	if s.locker != nil {
		key := lockKey(j.name, now)
		ok, err := s.locker.TryLock(ctx, key, s.lockTTL)
		if err != nil {
			metrics.RecordJobRun(j.name, resultError)
			s.logger.Error(ctx, "job lock failed", logger.String("job", j.name), logger.Error(err))
			return fmt.Errorf("job %s: lock: %w", j.name, err)
		}
		if !ok {
			metrics.RecordJobRun(j.name, resultLocked)
			s.logger.Debug(ctx, "job locked elsewhere", logger.String("job", j.name), logger.String("key", key))
			return fmt.Errorf("%w: %s", ErrLocked, j.name)
		}
	}

	start := time.Now()
	err := j.fn(ctx, now)
	if err != nil {
		metrics.RecordJobRun(j.name, resultError)
		s.logger.Error(ctx, "job failed",
			logger.String("job", j.name),
			logger.Duration("took", time.Since(start)),
			logger.Error(err),
		)
		return err
	}
	metrics.RecordJobRun(j.name, resultOK)
	s.logger.Debug(ctx, "job done", logger.String("job", j.name), logger.Duration("took", time.Since(start)))
	return nil
}

// lockKey names the lock for one firing of a job. Replicas firing the same
// minute compute the same key.
func lockKey(name string, now time.Time) string {
	return name + ":" + now.UTC().Truncate(time.Minute).Format("200601021504")
}

// IsSkip reports whether err means the run was skipped rather than failed.
func IsSkip(err error) bool {
	return errors.Is(err, ErrInFlight) || errors.Is(err, ErrLocked)
}

// cronLogger adapts logger.Logger to cron.Logger.
type cronLogger struct {
	l logger.Logger
}

func (c cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.l.Debug(context.Background(), msg, kvFields(keysAndValues)...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.l.Error(context.Background(), msg, append(kvFields(keysAndValues), logger.Error(err))...)
}

func kvFields(kv []interface{}) []logger.Field {
	fields := make([]logger.Field, 0, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		fields = append(fields, logger.Any(fmt.Sprint(kv[i]), kv[i+1]))
	}
	return fields
}
