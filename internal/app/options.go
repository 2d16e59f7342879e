package service

import (
	"time"

	"github.com/okian/pairdesk/internal/adapters/mail"
	"github.com/okian/pairdesk/internal/adapters/repository"
	"github.com/okian/pairdesk/internal/domain/station"
	"github.com/okian/pairdesk/internal/scheduler"
	"github.com/okian/pairdesk/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithStore sets the appointment store. The service closes it on Stop.
func WithStore(st repository.Store) Option {
	return func(s *Service) {
		s.store = st
	}
}

// WithMailer sets the mail provider.
func WithMailer(m mail.Mailer) Option {
	return func(s *Service) {
		s.mailer = m
	}
}

// WithSite sets the values shared by every mail template.
func WithSite(site mail.Site) Option {
	return func(s *Service) {
		s.site = site
	}
}

// WithWorkerCount sets the number of delivery workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the capacity of the delivery queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets how many sent notifications are remembered.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithLocation sets the zone schedules, slots and dates use.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) {
		if loc != nil {
			s.location = loc
		}
	}
}

// WithSlotLength sets the session length, which is also the matching lead time.
func WithSlotLength(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.slotLength = d
		}
	}
}

// WithIOTimeout bounds every store call and mail send.
func WithIOTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.ioTimeout = d
		}
	}
}

// WithStationPolicy sets what happens past station Z.
func WithStationPolicy(p station.Policy) Option {
	return func(s *Service) {
		if p != "" {
			s.stationPolicy = p
		}
	}
}

// WithMorningSkipStart sets the start time morning reminders leave out.
func WithMorningSkipStart(hhmm string) Option {
	return func(s *Service) {
		s.skipStart = hhmm
	}
}

// WithSchedule sets the cron spec of a job. An empty spec disables it.
func WithSchedule(job, spec string) Option {
	return func(s *Service) {
		s.schedules[job] = spec
	}
}

// WithLocker makes jobs take a cross-replica lock before running.
func WithLocker(l scheduler.Locker, ttl time.Duration) Option {
	return func(s *Service) {
		s.locker = l
		s.lockTTL = ttl
	}
}

// WithoutScheduler builds everything but never starts the cron runner.
// Jobs can still be run with RunTick and Trigger.
func WithoutScheduler() Option {
	return func(s *Service) {
		s.useScheduler = false
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}
