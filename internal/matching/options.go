package matching

import (
	"time"

	"github.com/okian/pairdesk/internal/domain/scoring"
	"github.com/okian/pairdesk/internal/domain/station"
	"github.com/okian/pairdesk/pkg/logger"
)

// Default matching settings.
const (
	DefaultTimezone   = "America/Los_Angeles"
	DefaultSlotLength = time.Hour
	DefaultIOTimeout  = 10 * time.Second
	DefaultSkipStart  = "12:00"
)

type settings struct {
	location   *time.Location
	slotLength time.Duration
	ioTimeout  time.Duration
	policy     station.Policy
	score      scoring.Func
	skipStart  string
	logger     logger.Logger
}

func newSettings(opts []Option) settings {
	s := settings{
		slotLength: DefaultSlotLength,
		ioTimeout:  DefaultIOTimeout,
		policy:     station.PolicyExtend,
		score:      scoring.New(),
		skipStart:  DefaultSkipStart,
	}
	for _, opt := range opts {
		opt(&s)
	}
	if s.location == nil {
		loc, err := time.LoadLocation(DefaultTimezone)
		if err != nil {
			loc = time.UTC
		}
		s.location = loc
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("matching")
	}
	return s
}

// Option configures the matching components.
type Option func(*settings)

// WithLocation sets the zone slots and dates are computed in.
func WithLocation(loc *time.Location) Option {
	return func(s *settings) {
		if loc != nil {
			s.location = loc
		}
	}
}

// WithSlotLength sets how far ahead of now the matched slot starts.
func WithSlotLength(d time.Duration) Option {
	return func(s *settings) {
		if d > 0 {
			s.slotLength = d
		}
	}
}

// WithIOTimeout bounds every store call.
func WithIOTimeout(d time.Duration) Option {
	return func(s *settings) {
		if d > 0 {
			s.ioTimeout = d
		}
	}
}

// WithStationPolicy sets what happens past station Z.
func WithStationPolicy(p station.Policy) Option {
	return func(s *settings) {
		if p != "" {
			s.policy = p
		}
	}
}

// WithScorer replaces the compatibility scorer.
func WithScorer(f scoring.Func) Option {
	return func(s *settings) {
		if f != nil {
			s.score = f
		}
	}
}

// WithMorningSkipStart sets the start time excluded from morning reminders.
// An empty value disables the exclusion.
func WithMorningSkipStart(hhmm string) Option {
	return func(s *settings) {
		s.skipStart = hhmm
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(s *settings) {
		if l != nil {
			s.logger = l
		}
	}
}
