// Package metrics provides Prometheus metrics for the pairdesk scheduler.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Tick results used as the "result" label of ticks_total.
const (
	TickResultOK        = "ok"
	TickResultEmpty     = "empty"
	TickResultError     = "error"
	TickResultSkipped   = "skipped"
	OutcomeKindPair     = "pair"
	OutcomeKindSolo     = "solo"
	NotifyStatusSent    = "sent"
	NotifyStatusFailed  = "failed"
	NotifyStatusDup     = "duplicate"
	NotifyStatusDropped = "dropped"
)

// Manager owns the Prometheus collectors used by the scheduler.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	registry         prometheus.Registerer

	// Matching
	ticks             *prometheus.CounterVec
	tickDuration      prometheus.Histogram
	candidates        prometheus.Gauge
	candidatesSkipped prometheus.Counter
	outcomes          *prometheus.CounterVec
	commitErrors      prometheus.Counter
	commitReplays     prometheus.Counter

	// Notifications
	notifications   *prometheus.CounterVec
	deliveryLatency prometheus.Histogram

	// Jobs
	jobRuns *prometheus.CounterVec

	// Operational
	queueSize   prometheus.Gauge
	workerCount prometheus.Gauge

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "pairdesk",
		subsystem:        "scheduler",
		histogramBuckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000},
		enabled:          true,
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one block per collector
	auto := promauto.With(m.registry)

	m.ticks = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "ticks_total",
		Help:      "Matching ticks by result",
	}, []string{"result"})

	m.tickDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "tick_duration_milliseconds",
		Help:      "Wall time of a matching tick in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.candidates = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "candidates",
		Help:      "Candidates collected for the most recent tick",
	})

	m.candidatesSkipped = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "candidates_skipped_total",
		Help:      "Appointments skipped because the user had no preferences",
	})

	m.outcomes = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "outcomes_total",
		Help:      "Committed outcomes by kind",
	}, []string{"kind"})

	m.commitErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "commit_errors_total",
		Help:      "Outcome writes that failed",
	})

	m.commitReplays = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "commit_replays_total",
		Help:      "Outcome writes skipped because an appointment was already paired",
	})

	m.notifications = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "notifications_total",
		Help:      "Notification deliveries by kind and status",
	}, []string{"kind", "status"})

	m.deliveryLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "notification_latency_milliseconds",
		Help:      "Latency of a single mail delivery in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.jobRuns = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "job_runs_total",
		Help:      "Scheduled job runs by job and result",
	}, []string{"job", "result"})

	m.queueSize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_size",
		Help:      "Pending notification jobs",
	})

	m.workerCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "worker_count",
		Help:      "Running notification workers",
	})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests by endpoint and method",
	}, []string{"endpoint", "method", "status_code"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_request_duration_milliseconds",
		Help:      "HTTP request duration in milliseconds",
		Buckets:   m.histogramBuckets,
	}, []string{"endpoint", "method", "status_code"})
}

// RecordTick counts a tick with the given result.
func RecordTick(result string) {
	if !globalManager.enabled {
		return
	}
	globalManager.ticks.WithLabelValues(result).Inc()
}

// RecordTickDuration observes the wall time of a tick.
func RecordTickDuration(ms float64) {
	if !globalManager.enabled {
		return
	}
	globalManager.tickDuration.Observe(ms)
}

// UpdateCandidates sets the candidate count of the latest tick.
func UpdateCandidates(n int) {
	globalManager.candidates.Set(float64(n))
}

// RecordCandidateSkipped counts an appointment dropped for missing preferences.
func RecordCandidateSkipped() {
	globalManager.candidatesSkipped.Inc()
}

// RecordOutcome counts a committed outcome of kind pair or solo.
func RecordOutcome(kind string) {
	globalManager.outcomes.WithLabelValues(kind).Inc()
}

// RecordCommitError counts a failed outcome write.
func RecordCommitError() {
	globalManager.commitErrors.Inc()
}

// RecordCommitReplay counts a write skipped by the unpaired guard.
func RecordCommitReplay() {
	globalManager.commitReplays.Inc()
}

// RecordNotification counts a delivery attempt.
func RecordNotification(kind, status string) {
	globalManager.notifications.WithLabelValues(kind, status).Inc()
}

// RecordDeliveryLatency observes one mail delivery.
func RecordDeliveryLatency(ms float64) {
	globalManager.deliveryLatency.Observe(ms)
}

// RecordJobRun counts a scheduled job run.
func RecordJobRun(job, result string) {
	globalManager.jobRuns.WithLabelValues(job, result).Inc()
}

// UpdateQueueSize sets the current queue size.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// UpdateWorkerCount sets the current worker count.
func UpdateWorkerCount(count int) {
	globalManager.workerCount.Set(float64(count))
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
