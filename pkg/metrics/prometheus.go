// Package metrics provides Prometheus metrics for the study-buddy matching service.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome label values shared by the counters below.
const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)

// Manager manages all Prometheus metrics for the study-buddy service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	resultBuckets    []float64
	registry         prometheus.Registerer

	// Matching
	matchRequests *prometheus.CounterVec
	matchLatency  *prometheus.HistogramVec
	matchResults  prometheus.Histogram

	// Accounts
	registrations *prometheus.CounterVec
	importRows    *prometheus.CounterVec

	// Pool composition
	poolSize     prometheus.Gauge
	poolLearners prometheus.Gauge
	poolTutors   prometheus.Gauge

	// Repository
	repositoryLatency *prometheus.HistogramVec

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	errorsByComponent *prometheus.CounterVec
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "studybuddy",
		subsystem:        "matching",
		histogramBuckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 25, 50, 100, 250, 500, 1000},
		resultBuckets:    []float64{0, 1, 2, 3, 5, 10},
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one block per metric
	auto := promauto.With(m.registry)

	m.matchRequests = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "match_requests_total",
			Help:      "Total number of match requests by mode and outcome",
		},
		[]string{"mode", "outcome"},
	)

	m.matchLatency = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "match_latency_milliseconds",
			Help:      "Time spent computing a ranked match list in milliseconds",
			Buckets:   m.histogramBuckets,
		},
		[]string{"mode"},
	)

	m.matchResults = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "match_results",
		Help:      "Number of candidates returned per match request",
		Buckets:   m.resultBuckets,
	})

	m.registrations = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "registrations_total",
			Help:      "Total number of student registrations by outcome",
		},
		[]string{"outcome"},
	)

	m.importRows = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "import_rows_total",
			Help:      "Total number of bulk-import rows by outcome",
		},
		[]string{"outcome"},
	)

	m.poolSize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "pool_size",
		Help:      "Number of student profiles in the pool",
	})

	m.poolLearners = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "pool_learners",
		Help:      "Number of learners in the pool",
	})

	m.poolTutors = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "pool_tutors",
		Help:      "Number of tutors in the pool",
	})

	m.repositoryLatency = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "repository_latency_milliseconds",
			Help:      "Repository operation latency in milliseconds",
			Buckets:   m.histogramBuckets,
		},
		[]string{"operation"},
	)

	m.httpRequests = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests by endpoint and method",
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.httpRequestDuration = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_request_duration_milliseconds",
			Help:      "HTTP request duration in milliseconds",
			Buckets:   m.histogramBuckets,
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.errorsByComponent = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "errors_by_component_total",
			Help:      "Total number of errors by component",
		},
		[]string{"component", "error_type"},
	)
}

// RecordMatch counts one match request and observes its latency.
func (m *Manager) RecordMatch(mode, outcome string, latencyMs float64) {
	m.matchRequests.WithLabelValues(mode, outcome).Inc()
	m.matchLatency.WithLabelValues(mode).Observe(latencyMs)
}

// RecordMatchResults observes how many candidates a request returned.
func (m *Manager) RecordMatchResults(n int) { m.matchResults.Observe(float64(n)) }

// RecordRegistration counts one registration attempt.
func (m *Manager) RecordRegistration(outcome string) {
	m.registrations.WithLabelValues(outcome).Inc()
}

// RecordImportRow counts one bulk-import row.
func (m *Manager) RecordImportRow(outcome string) {
	m.importRows.WithLabelValues(outcome).Inc()
}

// UpdatePool sets the pool composition gauges.
func (m *Manager) UpdatePool(total, learners, tutors int) {
	m.poolSize.Set(float64(total))
	m.poolLearners.Set(float64(learners))
	m.poolTutors.Set(float64(tutors))
}

// RecordRepositoryLatency observes one repository operation.
func (m *Manager) RecordRepositoryLatency(operation string, latencyMs float64) {
	m.repositoryLatency.WithLabelValues(operation).Observe(latencyMs)
}

// RecordHTTPRequest records an HTTP request and its duration.
func (m *Manager) RecordHTTPRequest(endpoint, method, statusCode string, durationMs float64) {
	m.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
	m.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
}

// RecordErrorByComponent records an error with component and type labels.
func (m *Manager) RecordErrorByComponent(component, errorType string) {
	m.errorsByComponent.WithLabelValues(component, errorType).Inc()
}

// Package-level helpers delegate to the global manager.

// RecordMatch counts one match request and observes its latency.
func RecordMatch(mode, outcome string, latencyMs float64) {
	globalManager.RecordMatch(mode, outcome, latencyMs)
}

// RecordMatchResults observes how many candidates a request returned.
func RecordMatchResults(n int) { globalManager.RecordMatchResults(n) }

// RecordRegistration counts one registration attempt.
func RecordRegistration(outcome string) { globalManager.RecordRegistration(outcome) }

// RecordImportRow counts one bulk-import row.
func RecordImportRow(outcome string) { globalManager.RecordImportRow(outcome) }

// UpdatePool sets the pool composition gauges.
func UpdatePool(total, learners, tutors int) { globalManager.UpdatePool(total, learners, tutors) }

// RecordRepositoryLatency observes one repository operation.
func RecordRepositoryLatency(operation string, latencyMs float64) {
	globalManager.RecordRepositoryLatency(operation, latencyMs)
}

// RecordHTTPRequest records an HTTP request and its duration.
func RecordHTTPRequest(endpoint, method, statusCode string, durationMs float64) {
	globalManager.RecordHTTPRequest(endpoint, method, statusCode, durationMs)
}

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.RecordErrorByComponent(component, errorType)
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

var runtimeOnce sync.Once //nolint:gochecknoglobals // guards one-time collector registration

// Configure replaces the global manager with one built from opts on a fresh
// registry. Call it at startup, before handlers capture GetRegistry and
// before RegisterRuntimeCollectors.
func Configure(opts ...Option) {
	reg := prometheus.NewRegistry()
	globalManager = NewManager(append(append([]Option{}, opts...), WithPrometheusRegistry(reg))...)
	customRegistry = reg
	runtimeOnce = sync.Once{}
}

// RegisterRuntimeCollectors adds the Go runtime and process collectors to the
// custom registry. Safe to call more than once.
func RegisterRuntimeCollectors() {
	runtimeOnce.Do(func() {
		customRegistry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	})
}
