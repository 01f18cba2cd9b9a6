package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for discovery runs.
type Metrics struct {
	// Finished runs by final status
	Runs *prometheus.CounterVec

	// Run wall time
	RunDuration prometheus.Histogram

	// Source queries by provider and final status
	Queries *prometheus.CounterVec

	// Connector call latency by provider
	QueryDuration *prometheus.HistogramVec

	// Findings by severity
	Findings *prometheus.CounterVec

	// Runs that raised a legal hold
	LegalHolds prometheus.Counter

	// Fire-and-forget sink failures by operation
	SinkErrors *prometheus.CounterVec

	// Circuit breaker transitions by provider and new state
	BreakerTransitions *prometheus.CounterVec

	// Queries in flight
	InFlight prometheus.Gauge
}

func New() *Metrics {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

func NewWithRegisterer(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Runs: f.NewCounterVec(prometheus.CounterOpts{
			Name: "dsar_discovery_runs_total",
			Help: "Discovery runs by final status",
		}, []string{"status"}),

		RunDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "dsar_discovery_run_duration_seconds",
			Help:    "Discovery run duration",
			Buckets: []float64{0.1, 0.5, 1, 5, 15, 30, 60, 180, 600},
		}),

		Queries: f.NewCounterVec(prometheus.CounterOpts{
			Name: "dsar_discovery_queries_total",
			Help: "Source queries by provider and status",
		}, []string{"provider", "status"}),

		QueryDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "dsar_discovery_query_duration_seconds",
			Help:    "Connector call duration by provider",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60},
		}, []string{"provider"}),

		Findings: f.NewCounterVec(prometheus.CounterOpts{
			Name: "dsar_discovery_findings_total",
			Help: "Findings by severity",
		}, []string{"severity"}),

		LegalHolds: f.NewCounter(prometheus.CounterOpts{
			Name: "dsar_discovery_legal_holds_total",
			Help: "Runs that found special-category data",
		}),

		SinkErrors: f.NewCounterVec(prometheus.CounterOpts{
			Name: "dsar_discovery_sink_errors_total",
			Help: "Persistence failures by sink operation",
		}, []string{"operation"}),

		BreakerTransitions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "dsar_discovery_breaker_transitions_total",
			Help: "Per-provider circuit breaker transitions",
		}, []string{"provider", "state"}), // state: "open", "closed"

		InFlight: f.NewGauge(prometheus.GaugeOpts{
			Name: "dsar_discovery_queries_in_flight",
			Help: "Connector calls currently running",
		}),
	}
}

func (m *Metrics) IncRun(status string, d time.Duration) {
	if m != nil {
		m.Runs.WithLabelValues(status).Inc()
		m.RunDuration.Observe(d.Seconds())
	}
}

func (m *Metrics) IncQuery(provider, status string) {
	if m != nil {
		m.Queries.WithLabelValues(provider, status).Inc()
	}
}

func (m *Metrics) ObserveQuery(provider string, d time.Duration) {
	if m != nil {
		m.QueryDuration.WithLabelValues(provider).Observe(d.Seconds())
	}
}

func (m *Metrics) IncFinding(severity string) {
	if m != nil {
		m.Findings.WithLabelValues(severity).Inc()
	}
}

func (m *Metrics) IncLegalHold() {
	if m != nil {
		m.LegalHolds.Inc()
	}
}

func (m *Metrics) IncSinkError(operation string) {
	if m != nil {
		m.SinkErrors.WithLabelValues(operation).Inc()
	}
}

func (m *Metrics) IncBreakerTransition(provider, state string) {
	if m != nil {
		m.BreakerTransitions.WithLabelValues(provider, state).Inc()
	}
}

func (m *Metrics) QueryStarted() {
	if m != nil {
		m.InFlight.Inc()
	}
}

func (m *Metrics) QueryFinished() {
	if m != nil {
		m.InFlight.Dec()
	}
}
