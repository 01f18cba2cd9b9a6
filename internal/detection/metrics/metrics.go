package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the detection engine.
type Metrics struct {
	// Stage latencies by detector type
	StageLatency *prometheus.HistogramVec

	// Stage failures (extractor, OCR and classifier errors)
	StageErrors *prometheus.CounterVec

	// Accepted matches by pattern name
	Matches *prometheus.CounterVec

	// Matches dropped because the validator rejected them
	ValidationDropped *prometheus.CounterVec

	// Result cache lookups by outcome
	CacheLookups *prometheus.CounterVec

	// Inputs truncated to the content cap
	Truncations prometheus.Counter
}

// New registers the detection metrics with the default registerer.
func New() *Metrics {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

// NewWithRegisterer registers the detection metrics with reg.
func NewWithRegisterer(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		StageLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "dsar_detection_stage_duration_seconds",
			Help:    "Duration of detection stages by detector type",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		}, []string{"detector"}),

		StageErrors: f.NewCounterVec(prometheus.CounterOpts{
			Name: "dsar_detection_stage_errors_total",
			Help: "Detection stage failures by detector type",
		}, []string{"detector"}),

		Matches: f.NewCounterVec(prometheus.CounterOpts{
			Name: "dsar_detection_matches_total",
			Help: "Accepted pattern matches by pattern",
		}, []string{"pattern"}),

		ValidationDropped: f.NewCounterVec(prometheus.CounterOpts{
			Name: "dsar_detection_validation_dropped_total",
			Help: "Matches dropped by checksum validation by pattern",
		}, []string{"pattern"}),

		CacheLookups: f.NewCounterVec(prometheus.CounterOpts{
			Name: "dsar_detection_cache_lookups_total",
			Help: "Detection cache lookups by outcome",
		}, []string{"outcome"}), // outcome: "hit", "miss"

		Truncations: f.NewCounter(prometheus.CounterOpts{
			Name: "dsar_detection_truncations_total",
			Help: "Inputs truncated to the content size cap",
		}),
	}
}

func (m *Metrics) ObserveStage(detector string, d time.Duration) {
	if m != nil {
		m.StageLatency.WithLabelValues(detector).Observe(d.Seconds())
	}
}

func (m *Metrics) IncStageError(detector string) {
	if m != nil {
		m.StageErrors.WithLabelValues(detector).Inc()
	}
}

func (m *Metrics) AddMatches(pattern string, n int) {
	if m != nil && n > 0 {
		m.Matches.WithLabelValues(pattern).Add(float64(n))
	}
}

func (m *Metrics) AddValidationDropped(pattern string, n int) {
	if m != nil && n > 0 {
		m.ValidationDropped.WithLabelValues(pattern).Add(float64(n))
	}
}

func (m *Metrics) IncCacheLookup(hit bool) {
	if m == nil {
		return
	}
	outcome := "miss"
	if hit {
		outcome = "hit"
	}
	m.CacheLookups.WithLabelValues(outcome).Inc()
}

func (m *Metrics) IncTruncation() {
	if m != nil {
		m.Truncations.Inc()
	}
}
