// Package metrics provides observability for the income module.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus metrics for the income module. All recording
// methods are nil-safe so components can run without metrics in tests.
type Metrics struct {
	// Cache hits and misses on the lookup key.
	CacheResult *prometheus.CounterVec

	// Upstream fetch latency and outcomes.
	UpstreamLatency prometheus.Histogram
	UpstreamFailure *prometheus.CounterVec

	// Records removed per retention sweep.
	RecordsSwept prometheus.Counter

	// Usage events by processing outcome.
	UsageEvents *prometheus.CounterVec
}

// New creates a Metrics instance with all income module metrics registered.
func New() *Metrics {
	return &Metrics{
		CacheResult: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "inntektlager_cache_results_total",
			Help: "Income lookups by result (hit or miss)",
		}, []string{"result"}),

		UpstreamLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "inntektlager_upstream_duration_seconds",
			Help:    "Duration of external income source fetches",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),

		UpstreamFailure: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "inntektlager_upstream_failures_total",
			Help: "External income source failures by kind",
		}, []string{"kind"}),

		RecordsSwept: promauto.NewCounter(prometheus.CounterOpts{
			Name: "inntektlager_records_swept_total",
			Help: "Income records deleted by the retention janitor",
		}),

		UsageEvents: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "inntektlager_usage_events_total",
			Help: "Usage events by processing outcome (marked, skipped, missing)",
		}, []string{"outcome"}),
	}
}

// RecordCacheHit counts a lookup served from the store.
func (m *Metrics) RecordCacheHit() {
	if m != nil {
		m.CacheResult.WithLabelValues("hit").Inc()
	}
}

// RecordCacheMiss counts a lookup that went to the external source.
func (m *Metrics) RecordCacheMiss() {
	if m != nil {
		m.CacheResult.WithLabelValues("miss").Inc()
	}
}

// ObserveUpstreamLatency records the duration of one upstream fetch.
func (m *Metrics) ObserveUpstreamLatency(d time.Duration) {
	if m != nil {
		m.UpstreamLatency.Observe(d.Seconds())
	}
}

// RecordUpstreamFailure counts an upstream failure by kind.
func (m *Metrics) RecordUpstreamFailure(kind string) {
	if m != nil {
		m.UpstreamFailure.WithLabelValues(kind).Inc()
	}
}

// AddRecordsSwept counts records removed by one retention sweep.
func (m *Metrics) AddRecordsSwept(n int64) {
	if m != nil && n > 0 {
		m.RecordsSwept.Add(float64(n))
	}
}

// RecordUsageEvent counts one usage event by outcome.
func (m *Metrics) RecordUsageEvent(outcome string) {
	if m != nil {
		m.UsageEvents.WithLabelValues(outcome).Inc()
	}
}
