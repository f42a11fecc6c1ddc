// Package metrics exposes Prometheus collectors for render passes.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/shibukawa/snapplot/relation"
)

const (
	namespace = "snapplot"
	subsystem = "sampler"
)

// SamplerMetrics holds the collectors fed by the sampler. It implements
// sampler.Observer.
type SamplerMetrics struct {
	sampleTime   *prometheus.HistogramVec
	failures     *prometheus.CounterVec
	renderPasses prometheus.Counter
}

// New creates unregistered collectors.
func New() *SamplerMetrics {
	return &SamplerMetrics{
		sampleTime: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "sample_duration_seconds",
				Help:      "Time to sample one expression in seconds.",
				Buckets:   prometheus.ExponentialBuckets(0.00005, 2, 14), // 50µs to ~0.4s
			},
			[]string{"kind", "result"}, // result: "success" or "error"
		),
		failures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "failures_total",
				Help:      "Expressions replaced by a failure marker, by reason.",
			},
			[]string{"reason"},
		),
		renderPasses: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "render_passes_total",
				Help:      "Completed render passes.",
			},
		),
	}
}

// ObserveSample records the sampling duration of one expression.
func (m *SamplerMetrics) ObserveSample(kind relation.Kind, failed bool, d time.Duration) {
	result := "success"
	if failed {
		result = "error"
	}

	m.sampleTime.WithLabelValues(kind.String(), result).Observe(d.Seconds())
}

// ObserveFailure counts a failed expression.
func (m *SamplerMetrics) ObserveFailure(reason string) {
	m.failures.WithLabelValues(reason).Inc()
}

// ObserveRenderPass counts a completed render pass.
func (m *SamplerMetrics) ObserveRenderPass() {
	m.renderPasses.Inc()
}

// MustRegister registers the metrics with the given Prometheus registry.
func (m *SamplerMetrics) MustRegister(registry prometheus.Registerer) {
	registry.MustRegister(m.sampleTime)
	registry.MustRegister(m.failures)
	registry.MustRegister(m.renderPasses)
}
