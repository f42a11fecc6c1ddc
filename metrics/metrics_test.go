package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shibukawa/snapplot/evaluator"
	"github.com/shibukawa/snapplot/relation"
	"github.com/shibukawa/snapplot/sampler"
	"github.com/shibukawa/snapplot/variables"
)

func TestSamplerMetrics(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := New()
	m.MustRegister(registry)

	t.Run("ObserveSample", func(t *testing.T) {
		m.ObserveSample(relation.KindExplicit, false, time.Millisecond)
		m.ObserveSample(relation.KindImplicit, true, 2*time.Millisecond)

		assert.Equal(t, 2, testutil.CollectAndCount(m.sampleTime))
	})

	t.Run("ObserveFailure", func(t *testing.T) {
		m.ObserveFailure("syntax")
		m.ObserveFailure("syntax")
		m.ObserveFailure("non_finite")

		assert.Equal(t, 2.0, testutil.ToFloat64(m.failures.WithLabelValues("syntax")))
		assert.Equal(t, 1.0, testutil.ToFloat64(m.failures.WithLabelValues("non_finite")))
	})

	t.Run("ObserveRenderPass", func(t *testing.T) {
		m.ObserveRenderPass()
		assert.Equal(t, 1.0, testutil.ToFloat64(m.renderPasses))
	})

	t.Run("labels", func(t *testing.T) {
		families, err := registry.Gather()
		require.NoError(t, err)

		found := map[string]bool{}

		for _, family := range families {
			if family.GetName() != "snapplot_sampler_sample_duration_seconds" {
				continue
			}

			for _, metric := range family.GetMetric() {
				for _, label := range metric.GetLabel() {
					found[label.GetName()+"="+label.GetValue()] = true
				}
			}
		}

		assert.True(t, found["kind=explicit"])
		assert.True(t, found["kind=implicit"])
		assert.True(t, found["result=success"])
		assert.True(t, found["result=error"])
	})
}

func TestSamplerMetrics_WiredIntoSampler(t *testing.T) {
	m := New()
	s := sampler.New(evaluator.NewExprLang(), sampler.Options{Samples: 10, Observer: m})

	s.Render([]sampler.Row{{Text: "x"}, {Text: "q"}}, variables.Environment{}, sampler.DefaultViewport)

	assert.Equal(t, 2, testutil.CollectAndCount(m.sampleTime))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.failures.WithLabelValues("unknown_identifier")))
}
