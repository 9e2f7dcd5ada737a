// Package metrics bundles the Prometheus instruments recorded by the serving
// surfaces. Collectors live on a dedicated registry so tests and embedders
// never collide with the global default.
package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/aretw0/hindsight/pkg/hmm"
)

// Operation labels used on the inference collectors.
const (
	OpSmooth     = "smooth"
	OpFilter     = "filter"
	OpLikelihood = "likelihood"
	OpSample     = "sample"
)

// Metrics holds the collectors the HTTP and MCP surfaces record into.
type Metrics struct {
	registry *prometheus.Registry

	InferenceDuration *prometheus.HistogramVec
	InferenceTotal    *prometheus.CounterVec
	DegenerateTotal   prometheus.Counter
	SampledSteps      prometheus.Counter
}

// New creates the collectors on a fresh registry.
func New() *Metrics {
	m := &Metrics{registry: prometheus.NewRegistry()}

	m.InferenceDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "hindsight_inference_duration_seconds",
			Help: "Duration of inference requests",
		},
		[]string{"op"},
	)
	m.InferenceTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hindsight_inference_total",
			Help: "Total number of inference requests by outcome",
		},
		[]string{"op", "outcome"},
	)
	m.DegenerateTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "hindsight_degenerate_marginals_total",
		Help: "Total number of requests rejected for zero-probability evidence",
	})
	m.SampledSteps = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "hindsight_sampled_steps_total",
		Help: "Total number of trajectory steps sampled",
	})

	m.registry.MustRegister(m.InferenceDuration, m.InferenceTotal, m.DegenerateTotal, m.SampledSteps)
	return m
}

// Registry exposes the registry backing the /metrics endpoint.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Observe records one request against op: its duration and its outcome
// (ok, degenerate, or error). Degenerate evidence also feeds the dedicated
// counter.
func (m *Metrics) Observe(op string, seconds float64, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
		if errors.Is(err, hmm.ErrDegenerateMarginal) {
			outcome = "degenerate"
			m.DegenerateTotal.Inc()
		}
	}
	m.InferenceDuration.WithLabelValues(op).Observe(seconds)
	m.InferenceTotal.WithLabelValues(op, outcome).Inc()
}
