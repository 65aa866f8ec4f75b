// Package metrics declares the Prometheus instruments exported at /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "rively"

// Metrics holds the pipeline, agent, context cache, and audit instruments.
type Metrics struct {
	PipelineRuns     *prometheus.CounterVec
	Escalations      prometheus.Counter
	Degradations     *prometheus.CounterVec
	AgentInvocations *prometheus.HistogramVec
	ContextLookups   *prometheus.CounterVec
	AuditDropped     prometheus.Counter
}

// New registers all instruments on reg. Pass a fresh prometheus.NewRegistry()
// in tests to avoid collisions with the default registerer.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		PipelineRuns: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "pipeline",
				Name:      "runs_total",
				Help:      "Pipeline runs by outcome",
			},
			[]string{"outcome"},
		),
		Escalations: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "pipeline",
				Name:      "escalations_total",
				Help:      "Drafts that passed the threshold gate",
			},
		),
		Degradations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "pipeline",
				Name:      "degradations_total",
				Help:      "Soft failures by stage and kind",
			},
			[]string{"stage", "kind"},
		),
		AgentInvocations: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "agents",
				Name:      "invocation_seconds",
				Help:      "Specialized agent call latency",
				Buckets:   []float64{0.5, 1, 2.5, 5, 10, 20, 30},
			},
			[]string{"agent", "success"},
		),
		ContextLookups: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "contexts",
				Name:      "lookups_total",
				Help:      "Customer context lookups by result",
			},
			[]string{"result"},
		),
		AuditDropped: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "audit",
				Name:      "dropped_total",
				Help:      "Audit entries dropped because the queue was full",
			},
		),
	}
}

// Nop returns instruments bound to a private registry that is never scraped.
func Nop() *Metrics {
	return New(prometheus.NewRegistry())
}
