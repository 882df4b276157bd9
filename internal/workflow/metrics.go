package workflow

import (
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// Decision outcomes recorded by the decisions counter.
const (
	outcomeApplied  = "applied"
	outcomeRejected = "rejected"
)

// workflowMetrics holds the Prometheus collectors of one engine.
type workflowMetrics struct {
	properties *prometheus.GaugeVec   // Properties by status
	mappings   *prometheus.GaugeVec   // Mappings by status
	decisions  *prometheus.CounterVec // Decisions by kind, decision and outcome
}

// newWorkflowMetrics creates and registers the engine metrics. A nil
// registerer disables metrics.
func newWorkflowMetrics(reg prometheus.Registerer) (*workflowMetrics, error) {
	if reg == nil {
		return nil, nil
	}

	m := &workflowMetrics{
		properties: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "schemagraph",
			Subsystem: "workflow",
			Name:      "properties",
			Help:      "Current number of properties by review status",
		}, []string{"status"}),

		mappings: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "schemagraph",
			Subsystem: "workflow",
			Name:      "mappings",
			Help:      "Current number of mappings by review status",
		}, []string{"status"}),

		decisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "schemagraph",
			Subsystem: "workflow",
			Name:      "decisions_total",
			Help:      "Total reviewer decisions by entity kind, decision and outcome",
		}, []string{"kind", "decision", "outcome"}),
	}

	collectors := []struct {
		name string
		c    prometheus.Collector
	}{
		{"properties", m.properties},
		{"mappings", m.mappings},
		{"decisions_total", m.decisions},
	}

	for _, col := range collectors {
		name := col.name
		if err := reg.Register(col.c); err != nil {
			var already prometheus.AlreadyRegisteredError
			if errors.As(err, &already) {
				return nil, fmt.Errorf("workflow metric %s already registered: %w", name, err)
			}

			return nil, fmt.Errorf("failed to register workflow metric %s: %w", name, err)
		}
	}

	return m, nil
}

func (m *workflowMetrics) observeCounts(c Counts) {
	if m == nil {
		return
	}

	for status, n := range c.Properties {
		m.properties.WithLabelValues(string(status)).Set(float64(n))
	}

	for status, n := range c.Mappings {
		m.mappings.WithLabelValues(string(status)).Set(float64(n))
	}
}

func (m *workflowMetrics) observeDecision(kind EntityKind, d Decision, err error) {
	if m == nil {
		return
	}

	outcome := outcomeApplied
	if err != nil {
		outcome = outcomeRejected
	}

	m.decisions.WithLabelValues(string(kind), string(d), outcome).Inc()
}
