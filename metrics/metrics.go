// Package metrics exposes counters for the registration flow.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks dialogue outcomes and sink failures.
type Metrics struct {
	DialoguesStarted   prometheus.Counter
	DialogueOutcomes   *prometheus.CounterVec
	ValidationFailures *prometheus.CounterVec
	SinkFailures       *prometheus.CounterVec
	Confirmed          prometheus.Gauge
}

// New registers the metrics with reg. A nil reg uses a private registry,
// which keeps tests independent of each other.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	f := promauto.With(reg)
	return &Metrics{
		DialoguesStarted: f.NewCounter(prometheus.CounterOpts{
			Name: "regbot_dialogues_started_total",
			Help: "Total number of registration dialogues opened in DM",
		}),
		DialogueOutcomes: f.NewCounterVec(prometheus.CounterOpts{
			Name: "regbot_dialogue_outcomes_total",
			Help: "Registration dialogues by terminal state",
		}, []string{"outcome"}),
		ValidationFailures: f.NewCounterVec(prometheus.CounterOpts{
			Name: "regbot_validation_failures_total",
			Help: "Rejected replies by violated rule",
		}, []string{"rule"}),
		SinkFailures: f.NewCounterVec(prometheus.CounterOpts{
			Name: "regbot_sink_failures_total",
			Help: "Failed commit steps by sink",
		}, []string{"sink"}),
		Confirmed: f.NewGauge(prometheus.GaugeOpts{
			Name: "regbot_confirmed_users",
			Help: "Users in the already-submitted set",
		}),
	}
}

// Outcome records a dialogue reaching a terminal state.
func (m *Metrics) Outcome(outcome string) {
	m.DialogueOutcomes.WithLabelValues(outcome).Inc()
}

// Rejected records a reply that failed validation.
func (m *Metrics) Rejected(rule string) {
	m.ValidationFailures.WithLabelValues(rule).Inc()
}

// SinkFailed records a failed commit step.
func (m *Metrics) SinkFailed(sink string) {
	m.SinkFailures.WithLabelValues(sink).Inc()
}
