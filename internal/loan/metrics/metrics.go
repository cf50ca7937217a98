// Package metrics exposes Prometheus collectors for the loan lifecycle.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	Submissions *prometheus.CounterVec
	Transitions *prometheus.CounterVec
}

// New creates and registers loan lifecycle metrics with the default registry.
func New() *Metrics {
	return &Metrics{
		Submissions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "fides_loan_submissions_total",
			Help: "Loan submissions by outcome (pending, flagged, rejected_eligibility, rejected_validation, error)",
		}, []string{"outcome"}),
		Transitions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "fides_loan_transitions_total",
			Help: "Status transition attempts by action and outcome",
		}, []string{"action", "outcome"}),
	}
}

func (m *Metrics) IncrementSubmission(outcome string) {
	m.Submissions.WithLabelValues(outcome).Inc()
}

func (m *Metrics) IncrementTransition(action, outcome string) {
	m.Transitions.WithLabelValues(action, outcome).Inc()
}
