package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus collectors for fraud evaluation.
type Metrics struct {
	Evaluations        *prometheus.CounterVec
	RuleHits           *prometheus.CounterVec
	EvaluationDuration prometheus.Histogram
	SignalDuration     *prometheus.HistogramVec
}

// New registers and returns fraud metrics collectors.
func New() *Metrics {
	return &Metrics{
		Evaluations: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "fides_fraud_evaluations_total",
			Help: "Total number of fraud evaluations by verdict",
		}, []string{"verdict"}),
		RuleHits: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "fides_fraud_rule_hits_total",
			Help: "Total number of fraud rule hits by reason code",
		}, []string{"reason"}),
		EvaluationDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "fides_fraud_evaluation_duration_seconds",
			Help:    "Duration of complete fraud evaluations",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}),
		SignalDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "fides_fraud_signal_duration_seconds",
			Help:    "Duration of individual store-backed signal fetches",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5},
		}, []string{"signal"}),
	}
}

func (m *Metrics) IncrementVerdict(verdict string) {
	m.Evaluations.WithLabelValues(verdict).Inc()
}

func (m *Metrics) IncrementRuleHit(reason string) {
	m.RuleHits.WithLabelValues(reason).Inc()
}

func (m *Metrics) ObserveEvaluationDuration(d time.Duration) {
	m.EvaluationDuration.Observe(d.Seconds())
}

func (m *Metrics) ObserveSignalDuration(signal string, d time.Duration) {
	m.SignalDuration.WithLabelValues(signal).Observe(d.Seconds())
}
