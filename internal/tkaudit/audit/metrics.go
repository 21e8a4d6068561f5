package audit

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics instruments the pipeline: per-goal wall time and verdict counts.
type Metrics struct {
	goalDuration *prometheus.HistogramVec
	goalVerdicts *prometheus.CounterVec
}

// NewMetrics creates and registers the pipeline metrics. A nil registerer
// yields metrics that collect but are never exported, which keeps tests
// free of registry collisions.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		goalDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "tkaudit",
			Name:      "goal_duration_seconds",
			Help:      "Wall time spent per audit goal.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10),
		}, []string{"goal"}),
		goalVerdicts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tkaudit",
			Name:      "goal_verdicts_total",
			Help:      "Audit goal outcomes by verdict.",
		}, []string{"goal", "verdict"}),
	}

	if reg != nil {
		reg.MustRegister(m.goalDuration, m.goalVerdicts)
	}
	return m
}

func (m *Metrics) observe(goal string, seconds float64, verdict Verdict) {
	if m == nil {
		return
	}
	m.goalDuration.WithLabelValues(goal).Observe(seconds)
	m.goalVerdicts.WithLabelValues(goal, string(verdict)).Inc()
}
