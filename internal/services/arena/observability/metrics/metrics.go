// Package metrics exposes Prometheus instruments for simulated battles.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "fusion_arena"

// Metrics records battle outcomes.
type Metrics struct {
	battles  *prometheus.CounterVec
	actions  prometheus.Histogram
	duration prometheus.Histogram
	failures *prometheus.CounterVec
}

// New registers the arena instruments on reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		battles: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "battles_total",
			Help:      "Finished battles by winning side",
		}, []string{"winner"}),
		actions: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "battle_actions",
			Help:      "Logged actions per battle",
			Buckets:   prometheus.ExponentialBuckets(8, 2, 10),
		}),
		duration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "battle_duration_seconds",
			Help:      "Simulated timeline length per battle",
			Buckets:   prometheus.LinearBuckets(0, 5, 12),
		}),
		failures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "battle_failures_total",
			Help:      "Battles that could not be simulated, by error code",
		}, []string{"code"}),
	}
}

// ObserveBattle records a finished battle. A nil receiver is a no-op.
func (m *Metrics) ObserveBattle(winner string, actions int, duration float64) {
	if m == nil {
		return
	}
	m.battles.WithLabelValues(winner).Inc()
	m.actions.Observe(float64(actions))
	m.duration.Observe(duration)
}

// ObserveFailure counts a failed battle.
func (m *Metrics) ObserveFailure(code string) {
	if m == nil {
		return
	}
	m.failures.WithLabelValues(code).Inc()
}
