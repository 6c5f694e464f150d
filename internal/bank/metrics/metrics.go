// Package metrics exposes Prometheus collectors for authentication and
// ledger outcomes.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	authOutcomes      *prometheus.CounterVec
	ledgerOutcomes    *prometheus.CounterVec
	pendingChallenges prometheus.Gauge
	activeSessions    prometheus.Gauge
}

// New registers the bank collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		authOutcomes: f.NewCounterVec(prometheus.CounterOpts{
			Name: "bank_auth_outcomes_total",
			Help: "Authentication steps processed, labeled by stage and outcome",
		}, []string{"stage", "outcome"}),
		ledgerOutcomes: f.NewCounterVec(prometheus.CounterOpts{
			Name: "bank_ledger_operations_total",
			Help: "Ledger operations processed, labeled by operation and outcome",
		}, []string{"operation", "outcome"}),
		pendingChallenges: f.NewGauge(prometheus.GaugeOpts{
			Name: "bank_pending_challenges",
			Help: "One-time challenges issued and not yet confirmed, expired or abandoned",
		}),
		activeSessions: f.NewGauge(prometheus.GaugeOpts{
			Name: "bank_active_sessions",
			Help: "Sessions that are live and not revoked",
		}),
	}
}

// Auth counts an authentication step. Nil receivers are ignored.
func (m *Metrics) Auth(stage, outcome string) {
	if m == nil {
		return
	}
	m.authOutcomes.WithLabelValues(stage, outcome).Inc()
}

// Ledger counts a ledger operation. Nil receivers are ignored.
func (m *Metrics) Ledger(operation, outcome string) {
	if m == nil {
		return
	}
	m.ledgerOutcomes.WithLabelValues(operation, outcome).Inc()
}

// SetPending records the number of pending challenges.
func (m *Metrics) SetPending(n int) {
	if m == nil {
		return
	}
	m.pendingChallenges.Set(float64(n))
}

// SetSessions records the number of live sessions.
func (m *Metrics) SetSessions(n int) {
	if m == nil {
		return
	}
	m.activeSessions.Set(float64(n))
}

// Handler serves the registry in the Prometheus exposition format.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
