package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the collectors exported on /metrics.
type Metrics struct {
	GuardDecisions *prometheus.CounterVec
	Installs       *prometheus.CounterVec
	Webhooks       *prometheus.CounterVec
}

// New creates the collectors and registers them with reg when reg is non-nil.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		GuardDecisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "shopkit_guard_decisions_total",
			Help: "Route guard outcomes by guard and result.",
		}, []string{"guard", "outcome"}),
		Installs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "shopkit_oauth_installs_total",
			Help: "OAuth callback results.",
		}, []string{"result"}),
		Webhooks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "shopkit_webhooks_total",
			Help: "GDPR webhooks received by topic.",
		}, []string{"topic", "result"}),
	}
	if reg != nil {
		reg.MustRegister(m.GuardDecisions, m.Installs, m.Webhooks)
	}
	return m
}

func (m *Metrics) Guard(guard, outcome string) {
	if m == nil {
		return
	}
	m.GuardDecisions.WithLabelValues(guard, outcome).Inc()
}

func (m *Metrics) Install(result string) {
	if m == nil {
		return
	}
	m.Installs.WithLabelValues(result).Inc()
}

func (m *Metrics) Webhook(topic, result string) {
	if m == nil {
		return
	}
	m.Webhooks.WithLabelValues(topic, result).Inc()
}
