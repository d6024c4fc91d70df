package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCounters(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.Guard("proxy", "rejected")
	m.Guard("proxy", "rejected")
	m.Install("installed")
	m.Webhook("shop_redact", "ok")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.GuardDecisions.WithLabelValues("proxy", "rejected")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Installs.WithLabelValues("installed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Webhooks.WithLabelValues("shop_redact", "ok")))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.Guard("admin", "accepted")
		m.Install("installed")
		m.Webhook("shop_redact", "ok")
	})
}
