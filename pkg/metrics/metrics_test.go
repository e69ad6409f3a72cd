package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	require.NoError(t, c.Write(&m))
	return m.GetCounter().GetValue()
}

func TestCounters(t *testing.T) {
	m := NewWithRegistry("test", prometheus.NewRegistry())

	m.Denied("update", "Appointment")
	m.Denied("update", "Appointment")
	m.PaymentApplied("invoice", "paid")
	m.Limited("/api/v1/auth/login")
	m.OutboxFailed("invoice.paid")

	assert.Equal(t, 2.0, counterValue(t, m.AbilityDenials.WithLabelValues("update", "Appointment")))
	assert.Equal(t, 1.0, counterValue(t, m.PaymentsApplied.WithLabelValues("invoice", "paid")))
	assert.Equal(t, 1.0, counterValue(t, m.RateLimited.WithLabelValues("/api/v1/auth/login")))
	assert.Equal(t, 1.0, counterValue(t, m.OutboxEventsFailed.WithLabelValues("invoice.paid")))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveRequest("GET", "/", "200", 0.1)
		m.Denied("read", "User")
		m.PaymentApplied("appointment", "partial")
		m.Limited("/")
		m.OutboxProcessed("appointment.created", 0.01)
		m.OutboxFailed("appointment.created")
		m.OutboxRetried("appointment.created")
	})
}
