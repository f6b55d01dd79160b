package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics(t *testing.T) {
	m := NewWithRegistry(prometheus.NewRegistry())

	m.IncrementApproval("approved")
	m.IncrementApproval("approved")
	m.IncrementPersonReconcile("failed")
	m.IncrementProvisioningFailure()
	m.IncrementTransition("under_review")
	m.ObserveProviderCall("get_customer", "ok", 20*time.Millisecond)
	m.ObserveApproveLatency(time.Second)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.ApprovalOutcome.WithLabelValues("approved")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PersonReconcile.WithLabelValues("failed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ProvisioningFailures))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Transitions.WithLabelValues("under_review")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.ProviderLatency))
}

func TestNilMetricsAreNoops(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.IncrementApproval("approved")
		m.ObserveProviderCall("get_customer", "ok", time.Millisecond)
		m.IncrementPersonReconcile("created")
		m.IncrementProvisioningFailure()
		m.IncrementTransition("approved")
		m.ObserveApproveLatency(time.Millisecond)
	})
}
