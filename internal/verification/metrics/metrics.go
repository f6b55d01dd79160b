package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the verification module.
type Metrics struct {
	// Approve outcomes: approved, pending, validation_failed, provider_failed, error
	ApprovalOutcome *prometheus.CounterVec

	// Provider call latency by operation and outcome (ok or error category)
	ProviderLatency *prometheus.HistogramVec

	// Person reconciliation actions: created, adopted, failed, stale
	PersonReconcile *prometheus.CounterVec

	ProvisioningFailures prometheus.Counter

	// Submission transitions by target status
	Transitions *prometheus.CounterVec

	ApproveLatency prometheus.Histogram
}

// New registers metrics on the default registerer.
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry registers metrics on reg; tests pass a fresh registry.
func NewWithRegistry(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		ApprovalOutcome: f.NewCounterVec(prometheus.CounterOpts{
			Name: "verigate_approvals_total",
			Help: "Approval attempts by outcome",
		}, []string{"outcome"}),

		ProviderLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "verigate_provider_call_duration_seconds",
			Help:    "Duration of provider calls by operation and outcome",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"operation", "outcome"}),

		PersonReconcile: f.NewCounterVec(prometheus.CounterOpts{
			Name: "verigate_person_reconcile_total",
			Help: "Associated person reconciliation actions by result",
		}, []string{"result"}),

		ProvisioningFailures: f.NewCounter(prometheus.CounterOpts{
			Name: "verigate_provisioning_failures_total",
			Help: "Post-approval provisioning calls that failed",
		}),

		Transitions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "verigate_submission_transitions_total",
			Help: "Submission status transitions by target status",
		}, []string{"status"}),

		ApproveLatency: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "verigate_approve_duration_seconds",
			Help:    "Duration of a full approval including provider calls",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
	}
}

func (m *Metrics) IncrementApproval(outcome string) {
	if m != nil {
		m.ApprovalOutcome.WithLabelValues(outcome).Inc()
	}
}

// ObserveProviderCall satisfies the bridge client's latency observer.
func (m *Metrics) ObserveProviderCall(op string, outcome string, d time.Duration) {
	if m != nil {
		m.ProviderLatency.WithLabelValues(op, outcome).Observe(d.Seconds())
	}
}

func (m *Metrics) IncrementPersonReconcile(result string) {
	if m != nil {
		m.PersonReconcile.WithLabelValues(result).Inc()
	}
}

func (m *Metrics) IncrementProvisioningFailure() {
	if m != nil {
		m.ProvisioningFailures.Inc()
	}
}

func (m *Metrics) IncrementTransition(status string) {
	if m != nil {
		m.Transitions.WithLabelValues(status).Inc()
	}
}

func (m *Metrics) ObserveApproveLatency(d time.Duration) {
	if m != nil {
		m.ApproveLatency.Observe(d.Seconds())
	}
}
