package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Payment code sources.
const (
	PaymentCodeCreated = "created"
	PaymentCodeReused  = "reused"
)

// LifecycleMetrics records order lifecycle activity on the kiosk.
type LifecycleMetrics struct {
	submissions  *prometheus.CounterVec
	outcomes     *prometheus.CounterVec
	paymentCodes *prometheus.CounterVec
	pollFailures prometheus.Counter
	historyFails *prometheus.CounterVec
}

// NewLifecycleMetrics registers the lifecycle metrics on the provided registerer.
func NewLifecycleMetrics(reg prometheus.Registerer) *LifecycleMetrics {
	if reg == nil {
		return &LifecycleMetrics{}
	}
	m := &LifecycleMetrics{
		submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "order_submissions_total",
			Help: "Order submissions by result.",
		}, []string{"result"}),
		outcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "order_outcomes_total",
			Help: "Tracked orders reaching a terminal status.",
		}, []string{"status"}),
		paymentCodes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "payment_code_requests_total",
			Help: "Payment codes shown, by whether a new one was created.",
		}, []string{"source"}),
		pollFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "order_poll_failures_total",
			Help: "Status polls that failed and were skipped.",
		}),
		historyFails: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "history_storage_failures_total",
			Help: "History storage reads or writes that failed.",
		}, []string{"op"}),
	}
	reg.MustRegister(m.submissions, m.outcomes, m.paymentCodes, m.pollFailures, m.historyFails)
	return m
}

// IncSubmission counts a submission attempt with its result label.
func (m *LifecycleMetrics) IncSubmission(result string) {
	if m == nil || m.submissions == nil {
		return
	}
	m.submissions.WithLabelValues(normalizeLabel(result)).Inc()
}

// IncOutcome counts an order reaching a terminal status.
func (m *LifecycleMetrics) IncOutcome(status string) {
	if m == nil || m.outcomes == nil {
		return
	}
	m.outcomes.WithLabelValues(normalizeLabel(status)).Inc()
}

// IncPaymentCode counts a payment code made available to the customer.
func (m *LifecycleMetrics) IncPaymentCode(source string) {
	if m == nil || m.paymentCodes == nil {
		return
	}
	m.paymentCodes.WithLabelValues(normalizeLabel(source)).Inc()
}

// IncPollFailure counts a failed status poll.
func (m *LifecycleMetrics) IncPollFailure() {
	if m == nil || m.pollFailures == nil {
		return
	}
	m.pollFailures.Inc()
}

// IncHistoryFailure counts a failed history storage operation.
func (m *LifecycleMetrics) IncHistoryFailure(op string) {
	if m == nil || m.historyFails == nil {
		return
	}
	m.historyFails.WithLabelValues(normalizeLabel(op)).Inc()
}
