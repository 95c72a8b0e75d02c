package metrics

import (
	"time"

	pkgerrors "github.com/angelmondragon/tableorder/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
)

// ClientMetrics records calls made to the ordering backend.
type ClientMetrics struct {
	duration *prometheus.HistogramVec
	failure  *prometheus.CounterVec
}

// NewClientMetrics registers the backend client metrics on the provided registerer.
func NewClientMetrics(reg prometheus.Registerer) *ClientMetrics {
	if reg == nil {
		return &ClientMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "backend_request_duration_seconds",
		Help:    "Duration of ordering backend requests in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})
	failure := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "backend_request_failures_total",
		Help: "Failed ordering backend requests by error code.",
	}, []string{"operation", "code"})
	reg.MustRegister(duration, failure)
	return &ClientMetrics{duration: duration, failure: failure}
}

// ObserveCall records the duration of one backend call and counts it as a
// failure when err is set.
func (c *ClientMetrics) ObserveCall(operation string, duration time.Duration, err error) {
	if c == nil || c.duration == nil {
		return
	}
	op := normalizeLabel(operation)
	c.duration.WithLabelValues(op).Observe(duration.Seconds())
	if err != nil {
		c.failure.WithLabelValues(op, string(pkgerrors.CodeOf(err))).Inc()
	}
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
