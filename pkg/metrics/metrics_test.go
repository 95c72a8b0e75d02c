package metrics

import (
	"errors"
	"fmt"
	"testing"
	"time"

	pkgerrors "github.com/angelmondragon/tableorder/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestClientMetricsExportsFailuresAndHistogram(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewClientMetrics(reg)

	metrics.ObserveCall("get_order", 250*time.Millisecond, nil)
	metrics.ObserveCall("get_order", 100*time.Millisecond, pkgerrors.New(pkgerrors.CodeNetwork, "down"))
	metrics.ObserveCall("get_order", 100*time.Millisecond, errors.New("untyped"))

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	if got, err := fetchCounterValue(mfs, "backend_request_failures_total", map[string]string{"operation": "get_order", "code": "NETWORK_ERROR"}); err != nil {
		t.Fatalf("fetch network failures: %v", err)
	} else if got != 1 {
		t.Fatalf("expected 1 network failure, got %f", got)
	}
	if got, err := fetchCounterValue(mfs, "backend_request_failures_total", map[string]string{"operation": "get_order", "code": "INTERNAL_ERROR"}); err != nil {
		t.Fatalf("fetch internal failures: %v", err)
	} else if got != 1 {
		t.Fatalf("expected 1 internal failure, got %f", got)
	}

	if got, err := fetchHistogramCount(mfs, "backend_request_duration_seconds", map[string]string{"operation": "get_order"}); err != nil {
		t.Fatalf("fetch duration: %v", err)
	} else if got != 3 {
		t.Fatalf("expected 3 observations, got %d", got)
	}
}

func TestLifecycleMetricsCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewLifecycleMetrics(reg)

	metrics.IncSubmission("created")
	metrics.IncOutcome("paid")
	metrics.IncOutcome("paid")
	metrics.IncPaymentCode(PaymentCodeReused)
	metrics.IncPollFailure()
	metrics.IncHistoryFailure("")

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	checks := []struct {
		name   string
		labels map[string]string
		want   float64
	}{
		{"order_submissions_total", map[string]string{"result": "created"}, 1},
		{"order_outcomes_total", map[string]string{"status": "paid"}, 2},
		{"payment_code_requests_total", map[string]string{"source": "reused"}, 1},
		{"order_poll_failures_total", nil, 1},
		{"history_storage_failures_total", map[string]string{"op": "unknown"}, 1},
	}
	for _, check := range checks {
		got, err := fetchCounterValue(mfs, check.name, check.labels)
		if err != nil {
			t.Fatalf("fetch %s: %v", check.name, err)
		}
		if got != check.want {
			t.Fatalf("%s: expected %f, got %f", check.name, check.want, got)
		}
	}
}

func TestJobMetricsCountsResults(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewJobMetrics(reg)

	metrics.ObserveDuration("history_retention", 20*time.Millisecond)
	metrics.IncResult("history_retention", true)
	metrics.IncResult("history_retention", false)
	metrics.IncResult("history_retention", true)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	if got, err := fetchCounterValue(mfs, "maintenance_job_runs_total", map[string]string{"job": "history_retention", "result": "success"}); err != nil || got != 2 {
		t.Fatalf("expected 2 successes, got %f (%v)", got, err)
	}
	if got, err := fetchCounterValue(mfs, "maintenance_job_runs_total", map[string]string{"job": "history_retention", "result": "failure"}); err != nil || got != 1 {
		t.Fatalf("expected 1 failure, got %f (%v)", got, err)
	}
	if got, err := fetchHistogramCount(mfs, "maintenance_job_duration_seconds", map[string]string{"job": "history_retention"}); err != nil || got != 1 {
		t.Fatalf("expected 1 duration sample, got %d (%v)", got, err)
	}
}

func TestNilMetricsAreNoops(t *testing.T) {
	var client *ClientMetrics
	client.ObserveCall("x", time.Second, errors.New("boom"))

	unregistered := NewLifecycleMetrics(nil)
	unregistered.IncOutcome("paid")
	unregistered.IncPollFailure()

	var lifecycle *LifecycleMetrics
	lifecycle.IncPaymentCode(PaymentCodeCreated)

	var jobs *JobMetrics
	jobs.IncResult("x", false)
	jobs.ObserveDuration("x", time.Second)
}

func fetchCounterValue(mfs []*dto.MetricFamily, name string, labels map[string]string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabels(metric.GetLabel(), labels) {
			return metric.GetCounter().GetValue(), nil
		}
	}
	return 0, fmt.Errorf("metric %q missing labels %v", name, labels)
}

func fetchHistogramCount(mfs []*dto.MetricFamily, name string, labels map[string]string) (uint64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabels(metric.GetLabel(), labels) {
			return metric.GetHistogram().GetSampleCount(), nil
		}
	}
	return 0, fmt.Errorf("histogram %q missing labels %v", name, labels)
}

func findMetricFamily(mfs []*dto.MetricFamily, name string) *dto.MetricFamily {
	for _, mf := range mfs {
		if mf.GetName() == name {
			return mf
		}
	}
	return nil
}

func matchesLabels(pairs []*dto.LabelPair, want map[string]string) bool {
	matched := 0
	for _, pair := range pairs {
		if v, ok := want[pair.GetName()]; ok && v == pair.GetValue() {
			matched++
		}
	}
	return matched == len(want)
}
