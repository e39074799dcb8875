package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestPollMetricsNilSafe(t *testing.T) {
	var m *PollMetrics
	m.ObserveDuration("orders", time.Second)
	m.IncSuccess("orders")
	m.IncFailure("orders")
	m.AddNewOrders(2)

	empty := NewPollMetrics(nil)
	empty.IncSuccess("orders")
	empty.AddNewOrders(1)
}

func TestPollMetricsCounts(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewPollMetrics(reg)

	m.IncSuccess("orders")
	m.IncSuccess("orders")
	m.IncFailure("")
	m.AddNewOrders(3)
	m.AddNewOrders(0)
	m.ObserveDuration("orders", 250*time.Millisecond)

	if got := testutil.ToFloat64(m.success.WithLabelValues("orders")); got != 2 {
		t.Fatalf("expected 2 successes, got %v", got)
	}
	if got := testutil.ToFloat64(m.failure.WithLabelValues("unknown")); got != 1 {
		t.Fatalf("expected empty poller label to normalize to unknown, got %v", got)
	}
	if got := testutil.ToFloat64(m.newOrders); got != 3 {
		t.Fatalf("expected 3 new orders, got %v", got)
	}
}
