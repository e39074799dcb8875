package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PollMetrics records metadata for periodic poll loops.
type PollMetrics struct {
	duration  *prometheus.HistogramVec
	success   *prometheus.CounterVec
	failure   *prometheus.CounterVec
	newOrders prometheus.Counter
}

// NewPollMetrics registers the poll metrics on the provided registerer.
func NewPollMetrics(reg prometheus.Registerer) *PollMetrics {
	if reg == nil {
		return &PollMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "poll_duration_seconds",
		Help:    "Duration of poll cycles in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"poller"})
	success := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "poll_success",
		Help: "Successful poll cycles.",
	}, []string{"poller"})
	failure := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "poll_failure",
		Help: "Failed poll cycles.",
	}, []string{"poller"})
	newOrders := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "orders_newly_observed_total",
		Help: "Order ids observed for the first time across consecutive polls.",
	})
	reg.MustRegister(duration, success, failure, newOrders)
	return &PollMetrics{
		duration:  duration,
		success:   success,
		failure:   failure,
		newOrders: newOrders,
	}
}

// ObserveDuration records the duration for the named poller.
func (p *PollMetrics) ObserveDuration(poller string, duration time.Duration) {
	if p == nil || p.duration == nil {
		return
	}
	p.duration.WithLabelValues(normalizeLabel(poller)).Observe(duration.Seconds())
}

// IncSuccess increments the success counter for the named poller.
func (p *PollMetrics) IncSuccess(poller string) {
	if p == nil || p.success == nil {
		return
	}
	p.success.WithLabelValues(normalizeLabel(poller)).Inc()
}

// IncFailure increments the failure counter for the named poller.
func (p *PollMetrics) IncFailure(poller string) {
	if p == nil || p.failure == nil {
		return
	}
	p.failure.WithLabelValues(normalizeLabel(poller)).Inc()
}

// AddNewOrders counts order ids seen for the first time.
func (p *PollMetrics) AddNewOrders(n int) {
	if p == nil || p.newOrders == nil || n <= 0 {
		return
	}
	p.newOrders.Add(float64(n))
}

func normalizeLabel(poller string) string {
	if poller == "" {
		return "unknown"
	}
	return poller
}
