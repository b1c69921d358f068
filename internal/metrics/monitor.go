// Package metrics instruments backend RPC calls and polling waits with
// Prometheus metrics.
package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/jbweber/canopy/internal/one"
	"github.com/jbweber/canopy/internal/poll"
)

// Result label values.
const (
	ResultSuccess  = "success"
	ResultNotFound = "not_found"
	ResultError    = "error"
	ResultTimeout  = "timeout"
	ResultFailed   = "failed"
)

// Monitor implements one.CallObserver and poll.Observer. Register it with
// a prometheus.Registerer to export its metrics.
type Monitor struct {
	rpcCalls    *prometheus.CounterVec
	rpcDuration *prometheus.HistogramVec
	pollTimer   *prometheus.HistogramVec
}

var (
	_ one.CallObserver     = (*Monitor)(nil)
	_ poll.Observer        = (*Monitor)(nil)
	_ prometheus.Collector = (*Monitor)(nil)
)

// NewMonitor creates the metric vectors. Nothing is registered yet.
func NewMonitor() *Monitor {
	return &Monitor{
		rpcCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "canopy_backend_rpc_calls_total",
			Help: "Total number of backend RPC calls by method and result",
		}, []string{"method", "result"}),
		rpcDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "canopy_backend_rpc_duration_seconds",
			Help:    "Duration of backend RPC calls in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"method"}),
		pollTimer: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "canopy_poll_duration_seconds",
			Help:    "Duration of waits for backend state transitions in seconds",
			Buckets: prometheus.ExponentialBuckets(1, 2, 11),
		}, []string{"target", "result"}),
	}
}

// ObserveCall implements one.CallObserver.
func (m *Monitor) ObserveCall(method string, duration time.Duration, err error) {
	m.rpcCalls.WithLabelValues(method, callResult(err)).Inc()
	m.rpcDuration.WithLabelValues(method).Observe(duration.Seconds())
}

// ObservePoll implements poll.Observer.
func (m *Monitor) ObservePoll(target string, duration time.Duration, err error) {
	m.pollTimer.WithLabelValues(target, pollResult(err)).Observe(duration.Seconds())
}

// Describe implements prometheus.Collector.
func (m *Monitor) Describe(ch chan<- *prometheus.Desc) {
	m.rpcCalls.Describe(ch)
	m.rpcDuration.Describe(ch)
	m.pollTimer.Describe(ch)
}

// Collect implements prometheus.Collector.
func (m *Monitor) Collect(ch chan<- prometheus.Metric) {
	m.rpcCalls.Collect(ch)
	m.rpcDuration.Collect(ch)
	m.pollTimer.Collect(ch)
}

func callResult(err error) string {
	switch {
	case err == nil:
		return ResultSuccess
	case one.IsNotFound(err):
		return ResultNotFound
	}
	return ResultError
}

func pollResult(err error) string {
	var failure *poll.FailureError
	switch {
	case err == nil:
		return ResultSuccess
	case errors.Is(err, poll.ErrTimeout):
		return ResultTimeout
	case errors.As(err, &failure):
		return ResultFailed
	}
	return ResultError
}
