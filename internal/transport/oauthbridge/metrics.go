package oauthbridge

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// metrics holds the bridge's Prometheus collectors on a private registry so
// multiple bridges (and tests) never fight over the default one.
type metrics struct {
	registry     *prometheus.Registry
	toolCalls    *prometheus.CounterVec
	toolOK       *prometheus.CounterVec
	toolErrors   *prometheus.CounterVec
	authFailures *prometheus.CounterVec
	toolDuration *prometheus.HistogramVec
}

func newMetrics() *metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &metrics{
		registry: reg,
		toolCalls: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "toolgate",
			Name:      "tool_calls_total",
			Help:      "Tool invocations by tool name.",
		}, []string{"tool"}),
		toolOK: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "toolgate",
			Name:      "tool_ok_total",
			Help:      "Successful tool invocations by tool name.",
		}, []string{"tool"}),
		toolErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "toolgate",
			Name:      "tool_error_total",
			Help:      "Failed tool invocations by tool name.",
		}, []string{"tool"}),
		authFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "toolgate",
			Name:      "auth_failures_total",
			Help:      "Rejected requests by reason.",
		}, []string{"reason"}),
		toolDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "toolgate",
			Name:      "tool_duration_seconds",
			Help:      "Tool invocation latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"tool"}),
	}
}

// observe records one tool invocation outcome.
func (m *metrics) observe(tool string, ok bool, seconds float64) {
	m.toolCalls.WithLabelValues(tool).Inc()
	if ok {
		m.toolOK.WithLabelValues(tool).Inc()
	} else {
		m.toolErrors.WithLabelValues(tool).Inc()
	}
	m.toolDuration.WithLabelValues(tool).Observe(seconds)
}
