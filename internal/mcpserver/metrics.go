// internal/mcpserver/metrics.go
//
// Tool-call metrics on a private registry so the /metrics endpoint only
// exposes what this server owns.

package mcpserver

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type metrics struct {
	registry  *prometheus.Registry
	toolCalls *prometheus.CounterVec
	toolTime  *prometheus.HistogramVec
}

func newMetrics() *metrics {
	registry := prometheus.NewRegistry()

	m := &metrics{
		registry: registry,
		toolCalls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wordle_coach_tool_calls_total",
				Help: "Total number of MCP tool calls by tool and outcome",
			},
			[]string{"tool", "outcome"},
		),
		toolTime: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "wordle_coach_tool_duration_seconds",
				Help:    "MCP tool call duration in seconds",
				Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0, 5.0, 30.0},
			},
			[]string{"tool"},
		),
	}

	registry.MustRegister(m.toolCalls, m.toolTime)
	return m
}

// observe records one finished tool call. Tool results with IsError count
// as errors even though the protocol call itself succeeded.
func (m *metrics) observe(tool string, start time.Time, failed bool) {
	outcome := "ok"
	if failed {
		outcome = "error"
	}
	m.toolCalls.WithLabelValues(tool, outcome).Inc()
	m.toolTime.WithLabelValues(tool).Observe(time.Since(start).Seconds())
}

func (m *metrics) handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
