// Package metrics provides Prometheus instrumentation for the arena game
// server. It exposes gauges for connection and game counts, counters for
// message throughput and validation rejections, and a latency histogram.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// ConnectionsTotal tracks the current number of active WebSocket connections.
	ConnectionsTotal = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "arena_connections_total",
		Help: "Current number of active WebSocket connections",
	})

	// MessagesTotal counts the total number of messages processed, labeled by
	// outcome: "received", "relayed", or "rejected".
	MessagesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "arena_messages_total",
		Help: "Total number of messages processed",
	}, []string{"outcome"})

	// ValidationFailures counts rejected inbound messages by failure reason.
	ValidationFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "arena_validation_failures_total",
		Help: "Total number of inbound messages rejected by validation",
	}, []string{"reason"})

	// MessageLatency records inbound message processing latency in seconds.
	MessageLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "arena_message_latency_seconds",
		Help:    "Inbound message processing latency in seconds",
		Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
	})

	// ActiveGames tracks the current number of active game sessions.
	ActiveGames = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "arena_active_games",
		Help: "Current number of active game sessions",
	})
)

func init() {
	prometheus.MustRegister(
		ConnectionsTotal,
		MessagesTotal,
		ValidationFailures,
		MessageLatency,
		ActiveGames,
	)
}

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
