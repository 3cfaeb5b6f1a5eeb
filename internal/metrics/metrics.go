// Package metrics provides Prometheus instrumentation for the CodeMate
// client. It exposes counters for live-channel traffic and typing signals,
// and histograms for REST request latency.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// MessagesSent counts outgoing sendMessage emissions.
	MessagesSent = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "codemate_messages_sent_total",
		Help: "Total number of chat messages sent over the live channel",
	})

	// MessagesReceived counts messageReceived events appended to the log.
	MessagesReceived = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "codemate_messages_received_total",
		Help: "Total number of chat messages received over the live channel",
	})

	// TypingEmissions counts typing and stopTyping signals, labeled by kind.
	TypingEmissions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "codemate_typing_emissions_total",
		Help: "Total number of typing indicator emissions",
	}, []string{"kind"}) // kind = "typing", "stopTyping"

	// LiveReconnects counts live-channel reconnect attempts.
	LiveReconnects = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "codemate_live_reconnects_total",
		Help: "Total number of live channel reconnect attempts",
	})

	// APIRequestDuration records REST request latency in seconds, labeled by
	// HTTP method.
	APIRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "codemate_api_request_duration_seconds",
		Help:    "REST request latency in seconds",
		Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
	}, []string{"method"})

	// APIFailures counts REST requests that ended in an error, labeled by
	// kind: "transport", "unauthorized", or "server".
	APIFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "codemate_api_failures_total",
		Help: "Total number of failed REST requests",
	}, []string{"kind"})
)

func init() {
	prometheus.MustRegister(
		MessagesSent,
		MessagesReceived,
		TypingEmissions,
		LiveReconnects,
		APIRequestDuration,
		APIFailures,
	)
}

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
