// Package metrics registers the Prometheus metrics used by the server.
// Importing the package registers all metrics before the /metrics handler
// is mounted.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// SearchesTotal counts completed searches labelled by backend and
	// outcome ("success", "client_error", "server_error").
	SearchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "docsift_searches_total",
			Help: "Total number of searches processed by the gateway.",
		},
		[]string{"backend", "status"},
	)

	// SearchDuration observes end-to-end search latency in seconds,
	// including the backend call.
	SearchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "docsift_search_duration_seconds",
			Help:    "End-to-end search duration in seconds.",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"backend"},
	)

	// PluginsRegistered tracks how many plugins passed validation at boot.
	PluginsRegistered = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "docsift_plugins_registered",
			Help: "Number of plugins accepted into the registry at startup.",
		},
	)

	// BackendErrors counts backend failures broken down by backend and
	// error type ("connection", "query").
	BackendErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "docsift_backend_errors_total",
			Help: "Total search backend errors by type.",
		},
		[]string{"backend", "error_type"},
	)
)
