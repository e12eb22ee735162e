package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus instruments for the HTTP server.
type Metrics struct {
	Registry *prometheus.Registry

	CounterRequests     prometheus.Counter
	CounterPanics       prometheus.Counter
	CounterCacheRefresh prometheus.Counter
	HistRequestDuration *prometheus.HistogramVec
}

// NewMetrics creates a registry with runtime collectors plus the request
// instruments.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	factory := promauto.With(registry)

	return &Metrics{
		Registry: registry,
		CounterRequests: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "connectlog",
			Name:      "requests_total",
			Help:      "The total number of handled requests",
		}),
		CounterPanics: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "connectlog",
			Name:      "handle_request_panic_total",
			Help:      "The total number of serve request panics",
		}),
		CounterCacheRefresh: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "connectlog",
			Name:      "cache_refresh_total",
			Help:      "The total number of background cache refreshes",
		}),
		HistRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "connectlog",
			Name:      "request_duration_seconds",
			Help:      "Histogram of response time for requests in seconds",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		}, []string{"route", "method"}),
	}
}
