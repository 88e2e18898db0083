package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "parley_http_requests_total",
			Help: "HTTP requests by method, route and status code.",
		},
		[]string{"method", "route", "status"},
	)

	HTTPDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "parley_http_request_duration_seconds",
			Help:    "HTTP request latency by method and route.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// FeedRowsDropped counts feed rows whose author member or user no longer exists.
	FeedRowsDropped = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "parley_feed_rows_dropped_total",
			Help: "Message rows omitted from feeds because their author could not be resolved.",
		},
	)

	GatewayConnections = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "parley_gateway_connections",
			Help: "Identified WebSocket gateway connections.",
		},
	)

	GatewayEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "parley_gateway_events_total",
			Help: "Dispatch events fanned out by the gateway, by event name.",
		},
		[]string{"event"},
	)
)

func init() {
	prometheus.MustRegister(HTTPRequests)
	prometheus.MustRegister(HTTPDuration)
	prometheus.MustRegister(FeedRowsDropped)
	prometheus.MustRegister(GatewayConnections)
	prometheus.MustRegister(GatewayEvents)
}
