// Package metrics registers the Prometheus collectors exposed on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status_code"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"method", "route"},
	)

	// CollectionToggles counts like/bookmark toggles by outcome
	// (kind: like|bookmark, result: created|deleted).
	CollectionToggles = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "collection_toggles_total",
			Help: "Total number of like and bookmark toggles",
		},
		[]string{"kind", "result"},
	)

	ShareLinks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "share_links_total",
			Help: "Share link lifecycle operations (minted, renewed, revoked, resolved)",
		},
		[]string{"action"},
	)

	// Tasks counts deferred tasks (result: queued|dropped|done|failed).
	Tasks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "deferred_tasks_total",
			Help: "Deferred tasks by kind and result",
		},
		[]string{"kind", "result"},
	)

	LinkHealth = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "link_health_links",
			Help: "Number of monitored links by state after the last check",
		},
		[]string{"state"},
	)
)
