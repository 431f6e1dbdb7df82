package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	PageSyncsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "siloq_page_syncs_total",
			Help: "Total number of page sync attempts.",
		},
		[]string{"status", "reason"}, // status: synced, failed, skipped
	)

	SyncDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "siloq_sync_duration_seconds",
			Help:    "Duration of single page syncs that reached the remote API.",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
	)

	ImportsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "siloq_imports_total",
			Help: "Total number of content imports and restores.",
		},
		[]string{"action", "status"},
	)

	RemoteRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "siloq_remote_requests_total",
			Help: "Requests issued to the Siloq API.",
		},
		[]string{"endpoint", "status"},
	)
)
