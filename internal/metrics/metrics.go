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
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	UploadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_uploads_total",
			Help: "Uploaded files by collection and result",
		},
		[]string{"collection", "result"},
	)

	StorageDeleteFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storage_delete_failures_total",
			Help: "Stored files that could not be removed after their record was deleted",
		},
		[]string{"collection"},
	)

	SweptObjects = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storage_swept_objects_total",
			Help: "Orphaned objects removed by the sweeper",
		},
		[]string{"collection"},
	)
)
