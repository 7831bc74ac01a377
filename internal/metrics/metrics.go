package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hostel_http_requests_total",
			Help: "Total HTTP requests by method, path and status code",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "hostel_http_request_duration_seconds",
			Help:    "HTTP request duration by method and path",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	BedTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hostel_bed_transitions_total",
			Help: "Bed status transitions by from/to status",
		},
		[]string{"from", "to"},
	)

	LayoutSyncsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hostel_layout_syncs_total",
			Help: "Layout synchronization runs by outcome",
		},
		[]string{"outcome"},
	)

	BulkItemsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hostel_bulk_items_total",
			Help: "Bulk bed operation items by operation and outcome",
		},
		[]string{"operation", "outcome"},
	)
)
