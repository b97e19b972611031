package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Download resolution metrics
var (
	ResolutionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "download_resolutions_total",
			Help: "Total number of download link resolutions.",
		},
		[]string{"status"},
	)

	UpstreamRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "upstream_requests_total",
			Help: "Total number of requests sent to the source site and the resolver host, by pipeline stage.",
		},
		[]string{"stage", "outcome"},
	)

	UpstreamRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "upstream_request_duration_seconds",
			Help:    "Duration of upstream requests, by pipeline stage.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"stage"},
	)
)

// Scrape operation metrics
var (
	OperationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scrape_operations_total",
			Help: "Total number of public operations, by operation and envelope code.",
		},
		[]string{"operation", "code"},
	)
)

func init() {
	prometheus.MustRegister(
		ResolutionsTotal,
		UpstreamRequestsTotal,
		UpstreamRequestDuration,
		OperationsTotal,
	)
}

// ObserveUpstream records one upstream call of the given stage.
func ObserveUpstream(stage, outcome string, elapsed time.Duration) {
	UpstreamRequestsTotal.WithLabelValues(stage, outcome).Inc()
	UpstreamRequestDuration.WithLabelValues(stage).Observe(elapsed.Seconds())
}
