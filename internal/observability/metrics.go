// Package observability defines the prometheus metrics emitted by the
// ingestion pipeline.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dashboard_api_requests_total",
		Help: "GitHub API requests by outcome (ok, auth, rate_limited, transient, rejected).",
	}, []string{"outcome"})

	RetriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dashboard_api_retries_total",
		Help: "Retries issued by the transport, by reason.",
	}, []string{"reason"})

	RateLimitWaitSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "dashboard_rate_limit_wait_seconds",
		Help:    "Time spent waiting for the API quota to reset.",
		Buckets: []float64{1, 5, 15, 60, 300, 900, 3600},
	})

	PagesFetchedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dashboard_pages_fetched_total",
		Help: "Pages requested by the pagination driver.",
	})

	ResourceFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dashboard_resource_failures_total",
		Help: "Top-level resources that degraded to an empty result.",
	}, []string{"resource"})

	RecordMappingFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dashboard_record_mapping_failures_total",
		Help: "Raw records dropped during normalization.",
	}, []string{"kind"})

	RefreshDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "dashboard_refresh_seconds",
		Help:    "Duration of a full fetch, normalize and aggregate cycle.",
		Buckets: prometheus.DefBuckets,
	})
)
