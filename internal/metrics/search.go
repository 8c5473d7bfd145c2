package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Search, gateway and catalog sync metrics.
var (
	SearchRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "shopsearch",
			Name:      "search_requests_total",
			Help:      "Total number of product searches",
		},
		[]string{"sort", "personalized", "status"},
	)

	ScoringFunctionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "shopsearch",
			Name:      "scoring_functions_total",
			Help:      "Scoring functions attached to composed queries, by kind",
		},
		[]string{"kind"},
	)

	SearchResultSize = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "shopsearch",
			Name:      "search_result_size",
			Help:      "Number of products returned per search",
			Buckets:   []float64{0, 1, 5, 10, 20, 50, 100},
		},
	)

	GatewayRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "shopsearch",
			Name:      "gateway_request_duration_seconds",
			Help:      "Index gateway call duration in seconds",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"driver", "op", "status"},
	)

	SyncedProductsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "shopsearch",
			Name:      "synced_products_total",
			Help:      "Products processed by catalog sync",
		},
		[]string{"source", "result"}, // source: reindex/queue/seed; result: indexed/skipped/failed
	)
)

var registerOnce sync.Once

// RegisterSearchMetrics registers search, gateway and sync metrics. Safe to call more than once.
func RegisterSearchMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			SearchRequestsTotal,
			ScoringFunctionsTotal,
			SearchResultSize,
			GatewayRequestDuration,
			SyncedProductsTotal,
		)
	})
}

// ObserveGateway records one index or queue call started at start.
func ObserveGateway(driver, op string, start time.Time, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	GatewayRequestDuration.WithLabelValues(driver, op, status).Observe(time.Since(start).Seconds())
}
