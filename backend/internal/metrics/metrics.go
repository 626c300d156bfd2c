// Package metrics holds the Prometheus collectors shared by the HTTP layer,
// the graph repository and the recipe importer.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP Metrics
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "recipe_graph_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)

	// Graph Store Metrics
	GraphTxDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "recipe_graph_neo4j_tx_duration_seconds",
			Help:    "Duration of Neo4j transactions in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "mode"},
	)

	GraphTxErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recipe_graph_neo4j_tx_errors_total",
			Help: "Total number of failed Neo4j transactions",
		},
		[]string{"operation"},
	)

	// Import Metrics
	RecipesImported = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "recipe_graph_recipes_imported_total",
			Help: "Total number of recipes upserted from the external catalog",
		},
	)

	CatalogBreakerState = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "recipe_graph_catalog_breaker_state",
			Help: "Catalog circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
	)
)

// ObserveHTTPRequest records one served request
func ObserveHTTPRequest(method, route string, status int, elapsed time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	HTTPRequestDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(elapsed.Seconds())
}

// ObserveGraphTx records one managed transaction
func ObserveGraphTx(operation, mode string, elapsed time.Duration, err error) {
	GraphTxDuration.WithLabelValues(operation, mode).Observe(elapsed.Seconds())
	if err != nil {
		GraphTxErrors.WithLabelValues(operation).Inc()
	}
}
