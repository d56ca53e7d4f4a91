package prometheus

import (
	"catalog-service/pkg/config"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP request metrics
	HttpRequestsTotal   *prometheus.CounterVec
	HttpRequestDuration *prometheus.HistogramVec

	// Store operation metrics
	StoreOperationDuration *prometheus.HistogramVec

	// Product metrics
	ProductOperationsCounter *prometheus.CounterVec
	NoMatchCounter           prometheus.Counter

	// Catalog size as seen by the last load
	CatalogSizeGauge prometheus.Gauge
)

// InitMetrics registers the catalog metrics on reg using the configured prefix.
// Helpers below are no-ops until InitMetrics has run.
func InitMetrics(cfg *config.Config, reg prometheus.Registerer) {
	prefix := cfg.Metrics.Prefix
	factory := promauto.With(reg)

	HttpRequestsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HttpRequestDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    prefix + "_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	StoreOperationDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    prefix + "_store_operation_duration_seconds",
			Help:    "Duration of catalog store operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation_type"},
	)

	ProductOperationsCounter = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_product_operations_total",
			Help: "Total number of product operations by outcome",
		},
		[]string{"operation", "outcome"},
	)

	NoMatchCounter = factory.NewCounter(
		prometheus.CounterOpts{
			Name: prefix + "_query_no_match_total",
			Help: "Total number of listing queries that matched no product",
		},
	)

	CatalogSizeGauge = factory.NewGauge(
		prometheus.GaugeOpts{
			Name: prefix + "_catalog_size",
			Help: "Number of products in the catalog at the last load",
		},
	)
}

// RecordHTTPRequest observes one finished HTTP request
func RecordHTTPRequest(method, path, status string, duration time.Duration) {
	if HttpRequestsTotal == nil {
		return
	}
	HttpRequestsTotal.WithLabelValues(method, path, status).Inc()
	HttpRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// TrackStoreOperation returns a function that records the duration of a store operation
func TrackStoreOperation(operationType string) func(startTime time.Time) {
	return func(startTime time.Time) {
		if StoreOperationDuration == nil {
			return
		}
		StoreOperationDuration.WithLabelValues(operationType).Observe(time.Since(startTime).Seconds())
	}
}

// RecordProductOperation increments the counter for product operations
func RecordProductOperation(operation, outcome string) {
	if ProductOperationsCounter == nil {
		return
	}
	ProductOperationsCounter.WithLabelValues(operation, outcome).Inc()
}

// RecordNoMatch counts a listing that matched nothing
func RecordNoMatch() {
	if NoMatchCounter == nil {
		return
	}
	NoMatchCounter.Inc()
}

// SetCatalogSize updates the catalog size gauge
func SetCatalogSize(n int) {
	if CatalogSizeGauge == nil {
		return
	}
	CatalogSizeGauge.Set(float64(n))
}
