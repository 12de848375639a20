// Package metrics provides the prometheus collectors for the dashboard.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collector provides application metrics collection.
type Collector struct {
	// API metrics
	APIRequestsTotal   *prometheus.CounterVec
	APIRequestDuration *prometheus.HistogramVec
	APIErrorsTotal     *prometheus.CounterVec

	// Load metrics
	LoadRowsTotal *prometheus.CounterVec
	LoadDuration  *prometheus.HistogramVec

	// View metrics
	ViewRecomputeTotal    *prometheus.CounterVec
	ViewRecomputeDuration *prometheus.HistogramVec
	InsufficientDataTotal *prometheus.CounterVec
}

// NewCollector creates a collector registered on the default registry.
func NewCollector(namespace string) *Collector {
	return NewCollectorWith(prometheus.DefaultRegisterer, namespace)
}

// NewCollectorWith creates a collector registered on reg. Tests pass their
// own registry to avoid duplicate-registration panics.
func NewCollectorWith(reg prometheus.Registerer, namespace string) *Collector {
	factory := promauto.With(reg)

	return &Collector{
		APIRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "api_requests_total",
				Help:      "Total number of API requests by endpoint, method, and status",
			},
			[]string{"endpoint", "method", "status"},
		),

		APIRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "api_request_duration_seconds",
				Help:      "API request duration in seconds",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.02, 0.05, 0.1, 0.2, 0.5, 1.0},
			},
			[]string{"endpoint"},
		),

		APIErrorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "api_errors_total",
				Help:      "Total number of API errors by type",
			},
			[]string{"error_type", "endpoint"},
		),

		LoadRowsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "load_rows_total",
				Help:      "Total number of rows loaded per source",
			},
			[]string{"source"},
		),

		LoadDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "load_duration_seconds",
				Help:      "Duration of source loads in seconds",
				Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30},
			},
			[]string{"source"},
		),

		ViewRecomputeTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "view_recompute_total",
				Help:      "Total number of view recomputations by view",
			},
			[]string{"view"},
		),

		ViewRecomputeDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "view_recompute_duration_seconds",
				Help:      "Duration of view recomputations in seconds",
				Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
			},
			[]string{"view"},
		),

		InsufficientDataTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "insufficient_data_total",
				Help:      "Recomputations that ended in an insufficient-data state",
			},
			[]string{"view"},
		),
	}
}

// RecordAPIRequest increments the API request counter.
func (c *Collector) RecordAPIRequest(endpoint, method, status string) {
	c.APIRequestsTotal.WithLabelValues(endpoint, method, status).Inc()
}

// RecordAPIError increments the API error counter.
func (c *Collector) RecordAPIError(errorType, endpoint string) {
	c.APIErrorsTotal.WithLabelValues(errorType, endpoint).Inc()
}

// ObserveLoad records the size and duration of one source load.
func (c *Collector) ObserveLoad(source string, rows int, duration time.Duration) {
	c.LoadRowsTotal.WithLabelValues(source).Add(float64(rows))
	c.LoadDuration.WithLabelValues(source).Observe(duration.Seconds())
}

// ObserveRecompute records one view recomputation.
func (c *Collector) ObserveRecompute(view string, duration time.Duration) {
	c.ViewRecomputeTotal.WithLabelValues(view).Inc()
	c.ViewRecomputeDuration.WithLabelValues(view).Observe(duration.Seconds())
}

// RecordInsufficientData marks a recompute that had too few points.
func (c *Collector) RecordInsufficientData(view string) {
	c.InsufficientDataTotal.WithLabelValues(view).Inc()
}
