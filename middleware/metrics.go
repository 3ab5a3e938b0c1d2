package middleware

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "storefront_http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"method", "path", "status"},
	)

	productOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_product_operations_total",
			Help: "Total number of product operations",
		},
		[]string{"operation", "status"},
	)

	authOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_auth_operations_total",
			Help: "Total number of register and login attempts",
		},
		[]string{"operation", "status"},
	)

	cacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_product_list_cache_lookups_total",
			Help: "Product list cache lookups by result",
		},
		[]string{"result"},
	)
)

// Prometheus records request counts and latencies per route template.
func Prometheus() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		path := c.Route().Path
		if path == "" {
			path = c.Path()
		}
		status := strconv.Itoa(responseStatus(c, err))

		httpRequestsTotal.WithLabelValues(c.Method(), path, status).Inc()
		httpRequestDuration.WithLabelValues(c.Method(), path, status).Observe(time.Since(start).Seconds())
		return err
	}
}

func RecordProductOperation(operation string, success bool) {
	productOperations.WithLabelValues(operation, outcome(success)).Inc()
}

func RecordAuthOperation(operation string, success bool) {
	authOperations.WithLabelValues(operation, outcome(success)).Inc()
}

func RecordCacheLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	cacheLookups.WithLabelValues(result).Inc()
}

func outcome(success bool) string {
	if success {
		return "success"
	}
	return "error"
}
