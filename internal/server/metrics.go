package server

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "custodia_requests_total",
		Help: "Total HTTP requests by method, path, and response status.",
	}, []string{"method", "path", "status"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "custodia_request_duration_seconds",
		Help:    "Request duration in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path"})

	ledgerRendersTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "custodia_ledger_renders_total",
		Help: "Total full-ledger reconstructions served.",
	})

	ledgerWarningsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "custodia_ledger_warnings_total",
		Help: "Total per-asset fetch failures skipped during ledger reconstruction.",
	})
)

// prometheusMiddleware records per-request metrics.
func prometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		requestsTotal.WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).Inc()
		requestDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}

// metricsHandler serves the Prometheus scrape endpoint.
func metricsHandler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}

// recordLedgerRender counts one reconstruction and its skipped assets.
func recordLedgerRender(warnings int) {
	ledgerRendersTotal.Inc()
	ledgerWarningsTotal.Add(float64(warnings))
}
