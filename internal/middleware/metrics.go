package middleware

import (
	"time"

	"github.com/cleberrangel/process-cost-api/internal/metrics"
	"github.com/gin-gonic/gin"
)

// MetricsMiddleware tracks request metrics in the in-process counters
// and in the Prometheus collectors
func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		latency := time.Since(start).Milliseconds()
		statusCode := c.Writer.Status()

		metrics.Get().IncrementRequests(statusCode < 400, latency)

		// rota registrada, não a URL, para não explodir a cardinalidade
		path := routeOf(c)
		metrics.Get().TrackEndpoint(path, c.Request.Method, statusCode, latency)
		metrics.ObserveHTTP(c.Request.Method, path, statusCode, latency)
	}
}
