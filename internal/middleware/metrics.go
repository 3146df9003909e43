package middleware

import (
	"strconv"
	"time"

	"homeinsight-listings/pkg/metrics"

	"github.com/gin-gonic/gin"
)

// CacheHeader reports HIT or MISS on responses served through the cache.
const CacheHeader = "X-Cache"

// MetricsMiddleware labels requests by route template so ids in paths do not
// explode label cardinality.
func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())
		metrics.HTTPRequestsTotal.WithLabelValues(c.Request.Method, endpoint, status).Inc()
		metrics.HTTPRequestDuration.WithLabelValues(c.Request.Method, endpoint, status).Observe(time.Since(start).Seconds())
	}
}
