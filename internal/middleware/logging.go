package middleware

import (
	"time"

	"homeinsight-listings/pkg/logger"

	"github.com/gin-gonic/gin"
)

func LoggingMiddleware(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		cacheStatus := c.Writer.Header().Get(CacheHeader)
		if cacheStatus == "" {
			cacheStatus = "-"
		}
		log.Printf("%s %s %d %v cache=%s", method, path, c.Writer.Status(), time.Since(start), cacheStatus)
	}
}
