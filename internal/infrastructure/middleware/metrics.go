package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/connectfood/core/internal/infrastructure/metrics"
)

// Metrics records request latency labelled by the matched route template,
// so path parameters do not explode label cardinality.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}

		metrics.HTTPRequestDuration.
			WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).
			Observe(time.Since(start).Seconds())
	}
}
