package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"shutterplan/internal/observe"
)

// Metrics records request duration by route template. Unmatched routes are
// grouped under "unmatched" to keep label cardinality bounded.
func Metrics(m *observe.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.RecordHTTPRequest(c.Request.Context(), c.Request.Method, route, c.Writer.Status(), time.Since(start).Seconds())
	}
}
