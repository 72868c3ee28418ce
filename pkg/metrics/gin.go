package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// GinMiddleware records request metrics labelled by the matched route
// template, keeping label cardinality independent of path parameters.
func (r *Recorder) GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if r == nil {
			c.Next()
			return
		}

		r.httpInFlight.Inc()
		start := time.Now()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()

		r.httpRequests.WithLabelValues(route, c.Request.Method, strconv.Itoa(status)).Inc()
		r.httpDuration.WithLabelValues(route, c.Request.Method, statusClass(status)).Observe(time.Since(start).Seconds())
		r.httpInFlight.Dec()
	}
}
