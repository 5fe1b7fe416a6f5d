package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/ErlanBelekov/admin-console/internal/metrics"
	"github.com/gin-gonic/gin"
)

// Route labels for requests gin did not match to a handler. Raw paths are
// never used as labels.
const (
	routeGuarded   = "guarded"
	routeUnmatched = "unmatched"
)

// Metrics records latency and count per method, route and status.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		route := c.FullPath()
		if route == "" {
			route = routeUnmatched
			if c.IsAborted() && status == http.StatusTemporaryRedirect {
				route = routeGuarded
			}
		}
		code := strconv.Itoa(status)

		metrics.HTTPRequestDuration.WithLabelValues(c.Request.Method, route, code).Observe(time.Since(start).Seconds())
		metrics.HTTPRequestsTotal.WithLabelValues(c.Request.Method, route, code).Inc()
	}
}
