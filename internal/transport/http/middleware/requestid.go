package middleware

import (
	"github.com/ErlanBelekov/admin-console/internal/requestid"
	"github.com/gin-gonic/gin"
)

// RequestID attaches a request ID to the context and echoes it in the
// response. A well-formed inbound X-Request-ID is kept; otherwise a new one
// is generated.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestid.Header)
		if !requestid.Valid(id) {
			id = requestid.New()
		}

		c.Request = c.Request.WithContext(requestid.With(c.Request.Context(), id))
		c.Header(requestid.Header, id)
		c.Next()
	}
}
