// README: Request-id middleware; accepts or mints an id and carries it in the request context.
package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"shutterplan/internal/observe"
)

const RequestIDHeader = "X-Request-ID"

const maxRequestIDLen = 64

func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" || len(id) > maxRequestIDLen {
			id = uuid.NewString()
		}
		c.Header(RequestIDHeader, id)
		c.Request = c.Request.WithContext(observe.WithRequestID(c.Request.Context(), id))
		c.Next()
	}
}
