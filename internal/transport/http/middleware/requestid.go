package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"teambot/internal/transport/http/response"
)

const requestIDHeader = "X-Request-ID"

// RequestID propagates an inbound request id or mints one.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(response.RequestIDKey, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}
