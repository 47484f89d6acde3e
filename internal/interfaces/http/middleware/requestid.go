package middleware

import (
	"encoding/hex"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/lookbook/backend/internal/infrastructure/logger"
)

// MaxRequestIDLength caps client supplied request IDs
const MaxRequestIDLength = 128

// RequestID tags each request with an id, echoed in the response header
// and in every log line. A client id is kept, truncated to
// MaxRequestIDLength; otherwise a 32 hex char id is minted.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			u := uuid.New()
			id = hex.EncodeToString(u[:])
		} else if len(id) > MaxRequestIDLength {
			id = id[:MaxRequestIDLength]
		}
		c.Set(logger.GinRequestIDKey, id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

// GetRequestID returns the id set by RequestID, falling back to the header
func GetRequestID(c *gin.Context) string {
	if id := c.GetString(logger.GinRequestIDKey); id != "" {
		return id
	}
	return c.GetHeader(RequestIDHeader)
}
