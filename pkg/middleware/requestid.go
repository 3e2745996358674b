package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	httpHelper "github.com/trendora/reco/pkg/api/http"
)

// RequestID propagates the caller's request id, generating one when absent.
// The id is echoed back on the response so callers can correlate logs.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(httpHelper.HeaderRequestID)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set(httpHelper.HeaderRequestID, requestID)
		c.Writer.Header().Set(httpHelper.HeaderRequestID, requestID)
		c.Next()
	}
}
