package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jwalitptl/jobboard-api/internal/handler"
	"github.com/jwalitptl/jobboard-api/pkg/logger"
)

const (
	HeaderXRequestID = "X-Request-ID"
	ContextRequestID = handler.ContextRequestID

	maxRequestIDLen = 128
)

// RequestID adds a unique request ID to each request and a request-scoped
// logger to the request context
func RequestID(base *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Check if request ID exists in header
		rid := c.GetHeader(HeaderXRequestID)
		if rid == "" || len(rid) > maxRequestIDLen {
			rid = uuid.New().String()
		}

		c.Set(ContextRequestID, rid)
		c.Header(HeaderXRequestID, rid)

		if base != nil {
			reqLogger := base.WithFields(map[string]interface{}{ContextRequestID: rid})
			c.Request = c.Request.WithContext(reqLogger.WithContext(c.Request.Context()))
		}

		c.Next()
	}
}
