package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/jobboard-api/internal/handler"
	apperrors "github.com/jwalitptl/jobboard-api/pkg/errors"
)

// ErrorHandler logs errors attached to the context and, unless the handler
// already wrote a response, renders the last one
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		requestID := c.GetString(ContextRequestID)

		for _, e := range c.Errors {
			status := apperrors.StatusOf(e.Err)
			event := log.Warn()
			if status >= 500 {
				event = log.Error()
			}
			event.
				Err(e.Err).
				Str("request_id", requestID).
				Str("path", c.Request.URL.Path).
				Str("method", c.Request.Method).
				Int("status", status).
				Msg("Request error")
		}

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last().Err
		resp := handler.NewErrorResponse(apperrors.MessageOf(lastErr))
		resp.RequestID = requestID
		c.JSON(apperrors.StatusOf(lastErr), resp)
	}
}
