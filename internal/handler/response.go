package handler

import (
	"github.com/gin-gonic/gin"

	apperrors "github.com/jwalitptl/jobboard-api/pkg/errors"
)

const ContextRequestID = "request_id"

type Response struct {
	Status    string      `json:"status"`
	Message   string      `json:"message,omitempty"`
	Data      interface{} `json:"data,omitempty"`
	RequestID string      `json:"request_id,omitempty"`
}

func NewSuccessResponse(data interface{}) *Response {
	return &Response{
		Status: "success",
		Data:   data,
	}
}

func NewErrorResponse(message string) *Response {
	return &Response{
		Status:  "error",
		Message: message,
	}
}

// RespondWithError writes err using the status carried by its AppError.
// data is optional and lets callers return partial results alongside the error.
func RespondWithError(c *gin.Context, err error, data interface{}) {
	resp := NewErrorResponse(apperrors.MessageOf(err))
	resp.Data = data
	resp.RequestID = c.GetString(ContextRequestID)

	_ = c.Error(err)
	c.JSON(apperrors.StatusOf(err), resp)
}
