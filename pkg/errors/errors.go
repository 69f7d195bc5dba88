package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorCode represents a unique error code
type ErrorCode int

// AppError represents an application error
type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Err     error     `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// StatusCode maps the error code onto an HTTP status
func (e *AppError) StatusCode() int {
	if status, ok := statusCodes[e.Code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// Common error codes
const (
	ErrBadRequest ErrorCode = iota + 1000
	ErrInternal
	ErrUnprocessable
	ErrTooManyRequests
	ErrRequestTooLarge
)

var statusCodes = map[ErrorCode]int{
	ErrBadRequest:      http.StatusBadRequest,
	ErrInternal:        http.StatusInternalServerError,
	ErrUnprocessable:   http.StatusUnprocessableEntity,
	ErrTooManyRequests: http.StatusTooManyRequests,
	ErrRequestTooLarge: http.StatusRequestEntityTooLarge,
}

// Error constructors
func NewBadRequest(message string, err error) *AppError {
	return &AppError{
		Code:    ErrBadRequest,
		Message: message,
		Err:     err,
	}
}

func NewUnprocessable(message string, err error) *AppError {
	return &AppError{
		Code:    ErrUnprocessable,
		Message: message,
		Err:     err,
	}
}

func NewTooManyRequests(err error) *AppError {
	return &AppError{
		Code:    ErrTooManyRequests,
		Message: "rate limit exceeded",
		Err:     err,
	}
}

func NewRequestTooLarge(message string, err error) *AppError {
	return &AppError{
		Code:    ErrRequestTooLarge,
		Message: message,
		Err:     err,
	}
}

func NewInternal(err error) *AppError {
	return &AppError{
		Code:    ErrInternal,
		Message: "internal server error",
		Err:     err,
	}
}

// asAppError unwraps err to an AppError, treating anything else as internal
func asAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return NewInternal(err)
}

// StatusOf returns the HTTP status carried by err, defaulting to 500
func StatusOf(err error) int {
	return asAppError(err).StatusCode()
}

// MessageOf returns the client-facing message of err
func MessageOf(err error) string {
	return asAppError(err).Message
}
