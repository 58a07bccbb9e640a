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

// Common error codes
const (
	ErrNotFound ErrorCode = iota + 1000
	ErrBadRequest
	ErrUnauthorized
	ErrForbidden
	ErrConflict
	ErrValidation
	ErrRateLimited
	ErrUnavailable
	ErrInternal
)

// Error constructors
func NewNotFound(resource string, err error) *AppError {
	return &AppError{
		Code:    ErrNotFound,
		Message: fmt.Sprintf("%s not found", resource),
		Err:     err,
	}
}

func NewBadRequest(message string, err error) *AppError {
	return &AppError{
		Code:    ErrBadRequest,
		Message: message,
		Err:     err,
	}
}

func NewValidation(message string, err error) *AppError {
	return &AppError{
		Code:    ErrValidation,
		Message: message,
		Err:     err,
	}
}

func NewConflict(message string, err error) *AppError {
	return &AppError{
		Code:    ErrConflict,
		Message: message,
		Err:     err,
	}
}

func NewInternal(err error) *AppError {
	return &AppError{
		Code:    ErrInternal,
		Message: "internal error",
		Err:     err,
	}
}

func Unauthorized(err error) *AppError {
	return &AppError{
		Code:    ErrUnauthorized,
		Message: "unauthorized",
		Err:     err,
	}
}

func Unavailable(message string, err error) *AppError {
	return &AppError{
		Code:    ErrUnavailable,
		Message: message,
		Err:     err,
	}
}

// FromStatusCode maps an HTTP response status to an AppError code.
func FromStatusCode(status int, message string) *AppError {
	var code ErrorCode
	switch {
	case status == http.StatusNotFound:
		code = ErrNotFound
	case status == http.StatusUnauthorized:
		code = ErrUnauthorized
	case status == http.StatusForbidden:
		code = ErrForbidden
	case status == http.StatusConflict:
		code = ErrConflict
	case status == http.StatusUnprocessableEntity:
		code = ErrValidation
	case status == http.StatusTooManyRequests:
		code = ErrRateLimited
	case status >= 400 && status < 500:
		code = ErrBadRequest
	default:
		code = ErrInternal
	}
	if message == "" {
		message = http.StatusText(status)
	}
	return &AppError{Code: code, Message: message}
}

// CodeOf extracts the ErrorCode from err, or ErrInternal if it is not an AppError.
func CodeOf(err error) ErrorCode {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ErrInternal
}

// IsUnauthorized reports whether err carries the unauthorized code.
func IsUnauthorized(err error) bool {
	return CodeOf(err) == ErrUnauthorized
}

// IsNotFound reports whether err carries the not-found code.
func IsNotFound(err error) bool {
	return CodeOf(err) == ErrNotFound
}
