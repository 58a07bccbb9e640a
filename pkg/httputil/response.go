package httputil

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/psiclinic/clinic-cli/pkg/errors"
)

// Response wraps all API responses
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *Error      `json:"error,omitempty"`
}

// Error represents an API error body
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// RespondWithSuccess sends a success response
func RespondWithSuccess(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    data,
	})
}

// RespondWithCreated sends a 201 response
func RespondWithCreated(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{
		Success: true,
		Data:    data,
	})
}

// RespondWithError sends an error response with the status implied by the error code
func RespondWithError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	message := "internal error"

	if appErr, ok := err.(*errors.AppError); ok {
		message = appErr.Message
		switch appErr.Code {
		case errors.ErrNotFound:
			status = http.StatusNotFound
		case errors.ErrBadRequest:
			status = http.StatusBadRequest
		case errors.ErrUnauthorized:
			status = http.StatusUnauthorized
		case errors.ErrForbidden:
			status = http.StatusForbidden
		case errors.ErrConflict:
			status = http.StatusConflict
		case errors.ErrValidation:
			status = http.StatusUnprocessableEntity
		case errors.ErrRateLimited:
			status = http.StatusTooManyRequests
		}
	}

	c.JSON(status, Response{
		Success: false,
		Error: &Error{
			Code:    status,
			Message: message,
		},
	})
}
