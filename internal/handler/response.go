package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/jwalitptl/dental-intake-api/pkg/errors"
)

type ErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

func NewErrorResponse(message string) *ErrorResponse {
	return &ErrorResponse{Message: message}
}

// NewFailureResponse carries the underlying error text for 5xx replies.
func NewFailureResponse(message string, err error) *ErrorResponse {
	r := &ErrorResponse{Message: message}
	if err != nil {
		r.Error = err.Error()
	}
	return r
}

// IsBodyTooLarge reports whether a bind failed on the body size limit.
func IsBodyTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr)
}

// AbortWithError answers with the status of err. Client errors echo the
// message; anything else uses failureMessage and the error text.
func AbortWithError(c *gin.Context, err error, failureMessage string) {
	_ = c.Error(err)

	status := apperrors.StatusCode(err)
	if status < http.StatusInternalServerError {
		var appErr *apperrors.AppError
		msg := err.Error()
		if errors.As(err, &appErr) {
			msg = appErr.Message
		}
		c.AbortWithStatusJSON(status, NewErrorResponse(msg))
		return
	}
	c.AbortWithStatusJSON(status, NewFailureResponse(failureMessage, err))
}
