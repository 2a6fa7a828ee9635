package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// Kind classifies an application error
type Kind int

// AppError represents an application error
type AppError struct {
	Kind    Kind   `json:"kind"`
	Message string `json:"message"`
	Err     error  `json:"-"`
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

// StatusCode maps the error kind to an HTTP status.
func (e *AppError) StatusCode() int {
	switch e.Kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

const (
	KindInternal Kind = iota + 1000
	KindValidation
	KindTransport
	KindPersistence
	KindAuditLog
	KindNotFound
	KindUnauthorized
)

func Validation(message string) *AppError {
	return &AppError{Kind: KindValidation, Message: message}
}

func Transport(message string, err error) *AppError {
	return &AppError{Kind: KindTransport, Message: message, Err: err}
}

func Persistence(message string, err error) *AppError {
	return &AppError{Kind: KindPersistence, Message: message, Err: err}
}

func AuditLog(message string, err error) *AppError {
	return &AppError{Kind: KindAuditLog, Message: message, Err: err}
}

func NotFound(resource string) *AppError {
	return &AppError{Kind: KindNotFound, Message: fmt.Sprintf("%s not found", resource)}
}

func Unauthorized(err error) *AppError {
	return &AppError{Kind: KindUnauthorized, Message: "unauthorized", Err: err}
}

func Internal(err error) *AppError {
	return &AppError{Kind: KindInternal, Message: "internal server error", Err: err}
}

// IsKind reports whether any error in err's chain is an AppError of kind k.
func IsKind(err error, k Kind) bool {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Kind == k
	}
	return false
}

// StatusCode returns the HTTP status for err, defaulting to 500.
func StatusCode(err error) int {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.StatusCode()
	}
	return http.StatusInternalServerError
}
