package errors

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Error codes
const (
	// Authentication errors
	ErrCodeUnauthorized = "UNAUTHORIZED"

	// Authorization errors
	ErrCodeForbidden = "FORBIDDEN"

	// Validation errors
	ErrCodeInvalidInput = "INVALID_INPUT"

	// Resource errors
	ErrCodeNotFound = "NOT_FOUND"
	ErrCodeConflict = "CONFLICT"

	// Throttling
	ErrCodeTooManyRequests = "TOO_MANY_REQUESTS"

	// Upstream and service errors
	ErrCodeUpstreamRejected   = "UPSTREAM_REJECTED"
	ErrCodeBadGateway         = "BAD_GATEWAY"
	ErrCodeInternalError      = "INTERNAL_ERROR"
	ErrCodeServiceUnavailable = "SERVICE_UNAVAILABLE"
)

// Error kinds. Service errors wrap one of these with %w so the HTTP layer can
// pick a status without knowing every individual error.
var (
	ErrValidation          = errors.New("validation failed")
	ErrUnauthenticated     = errors.New("unauthenticated")
	ErrPermissionDenied    = errors.New("permission denied")
	ErrNotFound            = errors.New("not found")
	ErrConflict            = errors.New("conflict")
	ErrRateLimited         = errors.New("rate limited")
	ErrUpstream            = errors.New("upstream rejected the request")
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
)

type kindError struct {
	kind    error
	message string
}

func (e *kindError) Error() string { return e.message }
func (e *kindError) Unwrap() error { return e.kind }

// NewKind returns an error of the given kind. Its message is safe to show to
// clients.
func NewKind(kind error, message string) error {
	return &kindError{kind: kind, message: message}
}

// APIError represents a standardized API error response
type APIError struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	return e.Message
}

// NewAPIError creates a new APIError
func NewAPIError(code, message string) *APIError {
	return &APIError{
		Code:    code,
		Message: message,
	}
}

// NewAPIErrorWithDetails creates a new APIError with details
func NewAPIErrorWithDetails(code, message string, details interface{}) *APIError {
	return &APIError{
		Code:    code,
		Message: message,
		Details: details,
	}
}

// RespondWithError sends an error response
func RespondWithError(c *gin.Context, statusCode int, err *APIError) {
	c.JSON(statusCode, err)
}

// ErrorLogger is the subset of the application logger used here.
type ErrorLogger interface {
	Errorw(msg string, keysAndValues ...interface{})
}

// Respond writes the response matching err's kind. Errors without a kind are
// logged and reported as a generic 500.
func Respond(c *gin.Context, log ErrorLogger, err error) {
	switch {
	case errors.Is(err, ErrValidation):
		BadRequest(c, err.Error())
	case errors.Is(err, ErrUnauthenticated):
		Unauthorized(c, err.Error())
	case errors.Is(err, ErrPermissionDenied):
		Forbidden(c, err.Error())
	case errors.Is(err, ErrNotFound):
		NotFound(c, err.Error())
	case errors.Is(err, ErrConflict):
		Conflict(c, err.Error())
	case errors.Is(err, ErrRateLimited):
		TooManyRequests(c, err.Error())
	case errors.Is(err, ErrUpstream):
		RespondWithError(c, http.StatusForbidden, NewAPIError(ErrCodeUpstreamRejected, err.Error()))
	case errors.Is(err, ErrUpstreamUnavailable):
		BadGateway(c, "")
	default:
		if log != nil {
			log.Errorw("request failed", "method", c.Request.Method, "path", c.FullPath(), "error", err)
		}
		InternalError(c, "")
	}
}

// Helper functions for common error responses

// Unauthorized sends a 401 response
func Unauthorized(c *gin.Context, message string) {
	if message == "" {
		message = "Authentication required"
	}
	RespondWithError(c, http.StatusUnauthorized, NewAPIError(ErrCodeUnauthorized, message))
}

// Forbidden sends a 403 response
func Forbidden(c *gin.Context, message string) {
	if message == "" {
		message = "Access denied"
	}
	RespondWithError(c, http.StatusForbidden, NewAPIError(ErrCodeForbidden, message))
}

// NotFound sends a 404 response
func NotFound(c *gin.Context, message string) {
	if message == "" {
		message = "Resource not found"
	}
	RespondWithError(c, http.StatusNotFound, NewAPIError(ErrCodeNotFound, message))
}

// BadRequest sends a 400 response
func BadRequest(c *gin.Context, message string) {
	if message == "" {
		message = "Invalid request"
	}
	RespondWithError(c, http.StatusBadRequest, NewAPIError(ErrCodeInvalidInput, message))
}

// BadRequestWithDetails sends a 400 response with details
func BadRequestWithDetails(c *gin.Context, message string, details interface{}) {
	RespondWithError(c, http.StatusBadRequest, NewAPIErrorWithDetails(ErrCodeInvalidInput, message, details))
}

// Conflict sends a 409 response
func Conflict(c *gin.Context, message string) {
	if message == "" {
		message = "Resource conflict"
	}
	RespondWithError(c, http.StatusConflict, NewAPIError(ErrCodeConflict, message))
}

// TooManyRequests sends a 429 response
func TooManyRequests(c *gin.Context, message string) {
	if message == "" {
		message = "Too many requests"
	}
	RespondWithError(c, http.StatusTooManyRequests, NewAPIError(ErrCodeTooManyRequests, message))
}

// BadGateway sends a 502 response
func BadGateway(c *gin.Context, message string) {
	if message == "" {
		message = "Upstream service unavailable"
	}
	RespondWithError(c, http.StatusBadGateway, NewAPIError(ErrCodeBadGateway, message))
}

// InternalError sends a 500 response
func InternalError(c *gin.Context, message string) {
	if message == "" {
		message = "Internal server error"
	}
	RespondWithError(c, http.StatusInternalServerError, NewAPIError(ErrCodeInternalError, message))
}

// ServiceUnavailable sends a 503 response
func ServiceUnavailable(c *gin.Context, message string) {
	if message == "" {
		message = "Service temporarily unavailable"
	}
	RespondWithError(c, http.StatusServiceUnavailable, NewAPIError(ErrCodeServiceUnavailable, message))
}
