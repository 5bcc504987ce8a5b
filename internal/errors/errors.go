package errors

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Error kinds. They are stable and safe to expose to clients.
const (
	ErrCodeUnauthenticated   = "UNAUTHENTICATED"
	ErrCodeUnauthorized      = "UNAUTHORIZED"
	ErrCodeNotFound          = "NOT_FOUND"
	ErrCodeExpired           = "EXPIRED"
	ErrCodeInvalidState      = "INVALID_STATE"
	ErrCodeConflict          = "CONFLICT"
	ErrCodeValidationFailed  = "VALIDATION_FAILED"
	ErrCodeDependencyFailure = "DEPENDENCY_FAILURE"
	ErrCodeRateLimited       = "RATE_LIMITED"
)

var statusByCode = map[string]int{
	ErrCodeUnauthenticated:   http.StatusUnauthorized,
	ErrCodeUnauthorized:      http.StatusForbidden,
	ErrCodeNotFound:          http.StatusNotFound,
	ErrCodeExpired:           http.StatusGone,
	ErrCodeInvalidState:      http.StatusGone,
	ErrCodeConflict:          http.StatusConflict,
	ErrCodeValidationFailed:  http.StatusBadRequest,
	ErrCodeDependencyFailure: http.StatusInternalServerError,
	ErrCodeRateLimited:       http.StatusTooManyRequests,
}

// StatusFor returns the HTTP status of an error kind.
func StatusFor(code string) int {
	if status, ok := statusByCode[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// APIError is the failure form of the response envelope.
type APIError struct {
	Failed  bool        `json:"error"`
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
		Failed:  true,
		Code:    code,
		Message: message,
	}
}

// NewAPIErrorWithDetails creates a new APIError with details
func NewAPIErrorWithDetails(code, message string, details interface{}) *APIError {
	err := NewAPIError(code, message)
	err.Details = details
	return err
}

// Response is the success form of the response envelope.
type Response struct {
	Failed  bool        `json:"error"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// Respond sends a success envelope.
func Respond(c *gin.Context, statusCode int, message string, data interface{}) {
	c.JSON(statusCode, Response{Message: message, Data: data})
}

// RespondWithError sends an error envelope with the status of its kind.
func RespondWithError(c *gin.Context, err *APIError) {
	c.JSON(StatusFor(err.Code), err)
}

// Abort sends an error envelope and stops the handler chain.
func Abort(c *gin.Context, code, message string) {
	c.AbortWithStatusJSON(StatusFor(code), NewAPIError(code, message))
}

// Helper functions for common error responses

// Unauthenticated sends a 401 response
func Unauthenticated(c *gin.Context, message string) {
	if message == "" {
		message = "Authentication required"
	}
	RespondWithError(c, NewAPIError(ErrCodeUnauthenticated, message))
}

// Unauthorized sends a 403 response
func Unauthorized(c *gin.Context, message string) {
	if message == "" {
		message = "Access denied"
	}
	RespondWithError(c, NewAPIError(ErrCodeUnauthorized, message))
}

// NotFound sends a 404 response
func NotFound(c *gin.Context, message string) {
	if message == "" {
		message = "Resource not found"
	}
	RespondWithError(c, NewAPIError(ErrCodeNotFound, message))
}

// Expired sends a 410 response for time-expired tokens
func Expired(c *gin.Context, message string) {
	RespondWithError(c, NewAPIError(ErrCodeExpired, message))
}

// InvalidState sends a 410 response for records no longer eligible for the transition
func InvalidState(c *gin.Context, message string) {
	RespondWithError(c, NewAPIError(ErrCodeInvalidState, message))
}

// BadRequest sends a 400 response
func BadRequest(c *gin.Context, message string) {
	if message == "" {
		message = "Invalid request"
	}
	RespondWithError(c, NewAPIError(ErrCodeValidationFailed, message))
}

// BadRequestWithDetails sends a 400 response with details
func BadRequestWithDetails(c *gin.Context, message string, details interface{}) {
	RespondWithError(c, NewAPIErrorWithDetails(ErrCodeValidationFailed, message, details))
}

// Conflict sends a 409 response
func Conflict(c *gin.Context, message string) {
	if message == "" {
		message = "Resource conflict"
	}
	RespondWithError(c, NewAPIError(ErrCodeConflict, message))
}

// DependencyFailure sends a 500 response without leaking the cause
func DependencyFailure(c *gin.Context, message string) {
	if message == "" {
		message = "Internal server error"
	}
	RespondWithError(c, NewAPIError(ErrCodeDependencyFailure, message))
}
