package dto

import (
	"net/http"
	"strings"
)

// Error codes raised by the HTTP layer itself. Domain codes such as
// PRODUCT_NOT_FOUND are passed through unchanged.
const (
	// ErrCodeInternal is used for internal server errors
	ErrCodeInternal = "INTERNAL_ERROR"
	// ErrCodeValidation is used when request binding or validation fails
	ErrCodeValidation = "VALIDATION_ERROR"
	// ErrCodeBadRequest is used for malformed requests
	ErrCodeBadRequest = "BAD_REQUEST"
	// ErrCodeInvalidID is used when a path parameter is not a UUID
	ErrCodeInvalidID = "INVALID_ID"
	// ErrCodeUnauthorized is used when authentication is required but missing/invalid
	ErrCodeUnauthorized = "UNAUTHORIZED"
	// ErrCodeTokenExpired is used when the auth token has expired
	ErrCodeTokenExpired = "TOKEN_EXPIRED"
	// ErrCodeForbidden is used when the caller lacks the staff claim
	ErrCodeForbidden = "FORBIDDEN"
	// ErrCodeNotFound is used when a resource is not found
	ErrCodeNotFound = "NOT_FOUND"
	// ErrCodeRequestTooLarge is used when the body exceeds the configured limit
	ErrCodeRequestTooLarge = "REQUEST_TOO_LARGE"
	// ErrCodeRateLimited is used when rate limit is exceeded
	ErrCodeRateLimited = "RATE_LIMITED"
	// ErrCodeTimeout is used when a request exceeds its deadline
	ErrCodeTimeout = "REQUEST_TIMEOUT"
)

// ErrorCodeHTTPStatus maps exact error codes to HTTP status codes.
// Codes not listed here are resolved by suffix and prefix in GetHTTPStatus.
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeInternal:        http.StatusInternalServerError,
	ErrCodeValidation:      http.StatusBadRequest,
	ErrCodeBadRequest:      http.StatusBadRequest,
	ErrCodeInvalidID:       http.StatusBadRequest,
	ErrCodeUnauthorized:    http.StatusUnauthorized,
	ErrCodeTokenExpired:    http.StatusUnauthorized,
	ErrCodeForbidden:       http.StatusForbidden,
	ErrCodeNotFound:        http.StatusNotFound,
	ErrCodeRequestTooLarge: http.StatusRequestEntityTooLarge,
	ErrCodeRateLimited:     http.StatusTooManyRequests,
	ErrCodeTimeout:         http.StatusGatewayTimeout,

	// Conflicts -> 409
	"ALREADY_EXISTS":           http.StatusConflict,
	"DUPLICATE_ORDER_NUMBER":   http.StatusConflict,
	"INTEGRITY_ERROR":          http.StatusConflict,
	"CONCURRENT_MODIFICATION":  http.StatusConflict,
	"CONFIRMATION_IN_PROGRESS": http.StatusConflict,
	"ALREADY_CONFIRMED":        http.StatusConflict,
	"LOCK_HELD":                http.StatusConflict,
	"PRODUCT_IN_USE":           http.StatusConflict,
	"BRAND_HAS_PRODUCTS":       http.StatusConflict,
	"CATEGORY_HAS_PRODUCTS":    http.StatusConflict,

	// State machine -> 422
	"INVALID_STATUS_TRANSITION": http.StatusUnprocessableEntity,
	"INVALID_STATE":             http.StatusUnprocessableEntity,
	"CATEGORY_CYCLE":            http.StatusUnprocessableEntity,

	// Capacity -> 503
	"TASK_QUEUE_FULL":     http.StatusServiceUnavailable,
	"TASK_QUEUE_STOPPED":  http.StatusServiceUnavailable,
	"STORAGE_UNAVAILABLE": http.StatusServiceUnavailable,
}

// GetHTTPStatus returns the HTTP status code for an error code.
// Returns 500 Internal Server Error if the code matches no rule.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	switch {
	case strings.HasSuffix(code, "_NOT_FOUND"):
		return http.StatusNotFound
	case strings.HasSuffix(code, "_EXISTS"):
		return http.StatusConflict
	case strings.HasPrefix(code, "ACCOUNTING_"):
		return http.StatusBadGateway
	case IsValidationCode(code):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// IsValidationCode reports whether a code describes invalid client input
func IsValidationCode(code string) bool {
	return strings.HasPrefix(code, "INVALID_") ||
		strings.HasSuffix(code, "_REQUIRED") ||
		strings.HasSuffix(code, "_SELF_REFERENCE")
}
