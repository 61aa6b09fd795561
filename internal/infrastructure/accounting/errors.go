package accounting

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/sisl/eshop/internal/domain/shared"
)

// Error codes surfaced by the client. The HTTP layer maps ACCOUNTING_* to 502.
const (
	CodeRequestFailed      = "ACCOUNTING_REQUEST_FAILED"
	CodeUnexpectedResponse = "ACCOUNTING_UNEXPECTED_RESPONSE"
	CodeItemNotFound       = "ACCOUNTING_ITEM_NOT_FOUND"
)

// Sentinel errors for errors.Is matching
var (
	ErrRequestFailed      = shared.NewDomainError(CodeRequestFailed, "Accounting request failed")
	ErrUnexpectedResponse = shared.NewDomainError(CodeUnexpectedResponse, "Unexpected accounting response")
	ErrItemNotFound       = shared.NewDomainError(CodeItemNotFound, "Inventory item not found in accounting")
)

// StatusError is the cause attached when the accounting API answers with a
// status it does not accept
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Body)
}

// transportError marks failures that never produced an HTTP response
type transportError struct {
	err error
}

func (e *transportError) Error() string { return e.err.Error() }
func (e *transportError) Unwrap() error { return e.err }

// IsRetryable reports whether err is worth retrying: network failures, timeouts,
// rate limiting and 5xx answers. Rejections and unknown SKUs are not.
func IsRetryable(err error) bool {
	var te *transportError
	if errors.As(err, &te) {
		return true
	}
	var se *StatusError
	if errors.As(err, &se) {
		return se.StatusCode >= http.StatusInternalServerError || se.StatusCode == http.StatusTooManyRequests
	}
	return false
}
