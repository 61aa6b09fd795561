package trade

import (
	"slices"
	"strings"

	"github.com/sisl/eshop/internal/domain/shared"
)

// QuotationStatus represents the lifecycle state of a quotation
type QuotationStatus string

const (
	QuotationStatusPending   QuotationStatus = "PENDING"
	QuotationStatusConfirmed QuotationStatus = "CONFIRMED"
	QuotationStatusCanceled  QuotationStatus = "CANCELED"
	QuotationStatusDelivered QuotationStatus = "DELIVERED"
)

// allowedTransitions is the complete status transition table.
// CANCELED and DELIVERED are terminal.
var allowedTransitions = map[QuotationStatus][]QuotationStatus{
	QuotationStatusPending:   {QuotationStatusConfirmed, QuotationStatusCanceled},
	QuotationStatusConfirmed: {QuotationStatusDelivered, QuotationStatusCanceled},
	QuotationStatusCanceled:  nil,
	QuotationStatusDelivered: nil,
}

// IsValid checks if the status is a known QuotationStatus
func (s QuotationStatus) IsValid() bool {
	_, ok := allowedTransitions[s]
	return ok
}

// String returns the string representation of QuotationStatus
func (s QuotationStatus) String() string {
	return string(s)
}

// CanTransitionTo checks if the status can transition to the target status
func (s QuotationStatus) CanTransitionTo(target QuotationStatus) bool {
	return slices.Contains(allowedTransitions[s], target)
}

// IsTerminal returns true for states with no outgoing transitions
func (s QuotationStatus) IsTerminal() bool {
	return s.IsValid() && len(allowedTransitions[s]) == 0
}

// ParseQuotationStatus parses a status name case-insensitively
func ParseQuotationStatus(value string) (QuotationStatus, error) {
	status := QuotationStatus(strings.ToUpper(strings.TrimSpace(value)))
	if !status.IsValid() {
		return "", shared.NewDomainError("INVALID_STATUS", "Unknown quotation status: "+value)
	}
	return status, nil
}

// ErrInvalidStatusTransition builds the rejection for a transition outside the table
func ErrInvalidStatusTransition(from, to QuotationStatus) *shared.DomainError {
	return shared.NewDomainError("INVALID_STATUS_TRANSITION",
		"Cannot change quotation status from "+string(from)+" to "+string(to))
}
