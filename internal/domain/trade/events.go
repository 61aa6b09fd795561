package trade

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sisl/eshop/internal/domain/shared"
)

// AggregateTypeQuotation is the aggregate type for quotations
const AggregateTypeQuotation = "Quotation"

// Event type constants
const (
	EventTypeQuotationSubmitted     = "QuotationSubmitted"
	EventTypeQuotationConfirmed     = "QuotationConfirmed"
	EventTypeQuotationStatusChanged = "QuotationStatusChanged"
)

// QuotationSubmittedEvent is published after a quotation and its lines are stored
type QuotationSubmittedEvent struct {
	shared.BaseDomainEvent
	QuotationID uuid.UUID       `json:"quotation_id"`
	OrderNumber string          `json:"order_number"`
	PhoneNo     string          `json:"phone_no"`
	LineCount   int             `json:"line_count"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

// NewQuotationSubmittedEvent creates a new QuotationSubmittedEvent
func NewQuotationSubmittedEvent(q *Quotation) *QuotationSubmittedEvent {
	return &QuotationSubmittedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeQuotationSubmitted, AggregateTypeQuotation, q.ID),
		QuotationID:     q.ID,
		OrderNumber:     q.OrderNumber,
		PhoneNo:         q.PhoneNo,
		LineCount:       len(q.Lines),
		TotalAmount:     q.TotalAmount,
	}
}

// QuotationConfirmedEvent is published after the accounting sync succeeded
type QuotationConfirmedEvent struct {
	shared.BaseDomainEvent
	QuotationID   uuid.UUID `json:"quotation_id"`
	OrderNumber   string    `json:"order_number"`
	CustomerKey   string    `json:"customer_key"`
	SalesOrderKey string    `json:"sales_order_key"`
}

// NewQuotationConfirmedEvent creates a new QuotationConfirmedEvent
func NewQuotationConfirmedEvent(q *Quotation) *QuotationConfirmedEvent {
	return &QuotationConfirmedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeQuotationConfirmed, AggregateTypeQuotation, q.ID),
		QuotationID:     q.ID,
		OrderNumber:     q.OrderNumber,
		CustomerKey:     q.AccountingCustomerKey,
		SalesOrderKey:   q.AccountingSalesOrderKey,
	}
}

// QuotationStatusChangedEvent is published on non-confirming status changes
type QuotationStatusChangedEvent struct {
	shared.BaseDomainEvent
	QuotationID uuid.UUID       `json:"quotation_id"`
	OrderNumber string          `json:"order_number"`
	From        QuotationStatus `json:"from"`
	To          QuotationStatus `json:"to"`
}

// NewQuotationStatusChangedEvent creates a new QuotationStatusChangedEvent
func NewQuotationStatusChangedEvent(q *Quotation, from QuotationStatus) *QuotationStatusChangedEvent {
	return &QuotationStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeQuotationStatusChanged, AggregateTypeQuotation, q.ID),
		QuotationID:     q.ID,
		OrderNumber:     q.OrderNumber,
		From:            from,
		To:              q.Status,
	}
}
