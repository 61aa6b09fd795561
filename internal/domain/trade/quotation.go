package trade

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sisl/eshop/internal/domain/shared"
)

const notAvailable = "N/A"

// MaxPhoneLength bounds the stored phone number, separators included
const MaxPhoneLength = 20

// QuotationHeader holds the customer-facing header fields of a quotation
type QuotationHeader struct {
	CustomerName    string
	PhoneNo         string
	Email           string
	DeliveryAddress string
	Subject         string
	Notes           string
}

// Quotation is a customer's multi-line discount request. It becomes a sales order
// in the accounting system once staff confirm it.
type Quotation struct {
	shared.BaseAggregateRoot
	CustomerID      *uuid.UUID // nil for anonymous submissions
	OrderNumber     string
	Subject         string
	Notes           string
	Status          QuotationStatus
	TotalAmount     decimal.Decimal
	PhoneNo         string
	CustomerName    string
	Email           string
	DeliveryAddress string

	DocumentPath string
	DocumentURL  string

	AccountingCustomerKey   string
	AccountingSalesOrderKey string
	ConfirmedAt             *time.Time

	Lines []QuotationLine
}

// NewQuotation creates a pending quotation stamped with now. The order number is
// derived from now and never regenerated.
func NewQuotation(customerID *uuid.UUID, header QuotationHeader, now time.Time) (*Quotation, error) {
	header = normalizeHeader(header)
	if err := validateHeader(header); err != nil {
		return nil, err
	}

	q := &Quotation{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		CustomerID:        customerID,
		Status:            QuotationStatusPending,
		TotalAmount:       decimal.Zero,
		Lines:             make([]QuotationLine, 0),
	}
	q.CreatedAt = now
	q.UpdatedAt = now
	q.OrderNumber = GenerateOrderNumber(now)
	q.applyHeader(header)

	if q.Subject == "" {
		q.Subject = DefaultSubject(q.OrderNumber, now)
	}
	if q.CustomerName == "" {
		q.CustomerName = DefaultCustomerName(q.PhoneNo)
	}
	return q, nil
}

// UpdateHeader replaces the editable header fields
func (q *Quotation) UpdateHeader(header QuotationHeader) error {
	header = normalizeHeader(header)
	if err := validateHeader(header); err != nil {
		return err
	}
	q.applyHeader(header)
	q.UpdatedAt = time.Now()
	q.IncrementVersion()
	return nil
}

// Header returns the editable header fields
func (q *Quotation) Header() QuotationHeader {
	return QuotationHeader{
		CustomerName:    q.CustomerName,
		PhoneNo:         q.PhoneNo,
		Email:           q.Email,
		DeliveryAddress: q.DeliveryAddress,
		Subject:         q.Subject,
		Notes:           q.Notes,
	}
}

// AddLine creates a line for product and appends it
func (q *Quotation) AddLine(product LineProduct, input LineInput) (*QuotationLine, error) {
	line, err := NewQuotationLine(q.ID, product, input)
	if err != nil {
		return nil, err
	}
	line.LineNo = q.nextLineNo()
	q.Lines = append(q.Lines, *line)
	return &q.Lines[len(q.Lines)-1], nil
}

func (q *Quotation) nextLineNo() int {
	next := 1
	for i := range q.Lines {
		if q.Lines[i].LineNo >= next {
			next = q.Lines[i].LineNo + 1
		}
	}
	return next
}

// GetLine returns the line with the given id, or nil
func (q *Quotation) GetLine(lineID uuid.UUID) *QuotationLine {
	for i := range q.Lines {
		if q.Lines[i].ID == lineID {
			return &q.Lines[i]
		}
	}
	return nil
}

// RemoveLine drops a line from the in-memory aggregate
func (q *Quotation) RemoveLine(lineID uuid.UUID) error {
	for i := range q.Lines {
		if q.Lines[i].ID == lineID {
			q.Lines = append(q.Lines[:i], q.Lines[i+1:]...)
			return nil
		}
	}
	return shared.NewDomainError("LINE_NOT_FOUND", "Quotation line not found")
}

// ComputeTotal sums the exact line totals into TotalAmount and returns it. The sum
// is rounded once, half to even, to fit the two-decimal column.
// Totals are not maintained automatically when lines change.
func (q *Quotation) ComputeTotal() decimal.Decimal {
	total := decimal.Zero
	for i := range q.Lines {
		total = total.Add(q.Lines[i].LineTotal())
	}
	q.TotalAmount = total.RoundBank(2)
	return q.TotalAmount
}

// HasDiscount returns true if any line carries a nonzero discount
func (q *Quotation) HasDiscount() bool {
	for i := range q.Lines {
		if q.Lines[i].HasDiscount() {
			return true
		}
	}
	return false
}

// TransitionTo moves the quotation to target if the transition table allows it
func (q *Quotation) TransitionTo(target QuotationStatus) error {
	if !target.IsValid() {
		return shared.NewDomainError("INVALID_STATUS", "Unknown quotation status: "+string(target))
	}
	if !q.Status.CanTransitionTo(target) {
		return ErrInvalidStatusTransition(q.Status, target)
	}

	from := q.Status
	q.Status = target
	q.UpdatedAt = time.Now()
	q.IncrementVersion()
	q.AddDomainEvent(NewQuotationStatusChangedEvent(q, from))
	return nil
}

// CheckConfirmable reports why the quotation cannot be confirmed, if it cannot
func (q *Quotation) CheckConfirmable() error {
	if q.Status == QuotationStatusConfirmed {
		return shared.NewDomainError("ALREADY_CONFIRMED", "Quotation "+q.OrderNumber+" is already confirmed")
	}
	if !q.Status.CanTransitionTo(QuotationStatusConfirmed) {
		return ErrInvalidStatusTransition(q.Status, QuotationStatusConfirmed)
	}
	if len(q.Lines) == 0 {
		return shared.NewDomainError("LINES_REQUIRED", "Quotation has no lines to confirm")
	}
	return nil
}

// RecordCustomerKey stores the accounting customer key as soon as it is known
func (q *Quotation) RecordCustomerKey(key string) {
	q.AccountingCustomerKey = key
	q.UpdatedAt = time.Now()
}

// MarkConfirmed records a successful accounting sync
func (q *Quotation) MarkConfirmed(customerKey, salesOrderKey string, at time.Time) {
	q.Status = QuotationStatusConfirmed
	q.AccountingCustomerKey = customerKey
	q.AccountingSalesOrderKey = salesOrderKey
	q.ConfirmedAt = &at
	q.UpdatedAt = at
	q.AddDomainEvent(NewQuotationConfirmedEvent(q))
}

// RecordDocument stores the rendered document reference
func (q *Quotation) RecordDocument(path, url string) {
	q.DocumentPath = path
	q.DocumentURL = url
	q.UpdatedAt = time.Now()
}

// MarkSubmitted raises the submission event once the quotation and its lines are stored
func (q *Quotation) MarkSubmitted() {
	q.AddDomainEvent(NewQuotationSubmittedEvent(q))
}

// HasDocument returns true once the PDF has been rendered and stored
func (q *Quotation) HasDocument() bool {
	return q.DocumentPath != ""
}

// DisplayName returns the customer name, falling back to the phone-derived name
func (q *Quotation) DisplayName() string {
	if q.CustomerName != "" {
		return q.CustomerName
	}
	return DefaultCustomerName(q.PhoneNo)
}

// DisplayEmail returns the email or an empty string
func (q *Quotation) DisplayEmail() string {
	return q.Email
}

// DisplayPhone returns the phone or "N/A"
func (q *Quotation) DisplayPhone() string {
	if q.PhoneNo != "" {
		return q.PhoneNo
	}
	return notAvailable
}

// DisplayDeliveryAddress returns the delivery address or "N/A"
func (q *Quotation) DisplayDeliveryAddress() string {
	if q.DeliveryAddress != "" {
		return q.DeliveryAddress
	}
	return notAvailable
}

// FirstProductName returns the product name of the first line, or an empty string
func (q *Quotation) FirstProductName() string {
	if len(q.Lines) == 0 {
		return ""
	}
	return q.Lines[0].ProductName
}

func (q *Quotation) applyHeader(h QuotationHeader) {
	q.CustomerName = h.CustomerName
	q.PhoneNo = h.PhoneNo
	q.Email = h.Email
	q.DeliveryAddress = h.DeliveryAddress
	q.Subject = h.Subject
	q.Notes = h.Notes
}

func normalizeHeader(h QuotationHeader) QuotationHeader {
	h.CustomerName = strings.TrimSpace(h.CustomerName)
	h.PhoneNo = strings.TrimSpace(h.PhoneNo)
	h.Email = strings.TrimSpace(h.Email)
	h.DeliveryAddress = strings.TrimSpace(h.DeliveryAddress)
	h.Subject = strings.TrimSpace(h.Subject)
	return h
}

func validateHeader(h QuotationHeader) error {
	if h.PhoneNo == "" {
		return shared.NewDomainError("PHONE_REQUIRED", "Phone number is required")
	}
	if len(h.PhoneNo) > MaxPhoneLength {
		return shared.NewDomainError("INVALID_PHONE", fmt.Sprintf("Phone number cannot exceed %d characters", MaxPhoneLength))
	}
	if len(h.CustomerName) > 255 {
		return shared.NewDomainError("INVALID_NAME", "Customer name cannot exceed 255 characters")
	}
	if len(h.Subject) > 255 {
		return shared.NewDomainError("INVALID_SUBJECT", "Subject cannot exceed 255 characters")
	}
	return nil
}
