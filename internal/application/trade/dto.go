package trade

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sisl/eshop/internal/domain/trade"
)

// Document status values reported with a quotation
const (
	DocumentStatusPending = "PENDING"
	DocumentStatusReady   = "READY"
)

// Bulk confirmation outcomes
const (
	BulkResultConfirmed = "CONFIRMED"
	BulkResultSkipped   = "SKIPPED"
	BulkResultFailed    = "FAILED"
)

// ==================== Requests ====================

// QuotationLineRequest is one requested line. A missing or zero unit price falls
// back to the product's original price, a missing discount to 25 percent.
type QuotationLineRequest struct {
	ProductID       uuid.UUID        `json:"product_id" binding:"required"`
	Description     string           `json:"description" binding:"max=2000"`
	Quantity        int              `json:"quantity"`
	UnitPrice       *decimal.Decimal `json:"unit_price"`
	DiscountPercent *decimal.Decimal `json:"discount_percent"`
}

// SubmitQuotationRequest is a customer's discount request
type SubmitQuotationRequest struct {
	CustomerName    string                 `json:"customer_name" binding:"max=255"`
	PhoneNo         string                 `json:"phone_no" binding:"omitempty,phone"`
	Email           string                 `json:"email" binding:"omitempty,email,max=254"`
	DeliveryAddress string                 `json:"delivery_address" binding:"max=2000"`
	Subject         string                 `json:"subject" binding:"max=255"`
	Notes           string                 `json:"notes" binding:"max=5000"`
	Lines           []QuotationLineRequest `json:"lines" binding:"dive"`
}

// UpdateQuotationHeaderRequest edits the customer-facing header. Nil fields are kept.
type UpdateQuotationHeaderRequest struct {
	CustomerName    *string `json:"customer_name" binding:"omitempty,max=255"`
	PhoneNo         *string `json:"phone_no" binding:"omitempty,phone"`
	Email           *string `json:"email" binding:"omitempty,email,max=254"`
	DeliveryAddress *string `json:"delivery_address" binding:"omitempty,max=2000"`
	Subject         *string `json:"subject" binding:"omitempty,max=255"`
	Notes           *string `json:"notes" binding:"omitempty,max=5000"`
}

// UpdateQuotationLineRequest edits a line. Nil fields are kept.
type UpdateQuotationLineRequest struct {
	ProductID       *uuid.UUID       `json:"product_id"`
	Description     *string          `json:"description" binding:"omitempty,max=2000"`
	Quantity        *int             `json:"quantity"`
	UnitPrice       *decimal.Decimal `json:"unit_price"`
	DiscountPercent *decimal.Decimal `json:"discount_percent"`
}

// ChangeStatusRequest moves a quotation to another status
type ChangeStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=PENDING CONFIRMED CANCELED DELIVERED"`
}

// BulkConfirmRequest lists the quotations to confirm
type BulkConfirmRequest struct {
	IDs []uuid.UUID `json:"ids" binding:"required,min=1,max=200"`
}

// QuotationListFilter represents filter options for the order management list
type QuotationListFilter struct {
	Status   string `form:"status" binding:"omitempty,oneof=PENDING CONFIRMED CANCELED DELIVERED"`
	Search   string `form:"search"`
	Page     int    `form:"page" binding:"min=0"`
	PageSize int    `form:"page_size" binding:"min=0,max=100"`
}

// ==================== Responses ====================

// QuotationLineResponse represents a quotation line in API responses
type QuotationLineResponse struct {
	ID              uuid.UUID       `json:"id"`
	LineNo          int             `json:"line_no"`
	ProductID       uuid.UUID       `json:"product_id"`
	ProductName     string          `json:"product_name"`
	ProductSKU      string          `json:"product_sku"`
	Description     string          `json:"description"`
	Quantity        int             `json:"quantity"`
	UnitPrice       decimal.Decimal `json:"unit_price"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
	LineTotal       decimal.Decimal `json:"line_total"`
}

// QuotationResponse represents a quotation with its lines in API responses
type QuotationResponse struct {
	ID                      uuid.UUID               `json:"id"`
	CustomerID              *uuid.UUID              `json:"customer_id,omitempty"`
	OrderNumber             string                  `json:"order_number"`
	Subject                 string                  `json:"subject"`
	Notes                   string                  `json:"notes"`
	Status                  string                  `json:"status"`
	TotalAmount             decimal.Decimal         `json:"total_amount"`
	CustomerName            string                  `json:"customer_name"`
	DisplayName             string                  `json:"display_name"`
	PhoneNo                 string                  `json:"phone_no"`
	Email                   string                  `json:"email"`
	DeliveryAddress         string                  `json:"delivery_address"`
	DocumentStatus          string                  `json:"document_status"`
	DocumentURL             string                  `json:"document_url,omitempty"`
	AccountingCustomerKey   string                  `json:"accounting_customer_key,omitempty"`
	AccountingSalesOrderKey string                  `json:"accounting_sales_order_key,omitempty"`
	ConfirmedAt             *time.Time              `json:"confirmed_at,omitempty"`
	Lines                   []QuotationLineResponse `json:"lines"`
	CreatedAt               time.Time               `json:"created_at"`
	UpdatedAt               time.Time               `json:"updated_at"`
	Version                 int                     `json:"version"`
}

// QuotationListItemResponse is a row of the order management list
type QuotationListItemResponse struct {
	ID           uuid.UUID       `json:"id"`
	OrderNumber  string          `json:"order_number"`
	Subject      string          `json:"subject"`
	Status       string          `json:"status"`
	CustomerName string          `json:"customer_name"`
	PhoneNo      string          `json:"phone_no"`
	TotalAmount  decimal.Decimal `json:"total_amount"`
	HasDocument  bool            `json:"has_document"`
	CreatedAt    time.Time       `json:"created_at"`
}

// BulkConfirmResult reports the outcome for one quotation of a bulk confirmation
type BulkConfirmResult struct {
	ID            uuid.UUID `json:"id"`
	OrderNumber   string    `json:"order_number,omitempty"`
	Result        string    `json:"result"`
	SalesOrderKey string    `json:"sales_order_key,omitempty"`
	Error         string    `json:"error,omitempty"`
}

// ConfirmAsyncResponse acknowledges a queued accounting sync
type ConfirmAsyncResponse struct {
	TaskID      uuid.UUID `json:"task_id"`
	QuotationID uuid.UUID `json:"quotation_id"`
	Status      string    `json:"status"`
}

// ToQuotationLineResponse converts a domain QuotationLine
func ToQuotationLineResponse(l *trade.QuotationLine) QuotationLineResponse {
	return QuotationLineResponse{
		ID:              l.ID,
		LineNo:          l.LineNo,
		ProductID:       l.ProductID,
		ProductName:     l.ProductName,
		ProductSKU:      l.ProductSKU,
		Description:     l.Description,
		Quantity:        l.Quantity,
		UnitPrice:       l.UnitPrice,
		DiscountPercent: l.DiscountPercent,
		LineTotal:       l.LineTotal(),
	}
}

// ToQuotationResponse converts a domain Quotation to QuotationResponse
func ToQuotationResponse(q *trade.Quotation) QuotationResponse {
	lines := make([]QuotationLineResponse, len(q.Lines))
	for i := range q.Lines {
		lines[i] = ToQuotationLineResponse(&q.Lines[i])
	}
	return QuotationResponse{
		ID:                      q.ID,
		CustomerID:              q.CustomerID,
		OrderNumber:             q.OrderNumber,
		Subject:                 q.Subject,
		Notes:                   q.Notes,
		Status:                  string(q.Status),
		TotalAmount:             q.TotalAmount,
		CustomerName:            q.CustomerName,
		DisplayName:             q.DisplayName(),
		PhoneNo:                 q.PhoneNo,
		Email:                   q.DisplayEmail(),
		DeliveryAddress:         q.DeliveryAddress,
		DocumentStatus:          documentStatus(q),
		DocumentURL:             q.DocumentURL,
		AccountingCustomerKey:   q.AccountingCustomerKey,
		AccountingSalesOrderKey: q.AccountingSalesOrderKey,
		ConfirmedAt:             q.ConfirmedAt,
		Lines:                   lines,
		CreatedAt:               q.CreatedAt,
		UpdatedAt:               q.UpdatedAt,
		Version:                 q.Version,
	}
}

// ToQuotationListItemResponse converts a domain Quotation to a list row
func ToQuotationListItemResponse(q *trade.Quotation) QuotationListItemResponse {
	return QuotationListItemResponse{
		ID:           q.ID,
		OrderNumber:  q.OrderNumber,
		Subject:      q.Subject,
		Status:       string(q.Status),
		CustomerName: q.DisplayName(),
		PhoneNo:      q.DisplayPhone(),
		TotalAmount:  q.TotalAmount,
		HasDocument:  q.HasDocument(),
		CreatedAt:    q.CreatedAt,
	}
}

func documentStatus(q *trade.Quotation) string {
	if q.HasDocument() {
		return DocumentStatusReady
	}
	return DocumentStatusPending
}
