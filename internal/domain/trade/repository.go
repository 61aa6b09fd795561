package trade

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sisl/eshop/internal/domain/shared"
)

// QuotationRepository defines persistence for quotations and their lines
type QuotationRepository interface {
	// FindByID loads the header and all lines
	FindByID(ctx context.Context, id uuid.UUID) (*Quotation, error)

	// FindAll lists headers (without lines), newest first. Supports Filters["status"]
	// and Search over order number, customer name and phone.
	FindAll(ctx context.Context, filter shared.Filter) ([]Quotation, error)

	// Count counts quotations matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)

	// Save creates or updates the header and its lines. An order number collision
	// returns DUPLICATE_ORDER_NUMBER.
	Save(ctx context.Context, q *Quotation) error

	// UpdateHeader persists only the editable header columns, leaving status,
	// accounting keys and the document reference untouched
	UpdateHeader(ctx context.Context, id uuid.UUID, header QuotationHeader) error

	// CompareAndSwapStatus sets status to `to` only while it is still `from`.
	// It returns false when another writer got there first.
	CompareAndSwapStatus(ctx context.Context, id uuid.UUID, from, to QuotationStatus) (bool, error)

	// UpdateTotal persists total_amount
	UpdateTotal(ctx context.Context, id uuid.UUID, total decimal.Decimal) error

	// UpdateDocument persists the rendered document reference
	UpdateDocument(ctx context.Context, id uuid.UUID, path, url string) error

	// UpdateCustomerKey persists the accounting customer key
	UpdateCustomerKey(ctx context.Context, id uuid.UUID, key string) error

	// MarkConfirmed persists the sales order key and confirmation time
	MarkConfirmed(ctx context.Context, id uuid.UUID, salesOrderKey string, at time.Time) error

	// SaveLine creates or updates a single line
	SaveLine(ctx context.Context, line *QuotationLine) error

	// DeleteLine removes a line from a quotation
	DeleteLine(ctx context.Context, quotationID, lineID uuid.UUID) error

	// ExistsLineForProduct reports whether any quotation line references the product
	ExistsLineForProduct(ctx context.Context, productID uuid.UUID) (bool, error)
}
