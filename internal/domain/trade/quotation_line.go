package trade

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sisl/eshop/internal/domain/shared"
)

// DefaultDiscountPercent applies to new lines that do not specify a discount
var DefaultDiscountPercent = decimal.NewFromInt(25)

var hundred = decimal.NewFromInt(100)

// LineProduct is the product snapshot a quotation line is priced from
type LineProduct struct {
	ID            uuid.UUID
	Name          string
	SKU           string
	OriginalPrice decimal.Decimal
}

// LineInput carries the user-supplied values for a quotation line.
// Nil fields fall back to their defaults.
type LineInput struct {
	Description     string
	Quantity        int
	UnitPrice       *decimal.Decimal
	DiscountPercent *decimal.Decimal
}

// QuotationLine is a detail row of a quotation
type QuotationLine struct {
	ID              uuid.UUID
	QuotationID     uuid.UUID
	LineNo          int // 1-based position within the quotation
	ProductID       uuid.UUID
	ProductName     string
	ProductSKU      string
	Description     string
	Quantity        int
	UnitPrice       decimal.Decimal
	DiscountPercent decimal.Decimal
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// NewQuotationLine creates a line for the given product, applying the quantity,
// price and discount defaults
func NewQuotationLine(quotationID uuid.UUID, product LineProduct, input LineInput) (*QuotationLine, error) {
	if product.ID == uuid.Nil {
		return nil, shared.NewDomainError("PRODUCT_NOT_FOUND", "Product is required for a quotation line")
	}

	discount := DefaultDiscountPercent
	if input.DiscountPercent != nil {
		discount = *input.DiscountPercent
	}

	now := time.Now()
	line := &QuotationLine{
		ID:          uuid.New(),
		QuotationID: quotationID,
		Description: strings.TrimSpace(input.Description),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	line.setProduct(product)

	quantity := input.Quantity
	if quantity == 0 {
		quantity = 1
	}
	if err := line.apply(product, quantity, input.UnitPrice, discount); err != nil {
		return nil, err
	}
	return line, nil
}

// LineUpdate describes a staff edit of a line. A nil Product keeps the current one.
type LineUpdate struct {
	Product         *LineProduct
	Description     *string
	Quantity        *int
	UnitPrice       *decimal.Decimal
	DiscountPercent *decimal.Decimal
}

// Update applies a staff edit. The unit price falls back to the product's original
// price when it ends up unset or zero. A quantity of 0 is stored as given.
func (l *QuotationLine) Update(update LineUpdate, current LineProduct) error {
	product := current
	if update.Product != nil {
		product = *update.Product
	}

	quantity := l.Quantity
	if update.Quantity != nil {
		quantity = *update.Quantity
	}
	price := l.UnitPrice
	if update.UnitPrice != nil {
		price = *update.UnitPrice
	}
	discount := l.DiscountPercent
	if update.DiscountPercent != nil {
		discount = *update.DiscountPercent
	}

	if err := l.apply(product, quantity, &price, discount); err != nil {
		return err
	}
	if update.Product != nil {
		l.setProduct(product)
	}
	if update.Description != nil {
		l.Description = strings.TrimSpace(*update.Description)
	}
	l.UpdatedAt = time.Now()
	return nil
}

// LineTotal returns quantity * unit_price * (1 - discount/100) without rounding.
// Only the stored quotation total is quantized to cents.
func (l *QuotationLine) LineTotal() decimal.Decimal {
	factor := hundred.Sub(l.DiscountPercent).Div(hundred)
	return decimal.NewFromInt(int64(l.Quantity)).Mul(l.UnitPrice).Mul(factor)
}

// HasDiscount returns true if a nonzero discount applies
func (l *QuotationLine) HasDiscount() bool {
	return !l.DiscountPercent.IsZero()
}

func (l *QuotationLine) setProduct(product LineProduct) {
	l.ProductID = product.ID
	l.ProductName = product.Name
	l.ProductSKU = product.SKU
}

func (l *QuotationLine) apply(product LineProduct, quantity int, unitPrice *decimal.Decimal, discount decimal.Decimal) error {
	if quantity < 0 {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity cannot be negative")
	}
	if discount.IsNegative() || discount.GreaterThan(hundred) {
		return shared.NewDomainError("INVALID_DISCOUNT", "Discount must be between 0 and 100 percent")
	}

	price := product.OriginalPrice
	if unitPrice != nil && !unitPrice.IsZero() {
		if unitPrice.IsNegative() {
			return shared.NewDomainError("INVALID_PRICE", "Unit price cannot be negative")
		}
		price = *unitPrice
	}

	l.Quantity = quantity
	l.UnitPrice = price
	l.DiscountPercent = discount
	return nil
}
