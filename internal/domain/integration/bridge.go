package integration

import (
	"context"

	"github.com/sisl/eshop/internal/domain/trade"
)

// SyncResult holds the keys returned by the accounting system
type SyncResult struct {
	CustomerKey   string
	SalesOrderKey string
}

// CustomerKeyRecorder persists a freshly created customer key so a retry can reuse it
type CustomerKeyRecorder func(ctx context.Context, key string) error

// AccountingBridge pushes a quotation into the accounting system as a customer
// plus a sales order. Partial remote side effects are not compensated.
type AccountingBridge struct {
	gateway               AccountingGateway
	forwardContactDetails bool
}

// NewAccountingBridge creates a bridge over gateway. When forwardContactDetails is
// false the customer record carries only the name and the phone custom field.
func NewAccountingBridge(gateway AccountingGateway, forwardContactDetails bool) *AccountingBridge {
	return &AccountingBridge{
		gateway:               gateway,
		forwardContactDetails: forwardContactDetails,
	}
}

// Sync creates the customer (unless q already carries a customer key), resolves the
// inventory key of every line and creates the sales order.
func (b *AccountingBridge) Sync(ctx context.Context, q *trade.Quotation, record CustomerKeyRecorder) (*SyncResult, error) {
	customerKey := q.AccountingCustomerKey
	if customerKey == "" {
		key, err := b.gateway.CreateCustomer(ctx, b.customerFor(q))
		if err != nil {
			return nil, err
		}
		customerKey = key
		q.RecordCustomerKey(key)
		if record != nil {
			if err := record(ctx, key); err != nil {
				return nil, err
			}
		}
	}

	order := AccountingSalesOrder{
		Date:        q.CreatedAt,
		Reference:   q.OrderNumber,
		CustomerKey: customerKey,
		Discount:    q.HasDiscount(),
		Lines:       make([]AccountingSalesOrderLine, 0, len(q.Lines)),
	}
	for i := range q.Lines {
		line := &q.Lines[i]
		itemKey, err := b.gateway.LookupInventoryKey(ctx, line.ProductSKU)
		if err != nil {
			return nil, err
		}
		order.Lines = append(order.Lines, AccountingSalesOrderLine{
			ItemKey:         itemKey,
			Description:     line.ProductName,
			Quantity:        line.Quantity,
			UnitPrice:       line.UnitPrice,
			DiscountPercent: line.DiscountPercent,
		})
	}

	salesOrderKey, err := b.gateway.CreateSalesOrder(ctx, order)
	if err != nil {
		return nil, err
	}
	return &SyncResult{CustomerKey: customerKey, SalesOrderKey: salesOrderKey}, nil
}

func (b *AccountingBridge) customerFor(q *trade.Quotation) AccountingCustomer {
	customer := AccountingCustomer{
		Name:  q.DisplayName(),
		Phone: q.PhoneNo,
	}
	if b.forwardContactDetails {
		customer.Email = q.Email
		customer.BillingAddress = q.DeliveryAddress
		customer.DeliveryAddress = q.DeliveryAddress
	}
	return customer
}
