package integration

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// AccountingCustomer is the customer record created in the accounting system
type AccountingCustomer struct {
	Name            string
	Phone           string
	Email           string
	BillingAddress  string
	DeliveryAddress string
}

// AccountingSalesOrderLine is one resolved line of a sales order
type AccountingSalesOrderLine struct {
	ItemKey         string
	Description     string
	Quantity        int
	UnitPrice       decimal.Decimal
	DiscountPercent decimal.Decimal
}

// AccountingSalesOrder is the sales order created in the accounting system
type AccountingSalesOrder struct {
	Date        time.Time
	Reference   string
	CustomerKey string
	Discount    bool
	Lines       []AccountingSalesOrderLine
}

// AccountingGateway is the port to the external accounting system
type AccountingGateway interface {
	// CreateCustomer creates a customer record and returns its key
	CreateCustomer(ctx context.Context, customer AccountingCustomer) (string, error)

	// LookupInventoryKey returns the key of the inventory item whose item code equals sku
	LookupInventoryKey(ctx context.Context, sku string) (string, error)

	// CreateSalesOrder creates a sales order and returns its key
	CreateSalesOrder(ctx context.Context, order AccountingSalesOrder) (string, error)
}
