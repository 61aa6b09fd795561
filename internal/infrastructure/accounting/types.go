package accounting

// customFields2 is the typed custom-field block every accounting form carries
type customFields2 struct {
	Strings      map[string]string `json:"Strings"`
	Decimals     map[string]string `json:"Decimals"`
	Dates        map[string]string `json:"Dates"`
	Booleans     map[string]string `json:"Booleans"`
	StringArrays map[string]string `json:"StringArrays"`
}

func emptyCustomFields2() customFields2 {
	return customFields2{
		Strings:      map[string]string{},
		Decimals:     map[string]string{},
		Dates:        map[string]string{},
		Booleans:     map[string]string{},
		StringArrays: map[string]string{},
	}
}

// customerForm is the body of POST /api2/customer-form
type customerForm struct {
	Name            string         `json:"Name"`
	BillingAddress  string         `json:"BillingAddress"`
	DeliveryAddress string         `json:"DeliveryAddress"`
	Email           string         `json:"Email"`
	CustomFields    map[string]any `json:"CustomFields"`
	CustomFields2   customFields2  `json:"CustomFields2"`
}

// salesOrderLine is one entry of salesOrderForm.Lines
type salesOrderLine struct {
	Item               string         `json:"Item"`
	LineDescription    string         `json:"LineDescription"`
	CustomFields       map[string]any `json:"CustomFields"`
	CustomFields2      customFields2  `json:"CustomFields2"`
	Qty                float64        `json:"Qty"`
	SalesUnitPrice     float64        `json:"SalesUnitPrice"`
	DiscountPercentage float64        `json:"DiscountPercentage"`
}

// salesOrderForm is the body of POST /api2/sales-order-form
type salesOrderForm struct {
	Date              string           `json:"Date"`
	Reference         string           `json:"Reference"`
	Customer          string           `json:"Customer"`
	Lines             []salesOrderLine `json:"Lines"`
	Discount          bool             `json:"Discount"`
	SalesOrderFooters []any            `json:"SalesOrderFooters"`
	CustomFields      map[string]any   `json:"CustomFields"`
	CustomFields2     customFields2    `json:"CustomFields2"`
}

// keyResponse is returned by both form endpoints
type keyResponse struct {
	Key any `json:"Key"`
}
