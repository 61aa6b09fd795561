// Package accounting is the HTTP adapter for the external accounting API.
// It implements integration.AccountingGateway.
package accounting

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sisl/eshop/internal/domain/integration"
	"github.com/sisl/eshop/internal/domain/shared"
	"github.com/sisl/eshop/internal/infrastructure/config"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

const (
	// maxResponseSize limits the response body size; the inventory list is the largest
	maxResponseSize = 10 * 1024 * 1024

	// maxErrorBodySize bounds how much of a failed response ends up in the error
	maxErrorBodySize = 2048

	customerFormPath   = "/api2/customer-form"
	inventoryItemsPath = "/api2/inventory-items/"
	salesOrderFormPath = "/api2/sales-order-form"

	orderDateLayout = "2006-01-02T00:00:00"
)

// Client talks to the accounting API with an X-API-KEY header
type Client struct {
	baseURL       string
	apiKey        string
	phoneFieldKey string
	httpClient    *http.Client
	logger        *zap.Logger
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the default traced HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// NewClient creates an accounting client from configuration
func NewClient(cfg config.AccountingConfig, logger *zap.Logger, opts ...Option) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.EndpointBase), "/")
	if base == "" {
		return nil, errors.New("accounting: endpoint base is required")
	}
	if _, err := url.ParseRequestURI(base); err != nil {
		return nil, fmt.Errorf("accounting: invalid endpoint base: %w", err)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	c := &Client{
		baseURL:       base,
		apiKey:        cfg.APIKey,
		phoneFieldKey: cfg.PhoneFieldKey,
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		logger: logger.Named("accounting"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// CreateCustomer implements integration.AccountingGateway
func (c *Client) CreateCustomer(ctx context.Context, customer integration.AccountingCustomer) (string, error) {
	fields := emptyCustomFields2()
	if customer.Phone != "" && c.phoneFieldKey != "" {
		fields.Strings[c.phoneFieldKey] = customer.Phone
	}
	form := customerForm{
		Name:            customer.Name,
		BillingAddress:  customer.BillingAddress,
		DeliveryAddress: customer.DeliveryAddress,
		Email:           customer.Email,
		CustomFields:    map[string]any{},
		CustomFields2:   fields,
	}

	key, err := c.postForm(ctx, customerFormPath, form)
	if err != nil {
		return "", wrapRequestError("Error creating customer", err)
	}
	c.logger.Info("Accounting customer created", zap.String("customer_key", key))
	return key, nil
}

// LookupInventoryKey implements integration.AccountingGateway. The full item list
// is fetched on every call.
func (c *Client) LookupInventoryKey(ctx context.Context, sku string) (string, error) {
	body, err := c.do(ctx, http.MethodGet, inventoryItemsPath, nil)
	if err != nil {
		return "", wrapRequestError("Error retrieving inventory items", err)
	}

	items, err := decodeInventoryItems(body)
	if err != nil {
		return "", err
	}
	for _, item := range items {
		if stringify(item["itemCode"]) == sku {
			key := stringify(item["key"])
			c.logger.Debug("Inventory item resolved", zap.String("sku", sku), zap.String("item_key", key))
			return key, nil
		}
	}
	return "", shared.NewDomainError(CodeItemNotFound,
		fmt.Sprintf("Error finding inventory item for SKU %s: not found in accounting.", sku))
}

// CreateSalesOrder implements integration.AccountingGateway
func (c *Client) CreateSalesOrder(ctx context.Context, order integration.AccountingSalesOrder) (string, error) {
	lines := make([]salesOrderLine, 0, len(order.Lines))
	for _, l := range order.Lines {
		lines = append(lines, salesOrderLine{
			Item:               l.ItemKey,
			LineDescription:    l.Description,
			CustomFields:       map[string]any{},
			CustomFields2:      emptyCustomFields2(),
			Qty:                float64(l.Quantity),
			SalesUnitPrice:     l.UnitPrice.InexactFloat64(),
			DiscountPercentage: l.DiscountPercent.InexactFloat64(),
		})
	}
	form := salesOrderForm{
		Date:              order.Date.Format(orderDateLayout),
		Reference:         order.Reference,
		Customer:          order.CustomerKey,
		Lines:             lines,
		Discount:          order.Discount,
		SalesOrderFooters: []any{},
		CustomFields:      map[string]any{},
		CustomFields2:     emptyCustomFields2(),
	}

	key, err := c.postForm(ctx, salesOrderFormPath, form)
	if err != nil {
		return "", wrapRequestError("Error creating sales order", err)
	}
	c.logger.Info("Accounting sales order created",
		zap.String("sales_order_key", key),
		zap.String("reference", order.Reference),
	)
	return key, nil
}

func (c *Client) postForm(ctx context.Context, path string, form any) (string, error) {
	payload, err := json.Marshal(form)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}
	body, err := c.do(ctx, http.MethodPost, path, payload)
	if err != nil {
		return "", err
	}

	var resp keyResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", shared.NewDomainErrorWithCause(CodeUnexpectedResponse, "Unparseable accounting response", err)
	}
	key := stringify(resp.Key)
	if key == "" {
		return "", shared.NewDomainError(CodeUnexpectedResponse, "Accounting response carries no Key")
	}
	return key, nil
}

// do performs a request and returns the body of a 200 or 201 response
func (c *Client) do(ctx context.Context, method, path string, payload []byte) ([]byte, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("X-API-KEY", c.apiKey)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &transportError{err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, &transportError{err: fmt.Errorf("failed to read response: %w", err)}
	}

	c.logger.Debug("Accounting request",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)),
	)

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		text := string(body)
		if len(text) > maxErrorBodySize {
			text = text[:maxErrorBodySize]
		}
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: text}
	}
	return body, nil
}

// decodeInventoryItems accepts {"inventoryItems": [...]} or a bare array
func decodeInventoryItems(body []byte) ([]map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, shared.NewDomainErrorWithCause(CodeUnexpectedResponse, "Unparseable inventory items response", err)
	}

	var list []any
	switch v := raw.(type) {
	case map[string]any:
		items, ok := v["inventoryItems"].([]any)
		if !ok {
			return nil, shared.NewDomainError(CodeUnexpectedResponse, "Unexpected inventory items format: "+truncate(string(body)))
		}
		list = items
	case []any:
		list = v
	default:
		return nil, shared.NewDomainError(CodeUnexpectedResponse, "Unexpected inventory items format: "+truncate(string(body)))
	}

	items := make([]map[string]any, 0, len(list))
	for _, entry := range list {
		if m, ok := entry.(map[string]any); ok {
			items = append(items, m)
		}
	}
	return items, nil
}

func wrapRequestError(message string, err error) error {
	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		return err
	}
	return shared.NewDomainErrorWithCause(CodeRequestFailed, message, err)
}

func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		return t.String()
	default:
		return fmt.Sprint(t)
	}
}

func truncate(s string) string {
	if len(s) > 200 {
		return s[:200] + "..."
	}
	return s
}

var _ integration.AccountingGateway = (*Client)(nil)
