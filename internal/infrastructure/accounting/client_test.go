package accounting

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sisl/eshop/internal/domain/integration"
	"github.com/sisl/eshop/internal/domain/shared"
	"github.com/sisl/eshop/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testAPIKey = "test-api-key"

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	c, err := NewClient(config.AccountingConfig{
		EndpointBase:  server.URL + "/",
		APIKey:        testAPIKey,
		Timeout:       2 * time.Second,
		PhoneFieldKey: "phone-field",
	}, zap.NewNop(), WithHTTPClient(server.Client()))
	require.NoError(t, err)
	return c
}

func decodeBody(t *testing.T, r *http.Request) map[string]any {
	t.Helper()
	raw, err := io.ReadAll(r.Body)
	require.NoError(t, err)
	var body map[string]any
	require.NoError(t, json.Unmarshal(raw, &body))
	return body
}

func requireCode(t *testing.T, err error, code string) {
	t.Helper()
	var domainErr *shared.DomainError
	require.True(t, errors.As(err, &domainErr), "expected DomainError, got %v", err)
	assert.Equal(t, code, domainErr.Code)
}

// ==================== Construction ====================

func TestNewClient(t *testing.T) {
	_, err := NewClient(config.AccountingConfig{}, zap.NewNop())
	assert.Error(t, err)

	_, err = NewClient(config.AccountingConfig{EndpointBase: "not a url"}, zap.NewNop())
	assert.Error(t, err)

	c, err := NewClient(config.AccountingConfig{EndpointBase: "https://acc.example.com/"}, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, "https://acc.example.com", c.baseURL)
	assert.Equal(t, 30*time.Second, c.httpClient.Timeout)
}

// ==================== Customer ====================

func TestClient_CreateCustomer(t *testing.T) {
	t.Run("sends form with phone field", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/api2/customer-form", r.URL.Path)
			assert.Equal(t, testAPIKey, r.Header.Get("X-API-KEY"))
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

			body := decodeBody(t, r)
			assert.Equal(t, "Customer # 456789", body["Name"])
			assert.Equal(t, "", body["Email"])
			assert.Equal(t, "", body["BillingAddress"])
			assert.Equal(t, map[string]any{}, body["CustomFields"])
			fields := body["CustomFields2"].(map[string]any)
			assert.Equal(t, map[string]any{"phone-field": "017123456789"}, fields["Strings"])
			for _, k := range []string{"Decimals", "Dates", "Booleans", "StringArrays"} {
				assert.Equal(t, map[string]any{}, fields[k], k)
			}

			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte(`{"Key":"cust-123"}`))
		})

		key, err := c.CreateCustomer(context.Background(), integration.AccountingCustomer{
			Name:  "Customer # 456789",
			Phone: "017123456789",
		})
		require.NoError(t, err)
		assert.Equal(t, "cust-123", key)
	})

	t.Run("omits phone field without phone", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			body := decodeBody(t, r)
			fields := body["CustomFields2"].(map[string]any)
			assert.Equal(t, map[string]any{}, fields["Strings"])
			_, _ = w.Write([]byte(`{"Key":"cust-1"}`))
		})
		_, err := c.CreateCustomer(context.Background(), integration.AccountingCustomer{Name: "Acme"})
		require.NoError(t, err)
	})

	t.Run("rejected", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`Name is required`))
		})
		_, err := c.CreateCustomer(context.Background(), integration.AccountingCustomer{})
		requireCode(t, err, CodeRequestFailed)
		assert.Contains(t, err.Error(), "Name is required")
		assert.False(t, IsRetryable(err))
	})

	t.Run("server error is retryable", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		})
		_, err := c.CreateCustomer(context.Background(), integration.AccountingCustomer{Name: "x"})
		requireCode(t, err, CodeRequestFailed)
		assert.True(t, IsRetryable(err))
	})

	t.Run("missing key", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{}`))
		})
		_, err := c.CreateCustomer(context.Background(), integration.AccountingCustomer{Name: "x"})
		requireCode(t, err, CodeUnexpectedResponse)
	})
}

// ==================== Inventory ====================

func TestClient_LookupInventoryKey(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		sku      string
		wantKey  string
		wantCode string
	}{
		{"wrapped list", 200, `{"inventoryItems":[{"itemCode":"FR-D720S","key":"k1"},{"itemCode":"FX5U","key":"k2"}]}`, "FX5U", "k2", ""},
		{"bare list", 200, `[{"itemCode":"FX5U","key":"k2"}]`, "FX5U", "k2", ""},
		{"numeric item code", 200, `[{"itemCode":12345678901,"key":"k9"}]`, "12345678901", "k9", ""},
		{"not found", 200, `[{"itemCode":"FX5U","key":"k2"}]`, "GOT2000", "", CodeItemNotFound},
		{"unexpected object", 200, `{"items":[]}`, "FX5U", "", CodeUnexpectedResponse},
		{"unexpected scalar", 200, `"hello"`, "FX5U", "", CodeUnexpectedResponse},
		{"invalid json", 200, `{`, "FX5U", "", CodeUnexpectedResponse},
		{"http error", 500, `boom`, "FX5U", "", CodeRequestFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodGet, r.Method)
				assert.Equal(t, "/api2/inventory-items/", r.URL.Path)
				assert.Equal(t, "application/json", r.Header.Get("Accept"))
				assert.Equal(t, testAPIKey, r.Header.Get("X-API-KEY"))
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			key, err := c.LookupInventoryKey(context.Background(), tt.sku)
			if tt.wantCode != "" {
				requireCode(t, err, tt.wantCode)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantKey, key)
		})
	}
}

func TestClient_LookupInventoryKey_NoCaching(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(`[{"itemCode":"A","key":"ka"}]`))
	})
	for i := 0; i < 3; i++ {
		_, err := c.LookupInventoryKey(context.Background(), "A")
		require.NoError(t, err)
	}
	assert.Equal(t, int32(3), calls.Load())
}

// ==================== Sales order ====================

func TestClient_CreateSalesOrder(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api2/sales-order-form", r.URL.Path)
		body := decodeBody(t, r)

		assert.Equal(t, "2024-03-15T00:00:00", body["Date"])
		assert.Equal(t, "ORD20240315093045", body["Reference"])
		assert.Equal(t, "cust-123", body["Customer"])
		assert.Equal(t, true, body["Discount"])
		assert.Equal(t, []any{}, body["SalesOrderFooters"])

		lines := body["Lines"].([]any)
		require.Len(t, lines, 1)
		line := lines[0].(map[string]any)
		assert.Equal(t, "k1", line["Item"])
		assert.Equal(t, "FR-D720S-0.4K", line["LineDescription"])
		assert.Equal(t, 2.0, line["Qty"])
		assert.Equal(t, 120.5, line["SalesUnitPrice"])
		assert.Equal(t, 25.0, line["DiscountPercentage"])

		_, _ = w.Write([]byte(`{"Key":"so-9"}`))
	})

	key, err := c.CreateSalesOrder(context.Background(), integration.AccountingSalesOrder{
		Date:        time.Date(2024, 3, 15, 9, 30, 45, 0, time.UTC),
		Reference:   "ORD20240315093045",
		CustomerKey: "cust-123",
		Discount:    true,
		Lines: []integration.AccountingSalesOrderLine{{
			ItemKey:         "k1",
			Description:     "FR-D720S-0.4K",
			Quantity:        2,
			UnitPrice:       decimal.RequireFromString("120.50"),
			DiscountPercent: decimal.NewFromInt(25),
		}},
	})
	require.NoError(t, err)
	assert.Equal(t, "so-9", key)
}

// ==================== Retry classification ====================

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(&transportError{err: errors.New("dial tcp: refused")}))
	assert.True(t, IsRetryable(&StatusError{StatusCode: 503}))
	assert.True(t, IsRetryable(&StatusError{StatusCode: 429}))
	assert.False(t, IsRetryable(&StatusError{StatusCode: 404}))
	assert.False(t, IsRetryable(ErrItemNotFound))
	assert.False(t, IsRetryable(nil))

	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	server.Close()
	c, err := NewClient(config.AccountingConfig{EndpointBase: server.URL}, zap.NewNop())
	require.NoError(t, err)
	_, err = c.LookupInventoryKey(context.Background(), "A")
	requireCode(t, err, CodeRequestFailed)
	assert.True(t, IsRetryable(err))
}
