package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	tradeapp "github.com/sisl/eshop/internal/application/trade"
	"github.com/sisl/eshop/internal/infrastructure/persistence"
	"github.com/sisl/eshop/internal/infrastructure/scheduler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuotationHandler_Submit(t *testing.T) {
	s := newTestServer(t)
	fixture := s.seedCatalog()

	t.Run("anonymous", func(t *testing.T) {
		q := s.submitQuotation(fixture.productID, "")
		assert.Nil(t, q.CustomerID)
		assert.Equal(t, "PENDING", q.Status)
		assert.Equal(t, "PENDING", q.DocumentStatus)
		assert.True(t, strings.HasPrefix(q.OrderNumber, "ORD"), q.OrderNumber)
		require.Len(t, q.Lines, 1)
		assert.Equal(t, "CIPR-GA50C4004ABBA", q.Lines[0].ProductSKU)
		assert.True(t, q.Lines[0].UnitPrice.Equal(decimal.NewFromInt(100)), q.Lines[0].UnitPrice.String())
		assert.True(t, q.Lines[0].DiscountPercent.Equal(decimal.NewFromInt(25)))
		assert.True(t, q.TotalAmount.Equal(decimal.NewFromInt(150)), q.TotalAmount.String())
	})

	t.Run("signed in customer", func(t *testing.T) {
		customerID := uuid.New()
		q := s.submitQuotation(fixture.productID, s.token(customerID.String(), false))
		require.NotNil(t, q.CustomerID)
		assert.Equal(t, customerID, *q.CustomerID)
	})

	t.Run("explicit price and discount", func(t *testing.T) {
		var q tradeapp.QuotationResponse
		w := s.do(http.MethodPost, "/api/v1/quotations", map[string]any{
			"phone_no": "+49 30 1234567",
			"lines": []map[string]any{
				{"product_id": fixture.productID, "quantity": 3, "unit_price": "80.00", "discount_percent": "10"},
			},
		}, "")
		require.Equal(t, http.StatusAccepted, w.Code, w.Body.String())
		decodeData(t, w, &q)
		assert.True(t, q.TotalAmount.Equal(decimal.NewFromInt(216)), q.TotalAmount.String())
	})

	t.Run("phone formats", func(t *testing.T) {
		tests := []struct {
			phone       string
			displayName string
		}{
			{"+880 1712-345678", "Customer # 345678"},
			{"12345", "Customer # 12345"},
		}
		for _, tt := range tests {
			var q tradeapp.QuotationResponse
			w := s.do(http.MethodPost, "/api/v1/quotations", map[string]any{
				"phone_no": tt.phone,
				"lines":    []map[string]any{{"product_id": fixture.productID, "quantity": 1}},
			}, "")
			require.Equal(t, http.StatusAccepted, w.Code, w.Body.String())
			decodeData(t, w, &q)
			assert.Equal(t, tt.phone, q.PhoneNo)
			assert.Equal(t, tt.displayName, q.DisplayName)
		}
	})

	tests := []struct {
		name   string
		body   map[string]any
		status int
		code   string
	}{
		{
			name:   "missing phone",
			body:   map[string]any{"lines": []map[string]any{{"product_id": fixture.productID, "quantity": 1}}},
			status: http.StatusBadRequest,
			code:   "PHONE_REQUIRED",
		},
		{
			name: "malformed phone",
			body: map[string]any{
				"phone_no": "call me",
				"lines":    []map[string]any{{"product_id": fixture.productID, "quantity": 1}},
			},
			status: http.StatusBadRequest,
			code:   "VALIDATION_ERROR",
		},
		{
			name: "phone too long",
			body: map[string]any{
				"phone_no": "+880 (1712) 345-67890",
				"lines":    []map[string]any{{"product_id": fixture.productID, "quantity": 1}},
			},
			status: http.StatusBadRequest,
			code:   "VALIDATION_ERROR",
		},
		{
			name:   "no lines",
			body:   map[string]any{"phone_no": "+49 30 1234567"},
			status: http.StatusBadRequest,
			code:   "LINES_REQUIRED",
		},
		{
			name: "unknown product",
			body: map[string]any{
				"phone_no": "+49 30 1234567",
				"lines":    []map[string]any{{"product_id": uuid.New(), "quantity": 1}},
			},
			status: http.StatusNotFound,
			code:   "PRODUCT_NOT_FOUND",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.do(http.MethodPost, "/api/v1/quotations", tt.body, "")
			requireErrorCode(t, w, tt.status, tt.code)
		})
	}
}

func TestQuotationHandler_GetAndDocument(t *testing.T) {
	s := newTestServer(t)
	fixture := s.seedCatalog()
	q := s.submitQuotation(fixture.productID, "")

	var fetched tradeapp.QuotationResponse
	w := s.do(http.MethodGet, "/api/v1/quotations/"+q.ID.String(), nil, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	decodeData(t, w, &fetched)
	assert.Equal(t, q.OrderNumber, fetched.OrderNumber)

	requireErrorCode(t, s.do(http.MethodGet, "/api/v1/quotations/"+uuid.NewString(), nil, ""),
		http.StatusNotFound, "NOT_FOUND")
	requireErrorCode(t, s.do(http.MethodGet, "/api/v1/quotations/not-a-uuid", nil, ""),
		http.StatusBadRequest, "INVALID_ID")

	documentPath := "/api/v1/quotations/" + q.ID.String() + "/document"
	requireErrorCode(t, s.do(http.MethodGet, documentPath, nil, ""), http.StatusNotFound, "DOCUMENT_NOT_FOUND")

	ctx := context.Background()
	key := "quotations/" + q.OrderNumber + ".pdf"
	pdf := []byte("%PDF-1.4\n%test\n")
	require.NoError(t, s.objects.Put(ctx, key, pdf, "application/pdf"))
	require.NoError(t, persistence.NewGormQuotationRepository(s.db).UpdateDocument(ctx, q.ID, key, s.objects.URL(key)))

	w = s.do(http.MethodGet, documentPath, nil, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "attachment")
	assert.Contains(t, w.Header().Get("Content-Disposition"), q.OrderNumber+".pdf")
	assert.Equal(t, pdf, w.Body.Bytes())

	w = s.do(http.MethodGet, "/api/v1/quotations/"+q.ID.String(), nil, "")
	decodeData(t, w, &fetched)
	assert.Equal(t, "READY", fetched.DocumentStatus)
	assert.NotEmpty(t, fetched.DocumentURL)
}

func TestAdminQuotationHandler_Editing(t *testing.T) {
	s := newTestServer(t)
	fixture := s.seedCatalog()
	other := s.createProduct(fixture.categoryID, fixture.brandID, "GA500 4.0kW", "CIPR-GA50C4009ABBA")
	q := s.submitQuotation(fixture.productID, "")
	base := "/api/v1/admin/quotations/" + q.ID.String()

	requireErrorCode(t, s.do(http.MethodGet, base, nil, s.token(uuid.NewString(), false)),
		http.StatusForbidden, "FORBIDDEN")

	var updated tradeapp.QuotationResponse
	w := s.admin(http.MethodPatch, base, map[string]any{"subject": "Spare drives", "customer_name": "Acme GmbH"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	decodeData(t, w, &updated)
	assert.Equal(t, "Spare drives", updated.Subject)
	assert.Equal(t, "Acme GmbH", updated.CustomerName)

	requireErrorCode(t, s.admin(http.MethodPatch, base, map[string]any{"phone_no": "x"}),
		http.StatusBadRequest, "VALIDATION_ERROR")

	w = s.admin(http.MethodPost, base+"/lines", map[string]any{"product_id": other.ID, "quantity": 1})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	decodeData(t, w, &updated)
	require.Len(t, updated.Lines, 2)
	added := updated.Lines[1]
	assert.Equal(t, "CIPR-GA50C4009ABBA", added.ProductSKU)

	w = s.admin(http.MethodPut, base+"/lines/"+added.ID.String(), map[string]any{"quantity": 4, "discount_percent": "50"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	decodeData(t, w, &updated)
	for _, line := range updated.Lines {
		if line.ID == added.ID {
			assert.Equal(t, 4, line.Quantity)
			assert.True(t, line.LineTotal.Equal(decimal.NewFromInt(200)), line.LineTotal.String())
		}
	}

	var totaled tradeapp.QuotationResponse
	w = s.admin(http.MethodPost, base+"/compute-total", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	decodeData(t, w, &totaled)
	assert.True(t, totaled.TotalAmount.Equal(decimal.NewFromInt(350)), totaled.TotalAmount.String())

	requireErrorCode(t, s.admin(http.MethodPut, base+"/lines/"+uuid.NewString(), map[string]any{"quantity": 1}),
		http.StatusNotFound, "LINE_NOT_FOUND")
	requireErrorCode(t, s.admin(http.MethodPut, base+"/lines/"+added.ID.String(), map[string]any{"quantity": -1}),
		http.StatusBadRequest, "INVALID_QUANTITY")

	w = s.admin(http.MethodDelete, base+"/lines/"+added.ID.String(), nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	decodeData(t, w, &updated)
	assert.Len(t, updated.Lines, 1)

	var items []tradeapp.QuotationListItemResponse
	w = s.admin(http.MethodGet, "/api/v1/admin/quotations?status=PENDING&page=1&page_size=10", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	env := decodeData(t, w, &items)
	require.Len(t, items, 1)
	assert.Equal(t, q.ID, items[0].ID)
	require.NotNil(t, env.Meta)
	assert.Equal(t, int64(1), env.Meta.Total)

	w = s.admin(http.MethodGet, "/api/v1/admin/quotations?status=CONFIRMED", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	decodeData(t, w, &items)
	assert.Empty(t, items)

	requireErrorCode(t, s.admin(http.MethodGet, "/api/v1/admin/quotations?status=LOST", nil),
		http.StatusBadRequest, "VALIDATION_ERROR")
}

func TestAdminQuotationHandler_Confirm(t *testing.T) {
	s := newTestServer(t)
	fixture := s.seedCatalog()

	t.Run("accounting failure keeps the quotation pending", func(t *testing.T) {
		q := s.submitQuotation(fixture.productID, "")
		s.accounting.err = errors.New("connection refused")
		defer func() { s.accounting.err = nil }()

		w := s.admin(http.MethodPost, "/api/v1/admin/quotations/"+q.ID.String()+"/confirm", nil)
		requireErrorCode(t, w, http.StatusBadGateway, "ACCOUNTING_SYNC_FAILED")

		var fetched tradeapp.QuotationResponse
		decodeData(t, s.admin(http.MethodGet, "/api/v1/admin/quotations/"+q.ID.String(), nil), &fetched)
		assert.Equal(t, "PENDING", fetched.Status)
	})

	t.Run("confirm once", func(t *testing.T) {
		q := s.submitQuotation(fixture.productID, "")
		path := "/api/v1/admin/quotations/" + q.ID.String() + "/confirm"

		var confirmed tradeapp.QuotationResponse
		w := s.admin(http.MethodPost, path, nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		decodeData(t, w, &confirmed)
		assert.Equal(t, "CONFIRMED", confirmed.Status)
		assert.Equal(t, "SO-200", confirmed.AccountingSalesOrderKey)
		assert.NotNil(t, confirmed.ConfirmedAt)

		requireErrorCode(t, s.admin(http.MethodPost, path, nil), http.StatusConflict, "ALREADY_CONFIRMED")
	})

	t.Run("confirm through the status endpoint", func(t *testing.T) {
		q := s.submitQuotation(fixture.productID, "")

		var confirmed tradeapp.QuotationResponse
		w := s.admin(http.MethodPost, "/api/v1/admin/quotations/"+q.ID.String()+"/status", map[string]any{"status": "CONFIRMED"})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		decodeData(t, w, &confirmed)
		assert.Equal(t, "CONFIRMED", confirmed.Status)
	})

	t.Run("async confirm queues an accounting sync", func(t *testing.T) {
		q := s.submitQuotation(fixture.productID, "")

		var ack tradeapp.ConfirmAsyncResponse
		w := s.admin(http.MethodPost, "/api/v1/admin/quotations/"+q.ID.String()+"/confirm-async", nil)
		require.Equal(t, http.StatusAccepted, w.Code, w.Body.String())
		decodeData(t, w, &ack)
		assert.Equal(t, "QUEUED", ack.Status)
		assert.Equal(t, q.ID, ack.QuotationID)
		assert.Contains(t, s.tasks.kinds(), scheduler.TaskSyncAccounting)
	})

	t.Run("async confirm with a full queue", func(t *testing.T) {
		q := s.submitQuotation(fixture.productID, "")
		s.tasks.err = scheduler.ErrTaskQueueFull
		defer func() { s.tasks.err = nil }()

		w := s.admin(http.MethodPost, "/api/v1/admin/quotations/"+q.ID.String()+"/confirm-async", nil)
		requireErrorCode(t, w, http.StatusServiceUnavailable, "TASK_QUEUE_FULL")
	})
}

func TestAdminQuotationHandler_StatusAndBulk(t *testing.T) {
	s := newTestServer(t)
	fixture := s.seedCatalog()

	canceled := s.submitQuotation(fixture.productID, "")
	statusPath := "/api/v1/admin/quotations/" + canceled.ID.String() + "/status"

	var q tradeapp.QuotationResponse
	w := s.admin(http.MethodPost, statusPath, map[string]any{"status": "CANCELED"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	decodeData(t, w, &q)
	assert.Equal(t, "CANCELED", q.Status)

	requireErrorCode(t, s.admin(http.MethodPost, statusPath, map[string]any{"status": "DELIVERED"}),
		http.StatusUnprocessableEntity, "INVALID_STATUS_TRANSITION")
	requireErrorCode(t, s.admin(http.MethodPost, statusPath, map[string]any{"status": "SHIPPED"}),
		http.StatusBadRequest, "VALIDATION_ERROR")

	pending := s.submitQuotation(fixture.productID, "")
	confirmed := s.submitQuotation(fixture.productID, "")
	w = s.admin(http.MethodPost, "/api/v1/admin/quotations/"+confirmed.ID.String()+"/confirm", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	missing := uuid.New()
	var results []tradeapp.BulkConfirmResult
	w = s.admin(http.MethodPost, "/api/v1/admin/quotations/bulk-confirm", map[string]any{
		"ids": []uuid.UUID{pending.ID, confirmed.ID, canceled.ID, missing},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	decodeData(t, w, &results)
	require.Len(t, results, 4)

	assert.Equal(t, tradeapp.BulkResultConfirmed, results[0].Result)
	assert.Equal(t, "SO-200", results[0].SalesOrderKey)
	assert.Equal(t, tradeapp.BulkResultSkipped, results[1].Result)
	assert.Equal(t, tradeapp.BulkResultFailed, results[2].Result)
	assert.NotEmpty(t, results[2].Error)
	assert.Equal(t, tradeapp.BulkResultFailed, results[3].Result)
	assert.Equal(t, missing, results[3].ID)

	requireErrorCode(t, s.admin(http.MethodPost, "/api/v1/admin/quotations/bulk-confirm", map[string]any{"ids": []uuid.UUID{}}),
		http.StatusBadRequest, "VALIDATION_ERROR")
}
