package persistence

import (
	"testing"

	"github.com/sisl/eshop/internal/domain/shared"
	"github.com/sisl/eshop/internal/infrastructure/persistence/models"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestValidateSortOrder(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"", "DESC"},
		{"asc", "ASC"},
		{"  ASC  ", "ASC"},
		{"desc", "DESC"},
		{"ASC; DROP TABLE quotations;--", "DESC"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, ValidateSortOrder(tt.input), "input %q", tt.input)
	}
}

func TestValidateSortField_Whitelists(t *testing.T) {
	tests := []struct {
		name     string
		allowed  map[string]bool
		input    string
		fallback string
		expected string
	}{
		{"quotation by order number", QuotationSortFields, "order_number", "created_at", "order_number"},
		{"quotation by total", QuotationSortFields, " total_amount ", "created_at", "total_amount"},
		{"quotation phone is not sortable", QuotationSortFields, "phone_no", "created_at", "created_at"},
		{"quotation empty uses default", QuotationSortFields, "", "created_at", "created_at"},
		{"product by sku", ProductSortFields, "sku", "name", "sku"},
		{"product by price", ProductSortFields, "original_price", "name", "original_price"},
		{"product spec field is not sortable", ProductSortFields, "rated_power", "name", "name"},
		{"injection falls back", ProductSortFields, "name; DROP TABLE products", "name", "name"},
		{"banner by title", BannerSortFields, "title", "created_at", "title"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ValidateSortField(tt.input, tt.allowed, tt.fallback))
		})
	}
}

func TestApplyPagination_OrderClause(t *testing.T) {
	db := setupTestDB(t)

	orderSQL := func(filter shared.Filter) string {
		var rows []models.QuotationModel
		query := db.Session(&gorm.Session{DryRun: true}).Model(&models.QuotationModel{})
		stmt := applyPagination(query, filter, QuotationSortFields, "created_at", "DESC").Find(&rows).Statement
		return stmt.SQL.String()
	}

	assert.Contains(t, orderSQL(shared.Filter{}), "ORDER BY created_at DESC")
	assert.Contains(t, orderSQL(shared.Filter{OrderBy: "order_number", OrderDir: "asc"}), "ORDER BY order_number ASC")

	sql := orderSQL(shared.Filter{OrderBy: "status; DELETE FROM quotations", OrderDir: "sideways", Page: 2, PageSize: 10})
	assert.Contains(t, sql, "ORDER BY created_at DESC")
	assert.Contains(t, sql, "LIMIT")
	assert.NotContains(t, sql, "DELETE")
}
