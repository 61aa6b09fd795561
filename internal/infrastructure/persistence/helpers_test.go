package persistence

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sisl/eshop/internal/domain/catalog"
	"github.com/sisl/eshop/internal/domain/shared"
	"github.com/sisl/eshop/internal/infrastructure/persistence/models"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB opens an in-memory SQLite database with every table migrated
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), GormConfig(logger.Default.LogMode(logger.Silent)))
	require.NoError(t, err)

	// Every pooled connection would otherwise get its own empty in-memory database
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	err = db.AutoMigrate(
		&models.CategoryModel{},
		&models.BrandModel{},
		&models.BannerModel{},
		&models.ProductModel{},
		&models.ProductRelationModel{},
		&models.QuotationModel{},
		&models.QuotationLineModel{},
	)
	require.NoError(t, err)

	return db
}

func requireDomainCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var domainErr *shared.DomainError
	require.True(t, errors.As(err, &domainErr), "expected DomainError, got %T: %v", err, err)
	require.Equal(t, code, domainErr.Code)
}

func newTestProduct(t *testing.T, categoryID, brandID uuid.UUID, name, sku string) *catalog.Product {
	t.Helper()
	product, err := catalog.NewProduct(catalog.ProductDetails{
		CategoryID:      categoryID,
		BrandID:         brandID,
		Name:            name,
		SKU:             sku,
		OriginalPrice:   decimal.RequireFromString("199.99"),
		CountryOfOrigin: "Japan",
	})
	require.NoError(t, err)
	return product
}
