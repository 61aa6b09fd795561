package catalog

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validDetails() ProductDetails {
	discounted := decimal.NewFromInt(900)
	return ProductDetails{
		CategoryID:      uuid.New(),
		BrandID:         uuid.New(),
		Name:            "FR-E820-0.4K-1",
		SKU:             "FR-E820-0.4K",
		OriginalPrice:   decimal.NewFromFloat(1250.50),
		DiscountedPrice: &discounted,
		CountryOfOrigin: "Japan",
		Description:     "Compact inverter",
		Specifications: Specifications{
			InputVoltage:  "3-phase 200V",
			RatedCurrent:  "2.5A",
			ControlMethod: "V/F",
		},
	}
}

func TestNewProduct(t *testing.T) {
	t.Run("creates product with valid details", func(t *testing.T) {
		details := validDetails()
		product, err := NewProduct(details)
		require.NoError(t, err)

		assert.NotEqual(t, uuid.Nil, product.ID)
		assert.Equal(t, details.Name, product.Name)
		assert.Equal(t, details.SKU, product.SKU)
		assert.True(t, details.OriginalPrice.Equal(product.OriginalPrice))
		assert.Equal(t, "V/F", product.Specifications.ControlMethod)
		assert.Empty(t, product.RelatedProductIDs)
		assert.Empty(t, product.CompatibleModuleIDs)
		assert.Equal(t, 1, product.GetVersion())

		events := product.GetDomainEvents()
		require.Len(t, events, 1)
		assert.Equal(t, EventTypeProductCreated, events[0].EventType())
	})

	t.Run("trims name and sku", func(t *testing.T) {
		details := validDetails()
		details.Name = "  FX5U-32MR  "
		details.SKU = " FX5U-32MR/ES "
		product, err := NewProduct(details)
		require.NoError(t, err)
		assert.Equal(t, "FX5U-32MR", product.Name)
		assert.Equal(t, "FX5U-32MR/ES", product.SKU)
	})

	tests := []struct {
		name   string
		mutate func(d *ProductDetails)
		code   string
	}{
		{"missing category", func(d *ProductDetails) { d.CategoryID = uuid.Nil }, "INVALID_CATEGORY"},
		{"missing brand", func(d *ProductDetails) { d.BrandID = uuid.Nil }, "INVALID_BRAND"},
		{"empty name", func(d *ProductDetails) { d.Name = "" }, "INVALID_NAME"},
		{"empty sku", func(d *ProductDetails) { d.SKU = "   " }, "INVALID_SKU"},
		{"negative price", func(d *ProductDetails) { d.OriginalPrice = decimal.NewFromInt(-1) }, "INVALID_PRICE"},
		{"missing country", func(d *ProductDetails) { d.CountryOfOrigin = "" }, "INVALID_COUNTRY"},
		{"oversized specification", func(d *ProductDetails) {
			d.Specifications.Weight = string(make([]byte, 256))
		}, "INVALID_SPECIFICATION"},
	}
	for _, tt := range tests {
		t.Run("rejects "+tt.name, func(t *testing.T) {
			details := validDetails()
			tt.mutate(&details)
			_, err := NewProduct(details)
			require.Error(t, err)
			assertDomainCode(t, err, tt.code)
		})
	}
}

func TestProduct_RelationSets(t *testing.T) {
	product, err := NewProduct(validDetails())
	require.NoError(t, err)

	a, b := uuid.New(), uuid.New()

	t.Run("deduplicates and keeps order", func(t *testing.T) {
		require.NoError(t, product.SetRelatedProducts([]uuid.UUID{a, b, a, uuid.Nil}))
		assert.Equal(t, []uuid.UUID{a, b}, product.RelatedProductIDs)
	})

	t.Run("rejects self reference", func(t *testing.T) {
		err := product.SetCompatibleModules([]uuid.UUID{product.ID})
		assertDomainCode(t, err, "PRODUCT_SELF_REFERENCE")
	})

	t.Run("sets are independent", func(t *testing.T) {
		require.NoError(t, product.SetCompatibleModules([]uuid.UUID{b}))
		assert.Equal(t, []uuid.UUID{a, b}, product.RelatedProductIDs)
		assert.Equal(t, []uuid.UUID{b}, product.CompatibleModuleIDs)
	})
}

func TestProduct_Clone(t *testing.T) {
	source, err := NewProduct(validDetails())
	require.NoError(t, err)
	source.SetImage(Image{Key: "products/src.png", URL: "/media/products/src.png"})
	related := []uuid.UUID{uuid.New(), uuid.New()}
	modules := []uuid.UUID{uuid.New()}
	require.NoError(t, source.SetRelatedProducts(related))
	require.NoError(t, source.SetCompatibleModules(modules))

	t.Run("copies every field under a new identity", func(t *testing.T) {
		clone, err := source.Clone("FR-E820-0.75K-1", "FR-E820-0.75K")
		require.NoError(t, err)

		assert.NotEqual(t, source.ID, clone.ID)
		assert.Equal(t, "FR-E820-0.75K-1", clone.Name)
		assert.Equal(t, "FR-E820-0.75K", clone.SKU)
		assert.Equal(t, source.CategoryID, clone.CategoryID)
		assert.Equal(t, source.BrandID, clone.BrandID)
		assert.True(t, source.OriginalPrice.Equal(clone.OriginalPrice))
		require.NotNil(t, clone.DiscountedPrice)
		assert.True(t, source.DiscountedPrice.Equal(*clone.DiscountedPrice))
		assert.Equal(t, source.CountryOfOrigin, clone.CountryOfOrigin)
		assert.Equal(t, source.Description, clone.Description)
		assert.Equal(t, source.Specifications, clone.Specifications)
		assert.Equal(t, source.Image, clone.Image)
		assert.Equal(t, related, clone.RelatedProductIDs)
		assert.Equal(t, modules, clone.CompatibleModuleIDs)

		events := clone.GetDomainEvents()
		require.Len(t, events, 1)
		cloned, ok := events[0].(*ProductClonedEvent)
		require.True(t, ok)
		assert.Equal(t, source.ID, cloned.SourceProductID)
	})

	t.Run("clone does not share slices with source", func(t *testing.T) {
		clone, err := source.Clone("X-1", "X-1")
		require.NoError(t, err)
		clone.RelatedProductIDs[0] = uuid.New()
		assert.Equal(t, related[0], source.RelatedProductIDs[0])
	})

	t.Run("requires model name", func(t *testing.T) {
		_, err := source.Clone("  ", "NEW-SKU")
		require.Error(t, err)
		assert.Equal(t, "Model Name is required to clone the product.", err.Error())
	})

	t.Run("requires sku", func(t *testing.T) {
		_, err := source.Clone("New name", "")
		require.Error(t, err)
		assert.Equal(t, "SKU is required to clone the product.", err.Error())
	})
}

func TestProduct_EffectivePrice(t *testing.T) {
	details := validDetails()
	details.DiscountedPrice = nil
	product, err := NewProduct(details)
	require.NoError(t, err)
	assert.True(t, product.EffectivePrice().Equal(details.OriginalPrice))

	discounted := decimal.NewFromInt(10)
	details.DiscountedPrice = &discounted
	require.NoError(t, product.Update(details))
	assert.True(t, product.EffectivePrice().Equal(discounted))
}

func TestProduct_UpdateEmitsPriceChange(t *testing.T) {
	product, err := NewProduct(validDetails())
	require.NoError(t, err)
	product.ClearDomainEvents()

	details := product.Details()
	details.OriginalPrice = decimal.NewFromInt(999)
	require.NoError(t, product.Update(details))

	events := product.GetDomainEvents()
	require.Len(t, events, 2)
	assert.Equal(t, EventTypeProductUpdated, events[0].EventType())
	assert.Equal(t, EventTypeProductPriceChanged, events[1].EventType())
	assert.Equal(t, 2, product.GetVersion())
}
