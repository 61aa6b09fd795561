package handler

import (
	"net/http"
	"strings"
	"testing"

	"github.com/google/uuid"
	catalogapp "github.com/sisl/eshop/internal/application/catalog"
	"github.com/sisl/eshop/internal/interfaces/http/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdminCatalog_RequiresStaff(t *testing.T) {
	s := newTestServer(t)
	body := map[string]any{"name": "PLC"}

	t.Run("no token", func(t *testing.T) {
		w := s.do(http.MethodPost, "/api/v1/admin/catalog/categories", body, "")
		requireErrorCode(t, w, http.StatusUnauthorized, dto.ErrCodeUnauthorized)
	})

	t.Run("customer token", func(t *testing.T) {
		w := s.do(http.MethodPost, "/api/v1/admin/catalog/categories", body, s.token(uuid.NewString(), false))
		requireErrorCode(t, w, http.StatusForbidden, dto.ErrCodeForbidden)
	})

	t.Run("garbage token", func(t *testing.T) {
		w := s.do(http.MethodPost, "/api/v1/admin/catalog/categories", body, "not.a.jwt")
		requireErrorCode(t, w, http.StatusUnauthorized, dto.ErrCodeUnauthorized)
	})
}

func TestCategoryHandler(t *testing.T) {
	s := newTestServer(t)

	var root catalogapp.CategoryResponse
	w := s.admin(http.MethodPost, "/api/v1/admin/catalog/categories", map[string]any{"name": "Drives"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	decodeData(t, w, &root)

	var child catalogapp.CategoryResponse
	w = s.admin(http.MethodPost, "/api/v1/admin/catalog/categories", map[string]any{"name": "VFD", "parent_id": root.ID})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	decodeData(t, w, &child)
	require.NotNil(t, child.ParentID)
	assert.Equal(t, root.ID, *child.ParentID)

	t.Run("duplicate name", func(t *testing.T) {
		w := s.admin(http.MethodPost, "/api/v1/admin/catalog/categories", map[string]any{"name": "VFD"})
		requireErrorCode(t, w, http.StatusConflict, "CATEGORY_NAME_EXISTS")
	})

	t.Run("missing name", func(t *testing.T) {
		w := s.admin(http.MethodPost, "/api/v1/admin/catalog/categories", map[string]any{})
		requireErrorCode(t, w, http.StatusBadRequest, dto.ErrCodeValidation)
	})

	t.Run("moving under a descendant is a cycle", func(t *testing.T) {
		w := s.admin(http.MethodPut, "/api/v1/admin/catalog/categories/"+root.ID.String(), map[string]any{"parent_id": child.ID})
		requireErrorCode(t, w, http.StatusUnprocessableEntity, "CATEGORY_CYCLE")
	})

	t.Run("public forest", func(t *testing.T) {
		var forest []catalogapp.CategoryTreeNode
		decodeData(t, s.do(http.MethodGet, "/api/v1/catalog/categories", nil, ""), &forest)
		require.Len(t, forest, 1)
		assert.Equal(t, "Drives", forest[0].Name)
		require.Len(t, forest[0].Children, 1)
		assert.Equal(t, "VFD", forest[0].Children[0].Name)
	})

	t.Run("unknown id", func(t *testing.T) {
		w := s.admin(http.MethodGet, "/api/v1/admin/catalog/categories/"+uuid.NewString(), nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestProductHandler_CreateAndLookup(t *testing.T) {
	s := newTestServer(t)
	fx := s.seedCatalog()

	t.Run("duplicate sku", func(t *testing.T) {
		w := s.admin(http.MethodPost, "/api/v1/admin/catalog/products", map[string]any{
			"category_id":       fx.categoryID,
			"brand_id":          fx.brandID,
			"name":              "Another drive",
			"sku":               "CIPR-GA50C4004ABBA",
			"original_price":    "10",
			"country_of_origin": "Japan",
		})
		requireErrorCode(t, w, http.StatusConflict, "PRODUCT_SKU_EXISTS")
	})

	t.Run("by sku", func(t *testing.T) {
		var product catalogapp.ProductResponse
		decodeData(t, s.do(http.MethodGet, "/api/v1/catalog/products/sku/CIPR-GA50C4004ABBA", nil, ""), &product)
		assert.Equal(t, fx.productID, product.ID)
		assert.Equal(t, "100", product.EffectivePrice.String())
	})

	t.Run("sku none is not found", func(t *testing.T) {
		w := s.do(http.MethodGet, "/api/v1/catalog/products/sku/none", nil, "")
		requireErrorCode(t, w, http.StatusNotFound, dto.ErrCodeNotFound)
	})

	t.Run("category name is case-insensitive", func(t *testing.T) {
		var products []catalogapp.ProductListResponse
		decodeData(t, s.do(http.MethodGet, "/api/v1/catalog/categories/vfd/products", nil, ""), &products)
		require.Len(t, products, 1)
		assert.Equal(t, fx.productID, products[0].ID)
	})

	t.Run("search", func(t *testing.T) {
		var products []catalogapp.ProductListResponse
		decodeData(t, s.do(http.MethodGet, "/api/v1/catalog/search?q=ga500", nil, ""), &products)
		assert.Len(t, products, 1)

		decodeData(t, s.do(http.MethodGet, "/api/v1/catalog/search?q=", nil, ""), &products)
		assert.Empty(t, products)
	})

	t.Run("brand detail lists products", func(t *testing.T) {
		var brand catalogapp.BrandDetailResponse
		decodeData(t, s.do(http.MethodGet, "/api/v1/catalog/brands/"+fx.brandID.String(), nil, ""), &brand)
		assert.Equal(t, "Yaskawa", brand.Name)
		assert.Len(t, brand.Products, 1)
	})

	t.Run("paginated list", func(t *testing.T) {
		var products []catalogapp.ProductListResponse
		env := decodeData(t, s.do(http.MethodGet, "/api/v1/catalog/products?page_size=5", nil, ""), &products)
		require.NotNil(t, env.Meta)
		assert.Equal(t, int64(1), env.Meta.Total)
		assert.Equal(t, 1, env.Meta.Page)
		assert.Equal(t, 5, env.Meta.PageSize)
	})

	t.Run("page size over the limit is rejected", func(t *testing.T) {
		w := s.do(http.MethodGet, "/api/v1/catalog/products?page_size=500", nil, "")
		requireErrorCode(t, w, http.StatusBadRequest, dto.ErrCodeValidation)
	})

	t.Run("home features the VFD category", func(t *testing.T) {
		var home catalogapp.HomeResponse
		decodeData(t, s.do(http.MethodGet, "/api/v1/storefront/home", nil, ""), &home)
		assert.Len(t, home.Categories, 1)
		assert.Nil(t, home.Banner)
		require.NotEmpty(t, home.Featured)
		assert.Equal(t, "VFD", home.Featured[0].Name)
		assert.Len(t, home.Featured[0].Products, 1)
	})
}

func TestProductHandler_Clone(t *testing.T) {
	s := newTestServer(t)
	fx := s.seedCatalog()
	path := "/api/v1/admin/catalog/products/" + fx.productID.String() + "/clone"

	var clone catalogapp.ProductResponse
	w := s.admin(http.MethodPost, path+"?model_name=GA500+4kW&sku=CIPR-GA50C4009ABBA", nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	decodeData(t, w, &clone)
	assert.NotEqual(t, fx.productID, clone.ID)
	assert.Equal(t, "GA500 4kW", clone.Name)
	assert.Equal(t, fx.categoryID, clone.CategoryID)

	t.Run("name required", func(t *testing.T) {
		w := s.admin(http.MethodPost, path+"?sku=X-1", nil)
		requireErrorCode(t, w, http.StatusBadRequest, "CLONE_NAME_REQUIRED")
	})

	t.Run("sku taken", func(t *testing.T) {
		w := s.admin(http.MethodPost, path+"?model_name=Other&sku=CIPR-GA50C4009ABBA", nil)
		assert.Equal(t, http.StatusConflict, w.Code, w.Body.String())
	})
}

func TestProductHandler_Relations(t *testing.T) {
	s := newTestServer(t)
	fx := s.seedCatalog()
	option := s.createProduct(fx.categoryID, fx.brandID, "Braking resistor", "BR-200")
	path := "/api/v1/admin/catalog/products/" + fx.productID.String() + "/relations"

	var product catalogapp.ProductResponse
	w := s.admin(http.MethodPut, path, map[string]any{"compatible_modules": []uuid.UUID{option.ID}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	decodeData(t, w, &product)
	assert.Equal(t, []uuid.UUID{option.ID}, product.CompatibleModules)

	t.Run("self reference", func(t *testing.T) {
		w := s.admin(http.MethodPut, path, map[string]any{"related_products": []uuid.UUID{fx.productID}})
		requireErrorCode(t, w, http.StatusBadRequest, "PRODUCT_SELF_REFERENCE")
	})
}

func TestImageUploads(t *testing.T) {
	s := newTestServer(t)
	fx := s.seedCatalog()

	t.Run("product png", func(t *testing.T) {
		var product catalogapp.ProductResponse
		w := s.upload("/api/v1/admin/catalog/products/"+fx.productID.String()+"/image", "drive.png", pngBytes)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		decodeData(t, w, &product)
		assert.True(t, strings.HasPrefix(product.ImageURL, "/media/products/"), product.ImageURL)
		assert.True(t, strings.HasSuffix(product.ImageURL, ".png"), product.ImageURL)
	})

	t.Run("brand logo gif", func(t *testing.T) {
		var brand catalogapp.BrandResponse
		w := s.upload("/api/v1/admin/catalog/brands/"+fx.brandID.String()+"/logo", "logo.gif", gifBytes)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		decodeData(t, w, &brand)
		assert.True(t, strings.HasPrefix(brand.LogoURL, "/media/brand_logos/"), brand.LogoURL)
	})

	t.Run("declared png that is text", func(t *testing.T) {
		w := s.upload("/api/v1/admin/catalog/products/"+fx.productID.String()+"/image", "fake.png", []byte("just some text"))
		requireErrorCode(t, w, http.StatusBadRequest, "INVALID_IMAGE_TYPE")
		assert.Contains(t, decode(t, w).Error.Message, "product images")
	})

	t.Run("banner", func(t *testing.T) {
		var banner catalogapp.BannerResponse
		w := s.admin(http.MethodPost, "/api/v1/admin/catalog/banners", map[string]any{"title": "Spring sale"})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		decodeData(t, w, &banner)

		w = s.upload("/api/v1/admin/catalog/banners/"+banner.ID.String()+"/image", "banner.png", pngBytes)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		decodeData(t, w, &banner)
		assert.NotEmpty(t, banner.ImageURL)
	})

	t.Run("missing file", func(t *testing.T) {
		w := s.admin(http.MethodPost, "/api/v1/admin/catalog/products/"+fx.productID.String()+"/image", nil)
		requireErrorCode(t, w, http.StatusBadRequest, dto.ErrCodeBadRequest)
	})

	t.Run("too large", func(t *testing.T) {
		big := append([]byte("\x89PNG\r\n\x1a\n"), make([]byte, 2<<20)...)
		w := s.upload("/api/v1/admin/catalog/products/"+fx.productID.String()+"/image", "big.png", big)
		requireErrorCode(t, w, http.StatusRequestEntityTooLarge, dto.ErrCodeRequestTooLarge)
	})
}

func TestCatalogDeletes(t *testing.T) {
	s := newTestServer(t)
	fx := s.seedCatalog()

	t.Run("category with products", func(t *testing.T) {
		w := s.admin(http.MethodDelete, "/api/v1/admin/catalog/categories/"+fx.categoryID.String(), nil)
		requireErrorCode(t, w, http.StatusConflict, "CATEGORY_HAS_PRODUCTS")
	})

	t.Run("brand with products", func(t *testing.T) {
		w := s.admin(http.MethodDelete, "/api/v1/admin/catalog/brands/"+fx.brandID.String(), nil)
		requireErrorCode(t, w, http.StatusConflict, "BRAND_HAS_PRODUCTS")
	})

	t.Run("product quoted by a customer", func(t *testing.T) {
		s.submitQuotation(fx.productID, "")
		w := s.admin(http.MethodDelete, "/api/v1/admin/catalog/products/"+fx.productID.String(), nil)
		requireErrorCode(t, w, http.StatusConflict, "PRODUCT_IN_USE")
	})

	t.Run("unused product", func(t *testing.T) {
		spare := s.createProduct(fx.categoryID, fx.brandID, "Spare fan", "FAN-1")
		w := s.admin(http.MethodDelete, "/api/v1/admin/catalog/products/"+spare.ID.String(), nil)
		assert.Equal(t, http.StatusNoContent, w.Code)

		w = s.admin(http.MethodGet, "/api/v1/admin/catalog/products/"+spare.ID.String(), nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
