package handler

import (
	"github.com/gin-gonic/gin"
	catalogapp "github.com/sisl/eshop/internal/application/catalog"
)

// StorefrontHandler serves the public catalog pages
type StorefrontHandler struct {
	BaseHandler
	storefront *catalogapp.StorefrontService
	categories *catalogapp.CategoryService
}

// NewStorefrontHandler creates a new StorefrontHandler
func NewStorefrontHandler(storefront *catalogapp.StorefrontService, categories *catalogapp.CategoryService) *StorefrontHandler {
	return &StorefrontHandler{
		storefront: storefront,
		categories: categories,
	}
}

// Home godoc
// @Summary      Storefront landing page
// @Description  Categories, the latest banner and the newest products of the featured categories
// @Tags         storefront
// @Produce      json
// @Success      200 {object} dto.Response{data=catalogapp.HomeResponse}
// @Router       /api/v1/storefront/home [get]
func (h *StorefrontHandler) Home(c *gin.Context) {
	home, err := h.storefront.Home(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, home)
}

// ProductBySKU godoc
// @Summary      Product detail by SKU
// @Tags         storefront
// @Produce      json
// @Param        sku path string true "Product SKU"
// @Success      200 {object} dto.Response{data=catalogapp.ProductResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /api/v1/catalog/products/sku/{sku} [get]
func (h *StorefrontHandler) ProductBySKU(c *gin.Context) {
	product, err := h.storefront.ProductBySKU(c.Request.Context(), c.Param("sku"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}

// ProductsByCategory godoc
// @Summary      Products of a category
// @Tags         storefront
// @Produce      json
// @Param        name path string true "Category name"
// @Success      200 {object} dto.Response{data=[]catalogapp.ProductListResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /api/v1/catalog/categories/{name}/products [get]
func (h *StorefrontHandler) ProductsByCategory(c *gin.Context) {
	products, err := h.storefront.ProductsByCategoryName(c.Request.Context(), c.Param("name"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, products)
}

// BrandDetail returns a brand with its products
func (h *StorefrontHandler) BrandDetail(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	brand, err := h.storefront.BrandDetail(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, brand)
}

// Search godoc
// @Summary      Search products by name
// @Description  Case-insensitive substring match. An empty query yields an empty list.
// @Tags         storefront
// @Produce      json
// @Param        q query string false "Search text"
// @Success      200 {object} dto.Response{data=[]catalogapp.ProductListResponse}
// @Router       /api/v1/catalog/search [get]
func (h *StorefrontHandler) Search(c *gin.Context) {
	products, err := h.storefront.Search(c.Request.Context(), c.Query("q"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, products)
}

// Categories returns the public category forest
func (h *StorefrontHandler) Categories(c *gin.Context) {
	tree, err := h.categories.Tree(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, tree)
}
