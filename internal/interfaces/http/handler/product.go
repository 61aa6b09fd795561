package handler

import (
	"github.com/gin-gonic/gin"
	catalogapp "github.com/sisl/eshop/internal/application/catalog"
	"github.com/sisl/eshop/internal/interfaces/http/dto"
)

// ProductHandler handles product administration endpoints
type ProductHandler struct {
	BaseHandler
	productService *catalogapp.ProductService
	maxUpload      int64
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(productService *catalogapp.ProductService, maxUpload int64) *ProductHandler {
	return &ProductHandler{
		productService: productService,
		maxUpload:      maxUpload,
	}
}

// Create godoc
// @Summary      Create a product
// @Description  Create a catalog product. Name and SKU must be unique.
// @Tags         admin-catalog
// @Accept       json
// @Produce      json
// @Param        request body catalogapp.CreateProductRequest true "Product creation request"
// @Success      201 {object} dto.Response{data=catalogapp.ProductResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /api/v1/admin/catalog/products [post]
func (h *ProductHandler) Create(c *gin.Context) {
	var req catalogapp.CreateProductRequest
	if !h.bindJSON(c, &req) {
		return
	}

	product, err := h.productService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, product)
}

// GetByID godoc
// @Summary      Get a product
// @Tags         admin-catalog
// @Produce      json
// @Param        id path string true "Product ID" format(uuid)
// @Success      200 {object} dto.Response{data=catalogapp.ProductResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /api/v1/admin/catalog/products/{id} [get]
func (h *ProductHandler) GetByID(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	product, err := h.productService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}

// List godoc
// @Summary      List products
// @Description  Paginated product list with search, category and brand filters
// @Tags         catalog
// @Produce      json
// @Param        search      query string false "Name or SKU search"
// @Param        category_id query string false "Category ID" format(uuid)
// @Param        brand_id    query string false "Brand ID" format(uuid)
// @Param        page        query int    false "Page number" default(1)
// @Param        page_size   query int    false "Page size" default(20) maximum(100)
// @Success      200 {object} dto.Response{data=[]catalogapp.ProductListResponse,meta=dto.Meta}
// @Router       /api/v1/catalog/products [get]
func (h *ProductHandler) List(c *gin.Context) {
	var filter catalogapp.ProductListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	filter.Page, filter.PageSize = dto.NormalizePage(filter.Page, filter.PageSize)

	products, total, err := h.productService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, products, total, filter.Page, filter.PageSize)
}

// Update godoc
// @Summary      Update a product
// @Tags         admin-catalog
// @Accept       json
// @Produce      json
// @Param        id path string true "Product ID" format(uuid)
// @Param        request body catalogapp.UpdateProductRequest true "Product update request"
// @Success      200 {object} dto.Response{data=catalogapp.ProductResponse}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /api/v1/admin/catalog/products/{id} [put]
func (h *ProductHandler) Update(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req catalogapp.UpdateProductRequest
	if !h.bindJSON(c, &req) {
		return
	}

	product, err := h.productService.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}

// SetRelations replaces the related and compatible product sets
func (h *ProductHandler) SetRelations(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req catalogapp.SetRelationsRequest
	if !h.bindJSON(c, &req) {
		return
	}

	product, err := h.productService.SetRelations(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}

// UploadImage godoc
// @Summary      Upload a product image
// @Description  Accepts JPEG, PNG or GIF in the "image" form field
// @Tags         admin-catalog
// @Accept       multipart/form-data
// @Produce      json
// @Param        id    path     string true "Product ID" format(uuid)
// @Param        image formData file   true "Product image"
// @Success      200 {object} dto.Response{data=catalogapp.ProductResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /api/v1/admin/catalog/products/{id}/image [post]
func (h *ProductHandler) UploadImage(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	upload, ok := h.readImage(c, h.maxUpload)
	if !ok {
		return
	}

	product, err := h.productService.UploadImage(c.Request.Context(), id, upload)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}

// Clone godoc
// @Summary      Clone a product
// @Description  Copy a product under a new model name and SKU. Relations and image are shared.
// @Tags         admin-catalog
// @Produce      json
// @Param        id         path  string true  "Source product ID" format(uuid)
// @Param        model_name query string false "Name of the clone"
// @Param        sku        query string false "SKU of the clone"
// @Success      201 {object} dto.Response{data=catalogapp.ProductResponse}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /api/v1/admin/catalog/products/{id}/clone [post]
func (h *ProductHandler) Clone(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req catalogapp.CloneProductRequest
	if !h.bindQuery(c, &req) {
		return
	}

	product, err := h.productService.Clone(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, product)
}

// Delete godoc
// @Summary      Delete a product
// @Description  Refused while a quotation line references the product
// @Tags         admin-catalog
// @Param        id path string true "Product ID" format(uuid)
// @Success      204
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /api/v1/admin/catalog/products/{id} [delete]
func (h *ProductHandler) Delete(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.productService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
