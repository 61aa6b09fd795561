package handler

import (
	"github.com/gin-gonic/gin"
	catalogapp "github.com/sisl/eshop/internal/application/catalog"
	"github.com/sisl/eshop/internal/domain/shared"
	"github.com/sisl/eshop/internal/interfaces/http/dto"
)

// ListQuery holds the paging and search parameters shared by simple list endpoints
type ListQuery struct {
	Search   string `form:"search"`
	Page     int    `form:"page" binding:"min=0"`
	PageSize int    `form:"page_size" binding:"min=0,max=100"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// toFilter applies the paging defaults and converts to a repository filter
func (q ListQuery) toFilter() shared.Filter {
	filter := shared.DefaultFilter()
	filter.Page, filter.PageSize = dto.NormalizePage(q.Page, q.PageSize)
	filter.Search = q.Search
	if q.OrderBy != "" {
		filter.OrderBy = q.OrderBy
	}
	if q.OrderDir != "" {
		filter.OrderDir = q.OrderDir
	}
	return filter
}

// BrandHandler handles brand administration endpoints
type BrandHandler struct {
	BaseHandler
	brandService *catalogapp.BrandService
	maxUpload    int64
}

// NewBrandHandler creates a new BrandHandler. maxUpload bounds logo uploads.
func NewBrandHandler(brandService *catalogapp.BrandService, maxUpload int64) *BrandHandler {
	return &BrandHandler{
		brandService: brandService,
		maxUpload:    maxUpload,
	}
}

// Create godoc
// @Summary      Create a brand
// @Tags         admin-catalog
// @Accept       json
// @Produce      json
// @Param        request body catalogapp.CreateBrandRequest true "Brand creation request"
// @Success      201 {object} dto.Response{data=catalogapp.BrandResponse}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /api/v1/admin/catalog/brands [post]
func (h *BrandHandler) Create(c *gin.Context) {
	var req catalogapp.CreateBrandRequest
	if !h.bindJSON(c, &req) {
		return
	}

	brand, err := h.brandService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, brand)
}

// GetByID returns a single brand
func (h *BrandHandler) GetByID(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	brand, err := h.brandService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, brand)
}

// List godoc
// @Summary      List brands
// @Tags         admin-catalog
// @Produce      json
// @Param        search    query string false "Name search"
// @Param        page      query int    false "Page number" default(1)
// @Param        page_size query int    false "Page size" default(20) maximum(100)
// @Success      200 {object} dto.Response{data=[]catalogapp.BrandResponse,meta=dto.Meta}
// @Security     BearerAuth
// @Router       /api/v1/admin/catalog/brands [get]
func (h *BrandHandler) List(c *gin.Context) {
	var query ListQuery
	if !h.bindQuery(c, &query) {
		return
	}
	filter := query.toFilter()

	brands, total, err := h.brandService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, brands, total, filter.Page, filter.PageSize)
}

// Update updates a brand's name or description
func (h *BrandHandler) Update(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req catalogapp.UpdateBrandRequest
	if !h.bindJSON(c, &req) {
		return
	}

	brand, err := h.brandService.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, brand)
}

// UploadLogo godoc
// @Summary      Upload a brand logo
// @Description  Accepts JPEG, PNG or GIF in the "image" form field
// @Tags         admin-catalog
// @Accept       multipart/form-data
// @Produce      json
// @Param        id    path     string true "Brand ID" format(uuid)
// @Param        image formData file   true "Logo image"
// @Success      200 {object} dto.Response{data=catalogapp.BrandResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      413 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /api/v1/admin/catalog/brands/{id}/logo [post]
func (h *BrandHandler) UploadLogo(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	upload, ok := h.readImage(c, h.maxUpload)
	if !ok {
		return
	}

	brand, err := h.brandService.UploadLogo(c.Request.Context(), id, upload)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, brand)
}

// Delete removes a brand that no product references
func (h *BrandHandler) Delete(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.brandService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
