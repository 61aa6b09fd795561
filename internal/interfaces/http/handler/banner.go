package handler

import (
	"github.com/gin-gonic/gin"
	catalogapp "github.com/sisl/eshop/internal/application/catalog"
)

// BannerHandler handles storefront banner administration
type BannerHandler struct {
	BaseHandler
	bannerService *catalogapp.BannerService
	maxUpload     int64
}

// NewBannerHandler creates a new BannerHandler
func NewBannerHandler(bannerService *catalogapp.BannerService, maxUpload int64) *BannerHandler {
	return &BannerHandler{
		bannerService: bannerService,
		maxUpload:     maxUpload,
	}
}

func (h *BannerHandler) Create(c *gin.Context) {
	var req catalogapp.BannerRequest
	if !h.bindJSON(c, &req) {
		return
	}

	banner, err := h.bannerService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, banner)
}

func (h *BannerHandler) GetByID(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	banner, err := h.bannerService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, banner)
}

func (h *BannerHandler) List(c *gin.Context) {
	var query ListQuery
	if !h.bindQuery(c, &query) {
		return
	}
	filter := query.toFilter()

	banners, total, err := h.bannerService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, banners, total, filter.Page, filter.PageSize)
}

func (h *BannerHandler) Update(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req catalogapp.BannerRequest
	if !h.bindJSON(c, &req) {
		return
	}

	banner, err := h.bannerService.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, banner)
}

// UploadImage replaces the banner picture from the "image" form field
func (h *BannerHandler) UploadImage(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	upload, ok := h.readImage(c, h.maxUpload)
	if !ok {
		return
	}

	banner, err := h.bannerService.UploadImage(c.Request.Context(), id, upload)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, banner)
}

func (h *BannerHandler) Delete(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.bannerService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
