package handler

import (
	"github.com/gin-gonic/gin"
	tradeapp "github.com/sisl/eshop/internal/application/trade"
	"github.com/sisl/eshop/internal/interfaces/http/dto"
)

// AdminQuotationHandler serves the order management console
type AdminQuotationHandler struct {
	BaseHandler
	quotationService    *tradeapp.QuotationService
	confirmationService *tradeapp.ConfirmationService
}

// NewAdminQuotationHandler creates a new AdminQuotationHandler
func NewAdminQuotationHandler(
	quotationService *tradeapp.QuotationService,
	confirmationService *tradeapp.ConfirmationService,
) *AdminQuotationHandler {
	return &AdminQuotationHandler{
		quotationService:    quotationService,
		confirmationService: confirmationService,
	}
}

// List godoc
// @Summary      List quotations
// @Description  Newest first, filtered by status and searched by order number, subject or customer
// @Tags         admin-quotations
// @Produce      json
// @Param        status    query string false "Status" Enums(PENDING, CONFIRMED, CANCELED, DELIVERED)
// @Param        search    query string false "Search text"
// @Param        page      query int    false "Page number" default(1)
// @Param        page_size query int    false "Page size" default(20) maximum(100)
// @Success      200 {object} dto.Response{data=[]tradeapp.QuotationListItemResponse,meta=dto.Meta}
// @Security     BearerAuth
// @Router       /api/v1/admin/quotations [get]
func (h *AdminQuotationHandler) List(c *gin.Context) {
	var filter tradeapp.QuotationListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	filter.Page, filter.PageSize = dto.NormalizePage(filter.Page, filter.PageSize)

	items, total, err := h.quotationService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, items, total, filter.Page, filter.PageSize)
}

// GetByID returns a quotation with its lines
func (h *AdminQuotationHandler) GetByID(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	quotation, err := h.quotationService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, quotation)
}

// UpdateHeader godoc
// @Summary      Edit the quotation header
// @Tags         admin-quotations
// @Accept       json
// @Produce      json
// @Param        id path string true "Quotation ID" format(uuid)
// @Param        request body tradeapp.UpdateQuotationHeaderRequest true "Header fields"
// @Success      200 {object} dto.Response{data=tradeapp.QuotationResponse}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /api/v1/admin/quotations/{id} [patch]
func (h *AdminQuotationHandler) UpdateHeader(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req tradeapp.UpdateQuotationHeaderRequest
	if !h.bindJSON(c, &req) {
		return
	}

	quotation, err := h.quotationService.UpdateHeader(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, quotation)
}

// AddLine appends a line to a quotation
func (h *AdminQuotationHandler) AddLine(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req tradeapp.QuotationLineRequest
	if !h.bindJSON(c, &req) {
		return
	}

	quotation, err := h.quotationService.AddLine(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, quotation)
}

// UpdateLine edits one line of a quotation
func (h *AdminQuotationHandler) UpdateLine(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	lineID, ok := h.parseUUIDParam(c, "line_id")
	if !ok {
		return
	}
	var req tradeapp.UpdateQuotationLineRequest
	if !h.bindJSON(c, &req) {
		return
	}

	quotation, err := h.quotationService.UpdateLine(c.Request.Context(), id, lineID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, quotation)
}

// DeleteLine removes one line and returns the updated quotation
func (h *AdminQuotationHandler) DeleteLine(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	lineID, ok := h.parseUUIDParam(c, "line_id")
	if !ok {
		return
	}

	quotation, err := h.quotationService.DeleteLine(c.Request.Context(), id, lineID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, quotation)
}

// ComputeTotal recomputes and stores the quotation total
func (h *AdminQuotationHandler) ComputeTotal(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	quotation, err := h.quotationService.ComputeTotal(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, quotation)
}

// ChangeStatus godoc
// @Summary      Change the quotation status
// @Description  Moving to CONFIRMED runs the accounting sync
// @Tags         admin-quotations
// @Accept       json
// @Produce      json
// @Param        id path string true "Quotation ID" format(uuid)
// @Param        request body tradeapp.ChangeStatusRequest true "Target status"
// @Success      200 {object} dto.Response{data=tradeapp.QuotationResponse}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /api/v1/admin/quotations/{id}/status [post]
func (h *AdminQuotationHandler) ChangeStatus(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req tradeapp.ChangeStatusRequest
	if !h.bindJSON(c, &req) {
		return
	}

	quotation, err := h.confirmationService.ChangeStatus(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, quotation)
}

// Confirm godoc
// @Summary      Confirm a quotation
// @Description  Pushes the customer and a sales order to accounting, then marks the quotation confirmed
// @Tags         admin-quotations
// @Produce      json
// @Param        id path string true "Quotation ID" format(uuid)
// @Success      200 {object} dto.Response{data=tradeapp.QuotationResponse}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      502 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /api/v1/admin/quotations/{id}/confirm [post]
func (h *AdminQuotationHandler) Confirm(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	quotation, err := h.confirmationService.Confirm(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, quotation)
}

// ConfirmAsync queues the accounting sync and answers 202
func (h *AdminQuotationHandler) ConfirmAsync(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	ack, err := h.confirmationService.ConfirmAsync(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Accepted(c, ack)
}

// BulkConfirm godoc
// @Summary      Confirm several quotations
// @Description  Each quotation is confirmed on its own; one failure does not stop the rest
// @Tags         admin-quotations
// @Accept       json
// @Produce      json
// @Param        request body tradeapp.BulkConfirmRequest true "Quotation IDs"
// @Success      200 {object} dto.Response{data=[]tradeapp.BulkConfirmResult}
// @Security     BearerAuth
// @Router       /api/v1/admin/quotations/bulk-confirm [post]
func (h *AdminQuotationHandler) BulkConfirm(c *gin.Context) {
	var req tradeapp.BulkConfirmRequest
	if !h.bindJSON(c, &req) {
		return
	}

	h.Success(c, h.confirmationService.BulkConfirm(c.Request.Context(), req))
}
