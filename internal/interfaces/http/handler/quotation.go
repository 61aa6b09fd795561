package handler

import (
	"io"
	"mime"
	"net/http"

	"github.com/gin-gonic/gin"
	tradeapp "github.com/sisl/eshop/internal/application/trade"
	ctxlog "github.com/sisl/eshop/internal/infrastructure/logger"
	"github.com/sisl/eshop/internal/interfaces/http/middleware"
	"go.uber.org/zap"
)

// QuotationHandler serves the customer side of the quotation workflow
type QuotationHandler struct {
	BaseHandler
	quotationService *tradeapp.QuotationService
}

// NewQuotationHandler creates a new QuotationHandler
func NewQuotationHandler(quotationService *tradeapp.QuotationService) *QuotationHandler {
	return &QuotationHandler{
		quotationService: quotationService,
	}
}

// Submit godoc
// @Summary      Request a discount quotation
// @Description  Stores the quotation and answers at once. The PDF and the notification mail follow in the background.
// @Tags         quotations
// @Accept       json
// @Produce      json
// @Param        request body tradeapp.SubmitQuotationRequest true "Quotation request"
// @Success      202 {object} dto.Response{data=tradeapp.QuotationResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /api/v1/quotations [post]
func (h *QuotationHandler) Submit(c *gin.Context) {
	var req tradeapp.SubmitQuotationRequest
	if !h.bindJSON(c, &req) {
		return
	}

	quotation, err := h.quotationService.Submit(c.Request.Context(), middleware.GetCustomerID(c), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Accepted(c, quotation)
}

// GetByID godoc
// @Summary      Get a quotation
// @Description  Includes the document status so clients can poll until the PDF is ready
// @Tags         quotations
// @Produce      json
// @Param        id path string true "Quotation ID" format(uuid)
// @Success      200 {object} dto.Response{data=tradeapp.QuotationResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /api/v1/quotations/{id} [get]
func (h *QuotationHandler) GetByID(c *gin.Context) {
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

// Document godoc
// @Summary      Download the quotation PDF
// @Tags         quotations
// @Produce      application/pdf
// @Param        id path string true "Quotation ID" format(uuid)
// @Success      200 {file} binary
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /api/v1/quotations/{id}/document [get]
func (h *QuotationHandler) Document(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	doc, err := h.quotationService.OpenDocument(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	defer doc.Content.Close()

	c.Header("Content-Type", "application/pdf")
	c.Header("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": doc.Filename}))
	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, doc.Content); err != nil {
		// Headers are already sent
		ctxlog.L(c.Request.Context()).Warn("Quotation document download interrupted",
			zap.String("quotation_id", id.String()),
			zap.Error(err),
		)
	}
}
