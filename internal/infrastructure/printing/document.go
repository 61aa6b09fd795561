package printing

import (
	"context"
	_ "embed"
	"fmt"
	"html/template"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sisl/eshop/internal/domain/trade"
	"go.uber.org/zap"
)

//go:embed templates/quotation.html
var quotationTemplate string

// DocumentPrefix is the storage prefix quotation PDFs are written under
const DocumentPrefix = "quotations/"

// DocumentKey returns the storage key for a quotation PDF rendered at now
func DocumentKey(quotationID uuid.UUID, now time.Time) string {
	return fmt.Sprintf("%squotation_%s_%s.pdf", DocumentPrefix, quotationID, now.Format("20060102150405"))
}

// QuotationView is the data bound to the quotation template
type QuotationView struct {
	OrderNumber     string
	Subject         string
	Status          string
	CreatedAt       time.Time
	CustomerName    string
	Phone           string
	Email           string
	DeliveryAddress string
	Notes           string
	Lines           []QuotationLineView
	TotalAmount     decimal.Decimal
}

// QuotationLineView is one row of the quotation table
type QuotationLineView struct {
	LineNo          int
	ProductName     string
	SKU             string
	Description     string
	Quantity        int
	UnitPrice       decimal.Decimal
	DiscountPercent decimal.Decimal
	LineTotal       decimal.Decimal
}

// NewQuotationView flattens a quotation into its template view. The total is
// recomputed from the lines.
func NewQuotationView(q *trade.Quotation) QuotationView {
	view := QuotationView{
		OrderNumber:     q.OrderNumber,
		Subject:         q.Subject,
		Status:          q.Status.String(),
		CreatedAt:       q.CreatedAt,
		CustomerName:    q.DisplayName(),
		Phone:           q.DisplayPhone(),
		Email:           q.DisplayEmail(),
		DeliveryAddress: q.DisplayDeliveryAddress(),
		Notes:           q.Notes,
		TotalAmount:     q.ComputeTotal(),
		Lines:           make([]QuotationLineView, 0, len(q.Lines)),
	}
	for i := range q.Lines {
		line := &q.Lines[i]
		view.Lines = append(view.Lines, QuotationLineView{
			LineNo:          line.LineNo,
			ProductName:     line.ProductName,
			SKU:             line.ProductSKU,
			Description:     line.Description,
			Quantity:        line.Quantity,
			UnitPrice:       line.UnitPrice,
			DiscountPercent: line.DiscountPercent,
			LineTotal:       line.LineTotal(),
		})
	}
	return view
}

// QuotationDocumentBuilder renders quotations to PDF
type QuotationDocumentBuilder struct {
	engine   *TemplateEngine
	tmpl     *template.Template
	renderer PDFRenderer
	logger   *zap.Logger
}

// NewQuotationDocumentBuilder parses the embedded quotation template
func NewQuotationDocumentBuilder(renderer PDFRenderer, engine *TemplateEngine, logger *zap.Logger) (*QuotationDocumentBuilder, error) {
	if engine == nil {
		engine = NewTemplateEngine()
	}
	tmpl, err := engine.Parse("quotation", quotationTemplate)
	if err != nil {
		return nil, err
	}
	return &QuotationDocumentBuilder{
		engine:   engine,
		tmpl:     tmpl,
		renderer: renderer,
		logger:   logger.Named("quotation_document"),
	}, nil
}

// RenderHTML binds the quotation to the template
func (b *QuotationDocumentBuilder) RenderHTML(q *trade.Quotation) (string, error) {
	return b.engine.Execute(b.tmpl, NewQuotationView(q))
}

// Build renders the quotation to PDF bytes
func (b *QuotationDocumentBuilder) Build(ctx context.Context, q *trade.Quotation) ([]byte, error) {
	html, err := b.RenderHTML(q)
	if err != nil {
		return nil, err
	}

	result, err := b.renderer.Render(ctx, &RenderRequest{
		HTML:       html,
		PaperSize:  PaperSizeA4,
		Margins:    DefaultMargins(),
		Title:      "Quotation " + q.OrderNumber,
		FooterHTML: footerTemplate(q.OrderNumber),
	})
	if err != nil {
		return nil, err
	}

	b.logger.Info("Quotation document rendered",
		zap.String("quotation_id", q.ID.String()),
		zap.String("order_number", q.OrderNumber),
		zap.Int("pages", result.PageCount),
		zap.Duration("duration", result.RenderDuration))
	return result.PDFData, nil
}

// footerTemplate uses Chrome's pageNumber/totalPages classes; wkhtmltopdf
// leaves them empty and prints the order number only
func footerTemplate(orderNumber string) string {
	return `<div style="font-size:8px;width:100%;text-align:center;color:#666;">` +
		template.HTMLEscapeString(orderNumber) +
		` &middot; <span class="pageNumber"></span>/<span class="totalPages"></span></div>`
}
