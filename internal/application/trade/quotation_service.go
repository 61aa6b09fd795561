package trade

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"time"

	"github.com/google/uuid"
	"github.com/sisl/eshop/internal/domain/catalog"
	"github.com/sisl/eshop/internal/domain/shared"
	"github.com/sisl/eshop/internal/domain/trade"
	"github.com/sisl/eshop/internal/infrastructure/scheduler"
	"github.com/sisl/eshop/internal/infrastructure/storage"
	"github.com/sisl/eshop/internal/infrastructure/telemetry"
	"go.uber.org/zap"

	ctxlog "github.com/sisl/eshop/internal/infrastructure/logger"
)

const quotationServiceName = "QuotationService"

// TaskEnqueuer queues background work about a quotation
type TaskEnqueuer interface {
	Enqueue(kind scheduler.TaskKind, quotationID uuid.UUID) (*scheduler.Task, error)
}

// QuotationOption configures the quotation services
type QuotationOption func(*quotationOptions)

type quotationOptions struct {
	metrics *telemetry.ShopMetrics
	now     func() time.Time
}

// WithMetrics records workflow metrics
func WithMetrics(metrics *telemetry.ShopMetrics) QuotationOption {
	return func(o *quotationOptions) {
		o.metrics = metrics
	}
}

// WithClock overrides the time source used for order numbers and confirmation stamps
func WithClock(now func() time.Time) QuotationOption {
	return func(o *quotationOptions) {
		o.now = now
	}
}

func buildQuotationOptions(opts []QuotationOption) quotationOptions {
	o := quotationOptions{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// QuotationService handles submission and staff editing of quotations
type QuotationService struct {
	quotationRepo  trade.QuotationRepository
	productRepo    catalog.ProductRepository
	objects        storage.ObjectStorage
	eventPublisher shared.EventPublisher
	metrics        *telemetry.ShopMetrics
	logger         *zap.Logger
	now            func() time.Time
}

// NewQuotationService creates a new QuotationService
func NewQuotationService(
	quotationRepo trade.QuotationRepository,
	productRepo catalog.ProductRepository,
	objects storage.ObjectStorage,
	logger *zap.Logger,
	opts ...QuotationOption,
) *QuotationService {
	o := buildQuotationOptions(opts)
	return &QuotationService{
		quotationRepo: quotationRepo,
		productRepo:   productRepo,
		objects:       objects,
		metrics:       o.metrics,
		logger:        logger.Named("quotation_service"),
		now:           o.now,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *QuotationService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Submit stores a new PENDING quotation with its lines, computes its total and
// announces it. Rendering and the operations email happen in the background.
func (s *QuotationService) Submit(ctx context.Context, customerID *uuid.UUID, req SubmitQuotationRequest) (*QuotationResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, quotationServiceName, "Submit",
		telemetry.SpanAttrLineCount, len(req.Lines))
	defer span.End()

	q, err := trade.NewQuotation(customerID, trade.QuotationHeader{
		CustomerName:    req.CustomerName,
		PhoneNo:         req.PhoneNo,
		Email:           req.Email,
		DeliveryAddress: req.DeliveryAddress,
		Subject:         req.Subject,
		Notes:           req.Notes,
	}, s.now())
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if len(req.Lines) == 0 {
		err := shared.NewDomainError("LINES_REQUIRED", "At least one quotation line is required")
		telemetry.RecordError(span, err)
		return nil, err
	}

	products, err := s.loadProducts(ctx, req.Lines)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	for _, lineReq := range req.Lines {
		if _, err := q.AddLine(lineProduct(products[lineReq.ProductID]), trade.LineInput{
			Description:     lineReq.Description,
			Quantity:        lineReq.Quantity,
			UnitPrice:       lineReq.UnitPrice,
			DiscountPercent: lineReq.DiscountPercent,
		}); err != nil {
			telemetry.RecordError(span, err)
			return nil, err
		}
	}

	if err := s.quotationRepo.Save(ctx, q); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	total := q.ComputeTotal()
	if err := s.quotationRepo.UpdateTotal(ctx, q.ID, total); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	telemetry.SetAttributes(span,
		telemetry.SpanAttrQuotationID, q.ID.String(),
		telemetry.SpanAttrOrderNumber, q.OrderNumber,
	)
	s.metrics.QuotationSubmitted(ctx)
	ctxlog.WithLogger(ctx, s.logger).Info("Quotation submitted",
		zap.String("quotation_id", q.ID.String()),
		zap.String("order_number", q.OrderNumber),
		zap.Int("lines", len(q.Lines)),
		zap.String("total", total.StringFixed(2)),
	)

	q.MarkSubmitted()
	publishEvents(ctx, s.eventPublisher, s.logger, q)

	response := ToQuotationResponse(q)
	return &response, nil
}

// GetByID returns the quotation header with its lines
func (s *QuotationService) GetByID(ctx context.Context, id uuid.UUID) (*QuotationResponse, error) {
	q, err := s.quotationRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToQuotationResponse(q)
	return &response, nil
}

// List returns the order management list, newest first
func (s *QuotationService) List(ctx context.Context, filter QuotationListFilter) ([]QuotationListItemResponse, int64, error) {
	domainFilter := shared.DefaultFilter()
	if filter.Page > 0 {
		domainFilter.Page = filter.Page
	}
	if filter.PageSize > 0 {
		domainFilter.PageSize = filter.PageSize
	}
	domainFilter.Search = filter.Search
	if filter.Status != "" {
		status, err := trade.ParseQuotationStatus(filter.Status)
		if err != nil {
			return nil, 0, err
		}
		domainFilter.Filters["status"] = status
	}

	quotations, err := s.quotationRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.quotationRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	items := make([]QuotationListItemResponse, len(quotations))
	for i := range quotations {
		items[i] = ToQuotationListItemResponse(&quotations[i])
	}
	return items, total, nil
}

// UpdateHeader edits the customer-facing header fields
func (s *QuotationService) UpdateHeader(ctx context.Context, id uuid.UUID, req UpdateQuotationHeaderRequest) (*QuotationResponse, error) {
	q, err := s.quotationRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	header := trade.QuotationHeader{
		CustomerName:    stringOr(req.CustomerName, q.CustomerName),
		PhoneNo:         stringOr(req.PhoneNo, q.PhoneNo),
		Email:           stringOr(req.Email, q.Email),
		DeliveryAddress: stringOr(req.DeliveryAddress, q.DeliveryAddress),
		Subject:         stringOr(req.Subject, q.Subject),
		Notes:           stringOr(req.Notes, q.Notes),
	}
	if err := q.UpdateHeader(header); err != nil {
		return nil, err
	}
	if err := s.quotationRepo.UpdateHeader(ctx, id, q.Header()); err != nil {
		return nil, err
	}

	// Reload so the response reflects status changes made since the first read
	return s.GetByID(ctx, id)
}

// AddLine appends a line. The stored total is left alone until ComputeTotal runs.
func (s *QuotationService) AddLine(ctx context.Context, id uuid.UUID, req QuotationLineRequest) (*QuotationResponse, error) {
	q, err := s.quotationRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	product, err := s.findProduct(ctx, req.ProductID)
	if err != nil {
		return nil, err
	}

	line, err := q.AddLine(lineProduct(product), trade.LineInput{
		Description:     req.Description,
		Quantity:        req.Quantity,
		UnitPrice:       req.UnitPrice,
		DiscountPercent: req.DiscountPercent,
	})
	if err != nil {
		return nil, err
	}
	if err := s.quotationRepo.SaveLine(ctx, line); err != nil {
		return nil, err
	}

	response := ToQuotationResponse(q)
	return &response, nil
}

// UpdateLine edits a line. Changing the product refreshes the line's name and SKU
// snapshot, and a zero or missing price falls back to that product's original price.
func (s *QuotationService) UpdateLine(ctx context.Context, id, lineID uuid.UUID, req UpdateQuotationLineRequest) (*QuotationResponse, error) {
	q, err := s.quotationRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	line := q.GetLine(lineID)
	if line == nil {
		return nil, shared.NewDomainError("LINE_NOT_FOUND", "Quotation line not found")
	}

	current, err := s.findProduct(ctx, line.ProductID)
	if err != nil {
		return nil, err
	}
	update := trade.LineUpdate{
		Description:     req.Description,
		Quantity:        req.Quantity,
		UnitPrice:       req.UnitPrice,
		DiscountPercent: req.DiscountPercent,
	}
	if req.ProductID != nil && *req.ProductID != line.ProductID {
		replacement, err := s.findProduct(ctx, *req.ProductID)
		if err != nil {
			return nil, err
		}
		lp := lineProduct(replacement)
		update.Product = &lp
	}

	if err := line.Update(update, lineProduct(current)); err != nil {
		return nil, err
	}
	if err := s.quotationRepo.SaveLine(ctx, line); err != nil {
		return nil, err
	}

	response := ToQuotationResponse(q)
	return &response, nil
}

// DeleteLine removes a line. The stored total is left alone until ComputeTotal runs.
func (s *QuotationService) DeleteLine(ctx context.Context, id, lineID uuid.UUID) (*QuotationResponse, error) {
	q, err := s.quotationRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := q.RemoveLine(lineID); err != nil {
		return nil, err
	}
	if err := s.quotationRepo.DeleteLine(ctx, id, lineID); err != nil {
		return nil, err
	}

	response := ToQuotationResponse(q)
	return &response, nil
}

// ComputeTotal recomputes total_amount from the current lines and stores it
func (s *QuotationService) ComputeTotal(ctx context.Context, id uuid.UUID) (*QuotationResponse, error) {
	q, err := s.quotationRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	total := q.ComputeTotal()
	if err := s.quotationRepo.UpdateTotal(ctx, id, total); err != nil {
		return nil, err
	}

	response := ToQuotationResponse(q)
	return &response, nil
}

// Document is an opened quotation PDF. The caller closes Content.
type Document struct {
	Filename string
	Content  io.ReadCloser
}

// OpenDocument opens the rendered PDF of a quotation
func (s *QuotationService) OpenDocument(ctx context.Context, id uuid.UUID) (*Document, error) {
	q, err := s.quotationRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !q.HasDocument() {
		return nil, shared.NewDomainError("DOCUMENT_NOT_FOUND", "The quotation document has not been generated yet")
	}

	content, err := s.objects.Open(ctx, q.DocumentPath)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return nil, shared.NewDomainErrorWithCause("DOCUMENT_NOT_FOUND", "The quotation document is missing from storage", err)
		}
		return nil, fmt.Errorf("failed to open quotation document: %w", err)
	}
	return &Document{Filename: path.Base(q.DocumentPath), Content: content}, nil
}

// loadProducts fetches every product referenced by lines in one query
func (s *QuotationService) loadProducts(ctx context.Context, lines []QuotationLineRequest) (map[uuid.UUID]*catalog.Product, error) {
	ids := make([]uuid.UUID, 0, len(lines))
	seen := make(map[uuid.UUID]bool, len(lines))
	for _, l := range lines {
		if !seen[l.ProductID] {
			seen[l.ProductID] = true
			ids = append(ids, l.ProductID)
		}
	}

	found, err := s.productRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	products := make(map[uuid.UUID]*catalog.Product, len(found))
	for i := range found {
		products[found[i].ID] = &found[i]
	}
	for _, id := range ids {
		if _, ok := products[id]; !ok {
			return nil, productNotFound(id)
		}
	}
	return products, nil
}

func (s *QuotationService) findProduct(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, productNotFound(id)
		}
		return nil, err
	}
	return product, nil
}

func productNotFound(id uuid.UUID) error {
	return shared.NewDomainError("PRODUCT_NOT_FOUND", fmt.Sprintf("Product %s not found", id))
}

func lineProduct(p *catalog.Product) trade.LineProduct {
	return trade.LineProduct{
		ID:            p.ID,
		Name:          p.Name,
		SKU:           p.SKU,
		OriginalPrice: p.OriginalPrice,
	}
}

func stringOr(value *string, fallback string) string {
	if value != nil {
		return *value
	}
	return fallback
}

// publishEvents publishes and clears the quotation's pending events. Publishing
// failures are logged; the state change they describe is already stored.
func publishEvents(ctx context.Context, publisher shared.EventPublisher, logger *zap.Logger, q *trade.Quotation) {
	events := q.GetDomainEvents()
	q.ClearDomainEvents()
	if publisher == nil || len(events) == 0 {
		return
	}
	if err := publisher.Publish(ctx, events...); err != nil {
		ctxlog.WithLogger(ctx, logger).Error("Failed to publish quotation events",
			zap.String("quotation_id", q.ID.String()),
			zap.Int("events", len(events)),
			zap.Error(err),
		)
	}
}
