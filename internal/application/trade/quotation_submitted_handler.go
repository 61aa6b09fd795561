package trade

import (
	"context"
	"fmt"

	"github.com/sisl/eshop/internal/domain/shared"
	"github.com/sisl/eshop/internal/domain/trade"
	"github.com/sisl/eshop/internal/infrastructure/scheduler"
	"go.uber.org/zap"
)

// QuotationSubmittedHandler handles QuotationSubmittedEvent
// and queues the PDF render for the new quotation
type QuotationSubmittedHandler struct {
	tasks  TaskEnqueuer
	logger *zap.Logger
}

// NewQuotationSubmittedHandler creates a new handler for quotation submitted events
func NewQuotationSubmittedHandler(tasks TaskEnqueuer, logger *zap.Logger) *QuotationSubmittedHandler {
	return &QuotationSubmittedHandler{
		tasks:  tasks,
		logger: logger,
	}
}

// EventTypes returns the event types this handler is interested in
func (h *QuotationSubmittedHandler) EventTypes() []string {
	return []string{trade.EventTypeQuotationSubmitted}
}

// Handle queues a render_document task. The submission is already stored, so a
// full queue is reported but never undoes it.
func (h *QuotationSubmittedHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	submitted, ok := event.(*trade.QuotationSubmittedEvent)
	if !ok {
		h.logger.Error("unexpected event type",
			zap.String("expected", trade.EventTypeQuotationSubmitted),
			zap.String("actual", event.EventType()),
		)
		return fmt.Errorf("unexpected event type: expected %s, got %s",
			trade.EventTypeQuotationSubmitted, event.EventType())
	}

	task, err := h.tasks.Enqueue(scheduler.TaskRenderDocument, submitted.QuotationID)
	if err != nil {
		h.logger.Error("failed to queue quotation document render",
			zap.String("quotation_id", submitted.QuotationID.String()),
			zap.String("order_number", submitted.OrderNumber),
			zap.Error(err),
		)
		return fmt.Errorf("failed to queue document render: %w", err)
	}

	h.logger.Info("quotation document render queued",
		zap.String("quotation_id", submitted.QuotationID.String()),
		zap.String("order_number", submitted.OrderNumber),
		zap.String("task_id", task.ID.String()),
	)
	return nil
}
