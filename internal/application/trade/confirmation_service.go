package trade

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sisl/eshop/internal/domain/integration"
	"github.com/sisl/eshop/internal/domain/shared"
	"github.com/sisl/eshop/internal/domain/trade"
	"github.com/sisl/eshop/internal/infrastructure/cache"
	"github.com/sisl/eshop/internal/infrastructure/scheduler"
	"github.com/sisl/eshop/internal/infrastructure/telemetry"
	"go.uber.org/zap"

	ctxlog "github.com/sisl/eshop/internal/infrastructure/logger"
)

const confirmationServiceName = "ConfirmationService"

// AccountingSyncer pushes a quotation into the accounting system
type AccountingSyncer interface {
	Sync(ctx context.Context, q *trade.Quotation, record integration.CustomerKeyRecorder) (*integration.SyncResult, error)
}

// ConfirmationService drives quotations through the status machine. Confirming
// a quotation creates its customer and sales order in the accounting system.
type ConfirmationService struct {
	quotationRepo  trade.QuotationRepository
	bridge         AccountingSyncer
	locker         cache.Locker
	tasks          TaskEnqueuer
	eventPublisher shared.EventPublisher
	metrics        *telemetry.ShopMetrics
	logger         *zap.Logger
	now            func() time.Time
}

// NewConfirmationService creates a new ConfirmationService
func NewConfirmationService(
	quotationRepo trade.QuotationRepository,
	bridge AccountingSyncer,
	locker cache.Locker,
	tasks TaskEnqueuer,
	logger *zap.Logger,
	opts ...QuotationOption,
) *ConfirmationService {
	o := buildQuotationOptions(opts)
	return &ConfirmationService{
		quotationRepo: quotationRepo,
		bridge:        bridge,
		locker:        locker,
		tasks:         tasks,
		metrics:       o.metrics,
		logger:        logger.Named("confirmation_service"),
		now:           o.now,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *ConfirmationService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Confirm moves a quotation to CONFIRMED and syncs it to accounting. The status
// is claimed by compare-and-swap before any remote call and restored if the sync fails.
func (s *ConfirmationService) Confirm(ctx context.Context, id uuid.UUID) (*QuotationResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, confirmationServiceName, "Confirm",
		telemetry.SpanAttrQuotationID, id.String())
	defer span.End()

	unlock, err := s.locker.TryLock(ctx, lockKey(id))
	if err != nil {
		if errors.Is(err, cache.ErrLockHeld) {
			err = shared.NewDomainError("CONFIRMATION_IN_PROGRESS", "The quotation is already being confirmed")
		}
		telemetry.RecordError(span, err)
		return nil, err
	}
	defer func() {
		if err := unlock(context.WithoutCancel(ctx)); err != nil {
			ctxlog.WithLogger(ctx, s.logger).Warn("Failed to release confirmation lock",
				zap.String("quotation_id", id.String()),
				zap.Error(err),
			)
		}
	}()

	q, err := s.quotationRepo.FindByID(ctx, id)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	telemetry.SetAttributes(span, telemetry.SpanAttrOrderNumber, q.OrderNumber)
	if err := q.CheckConfirmable(); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	prior := q.Status
	swapped, err := s.quotationRepo.CompareAndSwapStatus(ctx, id, prior, trade.QuotationStatusConfirmed)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if !swapped {
		err := shared.NewDomainError("CONCURRENT_MODIFICATION", "The quotation status was changed by another request")
		telemetry.RecordError(span, err)
		return nil, err
	}

	started := time.Now()
	result, syncErr := s.bridge.Sync(ctx, q, func(ctx context.Context, key string) error {
		return s.quotationRepo.UpdateCustomerKey(ctx, id, key)
	})
	s.metrics.AccountingSync(ctx, time.Since(started), syncErr)
	if syncErr != nil {
		s.rollback(ctx, q, prior)
		err := shared.NewDomainErrorWithCause("ACCOUNTING_SYNC_FAILED", "Failed to create the sales order in accounting", syncErr)
		telemetry.RecordError(span, err)
		return nil, err
	}

	confirmedAt := s.now()
	if err := s.quotationRepo.MarkConfirmed(ctx, id, result.SalesOrderKey, confirmedAt); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	q.MarkConfirmed(result.CustomerKey, result.SalesOrderKey, confirmedAt)

	telemetry.SetAttributes(span,
		telemetry.SpanAttrCustomerKey, result.CustomerKey,
		telemetry.SpanAttrSalesOrderID, result.SalesOrderKey,
	)
	s.metrics.QuotationConfirmed(ctx)
	s.metrics.StatusChanged(ctx, string(prior), string(trade.QuotationStatusConfirmed))
	ctxlog.WithLogger(ctx, s.logger).Info("Quotation confirmed",
		zap.String("quotation_id", id.String()),
		zap.String("order_number", q.OrderNumber),
		zap.String("customer_key", result.CustomerKey),
		zap.String("sales_order_key", result.SalesOrderKey),
	)
	publishEvents(ctx, s.eventPublisher, s.logger, q)

	response := ToQuotationResponse(q)
	return &response, nil
}

// rollback restores the prior status after a failed sync. It runs detached from
// ctx so a canceled request still releases the CONFIRMED claim.
func (s *ConfirmationService) rollback(ctx context.Context, q *trade.Quotation, prior trade.QuotationStatus) {
	restored, err := s.quotationRepo.CompareAndSwapStatus(context.WithoutCancel(ctx), q.ID, trade.QuotationStatusConfirmed, prior)
	log := ctxlog.WithLogger(ctx, s.logger)
	switch {
	case err != nil:
		log.Error("Failed to roll back quotation status",
			zap.String("quotation_id", q.ID.String()),
			zap.String("prior_status", string(prior)),
			zap.Error(err),
		)
	case !restored:
		log.Warn("Quotation status changed during accounting sync, rollback skipped",
			zap.String("quotation_id", q.ID.String()),
		)
	default:
		q.Status = prior
	}
}

// ConfirmAsync validates the quotation and queues the accounting sync
func (s *ConfirmationService) ConfirmAsync(ctx context.Context, id uuid.UUID) (*ConfirmAsyncResponse, error) {
	q, err := s.quotationRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := q.CheckConfirmable(); err != nil {
		return nil, err
	}

	task, err := s.tasks.Enqueue(scheduler.TaskSyncAccounting, id)
	if err != nil {
		return nil, err
	}
	ctxlog.WithLogger(ctx, s.logger).Info("Accounting sync queued",
		zap.String("quotation_id", id.String()),
		zap.String("task_id", task.ID.String()),
	)
	return &ConfirmAsyncResponse{
		TaskID:      task.ID,
		QuotationID: id,
		Status:      "QUEUED",
	}, nil
}

// BulkConfirm confirms each quotation in turn. Already confirmed quotations are
// skipped and a failure never stops the remaining ones.
func (s *ConfirmationService) BulkConfirm(ctx context.Context, req BulkConfirmRequest) []BulkConfirmResult {
	results := make([]BulkConfirmResult, 0, len(req.IDs))
	for _, id := range req.IDs {
		results = append(results, s.confirmOne(ctx, id))
	}

	confirmed := 0
	for _, r := range results {
		if r.Result == BulkResultConfirmed {
			confirmed++
		}
	}
	ctxlog.WithLogger(ctx, s.logger).Info("Bulk confirmation finished",
		zap.Int("requested", len(req.IDs)),
		zap.Int("confirmed", confirmed),
	)
	return results
}

func (s *ConfirmationService) confirmOne(ctx context.Context, id uuid.UUID) BulkConfirmResult {
	result := BulkConfirmResult{ID: id}

	q, err := s.quotationRepo.FindByID(ctx, id)
	if err != nil {
		result.Result = BulkResultFailed
		result.Error = err.Error()
		return result
	}
	result.OrderNumber = q.OrderNumber
	if q.Status == trade.QuotationStatusConfirmed {
		result.Result = BulkResultSkipped
		result.SalesOrderKey = q.AccountingSalesOrderKey
		return result
	}

	confirmed, err := s.Confirm(ctx, id)
	if err != nil {
		result.Result = BulkResultFailed
		result.Error = err.Error()
		return result
	}
	result.Result = BulkResultConfirmed
	result.SalesOrderKey = confirmed.AccountingSalesOrderKey
	return result
}

// ChangeStatus moves a quotation to target. CONFIRMED goes through Confirm so
// the accounting sync always runs.
func (s *ConfirmationService) ChangeStatus(ctx context.Context, id uuid.UUID, req ChangeStatusRequest) (*QuotationResponse, error) {
	target, err := trade.ParseQuotationStatus(req.Status)
	if err != nil {
		return nil, err
	}
	if target == trade.QuotationStatusConfirmed {
		return s.Confirm(ctx, id)
	}

	ctx, span := telemetry.StartServiceSpan(ctx, confirmationServiceName, "ChangeStatus",
		telemetry.SpanAttrQuotationID, id.String(),
		telemetry.SpanAttrStatus, string(target),
	)
	defer span.End()

	q, err := s.quotationRepo.FindByID(ctx, id)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	prior := q.Status
	if err := q.TransitionTo(target); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	swapped, err := s.quotationRepo.CompareAndSwapStatus(ctx, id, prior, target)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if !swapped {
		err := shared.NewDomainError("CONCURRENT_MODIFICATION", "The quotation status was changed by another request")
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.metrics.StatusChanged(ctx, string(prior), string(target))
	ctxlog.WithLogger(ctx, s.logger).Info("Quotation status changed",
		zap.String("quotation_id", id.String()),
		zap.String("from", string(prior)),
		zap.String("to", string(target)),
	)
	publishEvents(ctx, s.eventPublisher, s.logger, q)

	response := ToQuotationResponse(q)
	return &response, nil
}

func lockKey(id uuid.UUID) string {
	return "quotation:" + id.String()
}
