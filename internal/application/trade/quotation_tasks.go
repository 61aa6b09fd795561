package trade

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/sisl/eshop/internal/domain/shared"
	"github.com/sisl/eshop/internal/domain/trade"
	"github.com/sisl/eshop/internal/infrastructure/accounting"
	"github.com/sisl/eshop/internal/infrastructure/notification"
	"github.com/sisl/eshop/internal/infrastructure/printing"
	"github.com/sisl/eshop/internal/infrastructure/scheduler"
	"github.com/sisl/eshop/internal/infrastructure/storage"
	"go.uber.org/zap"
)

// DocumentBuilder renders a quotation to PDF bytes
type DocumentBuilder interface {
	Build(ctx context.Context, q *trade.Quotation) ([]byte, error)
}

// QuotationTasks holds the background handlers of the quotation workflow:
// rendering the PDF, mailing it to operations, and the queued accounting sync.
type QuotationTasks struct {
	quotationRepo trade.QuotationRepository
	documents     DocumentBuilder
	objects       storage.ObjectStorage
	mailer        notification.Mailer
	mailbox       string
	confirmations *ConfirmationService
	tasks         TaskEnqueuer
	logger        *zap.Logger
	now           func() time.Time
}

// NewQuotationTasks creates the task handlers. mailbox receives every
// submission notice.
func NewQuotationTasks(
	quotationRepo trade.QuotationRepository,
	documents DocumentBuilder,
	objects storage.ObjectStorage,
	mailer notification.Mailer,
	mailbox string,
	confirmations *ConfirmationService,
	tasks TaskEnqueuer,
	logger *zap.Logger,
) *QuotationTasks {
	return &QuotationTasks{
		quotationRepo: quotationRepo,
		documents:     documents,
		objects:       objects,
		mailer:        mailer,
		mailbox:       mailbox,
		confirmations: confirmations,
		tasks:         tasks,
		logger:        logger.Named("quotation_tasks"),
		now:           time.Now,
	}
}

// Register binds every handler to its task kind
func (t *QuotationTasks) Register(queue *scheduler.Queue) {
	queue.Register(scheduler.TaskRenderDocument, scheduler.TaskHandlerFunc(t.RenderDocument))
	queue.Register(scheduler.TaskSendNotification, scheduler.TaskHandlerFunc(t.SendNotification))
	queue.Register(scheduler.TaskSyncAccounting, scheduler.TaskHandlerFunc(t.SyncAccounting))
}

// RenderDocument renders the PDF, stores it and queues the operations email
func (t *QuotationTasks) RenderDocument(ctx context.Context, task *scheduler.Task) error {
	q, err := t.load(ctx, task)
	if err != nil {
		return err
	}

	pdf, err := t.documents.Build(ctx, q)
	if err != nil {
		var renderErr *printing.RenderError
		if errors.As(err, &renderErr) {
			switch renderErr.Code {
			case printing.ErrCodeInvalidHTML, printing.ErrCodeBinaryNotFound, printing.ErrCodeTemplateFailed:
				return scheduler.Permanent(err)
			}
		}
		return fmt.Errorf("render quotation %s: %w", q.OrderNumber, err)
	}

	key := printing.DocumentKey(q.ID, t.now())
	if err := t.objects.Put(ctx, key, pdf, "application/pdf"); err != nil {
		return fmt.Errorf("store quotation document: %w", err)
	}
	url := t.objects.URL(key)
	if err := t.quotationRepo.UpdateDocument(ctx, q.ID, key, url); err != nil {
		return err
	}

	t.logger.Info("Quotation document stored",
		zap.String("quotation_id", q.ID.String()),
		zap.String("document_key", key),
		zap.Int("bytes", len(pdf)),
		zap.Int("attempt", task.Attempt),
	)

	if _, err := t.tasks.Enqueue(scheduler.TaskSendNotification, q.ID); err != nil {
		// The document is stored; failing here would only render it again.
		t.logger.Error("Failed to queue quotation notification",
			zap.String("quotation_id", q.ID.String()),
			zap.Error(err),
		)
	}
	return nil
}

// SendNotification mails the rendered PDF to the operations mailbox
func (t *QuotationTasks) SendNotification(ctx context.Context, task *scheduler.Task) error {
	q, err := t.load(ctx, task)
	if err != nil {
		return err
	}
	if !q.HasDocument() {
		return scheduler.Permanent(shared.NewDomainError("DOCUMENT_NOT_FOUND",
			"Quotation "+q.OrderNumber+" has no rendered document"))
	}

	reader, err := t.objects.Open(ctx, q.DocumentPath)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return scheduler.Permanent(err)
		}
		return err
	}
	pdf, err := io.ReadAll(reader)
	_ = reader.Close()
	if err != nil {
		return fmt.Errorf("read quotation document: %w", err)
	}

	msg := notification.QuotationRequest(q, t.mailbox, q.DocumentPath, pdf)
	if err := t.mailer.Send(ctx, msg); err != nil {
		if errors.Is(err, notification.ErrInvalidMessage) {
			return scheduler.Permanent(err)
		}
		return err
	}

	t.logger.Info("Quotation notification sent",
		zap.String("quotation_id", q.ID.String()),
		zap.String("mailbox", t.mailbox),
		zap.Int("attempt", task.Attempt),
	)
	return nil
}

// SyncAccounting runs a queued confirmation. Transport failures, 5xx responses
// and a concurrently held lock are retried; domain rejections are final.
func (t *QuotationTasks) SyncAccounting(ctx context.Context, task *scheduler.Task) error {
	_, err := t.confirmations.Confirm(ctx, task.QuotationID)
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, shared.NewDomainError("ALREADY_CONFIRMED", "")):
		t.logger.Info("Quotation already confirmed, accounting sync dropped",
			zap.String("quotation_id", task.QuotationID.String()))
		return nil
	case errors.Is(err, shared.NewDomainError("CONFIRMATION_IN_PROGRESS", "")),
		errors.Is(err, shared.ErrConcurrentModification),
		accounting.IsRetryable(err):
		return err
	default:
		return scheduler.Permanent(err)
	}
}

func (t *QuotationTasks) load(ctx context.Context, task *scheduler.Task) (*trade.Quotation, error) {
	q, err := t.quotationRepo.FindByID(ctx, task.QuotationID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, scheduler.Permanent(err)
		}
		return nil, err
	}
	return q, nil
}
