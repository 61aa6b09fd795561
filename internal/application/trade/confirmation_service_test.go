package trade

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sisl/eshop/internal/domain/integration"
	"github.com/sisl/eshop/internal/domain/shared"
	"github.com/sisl/eshop/internal/domain/trade"
	"github.com/sisl/eshop/internal/infrastructure/cache"
	"github.com/sisl/eshop/internal/infrastructure/scheduler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type confirmationMocks struct {
	quotations *MockQuotationRepository
	bridge     *MockAccountingSyncer
	tasks      *MockTaskEnqueuer
	publisher  *MockEventPublisher
	locker     *cache.MemoryLocker
}

func newConfirmationService() (*ConfirmationService, confirmationMocks) {
	m := confirmationMocks{
		quotations: new(MockQuotationRepository),
		bridge:     new(MockAccountingSyncer),
		tasks:      new(MockTaskEnqueuer),
		publisher:  new(MockEventPublisher),
		locker:     cache.NewMemoryLocker(time.Minute),
	}
	svc := NewConfirmationService(m.quotations, m.bridge, m.locker, m.tasks, zap.NewNop(),
		WithClock(func() time.Time { return fixedNow }))
	svc.SetEventPublisher(m.publisher)
	return svc, m
}

func newPendingQuotation(t *testing.T) *trade.Quotation {
	t.Helper()
	return newTestQuotation(t, newTestProduct(t, "GA500 2.2kW", "CIPR-GA50C2010ABBA", "400.00"))
}

// ==================== Confirm ====================

func TestConfirmationService_Confirm_Success(t *testing.T) {
	ctx := context.Background()
	svc, m := newConfirmationService()
	q := newPendingQuotation(t)

	m.quotations.On("FindByID", mock.Anything, q.ID).Return(q, nil)
	m.quotations.On("CompareAndSwapStatus", mock.Anything, q.ID, trade.QuotationStatusPending, trade.QuotationStatusConfirmed).
		Return(true, nil)
	m.bridge.On("Sync", mock.Anything, q).Return(&integration.SyncResult{CustomerKey: "C-100", SalesOrderKey: "SO-200"}, nil)
	m.quotations.On("UpdateCustomerKey", mock.Anything, q.ID, "C-100").Return(nil)
	m.quotations.On("MarkConfirmed", mock.Anything, q.ID, "SO-200", fixedNow).Return(nil)
	m.publisher.On("Publish", mock.Anything, mock.MatchedBy(func(events []shared.DomainEvent) bool {
		return len(events) == 1 && events[0].EventType() == trade.EventTypeQuotationConfirmed
	})).Return(nil)

	resp, err := svc.Confirm(ctx, q.ID)
	require.NoError(t, err)
	assert.Equal(t, "CONFIRMED", resp.Status)
	assert.Equal(t, "C-100", resp.AccountingCustomerKey)
	assert.Equal(t, "SO-200", resp.AccountingSalesOrderKey)
	require.NotNil(t, resp.ConfirmedAt)
	assert.Equal(t, fixedNow, *resp.ConfirmedAt)

	m.quotations.AssertExpectations(t)
	m.publisher.AssertExpectations(t)
	assert.Zero(t, m.locker.Len(), "lock must be released")
}

func TestConfirmationService_Confirm_SyncFailureRollsBack(t *testing.T) {
	ctx := context.Background()
	svc, m := newConfirmationService()
	q := newPendingQuotation(t)
	remoteErr := errors.New("accounting service returned status 500")

	m.quotations.On("FindByID", mock.Anything, q.ID).Return(q, nil)
	m.quotations.On("CompareAndSwapStatus", mock.Anything, q.ID, trade.QuotationStatusPending, trade.QuotationStatusConfirmed).
		Return(true, nil).Once()
	m.bridge.On("Sync", mock.Anything, q).Return(nil, remoteErr)
	m.quotations.On("CompareAndSwapStatus", mock.Anything, q.ID, trade.QuotationStatusConfirmed, trade.QuotationStatusPending).
		Return(true, nil).Once()

	_, err := svc.Confirm(ctx, q.ID)
	assertDomainCode(t, err, "ACCOUNTING_SYNC_FAILED")
	assert.ErrorIs(t, err, remoteErr)
	assert.Equal(t, trade.QuotationStatusPending, q.Status)

	m.quotations.AssertExpectations(t)
	m.quotations.AssertNotCalled(t, "MarkConfirmed", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	m.publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
}

func TestConfirmationService_Confirm_Rejections(t *testing.T) {
	ctx := context.Background()

	t.Run("already confirmed", func(t *testing.T) {
		svc, m := newConfirmationService()
		q := newPendingQuotation(t)
		q.Status = trade.QuotationStatusConfirmed
		m.quotations.On("FindByID", mock.Anything, q.ID).Return(q, nil)

		_, err := svc.Confirm(ctx, q.ID)
		assertDomainCode(t, err, "ALREADY_CONFIRMED")
		m.bridge.AssertNotCalled(t, "Sync", mock.Anything, mock.Anything)
	})

	t.Run("canceled quotation", func(t *testing.T) {
		svc, m := newConfirmationService()
		q := newPendingQuotation(t)
		q.Status = trade.QuotationStatusCanceled
		m.quotations.On("FindByID", mock.Anything, q.ID).Return(q, nil)

		_, err := svc.Confirm(ctx, q.ID)
		assertDomainCode(t, err, "INVALID_STATUS_TRANSITION")
	})

	t.Run("status swapped by another request", func(t *testing.T) {
		svc, m := newConfirmationService()
		q := newPendingQuotation(t)
		m.quotations.On("FindByID", mock.Anything, q.ID).Return(q, nil)
		m.quotations.On("CompareAndSwapStatus", mock.Anything, q.ID, trade.QuotationStatusPending, trade.QuotationStatusConfirmed).
			Return(false, nil)

		_, err := svc.Confirm(ctx, q.ID)
		assertDomainCode(t, err, "CONCURRENT_MODIFICATION")
		m.bridge.AssertNotCalled(t, "Sync", mock.Anything, mock.Anything)
	})

	t.Run("lock held", func(t *testing.T) {
		svc, m := newConfirmationService()
		id := uuid.New()
		unlock, err := m.locker.TryLock(ctx, lockKey(id))
		require.NoError(t, err)
		defer func() { _ = unlock(ctx) }()

		_, err = svc.Confirm(ctx, id)
		assertDomainCode(t, err, "CONFIRMATION_IN_PROGRESS")
		m.quotations.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
	})
}

// ==================== BulkConfirm ====================

func TestConfirmationService_BulkConfirm(t *testing.T) {
	ctx := context.Background()
	svc, m := newConfirmationService()

	confirmed := newPendingQuotation(t)
	confirmed.Status = trade.QuotationStatusConfirmed
	confirmed.AccountingSalesOrderKey = "SO-1"
	pending := newPendingQuotation(t)
	failing := newPendingQuotation(t)
	missing := uuid.New()

	m.quotations.On("FindByID", mock.Anything, confirmed.ID).Return(confirmed, nil)
	m.quotations.On("FindByID", mock.Anything, pending.ID).Return(pending, nil)
	m.quotations.On("FindByID", mock.Anything, failing.ID).Return(failing, nil)
	m.quotations.On("FindByID", mock.Anything, missing).Return(nil, shared.ErrNotFound)

	m.quotations.On("CompareAndSwapStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(true, nil)
	m.quotations.On("UpdateCustomerKey", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	m.bridge.On("Sync", mock.Anything, pending).Return(&integration.SyncResult{CustomerKey: "C-2", SalesOrderKey: "SO-2"}, nil)
	m.bridge.On("Sync", mock.Anything, failing).Return(nil, errors.New("item not found"))
	m.quotations.On("MarkConfirmed", mock.Anything, pending.ID, "SO-2", fixedNow).Return(nil)
	m.publisher.On("Publish", mock.Anything, mock.Anything).Return(nil)

	results := svc.BulkConfirm(ctx, BulkConfirmRequest{IDs: []uuid.UUID{confirmed.ID, pending.ID, failing.ID, missing}})
	require.Len(t, results, 4)

	assert.Equal(t, BulkResultSkipped, results[0].Result)
	assert.Equal(t, "SO-1", results[0].SalesOrderKey)
	assert.Equal(t, BulkResultConfirmed, results[1].Result)
	assert.Equal(t, "SO-2", results[1].SalesOrderKey)
	assert.Equal(t, BulkResultFailed, results[2].Result)
	assert.Contains(t, results[2].Error, "item not found")
	assert.Equal(t, BulkResultFailed, results[3].Result)
	assert.Contains(t, results[3].Error, "not found")

	m.bridge.AssertNotCalled(t, "Sync", mock.Anything, confirmed)
	assert.Equal(t, trade.QuotationStatusConfirmed, pending.Status)
	assert.Equal(t, trade.QuotationStatusPending, failing.Status)
}

// ==================== ChangeStatus & ConfirmAsync ====================

func TestConfirmationService_ChangeStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("cancel a pending quotation", func(t *testing.T) {
		svc, m := newConfirmationService()
		q := newPendingQuotation(t)
		m.quotations.On("FindByID", mock.Anything, q.ID).Return(q, nil)
		m.quotations.On("CompareAndSwapStatus", mock.Anything, q.ID, trade.QuotationStatusPending, trade.QuotationStatusCanceled).
			Return(true, nil)
		m.publisher.On("Publish", mock.Anything, mock.MatchedBy(func(events []shared.DomainEvent) bool {
			return len(events) == 1 && events[0].EventType() == trade.EventTypeQuotationStatusChanged
		})).Return(nil)

		resp, err := svc.ChangeStatus(ctx, q.ID, ChangeStatusRequest{Status: "CANCELED"})
		require.NoError(t, err)
		assert.Equal(t, "CANCELED", resp.Status)
	})

	t.Run("terminal status", func(t *testing.T) {
		svc, m := newConfirmationService()
		q := newPendingQuotation(t)
		q.Status = trade.QuotationStatusDelivered
		m.quotations.On("FindByID", mock.Anything, q.ID).Return(q, nil)

		_, err := svc.ChangeStatus(ctx, q.ID, ChangeStatusRequest{Status: "PENDING"})
		assertDomainCode(t, err, "INVALID_STATUS_TRANSITION")
		m.quotations.AssertNotCalled(t, "CompareAndSwapStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("confirmed target runs the accounting sync", func(t *testing.T) {
		svc, m := newConfirmationService()
		q := newPendingQuotation(t)
		m.quotations.On("FindByID", mock.Anything, q.ID).Return(q, nil)
		m.quotations.On("CompareAndSwapStatus", mock.Anything, q.ID, trade.QuotationStatusPending, trade.QuotationStatusConfirmed).
			Return(true, nil)
		m.bridge.On("Sync", mock.Anything, q).Return(&integration.SyncResult{CustomerKey: "C-3", SalesOrderKey: "SO-3"}, nil)
		m.quotations.On("UpdateCustomerKey", mock.Anything, q.ID, "C-3").Return(nil)
		m.quotations.On("MarkConfirmed", mock.Anything, q.ID, "SO-3", fixedNow).Return(nil)
		m.publisher.On("Publish", mock.Anything, mock.Anything).Return(nil)

		resp, err := svc.ChangeStatus(ctx, q.ID, ChangeStatusRequest{Status: "CONFIRMED"})
		require.NoError(t, err)
		assert.Equal(t, "SO-3", resp.AccountingSalesOrderKey)
		m.bridge.AssertExpectations(t)
	})
}

func TestConfirmationService_ConfirmAsync(t *testing.T) {
	ctx := context.Background()

	t.Run("queues the sync", func(t *testing.T) {
		svc, m := newConfirmationService()
		q := newPendingQuotation(t)
		task := &scheduler.Task{ID: uuid.New(), Kind: scheduler.TaskSyncAccounting, QuotationID: q.ID}
		m.quotations.On("FindByID", ctx, q.ID).Return(q, nil)
		m.tasks.On("Enqueue", scheduler.TaskSyncAccounting, q.ID).Return(task, nil)

		resp, err := svc.ConfirmAsync(ctx, q.ID)
		require.NoError(t, err)
		assert.Equal(t, task.ID, resp.TaskID)
		assert.Equal(t, "QUEUED", resp.Status)
	})

	t.Run("full queue", func(t *testing.T) {
		svc, m := newConfirmationService()
		q := newPendingQuotation(t)
		m.quotations.On("FindByID", ctx, q.ID).Return(q, nil)
		m.tasks.On("Enqueue", scheduler.TaskSyncAccounting, q.ID).Return(nil, scheduler.ErrTaskQueueFull)

		_, err := svc.ConfirmAsync(ctx, q.ID)
		assertDomainCode(t, err, "TASK_QUEUE_FULL")
	})

	t.Run("not confirmable", func(t *testing.T) {
		svc, m := newConfirmationService()
		q := newTestQuotation(t)
		m.quotations.On("FindByID", ctx, q.ID).Return(q, nil)

		_, err := svc.ConfirmAsync(ctx, q.ID)
		assertDomainCode(t, err, "LINES_REQUIRED")
		m.tasks.AssertNotCalled(t, "Enqueue", mock.Anything, mock.Anything)
	})
}
