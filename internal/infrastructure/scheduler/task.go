package scheduler

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// TaskKind names a unit of background work
type TaskKind string

const (
	TaskRenderDocument   TaskKind = "render_document"
	TaskSendNotification TaskKind = "send_notification"
	TaskSyncAccounting   TaskKind = "sync_accounting"
)

// Task is one queued unit of work about a quotation
type Task struct {
	ID          uuid.UUID
	Kind        TaskKind
	QuotationID uuid.UUID
	Attempt     int // 1-based number of the current attempt
	EnqueuedAt  time.Time
}

// TaskHandler executes tasks of one kind. Returning an error schedules a retry
// unless the error is wrapped with Permanent or attempts are exhausted.
type TaskHandler interface {
	Handle(ctx context.Context, task *Task) error
}

// TaskHandlerFunc adapts a function to TaskHandler
type TaskHandlerFunc func(ctx context.Context, task *Task) error

// Handle implements TaskHandler
func (f TaskHandlerFunc) Handle(ctx context.Context, task *Task) error {
	return f(ctx, task)
}

// Outcome is the result of one task attempt
type Outcome string

const (
	OutcomeSucceeded Outcome = "succeeded"
	OutcomeRetried   Outcome = "retried"
	OutcomeFailed    Outcome = "failed"
)

// Observer is told about every finished attempt, e.g. to record metrics
type Observer func(kind TaskKind, outcome Outcome, duration time.Duration)
