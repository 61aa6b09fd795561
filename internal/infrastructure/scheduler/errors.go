package scheduler

import (
	"errors"

	"github.com/cenkalti/backoff/v4"
	"github.com/sisl/eshop/internal/domain/shared"
)

var (
	// ErrQueueNotRunning is returned when enqueueing on a stopped queue
	ErrQueueNotRunning = shared.NewDomainError("TASK_QUEUE_STOPPED", "Task queue is not running")

	// ErrTaskQueueFull is returned when the bounded queue has no free slot
	ErrTaskQueueFull = shared.NewDomainError("TASK_QUEUE_FULL", "Task queue is full, try again later")

	// ErrNoHandler is returned when enqueueing a kind nobody handles
	ErrNoHandler = shared.NewDomainError("TASK_HANDLER_MISSING", "No handler registered for task kind")
)

// Permanent marks err as not worth retrying. The queue fails the task at once.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return backoff.Permanent(err)
}

// IsPermanent reports whether err was marked with Permanent
func IsPermanent(err error) bool {
	var permanent *backoff.PermanentError
	return errors.As(err, &permanent)
}
