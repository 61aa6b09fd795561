// Package scheduler runs background tasks on a fixed worker pool with retry
// and exponential backoff.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Config holds task queue configuration
type Config struct {
	Workers        int
	QueueSize      int
	MaxAttempts    int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	TaskTimeout    time.Duration
}

// DefaultConfig returns the default queue configuration
func DefaultConfig() Config {
	return Config{
		Workers:        4,
		QueueSize:      256,
		MaxAttempts:    5,
		InitialBackoff: 2 * time.Second,
		MaxBackoff:     5 * time.Minute,
		TaskTimeout:    2 * time.Minute,
	}
}

// Queue is a bounded in-process task queue served by a fixed worker pool.
// Failed attempts are re-queued by timers after an exponential, jittered delay.
type Queue struct {
	config   Config
	logger   *zap.Logger
	observer Observer

	handlers map[TaskKind]TaskHandler
	tasks    chan *queuedTask

	mu       sync.Mutex
	running  bool
	retries  map[uuid.UUID]*time.Timer
	cancel   context.CancelFunc
	workers  sync.WaitGroup
}

type queuedTask struct {
	task    *Task
	backoff backoff.BackOff
}

// Option configures a Queue
type Option func(*Queue)

// WithObserver installs a callback invoked after every attempt
func WithObserver(observer Observer) Option {
	return func(q *Queue) {
		q.observer = observer
	}
}

// NewQueue creates a stopped queue. Register handlers, then call Start.
func NewQueue(config Config, logger *zap.Logger, opts ...Option) *Queue {
	defaults := DefaultConfig()
	if config.Workers <= 0 {
		config.Workers = defaults.Workers
	}
	if config.QueueSize <= 0 {
		config.QueueSize = defaults.QueueSize
	}
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = defaults.MaxAttempts
	}
	if config.InitialBackoff <= 0 {
		config.InitialBackoff = defaults.InitialBackoff
	}
	if config.MaxBackoff < config.InitialBackoff {
		config.MaxBackoff = config.InitialBackoff
	}
	if config.TaskTimeout <= 0 {
		config.TaskTimeout = defaults.TaskTimeout
	}

	q := &Queue{
		config:   config,
		logger:   logger.Named("tasks"),
		handlers: make(map[TaskKind]TaskHandler),
		tasks:    make(chan *queuedTask, config.QueueSize),
		retries:  make(map[uuid.UUID]*time.Timer),
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// Register sets the handler for a task kind. It must be called before Start.
func (q *Queue) Register(kind TaskKind, handler TaskHandler) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.handlers[kind] = handler
}

// Start launches the worker pool
func (q *Queue) Start(ctx context.Context) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.running {
		return nil
	}

	// Workers outlive the caller's context; Stop decides when in-flight work is abandoned
	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	q.cancel = cancel
	q.running = true

	for i := 0; i < q.config.Workers; i++ {
		q.workers.Add(1)
		go q.worker(runCtx, i)
	}

	q.logger.Info("Task queue started",
		zap.Int("workers", q.config.Workers),
		zap.Int("queue_size", q.config.QueueSize),
		zap.Int("max_attempts", q.config.MaxAttempts),
	)
	return nil
}

// Enqueue adds a task for the quotation. It never blocks: a full queue returns
// ErrTaskQueueFull.
func (q *Queue) Enqueue(kind TaskKind, quotationID uuid.UUID) (*Task, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if !q.running {
		return nil, ErrQueueNotRunning
	}
	if _, ok := q.handlers[kind]; !ok {
		return nil, ErrNoHandler
	}

	task := &Task{
		ID:          uuid.New(),
		Kind:        kind,
		QuotationID: quotationID,
		Attempt:     1,
		EnqueuedAt:  time.Now(),
	}
	select {
	case q.tasks <- &queuedTask{task: task, backoff: q.newBackOff()}:
		q.logger.Debug("Task enqueued",
			zap.String("task_id", task.ID.String()),
			zap.String("kind", string(kind)),
			zap.String("quotation_id", quotationID.String()),
		)
		return task, nil
	default:
		return nil, ErrTaskQueueFull
	}
}

// Stop stops accepting tasks, cancels pending retries and drains what is already
// queued. If ctx expires first, running tasks are canceled and ctx's error returned.
func (q *Queue) Stop(ctx context.Context) error {
	q.mu.Lock()
	if !q.running {
		q.mu.Unlock()
		return nil
	}
	q.running = false
	for id, timer := range q.retries {
		if timer.Stop() {
			q.logger.Warn("Pending retry dropped at shutdown", zap.String("task_id", id.String()))
		}
		delete(q.retries, id)
	}
	close(q.tasks)
	q.mu.Unlock()

	done := make(chan struct{})
	go func() {
		q.workers.Wait()
		close(done)
	}()

	select {
	case <-done:
		q.cancel()
		q.logger.Info("Task queue drained")
		return nil
	case <-ctx.Done():
		q.cancel()
		<-done
		q.logger.Warn("Task queue stop timed out, running tasks canceled")
		return ctx.Err()
	}
}

// Len returns the number of tasks waiting for a worker
func (q *Queue) Len() int {
	return len(q.tasks)
}

func (q *Queue) worker(ctx context.Context, id int) {
	defer q.workers.Done()
	for qt := range q.tasks {
		q.process(ctx, qt, id)
	}
}

func (q *Queue) process(ctx context.Context, qt *queuedTask, workerID int) {
	task := qt.task
	log := q.logger.With(
		zap.Int("worker_id", workerID),
		zap.String("task_id", task.ID.String()),
		zap.String("kind", string(task.Kind)),
		zap.String("quotation_id", task.QuotationID.String()),
		zap.Int("attempt", task.Attempt),
	)

	start := time.Now()
	err := q.execute(ctx, task)
	elapsed := time.Since(start)

	if err == nil {
		log.Info("Task succeeded", zap.Duration("elapsed", elapsed))
		q.observe(task.Kind, OutcomeSucceeded, elapsed)
		return
	}

	if IsPermanent(err) {
		log.Error("Task failed permanently", zap.Error(err))
		q.observe(task.Kind, OutcomeFailed, elapsed)
		return
	}

	delay := qt.backoff.NextBackOff()
	if delay == backoff.Stop {
		log.Error("Task failed after max attempts", zap.Int("max_attempts", q.config.MaxAttempts), zap.Error(err))
		q.observe(task.Kind, OutcomeFailed, elapsed)
		return
	}

	if !q.scheduleRetry(qt, delay) {
		log.Error("Task failed, queue stopping so no retry", zap.Error(err))
		q.observe(task.Kind, OutcomeFailed, elapsed)
		return
	}
	log.Warn("Task failed, retry scheduled", zap.Duration("retry_in", delay), zap.Error(err))
	q.observe(task.Kind, OutcomeRetried, elapsed)
}

// execute runs the handler under the task timeout and converts panics to errors
func (q *Queue) execute(ctx context.Context, task *Task) (err error) {
	q.mu.Lock()
	handler := q.handlers[task.Kind]
	q.mu.Unlock()
	if handler == nil {
		return Permanent(ErrNoHandler)
	}

	taskCtx, cancel := context.WithTimeout(ctx, q.config.TaskTimeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("task handler panicked: %v", r)
		}
	}()
	return handler.Handle(taskCtx, task)
}

func (q *Queue) scheduleRetry(qt *queuedTask, delay time.Duration) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if !q.running {
		return false
	}

	qt.task.Attempt++
	id := qt.task.ID
	q.retries[id] = time.AfterFunc(delay, func() {
		q.mu.Lock()
		defer q.mu.Unlock()
		delete(q.retries, id)
		if !q.running {
			return
		}
		select {
		case q.tasks <- qt:
		default:
			q.logger.Error("Task dropped, queue full on retry",
				zap.String("task_id", id.String()),
				zap.String("kind", string(qt.task.Kind)),
			)
			q.observe(qt.task.Kind, OutcomeFailed, 0)
		}
	})
	return true
}

func (q *Queue) newBackOff() backoff.BackOff {
	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = q.config.InitialBackoff
	exp.MaxInterval = q.config.MaxBackoff
	exp.Multiplier = 2
	exp.RandomizationFactor = 0.5
	exp.MaxElapsedTime = 0
	exp.Reset()
	return backoff.WithMaxRetries(exp, uint64(q.config.MaxAttempts-1))
}

func (q *Queue) observe(kind TaskKind, outcome Outcome, elapsed time.Duration) {
	if q.observer != nil {
		q.observer(kind, outcome, elapsed)
	}
}
