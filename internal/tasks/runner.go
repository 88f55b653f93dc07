// Package tasks runs background work on an in-process worker pool. Every
// task is persisted so its status and result can be polled over the API.
// Failed tasks are recorded as failed and never retried here; retrying is
// the caller's decision.
package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/alexryan/leadscout/internal/metrics"
)

// Store persists task lifecycle transitions.
type Store interface {
	CreateTask(ctx context.Context, id uuid.UUID, kind string, payload []byte) error
	MarkTaskRunning(ctx context.Context, id uuid.UUID) error
	CompleteTask(ctx context.Context, id uuid.UUID, result []byte, errMsg string) error
}

// Handler executes one task kind. The returned value is marshalled and
// stored as the task result.
type Handler func(ctx context.Context, payload []byte) (any, error)

type job struct {
	id      uuid.UUID
	kind    string
	payload []byte
}

// Runner owns the worker pool and the registered handlers.
type Runner struct {
	store   Store
	logger  *zap.Logger
	metrics *metrics.Manager

	handlers map[string]Handler
	queue    chan job
	workers  int

	mu      sync.Mutex
	started bool
	closed  bool
	wg      sync.WaitGroup
}

// NewRunner builds a runner with the given pool size and queue depth.
func NewRunner(store Store, logger *zap.Logger, m *metrics.Manager, workers, queueSize int) *Runner {
	if workers <= 0 {
		workers = 4
	}
	if queueSize <= 0 {
		queueSize = 64
	}
	return &Runner{
		store:    store,
		logger:   logger,
		metrics:  m,
		handlers: make(map[string]Handler),
		queue:    make(chan job, queueSize),
		workers:  workers,
	}
}

// Register installs the handler for a task kind. Must be called before
// Start.
func (r *Runner) Register(kind string, handler Handler) {
	r.handlers[kind] = handler
}

// Start launches the worker pool. ctx bounds handler execution: cancelling
// it aborts in-flight handlers.
func (r *Runner) Start(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.started {
		return
	}
	r.started = true

	for i := 0; i < r.workers; i++ {
		r.wg.Add(1)
		go func() {
			defer r.wg.Done()
			for j := range r.queue {
				r.execute(ctx, j)
			}
		}()
	}
}

// Enqueue persists a pending task and hands it to the pool. It fails when
// the kind is unknown or the queue is full.
func (r *Runner) Enqueue(ctx context.Context, kind string, payload any) (uuid.UUID, error) {
	if _, ok := r.handlers[kind]; !ok {
		return uuid.Nil, fmt.Errorf("unknown task kind %q", kind)
	}

	var encoded []byte
	if payload != nil {
		var err error
		if encoded, err = json.Marshal(payload); err != nil {
			return uuid.Nil, fmt.Errorf("failed to encode task payload: %w", err)
		}
	}

	id := uuid.New()
	if err := r.store.CreateTask(ctx, id, kind, encoded); err != nil {
		return uuid.Nil, err
	}

	// The mutex also orders this send against Shutdown closing the queue.
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return uuid.Nil, fmt.Errorf("task runner is shut down")
	}
	select {
	case r.queue <- job{id: id, kind: kind, payload: encoded}:
		r.mu.Unlock()
		return id, nil
	default:
		r.mu.Unlock()
		if err := r.store.CompleteTask(ctx, id, nil, "task queue full"); err != nil {
			r.logger.Warn("failed to record dropped task", zap.String("task_id", id.String()), zap.Error(err))
		}
		return uuid.Nil, fmt.Errorf("task queue full")
	}
}

// Shutdown stops intake and waits for queued tasks to drain, up to the
// context deadline.
func (r *Runner) Shutdown(ctx context.Context) error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	close(r.queue)
	r.mu.Unlock()

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("task runner drain timed out: %w", ctx.Err())
	}
}

func (r *Runner) execute(ctx context.Context, j job) {
	r.metrics.TaskStarted()
	defer r.metrics.TaskFinished()

	start := time.Now()
	if err := r.store.MarkTaskRunning(ctx, j.id); err != nil {
		r.logger.Warn("failed to mark task running", zap.String("task_id", j.id.String()), zap.Error(err))
	}

	handler := r.handlers[j.kind]
	result, err := handler(ctx, j.payload)

	var encoded []byte
	errMsg := ""
	outcome := "completed"
	if err != nil {
		errMsg = err.Error()
		outcome = "failed"
		r.logger.Warn("task failed",
			zap.String("task_id", j.id.String()),
			zap.String("kind", j.kind),
			zap.Error(err))
	} else if result != nil {
		if encoded, err = json.Marshal(result); err != nil {
			errMsg = fmt.Sprintf("failed to encode result: %v", err)
			outcome = "failed"
		}
	}

	if err := r.store.CompleteTask(ctx, j.id, encoded, errMsg); err != nil {
		r.logger.Warn("failed to record task completion", zap.String("task_id", j.id.String()), zap.Error(err))
	}
	r.metrics.RecordTask(j.kind, outcome)
	r.logger.Debug("task finished",
		zap.String("task_id", j.id.String()),
		zap.String("kind", j.kind),
		zap.String("outcome", outcome),
		zap.Duration("elapsed", time.Since(start)))
}
