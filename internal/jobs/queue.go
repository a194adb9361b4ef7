// Package jobs dispatches background work off the request path.
package jobs

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"settlement-ingest-backend/internal/logging"
)

var ErrQueueClosed = errors.New("queue is closed")

// Handler processes one job. A returned error is logged; jobs are not retried.
type Handler[T any] func(ctx context.Context, job T) error

// Queue is a buffered in-memory job queue drained by a fixed set of workers.
// Each job runs to completion on one worker.
type Queue[T any] struct {
	jobs    chan T
	workers int
	logger  logrus.FieldLogger

	// stopping releases publishers blocked on a full buffer. closeCh tells
	// workers to drain and is closed only once no publisher can still send.
	stopping chan struct{}
	stopOnce sync.Once
	closeCh  chan struct{}

	mu      sync.RWMutex
	closed  bool
	started bool
	wg      sync.WaitGroup
}

// NewQueue returns a queue holding up to bufferSize pending jobs.
func NewQueue[T any](bufferSize, workers int, logger logrus.FieldLogger) *Queue[T] {
	if workers < 1 {
		workers = 1
	}
	return &Queue[T]{
		jobs:     make(chan T, bufferSize),
		workers:  workers,
		logger:   logging.OrDiscard(logger),
		stopping: make(chan struct{}),
		closeCh:  make(chan struct{}),
	}
}

// Publish enqueues job, blocking while the buffer is full. A job accepted
// before Stop is always run.
func (q *Queue[T]) Publish(ctx context.Context, job T) error {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		return ErrQueueClosed
	}

	select {
	case q.jobs <- job:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-q.stopping:
		return ErrQueueClosed
	}
}

// Start launches the workers. Jobs keep running after ctx is cancelled only
// until they return; no new job is picked up.
func (q *Queue[T]) Start(ctx context.Context, handler Handler[T]) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return ErrQueueClosed
	}
	if q.started {
		return fmt.Errorf("queue already started")
	}
	q.started = true

	for i := 0; i < q.workers; i++ {
		q.wg.Add(1)
		go q.worker(ctx, handler)
	}
	return nil
}

func (q *Queue[T]) worker(ctx context.Context, handler Handler[T]) {
	defer q.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case <-q.closeCh:
			q.drain(ctx, handler)
			return
		case job := <-q.jobs:
			q.run(ctx, job, handler)
		}
	}
}

// drain runs what is still buffered once the queue is closed.
func (q *Queue[T]) drain(ctx context.Context, handler Handler[T]) {
	for {
		select {
		case job := <-q.jobs:
			q.run(ctx, job, handler)
		default:
			return
		}
	}
}

func (q *Queue[T]) run(ctx context.Context, job T, handler Handler[T]) {
	defer func() {
		if r := recover(); r != nil {
			q.logger.WithField("panic", r).Error("job panicked")
		}
	}()
	if err := handler(ctx, job); err != nil {
		q.logger.WithError(err).Error("job failed")
	}
}

// Stop closes the queue and waits for the workers to finish buffered jobs.
func (q *Queue[T]) Stop(ctx context.Context) error {
	q.stopOnce.Do(func() { close(q.stopping) })

	// Publishers hold the read lock across their send, so once the write
	// lock is held every accepted job is already buffered.
	q.mu.Lock()
	if !q.closed {
		q.closed = true
		close(q.closeCh)
	}
	q.mu.Unlock()

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
