// Package worker drains the announcement queue on a single goroutine so
// announcements for a pool are derived in the order snapshots landed.
package worker

import (
	"context"
	"fmt"

	"github.com/okian/squares/internal/adapters/mq/queue"
	"github.com/okian/squares/pkg/logger"
	"github.com/okian/squares/pkg/metrics"
)

// Handler consumes one observation.
type Handler interface {
	Handle(ctx context.Context, o queue.Observation) error
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, o queue.Observation) error

// Handle calls f.
func (f HandlerFunc) Handle(ctx context.Context, o queue.Observation) error { //nolint:gocritic // hugeParam
	return f(ctx, o)
}

// Queue defines how the worker receives observations.
type Queue interface {
	Dequeue(ctx context.Context) <-chan queue.Observation
}

// Worker processes observations until its queue closes.
type Worker struct {
	queue   Queue
	handler Handler
	name    string

	shutdown chan struct{}
	done     chan struct{}

	logger logger.Logger
}

// New creates a worker reading q and passing each observation to h.
func New(q Queue, h Handler, opts ...Option) *Worker {
	w := &Worker{
		queue:    q,
		handler:  h,
		name:     "worker",
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
		logger:   logger.NamedOrNop("worker"),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.name != "worker" {
		w.logger = w.logger.Named(w.name)
	}
	return w
}

// Run processes observations until the queue is closed and drained, ctx
// ends, or Shutdown gives up waiting.
func (w *Worker) Run(ctx context.Context) {
	defer close(w.done)

	items := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case o, ok := <-items:
			if !ok {
				return
			}
			if err := w.handler.Handle(ctx, o); err != nil {
				metrics.RecordErrorByComponent("worker", "handle")
				w.logger.Error(ctx, "error handling observation",
					logger.String("pool_id", o.PoolID),
					logger.Error(err),
				)
			}
		}
	}
}

// Shutdown closes the queue when it can, lets the worker drain it and
// waits for the loop to exit. If ctx expires first the loop is abandoned.
func (w *Worker) Shutdown(ctx context.Context) error {
	if closer, ok := w.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			w.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		close(w.shutdown)
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}
