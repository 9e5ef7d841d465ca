// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 DefianceCraft Contributors

// Package executor provides a bounded worker pool for remote-store work.
//
// Every submitted unit is wrapped with classify-and-retry logic:
// transient failures retry forever with a fixed backoff, anything else
// is logged with full detail and propagated to the submitter. Workers
// run on their own goroutines so retry sleeps never block the host's
// control thread.
package executor

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/defiancecraft/defiancecore/internal/store"
	"github.com/defiancecraft/defiancecore/pkg/errutil"
)

// ErrShutdown is returned by Submit after Shutdown has been requested.
var ErrShutdown = errors.New("executor is shut down")

// Classifier reports whether an error is transient and should retry.
type Classifier func(error) bool

// Option configures an Executor during construction.
type Option func(*Executor)

// WithBackoff sets the fixed interval between retry attempts.
// Default is 2 seconds.
func WithBackoff(d time.Duration) Option {
	return func(e *Executor) { e.backoff = d }
}

// WithClassifier sets the transient-failure classifier.
// Default is store.IsTransient.
func WithClassifier(c Classifier) Option {
	return func(e *Executor) { e.classify = c }
}

// WithLogger sets the logger. Default is slog.Default.
func WithLogger(l *slog.Logger) Option {
	return func(e *Executor) { e.logger = l }
}

// WithQueueSize sets the pending-task queue capacity. Submit blocks
// once the queue is full. Default is 256.
func WithQueueSize(n int) Option {
	return func(e *Executor) { e.queueSize = n }
}

// Executor is a fixed-size worker pool with retry-wrapped tasks.
type Executor struct {
	logger    *slog.Logger
	backoff   time.Duration
	classify  Classifier
	queueSize int

	tasks    chan func(context.Context)
	quit     chan struct{}
	wg       sync.WaitGroup
	subWG    sync.WaitGroup
	inflight atomic.Int64

	baseCtx context.Context
	cancel  context.CancelFunc

	mu     sync.Mutex
	closed bool
}

// New creates and starts an executor with the given number of workers.
func New(workers int, opts ...Option) *Executor {
	if workers < 1 {
		workers = 1
	}
	e := &Executor{
		logger:    slog.Default(),
		backoff:   2 * time.Second,
		classify:  store.IsTransient,
		queueSize: 256,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.baseCtx, e.cancel = context.WithCancel(context.Background())
	e.tasks = make(chan func(context.Context), e.queueSize)
	e.quit = make(chan struct{})

	for i := 0; i < workers; i++ {
		e.wg.Add(1)
		go e.worker()
	}
	return e
}

func (e *Executor) worker() {
	defer e.wg.Done()
	for task := range e.tasks {
		e.inflight.Add(1)
		task(e.baseCtx)
		e.inflight.Add(-1)
	}
}

// Future carries the eventual result of a submitted unit of work.
type Future[T any] struct {
	done chan struct{}
	val  T
	err  error
}

// Wait blocks until the unit completes or ctx is done.
func (f *Future[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.val, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err() //nolint:wrapcheck // caller-supplied context state passes through
	}
}

// Submit enqueues a value-returning unit of work. The name labels log
// lines and metrics. Blocks while the queue is full; fails only after
// shutdown.
func Submit[T any](e *Executor, name string, fn func(context.Context) (T, error)) (*Future[T], error) {
	f := &Future[T]{done: make(chan struct{})}

	// The enqueue happens outside the mutex: a send blocked on a full
	// queue must not hold up Shutdown. subWG keeps the task channel open
	// until every in-flight send has finished.
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil, ErrShutdown
	}
	e.subWG.Add(1)
	e.mu.Unlock()
	defer e.subWG.Done()

	select {
	case e.tasks <- func(ctx context.Context) {
		f.val, f.err = attempt(ctx, e, name, fn)
		close(f.done)
	}:
	case <-e.quit:
		return nil, ErrShutdown
	}

	recordQueueDepth(len(e.tasks))
	return f, nil
}

// Run enqueues a side-effect-only unit of work.
func (e *Executor) Run(name string, fn func(context.Context) error) (*Future[struct{}], error) {
	return Submit(e, name, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, fn(ctx)
	})
}

// attempt executes one unit under the retry policy. Transient failures
// retry on a constant backoff with no attempt cap; the loop ends only
// on success, a fatal failure, or pool shutdown cancelling the context.
func attempt[T any](ctx context.Context, e *Executor, name string, fn func(context.Context) (T, error)) (T, error) {
	var val T
	attemptNum := 0

	err := retry.Do(ctx, retry.NewConstant(e.backoff), func(ctx context.Context) error {
		attemptNum++
		v, err := fn(ctx)
		if err == nil {
			val = v
			return nil
		}
		if e.classify(err) {
			recordRetry(name)
			e.logger.Warn("transient failure in task, retrying",
				"task", name,
				"attempt", attemptNum,
				"backoff", e.backoff.String(),
				"error", err,
			)
			return retry.RetryableError(err)
		}
		return err
	})

	switch {
	case err == nil:
		recordTask(name, StatusSuccess)
	case errors.Is(err, context.Canceled):
		recordTask(name, StatusDropped)
	default:
		recordTask(name, StatusFatal)
		errutil.LogError(e.logger, "fatal failure in task", err)
	}
	return val, err
}

// Shutdown stops intake, drains outstanding work for up to timeout,
// then force-cancels and reports how many in-flight and queued tasks
// were dropped so operators know data loss may have occurred.
func (e *Executor) Shutdown(timeout time.Duration) int {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return 0
	}
	e.closed = true
	e.mu.Unlock()

	// Unblock any submitter stuck on a full queue, wait for the rest to
	// finish their sends, then close intake for the workers.
	close(e.quit)
	e.subWG.Wait()
	close(e.tasks)

	drained := make(chan struct{})
	go func() {
		e.wg.Wait()
		close(drained)
	}()

	select {
	case <-drained:
		e.cancel()
		return 0
	case <-time.After(timeout):
	}

	dropped := int(e.inflight.Load()) + len(e.tasks)
	e.cancel()
	e.logger.Error("executor shutdown timed out, dropping tasks",
		"dropped", dropped,
		"timeout", timeout.String(),
	)
	return dropped
}
