// Package workerpool runs repository and provider operations on a fixed set
// of goroutines and hands results back as futures.
//
// A Pool is created once per process and shared. Submit never blocks the
// caller: work is queued or rejected with ErrSaturated. Shutdown drains
// in-flight and queued work for a grace period, then cancels the pool
// context so whatever is left fails with context.Canceled.
package workerpool

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/mrlokans/bookmemo/internal/metrics"
)

var (
	// ErrClosed is returned for work submitted after Shutdown.
	ErrClosed = errors.New("worker pool is shut down")

	// ErrSaturated is returned when the queue is full.
	ErrSaturated = errors.New("worker pool queue is full")
)

// DefaultDrainTimeout is how long Shutdown waits before cancelling tasks.
const DefaultDrainTimeout = 60 * time.Second

type job func(ctx context.Context)

// Pool is a fixed-size worker pool with a bounded queue.
type Pool struct {
	ctx    context.Context
	cancel context.CancelFunc
	jobs   chan job
	wg     sync.WaitGroup

	mu     sync.RWMutex
	closed bool

	logger  *zap.Logger
	metrics *metrics.Collector
}

// New starts size workers reading from a queue of queueSize pending tasks.
func New(size, queueSize int, logger *zap.Logger, collector *metrics.Collector) *Pool {
	if size < 1 {
		size = 1
	}
	if queueSize < 0 {
		queueSize = 0
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	ctx, cancel := context.WithCancel(context.Background())
	p := &Pool{
		ctx:     ctx,
		cancel:  cancel,
		jobs:    make(chan job, queueSize),
		logger:  logger,
		metrics: collector,
	}

	p.wg.Add(size)
	for i := 0; i < size; i++ {
		go p.worker()
	}

	logger.Info("worker pool started", zap.Int("workers", size), zap.Int("queue", queueSize))
	return p
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for j := range p.jobs {
		j(p.ctx)
	}
}

// enqueue hands j to a worker without blocking.
func (p *Pool) enqueue(j job) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return ErrClosed
	}
	select {
	case p.jobs <- j:
		p.metrics.TaskQueued()
		return nil
	default:
		return ErrSaturated
	}
}

// Shutdown stops accepting work and waits up to grace for queued and running
// tasks. If they do not finish in time the pool context is cancelled and
// Shutdown returns false. Calling Shutdown more than once is safe.
func (p *Pool) Shutdown(grace time.Duration) bool {
	p.mu.Lock()
	if !p.closed {
		p.closed = true
		close(p.jobs)
	}
	p.mu.Unlock()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	timer := time.NewTimer(grace)
	defer timer.Stop()

	select {
	case <-done:
		p.cancel()
		p.logger.Info("worker pool drained")
		return true
	case <-timer.C:
		p.logger.Warn("worker pool drain timed out, cancelling remaining tasks", zap.Duration("grace", grace))
		p.cancel()
		return false
	}
}

// Submit schedules fn on p and returns a future for its result. Panics in fn
// are recovered and delivered as errors.
func Submit[T any](p *Pool, fn func(ctx context.Context) (T, error)) *Future[T] {
	f := newFuture[T]()

	err := p.enqueue(func(ctx context.Context) {
		if err := ctx.Err(); err != nil {
			var zero T
			p.metrics.TaskFinished("cancelled")
			f.resolve(zero, err)
			return
		}

		v, err := run(ctx, fn)
		switch {
		case err == nil:
			p.metrics.TaskFinished("ok")
		case errors.Is(err, context.Canceled):
			p.metrics.TaskFinished("cancelled")
		default:
			p.metrics.TaskFinished("error")
		}
		f.resolve(v, err)
	})
	if err != nil {
		p.metrics.TaskRejected()
		var zero T
		f.resolve(zero, err)
	}

	return f
}

func run[T any](ctx context.Context, fn func(ctx context.Context) (T, error)) (v T, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("task panicked: %v", r)
		}
	}()
	return fn(ctx)
}

// SubmitContext is Submit for request-scoped work: the context passed to fn
// ends when either ctx or the pool context ends.
func SubmitContext[T any](ctx context.Context, p *Pool, fn func(ctx context.Context) (T, error)) *Future[T] {
	return Submit(p, func(poolCtx context.Context) (T, error) {
		merged, cancel := context.WithCancel(ctx)
		defer cancel()
		stop := context.AfterFunc(poolCtx, cancel)
		defer stop()

		if err := merged.Err(); err != nil {
			var zero T
			return zero, err
		}
		return fn(merged)
	})
}
