package async

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// ProcessorQueue runs jobs on a fixed set of workers.
//
// Cancelling the base context stops new jobs from starting: queued jobs are drained
// and counted as skipped. A job that already started runs to completion, bounded only
// by its own timeout, so accumulated results are never cut off halfway.
type ProcessorQueue struct {
	handle  Handler
	logger  *slog.Logger
	workers int
	timeout time.Duration
	base    context.Context

	ch   chan Job
	wg   sync.WaitGroup
	once sync.Once

	mu     sync.RWMutex
	closed bool

	processed atomic.Int64
	skipped   atomic.Int64
}

var _ Queue = (*ProcessorQueue)(nil)

// NewQueue is a NewQueueFunc backed by ProcessorQueue.
func NewQueue(handle Handler, logger *slog.Logger, opts ...Option) Queue {
	return NewProcessorQueue(handle, logger, opts...)
}

type Option func(*ProcessorQueue)

func WithWorkers(n int) Option {
	return func(q *ProcessorQueue) {
		if n > 0 {
			q.workers = n
		}
	}
}
func WithQueueSize(n int) Option {
	return func(q *ProcessorQueue) {
		if n > 0 {
			q.ch = make(chan Job, n)
		}
	}
}
func WithProcessTimeout(d time.Duration) Option {
	return func(q *ProcessorQueue) {
		if d > 0 {
			q.timeout = d
		}
	}
}

// WithBaseContext sets the context whose cancellation stops the queue from starting jobs.
// Its values (run ID, logger) are passed on to every job.
func WithBaseContext(ctx context.Context) Option {
	return func(q *ProcessorQueue) {
		if ctx != nil {
			q.base = ctx
		}
	}
}

func NewProcessorQueue(handle Handler, logger *slog.Logger, opts ...Option) *ProcessorQueue {
	if logger == nil {
		logger = slog.Default()
	}
	q := &ProcessorQueue{
		handle:  handle,
		logger:  logger,
		workers: 1,
		timeout: 10 * time.Minute,
		base:    context.Background(),
		ch:      make(chan Job, 256),
	}
	for _, o := range opts {
		o(q)
	}
	q.start()
	return q
}

func (q *ProcessorQueue) start() {
	q.once.Do(func() {
		for i := 0; i < q.workers; i++ {
			q.wg.Add(1)
			go func(workerID int) {
				defer q.wg.Done()
				q.logger.Debug("worker started", "worker_id", workerID)

				for job := range q.ch {
					if q.base.Err() != nil {
						q.skipped.Add(1)
						q.logger.Debug("job skipped", "worker_id", workerID, "pdf_filename", job.Document.Name)
						continue
					}
					ctx, cancel := context.WithTimeout(context.WithoutCancel(q.base), q.timeout)
					q.handle(ctx, job)
					cancel()
					q.processed.Add(1)
				}

				q.logger.Debug("worker stopped", "worker_id", workerID)
			}(i + 1)
		}
	})
}

// Enqueue blocks while the queue is full, until ctx is done.
func (q *ProcessorQueue) Enqueue(ctx context.Context, job Job) error {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		q.logger.Warn("cannot enqueue: queue is shutting down", "pdf_filename", job.Document.Name)
		return ErrQueueClosed
	}
	if job.SubmittedAt.IsZero() {
		job.SubmittedAt = time.Now()
	}
	select {
	case q.ch <- job:
		q.logger.Debug("queued document for processing", "pdf_filename", job.Document.Name)
		return nil
	default:
	}

	q.logger.Warn("queue full, applying backpressure", "pdf_filename", job.Document.Name)
	select {
	case q.ch <- job:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Shutdown stops accepting jobs and waits for queued ones to drain or ctx to end.
func (q *ProcessorQueue) Shutdown(ctx context.Context) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	close(q.ch)
	q.mu.Unlock()

	done := make(chan struct{})
	go func() { defer close(done); q.wg.Wait() }()

	select {
	case <-ctx.Done():
		q.logger.Warn("shutdown interrupted by context")
	case <-done:
		q.logger.Debug("queue drained, shutdown complete",
			"processed", q.processed.Load(), "skipped", q.skipped.Load())
	}
}

// Processed returns the number of jobs handed to the handler so far.
func (q *ProcessorQueue) Processed() int { return int(q.processed.Load()) }

// Skipped returns the number of dequeued jobs dropped because the base context ended.
func (q *ProcessorQueue) Skipped() int { return int(q.skipped.Load()) }
