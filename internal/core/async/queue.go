package async

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/joseph-ayodele/invoice-extractor/internal/entity"
)

// ErrQueueClosed is returned by Enqueue after Shutdown.
var ErrQueueClosed = errors.New("queue is shutting down")

// Job is one document waiting for a worker.
type Job struct {
	Document    entity.Document
	SubmittedAt time.Time
}

// Handler processes one job. ctx carries the per-job timeout.
type Handler func(ctx context.Context, job Job)

// Queue accepts jobs until Shutdown, which waits for accepted jobs to finish.
type Queue interface {
	Enqueue(ctx context.Context, job Job) error
	Shutdown(ctx context.Context)
	// Skipped counts accepted jobs that never reached the handler.
	Skipped() int
}

// NewQueueFunc builds a Queue around a handler.
type NewQueueFunc func(handle Handler, logger *slog.Logger, opts ...Option) Queue
