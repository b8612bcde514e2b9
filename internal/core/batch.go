package core

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/invoice-extractor/internal/common"
	"github.com/joseph-ayodele/invoice-extractor/internal/core/async"
	"github.com/joseph-ayodele/invoice-extractor/internal/entity"
)

// Batch drives a set of documents through a DocumentProcessor on a bounded worker pool.
type Batch struct {
	proc       DocumentProcessor
	logger     *slog.Logger
	workers    int
	docTimeout time.Duration
	newQueue   async.NewQueueFunc
}

// BatchOption customizes a Batch.
type BatchOption func(*Batch)

// WithQueue replaces the worker pool implementation.
func WithQueue(f async.NewQueueFunc) BatchOption {
	return func(b *Batch) {
		if f != nil {
			b.newQueue = f
		}
	}
}

func NewBatch(proc DocumentProcessor, logger *slog.Logger, workers int, docTimeout time.Duration, opts ...BatchOption) *Batch {
	if logger == nil {
		logger = slog.Default()
	}
	if workers < 1 {
		workers = 1
	}
	if docTimeout <= 0 {
		docTimeout = 10 * time.Minute
	}
	b := &Batch{proc: proc, logger: logger, workers: workers, docTimeout: docTimeout, newQueue: async.NewQueue}
	for _, o := range opts {
		o(b)
	}
	return b
}

// Run processes every document once and returns the accumulated relations.
// Document failures never abort the batch. Cancelling ctx abandons documents that have
// not started yet; the result then covers everything finished before that point.
func (b *Batch) Run(ctx context.Context, docs []entity.Document) *entity.BatchResult {
	runID := uuid.NewString()
	ctx = common.WithRunID(ctx, runID)
	logger := b.logger.With("run_id", runID)
	ctx = common.WithLogger(ctx, logger)

	logger.Info("batch started", "files_total", len(docs), "workers", b.workers)
	agg := NewAggregator(runID)

	q := b.newQueue(func(jctx context.Context, job async.Job) {
		agg.Record(b.proc.Process(jctx, job.Document))
	}, logger,
		async.WithWorkers(b.workers),
		async.WithQueueSize(len(docs)),
		async.WithProcessTimeout(b.docTimeout),
		async.WithBaseContext(ctx),
	)

	notQueued := 0
	for i, d := range docs {
		if err := q.Enqueue(ctx, async.Job{Document: d}); err != nil {
			notQueued = len(docs) - i
			logger.Warn("batch interrupted", "not_queued", notQueued, "err", err)
			break
		}
	}
	q.Shutdown(context.Background())
	agg.Skip(notQueued + q.Skipped())

	result := agg.Snapshot()
	LogSummary(logger, result)
	return result
}

// LogSummary writes the batch-level counts.
func LogSummary(logger *slog.Logger, r *entity.BatchResult) {
	logger.Info("batch finished",
		"files_total", r.Stats.Total,
		"files_extracted", r.Stats.Extracted,
		"files_partial", r.Stats.Partial,
		"files_failed", r.Stats.Failed,
		"files_skipped", r.Stats.Skipped,
		"interrupted", r.Stats.Interrupted,
		"summary_rows", len(r.Summaries),
		"line_item_rows", len(r.LineItems),
		"elapsed_ms", r.FinishedAt.Sub(r.StartedAt).Milliseconds(),
	)
}
