package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/invoice-extractor/internal/common"
	"github.com/joseph-ayodele/invoice-extractor/internal/core"
	"github.com/joseph-ayodele/invoice-extractor/internal/core/async"
	"github.com/joseph-ayodele/invoice-extractor/internal/ingest"
)

var (
	watchInitialScan bool
	watchDebounce    time.Duration
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Process PDFs as they appear in the input directory",
	Long: `Watches the input directory and runs every new or rewritten PDF through the
extraction pipeline. The output tables are rewritten after each document and hold
everything processed since the command started. Stops on interrupt.`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() {
	watchFlags.register(watchCmd)
	watchCmd.Flags().BoolVar(&watchInitialScan, "initial-scan", true, "process files already present at start")
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", 2*time.Second, "quiet time before a changed file is processed")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	proc, err := newProcessor(cfg, logger)
	if err != nil {
		return err
	}
	sink, cleanup, err := newSink(context.WithoutCancel(ctx), cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	runID := uuid.NewString()
	runLog := logger.With("run_id", runID)
	ctx = common.WithLogger(common.WithRunID(ctx, runID), runLog)
	agg := core.NewAggregator(runID)

	// the queue serializes sink writes; a single worker keeps them in arrival order
	var sinkErr error
	q := async.NewQueue(func(jctx context.Context, job async.Job) {
		agg.Record(proc.Process(jctx, job.Document))
		if err := sink.Write(jctx, agg.Snapshot()); err != nil {
			sinkErr = err
			runLog.Error("watch.sink.failed", "err", err)
			stop()
		}
	}, runLog,
		async.WithWorkers(1),
		async.WithProcessTimeout(cfg.Batch.DocumentTimeout),
		async.WithBaseContext(ctx),
	)

	events, errs, err := ingest.StartWatcher(ctx, ingest.WatchConfig{
		Root:        cfg.Input.Dir,
		Options:     discoverOptions(cfg),
		InitialScan: watchInitialScan,
		Debounce:    watchDebounce,
		Logger:      runLog,
	})
	if err != nil {
		q.Shutdown(context.Background())
		return err
	}
	runLog.Info("watching for documents", "dir", cfg.Input.Dir, "pattern", cfg.Input.Pattern)

loop:
	for {
		select {
		case <-ctx.Done():
			break loop
		case path, ok := <-events:
			if !ok {
				break loop
			}
			doc, err := ingest.NewDocument(cfg.Input.Dir, path)
			if err != nil {
				runLog.Warn("skipping vanished file", "path", path, "error", err)
				continue
			}
			if err := q.Enqueue(ctx, async.Job{Document: doc}); err != nil {
				break loop
			}
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			runLog.Warn("watcher reported error", "error", err)
		}
	}

	q.Shutdown(context.Background())
	agg.Skip(q.Skipped())
	result := agg.Snapshot()
	core.LogSummary(runLog, result)
	if sinkErr != nil {
		printTotals(cmd, result)
		return sinkErr
	}
	if err := sink.Write(context.Background(), result); err != nil {
		printTotals(cmd, result)
		return err
	}
	printTotals(cmd, result)
	return nil
}
