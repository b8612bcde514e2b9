package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/invoice-extractor/internal/core"
	"github.com/joseph-ayodele/invoice-extractor/internal/entity"
	"github.com/joseph-ayodele/invoice-extractor/internal/ingest"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Process every matching PDF in the input directory once",
	Long: `Discovers the PDFs of the input directory, extracts each one and writes the
summary and line item tables. Documents that yield no text are skipped and counted;
the command fails only when the results cannot be written.
An interrupt stops the run between documents and writes what was finished.`,
	Args: cobra.NoArgs,
	RunE: runRun,
}

func init() {
	runFlags.register(runCmd)
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	docs, stats, err := ingest.Discover(cfg.Input.Dir, discoverOptions(cfg), logger)
	if err != nil {
		logger.Error("failed to discover input", "dir", cfg.Input.Dir, "error", err)
		return err
	}
	logger.Info("discovery complete", "dir", cfg.Input.Dir, "matched", stats.Matched)

	proc, err := newProcessor(cfg, logger)
	if err != nil {
		return err
	}
	// sinks are opened before processing so a bad destination fails fast
	sink, cleanup, err := newSink(context.WithoutCancel(ctx), cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	result := core.NewBatch(proc, logger, cfg.Batch.Workers, cfg.Batch.DocumentTimeout).Run(ctx, docs)

	// results finished before an interrupt are still written
	if err := sink.Write(context.WithoutCancel(ctx), result); err != nil {
		printTotals(cmd, result)
		return err
	}
	printTotals(cmd, result)
	return nil
}

// printTotals reports the run totals on stdout, even when every document failed.
func printTotals(cmd *cobra.Command, r *entity.BatchResult) {
	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "run %s\n", r.RunID)
	fmt.Fprintf(w, "  files processed: %d\n", r.Stats.Total)
	fmt.Fprintf(w, "  extracted:       %d (partial %d)\n", r.Stats.Extracted, r.Stats.Partial)
	fmt.Fprintf(w, "  failed:          %d\n", r.Stats.Failed)
	if r.Stats.Skipped > 0 {
		fmt.Fprintf(w, "  skipped:         %d (interrupted)\n", r.Stats.Skipped)
	}
	fmt.Fprintf(w, "  summary rows:    %d\n", len(r.Summaries))
	fmt.Fprintf(w, "  line item rows:  %d\n", len(r.LineItems))
}
