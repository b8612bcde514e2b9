package repository

import (
	"context"
	"log/slog"

	"github.com/joseph-ayodele/invoice-extractor/internal/entity"
)

// Sink writes batch results through a ResultRepository, one transaction per document.
// Writing the same run again replaces its rows, which lets watch mode rewrite the
// accumulated result after every document.
type Sink struct {
	repo   ResultRepository
	logger *slog.Logger
}

func NewSink(repo ResultRepository, logger *slog.Logger) *Sink {
	if logger == nil {
		logger = slog.Default()
	}
	return &Sink{repo: repo, logger: logger}
}

func (s *Sink) Name() string { return "database" }

func (s *Sink) Write(ctx context.Context, result *entity.BatchResult) error {
	if err := s.repo.StartRun(ctx, result.RunID, result.StartedAt); err != nil {
		return err
	}

	items := make(map[string][]entity.LineItemRow, len(result.Summaries))
	for _, li := range result.LineItems {
		items[li.PDFFilename] = append(items[li.PDFFilename], li)
	}
	for _, sum := range result.Summaries {
		if err := s.repo.SaveDocument(ctx, result.RunID, sum, items[sum.PDFFilename]); err != nil {
			return err
		}
	}
	// a document re-processed in watch mode may have failed this time
	for _, name := range result.Failed {
		if err := s.repo.DeleteDocument(ctx, result.RunID, name); err != nil {
			return err
		}
	}

	if err := s.repo.FinishRun(ctx, result.RunID, result.FinishedAt, result.Stats); err != nil {
		return err
	}
	s.logger.Debug("repository.results.saved", "run_id", result.RunID,
		"summary_rows", len(result.Summaries), "line_item_rows", len(result.LineItems))
	return nil
}
