package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"time"
	"unicode/utf8"

	"github.com/joseph-ayodele/invoice-extractor/constants"
	"github.com/joseph-ayodele/invoice-extractor/internal/entity"
)

type CSVConfig struct {
	SummaryPath   string
	LineItemsPath string
	Delimiter     string // single character; empty -> ","
	MirrorDir     string // empty disables mirroring
}

// CSVSink writes the summary and line item relations as delimited text with a header row.
type CSVSink struct {
	cfg    CSVConfig
	comma  rune
	logger *slog.Logger
}

func NewCSVSink(cfg CSVConfig, logger *slog.Logger) (*CSVSink, error) {
	if logger == nil {
		logger = slog.Default()
	}
	comma := ','
	if cfg.Delimiter != "" {
		r, size := utf8.DecodeRuneInString(cfg.Delimiter)
		if size != len(cfg.Delimiter) || r == '"' || r == '\r' || r == '\n' || r == utf8.RuneError {
			return nil, fmt.Errorf("invalid csv delimiter %q", cfg.Delimiter)
		}
		comma = r
	}
	return &CSVSink{cfg: cfg, comma: comma, logger: logger}, nil
}

func (s *CSVSink) Name() string { return "csv" }

// Write replaces both files. Mirroring happens after both primary writes succeeded and
// its failure is only logged.
func (s *CSVSink) Write(ctx context.Context, result *entity.BatchResult) error {
	start := time.Now()

	summaries := make([][]string, 0, len(result.Summaries))
	for _, r := range result.Summaries {
		summaries = append(summaries, r.Values())
	}
	if err := s.writeTable(s.cfg.SummaryPath, constants.SummaryColumns, summaries); err != nil {
		return fmt.Errorf("write summary csv: %w", err)
	}

	items := make([][]string, 0, len(result.LineItems))
	for _, r := range result.LineItems {
		items = append(items, r.Values())
	}
	if err := s.writeTable(s.cfg.LineItemsPath, constants.LineItemColumns, items); err != nil {
		return fmt.Errorf("write line items csv: %w", err)
	}

	s.logger.Info("export.csv.ok",
		"summary", s.cfg.SummaryPath, "summary_rows", len(summaries),
		"line_items", s.cfg.LineItemsPath, "line_item_rows", len(items),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)

	if s.cfg.MirrorDir != "" {
		s.mirror(ctx)
	}
	return nil
}

func (s *CSVSink) writeTable(path string, header []string, rows [][]string) error {
	return writeAtomic(path, func(w io.Writer) error {
		cw := csv.NewWriter(w)
		cw.Comma = s.comma
		if err := cw.Write(header); err != nil {
			return err
		}
		if err := cw.WriteAll(rows); err != nil {
			return err
		}
		return cw.Error()
	})
}

func (s *CSVSink) mirror(ctx context.Context) {
	for _, src := range []string{s.cfg.SummaryPath, s.cfg.LineItemsPath} {
		if ctx.Err() != nil {
			s.logger.Warn("export.mirror.skipped", "dir", s.cfg.MirrorDir, "err", ctx.Err())
			return
		}
		dst := filepath.Join(s.cfg.MirrorDir, filepath.Base(src))
		if err := copyFile(src, dst); err != nil {
			s.logger.Error("export.mirror.failed", "src", src, "dst", dst, "err", err)
			return
		}
	}
	s.logger.Info("export.mirror.ok", "dir", s.cfg.MirrorDir)
}
