// Package export persists the two output relations of a batch run.
package export

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/joseph-ayodele/invoice-extractor/internal/common"
	"github.com/joseph-ayodele/invoice-extractor/internal/entity"
)

// Sink writes a complete BatchResult. A returned error is a SinkFailure and fails the run.
type Sink interface {
	Name() string
	Write(ctx context.Context, result *entity.BatchResult) error
}

// Multi fans a result out to several sinks. Every sink is attempted; the errors of
// those that failed are joined.
type Multi struct {
	sinks  []Sink
	logger *slog.Logger
}

func NewMulti(logger *slog.Logger, sinks ...Sink) *Multi {
	if logger == nil {
		logger = slog.Default()
	}
	return &Multi{sinks: sinks, logger: logger}
}

func (m *Multi) Name() string { return "multi" }

func (m *Multi) Write(ctx context.Context, result *entity.BatchResult) error {
	var errs []error
	for _, s := range m.sinks {
		if err := s.Write(ctx, result); err != nil {
			m.logger.Error("export.sink.failed", "sink", s.Name(), "run_id", result.RunID, "err", err)
			errs = append(errs, fmt.Errorf("%s: %w", s.Name(), err))
			continue
		}
		m.logger.Info("export.sink.ok", "sink", s.Name(), "run_id", result.RunID,
			"summary_rows", len(result.Summaries), "line_item_rows", len(result.LineItems))
	}
	if len(errs) > 0 {
		return common.SinkError("write results", errors.Join(errs...))
	}
	return nil
}

// writeAtomic writes to a temporary file next to path and renames it into place, so
// readers never observe a half-written table.
func writeAtomic(path string, write func(w io.Writer) error) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	if err = write(tmp); err != nil {
		return err
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename into place: %w", err)
	}
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	return writeAtomic(dst, func(w io.Writer) error {
		_, err := io.Copy(w, in)
		return err
	})
}
