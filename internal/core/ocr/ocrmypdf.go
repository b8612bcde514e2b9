package ocr

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/joseph-ayodele/invoice-extractor/internal/common"
)

// Engine produces an OCR-normalized copy of input at output. A nil error means the
// output file is ready for text extraction.
type Engine interface {
	Run(ctx context.Context, input, output string) error
}

// Config controls the OCRmyPDF invocation.
type Config struct {
	Command  string        // binary name or absolute path; if empty -> "ocrmypdf"
	Language string        // tesseract language(s), e.g. "eng+deu"; empty keeps the tool default
	Timeout  time.Duration // wall-clock limit per invocation; 0 = bounded only by ctx
}

// OCRmyPDF runs the ocrmypdf command line tool.
type OCRmyPDF struct {
	cfg    Config
	runner Runner
	logger *slog.Logger
}

func NewOCRmyPDF(cfg Config, runner Runner, logger *slog.Logger) *OCRmyPDF {
	if logger == nil {
		logger = slog.Default()
	}
	if runner == nil {
		runner = ExecRunner{}
	}
	if cfg.Command == "" {
		cfg.Command = "ocrmypdf"
	}
	return &OCRmyPDF{cfg: cfg, runner: runner, logger: logger}
}

// Args returns the fixed argument set: forced re-OCR, optimisation level 3, deskew,
// background cleanup and PDF output, followed by the input and output paths.
func (o *OCRmyPDF) Args(input, output string) []string {
	args := []string{
		"--force-ocr",
		"--optimize", "3",
		"--deskew",
		"--clean",
		"--output-type", "pdf",
	}
	if o.cfg.Language != "" {
		args = append(args, "-l", o.cfg.Language)
	}
	return append(args, input, output)
}

// Run invokes ocrmypdf. Non-zero exit, start failure and timeout are all reported as
// an error matching common.ErrOCR; stdout/stderr are only logged.
func (o *OCRmyPDF) Run(ctx context.Context, input, output string) error {
	if err := os.MkdirAll(filepath.Dir(output), 0o755); err != nil {
		return common.OCRError("create ocr output dir", err)
	}

	if o.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.cfg.Timeout)
		defer cancel()
	}

	start := time.Now()
	o.logger.Info("ocr started", "input", input, "output", output)
	stdout, stderr, err := o.runner.Run(ctx, o.cfg.Command, o.logger, o.Args(input, output)...)
	dur := time.Since(start)

	if len(stdout) > 0 {
		o.logger.Info("ocr stdout", "input", input, "stdout", truncate(string(stdout), logCap))
	}
	if len(stderr) > 0 {
		o.logger.Warn("ocr stderr", "input", input, "stderr", truncate(string(stderr), logCap))
	}

	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			err = fmt.Errorf("%w after %s: %v", common.ErrOCRTimeout, dur.Round(time.Millisecond), err)
		}
		o.logger.Error("ocr failed", "input", input, "duration_ms", dur.Milliseconds(), "exit_code", ExitCode(err), "error", err)
		return common.OCRError(filepath.Base(input), err)
	}
	if _, statErr := os.Stat(output); statErr != nil {
		return common.OCRError(filepath.Base(input), fmt.Errorf("ocr produced no output: %w", statErr))
	}

	o.logger.Info("ocr completed", "input", input, "duration_ms", dur.Milliseconds())
	return nil
}
