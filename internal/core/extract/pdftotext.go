package extract

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/joseph-ayodele/invoice-extractor/internal/core/ocr"
)

// Pdftotext extracts the text layer with poppler's pdftotext, keeping the physical layout
// so that table columns stay separated by runs of spaces.
type Pdftotext struct {
	bin    string
	runner ocr.Runner
	logger *slog.Logger
}

func NewPdftotext(bin string, runner ocr.Runner, logger *slog.Logger) *Pdftotext {
	if logger == nil {
		logger = slog.Default()
	}
	if runner == nil {
		runner = ocr.ExecRunner{}
	}
	if bin == "" {
		bin = "pdftotext"
	}
	return &Pdftotext{bin: bin, runner: runner, logger: logger}
}

func (p *Pdftotext) Extract(ctx context.Context, path string) TextExtractionResult {
	start := time.Now()
	res := TextExtractionResult{Engine: "pdftotext"}

	// pdftotext -layout -enc UTF-8 -eol unix <path> -
	out, errb, err := p.runner.Run(ctx, p.bin, p.logger, "-layout", "-enc", "UTF-8", "-eol", "unix", path, "-")
	res.Duration = time.Since(start)
	if err != nil {
		p.logger.Warn("pdftotext failed", "path", path, "error", err)
		msg := strings.TrimSpace(string(errb))
		if msg == "" {
			msg = err.Error()
		}
		res.Warnings = append(res.Warnings, msg)
		return res
	}
	res.Text = ocr.Normalize(string(out))
	// A form-feed \f is used as page separator by default
	res.Pages = 1 + strings.Count(strings.TrimRight(string(out), "\f\n"), "\f")
	return res
}
