package extract

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ledongthuc/pdf"

	"github.com/joseph-ayodele/invoice-extractor/internal/core/ocr"
)

// Native reads the text layer in-process. It needs no external binary but does not
// preserve column spacing as well as pdftotext.
type Native struct {
	logger *slog.Logger
}

func NewNative(logger *slog.Logger) *Native {
	if logger == nil {
		logger = slog.Default()
	}
	return &Native{logger: logger}
}

func (n *Native) Extract(ctx context.Context, path string) TextExtractionResult {
	start := time.Now()
	res := TextExtractionResult{Engine: "native"}

	text, pages, err := readPages(ctx, path)
	res.Duration = time.Since(start)
	if err != nil {
		n.logger.Warn("native text extraction failed", "path", path, "error", err)
		res.Warnings = append(res.Warnings, err.Error())
		return res
	}
	res.Text = ocr.Normalize(text)
	res.Pages = pages
	return res
}

// readPages concatenates every page in document order. Any page failure discards the
// whole document: partial text is never returned.
func readPages(ctx context.Context, path string) (text string, pages int, err error) {
	// the pdf package panics on some malformed files
	defer func() {
		if r := recover(); r != nil {
			text, pages, err = "", 0, fmt.Errorf("pdf reader panic: %v", r)
		}
	}()

	f, r, err := pdf.Open(path)
	if err != nil {
		return "", 0, err
	}
	defer f.Close()

	var b strings.Builder
	pages = r.NumPage()
	for i := 1; i <= pages; i++ {
		if err := ctx.Err(); err != nil {
			return "", 0, err
		}
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		t, err := p.GetPlainText(nil)
		if err != nil {
			return "", 0, fmt.Errorf("page %d: %w", i, err)
		}
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString(t)
	}
	return b.String(), pages, nil
}
