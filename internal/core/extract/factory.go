package extract

import (
	"fmt"
	"log/slog"

	"github.com/joseph-ayodele/invoice-extractor/internal/common"
	"github.com/joseph-ayodele/invoice-extractor/internal/core/ocr"
)

// New returns the TextExtractor selected by cfg.Engine.
func New(cfg common.TextConfig, runner ocr.Runner, logger *slog.Logger) (TextExtractor, error) {
	switch cfg.Engine {
	case common.TextEnginePdftotext, "":
		return NewPdftotext(cfg.Pdftotext, runner, logger), nil
	case common.TextEngineNative:
		return NewNative(logger), nil
	default:
		return nil, fmt.Errorf("unknown text engine %q: %w", cfg.Engine, common.ErrInvalidInput)
	}
}
