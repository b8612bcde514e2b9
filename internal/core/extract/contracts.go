package extract

import (
	"context"
	"time"
)

// TextExtractor is Stage 1: file -> text.
// Implementations never fail: any problem is logged and reported as empty Text,
// which callers read as "no usable text".
type TextExtractor interface {
	Extract(ctx context.Context, path string) TextExtractionResult
}

type TextExtractionResult struct {
	Text     string
	Pages    int
	Engine   string // "pdftotext" | "native"
	Duration time.Duration
	Warnings []string // why extraction failed; empty when the engine ran cleanly
}
