package core

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/joseph-ayodele/invoice-extractor/constants"
	"github.com/joseph-ayodele/invoice-extractor/internal/common"
	"github.com/joseph-ayodele/invoice-extractor/internal/core/extract"
	"github.com/joseph-ayodele/invoice-extractor/internal/core/fields"
	"github.com/joseph-ayodele/invoice-extractor/internal/core/lineitems"
	"github.com/joseph-ayodele/invoice-extractor/internal/core/ocr"
	"github.com/joseph-ayodele/invoice-extractor/internal/entity"
)

// DocumentProcessor runs one document through the pipeline. It never fails: the
// outcome, including any error, is reported on the result.
type DocumentProcessor interface {
	Process(ctx context.Context, doc entity.Document) entity.DocumentResult
}

// ProcessorOptions tune the OCR fallback.
type ProcessorOptions struct {
	OCROutputDir  string // empty: a temporary directory per document
	KeepOCROutput bool
	MaxOCR        int // concurrent OCR invocations across all workers
}

// Processor acquires text (falling back to OCR), then recognises fields and line items.
type Processor struct {
	logger  *slog.Logger
	text    extract.TextExtractor
	ocr     ocr.Engine
	ocrGate *semaphore.Weighted
	fields  *fields.Extractor
	items   *lineitems.Parser
	opts    ProcessorOptions
}

func NewProcessor(
	logger *slog.Logger,
	text extract.TextExtractor,
	engine ocr.Engine,
	fieldExtractor *fields.Extractor,
	parser *lineitems.Parser,
	opts ProcessorOptions,
) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	if parser == nil {
		parser = lineitems.NewParser()
	}
	if opts.MaxOCR < 1 {
		opts.MaxOCR = 1
	}
	return &Processor{
		logger:  logger,
		text:    text,
		ocr:     engine,
		ocrGate: semaphore.NewWeighted(int64(opts.MaxOCR)),
		fields:  fieldExtractor,
		items:   parser,
		opts:    opts,
	}
}

// Process moves doc from PENDING to EXTRACTED or FAILED. OCR runs at most once and only
// when direct extraction yields no usable text.
func (p *Processor) Process(ctx context.Context, doc entity.Document) entity.DocumentResult {
	start := time.Now()
	logger := common.LoggerFromContext(ctx, p.logger).With("pdf_filename", doc.Name)
	res := entity.DocumentResult{Document: doc, Status: constants.DocStatusPending}

	logger.Debug("document started", "path", doc.Path, "size", doc.Size)

	text := p.text.Extract(ctx, doc.Path)
	direct := text.Warnings
	if len(direct) > 0 {
		logger.Warn("direct text extraction failed", "engine", text.Engine, "warnings", direct)
	}
	if ocr.IsUsable(text.Text) {
		res.Status = constants.DocStatusTextAcquired
		res.Method = constants.MethodPDFText
	} else {
		logger.Info("no usable text, falling back to ocr", "engine", text.Engine)
		res.Status = constants.DocStatusOCRAttempted
		res.OCRAttempted = true

		var err error
		text, err = p.runOCR(ctx, doc, logger)
		if err != nil {
			if len(direct) > 0 {
				// neither path could read the file
				err = common.AcquisitionError(strings.Join(direct, "; "), err)
			}
			return p.fail(logger, res, start, err)
		}
		if !ocr.IsUsable(text.Text) {
			return p.fail(logger, res, start,
				common.NewAppError(common.CodeNoText, "ocr output has no text", common.ErrNoText))
		}
		res.Method = constants.MethodPDFOCR
	}
	res.TextBytes = len(text.Text)
	logger.Info("text acquired",
		"status", res.Status, "method", res.Method, "engine", text.Engine,
		"bytes", res.TextBytes, "pages", text.Pages, "duration_ms", text.Duration.Milliseconds())

	res.Fields = p.fields.Extract(text.Text)
	res.Items = p.items.Parse(text.Text)
	res.Status = constants.DocStatusExtracted
	res.Duration = time.Since(start)

	missing := res.Fields.Missing()
	if res.Fields.IsEmpty() {
		logger.Warn("no fields recognised", "line_items", len(res.Items))
	}
	logger.Info("document extracted",
		"method", res.Method,
		"order_number", res.Fields.OrderNumber(),
		"invoice_number", res.Fields.InvoiceNumber,
		"missing", missing,
		"line_items", len(res.Items),
		"duration_ms", res.Duration.Milliseconds(),
	)
	return res
}

// runOCR produces the OCR copy of doc and re-acquires its text. Waiting for a slot is
// queueing, not OCR work, so neither the wait nor the invocation is charged to the
// document deadline; the engine bounds each invocation with its own timeout.
func (p *Processor) runOCR(ctx context.Context, doc entity.Document, logger *slog.Logger) (extract.TextExtractionResult, error) {
	ctx = context.WithoutCancel(ctx)
	waitStart := time.Now()
	if err := p.ocrGate.Acquire(ctx, 1); err != nil {
		return extract.TextExtractionResult{}, common.OCRError("wait for ocr slot", err)
	}
	defer p.ocrGate.Release(1)
	if waited := time.Since(waitStart); waited > time.Second {
		logger.Debug("ocr slot acquired", "waited_ms", waited.Milliseconds())
	}

	out, cleanup, err := p.ocrOutputPath(doc)
	if err != nil {
		return extract.TextExtractionResult{}, common.OCRError("prepare ocr output", err)
	}
	defer cleanup()

	if err := p.ocr.Run(ctx, doc.Path, out); err != nil {
		return extract.TextExtractionResult{}, err
	}
	logger.Debug("ocr output ready", "output", out)
	return p.text.Extract(ctx, out), nil
}

func (p *Processor) ocrOutputPath(doc entity.Document) (string, func(), error) {
	if p.opts.OCROutputDir == "" {
		dir, err := os.MkdirTemp("", "invoicex-ocr-*")
		if err != nil {
			return "", nil, err
		}
		return filepath.Join(dir, filepath.Base(doc.Path)), func() { _ = os.RemoveAll(dir) }, nil
	}
	out := filepath.Join(p.opts.OCROutputDir, filepath.FromSlash(doc.Name))
	if p.opts.KeepOCROutput {
		return out, func() {}, nil
	}
	return out, func() { _ = os.Remove(out) }, nil
}

func (p *Processor) fail(logger *slog.Logger, res entity.DocumentResult, start time.Time, err error) entity.DocumentResult {
	res.Status = constants.DocStatusFailed
	res.Err = fmt.Errorf("%s: %w", res.Document.Name, err)
	res.Duration = time.Since(start)
	logger.Error("processor.document.failed",
		"ocr_attempted", res.OCRAttempted,
		"code", common.ErrorCode(err),
		"duration_ms", res.Duration.Milliseconds(),
		"err", err,
	)
	return res
}
