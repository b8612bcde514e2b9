package core

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/invoice-extractor/internal/common"
	"github.com/joseph-ayodele/invoice-extractor/internal/core/extract"
	"github.com/joseph-ayodele/invoice-extractor/internal/core/fields"
	"github.com/joseph-ayodele/invoice-extractor/internal/core/lineitems"
	"github.com/joseph-ayodele/invoice-extractor/internal/entity"
)

const invoiceText = `Invoice No: INV-1001
Order No: 3100123456
Description   SKU   Qty   Unit Price   Amount
Widget   W-1   2   10.00   20.00
Bolt   B-2   1   1.00   1.00

Freight Inc GST: 9.95
`

// fakeText returns canned text per path and counts calls.
type fakeText struct {
	mu       sync.Mutex
	texts    map[string]string
	warnings map[string][]string
	calls    []string
}

func newFakeText() *fakeText {
	return &fakeText{texts: make(map[string]string), warnings: make(map[string][]string)}
}

// fail makes extraction of path report warning and no text.
func (f *fakeText) fail(path, warning string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.warnings[path] = append(f.warnings[path], warning)
}

func (f *fakeText) set(path, text string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.texts[path] = text
}

func (f *fakeText) Extract(_ context.Context, path string) extract.TextExtractionResult {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, path)
	return extract.TextExtractionResult{Text: f.texts[path], Pages: 1, Engine: "fake", Warnings: f.warnings[path]}
}

// fakeOCR registers ocrText as the text of the output file, or fails with err.
// A non-zero delay makes each run take that long unless ctx ends first.
type fakeOCR struct {
	mu      sync.Mutex
	text    *fakeText
	ocrText string
	err     error
	write   bool
	delay   time.Duration
	calls   int
}

func (f *fakeOCR) Run(ctx context.Context, input, output string) error {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return common.OCRError(input, ctx.Err())
		}
	}
	if f.err != nil {
		return f.err
	}
	if f.write {
		if err := os.WriteFile(output, []byte("%PDF-1.4"), 0o644); err != nil {
			return err
		}
	}
	f.text.set(output, f.ocrText)
	return nil
}

func (f *fakeOCR) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

var errOCRExit = errors.New("exit status 2")

func newTestProcessor(t *testing.T, text *fakeText, engine *fakeOCR, opts ProcessorOptions) *Processor {
	t.Helper()
	fx, err := fields.NewExtractor(common.ExtractConfig{OrderPrefix: "3100", OrderDigits: 6})
	require.NoError(t, err)
	return NewProcessor(nil, text, engine, fx, lineitems.NewParser(), opts)
}

func testDocument(name string) entity.Document {
	return entity.Document{Path: "/in/" + name, Name: name}
}
