package core

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/invoice-extractor/constants"
	"github.com/joseph-ayodele/invoice-extractor/internal/core/async"
	"github.com/joseph-ayodele/invoice-extractor/internal/entity"
)

func TestBatchRun_FailedDocumentsContributeNothing(t *testing.T) {
	for _, workers := range []int{1, 4} {
		t.Run(fmt.Sprintf("workers=%d", workers), func(t *testing.T) {
			text := newFakeText()
			engine := &fakeOCR{text: text, err: errOCRExit}
			var docs []entity.Document
			for i := 0; i < 7; i++ {
				d := testDocument(fmt.Sprintf("doc-%02d.pdf", i))
				if i%3 != 0 { // 0, 3, 6 fail
					text.set(d.Path, invoiceText)
				}
				docs = append(docs, d)
			}
			p := newTestProcessor(t, text, engine, ProcessorOptions{OCROutputDir: t.TempDir(), MaxOCR: 2})

			res := NewBatch(p, nil, workers, time.Minute).Run(context.Background(), docs)

			assert.NotEmpty(t, res.RunID)
			assert.Len(t, res.Summaries, 4)
			assert.Len(t, res.LineItems, 8)
			assert.Equal(t, []string{"doc-00.pdf", "doc-03.pdf", "doc-06.pdf"}, res.Failed)
			assert.Equal(t, entity.BatchStats{Total: 7, Extracted: 4, Partial: 4, Failed: 3}, res.Stats)
			assert.Equal(t, 3, engine.count())

			summaries := make(map[string]bool)
			for i, s := range res.Summaries {
				summaries[s.PDFFilename] = true
				if i > 0 {
					assert.Less(t, res.Summaries[i-1].PDFFilename, s.PDFFilename)
				}
			}
			for _, li := range res.LineItems {
				assert.True(t, summaries[li.PDFFilename], "orphan line item %s", li.PDFFilename)
				assert.Equal(t, "3100123456", li.OrderNumber)
				assert.Equal(t, "INV-1001", li.InvoiceNumber)
				assert.Equal(t, "9.95", li.FreightIncGST)
			}
			for i := 0; i < len(res.LineItems); i += 2 {
				assert.Equal(t, 0, res.LineItems[i].LineIndex)
				assert.Equal(t, "W-1", res.LineItems[i].SKU)
				assert.Equal(t, 1, res.LineItems[i+1].LineIndex)
				assert.Equal(t, "B-2", res.LineItems[i+1].SKU)
			}
		})
	}
}

func TestBatchRun_OCRQueueingDoesNotFailScans(t *testing.T) {
	text := newFakeText()
	engine := &fakeOCR{text: text, ocrText: invoiceText, delay: 100 * time.Millisecond}
	var docs []entity.Document
	for i := 0; i < 4; i++ {
		docs = append(docs, testDocument(fmt.Sprintf("scan-%d.pdf", i)))
	}
	p := newTestProcessor(t, text, engine, ProcessorOptions{OCROutputDir: t.TempDir(), MaxOCR: 1})

	// four serialized OCR runs take longer than one document deadline
	res := NewBatch(p, nil, 4, 250*time.Millisecond).Run(context.Background(), docs)

	assert.Empty(t, res.Failed)
	assert.Len(t, res.Summaries, 4)
	assert.Len(t, res.LineItems, 8)
	assert.Equal(t, 4, engine.count())
}

// countingQueue records every job handed to the wrapped queue.
type countingQueue struct {
	async.Queue
	enqueued atomic.Int32
}

func (c *countingQueue) Enqueue(ctx context.Context, job async.Job) error {
	c.enqueued.Add(1)
	return c.Queue.Enqueue(ctx, job)
}

func TestBatchRun_WithQueue(t *testing.T) {
	var q *countingQueue
	newQueue := func(handle async.Handler, logger *slog.Logger, opts ...async.Option) async.Queue {
		q = &countingQueue{Queue: async.NewQueue(handle, logger, opts...)}
		return q
	}
	docs := []entity.Document{testDocument("a.pdf"), testDocument("b.pdf"), testDocument("c.pdf")}

	res := NewBatch(&stubProcessor{}, nil, 2, time.Minute, WithQueue(newQueue)).Run(context.Background(), docs)

	require.NotNil(t, q)
	assert.Equal(t, int32(3), q.enqueued.Load())
	assert.Len(t, res.Summaries, 3)
}

func TestBatchRun_AllFailStillCompletes(t *testing.T) {
	text := newFakeText()
	engine := &fakeOCR{text: text, err: errOCRExit}
	p := newTestProcessor(t, text, engine, ProcessorOptions{OCROutputDir: t.TempDir()})
	docs := []entity.Document{testDocument("a.pdf"), testDocument("b.pdf")}

	res := NewBatch(p, nil, 2, time.Minute).Run(context.Background(), docs)

	assert.Empty(t, res.Summaries)
	assert.Empty(t, res.LineItems)
	assert.Equal(t, 2, res.Stats.Failed)
	assert.Equal(t, 2, res.Stats.Total)
}

func TestBatchRun_Empty(t *testing.T) {
	res := NewBatch(&stubProcessor{}, nil, 1, 0).Run(context.Background(), nil)

	assert.Empty(t, res.Summaries)
	assert.Zero(t, res.Stats.Total)
	assert.False(t, res.Stats.Interrupted)
}

// stubProcessor extracts every document and optionally cancels the run after the first.
type stubProcessor struct {
	cancel context.CancelFunc
	calls  atomic.Int32
}

func (s *stubProcessor) Process(ctx context.Context, doc entity.Document) entity.DocumentResult {
	if s.calls.Add(1) == 1 && s.cancel != nil {
		s.cancel()
	}
	if err := ctx.Err(); err != nil {
		return entity.DocumentResult{Document: doc, Status: constants.DocStatusFailed, Err: err}
	}
	return entity.DocumentResult{
		Document: doc,
		Status:   constants.DocStatusExtracted,
		Fields:   entity.FieldRecord{InvoiceNumber: doc.Name},
		Items:    []entity.LineItem{{Index: 0, SKU: "S"}},
	}
}

func TestBatchRun_CancelBetweenDocuments(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	stub := &stubProcessor{cancel: cancel}
	docs := []entity.Document{testDocument("a.pdf"), testDocument("b.pdf"), testDocument("c.pdf")}

	res := NewBatch(stub, nil, 1, time.Minute).Run(ctx, docs)

	// the in-flight document finishes; the rest are abandoned
	assert.Equal(t, int32(1), stub.calls.Load())
	require.Len(t, res.Summaries, 1)
	assert.Equal(t, "a.pdf", res.Summaries[0].PDFFilename)
	require.Len(t, res.LineItems, 1)
	assert.Equal(t, 2, res.Stats.Skipped)
	assert.Equal(t, 3, res.Stats.Total)
	assert.True(t, res.Stats.Interrupted)
}

func TestBatchRun_AlreadyCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	stub := &stubProcessor{}

	res := NewBatch(stub, nil, 2, time.Minute).Run(ctx, []entity.Document{testDocument("a.pdf"), testDocument("b.pdf")})

	assert.Zero(t, stub.calls.Load())
	assert.Empty(t, res.Summaries)
	assert.Equal(t, 2, res.Stats.Skipped)
	assert.True(t, res.Stats.Interrupted)
}

func TestAggregator_RecordReplacesByName(t *testing.T) {
	agg := NewAggregator("run-1")
	agg.Record(entity.DocumentResult{Document: testDocument("a.pdf"), Status: constants.DocStatusFailed})
	agg.Record(entity.DocumentResult{
		Document: testDocument("a.pdf"),
		Status:   constants.DocStatusExtracted,
		Items:    []entity.LineItem{{Index: 0}, {Index: 1}},
	})

	res := agg.Snapshot()

	assert.Equal(t, 1, agg.Len())
	assert.Len(t, res.Summaries, 1)
	assert.Len(t, res.LineItems, 2)
	assert.Empty(t, res.Failed)
	assert.Equal(t, "run-1", res.RunID)
}
