package core

import (
	"sync"
	"time"

	"github.com/joseph-ayodele/invoice-extractor/internal/entity"
)

// Aggregator accumulates document results into the two output relations.
// Each result is recorded as a unit under one lock, so a document's summary row and
// its line item rows never interleave with another document's.
// Recording a document name again replaces its earlier outcome.
type Aggregator struct {
	mu        sync.Mutex
	runID     string
	startedAt time.Time
	order     []string
	results   map[string]entity.DocumentResult
	skipped   int
}

func NewAggregator(runID string) *Aggregator {
	return &Aggregator{
		runID:     runID,
		startedAt: time.Now().UTC(),
		results:   make(map[string]entity.DocumentResult),
	}
}

// Record stores a terminal document result.
func (a *Aggregator) Record(r entity.DocumentResult) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, ok := a.results[r.Document.Name]; !ok {
		a.order = append(a.order, r.Document.Name)
	}
	a.results[r.Document.Name] = r
}

// Skip counts documents that were never started.
func (a *Aggregator) Skip(n int) {
	a.mu.Lock()
	a.skipped += n
	a.mu.Unlock()
}

// Snapshot builds the relations from everything recorded so far, sorted by pdf_filename.
// Failed documents contribute no rows.
func (a *Aggregator) Snapshot() *entity.BatchResult {
	a.mu.Lock()
	defer a.mu.Unlock()

	out := &entity.BatchResult{
		RunID:      a.runID,
		StartedAt:  a.startedAt,
		FinishedAt: time.Now().UTC(),
	}
	for _, name := range a.order {
		r := a.results[name]
		out.Stats.Total++
		if !r.Extracted() {
			out.Stats.Failed++
			out.Failed = append(out.Failed, name)
			continue
		}
		out.Stats.Extracted++
		if r.Partial() {
			out.Stats.Partial++
		}
		out.Add(entity.BuildRows(name, r.Fields, r.Items))
	}
	out.Stats.Skipped = a.skipped
	out.Stats.Total += a.skipped
	out.Stats.Interrupted = a.skipped > 0
	out.Sort()
	return out
}

// Len returns the number of recorded documents.
func (a *Aggregator) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.results)
}
