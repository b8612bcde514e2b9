package entity

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/joseph-ayodele/invoice-extractor/constants"
)

// SummaryRow is one row of the summary relation.
type SummaryRow struct {
	PDFFilename string
	FieldRecord
}

// Values returns the row in constants.SummaryColumns order.
func (s SummaryRow) Values() []string {
	out := make([]string, 0, len(constants.SummaryColumns))
	out = append(out, s.PDFFilename)
	for _, name := range constants.SummaryColumns[1:] {
		out = append(out, s.Get(name))
	}
	return out
}

// LineItemRow is one row of the line item relation. Order, invoice and freight values
// are copied from the owning document's FieldRecord so consumers need no join.
type LineItemRow struct {
	PDFFilename   string
	LineIndex     int
	OrderNumber   string
	InvoiceNumber string
	SKU           string
	Description   string
	Qty           string
	UnitPrice     string
	Amount        string
	FreightIncGST string
}

// Values returns the row in constants.LineItemColumns order.
func (l LineItemRow) Values() []string {
	return []string{
		l.PDFFilename,
		strconv.Itoa(l.LineIndex),
		l.OrderNumber,
		l.InvoiceNumber,
		l.SKU,
		l.Description,
		l.Qty,
		l.UnitPrice,
		l.Amount,
		l.FreightIncGST,
	}
}

// BuildRows derives the summary row and line item rows of one extracted document.
func BuildRows(name string, rec FieldRecord, items []LineItem) (SummaryRow, []LineItemRow) {
	summary := SummaryRow{PDFFilename: name, FieldRecord: rec}

	// a single order number is copied as-is, several are joined with ';'
	order := strings.Join(rec.OrderNumbers, ";")
	freight := rec.FreightIncGST
	if freight == "" {
		freight = constants.DefaultFreight
	}

	rows := make([]LineItemRow, 0, len(items))
	for _, it := range items {
		rows = append(rows, LineItemRow{
			PDFFilename:   name,
			LineIndex:     it.Index,
			OrderNumber:   order,
			InvoiceNumber: rec.InvoiceNumber,
			SKU:           it.SKU,
			Description:   it.Description,
			Qty:           it.Qty,
			UnitPrice:     it.UnitPrice,
			Amount:        it.Amount,
			FreightIncGST: freight,
		})
	}
	return summary, rows
}

// BatchStats are the aggregate counts reported at the end of every run.
type BatchStats struct {
	Total       int  `json:"files_total"`
	Extracted   int  `json:"files_extracted"`
	Partial     int  `json:"files_partial"`
	Failed      int  `json:"files_failed"`
	Skipped     int  `json:"files_skipped"` // not started because the run was interrupted
	Interrupted bool `json:"interrupted"`
}

// BatchResult holds the two linked output relations of a run.
type BatchResult struct {
	RunID      string
	StartedAt  time.Time
	FinishedAt time.Time
	Summaries  []SummaryRow
	LineItems  []LineItemRow
	Failed     []string // names of documents that produced no text
	Stats      BatchStats
}

// Add appends one document's rows as a unit. Callers serialize access.
func (b *BatchResult) Add(summary SummaryRow, items []LineItemRow) {
	b.Summaries = append(b.Summaries, summary)
	b.LineItems = append(b.LineItems, items...)
}

// Sort orders both relations by pdf_filename; line items keep their line_index order.
func (b *BatchResult) Sort() {
	sort.SliceStable(b.Summaries, func(i, j int) bool {
		return b.Summaries[i].PDFFilename < b.Summaries[j].PDFFilename
	})
	sort.SliceStable(b.LineItems, func(i, j int) bool {
		if b.LineItems[i].PDFFilename != b.LineItems[j].PDFFilename {
			return b.LineItems[i].PDFFilename < b.LineItems[j].PDFFilename
		}
		return b.LineItems[i].LineIndex < b.LineItems[j].LineIndex
	})
	sort.Strings(b.Failed)
}
