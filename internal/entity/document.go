package entity

import (
	"time"

	"github.com/joseph-ayodele/invoice-extractor/constants"
)

// Document identifies one input PDF. It is never mutated after discovery.
type Document struct {
	Path    string    `json:"path"`
	Name    string    `json:"pdf_filename"` // unique within a run, used to link both relations
	Size    int64     `json:"size"`
	ModTime time.Time `json:"mod_time"`
}

// DocumentResult is the terminal outcome of running one Document through the pipeline.
type DocumentResult struct {
	Document     Document
	Status       constants.DocStatus
	Method       string // constants.MethodPDFText | constants.MethodPDFOCR
	OCRAttempted bool
	TextBytes    int
	Fields       FieldRecord
	Items        []LineItem
	Duration     time.Duration
	Err          error
}

// Extracted reports whether the document contributes rows to the output relations.
func (r DocumentResult) Extracted() bool {
	return r.Status == constants.DocStatusExtracted
}

// Partial reports whether the document was extracted with at least one missing field.
func (r DocumentResult) Partial() bool {
	return r.Extracted() && len(r.Fields.Missing()) > 0
}
