package constants

// DocStatus is the lifecycle state of one document in a batch run.
type DocStatus string

// Stable values (these exact strings are logged and stored).
const (
	DocStatusPending      DocStatus = "PENDING"       // discovered, not started
	DocStatusTextAcquired DocStatus = "TEXT_ACQUIRED" // direct extraction gave usable text
	DocStatusOCRAttempted DocStatus = "OCR_ATTEMPTED" // direct extraction empty, OCR fallback ran
	DocStatusExtracted    DocStatus = "EXTRACTED"     // terminal: contributes rows
	DocStatusFailed       DocStatus = "FAILED"        // terminal: contributes nothing
)

// IsTerminal reports whether no further transition is possible.
func (s DocStatus) IsTerminal() bool {
	return s == DocStatusExtracted || s == DocStatusFailed
}

// Acquisition methods recorded on a document result.
const (
	MethodPDFText = "pdf-text"
	MethodPDFOCR  = "pdf-ocr"
)
