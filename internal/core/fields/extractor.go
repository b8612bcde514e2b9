package fields

import (
	"fmt"
	"regexp"

	"github.com/joseph-ayodele/invoice-extractor/constants"
	"github.com/joseph-ayodele/invoice-extractor/internal/common"
	"github.com/joseph-ayodele/invoice-extractor/internal/entity"
)

// Extractor composes the recognizers into a FieldRecord. It is immutable after
// construction and safe for concurrent use.
type Extractor struct {
	orderRe     *regexp.Regexp
	recognizers []namedRecognizer
}

type namedRecognizer struct {
	field string
	find  Recognizer
}

// NewExtractor compiles the order-number format from cfg.
func NewExtractor(cfg common.ExtractConfig) (*Extractor, error) {
	if cfg.OrderDigits <= 0 {
		return nil, fmt.Errorf("order digits must be positive: %w", common.ErrInvalidInput)
	}
	orderRe, err := regexp.Compile(fmt.Sprintf(orderFormat, regexp.QuoteMeta(cfg.OrderPrefix), cfg.OrderDigits))
	if err != nil {
		return nil, fmt.Errorf("compile order pattern: %w", err)
	}
	return &Extractor{
		orderRe: orderRe,
		recognizers: []namedRecognizer{
			{constants.FieldInvoiceNumber, InvoiceNumber},
			{constants.FieldInvoiceDate, InvoiceDate},
			{constants.FieldDueDate, DueDate},
			{constants.FieldTotalAmount, TotalAmount},
			{constants.FieldFreightIncGST, WithDefault(FreightIncGST, constants.DefaultFreight)},
			{constants.FieldSupplier, Supplier},
			{constants.FieldABN, ABN},
			{constants.FieldPONumber, PONumber},
		},
	}, nil
}

// Extract runs every recognizer over text. The result depends only on text.
func (e *Extractor) Extract(text string) entity.FieldRecord {
	var rec entity.FieldRecord
	rec.OrderNumbers = e.OrderNumbers(text)
	for _, r := range e.recognizers {
		v, _ := r.find(text)
		rec.Set(r.field, v)
	}
	return rec
}

// OrderNumbers returns every distinct order number in text, sorted.
func (e *Extractor) OrderNumbers(text string) []string {
	return AllMatches(e.orderRe, 1, text)
}
