package fields

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/invoice-extractor/internal/common"
)

const sampleInvoice = `Tax Invoice
Supplier: Acme Supplies Pty Ltd
123 Industrial Rd
ABN: 12 345 678 901
Invoice No: INV-2024-001
Invoice Date: 12/03/2024
Due Date: 11/04/2024
PO Number: PO7788
Order No: 3100123456
Order No: 3100654321
Total Amount: $1,234.50
Freight Inc GST: 15.00
`

func newTestExtractor(t *testing.T) *Extractor {
	t.Helper()
	e, err := NewExtractor(common.ExtractConfig{OrderPrefix: "3100", OrderDigits: 6})
	require.NoError(t, err)
	return e
}

func TestExtract_FullInvoice(t *testing.T) {
	rec := newTestExtractor(t).Extract(sampleInvoice)

	assert.Equal(t, []string{"3100123456", "3100654321"}, rec.OrderNumbers)
	assert.Equal(t, "3100123456, 3100654321", rec.OrderNumber())
	assert.Equal(t, "INV-2024-001", rec.InvoiceNumber)
	assert.Equal(t, "12/03/2024", rec.InvoiceDate)
	assert.Equal(t, "11/04/2024", rec.DueDate)
	assert.Equal(t, "$1,234.50", rec.TotalAmount)
	assert.Equal(t, "15.00", rec.FreightIncGST)
	assert.Equal(t, "Acme Supplies Pty Ltd", rec.Supplier)
	assert.Equal(t, "12 345 678 901", rec.ABN)
	assert.Equal(t, "PO7788", rec.PONumber)
	assert.Empty(t, rec.Missing())
}

func TestExtract_Deterministic(t *testing.T) {
	e := newTestExtractor(t)
	assert.Equal(t, e.Extract(sampleInvoice), e.Extract(sampleInvoice))
}

func TestExtract_NoMatches(t *testing.T) {
	rec := newTestExtractor(t).Extract("hello world")

	assert.Empty(t, rec.OrderNumbers)
	assert.Empty(t, rec.InvoiceNumber)
	assert.Empty(t, rec.Supplier)
	assert.Equal(t, "0.00", rec.FreightIncGST)
	assert.True(t, rec.IsEmpty())
}

func TestOrderNumbers(t *testing.T) {
	e := newTestExtractor(t)

	tests := []struct {
		name string
		text string
		want []string
	}{
		{"duplicates collapse", "Order No: 3100123456\nOrder No: 3100123456\n", []string{"3100123456"}},
		{"sorted", "3100999999 and 3100000001", []string{"3100000001", "3100999999"}},
		{"too many digits", "Order 31001234567", nil},
		{"wrong prefix", "Order 4100123456", nil},
		{"none", "no order here", nil},
		{"glued po label", "PO3100123456", []string{"3100123456"}},
		{"hash label", "Order#3100123456", []string{"3100123456"}},
		{"sales order prefix", "SO-3100123456", []string{"3100123456"}},
		{"adjacent ids", "3100123456;3100654321", []string{"3100123456", "3100654321"}},
		{"embedded in longer number", "93100123456", nil},
		{"too long then valid", "31001234567 3100654321", []string{"3100654321"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, e.OrderNumbers(tt.text))
		})
	}
}

func TestExtract_SingleOrderNumberSerialization(t *testing.T) {
	rec := newTestExtractor(t).Extract("Order No: 3100123456\nOrder No: 3100123456\n")
	assert.Equal(t, "3100123456", rec.OrderNumber())
}

func TestRecognizers(t *testing.T) {
	tests := []struct {
		name string
		find Recognizer
		text string
		want string
		ok   bool
	}{
		{"invoice hash", InvoiceNumber, "Invoice #A1234", "A1234", true},
		{"invoice upper case", InvoiceNumber, "INVOICE NO: abc123", "abc123", true},
		{"invoice number label", InvoiceNumber, "Inv Number - 9981-77", "9981-77", true},
		{"invoice date is not a number", InvoiceNumber, "Invoice Date: 12/03/2024", "", false},
		{"iso invoice date", InvoiceDate, "Invoice Date: 2024-03-12", "2024-03-12", true},
		{"date of issue", InvoiceDate, "Date of Issue - 5 March 2024", "5 March 2024", true},
		{"due date", DueDate, "due   date :  01.02.24", "01.02.24", true},
		{"grand total with currency code", TotalAmount, "Grand Total: AUD 1,000.00", "1,000.00", true},
		{"amount due", TotalAmount, "Amount Due $20.00", "$20.00", true},
		{"freight takes last", FreightIncGST, "Freight Inc GST: 5.00\nFreight Inc GST: 12.50\n", "12.50", true},
		{"freight without numbers", FreightIncGST, "no figures", "", false},
		{"supplier first line", Supplier, "From: Widget Co\nLevel 2, 10 Main St", "Widget Co", true},
		{"supplier beside right column", Supplier, "Supplier: Acme Pty Ltd            Invoice No: 1", "Acme Pty Ltd", true},
		{"supplier tab column", Supplier, "From: Acme\tTax Invoice", "Acme", true},
		{"vendor dash", Supplier, "Vendor - Bolt & Nut", "Bolt & Nut", true},
		{"abn", ABN, "ABN 98765432100", "98765432100", true},
		{"purchase order", PONumber, "Purchase Order: 4500012345", "4500012345", true},
		{"p.o. hash", PONumber, "P.O. # AB-778", "AB-778", true},
		{"reference", PONumber, "Reference: JOB/2231", "JOB/2231", true},
		{"no po", PONumber, "Post code 2000", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.find(tt.text)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewExtractor_InvalidDigits(t *testing.T) {
	_, err := NewExtractor(common.ExtractConfig{OrderPrefix: "3100"})
	require.ErrorIs(t, err, common.ErrInvalidInput)
}
