package constants

// Field names of a FieldRecord, also used as output column names.
const (
	FieldOrderNumber   = "order_number"
	FieldInvoiceNumber = "invoice_number"
	FieldInvoiceDate   = "invoice_date"
	FieldDueDate       = "due_date"
	FieldTotalAmount   = "total_amount"
	FieldFreightIncGST = "freight_inc_gst"
	FieldSupplier      = "supplier"
	FieldABN           = "abn"
	FieldPONumber      = "po_number"
)

// Line item and linking columns.
const (
	ColPDFFilename = "pdf_filename"
	ColLineIndex   = "line_index"
	ColSKU         = "sku"
	ColDescription = "description"
	ColQty         = "qty"
	ColUnitPrice   = "unit_price"
	ColAmount      = "amount"
)

// DefaultFreight is written when no freight figure is found.
const DefaultFreight = "0.00"

// SummaryColumns is the header of the summary relation, in output order.
var SummaryColumns = []string{
	ColPDFFilename,
	FieldOrderNumber,
	FieldInvoiceNumber,
	FieldInvoiceDate,
	FieldDueDate,
	FieldTotalAmount,
	FieldFreightIncGST,
	FieldSupplier,
	FieldABN,
	FieldPONumber,
}

// LineItemColumns is the header of the line item relation, in output order.
var LineItemColumns = []string{
	ColPDFFilename,
	ColLineIndex,
	FieldOrderNumber,
	FieldInvoiceNumber,
	ColSKU,
	ColDescription,
	ColQty,
	ColUnitPrice,
	ColAmount,
	FieldFreightIncGST,
}
