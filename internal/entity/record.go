package entity

import (
	"strings"

	"github.com/joseph-ayodele/invoice-extractor/constants"
)

// OrderNumberSeparator joins multiple order numbers in the summary relation.
const OrderNumberSeparator = ", "

// FieldRecord holds the named invoice attributes recognised in one document's text.
// Every field is optional; a miss is an empty string.
type FieldRecord struct {
	OrderNumbers  []string `json:"order_numbers"` // sorted, no duplicates
	InvoiceNumber string   `json:"invoice_number"`
	InvoiceDate   string   `json:"invoice_date"`
	DueDate       string   `json:"due_date"`
	TotalAmount   string   `json:"total_amount"`
	FreightIncGST string   `json:"freight_inc_gst"`
	Supplier      string   `json:"supplier"`
	ABN           string   `json:"abn"`
	PONumber      string   `json:"po_number"`
}

// OrderNumber returns the order number set serialized for the summary relation.
func (r FieldRecord) OrderNumber() string {
	return strings.Join(r.OrderNumbers, OrderNumberSeparator)
}

// Get returns the value of the named field, or "" for unknown names.
func (r FieldRecord) Get(field string) string {
	switch field {
	case constants.FieldOrderNumber:
		return r.OrderNumber()
	case constants.FieldInvoiceNumber:
		return r.InvoiceNumber
	case constants.FieldInvoiceDate:
		return r.InvoiceDate
	case constants.FieldDueDate:
		return r.DueDate
	case constants.FieldTotalAmount:
		return r.TotalAmount
	case constants.FieldFreightIncGST:
		return r.FreightIncGST
	case constants.FieldSupplier:
		return r.Supplier
	case constants.FieldABN:
		return r.ABN
	case constants.FieldPONumber:
		return r.PONumber
	}
	return ""
}

// Set assigns the named field. Unknown names are ignored.
func (r *FieldRecord) Set(field, value string) {
	switch field {
	case constants.FieldOrderNumber:
		r.OrderNumbers = nil
		for _, v := range strings.Split(value, OrderNumberSeparator) {
			if v = strings.TrimSpace(v); v != "" {
				r.OrderNumbers = append(r.OrderNumbers, v)
			}
		}
	case constants.FieldInvoiceNumber:
		r.InvoiceNumber = value
	case constants.FieldInvoiceDate:
		r.InvoiceDate = value
	case constants.FieldDueDate:
		r.DueDate = value
	case constants.FieldTotalAmount:
		r.TotalAmount = value
	case constants.FieldFreightIncGST:
		r.FreightIncGST = value
	case constants.FieldSupplier:
		r.Supplier = value
	case constants.FieldABN:
		r.ABN = value
	case constants.FieldPONumber:
		r.PONumber = value
	}
}

// Missing lists the fields that were not recognised. A freight value equal to the
// default is treated as missing.
func (r FieldRecord) Missing() []string {
	var out []string
	for _, name := range constants.SummaryColumns[1:] {
		v := r.Get(name)
		if v == "" || (name == constants.FieldFreightIncGST && v == constants.DefaultFreight) {
			out = append(out, name)
		}
	}
	return out
}

// IsEmpty reports whether no field at all was recognised.
func (r FieldRecord) IsEmpty() bool {
	return len(r.Missing()) == len(constants.SummaryColumns)-1
}
