package entity

// LineItemWidth is the number of positional fields in a line item.
const LineItemWidth = 5

// LineItem is one heuristically parsed row of an invoice item table.
type LineItem struct {
	Index       int    `json:"line_index"` // position of appearance within the document
	SKU         string `json:"sku"`
	Description string `json:"description"`
	Qty         string `json:"qty"`
	UnitPrice   string `json:"unit_price"`
	Amount      string `json:"amount"`
}

// Cells returns the item fields in canonical order: sku, description, qty, unit_price, amount.
func (li LineItem) Cells() [LineItemWidth]string {
	return [LineItemWidth]string{li.SKU, li.Description, li.Qty, li.UnitPrice, li.Amount}
}
