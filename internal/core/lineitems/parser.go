// Package lineitems locates the item table of an invoice and splits it into rows.
//
// The parser assumes a whitespace-aligned column layout: a header line naming every
// column, data rows whose cells are separated by two or more spaces or a tab, and a
// blank line or totals line ending the table. It is a heuristic; documents with other
// layouts yield no items or misassigned cells.
package lineitems

import (
	"regexp"
	"strings"

	"github.com/joseph-ayodele/invoice-extractor/internal/entity"
)

// MinCells is the smallest number of cells a data row needs to be kept.
const MinCells = 4

var (
	cellSep    = regexp.MustCompile(`\s{2,}|\t`)
	terminator = regexp.MustCompile(`(?i)^(total|subtotal|gst|grand)`)
)

// headerKeywords must each be a substring of some token of the header line.
// Alternatives within a group are interchangeable.
var headerKeywords = [][]string{
	{"description"},
	{"sku"},
	{"qty", "quantity"},
	{"unit"},
	{"price"},
	{"amount"},
}

// column positions of a LineItem
const (
	colSKU = iota
	colDescription
	colQty
	colUnitPrice
	colAmount
)

// Parser is stateless and safe for concurrent use.
type Parser struct{}

func NewParser() *Parser { return &Parser{} }

// Parse returns the items of the first table found in text, in order of appearance.
// Text without a header line yields no items.
func (p *Parser) Parse(text string) []entity.LineItem {
	lines := strings.Split(text, "\n")

	start := -1
	for i, line := range lines {
		if IsHeader(line) {
			start = i
			break
		}
	}
	if start < 0 {
		return nil
	}

	mapping := columnMapping(lines[start])
	var items []entity.LineItem
	for _, line := range lines[start+1:] {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || terminator.MatchString(trimmed) {
			break
		}
		cells := SplitRow(trimmed)
		if len(cells) < MinCells {
			continue
		}
		items = append(items, toItem(len(items), cells, mapping))
	}
	return items
}

// IsHeader reports whether every keyword group matches some token of line.
func IsHeader(line string) bool {
	tokens := strings.Fields(strings.ToLower(line))
	if len(tokens) == 0 {
		return false
	}
	for _, group := range headerKeywords {
		if !anyTokenContains(tokens, group) {
			return false
		}
	}
	return true
}

func anyTokenContains(tokens, keywords []string) bool {
	for _, tok := range tokens {
		for _, kw := range keywords {
			if strings.Contains(tok, kw) {
				return true
			}
		}
	}
	return false
}

// SplitRow splits a trimmed line into cells and keeps at most the first five.
func SplitRow(line string) []string {
	cells := cellSep.Split(line, -1)
	if len(cells) > entity.LineItemWidth {
		cells = cells[:entity.LineItemWidth]
	}
	return cells
}

// columnMapping maps cell positions to LineItem columns using the header labels.
// It falls back to the positional order sku, description, qty, unit_price, amount
// unless the header splits into five cells naming five distinct columns.
func columnMapping(header string) [entity.LineItemWidth]int {
	positional := [entity.LineItemWidth]int{colSKU, colDescription, colQty, colUnitPrice, colAmount}

	cells := cellSep.Split(strings.TrimSpace(header), -1)
	if len(cells) != entity.LineItemWidth {
		return positional
	}
	var out [entity.LineItemWidth]int
	seen := make(map[int]bool)
	for i, c := range cells {
		col, ok := classify(c)
		if !ok || seen[col] {
			return positional
		}
		seen[col] = true
		out[i] = col
	}
	return out
}

func classify(label string) (int, bool) {
	l := strings.ToLower(label)
	switch {
	case strings.Contains(l, "sku"), strings.Contains(l, "code"):
		return colSKU, true
	case strings.Contains(l, "desc"):
		return colDescription, true
	case strings.Contains(l, "qty"), strings.Contains(l, "quantity"):
		return colQty, true
	case strings.Contains(l, "unit"), strings.Contains(l, "price"), strings.Contains(l, "rate"):
		return colUnitPrice, true
	case strings.Contains(l, "amount"), strings.Contains(l, "total"):
		return colAmount, true
	}
	return 0, false
}

func toItem(index int, cells []string, mapping [entity.LineItemWidth]int) entity.LineItem {
	var vals [entity.LineItemWidth]string
	for i, c := range cells {
		vals[mapping[i]] = strings.TrimSpace(c)
	}
	return entity.LineItem{
		Index:       index,
		SKU:         vals[colSKU],
		Description: vals[colDescription],
		Qty:         vals[colQty],
		UnitPrice:   vals[colUnitPrice],
		Amount:      vals[colAmount],
	}
}
