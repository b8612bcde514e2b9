// Package fields recognises invoice attributes in free-form document text.
//
// Each attribute has its own Recognizer built from a compiled pattern. Patterns are
// case-insensitive and tolerate spacing and punctuation between a label and its value.
// A miss is never an error: it yields an empty value.
package fields

import (
	"regexp"
	"sort"
	"strings"
)

// Recognizer finds one attribute value in text. ok is false when nothing matched.
type Recognizer func(text string) (value string, ok bool)

// FirstMatch returns the trimmed capture group of the first match of re.
func FirstMatch(re *regexp.Regexp, group int) Recognizer {
	return func(text string) (string, bool) {
		m := re.FindStringSubmatch(text)
		if m == nil || group >= len(m) {
			return "", false
		}
		return strings.TrimSpace(m[group]), true
	}
}

// LastMatch returns the trimmed capture group of the last match of re.
func LastMatch(re *regexp.Regexp, group int) Recognizer {
	return func(text string) (string, bool) {
		all := re.FindAllStringSubmatch(text, -1)
		if len(all) == 0 || group >= len(all[len(all)-1]) {
			return "", false
		}
		return strings.TrimSpace(all[len(all)-1][group]), true
	}
}

// FirstLine keeps only the first line of the value found by r.
func FirstLine(r Recognizer) Recognizer {
	return func(text string) (string, bool) {
		v, ok := r(text)
		if !ok {
			return "", false
		}
		v, _, _ = strings.Cut(v, "\n")
		return strings.TrimSpace(v), true
	}
}

// FirstColumn keeps the value found by r up to the first run of two or more spaces or a tab.
func FirstColumn(r Recognizer) Recognizer {
	return func(text string) (string, bool) {
		v, ok := r(text)
		if !ok {
			return "", false
		}
		if loc := columnGapRe.FindStringIndex(v); loc != nil {
			v = v[:loc[0]]
		}
		return strings.TrimSpace(v), true
	}
}

// WithDefault substitutes def when r finds nothing.
func WithDefault(r Recognizer, def string) Recognizer {
	return func(text string) (string, bool) {
		if v, ok := r(text); ok && v != "" {
			return v, true
		}
		return def, false
	}
}

// AllMatches returns every distinct capture of re, sorted. A capture directly followed
// by a digit is skipped, so a fixed-length pattern never matches the head of a longer
// number.
func AllMatches(re *regexp.Regexp, group int, text string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, loc := range re.FindAllStringSubmatchIndex(text, -1) {
		if 2*group+1 >= len(loc) || loc[2*group] < 0 {
			continue
		}
		start, end := loc[2*group], loc[2*group+1]
		if end < len(text) && isDigit(text[end]) {
			continue
		}
		v := strings.TrimSpace(text[start:end])
		if v == "" {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

const (
	dateValue   = `(\d{4}-\d{2}-\d{2}|\d{1,2}[/\-.]\d{1,2}[/\-.]\d{2,4}|\d{1,2}\s+[A-Za-z]{3,9}\.?\s+\d{2,4})`
	moneyValue  = `([$€£]?\s*(?:\d{1,3}(?:,\d{3})+(?:\.\d{2})?|\d+(?:\.\d{2})?))`
	idValue     = `([A-Z0-9][A-Z0-9\-/]{3,})`
	labelSep    = `\s*[:#\-]?\s*`
	orderFormat = `(?:^|[^0-9])(%s\d{%d})` // glued labels such as "PO3100..." still match
)

var (
	invoiceNumberRe = regexp.MustCompile(`(?i)\b(?:invoice|inv)(?:[\s_.]*(?:number|num\.?|no\.?)` + labelSep + `|\s*[:#]\s*)` + idValue)
	invoiceDateRe   = regexp.MustCompile(`(?i)\b(?:invoice\s*date|date\s*of\s*issue|issue\s*date)` + labelSep + dateValue)
	dueDateRe       = regexp.MustCompile(`(?i)\bdue\s*date` + labelSep + dateValue)
	totalAmountRe   = regexp.MustCompile(`(?i)\b(?:grand\s*total|total\s*amount|amount\s*due|total\s*due|balance\s*due)(?:\s*\([^)\n]*\))?\s*[:\-]?\s*(?:[A-Z]{3}\s*)?` + moneyValue)
	freightRe       = regexp.MustCompile(`(?i)(?:freight[\s_]*(?:inc)?[\s_]*gst)?\s*[:\-]?\s*([$€£]?\s*\d+(?:\.\d{2})?)`)
	supplierRe      = regexp.MustCompile(`(?i)\b(?:from|seller|vendor|supplier)\s*[:\-]?\s*(.+)`)
	columnGapRe     = regexp.MustCompile(`\s{2,}|\t`)
	abnRe           = regexp.MustCompile(`(?i)\b(?:ABN|GST\s*number|VAT\s*number|Tax\s*ID)[\s:]*([A-Z0-9\- ]{8,})`)
	poNumberRe      = regexp.MustCompile(`(?i)\b(?:p\.?o\.?(?:[\s_\-]*(?:number|no\.?|#)` + labelSep + `|\s*[:#\-]\s*)|purchase\s*order(?:[\s_\-]*(?:number|no\.?|#))?` + labelSep + `|reference` + labelSep + `)` + idValue)
)

// InvoiceNumber matches "Invoice No: X", "Invoice #X", "INV Number - X" and similar.
func InvoiceNumber(text string) (string, bool) { return FirstMatch(invoiceNumberRe, 1)(text) }

// InvoiceDate matches "Invoice Date", "Date of Issue" or "Issue Date" followed by a date.
func InvoiceDate(text string) (string, bool) { return FirstMatch(invoiceDateRe, 1)(text) }

func DueDate(text string) (string, bool) { return FirstMatch(dueDateRe, 1)(text) }

// TotalAmount keeps the matched amount verbatim, currency symbol and separators included.
func TotalAmount(text string) (string, bool) { return FirstMatch(totalAmountRe, 1)(text) }

// FreightIncGST takes the last number of the document; the label is optional.
// Freight is printed at the end of the totals block, so an earlier unrelated number
// never wins over it.
func FreightIncGST(text string) (string, bool) { return LastMatch(freightRe, 1)(text) }

// Supplier returns the first line after a seller label, cut at the first column gap:
// layout-preserved text puts a right-hand column on the same line.
func Supplier(text string) (string, bool) {
	return FirstColumn(FirstLine(FirstMatch(supplierRe, 1)))(text)
}

func ABN(text string) (string, bool) { return FirstMatch(abnRe, 1)(text) }

// PONumber matches "PO Number", "P.O. #", "Purchase Order" and "Reference" labels.
func PONumber(text string) (string, bool) { return FirstMatch(poNumberRe, 1)(text) }
