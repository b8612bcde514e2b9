package ocr

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var (
	reCRLF       = regexp.MustCompile(`\r\n?`)
	reFormFeed   = regexp.MustCompile(`\f`)
	reTrailingWS = regexp.MustCompile(`(?m)[ \t]+$`)
)

// Normalize cleans extracted or OCR'd text for pattern matching.
// Conservative: line breaks and inner runs of spaces are kept since item tables are
// split on them. Only CRLF, page breaks, trailing blanks and compatibility characters
// (ligatures, full-width digits, non-breaking spaces) are rewritten.
func Normalize(s string) string {
	if s == "" {
		return s
	}
	s = reCRLF.ReplaceAllString(s, "\n")
	s = reFormFeed.ReplaceAllString(s, "")
	s = norm.NFKC.String(s)
	s = reTrailingWS.ReplaceAllString(s, "")
	return s
}

// IsUsable reports whether text contains anything other than whitespace.
func IsUsable(text string) bool {
	return strings.TrimSpace(text) != ""
}
