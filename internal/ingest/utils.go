package ingest

import (
	"path/filepath"
	"strings"

	"github.com/joseph-ayodele/invoice-extractor/constants"
)

// Matches reports whether the base name of path matches pattern, ignoring case,
// and carries an accepted extension. A malformed pattern matches nothing.
func Matches(path, pattern string) bool {
	if pattern == "" {
		pattern = constants.DefaultInputPattern
	}
	base := filepath.Base(path)
	if !constants.IsAllowedExt(filepath.Ext(base)) {
		return false
	}
	ok, err := filepath.Match(strings.ToLower(pattern), strings.ToLower(base))
	return err == nil && ok
}

// IsHidden checks if a file or directory is hidden (starts with '.').
func IsHidden(path string) bool {
	base := filepath.Base(path)
	return strings.HasPrefix(base, ".") && base != "." && base != ".."
}
