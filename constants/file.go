package constants

import "strings"

// PDF is the only input format the pipeline accepts.
const PDF = "PDF"

// AllowedExtensions holds the file extensions considered during input discovery.
var AllowedExtensions = map[string]struct{}{
	"pdf": {},
}

// DefaultInputPattern is the filename pattern used when none is configured.
const DefaultInputPattern = "*.pdf"

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// IsAllowedExt reports whether ext (with or without the dot) is an accepted input extension.
func IsAllowedExt(ext string) bool {
	_, ok := AllowedExtensions[NormalizeExt(ext)]
	return ok
}
