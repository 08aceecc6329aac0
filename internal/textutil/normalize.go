package textutil

import (
	"regexp"
	"strings"
)

var whitespaceRun = regexp.MustCompile(`\s+`)

// CollapseSpaces replaces runs of whitespace with a single space and trims the result.
func CollapseSpaces(value string) string {
	return strings.TrimSpace(whitespaceRun.ReplaceAllString(value, " "))
}

// NormalizeSeparators turns the separator characters commonly used in release
// names into spaces, then collapses whitespace and trims trailing dashes.
func NormalizeSeparators(value string, separators []string) string {
	for _, sep := range separators {
		if sep == "" {
			continue
		}
		value = strings.ReplaceAll(value, sep, " ")
	}
	value = CollapseSpaces(value)
	return strings.TrimSpace(strings.TrimRight(value, " -–([{"))
}
