package textutil

import "strings"

// DefaultForbidden lists characters illegal on common filesystems.
const DefaultForbidden = `/\:*?"<>|#`

// Sanitizer replaces filesystem-unsafe characters in path segments.
type Sanitizer struct {
	replacer *strings.Replacer
}

// NewSanitizer builds a Sanitizer that replaces every rune of forbidden with substitute.
func NewSanitizer(forbidden, substitute string) Sanitizer {
	pairs := make([]string, 0, len(forbidden)*2)
	for _, r := range forbidden {
		pairs = append(pairs, string(r), substitute)
	}
	return Sanitizer{replacer: strings.NewReplacer(pairs...)}
}

// IsZero reports whether the Sanitizer was never constructed.
func (s Sanitizer) IsZero() bool {
	return s.replacer == nil
}

// Clean replaces forbidden characters, collapses whitespace, and trims the result.
func (s Sanitizer) Clean(name string) string {
	if s.replacer != nil {
		name = s.replacer.Replace(name)
	}
	return CollapseSpaces(name)
}
