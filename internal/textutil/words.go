package textutil

import (
	"strings"
	"unicode"
)

// SplitAndLower splits text into lowercase words made only of letters and digits.
func SplitAndLower(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// SharesWord reports whether any word of query appears in one of the candidates.
func SharesWord(query string, candidates ...string) bool {
	known := make(map[string]struct{})
	for _, candidate := range candidates {
		for _, word := range SplitAndLower(candidate) {
			known[word] = struct{}{}
		}
	}
	for _, word := range SplitAndLower(query) {
		if _, ok := known[word]; ok {
			return true
		}
	}
	return false
}
