package textutil

import (
	"math"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Fingerprint is a term-frequency vector over the words of a title.
type Fingerprint struct {
	tokens map[string]float64
	norm   float64
}

// NewFingerprint creates a fingerprint from title. Returns nil if the title
// produces no tokens.
func NewFingerprint(title string) *Fingerprint {
	tokens := Tokenize(title)
	if len(tokens) == 0 {
		return nil
	}
	counts := make(map[string]float64, len(tokens))
	for _, token := range tokens {
		counts[token]++
	}
	var sum float64
	for _, count := range counts {
		sum += count * count
	}
	return &Fingerprint{
		tokens: counts,
		norm:   math.Sqrt(sum),
	}
}

// Tokenize splits a title into lowercase, accent-folded words. Single
// letters are dropped; numbers are always kept so sequels stay apart.
func Tokenize(title string) []string {
	folded := foldAccents(strings.ToLower(strings.ReplaceAll(title, "&", " and ")))
	raw := strings.FieldsFunc(folded, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	terms := make([]string, 0, len(raw))
	for _, token := range raw {
		if len(token) < 2 && !isDigits(token) {
			continue
		}
		terms = append(terms, token)
	}
	return terms
}

// TokenCount returns the number of unique tokens in the fingerprint.
func (f *Fingerprint) TokenCount() int {
	if f == nil {
		return 0
	}
	return len(f.tokens)
}

// CosineSimilarity computes the cosine similarity between two fingerprints.
// Returns 0 if either fingerprint is nil or has zero norm.
func CosineSimilarity(a, b *Fingerprint) float64 {
	if a == nil || b == nil || a.norm == 0 || b.norm == 0 {
		return 0
	}
	var dot float64
	for token, count := range a.tokens {
		if other, ok := b.tokens[token]; ok {
			dot += count * other
		}
	}
	if dot == 0 {
		return 0
	}
	return dot / (a.norm * b.norm)
}

// foldAccents strips combining marks: "Amélie" becomes "Amelie".
func foldAccents(value string) string {
	var b strings.Builder
	b.Grow(len(value))
	for _, r := range norm.NFD.String(value) {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func isDigits(value string) bool {
	if value == "" {
		return false
	}
	for _, r := range value {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
