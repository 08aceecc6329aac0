package metadata

import (
	"context"
	"errors"
	"regexp"
	"strings"
)

var theWord = regexp.MustCompile(`^[Tt]he$`)

// CleanShowQuery drops every "the" except a leading one and removes
// apostrophes; TV search handles "Show of the Year" poorly otherwise.
func CleanShowQuery(term string) string {
	parts := strings.Fields(term)
	if len(parts) == 0 {
		return strings.ReplaceAll(strings.TrimSpace(term), "'", "")
	}
	kept := make([]string, 0, len(parts))
	for i, word := range parts {
		if i > 0 && theWord.MatchString(word) {
			continue
		}
		kept = append(kept, word)
	}
	return strings.ReplaceAll(strings.Join(kept, " "), "'", "")
}

// CleanMovieQuery removes apostrophes.
func CleanMovieQuery(term string) string {
	return strings.ReplaceAll(strings.TrimSpace(term), "'", "")
}

// Progressive runs attempt with the full term, then drops the last word and
// retries until fewer than minWords remain. The error of the first attempt
// is returned when every attempt fails. Context cancellation stops the search.
func Progressive[T any](ctx context.Context, term string, minWords int, clean func(string) string, attempt func(ctx context.Context, query string) (T, error)) (T, error) {
	var zero T
	if minWords < 1 {
		minWords = 1
	}
	words := strings.Fields(term)
	var firstErr error
	for len(words) >= minWords {
		if err := ctx.Err(); err != nil {
			return zero, err
		}
		query := strings.Join(words, " ")
		if clean != nil {
			query = clean(query)
		}
		if strings.TrimSpace(query) != "" {
			result, err := attempt(ctx, query)
			if err == nil {
				return result, nil
			}
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return zero, err
			}
			if firstErr == nil {
				firstErr = err
			}
		}
		words = words[:len(words)-1]
	}
	if firstErr == nil {
		firstErr = NotFound("search", "empty search term %q", term)
	}
	return zero, firstErr
}
