package metadata

import (
	"context"
	"fmt"

	"mediasorter/internal/services"
)

// ErrNotFound reports that a provider had no acceptable match.
var ErrNotFound = fmt.Errorf("%w", services.ErrMetadataNotFound)

// Movie is the canonical identity of a film.
type Movie struct {
	ID            int64
	Title         string
	OriginalTitle string
	Year          int
	Provider      string
}

// Show is a provider-specific handle for a TV series.
type Show struct {
	ID        int64
	Name      string
	Premiered string
	Provider  string
	// SelfURL is the provider's canonical resource link, when it has one.
	SelfURL string
	// Query is the search term that produced this match.
	Query string
}

// Episode is the canonical identity of one TV episode.
type Episode struct {
	Show    string
	Season  int
	Number  int
	Title   string
	AirDate string
}

// MovieProvider resolves movie titles.
type MovieProvider interface {
	Name() string
	LookupMovie(ctx context.Context, title string, year int) (Movie, error)
}

// ShowProvider resolves series and their episodes.
type ShowProvider interface {
	Name() string
	LookupShow(ctx context.Context, name string) (Show, error)
	LookupEpisode(ctx context.Context, show Show, season, episode int) (Episode, error)
}

// NotFound builds an ErrNotFound with provider context.
func NotFound(provider, format string, args ...any) error {
	return fmt.Errorf("%w: %s: %s", ErrNotFound, provider, fmt.Sprintf(format, args...))
}
