package metadata

import "context"

// ResolveMovie looks title up with progressively shorter queries.
func ResolveMovie(ctx context.Context, provider MovieProvider, title string, year int) (Movie, error) {
	return resolveMovie(ctx, provider, title, year, 1)
}

// ResolveEpisode finds the show with progressively shorter queries and
// returns the requested episode. A show that matches but lacks the episode
// counts as a miss, so shorter queries are still tried.
func ResolveEpisode(ctx context.Context, provider ShowProvider, show string, season, episode int) (Episode, error) {
	return resolveEpisode(ctx, provider, show, season, episode, 1)
}

func resolveMovie(ctx context.Context, provider MovieProvider, title string, year, minWords int) (Movie, error) {
	return Progressive(ctx, title, minWords, CleanMovieQuery, func(ctx context.Context, query string) (Movie, error) {
		return provider.LookupMovie(ctx, query, year)
	})
}

func resolveEpisode(ctx context.Context, provider ShowProvider, show string, season, episode, minWords int) (Episode, error) {
	return Progressive(ctx, show, minWords, CleanShowQuery, func(ctx context.Context, query string) (Episode, error) {
		found, err := provider.LookupShow(ctx, query)
		if err != nil {
			return Episode{}, err
		}
		return provider.LookupEpisode(ctx, found, season, episode)
	})
}

// Resolver queries every configured provider of a kind at once and keeps the
// answer of the earliest one, in configured order, that succeeded.
type Resolver struct {
	Movies []MovieProvider
	Shows  []ShowProvider
	// MinWords is the shortest query progressive search will try.
	MinWords int
}

// Movie resolves a movie title.
func (r *Resolver) Movie(ctx context.Context, title string, year int) (Movie, error) {
	lookups := make([]func(context.Context) (Movie, error), 0, len(r.Movies))
	for _, provider := range r.Movies {
		lookups = append(lookups, func(ctx context.Context) (Movie, error) {
			return resolveMovie(ctx, provider, title, year, r.minWords())
		})
	}
	if len(lookups) == 0 {
		return Movie{}, NotFound("movies", "no movie provider configured")
	}
	return First(ctx, lookups)
}

// Episode resolves one episode of a show.
func (r *Resolver) Episode(ctx context.Context, show string, season, episode int) (Episode, error) {
	lookups := make([]func(context.Context) (Episode, error), 0, len(r.Shows))
	for _, provider := range r.Shows {
		lookups = append(lookups, func(ctx context.Context) (Episode, error) {
			return resolveEpisode(ctx, provider, show, season, episode, r.minWords())
		})
	}
	if len(lookups) == 0 {
		return Episode{}, NotFound("shows", "no show provider configured")
	}
	return First(ctx, lookups)
}

func (r *Resolver) minWords() int {
	if r.MinWords < 1 {
		return 1
	}
	return r.MinWords
}
