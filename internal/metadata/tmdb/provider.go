package tmdb

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"mediasorter/internal/metadata"
	"mediasorter/internal/textutil"
)

// maxUndatedResults is how many hits a search without a year may return
// before the match is considered too ambiguous to trust.
const maxUndatedResults = 2

// MovieProvider resolves movie titles through TMDB search.
type MovieProvider struct {
	client *Client
}

var (
	_ metadata.MovieProvider = (*MovieProvider)(nil)
	_ metadata.ShowProvider  = (*ShowProvider)(nil)
)

// NewMovieProvider wraps client as a movie provider.
func NewMovieProvider(client *Client) *MovieProvider {
	return &MovieProvider{client: client}
}

// Name identifies the provider in logs and errors.
func (p *MovieProvider) Name() string { return providerName }

// LookupMovie searches for query and keeps the best candidate released
// within a year of year.
func (p *MovieProvider) LookupMovie(ctx context.Context, query string, year int) (metadata.Movie, error) {
	resp, err := p.client.SearchMovieAll(ctx, query)
	if err != nil {
		return metadata.Movie{}, err
	}
	return matchMovie(query, year, resp.Results)
}

func matchMovie(query string, year int, results []Result) (metadata.Movie, error) {
	if len(results) == 0 {
		return metadata.Movie{}, metadata.NotFound(providerName, "%q: no results", query)
	}
	candidates := results
	if year > 0 {
		candidates = slices.DeleteFunc(slices.Clone(results), func(r Result) bool {
			diff := r.ReleaseYear() - year
			return diff <= -2 || diff >= 2
		})
	} else if len(results) > maxUndatedResults {
		return metadata.Movie{}, metadata.NotFound(providerName, "%q: %d results without a year", query, len(results))
	}
	if len(candidates) == 0 {
		return metadata.Movie{}, metadata.NotFound(providerName, "%q: no result released around %d", query, year)
	}

	best := rankByTitle(query, candidates)
	if !textutil.SharesWord(query, best.Title, best.OriginalTitle) {
		return metadata.Movie{}, metadata.NotFound(providerName, "%q: result %q shares no word with the query", query, best.Title)
	}
	return metadata.Movie{
		ID:            best.ID,
		Title:         strings.TrimSpace(best.Title),
		OriginalTitle: strings.TrimSpace(best.OriginalTitle),
		Year:          best.ReleaseYear(),
		Provider:      providerName,
	}, nil
}

// rankByTitle returns the candidate whose title is closest to the query.
// Ties keep API order, which is TMDB's popularity ranking.
func rankByTitle(query string, candidates []Result) Result {
	want := textutil.NewFingerprint(query)
	best := candidates[0]
	bestScore := -1.0
	for _, candidate := range candidates {
		score := max(
			textutil.CosineSimilarity(want, textutil.NewFingerprint(candidate.Title)),
			textutil.CosineSimilarity(want, textutil.NewFingerprint(candidate.OriginalTitle)),
		)
		if score > bestScore {
			best, bestScore = candidate, score
		}
	}
	return best
}

// ShowProvider resolves series through TMDB TV search and season details.
type ShowProvider struct {
	client *Client
}

// NewShowProvider wraps client as a show provider.
func NewShowProvider(client *Client) *ShowProvider {
	return &ShowProvider{client: client}
}

// Name identifies the provider in logs and errors.
func (p *ShowProvider) Name() string { return providerName }

// LookupShow returns the first series whose name shares a word with the query.
func (p *ShowProvider) LookupShow(ctx context.Context, query string) (metadata.Show, error) {
	resp, err := p.client.SearchTV(ctx, query, 1)
	if err != nil {
		return metadata.Show{}, err
	}
	for _, result := range resp.Results {
		if textutil.SharesWord(query, result.Name, result.OriginalName) {
			return metadata.Show{
				ID:        result.ID,
				Name:      strings.TrimSpace(result.Name),
				Premiered: result.FirstAirDate,
				Provider:  providerName,
			}, nil
		}
	}
	return metadata.Show{}, metadata.NotFound(providerName, "%q: no matching series", query)
}

// LookupEpisode reads the season listing and picks the numbered episode.
func (p *ShowProvider) LookupEpisode(ctx context.Context, show metadata.Show, season, episode int) (metadata.Episode, error) {
	if show.ID <= 0 {
		return metadata.Episode{}, fmt.Errorf("tmdb: show %q has no id", show.Name)
	}
	details, err := p.client.GetSeasonDetails(ctx, show.ID, season)
	if err != nil {
		return metadata.Episode{}, err
	}
	for _, entry := range details.Episodes {
		if entry.SeasonNumber == season && entry.EpisodeNumber == episode {
			return metadata.Episode{
				Show:    show.Name,
				Season:  season,
				Number:  episode,
				Title:   strings.ReplaceAll(strings.TrimSpace(entry.Name), "/", "-"),
				AirDate: entry.AirDate,
			}, nil
		}
	}
	return metadata.Episode{}, metadata.NotFound(providerName, "%s S%02dE%02d not listed", show.Name, season, episode)
}
