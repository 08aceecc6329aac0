package tvmaze

import (
	"context"
	"fmt"
	"strings"

	"mediasorter/internal/metadata"
)

// Provider resolves series and episodes through TVMaze.
type Provider struct {
	client *Client
}

var _ metadata.ShowProvider = (*Provider)(nil)

// NewProvider wraps client as a show provider.
func NewProvider(client *Client) *Provider {
	return &Provider{client: client}
}

// Name identifies the provider in logs and errors.
func (p *Provider) Name() string { return providerName }

// LookupShow returns TVMaze's single best match for query.
func (p *Provider) LookupShow(ctx context.Context, query string) (metadata.Show, error) {
	show, err := p.client.SingleSearch(ctx, query)
	if err != nil {
		return metadata.Show{}, err
	}
	if show.ID <= 0 || strings.TrimSpace(show.Name) == "" {
		return metadata.Show{}, metadata.NotFound(providerName, "%q: empty show payload", query)
	}
	return metadata.Show{
		ID:        show.ID,
		Name:      strings.TrimSpace(show.Name),
		Premiered: show.Premiered,
		Provider:  providerName,
		SelfURL:   show.Links.Self.Href,
		Query:     query,
	}, nil
}

// LookupEpisode checks the embedded episode list first, then the full list
// with specials, then falls back to air-date position within the season.
func (p *Provider) LookupEpisode(ctx context.Context, show metadata.Show, season, number int) (metadata.Episode, error) {
	var embedded []Episode
	if show.Query != "" {
		if found, err := p.client.SingleSearch(ctx, show.Query); err == nil && found.ID == show.ID {
			embedded = found.Embedded.Episodes
		}
	}
	if episode, ok := findEpisode(embedded, season, number); ok {
		return toEpisode(show, season, number, episode), nil
	}

	all, err := p.client.Episodes(ctx, show.ID)
	if err != nil {
		return metadata.Episode{}, err
	}
	if episode, ok := findEpisode(all, season, number); ok {
		return toEpisode(show, season, number, episode), nil
	}
	if episode, ok := byAirDate(all, season, number); ok {
		return toEpisode(show, season, number, episode), nil
	}
	return metadata.Episode{}, metadata.NotFound(providerName, "%s found but S%02dE%02d is not listed among %s",
		show.Name, season, number, listing(all))
}

func toEpisode(show metadata.Show, season, number int, episode Episode) metadata.Episode {
	return metadata.Episode{
		Show:    show.Name,
		Season:  season,
		Number:  number,
		Title:   strings.ReplaceAll(strings.TrimSpace(episode.Name), "/", "-"),
		AirDate: episode.Airdate,
	}
}

func listing(episodes []Episode) string {
	const limit = 12
	labels := make([]string, 0, min(len(episodes), limit))
	for i, episode := range episodes {
		if i == limit {
			labels = append(labels, "...")
			break
		}
		if episode.Number == nil {
			labels = append(labels, fmt.Sprintf("S%d special", episode.Season))
			continue
		}
		labels = append(labels, fmt.Sprintf("S%dE%d", episode.Season, *episode.Number))
	}
	if len(labels) == 0 {
		return "no episodes"
	}
	return strings.Join(labels, ", ")
}
