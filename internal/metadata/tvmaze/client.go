package tvmaze

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"resty.dev/v3"

	"mediasorter/internal/metadata"
)

// DefaultBaseURL is the public TVMaze endpoint.
const DefaultBaseURL = "https://api.tvmaze.com"

const providerName = "tvmaze"

// Episode is one entry of a TVMaze episode list.
type Episode struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Season  int    `json:"season"`
	Number  *int   `json:"number"`
	Airdate string `json:"airdate"`
}

// Show is the singlesearch payload with embedded episodes.
type Show struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Premiered string `json:"premiered"`
	Links     struct {
		Self struct {
			Href string `json:"href"`
		} `json:"self"`
	} `json:"_links"`
	Embedded struct {
		Episodes []Episode `json:"episodes"`
	} `json:"_embedded"`
}

// Client talks to TVMaze.
type Client struct {
	rest    *resty.Client
	cache   *metadata.Cache
	timeout time.Duration
	retries int
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout overrides the per-request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

// WithMaxRetries sets how often rate-limited requests are retried.
func WithMaxRetries(retries int) Option {
	return func(c *Client) {
		if retries >= 0 {
			c.retries = retries
		}
	}
}

// WithCache shares a response cache across clients.
func WithCache(cache *metadata.Cache) Option {
	return func(c *Client) {
		if cache != nil {
			c.cache = cache
		}
	}
}

// New creates a TVMaze client; an empty baseURL uses the public API.
func New(baseURL string, opts ...Option) *Client {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	client := &Client{timeout: 10 * time.Second, retries: 4}
	for _, opt := range opts {
		opt(client)
	}
	if client.cache == nil {
		client.cache = metadata.NewCache(0)
	}
	client.rest = metadata.NewRESTClient(metadata.ClientOptions{
		BaseURL:    baseURL,
		Timeout:    client.timeout,
		MaxRetries: client.retries,
	})
	return client
}

// Close releases idle connections.
func (c *Client) Close() error {
	if c == nil || c.rest == nil {
		return nil
	}
	return c.rest.Close()
}

// SingleSearch returns the best TVMaze match for query with its episodes embedded.
func (c *Client) SingleSearch(ctx context.Context, query string) (*Show, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, errors.New("query must not be empty")
	}
	key := "tvmaze|singlesearch|" + strings.ToLower(query)
	return metadata.Cached(ctx, c.cache, key, func(ctx context.Context) (*Show, error) {
		var payload Show
		resp, err := c.rest.R().
			SetContext(ctx).
			SetQueryParam("q", query).
			SetQueryParam("embed", "episodes").
			SetResult(&payload).
			Get("/singlesearch/shows")
		if err != nil {
			return nil, requestError(ctx, "singlesearch", err)
		}
		if resp.StatusCode() != 200 {
			return nil, metadata.StatusError(providerName, "singlesearch", resp)
		}
		return &payload, nil
	})
}

// Episodes lists every episode of a show, specials included.
func (c *Client) Episodes(ctx context.Context, showID int64) ([]Episode, error) {
	if showID <= 0 {
		return nil, errors.New("show id must be positive")
	}
	key := fmt.Sprintf("tvmaze|episodes|%d", showID)
	return metadata.Cached(ctx, c.cache, key, func(ctx context.Context) ([]Episode, error) {
		var payload []Episode
		resp, err := c.rest.R().
			SetContext(ctx).
			SetPathParam("id", strconv.FormatInt(showID, 10)).
			SetQueryParam("specials", "1").
			SetResult(&payload).
			Get("/shows/{id}/episodes")
		if err != nil {
			return nil, requestError(ctx, "episodes", err)
		}
		if resp.StatusCode() != 200 {
			return nil, metadata.StatusError(providerName, "episodes", resp)
		}
		return payload, nil
	})
}

func requestError(ctx context.Context, operation string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	return metadata.RequestError(providerName, operation, err)
}

func findEpisode(episodes []Episode, season, number int) (Episode, bool) {
	for _, episode := range episodes {
		if episode.Season == season && episode.Number != nil && *episode.Number == number {
			return episode, true
		}
	}
	return Episode{}, false
}

// byAirDate picks the number-th episode of season in air-date order. Specials
// often carry no episode number, so position is the only handle on them.
func byAirDate(episodes []Episode, season, number int) (Episode, bool) {
	var inSeason []Episode
	for _, episode := range episodes {
		if episode.Season == season {
			inSeason = append(inSeason, episode)
		}
	}
	slices.SortStableFunc(inSeason, func(a, b Episode) int {
		return cmp.Compare(a.Airdate, b.Airdate)
	})
	if number < 1 || number > len(inSeason) {
		return Episode{}, false
	}
	return inSeason[number-1], true
}
