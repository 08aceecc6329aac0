package tmdb

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"resty.dev/v3"

	"mediasorter/internal/metadata"
)

// DefaultBaseURL is the public TMDB v3 endpoint.
const DefaultBaseURL = "https://api.themoviedb.org/3"

const providerName = "tmdb"

// Result represents a single TMDB search match.
type Result struct {
	ID            int64   `json:"id"`
	Title         string  `json:"title"`
	OriginalTitle string  `json:"original_title"`
	Name          string  `json:"name"`
	OriginalName  string  `json:"original_name"`
	Overview      string  `json:"overview"`
	ReleaseDate   string  `json:"release_date"`
	FirstAirDate  string  `json:"first_air_date"`
	Popularity    float64 `json:"popularity"`
	VoteCount     int64   `json:"vote_count"`
}

// ReleaseYear parses the year of the release (or first air) date; 0 when unknown.
func (r Result) ReleaseYear() int {
	date := r.ReleaseDate
	if date == "" {
		date = r.FirstAirDate
	}
	head, _, _ := strings.Cut(date, "-")
	year, err := strconv.Atoi(head)
	if err != nil {
		return 0
	}
	return year
}

// Response models the TMDB paginated search response.
type Response struct {
	Page         int      `json:"page"`
	Results      []Result `json:"results"`
	TotalPages   int      `json:"total_pages"`
	TotalResults int      `json:"total_results"`
}

// Episode describes a single TMDB episode entry.
type Episode struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	SeasonNumber  int    `json:"season_number"`
	EpisodeNumber int    `json:"episode_number"`
	AirDate       string `json:"air_date"`
}

// SeasonDetails captures the full TMDB season payload (episodes included).
type SeasonDetails struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	SeasonNumber int       `json:"season_number"`
	Episodes     []Episode `json:"episodes"`
}

// Client provides access to the TMDB API for searches.
type Client struct {
	rest     *resty.Client
	language string
	maxPages int
	cache    *metadata.Cache
	timeout  time.Duration
	retries  int
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

// WithMaxPages caps how many result pages a movie search reads.
func WithMaxPages(pages int) Option {
	return func(c *Client) {
		if pages > 0 {
			c.maxPages = pages
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

// New creates a TMDB client.
func New(apiKey, baseURL, language string, opts ...Option) (*Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("tmdb api key required")
	}
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	client := &Client{
		language: strings.TrimSpace(language),
		maxPages: 5,
		timeout:  10 * time.Second,
		retries:  4,
	}
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
	client.rest.SetQueryParam("api_key", apiKey)
	if client.language != "" {
		client.rest.SetQueryParam("language", client.language)
	}
	return client, nil
}

// Close releases idle connections.
func (c *Client) Close() error {
	if c == nil || c.rest == nil {
		return nil
	}
	return c.rest.Close()
}

// SearchMovie returns one page of movie matches.
func (c *Client) SearchMovie(ctx context.Context, query string, page int) (*Response, error) {
	return c.search(ctx, "/search/movie", query, page)
}

// SearchMovieAll reads up to the configured page cap and merges the results
// in API order.
func (c *Client) SearchMovieAll(ctx context.Context, query string) (*Response, error) {
	first, err := c.SearchMovie(ctx, query, 1)
	if err != nil {
		return nil, err
	}
	merged := &Response{
		Page:         1,
		TotalPages:   first.TotalPages,
		TotalResults: first.TotalResults,
		Results:      append([]Result(nil), first.Results...),
	}
	if first.TotalPages <= 1 || len(first.Results) == 0 {
		return merged, nil
	}
	last := min(first.TotalPages, c.maxPages)
	for page := 2; page <= last; page++ {
		next, err := c.SearchMovie(ctx, query, page)
		if err != nil {
			return nil, err
		}
		merged.Results = append(merged.Results, next.Results...)
	}
	return merged, nil
}

// SearchTV returns one page of series matches.
func (c *Client) SearchTV(ctx context.Context, query string, page int) (*Response, error) {
	return c.search(ctx, "/search/tv", query, page)
}

// GetSeasonDetails fetches the full season metadata for a TV show, including episodes.
func (c *Client) GetSeasonDetails(ctx context.Context, showID int64, seasonNumber int) (*SeasonDetails, error) {
	if showID <= 0 {
		return nil, errors.New("show id must be positive")
	}
	if seasonNumber < 0 {
		return nil, errors.New("season number must not be negative")
	}
	key := fmt.Sprintf("tmdb|season|%d|%d", showID, seasonNumber)
	return metadata.Cached(ctx, c.cache, key, func(ctx context.Context) (*SeasonDetails, error) {
		var payload SeasonDetails
		operation := "season details"
		resp, err := c.rest.R().
			SetContext(ctx).
			SetPathParam("show", strconv.FormatInt(showID, 10)).
			SetPathParam("season", strconv.Itoa(seasonNumber)).
			SetResult(&payload).
			Get("/tv/{show}/season/{season}")
		if err != nil {
			return nil, requestError(ctx, operation, err)
		}
		if resp.StatusCode() != 200 {
			return nil, metadata.StatusError(providerName, operation, resp)
		}
		return &payload, nil
	})
}

func (c *Client) search(ctx context.Context, path, query string, page int) (*Response, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, errors.New("query must not be empty")
	}
	if page < 1 {
		page = 1
	}
	key := fmt.Sprintf("tmdb|%s|%s|%d", path, strings.ToLower(query), page)
	return metadata.Cached(ctx, c.cache, key, func(ctx context.Context) (*Response, error) {
		var payload Response
		operation := "search " + strings.TrimPrefix(path, "/search/")
		resp, err := c.rest.R().
			SetContext(ctx).
			SetQueryParam("query", query).
			SetQueryParam("page", strconv.Itoa(page)).
			SetResult(&payload).
			Get(path)
		if err != nil {
			return nil, requestError(ctx, operation, err)
		}
		if resp.StatusCode() != 200 {
			return nil, metadata.StatusError(providerName, operation, resp)
		}
		return &payload, nil
	})
}

func requestError(ctx context.Context, operation string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	return metadata.RequestError(providerName, operation, err)
}
