package sorter

import (
	"errors"
	"log/slog"
	"os"
	"strings"
	"time"

	"mediasorter/internal/config"
	"mediasorter/internal/logging"
	"mediasorter/internal/metadata"
	"mediasorter/internal/metadata/tmdb"
	"mediasorter/internal/metadata/tvmaze"
)

// NewResolver builds the provider chain described by cfg. TVMaze answers
// episode lookups first; TMDB serves movies and backs TVMaze up for shows
// when an API key is available. The returned close function releases the
// HTTP clients.
func NewResolver(cfg *config.Config, logger *slog.Logger) (*metadata.Resolver, func() error, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	timeout := time.Duration(cfg.Parameters.RequestTimeout) * time.Second
	cache := metadata.NewCache(0)
	resolver := &metadata.Resolver{MinWords: cfg.Parameters.MinSplitLength}
	var closers []func() error

	if cfg.TVMaze.Enabled {
		client := tvmaze.New(cfg.TVMaze.BaseURL,
			tvmaze.WithTimeout(timeout),
			tvmaze.WithMaxRetries(cfg.Parameters.MaxRetries),
			tvmaze.WithCache(cache),
		)
		closers = append(closers, client.Close)
		resolver.Shows = append(resolver.Shows, tvmaze.NewProvider(client))
	}

	apiKey := strings.TrimSpace(cfg.TMDB.APIKey)
	if env := strings.TrimSpace(os.Getenv("TMDB_API_KEY")); env != "" {
		apiKey = env
	}
	if apiKey == "" {
		logging.WarnWithContext(logger, "tmdb api key not configured", "provider_unavailable",
			logging.String("provider", "tmdb"),
			logging.String(logging.FieldErrorHint, "set tmdb.api_key or TMDB_API_KEY"),
			logging.String(logging.FieldImpact, "movies are skipped as metadata_not_found"),
		)
	} else {
		client, err := tmdb.New(apiKey, cfg.TMDB.BaseURL, cfg.TMDB.Language,
			tmdb.WithTimeout(timeout),
			tmdb.WithMaxRetries(cfg.Parameters.MaxRetries),
			tmdb.WithMaxPages(cfg.TMDB.MaxPages),
			tmdb.WithCache(cache),
		)
		if err != nil {
			closeAll(closers)
			return nil, nil, err
		}
		closers = append(closers, client.Close)
		resolver.Movies = append(resolver.Movies, tmdb.NewMovieProvider(client))
		resolver.Shows = append(resolver.Shows, tmdb.NewShowProvider(client))
	}

	if len(resolver.Shows) == 0 {
		logging.WarnWithContext(logger, "no show provider configured", "provider_unavailable",
			logging.String(logging.FieldErrorHint, "enable tvmaze or set a tmdb api key"),
			logging.String(logging.FieldImpact, "episodes are skipped as metadata_not_found"),
		)
	}

	return resolver, func() error { return closeAll(closers) }, nil
}

func closeAll(closers []func() error) error {
	var errs []error
	for _, closeFn := range closers {
		if err := closeFn(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
