package sorter_test

import (
	"testing"

	"mediasorter/internal/sorter"
	"mediasorter/internal/testsupport"
)

func TestNewResolverProviders(t *testing.T) {
	t.Setenv("TMDB_API_KEY", "")

	tests := []struct {
		name       string
		opts       []testsupport.ConfigOption
		env        string
		wantMovies int
		wantShows  int
	}{
		{name: "none"},
		{name: "tvmaze only", opts: []testsupport.ConfigOption{testsupport.WithTVMaze("http://127.0.0.1:1")}, wantShows: 1},
		{
			name: "both",
			opts: []testsupport.ConfigOption{
				testsupport.WithTVMaze("http://127.0.0.1:1"),
				testsupport.WithTMDB("key", "http://127.0.0.1:1"),
			},
			wantMovies: 1,
			wantShows:  2,
		},
		{name: "env key", env: "from-env", wantMovies: 1, wantShows: 1},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.env != "" {
				t.Setenv("TMDB_API_KEY", tc.env)
			}
			cfg := testsupport.NewConfig(t, tc.opts...)
			resolver, closeFn, err := sorter.NewResolver(cfg, nil)
			if err != nil {
				t.Fatalf("NewResolver: %v", err)
			}
			defer closeFn()
			if len(resolver.Movies) != tc.wantMovies || len(resolver.Shows) != tc.wantShows {
				t.Fatalf("movies=%d shows=%d", len(resolver.Movies), len(resolver.Shows))
			}
			if resolver.MinWords != cfg.Parameters.MinSplitLength {
				t.Fatalf("MinWords = %d", resolver.MinWords)
			}
		})
	}
}
