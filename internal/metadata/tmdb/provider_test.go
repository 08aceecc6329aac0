package tmdb_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"mediasorter/internal/metadata"
	"mediasorter/internal/metadata/tmdb"
)

func movieServer(t *testing.T, byQuery map[string]string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := byQuery[r.URL.Query().Get("query")]
		if !ok {
			body = `{"page":1,"total_pages":1,"results":[]}`
		}
		writeJSON(w, body)
	}))
	t.Cleanup(server.Close)
	return server
}

func TestLookupMovie(t *testing.T) {
	server := movieServer(t, map[string]string{
		"Heat": `{"page":1,"total_pages":1,"results":[
			{"id":1,"title":"Heat","release_date":"1972-10-06"},
			{"id":2,"title":"Heat","release_date":"1995-12-15"},
			{"id":3,"title":"Heat Wave","release_date":"1996-01-01"}]}`,
		"Three Results": `{"page":1,"total_pages":1,"results":[
			{"id":1,"title":"Three Results"},{"id":2,"title":"Three"},{"id":3,"title":"Results"}]}`,
		"Nonsense":     `{"page":1,"total_pages":1,"results":[{"id":9,"title":"Something Else","release_date":"2010-01-01"}]}`,
		"Amelie":       `{"page":1,"total_pages":1,"results":[{"id":5,"title":"Le Fabuleux Destin","original_title":"Amelie","release_date":"2001-04-25"}]}`,
		"Dont Look Up": `{"page":1,"total_pages":1,"results":[{"id":6,"title":"Don't Look Up","release_date":"2021-12-05"}]}`,
	})
	provider := tmdb.NewMovieProvider(newClient(t, server.URL))

	tests := []struct {
		name     string
		title    string
		year     int
		wantID   int64
		wantYear int
		missing  bool
	}{
		{name: "year filter", title: "Heat", year: 1995, wantID: 2, wantYear: 1995},
		{name: "year tolerance", title: "Heat", year: 1971, wantID: 1, wantYear: 1972},
		{name: "trailing words dropped", title: "Heat Directors Cut", year: 1995, wantID: 2, wantYear: 1995},
		{name: "no year with few results", title: "Amelie", wantID: 5, wantYear: 2001},
		{name: "apostrophes removed", title: "Don't Look Up", year: 2021, wantID: 6, wantYear: 2021},
		{name: "year out of range", title: "Heat", year: 1985, missing: true},
		{name: "ambiguous without year", title: "Three Results", missing: true},
		{name: "no shared word", title: "Nonsense", year: 2010, missing: true},
		{name: "nothing found", title: "Unknown Film", missing: true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			movie, err := metadata.ResolveMovie(context.Background(), provider, tc.title, tc.year)
			if tc.missing {
				if !errors.Is(err, metadata.ErrNotFound) {
					t.Fatalf("expected not found, got %#v err=%v", movie, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("LookupMovie returned error: %v", err)
			}
			if movie.ID != tc.wantID || movie.Year != tc.wantYear {
				t.Fatalf("got %#v, want id %d year %d", movie, tc.wantID, tc.wantYear)
			}
		})
	}
}

func TestLookupMovieReportsFirstError(t *testing.T) {
	server := movieServer(t, map[string]string{
		"Alien": `{"page":1,"total_pages":1,"results":[{"id":1,"title":"Alien","release_date":"1979-05-25"}]}`,
	})
	provider := tmdb.NewMovieProvider(newClient(t, server.URL))

	_, err := metadata.ResolveMovie(context.Background(), provider, "Alien Covenant", 2017)
	if err == nil {
		t.Fatal("expected error")
	}
	if want := `"Alien Covenant": no results`; !strings.Contains(err.Error(), want) {
		t.Fatalf("expected first attempt error %q, got %v", want, err)
	}
}

func TestShowProvider(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/search/tv":
			if r.URL.Query().Get("query") != "The Expanse" {
				writeJSON(w, `{"page":1,"results":[]}`)
				return
			}
			writeJSON(w, `{"page":1,"results":[{"id":63639,"name":"The Expanse","first_air_date":"2015-12-14"}]}`)
		case "/tv/63639/season/2":
			writeJSON(w, `{"season_number":2,"episodes":[
				{"season_number":2,"episode_number":3,"name":"Static/Noise","air_date":"2017-02-08"}]}`)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(server.Close)

	provider := tmdb.NewShowProvider(newClient(t, server.URL))
	show, err := provider.LookupShow(context.Background(), "The Expanse")
	if err != nil {
		t.Fatalf("LookupShow returned error: %v", err)
	}
	if show.ID != 63639 || show.Name != "The Expanse" || show.Provider != "tmdb" {
		t.Fatalf("unexpected show %#v", show)
	}

	episode, err := provider.LookupEpisode(context.Background(), show, 2, 3)
	if err != nil {
		t.Fatalf("LookupEpisode returned error: %v", err)
	}
	if episode.Title != "Static-Noise" || episode.AirDate != "2017-02-08" {
		t.Fatalf("unexpected episode %#v", episode)
	}

	if _, err := provider.LookupEpisode(context.Background(), show, 2, 9); !errors.Is(err, metadata.ErrNotFound) {
		t.Fatalf("expected not found for missing episode, got %v", err)
	}
}
