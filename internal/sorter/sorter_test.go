package sorter_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"mediasorter/internal/config"
	"mediasorter/internal/history"
	"mediasorter/internal/metadata"
	"mediasorter/internal/services"
	"mediasorter/internal/sorter"
	"mediasorter/internal/testsupport"
)

type stubMovies map[string]metadata.Movie

func (s stubMovies) Name() string { return "stub" }

func (s stubMovies) LookupMovie(_ context.Context, query string, _ int) (metadata.Movie, error) {
	if movie, ok := s[query]; ok {
		return movie, nil
	}
	return metadata.Movie{}, metadata.NotFound("stub", "no movie %q", query)
}

type stubShows map[string][]metadata.Episode

func (s stubShows) Name() string { return "stub" }

func (s stubShows) LookupShow(_ context.Context, query string) (metadata.Show, error) {
	if _, ok := s[query]; ok {
		return metadata.Show{Name: query, Query: query, Provider: "stub"}, nil
	}
	return metadata.Show{}, metadata.NotFound("stub", "no show %q", query)
}

func (s stubShows) LookupEpisode(_ context.Context, show metadata.Show, season, number int) (metadata.Episode, error) {
	for _, ep := range s[show.Query] {
		if ep.Season == season && ep.Number == number {
			return ep, nil
		}
	}
	return metadata.Episode{}, metadata.NotFound("stub", "no episode S%02dE%02d", season, number)
}

func newResolver() *metadata.Resolver {
	return &metadata.Resolver{
		Movies: []metadata.MovieProvider{stubMovies{
			"Heat": {Title: "Heat", Year: 1995, Provider: "stub"},
			"300":  {Title: "300", Year: 2006, Provider: "stub"},
		}},
		Shows: []metadata.ShowProvider{stubShows{
			"The Expanse": {{Show: "The Expanse", Season: 2, Number: 3, Title: "Static"}},
		}},
	}
}

func newEngine(t *testing.T, cfg *config.Config, opts ...sorter.Option) *sorter.Engine {
	t.Helper()
	engine, err := sorter.New(cfg, newResolver(), opts...)
	if err != nil {
		t.Fatalf("sorter.New: %v", err)
	}
	return engine
}

func sourceDir(t *testing.T, cfg *config.Config, names ...string) string {
	t.Helper()
	dir := filepath.Join(testsupport.BaseDir(cfg), "incoming")
	testsupport.WriteTree(t, dir, names...)
	return dir
}

func findOp(t *testing.T, ops []sorter.Operation, base string) sorter.Operation {
	t.Helper()
	for _, op := range ops {
		if filepath.Base(op.Source) == base {
			return op
		}
	}
	t.Fatalf("no operation for %s", base)
	return sorter.Operation{}
}

func TestRunSortsMoviesAndEpisodes(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenHistory(t, cfg)
	dir := sourceDir(t, cfg,
		"Heat.1995.1080p.BluRay.x264.mkv",
		"The.Expanse.S02E03.720p.WEB-DL.mkv",
		"Unknown.Film.2001.mkv",
		"notes.txt",
		".hidden.mkv",
	)
	engine := newEngine(t, cfg, sorter.WithHistory(store))

	report, err := engine.Run(context.Background(), []config.ScanSource{{SrcPath: dir}})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(report.Operations) != 3 {
		t.Fatalf("expected 3 operations, got %d", len(report.Operations))
	}
	succeeded, skipped, failed := report.Counts()
	if succeeded != 2 || skipped != 1 || failed != 0 {
		t.Fatalf("counts = %d/%d/%d", succeeded, skipped, failed)
	}
	if report.HasFailures() {
		t.Fatal("skips must not count as failures")
	}

	movie := findOp(t, report.Operations, "Heat.1995.1080p.BluRay.x264.mkv")
	wantDir := filepath.Join(cfg.Library.MoviesDir, "Heat (1995)")
	if filepath.Dir(movie.Destination) != wantDir {
		t.Fatalf("movie destination %q", movie.Destination)
	}
	if name := filepath.Base(movie.Destination); !strings.HasPrefix(name, "Heat (1995) - [1080p") || !strings.HasSuffix(name, "].mkv") {
		t.Fatalf("movie file name %q", name)
	}
	if movie.State != sorter.StateDispatched || movie.Checksum == "" {
		t.Fatalf("movie op = %+v", movie)
	}
	if _, err := os.Stat(movie.Destination); err != nil {
		t.Fatalf("movie not copied: %v", err)
	}
	if _, err := os.Stat(movie.Source); err != nil {
		t.Fatalf("copy removed source: %v", err)
	}

	episode := findOp(t, report.Operations, "The.Expanse.S02E03.720p.WEB-DL.mkv")
	wantEpisode := filepath.Join(cfg.Library.TVDir, "The Expanse", "Season 02", "The Expanse - S02E03 - Static.mkv")
	if episode.Destination != wantEpisode || episode.MediaType != config.MediaTypeTV {
		t.Fatalf("episode op = %+v", episode)
	}
	if episode.Tags != "" {
		t.Fatalf("episodes are never tagged, got %q", episode.Tags)
	}

	unknown := findOp(t, report.Operations, "Unknown.Film.2001.mkv")
	if unknown.Outcome != services.OutcomeSkipped || unknown.ErrorKind != services.KindMetadataNotFound {
		t.Fatalf("unknown op = %+v", unknown)
	}
	if unknown.State != sorter.StateParsed || unknown.Destination != "" {
		t.Fatalf("unknown op reached %s with destination %q", unknown.State, unknown.Destination)
	}

	records, err := store.List(context.Background(), history.ListOptions{RunID: report.RunID})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected 3 history records, got %d", len(records))
	}
	run, err := store.GetRun(context.Background(), report.RunID)
	if err != nil || run == nil {
		t.Fatalf("GetRun: %v %v", run, err)
	}
	if run.Succeeded != 2 || run.Skipped != 1 || run.Failed != 0 {
		t.Fatalf("run counts = %+v", run)
	}
}

func TestSuggestAutoKeepsParsedEpisodeAsTV(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	engine := newEngine(t, cfg)
	target, err := engine.TargetFor(config.ScanSource{})
	if err != nil {
		t.Fatalf("TargetFor: %v", err)
	}

	op := engine.Suggest(context.Background(), "/in/Heat.S01E01.mkv", target)
	if op.MediaType != config.MediaTypeTV {
		t.Fatalf("media type = %q", op.MediaType)
	}
	if op.Outcome != services.OutcomeSkipped || op.ErrorKind != services.KindMetadataNotFound {
		t.Fatalf("op = %+v", op)
	}
}

func TestSuggestAutoTreatsNumericTitleAsMovie(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	engine := newEngine(t, cfg, sorter.WithTagMetainfo(false))
	target, err := engine.TargetFor(config.ScanSource{})
	if err != nil {
		t.Fatalf("TargetFor: %v", err)
	}

	op := engine.Suggest(context.Background(), "/downloads/300.2006.1080p.BluRay.x264.mkv", target)
	if op.MediaType != config.MediaTypeMovie {
		t.Fatalf("media type = %q, op = %+v", op.MediaType, op)
	}
	if !op.Pending() {
		t.Fatalf("expected a planned move, got %+v", op)
	}
	if !strings.Contains(op.Destination, "300 (2006)") {
		t.Fatalf("destination = %q", op.Destination)
	}
}

func TestSuggestUnparsableName(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	engine := newEngine(t, cfg)
	target := sorter.Target{MediaType: config.MediaTypeMovie, Action: "copy", MoviesDir: cfg.Library.MoviesDir}

	op := engine.Suggest(context.Background(), "/in/Show.S01E02.mkv", target)
	if op.ErrorKind != services.KindUnparsable || op.Outcome != services.OutcomeSkipped {
		t.Fatalf("op = %+v", op)
	}
	if op.State != sorter.StateInitial {
		t.Fatalf("state = %s", op.State)
	}
	if !strings.Contains(op.Reason(), "Show.S01E02.mkv") {
		t.Fatalf("reason %q should name the file", op.Reason())
	}
}

func TestSuggestAppliesRewrites(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Movie.NameOverrides = map[string]string{"Heat": "Heat Redux"}
	cfg.TV.SuffixThe = true
	engine := newEngine(t, cfg, sorter.WithTagMetainfo(false))
	target, err := engine.TargetFor(config.ScanSource{})
	if err != nil {
		t.Fatalf("TargetFor: %v", err)
	}

	movie := engine.Suggest(context.Background(), "/in/Heat.1995.1080p.BluRay.mkv", target)
	want := filepath.Join(cfg.Library.MoviesDir, "Heat Redux (1995)", "Heat Redux (1995).mkv")
	if movie.Destination != want {
		t.Fatalf("movie destination %q, want %q", movie.Destination, want)
	}
	if movie.State != sorter.StateNameBuilt || !movie.Pending() {
		t.Fatalf("movie op = %+v", movie)
	}

	episode := engine.Suggest(context.Background(), "/in/The.Expanse.S02E03.mkv", target)
	want = filepath.Join(cfg.Library.TVDir, "Expanse, The", "Season 02", "Expanse, The - S02E03 - Static.mkv")
	if episode.Destination != want {
		t.Fatalf("episode destination %q, want %q", episode.Destination, want)
	}
}

func TestRunDryRunLeavesFilesystemAlone(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	dir := sourceDir(t, cfg, "Heat.1995.mkv")
	engine := newEngine(t, cfg, sorter.WithDryRun(true), sorter.WithTagMetainfo(false))

	report, err := engine.Run(context.Background(), []config.ScanSource{{SrcPath: dir, Action: config.ActionMove}})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	op := report.Operations[0]
	if op.Outcome != services.OutcomeSuccess || !op.DryRun || op.State != sorter.StateNameBuilt {
		t.Fatalf("op = %+v", op)
	}
	if _, err := os.Stat(op.Destination); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("dry run wrote destination: %v", err)
	}
	if _, err := os.Stat(op.Source); err != nil {
		t.Fatalf("dry run moved source: %v", err)
	}
}

func TestCommitDestinationConflict(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	dir := sourceDir(t, cfg, "a/Heat.1995.mkv", "b/Heat.1995.mkv")
	engine := newEngine(t, cfg, sorter.WithTagMetainfo(false))

	report, err := engine.Run(context.Background(), []config.ScanSource{{SrcPath: dir, MediaType: config.MediaTypeMovie}})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(report.Operations) != 2 {
		t.Fatalf("expected 2 operations, got %d", len(report.Operations))
	}
	first, second := report.Operations[0], report.Operations[1]
	if first.Outcome != services.OutcomeSuccess {
		t.Fatalf("first op = %+v", first)
	}
	if second.Outcome != services.OutcomeFailed || second.ErrorKind != services.KindIO {
		t.Fatalf("second op = %+v", second)
	}
	if !strings.Contains(second.Reason(), first.Source) {
		t.Fatalf("reason %q should name the winning source", second.Reason())
	}
	if !report.HasFailures() {
		t.Fatal("expected failures")
	}
}

func TestRunExistingDestination(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	dir := sourceDir(t, cfg, "Heat.1995.mkv")
	existing := filepath.Join(cfg.Library.MoviesDir, "Heat (1995)", "Heat (1995).mkv")
	testsupport.WriteMedia(t, existing, 8)

	engine := newEngine(t, cfg, sorter.WithTagMetainfo(false))
	report, err := engine.Run(context.Background(), []config.ScanSource{{SrcPath: dir}})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	op := report.Operations[0]
	if op.Outcome != services.OutcomeFailed || op.ErrorKind != services.KindIO || op.State != sorter.StateNameBuilt {
		t.Fatalf("op = %+v", op)
	}

	engine = newEngine(t, cfg, sorter.WithTagMetainfo(false), sorter.WithOverwrite(true))
	report, err = engine.Run(context.Background(), []config.ScanSource{{SrcPath: dir}})
	if err != nil {
		t.Fatalf("Run with overwrite: %v", err)
	}
	if report.Operations[0].Outcome != services.OutcomeSuccess {
		t.Fatalf("overwrite op = %+v", report.Operations[0])
	}
	info, err := os.Stat(existing)
	if err != nil || info.Size() != 64 {
		t.Fatalf("destination not replaced: %v", err)
	}
}

func TestRunFailFastAborts(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	dir := sourceDir(t, cfg, "Heat.1995.mkv", "The.Expanse.S02E03.mkv")
	testsupport.WriteMedia(t, filepath.Join(cfg.Library.MoviesDir, "Heat (1995)", "Heat (1995).mkv"), 8)

	engine := newEngine(t, cfg, sorter.WithTagMetainfo(false), sorter.WithFailFast(true), sorter.WithWorkers(1))
	report, err := engine.Run(context.Background(), []config.ScanSource{{SrcPath: dir}})
	if !errors.Is(err, sorter.ErrAborted) {
		t.Fatalf("expected abort, got %v", err)
	}
	if report == nil || len(report.Operations) != 2 {
		t.Fatalf("report = %+v", report)
	}
	episode := findOp(t, report.Operations, "The.Expanse.S02E03.mkv")
	if episode.Outcome != services.OutcomeFailed {
		t.Fatalf("episode op = %+v", episode)
	}
	if _, err := os.Stat(filepath.Join(cfg.Library.TVDir, "The Expanse")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("aborted run still wrote the episode: %v", err)
	}
}

func TestScanMissingSource(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	engine := newEngine(t, cfg)
	target, err := engine.TargetFor(config.ScanSource{})
	if err != nil {
		t.Fatalf("TargetFor: %v", err)
	}

	missing := filepath.Join(testsupport.BaseDir(cfg), "nope")
	ops, err := engine.Scan(context.Background(), missing, target)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(ops) != 1 || ops[0].Outcome != services.OutcomeFailed || ops[0].ErrorKind != services.KindIO {
		t.Fatalf("ops = %+v", ops)
	}
}

func TestScanSingleFileKeepsOrder(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	names := []string{"c/Heat.1995.mkv", "a/Unknown.2001.mkv", "b/The.Expanse.S02E03.mkv"}
	dir := sourceDir(t, cfg, names...)
	engine := newEngine(t, cfg, sorter.WithWorkers(3))
	target, err := engine.TargetFor(config.ScanSource{})
	if err != nil {
		t.Fatalf("TargetFor: %v", err)
	}

	ops, err := engine.Scan(context.Background(), dir, target)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	want := []string{"a", "b", "c"}
	for i, op := range ops {
		if got := filepath.Base(filepath.Dir(op.Source)); got != want[i] {
			t.Fatalf("op %d from %s, want %s", i, got, want[i])
		}
	}

	single, err := engine.Scan(context.Background(), filepath.Join(dir, names[0]), target)
	if err != nil || len(single) != 1 || !single[0].Pending() {
		t.Fatalf("single file scan = %+v err=%v", single, err)
	}
}

func TestSuggestCanceledContext(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	engine := newEngine(t, cfg)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	op := engine.Suggest(ctx, "/in/Heat.1995.mkv", sorter.Target{MediaType: config.MediaTypeMovie, Action: "copy"})
	if op.ErrorKind != services.KindCanceled || op.Outcome != services.OutcomeFailed {
		t.Fatalf("op = %+v", op)
	}
}

func TestNewRejectsBadConfiguration(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{"movie template", func(c *config.Config) { c.Movie.FileFormat = "{title" }},
		{"tv template", func(c *config.Config) { c.TV.DirFormat = "{network}" }},
		{"metainfo regex", func(c *config.Config) {
			c.Metainfo.Rules = []config.MetainfoRule{{Group: "resolution", Label: "bad", Pattern: "("}}
		}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := testsupport.NewConfig(t)
			tc.mutate(cfg)
			_, err := sorter.New(cfg, newResolver())
			if !errors.Is(err, services.ErrConfiguration) {
				t.Fatalf("expected configuration error, got %v", err)
			}
		})
	}
}

func TestTargetForRejectsUnknownAction(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	engine := newEngine(t, cfg)
	if _, err := engine.TargetFor(config.ScanSource{Action: "teleport"}); !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
	target, err := engine.TargetFor(config.ScanSource{Action: config.ActionHardlink, TVDir: "/srv/tv"})
	if err != nil {
		t.Fatalf("TargetFor: %v", err)
	}
	if target.Action != "hardlink" || target.TVDir != "/srv/tv" || target.MoviesDir != cfg.Library.MoviesDir {
		t.Fatalf("target = %+v", target)
	}
}

func TestRunRejectsInvalidSourceBeforeWork(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	dir := sourceDir(t, cfg, "Heat.1995.mkv")
	engine := newEngine(t, cfg)

	report, err := engine.Run(context.Background(), []config.ScanSource{
		{SrcPath: dir},
		{SrcPath: dir, MediaType: "music"},
	})
	if !errors.Is(err, services.ErrConfiguration) || report != nil {
		t.Fatalf("report=%v err=%v", report, err)
	}
	if _, err := os.Stat(cfg.Library.MoviesDir); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("library touched before config error: %v", err)
	}
}
