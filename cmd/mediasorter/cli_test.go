package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"mediasorter/internal/services"
)

type cliTestEnv struct {
	baseDir    string
	configPath string
	sourceDir  string
	moviesDir  string
	tvDir      string
}

func newMetadataServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/search/movie", func(w http.ResponseWriter, r *http.Request) {
		results := "[]"
		if r.URL.Query().Get("query") == "Heat" {
			results = `[{"id":949,"title":"Heat","original_title":"Heat","release_date":"1995-12-15"}]`
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"page":1,"total_pages":1,"total_results":1,"results":%s}`, results)
	})
	mux.HandleFunc("/search/tv", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"page":1,"total_pages":0,"total_results":0,"results":[]}`)
	})
	mux.HandleFunc("/singlesearch/shows", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("q") != "The Expanse" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"id":1825,"name":"The Expanse","premiered":"2015-12-14",
			"_embedded":{"episodes":[{"id":1,"name":"Static","season":2,"number":3,"airdate":"2017-02-08"}]}}`)
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	t.Setenv("HOME", filepath.Join(base, "home"))
	t.Setenv("TMDB_API_KEY", "")
	server := newMetadataServer(t)

	env := &cliTestEnv{
		baseDir:    base,
		configPath: filepath.Join(base, "config.toml"),
		sourceDir:  filepath.Join(base, "incoming"),
		moviesDir:  filepath.Join(base, "library", "movies"),
		tvDir:      filepath.Join(base, "library", "tv"),
	}
	if err := os.MkdirAll(env.sourceDir, 0o755); err != nil {
		t.Fatalf("mkdir source: %v", err)
	}
	writeTestConfig(t, env.configPath, fmt.Sprintf(`
[paths]
state_dir = %q
log_dir = %q

[library]
movies_dir = %q
tv_dir = %q

[tmdb]
api_key = "test"
base_url = %q

[tvmaze]
enabled = true
base_url = %q

[parameters]
max_retries = 0

[logging]
level = "error"

[[scan]]
src_path = %q
`, filepath.Join(base, "state"), filepath.Join(base, "logs"), env.moviesDir, env.tvDir,
		server.URL, server.URL, env.sourceDir))
	return env
}

func writeTestConfig(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func (e *cliTestEnv) addSource(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(e.sourceDir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("video"), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}

func TestSortCommandUsesScanSources(t *testing.T) {
	env := setupCLITestEnv(t)
	env.addSource(t, "Heat.1995.1080p.BluRay.mkv")
	env.addSource(t, "The.Expanse.S02E03.720p.mkv")
	unknown := env.addSource(t, "Unknown.Film.2001.mkv")

	out, _, err := runCLI(t, []string{"sort", "--tag-metainfo=false"}, env.configPath)
	if err != nil {
		t.Fatalf("sort: %v", err)
	}
	requireContains(t, out, "Sorted 2, skipped 1, failed 0")
	requireContains(t, out, unknown)
	requireContains(t, out, "metadata_not_found")

	for _, want := range []string{
		filepath.Join(env.moviesDir, "Heat (1995)", "Heat (1995).mkv"),
		filepath.Join(env.tvDir, "The Expanse", "Season 02", "The Expanse - S02E03 - Static.mkv"),
	} {
		if _, err := os.Stat(want); err != nil {
			t.Fatalf("expected %s: %v", want, err)
		}
	}

	out, _, err = runCLI(t, []string{"history", "--status", "skipped"}, env.configPath)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	requireContains(t, out, unknown)
	if strings.Contains(out, "Heat.1995") {
		t.Fatalf("status filter leaked successes: %s", out)
	}
}

func TestSortCommandDryRunJSON(t *testing.T) {
	env := setupCLITestEnv(t)
	src := env.addSource(t, "Heat.1995.2160p.UHD.BluRay.x265.mkv")

	out, _, err := runCLI(t, []string{"sort", "--dry-run", "--json", "--type", "movie", src}, env.configPath)
	if err != nil {
		t.Fatalf("sort: %v", err)
	}
	var view reportView
	if err := json.Unmarshal([]byte(out), &view); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if !view.DryRun || view.Succeeded != 1 || len(view.Operations) != 1 {
		t.Fatalf("view = %+v", view)
	}
	op := view.Operations[0]
	if op.Source != src || op.State != "name_built" || op.Tags == "" {
		t.Fatalf("operation = %+v", op)
	}
	if !strings.HasPrefix(filepath.Base(op.Destination), "Heat (1995) - [") {
		t.Fatalf("destination = %q", op.Destination)
	}
	if _, err := os.Stat(op.Destination); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("dry run created %s", op.Destination)
	}
}

func TestSortCommandReportsFailures(t *testing.T) {
	env := setupCLITestEnv(t)
	src := env.addSource(t, "Heat.1995.mkv")
	existing := filepath.Join(env.moviesDir, "Heat (1995)", "Heat (1995).mkv")
	if err := os.MkdirAll(filepath.Dir(existing), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(existing, []byte("old"), 0o644); err != nil {
		t.Fatal(err)
	}

	out, _, err := runCLI(t, []string{"sort", "--tag-metainfo=false", src}, env.configPath)
	if !errors.Is(err, errFilesFailed) {
		t.Fatalf("expected failed-files error, got %v", err)
	}
	if exitCode(err) != 1 {
		t.Fatalf("exit code = %d", exitCode(err))
	}
	requireContains(t, out, "io_failure")
	requireContains(t, out, src)

	_, _, err = runCLI(t, []string{"sort", "--tag-metainfo=false", "--overwrite", src}, env.configPath)
	if err != nil {
		t.Fatalf("sort --overwrite: %v", err)
	}
}

func TestConfigErrorExitCode(t *testing.T) {
	env := setupCLITestEnv(t)
	writeTestConfig(t, env.configPath, "[operation]\naction = \"teleport\"\n")

	_, _, err := runCLI(t, []string{"sort", env.sourceDir}, env.configPath)
	if !errors.Is(err, services.ErrConfiguration) || exitCode(err) != 2 {
		t.Fatalf("expected configuration error, got %v", err)
	}

	writeTestConfig(t, env.configPath, "[movie]\nfile_format = \"{title\"\n")
	_, _, err = runCLI(t, []string{"config", "validate"}, env.configPath)
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected template error, got %v", err)
	}
}

func TestParseCommand(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"parse", "Heat.1995.1080p.BluRay.x264.mkv", "The.Expanse.S02E03.Static.720p.mkv"}, env.configPath)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %q", out)
	}
	movie := strings.Split(lines[0], "\t")
	if movie[1] != "movie" || movie[2] != "Heat" || movie[3] != "1995" {
		t.Fatalf("movie row = %q", movie)
	}
	requireContains(t, movie[6], "1080p")
	episode := strings.Split(lines[1], "\t")
	if episode[1] != "tv" || episode[2] != "The Expanse" || episode[4] != "S02E03" {
		t.Fatalf("episode row = %q", episode)
	}

	_, _, err = runCLI(t, []string{"parse", "--type", "music", "x.mkv"}, env.configPath)
	if err == nil {
		t.Fatal("expected error for unknown type")
	}
}

func TestCatalogCommand(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"catalog"}, env.configPath)
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	first := strings.Split(strings.SplitN(out, "\n", 2)[0], "\t")
	if len(first) != 4 || first[0] != "1" {
		t.Fatalf("first row = %q", first)
	}
	requireContains(t, out, "resolution")

	out, _, err = runCLI(t, []string{"catalog", "--groups"}, env.configPath)
	if err != nil {
		t.Fatalf("catalog --groups: %v", err)
	}
	if first := strings.SplitN(out, "\n", 2)[0]; !strings.HasPrefix(first, "1\tedition\t") {
		t.Fatalf("first group row = %q", first)
	}
	requireContains(t, out, `Tag block: " - [label label]"`)
}

func TestHistoryCommandEmpty(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"history"}, env.configPath)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	requireContains(t, out, "No operations recorded")

	if _, _, err := runCLI(t, []string{"history", "--status", "bogus"}, env.configPath); err == nil {
		t.Fatal("expected error for unknown status")
	}
}

func TestConfigInitAndValidate(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"config", "validate"}, env.configPath)
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out, "Configuration valid")
	requireContains(t, out, env.configPath)

	target := filepath.Join(t.TempDir(), "config.toml")
	out, _, err = runCLI(t, []string{"config", "init", "--path", target}, "")
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}

	if _, _, err := runCLI(t, []string{"config", "init", "--path", target}, ""); err == nil {
		t.Fatal("expected refusal to overwrite existing config")
	}

	out, _, err = runCLI(t, []string{"config", "validate"}, target)
	if err != nil {
		t.Fatalf("validate sample: %v", err)
	}
	requireContains(t, out, "Configuration valid")
}

func TestSortWithoutSources(t *testing.T) {
	env := setupCLITestEnv(t)
	writeTestConfig(t, env.configPath, fmt.Sprintf("[paths]\nstate_dir = %q\n[tvmaze]\nenabled = false\n", filepath.Join(env.baseDir, "state")))

	_, _, err := runCLI(t, []string{"sort"}, env.configPath)
	if err == nil || !strings.Contains(err.Error(), "no paths given") {
		t.Fatalf("expected missing sources error, got %v", err)
	}
}
