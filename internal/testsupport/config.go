package testsupport

import (
	"path/filepath"
	"testing"

	"mediasorter/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// Provider lookups are disabled unless an option enables them.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.StateDir = filepath.Join(base, "state")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Library.MoviesDir = filepath.Join(base, "library", "movies")
	cfgVal.Library.TVDir = filepath.Join(base, "library", "tv")
	cfgVal.History.Path = filepath.Join(base, "state", "history.db")
	cfgVal.TMDB.APIKey = ""
	cfgVal.TVMaze.Enabled = false
	cfgVal.Parameters.Workers = 2
	cfgVal.Parameters.RequestTimeout = 2
	cfgVal.Parameters.MaxRetries = 0

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithTMDB points the TMDB provider at baseURL with the given key.
func WithTMDB(key, baseURL string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.TMDB.APIKey = key
		b.cfg.TMDB.BaseURL = baseURL
	}
}

// WithTVMaze enables the TVMaze provider at baseURL.
func WithTVMaze(baseURL string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.TVMaze.Enabled = true
		b.cfg.TVMaze.BaseURL = baseURL
	}
}

// WithAction sets the default filesystem action.
func WithAction(action string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Operation.Action = action
	}
}

// WithScanSource adds a [[scan]] entry rooted under the test directory.
func WithScanSource(name, mediaType string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Scan = append(b.cfg.Scan, config.ScanSource{
			SrcPath:   filepath.Join(b.baseDir, name),
			MediaType: mediaType,
		})
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.StateDir)
}
