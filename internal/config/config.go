package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"mediasorter/internal/services"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains state and log directory configuration.
type Paths struct {
	StateDir string `toml:"state_dir" yaml:"state_dir"`
	LogDir   string `toml:"log_dir" yaml:"log_dir"`
}

// Library contains the default destination roots for sorted media.
type Library struct {
	MoviesDir string `toml:"movies_dir" yaml:"movies_dir"`
	TVDir     string `toml:"tv_dir" yaml:"tv_dir"`
}

// TMDB contains configuration for The Movie Database API (movie lookups).
type TMDB struct {
	APIKey   string `toml:"api_key" yaml:"api_key"`
	BaseURL  string `toml:"base_url" yaml:"base_url"`
	Language string `toml:"language" yaml:"language"`
	MaxPages int    `toml:"max_pages" yaml:"max_pages"`
}

// TVMaze contains configuration for the TVMaze API (episode lookups).
type TVMaze struct {
	Enabled bool   `toml:"enabled" yaml:"enabled"`
	BaseURL string `toml:"base_url" yaml:"base_url"`
}

// Parameters contains general parsing and lookup tuning.
type Parameters struct {
	ValidExtensions []string `toml:"valid_extensions" yaml:"valid_extensions"`
	SplitCharacters []string `toml:"split_characters" yaml:"split_characters"`
	MinSplitLength  int      `toml:"min_split_length" yaml:"min_split_length"`
	Workers         int      `toml:"workers" yaml:"workers"`
	RequestTimeout  int      `toml:"request_timeout" yaml:"request_timeout"`
	MaxRetries      int      `toml:"max_retries" yaml:"max_retries"`
}

// Movie contains naming configuration for movies.
type Movie struct {
	FileFormat           string            `toml:"file_format" yaml:"file_format"`
	DirFormat            string            `toml:"dir_format" yaml:"dir_format"`
	Subdir               bool              `toml:"subdir" yaml:"subdir"`
	AllowMetadataTagging bool              `toml:"allow_metadata_tagging" yaml:"allow_metadata_tagging"`
	NameOverrides        map[string]string `toml:"name_overrides" yaml:"name_overrides"`
}

// TV contains naming configuration for TV episodes.
type TV struct {
	FileFormat string `toml:"file_format" yaml:"file_format"`
	DirFormat  string `toml:"dir_format" yaml:"dir_format"`
	SuffixThe  bool   `toml:"suffix_the" yaml:"suffix_the"`
}

// MetainfoRule is one ordered (group, label, pattern) entry of the catalog.
type MetainfoRule struct {
	Group   string `toml:"group" yaml:"group"`
	Label   string `toml:"label" yaml:"label"`
	Pattern string `toml:"pattern" yaml:"pattern"`
}

// Metainfo contains the metainfo pattern catalog and tag formatting.
//
// Groups declares the group order used when emitting tags. An empty list keeps
// the built-in order. Rules are matched in the order they are declared.
type Metainfo struct {
	Groups    []string       `toml:"groups" yaml:"groups"`
	Rules     []MetainfoRule `toml:"rules" yaml:"rules"`
	Open      string         `toml:"open" yaml:"open"`
	Close     string         `toml:"close" yaml:"close"`
	Delimiter string         `toml:"delimiter" yaml:"delimiter"`
	Prefix    string         `toml:"prefix" yaml:"prefix"`
}

// Naming contains filesystem-safety settings applied to destination names.
type Naming struct {
	ForbiddenChars string `toml:"forbidden_chars" yaml:"forbidden_chars"`
	Substitute     string `toml:"substitute" yaml:"substitute"`
}

// Operation contains defaults for the filesystem action applied to each file.
type Operation struct {
	Action    string `toml:"action" yaml:"action"`
	MediaType string `toml:"media_type" yaml:"media_type"`
	Overwrite bool   `toml:"overwrite" yaml:"overwrite"`
	InfoFile  bool   `toml:"infofile" yaml:"infofile"`
	ShaSum    bool   `toml:"shasum" yaml:"shasum"`
	Chown     bool   `toml:"chown" yaml:"chown"`
	User      string `toml:"user" yaml:"user"`
	Group     string `toml:"group" yaml:"group"`
	FileMode  string `toml:"file_mode" yaml:"file_mode"`
	DirMode   string `toml:"dir_mode" yaml:"dir_mode"`
	FailFast  bool   `toml:"fail_fast" yaml:"fail_fast"`
}

// ScanSource is a preconfigured source path scanned by `mediasorter sort`.
// Empty fields fall back to the library and operation defaults.
type ScanSource struct {
	SrcPath   string `toml:"src_path" yaml:"src_path"`
	MediaType string `toml:"media_type" yaml:"media_type"`
	Action    string `toml:"action" yaml:"action"`
	MoviesDir string `toml:"movies_dir" yaml:"movies_dir"`
	TVDir     string `toml:"tv_dir" yaml:"tv_dir"`
}

// History contains configuration for the operation audit log.
type History struct {
	Enabled bool   `toml:"enabled" yaml:"enabled"`
	Path    string `toml:"path" yaml:"path"`
}

// Watch contains configuration for watch mode.
type Watch struct {
	SettleSeconds int  `toml:"settle_seconds" yaml:"settle_seconds"`
	Recursive     bool `toml:"recursive" yaml:"recursive"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format" yaml:"format"`
	Level  string `toml:"level" yaml:"level"`
}

// Config encapsulates all configuration values for mediasorter.
//
// Configuration sections by subsystem:
//   - Paths: state (history database, lock file) and log directories
//   - Library: default movie and TV destination roots
//   - TMDB / TVMaze: metadata providers
//   - Parameters: accepted extensions, title splitting, workers, HTTP tuning
//   - Movie / TV: naming templates and title rewrites
//   - Metainfo: ordered pattern catalog and tag formatting
//   - Naming: forbidden filename characters
//   - Operation: filesystem action defaults
//   - Scan: preconfigured source paths
//   - History: operation audit log
//   - Watch: watch mode timing
//   - Logging: log format and level
type Config struct {
	Paths      Paths        `toml:"paths" yaml:"paths"`
	Library    Library      `toml:"library" yaml:"library"`
	TMDB       TMDB         `toml:"tmdb" yaml:"tmdb"`
	TVMaze     TVMaze       `toml:"tvmaze" yaml:"tvmaze"`
	Parameters Parameters   `toml:"parameters" yaml:"parameters"`
	Movie      Movie        `toml:"movie" yaml:"movie"`
	TV         TV           `toml:"tv" yaml:"tv"`
	Metainfo   Metainfo     `toml:"metainfo" yaml:"metainfo"`
	Naming     Naming       `toml:"naming" yaml:"naming"`
	Operation  Operation    `toml:"operation" yaml:"operation"`
	Scan       []ScanSource `toml:"scan" yaml:"scan"`
	History    History      `toml:"history" yaml:"history"`
	Watch      Watch        `toml:"watch" yaml:"watch"`
	Logging    Logging      `toml:"logging" yaml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		if err := decode(file, resolvedPath, &cfg); err != nil {
			return nil, "", false, fmt.Errorf("%w: parse config: %w", services.ErrConfiguration, err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, fmt.Errorf("%w: %w", services.ErrConfiguration, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, fmt.Errorf("%w: %w", services.ErrConfiguration, err)
	}

	return &cfg, resolvedPath, exists, nil
}

func decode(r io.Reader, path string, cfg *Config) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yml", ".yaml":
		decoder := yaml.NewDecoder(r)
		decoder.KnownFields(true)
		if err := decoder.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
			return err
		}
		return nil
	default:
		decoder := toml.NewDecoder(r)
		decoder.DisallowUnknownFields()
		return decoder.Decode(cfg)
	}
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}
	candidates := []string{defaultPath}
	if legacy, err := expandPath(legacyConfigPath); err == nil {
		candidates = append(candidates, legacy)
	}
	if projectPath, err := filepath.Abs("mediasorter.toml"); err == nil {
		candidates = append(candidates, projectPath)
	}

	for _, candidate := range candidates {
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, true, nil
		}
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the state and log directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.StateDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// LockPath returns the path of the lock file guarding library writes.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.StateDir, "mediasorter.lock")
}

// ScanSources returns the configured scan sources with library and operation
// defaults filled in.
func (c *Config) ScanSources() []ScanSource {
	sources := make([]ScanSource, 0, len(c.Scan))
	for _, src := range c.Scan {
		if src.MediaType == "" {
			src.MediaType = c.Operation.MediaType
		}
		if src.Action == "" {
			src.Action = c.Operation.Action
		}
		if src.MoviesDir == "" {
			src.MoviesDir = c.Library.MoviesDir
		}
		if src.TVDir == "" {
			src.TVDir = c.Library.TVDir
		}
		sources = append(sources, src)
	}
	return sources
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
