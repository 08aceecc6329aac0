package sorter

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"mediasorter/internal/config"
	"mediasorter/internal/history"
	"mediasorter/internal/logging"
	"mediasorter/internal/metadata"
	"mediasorter/internal/metainfo"
	"mediasorter/internal/naming"
	"mediasorter/internal/organizer"
	"mediasorter/internal/parser"
	"mediasorter/internal/services"
	"mediasorter/internal/textutil"
)

// Engine owns everything that stays fixed for a run: the compiled catalog,
// naming layouts, providers and organizer options.
type Engine struct {
	cfg         *config.Config
	catalog     *metainfo.Catalog
	parser      *parser.Parser
	resolver    *metadata.Resolver
	movieLayout naming.Layout
	tvLayout    naming.Layout
	sanitizer   textutil.Sanitizer
	extensions  map[string]struct{}
	organize    organizer.Options
	history     *history.Store
	logger      *slog.Logger

	dryRun      bool
	tagMetainfo bool
	failFast    bool
	workers     int
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithHistory records every operation in store.
func WithHistory(store *history.Store) Option {
	return func(e *Engine) { e.history = store }
}

// WithDryRun plans operations without touching the filesystem.
func WithDryRun(enabled bool) Option {
	return func(e *Engine) { e.dryRun = enabled }
}

// WithTagMetainfo toggles the metainfo suffix on movie names.
func WithTagMetainfo(enabled bool) Option {
	return func(e *Engine) { e.tagMetainfo = enabled }
}

// WithFailFast aborts the run on the first filesystem failure.
func WithFailFast(enabled bool) Option {
	return func(e *Engine) { e.failFast = enabled }
}

// WithOverwrite replaces existing destinations.
func WithOverwrite(enabled bool) Option {
	return func(e *Engine) { e.organize.Overwrite = enabled }
}

// WithWorkers bounds how many files are processed at once.
func WithWorkers(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.workers = n
		}
	}
}

// WithParser replaces the filename parser.
func WithParser(p *parser.Parser) Option {
	return func(e *Engine) {
		if p != nil {
			e.parser = p
		}
	}
}

// New validates the naming and catalog configuration and assembles an
// engine. Any problem is a configuration error and no file is touched.
func New(cfg *config.Config, resolver *metadata.Resolver, opts ...Option) (*Engine, error) {
	if cfg == nil {
		return nil, fmt.Errorf("%w: config is nil", services.ErrConfiguration)
	}
	if resolver == nil {
		resolver = &metadata.Resolver{}
	}
	catalog, err := metainfo.LoadCatalog(cfg.Metainfo)
	if err != nil {
		return nil, err
	}
	movieDir := ""
	if cfg.Movie.Subdir {
		movieDir = cfg.Movie.DirFormat
	}
	movieLayout, err := naming.ParseLayout(movieDir, cfg.Movie.FileFormat)
	if err != nil {
		return nil, fmt.Errorf("movie naming: %w", err)
	}
	tvLayout, err := naming.ParseLayout(cfg.TV.DirFormat, cfg.TV.FileFormat)
	if err != nil {
		return nil, fmt.Errorf("tv naming: %w", err)
	}
	organize, err := organizer.OptionsFromConfig(cfg.Operation)
	if err != nil {
		return nil, err
	}

	extensions := make(map[string]struct{}, len(cfg.Parameters.ValidExtensions))
	for _, ext := range cfg.Parameters.ValidExtensions {
		extensions[strings.ToLower(ext)] = struct{}{}
	}

	engine := &Engine{
		cfg:         cfg,
		catalog:     catalog,
		parser:      parser.New(parser.WithSeparators(cfg.Parameters.SplitCharacters)),
		resolver:    resolver,
		movieLayout: movieLayout,
		tvLayout:    tvLayout,
		sanitizer:   textutil.NewSanitizer(cfg.Naming.ForbiddenChars, cfg.Naming.Substitute),
		extensions:  extensions,
		organize:    organize,
		logger:      logging.NewNop(),
		tagMetainfo: cfg.Movie.AllowMetadataTagging,
		failFast:    cfg.Operation.FailFast,
		workers:     cfg.Parameters.Workers,
	}
	for _, opt := range opts {
		opt(engine)
	}
	if engine.workers <= 0 {
		engine.workers = 1
	}
	engine.logger = logging.NewComponentLogger(engine.logger, "sorter")
	return engine, nil
}

// Catalog returns the compiled metainfo catalog.
func (e *Engine) Catalog() *metainfo.Catalog {
	return e.catalog
}

// DryRun reports whether the engine only plans operations.
func (e *Engine) DryRun() bool {
	return e.dryRun
}

// Accepts reports whether path names a file Scan would pick up.
func (e *Engine) Accepts(path string) bool {
	name := filepath.Base(path)
	if strings.HasPrefix(name, ".") {
		return false
	}
	_, ext := textutil.SplitExtension(name)
	return e.allowedExtension(ext)
}

// allowedExtension reports whether ext (with leading dot) may be sorted.
func (e *Engine) allowedExtension(ext string) bool {
	if ext == "" {
		return false
	}
	_, ok := e.extensions[strings.ToLower(ext)]
	return ok
}
