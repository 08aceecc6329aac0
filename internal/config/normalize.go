package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeLibrary(); err != nil {
		return err
	}
	c.normalizeTMDB()
	c.normalizeTVMaze()
	c.normalizeParameters()
	c.normalizeOperation()
	if err := c.normalizeScan(); err != nil {
		return err
	}
	if err := c.normalizeHistory(); err != nil {
		return err
	}
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = filepath.Join(c.Paths.StateDir, "logs")
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeLibrary() error {
	var err error
	if c.Library.MoviesDir, err = expandPath(strings.TrimSpace(c.Library.MoviesDir)); err != nil {
		return fmt.Errorf("library.movies_dir: %w", err)
	}
	if c.Library.TVDir, err = expandPath(strings.TrimSpace(c.Library.TVDir)); err != nil {
		return fmt.Errorf("library.tv_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeTMDB() {
	if value := strings.TrimSpace(os.Getenv("TMDB_API_KEY")); value != "" {
		c.TMDB.APIKey = value
	}
	c.TMDB.APIKey = strings.TrimSpace(c.TMDB.APIKey)
	c.TMDB.BaseURL = strings.TrimRight(strings.TrimSpace(c.TMDB.BaseURL), "/")
	if c.TMDB.BaseURL == "" {
		c.TMDB.BaseURL = defaultTMDBBaseURL
	}
	c.TMDB.Language = strings.TrimSpace(c.TMDB.Language)
	if c.TMDB.Language == "" {
		c.TMDB.Language = defaultTMDBLanguage
	}
	if c.TMDB.MaxPages <= 0 {
		c.TMDB.MaxPages = defaultTMDBMaxPages
	}
}

func (c *Config) normalizeTVMaze() {
	c.TVMaze.BaseURL = strings.TrimRight(strings.TrimSpace(c.TVMaze.BaseURL), "/")
	if c.TVMaze.BaseURL == "" {
		c.TVMaze.BaseURL = defaultTVMazeBaseURL
	}
}

func (c *Config) normalizeParameters() {
	exts := make([]string, 0, len(c.Parameters.ValidExtensions))
	seen := make(map[string]struct{}, len(c.Parameters.ValidExtensions))
	for _, ext := range c.Parameters.ValidExtensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		if _, ok := seen[ext]; ok {
			continue
		}
		seen[ext] = struct{}{}
		exts = append(exts, ext)
	}
	if len(exts) == 0 {
		exts = append(exts, defaultValidExtensions...)
	}
	c.Parameters.ValidExtensions = exts

	if c.Parameters.MinSplitLength <= 0 {
		c.Parameters.MinSplitLength = defaultMinSplitLength
	}
	if c.Parameters.Workers <= 0 {
		c.Parameters.Workers = defaultWorkers
	}
	if c.Parameters.RequestTimeout <= 0 {
		c.Parameters.RequestTimeout = defaultRequestTimeout
	}
	if c.Parameters.MaxRetries < 0 {
		c.Parameters.MaxRetries = 0
	}
}

func (c *Config) normalizeOperation() {
	c.Operation.Action = strings.ToLower(strings.TrimSpace(c.Operation.Action))
	if c.Operation.Action == "" {
		c.Operation.Action = defaultAction
	}
	c.Operation.MediaType = strings.ToLower(strings.TrimSpace(c.Operation.MediaType))
	if c.Operation.MediaType == "" {
		c.Operation.MediaType = defaultMediaType
	}
	c.Operation.User = strings.TrimSpace(c.Operation.User)
	c.Operation.Group = strings.TrimSpace(c.Operation.Group)
	if strings.TrimSpace(c.Operation.FileMode) == "" {
		c.Operation.FileMode = defaultFileMode
	}
	if strings.TrimSpace(c.Operation.DirMode) == "" {
		c.Operation.DirMode = defaultDirMode
	}
}

func (c *Config) normalizeScan() error {
	for i := range c.Scan {
		src := &c.Scan[i]
		var err error
		if src.SrcPath, err = expandPath(strings.TrimSpace(src.SrcPath)); err != nil {
			return fmt.Errorf("scan[%d].src_path: %w", i, err)
		}
		if src.MoviesDir, err = expandPath(strings.TrimSpace(src.MoviesDir)); err != nil {
			return fmt.Errorf("scan[%d].movies_dir: %w", i, err)
		}
		if src.TVDir, err = expandPath(strings.TrimSpace(src.TVDir)); err != nil {
			return fmt.Errorf("scan[%d].tv_dir: %w", i, err)
		}
		src.MediaType = strings.ToLower(strings.TrimSpace(src.MediaType))
		src.Action = strings.ToLower(strings.TrimSpace(src.Action))
	}
	return nil
}

func (c *Config) normalizeHistory() error {
	if strings.TrimSpace(c.History.Path) == "" {
		c.History.Path = filepath.Join(c.Paths.StateDir, defaultHistoryFile)
	}
	var err error
	if c.History.Path, err = expandPath(c.History.Path); err != nil {
		return fmt.Errorf("history.path: %w", err)
	}
	return nil
}

func (c *Config) normalizeLogging() {
	format := strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if format == "" {
		format = defaultLogFormat
	}
	c.Logging.Format = format

	level := strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if level == "" {
		level = defaultLogLevel
	}
	c.Logging.Level = level
}
