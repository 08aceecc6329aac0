package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Validate ensures the configuration is usable. Naming templates and metainfo
// patterns are compiled later by their owning packages.
func (c *Config) Validate() error {
	if err := c.validateLibrary(); err != nil {
		return err
	}
	if err := c.validateNaming(); err != nil {
		return err
	}
	if err := c.validateMetainfo(); err != nil {
		return err
	}
	if err := c.validateOperation(); err != nil {
		return err
	}
	if err := c.validateScan(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateLibrary() error {
	if c.Library.MoviesDir == "" {
		return errors.New("library.movies_dir must be set")
	}
	if c.Library.TVDir == "" {
		return errors.New("library.tv_dir must be set")
	}
	return nil
}

func (c *Config) validateNaming() error {
	if strings.TrimSpace(c.Movie.FileFormat) == "" {
		return errors.New("movie.file_format must be set")
	}
	if c.Movie.Subdir && strings.TrimSpace(c.Movie.DirFormat) == "" {
		return errors.New("movie.dir_format must be set when movie.subdir is true")
	}
	if strings.TrimSpace(c.TV.FileFormat) == "" {
		return errors.New("tv.file_format must be set")
	}
	if strings.ContainsAny(c.Naming.Substitute, c.Naming.ForbiddenChars) && c.Naming.Substitute != "" {
		return fmt.Errorf("naming.substitute %q must not contain forbidden characters", c.Naming.Substitute)
	}
	return nil
}

func (c *Config) validateMetainfo() error {
	seen := make(map[string]struct{}, len(c.Metainfo.Groups))
	for _, group := range c.Metainfo.Groups {
		key := strings.ToLower(strings.TrimSpace(group))
		if key == "" {
			return errors.New("metainfo.groups must not contain empty names")
		}
		if _, ok := seen[key]; ok {
			return fmt.Errorf("metainfo.groups lists %q more than once", group)
		}
		seen[key] = struct{}{}
	}
	if c.Metainfo.Open == "" || c.Metainfo.Close == "" {
		return errors.New("metainfo.open and metainfo.close must be set")
	}
	if c.Metainfo.Delimiter == "" {
		return errors.New("metainfo.delimiter must be set")
	}
	return nil
}

func (c *Config) validateOperation() error {
	if !IsValidAction(c.Operation.Action) {
		return fmt.Errorf("operation.action %q must be one of copy, move, hardlink, symlink", c.Operation.Action)
	}
	if !IsValidMediaType(c.Operation.MediaType) {
		return fmt.Errorf("operation.media_type %q must be one of auto, movie, tv", c.Operation.MediaType)
	}
	if _, err := ParseMode(c.Operation.FileMode); err != nil {
		return fmt.Errorf("operation.file_mode: %w", err)
	}
	if _, err := ParseMode(c.Operation.DirMode); err != nil {
		return fmt.Errorf("operation.dir_mode: %w", err)
	}
	return nil
}

func (c *Config) validateScan() error {
	for i, src := range c.Scan {
		if src.SrcPath == "" {
			return fmt.Errorf("scan[%d].src_path must be set", i)
		}
		if src.MediaType != "" && !IsValidMediaType(src.MediaType) {
			return fmt.Errorf("scan[%d].media_type %q must be one of auto, movie, tv", i, src.MediaType)
		}
		if src.Action != "" && !IsValidAction(src.Action) {
			return fmt.Errorf("scan[%d].action %q must be one of copy, move, hardlink, symlink", i, src.Action)
		}
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format %q must be console or json", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging.level %q must be debug, info, warn, or error", c.Logging.Level)
	}
	return nil
}

// IsValidAction reports whether action names a supported filesystem action.
func IsValidAction(action string) bool {
	switch action {
	case ActionCopy, ActionMove, ActionHardlink, ActionSymlink:
		return true
	}
	return false
}

// IsValidMediaType reports whether mediaType is auto, movie, or tv.
func IsValidMediaType(mediaType string) bool {
	switch mediaType {
	case MediaTypeAuto, MediaTypeMovie, MediaTypeTV:
		return true
	}
	return false
}

// ParseMode parses an octal permission string such as "0644".
func ParseMode(value string) (uint32, error) {
	value = strings.TrimSpace(value)
	parsed, err := strconv.ParseUint(value, 8, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid octal mode %q", value)
	}
	if parsed > 0o7777 {
		return 0, fmt.Errorf("mode %q out of range", value)
	}
	return uint32(parsed), nil
}
