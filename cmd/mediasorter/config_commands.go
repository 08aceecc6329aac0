package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"mediasorter/internal/config"
	"mediasorter/internal/sorter"
)

func newConfigCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Create or check the configuration file",
	}
	cmd.AddCommand(newConfigInitCommand(), newConfigValidateCommand(ctx))
	return cmd
}

func newConfigInitCommand() *cobra.Command {
	var targetPath string
	var overwrite bool

	cmd := &cobra.Command{
		Use:         "init",
		Short:       "Write a commented sample configuration",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := initTarget(targetPath)
			if err != nil {
				return err
			}
			if !overwrite {
				_, statErr := os.Stat(target)
				switch {
				case statErr == nil:
					return fmt.Errorf("%s already exists (pass --overwrite to replace it)", target)
				case !errors.Is(statErr, fs.ErrNotExist):
					return fmt.Errorf("check %s: %w", target, statErr)
				}
			}
			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return fmt.Errorf("create config directory: %w", err)
			}
			if err := config.CreateSample(target); err != nil {
				return fmt.Errorf("write sample config: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Wrote sample configuration to %s\n", target)
			fmt.Fprintln(out, "Next: set library.movies_dir and library.tv_dir, add [[scan]] sources,")
			fmt.Fprintln(out, "and set tmdb.api_key (or TMDB_API_KEY) to look up movies.")
			return nil
		},
	}

	cmd.Flags().StringVarP(&targetPath, "path", "p", "", "Where to write the file (default: user config dir)")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Replace an existing file")
	return cmd
}

func initTarget(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		path, err := config.DefaultConfigPath()
		if err != nil {
			return "", fmt.Errorf("determine default config path: %w", err)
		}
		return path, nil
	}
	path, err := config.ExpandPath(raw)
	if err != nil {
		return "", fmt.Errorf("resolve config path: %w", err)
	}
	return path, nil
}

// newConfigValidateCommand loads the file itself so a broken config is
// reported here rather than by the root pre-run.
func newConfigValidateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:         "validate",
		Short:       "Check settings, naming templates, metainfo rules, and scan sources",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, path, exists, err := config.Load(ctx.configPath())
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if err := cfg.EnsureDirectories(); err != nil {
				return fmt.Errorf("ensure directories: %w", err)
			}
			engine, err := sorter.New(cfg, nil)
			if err != nil {
				return fmt.Errorf("validate config: %w", err)
			}
			sources := cfg.ScanSources()
			for _, src := range sources {
				if _, err := engine.TargetFor(src); err != nil {
					return fmt.Errorf("scan source %s: %w", src.SrcPath, err)
				}
			}
			printValidation(cmd.OutOrStdout(), cfg, path, exists, len(engine.Catalog().Rules()), len(sources))
			return nil
		},
	}
}

func printValidation(out io.Writer, cfg *config.Config, path string, exists bool, rules, sources int) {
	fmt.Fprintf(out, "Config path: %s\n", path)
	if !exists {
		fmt.Fprintln(out, "Config file did not exist; defaults were used")
	}
	fmt.Fprintf(out, "Movies: %s\n", cfg.Library.MoviesDir)
	fmt.Fprintf(out, "TV:     %s\n", cfg.Library.TVDir)
	fmt.Fprintf(out, "Metainfo rules: %d, scan sources: %d\n", rules, sources)
	if cfg.TMDB.APIKey == "" {
		fmt.Fprintln(out, "Warning: no TMDB api key; movies cannot be looked up")
	}
	fmt.Fprintln(out, "Configuration valid")
}
