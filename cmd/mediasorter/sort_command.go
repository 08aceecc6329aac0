package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"mediasorter/internal/config"
	"mediasorter/internal/services"
	"mediasorter/internal/sorter"
)

type sortFlags struct {
	tagMetainfo bool
	dryRun      bool
	mediaType   string
	action      string
	moviesDir   string
	tvDir       string
	overwrite   bool
	failFast    bool
	workers     int
	json        bool
}

func newSortCommand(ctx *commandContext) *cobra.Command {
	var flags sortFlags

	cmd := &cobra.Command{
		Use:   "sort [paths...]",
		Short: "Sort files or directories into the library",
		Long: `Sort parses each media file name, looks the title up, and places the file
in the library under its canonical name. Without paths the [[scan]] sources
from the configuration are used.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := []sorter.Option{sorter.WithDryRun(flags.dryRun)}
			if cmd.Flags().Changed("tag-metainfo") {
				opts = append(opts, sorter.WithTagMetainfo(flags.tagMetainfo))
			}
			if cmd.Flags().Changed("overwrite") {
				opts = append(opts, sorter.WithOverwrite(flags.overwrite))
			}
			if cmd.Flags().Changed("fail-fast") {
				opts = append(opts, sorter.WithFailFast(flags.failFast))
			}
			if cmd.Flags().Changed("workers") {
				opts = append(opts, sorter.WithWorkers(flags.workers))
			}

			sess, err := ctx.newSession(opts...)
			if err != nil {
				return err
			}
			defer sess.close()

			sources, err := sortSources(cmd, sess.cfg, flags, args)
			if err != nil {
				return err
			}

			runCtx, stop := signalContext(cmd)
			defer stop()
			report, runErr := sess.engine.Run(runCtx, sources)
			if report != nil {
				if flags.json {
					if err := writeJSON(cmd, newReportView(report)); err != nil {
						return err
					}
				} else {
					renderReport(cmd.OutOrStdout(), report)
				}
			}
			if runErr != nil {
				return runErr
			}
			if report.HasFailures() {
				_, _, failed := report.Counts()
				return fmt.Errorf("%w: %d failed", errFilesFailed, failed)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&flags.tagMetainfo, "tag-metainfo", true, "Append release metainfo tags to movie file names")
	cmd.Flags().BoolVarP(&flags.dryRun, "dry-run", "n", false, "Show planned destinations without touching any file")
	cmd.Flags().StringVarP(&flags.mediaType, "type", "t", "", "Media type: auto, movie, or tv")
	cmd.Flags().StringVarP(&flags.action, "action", "a", "", "Filesystem action: copy, move, hardlink, or symlink")
	cmd.Flags().StringVar(&flags.moviesDir, "movies-dir", "", "Movie library root")
	cmd.Flags().StringVar(&flags.tvDir, "tv-dir", "", "TV library root")
	cmd.Flags().BoolVar(&flags.overwrite, "overwrite", false, "Replace existing destination files")
	cmd.Flags().BoolVar(&flags.failFast, "fail-fast", false, "Abort the run on the first filesystem failure")
	cmd.Flags().IntVarP(&flags.workers, "workers", "w", 0, "Number of files processed at once")
	cmd.Flags().BoolVar(&flags.json, "json", false, "Output the report as JSON")

	return cmd
}

// sortSources turns arguments or configured scan sources into run input.
// Flags override the per-source settings.
func sortSources(cmd *cobra.Command, cfg *config.Config, flags sortFlags, args []string) ([]config.ScanSource, error) {
	var sources []config.ScanSource
	if len(args) > 0 {
		for _, arg := range args {
			path, err := config.ExpandPath(arg)
			if err != nil {
				return nil, err
			}
			sources = append(sources, config.ScanSource{SrcPath: path})
		}
	} else {
		sources = cfg.ScanSources()
	}
	if len(sources) == 0 {
		return nil, errors.New("no paths given and no [[scan]] sources configured")
	}

	for i := range sources {
		src := &sources[i]
		if cmd.Flags().Changed("type") {
			src.MediaType = flags.mediaType
		}
		if cmd.Flags().Changed("action") {
			src.Action = flags.action
		}
		if cmd.Flags().Changed("movies-dir") {
			src.MoviesDir = flags.moviesDir
		}
		if cmd.Flags().Changed("tv-dir") {
			src.TVDir = flags.tvDir
		}
	}
	for i := range sources {
		for _, dir := range []*string{&sources[i].MoviesDir, &sources[i].TVDir} {
			if *dir == "" {
				continue
			}
			expanded, err := config.ExpandPath(*dir)
			if err != nil {
				return nil, fmt.Errorf("%w: %w", services.ErrConfiguration, err)
			}
			*dir = expanded
		}
	}
	return sources, nil
}
