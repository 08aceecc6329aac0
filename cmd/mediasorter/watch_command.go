package main

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"mediasorter/internal/config"
	"mediasorter/internal/logging"
	"mediasorter/internal/sorter"
	"mediasorter/internal/watcher"
)

func newWatchCommand(ctx *commandContext) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "watch [dirs...]",
		Short: "Sort files as they appear in source directories",
		Long: `Watch keeps running and sorts every file that lands in the given directories,
or in the configured [[scan]] sources when none are given. A file is picked
up once it has not changed for watch.settle_seconds.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := ctx.newSession(sorter.WithDryRun(dryRun))
			if err != nil {
				return err
			}
			defer sess.close()

			sources, err := watchSources(sess.cfg, args)
			if err != nil {
				return err
			}
			roots := make([]string, 0, len(sources))
			byRoot := make(map[string]config.ScanSource, len(sources))
			for _, src := range sources {
				abs, err := filepath.Abs(src.SrcPath)
				if err != nil {
					return err
				}
				roots = append(roots, abs)
				byRoot[abs] = src
			}

			out := cmd.OutOrStdout()
			var outMu sync.Mutex
			handle := func(runCtx context.Context, root, path string) {
				src := byRoot[root]
				src.SrcPath = path
				report, err := sess.engine.Run(runCtx, []config.ScanSource{src})
				if err != nil && !errors.Is(err, context.Canceled) {
					logging.ErrorWithContext(sess.logger, "watch sort failed", "watch_sort_failed",
						logging.String(logging.FieldSource, path),
						logging.Error(err),
					)
				}
				if report == nil {
					return
				}
				outMu.Lock()
				defer outMu.Unlock()
				for _, op := range report.Operations {
					detail := op.Destination
					if op.Err != nil {
						detail = op.Reason()
					}
					fmt.Fprintf(out, "%s\t%s\t%s\n", outcomeLabel(op, report.DryRun), op.Source, detail)
				}
			}

			w, err := watcher.New(roots, handle, watcher.Options{
				Settle:    time.Duration(sess.cfg.Watch.SettleSeconds) * time.Second,
				Recursive: sess.cfg.Watch.Recursive,
				Accept:    sess.engine.Accepts,
				Logger:    sess.logger,
			})
			if err != nil {
				return err
			}

			runCtx, stop := signalContext(cmd)
			defer stop()
			return w.Run(runCtx)
		},
	}

	cmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, "Log planned destinations without touching any file")
	return cmd
}

func watchSources(cfg *config.Config, args []string) ([]config.ScanSource, error) {
	if len(args) == 0 {
		sources := cfg.ScanSources()
		if len(sources) == 0 {
			return nil, errors.New("no directories given and no [[scan]] sources configured")
		}
		return sources, nil
	}
	sources := make([]config.ScanSource, 0, len(args))
	for _, arg := range args {
		path, err := config.ExpandPath(arg)
		if err != nil {
			return nil, err
		}
		sources = append(sources, config.ScanSource{SrcPath: path})
	}
	return sources, nil
}
