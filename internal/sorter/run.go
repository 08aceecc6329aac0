package sorter

import (
	"context"
	"errors"
	"fmt"

	"mediasorter/internal/config"
	"mediasorter/internal/history"
	"mediasorter/internal/logging"
	"mediasorter/internal/services"
)

// Run scans every source, commits the planned operations and records each
// outcome. Per-file problems end up in the report; the error return is for
// configuration errors, cancellation and fail-fast aborts. The report is
// returned even when err is non-nil.
func (e *Engine) Run(ctx context.Context, sources []config.ScanSource) (*Report, error) {
	targets := make([]Target, len(sources))
	for i, src := range sources {
		target, err := e.TargetFor(src)
		if err != nil {
			return nil, err
		}
		targets[i] = target
	}

	report := &Report{RunID: history.NewRunID(), DryRun: e.dryRun}
	ctx = services.WithRunID(ctx, report.RunID)
	logger := logging.WithContext(ctx, e.logger)
	logger.Info("sort run started",
		logging.String(logging.FieldEventType, "run_start"),
		logging.Int("sources", len(sources)),
		logging.Bool("dry_run", e.dryRun),
	)

	recording := e.history != nil
	if recording {
		if err := e.history.BeginRun(ctx, report.RunID, e.dryRun); err != nil {
			recording = false
			logging.WarnWithContext(logger, "history unavailable", "history_failed",
				logging.Error(err),
				logging.String(logging.FieldImpact, "run is not recorded"),
			)
		}
	}

	var runErr error
	for i, src := range sources {
		ops, err := e.Scan(ctx, src.SrcPath, targets[i])
		report.Operations = append(report.Operations, ops...)
		if err != nil {
			runErr = err
			break
		}
	}
	if runErr == nil {
		runErr = e.Commit(ctx, report.Operations)
	}

	if recording {
		e.record(ctx, report)
	}

	succeeded, skipped, failed := report.Counts()
	logger.Info("sort run finished",
		logging.String(logging.FieldEventType, "run_finish"),
		logging.Int("succeeded", succeeded),
		logging.Int("skipped", skipped),
		logging.Int("failed", failed),
	)
	return report, runErr
}

// SortFiles runs the pipeline for explicit paths with one target.
func (e *Engine) SortFiles(ctx context.Context, paths []string, target Target) (*Report, error) {
	sources := make([]config.ScanSource, 0, len(paths))
	for _, path := range paths {
		sources = append(sources, config.ScanSource{
			SrcPath:   path,
			MediaType: target.MediaType,
			Action:    string(target.Action),
			MoviesDir: target.MoviesDir,
			TVDir:     target.TVDir,
		})
	}
	return e.Run(ctx, sources)
}

func (e *Engine) record(ctx context.Context, report *Report) {
	// Recording must survive a canceled run.
	ctx = context.WithoutCancel(ctx)
	var errs []error
	for _, op := range report.Operations {
		if op.Outcome == "" {
			continue
		}
		if _, err := e.history.Record(ctx, toRecord(report.RunID, op)); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", op.Source, err))
		}
	}
	if err := e.history.FinishRun(ctx, report.RunID); err != nil {
		errs = append(errs, err)
	}
	if err := errors.Join(errs...); err != nil {
		logging.WarnWithContext(logging.WithContext(ctx, e.logger), "history write failed", "history_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "some operations are missing from history"),
		)
	}
}

func toRecord(runID string, op Operation) history.Record {
	return history.Record{
		RunID:       runID,
		Source:      op.Source,
		Destination: op.Destination,
		Action:      string(op.Action),
		MediaType:   op.MediaType,
		Status:      history.Status(op.Outcome),
		State:       string(op.State),
		ErrorKind:   string(op.ErrorKind),
		Message:     op.Reason(),
		Checksum:    op.Checksum,
		DryRun:      op.DryRun,
	}
}
