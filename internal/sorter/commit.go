package sorter

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/flock"
	"golang.org/x/sync/errgroup"

	"mediasorter/internal/logging"
	"mediasorter/internal/naming"
	"mediasorter/internal/organizer"
	"mediasorter/internal/services"
)

// ErrAborted reports a run stopped early because fail-fast escalated a
// filesystem failure.
var ErrAborted = errors.New("run aborted")

const lockRetryDelay = 250 * time.Millisecond

// Commit dispatches every pending operation to the organizer. Operations
// that are already terminal are left alone. In dry-run mode pending
// operations are marked successful and nothing is written.
//
// Destinations are claimed in operation order before anything is written, so
// when two sources resolve to the same name the earlier one wins and the
// later one fails without touching either file.
//
// The returned error is non-nil only when the run could not proceed: the
// library lock is unavailable, the context was canceled, or fail-fast
// aborted the run.
func (e *Engine) Commit(ctx context.Context, ops []Operation) error {
	if e.dryRun {
		for i := range ops {
			if ops[i].Pending() {
				ops[i].DryRun = true
				ops[i].Outcome = services.OutcomeSuccess
			}
		}
		return nil
	}
	if !hasPending(ops) {
		return nil
	}

	unlock, err := e.lockLibrary(ctx)
	if err != nil {
		return err
	}
	defer unlock()

	claims := naming.NewClaims()
	var conflict error
	for i := range ops {
		if !ops[i].Pending() {
			continue
		}
		if owner, ok := claims.Claim(ops[i].Source, ops[i].Destination); !ok {
			ops[i].fail(services.Wrap(services.ErrIO, "commit", "claim destination", ops[i].Destination,
				fmt.Errorf("already planned for %s", owner)))
			e.logFailure(ctx, ops[i])
			if conflict == nil {
				conflict = ops[i].Err
			}
		}
	}
	if conflict != nil && e.failFast {
		e.abortPending(ops, conflict)
		return fmt.Errorf("%w: %w", ErrAborted, conflict)
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(e.workers)
	for i := range ops {
		if !ops[i].Pending() {
			continue
		}
		group.Go(func() error {
			op := &ops[i]
			if err := groupCtx.Err(); err != nil {
				op.fail(fmt.Errorf("%w: %w", ErrAborted, err))
				return nil
			}
			e.dispatch(groupCtx, op)
			if e.failFast && op.ErrorKind == services.KindIO {
				return op.Err
			}
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return fmt.Errorf("%w: %w", ErrAborted, err)
	}
	return ctx.Err()
}

func (e *Engine) dispatch(ctx context.Context, op *Operation) {
	ctx = services.WithStage(services.WithSource(ctx, op.Source), "commit")
	logger := logging.WithContext(ctx, e.logger)

	result, err := organizer.Apply(ctx, op.Source, op.Destination, op.Action, e.organize)
	if err != nil {
		op.fail(err)
		e.logFailure(ctx, *op)
		return
	}
	op.Checksum = result.Checksum
	op.succeed(StateDispatched)
	logger.Info("file sorted",
		logging.String(logging.FieldEventType, "file_sorted"),
		logging.String("action", string(op.Action)),
		logging.String(logging.FieldDestination, op.Destination),
	)
}

func (e *Engine) logFailure(ctx context.Context, op Operation) {
	logger := logging.WithContext(services.WithSource(ctx, op.Source), e.logger)
	logging.ErrorWithContext(logger, "file operation failed", "commit_failed",
		logging.String("state", string(op.State)),
		logging.String(logging.FieldErrorKind, string(op.ErrorKind)),
		logging.String(logging.FieldDestination, op.Destination),
		logging.Error(op.Err),
	)
}

func (e *Engine) abortPending(ops []Operation, cause error) {
	for i := range ops {
		if ops[i].Pending() {
			ops[i].fail(fmt.Errorf("%w after failure: %w", ErrAborted, context.Canceled))
		}
	}
	e.logger.Warn("run aborted", logging.Error(cause))
}

// lockLibrary takes the single-writer lock, waiting for another run to
// finish when necessary.
func (e *Engine) lockLibrary(ctx context.Context) (func(), error) {
	if err := e.cfg.EnsureDirectories(); err != nil {
		return nil, services.Wrap(services.ErrIO, "commit", "prepare state directory", "", err)
	}
	lock := flock.New(e.cfg.LockPath())
	ok, err := lock.TryLock()
	if err != nil {
		return nil, services.Wrap(services.ErrIO, "commit", "acquire lock", lock.Path(), err)
	}
	if !ok {
		e.logger.Info("waiting for library lock", logging.String("lock", lock.Path()))
		ok, err = lock.TryLockContext(ctx, lockRetryDelay)
		if err != nil {
			return nil, services.Wrap(services.ErrIO, "commit", "acquire lock", lock.Path(), err)
		}
		if !ok {
			return nil, services.Wrap(services.ErrIO, "commit", "acquire lock", "another mediasorter run holds "+lock.Path(), nil)
		}
	}
	return func() {
		if err := lock.Unlock(); err != nil {
			e.logger.Warn("failed to release library lock", logging.Error(err))
		}
	}, nil
}

func hasPending(ops []Operation) bool {
	for _, op := range ops {
		if op.Pending() {
			return true
		}
	}
	return false
}
