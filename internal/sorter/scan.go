package sorter

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"

	"mediasorter/internal/logging"
	"mediasorter/internal/services"
	"mediasorter/internal/textutil"
)

// Scan plans every eligible file under path. A file path is analyzed on its
// own; a directory is walked recursively in lexical order, skipping hidden
// entries and extensions that are not configured as valid. Files are
// analyzed concurrently but the returned operations keep walk order.
//
// A missing path yields a single failed operation rather than an error; the
// error return is reserved for cancellation.
func (e *Engine) Scan(ctx context.Context, path string, target Target) ([]Operation, error) {
	files, err := e.collect(path)
	if err != nil {
		op := Operation{
			Source:    path,
			MediaType: target.MediaType,
			Action:    target.Action,
			State:     StateInitial,
			DryRun:    e.dryRun,
		}
		op.fail(err)
		logging.ErrorWithContext(logging.WithContext(services.WithSource(ctx, path), e.logger),
			"scan source unavailable", "scan_failed",
			logging.String(logging.FieldErrorKind, string(op.ErrorKind)),
			logging.Error(err),
		)
		return []Operation{op}, nil
	}

	ops := make([]Operation, len(files))
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(e.workers)
	for i, file := range files {
		group.Go(func() error {
			ops[i] = e.Suggest(groupCtx, file, target)
			return nil
		})
	}
	_ = group.Wait()
	if err := ctx.Err(); err != nil {
		return ops, err
	}
	return ops, nil
}

func (e *Engine) collect(path string) ([]string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, services.Wrap(services.ErrIO, "scan", "resolve path", path, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, services.Wrap(services.ErrIO, "scan", "stat", path, err)
	}
	if !info.IsDir() {
		return []string{abs}, nil
	}

	var files []string
	err = filepath.WalkDir(abs, func(current string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			if current == abs {
				return walkErr
			}
			e.logger.Warn("skipping unreadable entry",
				logging.String(logging.FieldSource, current),
				logging.Error(walkErr),
			)
			if entry != nil && entry.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if current != abs && strings.HasPrefix(entry.Name(), ".") {
			if entry.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if entry.IsDir() || !entry.Type().IsRegular() && entry.Type()&fs.ModeSymlink == 0 {
			return nil
		}
		_, ext := textutil.SplitExtension(entry.Name())
		if !e.allowedExtension(ext) {
			e.logger.Debug("ignoring file with unsupported extension",
				logging.String(logging.FieldSource, current),
			)
			return nil
		}
		files = append(files, current)
		return nil
	})
	if err != nil {
		return nil, services.Wrap(services.ErrIO, "scan", "walk", path, err)
	}
	return files, nil
}
