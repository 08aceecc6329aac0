package organizer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sys/unix"

	"mediasorter/internal/config"
	"mediasorter/internal/fileutil"
	"mediasorter/internal/services"
)

// Action selects how a file reaches the library.
type Action string

const (
	ActionCopy     Action = config.ActionCopy
	ActionMove     Action = config.ActionMove
	ActionHardlink Action = config.ActionHardlink
	ActionSymlink  Action = config.ActionSymlink
)

// ParseAction validates an action name.
func ParseAction(value string) (Action, error) {
	action := Action(strings.ToLower(strings.TrimSpace(value)))
	switch action {
	case ActionCopy, ActionMove, ActionHardlink, ActionSymlink:
		return action, nil
	}
	return "", fmt.Errorf("%w: unknown action %q", services.ErrConfiguration, value)
}

// ErrDestinationExists reports a target that would be replaced without overwrite.
var ErrDestinationExists = errors.New("destination exists")

// Options control what happens around the action itself.
type Options struct {
	Overwrite bool
	InfoFile  bool
	ShaSum    bool
	Chown     bool
	User      string
	Group     string
	FileMode  os.FileMode
	DirMode   os.FileMode
}

// OptionsFromConfig translates the operation section of the configuration.
func OptionsFromConfig(op config.Operation) (Options, error) {
	fileMode, err := config.ParseMode(op.FileMode)
	if err != nil {
		return Options{}, fmt.Errorf("%w: file_mode: %w", services.ErrConfiguration, err)
	}
	dirMode, err := config.ParseMode(op.DirMode)
	if err != nil {
		return Options{}, fmt.Errorf("%w: dir_mode: %w", services.ErrConfiguration, err)
	}
	return Options{
		Overwrite: op.Overwrite,
		InfoFile:  op.InfoFile,
		ShaSum:    op.ShaSum,
		Chown:     op.Chown,
		User:      strings.TrimSpace(op.User),
		Group:     strings.TrimSpace(op.Group),
		FileMode:  os.FileMode(fileMode),
		DirMode:   os.FileMode(dirMode),
	}, nil
}

// Result describes what Apply produced.
type Result struct {
	Destination string
	Checksum    string
	Extras      []string
}

// Apply places src at dst using action.
func Apply(ctx context.Context, src, dst string, action Action, opts Options) (Result, error) {
	result := Result{Destination: dst}
	if err := ctx.Err(); err != nil {
		return result, err
	}
	src, err := filepath.Abs(src)
	if err != nil {
		return result, ioError("resolve source", src, err)
	}
	info, err := os.Stat(src)
	if err != nil {
		return result, ioError("stat source", src, err)
	}
	if !info.Mode().IsRegular() {
		return result, ioError("stat source", src, errors.New("not a regular file"))
	}
	if err := prepareTarget(src, dst, opts); err != nil {
		return result, err
	}

	dirMode := opts.DirMode
	if dirMode == 0 {
		dirMode = 0o755
	}
	if err := os.MkdirAll(filepath.Dir(dst), dirMode); err != nil {
		return result, ioError("create directory", filepath.Dir(dst), err)
	}

	switch action {
	case ActionCopy:
		result.Checksum, err = fileutil.CopyFileVerified(ctx, src, dst)
	case ActionMove:
		result.Checksum, err = moveFile(ctx, src, dst)
	case ActionHardlink:
		err = os.Link(src, dst)
	case ActionSymlink:
		err = os.Symlink(src, dst)
	default:
		return result, fmt.Errorf("%w: unknown action %q", services.ErrConfiguration, action)
	}
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return result, ctxErr
		}
		return result, ioError(string(action), dst, err)
	}

	extras, checksum, err := writeExtras(ctx, src, dst, action, opts, result.Checksum)
	result.Extras = extras
	result.Checksum = checksum
	return result, err
}

// prepareTarget enforces the overwrite policy.
func prepareTarget(src, dst string, opts Options) error {
	existing, err := os.Lstat(dst)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return ioError("stat destination", dst, err)
	}
	if existing.IsDir() {
		return ioError("check destination", dst, errors.New("is a directory"))
	}
	if srcInfo, err := os.Stat(src); err == nil {
		if dstInfo, err := os.Stat(dst); err == nil && os.SameFile(srcInfo, dstInfo) {
			return ioError("check destination", dst, errors.New("source and destination are the same file"))
		}
	}
	if !opts.Overwrite {
		return ioError("check destination", dst, ErrDestinationExists)
	}
	if err := os.Remove(dst); err != nil && !errors.Is(err, os.ErrNotExist) {
		return ioError("remove existing destination", dst, err)
	}
	return nil
}

// moveFile renames src to dst, falling back to a verified copy and removal
// of src when they live on different filesystems.
func moveFile(ctx context.Context, src, dst string) (string, error) {
	err := os.Rename(src, dst)
	if err == nil {
		return "", nil
	}
	var linkErr *os.LinkError
	if !errors.As(err, &linkErr) || !errors.Is(linkErr.Err, unix.EXDEV) {
		return "", err
	}
	sum, err := fileutil.CopyFileVerified(ctx, src, dst)
	if err != nil {
		return "", fmt.Errorf("copy file across devices: %w", err)
	}
	if err := os.Remove(src); err != nil {
		return sum, fmt.Errorf("remove source after copy: %w", err)
	}
	return sum, nil
}

// IsExists reports whether err came from a refused overwrite.
func IsExists(err error) bool {
	return errors.Is(err, ErrDestinationExists)
}

func ioError(operation, path string, err error) error {
	return services.Wrap(services.ErrIO, "organizer", operation, path, err)
}
