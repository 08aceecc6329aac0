package organizer

import (
	"context"
	"fmt"
	"os"
	"os/user"
	"path/filepath"
	"strconv"

	"mediasorter/internal/fileutil"
)

// writeExtras produces the info and checksum files and fixes ownership.
// checksum is reused when the action already hashed the content.
func writeExtras(ctx context.Context, src, dst string, action Action, opts Options, checksum string) ([]string, string, error) {
	var extras []string

	if opts.InfoFile {
		infoPath := dst + ".txt"
		body := fmt.Sprintf("Source filename:  %s\nSource directory: %s\n", filepath.Base(src), filepath.Dir(src))
		if err := writeSidecar(infoPath, body, opts); err != nil {
			return extras, checksum, ioError("write info file", infoPath, err)
		}
		extras = append(extras, infoPath)
	}

	if opts.ShaSum {
		if checksum == "" {
			sum, err := fileutil.SHA256File(ctx, dst)
			if err != nil {
				return extras, checksum, ioError("checksum", dst, err)
			}
			checksum = sum
		}
		sumPath := dst + ".sha256sum"
		// Same layout as `sha256sum -b`.
		body := fmt.Sprintf("%s *%s\n", checksum, dst)
		if err := writeSidecar(sumPath, body, opts); err != nil {
			return extras, checksum, ioError("write checksum file", sumPath, err)
		}
		extras = append(extras, sumPath)
	}

	if opts.Chown {
		if err := fixOwnership(dst, action, opts); err != nil {
			return extras, checksum, ioError("chown", dst, err)
		}
		for _, extra := range extras {
			if err := fixOwnership(extra, ActionCopy, opts); err != nil {
				return extras, checksum, ioError("chown", extra, err)
			}
		}
	}
	return extras, checksum, nil
}

func writeSidecar(path, body string, opts Options) error {
	if !opts.Overwrite {
		if _, err := os.Lstat(path); err == nil {
			return fmt.Errorf("%w: %s", ErrDestinationExists, path)
		}
	}
	mode := opts.FileMode
	if mode == 0 {
		mode = 0o644
	}
	return os.WriteFile(path, []byte(body), mode)
}

// fixOwnership hands dst and its parent directory to the configured owner
// and applies the configured modes. Symlinks are re-owned but never chmod'ed.
func fixOwnership(path string, action Action, opts Options) error {
	uid, gid, err := lookupOwner(opts.User, opts.Group)
	if err != nil {
		return err
	}
	parent := filepath.Dir(path)
	if err := os.Chown(parent, uid, gid); err != nil {
		return err
	}
	if opts.DirMode != 0 {
		if err := os.Chmod(parent, opts.DirMode); err != nil {
			return err
		}
	}
	if action == ActionSymlink {
		return os.Lchown(path, uid, gid)
	}
	if err := os.Chown(path, uid, gid); err != nil {
		return err
	}
	if opts.FileMode != 0 {
		return os.Chmod(path, opts.FileMode)
	}
	return nil
}

// lookupOwner resolves names to ids; empty names mean the current process.
func lookupOwner(userName, groupName string) (int, int, error) {
	uid, gid := os.Getuid(), os.Getgid()
	if userName != "" {
		u, err := user.Lookup(userName)
		if err != nil {
			return 0, 0, err
		}
		if uid, err = strconv.Atoi(u.Uid); err != nil {
			return 0, 0, fmt.Errorf("user %q: %w", userName, err)
		}
	}
	if groupName != "" {
		g, err := user.LookupGroup(groupName)
		if err != nil {
			return 0, 0, err
		}
		if gid, err = strconv.Atoi(g.Gid); err != nil {
			return 0, 0, fmt.Errorf("group %q: %w", groupName, err)
		}
	}
	return uid, gid, nil
}
