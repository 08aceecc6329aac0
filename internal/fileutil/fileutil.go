package fileutil

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
)

// ErrChecksumMismatch reports a copy whose written bytes differ from the source.
var ErrChecksumMismatch = errors.New("checksum mismatch")

// CopyFileVerified copies src to a newly created dst, keeping the source
// permission bits, and returns the SHA-256 of the content. After the copy is
// flushed dst is read back and compared with the source digest. dst is
// removed on any failure, including cancellation, and never overwritten.
func CopyFileVerified(ctx context.Context, src, dst string) (string, error) {
	info, err := os.Stat(src)
	if err != nil {
		return "", fmt.Errorf("stat source: %w", err)
	}
	if !info.Mode().IsRegular() {
		return "", fmt.Errorf("source %q is not a regular file", src)
	}

	want, written, err := copyHashed(ctx, src, dst, info.Mode().Perm())
	if err != nil {
		return "", err
	}
	if written != info.Size() {
		_ = os.Remove(dst)
		return "", fmt.Errorf("copy size mismatch: source %d bytes, copied %d bytes", info.Size(), written)
	}

	got, err := SHA256File(ctx, dst)
	if err != nil {
		_ = os.Remove(dst)
		return "", fmt.Errorf("verify copy: %w", err)
	}
	if got != want {
		_ = os.Remove(dst)
		return "", fmt.Errorf("%w: %s", ErrChecksumMismatch, dst)
	}
	return want, nil
}

// copyHashed streams src into dst (created exclusively) and returns the
// digest of what was read. A dst it created is removed again on failure.
func copyHashed(ctx context.Context, src, dst string, perm os.FileMode) (string, int64, error) {
	in, err := os.Open(src)
	if err != nil {
		return "", 0, err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_EXCL|os.O_WRONLY, perm)
	if err != nil {
		return "", 0, err
	}
	hasher := sha256.New()
	written, err := io.Copy(out, io.TeeReader(contextReader{ctx: ctx, r: in}, hasher))
	if err == nil {
		err = out.Sync()
	}
	if closeErr := out.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(dst)
		return "", written, err
	}
	return hex.EncodeToString(hasher.Sum(nil)), written, nil
}

// SHA256File returns the hex digest of path.
func SHA256File(ctx context.Context, path string) (string, error) {
	in, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer in.Close()
	hasher := sha256.New()
	if _, err := io.Copy(hasher, contextReader{ctx: ctx, r: in}); err != nil {
		return "", err
	}
	return hex.EncodeToString(hasher.Sum(nil)), nil
}

// contextReader stops a long copy once ctx is done.
type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func (c contextReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
