package organizer_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"mediasorter/internal/config"
	"mediasorter/internal/organizer"
	"mediasorter/internal/services"
)

func writeSource(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestApplyActions(t *testing.T) {
	tests := []struct {
		action      organizer.Action
		keepsSource bool
		symlink     bool
	}{
		{action: organizer.ActionCopy, keepsSource: true},
		{action: organizer.ActionMove},
		{action: organizer.ActionHardlink, keepsSource: true},
		{action: organizer.ActionSymlink, keepsSource: true, symlink: true},
	}
	for _, tc := range tests {
		t.Run(string(tc.action), func(t *testing.T) {
			dir := t.TempDir()
			src := writeSource(t, dir, "in/Heat.1995.mkv", "movie bytes")
			dst := filepath.Join(dir, "library", "Heat (1995)", "Heat (1995).mkv")

			result, err := organizer.Apply(context.Background(), src, dst, tc.action, organizer.Options{})
			if err != nil {
				t.Fatalf("Apply returned error: %v", err)
			}
			if result.Destination != dst {
				t.Fatalf("unexpected destination %q", result.Destination)
			}
			got, err := os.ReadFile(dst)
			if err != nil || string(got) != "movie bytes" {
				t.Fatalf("destination content %q err=%v", got, err)
			}
			_, statErr := os.Stat(src)
			if tc.keepsSource && statErr != nil {
				t.Fatalf("expected source kept, got %v", statErr)
			}
			if !tc.keepsSource && !errors.Is(statErr, os.ErrNotExist) {
				t.Fatalf("expected source removed, got %v", statErr)
			}
			info, err := os.Lstat(dst)
			if err != nil {
				t.Fatal(err)
			}
			if isLink := info.Mode()&os.ModeSymlink != 0; isLink != tc.symlink {
				t.Fatalf("symlink = %v, want %v", isLink, tc.symlink)
			}
		})
	}
}

func TestApplyRefusesExistingTarget(t *testing.T) {
	dir := t.TempDir()
	src := writeSource(t, dir, "in/new.mkv", "new")
	dst := writeSource(t, dir, "out/existing.mkv", "old")

	_, err := organizer.Apply(context.Background(), src, dst, organizer.ActionMove, organizer.Options{})
	if !errors.Is(err, services.ErrIO) || !organizer.IsExists(err) {
		t.Fatalf("expected existing-target io error, got %v", err)
	}
	if got, _ := os.ReadFile(dst); string(got) != "old" {
		t.Fatalf("existing target modified: %q", got)
	}
	if _, err := os.Stat(src); err != nil {
		t.Fatalf("source must be untouched: %v", err)
	}
}

func TestApplyOverwrite(t *testing.T) {
	dir := t.TempDir()
	src := writeSource(t, dir, "in/new.mkv", "new")
	dst := writeSource(t, dir, "out/existing.mkv", "old")

	if _, err := organizer.Apply(context.Background(), src, dst, organizer.ActionCopy, organizer.Options{Overwrite: true}); err != nil {
		t.Fatalf("Apply returned error: %v", err)
	}
	if got, _ := os.ReadFile(dst); string(got) != "new" {
		t.Fatalf("expected overwritten target, got %q", got)
	}
}

func TestApplyRejectsSameFile(t *testing.T) {
	dir := t.TempDir()
	src := writeSource(t, dir, "lib/Heat (1995).mkv", "x")

	_, err := organizer.Apply(context.Background(), src, src, organizer.ActionMove, organizer.Options{Overwrite: true})
	if !errors.Is(err, services.ErrIO) {
		t.Fatalf("expected io error, got %v", err)
	}
	if _, err := os.Stat(src); err != nil {
		t.Fatalf("source must survive: %v", err)
	}
}

func TestApplyMissingSource(t *testing.T) {
	dir := t.TempDir()
	_, err := organizer.Apply(context.Background(), filepath.Join(dir, "missing.mkv"), filepath.Join(dir, "out.mkv"), organizer.ActionCopy, organizer.Options{})
	if !errors.Is(err, services.ErrIO) {
		t.Fatalf("expected io error, got %v", err)
	}
}

func TestApplyCanceled(t *testing.T) {
	dir := t.TempDir()
	src := writeSource(t, dir, "in.mkv", "x")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := organizer.Apply(ctx, src, filepath.Join(dir, "out.mkv"), organizer.ActionCopy, organizer.Options{}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected cancellation, got %v", err)
	}
}

func TestApplyExtras(t *testing.T) {
	dir := t.TempDir()
	src := writeSource(t, dir, "in/Alien.1979.mkv", "abc")
	dst := filepath.Join(dir, "out", "Alien (1979).mkv")

	opts := organizer.Options{InfoFile: true, ShaSum: true, Chown: true, FileMode: 0o640, DirMode: 0o750}
	result, err := organizer.Apply(context.Background(), src, dst, organizer.ActionMove, opts)
	if err != nil {
		t.Fatalf("Apply returned error: %v", err)
	}
	const digest = "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"
	if result.Checksum != digest {
		t.Fatalf("checksum = %q", result.Checksum)
	}
	if len(result.Extras) != 2 {
		t.Fatalf("expected two extras, got %v", result.Extras)
	}

	info, err := os.ReadFile(dst + ".txt")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(info), "Source filename:  Alien.1979.mkv") {
		t.Fatalf("unexpected info file %q", info)
	}
	sum, err := os.ReadFile(dst + ".sha256sum")
	if err != nil {
		t.Fatal(err)
	}
	if string(sum) != digest+" *"+dst+"\n" {
		t.Fatalf("unexpected checksum file %q", sum)
	}

	stat, err := os.Stat(dst)
	if err != nil {
		t.Fatal(err)
	}
	if stat.Mode().Perm() != 0o640 {
		t.Fatalf("file mode = %o", stat.Mode().Perm())
	}
	parent, err := os.Stat(filepath.Dir(dst))
	if err != nil {
		t.Fatal(err)
	}
	if parent.Mode().Perm() != 0o750 {
		t.Fatalf("dir mode = %o", parent.Mode().Perm())
	}
}

func TestParseAction(t *testing.T) {
	if action, err := organizer.ParseAction(" Hardlink "); err != nil || action != organizer.ActionHardlink {
		t.Fatalf("ParseAction = %q, %v", action, err)
	}
	if _, err := organizer.ParseAction("teleport"); !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestOptionsFromConfig(t *testing.T) {
	op := config.Default().Operation
	op.FileMode = "0600"
	op.Overwrite = true
	opts, err := organizer.OptionsFromConfig(op)
	if err != nil {
		t.Fatalf("OptionsFromConfig returned error: %v", err)
	}
	if opts.FileMode != 0o600 || opts.DirMode != 0o755 || !opts.Overwrite {
		t.Fatalf("unexpected options %#v", opts)
	}

	op.DirMode = "rwx"
	if _, err := organizer.OptionsFromConfig(op); !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}
