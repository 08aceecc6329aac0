package testsupport

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

// WriteMedia creates a stand-in media file at path, creating parents. The
// content repeats the base name so distinct files hash differently.
func WriteMedia(t testing.TB, path string, size int) {
	t.Helper()
	if size <= 0 {
		size = 1
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	seed := []byte(filepath.Base(path))
	body := bytes.Repeat(seed, size/len(seed)+1)[:size]
	if err := os.WriteFile(path, body, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// WriteTree creates each slash-separated name below root and returns the
// absolute paths in the order given.
func WriteTree(t testing.TB, root string, names ...string) []string {
	t.Helper()
	paths := make([]string, 0, len(names))
	for _, name := range names {
		path := filepath.Join(root, filepath.FromSlash(name))
		WriteMedia(t, path, 64)
		paths = append(paths, path)
	}
	return paths
}
