package testsupport

import (
	"testing"

	"mediasorter/internal/config"
	"mediasorter/internal/history"
)

// MustOpenHistory opens the history store for tests and registers cleanup.
func MustOpenHistory(t testing.TB, cfg *config.Config) *history.Store {
	t.Helper()

	store, err := history.OpenFromConfig(cfg)
	if err != nil {
		t.Fatalf("history.OpenFromConfig: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}
