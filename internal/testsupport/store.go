package testsupport

import (
	"context"
	"testing"

	"veritext/internal/config"
	"veritext/internal/runs"
)

// MustOpenStore opens a runs.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *runs.Store {
	t.Helper()

	store, err := runs.Open(cfg)
	if err != nil {
		t.Fatalf("runs.Open: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}

// NewRun registers a pending training run for tests.
func NewRun(t testing.TB, store *runs.Store, corpusPath, mode string, seed int64) *runs.Run {
	t.Helper()

	run, err := store.Create(context.Background(), corpusPath, mode, seed)
	if err != nil {
		t.Fatalf("store.Create: %v", err)
	}
	return run
}
