package testsupport

import (
	"context"
	"testing"

	"ytscribe/internal/config"
	"ytscribe/internal/queue"
)

// MustOpenStore opens the run store for the config, failing the test on error.
func MustOpenStore(t testing.TB, cfg *config.Config) *queue.Store {
	t.Helper()
	store, err := queue.Open(cfg)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

// SeedRun inserts a run in the given status and returns it.
func SeedRun(t testing.TB, store *queue.Store, runID, url string, status queue.Status) *queue.Run {
	t.Helper()
	run, err := store.NewRun(context.Background(), runID, url, "medium", "fr")
	if err != nil {
		t.Fatalf("seed run: %v", err)
	}
	if status != queue.StatusPending {
		run.Status = status
		if err := store.Update(context.Background(), run); err != nil {
			t.Fatalf("seed run status: %v", err)
		}
	}
	return run
}
