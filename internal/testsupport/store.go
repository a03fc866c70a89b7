package testsupport

import (
	"context"
	"path/filepath"
	"testing"

	"scribe/internal/config"
	"scribe/internal/queue"
)

// MustOpenStore opens a queue.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *queue.Store {
	t.Helper()

	store, err := queue.Open(cfg)
	if err != nil {
		t.Fatalf("queue.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// NewFile creates a queue item backed by a real media file on disk.
func NewFile(t testing.TB, store *queue.Store, cfg *config.Config, name string) *queue.Item {
	t.Helper()

	sourcePath := filepath.Join(cfg.Paths.InputDir, name)
	WriteFile(t, sourcePath, 2048)

	item, err := store.NewFile(context.Background(), sourcePath)
	if err != nil {
		t.Fatalf("store.NewFile: %v", err)
	}
	return item
}
