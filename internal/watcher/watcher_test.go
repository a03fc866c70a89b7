package watcher_test

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"scribe/internal/logging"
	"scribe/internal/notifications"
	"scribe/internal/queue"
	"scribe/internal/testsupport"
	"scribe/internal/watcher"
)

func waitForItem(t *testing.T, store *queue.Store, path string) *queue.Item {
	t.Helper()
	ctx := context.Background()
	deadline := time.After(10 * time.Second)
	for {
		item, err := store.FindBySourcePath(ctx, path)
		if err != nil {
			t.Fatalf("FindBySourcePath failed: %v", err)
		}
		if item != nil {
			return item
		}
		select {
		case <-deadline:
			t.Fatalf("timed out waiting for %s to be queued", path)
		default:
			time.Sleep(25 * time.Millisecond)
		}
	}
}

func TestWatcherEnqueuesNewMediaFile(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Watcher.SettleDelayMS = 50
	store := testsupport.MustOpenStore(t, cfg)

	w, err := watcher.New(cfg, store, logging.NewNop())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	t.Cleanup(w.Stop)

	mediaPath := filepath.Join(cfg.Paths.InputDir, "new_talk.mp4")
	testsupport.WriteFile(t, mediaPath, 2048)

	item := waitForItem(t, store, mediaPath)
	if item.Status != queue.StatusPending {
		t.Fatalf("expected pending item, got %s", item.Status)
	}
}

func TestWatcherIgnoresNonMediaFiles(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Watcher.SettleDelayMS = 50
	store := testsupport.MustOpenStore(t, cfg)

	w, err := watcher.New(cfg, store, logging.NewNop())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	t.Cleanup(w.Stop)

	textPath := filepath.Join(cfg.Paths.InputDir, "notes.txt")
	testsupport.WriteFile(t, textPath, 64)

	time.Sleep(300 * time.Millisecond)
	item, err := store.FindBySourcePath(context.Background(), textPath)
	if err != nil {
		t.Fatalf("FindBySourcePath failed: %v", err)
	}
	if item != nil {
		t.Fatalf("non-media file must not be queued, got %#v", item)
	}
}

func TestWatcherEnqueuesPreexistingFiles(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	mediaPath := filepath.Join(cfg.Paths.InputDir, "early.mkv")
	testsupport.WriteFile(t, mediaPath, 1024)

	w, err := watcher.New(cfg, store, logging.NewNop())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	t.Cleanup(w.Stop)

	waitForItem(t, store, mediaPath)
}

func TestWatcherDeduplicatesExistingQueueEntries(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	item := testsupport.NewFile(t, store, cfg, "dupe.mp4")

	w, err := watcher.New(cfg, store, logging.NewNop())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	t.Cleanup(w.Stop)

	time.Sleep(300 * time.Millisecond)
	items, err := store.List(context.Background())
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected single queue entry, got %d", len(items))
	}
	if items[0].ID != item.ID {
		t.Fatalf("unexpected item %d", items[0].ID)
	}
}

type detectRecorder struct {
	mu        sync.Mutex
	basenames []string
}

func (d *detectRecorder) NotifyFileDetected(_ context.Context, basename string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.basenames = append(d.basenames, basename)
	return nil
}

func (d *detectRecorder) NotifyTranscriptionCompleted(context.Context, string, bool) error {
	return nil
}
func (d *detectRecorder) NotifyItemCompleted(context.Context, string, string) error { return nil }
func (d *detectRecorder) NotifyItemFailed(context.Context, string, string) error    { return nil }
func (d *detectRecorder) NotifyQueueStarted(context.Context, int) error             { return nil }
func (d *detectRecorder) NotifyQueueCompleted(context.Context, int, int, time.Duration) error {
	return nil
}
func (d *detectRecorder) TestNotification(context.Context) error { return nil }

func (d *detectRecorder) detected() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.basenames...)
}

var _ notifications.Service = (*detectRecorder)(nil)

func TestWatcherNotifiesOnDetection(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Watcher.SettleDelayMS = 50
	store := testsupport.MustOpenStore(t, cfg)

	w, err := watcher.New(cfg, store, logging.NewNop())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	recorder := &detectRecorder{}
	w.SetNotifier(recorder)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	t.Cleanup(w.Stop)

	mediaPath := filepath.Join(cfg.Paths.InputDir, "announced_talk.mp4")
	testsupport.WriteFile(t, mediaPath, 2048)
	waitForItem(t, store, mediaPath)

	deadline := time.After(5 * time.Second)
	for {
		if names := recorder.detected(); len(names) == 1 && names[0] == "announced_talk" {
			return
		}
		select {
		case <-deadline:
			t.Fatalf("expected detection notification, got %v", recorder.detected())
		default:
			time.Sleep(25 * time.Millisecond)
		}
	}
}
