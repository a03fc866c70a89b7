package queue_test

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"scribe/internal/queue"
	"scribe/internal/testsupport"
)

func TestOpenInitializesSchema(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	sourcePath := filepath.Join(cfg.Paths.InputDir, "lecture_one.mp4")
	testsupport.WriteFile(t, sourcePath, 4096)

	item, err := store.NewFile(ctx, sourcePath)
	if err != nil {
		t.Fatalf("NewFile failed: %v", err)
	}
	if item.ID == 0 {
		t.Fatal("expected item ID to be assigned")
	}
	if item.Status != queue.StatusPending {
		t.Fatalf("expected pending status, got %s", item.Status)
	}
	if item.Basename != "lecture_one" {
		t.Fatalf("unexpected basename %q", item.Basename)
	}
	if item.SourceBytes != 4096 {
		t.Fatalf("expected source size recorded, got %d", item.SourceBytes)
	}

	fetched, err := store.GetByID(ctx, item.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if fetched == nil || fetched.Title != "Lecture One" {
		t.Fatalf("unexpected fetched item: %#v", fetched)
	}

	found, err := store.FindBySourcePath(ctx, sourcePath)
	if err != nil {
		t.Fatalf("FindBySourcePath failed: %v", err)
	}
	if found == nil || found.ID != item.ID {
		t.Fatalf("expected to find inserted item, got %#v", found)
	}
}

func TestNewFileRejectsDuplicateSource(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	sourcePath := filepath.Join(cfg.Paths.InputDir, "dupe.mkv")
	testsupport.WriteFile(t, sourcePath, 64)

	if _, err := store.NewFile(ctx, sourcePath); err != nil {
		t.Fatalf("NewFile failed: %v", err)
	}
	if _, err := store.NewFile(ctx, sourcePath); err == nil {
		t.Fatal("expected unique constraint error for duplicate source path")
	}
}

func TestUpdatePersistsFields(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	item := testsupport.NewFile(t, store, cfg, "talk.mp4")

	item.Status = queue.StatusTranscribed
	item.TranscriptPath = filepath.Join(cfg.Paths.OutputDir, "talk", "talk.srt")
	item.TranscriptReused = true
	item.SetProgress("transcribing", "done", 100)
	if err := store.Update(ctx, item); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	fetched, err := store.GetByID(ctx, item.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if fetched.Status != queue.StatusTranscribed {
		t.Fatalf("expected transcribed status, got %s", fetched.Status)
	}
	if fetched.TranscriptPath != item.TranscriptPath {
		t.Fatalf("unexpected transcript path %q", fetched.TranscriptPath)
	}
	if !fetched.TranscriptReused {
		t.Fatal("expected transcript_reused to persist")
	}
	if fetched.ProgressStage != "transcribing" || fetched.ProgressPercent != 100 {
		t.Fatalf("unexpected progress %q %.1f", fetched.ProgressStage, fetched.ProgressPercent)
	}
}

func TestNextForStatusesReturnsOldest(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	first := testsupport.NewFile(t, store, cfg, "first.mp4")
	testsupport.NewFile(t, store, cfg, "second.mp4")

	next, err := store.NextForStatuses(ctx, queue.StatusPending)
	if err != nil {
		t.Fatalf("NextForStatuses failed: %v", err)
	}
	if next == nil || next.ID != first.ID {
		t.Fatalf("expected oldest pending item, got %#v", next)
	}

	none, err := store.NextForStatuses(ctx, queue.StatusOrganizing)
	if err != nil {
		t.Fatalf("NextForStatuses failed: %v", err)
	}
	if none != nil {
		t.Fatalf("expected no organizing items, got %#v", none)
	}
}

func TestResetStuckProcessing(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	cases := []struct {
		name          string
		initialStatus queue.Status
		expected      queue.Status
	}{
		{"transcribing", queue.StatusTranscribing, queue.StatusPending},
		{"organizing", queue.StatusOrganizing, queue.StatusTranscribed},
	}
	var ids []int64
	for i, tc := range cases {
		item := testsupport.NewFile(t, store, cfg, fmt.Sprintf("stuck-%d.mp4", i))
		item.Status = tc.initialStatus
		item.ProgressStage = tc.name
		if err := store.Update(ctx, item); err != nil {
			t.Fatalf("Update failed: %v", err)
		}
		ids = append(ids, item.ID)
	}

	count, err := store.ResetStuckProcessing(ctx)
	if err != nil {
		t.Fatalf("ResetStuckProcessing failed: %v", err)
	}
	if count != int64(len(cases)) {
		t.Fatalf("expected %d items reset, got %d", len(cases), count)
	}

	for i, tc := range cases {
		fetched, err := store.GetByID(ctx, ids[i])
		if err != nil {
			t.Fatalf("GetByID failed: %v", err)
		}
		if fetched.Status != tc.expected {
			t.Fatalf("%s: expected rollback to %s, got %s", tc.name, tc.expected, fetched.Status)
		}
		if fetched.ProgressStage != "" {
			t.Fatalf("%s: expected progress cleared, got %q", tc.name, fetched.ProgressStage)
		}
	}
}

func TestReclaimStaleProcessing(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	stale := testsupport.NewFile(t, store, cfg, "stale.mp4")
	stale.Status = queue.StatusTranscribing
	old := time.Now().UTC().Add(-time.Hour)
	stale.LastHeartbeat = &old
	if err := store.Update(ctx, stale); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	fresh := testsupport.NewFile(t, store, cfg, "fresh.mp4")
	fresh.Status = queue.StatusOrganizing
	now := time.Now().UTC()
	fresh.LastHeartbeat = &now
	if err := store.Update(ctx, fresh); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	reclaimed, err := store.ReclaimStaleProcessing(ctx, 10*time.Minute)
	if err != nil {
		t.Fatalf("ReclaimStaleProcessing failed: %v", err)
	}
	if len(reclaimed) != 1 || reclaimed[0] != stale.ID {
		t.Fatalf("expected only stale item reclaimed, got %v", reclaimed)
	}

	fetched, err := store.GetByID(ctx, stale.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if fetched.Status != queue.StatusPending {
		t.Fatalf("expected rollback to pending, got %s", fetched.Status)
	}

	untouched, err := store.GetByID(ctx, fresh.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if untouched.Status != queue.StatusOrganizing {
		t.Fatalf("expected fresh item untouched, got %s", untouched.Status)
	}
}

func TestFailAllProcessing(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	item := testsupport.NewFile(t, store, cfg, "inflight.mp4")
	item.Status = queue.StatusTranscribing
	if err := store.Update(ctx, item); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	count, err := store.FailAllProcessing(ctx, queue.DaemonStopReason)
	if err != nil {
		t.Fatalf("FailAllProcessing failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected one item failed, got %d", count)
	}

	fetched, err := store.GetByID(ctx, item.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if fetched.Status != queue.StatusFailed {
		t.Fatalf("expected failed status, got %s", fetched.Status)
	}
	if fetched.ErrorMessage != queue.DaemonStopReason {
		t.Fatalf("unexpected error message %q", fetched.ErrorMessage)
	}
}

func TestRetryFailedAndClear(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	item := testsupport.NewFile(t, store, cfg, "retry.mp4")
	item.SetFailed("transcription timed out")
	if err := store.Update(ctx, item); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	retried, err := store.RetryFailed(ctx)
	if err != nil {
		t.Fatalf("RetryFailed failed: %v", err)
	}
	if retried != 1 {
		t.Fatalf("expected one item retried, got %d", retried)
	}

	fetched, err := store.GetByID(ctx, item.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if fetched.Status != queue.StatusPending || fetched.ErrorMessage != "" {
		t.Fatalf("unexpected item after retry: %#v", fetched)
	}

	cleared, err := store.Clear(ctx)
	if err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if cleared != 1 {
		t.Fatalf("expected one item cleared, got %d", cleared)
	}
}

func TestHealthCounts(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	testsupport.NewFile(t, store, cfg, "pending.mp4")

	done := testsupport.NewFile(t, store, cfg, "done.mp4")
	done.Status = queue.StatusCompleted
	if err := store.Update(ctx, done); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	failed := testsupport.NewFile(t, store, cfg, "broken.mp4")
	failed.SetFailed("whisperx exited 1")
	if err := store.Update(ctx, failed); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	summary, err := store.Health(ctx)
	if err != nil {
		t.Fatalf("Health failed: %v", err)
	}
	if summary.Total != 3 || summary.Pending != 1 || summary.Completed != 1 || summary.Failed != 1 {
		t.Fatalf("unexpected summary %#v", summary)
	}
}
