package transcribing_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"scribe/internal/logging"
	"scribe/internal/notifications"
	"scribe/internal/queue"
	"scribe/internal/services"
	"scribe/internal/testsupport"
	"scribe/internal/transcriber"
	"scribe/internal/transcribing"
)

type fakeClient struct {
	calls      int
	fail       error
	transcribe func(mediaPath, outputDir string) (transcriber.Result, error)
}

func (f *fakeClient) Transcribe(ctx context.Context, mediaPath, outputDir string) (transcriber.Result, error) {
	f.calls++
	if f.fail != nil {
		return transcriber.Result{}, f.fail
	}
	if f.transcribe != nil {
		return f.transcribe(mediaPath, outputDir)
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return transcriber.Result{}, err
	}
	stem := queue.BasenameFromPath(mediaPath)
	srt := filepath.Join(outputDir, stem+".srt")
	if err := os.WriteFile(srt, []byte("1\n"), 0o644); err != nil {
		return transcriber.Result{}, err
	}
	return transcriber.Result{SRTPath: srt}, nil
}

func TestExecuteTranscribes(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	item := testsupport.NewFile(t, store, cfg, "talk.mp4")

	client := &fakeClient{}
	handler := transcribing.NewWithClient(cfg, store, logging.NewNop(), client)

	ctx := context.Background()
	if err := handler.Prepare(ctx, item); err != nil {
		t.Fatalf("Prepare failed: %v", err)
	}
	if err := handler.Execute(ctx, item); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	if client.calls != 1 {
		t.Fatalf("expected one transcriber call, got %d", client.calls)
	}
	if item.Status != queue.StatusTranscribed {
		t.Fatalf("expected transcribed status, got %s", item.Status)
	}
	want := filepath.Join(cfg.Paths.OutputDir, "talk", "talk.srt")
	if item.TranscriptPath != want {
		t.Fatalf("expected transcript %s, got %s", want, item.TranscriptPath)
	}
	if item.TranscriptReused {
		t.Fatal("fresh transcription must not mark transcript as reused")
	}
}

func TestExecuteReusesExistingTranscript(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	item := testsupport.NewFile(t, store, cfg, "talk.mp4")

	transcript := filepath.Join(cfg.Paths.OutputDir, "talk", "talk.srt")
	testsupport.WriteFile(t, transcript, 32)

	client := &fakeClient{}
	handler := transcribing.NewWithClient(cfg, store, logging.NewNop(), client)

	if err := handler.Execute(context.Background(), item); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if client.calls != 0 {
		t.Fatalf("transcriber must not run when transcript exists, got %d calls", client.calls)
	}
	if !item.TranscriptReused {
		t.Fatal("expected transcript_reused flag")
	}
	if item.Status != queue.StatusTranscribed {
		t.Fatalf("expected transcribed status, got %s", item.Status)
	}
	if item.TranscriptPath != transcript {
		t.Fatalf("unexpected transcript path %s", item.TranscriptPath)
	}
}

func TestExecuteWrapsTranscriberFailure(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	item := testsupport.NewFile(t, store, cfg, "bad.mp4")

	client := &fakeClient{fail: errors.New("decode error")}
	handler := transcribing.NewWithClient(cfg, store, logging.NewNop(), client)

	err := handler.Execute(context.Background(), item)
	if err == nil {
		t.Fatal("expected error from failing client")
	}
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external tool marker, got %v", err)
	}

	if _, statErr := os.Stat(item.SourcePath); statErr != nil {
		t.Fatalf("source must remain after failure: %v", statErr)
	}
}

func TestPrepareRequiresSourceFile(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	item := testsupport.NewFile(t, store, cfg, "gone.mp4")

	if err := os.Remove(item.SourcePath); err != nil {
		t.Fatalf("remove source: %v", err)
	}

	handler := transcribing.NewWithClient(cfg, store, logging.NewNop(), &fakeClient{})
	err := handler.Prepare(context.Background(), item)
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

type completionRecorder struct {
	titles []string
	reused []bool
}

func (c *completionRecorder) NotifyFileDetected(context.Context, string) error { return nil }
func (c *completionRecorder) NotifyTranscriptionCompleted(_ context.Context, title string, reused bool) error {
	c.titles = append(c.titles, title)
	c.reused = append(c.reused, reused)
	return nil
}
func (c *completionRecorder) NotifyItemCompleted(context.Context, string, string) error { return nil }
func (c *completionRecorder) NotifyItemFailed(context.Context, string, string) error    { return nil }
func (c *completionRecorder) NotifyQueueStarted(context.Context, int) error             { return nil }
func (c *completionRecorder) NotifyQueueCompleted(context.Context, int, int, time.Duration) error {
	return nil
}
func (c *completionRecorder) TestNotification(context.Context) error { return nil }

var _ notifications.Service = (*completionRecorder)(nil)

func TestExecuteNotifiesOnReusedTranscript(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	item := testsupport.NewFile(t, store, cfg, "talk.mp4")

	transcript := filepath.Join(cfg.Paths.OutputDir, "talk", "talk.srt")
	testsupport.WriteFile(t, transcript, 64)

	client := &fakeClient{}
	handler := transcribing.NewWithClient(cfg, store, logging.NewNop(), client)
	recorder := &completionRecorder{}
	handler.SetNotifier(recorder)

	if err := handler.Execute(context.Background(), item); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	if client.calls != 0 {
		t.Fatalf("expected no transcriber calls, got %d", client.calls)
	}
	if len(recorder.titles) != 1 || !recorder.reused[0] {
		t.Fatalf("expected one reused-transcript notification, got titles=%v reused=%v",
			recorder.titles, recorder.reused)
	}
}
