// Package transcribing is the workflow stage that produces transcript
// artifacts for a queued media file.
package transcribing

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"scribe/internal/config"
	"scribe/internal/ingest"
	"scribe/internal/logging"
	"scribe/internal/notifications"
	"scribe/internal/queue"
	"scribe/internal/services"
	"scribe/internal/stage"
	"scribe/internal/transcriber"
)

// Transcribing runs WhisperX for items that lack a transcript and records
// where the artifacts landed. Items whose transcript already exists skip the
// external call entirely.
type Transcribing struct {
	store    *queue.Store
	cfg      *config.Config
	logger   *slog.Logger
	client   transcriber.Client
	notifier notifications.Service
}

// New constructs the transcribing stage handler with the default client.
func New(cfg *config.Config, store *queue.Store, logger *slog.Logger) *Transcribing {
	return NewWithClient(cfg, store, logger, transcriber.NewCLI(cfg))
}

// NewWithClient allows injecting the transcriber client (used in tests).
func NewWithClient(cfg *config.Config, store *queue.Store, logger *slog.Logger, client transcriber.Client) *Transcribing {
	stageLogger := logger
	if stageLogger != nil {
		stageLogger = stageLogger.With(logging.String("component", "transcribing"))
	}
	return &Transcribing{
		store:    store,
		cfg:      cfg,
		logger:   stageLogger,
		client:   client,
		notifier: notifications.NewService(cfg),
	}
}

// SetNotifier swaps the notification service, mainly so the daemon can share
// one instance across stages.
func (t *Transcribing) SetNotifier(notifier notifications.Service) {
	if notifier != nil {
		t.notifier = notifier
	}
}

func (t *Transcribing) Prepare(ctx context.Context, item *queue.Item) error {
	logger := logging.WithContext(ctx, t.logger)
	item.ProgressStage = "Transcribing"
	item.ProgressMessage = "Preparing transcription"
	item.ProgressPercent = 0
	item.ErrorMessage = ""

	if _, err := os.Stat(item.SourcePath); err != nil {
		return services.Wrap(
			services.ErrValidation,
			"transcribing",
			"validate source",
			fmt.Sprintf("Source file missing at %s", item.SourcePath),
			err,
		)
	}
	logger.Info("starting transcription preparation", logging.String("source", item.SourcePath))
	return nil
}

func (t *Transcribing) Execute(ctx context.Context, item *queue.Item) error {
	logger := logging.WithContext(ctx, t.logger)
	media := ingest.NewMediaItem(item.SourcePath, t.cfg.Paths.OutputDir)

	if _, err := os.Stat(media.TranscriptPath); err == nil {
		logger.Info("transcript already present, reusing",
			logging.String("transcript", media.TranscriptPath))
		item.TranscriptPath = media.TranscriptPath
		item.TranscriptReused = true
		item.Status = queue.StatusTranscribed
		item.SetProgress("Transcribing", "Reused existing transcript", 100)
		t.notifyCompleted(ctx, logger, item)
		return nil
	}

	item.SetProgress("Transcribing", fmt.Sprintf("Transcribing %s", filepath.Base(item.SourcePath)), 10)
	if err := t.store.Update(ctx, item); err != nil {
		logger.Warn("failed to persist progress", logging.Error(err))
	}

	result, err := t.client.Transcribe(ctx, item.SourcePath, media.DestDir)
	if err != nil {
		marker := services.ErrExternalTool
		if ctx.Err() != nil {
			marker = services.ErrTimeout
		}
		return services.Wrap(
			marker,
			"transcribing",
			"run whisperx",
			"Transcription failed",
			err,
		)
	}

	item.TranscriptPath = result.SRTPath
	item.TranscriptReused = false
	item.Status = queue.StatusTranscribed
	item.SetProgress("Transcribing", "Transcription complete", 100)
	logger.Info("transcription complete", logging.String("transcript", result.SRTPath))
	t.notifyCompleted(ctx, logger, item)
	return nil
}

func (t *Transcribing) notifyCompleted(ctx context.Context, logger *slog.Logger, item *queue.Item) {
	if t.notifier == nil {
		return
	}
	if err := t.notifier.NotifyTranscriptionCompleted(ctx, item.Title, item.TranscriptReused); err != nil {
		logger.Warn("transcription notification failed", logging.Error(err))
	}
}

func (t *Transcribing) HealthCheck(ctx context.Context) stage.Health {
	type healthChecker interface {
		HealthCheck() error
	}
	if checker, ok := t.client.(healthChecker); ok {
		if err := checker.HealthCheck(); err != nil {
			return stage.Unhealthy("transcribing", err.Error())
		}
	}
	return stage.Healthy("transcribing")
}
