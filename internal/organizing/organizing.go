// Package organizing is the workflow stage that relocates a transcribed
// media file into its destination directory.
package organizing

import (
	"context"
	"errors"
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
)

// Organizing moves the source media next to its transcript artifacts using
// copy, verify, then delete. A relocation failure leaves the source in
// place so the item can retry without re-running transcription.
type Organizing struct {
	store    *queue.Store
	cfg      *config.Config
	logger   *slog.Logger
	notifier notifications.Service
}

// New constructs the organizing stage handler with default dependencies.
func New(cfg *config.Config, store *queue.Store, logger *slog.Logger) *Organizing {
	return NewWithNotifier(cfg, store, logger, notifications.NewService(cfg))
}

// NewWithNotifier allows injecting the notifier (used in tests).
func NewWithNotifier(cfg *config.Config, store *queue.Store, logger *slog.Logger, notifier notifications.Service) *Organizing {
	stageLogger := logger
	if stageLogger != nil {
		stageLogger = stageLogger.With(logging.String("component", "organizing"))
	}
	return &Organizing{store: store, cfg: cfg, logger: stageLogger, notifier: notifier}
}

func (o *Organizing) Prepare(ctx context.Context, item *queue.Item) error {
	logger := logging.WithContext(ctx, o.logger)
	item.ProgressStage = "Organizing"
	item.ProgressMessage = "Preparing relocation"
	item.ProgressPercent = 0
	item.ErrorMessage = ""

	if item.TranscriptPath == "" {
		return services.Wrap(
			services.ErrValidation,
			"organizing",
			"validate inputs",
			"No transcript recorded for item; transcription must complete before relocation",
			nil,
		)
	}
	if _, err := os.Stat(item.TranscriptPath); err != nil {
		return services.Wrap(
			services.ErrValidation,
			"organizing",
			"validate transcript",
			fmt.Sprintf("Transcript missing at %s", item.TranscriptPath),
			err,
		)
	}
	logger.Info("starting relocation preparation", logging.String("source", item.SourcePath))
	return nil
}

func (o *Organizing) Execute(ctx context.Context, item *queue.Item) error {
	logger := logging.WithContext(ctx, o.logger)
	media := ingest.NewMediaItem(item.SourcePath, o.cfg.Paths.OutputDir)

	item.SetProgress("Organizing", fmt.Sprintf("Relocating %s", filepath.Base(item.SourcePath)), 20)
	if err := o.store.Update(ctx, item); err != nil {
		logger.Warn("failed to persist progress", logging.Error(err))
	}

	destPath, err := ingest.Relocate(media, o.cfg.Ingest.MaxCollisionAttempts)
	if err != nil {
		if errors.Is(err, ingest.ErrCollisionExhausted) {
			return services.Wrap(
				services.ErrValidation,
				"organizing",
				"claim destination name",
				"Relocation failed",
				err,
			)
		}
		return services.Wrap(
			services.ErrTransient,
			"organizing",
			"relocate media",
			"Relocation failed",
			err,
		)
	}

	item.FinalFile = destPath
	item.Status = queue.StatusCompleted
	item.SetProgress("Completed", "Media relocated", 100)
	logger.Info("relocation complete", logging.String("final_file", destPath))

	if o.notifier != nil {
		if err := o.notifier.NotifyItemCompleted(ctx, item.Title, destPath); err != nil {
			logger.Warn("completion notification failed", logging.Error(err))
		}
	}
	return nil
}

func (o *Organizing) HealthCheck(ctx context.Context) stage.Health {
	root := o.cfg.Paths.OutputDir
	if err := os.MkdirAll(root, 0o755); err != nil {
		return stage.Unhealthy("organizing", fmt.Sprintf("output root not writable: %v", err))
	}
	return stage.Healthy("organizing")
}
