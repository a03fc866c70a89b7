package ingest

import (
	"context"
	"errors"
	"log/slog"
	"os"

	"scribe/internal/logging"
)

// Transcriber produces transcript artifacts for a media file into outputDir.
// Implementations block until the work completes or ctx is done.
type Transcriber interface {
	Transcribe(ctx context.Context, mediaPath, outputDir string) error
}

// Orchestrator runs the per-item pipeline: check for an existing transcript,
// transcribe when absent, then relocate the source into its destination.
type Orchestrator struct {
	transcriber          Transcriber
	maxCollisionAttempts int
	logger               *slog.Logger
}

// NewOrchestrator wires an orchestrator. A zero maxCollisionAttempts selects
// the default cap.
func NewOrchestrator(transcriber Transcriber, maxCollisionAttempts int, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Orchestrator{
		transcriber:          transcriber,
		maxCollisionAttempts: maxCollisionAttempts,
		logger:               logger,
	}
}

// Process drives one item to a terminal outcome. Steps run strictly in
// order: transcript existence check, conditional transcription, then
// relocation. Relocation never runs after a transcription failure, and a
// relocation failure never re-enters transcription.
func (o *Orchestrator) Process(ctx context.Context, item MediaItem) Outcome {
	log := o.logger.With(logging.String("basename", item.Basename))

	transcriptExists, err := pathExists(item.TranscriptPath)
	if err != nil {
		log.Warn("transcript check failed", logging.Error(err))
		return Failed(FailureFilesystem, err.Error())
	}

	if transcriptExists {
		log.Info("transcript already present, skipping transcription",
			logging.String("transcript", item.TranscriptPath))
	} else {
		if err := ctx.Err(); err != nil {
			return Failed(FailureTranscription, err.Error())
		}
		log.Info("transcribing", logging.String("source", item.SourcePath))
		if err := o.transcriber.Transcribe(ctx, item.SourcePath, item.DestDir); err != nil {
			log.Warn("transcription failed", logging.Error(err))
			return Failed(FailureTranscription, err.Error())
		}
	}

	destPath, err := Relocate(item, o.maxCollisionAttempts)
	if err != nil {
		log.Warn("relocation failed", logging.Error(err))
		if errors.Is(err, ErrCollisionExhausted) {
			return Failed(FailureCollision, err.Error())
		}
		return Failed(FailureFilesystem, err.Error())
	}

	if transcriptExists {
		log.Info("media relocated", logging.String("dest", destPath))
		return Skipped(destPath)
	}
	log.Info("media transcribed and relocated", logging.String("dest", destPath))
	return Done(destPath)
}

func pathExists(path string) (bool, error) {
	if path == "" {
		return false, nil
	}
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}
