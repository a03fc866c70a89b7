package main

import (
	"context"
	"fmt"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"

	"github.com/spf13/cobra"

	"scribe/internal/config"
	"scribe/internal/ingest"
	"scribe/internal/logging"
	"scribe/internal/transcriber"
)

// cliTranscriber adapts the WhisperX client to the orchestrator interface,
// discarding the artifact paths the batch path does not track.
type cliTranscriber struct {
	client transcriber.Client
}

func (c cliTranscriber) Transcribe(ctx context.Context, mediaPath, outputDir string) error {
	_, err := c.client.Transcribe(ctx, mediaPath, outputDir)
	return err
}

func newProcessCommand(ctx *commandContext) *cobra.Command {
	var quiet bool

	cmd := &cobra.Command{
		Use:   "process [directory]",
		Short: "Transcribe and relocate every media file under a directory",
		Long: `Process scans a directory for media files and drives each one through the
pipeline: reuse an existing transcript or run WhisperX, then move the file
into its destination directory. One status line is printed per file.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			root := cfg.Paths.InputDir
			if len(args) == 1 {
				root, err = filepath.Abs(args[0])
				if err != nil {
					return fmt.Errorf("resolve directory: %w", err)
				}
			}

			signalCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			return runBatch(signalCtx, cmd, cfg, root, quiet)
		},
	}

	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Suppress per-file progress output")
	return cmd
}

func runBatch(ctx context.Context, cmd *cobra.Command, cfg *config.Config, root string, quiet bool) error {
	paths, err := ingest.DiscoverMedia(root, cfg.MediaExtensionSet())
	if err != nil {
		return fmt.Errorf("scan %s: %w", root, err)
	}
	out := cmd.OutOrStdout()
	if len(paths) == 0 {
		fmt.Fprintf(out, "No media files found in %s\n", root)
		return nil
	}

	// Logs go to the run log only; stdout stays reserved for the one status
	// line per file.
	logPath := filepath.Join(cfg.Paths.LogDir, "scribe.log")
	logger, err := logging.New(logging.Options{
		Level:            cfg.Logging.Level,
		Format:           cfg.Logging.Format,
		OutputPaths:      []string{logPath},
		ErrorOutputPaths: []string{logPath},
	})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	client := transcriber.NewCLI(cfg)
	orchestrator := ingest.NewOrchestrator(
		cliTranscriber{client: client},
		cfg.Ingest.MaxCollisionAttempts,
		logger,
	)

	workers := cfg.Ingest.MaxConcurrent
	if workers < 1 {
		workers = 1
	}

	items := make([]ingest.MediaItem, len(paths))
	results := make([]chan ingest.Outcome, len(paths))
	for i, path := range paths {
		items[i] = ingest.NewMediaItem(path, cfg.Paths.OutputDir)
		results[i] = make(chan ingest.Outcome, 1)
	}

	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup
	for i := range items {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			results[idx] <- orchestrator.Process(ctx, items[idx])
		}(i)
	}

	// Terminal lines come out in discovery order regardless of which worker
	// finishes first.
	reporter := ingest.NewReporter(out)
	var failed int
	for i, item := range items {
		if !quiet {
			fmt.Fprintf(cmd.ErrOrStderr(), "[%d/%d] %s\n", i+1, len(items), item.Basename)
		}
		outcome := <-results[i]
		reporter.Report(item, outcome)
		if outcome.Kind == ingest.OutcomeFailed {
			failed++
		}
	}
	wg.Wait()

	if failed > 0 {
		return fmt.Errorf("%d of %d files failed", failed, len(items))
	}
	return nil
}
