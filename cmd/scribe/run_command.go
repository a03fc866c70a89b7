package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"scribe/internal/daemon"
	"scribe/internal/logging"
	"scribe/internal/notifications"
	"scribe/internal/organizing"
	"scribe/internal/queue"
	"scribe/internal/transcribing"
	"scribe/internal/watcher"
	"scribe/internal/workflow"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the scribe daemon in the foreground",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			signalCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			logger, err := logging.NewFromConfig(cfg)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}

			store, err := queue.Open(cfg)
			if err != nil {
				logger.Error("open queue store", logging.Error(err))
				return err
			}
			defer store.Close()

			notifier := notifications.NewService(cfg)
			transcribeStage := transcribing.New(cfg, store, logger)
			transcribeStage.SetNotifier(notifier)
			manager := workflow.NewManagerWithNotifier(cfg, store, logger, notifier)
			manager.ConfigureStages(workflow.StageSet{
				Transcriber: transcribeStage,
				Organizer:   organizing.NewWithNotifier(cfg, store, logger, notifier),
			})

			var w *watcher.Watcher
			if cfg.Watcher.Enabled {
				w, err = watcher.New(cfg, store, logger)
				if err != nil {
					return fmt.Errorf("create watcher: %w", err)
				}
				w.SetNotifier(notifier)
			}

			d, err := daemon.New(cfg, store, logger, manager, w)
			if err != nil {
				return fmt.Errorf("create daemon: %w", err)
			}
			defer d.Close()

			if err := d.Start(signalCtx); err != nil {
				return err
			}

			logger.Info("scribe daemon started",
				logging.String("input_dir", cfg.Paths.InputDir),
				logging.String("output_dir", cfg.Paths.OutputDir),
				logging.String("log_path", d.LogPath()))

			<-signalCtx.Done()
			logger.Info("scribe daemon shutting down")
			d.Stop()
			return nil
		},
	}
}
