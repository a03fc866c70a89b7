package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"scribe/internal/config"
	"scribe/internal/queue"
	"scribe/internal/transcriber"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show pipeline health and queue counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *queue.Store) error {
				out := cmd.OutOrStdout()
				colorize := shouldColorize(out)

				fmt.Fprintln(out, renderSectionHeader("Scribe Status", colorize))
				fmt.Fprintln(out, renderDirLine("Input dir", cfg.Paths.InputDir, colorize))
				fmt.Fprintln(out, renderDirLine("Output dir", cfg.Paths.OutputDir, colorize))
				fmt.Fprintln(out, renderStatusLine("Queue database", statusInfo, store.Path(), colorize))

				if err := transcriber.NewCLI(cfg).HealthCheck(); err != nil {
					fmt.Fprintln(out, renderStatusLine("Transcriber", statusWarn, err.Error(), colorize))
				} else {
					fmt.Fprintln(out, renderStatusLine("Transcriber", statusOK, "", colorize))
				}

				if daemonLockHeld(cfg) {
					fmt.Fprintln(out, renderStatusLine("Daemon", statusOK, "running", colorize))
				} else {
					fmt.Fprintln(out, renderStatusLine("Daemon", statusInfo, "not running", colorize))
				}

				health, err := store.Health(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintln(out, renderSectionHeader("Queue", colorize))
				fmt.Fprintln(out, renderStatusLine("Pending", statusInfo, fmt.Sprintf("%d", health.Pending), colorize))
				fmt.Fprintln(out, renderStatusLine("Processing", statusInfo, fmt.Sprintf("%d", health.Processing), colorize))
				failedKind := statusOK
				if health.Failed > 0 {
					failedKind = statusWarn
				}
				fmt.Fprintln(out, renderStatusLine("Failed", failedKind, fmt.Sprintf("%d", health.Failed), colorize))
				fmt.Fprintln(out, renderStatusLine("Completed", statusInfo, fmt.Sprintf("%d", health.Completed), colorize))
				return nil
			})
		},
	}
}

func renderDirLine(label, dir string, colorize bool) string {
	info, err := os.Stat(dir)
	switch {
	case err != nil:
		return renderStatusLine(label, statusError, dir+" (missing)", colorize)
	case !info.IsDir():
		return renderStatusLine(label, statusError, dir+" (not a directory)", colorize)
	default:
		return renderStatusLine(label, statusOK, dir, colorize)
	}
}

// daemonLockHeld reports whether a daemon currently holds the instance lock.
// Stat alone is not enough since the lock file persists after shutdown.
func daemonLockHeld(cfg *config.Config) bool {
	lockPath := filepath.Join(cfg.Paths.LogDir, "scribed.lock")
	if _, err := os.Stat(lockPath); err != nil {
		return false
	}
	return probeLock(lockPath)
}
