// Package watcher monitors the input directory and enqueues new media files.
//
// Events are debounced with a settle delay so partially written files are not
// picked up mid-copy, and items already present in the queue are not enqueued
// twice.
package watcher

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"scribe/internal/config"
	"scribe/internal/ingest"
	"scribe/internal/logging"
	"scribe/internal/notifications"
	"scribe/internal/queue"
)

// Watcher watches the configured input directory for new media files.
type Watcher struct {
	cfg         *config.Config
	store       *queue.Store
	logger      *slog.Logger
	notifier    notifications.Service
	extensions  map[string]struct{}
	settleDelay time.Duration

	fsw *fsnotify.Watcher

	mu      sync.Mutex
	timers  map[string]*time.Timer
	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// New constructs a watcher for the configured input directory.
func New(cfg *config.Config, store *queue.Store, logger *slog.Logger) (*Watcher, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	settle := time.Duration(cfg.Watcher.SettleDelayMS) * time.Millisecond
	if settle <= 0 {
		settle = 500 * time.Millisecond
	}
	return &Watcher{
		cfg:         cfg,
		store:       store,
		logger:      logger.With(logging.String("component", "watcher")),
		extensions:  cfg.MediaExtensionSet(),
		settleDelay: settle,
		timers:      make(map[string]*time.Timer),
	}, nil
}

// SetNotifier wires a notification service for file-detected events. A nil
// notifier disables them.
func (w *Watcher) SetNotifier(notifier notifications.Service) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.notifier = notifier
}

func (w *Watcher) notifierValue() notifications.Service {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.notifier
}

// Start begins monitoring. It also enqueues media already present in the
// input directory so files dropped while the daemon was down are not missed.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return errors.New("watcher already running")
	}

	inputDir := w.cfg.Paths.InputDir
	if err := os.MkdirAll(inputDir, 0o755); err != nil {
		w.mu.Unlock()
		return err
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		w.mu.Unlock()
		return err
	}
	if err := fsw.Add(inputDir); err != nil {
		fsw.Close()
		w.mu.Unlock()
		return err
	}

	runCtx, cancel := context.WithCancel(ctx)
	w.fsw = fsw
	w.cancel = cancel
	w.running = true
	w.wg.Add(1)
	w.mu.Unlock()

	if err := w.enqueueExisting(runCtx); err != nil {
		w.logger.Warn("initial input scan failed", logging.Error(err))
	}

	go w.loop(runCtx)
	w.logger.Info("watcher started", logging.String("input_dir", inputDir))
	return nil
}

// Stop terminates monitoring and waits for in-flight handlers.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	cancel := w.cancel
	fsw := w.fsw
	w.running = false
	w.cancel = nil
	w.fsw = nil
	for path, timer := range w.timers {
		timer.Stop()
		delete(w.timers, path)
	}
	w.mu.Unlock()

	cancel()
	fsw.Close()
	w.wg.Wait()
	w.logger.Info("watcher stopped")
}

func (w *Watcher) loop(ctx context.Context) {
	defer w.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.eventChannel():
			if !ok {
				return
			}
			if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			if !ingest.IsMediaFile(event.Name, w.extensions) {
				continue
			}
			w.scheduleEnqueue(ctx, event.Name)
		case err, ok := <-w.errorChannel():
			if !ok {
				return
			}
			w.logger.Warn("watch error", logging.Error(err))
		}
	}
}

func (w *Watcher) eventChannel() chan fsnotify.Event {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.fsw == nil {
		return nil
	}
	return w.fsw.Events
}

func (w *Watcher) errorChannel() chan error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.fsw == nil {
		return nil
	}
	return w.fsw.Errors
}

// scheduleEnqueue debounces rapid write events for the same path. The timer
// resets on every event so the file is enqueued once writes have settled.
func (w *Watcher) scheduleEnqueue(ctx context.Context, path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.running {
		return
	}
	if timer, ok := w.timers[path]; ok {
		timer.Reset(w.settleDelay)
		return
	}
	w.timers[path] = time.AfterFunc(w.settleDelay, func() {
		w.mu.Lock()
		delete(w.timers, path)
		w.mu.Unlock()
		w.enqueue(ctx, path)
	})
}

func (w *Watcher) enqueue(ctx context.Context, path string) {
	if ctx.Err() != nil {
		return
	}
	if info, err := os.Stat(path); err != nil || info.IsDir() {
		return
	}

	existing, err := w.store.FindBySourcePath(ctx, path)
	if err != nil {
		w.logger.Warn("queue lookup failed", logging.Error(err), logging.String("source", path))
		return
	}
	if existing != nil {
		return
	}

	item, err := w.store.NewFile(ctx, path)
	if err != nil {
		w.logger.Warn("enqueue failed", logging.Error(err), logging.String("source", path))
		return
	}
	w.logger.Info("media file queued",
		logging.Int64(logging.FieldItemID, item.ID),
		logging.String("source", path),
	)
	if notifier := w.notifierValue(); notifier != nil {
		if err := notifier.NotifyFileDetected(ctx, item.Basename); err != nil {
			w.logger.Warn("file detected notification failed", logging.Error(err))
		}
	}
}

func (w *Watcher) enqueueExisting(ctx context.Context) error {
	paths, err := ingest.DiscoverMedia(w.cfg.Paths.InputDir, w.extensions)
	if err != nil {
		return err
	}
	for _, path := range paths {
		w.enqueue(ctx, path)
	}
	return nil
}
