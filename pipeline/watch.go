package pipeline

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/robinmordasiewicz/f5xc-api-enriched-sub001/config"
)

// WatcherConfig configures the corpus watcher.
type WatcherConfig struct {
	// DebounceDelay is how long to wait for more changes before
	// re-enriching.
	DebounceDelay time.Duration

	// Logger for watch events.
	Logger *slog.Logger
}

// Watcher re-enriches corpus files as they change on disk. Editors write
// in bursts, so changes are debounced before processing.
type Watcher struct {
	runner  *Runner
	cfg     *config.Config
	watcher *fsnotify.Watcher
	logger  *slog.Logger

	debounce time.Duration

	pendingMu sync.Mutex
	pending   map[string]struct{}
}

// NewWatcher creates a watcher over the configured original corpus
// directory.
func NewWatcher(cfg *config.Config, runner *Runner, wc WatcherConfig) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	logger := wc.Logger
	if logger == nil {
		logger = slog.Default()
	}
	debounce := wc.DebounceDelay
	if debounce == 0 {
		debounce = 250 * time.Millisecond
	}

	return &Watcher{
		runner:   runner,
		cfg:      cfg,
		watcher:  fsw,
		logger:   logger,
		debounce: debounce,
		pending:  make(map[string]struct{}),
	}, nil
}

// Start watches the corpus directory until the context is cancelled.
func (w *Watcher) Start(ctx context.Context) error {
	if err := w.watcher.Add(w.cfg.Paths.Original); err != nil {
		return err
	}

	w.logger.Info("Corpus watcher started",
		"dir", w.cfg.Paths.Original,
		"debounce", w.debounce)

	ticker := time.NewTicker(w.debounce)
	defer ticker.Stop()
	defer w.watcher.Close()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			w.handleEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("Watcher error", "error", err)

		case <-ticker.C:
			w.flushPending(ctx)
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return
	}
	if !w.matches(filepath.Base(event.Name)) {
		return
	}

	w.pendingMu.Lock()
	w.pending[event.Name] = struct{}{}
	w.pendingMu.Unlock()

	w.logger.Debug("File change detected",
		"file", filepath.Base(event.Name),
		"op", event.Op.String())
}

// matches reports whether a filename matches any include pattern.
func (w *Watcher) matches(name string) bool {
	patterns := w.cfg.Processing.Include
	if len(patterns) == 0 {
		patterns = []string{"*.json"}
	}
	for _, pattern := range patterns {
		if ok, err := filepath.Match(pattern, name); err == nil && ok {
			return true
		}
	}
	return false
}

func (w *Watcher) flushPending(ctx context.Context) {
	w.pendingMu.Lock()
	if len(w.pending) == 0 {
		w.pendingMu.Unlock()
		return
	}
	toProcess := make([]string, 0, len(w.pending))
	for path := range w.pending {
		toProcess = append(toProcess, path)
	}
	w.pending = make(map[string]struct{})
	w.pendingMu.Unlock()

	for _, path := range toProcess {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue
		}

		result := w.runner.processFile(path)
		if result.Error != "" {
			w.logger.Warn("Re-enrichment failed",
				"file", result.File,
				"error", result.Error)
			continue
		}
		w.logger.Info("Re-enriched file",
			"file", result.File,
			"domain", result.Domain,
			"duration", result.Duration)
	}
}
