package watcher

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// FileWatcher follows a single file and emits debounced batches of events.
// It uses fsnotify on the parent directory and falls back to polling.
type FileWatcher struct {
	path      string
	opts      Options
	fsWatcher *fsnotify.Watcher
	poller    *PollingWatcher
	debouncer *Debouncer
	errors    chan error
	stopCh    chan struct{}
	mu        sync.Mutex
	stopped   bool
}

// NewFileWatcher creates a watcher for path.
func NewFileWatcher(path string, opts Options) (*FileWatcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve absolute path: %w", err)
	}
	opts = opts.WithDefaults()

	w := &FileWatcher{
		path:      filepath.Clean(abs),
		opts:      opts,
		debouncer: NewDebouncer(opts.DebounceWindow),
		errors:    make(chan error, 8),
		stopCh:    make(chan struct{}),
	}

	if !opts.ForcePolling {
		fsw, err := fsnotify.NewWatcher()
		if err == nil {
			err = fsw.Add(filepath.Dir(w.path))
			if err == nil {
				w.fsWatcher = fsw
				return w, nil
			}
			_ = fsw.Close()
		}
		slog.Warn("fsnotify_unavailable",
			slog.String("path", w.path),
			slog.String("error", err.Error()),
			slog.Duration("poll_interval", opts.PollInterval))
	}

	w.poller = NewPollingWatcher(w.path, opts.PollInterval)
	return w, nil
}

// Path returns the absolute path being watched.
func (w *FileWatcher) Path() string {
	return w.path
}

// Polling reports whether the watcher fell back to polling.
func (w *FileWatcher) Polling() bool {
	return w.poller != nil
}

// Start watches until ctx is cancelled or Stop is called.
func (w *FileWatcher) Start(ctx context.Context) error {
	if w.poller != nil {
		return w.startPolling(ctx)
	}

	for {
		select {
		case <-ctx.Done():
			_ = w.Stop()
			return ctx.Err()
		case <-w.stopCh:
			return nil
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return nil
			}
			w.handleFsnotifyEvent(event)
		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return nil
			}
			w.emitError(err)
		}
	}
}

func (w *FileWatcher) startPolling(ctx context.Context) error {
	go func() {
		for event := range w.poller.Events() {
			w.debouncer.Add(event)
		}
	}()

	err := w.poller.Start(ctx)
	if ctx.Err() != nil {
		_ = w.Stop()
	}
	return err
}

// handleFsnotifyEvent keeps events for the watched file only. A rename
// away is a delete; the replacement arriving is a create, which the
// debouncer folds into a modify.
func (w *FileWatcher) handleFsnotifyEvent(event fsnotify.Event) {
	if filepath.Clean(event.Name) != w.path {
		return
	}

	var op Operation
	switch {
	case event.Has(fsnotify.Create):
		op = OpCreate
	case event.Has(fsnotify.Write):
		op = OpModify
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		op = OpDelete
	default:
		return // chmod
	}

	w.debouncer.Add(FileEvent{Path: w.path, Operation: op, Timestamp: time.Now()})
}

func (w *FileWatcher) emitError(err error) {
	select {
	case w.errors <- err:
	default:
		slog.Warn("watcher_error_dropped", slog.String("error", err.Error()))
	}
}

// Events returns debounced batches. The channel is closed by Stop.
func (w *FileWatcher) Events() <-chan []FileEvent {
	return w.debouncer.Output()
}

// Errors returns non-fatal watcher errors.
func (w *FileWatcher) Errors() <-chan error {
	return w.errors
}

// Stop stops the watcher and releases resources.
// Safe to call multiple times.
func (w *FileWatcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.stopped {
		return nil
	}
	w.stopped = true
	close(w.stopCh)

	var err error
	if w.fsWatcher != nil {
		err = w.fsWatcher.Close()
	}
	if w.poller != nil {
		_ = w.poller.Stop()
	}
	w.debouncer.Stop()
	return err
}
