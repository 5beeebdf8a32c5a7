package watcher

import (
	"context"
	"log/slog"
	"time"
)

// Source yields debounced event batches.
type Source interface {
	Events() <-chan []FileEvent
	Errors() <-chan error
}

// ReloadFunc rebuilds whatever depends on the watched file.
type ReloadFunc func(ctx context.Context) error

// Reloader runs a ReloadFunc for every batch of changes. A failed reload
// is logged and the previous state keeps serving.
type Reloader struct {
	source   Source
	reload   ReloadFunc
	logger   *slog.Logger
	onResult func(err error)
}

// ReloaderOption configures a Reloader.
type ReloaderOption func(*Reloader)

// WithReloadLogger sets the logger.
func WithReloadLogger(l *slog.Logger) ReloaderOption {
	return func(r *Reloader) {
		if l != nil {
			r.logger = l
		}
	}
}

// OnReload registers a hook called after every attempt with its outcome.
func OnReload(fn func(err error)) ReloaderOption {
	return func(r *Reloader) {
		r.onResult = fn
	}
}

// NewReloader creates a Reloader.
func NewReloader(source Source, reload ReloadFunc, opts ...ReloaderOption) *Reloader {
	r := &Reloader{
		source: source,
		reload: reload,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run handles batches until ctx is cancelled or the source closes.
func (r *Reloader) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case batch, ok := <-r.source.Events():
			if !ok {
				return nil
			}
			r.handle(ctx, batch)
		case err := <-r.source.Errors():
			r.logger.Warn("watcher_error", slog.String("error", err.Error()))
		}
	}
}

func (r *Reloader) handle(ctx context.Context, batch []FileEvent) {
	if len(batch) == 0 {
		return
	}
	if allDeleted(batch) {
		// nothing to load; keep serving what we have until it comes back
		r.logger.Warn("posts_file_missing", slog.String("path", batch[0].Path))
		return
	}

	start := time.Now()
	err := r.reload(ctx)
	if err != nil {
		r.logger.Error("posts_reload_failed",
			slog.String("path", batch[0].Path),
			slog.String("error", err.Error()))
	} else {
		r.logger.Info("posts_reloaded",
			slog.String("path", batch[0].Path),
			slog.Duration("duration", time.Since(start)))
	}
	if r.onResult != nil {
		r.onResult(err)
	}
}

func allDeleted(batch []FileEvent) bool {
	for _, e := range batch {
		if e.Operation != OpDelete {
			return false
		}
	}
	return true
}
