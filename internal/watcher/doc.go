// Package watcher reloads the post list when its file changes.
//
// A FileWatcher follows one file. It watches the parent directory with
// fsnotify so editors that save by writing a temp file and renaming it over
// the original are seen as a single modification, and falls back to polling
// where fsnotify is unavailable (network mounts, some container volumes).
// Events are debounced before a Reloader rebuilds the search context.
//
// Usage:
//
//	w, err := watcher.NewFileWatcher("posts.yaml", watcher.DefaultOptions())
//	if err != nil {
//	    return err
//	}
//	defer w.Stop()
//
//	go func() { _ = w.Start(ctx) }()
//	return watcher.NewReloader(w, rebuild).Run(ctx)
package watcher
