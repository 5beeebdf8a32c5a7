package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"golang.org/x/sync/errgroup"

	"github.com/cableblog/sitesearch/configs"
	"github.com/cableblog/sitesearch/internal/config"
	"github.com/cableblog/sitesearch/internal/logging"
	"github.com/cableblog/sitesearch/internal/metrics"
	"github.com/cableblog/sitesearch/internal/posts"
	"github.com/cableblog/sitesearch/internal/search"
	"github.com/cableblog/sitesearch/internal/telemetry"
	"github.com/cableblog/sitesearch/internal/watcher"
)

// builtinSource names the embedded post list in status output.
const builtinSource = "built-in"

// loadConfig loads the effective configuration and applies the persistent
// flags on top of it.
func (o *rootOptions) loadConfig() (*config.Config, error) {
	dir := o.configDir
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		dir = wd
	}

	cfg, err := config.Load(dir)
	if err != nil {
		return nil, err
	}

	if o.postsFile != "" {
		cfg.Data.PostsFile = o.postsFile
	}
	if o.logLevel != "" {
		cfg.Logging.Level = o.logLevel
	}
	if o.debug {
		cfg.Logging.Level = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// startLogging installs the default logger for a command. Quiet commands
// own the terminal (TUI, stdio MCP) and log to the file only.
func (o *rootOptions) startLogging(cfg *config.Config, quiet bool) (func(), error) {
	lc := logging.DefaultConfig()
	if o.debug {
		lc = logging.DebugConfig()
	}
	lc.Level = cfg.Logging.Level
	if cfg.Logging.File != "" {
		lc.FilePath = cfg.Logging.File
	}
	if quiet {
		lc.WriteToStderr = false
		if lc.FilePath == "" {
			lc.FilePath = logging.DefaultLogPath()
		}
	}

	cleanup, err := logging.SetupDefault(lc)
	if err != nil {
		return nil, fmt.Errorf("failed to setup logging: %w", err)
	}
	return cleanup, nil
}

// loadPosts reads the configured post file, or the built-in posts when no
// file is configured. It returns the posts and a source description.
func loadPosts(cfg *config.Config) ([]*posts.Post, string, error) {
	if path := cfg.Data.PostsFile; path != "" {
		list, err := posts.Load(path)
		if err != nil {
			return nil, path, err
		}
		return list, path, nil
	}

	list, err := configs.DefaultPosts()
	if err != nil {
		return nil, builtinSource, err
	}
	return list, builtinSource, nil
}

// app is a loaded search handler with its observers.
type app struct {
	cfg       *config.Config
	handler   *search.Handler
	telemetry *telemetry.QueryMetrics
	store     *telemetry.SQLiteMetricsStore
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

// newApp builds the search context for cfg. Prometheus collectors are
// created only when withMetrics is set.
func newApp(ctx context.Context, cfg *config.Config, withMetrics bool) (*app, error) {
	a := &app{cfg: cfg, logger: logging.Component("app")}

	list, source, err := loadPosts(cfg)
	if err != nil {
		return nil, err
	}
	c, err := search.Build(ctx, list, cfg.ToIndex(), source)
	if err != nil {
		return nil, err
	}

	opts := []search.HandlerOption{
		search.WithCache(cfg.Search.CacheSize),
		search.WithLogger(logging.Component("search")),
	}

	if cfg.Telemetry.Enabled {
		store, err := telemetry.OpenStore(cfg.TelemetryPath())
		if err != nil {
			// telemetry is best effort
			a.logger.Warn("telemetry_unavailable",
				slog.String("path", cfg.TelemetryPath()),
				slog.String("error", err.Error()))
		} else {
			a.store = store
			a.telemetry = telemetry.NewQueryMetrics(store)
			opts = append(opts, search.WithObserver(a.telemetry))
		}
	}

	if withMetrics {
		a.metrics = metrics.New(nil)
		a.metrics.SetDocuments(c.Index().DocCount())
		opts = append(opts, search.WithObserver(a.metrics))
	}

	h, err := search.NewHandler(c, opts...)
	if err != nil {
		_ = c.Close()
		a.closeTelemetry()
		return nil, err
	}
	a.handler = h

	a.logger.Info("posts_loaded",
		slog.String("source", source),
		slog.Int("posts", len(list)))
	return a, nil
}

// reload rebuilds the search context from the post file and swaps it in.
func (a *app) reload(ctx context.Context) error {
	list, source, err := loadPosts(a.cfg)
	if err != nil {
		return err
	}
	if err := a.handler.Rebuild(ctx, list, a.cfg.ToIndex(), source); err != nil {
		return err
	}
	a.logger.Info("index_rebuilt",
		slog.String("source", source),
		slog.Int("posts", len(list)))
	return nil
}

// watching reports whether the post file is hot reloaded.
func (a *app) watching() bool {
	return a.cfg.Server.Watch && a.cfg.Data.PostsFile != ""
}

// watch starts the post file watcher and its reloader on g. It does nothing
// when the built-in posts are served or watching is off.
func (a *app) watch(ctx context.Context, g *errgroup.Group) error {
	if !a.watching() {
		return nil
	}

	window, err := a.cfg.WatchDebounceDuration()
	if err != nil {
		return err
	}
	fw, err := watcher.NewFileWatcher(a.cfg.Data.PostsFile, watcher.Options{DebounceWindow: window})
	if err != nil {
		return fmt.Errorf("failed to watch %s: %w", a.cfg.Data.PostsFile, err)
	}

	reloader := watcher.NewReloader(fw, a.reload,
		watcher.WithReloadLogger(logging.Component("watcher")),
		watcher.OnReload(func(err error) {
			if a.metrics == nil {
				return
			}
			a.metrics.RecordReload(err)
			if err == nil {
				a.metrics.SetDocuments(a.handler.Current().Index().DocCount())
			}
		}),
	)

	g.Go(func() error {
		defer func() { _ = fw.Stop() }()
		if err := fw.Start(ctx); err != nil && ctx.Err() == nil {
			return fmt.Errorf("watch posts: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		return reloader.Run(ctx)
	})

	a.logger.Info("watcher_started",
		slog.String("path", fw.Path()),
		slog.Bool("polling", fw.Polling()))
	return nil
}

// Close flushes telemetry and releases the index.
func (a *app) Close() error {
	var errs []error
	if a.telemetry != nil {
		if err := a.telemetry.Close(); err != nil {
			errs = append(errs, fmt.Errorf("flush telemetry: %w", err))
		}
	}
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close telemetry store: %w", err))
		}
	}
	if a.handler != nil {
		if err := a.handler.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (a *app) closeTelemetry() {
	if a.telemetry != nil {
		_ = a.telemetry.Close()
	}
	if a.store != nil {
		_ = a.store.Close()
	}
}
