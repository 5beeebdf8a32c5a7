package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/cableblog/sitesearch/internal/logging"
	"github.com/cableblog/sitesearch/internal/output"
	"github.com/cableblog/sitesearch/internal/server"
)

type serveOptions struct {
	addr    string
	baseURL string
	watch   bool
	metrics bool
}

func newServeCmd(root *rootOptions) *cobra.Command {
	var opts serveOptions

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the search page over HTTP",
		Long: `Serve the search page and its endpoints until interrupted.

Routes:
  GET /             search page
  GET /search?q=    result fragment
  GET /api/search?q= results as JSON
  GET /healthz      liveness and document count
  GET /metrics      Prometheus metrics (unless disabled)

When posts come from a file, the file is watched and the index is rebuilt
on change; a failed rebuild keeps the previous index serving.`,
		Example: `  sitesearch serve --posts _data/posts.json
  sitesearch serve --addr :8080 --base-url https://example.github.io/cableBlog`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := root.loadConfig()
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			if flags.Changed("addr") {
				cfg.Server.Addr = opts.addr
			}
			if flags.Changed("base-url") {
				cfg.Server.BaseURL = opts.baseURL
			}
			if flags.Changed("watch") {
				cfg.Server.Watch = opts.watch
			}
			if flags.Changed("metrics") {
				cfg.Server.Metrics = opts.metrics
			}

			cleanup, err := root.startLogging(cfg, false)
			if err != nil {
				return err
			}
			defer cleanup()

			a, err := newApp(cmd.Context(), cfg, cfg.Server.Metrics)
			if err != nil {
				return err
			}
			defer func() { _ = a.Close() }()

			srv := server.New(a.handler, server.Config{
				Addr:    cfg.Server.Addr,
				BaseURL: cfg.Server.BaseURL,
				Metrics: a.metrics,
				Logger:  logging.Component("server"),
			})

			g, ctx := errgroup.WithContext(cmd.Context())
			if err := a.watch(ctx, g); err != nil {
				return err
			}
			g.Go(func() error {
				return srv.ListenAndServe(ctx)
			})

			out := output.New(cmd.OutOrStdout())
			info := a.handler.Current().Info()
			out.Successf("Serving %d posts from %s", info.Posts, info.Source)
			out.Statusf("🔎", "http://%s/", cfg.Server.Addr)
			if a.watching() {
				out.Statusf("👀", "Watching %s", cfg.Data.PostsFile)
			}

			if err := g.Wait(); err != nil {
				slog.Error("serve_failed", slog.String("error", err.Error()))
				return fmt.Errorf("serve: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", "", "Listen address (default from server.addr)")
	cmd.Flags().StringVar(&opts.baseURL, "base-url", "", "Site base URL prefixed to relative teaser paths")
	cmd.Flags().BoolVar(&opts.watch, "watch", true, "Rebuild the index when the post file changes")
	cmd.Flags().BoolVar(&opts.metrics, "metrics", true, "Expose Prometheus metrics on /metrics")

	return cmd
}
