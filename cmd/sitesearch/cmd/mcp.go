package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/cableblog/sitesearch/internal/logging"
	mcpserver "github.com/cableblog/sitesearch/internal/mcp"
)

func newMCPCmd(root *rootOptions) *cobra.Command {
	var transport string

	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Run the MCP server on stdio",
		Long: `Run a Model Context Protocol server so AI clients can search the posts.

Tools:
  search_posts  ranked posts for a query {query, limit}
  index_status  document count, source and field boosts

stdout carries JSON-RPC only; logs go to ~/.sitesearch/logs/sitesearch.log
(or logging.file).`,
		Example: `  sitesearch mcp --posts _data/posts.json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := root.loadConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("transport") {
				cfg.MCP.Transport = transport
			}

			cleanup, err := logging.SetupMCPMode(cfg.Logging.Level, cfg.Logging.File)
			if err != nil {
				return fmt.Errorf("failed to setup logging: %w", err)
			}
			defer cleanup()

			a, err := newApp(cmd.Context(), cfg, false)
			if err != nil {
				return err
			}
			defer func() { _ = a.Close() }()

			srv, err := mcpserver.NewServer(a.handler, cfg.ToIndex())
			if err != nil {
				return err
			}
			if a.telemetry != nil {
				srv.SetMetrics(a.telemetry)
			}

			g, gctx := errgroup.WithContext(cmd.Context())
			ctx, cancel := context.WithCancel(gctx)
			defer cancel()

			if err := a.watch(ctx, g); err != nil {
				return err
			}
			g.Go(func() error {
				// the client closing stdin ends the session and the watcher
				defer cancel()
				return srv.Serve(ctx, cfg.MCP.Transport)
			})
			return g.Wait()
		},
	}

	cmd.Flags().StringVar(&transport, "transport", "stdio", "Transport: stdio")

	return cmd
}
