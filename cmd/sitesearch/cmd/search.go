package cmd

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/cableblog/sitesearch/internal/render"
)

func newSearchCmd(root *rootOptions) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Run one query and print the results",
		Long: `Run one query cycle and print the rendered results.

All words must match; every word also matches as a prefix, so partial
input works the way it does in the search box. An empty query prints
"0 Result(s) found".

Formats:
  html  the theme's result fragment (default)
  text  a plain listing
  json  the entries as a JSON document`,
		Example: `  sitesearch search "async node"
  sitesearch search cach --format text
  sitesearch search geometry --format json --posts _data/posts.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := root.loadConfig()
			if err != nil {
				return err
			}
			cleanup, err := root.startLogging(cfg, false)
			if err != nil {
				return err
			}
			defer cleanup()

			r, err := render.ForFormat(format, cfg.Server.BaseURL)
			if err != nil {
				return err
			}

			a, err := newApp(cmd.Context(), cfg, false)
			if err != nil {
				return err
			}
			defer func() { _ = a.Close() }()

			return a.handler.Keystroke(cmd.Context(), strings.Join(args, " "), r, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "html", "Output format: html, text, json")

	return cmd
}
