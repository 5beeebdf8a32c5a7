package cmd

import (
	"github.com/spf13/cobra"

	"github.com/cableblog/sitesearch/internal/output"
	"github.com/cableblog/sitesearch/internal/search"
)

func newValidateCmd(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate [posts-file]",
		Short: "Check a post list and build its index",
		Long: `Load a post list, check every record, and build the index from it.

A record missing title, url or excerpt, or a repeated id, fails with the
position of the first bad record. Without an argument the configured post
list (or the built-in one) is checked.`,
		Example: `  sitesearch validate _data/posts.json`,
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := root.loadConfig()
			if err != nil {
				return err
			}
			if len(args) == 1 {
				cfg.Data.PostsFile = args[0]
			}
			cleanup, err := root.startLogging(cfg, false)
			if err != nil {
				return err
			}
			defer cleanup()

			out := output.New(cmd.OutOrStdout())

			list, source, err := loadPosts(cfg)
			if err != nil {
				out.Errorf("%s is invalid", source)
				return err
			}
			c, err := search.Build(cmd.Context(), list, cfg.ToIndex(), source)
			if err != nil {
				out.Errorf("%s could not be indexed", source)
				return err
			}
			defer func() { _ = c.Close() }()

			teasers := 0
			for _, p := range list {
				if p.HasTeaser() {
					teasers++
				}
			}

			out.Successf("%s: %d posts valid", source, len(list))
			out.KeyValue("Indexed", c.Index().DocCount(), 8)
			out.KeyValue("Teasers", teasers, 8)
			return nil
		},
	}

	return cmd
}
