package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cableblog/sitesearch/internal/ui"
)

func newTUICmd(root *rootOptions) *cobra.Command {
	var (
		plain   bool
		noColor bool
	)

	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Interactive search box",
		Long: `Open an interactive search box. Results update on every keystroke.

When stdin or stdout is not a terminal (or CI is set), each input line is
answered as one query in text form instead.

Logs go to the log file only while the search box owns the terminal.`,
		Example: `  sitesearch tui
  echo "async" | sitesearch tui`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := root.loadConfig()
			if err != nil {
				return err
			}
			cleanup, err := root.startLogging(cfg, true)
			if err != nil {
				return err
			}
			defer cleanup()

			debounce, err := cfg.DebounceDuration()
			if err != nil {
				return err
			}

			a, err := newApp(cmd.Context(), cfg, false)
			if err != nil {
				return err
			}
			defer func() { _ = a.Close() }()

			opts := []ui.ConfigOption{
				ui.WithInput(cmd.InOrStdin()),
				ui.WithForcePlain(plain),
				ui.WithDebounce(debounce),
				ui.WithTitle(fmt.Sprintf("Search %d posts", a.handler.Current().Info().Posts)),
			}
			if noColor {
				opts = append(opts, ui.WithNoColor(true))
			}
			return ui.Run(cmd.Context(), a.handler, ui.NewConfig(cmd.OutOrStdout(), opts...))
		},
	}

	cmd.Flags().BoolVar(&plain, "plain", false, "Read one query per line instead of opening the search box")
	cmd.Flags().BoolVar(&noColor, "no-color", false, "Disable colored output")

	return cmd
}
