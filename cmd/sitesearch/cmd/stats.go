package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/cableblog/sitesearch/internal/config"
	"github.com/cableblog/sitesearch/internal/output"
	"github.com/cableblog/sitesearch/internal/telemetry"
	"github.com/cableblog/sitesearch/internal/ui"
)

type statsOptions struct {
	jsonOutput bool
	days       int
	top        int
	noColor    bool
}

func newStatsCmd(root *rootOptions) *cobra.Command {
	var opts statsOptions

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show query telemetry",
		Long: `Show what readers searched for: query counts by type, the most
searched terms, recent queries that found nothing, and latency.

Telemetry is recorded locally in ~/.sitesearch/telemetry.db (or
telemetry.path) by every command that answers queries.`,
		Example: `  sitesearch stats
  sitesearch stats --days 30 --top 20
  sitesearch stats --json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := root.loadConfig()
			if err != nil {
				return err
			}
			return runStats(cmd, cfg, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.jsonOutput, "json", false, "Output as JSON")
	cmd.Flags().IntVar(&opts.days, "days", 7, "Days of history to summarize")
	cmd.Flags().IntVar(&opts.top, "top", 10, "Number of top terms to show")
	cmd.Flags().BoolVar(&opts.noColor, "no-color", false, "Disable colored output")

	return cmd
}

func runStats(cmd *cobra.Command, cfg *config.Config, opts statsOptions) error {
	if opts.days <= 0 {
		return fmt.Errorf("--days must be positive, got %d", opts.days)
	}

	info := ui.StatusInfo{TelemetryPath: cfg.TelemetryPath()}

	list, source, err := loadPosts(cfg)
	if err != nil {
		return err
	}
	info.Source = source
	info.Posts = len(list)

	if !cfg.Telemetry.Enabled {
		output.New(cmd.ErrOrStderr()).Warning("Telemetry is disabled (telemetry.enabled: false)")
	}

	if _, err := os.Stat(info.TelemetryPath); err == nil {
		store, err := telemetry.OpenStore(info.TelemetryPath)
		if err != nil {
			return fmt.Errorf("failed to open telemetry: %w", err)
		}
		defer func() { _ = store.Close() }()

		info.Queries, err = queryStats(store, time.Now(), opts.days, opts.top)
		if err != nil {
			return err
		}
	}

	renderer := ui.NewStatusRenderer(cmd.OutOrStdout(), opts.noColor || ui.DetectNoColor())
	if opts.jsonOutput {
		return renderer.RenderJSON(info)
	}
	return renderer.Render(info)
}

// queryStats summarizes the last days of persisted telemetry ending at now.
func queryStats(store *telemetry.SQLiteMetricsStore, now time.Time, days, top int) (ui.QueryStats, error) {
	to := now.Format("2006-01-02")
	from := now.AddDate(0, 0, -(days - 1)).Format("2006-01-02")

	var stats ui.QueryStats

	types, err := store.GetQueryTypeCounts(from, to)
	if err != nil {
		return stats, err
	}
	stats.TypeCounts = make(map[string]int64, len(types))
	var searched int64
	for qt, n := range types {
		stats.TypeCounts[string(qt)] = n
		stats.Total += n
		if qt != telemetry.QueryTypeEmpty {
			searched += n
		}
	}

	zero, err := store.GetZeroResultCount(from, to)
	if err != nil {
		return stats, err
	}
	if searched > 0 {
		stats.ZeroResultPct = float64(zero) / float64(searched) * 100
	}

	terms, err := store.GetTopTerms(top)
	if err != nil {
		return stats, err
	}
	for _, tc := range terms {
		stats.TopTerms = append(stats.TopTerms, ui.TermCount{Term: tc.Term, Count: tc.Count})
	}

	stats.ZeroResultQueries, err = store.GetZeroResultQueries(10)
	if err != nil {
		return stats, err
	}

	latencies, err := store.GetLatencyCounts(from, to)
	if err != nil {
		return stats, err
	}
	stats.LatencyDistribution = make(map[string]int64, len(latencies))
	for b, n := range latencies {
		stats.LatencyDistribution[string(b)] = n
	}
	return stats, nil
}
