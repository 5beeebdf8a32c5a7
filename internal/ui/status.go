package ui

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"time"
)

// StatusInfo describes the loaded index and the query history.
type StatusInfo struct {
	Source        string    `json:"source"`
	Posts         int       `json:"posts"`
	BuiltAt       time.Time `json:"built_at"`
	TelemetryPath string    `json:"telemetry_path,omitempty"`
	WatcherStatus string    `json:"watcher_status,omitempty"` // "running", "polling", "stopped"

	Queries QueryStats `json:"queries"`
}

// QueryStats summarizes persisted query telemetry.
type QueryStats struct {
	Total               int64            `json:"total"`
	ZeroResultPct       float64          `json:"zero_result_pct"`
	TypeCounts          map[string]int64 `json:"type_counts"`
	TopTerms            []TermCount      `json:"top_terms"`
	ZeroResultQueries   []string         `json:"zero_result_queries"`
	LatencyDistribution map[string]int64 `json:"latency_distribution"`
}

// TermCount is a query term and how often it was searched.
type TermCount struct {
	Term  string `json:"term"`
	Count int64  `json:"count"`
}

// latency buckets in display order
var latencyLabels = []struct{ bucket, label string }{
	{"p1", "<1ms"},
	{"p5", "1-5ms"},
	{"p25", "5-25ms"},
	{"p100", "25-100ms"},
	{"slow", ">=100ms"},
}

// StatusRenderer displays index status.
type StatusRenderer struct {
	out    io.Writer
	styles Styles
	now    func() time.Time
}

// NewStatusRenderer creates a status renderer.
func NewStatusRenderer(out io.Writer, noColor bool) *StatusRenderer {
	return &StatusRenderer{
		out:    out,
		styles: GetStyles(noColor),
		now:    time.Now,
	}
}

// Render displays status info to terminal.
func (r *StatusRenderer) Render(info StatusInfo) error {
	w := &errWriter{w: r.out}

	w.printf("%s\n\n", r.styles.Header.Render("Index: "+info.Source))
	w.printf("  Posts:        %d\n", info.Posts)
	if !info.BuiltAt.IsZero() {
		w.printf("  Built:        %s\n", formatTime(info.BuiltAt, r.now()))
	}
	if info.WatcherStatus != "" {
		w.printf("  Watcher:      %s\n", r.renderStatus(info.WatcherStatus))
	}
	if info.TelemetryPath != "" {
		w.printf("  Telemetry:    %s\n", info.TelemetryPath)
	}
	w.printf("\n")

	q := info.Queries
	w.printf("%s\n\n", r.styles.Header.Render("Queries"))
	w.printf("  Total:        %d\n", q.Total)
	w.printf("  Zero results: %.1f%%\n\n", q.ZeroResultPct)

	if len(q.TypeCounts) > 0 {
		w.printf("  By type:\n")
		types := make([]string, 0, len(q.TypeCounts))
		for t := range q.TypeCounts {
			types = append(types, t)
		}
		sort.Strings(types)
		for _, t := range types {
			w.printf("    %-8s %d\n", t+":", q.TypeCounts[t])
		}
		w.printf("\n")
	}

	if len(q.TopTerms) > 0 {
		w.printf("  Top terms:\n")
		for i, tc := range q.TopTerms {
			w.printf("    %d. %s (%d)\n", i+1, tc.Term, tc.Count)
		}
	} else {
		w.printf("  Top terms: %s\n", r.styles.Dim.Render("(none recorded yet)"))
	}
	w.printf("\n")

	if len(q.ZeroResultQueries) > 0 {
		w.printf("  Recent zero-result queries:\n")
		for _, z := range q.ZeroResultQueries {
			w.printf("    - %q\n", z)
		}
	} else {
		w.printf("  Recent zero-result queries: %s\n", r.styles.Dim.Render("(none)"))
	}

	if len(q.LatencyDistribution) > 0 {
		w.printf("\n  Latency:\n")
		for _, l := range latencyLabels {
			if n, ok := q.LatencyDistribution[l.bucket]; ok {
				w.printf("    %-9s %d\n", l.label+":", n)
			}
		}
	}

	return w.err
}

// RenderJSON outputs status as JSON.
func (r *StatusRenderer) RenderJSON(info StatusInfo) error {
	encoder := json.NewEncoder(r.out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(info)
}

// renderStatus formats a status string with color.
func (r *StatusRenderer) renderStatus(status string) string {
	switch status {
	case "running":
		return r.styles.Success.Render(status)
	case "polling", "stopped":
		return r.styles.Warning.Render(status)
	case "error":
		return r.styles.Error.Render(status)
	default:
		return status
	}
}

// errWriter keeps the first write error.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) printf(format string, args ...any) {
	if e.err != nil {
		return
	}
	_, e.err = fmt.Fprintf(e.w, format, args...)
}

// formatTime formats t relative to now.
func formatTime(t, now time.Time) string {
	diff := now.Sub(t)

	switch {
	case diff < time.Minute:
		return "just now"
	case diff < time.Hour:
		mins := int(diff.Minutes())
		if mins == 1 {
			return "1 minute ago"
		}
		return fmt.Sprintf("%d minutes ago", mins)
	case diff < 24*time.Hour:
		hours := int(diff.Hours())
		if hours == 1 {
			return "1 hour ago"
		}
		return fmt.Sprintf("%d hours ago", hours)
	case diff < 7*24*time.Hour:
		days := int(diff.Hours() / 24)
		if days == 1 {
			return "1 day ago"
		}
		return fmt.Sprintf("%d days ago", days)
	default:
		return t.Format("2006-01-02 15:04")
	}
}
