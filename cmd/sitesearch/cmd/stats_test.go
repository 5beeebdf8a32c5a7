package cmd

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cableblog/sitesearch/internal/telemetry"
	"github.com/cableblog/sitesearch/internal/ui"
)

func TestStatsCmd_SummarizesRecordedQueries(t *testing.T) {
	// Given: two searches recorded by the search command
	dir := isolate(t)
	_, err := runCmd(t, context.Background(), dir, "", "search", "quake", "--format", "text")
	require.NoError(t, err)
	_, err = runCmd(t, context.Background(), dir, "", "search", "kubernetes", "--format", "text")
	require.NoError(t, err)

	// When: showing stats as JSON
	out, err := runCmd(t, context.Background(), dir, "", "stats", "--json")

	// Then: both queries are counted and the miss is listed
	require.NoError(t, err)
	var info ui.StatusInfo
	require.NoError(t, json.Unmarshal([]byte(out), &info))
	assert.Equal(t, "built-in", info.Source)
	assert.Equal(t, 16, info.Posts)
	assert.Equal(t, int64(2), info.Queries.Total)
	assert.InDelta(t, 50.0, info.Queries.ZeroResultPct, 0.001)
	assert.Equal(t, []string{"kubernetes"}, info.Queries.ZeroResultQueries)
}

func TestStatsCmd_NoTelemetryYet(t *testing.T) {
	dir := isolate(t)

	out, err := runCmd(t, context.Background(), dir, "", "stats")

	require.NoError(t, err)
	assert.Contains(t, out, "Index: built-in")
	assert.Contains(t, out, "Total:        0")
}

func TestStatsCmd_RejectsBadDays(t *testing.T) {
	dir := isolate(t)

	_, err := runCmd(t, context.Background(), dir, "", "stats", "--days", "0")

	assert.Error(t, err)
}

func TestQueryStats_WindowAndEmptyQueries(t *testing.T) {
	// Given: counts on two days, one outside the window
	store, err := telemetry.OpenStore(filepath.Join(t.TempDir(), "telemetry.db"))
	require.NoError(t, err)
	defer store.Close()

	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	require.NoError(t, store.SaveQueryTypeCounts("2026-03-10", map[telemetry.QueryType]int64{
		telemetry.QueryTypeTerm:  6,
		telemetry.QueryTypeEmpty: 4,
	}))
	require.NoError(t, store.SaveQueryTypeCounts("2026-02-01", map[telemetry.QueryType]int64{
		telemetry.QueryTypeTerm: 100,
	}))
	require.NoError(t, store.SaveZeroResultCount("2026-03-09", 3))
	require.NoError(t, store.UpsertTermCounts(map[string]int64{"async": 5, "node": 2}))

	// When: summarizing the last 7 days
	stats, err := queryStats(store, now, 7, 1)

	// Then: only the window counts; empty queries never count as misses
	require.NoError(t, err)
	assert.Equal(t, int64(10), stats.Total)
	assert.InDelta(t, 50.0, stats.ZeroResultPct, 0.001)
	assert.Equal(t, []ui.TermCount{{Term: "async", Count: 5}}, stats.TopTerms)
}
