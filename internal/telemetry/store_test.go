package telemetry

import (
	"database/sql"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *SQLiteMetricsStore {
	t.Helper()

	store, err := OpenStore(filepath.Join(t.TempDir(), "telemetry", "telemetry.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestOpenStore_CreatesDirectoryAndSchema(t *testing.T) {
	store := openTestStore(t)

	var n int
	err := store.db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name LIKE 'query_%'`).Scan(&n)
	require.NoError(t, err)
	assert.Equal(t, 3, n) // query_type_stats, query_terms, query_latency_stats
}

func TestOpenStore_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "telemetry.db")

	store, err := OpenStore(path)
	require.NoError(t, err)
	require.NoError(t, store.UpsertTermCounts(map[string]int64{"async": 2}))
	require.NoError(t, store.Close())

	store, err = OpenStore(path)
	require.NoError(t, err)
	defer store.Close()

	terms, err := store.GetTopTerms(5)
	require.NoError(t, err)
	assert.Equal(t, []TermCount{{Term: "async", Count: 2}}, terms)
}

func TestSQLiteMetricsStore_SaveQueryTypeCounts_Incremental(t *testing.T) {
	store := openTestStore(t)

	require.NoError(t, store.SaveQueryTypeCounts("2026-01-06", map[QueryType]int64{
		QueryTypeTerm:   10,
		QueryTypePhrase: 5,
	}))
	require.NoError(t, store.SaveQueryTypeCounts("2026-01-06", map[QueryType]int64{
		QueryTypeTerm: 3,
	}))

	counts, err := store.GetQueryTypeCounts("2026-01-06", "2026-01-06")
	require.NoError(t, err)
	assert.Equal(t, int64(13), counts[QueryTypeTerm])
	assert.Equal(t, int64(5), counts[QueryTypePhrase])
}

func TestSQLiteMetricsStore_DateRange(t *testing.T) {
	store := openTestStore(t)

	require.NoError(t, store.SaveQueryTypeCounts("2026-01-01", map[QueryType]int64{QueryTypeTerm: 1}))
	require.NoError(t, store.SaveQueryTypeCounts("2026-01-05", map[QueryType]int64{QueryTypeTerm: 2}))
	require.NoError(t, store.SaveQueryTypeCounts("2026-02-01", map[QueryType]int64{QueryTypeTerm: 4}))

	counts, err := store.GetQueryTypeCounts("2026-01-01", "2026-01-31")
	require.NoError(t, err)
	assert.Equal(t, int64(3), counts[QueryTypeTerm])
}

func TestSQLiteMetricsStore_UpsertTermCounts(t *testing.T) {
	store := openTestStore(t)

	require.NoError(t, store.UpsertTermCounts(map[string]int64{"async": 3, "geometry": 1}))
	require.NoError(t, store.UpsertTermCounts(map[string]int64{"geometry": 4}))
	require.NoError(t, store.UpsertTermCounts(nil))

	terms, err := store.GetTopTerms(10)
	require.NoError(t, err)
	assert.Equal(t, []TermCount{
		{Term: "geometry", Count: 5},
		{Term: "async", Count: 3},
	}, terms)
}

func TestSQLiteMetricsStore_ZeroResultQueries_Bounded(t *testing.T) {
	store := openTestStore(t)

	now := time.Now()
	for i := 0; i < zeroResultLimit+5; i++ {
		require.NoError(t, store.AddZeroResultQuery(fmt.Sprintf("q%d", i), now))
	}

	queries, err := store.GetZeroResultQueries(1000)
	require.NoError(t, err)
	require.Len(t, queries, zeroResultLimit)
	assert.Equal(t, fmt.Sprintf("q%d", zeroResultLimit+4), queries[0])
}

func TestSQLiteMetricsStore_LatencyCounts(t *testing.T) {
	store := openTestStore(t)

	require.NoError(t, store.SaveLatencyCounts("2026-01-06", map[LatencyBucket]int64{
		BucketP1:   40,
		BucketSlow: 1,
	}))

	counts, err := store.GetLatencyCounts("2026-01-06", "2026-01-06")
	require.NoError(t, err)
	assert.Equal(t, int64(40), counts[BucketP1])
	assert.Equal(t, int64(1), counts[BucketSlow])
}

func TestSQLiteMetricsStore_ZeroResultCount(t *testing.T) {
	store := openTestStore(t)

	require.NoError(t, store.SaveZeroResultCount("2026-01-05", 2))
	require.NoError(t, store.SaveZeroResultCount("2026-01-05", 1))
	require.NoError(t, store.SaveZeroResultCount("2026-01-07", 4))
	require.NoError(t, store.SaveZeroResultCount("2026-01-08", 0))

	n, err := store.GetZeroResultCount("2026-01-05", "2026-01-06")
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	n, err = store.GetZeroResultCount("2026-02-01", "2026-02-28")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestNewSQLiteMetricsStore_SharedDB(t *testing.T) {
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "shared.db"))
	require.NoError(t, err)
	defer db.Close()
	require.NoError(t, InitTelemetrySchema(db))

	store, err := NewSQLiteMetricsStore(db)
	require.NoError(t, err)
	require.NoError(t, store.Close())

	// db still usable after the store is closed
	assert.NoError(t, db.Ping())
}

func TestNewSQLiteMetricsStore_NilDB(t *testing.T) {
	_, err := NewSQLiteMetricsStore(nil)
	assert.Error(t, err)
}
