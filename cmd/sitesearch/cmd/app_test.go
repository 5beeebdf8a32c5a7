package cmd

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cableblog/sitesearch/internal/config"
)

func newTestApp(t *testing.T, cfg *config.Config) *app {
	t.Helper()
	a, err := newApp(context.Background(), cfg, true)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })
	return a
}

func TestLoadPosts_Builtin(t *testing.T) {
	cfg := config.NewConfig()

	list, source, err := loadPosts(cfg)

	require.NoError(t, err)
	assert.Equal(t, builtinSource, source)
	assert.Len(t, list, 16)
}

func TestApp_ReloadSwapsIndex(t *testing.T) {
	// Given: an app over a two-post file
	dir := isolate(t)
	cfg := config.NewConfig()
	cfg.Telemetry.Enabled = false
	cfg.Data.PostsFile = writePosts(t, dir, testPostsJSON)
	a := newTestApp(t, cfg)
	require.Equal(t, 2, a.handler.Current().Info().Posts)

	// When: the file shrinks to one post and is reloaded
	require.NoError(t, os.WriteFile(cfg.Data.PostsFile,
		[]byte(`[{"id": 5, "title": "B Trees", "excerpt": "Balanced trees.", "url": "/b-trees/"}]`), 0o644))
	require.NoError(t, a.reload(context.Background()))

	// Then: queries see the new posts
	results, err := a.handler.Query(context.Background(), "trees")
	require.NoError(t, err)
	require.Equal(t, 1, results.Count())
	assert.Equal(t, 5, results.Entries[0].Post.ID)
	assert.Equal(t, 1, a.handler.Current().Info().Posts)
}

func TestApp_FailedReloadKeepsIndex(t *testing.T) {
	// Given: an app over a two-post file
	dir := isolate(t)
	cfg := config.NewConfig()
	cfg.Telemetry.Enabled = false
	cfg.Data.PostsFile = writePosts(t, dir, testPostsJSON)
	a := newTestApp(t, cfg)

	// When: the file becomes malformed
	require.NoError(t, os.WriteFile(cfg.Data.PostsFile, []byte(`[{"id": 0}]`), 0o644))
	err := a.reload(context.Background())

	// Then: the reload fails and the old posts keep serving
	require.Error(t, err)
	results, err := a.handler.Query(context.Background(), "flask")
	require.NoError(t, err)
	assert.Equal(t, 1, results.Count())
}

func TestApp_Watching(t *testing.T) {
	cfg := config.NewConfig()
	a := &app{cfg: cfg}
	assert.False(t, a.watching(), "built-in posts are never watched")

	cfg.Data.PostsFile = "posts.json"
	assert.True(t, a.watching())

	cfg.Server.Watch = false
	assert.False(t, a.watching())
}

func TestApp_TelemetryRecordsQueries(t *testing.T) {
	// Given: telemetry enabled under a temp home
	isolate(t)
	cfg := config.NewConfig()
	a := newTestApp(t, cfg)
	require.NotNil(t, a.telemetry)

	// When: running a query
	_, err := a.handler.Query(context.Background(), "async")
	require.NoError(t, err)

	// Then: both observers saw it
	assert.Equal(t, int64(1), a.telemetry.Snapshot().TotalQueries)
	assert.NotNil(t, a.metrics)
}
