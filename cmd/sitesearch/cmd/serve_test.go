package cmd

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServeCmd_StopsOnCancel(t *testing.T) {
	// Given: a context that ends shortly after startup
	dir := isolate(t)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	// When: serving on an ephemeral port
	out, err := runCmd(t, ctx, dir, "", "serve", "--addr", "127.0.0.1:0")

	// Then: the server shuts down cleanly
	require.NoError(t, err)
	assert.Contains(t, out, "Serving 16 posts from built-in")
	assert.NotContains(t, out, "Watching")
}

func TestServeCmd_BadAddress(t *testing.T) {
	dir := isolate(t)

	_, err := runCmd(t, context.Background(), dir, "", "serve", "--addr", "256.0.0.1:bad")

	assert.Error(t, err)
}

func TestServeCmd_WatchesPostFile(t *testing.T) {
	// Given: posts from a file
	dir := isolate(t)
	posts := writePosts(t, dir, testPostsJSON)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	// When: serving
	out, err := runCmd(t, ctx, dir, "", "--posts", posts, "serve", "--addr", "127.0.0.1:0", "--metrics=false")

	// Then: the file is watched
	require.NoError(t, err)
	assert.Contains(t, out, "Serving 2 posts")
	assert.Contains(t, out, "Watching "+posts)
}
