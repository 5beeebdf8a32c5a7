package ui

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cableblog/sitesearch/internal/index"
	"github.com/cableblog/sitesearch/internal/posts"
	"github.com/cableblog/sitesearch/internal/search"
)

func testPosts() []*posts.Post {
	return []*posts.Post{
		{
			ID:         0,
			Title:      "Welcome to Jekyll!",
			Excerpt:    "You'll find this post in your _posts directory.",
			URL:        "/jekyll/update/2016/05/10/welcome-to-jekyll.html",
			Categories: []string{"jekyll", "update"},
			Tags:       []string{},
		},
		{
			ID:         1,
			Title:      "Layout: Header Image",
			Excerpt:    "This post should display a header image.",
			URL:        "/layout/header-image/",
			Teaser:     "/assets/images/teaser.jpg",
			Categories: []string{"layout"},
			Tags:       []string{"image", "layout"},
		},
	}
}

func newTestHandler(t *testing.T) *search.Handler {
	t.Helper()
	c, err := search.Build(context.Background(), testPosts(), index.DefaultConfig(), "test")
	require.NoError(t, err)
	h, err := search.NewHandler(c)
	require.NoError(t, err)
	t.Cleanup(func() { _ = h.Close() })
	return h
}

func TestIsTTY_WithBuffer_ReturnsFalse(t *testing.T) {
	assert.False(t, IsTTY(&bytes.Buffer{}))
	assert.False(t, IsTTYReader(strings.NewReader("")))
}

func TestIsTTY_WithNil_ReturnsFalse(t *testing.T) {
	assert.False(t, IsTTY(nil))
	assert.False(t, IsTTYReader(nil))
}

func TestNewConfig_Options(t *testing.T) {
	// Given: options for every field
	in := strings.NewReader("")
	cfg := NewConfig(io.Discard,
		WithInput(in),
		WithForcePlain(true),
		WithNoColor(true),
		WithDebounce(150*time.Millisecond),
		WithTitle("Blog"),
	)

	// Then: all of them are applied
	assert.Equal(t, in, cfg.Input)
	assert.True(t, cfg.ForcePlain)
	assert.True(t, cfg.NoColor)
	assert.Equal(t, 150*time.Millisecond, cfg.Debounce)
	assert.Equal(t, "Blog", cfg.Title)
}

func TestWithDebounce_IgnoresNonPositive(t *testing.T) {
	cfg := NewConfig(io.Discard, WithDebounce(-time.Second))
	assert.Zero(t, cfg.Debounce)
}

func TestConfig_Interactive_FalseForBuffers(t *testing.T) {
	cfg := NewConfig(&bytes.Buffer{}, WithInput(strings.NewReader("")))
	assert.False(t, cfg.Interactive())
}

func TestDetectNoColor(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	assert.True(t, DetectNoColor())
}

func TestDetectCI(t *testing.T) {
	t.Setenv("CI", "true")
	assert.True(t, DetectCI())
}

func TestRun_FallsBackToLineMode(t *testing.T) {
	// Given: queries piped in and a buffer as output
	h := newTestHandler(t)
	var out bytes.Buffer
	cfg := NewConfig(&out, WithInput(strings.NewReader("jekyll\n")))

	// When: running the search box
	err := Run(context.Background(), h, cfg)

	// Then: the query is answered in text form
	require.NoError(t, err)
	assert.Contains(t, out.String(), "1 Result(s) found")
	assert.Contains(t, out.String(), "Welcome to Jekyll!")
}
