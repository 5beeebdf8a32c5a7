package mcp

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cableblog/sitesearch/internal/index"
	"github.com/cableblog/sitesearch/internal/posts"
	"github.com/cableblog/sitesearch/internal/search"
	"github.com/cableblog/sitesearch/internal/telemetry"
)

func testPosts() []*posts.Post {
	return []*posts.Post{
		{
			ID:         0,
			Title:      "Currency Exchange and Negative Cycles",
			Excerpt:    "I really enjoy graph problems.",
			URL:        "/cableBlog/BellmanFord/",
			Categories: []string{"algorithms"},
			Tags:       []string{"graphs"},
		},
		{
			ID:         1,
			Title:      "Async Javascript",
			Excerpt:    "Computer programs are CPU bound or I/O bound.",
			URL:        "/cableBlog/Async-Javascript/",
			Teaser:     "/img/async.png",
			Categories: []string{"javascript"},
			Tags:       []string{"async"},
		},
		{
			ID:         2,
			Title:      "Asynchronous request batching and caching",
			Excerpt:    "Caching plays a critical role.",
			URL:        "/cableBlog/Asynchronous-request-batching-and-caching/",
			Categories: []string{"javascript"},
			Tags:       []string{"async", "caching"},
		},
	}
}

func newTestServer(t *testing.T, opts ...search.HandlerOption) (*Server, *search.Handler) {
	t.Helper()
	c, err := search.Build(context.Background(), testPosts(), index.DefaultConfig(), "posts.json")
	require.NoError(t, err)
	h, err := search.NewHandler(c, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = h.Close() })

	s, err := NewServer(h, index.DefaultConfig())
	require.NoError(t, err)
	return s, h
}

func newTestMetrics(t *testing.T) *telemetry.QueryMetrics {
	t.Helper()
	m := telemetry.NewQueryMetrics(nil)
	t.Cleanup(func() { _ = m.Close() })
	return m
}
