package search

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cableblog/sitesearch/internal/index"
	"github.com/cableblog/sitesearch/internal/posts"
	"github.com/cableblog/sitesearch/internal/telemetry"
)

func testPosts() []*posts.Post {
	return []*posts.Post{
		{ID: 0, Title: "Currency Exchange and Negative Cycles", URL: "/cableBlog/BellmanFord/", Excerpt: "I really enjoy graph problems."},
		{ID: 1, Title: "Computational Geometry in C++", URL: "/cableBlog/Computational-Geometry-in-C++/", Excerpt: "Useful C++ computational geometry algorithms."},
		{ID: 2, Title: "Async Javascript", URL: "/cableBlog/Async-Javascript/", Excerpt: "Computer programs are CPU bound.", Teaser: "/img/async.png"},
		{ID: 3, Title: "Asynchronous request batching and caching", URL: "/cableBlog/Asynchronous-request-batching-and-caching/", Excerpt: "Caching plays a critical role."},
	}
}

func buildTestContext(t *testing.T, list []*posts.Post) *Context {
	t.Helper()
	c, err := Build(context.Background(), list, index.DefaultConfig(), "test")
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

// fakeIndex returns fixed hits for every non-blank query.
type fakeIndex struct {
	hits   []index.Hit
	refs   []int
	err    error
	calls  int
	closed bool
	mu     sync.Mutex
}

func (f *fakeIndex) Search(_ context.Context, text string) ([]index.Hit, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if strings.TrimSpace(text) == "" {
		return []index.Hit{}, nil
	}
	return f.hits, nil
}

func (f *fakeIndex) Refs(context.Context) ([]int, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.refs, nil
}

func (f *fakeIndex) DocCount() int { return len(f.refs) }

func (f *fakeIndex) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeIndex) searchCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// recordingObserver keeps every event it sees.
type recordingObserver struct {
	mu     sync.Mutex
	events []telemetry.QueryEvent
}

func (o *recordingObserver) Record(e telemetry.QueryEvent) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.events = append(o.events, e)
}

func (o *recordingObserver) all() []telemetry.QueryEvent {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]telemetry.QueryEvent(nil), o.events...)
}

// listRenderer writes one "rank:id" line per entry after a count line.
type listRenderer struct{}

func (listRenderer) Render(w io.Writer, r *Results) error {
	if _, err := fmt.Fprintf(w, "%d Result(s) found\n", r.Count()); err != nil {
		return err
	}
	for _, e := range r.Entries {
		if _, err := fmt.Fprintf(w, "%d:%d\n", e.Rank, e.Post.ID); err != nil {
			return err
		}
	}
	return nil
}

type failingRenderer struct{}

func (failingRenderer) Render(io.Writer, *Results) error {
	return fmt.Errorf("disk full")
}

func entryIDs(r *Results) []int {
	ids := make([]int, len(r.Entries))
	for i, e := range r.Entries {
		ids[i] = e.Post.ID
	}
	return ids
}
