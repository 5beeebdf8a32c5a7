// Package search answers keystroke queries against a built post index and
// maps the ranked references back to posts for rendering.
package search

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	serrors "github.com/cableblog/sitesearch/internal/errors"
	"github.com/cableblog/sitesearch/internal/index"
	"github.com/cableblog/sitesearch/internal/posts"
)

// Index is the query side of a built index.
type Index interface {
	RefLister
	Search(ctx context.Context, text string) ([]index.Hit, error)
	DocCount() int
	Close() error
}

// Ensure the Bleve index satisfies Index.
var _ Index = (*index.Index)(nil)

// Context pairs an index with the store it was built from.
// It is immutable once constructed and safe for concurrent queries.
type Context struct {
	index   Index
	store   *posts.Store
	source  string
	builtAt time.Time
}

// NewContext verifies that idx and store hold exactly the same references
// and returns the pair. A mismatch fails with ERR_504 instead of surfacing
// later as dangling references.
func NewContext(ctx context.Context, idx Index, store *posts.Store, source string) (*Context, error) {
	if idx == nil || store == nil {
		return nil, serrors.New(serrors.ErrCodeInternal, "index and store are required", nil)
	}

	result, err := CheckConsistency(ctx, idx, store)
	if err != nil {
		return nil, serrors.New(serrors.ErrCodeIndexMismatch, "failed to verify index against store", err)
	}
	if !result.OK() {
		first := result.Inconsistencies[0]
		return nil, serrors.New(serrors.ErrCodeIndexMismatch,
			fmt.Sprintf("index and store disagree on %d reference(s)", len(result.Inconsistencies)), nil).
			WithDetail("first_ref", fmt.Sprint(first.Ref)).
			WithDetail("first_issue", first.Type.String()).
			WithSuggestion("build the index and the store from the same post list")
	}

	return &Context{
		index:   idx,
		store:   store,
		source:  source,
		builtAt: time.Now(),
	}, nil
}

// Build constructs the store and the index from list and verifies them.
// source names where the posts came from and is reported by Info.
func Build(ctx context.Context, list []*posts.Post, cfg index.Config, source string) (*Context, error) {
	start := time.Now()

	store, err := posts.NewStore(list)
	if err != nil {
		return nil, err
	}

	idx, err := index.Build(ctx, list, cfg)
	if err != nil {
		return nil, err
	}

	c, err := NewContext(ctx, idx, store, source)
	if err != nil {
		_ = idx.Close()
		return nil, err
	}

	slog.Info("search_context_ready",
		slog.String("source", source),
		slog.Int("posts", store.Len()),
		slog.Duration("duration", time.Since(start)))

	return c, nil
}

// Store returns the post store.
func (c *Context) Store() *posts.Store {
	return c.store
}

// Index returns the underlying index.
func (c *Context) Index() Index {
	return c.index
}

// Info describes a context for status reporting.
type Info struct {
	Source  string    `json:"source"`
	Posts   int       `json:"posts"`
	BuiltAt time.Time `json:"built_at"`
}

// Info returns the context's status.
func (c *Context) Info() Info {
	return Info{
		Source:  c.source,
		Posts:   c.store.Len(),
		BuiltAt: c.builtAt,
	}
}

// Close releases the index.
func (c *Context) Close() error {
	return c.index.Close()
}
