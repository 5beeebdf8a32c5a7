package search

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	serrors "github.com/cableblog/sitesearch/internal/errors"
	"github.com/cableblog/sitesearch/internal/index"
	"github.com/cableblog/sitesearch/internal/posts"
	"github.com/cableblog/sitesearch/internal/telemetry"
)

// Entry is one rendered result, in rank order.
type Entry struct {
	Rank  int         `json:"rank"`
	Score float64     `json:"score"`
	Post  *posts.Post `json:"post"`
}

// Results is the outcome of one query cycle.
// Results may be shared through the cache and must not be modified.
type Results struct {
	Query    string        `json:"query"`
	Entries  []Entry       `json:"entries"`
	Dangling []int         `json:"dangling,omitempty"`
	Duration time.Duration `json:"duration_ns"`
}

// Count returns the number of rendered entries.
func (r *Results) Count() int {
	return len(r.Entries)
}

// Renderer writes results in some output format.
type Renderer interface {
	Render(w io.Writer, r *Results) error
}

// Observer is notified after every query cycle.
type Observer interface {
	Record(event telemetry.QueryEvent)
}

// HandlerOption configures a Handler.
type HandlerOption func(*Handler)

// WithCache keeps up to size recent results keyed by exact query text.
// A size of zero disables caching.
func WithCache(size int) HandlerOption {
	return func(h *Handler) {
		if size <= 0 {
			h.cache = nil
			return
		}
		h.cache, _ = lru.New[string, *Results](size)
	}
}

// WithObserver adds an observer for query events. Nil observers are ignored.
func WithObserver(o Observer) HandlerOption {
	return func(h *Handler) {
		if o != nil {
			h.observers = append(h.observers, o)
		}
	}
}

// WithLogger sets the logger used for dangling-reference warnings.
func WithLogger(l *slog.Logger) HandlerOption {
	return func(h *Handler) {
		if l != nil {
			h.logger = l
		}
	}
}

// Handler runs the query cycle: search the index, look every reference up
// in the store, and hand the entries to a renderer.
//
// The current Context can be replaced with Swap. A query holds the read lock
// for its whole cycle, so a swapped-out context is never closed under a
// running query.
type Handler struct {
	mu        sync.RWMutex
	current   *Context
	cache     *lru.Cache[string, *Results]
	observers []Observer
	logger    *slog.Logger
}

// NewHandler creates a handler serving c.
func NewHandler(c *Context, opts ...HandlerOption) (*Handler, error) {
	if c == nil {
		return nil, serrors.New(serrors.ErrCodeInternal, "search context is required", nil)
	}
	h := &Handler{
		current: c,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h, nil
}

// Query runs one query cycle and returns the ranked entries.
//
// References with no stored post are skipped, logged, and listed in
// Results.Dangling. Empty or whitespace-only text yields zero entries.
func (h *Handler) Query(ctx context.Context, text string) (*Results, error) {
	start := time.Now()

	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.cache != nil {
		if cached, ok := h.cache.Get(text); ok {
			h.observe(cached, time.Since(start), true)
			return cached, nil
		}
	}

	hits, err := h.current.index.Search(ctx, text)
	if err != nil {
		return nil, err
	}

	results := &Results{
		Query:   text,
		Entries: make([]Entry, 0, len(hits)),
	}
	for _, hit := range hits {
		post, ok := h.current.store.Get(hit.Ref)
		if !ok {
			results.Dangling = append(results.Dangling, hit.Ref)
			h.logger.Warn("dangling_reference",
				serrors.LogAttrs(serrors.DanglingReference(hit.Ref).
					WithDetail("query", text))...)
			continue
		}
		results.Entries = append(results.Entries, Entry{
			Rank:  len(results.Entries) + 1,
			Score: hit.Score,
			Post:  post,
		})
	}
	results.Duration = time.Since(start)

	if h.cache != nil {
		h.cache.Add(text, results)
	}
	h.observe(results, results.Duration, false)

	h.logger.Debug("query_complete",
		slog.String("query", text),
		slog.Int("results", results.Count()),
		slog.Int("dangling", len(results.Dangling)),
		slog.Duration("duration", results.Duration))

	return results, nil
}

// Keystroke runs a full cycle for the current input text: query, then render.
func (h *Handler) Keystroke(ctx context.Context, text string, r Renderer, w io.Writer) error {
	results, err := h.Query(ctx, text)
	if err != nil {
		return err
	}
	if err := r.Render(w, results); err != nil {
		return fmt.Errorf("render results: %w", err)
	}
	return nil
}

func (h *Handler) observe(r *Results, latency time.Duration, cached bool) {
	if len(h.observers) == 0 {
		return
	}
	event := telemetry.QueryEvent{
		Query:         r.Query,
		QueryType:     telemetry.ClassifyQuery(r.Query),
		ResultCount:   r.Count(),
		DanglingCount: len(r.Dangling),
		Cached:        cached,
		Latency:       latency,
		Timestamp:     time.Now(),
	}
	for _, o := range h.observers {
		o.Record(event)
	}
}

// Swap installs next as the current context, clears the cache and returns
// the previous context. The caller owns the returned context and should
// close it.
func (h *Handler) Swap(next *Context) *Context {
	h.mu.Lock()
	defer h.mu.Unlock()

	prev := h.current
	h.current = next
	if h.cache != nil {
		h.cache.Purge()
	}
	return prev
}

// Rebuild builds a fresh context from list and swaps it in, closing the
// previous one. On failure the current context keeps serving.
func (h *Handler) Rebuild(ctx context.Context, list []*posts.Post, cfg index.Config, source string) error {
	next, err := Build(ctx, list, cfg, source)
	if err != nil {
		return err
	}

	prev := h.Swap(next)
	if err := prev.Close(); err != nil {
		h.logger.Warn("close_previous_context_failed", slog.String("error", err.Error()))
	}
	return nil
}

// Current returns the context being served.
func (h *Handler) Current() *Context {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.current
}

// Close releases the current context.
func (h *Handler) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.current.Close()
}
