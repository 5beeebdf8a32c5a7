// Package index builds the full-text index over the post list and answers
// free-text queries with ranked post references.
//
// Tokenization, stemming and scoring belong to Bleve; this package only
// decides which fields are indexed, how much each one weighs, and how query
// text is turned into a Bleve query.
package index

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/custom"
	"github.com/blevesearch/bleve/v2/analysis/lang/en"
	"github.com/blevesearch/bleve/v2/analysis/token/lowercase"
	"github.com/blevesearch/bleve/v2/analysis/token/porter"
	"github.com/blevesearch/bleve/v2/analysis/tokenizer/unicode"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/blevesearch/bleve/v2/search/query"

	serrors "github.com/cableblog/sitesearch/internal/errors"
	"github.com/cableblog/sitesearch/internal/posts"
)

// Indexed field names.
const (
	FieldTitle      = "title"
	FieldExcerpt    = "excerpt"
	FieldCategories = "categories"
	FieldTags       = "tags"
)

// Config controls field weighting and result size.
type Config struct {
	// TitleBoost multiplies the contribution of title matches (default: 10).
	TitleBoost float64
	// ExcerptBoost multiplies the contribution of excerpt matches (default: 1).
	ExcerptBoost float64
	// CategoriesBoost multiplies the contribution of category matches (default: 1).
	CategoriesBoost float64
	// TagsBoost multiplies the contribution of tag matches (default: 1).
	TagsBoost float64
	// PrefixBoost weighs a prefix-expanded term relative to an exact term
	// (default: 0.1). Zero disables prefix expansion.
	PrefixBoost float64
	// MaxResults caps the number of hits. Zero returns every match.
	MaxResults int
}

// DefaultConfig returns the weighting used by the original site search.
func DefaultConfig() Config {
	return Config{
		TitleBoost:      10,
		ExcerptBoost:    1,
		CategoriesBoost: 1,
		TagsBoost:       1,
		PrefixBoost:     0.1,
		MaxResults:      0,
	}
}

// Validate checks that the weights can produce a match.
func (c Config) Validate() error {
	for _, fb := range c.fields() {
		if fb.boost < 0 {
			return serrors.ConfigError(fmt.Sprintf("%s boost must be non-negative, got %g", fb.field, fb.boost), nil)
		}
	}
	if c.TitleBoost == 0 && c.ExcerptBoost == 0 && c.CategoriesBoost == 0 && c.TagsBoost == 0 {
		return serrors.ConfigError("at least one field boost must be positive", nil)
	}
	if c.PrefixBoost < 0 {
		return serrors.ConfigError(fmt.Sprintf("prefix boost must be non-negative, got %g", c.PrefixBoost), nil)
	}
	if c.MaxResults < 0 {
		return serrors.ConfigError(fmt.Sprintf("max results must be non-negative, got %d", c.MaxResults), nil)
	}
	return nil
}

type fieldBoost struct {
	field string
	boost float64
}

func (c Config) fields() []fieldBoost {
	return []fieldBoost{
		{FieldTitle, c.TitleBoost},
		{FieldExcerpt, c.ExcerptBoost},
		{FieldCategories, c.CategoriesBoost},
		{FieldTags, c.TagsBoost},
	}
}

// Boosts returns the per-field weights keyed by field name.
func (c Config) Boosts() map[string]float64 {
	m := make(map[string]float64, 4)
	for _, fb := range c.fields() {
		m[fb.field] = fb.boost
	}
	return m
}

// Hit is one ranked match.
type Hit struct {
	Ref   int
	Score float64
}

// Index is an in-memory Bleve index over a fixed post list.
// It is never modified after Build returns and is safe for concurrent queries.
type Index struct {
	mu      sync.RWMutex
	index   bleve.Index
	mapping *mapping.IndexMappingImpl
	config  Config
	count   int
	closed  bool
}

// Build registers every post under its id and returns the finished index.
// Records are validated first so that a malformed record leaves nothing
// partially indexed.
func Build(ctx context.Context, list []*posts.Post, cfg Config) (*Index, error) {
	start := time.Now()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := posts.Validate(list); err != nil {
		return nil, err
	}

	indexMapping, err := createIndexMapping()
	if err != nil {
		return nil, serrors.New(serrors.ErrCodeIndexFailed, "failed to create index mapping", err)
	}

	idx, err := bleve.NewMemOnly(indexMapping)
	if err != nil {
		return nil, serrors.New(serrors.ErrCodeIndexFailed, "failed to create index", err)
	}

	if err := ctx.Err(); err != nil {
		_ = idx.Close()
		return nil, err
	}

	if len(list) > 0 {
		batch := idx.NewBatch()
		for _, p := range list {
			if err := batch.Index(strconv.Itoa(p.ID), toBleveDocument(p)); err != nil {
				_ = idx.Close()
				return nil, serrors.New(serrors.ErrCodeIndexFailed,
					fmt.Sprintf("failed to index post %d", p.ID), err)
			}
		}
		if err := idx.Batch(batch); err != nil {
			_ = idx.Close()
			return nil, serrors.New(serrors.ErrCodeIndexFailed, "failed to execute batch", err)
		}
	}

	slog.Debug("index_built",
		slog.Int("documents", len(list)),
		slog.Float64("title_boost", cfg.TitleBoost),
		slog.Duration("duration", time.Since(start)))

	return &Index{
		index:   idx,
		mapping: indexMapping,
		config:  cfg,
		count:   len(list),
	}, nil
}

// createIndexMapping maps the four text fields onto the post analyzer.
func createIndexMapping() (*mapping.IndexMappingImpl, error) {
	indexMapping := bleve.NewIndexMapping()

	err := indexMapping.AddCustomAnalyzer(AnalyzerName, map[string]interface{}{
		"type":      custom.Name,
		"tokenizer": unicode.Name,
		"token_filters": []string{
			TrimmerName,
			lowercase.Name,
			en.StopName,
			porter.Name,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to add custom analyzer: %w", err)
	}
	indexMapping.DefaultAnalyzer = AnalyzerName

	docMapping := bleve.NewDocumentMapping()
	docMapping.Dynamic = false
	for _, field := range []string{FieldTitle, FieldExcerpt, FieldCategories, FieldTags} {
		fm := bleve.NewTextFieldMapping()
		fm.Analyzer = AnalyzerName
		fm.Store = false
		fm.IncludeInAll = false
		docMapping.AddFieldMappingsAt(field, fm)
	}
	indexMapping.DefaultMapping = docMapping

	return indexMapping, nil
}

// toBleveDocument keeps only the tokenized fields; the id is the document key.
func toBleveDocument(p *posts.Post) map[string]interface{} {
	return map[string]interface{}{
		FieldTitle:      p.Title,
		FieldExcerpt:    p.Excerpt,
		FieldCategories: p.Categories,
		FieldTags:       p.Tags,
	}
}

// Search returns the posts matching text, highest score first.
// Ties are broken by ascending ref so repeated queries return the same order.
// Empty, whitespace-only and stop-word-only text yields no hits.
func (x *Index) Search(ctx context.Context, text string) ([]Hit, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()

	if x.closed {
		return nil, fmt.Errorf("index is closed")
	}

	if strings.TrimSpace(text) == "" || x.count == 0 {
		return []Hit{}, nil
	}

	terms, err := x.analyze(text)
	if err != nil {
		return nil, serrors.New(serrors.ErrCodeSearchFailed, "failed to analyze query", err)
	}
	if len(terms) == 0 {
		return []Hit{}, nil
	}

	req := bleve.NewSearchRequestOptions(x.buildQuery(terms), x.count, 0, false)
	req.SortBy([]string{"-_score", "_id"})

	result, err := x.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, serrors.New(serrors.ErrCodeSearchFailed, "search failed", err)
	}

	hits := make([]Hit, 0, len(result.Hits))
	for _, h := range result.Hits {
		ref, err := strconv.Atoi(h.ID)
		if err != nil {
			return nil, serrors.New(serrors.ErrCodeSearchFailed,
				fmt.Sprintf("non-numeric document id %q", h.ID), err)
		}
		hits = append(hits, Hit{Ref: ref, Score: h.Score})
	}

	slices.SortStableFunc(hits, func(a, b Hit) int {
		if c := cmp.Compare(b.Score, a.Score); c != 0 {
			return c
		}
		return cmp.Compare(a.Ref, b.Ref)
	})

	if x.config.MaxResults > 0 && len(hits) > x.config.MaxResults {
		hits = hits[:x.config.MaxResults]
	}
	return hits, nil
}

// analyze runs text through the index analyzer, dropping repeated terms.
func (x *Index) analyze(text string) ([]string, error) {
	tokens, err := x.mapping.AnalyzeText(AnalyzerName, []byte(text))
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(tokens))
	terms := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		term := string(tok.Term)
		if _, dup := seen[term]; dup {
			continue
		}
		seen[term] = struct{}{}
		terms = append(terms, term)
	}
	return terms, nil
}

// buildQuery requires every term to match. A term matches a field either
// exactly or as a prefix of an indexed term; each field contributes with its
// own boost and prefix matches are discounted by PrefixBoost.
func (x *Index) buildQuery(terms []string) query.Query {
	clauses := make([]query.Query, 0, len(terms))
	for _, term := range terms {
		var alternatives []query.Query
		for _, fb := range x.config.fields() {
			if fb.boost <= 0 {
				continue
			}
			tq := bleve.NewTermQuery(term)
			tq.SetField(fb.field)
			tq.SetBoost(fb.boost)
			alternatives = append(alternatives, tq)

			if x.config.PrefixBoost > 0 {
				pq := bleve.NewPrefixQuery(term)
				pq.SetField(fb.field)
				pq.SetBoost(fb.boost * x.config.PrefixBoost)
				alternatives = append(alternatives, pq)
			}
		}
		clauses = append(clauses, bleve.NewDisjunctionQuery(alternatives...))
	}

	if len(clauses) == 1 {
		return clauses[0]
	}
	return bleve.NewConjunctionQuery(clauses...)
}

// Refs returns every registered reference id in ascending order.
func (x *Index) Refs(ctx context.Context) ([]int, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()

	if x.closed {
		return nil, fmt.Errorf("index is closed")
	}
	if x.count == 0 {
		return []int{}, nil
	}

	req := bleve.NewSearchRequestOptions(bleve.NewMatchAllQuery(), x.count, 0, false)
	result, err := x.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to list references: %w", err)
	}

	refs := make([]int, 0, len(result.Hits))
	for _, h := range result.Hits {
		ref, err := strconv.Atoi(h.ID)
		if err != nil {
			return nil, fmt.Errorf("non-numeric document id %q: %w", h.ID, err)
		}
		refs = append(refs, ref)
	}
	slices.Sort(refs)
	return refs, nil
}

// DocCount returns the number of registered posts.
func (x *Index) DocCount() int {
	return x.count
}

// Config returns the weighting the index was built with.
func (x *Index) Config() Config {
	return x.config
}

// Close releases the underlying Bleve index.
func (x *Index) Close() error {
	x.mu.Lock()
	defer x.mu.Unlock()

	if x.closed {
		return nil
	}
	x.closed = true
	return x.index.Close()
}
