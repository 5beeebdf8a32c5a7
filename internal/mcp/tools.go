package mcp

// SearchPostsInput defines the input schema for the search_posts tool.
type SearchPostsInput struct {
	Query string `json:"query" jsonschema:"words to look for in post titles, excerpts, categories and tags; every word also matches as a prefix"`
	Limit int    `json:"limit,omitempty" jsonschema:"maximum number of results, default 10, at most 50"`
}

// SearchPostsOutput defines the output schema for the search_posts tool.
type SearchPostsOutput struct {
	Query   string       `json:"query" jsonschema:"the query as received"`
	Total   int          `json:"total" jsonschema:"number of matching posts before the limit"`
	Results []PostResult `json:"results" jsonschema:"matching posts, best first"`
}

// PostResult is one ranked post.
type PostResult struct {
	Rank       int      `json:"rank" jsonschema:"1-based position in the ranking"`
	ID         int      `json:"id" jsonschema:"post id"`
	Title      string   `json:"title"`
	URL        string   `json:"url" jsonschema:"site-relative permalink"`
	Excerpt    string   `json:"excerpt"`
	Teaser     string   `json:"teaser,omitempty" jsonschema:"teaser image path, when the post has one"`
	Categories []string `json:"categories,omitempty"`
	Tags       []string `json:"tags,omitempty"`
	Score      float64  `json:"score" jsonschema:"relevance score, higher is better"`
}

// IndexStatusInput defines the input schema for the index_status tool (no parameters).
type IndexStatusInput struct{}

// IndexStatusOutput defines the output schema for the index_status tool.
type IndexStatusOutput struct {
	Source     string      `json:"source" jsonschema:"where the posts were loaded from"`
	Documents  int         `json:"documents" jsonschema:"documents in the index"`
	BuiltAt    string      `json:"built_at" jsonschema:"RFC3339 time the index was built"`
	Boosts     FieldBoosts `json:"boosts"`
	MaxResults int         `json:"max_results" jsonschema:"result cap, 0 means unlimited"`
	Queries    *QueryStats `json:"queries,omitempty" jsonschema:"query telemetry for this session, when enabled"`
}

// FieldBoosts reports the field weighting of the index.
type FieldBoosts struct {
	Title      float64 `json:"title"`
	Excerpt    float64 `json:"excerpt"`
	Categories float64 `json:"categories"`
	Tags       float64 `json:"tags"`
	Prefix     float64 `json:"prefix"`
}

// QueryStats summarizes query telemetry.
type QueryStats struct {
	Total         int64   `json:"total"`
	ZeroResultPct float64 `json:"zero_result_pct"`
	CacheHitRate  float64 `json:"cache_hit_rate"`
}
