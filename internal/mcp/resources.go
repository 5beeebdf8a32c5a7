package mcp

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	postURIPrefix     = "sitesearch://posts/"
	queryMetricsURI   = "sitesearch://query_metrics"
	postURITemplate   = postURIPrefix + "{id}"
	jsonMIMEType      = "application/json"
	queryMetricsLabel = "query_metrics"
)

// registerPostResources exposes every post as sitesearch://posts/{id}. The
// lookup goes through the context being served at read time.
func (s *Server) registerPostResources() {
	s.mcp.AddResourceTemplate(
		&mcp.ResourceTemplate{
			Name:        "post",
			URITemplate: postURITemplate,
			Description: "A blog post record by id",
			MIMEType:    jsonMIMEType,
		},
		func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
			return s.readPost(req.Params.URI)
		},
	)
}

// readPost returns the post named by uri as JSON.
func (s *Server) readPost(uri string) (*mcp.ReadResourceResult, error) {
	raw, ok := strings.CutPrefix(uri, postURIPrefix)
	if !ok {
		return nil, NewResourceNotFoundError(uri)
	}
	id, err := strconv.Atoi(raw)
	if err != nil {
		return nil, NewInvalidParamsError("post id must be an integer: " + raw)
	}

	post, ok := s.handler.Current().Store().Get(id)
	if !ok {
		return nil, NewResourceNotFoundError(uri)
	}
	return jsonResource(uri, post)
}

// QueryMetricsOutput is the JSON structure for the query_metrics resource.
type QueryMetricsOutput struct {
	Summary             QueryMetricsSummary `json:"summary"`
	QueryTypeCounts     map[string]int64    `json:"query_type_counts"`
	TopTerms            []QueryTermCount    `json:"top_terms"`
	ZeroResultQueries   []string            `json:"zero_result_queries"`
	LatencyDistribution map[string]int64    `json:"latency_distribution"`
}

// QueryMetricsSummary provides overview statistics.
type QueryMetricsSummary struct {
	TotalQueries    int64   `json:"total_queries"`
	TimePeriod      string  `json:"time_period"`
	ZeroResultPct   float64 `json:"zero_result_pct"`
	CacheHitRate    float64 `json:"cache_hit_rate"`
	ExactRepeatRate float64 `json:"exact_repeat_rate"`
}

// QueryTermCount represents a term and its frequency.
type QueryTermCount struct {
	Term  string `json:"term"`
	Count int64  `json:"count"`
}

// registerQueryMetricsResource registers the query_metrics resource.
func (s *Server) registerQueryMetricsResource() {
	s.mcp.AddResource(
		&mcp.Resource{
			Name:        queryMetricsLabel,
			URI:         queryMetricsURI,
			Description: "Query pattern telemetry for this session",
			MIMEType:    jsonMIMEType,
		},
		func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
			return s.readQueryMetrics()
		},
	)
}

func (s *Server) readQueryMetrics() (*mcp.ReadResourceResult, error) {
	s.mu.RLock()
	metrics := s.metrics
	s.mu.RUnlock()

	if metrics == nil {
		return nil, NewInvalidParamsError("query metrics not available")
	}

	snapshot := metrics.Snapshot()
	output := QueryMetricsOutput{
		Summary: QueryMetricsSummary{
			TotalQueries:    snapshot.TotalQueries,
			TimePeriod:      "session",
			ZeroResultPct:   snapshot.ZeroResultPercentage(),
			CacheHitRate:    snapshot.CacheHitRate(),
			ExactRepeatRate: snapshot.ExactRepeatRate,
		},
		QueryTypeCounts:     make(map[string]int64, len(snapshot.QueryTypeCounts)),
		TopTerms:            make([]QueryTermCount, 0, len(snapshot.TopTerms)),
		ZeroResultQueries:   snapshot.ZeroResultQueries,
		LatencyDistribution: make(map[string]int64, len(snapshot.LatencyDistribution)),
	}
	for qt, count := range snapshot.QueryTypeCounts {
		output.QueryTypeCounts[string(qt)] = count
	}
	for _, tc := range snapshot.TopTerms {
		output.TopTerms = append(output.TopTerms, QueryTermCount{Term: tc.Term, Count: tc.Count})
	}
	for bucket, count := range snapshot.LatencyDistribution {
		output.LatencyDistribution[string(bucket)] = count
	}

	return jsonResource(queryMetricsURI, output)
}

func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	content, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, MapError(err)
	}
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{
			{
				URI:      uri,
				MIMEType: jsonMIMEType,
				Text:     string(content),
			},
		},
	}, nil
}
