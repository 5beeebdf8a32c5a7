package mcp

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/cableblog/sitesearch/internal/index"
	"github.com/cableblog/sitesearch/internal/search"
	"github.com/cableblog/sitesearch/internal/telemetry"
	"github.com/cableblog/sitesearch/pkg/version"
)

// Server is the MCP server. It answers tool calls from the search handler
// currently being served, so hot reloads are picked up without restarting.
type Server struct {
	mcp     *mcp.Server
	handler *search.Handler
	config  index.Config
	logger  *slog.Logger

	// Query telemetry (optional, set via SetMetrics)
	metrics *telemetry.QueryMetrics

	mu sync.RWMutex
}

// ToolInfo contains information about a registered tool.
type ToolInfo struct {
	Name        string
	Description string
}

const (
	searchPostsDescription = "Search the blog's posts by title, excerpt, categories and tags. " +
		"All words must match; every word also matches as a prefix, so partial input works. " +
		"Returns ranked posts with their permalinks."
	indexStatusDescription = "Report how many posts are indexed, where they were loaded from, " +
		"and how fields are weighted."
)

// NewServer creates a new MCP server answering from h. cfg is the index
// configuration h's contexts are built with.
func NewServer(h *search.Handler, cfg index.Config) (*Server, error) {
	if h == nil {
		return nil, errors.New("search handler is required")
	}

	s := &Server{
		handler: h,
		config:  cfg,
		logger:  slog.Default().With("component", "mcp"),
	}

	s.mcp = mcp.NewServer(
		&mcp.Implementation{
			Name:    version.Name,
			Version: version.Version,
		},
		nil, // capabilities are inferred from registered tools/resources
	)

	s.registerTools()
	s.registerPostResources()

	return s, nil
}

// SetMetrics sets the query metrics collector. When set, index_status
// reports session telemetry and a query_metrics resource is registered.
func (s *Server) SetMetrics(m *telemetry.QueryMetrics) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.metrics = m

	if m != nil {
		s.registerQueryMetricsResource()
	}
}

// MCPServer returns the underlying MCP server instance.
func (s *Server) MCPServer() *mcp.Server {
	return s.mcp
}

// Info returns the server name and version.
func (s *Server) Info() (name, ver string) {
	return version.Name, version.Version
}

// ListTools returns all registered tools.
func (s *Server) ListTools() []ToolInfo {
	return []ToolInfo{
		{Name: "search_posts", Description: searchPostsDescription},
		{Name: "index_status", Description: indexStatusDescription},
	}
}

// CallTool invokes a tool by name with loosely typed arguments, as decoded
// from JSON.
func (s *Server) CallTool(ctx context.Context, name string, args map[string]any) (any, error) {
	switch name {
	case "search_posts":
		input := SearchPostsInput{}
		if q, ok := args["query"].(string); ok {
			input.Query = q
		}
		if l, ok := args["limit"].(float64); ok {
			input.Limit = int(l)
		}
		return s.searchPosts(ctx, input)
	case "index_status":
		return s.indexStatus(ctx)
	default:
		return nil, NewMethodNotFoundError(name)
	}
}

// searchPosts runs one query cycle and converts the ranked entries.
func (s *Server) searchPosts(ctx context.Context, input SearchPostsInput) (*SearchPostsOutput, error) {
	start := time.Now()
	requestID := generateRequestID()

	if strings.TrimSpace(input.Query) == "" {
		return nil, NewInvalidParamsError("query cannot be empty or whitespace only")
	}
	limit := clampLimit(input.Limit, defaultLimit, 1, maxLimit)

	s.logger.Info("search_posts started",
		slog.String("request_id", requestID),
		slog.String("query", input.Query),
		slog.Int("limit", limit))

	results, err := s.handler.Query(ctx, input.Query)
	if err != nil {
		s.logger.Error("search_posts failed",
			slog.String("request_id", requestID),
			slog.Duration("duration", time.Since(start)),
			slog.String("error", err.Error()))
		return nil, MapError(err)
	}

	out := ToSearchPostsOutput(results, limit)
	s.logger.Info("search_posts completed",
		slog.String("request_id", requestID),
		slog.Duration("duration", time.Since(start)),
		slog.Int("total", out.Total),
		slog.Int("returned", len(out.Results)))
	return &out, nil
}

// indexStatus reports the context currently being served.
func (s *Server) indexStatus(_ context.Context) (*IndexStatusOutput, error) {
	c := s.handler.Current()
	info := c.Info()

	out := &IndexStatusOutput{
		Source:    info.Source,
		Documents: c.Index().DocCount(),
		BuiltAt:   info.BuiltAt.Format(time.RFC3339),
		Boosts: FieldBoosts{
			Title:      s.config.TitleBoost,
			Excerpt:    s.config.ExcerptBoost,
			Categories: s.config.CategoriesBoost,
			Tags:       s.config.TagsBoost,
			Prefix:     s.config.PrefixBoost,
		},
		MaxResults: s.config.MaxResults,
	}

	s.mu.RLock()
	m := s.metrics
	s.mu.RUnlock()
	if m != nil {
		snap := m.Snapshot()
		out.Queries = &QueryStats{
			Total:         snap.TotalQueries,
			ZeroResultPct: snap.ZeroResultPercentage(),
			CacheHitRate:  snap.CacheHitRate(),
		}
	}
	return out, nil
}

// registerTools registers all tools with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "search_posts",
		Description: searchPostsDescription,
	}, s.mcpSearchPostsHandler)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "index_status",
		Description: indexStatusDescription,
	}, s.mcpIndexStatusHandler)

	s.logger.Debug("mcp_tools_registered", slog.Int("count", 2))
}

// mcpSearchPostsHandler is the MCP SDK handler for the search_posts tool.
// The structured output is mirrored as markdown text content.
func (s *Server) mcpSearchPostsHandler(ctx context.Context, _ *mcp.CallToolRequest, input SearchPostsInput) (
	*mcp.CallToolResult,
	*SearchPostsOutput,
	error,
) {
	out, err := s.searchPosts(ctx, input)
	if err != nil {
		return nil, nil, err
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: FormatSearchResults(*out)}},
	}, out, nil
}

// mcpIndexStatusHandler is the MCP SDK handler for the index_status tool.
func (s *Server) mcpIndexStatusHandler(ctx context.Context, _ *mcp.CallToolRequest, _ IndexStatusInput) (
	*mcp.CallToolResult,
	*IndexStatusOutput,
	error,
) {
	out, err := s.indexStatus(ctx)
	if err != nil {
		return nil, nil, MapError(err)
	}
	return nil, out, nil
}

// Serve starts the server with the specified transport and blocks until
// ctx is cancelled or the client disconnects.
func (s *Server) Serve(ctx context.Context, transport string) error {
	s.logger.Info("mcp_server_starting", slog.String("transport", transport))

	switch transport {
	case "stdio":
		err := s.mcp.Run(ctx, &mcp.StdioTransport{})
		if err != nil && ctx.Err() == nil {
			s.logger.Error("mcp_server_stopped", slog.String("error", err.Error()))
			return err
		}
		s.logger.Info("mcp_server_stopped")
		return nil
	default:
		return fmt.Errorf("unknown transport: %s (supported: stdio)", transport)
	}
}

// generateRequestID creates a short unique request ID for log correlation.
func generateRequestID() string {
	b := make([]byte, 4)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
