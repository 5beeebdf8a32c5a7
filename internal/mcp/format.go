package mcp

import (
	"fmt"
	"strings"

	"github.com/cableblog/sitesearch/internal/search"
)

const (
	defaultLimit = 10
	maxLimit     = 50
)

// FormatSearchResults formats results as markdown for clients that only
// read text content.
func FormatSearchResults(out SearchPostsOutput) string {
	if len(out.Results) == 0 {
		return fmt.Sprintf("No posts found for \"%s\"", out.Query)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "## Posts matching \"%s\"\n\n", out.Query)
	fmt.Fprintf(&sb, "Showing %d of %d result", len(out.Results), out.Total)
	if out.Total != 1 {
		sb.WriteString("s")
	}
	sb.WriteString("\n\n")

	for _, r := range out.Results {
		formatResult(&sb, r)
	}
	return sb.String()
}

func formatResult(sb *strings.Builder, r PostResult) {
	fmt.Fprintf(sb, "### %d. [%s](%s)\n\n", r.Rank, r.Title, r.URL)
	fmt.Fprintf(sb, "**Score:** %.3f", r.Score)
	if len(r.Categories) > 0 {
		fmt.Fprintf(sb, " | **Categories:** %s", strings.Join(r.Categories, ", "))
	}
	if len(r.Tags) > 0 {
		fmt.Fprintf(sb, " | **Tags:** %s", strings.Join(r.Tags, ", "))
	}
	sb.WriteString("\n\n")
	if excerpt := strings.Join(strings.Fields(r.Excerpt), " "); excerpt != "" {
		fmt.Fprintf(sb, "> %s\n\n", excerpt)
	}
}

// clampLimit ensures limit is within bounds.
func clampLimit(limit, defaultVal, min, max int) int {
	if limit <= 0 {
		return defaultVal
	}
	if limit < min {
		return min
	}
	if limit > max {
		return max
	}
	return limit
}

// ToSearchPostsOutput converts results to the tool output, keeping at most
// limit entries.
func ToSearchPostsOutput(r *search.Results, limit int) SearchPostsOutput {
	out := SearchPostsOutput{
		Query:   r.Query,
		Total:   r.Count(),
		Results: make([]PostResult, 0, min(limit, r.Count())),
	}
	for _, e := range r.Entries {
		if len(out.Results) == limit {
			break
		}
		out.Results = append(out.Results, toPostResult(e))
	}
	return out
}

func toPostResult(e search.Entry) PostResult {
	return PostResult{
		Rank:       e.Rank,
		ID:         e.Post.ID,
		Title:      e.Post.Title,
		URL:        e.Post.URL,
		Excerpt:    e.Post.Excerpt,
		Teaser:     strings.TrimSpace(e.Post.Teaser),
		Categories: e.Post.Categories,
		Tags:       e.Post.Tags,
		Score:      e.Score,
	}
}
