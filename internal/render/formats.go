package render

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/cableblog/sitesearch/internal/search"
)

// Text renders a plain listing for terminals and pipes.
type Text struct{}

// Render writes the count line, then a numbered block per entry.
func (Text) Render(w io.Writer, r *search.Results) error {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d Result(s) found\n", r.Count())
	for _, e := range r.Entries {
		fmt.Fprintf(&sb, "\n%d. %s\n", e.Rank, e.Post.Title)
		fmt.Fprintf(&sb, "   %s\n", e.Post.URL)
		if e.Post.HasTeaser() {
			fmt.Fprintf(&sb, "   teaser: %s\n", strings.TrimSpace(e.Post.Teaser))
		}
		if excerpt := strings.Join(strings.Fields(e.Post.Excerpt), " "); excerpt != "" {
			fmt.Fprintf(&sb, "   %s\n", excerpt)
		}
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

// JSON renders results as a single JSON document.
type JSON struct {
	Indent bool
}

// Document is the JSON shape of one query cycle.
type Document struct {
	Query    string         `json:"query"`
	Count    int            `json:"count"`
	Results  []DocumentItem `json:"results"`
	Dangling []int          `json:"dangling,omitempty"`
}

// DocumentItem is one ranked post.
type DocumentItem struct {
	Rank    int     `json:"rank"`
	ID      int     `json:"id"`
	Title   string  `json:"title"`
	URL     string  `json:"url"`
	Excerpt string  `json:"excerpt"`
	Teaser  *string `json:"teaser"`
	Score   float64 `json:"score"`
}

// NewDocument converts results to their JSON shape. A post without a teaser
// keeps the null teaser of the source data.
func NewDocument(r *search.Results) Document {
	doc := Document{
		Query:    r.Query,
		Count:    r.Count(),
		Results:  make([]DocumentItem, 0, len(r.Entries)),
		Dangling: r.Dangling,
	}
	for _, e := range r.Entries {
		item := DocumentItem{
			Rank:    e.Rank,
			ID:      e.Post.ID,
			Title:   e.Post.Title,
			URL:     e.Post.URL,
			Excerpt: e.Post.Excerpt,
			Score:   e.Score,
		}
		if e.Post.HasTeaser() {
			teaser := strings.TrimSpace(e.Post.Teaser)
			item.Teaser = &teaser
		}
		doc.Results = append(doc.Results, item)
	}
	return doc
}

// Render writes the JSON document followed by a newline.
func (j JSON) Render(w io.Writer, r *search.Results) error {
	enc := json.NewEncoder(w)
	if j.Indent {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(NewDocument(r))
}

// ForFormat returns the renderer for a format name: html, text or json.
func ForFormat(format, baseURL string) (search.Renderer, error) {
	switch strings.ToLower(format) {
	case "", "html":
		return HTML{BaseURL: baseURL}, nil
	case "text":
		return Text{}, nil
	case "json":
		return JSON{Indent: true}, nil
	default:
		return nil, fmt.Errorf("unknown output format %q (want html, text or json)", format)
	}
}
