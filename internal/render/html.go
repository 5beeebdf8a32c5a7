// Package render turns query results into the output formats served to
// readers: the HTML results fragment, a plain text listing, and JSON.
package render

import (
	"fmt"
	"html/template"
	"io"
	"strings"

	"github.com/cableblog/sitesearch/internal/search"
)

// fragment reproduces the blog theme's archive markup. Styling depends on
// these class names, so they must not change.
var fragment = template.Must(template.New("results").Parse(
	`<p class="results__found">{{.Count}} Result(s) found</p>
{{- range .Entries}}
<div class="list__item">
  <article class="archive__item" itemscope itemtype="http://schema.org/CreativeWork">
    <h2 class="archive__item-title" itemprop="headline"><a href="{{.URL}}" rel="permalink">{{.Title}}</a></h2>
    {{- if .Teaser}}
    <div class="archive__item-teaser"><img src="{{.Teaser}}" alt=""></div>
    {{- end}}
    <p class="archive__item-excerpt" itemprop="description">{{.Excerpt}}</p>
  </article>
</div>
{{- end}}
`))

type fragmentView struct {
	Count   int
	Entries []entryView
}

type entryView struct {
	URL     string
	Title   string
	Teaser  string
	Excerpt string
}

// HTML renders the results fragment that replaces the page's results
// container. Every value is escaped; URLs with unsafe schemes are replaced.
type HTML struct {
	// BaseURL prefixes root-relative teaser paths, e.g. "https://example.org".
	BaseURL string
}

// Render writes the count line followed by one entry per result, in rank order.
func (h HTML) Render(w io.Writer, r *search.Results) error {
	view := fragmentView{
		Count:   r.Count(),
		Entries: make([]entryView, 0, len(r.Entries)),
	}
	for _, e := range r.Entries {
		v := entryView{
			URL:     e.Post.URL,
			Title:   e.Post.Title,
			Excerpt: e.Post.Excerpt,
		}
		if e.Post.HasTeaser() {
			v.Teaser = h.teaserURL(strings.TrimSpace(e.Post.Teaser))
		}
		view.Entries = append(view.Entries, v)
	}

	if err := fragment.Execute(w, view); err != nil {
		return fmt.Errorf("execute results template: %w", err)
	}
	return nil
}

func (h HTML) teaserURL(teaser string) string {
	base := strings.TrimRight(h.BaseURL, "/")
	if base == "" || !strings.HasPrefix(teaser, "/") || strings.HasPrefix(teaser, "//") {
		return teaser
	}
	return base + teaser
}
