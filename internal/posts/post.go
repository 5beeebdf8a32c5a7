// Package posts holds the blog post records that the search index is built
// from, the decoders for the post data files, and the id-keyed document store
// consulted when rendering results.
package posts

import (
	"slices"
	"strings"
)

// Post is one blog post record.
//
// ID is the reference key shared by the index and the store. It is assigned
// when the site is generated and is only stable within one build.
type Post struct {
	ID         int      `json:"id" yaml:"id"`
	Title      string   `json:"title" yaml:"title"`
	Excerpt    string   `json:"excerpt" yaml:"excerpt"`
	URL        string   `json:"url" yaml:"url"`
	Teaser     string   `json:"teaser,omitempty" yaml:"teaser,omitempty"`
	Categories []string `json:"categories" yaml:"categories"`
	Tags       []string `json:"tags" yaml:"tags"`
}

// HasTeaser reports whether the post carries a teaser image.
func (p *Post) HasTeaser() bool {
	return strings.TrimSpace(p.Teaser) != ""
}

// Clone returns a deep copy so stores never share slices with callers.
func (p *Post) Clone() *Post {
	c := *p
	c.Categories = slices.Clone(p.Categories)
	c.Tags = slices.Clone(p.Tags)
	return &c
}
