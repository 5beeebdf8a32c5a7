package posts

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	serrors "github.com/cableblog/sitesearch/internal/errors"
)

// Format is the encoding of a post data file.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFromPath detects the data format from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return "", serrors.New(serrors.ErrCodeUnknownFormat,
			fmt.Sprintf("unsupported post file extension %q", filepath.Ext(path)), nil).
			WithSuggestion("use a .json, .yaml or .yml file")
	}
}

// rawPost mirrors Post with pointer fields so absent keys can be told apart
// from empty values.
type rawPost struct {
	ID         *int     `json:"id" yaml:"id"`
	Title      *string  `json:"title" yaml:"title"`
	Excerpt    *string  `json:"excerpt" yaml:"excerpt"`
	URL        *string  `json:"url" yaml:"url"`
	Teaser     *string  `json:"teaser" yaml:"teaser"`
	Categories []string `json:"categories" yaml:"categories"`
	Tags       []string `json:"tags" yaml:"tags"`
}

func (r *rawPost) toPost(position int) (*Post, error) {
	switch {
	case r.ID == nil:
		return nil, serrors.MalformedRecord(position, "id")
	case r.Title == nil:
		return nil, serrors.MalformedRecord(position, "title")
	case r.Excerpt == nil:
		return nil, serrors.MalformedRecord(position, "excerpt")
	case r.URL == nil:
		return nil, serrors.MalformedRecord(position, "url")
	}

	p := &Post{
		ID:         *r.ID,
		Title:      *r.Title,
		Excerpt:    *r.Excerpt,
		URL:        *r.URL,
		Categories: r.Categories,
		Tags:       r.Tags,
	}
	if r.Teaser != nil {
		p.Teaser = *r.Teaser
	}
	if p.Categories == nil {
		p.Categories = []string{}
	}
	if p.Tags == nil {
		p.Tags = []string{}
	}
	return p, nil
}

// Decode parses a list of post records.
// Every record must carry id, title, excerpt and url keys; teaser may be null
// or absent. The result is validated before it is returned.
func Decode(data []byte, format Format) ([]*Post, error) {
	var raws []*rawPost
	var err error
	switch format {
	case FormatJSON:
		err = json.NewDecoder(bytes.NewReader(data)).Decode(&raws)
	case FormatYAML:
		err = yaml.Unmarshal(data, &raws)
	default:
		return nil, serrors.New(serrors.ErrCodeUnknownFormat,
			fmt.Sprintf("unsupported post format %q", format), nil)
	}
	if err != nil {
		return nil, serrors.New(serrors.ErrCodeFileCorrupt, "cannot decode post list", err)
	}

	list := make([]*Post, 0, len(raws))
	for i, r := range raws {
		if r == nil {
			return nil, serrors.MalformedRecord(i, "record")
		}
		p, err := r.toPost(i)
		if err != nil {
			return nil, err
		}
		list = append(list, p)
	}

	if err := Validate(list); err != nil {
		return nil, err
	}
	return list, nil
}

// Load reads and decodes a post data file.
func Load(path string) ([]*Post, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, serrors.New(serrors.ErrCodeFileNotFound,
			fmt.Sprintf("post file not found: %s", path), err)
	}
	if err != nil {
		return nil, serrors.New(serrors.ErrCodeFileUnreadable,
			fmt.Sprintf("cannot read post file %s", path), err)
	}

	list, err := Decode(data, format)
	if err != nil {
		if se, ok := err.(*serrors.SearchError); ok {
			se.WithDetail("path", path)
		}
		return nil, err
	}
	return list, nil
}
