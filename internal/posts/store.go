package posts

import (
	"slices"
	"strings"

	serrors "github.com/cableblog/sitesearch/internal/errors"
)

// Store maps reference ids to post records.
// It is built once and never modified afterwards.
type Store struct {
	byID  map[int]*Post
	order []*Post
}

// NewStore validates posts and builds an immutable store keyed by id.
// A record without a title or url, or with a negative id, is rejected as
// malformed; two records sharing an id are rejected as duplicates. Nothing is
// stored when any record fails.
func NewStore(list []*Post) (*Store, error) {
	if err := Validate(list); err != nil {
		return nil, err
	}

	s := &Store{
		byID:  make(map[int]*Post, len(list)),
		order: make([]*Post, 0, len(list)),
	}
	for _, p := range list {
		c := p.Clone()
		s.byID[c.ID] = c
		s.order = append(s.order, c)
	}
	return s, nil
}

// Validate checks the records that NewStore and the index builder require.
func Validate(list []*Post) error {
	seen := make(map[int]struct{}, len(list))
	for i, p := range list {
		switch {
		case p == nil:
			return serrors.MalformedRecord(i, "record")
		case p.ID < 0:
			return serrors.MalformedRecord(i, "id").
				WithSuggestion("post ids are non-negative integers")
		case strings.TrimSpace(p.Title) == "":
			return serrors.MalformedRecord(i, "title")
		case p.Excerpt == "":
			// "\n" excerpts occur in generated post lists and are kept
			return serrors.MalformedRecord(i, "excerpt")
		case strings.TrimSpace(p.URL) == "":
			return serrors.MalformedRecord(i, "url")
		}
		if _, dup := seen[p.ID]; dup {
			return serrors.DuplicateID(p.ID).
				WithSuggestion("regenerate the post list so every post has a unique id")
		}
		seen[p.ID] = struct{}{}
	}
	return nil
}

// Get returns the post registered under id.
func (s *Store) Get(id int) (*Post, bool) {
	p, ok := s.byID[id]
	return p, ok
}

// Len returns the number of stored posts.
func (s *Store) Len() int {
	return len(s.order)
}

// All returns the posts in source order.
// The returned posts must be treated as read-only.
func (s *Store) All() []*Post {
	return slices.Clone(s.order)
}

// IDs returns the stored ids in ascending order.
func (s *Store) IDs() []int {
	ids := make([]int, 0, len(s.byID))
	for id := range s.byID {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}
