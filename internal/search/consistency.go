package search

import (
	"context"
	"time"

	"github.com/cableblog/sitesearch/internal/posts"
)

// InconsistencyType categorizes detected issues.
type InconsistencyType int

const (
	// InconsistencyOrphanRef indicates an indexed reference with no stored post.
	InconsistencyOrphanRef InconsistencyType = iota
	// InconsistencyMissingRef indicates a stored post the index never registered.
	InconsistencyMissingRef
)

// String returns a human-readable description of the inconsistency type.
func (t InconsistencyType) String() string {
	switch t {
	case InconsistencyOrphanRef:
		return "orphan_ref"
	case InconsistencyMissingRef:
		return "missing_ref"
	default:
		return "unknown"
	}
}

// Inconsistency represents one disagreement between the index and the store.
type Inconsistency struct {
	Type    InconsistencyType
	Ref     int
	Details string
}

// CheckResult contains the outcome of a consistency check.
type CheckResult struct {
	// Checked is the number of references compared.
	Checked int
	// Inconsistencies contains all detected issues, orphans first, each
	// group in ascending ref order.
	Inconsistencies []Inconsistency
	// Duration is how long the check took.
	Duration time.Duration
}

// OK reports whether the index and the store agree.
func (r *CheckResult) OK() bool {
	return len(r.Inconsistencies) == 0
}

// RefLister is the part of the index the check needs.
type RefLister interface {
	Refs(ctx context.Context) ([]int, error)
}

// CheckConsistency compares every reference registered in idx with the ids
// held by store. The store is the source of truth.
func CheckConsistency(ctx context.Context, idx RefLister, store *posts.Store) (*CheckResult, error) {
	start := time.Now()

	refs, err := idx.Refs(ctx)
	if err != nil {
		return nil, err
	}

	var issues []Inconsistency
	indexed := make(map[int]struct{}, len(refs))
	for _, ref := range refs {
		indexed[ref] = struct{}{}
		if _, ok := store.Get(ref); !ok {
			issues = append(issues, Inconsistency{
				Type:    InconsistencyOrphanRef,
				Ref:     ref,
				Details: "indexed reference without a matching post",
			})
		}
	}

	for _, id := range store.IDs() {
		if _, ok := indexed[id]; !ok {
			issues = append(issues, Inconsistency{
				Type:    InconsistencyMissingRef,
				Ref:     id,
				Details: "post missing from the index",
			})
		}
	}

	return &CheckResult{
		Checked:         max(len(refs), store.Len()),
		Inconsistencies: issues,
		Duration:        time.Since(start),
	}, nil
}
