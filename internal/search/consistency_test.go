package search

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cableblog/sitesearch/internal/posts"
)

func TestInconsistencyType_String(t *testing.T) {
	assert.Equal(t, "orphan_ref", InconsistencyOrphanRef.String())
	assert.Equal(t, "missing_ref", InconsistencyMissingRef.String())
	assert.Equal(t, "unknown", InconsistencyType(42).String())
}

func TestCheckConsistency_Agreeing(t *testing.T) {
	store, err := posts.NewStore(testPosts())
	require.NoError(t, err)

	result, err := CheckConsistency(context.Background(), &fakeIndex{refs: []int{0, 1, 2, 3}}, store)

	require.NoError(t, err)
	assert.True(t, result.OK())
	assert.Equal(t, 4, result.Checked)
}

func TestCheckConsistency_ReportsBothDirections(t *testing.T) {
	store, err := posts.NewStore(testPosts())
	require.NoError(t, err)

	result, err := CheckConsistency(context.Background(), &fakeIndex{refs: []int{0, 2, 7, 8}}, store)

	require.NoError(t, err)
	assert.False(t, result.OK())
	assert.Equal(t, []Inconsistency{
		{Type: InconsistencyOrphanRef, Ref: 7, Details: "indexed reference without a matching post"},
		{Type: InconsistencyOrphanRef, Ref: 8, Details: "indexed reference without a matching post"},
		{Type: InconsistencyMissingRef, Ref: 1, Details: "post missing from the index"},
		{Type: InconsistencyMissingRef, Ref: 3, Details: "post missing from the index"},
	}, result.Inconsistencies)
}

func TestCheckConsistency_RealIndex(t *testing.T) {
	c := buildTestContext(t, testPosts())

	result, err := CheckConsistency(context.Background(), c.Index(), c.Store())

	require.NoError(t, err)
	assert.True(t, result.OK())
}
