package category

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCategories() []Category {
	return []Category{
		{ID: "groceries", Name: "Groceries"},
		{ID: "supermarket", Name: "Supermarket", ParentId: "groceries"},
		{ID: "restaurants", Name: "Restaurants", ParentId: "groceries"},
		{ID: "transport", Name: "Transport"},
	}
}

func TestIndex_ByID(t *testing.T) {
	idx := NewIndex(testCategories())

	c, ok := idx.ByID("supermarket")
	require.True(t, ok)
	assert.Equal(t, "Supermarket", c.Name)

	_, ok = idx.ByID("missing")
	assert.False(t, ok)
}

func TestIndex_ChildrenOf(t *testing.T) {
	idx := NewIndex(testCategories())

	children := idx.ChildrenOf("groceries")
	require.Len(t, children, 2)
	assert.Equal(t, "supermarket", children[0].ID)
	assert.Equal(t, "restaurants", children[1].ID)

	assert.Empty(t, idx.ChildrenOf("transport"))
	assert.True(t, idx.HasChildren("groceries"))
	assert.False(t, idx.HasChildren("transport"))
}

func TestIndex_Roots(t *testing.T) {
	idx := NewIndex(testCategories())

	roots := idx.Roots()
	require.Len(t, roots, 2)
	assert.Equal(t, "groceries", roots[0].ID)
	assert.Equal(t, "transport", roots[1].ID)
}

func TestIndex_ParentOf(t *testing.T) {
	idx := NewIndex(testCategories())

	parent, ok := idx.ParentOf("supermarket")
	require.True(t, ok)
	assert.Equal(t, "groceries", parent.ID)

	_, ok = idx.ParentOf("groceries")
	assert.False(t, ok)

	_, ok = idx.ParentOf("missing")
	assert.False(t, ok)
}
