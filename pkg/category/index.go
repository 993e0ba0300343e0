package category

// Index provides id and parent lookups over a flat category collection.
// It preserves the input order of the collection for all listing operations.
type Index struct {
	ordered  []Category
	byID     map[string]Category
	children map[string][]Category
}

func NewIndex(categories []Category) *Index {
	idx := &Index{
		ordered:  categories,
		byID:     make(map[string]Category, len(categories)),
		children: make(map[string][]Category),
	}
	for _, c := range categories {
		idx.byID[c.ID] = c
		if c.ParentId != "" {
			idx.children[c.ParentId] = append(idx.children[c.ParentId], c)
		}
	}
	return idx
}

// ByID returns the category with the given id.
func (idx *Index) ByID(id string) (Category, bool) {
	c, ok := idx.byID[id]
	return c, ok
}

// ChildrenOf returns the direct children of a category in input order.
func (idx *Index) ChildrenOf(id string) []Category {
	return idx.children[id]
}

// HasChildren reports whether the category has at least one direct child.
func (idx *Index) HasChildren(id string) bool {
	return len(idx.children[id]) > 0
}

// Roots returns all root categories in input order.
func (idx *Index) Roots() []Category {
	var roots []Category
	for _, c := range idx.ordered {
		if c.IsRoot() {
			roots = append(roots, c)
		}
	}
	return roots
}

// ParentOf returns the parent of a category, if it has one.
func (idx *Index) ParentOf(id string) (Category, bool) {
	c, ok := idx.byID[id]
	if !ok || c.ParentId == "" {
		return Category{}, false
	}
	return idx.ByID(c.ParentId)
}

// All returns the indexed categories in input order.
func (idx *Index) All() []Category {
	return idx.ordered
}
