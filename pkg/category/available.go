package category

// Available returns the categories that can still receive a new budget, given
// the set of category ids that already carry one. Root categories come first,
// in input order, each immediately followed by its unbudgeted children. Child
// categories whose root did not make the list (because it is budgeted or
// missing) are appended last.
func Available(categories []Category, budgeted map[string]bool) []Category {
	available := make([]Category, 0, len(categories))
	for _, c := range categories {
		if !budgeted[c.ID] {
			available = append(available, c)
		}
	}

	listedRoots := make(map[string]bool)
	result := make([]Category, 0, len(available))
	for _, c := range available {
		if !c.IsRoot() {
			continue
		}
		listedRoots[c.ID] = true
		result = append(result, c)
		for _, child := range available {
			if child.ParentId == c.ID {
				result = append(result, child)
			}
		}
	}

	// Orphans: unbudgeted children whose parent is budgeted or unknown.
	for _, c := range available {
		if !c.IsRoot() && !listedRoots[c.ParentId] {
			result = append(result, c)
		}
	}

	return result
}

// AvailableChildren returns the categories that can become child budgets under
// a parent budget attached to parentCategoryID: direct children of that
// category which do not already carry a budget.
func AvailableChildren(parentCategoryID string, idx *Index, budgeted map[string]bool) []Category {
	var result []Category
	for _, child := range idx.ChildrenOf(parentCategoryID) {
		if !budgeted[child.ID] {
			result = append(result, child)
		}
	}
	return result
}
