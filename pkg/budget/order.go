package budget

import "sort"

// DefaultDisplayLimit is how many budgets the dashboard shows when the user
// has not picked an explicit selection.
const DefaultDisplayLimit = 3

// OrderingStore holds the user's ordered selection of budget ids surfaced on
// the dashboard. An empty store means "no selection": display falls back to
// creation order.
type OrderingStore struct {
	ids []string
}

func NewOrderingStore(ids ...string) *OrderingStore {
	return &OrderingStore{ids: append([]string(nil), ids...)}
}

// OrderingFromBudgets rebuilds the store from persisted display orders.
// Budgets without a stored position are not part of the selection.
func OrderingFromBudgets(budgets []BudgetWithSpending) *OrderingStore {
	var ordered []BudgetWithSpending
	for _, b := range budgets {
		if b.DisplayOrder > 0 {
			ordered = append(ordered, b)
		}
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].DisplayOrder < ordered[j].DisplayOrder
	})

	store := &OrderingStore{}
	for _, b := range ordered {
		store.ids = append(store.ids, b.ID)
	}
	return store
}

// Toggle removes the id when present, otherwise appends it at the end of the
// selection.
func (o *OrderingStore) Toggle(id string) {
	for i, existing := range o.ids {
		if existing == id {
			o.ids = append(o.ids[:i], o.ids[i+1:]...)
			return
		}
	}
	o.ids = append(o.ids, id)
}

// Remove prunes the id from the selection. Deleting a budget must call this
// (directly or by rebuilding the store) so no dangling reference survives.
func (o *OrderingStore) Remove(id string) {
	for i, existing := range o.ids {
		if existing == id {
			o.ids = append(o.ids[:i], o.ids[i+1:]...)
			return
		}
	}
}

// Clear empties the selection.
func (o *OrderingStore) Clear() {
	o.ids = nil
}

// IDs returns the selection in display order.
func (o *OrderingStore) IDs() []string {
	return append([]string(nil), o.ids...)
}

// ResolveDisplaySet returns the budgets to surface on the dashboard: the
// stored selection in its order (ids that no longer resolve are skipped), or
// the first limit budgets in creation order when no selection exists.
func (o *OrderingStore) ResolveDisplaySet(budgets []BudgetWithSpending, limit int) []BudgetWithSpending {
	if len(o.ids) == 0 {
		if limit < 0 {
			limit = 0
		}
		if limit > len(budgets) {
			limit = len(budgets)
		}
		return append([]BudgetWithSpending(nil), budgets[:limit]...)
	}

	byID := make(map[string]BudgetWithSpending, len(budgets))
	for _, b := range budgets {
		byID[b.ID] = b
	}

	var result []BudgetWithSpending
	for _, id := range o.ids {
		if b, ok := byID[id]; ok {
			result = append(result, b)
		}
	}
	return result
}
