package budget

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// StubBudgetRepo keeps budgets in memory. Spending returned by
// GetAllWithSpending is registered per category through SetSpent.
type StubBudgetRepo struct {
	data  []Budget
	spent map[string]decimal.Decimal // category id -> spent
	meta  map[string][3]string       // category id -> name, icon, color
	// FailFor makes Store fail for the listed category ids.
	FailFor map[string]error
}

func NewStubBudgetRepo() *StubBudgetRepo {
	return &StubBudgetRepo{
		spent:   map[string]decimal.Decimal{},
		meta:    map[string][3]string{},
		FailFor: map[string]error{},
	}
}

func (s *StubBudgetRepo) Add(budgets ...Budget) {
	s.data = append(s.data, budgets...)
}

func (s *StubBudgetRepo) SetSpent(categoryId string, spent decimal.Decimal) {
	s.spent[categoryId] = spent
}

func (s *StubBudgetRepo) SetCategoryMeta(categoryId, name, icon, color string) {
	s.meta[categoryId] = [3]string{name, icon, color}
}

func (s *StubBudgetRepo) Store(ctx context.Context, userId int, budget Budget) error {
	if err := s.FailFor[budget.CategoryID]; err != nil {
		return err
	}
	s.data = append(s.data, budget)
	return nil
}

func (s *StubBudgetRepo) GetAll(ctx context.Context, userId int) ([]Budget, error) {
	result := append([]Budget(nil), s.data...)
	sortBudgets(result)
	return result, nil
}

func (s *StubBudgetRepo) GetByID(ctx context.Context, userId int, id string) (Budget, error) {
	for _, b := range s.data {
		if b.ID == id {
			return b, nil
		}
	}
	return Budget{}, ErrBudgetNotFound
}

func (s *StubBudgetRepo) GetAllWithSpending(ctx context.Context, userId int, from, to time.Time) ([]BudgetWithSpending, error) {
	budgets := append([]Budget(nil), s.data...)
	sortBudgets(budgets)

	result := make([]BudgetWithSpending, 0, len(budgets))
	for _, b := range budgets {
		entry := BudgetWithSpending{Budget: b, Spent: s.spent[b.CategoryID]}
		if meta, ok := s.meta[b.CategoryID]; ok {
			entry.CategoryName = meta[0]
			entry.CategoryIcon = meta[1]
			entry.CategoryColor = meta[2]
		}
		result = append(result, entry)
	}
	return result, nil
}

func (s *StubBudgetRepo) FindRootByCategory(ctx context.Context, userId int, categoryId string) (Budget, bool, error) {
	for _, b := range s.data {
		if b.CategoryID == categoryId && b.IsParent() {
			return b, true, nil
		}
	}
	return Budget{}, false, nil
}

func (s *StubBudgetRepo) FindByCategory(ctx context.Context, userId int, categoryId string) (Budget, bool, error) {
	var found Budget
	ok := false
	for _, b := range s.data {
		if b.CategoryID != categoryId {
			continue
		}
		if b.IsParent() {
			return b, true, nil
		}
		if !ok {
			found, ok = b, true
		}
	}
	return found, ok, nil
}

func (s *StubBudgetRepo) ChildExistsForCategory(ctx context.Context, parentBudgetId, categoryId string) (bool, error) {
	for _, b := range s.data {
		if b.ParentBudgetID == parentBudgetId && b.CategoryID == categoryId {
			return true, nil
		}
	}
	return false, nil
}

func (s *StubBudgetRepo) IsParentBudgetWithChildren(ctx context.Context, userId int, categoryId string) (bool, error) {
	for _, b := range s.data {
		if b.CategoryID != categoryId || !b.IsParent() {
			continue
		}
		for _, child := range s.data {
			if child.ParentBudgetID == b.ID {
				return true, nil
			}
		}
	}
	return false, nil
}

func (s *StubBudgetRepo) UpdateAmount(ctx context.Context, userId int, id string, amount decimal.Decimal) (bool, error) {
	for i := range s.data {
		if s.data[i].ID == id {
			s.data[i].Amount = amount
			return true, nil
		}
	}
	return false, nil
}

func (s *StubBudgetRepo) DeleteCascade(ctx context.Context, userId int, id string) (int, bool, error) {
	var kept []Budget
	deletedChildren := 0
	deleted := false
	for _, b := range s.data {
		switch {
		case b.ID == id:
			deleted = true
		case b.ParentBudgetID == id:
			deletedChildren++
		default:
			kept = append(kept, b)
		}
	}
	s.data = kept
	return deletedChildren, deleted, nil
}

func (s *StubBudgetRepo) UpdateDisplayOrder(ctx context.Context, userId int, budgetIds []string) error {
	position := map[string]int{}
	for i, id := range budgetIds {
		position[id] = i + 1
	}
	for i := range s.data {
		s.data[i].DisplayOrder = position[s.data[i].ID]
	}
	return nil
}

func (s *StubBudgetRepo) Cleanup() {
	s.data = nil
	s.spent = map[string]decimal.Decimal{}
	s.meta = map[string][3]string{}
	s.FailFor = map[string]error{}
}

// sortBudgets mirrors the listing order of the persistent repo: parents first,
// then dashboard position, then creation order.
func sortBudgets(budgets []Budget) {
	sort.SliceStable(budgets, func(i, j int) bool {
		a, b := budgets[i], budgets[j]
		if a.IsParent() != b.IsParent() {
			return a.IsParent()
		}
		aOrdered, bOrdered := a.DisplayOrder > 0, b.DisplayOrder > 0
		if aOrdered != bOrdered {
			return aOrdered
		}
		if aOrdered && a.DisplayOrder != b.DisplayOrder {
			return a.DisplayOrder < b.DisplayOrder
		}
		return a.CreatedAt.Before(b.CreatedAt)
	})
}
