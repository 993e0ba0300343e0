package transaction

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// StubTransactionRepo keeps transactions in memory. Category parent links are
// registered explicitly so MonthlySpend can resolve subtrees without a
// database.
type StubTransactionRepo struct {
	data    []Transaction
	parents map[string]string // child category id -> parent category id
}

func NewStubTransactionRepo() *StubTransactionRepo {
	return &StubTransactionRepo{parents: map[string]string{}}
}

func (s *StubTransactionRepo) LinkCategory(childId, parentId string) {
	s.parents[childId] = parentId
}

func (s *StubTransactionRepo) Store(ctx context.Context, userId int, transaction Transaction) (string, error) {
	s.data = append(s.data, transaction)
	return transaction.ID, nil
}

func (s *StubTransactionRepo) List(ctx context.Context, userId int, filter Filter) ([]Transaction, error) {
	var result []Transaction
	for _, t := range s.data {
		if filter.CategoryID != "" && !s.matches(t.CategoryID, filter.CategoryID, filter.IncludeChildren) {
			continue
		}
		if !filter.From.IsZero() && t.Date.Before(filter.From) {
			continue
		}
		if !filter.To.IsZero() && t.Date.After(filter.To) {
			continue
		}
		result = append(result, t)
		if filter.Limit > 0 && len(result) == filter.Limit {
			break
		}
	}
	return result, nil
}

func (s *StubTransactionRepo) MonthlySpend(ctx context.Context, userId int, categoryId string, includeChildren bool, from, to time.Time) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, t := range s.data {
		if t.Kind != KindExpense {
			continue
		}
		if !s.matches(t.CategoryID, categoryId, includeChildren) {
			continue
		}
		if t.Date.Before(from) || t.Date.After(to) {
			continue
		}
		total = total.Add(t.Amount)
	}
	return total, nil
}

func (s *StubTransactionRepo) matches(transactionCategory, wanted string, includeChildren bool) bool {
	if transactionCategory == wanted {
		return true
	}
	return includeChildren && s.parents[transactionCategory] == wanted
}

func (s *StubTransactionRepo) Cleanup() {
	s.data = nil
	s.parents = map[string]string{}
}
