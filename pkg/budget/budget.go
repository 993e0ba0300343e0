package budget

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// Budget caps monthly spending for one category. The budget hierarchy is
// independent from the category hierarchy and at most two levels deep: a
// budget referencing a parent budget can never have children of its own.
type Budget struct {
	ID         string
	UserID     int
	CategoryID string
	// ParentBudgetID is empty for parent budgets.
	ParentBudgetID string
	Amount         decimal.Decimal
	// DisplayOrder is 0 when the budget is not part of the dashboard
	// selection; stored positions start at 1.
	DisplayOrder int
	CreatedAt    time.Time
}

// IsParent reports whether the budget sits at the top of the budget tree.
func (b Budget) IsParent() bool {
	return b.ParentBudgetID == ""
}

// BudgetWithSpending is a budget joined with its category metadata and the
// expense total of the current calendar month, computed over the category and
// all its subcategories.
type BudgetWithSpending struct {
	Budget
	CategoryName  string
	CategoryIcon  string
	CategoryColor string
	Spent         decimal.Decimal
}

var (
	ErrBudgetNotFound         = errors.New("budget not found")
	ErrBudgetExists           = errors.New("a budget already exists for this category")
	ErrChildBudgetExists      = errors.New("this category already has a budget under this parent")
	ErrCategoryIsParentBudget = errors.New("this category is already a parent budget with children")
	ErrNotExpenseCategory     = errors.New("budgets can only be created for expense categories")
	ErrChildNesting           = errors.New("a child budget cannot have children")
	ErrInvalidAmount          = errors.New("budget amount must be positive")
	ErrCategoryImmutable      = errors.New("budget category cannot be changed after creation")
	ErrNothingToCreate        = errors.New("at least one budget amount is required")
	ErrChildrenRequireParent  = errors.New("child budgets require a parent budget amount")
	ErrPartialCreation        = errors.New("some child budgets could not be created")
)
