package category

type Kind string

const (
	KindExpense Kind = "expense"
	KindIncome  Kind = "income"
)

// Category is read-only from the budget engine's perspective; creation and
// editing happen through the category management routes of the main app.
// The tree is at most two levels deep: a category with ParentId set never has
// children of its own.
type Category struct {
	ID     string
	UserID int
	Name   string
	Kind   Kind
	// ParentId is empty for root categories.
	ParentId string
	Color    string
	Icon     string
}

// IsRoot reports whether the category sits at the top of the tree.
func (c Category) IsRoot() bool {
	return c.ParentId == ""
}
