package budget

import (
	"github.com/shopspring/decimal"

	"github.com/Fayeur9/money-manager/pkg/category"
)

// ChildNode is a child budget inside a parent node.
type ChildNode struct {
	Budget   BudgetWithSpending
	Progress Progress
}

// Node is a parent budget with its attached child budgets. Spent is the
// effective consumption used for display: the sum of the children's spend when
// children exist, otherwise the parent category's own subtree spend. Direct
// transactions of a parent category that owns child budgets stay retrievable
// through the transaction listing but are not part of this total.
type Node struct {
	Budget   BudgetWithSpending
	Spent    decimal.Decimal
	Progress Progress
	Children []ChildNode
}

// BuildHierarchy partitions a flat budget collection into parent nodes with
// their children, preserving the input order of the parents. Category
// metadata missing from a record (e.g. a budget appended locally right after
// creation) is backfilled from the index.
func BuildHierarchy(budgets []BudgetWithSpending, idx *category.Index) []Node {
	var parents []BudgetWithSpending
	children := make(map[string][]BudgetWithSpending)
	for _, b := range budgets {
		if b.IsParent() {
			parents = append(parents, b)
		} else {
			children[b.ParentBudgetID] = append(children[b.ParentBudgetID], b)
		}
	}

	nodes := make([]Node, 0, len(parents))
	for _, parent := range parents {
		fillCategoryMeta(&parent, idx)
		node := Node{Budget: parent}

		group := children[parent.ID]
		if len(group) == 0 {
			node.Spent = parent.Spent
		} else {
			total := decimal.Zero
			for _, child := range group {
				fillCategoryMeta(&child, idx)
				total = total.Add(child.Spent)
				node.Children = append(node.Children, ChildNode{
					Budget:   child,
					Progress: CalculateProgress(child.Spent, child.Amount),
				})
			}
			node.Spent = total
		}

		node.Progress = CalculateProgress(node.Spent, parent.Amount)
		nodes = append(nodes, node)
	}
	return nodes
}

func fillCategoryMeta(b *BudgetWithSpending, idx *category.Index) {
	if b.CategoryName != "" || idx == nil {
		return
	}
	if c, ok := idx.ByID(b.CategoryID); ok {
		b.CategoryName = c.Name
		b.CategoryIcon = c.Icon
		b.CategoryColor = c.Color
	}
}
