package budget

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"github.com/Fayeur9/money-manager/pkg/category"
)

type WorkflowState string

const (
	StateIdle             WorkflowState = "idle"
	StateCategorySelected WorkflowState = "category_selected"
	StateChildOptions     WorkflowState = "child_options_shown"
	StateSubmitting       WorkflowState = "submitting"
	StateDone             WorkflowState = "done"
	StateFailed           WorkflowState = "failed"
)

// ChildOption is one toggle row in the creation form: a child category of the
// selected category that can receive its own sub-budget in the same action.
// A child whose category already carries a top-level budget is shown but
// locked and can never be toggled on.
type ChildOption struct {
	Category category.Category
	Enabled  bool
	Amount   decimal.Decimal
	Locked   bool
}

// ChildFailure records a child budget that could not be created during
// submission.
type ChildFailure struct {
	CategoryId string
	Err        error
}

// CreationResult reports what the workflow actually created. When Failed is
// non-empty the parent and the listed children exist while the failed ones do
// not; the caller decides how to reconcile (the usual answer is a full
// re-fetch).
type CreationResult struct {
	Parent   Budget
	Children []Budget
	Failed   []ChildFailure
}

type budgetCreator interface {
	Create(ctx context.Context, req CreateBudgetRequest) (Budget, error)
}

// CreationWorkflow coordinates the creation of one parent budget plus zero or
// more child budgets in a single user action. Creation calls are strictly
// sequential: the parent first (its id is required by every child), then each
// enabled child. A parent failure aborts before any child is attempted.
type CreationWorkflow struct {
	creator  budgetCreator
	state    WorkflowState
	category category.Category
	amount   decimal.Decimal
	children []ChildOption
}

func NewCreationWorkflow(creator budgetCreator) *CreationWorkflow {
	return &CreationWorkflow{creator: creator, state: StateIdle}
}

func (w *CreationWorkflow) State() WorkflowState {
	return w.state
}

// SelectCategory picks the category the parent budget will attach to. When
// the category has children, one toggle row per child is populated (all
// disabled initially) and the workflow moves to StateChildOptions; rows whose
// category already has a top-level budget come back locked.
func (w *CreationWorkflow) SelectCategory(cat category.Category, idx *category.Index, existing []Budget) {
	w.category = cat
	w.amount = decimal.Zero
	w.children = nil
	w.state = StateCategorySelected

	rootBudgeted := make(map[string]bool)
	for _, b := range existing {
		if b.IsParent() {
			rootBudgeted[b.CategoryID] = true
		}
	}

	for _, child := range idx.ChildrenOf(cat.ID) {
		w.children = append(w.children, ChildOption{
			Category: child,
			Locked:   rootBudgeted[child.ID],
		})
	}
	if len(w.children) > 0 {
		w.state = StateChildOptions
	}
}

func (w *CreationWorkflow) SetParentAmount(amount decimal.Decimal) {
	w.amount = amount
}

// ToggleChild flips the enabled flag of one child row. Locked rows stay off.
func (w *CreationWorkflow) ToggleChild(categoryId string) {
	for i := range w.children {
		if w.children[i].Category.ID == categoryId && !w.children[i].Locked {
			w.children[i].Enabled = !w.children[i].Enabled
			return
		}
	}
}

func (w *CreationWorkflow) SetChildAmount(categoryId string, amount decimal.Decimal) {
	for i := range w.children {
		if w.children[i].Category.ID == categoryId {
			w.children[i].Amount = amount
			return
		}
	}
}

func (w *CreationWorkflow) Children() []ChildOption {
	return append([]ChildOption(nil), w.children...)
}

// Submit validates the form locally and drives the sequential creation.
// Without a parent amount nothing can be created: a child budget always
// requires a parent id, so enabled children alone are rejected before any
// network call. A failing child does not roll back the parent or the children
// created before it; the partial result is surfaced through ErrPartialCreation
// and the returned CreationResult.
func (w *CreationWorkflow) Submit(ctx context.Context) (CreationResult, error) {
	if w.state != StateCategorySelected && w.state != StateChildOptions {
		return CreationResult{}, fmt.Errorf("cannot submit from state %q", w.state)
	}

	hasParentAmount := w.amount.IsPositive()
	var enabled []ChildOption
	for _, child := range w.children {
		if child.Enabled && !child.Locked && child.Amount.IsPositive() {
			enabled = append(enabled, child)
		}
	}

	if !hasParentAmount && len(enabled) == 0 {
		return CreationResult{}, ErrNothingToCreate
	}
	if !hasParentAmount {
		return CreationResult{}, ErrChildrenRequireParent
	}

	w.state = StateSubmitting

	parent, err := w.creator.Create(ctx, CreateBudgetRequest{
		CategoryId: w.category.ID,
		Amount:     w.amount,
	})
	if err != nil {
		w.state = StateFailed
		return CreationResult{}, fmt.Errorf("failed to create parent budget: %w", err)
	}

	result := CreationResult{Parent: parent}
	for _, child := range enabled {
		created, err := w.creator.Create(ctx, CreateBudgetRequest{
			CategoryId:     child.Category.ID,
			Amount:         child.Amount,
			ParentBudgetId: parent.ID,
		})
		if err != nil {
			log.Warnf("child budget creation failed for category %s: %v", child.Category.ID, err)
			result.Failed = append(result.Failed, ChildFailure{CategoryId: child.Category.ID, Err: err})
			continue
		}
		result.Children = append(result.Children, created)
	}

	if len(result.Failed) > 0 {
		w.state = StateFailed
		return result, fmt.Errorf("%w: %d of %d failed", ErrPartialCreation, len(result.Failed), len(enabled))
	}

	w.state = StateDone
	return result, nil
}
