package budget

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"github.com/Fayeur9/money-manager/internal/event_bus"
	"github.com/Fayeur9/money-manager/internal/utils"
	"github.com/Fayeur9/money-manager/pkg/category"
	"github.com/Fayeur9/money-manager/pkg/transaction"
	"github.com/Fayeur9/money-manager/pkg/user"
)

type CreateBudgetRequest struct {
	CategoryId string
	Amount     decimal.Decimal
	// ParentBudgetId is empty when creating a top-level budget.
	ParentBudgetId string
}

type UpdateBudgetRequest struct {
	Amount decimal.Decimal
	// CategoryId must match the stored budget when set. The category of a
	// budget is fixed for its lifetime; to move a budget the user deletes it
	// and creates a new one.
	CategoryId string
}

// CheckResult answers "would spending this amount exceed a budget". The
// receiving budget is the one attached to the category itself or, failing
// that, to its closest budgeted ancestor. HasBudget is false when neither
// exists, in which case every other field is zero.
type CheckResult struct {
	HasBudget   bool
	WouldExceed bool
	BudgetId    string
	CategoryId  string
	Amount      decimal.Decimal
	Spent       decimal.Decimal
	NewTotal    decimal.Decimal
	// RemainingBefore is the budget headroom before the checked expense; it
	// can be negative when the budget is already blown.
	RemainingBefore decimal.Decimal
	// ExcessAmount is how far the new total overshoots the budget, zero when
	// the expense still fits.
	ExcessAmount decimal.Decimal
}

// Summary is the condensed dashboard view: overall consumption across all
// top-level budgets plus the handful of budgets the user pinned (or the first
// few by creation order when nothing is pinned).
type Summary struct {
	TotalAmount    decimal.Decimal
	TotalSpent     decimal.Decimal
	TotalRemaining decimal.Decimal
	Status         Status
	Displayed      []Node
}

type Service interface {
	ListWithSpending(ctx context.Context) ([]BudgetWithSpending, error)
	GetHierarchy(ctx context.Context) ([]Node, error)
	Create(ctx context.Context, req CreateBudgetRequest) (Budget, error)
	Update(ctx context.Context, id string, req UpdateBudgetRequest) (Budget, error)
	Delete(ctx context.Context, id string) (DeletePlan, error)
	UpdateDisplayOrder(ctx context.Context, budgetIds []string) error
	CheckExceeded(ctx context.Context, categoryId string, amount decimal.Decimal) (CheckResult, error)
	AvailableCategories(ctx context.Context) ([]category.Category, error)
	AvailableChildCategories(ctx context.Context, budgetId string) ([]category.Category, error)
	GetSummary(ctx context.Context) (Summary, error)
}

type BudgetServiceImpl struct {
	repo            Repo
	categoryRepo    category.Repo
	transactionRepo transaction.Repo
	eventBus        *event_bus.EventBus
	clock           utils.Clock
}

func NewBudgetService(
	repo Repo,
	categoryRepo category.Repo,
	transactionRepo transaction.Repo,
	eventBus *event_bus.EventBus,
	clock utils.Clock,
) *BudgetServiceImpl {
	return &BudgetServiceImpl{
		repo:            repo,
		categoryRepo:    categoryRepo,
		transactionRepo: transactionRepo,
		eventBus:        eventBus,
		clock:           clock,
	}
}

func (s *BudgetServiceImpl) ListWithSpending(ctx context.Context) ([]BudgetWithSpending, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get current user: %w", err)
	}
	from, to := utils.MonthRange(s.clock.Now())
	return s.repo.GetAllWithSpending(ctx, userId, from, to)
}

func (s *BudgetServiceImpl) GetHierarchy(ctx context.Context) ([]Node, error) {
	budgets, err := s.ListWithSpending(ctx)
	if err != nil {
		return nil, err
	}
	idx, err := s.categoryIndex(ctx)
	if err != nil {
		return nil, err
	}
	return BuildHierarchy(budgets, idx), nil
}

func (s *BudgetServiceImpl) Create(ctx context.Context, req CreateBudgetRequest) (Budget, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return Budget{}, fmt.Errorf("failed to get current user: %w", err)
	}
	if !req.Amount.IsPositive() {
		return Budget{}, ErrInvalidAmount
	}

	cat, err := s.categoryRepo.GetByID(ctx, req.CategoryId)
	if err != nil {
		return Budget{}, err
	}
	if cat.Kind != category.KindExpense {
		return Budget{}, ErrNotExpenseCategory
	}

	if req.ParentBudgetId != "" {
		if err := s.validateChildCreation(ctx, userId, req); err != nil {
			return Budget{}, err
		}
	} else {
		if _, exists, err := s.repo.FindRootByCategory(ctx, userId, req.CategoryId); err != nil {
			return Budget{}, err
		} else if exists {
			return Budget{}, ErrBudgetExists
		}
	}

	budget := Budget{
		ID:             uuid.NewString(),
		UserID:         userId,
		CategoryID:     req.CategoryId,
		ParentBudgetID: req.ParentBudgetId,
		Amount:         req.Amount,
		CreatedAt:      s.clock.Now(),
	}
	if err := s.repo.Store(ctx, userId, budget); err != nil {
		return Budget{}, err
	}

	log.Infof("created budget %s for category %s", budget.ID, budget.CategoryID)
	s.eventBus.Publish(event_bus.NewEvent(ctx, event_bus.BudgetCreated, event_bus.BudgetCreatedData{
		BudgetId:       budget.ID,
		CategoryId:     budget.CategoryID,
		ParentBudgetId: budget.ParentBudgetID,
	}))
	return budget, nil
}

func (s *BudgetServiceImpl) validateChildCreation(ctx context.Context, userId int, req CreateBudgetRequest) error {
	parent, err := s.repo.GetByID(ctx, userId, req.ParentBudgetId)
	if err != nil {
		return err
	}
	if !parent.IsParent() {
		return ErrChildNesting
	}

	if exists, err := s.repo.ChildExistsForCategory(ctx, req.ParentBudgetId, req.CategoryId); err != nil {
		return err
	} else if exists {
		return ErrChildBudgetExists
	}

	// A category that heads its own budget tree cannot appear again as a
	// child somewhere else.
	if isParent, err := s.repo.IsParentBudgetWithChildren(ctx, userId, req.CategoryId); err != nil {
		return err
	} else if isParent {
		return ErrCategoryIsParentBudget
	}
	if _, exists, err := s.repo.FindRootByCategory(ctx, userId, req.CategoryId); err != nil {
		return err
	} else if exists {
		return ErrBudgetExists
	}
	return nil
}

func (s *BudgetServiceImpl) Update(ctx context.Context, id string, req UpdateBudgetRequest) (Budget, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return Budget{}, fmt.Errorf("failed to get current user: %w", err)
	}

	existing, err := s.repo.GetByID(ctx, userId, id)
	if err != nil {
		return Budget{}, err
	}
	if req.CategoryId != "" && req.CategoryId != existing.CategoryID {
		return Budget{}, ErrCategoryImmutable
	}
	if !req.Amount.IsPositive() {
		return Budget{}, ErrInvalidAmount
	}

	updated, err := s.repo.UpdateAmount(ctx, userId, id, req.Amount)
	if err != nil {
		return Budget{}, err
	}
	if !updated {
		return Budget{}, ErrBudgetNotFound
	}
	existing.Amount = req.Amount
	return existing, nil
}

func (s *BudgetServiceImpl) Delete(ctx context.Context, id string) (DeletePlan, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return DeletePlan{}, fmt.Errorf("failed to get current user: %w", err)
	}

	target, err := s.repo.GetByID(ctx, userId, id)
	if err != nil {
		return DeletePlan{}, err
	}
	all, err := s.repo.GetAll(ctx, userId)
	if err != nil {
		return DeletePlan{}, err
	}
	plan := PlanDelete(target, all)

	deletedChildren, deleted, err := s.repo.DeleteCascade(ctx, userId, id)
	if err != nil {
		return DeletePlan{}, err
	}
	if !deleted {
		return DeletePlan{}, ErrBudgetNotFound
	}

	log.Infof("deleted budget %s together with %d children", id, deletedChildren)
	s.eventBus.Publish(event_bus.NewEvent(ctx, event_bus.BudgetDeleted, event_bus.BudgetDeletedData{
		BudgetId:        id,
		DeletedChildren: deletedChildren,
	}))
	return plan, nil
}

func (s *BudgetServiceImpl) UpdateDisplayOrder(ctx context.Context, budgetIds []string) error {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return fmt.Errorf("failed to get current user: %w", err)
	}
	return s.repo.UpdateDisplayOrder(ctx, userId, budgetIds)
}

func (s *BudgetServiceImpl) CheckExceeded(ctx context.Context, categoryId string, amount decimal.Decimal) (CheckResult, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return CheckResult{}, fmt.Errorf("failed to get current user: %w", err)
	}

	idx, err := s.categoryIndex(ctx)
	if err != nil {
		return CheckResult{}, err
	}

	budget, budgetedCategory, found, err := s.findBudgetedAncestor(ctx, userId, categoryId, idx)
	if err != nil {
		return CheckResult{}, err
	}
	if !found {
		return CheckResult{}, nil
	}

	from, to := utils.MonthRange(s.clock.Now())
	spent, err := s.transactionRepo.MonthlySpend(ctx, userId, budgetedCategory, true, from, to)
	if err != nil {
		return CheckResult{}, err
	}

	newTotal := spent.Add(amount)
	wouldExceed := newTotal.GreaterThan(budget.Amount)
	excess := decimal.Zero
	if wouldExceed {
		excess = newTotal.Sub(budget.Amount)
	}
	return CheckResult{
		HasBudget:       true,
		WouldExceed:     wouldExceed,
		BudgetId:        budget.ID,
		CategoryId:      budgetedCategory,
		Amount:          budget.Amount,
		Spent:           spent,
		NewTotal:        newTotal,
		RemainingBefore: budget.Amount.Sub(spent),
		ExcessAmount:    excess,
	}, nil
}

// findBudgetedAncestor walks from the category up the tree and returns the
// first budget it meets, starting with the category itself. A child budget on
// the category wins over its parent's budget, matching the nearest-level rule
// of the check endpoint.
func (s *BudgetServiceImpl) findBudgetedAncestor(ctx context.Context, userId int, categoryId string, idx *category.Index) (Budget, string, bool, error) {
	current := categoryId
	for current != "" {
		budget, exists, err := s.repo.FindByCategory(ctx, userId, current)
		if err != nil {
			return Budget{}, "", false, err
		}
		if exists {
			return budget, current, true, nil
		}
		parent, ok := idx.ParentOf(current)
		if !ok {
			break
		}
		current = parent.ID
	}
	return Budget{}, "", false, nil
}

func (s *BudgetServiceImpl) AvailableCategories(ctx context.Context) ([]category.Category, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get current user: %w", err)
	}

	categories, err := s.categoryRepo.GetAll(ctx, userId, category.KindExpense)
	if err != nil {
		return nil, err
	}
	budgeted, err := s.budgetedCategoryIds(ctx, userId)
	if err != nil {
		return nil, err
	}
	return category.Available(categories, budgeted), nil
}

func (s *BudgetServiceImpl) AvailableChildCategories(ctx context.Context, budgetId string) ([]category.Category, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get current user: %w", err)
	}

	budget, err := s.repo.GetByID(ctx, userId, budgetId)
	if err != nil {
		return nil, err
	}
	if !budget.IsParent() {
		return nil, ErrChildNesting
	}

	idx, err := s.categoryIndex(ctx)
	if err != nil {
		return nil, err
	}
	budgeted, err := s.budgetedCategoryIds(ctx, userId)
	if err != nil {
		return nil, err
	}
	return category.AvailableChildren(budget.CategoryID, idx, budgeted), nil
}

func (s *BudgetServiceImpl) GetSummary(ctx context.Context) (Summary, error) {
	budgets, err := s.ListWithSpending(ctx)
	if err != nil {
		return Summary{}, err
	}
	idx, err := s.categoryIndex(ctx)
	if err != nil {
		return Summary{}, err
	}

	nodes := BuildHierarchy(budgets, idx)
	nodeByID := make(map[string]Node, len(nodes))
	// Parent budgets only: a child's spend is already part of its parent
	// node, counting both would double it.
	var parents []BudgetWithSpending
	summary := Summary{
		TotalAmount:    decimal.Zero,
		TotalSpent:     decimal.Zero,
		TotalRemaining: decimal.Zero,
	}
	for _, node := range nodes {
		nodeByID[node.Budget.ID] = node
		parents = append(parents, node.Budget)
		summary.TotalAmount = summary.TotalAmount.Add(node.Budget.Amount)
		summary.TotalSpent = summary.TotalSpent.Add(node.Spent)
	}
	summary.TotalRemaining = summary.TotalAmount.Sub(summary.TotalSpent)
	summary.Status = CalculateProgress(summary.TotalSpent, summary.TotalAmount).Status

	ordering := OrderingFromBudgets(budgets)
	for _, b := range ordering.ResolveDisplaySet(parents, DefaultDisplayLimit) {
		summary.Displayed = append(summary.Displayed, nodeByID[b.ID])
	}
	return summary, nil
}

func (s *BudgetServiceImpl) categoryIndex(ctx context.Context) (*category.Index, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get current user: %w", err)
	}
	categories, err := s.categoryRepo.GetAll(ctx, userId, category.KindExpense)
	if err != nil {
		return nil, err
	}
	return category.NewIndex(categories), nil
}

func (s *BudgetServiceImpl) budgetedCategoryIds(ctx context.Context, userId int) (map[string]bool, error) {
	budgets, err := s.repo.GetAll(ctx, userId)
	if err != nil {
		return nil, err
	}
	budgeted := make(map[string]bool, len(budgets))
	for _, b := range budgets {
		budgeted[b.CategoryID] = true
	}
	return budgeted, nil
}
