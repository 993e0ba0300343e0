package budget

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Fayeur9/money-manager/internal/event_bus"
	"github.com/Fayeur9/money-manager/internal/utils"
	"github.com/Fayeur9/money-manager/pkg/category"
	"github.com/Fayeur9/money-manager/pkg/transaction"
	"github.com/Fayeur9/money-manager/pkg/user"
)

type serviceFixture struct {
	repo            *StubBudgetRepo
	categoryRepo    *category.StubCategoryRepo
	transactionRepo *transaction.StubTransactionRepo
	bus             *event_bus.EventBus
	clock           *utils.MockClock
	service         *BudgetServiceImpl
}

func newServiceFixture() *serviceFixture {
	f := &serviceFixture{
		repo:            NewStubBudgetRepo(),
		categoryRepo:    category.NewStubCategoryRepo(),
		transactionRepo: transaction.NewStubTransactionRepo(),
		bus:             event_bus.NewEventBus(),
		clock:           &utils.MockClock{FixedNow: time.Date(2026, 8, 15, 12, 0, 0, 0, time.UTC)},
	}
	f.service = NewBudgetService(f.repo, f.categoryRepo, f.transactionRepo, f.bus, f.clock)
	return f
}

func (f *serviceFixture) seedGroceriesTree() {
	f.categoryRepo.Add(
		category.Category{ID: "c-groceries", Name: "Groceries", Kind: category.KindExpense},
		category.Category{ID: "c-supermarket", Name: "Supermarket", Kind: category.KindExpense, ParentId: "c-groceries"},
		category.Category{ID: "c-restaurants", Name: "Restaurants", Kind: category.KindExpense, ParentId: "c-groceries"},
		category.Category{ID: "c-transport", Name: "Transport", Kind: category.KindExpense},
		category.Category{ID: "c-salary", Name: "Salary", Kind: category.KindIncome},
	)
}

func testCtx() context.Context {
	return user.WithUser(context.Background(), user.User{Id: 1})
}

func TestBudgetService_Create(t *testing.T) {
	ctx := testCtx()

	t.Run("creates a top-level budget and publishes an event", func(t *testing.T) {
		f := newServiceFixture()
		f.seedGroceriesTree()

		var published []event_bus.Event
		f.bus.Subscribe(event_bus.BudgetCreated, func(e event_bus.Event) error {
			published = append(published, e)
			return nil
		})

		created, err := f.service.Create(ctx, CreateBudgetRequest{
			CategoryId: "c-groceries",
			Amount:     decimal.NewFromInt(500),
		})

		require.NoError(t, err)
		assert.NotEmpty(t, created.ID)
		assert.True(t, created.IsParent())
		require.Len(t, published, 1)
		data := published[0].Data.(event_bus.BudgetCreatedData)
		assert.Equal(t, created.ID, data.BudgetId)
	})

	t.Run("rejects a non-positive amount", func(t *testing.T) {
		f := newServiceFixture()
		f.seedGroceriesTree()

		_, err := f.service.Create(ctx, CreateBudgetRequest{CategoryId: "c-groceries", Amount: decimal.Zero})

		assert.ErrorIs(t, err, ErrInvalidAmount)
	})

	t.Run("rejects an income category", func(t *testing.T) {
		f := newServiceFixture()
		f.seedGroceriesTree()

		_, err := f.service.Create(ctx, CreateBudgetRequest{CategoryId: "c-salary", Amount: decimal.NewFromInt(100)})

		assert.ErrorIs(t, err, ErrNotExpenseCategory)
	})

	t.Run("rejects an unknown category", func(t *testing.T) {
		f := newServiceFixture()

		_, err := f.service.Create(ctx, CreateBudgetRequest{CategoryId: "missing", Amount: decimal.NewFromInt(100)})

		assert.ErrorIs(t, err, category.ErrCategoryNotFound)
	})

	t.Run("rejects a second top-level budget for the same category", func(t *testing.T) {
		f := newServiceFixture()
		f.seedGroceriesTree()
		f.repo.Add(Budget{ID: "b-1", CategoryID: "c-groceries"})

		_, err := f.service.Create(ctx, CreateBudgetRequest{CategoryId: "c-groceries", Amount: decimal.NewFromInt(100)})

		assert.ErrorIs(t, err, ErrBudgetExists)
	})

	t.Run("creates a child budget under a top-level parent", func(t *testing.T) {
		f := newServiceFixture()
		f.seedGroceriesTree()
		f.repo.Add(Budget{ID: "b-parent", CategoryID: "c-groceries"})

		created, err := f.service.Create(ctx, CreateBudgetRequest{
			CategoryId:     "c-supermarket",
			Amount:         decimal.NewFromInt(300),
			ParentBudgetId: "b-parent",
		})

		require.NoError(t, err)
		assert.Equal(t, "b-parent", created.ParentBudgetID)
	})

	t.Run("rejects a child under a child budget", func(t *testing.T) {
		f := newServiceFixture()
		f.seedGroceriesTree()
		f.repo.Add(
			Budget{ID: "b-parent", CategoryID: "c-groceries"},
			Budget{ID: "b-child", CategoryID: "c-supermarket", ParentBudgetID: "b-parent"},
		)

		_, err := f.service.Create(ctx, CreateBudgetRequest{
			CategoryId:     "c-restaurants",
			Amount:         decimal.NewFromInt(50),
			ParentBudgetId: "b-child",
		})

		assert.ErrorIs(t, err, ErrChildNesting)
	})

	t.Run("rejects a duplicate child category under the same parent", func(t *testing.T) {
		f := newServiceFixture()
		f.seedGroceriesTree()
		f.repo.Add(
			Budget{ID: "b-parent", CategoryID: "c-groceries"},
			Budget{ID: "b-child", CategoryID: "c-supermarket", ParentBudgetID: "b-parent"},
		)

		_, err := f.service.Create(ctx, CreateBudgetRequest{
			CategoryId:     "c-supermarket",
			Amount:         decimal.NewFromInt(50),
			ParentBudgetId: "b-parent",
		})

		assert.ErrorIs(t, err, ErrChildBudgetExists)
	})

	t.Run("rejects a child for a category heading its own budget tree", func(t *testing.T) {
		f := newServiceFixture()
		f.seedGroceriesTree()
		f.repo.Add(
			Budget{ID: "b-parent", CategoryID: "c-groceries"},
			Budget{ID: "b-child", CategoryID: "c-supermarket", ParentBudgetID: "b-parent"},
			Budget{ID: "b-transport", CategoryID: "c-transport"},
		)

		_, err := f.service.Create(ctx, CreateBudgetRequest{
			CategoryId:     "c-groceries",
			Amount:         decimal.NewFromInt(50),
			ParentBudgetId: "b-transport",
		})

		assert.ErrorIs(t, err, ErrCategoryIsParentBudget)
	})

	t.Run("requires a user in the context", func(t *testing.T) {
		f := newServiceFixture()

		_, err := f.service.Create(context.Background(), CreateBudgetRequest{CategoryId: "c", Amount: decimal.NewFromInt(1)})

		assert.ErrorIs(t, err, user.ErrNoUser)
	})
}

func TestBudgetService_Update(t *testing.T) {
	ctx := testCtx()

	t.Run("updates the amount", func(t *testing.T) {
		f := newServiceFixture()
		f.repo.Add(Budget{ID: "b-1", CategoryID: "c-groceries", Amount: decimal.NewFromInt(500)})

		updated, err := f.service.Update(ctx, "b-1", UpdateBudgetRequest{Amount: decimal.NewFromInt(650)})

		require.NoError(t, err)
		assert.True(t, updated.Amount.Equal(decimal.NewFromInt(650)))
	})

	t.Run("rejects a category change", func(t *testing.T) {
		f := newServiceFixture()
		f.repo.Add(Budget{ID: "b-1", CategoryID: "c-groceries", Amount: decimal.NewFromInt(500)})

		_, err := f.service.Update(ctx, "b-1", UpdateBudgetRequest{
			Amount:     decimal.NewFromInt(650),
			CategoryId: "c-transport",
		})

		assert.ErrorIs(t, err, ErrCategoryImmutable)
	})

	t.Run("accepts the unchanged category id", func(t *testing.T) {
		f := newServiceFixture()
		f.repo.Add(Budget{ID: "b-1", CategoryID: "c-groceries", Amount: decimal.NewFromInt(500)})

		_, err := f.service.Update(ctx, "b-1", UpdateBudgetRequest{
			Amount:     decimal.NewFromInt(650),
			CategoryId: "c-groceries",
		})

		assert.NoError(t, err)
	})

	t.Run("returns not found for an unknown id", func(t *testing.T) {
		f := newServiceFixture()

		_, err := f.service.Update(ctx, "missing", UpdateBudgetRequest{Amount: decimal.NewFromInt(10)})

		assert.ErrorIs(t, err, ErrBudgetNotFound)
	})
}

func TestBudgetService_Delete(t *testing.T) {
	ctx := testCtx()

	t.Run("deletes the budget with its children and reports the impact", func(t *testing.T) {
		f := newServiceFixture()
		f.repo.Add(
			Budget{ID: "b-parent", CategoryID: "c-groceries"},
			Budget{ID: "b-child-1", CategoryID: "c-supermarket", ParentBudgetID: "b-parent"},
			Budget{ID: "b-child-2", CategoryID: "c-restaurants", ParentBudgetID: "b-parent"},
			Budget{ID: "b-other", CategoryID: "c-transport"},
		)

		var published []event_bus.Event
		f.bus.Subscribe(event_bus.BudgetDeleted, func(e event_bus.Event) error {
			published = append(published, e)
			return nil
		})

		plan, err := f.service.Delete(ctx, "b-parent")

		require.NoError(t, err)
		assert.Equal(t, 3, plan.ImpactCount())

		remaining, err := f.repo.GetAll(ctx, 1)
		require.NoError(t, err)
		require.Len(t, remaining, 1)
		assert.Equal(t, "b-other", remaining[0].ID)

		require.Len(t, published, 1)
		data := published[0].Data.(event_bus.BudgetDeletedData)
		assert.Equal(t, 2, data.DeletedChildren)
	})

	t.Run("returns not found for an unknown id", func(t *testing.T) {
		f := newServiceFixture()

		_, err := f.service.Delete(ctx, "missing")

		assert.ErrorIs(t, err, ErrBudgetNotFound)
	})
}

func TestBudgetService_CheckExceeded(t *testing.T) {
	ctx := testCtx()

	t.Run("no budget anywhere in the chain", func(t *testing.T) {
		f := newServiceFixture()
		f.seedGroceriesTree()

		result, err := f.service.CheckExceeded(ctx, "c-supermarket", decimal.NewFromInt(10))

		require.NoError(t, err)
		assert.False(t, result.HasBudget)
		assert.False(t, result.WouldExceed)
	})

	t.Run("budget on the category itself", func(t *testing.T) {
		f := newServiceFixture()
		f.seedGroceriesTree()
		f.repo.Add(Budget{ID: "b-1", CategoryID: "c-transport", Amount: decimal.NewFromInt(200)})
		f.transactionRepo.Store(ctx, 1, transaction.Transaction{
			ID: "t-1", CategoryID: "c-transport", Kind: transaction.KindExpense,
			Amount: decimal.NewFromInt(150), Date: f.clock.Now(),
		})

		result, err := f.service.CheckExceeded(ctx, "c-transport", decimal.NewFromInt(60))

		require.NoError(t, err)
		assert.True(t, result.HasBudget)
		assert.True(t, result.WouldExceed)
		assert.Equal(t, "b-1", result.BudgetId)
		assert.True(t, result.NewTotal.Equal(decimal.NewFromInt(210)))
		assert.True(t, result.RemainingBefore.Equal(decimal.NewFromInt(50)), "got %s", result.RemainingBefore)
		assert.True(t, result.ExcessAmount.Equal(decimal.NewFromInt(10)), "got %s", result.ExcessAmount)
	})

	t.Run("a child budget on the category wins over the parent budget", func(t *testing.T) {
		f := newServiceFixture()
		f.seedGroceriesTree()
		f.repo.Add(
			Budget{ID: "b-groceries", CategoryID: "c-groceries", Amount: decimal.NewFromInt(400)},
			Budget{ID: "b-supermarket", CategoryID: "c-supermarket", ParentBudgetID: "b-groceries", Amount: decimal.NewFromInt(150)},
		)
		f.transactionRepo.LinkCategory("c-supermarket", "c-groceries")
		f.transactionRepo.Store(ctx, 1, transaction.Transaction{
			ID: "t-1", CategoryID: "c-supermarket", Kind: transaction.KindExpense,
			Amount: decimal.NewFromInt(140), Date: f.clock.Now(),
		})

		result, err := f.service.CheckExceeded(ctx, "c-supermarket", decimal.NewFromInt(20))

		require.NoError(t, err)
		assert.True(t, result.HasBudget)
		assert.Equal(t, "b-supermarket", result.BudgetId)
		assert.True(t, result.Amount.Equal(decimal.NewFromInt(150)))
		assert.True(t, result.WouldExceed)
		assert.True(t, result.ExcessAmount.Equal(decimal.NewFromInt(10)), "got %s", result.ExcessAmount)
	})

	t.Run("falls back to the closest budgeted ancestor", func(t *testing.T) {
		f := newServiceFixture()
		f.seedGroceriesTree()
		f.repo.Add(Budget{ID: "b-groceries", CategoryID: "c-groceries", Amount: decimal.NewFromInt(500)})
		f.transactionRepo.LinkCategory("c-supermarket", "c-groceries")
		f.transactionRepo.Store(ctx, 1, transaction.Transaction{
			ID: "t-1", CategoryID: "c-supermarket", Kind: transaction.KindExpense,
			Amount: decimal.NewFromInt(400), Date: f.clock.Now(),
		})

		result, err := f.service.CheckExceeded(ctx, "c-supermarket", decimal.NewFromInt(50))

		require.NoError(t, err)
		assert.True(t, result.HasBudget)
		assert.Equal(t, "b-groceries", result.BudgetId)
		assert.Equal(t, "c-groceries", result.CategoryId)
		assert.False(t, result.WouldExceed)

		result, err = f.service.CheckExceeded(ctx, "c-supermarket", decimal.NewFromInt(150))
		require.NoError(t, err)
		assert.True(t, result.WouldExceed)
	})

	t.Run("transactions outside the current month are ignored", func(t *testing.T) {
		f := newServiceFixture()
		f.seedGroceriesTree()
		f.repo.Add(Budget{ID: "b-1", CategoryID: "c-transport", Amount: decimal.NewFromInt(200)})
		f.transactionRepo.Store(ctx, 1, transaction.Transaction{
			ID: "t-old", CategoryID: "c-transport", Kind: transaction.KindExpense,
			Amount: decimal.NewFromInt(999), Date: f.clock.Now().AddDate(0, -1, 0),
		})

		result, err := f.service.CheckExceeded(ctx, "c-transport", decimal.NewFromInt(10))

		require.NoError(t, err)
		assert.True(t, result.HasBudget)
		assert.False(t, result.WouldExceed)
		assert.True(t, result.Spent.IsZero())
	})
}

func TestBudgetService_AvailableCategories(t *testing.T) {
	ctx := testCtx()

	t.Run("budgeted categories never come back", func(t *testing.T) {
		f := newServiceFixture()
		f.seedGroceriesTree()
		f.repo.Add(Budget{ID: "b-1", CategoryID: "c-groceries"})

		available, err := f.service.AvailableCategories(ctx)

		require.NoError(t, err)
		for _, c := range available {
			assert.NotEqual(t, "c-groceries", c.ID)
		}
	})

	t.Run("income categories are not offered", func(t *testing.T) {
		f := newServiceFixture()
		f.seedGroceriesTree()

		available, err := f.service.AvailableCategories(ctx)

		require.NoError(t, err)
		for _, c := range available {
			assert.Equal(t, category.KindExpense, c.Kind)
		}
	})
}

func TestBudgetService_AvailableChildCategories(t *testing.T) {
	ctx := testCtx()

	t.Run("only unbudgeted children of the parent's category", func(t *testing.T) {
		f := newServiceFixture()
		f.seedGroceriesTree()
		f.repo.Add(
			Budget{ID: "b-parent", CategoryID: "c-groceries"},
			Budget{ID: "b-child", CategoryID: "c-supermarket", ParentBudgetID: "b-parent"},
		)

		available, err := f.service.AvailableChildCategories(ctx, "b-parent")

		require.NoError(t, err)
		require.Len(t, available, 1)
		assert.Equal(t, "c-restaurants", available[0].ID)
	})

	t.Run("a child budget cannot receive children", func(t *testing.T) {
		f := newServiceFixture()
		f.seedGroceriesTree()
		f.repo.Add(
			Budget{ID: "b-parent", CategoryID: "c-groceries"},
			Budget{ID: "b-child", CategoryID: "c-supermarket", ParentBudgetID: "b-parent"},
		)

		_, err := f.service.AvailableChildCategories(ctx, "b-child")

		assert.ErrorIs(t, err, ErrChildNesting)
	})
}

func TestBudgetService_GetSummary(t *testing.T) {
	ctx := testCtx()

	t.Run("totals cover parent budgets only", func(t *testing.T) {
		f := newServiceFixture()
		f.seedGroceriesTree()
		f.repo.Add(
			Budget{ID: "b-groceries", CategoryID: "c-groceries", Amount: decimal.NewFromInt(500), CreatedAt: time.Unix(1, 0)},
			Budget{ID: "b-transport", CategoryID: "c-transport", Amount: decimal.NewFromInt(200), CreatedAt: time.Unix(2, 0)},
			Budget{ID: "b-child", CategoryID: "c-supermarket", ParentBudgetID: "b-groceries", Amount: decimal.NewFromInt(300), CreatedAt: time.Unix(3, 0)},
		)
		f.repo.SetSpent("c-supermarket", decimal.NewFromInt(120))
		f.repo.SetSpent("c-transport", decimal.NewFromInt(50))

		summary, err := f.service.GetSummary(ctx)

		require.NoError(t, err)
		assert.True(t, summary.TotalAmount.Equal(decimal.NewFromInt(700)))
		// groceries counts its child's 120, transport its own 50
		assert.True(t, summary.TotalSpent.Equal(decimal.NewFromInt(170)), "got %s", summary.TotalSpent)
		assert.True(t, summary.TotalRemaining.Equal(decimal.NewFromInt(530)))
	})

	t.Run("without a selection the first three parents are displayed", func(t *testing.T) {
		f := newServiceFixture()
		f.seedGroceriesTree()
		f.categoryRepo.Add(
			category.Category{ID: "c-a", Name: "A", Kind: category.KindExpense},
			category.Category{ID: "c-b", Name: "B", Kind: category.KindExpense},
		)
		f.repo.Add(
			Budget{ID: "b-1", CategoryID: "c-groceries", Amount: decimal.NewFromInt(1), CreatedAt: time.Unix(1, 0)},
			Budget{ID: "b-2", CategoryID: "c-transport", Amount: decimal.NewFromInt(1), CreatedAt: time.Unix(2, 0)},
			Budget{ID: "b-3", CategoryID: "c-a", Amount: decimal.NewFromInt(1), CreatedAt: time.Unix(3, 0)},
			Budget{ID: "b-4", CategoryID: "c-b", Amount: decimal.NewFromInt(1), CreatedAt: time.Unix(4, 0)},
		)

		summary, err := f.service.GetSummary(ctx)

		require.NoError(t, err)
		require.Len(t, summary.Displayed, 3)
		assert.Equal(t, "b-1", summary.Displayed[0].Budget.ID)
		assert.Equal(t, "b-2", summary.Displayed[1].Budget.ID)
		assert.Equal(t, "b-3", summary.Displayed[2].Budget.ID)
	})

	t.Run("a stored selection wins over creation order", func(t *testing.T) {
		f := newServiceFixture()
		f.seedGroceriesTree()
		f.repo.Add(
			Budget{ID: "b-1", CategoryID: "c-groceries", Amount: decimal.NewFromInt(1), CreatedAt: time.Unix(1, 0)},
			Budget{ID: "b-2", CategoryID: "c-transport", Amount: decimal.NewFromInt(1), CreatedAt: time.Unix(2, 0), DisplayOrder: 1},
		)

		summary, err := f.service.GetSummary(ctx)

		require.NoError(t, err)
		require.Len(t, summary.Displayed, 1)
		assert.Equal(t, "b-2", summary.Displayed[0].Budget.ID)
	})
}
