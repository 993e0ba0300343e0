package budget

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

const dateFormat = "2006-01-02"

type Repo interface {
	Store(ctx context.Context, userId int, budget Budget) error
	GetAll(ctx context.Context, userId int) ([]Budget, error)
	GetByID(ctx context.Context, userId int, id string) (Budget, error)
	// GetAllWithSpending returns every budget of the user joined with its
	// category metadata and the expense total of [from, to] computed over the
	// category subtree.
	GetAllWithSpending(ctx context.Context, userId int, from, to time.Time) ([]BudgetWithSpending, error)
	FindRootByCategory(ctx context.Context, userId int, categoryId string) (Budget, bool, error)
	// FindByCategory returns the budget attached to the category regardless of
	// its place in the budget tree, preferring a top-level budget.
	FindByCategory(ctx context.Context, userId int, categoryId string) (Budget, bool, error)
	ChildExistsForCategory(ctx context.Context, parentBudgetId, categoryId string) (bool, error)
	// IsParentBudgetWithChildren reports whether the category carries a
	// top-level budget that has at least one child budget.
	IsParentBudgetWithChildren(ctx context.Context, userId int, categoryId string) (bool, error)
	UpdateAmount(ctx context.Context, userId int, id string, amount decimal.Decimal) (bool, error)
	// DeleteCascade removes the budget and every budget referencing it as
	// parent inside one transaction. It returns the number of deleted
	// children and whether the target itself was deleted.
	DeleteCascade(ctx context.Context, userId int, id string) (int, bool, error)
	// UpdateDisplayOrder replaces the user's dashboard selection: all stored
	// positions are reset, then the given ids receive positions 1..n.
	UpdateDisplayOrder(ctx context.Context, userId int, budgetIds []string) error
}

type BudgetRepoImpl struct {
	db *sql.DB
}

func NewBudgetRepo(db *sql.DB) *BudgetRepoImpl {
	return &BudgetRepoImpl{db: db}
}

func (r *BudgetRepoImpl) Store(ctx context.Context, userId int, budget Budget) error {
	query := `INSERT INTO budgets (id, user_id, category_id, parent_budget_id, amount)
			VALUES (?, ?, ?, ?, ?)`
	var parentParam any
	if budget.ParentBudgetID != "" {
		parentParam = budget.ParentBudgetID
	}
	_, err := r.db.ExecContext(ctx, query,
		budget.ID,
		userId,
		budget.CategoryID,
		parentParam,
		budget.Amount,
	)
	if err != nil {
		err = fmt.Errorf("could not execute query: %w", err)
		log.Error(err)
		return err
	}
	return nil
}

func (r *BudgetRepoImpl) GetAll(ctx context.Context, userId int) ([]Budget, error) {
	query := `SELECT id, user_id, category_id, COALESCE(parent_budget_id, ''), amount,
				COALESCE(display_order, 0), created_at
			FROM budgets WHERE user_id = ?
			ORDER BY (parent_budget_id IS NOT NULL), created_at`
	rows, err := r.db.QueryContext(ctx, query, userId)
	if err != nil {
		err = fmt.Errorf("could not query budgets: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	var budgets []Budget
	for rows.Next() {
		budget, err := scanBudget(rows)
		if err != nil {
			return nil, err
		}
		budgets = append(budgets, budget)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over rows: %w", err)
	}
	return budgets, nil
}

func (r *BudgetRepoImpl) GetByID(ctx context.Context, userId int, id string) (Budget, error) {
	query := `SELECT id, user_id, category_id, COALESCE(parent_budget_id, ''), amount,
				COALESCE(display_order, 0), created_at
			FROM budgets WHERE id = ? AND user_id = ?`
	row := r.db.QueryRowContext(ctx, query, id, userId)
	budget, err := scanBudget(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Budget{}, ErrBudgetNotFound
	} else if err != nil {
		return Budget{}, err
	}
	return budget, nil
}

func (r *BudgetRepoImpl) GetAllWithSpending(ctx context.Context, userId int, from, to time.Time) ([]BudgetWithSpending, error) {
	// Parents first, then the user's dashboard selection order, then creation
	// order. Mirrors the listing the clients were built against.
	query := `SELECT b.id, b.user_id, b.category_id, COALESCE(b.parent_budget_id, ''), b.amount,
				COALESCE(b.display_order, 0), b.created_at,
				c.name, c.icon, c.color
			FROM budgets b
			JOIN categories c ON b.category_id = c.id
			WHERE b.user_id = ?
			ORDER BY (b.parent_budget_id IS NOT NULL),
				(b.display_order IS NULL), b.display_order, b.created_at`
	rows, err := r.db.QueryContext(ctx, query, userId)
	if err != nil {
		err = fmt.Errorf("could not query budgets: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	var budgets []BudgetWithSpending
	for rows.Next() {
		var b BudgetWithSpending
		var createdAt time.Time
		if err := rows.Scan(
			&b.ID,
			&b.UserID,
			&b.CategoryID,
			&b.ParentBudgetID,
			&b.Amount,
			&b.DisplayOrder,
			&createdAt,
			&b.CategoryName,
			&b.CategoryIcon,
			&b.CategoryColor,
		); err != nil {
			err = fmt.Errorf("could not scan budget: %w", err)
			log.Error(err)
			return nil, err
		}
		b.CreatedAt = createdAt
		budgets = append(budgets, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over rows: %w", err)
	}

	for i := range budgets {
		spent, err := r.monthlySpend(ctx, userId, budgets[i].CategoryID, from, to)
		if err != nil {
			return nil, err
		}
		budgets[i].Spent = spent
	}
	return budgets, nil
}

// monthlySpend sums the expense transactions of the category and all its
// subcategories within the window.
func (r *BudgetRepoImpl) monthlySpend(ctx context.Context, userId int, categoryId string, from, to time.Time) (decimal.Decimal, error) {
	query := `WITH RECURSIVE category_tree AS (
			SELECT id FROM categories WHERE id = ?
			UNION ALL
			SELECT c.id FROM categories c
			INNER JOIN category_tree ct ON c.parent_id = ct.id
		)
		SELECT COALESCE(SUM(t.amount), 0)
		FROM transactions t
		JOIN accounts a ON t.account_id = a.id
		WHERE a.user_id = ?
		  AND t.category_id IN (SELECT id FROM category_tree)
		  AND t.kind = 'expense'
		  AND t.date BETWEEN ? AND ?`
	var spent decimal.Decimal
	err := r.db.QueryRowContext(ctx, query, categoryId, userId, from.Format(dateFormat), to.Format(dateFormat)).Scan(&spent)
	if err != nil {
		err = fmt.Errorf("could not compute budget spend: %w", err)
		log.Error(err)
		return decimal.Zero, err
	}
	return spent, nil
}

func (r *BudgetRepoImpl) FindRootByCategory(ctx context.Context, userId int, categoryId string) (Budget, bool, error) {
	query := `SELECT id, user_id, category_id, COALESCE(parent_budget_id, ''), amount,
				COALESCE(display_order, 0), created_at
			FROM budgets WHERE user_id = ? AND category_id = ? AND parent_budget_id IS NULL`
	row := r.db.QueryRowContext(ctx, query, userId, categoryId)
	budget, err := scanBudget(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Budget{}, false, nil
	} else if err != nil {
		return Budget{}, false, err
	}
	return budget, true, nil
}

func (r *BudgetRepoImpl) FindByCategory(ctx context.Context, userId int, categoryId string) (Budget, bool, error) {
	query := `SELECT id, user_id, category_id, COALESCE(parent_budget_id, ''), amount,
				COALESCE(display_order, 0), created_at
			FROM budgets WHERE user_id = ? AND category_id = ?
			ORDER BY (parent_budget_id IS NOT NULL) LIMIT 1`
	row := r.db.QueryRowContext(ctx, query, userId, categoryId)
	budget, err := scanBudget(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Budget{}, false, nil
	} else if err != nil {
		return Budget{}, false, err
	}
	return budget, true, nil
}

func (r *BudgetRepoImpl) ChildExistsForCategory(ctx context.Context, parentBudgetId, categoryId string) (bool, error) {
	query := `SELECT COUNT(1) FROM budgets WHERE parent_budget_id = ? AND category_id = ?`
	var count int
	if err := r.db.QueryRowContext(ctx, query, parentBudgetId, categoryId).Scan(&count); err != nil {
		log.Errorf("could not check child budget existence: %v", err)
		return false, err
	}
	return count > 0, nil
}

func (r *BudgetRepoImpl) IsParentBudgetWithChildren(ctx context.Context, userId int, categoryId string) (bool, error) {
	query := `SELECT COUNT(1) FROM budgets b
			WHERE b.category_id = ? AND b.user_id = ? AND b.parent_budget_id IS NULL
			AND EXISTS (SELECT 1 FROM budgets child WHERE child.parent_budget_id = b.id)`
	var count int
	if err := r.db.QueryRowContext(ctx, query, categoryId, userId).Scan(&count); err != nil {
		log.Errorf("could not check parent budget children: %v", err)
		return false, err
	}
	return count > 0, nil
}

func (r *BudgetRepoImpl) UpdateAmount(ctx context.Context, userId int, id string, amount decimal.Decimal) (bool, error) {
	query := `UPDATE budgets SET amount = ? WHERE id = ? AND user_id = ?`
	result, err := r.db.ExecContext(ctx, query, amount, id, userId)
	if err != nil {
		err = fmt.Errorf("could not execute query: %w", err)
		log.Error(err)
		return false, err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		err = fmt.Errorf("could not get rows affected: %w", err)
		log.Error(err)
		return false, err
	}
	return rowsAffected == 1, nil
}

func (r *BudgetRepoImpl) DeleteCascade(ctx context.Context, userId int, id string) (int, bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		err = fmt.Errorf("could not begin transaction: %w", err)
		log.Error(err)
		return 0, false, err
	}
	defer tx.Rollback()

	// Children go first so the cascade never depends on the schema's FK
	// behavior alone.
	childResult, err := tx.ExecContext(ctx,
		"DELETE FROM budgets WHERE parent_budget_id = ? AND user_id = ?", id, userId)
	if err != nil {
		err = fmt.Errorf("could not delete child budgets: %w", err)
		log.Error(err)
		return 0, false, err
	}
	deletedChildren, err := childResult.RowsAffected()
	if err != nil {
		return 0, false, fmt.Errorf("could not get rows affected: %w", err)
	}

	targetResult, err := tx.ExecContext(ctx,
		"DELETE FROM budgets WHERE id = ? AND user_id = ?", id, userId)
	if err != nil {
		err = fmt.Errorf("could not delete budget: %w", err)
		log.Error(err)
		return 0, false, err
	}
	deleted, err := targetResult.RowsAffected()
	if err != nil {
		return 0, false, fmt.Errorf("could not get rows affected: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, false, fmt.Errorf("could not commit transaction: %w", err)
	}
	return int(deletedChildren), deleted == 1, nil
}

func (r *BudgetRepoImpl) UpdateDisplayOrder(ctx context.Context, userId int, budgetIds []string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		err = fmt.Errorf("could not begin transaction: %w", err)
		log.Error(err)
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		"UPDATE budgets SET display_order = NULL WHERE user_id = ?", userId); err != nil {
		err = fmt.Errorf("could not reset display order: %w", err)
		log.Error(err)
		return err
	}

	for index, budgetId := range budgetIds {
		if _, err := tx.ExecContext(ctx,
			"UPDATE budgets SET display_order = ? WHERE id = ? AND user_id = ?",
			index+1, budgetId, userId); err != nil {
			err = fmt.Errorf("could not set display order: %w", err)
			log.Error(err)
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("could not commit transaction: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBudget(row rowScanner) (Budget, error) {
	var budget Budget
	var createdAt time.Time
	err := row.Scan(
		&budget.ID,
		&budget.UserID,
		&budget.CategoryID,
		&budget.ParentBudgetID,
		&budget.Amount,
		&budget.DisplayOrder,
		&createdAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return Budget{}, err
	} else if err != nil {
		err = fmt.Errorf("could not scan budget: %w", err)
		log.Error(err)
		return Budget{}, err
	}
	budget.CreatedAt = createdAt
	return budget, nil
}
