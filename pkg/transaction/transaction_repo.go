package transaction

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

const dateFormat = "2006-01-02"

type Repo interface {
	Store(ctx context.Context, userId int, transaction Transaction) (string, error)
	List(ctx context.Context, userId int, filter Filter) ([]Transaction, error)
	// MonthlySpend sums expense transactions between from and to (inclusive)
	// for the category subtree rooted at categoryId. With includeChildren set
	// to false only direct transactions of the category are counted.
	MonthlySpend(ctx context.Context, userId int, categoryId string, includeChildren bool, from, to time.Time) (decimal.Decimal, error)
}

type TransactionRepoImpl struct {
	db *sql.DB
}

func NewTransactionRepo(db *sql.DB) *TransactionRepoImpl {
	return &TransactionRepoImpl{db: db}
}

func (r *TransactionRepoImpl) Store(ctx context.Context, userId int, transaction Transaction) (string, error) {
	// The account has to belong to the user; transactions are scoped to users
	// through their account.
	var owner int
	err := r.db.QueryRowContext(ctx, "SELECT user_id FROM accounts WHERE id = ?", transaction.AccountID).Scan(&owner)
	if err != nil {
		err = fmt.Errorf("could not resolve account owner: %w", err)
		log.Error(err)
		return "", err
	}
	if owner != userId {
		return "", fmt.Errorf("account %s does not belong to user %d", transaction.AccountID, userId)
	}

	query := `INSERT INTO transactions (id, account_id, category_id, kind, amount, description, date)
			VALUES (?, ?, ?, ?, ?, ?, ?)`
	var categoryParam any
	if transaction.CategoryID != "" {
		categoryParam = transaction.CategoryID
	}
	_, err = r.db.ExecContext(ctx, query,
		transaction.ID,
		transaction.AccountID,
		categoryParam,
		transaction.Kind,
		transaction.Amount,
		transaction.Description,
		transaction.Date.Format(dateFormat),
	)
	if err != nil {
		err = fmt.Errorf("could not execute query: %w", err)
		log.Error(err)
		return "", err
	}
	return transaction.ID, nil
}

func (r *TransactionRepoImpl) List(ctx context.Context, userId int, filter Filter) ([]Transaction, error) {
	query := `SELECT t.id, t.account_id, COALESCE(t.category_id, ''), t.kind, t.amount, t.description, t.date
			FROM transactions t
			JOIN accounts a ON t.account_id = a.id
			WHERE a.user_id = ?`
	args := []any{userId}

	if filter.CategoryID != "" {
		if filter.IncludeChildren {
			query += ` AND t.category_id IN (
				WITH RECURSIVE category_tree AS (
					SELECT id FROM categories WHERE id = ?
					UNION ALL
					SELECT c.id FROM categories c
					INNER JOIN category_tree ct ON c.parent_id = ct.id
				)
				SELECT id FROM category_tree
			)`
		} else {
			query += " AND t.category_id = ?"
		}
		args = append(args, filter.CategoryID)
	}
	if !filter.From.IsZero() {
		query += " AND t.date >= ?"
		args = append(args, filter.From.Format(dateFormat))
	}
	if !filter.To.IsZero() {
		query += " AND t.date <= ?"
		args = append(args, filter.To.Format(dateFormat))
	}
	query += " ORDER BY t.date DESC, t.created_at DESC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		err = fmt.Errorf("could not query transactions: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	var transactions []Transaction
	for rows.Next() {
		var t Transaction
		var dateString string
		if err := rows.Scan(&t.ID, &t.AccountID, &t.CategoryID, &t.Kind, &t.Amount, &t.Description, &dateString); err != nil {
			err = fmt.Errorf("could not scan transaction: %w", err)
			log.Error(err)
			return nil, err
		}
		date, err := time.Parse(dateFormat, dateString)
		if err != nil {
			err = fmt.Errorf("could not parse transaction date: %w", err)
			log.Error(err)
			return nil, err
		}
		t.Date = date
		transactions = append(transactions, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over rows: %w", err)
	}
	return transactions, nil
}

func (r *TransactionRepoImpl) MonthlySpend(ctx context.Context, userId int, categoryId string, includeChildren bool, from, to time.Time) (decimal.Decimal, error) {
	var query string
	if includeChildren {
		query = `WITH RECURSIVE category_tree AS (
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
	} else {
		query = `SELECT COALESCE(SUM(t.amount), 0)
			FROM transactions t
			JOIN accounts a ON t.account_id = a.id
			WHERE a.user_id = ?
			  AND t.category_id = ?
			  AND t.kind = 'expense'
			  AND t.date BETWEEN ? AND ?`
	}

	var args []any
	if includeChildren {
		args = []any{categoryId, userId, from.Format(dateFormat), to.Format(dateFormat)}
	} else {
		args = []any{userId, categoryId, from.Format(dateFormat), to.Format(dateFormat)}
	}

	var spent decimal.Decimal
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&spent); err != nil {
		err = fmt.Errorf("could not compute monthly spend: %w", err)
		log.Error(err)
		return decimal.Zero, err
	}
	return spent, nil
}
