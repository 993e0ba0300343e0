package category

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"
)

var ErrCategoryNotFound = errors.New("category not found")

// Repo is the read side of the category collaborator. Category CRUD lives in
// the category management routes; the budget engine only consumes the records.
type Repo interface {
	GetAll(ctx context.Context, userId int, kind Kind) ([]Category, error)
	GetByID(ctx context.Context, id string) (Category, error)
}

type CategoryRepoImpl struct {
	db *sql.DB
}

func NewCategoryRepo(db *sql.DB) *CategoryRepoImpl {
	return &CategoryRepoImpl{db: db}
}

func (r *CategoryRepoImpl) GetAll(ctx context.Context, userId int, kind Kind) ([]Category, error) {
	// Default categories have no owner and are visible to everyone.
	query := `SELECT id, COALESCE(user_id, 0), name, kind, COALESCE(parent_id, ''), color, icon
			FROM categories
			WHERE (user_id = ? OR user_id IS NULL)`
	args := []any{userId}
	if kind != "" {
		query += " AND kind = ?"
		args = append(args, kind)
	}
	query += " ORDER BY (parent_id IS NOT NULL), name"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		err = fmt.Errorf("could not query categories: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	var categories []Category
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.UserID, &c.Name, &c.Kind, &c.ParentId, &c.Color, &c.Icon); err != nil {
			err = fmt.Errorf("could not scan category: %w", err)
			log.Error(err)
			return nil, err
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over rows: %w", err)
	}
	return categories, nil
}

func (r *CategoryRepoImpl) GetByID(ctx context.Context, id string) (Category, error) {
	query := `SELECT id, COALESCE(user_id, 0), name, kind, COALESCE(parent_id, ''), color, icon
			FROM categories WHERE id = ?`
	var c Category
	err := r.db.QueryRowContext(ctx, query, id).
		Scan(&c.ID, &c.UserID, &c.Name, &c.Kind, &c.ParentId, &c.Color, &c.Icon)
	if errors.Is(err, sql.ErrNoRows) {
		return Category{}, ErrCategoryNotFound
	} else if err != nil {
		log.Errorf("failed to get category %s: %v", id, err)
		return Category{}, err
	}
	return c, nil
}
