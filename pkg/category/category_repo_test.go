package category

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Fayeur9/money-manager/internal/test_utils"
)

func TestCategoryRepo_GetAll(t *testing.T) {
	ctx := context.Background()
	db := test_utils.SetupTestDB(t)
	repo := NewCategoryRepo(db)

	alice := test_utils.SeedUser(t, db, "alice")
	bob := test_utils.SeedUser(t, db, "bob")

	test_utils.SeedCategory(t, db, alice, "Groceries", "expense", "")
	test_utils.SeedCategory(t, db, alice, "Salary", "income", "")
	test_utils.SeedCategory(t, db, bob, "Gadgets", "expense", "")
	// default category without owner, visible to everyone
	if _, err := db.Exec("INSERT INTO categories (id, name, kind) VALUES ('default-1', 'Other', 'expense')"); err != nil {
		t.Fatalf("failed to seed default category: %v", err)
	}

	t.Run("returns own and default categories", func(t *testing.T) {
		categories, err := repo.GetAll(ctx, alice, "")
		require.NoError(t, err)

		names := make([]string, 0, len(categories))
		for _, c := range categories {
			names = append(names, c.Name)
		}
		assert.ElementsMatch(t, []string{"Groceries", "Salary", "Other"}, names)
	})

	t.Run("filters by kind", func(t *testing.T) {
		categories, err := repo.GetAll(ctx, alice, KindExpense)
		require.NoError(t, err)

		for _, c := range categories {
			assert.Equal(t, KindExpense, c.Kind)
		}
	})
}

func TestCategoryRepo_GetByID(t *testing.T) {
	ctx := context.Background()
	db := test_utils.SetupTestDB(t)
	repo := NewCategoryRepo(db)

	alice := test_utils.SeedUser(t, db, "alice")
	groceries := test_utils.SeedCategory(t, db, alice, "Groceries", "expense", "")
	supermarket := test_utils.SeedCategory(t, db, alice, "Supermarket", "expense", groceries)

	got, err := repo.GetByID(ctx, supermarket)
	require.NoError(t, err)
	assert.Equal(t, "Supermarket", got.Name)
	assert.Equal(t, groceries, got.ParentId)

	_, err = repo.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, ErrCategoryNotFound)
}
