package test_utils

import (
	"database/sql"
	"testing"

	"github.com/google/uuid"
)

// SeedUser inserts a user row and returns its id.
func SeedUser(t *testing.T, db *sql.DB, username string) int {
	t.Helper()

	result, err := db.Exec(
		"INSERT INTO users (uid, username, display_name) VALUES (?, ?, ?)",
		uuid.NewString(), username, username,
	)
	if err != nil {
		t.Fatalf("Failed to seed user: %v", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		t.Fatalf("Failed to get seeded user id: %v", err)
	}
	return int(id)
}

// SeedAccount inserts an account row for a user and returns its id.
func SeedAccount(t *testing.T, db *sql.DB, userId int, name string) string {
	t.Helper()

	id := uuid.NewString()
	_, err := db.Exec(
		"INSERT INTO accounts (id, user_id, name) VALUES (?, ?, ?)",
		id, userId, name,
	)
	if err != nil {
		t.Fatalf("Failed to seed account: %v", err)
	}
	return id
}

// SeedCategory inserts a category row and returns its id. Pass an empty
// parentId for a root category.
func SeedCategory(t *testing.T, db *sql.DB, userId int, name, kind, parentId string) string {
	t.Helper()

	id := uuid.NewString()
	var parent any
	if parentId != "" {
		parent = parentId
	}
	_, err := db.Exec(
		"INSERT INTO categories (id, user_id, name, kind, parent_id) VALUES (?, ?, ?, ?, ?)",
		id, userId, name, kind, parent,
	)
	if err != nil {
		t.Fatalf("Failed to seed category: %v", err)
	}
	return id
}

// SeedTransaction inserts a transaction row and returns its id. Date is a
// YYYY-MM-DD string.
func SeedTransaction(t *testing.T, db *sql.DB, accountId, categoryId, kind, amount, date string) string {
	t.Helper()

	id := uuid.NewString()
	var category any
	if categoryId != "" {
		category = categoryId
	}
	_, err := db.Exec(
		"INSERT INTO transactions (id, account_id, category_id, kind, amount, date) VALUES (?, ?, ?, ?, ?, ?)",
		id, accountId, category, kind, amount, date,
	)
	if err != nil {
		t.Fatalf("Failed to seed transaction: %v", err)
	}
	return id
}
