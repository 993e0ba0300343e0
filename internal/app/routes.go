package app

import (
	"github.com/gorilla/mux"

	"github.com/Fayeur9/money-manager/internal/config"
)

// RegisterRoutes registers all API endpoints.
func RegisterRoutes(r *mux.Router, deps *Dependencies, cfg config.Application) {

	// Budget
	r.HandleFunc("/api/budget", deps.BudgetHandler.List).Methods("GET")
	r.HandleFunc("/api/budget", deps.BudgetHandler.Create).Methods("POST")
	r.HandleFunc("/api/budget/hierarchy", deps.BudgetHandler.Hierarchy).Methods("GET")
	r.HandleFunc("/api/budget/summary", deps.BudgetHandler.Summary).Methods("GET")
	r.HandleFunc("/api/budget/batch", deps.BudgetHandler.BatchCreate).Methods("POST")
	r.HandleFunc("/api/budget/order", deps.BudgetHandler.UpdateOrder).Methods("PUT")
	r.HandleFunc("/api/budget/check", deps.BudgetHandler.Check).Methods("POST")
	r.HandleFunc("/api/budget/available-categories", deps.BudgetHandler.AvailableCategories).Methods("GET")
	r.HandleFunc("/api/budget/{id}", deps.BudgetHandler.Update).Methods("PUT")
	r.HandleFunc("/api/budget/{id}", deps.BudgetHandler.Delete).Methods("DELETE")
	r.HandleFunc("/api/budget/{id}/available-categories", deps.BudgetHandler.AvailableChildCategories).Methods("GET")

	// Category (read side)
	r.HandleFunc("/api/category", deps.CategoryHandler.GetAll).Methods("GET")

	// Transaction
	r.HandleFunc("/api/transaction", deps.TransactionHandler.List).Methods("GET")
	r.HandleFunc("/api/transaction", deps.TransactionHandler.Create).Methods("POST")

	// User management
	r.HandleFunc("/api/user/current", deps.UserHandler.CurrentUser).Methods("GET")
	r.HandleFunc("/api/user", deps.UserHandler.CreateUser).Methods("POST")
	r.HandleFunc("/api/user", deps.UserHandler.GetAvailableUsers).Methods("GET")
}
