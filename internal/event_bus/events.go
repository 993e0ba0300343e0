package event_bus

import "github.com/shopspring/decimal"

const (
	TransactionCreated EventType = "transaction.created"
	BudgetCreated      EventType = "budget.created"
	BudgetDeleted      EventType = "budget.deleted"
)

type TransactionCreatedData struct {
	TransactionId string
	CategoryId    string
	Amount        decimal.Decimal
}

type BudgetCreatedData struct {
	BudgetId       string
	CategoryId     string
	ParentBudgetId string
}

type BudgetDeletedData struct {
	BudgetId        string
	DeletedChildren int
}
