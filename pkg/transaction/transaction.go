package transaction

import (
	"time"

	"github.com/shopspring/decimal"
)

type Kind string

const (
	KindExpense  Kind = "expense"
	KindIncome   Kind = "income"
	KindTransfer Kind = "transfer"
)

type Transaction struct {
	ID          string
	AccountID   string
	CategoryID  string
	Kind        Kind
	Amount      decimal.Decimal
	Description string
	Date        time.Time
}

// Filter narrows a transaction listing. When CategoryID is set and
// IncludeChildren is true, transactions of the category's direct children are
// included as well.
type Filter struct {
	CategoryID      string
	IncludeChildren bool
	From            time.Time
	To              time.Time
	Limit           int
}
