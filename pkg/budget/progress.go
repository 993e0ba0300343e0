package budget

import "github.com/shopspring/decimal"

type Status string

const (
	StatusNormal   Status = "normal"
	StatusWarning  Status = "warning"
	StatusExceeded Status = "exceeded"
)

var warningThreshold = decimal.NewFromFloat(0.70)

// Progress is the derived consumption state of a budget node.
type Progress struct {
	Spent  decimal.Decimal
	Amount decimal.Decimal
	// Remaining may be negative when the budget is exceeded; callers display
	// the excess, so it is never clamped.
	Remaining decimal.Decimal
	// Percentage is the raw consumption ratio in percent. It is 0 when the
	// budget amount is 0 and can grow beyond 100.
	Percentage float64
	Status     Status
}

// CalculateProgress derives ratio and status from a spent/amount pair.
// The status is "exceeded" when spent is strictly greater than the amount and
// "warning" from 70% consumption up to and including exactly 100%.
func CalculateProgress(spent, amount decimal.Decimal) Progress {
	p := Progress{
		Spent:     spent,
		Amount:    amount,
		Remaining: amount.Sub(spent),
		Status:    StatusNormal,
	}

	if amount.IsPositive() {
		p.Percentage, _ = spent.Div(amount).Mul(decimal.NewFromInt(100)).Float64()
	}

	switch {
	case spent.GreaterThan(amount):
		p.Status = StatusExceeded
	case amount.IsPositive() && spent.GreaterThanOrEqual(amount.Mul(warningThreshold)):
		p.Status = StatusWarning
	}

	return p
}

// BarPercentage clamps the ratio into [0, 100] for progress-bar rendering.
func (p Progress) BarPercentage() float64 {
	if p.Percentage < 0 {
		return 0
	}
	if p.Percentage > 100 {
		return 100
	}
	return p.Percentage
}
