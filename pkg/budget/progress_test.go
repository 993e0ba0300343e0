package budget

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestCalculateProgress(t *testing.T) {
	tests := []struct {
		name           string
		spent          string
		amount         string
		wantStatus     Status
		wantPercentage float64
	}{
		{
			name:           "no spending",
			spent:          "0",
			amount:         "500",
			wantStatus:     StatusNormal,
			wantPercentage: 0,
		},
		{
			name:           "just below warning threshold",
			spent:          "349.99",
			amount:         "500",
			wantStatus:     StatusNormal,
			wantPercentage: 69.998,
		},
		{
			name:           "exactly at warning threshold",
			spent:          "350",
			amount:         "500",
			wantStatus:     StatusWarning,
			wantPercentage: 70,
		},
		{
			name:           "between warning and limit",
			spent:          "450",
			amount:         "500",
			wantStatus:     StatusWarning,
			wantPercentage: 90,
		},
		{
			name:           "exactly at the limit stays warning",
			spent:          "500",
			amount:         "500",
			wantStatus:     StatusWarning,
			wantPercentage: 100,
		},
		{
			name:           "one cent over the limit",
			spent:          "500.01",
			amount:         "500",
			wantStatus:     StatusExceeded,
			wantPercentage: 100.002,
		},
		{
			name:           "far over the limit",
			spent:          "1000",
			amount:         "500",
			wantStatus:     StatusExceeded,
			wantPercentage: 200,
		},
		{
			name:           "zero amount with zero spend",
			spent:          "0",
			amount:         "0",
			wantStatus:     StatusNormal,
			wantPercentage: 0,
		},
		{
			name:           "zero amount with spending is exceeded",
			spent:          "10",
			amount:         "0",
			wantStatus:     StatusExceeded,
			wantPercentage: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spent := decimal.RequireFromString(tt.spent)
			amount := decimal.RequireFromString(tt.amount)

			progress := CalculateProgress(spent, amount)

			assert.Equal(t, tt.wantStatus, progress.Status)
			assert.InDelta(t, tt.wantPercentage, progress.Percentage, 0.0001)
			assert.True(t, progress.Remaining.Equal(amount.Sub(spent)))
		})
	}
}

func TestProgress_BarPercentage(t *testing.T) {
	t.Run("clamps overspend to 100", func(t *testing.T) {
		progress := CalculateProgress(decimal.NewFromInt(750), decimal.NewFromInt(500))
		assert.Equal(t, 150.0, progress.Percentage)
		assert.Equal(t, 100.0, progress.BarPercentage())
	})

	t.Run("keeps values inside the range untouched", func(t *testing.T) {
		progress := CalculateProgress(decimal.NewFromInt(250), decimal.NewFromInt(500))
		assert.Equal(t, 50.0, progress.BarPercentage())
	})
}
