package transaction

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Fayeur9/money-manager/internal/event_bus"
	"github.com/Fayeur9/money-manager/internal/utils"
	"github.com/Fayeur9/money-manager/pkg/user"
)

var ErrInvalidAmount = errors.New("transaction amount must be positive")

type Service interface {
	Create(ctx context.Context, transaction Transaction) (Transaction, error)
	List(ctx context.Context, filter Filter) ([]Transaction, error)
	// CurrentMonthSpend returns the expense total of the running calendar
	// month for the category (and optionally its children).
	CurrentMonthSpend(ctx context.Context, categoryId string, includeChildren bool) (decimal.Decimal, error)
}

type TransactionServiceImpl struct {
	repo  Repo
	bus   *event_bus.EventBus
	clock utils.Clock
}

func NewTransactionService(repo Repo, bus *event_bus.EventBus, clock utils.Clock) *TransactionServiceImpl {
	return &TransactionServiceImpl{repo: repo, bus: bus, clock: clock}
}

func (s *TransactionServiceImpl) Create(ctx context.Context, transaction Transaction) (Transaction, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return Transaction{}, fmt.Errorf("failed to get current user: %w", err)
	}
	if !transaction.Amount.IsPositive() {
		return Transaction{}, ErrInvalidAmount
	}
	if transaction.Kind == "" {
		transaction.Kind = KindExpense
	}
	if transaction.Date.IsZero() {
		transaction.Date = s.clock.Now()
	}
	transaction.ID = uuid.NewString()

	if _, err := s.repo.Store(ctx, userId, transaction); err != nil {
		return Transaction{}, err
	}

	if s.bus != nil && transaction.Kind == KindExpense && transaction.CategoryID != "" {
		s.bus.Publish(event_bus.NewEvent(ctx, event_bus.TransactionCreated, event_bus.TransactionCreatedData{
			TransactionId: transaction.ID,
			CategoryId:    transaction.CategoryID,
			Amount:        transaction.Amount,
		}))
	}

	return transaction, nil
}

func (s *TransactionServiceImpl) List(ctx context.Context, filter Filter) ([]Transaction, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get current user: %w", err)
	}
	return s.repo.List(ctx, userId, filter)
}

func (s *TransactionServiceImpl) CurrentMonthSpend(ctx context.Context, categoryId string, includeChildren bool) (decimal.Decimal, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to get current user: %w", err)
	}
	from, to := utils.MonthRange(s.clock.Now())
	return s.repo.MonthlySpend(ctx, userId, categoryId, includeChildren, from, to)
}

// CurrentMonthWindow exposes the month bounds used for spend aggregation.
func (s *TransactionServiceImpl) CurrentMonthWindow() (time.Time, time.Time) {
	return utils.MonthRange(s.clock.Now())
}
