package transaction

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

type TransactionDTO struct {
	ID          string          `json:"id"`
	AccountId   string          `json:"accountId"`
	CategoryId  string          `json:"categoryId,omitempty"`
	Kind        string          `json:"kind"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description,omitempty"`
	Date        string          `json:"date"`
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service}
}

// List godoc
// @Summary List transactions of the current user
// @Description Optionally filtered by category (with or without its children) and date range
// @Tags Transaction
// @Produce json
// @Param categoryId query string false "Category id"
// @Param includeChildren query bool false "Include child categories"
// @Param startDate query string false "YYYY-MM-DD"
// @Param endDate query string false "YYYY-MM-DD"
// @Param limit query int false "Maximum number of rows"
// @Success 200 {array} TransactionDTO
// @Failure 403 {string} string "User not found"
// @Router /api/transaction [get]
// @Security XUserId
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	filter := Filter{
		CategoryID:      r.URL.Query().Get("categoryId"),
		IncludeChildren: r.URL.Query().Get("includeChildren") == "true",
	}
	if v := r.URL.Query().Get("startDate"); v != "" {
		from, err := time.Parse(dateFormat, v)
		if err != nil {
			http.Error(w, "invalid startDate", http.StatusBadRequest)
			return
		}
		filter.From = from
	}
	if v := r.URL.Query().Get("endDate"); v != "" {
		to, err := time.Parse(dateFormat, v)
		if err != nil {
			http.Error(w, "invalid endDate", http.StatusBadRequest)
			return
		}
		filter.To = to
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
		filter.Limit = limit
	}

	transactions, err := h.service.List(r.Context(), filter)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	dtos := make([]TransactionDTO, 0, len(transactions))
	for _, t := range transactions {
		dtos = append(dtos, transactionToDTO(t))
	}
	if err := json.NewEncoder(w).Encode(dtos); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

// Create godoc
// @Summary Register a new transaction
// @Tags Transaction
// @Accept json
// @Produce json
// @Success 201 {object} TransactionDTO
// @Failure 400 {string} string "Bad Request"
// @Failure 403 {string} string "User not found"
// @Router /api/transaction [post]
// @Security XUserId
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	log.Debug("Registering new transaction")
	w.Header().Set("Content-Type", "application/json")

	var dto TransactionDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	transaction, err := dtoToTransaction(dto)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	created, err := h.service.Create(r.Context(), transaction)
	if err != nil {
		if errors.Is(err, ErrInvalidAmount) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(transactionToDTO(created)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func transactionToDTO(t Transaction) TransactionDTO {
	return TransactionDTO{
		ID:          t.ID,
		AccountId:   t.AccountID,
		CategoryId:  t.CategoryID,
		Kind:        string(t.Kind),
		Amount:      t.Amount,
		Description: t.Description,
		Date:        t.Date.Format(dateFormat),
	}
}

func dtoToTransaction(dto TransactionDTO) (Transaction, error) {
	var date time.Time
	if dto.Date != "" {
		parsed, err := time.Parse(dateFormat, dto.Date)
		if err != nil {
			return Transaction{}, err
		}
		date = parsed
	}
	return Transaction{
		AccountID:   dto.AccountId,
		CategoryID:  dto.CategoryId,
		Kind:        Kind(dto.Kind),
		Amount:      dto.Amount,
		Description: dto.Description,
		Date:        date,
	}, nil
}
