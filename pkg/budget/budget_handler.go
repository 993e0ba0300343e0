package budget

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"github.com/Fayeur9/money-manager/pkg/category"
	"github.com/Fayeur9/money-manager/pkg/user"
)

type BudgetDTO struct {
	ID             string          `json:"id"`
	CategoryId     string          `json:"categoryId"`
	CategoryName   string          `json:"categoryName"`
	CategoryIcon   string          `json:"categoryIcon,omitempty"`
	CategoryColor  string          `json:"categoryColor,omitempty"`
	ParentBudgetId string          `json:"parentBudgetId,omitempty"`
	Amount         decimal.Decimal `json:"amount"`
	Spent          decimal.Decimal `json:"spent"`
	Remaining      decimal.Decimal `json:"remaining"`
	Percentage     float64         `json:"percentage"`
	Status         string          `json:"status"`
	DisplayOrder   int             `json:"displayOrder,omitempty"`
}

type HierarchyNodeDTO struct {
	BudgetDTO
	Children []BudgetDTO `json:"children,omitempty"`
}

type SummaryDTO struct {
	TotalAmount    decimal.Decimal    `json:"totalAmount"`
	TotalSpent     decimal.Decimal    `json:"totalSpent"`
	TotalRemaining decimal.Decimal    `json:"totalRemaining"`
	Status         string             `json:"status"`
	Displayed      []HierarchyNodeDTO `json:"displayed"`
}

type CreateBudgetDTO struct {
	CategoryId     string          `json:"categoryId"`
	Amount         decimal.Decimal `json:"amount"`
	ParentBudgetId string          `json:"parentBudgetId,omitempty"`
}

type BatchCreateDTO struct {
	CategoryId string           `json:"categoryId"`
	Amount     decimal.Decimal  `json:"amount"`
	Children   []ChildCreateDTO `json:"children,omitempty"`
}

type ChildCreateDTO struct {
	CategoryId string          `json:"categoryId"`
	Amount     decimal.Decimal `json:"amount"`
}

type BatchCreateResultDTO struct {
	Parent   BudgetDTO         `json:"parent"`
	Children []BudgetDTO       `json:"children,omitempty"`
	Failed   []ChildFailureDTO `json:"failed,omitempty"`
}

type ChildFailureDTO struct {
	CategoryId string `json:"categoryId"`
	Error      string `json:"error"`
}

type UpdateBudgetDTO struct {
	Amount     decimal.Decimal `json:"amount"`
	CategoryId string          `json:"categoryId,omitempty"`
}

type DeleteResultDTO struct {
	DeletedChildren int `json:"deletedChildren"`
}

type OrderDTO struct {
	BudgetIds []string `json:"budgetIds"`
}

type CheckDTO struct {
	CategoryId string          `json:"categoryId"`
	Amount     decimal.Decimal `json:"amount"`
}

type CheckResultDTO struct {
	HasBudget       bool            `json:"hasBudget"`
	WouldExceed     bool            `json:"wouldExceed"`
	BudgetId        string          `json:"budgetId,omitempty"`
	CategoryId      string          `json:"categoryId,omitempty"`
	Amount          decimal.Decimal `json:"amount"`
	Spent           decimal.Decimal `json:"spent"`
	NewTotal        decimal.Decimal `json:"newTotal"`
	RemainingBefore decimal.Decimal `json:"remainingBefore"`
	ExcessAmount    decimal.Decimal `json:"excessAmount"`
}

type Handler struct {
	service         Service
	categoryService category.Service
}

func NewHandler(service Service, categoryService category.Service) *Handler {
	return &Handler{service: service, categoryService: categoryService}
}

// List godoc
// @Summary List budgets of the current user with current month spending
// @Tags Budget
// @Produce json
// @Success 200 {array} BudgetDTO
// @Failure 403 {string} string "User not found"
// @Router /api/budget [get]
// @Security XUserId
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	budgets, err := h.service.ListWithSpending(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	dtos := make([]BudgetDTO, 0, len(budgets))
	for _, b := range budgets {
		dtos = append(dtos, budgetToDTO(b))
	}
	if err := json.NewEncoder(w).Encode(dtos); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

// Hierarchy godoc
// @Summary List budgets grouped into parents with their child budgets
// @Tags Budget
// @Produce json
// @Success 200 {array} HierarchyNodeDTO
// @Failure 403 {string} string "User not found"
// @Router /api/budget/hierarchy [get]
// @Security XUserId
func (h *Handler) Hierarchy(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	nodes, err := h.service.GetHierarchy(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	dtos := make([]HierarchyNodeDTO, 0, len(nodes))
	for _, node := range nodes {
		dtos = append(dtos, nodeToDTO(node))
	}
	if err := json.NewEncoder(w).Encode(dtos); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

// Summary godoc
// @Summary Dashboard summary with overall totals and the pinned budgets
// @Tags Budget
// @Produce json
// @Success 200 {object} SummaryDTO
// @Failure 403 {string} string "User not found"
// @Router /api/budget/summary [get]
// @Security XUserId
func (h *Handler) Summary(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	summary, err := h.service.GetSummary(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	dto := SummaryDTO{
		TotalAmount:    summary.TotalAmount,
		TotalSpent:     summary.TotalSpent,
		TotalRemaining: summary.TotalRemaining,
		Status:         string(summary.Status),
		Displayed:      make([]HierarchyNodeDTO, 0, len(summary.Displayed)),
	}
	for _, node := range summary.Displayed {
		dto.Displayed = append(dto.Displayed, nodeToDTO(node))
	}
	if err := json.NewEncoder(w).Encode(dto); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

// Create godoc
// @Summary Create a single budget
// @Tags Budget
// @Accept json
// @Produce json
// @Success 201 {object} BudgetDTO
// @Failure 400 {string} string "Bad Request"
// @Failure 403 {string} string "User not found"
// @Failure 404 {string} string "Category or parent budget not found"
// @Failure 409 {string} string "Budget already exists"
// @Router /api/budget [post]
// @Security XUserId
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	log.Debug("Creating new budget")
	w.Header().Set("Content-Type", "application/json")

	var dto CreateBudgetDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	created, err := h.service.Create(r.Context(), CreateBudgetRequest{
		CategoryId:     dto.CategoryId,
		Amount:         dto.Amount,
		ParentBudgetId: dto.ParentBudgetId,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(budgetToDTO(BudgetWithSpending{Budget: created})); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

// BatchCreate godoc
// @Summary Create a parent budget together with child budgets in one call
// @Description Child budgets that fail do not roll back the parent; the response lists what was created and what failed.
// @Tags Budget
// @Accept json
// @Produce json
// @Success 201 {object} BatchCreateResultDTO
// @Success 207 {object} BatchCreateResultDTO "Parent created, some children failed"
// @Failure 400 {string} string "Bad Request"
// @Failure 403 {string} string "User not found"
// @Router /api/budget/batch [post]
// @Security XUserId
func (h *Handler) BatchCreate(w http.ResponseWriter, r *http.Request) {
	log.Debug("Creating budget batch")
	w.Header().Set("Content-Type", "application/json")

	var dto BatchCreateDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	idx, err := h.categoryService.GetIndex(r.Context(), category.KindExpense)
	if err != nil {
		writeError(w, err)
		return
	}
	cat, ok := idx.ByID(dto.CategoryId)
	if !ok {
		http.Error(w, category.ErrCategoryNotFound.Error(), http.StatusNotFound)
		return
	}

	withSpending, err := h.service.ListWithSpending(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	existing := make([]Budget, 0, len(withSpending))
	for _, b := range withSpending {
		existing = append(existing, b.Budget)
	}

	workflow := NewCreationWorkflow(h.service)
	workflow.SelectCategory(cat, idx, existing)
	workflow.SetParentAmount(dto.Amount)
	for _, child := range dto.Children {
		workflow.ToggleChild(child.CategoryId)
		workflow.SetChildAmount(child.CategoryId, child.Amount)
	}

	result, err := workflow.Submit(r.Context())
	if err != nil && !errors.Is(err, ErrPartialCreation) {
		writeError(w, err)
		return
	}

	resultDTO := BatchCreateResultDTO{
		Parent: budgetToDTO(BudgetWithSpending{Budget: result.Parent}),
	}
	for _, child := range result.Children {
		resultDTO.Children = append(resultDTO.Children, budgetToDTO(BudgetWithSpending{Budget: child}))
	}
	for _, failure := range result.Failed {
		resultDTO.Failed = append(resultDTO.Failed, ChildFailureDTO{
			CategoryId: failure.CategoryId,
			Error:      failure.Err.Error(),
		})
	}

	if len(result.Failed) > 0 {
		w.WriteHeader(http.StatusMultiStatus)
	} else {
		w.WriteHeader(http.StatusCreated)
	}
	if err := json.NewEncoder(w).Encode(resultDTO); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

// Update godoc
// @Summary Update the amount of a budget
// @Description The category of a budget cannot be changed; requests carrying a different categoryId are rejected.
// @Tags Budget
// @Accept json
// @Produce json
// @Param id path string true "Budget id"
// @Success 200 {object} BudgetDTO
// @Failure 400 {string} string "Bad Request"
// @Failure 403 {string} string "User not found"
// @Failure 404 {string} string "Budget not found"
// @Router /api/budget/{id} [put]
// @Security XUserId
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	id := mux.Vars(r)["id"]

	var dto UpdateBudgetDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	updated, err := h.service.Update(r.Context(), id, UpdateBudgetRequest{
		Amount:     dto.Amount,
		CategoryId: dto.CategoryId,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	if err := json.NewEncoder(w).Encode(budgetToDTO(BudgetWithSpending{Budget: updated})); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

// Delete godoc
// @Summary Delete a budget and every child budget attached to it
// @Tags Budget
// @Produce json
// @Param id path string true "Budget id"
// @Success 200 {object} DeleteResultDTO
// @Failure 403 {string} string "User not found"
// @Failure 404 {string} string "Budget not found"
// @Router /api/budget/{id} [delete]
// @Security XUserId
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	id := mux.Vars(r)["id"]

	plan, err := h.service.Delete(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := json.NewEncoder(w).Encode(DeleteResultDTO{DeletedChildren: len(plan.ImpactedChildren)}); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

// UpdateOrder godoc
// @Summary Replace the dashboard budget selection and its order
// @Tags Budget
// @Accept json
// @Success 204
// @Failure 400 {string} string "Bad Request"
// @Failure 403 {string} string "User not found"
// @Router /api/budget/order [put]
// @Security XUserId
func (h *Handler) UpdateOrder(w http.ResponseWriter, r *http.Request) {
	var dto OrderDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.service.UpdateDisplayOrder(r.Context(), dto.BudgetIds); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Check godoc
// @Summary Check whether an expense would push a budget over its limit
// @Description Resolves the budget attached to the category or its closest budgeted ancestor.
// @Tags Budget
// @Accept json
// @Produce json
// @Success 200 {object} CheckResultDTO
// @Failure 400 {string} string "Bad Request"
// @Failure 403 {string} string "User not found"
// @Router /api/budget/check [post]
// @Security XUserId
func (h *Handler) Check(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var dto CheckDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	result, err := h.service.CheckExceeded(r.Context(), dto.CategoryId, dto.Amount)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := json.NewEncoder(w).Encode(CheckResultDTO{
		HasBudget:       result.HasBudget,
		WouldExceed:     result.WouldExceed,
		BudgetId:        result.BudgetId,
		CategoryId:      result.CategoryId,
		Amount:          result.Amount,
		Spent:           result.Spent,
		NewTotal:        result.NewTotal,
		RemainingBefore: result.RemainingBefore,
		ExcessAmount:    result.ExcessAmount,
	}); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

// AvailableCategories godoc
// @Summary List expense categories that can still receive a new budget
// @Tags Budget
// @Produce json
// @Success 200 {array} category.CategoryDTO
// @Failure 403 {string} string "User not found"
// @Router /api/budget/available-categories [get]
// @Security XUserId
func (h *Handler) AvailableCategories(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	categories, err := h.service.AvailableCategories(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeCategories(w, categories)
}

// AvailableChildCategories godoc
// @Summary List categories that can become child budgets under a parent budget
// @Tags Budget
// @Produce json
// @Param id path string true "Parent budget id"
// @Success 200 {array} category.CategoryDTO
// @Failure 400 {string} string "Budget is a child budget"
// @Failure 403 {string} string "User not found"
// @Failure 404 {string} string "Budget not found"
// @Router /api/budget/{id}/available-categories [get]
// @Security XUserId
func (h *Handler) AvailableChildCategories(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	id := mux.Vars(r)["id"]

	categories, err := h.service.AvailableChildCategories(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeCategories(w, categories)
}

func writeCategories(w http.ResponseWriter, categories []category.Category) {
	dtos := make([]category.CategoryDTO, 0, len(categories))
	for _, c := range categories {
		dtos = append(dtos, category.CategoryToDTO(c))
	}
	if err := json.NewEncoder(w).Encode(dtos); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, user.ErrNoUser):
		http.Error(w, err.Error(), http.StatusForbidden)
	case errors.Is(err, ErrBudgetNotFound), errors.Is(err, category.ErrCategoryNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, ErrBudgetExists),
		errors.Is(err, ErrChildBudgetExists),
		errors.Is(err, ErrCategoryIsParentBudget):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, ErrInvalidAmount),
		errors.Is(err, ErrNotExpenseCategory),
		errors.Is(err, ErrChildNesting),
		errors.Is(err, ErrCategoryImmutable),
		errors.Is(err, ErrNothingToCreate),
		errors.Is(err, ErrChildrenRequireParent):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func budgetToDTO(b BudgetWithSpending) BudgetDTO {
	progress := CalculateProgress(b.Spent, b.Amount)
	return BudgetDTO{
		ID:             b.ID,
		CategoryId:     b.CategoryID,
		CategoryName:   b.CategoryName,
		CategoryIcon:   b.CategoryIcon,
		CategoryColor:  b.CategoryColor,
		ParentBudgetId: b.ParentBudgetID,
		Amount:         b.Amount,
		Spent:          b.Spent,
		Remaining:      progress.Remaining,
		Percentage:     progress.BarPercentage(),
		Status:         string(progress.Status),
		DisplayOrder:   b.DisplayOrder,
	}
}

func nodeToDTO(node Node) HierarchyNodeDTO {
	dto := HierarchyNodeDTO{BudgetDTO: budgetToDTO(node.Budget)}
	// A parent's effective spend is the children's total when children exist.
	dto.Spent = node.Spent
	dto.Remaining = node.Progress.Remaining
	dto.Percentage = node.Progress.BarPercentage()
	dto.Status = string(node.Progress.Status)
	for _, child := range node.Children {
		dto.Children = append(dto.Children, budgetToDTO(child.Budget))
	}
	return dto
}
