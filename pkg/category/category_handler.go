package category

import (
	"encoding/json"
	"net/http"
)

type CategoryDTO struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Kind     string `json:"kind"`
	ParentId string `json:"parentId,omitempty"`
	Color    string `json:"color,omitempty"`
	Icon     string `json:"icon,omitempty"`
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service}
}

// GetAll godoc
// @Summary List categories visible to the current user
// @Description Optionally filtered by kind ("expense" or "income")
// @Tags Category
// @Produce json
// @Param kind query string false "Category kind"
// @Success 200 {array} CategoryDTO
// @Failure 403 {string} string "User not found"
// @Router /api/category [get]
// @Security XUserId
func (h *Handler) GetAll(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	kind := Kind(r.URL.Query().Get("kind"))

	categories, err := h.service.GetAll(r.Context(), kind)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	dtos := make([]CategoryDTO, 0, len(categories))
	for _, c := range categories {
		dtos = append(dtos, CategoryToDTO(c))
	}
	if err := json.NewEncoder(w).Encode(dtos); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func CategoryToDTO(c Category) CategoryDTO {
	return CategoryDTO{
		ID:       c.ID,
		Name:     c.Name,
		Kind:     string(c.Kind),
		ParentId: c.ParentId,
		Color:    c.Color,
		Icon:     c.Icon,
	}
}
