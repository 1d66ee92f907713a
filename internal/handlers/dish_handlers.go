package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/cookwithlove/directory-api/internal/domain"
)

func (h *Handlers) CreateDish(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateDishRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON format", "INVALID_INPUT")
		return
	}

	dish, err := h.dishService.Create(r.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			writeError(w, http.StatusNotFound, "Restaurant not found", "NOT_FOUND")
		case errors.Is(err, domain.ErrValidation):
			writeError(w, http.StatusBadRequest, err.Error(), "INVALID_INPUT")
		default:
			writeError(w, http.StatusInternalServerError, "Failed to create dish", "INTERNAL_ERROR")
		}
		return
	}

	writeJSON(w, http.StatusCreated, dish)
}

func (h *Handlers) GetDish(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid dish ID", "INVALID_INPUT")
		return
	}

	dish, err := h.dishService.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Dish not found", "NOT_FOUND")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get dish", "INTERNAL_ERROR")
		return
	}

	writeJSON(w, http.StatusOK, dish)
}

func (h *Handlers) ListDishes(w http.ResponseWriter, r *http.Request) {
	dishes, err := h.dishService.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list dishes", "INTERNAL_ERROR")
		return
	}

	if dishes == nil {
		dishes = []domain.Dish{}
	}
	writeJSON(w, http.StatusOK, dishes)
}

func (h *Handlers) ListDishesByRestaurant(w http.ResponseWriter, r *http.Request) {
	restaurantID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid restaurant ID", "INVALID_INPUT")
		return
	}

	dishes, err := h.dishService.ListByRestaurant(r.Context(), restaurantID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Restaurant not found", "NOT_FOUND")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to list dishes", "INTERNAL_ERROR")
		return
	}

	if dishes == nil {
		dishes = []domain.Dish{}
	}
	writeJSON(w, http.StatusOK, dishes)
}

func (h *Handlers) UpdateDish(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid dish ID", "INVALID_INPUT")
		return
	}

	var req domain.UpdateDishRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON format", "INVALID_INPUT")
		return
	}

	dish, err := h.dishService.Update(r.Context(), id, &req)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			writeError(w, http.StatusNotFound, "Dish not found", "NOT_FOUND")
		case errors.Is(err, domain.ErrValidation):
			writeError(w, http.StatusBadRequest, err.Error(), "INVALID_INPUT")
		default:
			writeError(w, http.StatusInternalServerError, "Failed to update dish", "INTERNAL_ERROR")
		}
		return
	}

	writeJSON(w, http.StatusOK, dish)
}

func (h *Handlers) DeleteDish(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid dish ID", "INVALID_INPUT")
		return
	}

	if err := h.dishService.Delete(r.Context(), id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Dish not found", "NOT_FOUND")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to delete dish", "INTERNAL_ERROR")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Dish deleted",
	})
}
