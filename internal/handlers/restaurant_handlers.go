package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/cookwithlove/directory-api/internal/domain"
)

func (h *Handlers) CreateRestaurant(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateRestaurantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON format", "INVALID_INPUT")
		return
	}

	restaurant, err := h.restaurantService.Create(r.Context(), &req)
	if err != nil {
		if errors.Is(err, domain.ErrValidation) {
			writeError(w, http.StatusBadRequest, err.Error(), "INVALID_INPUT")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to create restaurant", "INTERNAL_ERROR")
		return
	}

	writeJSON(w, http.StatusCreated, restaurant)
}

func (h *Handlers) GetRestaurant(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid restaurant ID", "INVALID_INPUT")
		return
	}

	restaurant, err := h.restaurantService.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Restaurant not found", "NOT_FOUND")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get restaurant", "INTERNAL_ERROR")
		return
	}

	writeJSON(w, http.StatusOK, restaurant)
}

func (h *Handlers) ListRestaurants(w http.ResponseWriter, r *http.Request) {
	restaurants, err := h.restaurantService.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list restaurants", "INTERNAL_ERROR")
		return
	}

	if restaurants == nil {
		restaurants = []domain.Restaurant{}
	}
	writeJSON(w, http.StatusOK, restaurants)
}

func (h *Handlers) UpdateRestaurant(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid restaurant ID", "INVALID_INPUT")
		return
	}

	var req domain.UpdateRestaurantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON format", "INVALID_INPUT")
		return
	}

	restaurant, err := h.restaurantService.Update(r.Context(), id, &req)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			writeError(w, http.StatusNotFound, "Restaurant not found", "NOT_FOUND")
		case errors.Is(err, domain.ErrValidation):
			writeError(w, http.StatusBadRequest, err.Error(), "INVALID_INPUT")
		default:
			writeError(w, http.StatusInternalServerError, "Failed to update restaurant", "INTERNAL_ERROR")
		}
		return
	}

	writeJSON(w, http.StatusOK, restaurant)
}

func (h *Handlers) DeleteRestaurant(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid restaurant ID", "INVALID_INPUT")
		return
	}

	if err := h.restaurantService.Delete(r.Context(), id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Restaurant not found", "NOT_FOUND")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to delete restaurant", "INTERNAL_ERROR")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Restaurant deleted",
	})
}
