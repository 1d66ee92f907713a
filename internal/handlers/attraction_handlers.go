package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/cookwithlove/directory-api/internal/domain"
)

func (h *Handlers) CreateAttraction(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateAttractionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON format", "INVALID_INPUT")
		return
	}

	attraction, err := h.attractionService.Create(r.Context(), &req)
	if err != nil {
		if errors.Is(err, domain.ErrValidation) {
			writeError(w, http.StatusBadRequest, err.Error(), "INVALID_INPUT")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to create attraction", "INTERNAL_ERROR")
		return
	}

	writeJSON(w, http.StatusCreated, attraction)
}

func (h *Handlers) GetAttraction(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid attraction ID", "INVALID_INPUT")
		return
	}

	attraction, err := h.attractionService.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Attraction not found", "NOT_FOUND")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get attraction", "INTERNAL_ERROR")
		return
	}

	writeJSON(w, http.StatusOK, attraction)
}

func (h *Handlers) ListAttractions(w http.ResponseWriter, r *http.Request) {
	filter := domain.AttractionFilter{
		Status:     r.URL.Query().Get("status"),
		Category:   r.URL.Query().Get("category"),
		Difficulty: r.URL.Query().Get("difficulty"),
	}

	attractions, err := h.attractionService.List(r.Context(), filter)
	if err != nil {
		if errors.Is(err, domain.ErrValidation) {
			writeError(w, http.StatusBadRequest, err.Error(), "INVALID_INPUT")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to list attractions", "INTERNAL_ERROR")
		return
	}

	if attractions == nil {
		attractions = []domain.Attraction{}
	}
	writeJSON(w, http.StatusOK, attractions)
}

func (h *Handlers) SearchAttractions(w http.ResponseWriter, r *http.Request) {
	term := r.URL.Query().Get("q")

	attractions, err := h.attractionService.Search(r.Context(), term)
	if err != nil {
		if errors.Is(err, domain.ErrValidation) {
			writeError(w, http.StatusBadRequest, err.Error(), "INVALID_INPUT")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to search attractions", "INTERNAL_ERROR")
		return
	}

	if attractions == nil {
		attractions = []domain.Attraction{}
	}
	writeJSON(w, http.StatusOK, attractions)
}

func (h *Handlers) AttractionStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.attractionService.Stats(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to compute stats", "INTERNAL_ERROR")
		return
	}

	writeJSON(w, http.StatusOK, stats)
}

func (h *Handlers) UpdateAttraction(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid attraction ID", "INVALID_INPUT")
		return
	}

	var req domain.UpdateAttractionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON format", "INVALID_INPUT")
		return
	}

	attraction, err := h.attractionService.Update(r.Context(), id, &req)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			writeError(w, http.StatusNotFound, "Attraction not found", "NOT_FOUND")
		case errors.Is(err, domain.ErrValidation):
			writeError(w, http.StatusBadRequest, err.Error(), "INVALID_INPUT")
		default:
			writeError(w, http.StatusInternalServerError, "Failed to update attraction", "INTERNAL_ERROR")
		}
		return
	}

	writeJSON(w, http.StatusOK, attraction)
}

func (h *Handlers) UpdateAttractionStatus(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid attraction ID", "INVALID_INPUT")
		return
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Status == "" {
		writeError(w, http.StatusBadRequest, "Status is required", "INVALID_INPUT")
		return
	}

	attraction, err := h.attractionService.UpdateStatus(r.Context(), id, req.Status)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			writeError(w, http.StatusNotFound, "Attraction not found", "NOT_FOUND")
		case errors.Is(err, domain.ErrValidation):
			writeError(w, http.StatusBadRequest, err.Error(), "INVALID_INPUT")
		default:
			writeError(w, http.StatusInternalServerError, "Failed to update attraction status", "INTERNAL_ERROR")
		}
		return
	}

	writeJSON(w, http.StatusOK, attraction)
}

func (h *Handlers) DeleteAttraction(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid attraction ID", "INVALID_INPUT")
		return
	}

	if err := h.attractionService.Delete(r.Context(), id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Attraction not found", "NOT_FOUND")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to delete attraction", "INTERNAL_ERROR")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Attraction deleted",
	})
}
