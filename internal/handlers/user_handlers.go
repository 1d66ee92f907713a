package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/cookwithlove/directory-api/internal/domain"
	"github.com/cookwithlove/directory-api/internal/service"
)

// Profile endpoints (authenticated user)

func (h *Handlers) GetProfile(w http.ResponseWriter, r *http.Request) {
	claims := getClaims(r)
	if claims == nil {
		writeError(w, http.StatusUnauthorized, "Missing authentication", "UNAUTHORIZED")
		return
	}

	user, err := h.authService.GetProfile(r.Context(), claims.Sub)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "User not found", "NOT_FOUND")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get profile", "INTERNAL_ERROR")
		return
	}

	writeJSON(w, http.StatusOK, user.ToUserInfo())
}

func (h *Handlers) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	claims := getClaims(r)
	if claims == nil {
		writeError(w, http.StatusUnauthorized, "Missing authentication", "UNAUTHORIZED")
		return
	}

	var req domain.UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON format", "INVALID_INPUT")
		return
	}

	user, err := h.authService.UpdateProfile(r.Context(), claims.Sub, &req)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			writeError(w, http.StatusNotFound, "User not found", "NOT_FOUND")
		case errors.Is(err, domain.ErrValidation):
			writeError(w, http.StatusBadRequest, err.Error(), "INVALID_INPUT")
		default:
			writeError(w, http.StatusInternalServerError, "Failed to update profile", "INTERNAL_ERROR")
		}
		return
	}

	writeJSON(w, http.StatusOK, user.ToUserInfo())
}

func (h *Handlers) ChangePassword(w http.ResponseWriter, r *http.Request) {
	claims := getClaims(r)
	if claims == nil {
		writeError(w, http.StatusUnauthorized, "Missing authentication", "UNAUTHORIZED")
		return
	}

	var req domain.ChangePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON format", "INVALID_INPUT")
		return
	}

	if err := h.authService.ChangePassword(r.Context(), claims.Sub, &req); err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			writeError(w, http.StatusUnauthorized, "Current password is incorrect", "INVALID_CREDENTIALS")
		case errors.Is(err, domain.ErrValidation):
			writeError(w, http.StatusBadRequest, err.Error(), "INVALID_INPUT")
		default:
			writeError(w, http.StatusInternalServerError, "Failed to change password", "INTERNAL_ERROR")
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Password changed successfully",
	})
}

func (h *Handlers) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	claims := getClaims(r)
	if claims == nil {
		writeError(w, http.StatusUnauthorized, "Missing authentication", "UNAUTHORIZED")
		return
	}

	if err := h.authService.DeleteAccount(r.Context(), claims.Sub); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "User not found", "NOT_FOUND")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to delete account", "INTERNAL_ERROR")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Account deleted",
	})
}

// Admin endpoints

func (h *Handlers) ListUsers(w http.ResponseWriter, r *http.Request) {
	limit, offset := parsePagination(r)

	users, err := h.authService.ListUsers(r.Context(), limit, offset)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list users", "INTERNAL_ERROR")
		return
	}

	userInfos := make([]*domain.UserInfo, len(users))
	for i := range users {
		userInfos[i] = users[i].ToUserInfo()
	}

	writeJSON(w, http.StatusOK, userInfos)
}

func (h *Handlers) GetUser(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid user ID", "INVALID_INPUT")
		return
	}

	user, err := h.authService.GetUser(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "User not found", "NOT_FOUND")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get user", "INTERNAL_ERROR")
		return
	}

	writeJSON(w, http.StatusOK, user.ToUserInfo())
}

func (h *Handlers) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid user ID", "INVALID_INPUT")
		return
	}

	var req domain.UpdateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON format", "INVALID_INPUT")
		return
	}

	user, err := h.authService.UpdateUser(r.Context(), id, &req)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			writeError(w, http.StatusNotFound, "User not found", "NOT_FOUND")
		case errors.Is(err, domain.ErrValidation):
			writeError(w, http.StatusBadRequest, err.Error(), "INVALID_INPUT")
		default:
			writeError(w, http.StatusInternalServerError, "Failed to update user", "INTERNAL_ERROR")
		}
		return
	}

	writeJSON(w, http.StatusOK, user.ToUserInfo())
}

func (h *Handlers) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid user ID", "INVALID_INPUT")
		return
	}

	if err := h.authService.DeleteUser(r.Context(), id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "User not found", "NOT_FOUND")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to delete user", "INTERNAL_ERROR")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"message": "User deleted",
	})
}
