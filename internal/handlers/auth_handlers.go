package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/cookwithlove/directory-api/internal/domain"
	"github.com/cookwithlove/directory-api/internal/service"
	"github.com/cookwithlove/directory-api/internal/verification"
)

// Register holds the signup as pending; the account only exists after the
// emailed code comes back through VerifyEmail.
func (h *Handlers) Register(w http.ResponseWriter, r *http.Request) {
	var req domain.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON format", "INVALID_INPUT")
		return
	}

	result, err := h.authService.Register(r.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrConflict):
			writeError(w, http.StatusConflict, "An account with this email already exists", "EMAIL_TAKEN")
		case errors.Is(err, domain.ErrValidation):
			writeError(w, http.StatusBadRequest, err.Error(), "INVALID_INPUT")
		default:
			writeError(w, http.StatusInternalServerError, "Failed to process registration", "INTERNAL_ERROR")
		}
		return
	}

	response := map[string]interface{}{
		"message":   "Registration received. Please check your email for the verification code.",
		"email":     result.Email,
		"emailSent": result.EmailSent,
	}
	if !result.EmailSent {
		// Mail provider is down; surface the code so signup still completes
		response["verificationCode"] = result.VerificationCode
		response["message"] = "Registration received but the verification email could not be sent. Use the code below."
	}

	writeJSON(w, http.StatusOK, response)
}

// VerifyEmail promotes a pending signup to a real account.
func (h *Handlers) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	var req domain.VerifyEmailRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON format", "INVALID_INPUT")
		return
	}
	if req.Email == "" || req.VerificationCode == "" {
		writeError(w, http.StatusBadRequest, "Email and verification code are required", "INVALID_INPUT")
		return
	}

	user, err := h.authService.VerifyEmail(r.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, verification.ErrNoPending):
			writeError(w, http.StatusBadRequest, err.Error(), "NO_PENDING_VERIFICATION")
		case errors.Is(err, verification.ErrCodeExpired):
			writeError(w, http.StatusBadRequest, err.Error(), "CODE_EXPIRED")
		case errors.Is(err, verification.ErrCodeInvalid):
			writeError(w, http.StatusBadRequest, err.Error(), "CODE_INVALID")
		case errors.Is(err, domain.ErrConflict):
			writeError(w, http.StatusConflict, "An account with this email already exists", "EMAIL_TAKEN")
		default:
			writeError(w, http.StatusInternalServerError, "Failed to verify email", "INTERNAL_ERROR")
		}
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "Email verified successfully. Your account is ready.",
		"user":    user.ToUserInfo(),
	})
}

// ResendVerification rotates the pending code and emails it again.
func (h *Handlers) ResendVerification(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" {
		writeError(w, http.StatusBadRequest, "Email is required", "INVALID_INPUT")
		return
	}

	if _, err := h.authService.ResendVerification(r.Context(), req.Email); err != nil {
		switch {
		case errors.Is(err, service.ErrAlreadyVerified):
			writeError(w, http.StatusBadRequest, err.Error(), "ALREADY_VERIFIED")
		case errors.Is(err, verification.ErrNoPending):
			writeError(w, http.StatusNotFound, err.Error(), "NO_PENDING_VERIFICATION")
		default:
			writeError(w, http.StatusInternalServerError, "Failed to resend verification email", "INTERNAL_ERROR")
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Verification email sent",
	})
}

func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var req domain.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON format", "INVALID_INPUT")
		return
	}

	response, err := h.authService.Login(r.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			writeError(w, http.StatusUnauthorized, "Invalid email or password", "INVALID_CREDENTIALS")
		case errors.Is(err, service.ErrEmailNotVerified):
			writeError(w, http.StatusForbidden, err.Error(), "EMAIL_NOT_VERIFIED")
		case errors.Is(err, service.ErrAccountDisabled):
			writeError(w, http.StatusForbidden, err.Error(), "ACCOUNT_DISABLED")
		case errors.Is(err, domain.ErrValidation):
			writeError(w, http.StatusBadRequest, err.Error(), "INVALID_INPUT")
		default:
			writeError(w, http.StatusInternalServerError, "Failed to process login", "INTERNAL_ERROR")
		}
		return
	}

	writeJSON(w, http.StatusOK, response)
}

func (h *Handlers) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" {
		writeError(w, http.StatusBadRequest, "Email is required", "INVALID_INPUT")
		return
	}

	if err := h.authService.ForgotPassword(r.Context(), req.Email); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to process password reset", "INTERNAL_ERROR")
		return
	}

	// Same answer whether the account exists or not
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "If an account exists for this email, a reset code has been sent",
	})
}

func (h *Handlers) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req domain.ResetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON format", "INVALID_INPUT")
		return
	}

	if err := h.authService.ResetPassword(r.Context(), &req); err != nil {
		switch {
		case errors.Is(err, service.ErrResetCodeInvalid):
			writeError(w, http.StatusBadRequest, err.Error(), "RESET_CODE_INVALID")
		case errors.Is(err, domain.ErrValidation):
			writeError(w, http.StatusBadRequest, err.Error(), "INVALID_INPUT")
		default:
			writeError(w, http.StatusInternalServerError, "Failed to reset password", "INTERNAL_ERROR")
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Password updated successfully",
	})
}

// PendingVerifications is a debug endpoint for operators; admin only.
func (h *Handlers) PendingVerifications(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.authService.PendingStats())
}
