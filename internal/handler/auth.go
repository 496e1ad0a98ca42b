package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/tradepost/tradepost/internal/service"
	"github.com/tradepost/tradepost/internal/session"
)

// AuthHandler handles registration, login, session probes, and profiles.
type AuthHandler struct {
	accounts *service.AccountService
	sessions *session.Manager
	logger   *slog.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(accounts *service.AccountService, sessions *session.Manager, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		accounts: accounts,
		sessions: sessions,
		logger:   logger,
	}
}

// Register handles POST /auth/register.
// Validation failures come back as a 200 with success=false; only
// infrastructure problems produce a transport-level error.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_FORM", "Invalid request body")
		return
	}

	input := service.RegisterInput{
		Email:          r.PostFormValue("email"),
		Password:       r.PostFormValue("password"),
		Name:           formOptional(r, "name"),
		PinCode:        formOptional(r, "pin_code"),
		ProfilePicture: formOptional(r, "profile_picture"),
	}

	result, err := h.accounts.Register(r.Context(), input)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	if result.Success && result.UserID != nil {
		if err := h.sessions.Issue(r.Context(), w, *result.UserID); err != nil {
			h.handleServiceError(w, err)
			return
		}
		h.logger.Info("user_registered", "user_id", *result.UserID)
	}

	writeJSON(w, http.StatusOK, result)
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_FORM", "Invalid request body")
		return
	}

	result, err := h.accounts.Login(r.Context(), r.PostFormValue("email"), r.PostFormValue("password"))
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	if result.Success && result.UserID != nil {
		if err := h.sessions.Issue(r.Context(), w, *result.UserID); err != nil {
			h.handleServiceError(w, err)
			return
		}
		h.logger.Info("user_logged_in", "user_id", *result.UserID)
	}

	writeJSON(w, http.StatusOK, result)
}

// Logout handles POST /auth/logout. Flushes the whole session.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Clear(r.Context(), w, r); err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, service.AuthResult{
		Success: true,
		Message: "Logged out successfully",
	})
}

// Check handles GET /auth/check. A soft probe: an unauthenticated
// session is a 200 with success=false, not a 401.
func (h *AuthHandler) Check(w http.ResponseWriter, r *http.Request) {
	userID, err := h.sessions.Resolve(r.Context(), r)
	if err != nil {
		writeJSON(w, http.StatusOK, service.AuthResult{
			Success: false,
			Message: "Not authenticated",
		})
		return
	}

	writeJSON(w, http.StatusOK, service.AuthResult{
		Success: true,
		Message: "Authenticated",
		UserID:  &userID,
	})
}

// MyUserID handles GET /auth/my_userid.
func (h *AuthHandler) MyUserID(w http.ResponseWriter, r *http.Request) {
	userID, err := h.sessions.Resolve(r.Context(), r)
	if err != nil {
		writeAuthError(w)
		return
	}

	writeJSON(w, http.StatusOK, userID)
}

// MyProfile handles GET /auth/myprofile.
func (h *AuthHandler) MyProfile(w http.ResponseWriter, r *http.Request) {
	userID, err := h.sessions.Resolve(r.Context(), r)
	if err != nil {
		writeAuthError(w)
		return
	}

	profile, err := h.accounts.GetProfile(r.Context(), userID)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, profile)
}

// UserProfile handles GET /auth/userprofile/{id}. Public by ID.
func (h *AuthHandler) UserProfile(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "User ID must be an integer")
		return
	}

	profile, err := h.accounts.GetProfile(r.Context(), id)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, profile)
}

// UpdateProfilePicture handles POST /auth/myprofile/picture.
func (h *AuthHandler) UpdateProfilePicture(w http.ResponseWriter, r *http.Request) {
	userID, err := h.sessions.Resolve(r.Context(), r)
	if err != nil {
		writeAuthError(w)
		return
	}

	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_FORM", "Invalid request body")
		return
	}

	imageData := r.PostFormValue("profile_picture")
	if imageData == "" {
		writeError(w, http.StatusBadRequest, "MISSING_PICTURE", "Profile picture payload is required")
		return
	}

	profile, err := h.accounts.UpdateProfilePicture(r.Context(), userID, imageData)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("profile_picture_updated", "user_id", userID)

	writeJSON(w, http.StatusOK, profile)
}

// handleServiceError maps service errors to HTTP responses.
func (h *AuthHandler) handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrUserNotFound):
		writeError(w, http.StatusNotFound, "USER_NOT_FOUND", "User not found")
	default:
		h.logger.Error("internal_error", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
	}
}
