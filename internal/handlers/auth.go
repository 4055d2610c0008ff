package handlers

import (
	"errors"
	"net/http"

	log "github.com/sirupsen/logrus"
	"github.com/ukydev/office-duty-card/internal/auth"
	"github.com/ukydev/office-duty-card/internal/db"
	"github.com/ukydev/office-duty-card/internal/middleware"
	"github.com/ukydev/office-duty-card/internal/models"
)

// AuthHandler handles authentication requests
type AuthHandler struct {
	authService *auth.Service
}

// NewAuthHandler creates a new authentication handler
func NewAuthHandler(authService *auth.Service) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// Login handles user login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var loginReq models.LoginRequest
	if !readJSON(w, r, &loginReq) {
		return
	}

	// Validate input
	if loginReq.Email == "" || loginReq.Password == "" {
		writeError(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	resp, err := h.authService.SignIn(r.Context(), loginReq.Email, loginReq.Password)
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	case errors.Is(err, auth.ErrUserInactive):
		writeError(w, http.StatusUnauthorized, "Account is deactivated")
		return
	case err != nil:
		log.WithError(err).Error("Sign-in failed")
		writeError(w, http.StatusInternalServerError, "Sign-in failed")
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// Logout revokes the caller's token.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "User context not found")
		return
	}

	if err := h.authService.SignOut(r.Context(), claims); err != nil {
		log.WithError(err).Error("Sign-out failed")
		writeError(w, http.StatusServiceUnavailable, "Sign-out failed")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Session returns the claims of the current session.
func (h *AuthHandler) Session(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "User context not found")
		return
	}
	writeJSON(w, http.StatusOK, claims)
}

// ChangePassword replaces the caller's password.
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "User context not found")
		return
	}

	var req models.ChangePasswordRequest
	if !readJSON(w, r, &req) {
		return
	}
	if req.CurrentPassword == "" || req.NewPassword == "" {
		writeError(w, http.StatusBadRequest, "Current and new password are required")
		return
	}

	err := h.authService.ChangePassword(r.Context(), claims, req.CurrentPassword, req.NewPassword)
	switch {
	case err == nil:
		w.WriteHeader(http.StatusNoContent)
	case errors.Is(err, auth.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "Current password is incorrect")
	case errors.Is(err, db.ErrNotFound):
		writeError(w, http.StatusNotFound, "User not found")
	case errors.Is(err, auth.ErrWeakPassword):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		log.WithError(err).Error("Password change failed")
		writeError(w, http.StatusInternalServerError, "Failed to change password")
	}
}

// CreateUser adds an account with the requested role. Admin only.
func (h *AuthHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req models.CreateUserRequest
	if !readJSON(w, r, &req) {
		return
	}
	if req.Email == "" || req.Password == "" || req.Role == "" {
		writeError(w, http.StatusBadRequest, "Email, password and role are required")
		return
	}

	user, err := h.authService.CreateUser(r.Context(), req)
	switch {
	case errors.Is(err, auth.ErrInvalidEmail), errors.Is(err, auth.ErrWeakPassword), errors.Is(err, auth.ErrInvalidRole):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, auth.ErrEmailTaken):
		writeError(w, http.StatusConflict, "Email already exists")
		return
	case err != nil:
		log.WithError(err).Error("User creation failed")
		writeError(w, http.StatusInternalServerError, "Failed to create user")
		return
	}

	writeJSON(w, http.StatusCreated, user)
}
