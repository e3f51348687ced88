package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"chartline/internal/models"
	"chartline/internal/store"
	"chartline/pkg/httpx"
)

// AdminService is the account-management surface the admin handlers
// depend on.
type AdminService interface {
	CreateUser(ctx context.Context, username, email, password string, role models.Role) (bool, error)
	UpdateUser(ctx context.Context, username, email string, role models.Role) (bool, error)
	DeleteUser(ctx context.Context, username, adminUsername string) (bool, error)
	AdminResetPassword(ctx context.Context, targetUsername, newPassword, adminUsername string) (bool, error)
	UnlockUser(ctx context.Context, username, adminUsername string) (bool, error)
	AllUsers(ctx context.Context) (map[string]*models.User, error)
	LockedUsers(ctx context.Context) ([]string, error)
}

// AdminHandler handles the account-management endpoints. Admin actions
// carry the acting admin's username so the audit trail can attribute
// them; authenticating that admin is the UI layer's responsibility.
type AdminHandler struct {
	service AdminService
	audit   store.AuditLog
}

// NewAdminHandler creates an AdminHandler.
func NewAdminHandler(service AdminService, audit store.AuditLog) *AdminHandler {
	return &AdminHandler{service: service, audit: audit}
}

// CreateUserRequest is the request body for user creation.
type CreateUserRequest struct {
	Username string `json:"username" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	Role     string `json:"role" validate:"required,oneof=admin viewer"`
}

// UpdateUserRequest is the request body for a partial user update.
type UpdateUserRequest struct {
	Email string `json:"email,omitempty" validate:"omitempty,email"`
	Role  string `json:"role,omitempty" validate:"omitempty,oneof=admin viewer"`
}

// AdminResetPasswordRequest is the request body for an admin-initiated
// password reset.
type AdminResetPasswordRequest struct {
	NewPassword   string `json:"new_password" validate:"required"`
	AdminUsername string `json:"admin_username" validate:"required"`
}

// UnlockRequest is the request body for an account unlock.
type UnlockRequest struct {
	AdminUsername string `json:"admin_username" validate:"required"`
}

// ListUsers returns every user as a hash-free projection keyed by
// username.
func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.AllUsers(r.Context())
	if err != nil {
		httpx.WriteInternalError(w, "User listing unavailable")
		return
	}

	out := make(map[string]models.Profile, len(users))
	for username, user := range users {
		out[username] = user.Profile()
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

// CreateUser registers a new user.
func (h *AdminHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteBadRequest(w, "Invalid request body")
		return
	}
	if err := ValidateRequest(req); err != nil {
		httpx.WriteBadRequest(w, err.Error())
		return
	}

	ok, err := h.service.CreateUser(r.Context(), req.Username, req.Email, req.Password, models.Role(req.Role))
	if err != nil {
		httpx.WriteInternalError(w, "User creation unavailable")
		return
	}
	if !ok {
		httpx.WriteBadRequest(w, "User creation failed")
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, map[string]bool{"created": true})
}

// UpdateUser applies a partial update to a user's email and role.
func (h *AdminHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")

	var req UpdateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteBadRequest(w, "Invalid request body")
		return
	}
	if err := ValidateRequest(req); err != nil {
		httpx.WriteBadRequest(w, err.Error())
		return
	}

	ok, err := h.service.UpdateUser(r.Context(), username, req.Email, models.Role(req.Role))
	if err != nil {
		httpx.WriteInternalError(w, "User update unavailable")
		return
	}
	if !ok {
		httpx.WriteNotFound(w, "User not found")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]bool{"updated": true})
}

// DeleteUser removes a user record. The acting admin is attributed via
// the admin_username query parameter.
func (h *AdminHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")
	adminUsername := r.URL.Query().Get("admin_username")
	if adminUsername == "" {
		httpx.WriteBadRequest(w, "admin_username is required")
		return
	}

	ok, err := h.service.DeleteUser(r.Context(), username, adminUsername)
	if err != nil {
		httpx.WriteInternalError(w, "User deletion unavailable")
		return
	}
	if !ok {
		httpx.WriteNotFound(w, "User not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ResetPassword performs an admin-initiated password reset, which also
// recovers a locked account.
func (h *AdminHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")

	var req AdminResetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteBadRequest(w, "Invalid request body")
		return
	}
	if err := ValidateRequest(req); err != nil {
		httpx.WriteBadRequest(w, err.Error())
		return
	}

	ok, err := h.service.AdminResetPassword(r.Context(), username, req.NewPassword, req.AdminUsername)
	if err != nil {
		httpx.WriteInternalError(w, "Password reset unavailable")
		return
	}
	if !ok {
		httpx.WriteBadRequest(w, "Password reset failed")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]bool{"reset": true})
}

// Unlock clears a user's failed-attempt counter. Unlocking a user with
// no counter reports 409 so repeated clicks in the admin UI are visible.
func (h *AdminHandler) Unlock(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")

	var req UnlockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteBadRequest(w, "Invalid request body")
		return
	}
	if err := ValidateRequest(req); err != nil {
		httpx.WriteBadRequest(w, err.Error())
		return
	}

	ok, err := h.service.UnlockUser(r.Context(), username, req.AdminUsername)
	if err != nil {
		httpx.WriteInternalError(w, "Unlock unavailable")
		return
	}
	if !ok {
		httpx.WriteConflict(w, "Nothing to unlock")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]bool{"unlocked": true})
}

// LockedUsers lists every locked username.
func (h *AdminHandler) LockedUsers(w http.ResponseWriter, r *http.Request) {
	locked, err := h.service.LockedUsers(r.Context())
	if err != nil {
		httpx.WriteInternalError(w, "Lockout listing unavailable")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string][]string{"locked": locked})
}

// AuditLog returns the raw audit trail as plain text, one event per
// line in append order.
func (h *AdminHandler) AuditLog(w http.ResponseWriter, r *http.Request) {
	content, err := h.audit.ReadAll(r.Context())
	if err != nil {
		httpx.WriteInternalError(w, "Audit log unavailable")
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(content))
}
