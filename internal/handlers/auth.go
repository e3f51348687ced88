package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"chartline/internal/services"
	"chartline/pkg/captcha"
	"chartline/pkg/httpx"
)

// AuthService is the authentication surface the handlers depend on.
type AuthService interface {
	Authenticate(ctx context.Context, username, password string) (*services.AuthResult, error)
	NeedsCaptcha(ctx context.Context, username string) (bool, error)
	ResetPassword(ctx context.Context, username, newPassword string) (bool, error)
	Logout(ctx context.Context, username string) error
}

// AuthHandler handles the login, logout, CAPTCHA and self-service reset
// endpoints.
type AuthHandler struct {
	service AuthService
}

// NewAuthHandler creates an AuthHandler.
func NewAuthHandler(service AuthService) *AuthHandler {
	return &AuthHandler{service: service}
}

// CaptchaAnswer carries a previously issued challenge back with the
// caller's answer. The core is stateless between challenge and answer,
// so the operands travel with the request.
type CaptchaAnswer struct {
	A      int    `json:"a"`
	B      int    `json:"b"`
	Answer string `json:"answer"`
}

// LoginRequest is the request body for login.
type LoginRequest struct {
	Username string         `json:"username" validate:"required"`
	Password string         `json:"password" validate:"required"`
	Captcha  *CaptchaAnswer `json:"captcha,omitempty"`
}

// LogoutRequest is the request body for logout.
type LogoutRequest struct {
	Username string `json:"username" validate:"required"`
}

// ResetPasswordRequest is the request body for a self-service reset.
type ResetPasswordRequest struct {
	Username    string `json:"username" validate:"required"`
	NewPassword string `json:"new_password" validate:"required"`
}

// CaptchaResponse is the response body for a freshly issued challenge.
type CaptchaResponse struct {
	A        int    `json:"a"`
	B        int    `json:"b"`
	Question string `json:"question"`
}

// Login authenticates a username/password pair. Once an account is
// locked, a valid CAPTCHA answer must accompany the request before the
// core is consulted at all. The challenge operands are asserted by the
// client, so the gate is automation friction, not an access control;
// the lockout itself is enforced server-side.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteBadRequest(w, "Invalid request body")
		return
	}
	if err := ValidateRequest(req); err != nil {
		httpx.WriteBadRequest(w, err.Error())
		return
	}

	needsCaptcha, err := h.service.NeedsCaptcha(r.Context(), req.Username)
	if err != nil {
		httpx.WriteInternalError(w, "Authentication unavailable")
		return
	}

	if needsCaptcha {
		if req.Captcha == nil || !challengeFrom(req.Captcha).Validate(req.Captcha.Answer) {
			httpx.WriteJSON(w, http.StatusUnauthorized, services.AuthResult{
				Success:         false,
				ErrorMessage:    "Incorrect CAPTCHA answer",
				RequiresCaptcha: true,
			})
			return
		}
	}

	result, err := h.service.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		httpx.WriteInternalError(w, "Authentication unavailable")
		return
	}

	status := http.StatusOK
	if !result.Success {
		status = http.StatusUnauthorized
	}
	httpx.WriteJSON(w, status, result)
}

// Captcha issues a fresh arithmetic challenge.
func (h *AuthHandler) Captcha(w http.ResponseWriter, r *http.Request) {
	c := captcha.Generate()
	httpx.WriteJSON(w, http.StatusOK, CaptchaResponse{
		A:        c.A,
		B:        c.B,
		Question: c.Text(),
	})
}

// Logout records the logout in the audit trail.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	var req LogoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteBadRequest(w, "Invalid request body")
		return
	}
	if err := ValidateRequest(req); err != nil {
		httpx.WriteBadRequest(w, err.Error())
		return
	}

	if err := h.service.Logout(r.Context(), req.Username); err != nil {
		httpx.WriteInternalError(w, "Logout failed")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ResetPassword performs a self-service password reset. The response is
// deliberately generic: it does not reveal whether the username exists
// or which policy rule a rejected password failed.
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req ResetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteBadRequest(w, "Invalid request body")
		return
	}
	if err := ValidateRequest(req); err != nil {
		httpx.WriteBadRequest(w, err.Error())
		return
	}

	ok, err := h.service.ResetPassword(r.Context(), req.Username, req.NewPassword)
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

func challengeFrom(answer *CaptchaAnswer) captcha.Challenge {
	return captcha.Challenge{A: answer.A, B: answer.B}
}
