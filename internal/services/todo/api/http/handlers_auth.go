package httpapi

import (
	"net/http"

	apperrors "github.com/louisbranch/taskboard/internal/platform/errors"
	"github.com/louisbranch/taskboard/internal/platform/httpx"
	"github.com/louisbranch/taskboard/internal/platform/logging"
	"github.com/louisbranch/taskboard/internal/services/todo/service"
)

var errTooManyLogins = apperrors.New(apperrors.CodeRateLimited, "Too many login attempts, please try again later")

func (h *handlers) handleSignUp(w http.ResponseWriter, r *http.Request) {
	var req signUpRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	if _, err := h.accounts.SignUp(r.Context(), service.SignUpInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	}); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	_ = httpx.WriteMessage(w, http.StatusCreated, "User created successfully")
}

func (h *handlers) handleLogin(w http.ResponseWriter, r *http.Request) {
	if h.loginLimiter != nil && !h.loginLimiter.Allow(httpx.ClientIP(r)) {
		w.Header().Set("Retry-After", "60")
		httpx.WriteError(w, r, errTooManyLogins)
		return
	}

	var req loginRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	token, loggedIn, err := h.accounts.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	writeSessionCookie(w, token.Value, token.ExpiresAt, h.cookies)
	_ = httpx.WriteJSON(w, http.StatusOK, loginResponse{
		Message: "Login successful",
		User:    toUserResponse(loggedIn),
	})
}

// handleLogout always clears the cookie. A still-valid session is revoked
// server-side so a copied token stops working too.
func (h *handlers) handleLogout(w http.ResponseWriter, r *http.Request) {
	if current, err := authenticate(r, h.sessions, h.accounts); err == nil {
		if err := h.accounts.Logout(r.Context(), current); err != nil {
			logging.FromContext(r.Context()).WithError(err).Warn("revoke session on logout")
		}
	}
	clearSessionCookie(w, h.cookies)
	_ = httpx.WriteMessage(w, http.StatusOK, "Logged out")
}
