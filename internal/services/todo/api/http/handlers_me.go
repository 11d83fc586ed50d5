package httpapi

import (
	"net/http"

	"github.com/louisbranch/taskboard/internal/platform/httpx"
	"github.com/louisbranch/taskboard/internal/platform/requestctx"
	"github.com/louisbranch/taskboard/internal/services/todo/user"
)

func (h *handlers) handleGetMe(w http.ResponseWriter, r *http.Request) {
	profile, err := h.accounts.Profile(r.Context(), requestctx.UserIDFromContext(r.Context()))
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	_ = httpx.WriteJSON(w, http.StatusOK, toUserResponse(profile))
}

func (h *handlers) handleUpdateMe(w http.ResponseWriter, r *http.Request) {
	var req profileRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	updated, err := h.accounts.UpdateProfile(r.Context(), requestctx.UserIDFromContext(r.Context()), user.ProfilePatch{
		Name:  req.Name,
		Email: req.Email,
	})
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	_ = httpx.WriteJSON(w, http.StatusOK, toUserResponse(updated))
}
