package handlers

import (
	"net/http"

	"github.com/cx-tal-miterani/airport-booking/internal/service"
)

// Register handles POST /api/user/register
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req service.RegisterRequest
	if err := h.decodeValid(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	user, err := h.userService.Register(r.Context(), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, user)
}

// Token handles POST /api/user/token
func (h *Handler) Token(w http.ResponseWriter, r *http.Request) {
	var req service.TokenRequest
	if err := h.decodeValid(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	token, err := h.userService.Token(r.Context(), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, token)
}

// Me handles GET /api/user/me
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := h.userService.Me(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, user)
}
