package handler

import (
	"net/http"

	"github.com/Shivanand-hulikatti/event-checkin/internal/i18n"
	"github.com/Shivanand-hulikatti/event-checkin/internal/model"
)

// Login handles POST /api/auth/login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req model.LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.badBody(w, r, err)
		return
	}

	res, err := h.svc.Auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	expiresAt := res.ExpiresAt
	writeJSON(w, http.StatusOK, model.LoginResponse{
		Message:   h.msg(r, i18n.MsgLoginSuccess, nil),
		User:      res.Principal,
		Token:     res.Token,
		ExpiresAt: &expiresAt,
	})
}

// Profile handles GET /api/auth/profile
func (h *Handler) Profile(w http.ResponseWriter, r *http.Request) {
	profile, err := h.svc.Auth.Profile(r.Context(), PrincipalFrom(r.Context()))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}
