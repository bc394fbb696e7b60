// Package handler contains chi HTTP handlers that translate HTTP
// requests/responses to and from the service layer.
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/Shivanand-hulikatti/event-checkin/internal/i18n"
	"github.com/Shivanand-hulikatti/event-checkin/internal/service"
)

// Services bundles the service layer the handlers call into.
type Services struct {
	Auth         *service.AuthService
	Events       *service.EventService
	Verification *service.VerificationService
	Participants *service.ParticipantService
	Submissions  *service.SubmissionService
}

// Handler holds all HTTP handlers for the check-in API.
type Handler struct {
	svc              Services
	tr               *i18n.Translator
	logger           *slog.Logger
	allowEmailHeader bool
}

// New constructs a Handler. allowEmailHeader enables the bare
// x-auth-email identity header alongside bearer tokens.
func New(svc Services, tr *i18n.Translator, logger *slog.Logger, allowEmailHeader bool) *Handler {
	return &Handler{svc: svc, tr: tr, logger: logger, allowEmailHeader: allowEmailHeader}
}

// ─── Helper utilities ─────────────────────────────────────────────────────────

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

const maxBodyBytes = 1 << 20

func (h *Handler) msg(r *http.Request, key string, data map[string]any) string {
	return h.tr.T(r.Header.Get("Accept-Language"), key, data)
}

// writeError writes {"error": <localized key>} plus any extra fields.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, status int, key string, data map[string]any, extra map[string]any) {
	body := map[string]any{"error": h.msg(r, key, data)}
	for k, v := range extra {
		body[k] = v
	}
	writeJSON(w, status, body)
}

func (h *Handler) badBody(w http.ResponseWriter, r *http.Request, err error) {
	h.writeError(w, r, http.StatusBadRequest, i18n.MsgInvalidBody, nil,
		map[string]any{"details": err.Error()})
}

// fail maps a service error to its HTTP status and localized body.
// Typed errors contribute their diagnostic fields to the body.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	var (
		fieldErr    *service.FieldError
		roleErr     *service.RoleError
		assignErr   *service.AssignmentError
		mismatchErr *service.MismatchError
		alreadyErr  *service.AlreadyVerifiedError
		dupErr      *service.DuplicateSubmissionError
	)
	switch {
	case errors.As(err, &fieldErr):
		h.writeError(w, r, http.StatusBadRequest, i18n.MsgFieldInvalid,
			map[string]any{"Field": fieldErr.Field, "Reason": fieldErr.Reason}, nil)
	case errors.As(err, &roleErr):
		h.writeError(w, r, http.StatusForbidden, i18n.MsgRoleForbidden,
			map[string]any{"Role": string(roleErr.Role)}, nil)
	case errors.As(err, &assignErr):
		assigned := assignErr.Assigned
		if assigned == nil {
			assigned = []string{}
		}
		h.writeError(w, r, http.StatusForbidden, i18n.MsgNotAssigned, nil, map[string]any{
			"assignedEvents": assigned,
			"attemptedEvent": assignErr.Attempted,
		})
	case errors.As(err, &mismatchErr):
		h.writeError(w, r, http.StatusForbidden, i18n.MsgEventMismatch, nil,
			map[string]any{"expectedEvent": mismatchErr.ExpectedEventID})
	case errors.As(err, &alreadyErr):
		h.writeError(w, r, http.StatusBadRequest, i18n.MsgAlreadyVerified, nil, map[string]any{
			"verifiedAt":  alreadyErr.VerifiedAt(),
			"participant": alreadyErr.Participant,
		})
	case errors.As(err, &dupErr):
		h.writeError(w, r, http.StatusConflict, i18n.MsgAlreadySubmitted, nil,
			map[string]any{"submission": dupErr.Existing})
	case errors.Is(err, service.ErrUnauthenticated):
		h.writeError(w, r, http.StatusUnauthorized, i18n.MsgNotAuthorized, nil, nil)
	case errors.Is(err, service.ErrInvalidCredentials):
		h.writeError(w, r, http.StatusUnauthorized, i18n.MsgInvalidCredentials, nil, nil)
	case errors.Is(err, service.ErrEventNotFound):
		h.writeError(w, r, http.StatusNotFound, i18n.MsgEventNotFound, nil, nil)
	case errors.Is(err, service.ErrParticipantNotFound):
		h.writeError(w, r, http.StatusNotFound, i18n.MsgParticipantNotFound, nil, nil)
	case errors.Is(err, service.ErrTokenNotFound):
		h.writeError(w, r, http.StatusNotFound, i18n.MsgTokenNotFound, nil, nil)
	case errors.Is(err, service.ErrCoordinatorNotFound):
		h.writeError(w, r, http.StatusNotFound, i18n.MsgCoordinatorNotFound, nil, nil)
	case errors.Is(err, service.ErrNoSubmissions):
		h.writeError(w, r, http.StatusNotFound, i18n.MsgNoSubmissions, nil, nil)
	case errors.Is(err, service.ErrEventExists):
		h.writeError(w, r, http.StatusConflict, i18n.MsgEventExists, nil, nil)
	case errors.Is(err, service.ErrCoordinatorExists):
		h.writeError(w, r, http.StatusConflict, i18n.MsgCoordinatorExists, nil, nil)
	case errors.Is(err, service.ErrUnknownAssignedEvent):
		h.writeError(w, r, http.StatusBadRequest, i18n.MsgUnknownAssignedEvent, nil, nil)
	default:
		h.logger.Error("request failed",
			"method", r.Method, "path", r.URL.Path, "error", err)
		h.writeError(w, r, http.StatusInternalServerError, i18n.MsgInternal, nil, nil)
	}
}

// ─── Health check ─────────────────────────────────────────────────────────────

// HealthCheck handles GET /health
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// messageBody is the {message, <key>: value} envelope used by mutating
// endpoints.
func (h *Handler) messageBody(r *http.Request, key, field string, v any) map[string]any {
	return map[string]any{"message": h.msg(r, key, nil), field: v}
}
