package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/Shivanand-hulikatti/event-checkin/internal/model"
	"github.com/Shivanand-hulikatti/event-checkin/internal/service"
)

type ctxKey int

const principalKey ctxKey = iota

// PrincipalFrom returns the caller resolved by Authenticate.
func PrincipalFrom(ctx context.Context) *model.Principal {
	p, _ := ctx.Value(principalKey).(*model.Principal)
	return p
}

// Logger writes one structured access line per request.
func Logger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			level := slog.LevelInfo
			if status >= http.StatusInternalServerError {
				level = slog.LevelError
			}
			logger.LogAttrs(r.Context(), level, "http request",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", status),
				slog.Int("bytes", ww.BytesWritten()),
				slog.Duration("duration", time.Since(start)),
				slog.String("request_id", chimiddleware.GetReqID(r.Context())),
				slog.String("remote_ip", r.RemoteAddr),
			)
		})
	}
}

// CORS answers preflight requests and sets CORS headers for the allowed
// origins. A "*" entry allows any origin.
func CORS(origins []string) func(http.Handler) http.Handler {
	allowAll := slices.Contains(origins, "*")
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			switch {
			case allowAll:
				w.Header().Set("Access-Control-Allow-Origin", "*")
			case origin != "" && slices.Contains(origins, origin):
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Add("Vary", "Origin")
			}
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, x-auth-email, Accept-Language")
			w.Header().Set("Access-Control-Expose-Headers", "Content-Disposition")

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Authenticate resolves the caller from a bearer token or, when enabled,
// the x-auth-email header, and stores it on the request context.
func (h *Handler) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var (
			principal *model.Principal
			err       error
		)
		authz := r.Header.Get("Authorization")
		email := r.Header.Get("x-auth-email")
		switch {
		case strings.HasPrefix(authz, "Bearer "):
			principal, err = h.svc.Auth.ResolveToken(r.Context(), strings.TrimPrefix(authz, "Bearer "))
		case h.allowEmailHeader && email != "":
			principal, err = h.svc.Auth.ResolveIdentity(r.Context(), email)
		default:
			err = service.ErrUnauthenticated
		}
		if err != nil {
			h.logger.Debug("authentication failed", "path", r.URL.Path, "error", err)
			h.fail(w, r, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), principalKey, principal)))
	})
}

// RequireRole rejects callers whose role is not in roles.
func (h *Handler) RequireRole(roles ...model.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := service.Authorize(PrincipalFrom(r.Context()), roles...); err != nil {
				h.fail(w, r, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RestrictToAssignedEvent requires coordinators to be assigned to the
// event the request targets. The event id is taken from the eventId
// URL parameter, or from the JSON body's eventId field. The body is
// restored for the downstream handler.
func (h *Handler) RestrictToAssignedEvent(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		eventID := chi.URLParam(r, "eventId")
		if eventID == "" && r.Body != nil {
			buf, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
			if err != nil {
				h.badBody(w, r, err)
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(buf))

			var target struct {
				EventID string `json:"eventId"`
			}
			if len(buf) > 0 {
				if err := json.Unmarshal(buf, &target); err != nil {
					h.badBody(w, r, err)
					return
				}
			}
			eventID = strings.TrimSpace(target.EventID)
		}
		if err := service.RestrictToAssignedEvent(PrincipalFrom(r.Context()), eventID); err != nil {
			if p := PrincipalFrom(r.Context()); p != nil {
				h.logger.Warn("event access denied", "email", p.Email, "event_id", eventID)
			}
			h.fail(w, r, err)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// notFound is the JSON 404 for unknown API routes.
func (h *Handler) notFound(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusNotFound, model.ErrorResponse{Error: http.StatusText(http.StatusNotFound)})
}
