package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Shivanand-hulikatti/event-checkin/internal/i18n"
	"github.com/Shivanand-hulikatti/event-checkin/internal/model"
	"github.com/Shivanand-hulikatti/event-checkin/internal/service"
)

// Submit handles POST /api/submissions
// Records one participant's final elapsed time.
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	var req model.SubmitRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.badBody(w, r, err)
		return
	}

	submission, err := h.svc.Submissions.Submit(r.Context(), PrincipalFrom(r.Context()), req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, h.messageBody(r, i18n.MsgSubmissionRecorded, "submission", submission))
}

// ListSubmissions handles GET /api/admin/events/{eventId}/submissions
// Returns submissions fastest first.
func (h *Handler) ListSubmissions(w http.ResponseWriter, r *http.Request) {
	submissions, err := h.svc.Submissions.ListForEvent(r.Context(), chi.URLParam(r, "eventId"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, submissions)
}

// ExportSubmissions handles GET /api/admin/events/{eventId}/export
// Streams the event's submissions as a CSV attachment.
func (h *Handler) ExportSubmissions(w http.ResponseWriter, r *http.Request) {
	filename, csv, err := h.svc.Submissions.Export(r.Context(), chi.URLParam(r, "eventId"))
	if err != nil {
		if errors.Is(err, service.ErrNoSubmissions) {
			h.writeError(w, r, http.StatusNotFound, i18n.MsgNoExportData, nil, nil)
			return
		}
		h.fail(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(csv))
}
