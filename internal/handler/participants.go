package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Shivanand-hulikatti/event-checkin/internal/i18n"
	"github.com/Shivanand-hulikatti/event-checkin/internal/model"
)

// VerifyParticipant handles POST /api/participants/verify
// Consumes a participant's one-time token for the given event.
func (h *Handler) VerifyParticipant(w http.ResponseWriter, r *http.Request) {
	var req model.VerifyRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.badBody(w, r, err)
		return
	}

	participant, err := h.svc.Verification.Verify(r.Context(), req.Token, req.EventID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.messageBody(r, i18n.MsgVerified, "participant", participant))
}

// ListParticipants handles GET /api/participants/{eventId}
func (h *Handler) ListParticipants(w http.ResponseWriter, r *http.Request) {
	participants, err := h.svc.Participants.ListByEvent(r.Context(), chi.URLParam(r, "eventId"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if participants == nil {
		participants = []model.Participant{}
	}
	writeJSON(w, http.StatusOK, participants)
}
