package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Shivanand-hulikatti/event-checkin/internal/i18n"
	"github.com/Shivanand-hulikatti/event-checkin/internal/model"
)

// CreateEvent handles POST /api/admin/events
func (h *Handler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req model.CreateEventRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.badBody(w, r, err)
		return
	}

	event, err := h.svc.Events.Create(r.Context(), req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, h.messageBody(r, i18n.MsgEventCreated, "event", event))
}

// CreateCoordinator handles POST /api/admin/coordinators
func (h *Handler) CreateCoordinator(w http.ResponseWriter, r *http.Request) {
	var req model.CreateCoordinatorRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.badBody(w, r, err)
		return
	}

	coordinator, err := h.svc.Auth.ProvisionCoordinator(r.Context(), req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, h.messageBody(r, i18n.MsgCoordinatorCreated, "user", coordinator))
}

// SetAssignments handles PUT /api/admin/coordinators/{email}/events
// Replaces the coordinator's assignment set.
func (h *Handler) SetAssignments(w http.ResponseWriter, r *http.Request) {
	var req model.AssignmentsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.badBody(w, r, err)
		return
	}

	coordinator, err := h.svc.Auth.SetAssignments(r.Context(), chi.URLParam(r, "email"), req.AssignedEventIDs)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.messageBody(r, i18n.MsgAssignmentsReplaced, "user", coordinator))
}
