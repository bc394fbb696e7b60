package service

import (
	"github.com/Shivanand-hulikatti/event-checkin/internal/model"
)

// Authorize fails with a *RoleError unless p's role is one of roles.
func Authorize(p *model.Principal, roles ...model.Role) error {
	if p == nil {
		return ErrUnauthenticated
	}
	for _, r := range roles {
		if p.Role == r {
			return nil
		}
	}
	return &RoleError{Role: p.Role, Allowed: roles}
}

// RestrictToAssignedEvent lets admins through unconditionally and
// requires coordinators to hold eventID in their assignment set.
func RestrictToAssignedEvent(p *model.Principal, eventID string) error {
	if p == nil {
		return ErrUnauthenticated
	}
	if p.IsAdmin() {
		return nil
	}
	if eventID == "" {
		return required("eventId")
	}
	if !p.IsAssigned(eventID) {
		return &AssignmentError{Assigned: p.AssignedEventIDs, Attempted: eventID}
	}
	return nil
}
