// Package model defines the core domain types for the event check-in portal.
package model

import "time"

// Role is the fixed role tag carried by every principal.
type Role string

const (
	RoleAdmin       Role = "SYSTEM_ADMIN"
	RoleCoordinator Role = "COORDINATOR"
)

// EventStatus is the lifecycle status of an event.
type EventStatus string

const (
	StatusUpcoming  EventStatus = "upcoming"
	StatusLive      EventStatus = "live"
	StatusCompleted EventStatus = "completed"
)

// Valid reports whether s is one of the three known statuses.
func (s EventStatus) Valid() bool {
	switch s {
	case StatusUpcoming, StatusLive, StatusCompleted:
		return true
	}
	return false
}

// Principal is an authenticated caller, either an admin or a coordinator.
// AssignedEventIDs is always empty for admins.
type Principal struct {
	Email            string   `json:"email"`
	Name             string   `json:"name"`
	Role             Role     `json:"role"`
	AssignedEventIDs []string `json:"assignedEventIds,omitempty"`
	PasswordHash     string   `json:"-"`
}

// IsAdmin returns true for system administrators.
func (p *Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}

// IsAssigned reports whether eventID is in the principal's assignment set.
func (p *Principal) IsAssigned(eventID string) bool {
	for _, id := range p.AssignedEventIDs {
		if id == eventID {
			return true
		}
	}
	return false
}

// Event is a competition or session participants check in to.
type Event struct {
	EventID        string      `json:"eventId"`
	Name           string      `json:"name"`
	Category       string      `json:"category"`
	Status         EventStatus `json:"status"`
	StartedAt      *time.Time  `json:"startedAt"`
	EndedAt        *time.Time  `json:"endedAt"`
	CreatedAt      time.Time   `json:"createdAt"`
	ElapsedSeconds int64       `json:"elapsedSeconds"`
	Stats          *EventStats `json:"stats,omitempty"`
}

// IsLive reports whether the event timer is running.
func (e *Event) IsLive() bool {
	return e.Status == StatusLive
}

// EventStats summarises participant verification for one event.
type EventStats struct {
	Total    int `json:"total"`
	Verified int `json:"verified"`
	Pending  int `json:"pending"`
}

// Participant is a registered entrant holding a one-time check-in token.
type Participant struct {
	ParticipantID  string     `json:"participantId"`
	Name           string     `json:"name"`
	RegistrationID string     `json:"registrationId"`
	Token          string     `json:"token"`
	EventID        string     `json:"eventId"`
	Verified       bool       `json:"verified"`
	VerifiedAt     *time.Time `json:"verifiedAt"`
	ElapsedSeconds int64      `json:"elapsedSeconds"`
}

// Submission is the finalized timing result for one participant of one event.
type Submission struct {
	ID             string     `json:"id"`
	EventID        string     `json:"eventId"`
	ParticipantID  string     `json:"participantId"`
	Name           string     `json:"name"`
	RegistrationID string     `json:"registrationId"`
	VerifiedAt     time.Time  `json:"verifiedAt"`
	StartedAt      *time.Time `json:"startedAt"`
	EndedAt        *time.Time `json:"endedAt"`
	ElapsedTimeMs  int64      `json:"elapsedTimeMs"`
	SubmittedBy    string     `json:"submittedBy"`
	SubmittedAt    time.Time  `json:"submittedAt"`
}

// LoginRequest is the payload for POST /api/auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse is returned on successful login.
type LoginResponse struct {
	Message   string     `json:"message"`
	User      *Principal `json:"user"`
	Token     string     `json:"token,omitempty"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
}

// Profile is the principal detail returned by GET /api/auth/profile.
type Profile struct {
	Principal
	AssignedEvents []Event `json:"assignedEvents,omitempty"`
}

// UpdateStatusRequest is the payload for PATCH /api/events/{eventId}/status.
type UpdateStatusRequest struct {
	Status EventStatus `json:"status"`
}

// VerifyRequest is the payload for POST /api/participants/verify.
type VerifyRequest struct {
	Token   string `json:"token"`
	EventID string `json:"eventId"`
}

// SubmitRequest is the payload for POST /api/submissions. SubmittedBy is
// accepted for compatibility; the authenticated principal is recorded.
type SubmitRequest struct {
	EventID       string     `json:"eventId"`
	ParticipantID string     `json:"participantId"`
	ElapsedTimeMs int64      `json:"elapsedTimeMs"`
	StartedAt     *time.Time `json:"startedAt"`
	EndedAt       *time.Time `json:"endedAt"`
	SubmittedBy   string     `json:"submittedBy"`
}

// CreateEventRequest is the payload for creating a new event.
type CreateEventRequest struct {
	EventID  string      `json:"eventId"`
	Name     string      `json:"name"`
	Category string      `json:"category"`
	Status   EventStatus `json:"status"`
}

// CreateCoordinatorRequest is the payload for provisioning a coordinator.
type CreateCoordinatorRequest struct {
	Name             string   `json:"name"`
	Email            string   `json:"email"`
	Password         string   `json:"password"`
	AssignedEventIDs []string `json:"assignedEventIds"`
}

// AssignmentsRequest replaces a coordinator's assignment set.
type AssignmentsRequest struct {
	AssignedEventIDs []string `json:"assignedEventIds"`
}

// ErrorResponse is a standard JSON error envelope.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
