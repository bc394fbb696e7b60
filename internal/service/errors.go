package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Shivanand-hulikatti/event-checkin/internal/model"
)

// Sentinel errors. Handlers map these to HTTP statuses.
var (
	ErrUnauthenticated      = errors.New("not authorized")
	ErrInvalidCredentials   = errors.New("invalid email or password")
	ErrForbidden            = errors.New("forbidden")
	ErrBadRequest           = errors.New("bad request")
	ErrEventNotFound        = errors.New("event not found")
	ErrParticipantNotFound  = errors.New("participant not found")
	ErrTokenNotFound        = errors.New("invalid token, participant not found")
	ErrCoordinatorNotFound  = errors.New("coordinator not found")
	ErrNoSubmissions        = errors.New("no submissions found for this event")
	ErrEventExists          = errors.New("event already exists")
	ErrCoordinatorExists    = errors.New("coordinator already exists")
	ErrUnknownAssignedEvent = errors.New("assigned event does not exist")
)

// FieldError reports a missing or malformed request field.
type FieldError struct {
	Field  string
	Reason string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}

// Is makes FieldError match ErrBadRequest.
func (e *FieldError) Is(target error) bool { return target == ErrBadRequest }

func required(field string) error {
	return &FieldError{Field: field, Reason: "is required"}
}

// RoleError is returned when the caller's role is not allowed.
type RoleError struct {
	Role    model.Role
	Allowed []model.Role
}

func (e *RoleError) Error() string {
	return fmt.Sprintf("user role '%s' is not authorized to access this route", e.Role)
}

// Is makes RoleError match ErrForbidden.
func (e *RoleError) Is(target error) bool { return target == ErrForbidden }

// AssignmentError is returned when a coordinator acts on an event
// outside its assignment set.
type AssignmentError struct {
	Assigned  []string
	Attempted string
}

func (e *AssignmentError) Error() string {
	return fmt.Sprintf("not assigned to event %s (assigned: %s)",
		e.Attempted, strings.Join(e.Assigned, ", "))
}

// Is makes AssignmentError match ErrForbidden.
func (e *AssignmentError) Is(target error) bool { return target == ErrForbidden }

// MismatchError is returned when a token belongs to another event. The
// owning event is disclosed so the coordinator can redirect the entrant.
type MismatchError struct {
	ExpectedEventID string
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("participant does not belong to this event (expected %s)", e.ExpectedEventID)
}

// AlreadyVerifiedError is returned when a token was already used. It
// carries the participant as stored, including the original
// verification time.
type AlreadyVerifiedError struct {
	Participant *model.Participant
}

func (e *AlreadyVerifiedError) Error() string {
	return "participant already verified"
}

// VerifiedAt returns the original verification time.
func (e *AlreadyVerifiedError) VerifiedAt() *time.Time {
	return e.Participant.VerifiedAt
}

// DuplicateSubmissionError is returned when a participant already has a
// submission for the event. Existing is the stored row.
type DuplicateSubmissionError struct {
	Existing *model.Submission
}

func (e *DuplicateSubmissionError) Error() string {
	return "participant already submitted for this event"
}
