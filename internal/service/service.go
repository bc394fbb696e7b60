// Package service implements business logic, validation, and orchestration
// between HTTP handlers and the repository layer.
package service

import (
	"context"
	"strings"
	"time"

	"github.com/Shivanand-hulikatti/event-checkin/internal/model"
	"github.com/Shivanand-hulikatti/event-checkin/internal/repository"
)

// IdentityStore persists admins and coordinators.
type IdentityStore interface {
	FindAdmin(ctx context.Context, email string) (*model.Principal, error)
	FindCoordinator(ctx context.Context, email string) (*model.Principal, error)
	CreateCoordinator(ctx context.Context, p *model.Principal) error
	SetAssignments(ctx context.Context, email string, eventIDs []string) error
}

// EventStore persists events.
type EventStore interface {
	Create(ctx context.Context, e *model.Event) error
	List(ctx context.Context) ([]model.Event, error)
	ListByIDs(ctx context.Context, ids []string) ([]model.Event, error)
	GetByID(ctx context.Context, id string) (*model.Event, error)
	UpdateStatus(ctx context.Context, id string, status model.EventStatus, at time.Time) (*model.Event, error)
	Stats(ctx context.Context, id string) (*model.EventStats, error)
}

// ParticipantStore persists participants.
type ParticipantStore interface {
	GetByToken(ctx context.Context, token string) (*model.Participant, error)
	GetForEvent(ctx context.Context, participantID, eventID string) (*model.Participant, error)
	ListByEvent(ctx context.Context, eventID string) ([]model.Participant, error)
	MarkVerified(ctx context.Context, token, eventID string, at time.Time) (*model.Participant, error)
}

// SubmissionStore persists submissions.
type SubmissionStore interface {
	Create(ctx context.Context, s *model.Submission) error
	GetByParticipant(ctx context.Context, eventID, participantID string) (*model.Submission, error)
	ListByEvent(ctx context.Context, eventID string) ([]model.Submission, error)
}

var (
	_ IdentityStore    = (*repository.IdentityRepository)(nil)
	_ EventStore       = (*repository.EventRepository)(nil)
	_ ParticipantStore = (*repository.ParticipantRepository)(nil)
	_ SubmissionStore  = (*repository.SubmissionRepository)(nil)
)

// normalizeEmail matches the stored form: trimmed and lower-cased.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// isValidEmail does a basic structural check.
func isValidEmail(email string) bool {
	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return false
	}
	return len(parts[0]) > 0 && len(parts[1]) > 0
}
