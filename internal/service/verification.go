package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Shivanand-hulikatti/event-checkin/internal/clock"
	"github.com/Shivanand-hulikatti/event-checkin/internal/model"
	"github.com/Shivanand-hulikatti/event-checkin/internal/repository"
)

// VerificationService checks participants in with their one-time token.
type VerificationService struct {
	participants ParticipantStore
	events       EventStore
	clock        clock.Clock
	logger       *slog.Logger
}

// NewVerificationService constructs a VerificationService.
func NewVerificationService(participants ParticipantStore, events EventStore, c clock.Clock, logger *slog.Logger) *VerificationService {
	return &VerificationService{participants: participants, events: events, clock: c, logger: logger}
}

// Verify marks the participant holding token as verified for eventID.
//
// The unverified->verified transition is a single conditional update
// keyed by token, event and the current flag, so of two racing calls
// exactly one succeeds. Only when that update matches nothing is the
// token re-read to report why: unknown token, wrong event, or already
// verified. Failure paths never write.
func (s *VerificationService) Verify(ctx context.Context, token, eventID string) (*model.Participant, error) {
	token = strings.TrimSpace(token)
	eventID = strings.TrimSpace(eventID)
	if token == "" {
		return nil, required("token")
	}
	if eventID == "" {
		return nil, required("eventId")
	}
	if _, err := s.events.GetByID(ctx, eventID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("verify: %w", err)
	}

	participant, err := s.participants.MarkVerified(ctx, token, eventID, s.clock.Now())
	if err == nil {
		s.logger.Info("participant verified",
			"participant_id", participant.ParticipantID, "event_id", eventID)
		return participant, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("verify: %w", err)
	}

	existing, err := s.participants.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.logger.Warn("verification rejected: unknown token", "event_id", eventID)
			return nil, ErrTokenNotFound
		}
		return nil, fmt.Errorf("verify: %w", err)
	}
	if existing.EventID != eventID {
		s.logger.Warn("verification rejected: event mismatch",
			"participant_id", existing.ParticipantID, "event_id", eventID, "expected", existing.EventID)
		return nil, &MismatchError{ExpectedEventID: existing.EventID}
	}
	s.logger.Warn("verification rejected: already verified",
		"participant_id", existing.ParticipantID, "event_id", eventID)
	return nil, &AlreadyVerifiedError{Participant: existing}
}
