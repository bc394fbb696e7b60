package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/Shivanand-hulikatti/event-checkin/internal/model"
	"github.com/Shivanand-hulikatti/event-checkin/internal/timing"
)

// ParticipantService lists participants with their live timers.
type ParticipantService struct {
	participants ParticipantStore
	events       *EventService
	projector    *timing.Projector
}

// NewParticipantService constructs a ParticipantService.
func NewParticipantService(participants ParticipantStore, events *EventService, projector *timing.Projector) *ParticipantService {
	return &ParticipantService{participants: participants, events: events, projector: projector}
}

// ListByEvent returns an event's participants. Each verified
// participant's elapsed time runs only while the event is live. An
// unknown event has no participants.
func (s *ParticipantService) ListByEvent(ctx context.Context, eventID string) ([]model.Participant, error) {
	if eventID == "" {
		return nil, required("eventId")
	}
	event, err := s.events.lookup(ctx, eventID)
	if errors.Is(err, ErrEventNotFound) {
		return []model.Participant{}, nil
	}
	if err != nil {
		return nil, err
	}
	participants, err := s.participants.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("list participants: %w", err)
	}
	if participants == nil {
		participants = []model.Participant{}
	}
	s.projector.Participants(event.IsLive(), participants)
	return participants, nil
}
