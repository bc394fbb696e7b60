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
	"github.com/Shivanand-hulikatti/event-checkin/internal/timing"
)

// EventService orchestrates event-related business operations.
type EventService struct {
	events    EventStore
	projector *timing.Projector
	clock     clock.Clock
	logger    *slog.Logger
}

// NewEventService constructs an EventService with its dependencies.
func NewEventService(events EventStore, projector *timing.Projector, c clock.Clock, logger *slog.Logger) *EventService {
	return &EventService{events: events, projector: projector, clock: c, logger: logger}
}

// List returns every event for admins and the assigned events for
// coordinators, each with its live elapsed time.
func (s *EventService) List(ctx context.Context, p *model.Principal) ([]model.Event, error) {
	var (
		events []model.Event
		err    error
	)
	if p.IsAdmin() {
		events, err = s.events.List(ctx)
	} else {
		events, err = s.events.ListByIDs(ctx, p.AssignedEventIDs)
	}
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	for i := range events {
		s.projector.Event(&events[i])
	}
	return events, nil
}

// Get returns a single event with participant stats and elapsed time.
func (s *EventService) Get(ctx context.Context, id string) (*model.Event, error) {
	if id == "" {
		return nil, required("eventId")
	}
	event, err := s.lookup(ctx, id)
	if err != nil {
		return nil, err
	}
	stats, err := s.events.Stats(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get event: %w", err)
	}
	event.Stats = stats
	s.projector.Event(event)
	return event, nil
}

func (s *EventService) lookup(ctx context.Context, id string) (*model.Event, error) {
	event, err := s.events.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	return event, nil
}

// UpdateStatus moves an event to status. Any of the three statuses may
// follow any other.
func (s *EventService) UpdateStatus(ctx context.Context, id string, status model.EventStatus) (*model.Event, error) {
	if id == "" {
		return nil, required("eventId")
	}
	if status == "" {
		return nil, required("status")
	}
	if !status.Valid() {
		return nil, &FieldError{Field: "status", Reason: "must be one of upcoming, live, completed"}
	}

	event, err := s.events.UpdateStatus(ctx, id, status, s.clock.Now())
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("update status: %w", err)
	}
	s.projector.Event(event)
	s.logger.Info("event status updated", "event_id", id, "status", status)
	return event, nil
}

// Create validates and inserts a new event.
func (s *EventService) Create(ctx context.Context, req model.CreateEventRequest) (*model.Event, error) {
	event := &model.Event{
		EventID:  strings.TrimSpace(req.EventID),
		Name:     strings.TrimSpace(req.Name),
		Category: strings.TrimSpace(req.Category),
		Status:   req.Status,
	}
	switch {
	case event.EventID == "":
		return nil, required("eventId")
	case event.Name == "":
		return nil, required("name")
	case event.Category == "":
		return nil, required("category")
	}
	if event.Status == "" {
		event.Status = model.StatusUpcoming
	}
	if !event.Status.Valid() {
		return nil, &FieldError{Field: "status", Reason: "must be one of upcoming, live, completed"}
	}
	if event.Status == model.StatusLive {
		now := s.clock.Now()
		event.StartedAt = &now
	}

	if err := s.events.Create(ctx, event); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrEventExists
		}
		return nil, fmt.Errorf("create event: %w", err)
	}
	s.logger.Info("event created", "event_id", event.EventID)
	return event, nil
}
