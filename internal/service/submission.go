package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Shivanand-hulikatti/event-checkin/internal/clock"
	"github.com/Shivanand-hulikatti/event-checkin/internal/model"
	"github.com/Shivanand-hulikatti/event-checkin/internal/report"
	"github.com/Shivanand-hulikatti/event-checkin/internal/repository"
)

// SubmissionService records finalized results and exports them.
type SubmissionService struct {
	submissions  SubmissionStore
	participants ParticipantStore
	exporter     *report.Exporter
	clock        clock.Clock
	logger       *slog.Logger
}

// NewSubmissionService constructs a SubmissionService.
func NewSubmissionService(
	submissions SubmissionStore,
	participants ParticipantStore,
	exporter *report.Exporter,
	c clock.Clock,
	logger *slog.Logger,
) *SubmissionService {
	return &SubmissionService{
		submissions:  submissions,
		participants: participants,
		exporter:     exporter,
		clock:        c,
		logger:       logger,
	}
}

// Submit records one participant's result, snapshotting the participant's
// name, registration id and verification time. The submitter is always
// the authenticated principal.
func (s *SubmissionService) Submit(ctx context.Context, p *model.Principal, req model.SubmitRequest) (*model.Submission, error) {
	req.EventID = strings.TrimSpace(req.EventID)
	req.ParticipantID = strings.TrimSpace(req.ParticipantID)
	switch {
	case req.EventID == "":
		return nil, required("eventId")
	case req.ParticipantID == "":
		return nil, required("participantId")
	case req.ElapsedTimeMs < 0:
		return nil, &FieldError{Field: "elapsedTimeMs", Reason: "must not be negative"}
	case req.StartedAt != nil && req.EndedAt != nil && req.EndedAt.Before(*req.StartedAt):
		return nil, &FieldError{Field: "endedAt", Reason: "must not be before startedAt"}
	}

	participant, err := s.participants.GetForEvent(ctx, req.ParticipantID, req.EventID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrParticipantNotFound
		}
		return nil, fmt.Errorf("submit: %w", err)
	}

	now := s.clock.Now()
	verifiedAt := now
	if participant.VerifiedAt != nil {
		verifiedAt = *participant.VerifiedAt
	}
	if req.SubmittedBy != "" && normalizeEmail(req.SubmittedBy) != p.Email {
		s.logger.Warn("submittedBy overridden by caller identity",
			"claimed", req.SubmittedBy, "caller", p.Email)
	}

	submission := &model.Submission{
		EventID:        req.EventID,
		ParticipantID:  req.ParticipantID,
		Name:           participant.Name,
		RegistrationID: participant.RegistrationID,
		VerifiedAt:     verifiedAt,
		StartedAt:      req.StartedAt,
		EndedAt:        req.EndedAt,
		ElapsedTimeMs:  req.ElapsedTimeMs,
		SubmittedBy:    p.Email,
		SubmittedAt:    now,
	}
	if err := s.submissions.Create(ctx, submission); err != nil {
		if errors.Is(err, repository.ErrAlreadySubmitted) {
			existing, getErr := s.submissions.GetByParticipant(ctx, req.EventID, req.ParticipantID)
			if getErr != nil {
				return nil, fmt.Errorf("submit: load existing: %w", getErr)
			}
			return nil, &DuplicateSubmissionError{Existing: existing}
		}
		return nil, fmt.Errorf("submit: %w", err)
	}
	s.logger.Info("submission recorded",
		"event_id", submission.EventID, "participant_id", submission.ParticipantID,
		"elapsed_ms", submission.ElapsedTimeMs)
	return submission, nil
}

// ListForEvent returns an event's submissions, fastest first. An event
// without submissions is reported as ErrNoSubmissions.
func (s *SubmissionService) ListForEvent(ctx context.Context, eventID string) ([]model.Submission, error) {
	if eventID == "" {
		return nil, required("eventId")
	}
	submissions, err := s.submissions.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}
	if len(submissions) == 0 {
		return nil, ErrNoSubmissions
	}
	return submissions, nil
}

// Export renders an event's submissions as CSV and returns the download
// filename alongside the content.
func (s *SubmissionService) Export(ctx context.Context, eventID string) (string, string, error) {
	submissions, err := s.ListForEvent(ctx, eventID)
	if err != nil {
		return "", "", err
	}
	return fmt.Sprintf("event-%s-export.csv", eventID), s.exporter.ToCSV(submissions), nil
}
