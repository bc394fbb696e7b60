package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Shivanand-hulikatti/event-checkin/internal/model"
)

const submissionColumns = `id, event_id, participant_id, name, registration_id, verified_at,
	started_at, ended_at, elapsed_time_ms, submitted_by, submitted_at`

// SubmissionRepository handles persistence for submissions. Rows are
// never updated or deleted.
type SubmissionRepository struct {
	db *pgxpool.Pool
}

// NewSubmissionRepository constructs a SubmissionRepository.
func NewSubmissionRepository(db *pgxpool.Pool) *SubmissionRepository {
	return &SubmissionRepository{db: db}
}

func scanSubmission(row pgx.Row) (*model.Submission, error) {
	var (
		s                  model.Submission
		id                 uuid.UUID
		startedAt, endedAt pgtype.Timestamptz
	)
	err := row.Scan(&id, &s.EventID, &s.ParticipantID, &s.Name, &s.RegistrationID, &s.VerifiedAt,
		&startedAt, &endedAt, &s.ElapsedTimeMs, &s.SubmittedBy, &s.SubmittedAt)
	if err != nil {
		return nil, err
	}
	s.ID = id.String()
	s.StartedAt = timePtr(startedAt)
	s.EndedAt = timePtr(endedAt)
	return &s, nil
}

// Create inserts a submission with a generated UUID. Returns
// ErrAlreadySubmitted if the participant already has one for the event.
func (r *SubmissionRepository) Create(ctx context.Context, s *model.Submission) error {
	id := uuid.New()
	_, err := r.db.Exec(ctx,
		`INSERT INTO submissions (id, event_id, participant_id, name, registration_id, verified_at,
		                          started_at, ended_at, elapsed_time_ms, submitted_by, submitted_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		id, s.EventID, s.ParticipantID, s.Name, s.RegistrationID, s.VerifiedAt,
		timestamptz(s.StartedAt), timestamptz(s.EndedAt), s.ElapsedTimeMs, s.SubmittedBy, s.SubmittedAt,
	)
	if err != nil {
		if pgCode(err) == pgUniqueViolation {
			return ErrAlreadySubmitted
		}
		return fmt.Errorf("insert submission: %w", err)
	}
	s.ID = id.String()
	return nil
}

// GetByParticipant returns the submission for a participant of an event
// or ErrNotFound.
func (r *SubmissionRepository) GetByParticipant(ctx context.Context, eventID, participantID string) (*model.Submission, error) {
	s, err := scanSubmission(r.db.QueryRow(ctx,
		`SELECT `+submissionColumns+` FROM submissions
		 WHERE event_id = $1 AND participant_id = $2`,
		eventID, participantID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get submission: %w", err)
	}
	return s, nil
}

// ListByEvent returns an event's submissions, fastest first.
func (r *SubmissionRepository) ListByEvent(ctx context.Context, eventID string) ([]model.Submission, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+submissionColumns+` FROM submissions
		 WHERE event_id = $1
		 ORDER BY elapsed_time_ms ASC, submitted_at ASC`,
		eventID,
	)
	if err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}
	defer rows.Close()

	var submissions []model.Submission
	for rows.Next() {
		s, err := scanSubmission(rows)
		if err != nil {
			return nil, fmt.Errorf("scan submission: %w", err)
		}
		submissions = append(submissions, *s)
	}
	return submissions, rows.Err()
}
