package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Shivanand-hulikatti/event-checkin/internal/model"
)

const participantColumns = `participant_id, name, registration_id, token, event_id, verified, verified_at`

// ParticipantRepository handles persistence for participants.
type ParticipantRepository struct {
	db *pgxpool.Pool
}

// NewParticipantRepository constructs a ParticipantRepository.
func NewParticipantRepository(db *pgxpool.Pool) *ParticipantRepository {
	return &ParticipantRepository{db: db}
}

func scanParticipant(row pgx.Row) (*model.Participant, error) {
	var (
		p          model.Participant
		verifiedAt pgtype.Timestamptz
	)
	if err := row.Scan(&p.ParticipantID, &p.Name, &p.RegistrationID, &p.Token, &p.EventID, &p.Verified, &verifiedAt); err != nil {
		return nil, err
	}
	p.VerifiedAt = timePtr(verifiedAt)
	return &p, nil
}

func (r *ParticipantRepository) getOne(ctx context.Context, sql string, args ...any) (*model.Participant, error) {
	p, err := scanParticipant(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get participant: %w", err)
	}
	return p, nil
}

// GetByToken returns the participant holding token or ErrNotFound.
func (r *ParticipantRepository) GetByToken(ctx context.Context, token string) (*model.Participant, error) {
	return r.getOne(ctx,
		`SELECT `+participantColumns+` FROM participants WHERE token = $1`, token)
}

// GetForEvent returns the participant only if it belongs to eventID.
func (r *ParticipantRepository) GetForEvent(ctx context.Context, participantID, eventID string) (*model.Participant, error) {
	return r.getOne(ctx,
		`SELECT `+participantColumns+` FROM participants
		 WHERE participant_id = $1 AND event_id = $2`,
		participantID, eventID)
}

// ListByEvent returns all participants of an event.
func (r *ParticipantRepository) ListByEvent(ctx context.Context, eventID string) ([]model.Participant, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+participantColumns+` FROM participants
		 WHERE event_id = $1
		 ORDER BY participant_id`,
		eventID,
	)
	if err != nil {
		return nil, fmt.Errorf("list participants: %w", err)
	}
	defer rows.Close()

	var participants []model.Participant
	for rows.Next() {
		p, err := scanParticipant(rows)
		if err != nil {
			return nil, fmt.Errorf("scan participant: %w", err)
		}
		participants = append(participants, *p)
	}
	return participants, rows.Err()
}

// MarkVerified flips an unverified participant of eventID to verified
// in a single conditional update, so concurrent callers cannot both
// succeed. Returns ErrNotFound when no row matched; the caller decides
// why by re-reading the token.
func (r *ParticipantRepository) MarkVerified(ctx context.Context, token, eventID string, at time.Time) (*model.Participant, error) {
	return r.getOne(ctx,
		`UPDATE participants
		 SET verified = true, verified_at = $3
		 WHERE token = $1 AND event_id = $2 AND NOT verified
		 RETURNING `+participantColumns,
		token, eventID, at)
}

// Upsert inserts a participant or refreshes its registration fields.
// Verification state is preserved on conflict.
func (r *ParticipantRepository) Upsert(ctx context.Context, p *model.Participant) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO participants (participant_id, name, registration_id, token, event_id, verified, verified_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (participant_id) DO UPDATE
		 SET name = EXCLUDED.name,
		     registration_id = EXCLUDED.registration_id,
		     token = EXCLUDED.token,
		     event_id = EXCLUDED.event_id`,
		p.ParticipantID, p.Name, p.RegistrationID, p.Token, p.EventID, p.Verified, timestamptz(p.VerifiedAt),
	)
	if err != nil {
		switch pgCode(err) {
		case pgUniqueViolation:
			return ErrConflict
		case pgForeignKeyViolation:
			return ErrUnknownReference
		}
		return fmt.Errorf("upsert participant: %w", err)
	}
	return nil
}
