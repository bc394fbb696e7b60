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

const eventColumns = `event_id, name, category, status, started_at, ended_at, created_at`

// EventRepository handles persistence for events.
type EventRepository struct {
	db *pgxpool.Pool
}

// NewEventRepository constructs an EventRepository.
func NewEventRepository(db *pgxpool.Pool) *EventRepository {
	return &EventRepository{db: db}
}

func scanEvent(row pgx.Row) (*model.Event, error) {
	var (
		e                  model.Event
		startedAt, endedAt pgtype.Timestamptz
	)
	if err := row.Scan(&e.EventID, &e.Name, &e.Category, &e.Status, &startedAt, &endedAt, &e.CreatedAt); err != nil {
		return nil, err
	}
	e.StartedAt = timePtr(startedAt)
	e.EndedAt = timePtr(endedAt)
	return &e, nil
}

// Create inserts a new event. Returns ErrConflict if the business key
// is already taken.
func (r *EventRepository) Create(ctx context.Context, e *model.Event) error {
	err := r.db.QueryRow(ctx,
		`INSERT INTO events (event_id, name, category, status, started_at)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING created_at`,
		e.EventID, e.Name, e.Category, e.Status, timestamptz(e.StartedAt),
	).Scan(&e.CreatedAt)
	if err != nil {
		if pgCode(err) == pgUniqueViolation {
			return ErrConflict
		}
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}

// Upsert inserts an event or refreshes its descriptive fields and status.
func (r *EventRepository) Upsert(ctx context.Context, e *model.Event) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO events (event_id, name, category, status, started_at)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (event_id) DO UPDATE
		 SET name = EXCLUDED.name,
		     category = EXCLUDED.category,
		     status = EXCLUDED.status,
		     started_at = COALESCE(events.started_at, EXCLUDED.started_at)`,
		e.EventID, e.Name, e.Category, e.Status, timestamptz(e.StartedAt),
	)
	if err != nil {
		return fmt.Errorf("upsert event: %w", err)
	}
	return nil
}

// List returns all events ordered by creation time descending.
func (r *EventRepository) List(ctx context.Context) ([]model.Event, error) {
	return r.query(ctx,
		`SELECT `+eventColumns+` FROM events ORDER BY created_at DESC, event_id`)
}

// ListByIDs returns the events whose business keys are in ids.
func (r *EventRepository) ListByIDs(ctx context.Context, ids []string) ([]model.Event, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return r.query(ctx,
		`SELECT `+eventColumns+` FROM events WHERE event_id = ANY($1)
		 ORDER BY created_at DESC, event_id`,
		ids)
}

func (r *EventRepository) query(ctx context.Context, sql string, args ...any) ([]model.Event, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var events []model.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, *e)
	}
	return events, rows.Err()
}

// GetByID returns a single event or ErrNotFound.
func (r *EventRepository) GetByID(ctx context.Context, id string) (*model.Event, error) {
	e, err := scanEvent(r.db.QueryRow(ctx,
		`SELECT `+eventColumns+` FROM events WHERE event_id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	return e, nil
}

// UpdateStatus sets the status of an event. Entering live stamps
// started_at and clears ended_at; entering completed stamps ended_at.
// Re-sending the current status leaves the timestamps untouched.
func (r *EventRepository) UpdateStatus(ctx context.Context, id string, status model.EventStatus, at time.Time) (*model.Event, error) {
	e, err := scanEvent(r.db.QueryRow(ctx,
		`UPDATE events SET
		   started_at = CASE WHEN $2::text = 'live' AND status <> 'live' THEN $3 ELSE started_at END,
		   ended_at   = CASE
		                  WHEN $2::text = 'completed' AND status <> 'completed' THEN $3
		                  WHEN $2::text = 'live' AND status <> 'live' THEN NULL
		                  ELSE ended_at
		                END,
		   status     = $2
		 WHERE event_id = $1
		 RETURNING `+eventColumns,
		id, status, at,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("update event status: %w", err)
	}
	return e, nil
}

// Stats counts participants of an event by verification state.
func (r *EventRepository) Stats(ctx context.Context, id string) (*model.EventStats, error) {
	var s model.EventStats
	err := r.db.QueryRow(ctx,
		`SELECT count(*), count(*) FILTER (WHERE verified)
		 FROM participants WHERE event_id = $1`,
		id,
	).Scan(&s.Total, &s.Verified)
	if err != nil {
		return nil, fmt.Errorf("event stats: %w", err)
	}
	s.Pending = s.Total - s.Verified
	return &s, nil
}
