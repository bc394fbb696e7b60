package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Shivanand-hulikatti/event-checkin/internal/model"
)

// IdentityRepository handles persistence for admins and coordinators.
type IdentityRepository struct {
	db *pgxpool.Pool
}

// NewIdentityRepository constructs an IdentityRepository.
func NewIdentityRepository(db *pgxpool.Pool) *IdentityRepository {
	return &IdentityRepository{db: db}
}

// FindAdmin returns the admin with the given email or ErrNotFound.
func (r *IdentityRepository) FindAdmin(ctx context.Context, email string) (*model.Principal, error) {
	var p model.Principal
	err := r.db.QueryRow(ctx,
		`SELECT email, name, password_hash, role FROM admins WHERE email = $1`,
		email,
	).Scan(&p.Email, &p.Name, &p.PasswordHash, &p.Role)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get admin: %w", err)
	}
	return &p, nil
}

// FindCoordinator returns the coordinator with the given email, with
// its assignment set, or ErrNotFound.
func (r *IdentityRepository) FindCoordinator(ctx context.Context, email string) (*model.Principal, error) {
	var p model.Principal
	err := r.db.QueryRow(ctx,
		`SELECT c.email, c.name, c.password_hash, c.role,
		        COALESCE(array_agg(ce.event_id ORDER BY ce.event_id)
		                 FILTER (WHERE ce.event_id IS NOT NULL), '{}')
		 FROM coordinators c
		 LEFT JOIN coordinator_events ce ON ce.coordinator_email = c.email
		 WHERE c.email = $1
		 GROUP BY c.email`,
		email,
	).Scan(&p.Email, &p.Name, &p.PasswordHash, &p.Role, &p.AssignedEventIDs)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get coordinator: %w", err)
	}
	return &p, nil
}

// UpsertAdmin inserts an admin or refreshes its name and credential.
// Returns ErrConflict if the email belongs to a coordinator.
func (r *IdentityRepository) UpsertAdmin(ctx context.Context, p *model.Principal) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO admins (email, name, password_hash)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (email) DO UPDATE
		 SET name = EXCLUDED.name, password_hash = EXCLUDED.password_hash`,
		p.Email, p.Name, p.PasswordHash,
	)
	if err != nil {
		if pgCode(err) == pgUniqueViolation {
			return ErrConflict
		}
		return fmt.Errorf("upsert admin: %w", err)
	}
	return nil
}

// CreateCoordinator inserts a coordinator and its assignment set in one
// transaction. Returns ErrConflict if the email is taken by an admin or
// a coordinator, and
// ErrUnknownReference if an assigned event does not exist.
func (r *IdentityRepository) CreateCoordinator(ctx context.Context, p *model.Principal) error {
	return r.writeCoordinator(ctx, p,
		`INSERT INTO coordinators (email, name, password_hash) VALUES ($1, $2, $3)`)
}

// UpsertCoordinator inserts or refreshes a coordinator and replaces its
// assignment set. Returns ErrConflict if the email belongs to an admin.
func (r *IdentityRepository) UpsertCoordinator(ctx context.Context, p *model.Principal) error {
	return r.writeCoordinator(ctx, p,
		`INSERT INTO coordinators (email, name, password_hash) VALUES ($1, $2, $3)
		 ON CONFLICT (email) DO UPDATE
		 SET name = EXCLUDED.name, password_hash = EXCLUDED.password_hash`)
}

func (r *IdentityRepository) writeCoordinator(ctx context.Context, p *model.Principal, insert string) (err error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	if _, err = tx.Exec(ctx, insert, p.Email, p.Name, p.PasswordHash); err != nil {
		if pgCode(err) == pgUniqueViolation {
			return ErrConflict
		}
		return fmt.Errorf("write coordinator: %w", err)
	}
	if err = replaceAssignments(ctx, tx, p.Email, p.AssignedEventIDs); err != nil {
		return err
	}
	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// SetAssignments replaces a coordinator's assignment set.
func (r *IdentityRepository) SetAssignments(ctx context.Context, email string, eventIDs []string) (err error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	var locked string
	err = tx.QueryRow(ctx,
		`SELECT email FROM coordinators WHERE email = $1 FOR UPDATE`,
		email,
	).Scan(&locked)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("lock coordinator: %w", err)
	}
	if err = replaceAssignments(ctx, tx, email, eventIDs); err != nil {
		return err
	}
	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func replaceAssignments(ctx context.Context, tx pgx.Tx, email string, eventIDs []string) error {
	if _, err := tx.Exec(ctx,
		`DELETE FROM coordinator_events WHERE coordinator_email = $1`, email,
	); err != nil {
		return fmt.Errorf("clear assignments: %w", err)
	}
	if len(eventIDs) == 0 {
		return nil
	}
	_, err := tx.Exec(ctx,
		`INSERT INTO coordinator_events (coordinator_email, event_id)
		 SELECT $1, unnest($2::text[])
		 ON CONFLICT DO NOTHING`,
		email, eventIDs,
	)
	if err != nil {
		if pgCode(err) == pgForeignKeyViolation {
			return ErrUnknownReference
		}
		return fmt.Errorf("insert assignments: %w", err)
	}
	return nil
}
