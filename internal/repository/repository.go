// Package repository implements all database queries for the check-in portal.
// It uses pgx directly (no ORM) for transparency and performance.
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound is returned when a requested resource does not exist.
var ErrNotFound = errors.New("not found")

// ErrConflict is returned when a business key is already taken.
var ErrConflict = errors.New("already exists")

// ErrAlreadySubmitted is returned when a participant already has a
// submission for the event.
var ErrAlreadySubmitted = errors.New("participant already submitted for this event")

// ErrUnknownReference is returned when a referenced event or
// coordinator does not exist.
var ErrUnknownReference = errors.New("referenced record does not exist")

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// timestamptz converts a nullable time into its pgx representation.
func timestamptz(t *time.Time) pgtype.Timestamptz {
	if t == nil || t.IsZero() {
		return pgtype.Timestamptz{}
	}
	return pgtype.Timestamptz{Time: *t, Valid: true}
}

// timePtr returns nil for SQL NULL.
func timePtr(t pgtype.Timestamptz) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time.UTC()
	return &v
}

// Reset removes every row from every table. Used by the seeder.
func Reset(ctx context.Context, db *pgxpool.Pool) error {
	_, err := db.Exec(ctx,
		`TRUNCATE submissions, participants, coordinator_events, events, coordinators, admins`)
	if err != nil {
		return fmt.Errorf("truncate tables: %w", err)
	}
	return nil
}
