// Package seed loads demo fixtures into the store. Fixtures are
// authored as JSONC (JSON with comments and trailing commas); the
// default set is embedded in the binary.
package seed

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/tidwall/jsonc"
	"golang.org/x/crypto/bcrypt"

	"github.com/Shivanand-hulikatti/event-checkin/internal/clock"
	"github.com/Shivanand-hulikatti/event-checkin/internal/model"
)

//go:embed data.jsonc
var defaultData []byte

// Fixtures is a complete demo data set.
type Fixtures struct {
	Events       []Event       `json:"events"`
	Admins       []Account     `json:"admins"`
	Coordinators []Account     `json:"coordinators"`
	Participants []Participant `json:"participants"`
}

// Event is an event fixture.
type Event struct {
	EventID  string            `json:"eventId"`
	Name     string            `json:"name"`
	Category string            `json:"category"`
	Status   model.EventStatus `json:"status"`
}

// Account is an admin or coordinator fixture with a plain-text password.
type Account struct {
	Name             string   `json:"name"`
	Email            string   `json:"email"`
	Password         string   `json:"password"`
	AssignedEventIDs []string `json:"assignedEventIds"`
}

// Participant is a participant fixture.
type Participant struct {
	ParticipantID  string `json:"participantId"`
	Name           string `json:"name"`
	RegistrationID string `json:"registrationId"`
	Token          string `json:"token"`
	EventID        string `json:"eventId"`
}

// Default returns the embedded demo data set.
func Default() (*Fixtures, error) {
	return Parse(defaultData)
}

// Parse strips JSONC comments and trailing commas from data, then
// unmarshals and validates the result.
func Parse(data []byte) (*Fixtures, error) {
	var f Fixtures
	if err := json.Unmarshal(jsonc.ToJSON(data), &f); err != nil {
		return nil, fmt.Errorf("parsing fixtures: %w", err)
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

// ReadFile reads and parses a JSONC fixture file.
func ReadFile(path string) (*Fixtures, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	f, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// Validate checks references between fixtures: every assignment and
// participant must name a declared event, tokens must be unique, and no
// email may be both an admin and a coordinator.
func (f *Fixtures) Validate() error {
	events := make(map[string]bool, len(f.Events))
	for _, e := range f.Events {
		if e.EventID == "" || e.Name == "" {
			return fmt.Errorf("event %q: id and name are required", e.EventID)
		}
		if e.Status != "" && !e.Status.Valid() {
			return fmt.Errorf("event %s: unknown status %q", e.EventID, e.Status)
		}
		events[e.EventID] = true
	}
	for _, a := range append(append([]Account{}, f.Admins...), f.Coordinators...) {
		if strings.TrimSpace(a.Email) == "" || a.Password == "" {
			return fmt.Errorf("account %q: email and password are required", a.Name)
		}
	}
	admins := make(map[string]bool, len(f.Admins))
	for _, a := range f.Admins {
		admins[strings.ToLower(strings.TrimSpace(a.Email))] = true
	}
	for _, c := range f.Coordinators {
		if admins[strings.ToLower(strings.TrimSpace(c.Email))] {
			return fmt.Errorf("account %s: declared as both admin and coordinator", c.Email)
		}
	}
	for _, c := range f.Coordinators {
		for _, id := range c.AssignedEventIDs {
			if !events[id] {
				return fmt.Errorf("coordinator %s: assigned event %s is not declared", c.Email, id)
			}
		}
	}
	tokens := make(map[string]string, len(f.Participants))
	for _, p := range f.Participants {
		if !events[p.EventID] {
			return fmt.Errorf("participant %s: event %s is not declared", p.ParticipantID, p.EventID)
		}
		if p.Token == "" {
			return fmt.Errorf("participant %s: token is required", p.ParticipantID)
		}
		if other, dup := tokens[p.Token]; dup {
			return fmt.Errorf("participants %s and %s share token %s", other, p.ParticipantID, p.Token)
		}
		tokens[p.Token] = p.ParticipantID
	}
	return nil
}

// IdentityWriter upserts admins and coordinators.
type IdentityWriter interface {
	UpsertAdmin(ctx context.Context, p *model.Principal) error
	UpsertCoordinator(ctx context.Context, p *model.Principal) error
}

// EventWriter upserts events.
type EventWriter interface {
	Upsert(ctx context.Context, e *model.Event) error
}

// ParticipantWriter upserts participants.
type ParticipantWriter interface {
	Upsert(ctx context.Context, p *model.Participant) error
}

// Seeder writes fixtures through the repository layer.
type Seeder struct {
	identities   IdentityWriter
	events       EventWriter
	participants ParticipantWriter
	clock        clock.Clock
	cost         int
	logger       *slog.Logger
}

// NewSeeder constructs a Seeder. cost is the bcrypt cost; zero means
// bcrypt.DefaultCost.
func NewSeeder(identities IdentityWriter, events EventWriter, participants ParticipantWriter, c clock.Clock, cost int, logger *slog.Logger) *Seeder {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &Seeder{
		identities:   identities,
		events:       events,
		participants: participants,
		clock:        c,
		cost:         cost,
		logger:       logger,
	}
}

// Apply upserts every fixture. It is idempotent: re-running it keeps
// verification state and the start time of live events.
func (s *Seeder) Apply(ctx context.Context, f *Fixtures) error {
	now := s.clock.Now()
	for _, fe := range f.Events {
		e := &model.Event{
			EventID:  fe.EventID,
			Name:     fe.Name,
			Category: fe.Category,
			Status:   fe.Status,
		}
		if e.Status == "" {
			e.Status = model.StatusUpcoming
		}
		if e.IsLive() {
			e.StartedAt = &now
		}
		if err := s.events.Upsert(ctx, e); err != nil {
			return fmt.Errorf("seed event %s: %w", fe.EventID, err)
		}
	}

	for _, a := range f.Admins {
		p, err := s.principal(a, model.RoleAdmin)
		if err != nil {
			return err
		}
		if err := s.identities.UpsertAdmin(ctx, p); err != nil {
			return fmt.Errorf("seed admin %s: %w", p.Email, err)
		}
	}
	for _, a := range f.Coordinators {
		p, err := s.principal(a, model.RoleCoordinator)
		if err != nil {
			return err
		}
		if err := s.identities.UpsertCoordinator(ctx, p); err != nil {
			return fmt.Errorf("seed coordinator %s: %w", p.Email, err)
		}
	}

	for _, fp := range f.Participants {
		if err := s.participants.Upsert(ctx, &model.Participant{
			ParticipantID:  fp.ParticipantID,
			Name:           fp.Name,
			RegistrationID: fp.RegistrationID,
			Token:          fp.Token,
			EventID:        fp.EventID,
		}); err != nil {
			return fmt.Errorf("seed participant %s: %w", fp.ParticipantID, err)
		}
	}

	s.logger.Info("seed applied",
		"events", len(f.Events),
		"admins", len(f.Admins),
		"coordinators", len(f.Coordinators),
		"participants", len(f.Participants))
	return nil
}

func (s *Seeder) principal(a Account, role model.Role) (*model.Principal, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(a.Password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password for %s: %w", a.Email, err)
	}
	return &model.Principal{
		Email:            strings.ToLower(strings.TrimSpace(a.Email)),
		Name:             a.Name,
		Role:             role,
		AssignedEventIDs: a.AssignedEventIDs,
		PasswordHash:     string(hash),
	}, nil
}
