// Package memory is an in-process implementation of the repository
// layer. It backs the server's memory driver for local demos and the
// service and handler tests. Semantics match the Postgres queries,
// including the conditional verification update and the unique
// (event, participant) submission key.
package memory

import (
	"context"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Shivanand-hulikatti/event-checkin/internal/model"
	"github.com/Shivanand-hulikatti/event-checkin/internal/repository"
)

// Store holds every collection behind one mutex.
type Store struct {
	mu           sync.Mutex
	now          func() time.Time
	admins       map[string]model.Principal
	coordinators map[string]model.Principal
	events       map[string]model.Event
	participants map[string]model.Participant
	submissions  []model.Submission
}

// New returns an empty Store. now stamps created_at columns.
func New(now func() time.Time) *Store {
	s := &Store{now: now}
	s.reset()
	return s
}

func (s *Store) reset() {
	s.admins = map[string]model.Principal{}
	s.coordinators = map[string]model.Principal{}
	s.events = map[string]model.Event{}
	s.participants = map[string]model.Participant{}
	s.submissions = nil
}

// Reset removes every record.
func (s *Store) Reset(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reset()
	return nil
}

// Identities returns the admin and coordinator repository.
func (s *Store) Identities() *Identities { return &Identities{s} }

// Events returns the event repository.
func (s *Store) Events() *Events { return &Events{s} }

// Participants returns the participant repository.
func (s *Store) Participants() *Participants { return &Participants{s} }

// Submissions returns the submission repository.
func (s *Store) Submissions() *Submissions { return &Submissions{s} }

func clonePrincipal(p model.Principal) *model.Principal {
	p.AssignedEventIDs = slices.Clone(p.AssignedEventIDs)
	return &p
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

// Identities implements the identity repository.
type Identities struct{ s *Store }

// FindAdmin returns the admin with the given email or ErrNotFound.
func (r *Identities) FindAdmin(_ context.Context, email string) (*model.Principal, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.admins[email]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return clonePrincipal(p), nil
}

// FindCoordinator returns the coordinator with the given email, with
// its assignment set, or ErrNotFound.
func (r *Identities) FindCoordinator(_ context.Context, email string) (*model.Principal, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.coordinators[email]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return clonePrincipal(p), nil
}

// UpsertAdmin inserts or refreshes an admin. Returns ErrConflict if the
// email belongs to a coordinator.
func (r *Identities) UpsertAdmin(_ context.Context, p *model.Principal) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.coordinators[p.Email]; ok {
		return repository.ErrConflict
	}
	admin := *clonePrincipal(*p)
	admin.Role = model.RoleAdmin
	admin.AssignedEventIDs = nil
	r.s.admins[p.Email] = admin
	return nil
}

// CreateCoordinator inserts a coordinator. Returns ErrConflict if the
// email is taken by an admin or a coordinator.
func (r *Identities) CreateCoordinator(_ context.Context, p *model.Principal) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.coordinators[p.Email]; ok {
		return repository.ErrConflict
	}
	return r.putCoordinator(p)
}

// UpsertCoordinator inserts or refreshes a coordinator and replaces its
// assignment set.
func (r *Identities) UpsertCoordinator(_ context.Context, p *model.Principal) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.putCoordinator(p)
}

func (r *Identities) putCoordinator(p *model.Principal) error {
	if _, ok := r.s.admins[p.Email]; ok {
		return repository.ErrConflict
	}
	if err := r.checkEvents(p.AssignedEventIDs); err != nil {
		return err
	}
	c := *clonePrincipal(*p)
	c.Role = model.RoleCoordinator
	c.AssignedEventIDs = sortedUnique(c.AssignedEventIDs)
	r.s.coordinators[p.Email] = c
	return nil
}

// SetAssignments replaces a coordinator's assignment set.
func (r *Identities) SetAssignments(_ context.Context, email string, eventIDs []string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.coordinators[email]
	if !ok {
		return repository.ErrNotFound
	}
	if err := r.checkEvents(eventIDs); err != nil {
		return err
	}
	c.AssignedEventIDs = sortedUnique(eventIDs)
	r.s.coordinators[email] = c
	return nil
}

func (r *Identities) checkEvents(ids []string) error {
	for _, id := range ids {
		if _, ok := r.s.events[id]; !ok {
			return repository.ErrUnknownReference
		}
	}
	return nil
}

func sortedUnique(ids []string) []string {
	out := slices.Clone(ids)
	slices.Sort(out)
	return slices.Compact(out)
}

// Events implements the event repository.
type Events struct{ s *Store }

// Create inserts an event. Returns ErrConflict if the id is taken.
func (r *Events) Create(_ context.Context, e *model.Event) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.events[e.EventID]; ok {
		return repository.ErrConflict
	}
	e.CreatedAt = r.s.now()
	r.s.events[e.EventID] = storedEvent(*e)
	return nil
}

// Upsert inserts or refreshes an event, keeping its recorded start time.
func (r *Events) Upsert(_ context.Context, e *model.Event) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored := storedEvent(*e)
	if existing, ok := r.s.events[e.EventID]; ok {
		stored.CreatedAt = existing.CreatedAt
		stored.EndedAt = existing.EndedAt
		if existing.StartedAt != nil {
			stored.StartedAt = existing.StartedAt
		}
	} else {
		stored.CreatedAt = r.s.now()
	}
	r.s.events[e.EventID] = stored
	return nil
}

// storedEvent strips derived fields.
func storedEvent(e model.Event) model.Event {
	e.ElapsedSeconds = 0
	e.Stats = nil
	e.StartedAt = cloneTime(e.StartedAt)
	e.EndedAt = cloneTime(e.EndedAt)
	return e
}

// List returns every event, newest first.
func (r *Events) List(context.Context) ([]model.Event, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.sorted(func(model.Event) bool { return true }), nil
}

// ListByIDs returns the events whose ids are in ids, newest first.
func (r *Events) ListByIDs(_ context.Context, ids []string) ([]model.Event, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.sorted(func(e model.Event) bool { return slices.Contains(ids, e.EventID) }), nil
}

func (r *Events) sorted(keep func(model.Event) bool) []model.Event {
	var out []model.Event
	for _, e := range r.s.events {
		if keep(e) {
			out = append(out, storedEvent(e))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].EventID < out[j].EventID
	})
	return out
}

// GetByID returns the event or ErrNotFound.
func (r *Events) GetByID(_ context.Context, id string) (*model.Event, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	e, ok := r.s.events[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	e = storedEvent(e)
	return &e, nil
}

// UpdateStatus sets the status, stamping started_at on entering live
// and ended_at on entering completed.
func (r *Events) UpdateStatus(_ context.Context, id string, status model.EventStatus, at time.Time) (*model.Event, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	e, ok := r.s.events[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	switch {
	case status == model.StatusLive && e.Status != model.StatusLive:
		e.StartedAt = cloneTime(&at)
		e.EndedAt = nil
	case status == model.StatusCompleted && e.Status != model.StatusCompleted:
		e.EndedAt = cloneTime(&at)
	}
	e.Status = status
	r.s.events[id] = e
	out := storedEvent(e)
	return &out, nil
}

// Stats counts an event's participants by verification state.
func (r *Events) Stats(_ context.Context, id string) (*model.EventStats, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var stats model.EventStats
	for _, p := range r.s.participants {
		if p.EventID != id {
			continue
		}
		stats.Total++
		if p.Verified {
			stats.Verified++
		}
	}
	stats.Pending = stats.Total - stats.Verified
	return &stats, nil
}

// Participants implements the participant repository.
type Participants struct{ s *Store }

func (r *Participants) byToken(token string) (model.Participant, bool) {
	for _, p := range r.s.participants {
		if p.Token == token {
			return p, true
		}
	}
	return model.Participant{}, false
}

func storedParticipant(p model.Participant) *model.Participant {
	p.VerifiedAt = cloneTime(p.VerifiedAt)
	p.ElapsedSeconds = 0
	return &p
}

// GetByToken returns the holder of token or ErrNotFound.
func (r *Participants) GetByToken(_ context.Context, token string) (*model.Participant, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.byToken(token)
	if !ok {
		return nil, repository.ErrNotFound
	}
	return storedParticipant(p), nil
}

// GetForEvent returns the participant if it belongs to eventID, or
// ErrNotFound.
func (r *Participants) GetForEvent(_ context.Context, participantID, eventID string) (*model.Participant, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.participants[participantID]
	if !ok || p.EventID != eventID {
		return nil, repository.ErrNotFound
	}
	return storedParticipant(p), nil
}

// ListByEvent returns an event's participants ordered by id.
func (r *Participants) ListByEvent(_ context.Context, eventID string) ([]model.Participant, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []model.Participant
	for _, p := range r.s.participants {
		if p.EventID == eventID {
			out = append(out, *storedParticipant(p))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ParticipantID < out[j].ParticipantID })
	return out, nil
}

// MarkVerified flips an unverified participant of eventID to verified.
// Returns ErrNotFound when the token is unknown, belongs to another
// event, or is already verified.
func (r *Participants) MarkVerified(_ context.Context, token, eventID string, at time.Time) (*model.Participant, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.byToken(token)
	if !ok || p.EventID != eventID || p.Verified {
		return nil, repository.ErrNotFound
	}
	p.Verified = true
	p.VerifiedAt = cloneTime(&at)
	r.s.participants[p.ParticipantID] = p
	return storedParticipant(p), nil
}

// Upsert inserts or refreshes a participant, preserving verification
// state.
func (r *Participants) Upsert(_ context.Context, p *model.Participant) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.events[p.EventID]; !ok {
		return repository.ErrUnknownReference
	}
	if holder, ok := r.byToken(p.Token); ok && holder.ParticipantID != p.ParticipantID {
		return repository.ErrConflict
	}
	stored := *storedParticipant(*p)
	if existing, ok := r.s.participants[p.ParticipantID]; ok {
		stored.Verified = existing.Verified
		stored.VerifiedAt = existing.VerifiedAt
	}
	r.s.participants[p.ParticipantID] = stored
	return nil
}

// Submissions implements the submission repository.
type Submissions struct{ s *Store }

func storedSubmission(s model.Submission) model.Submission {
	s.StartedAt = cloneTime(s.StartedAt)
	s.EndedAt = cloneTime(s.EndedAt)
	return s
}

// Create appends a submission with a generated id. Returns
// ErrAlreadySubmitted if the participant already has one for the event.
func (r *Submissions) Create(_ context.Context, sub *model.Submission) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.submissions {
		if existing.EventID == sub.EventID && existing.ParticipantID == sub.ParticipantID {
			return repository.ErrAlreadySubmitted
		}
	}
	sub.ID = uuid.New().String()
	r.s.submissions = append(r.s.submissions, storedSubmission(*sub))
	return nil
}

// GetByParticipant returns the submission for a participant of an event
// or ErrNotFound.
func (r *Submissions) GetByParticipant(_ context.Context, eventID, participantID string) (*model.Submission, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.submissions {
		if existing.EventID == eventID && existing.ParticipantID == participantID {
			out := storedSubmission(existing)
			return &out, nil
		}
	}
	return nil, repository.ErrNotFound
}

// ListByEvent returns an event's submissions, fastest first.
func (r *Submissions) ListByEvent(_ context.Context, eventID string) ([]model.Submission, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []model.Submission
	for _, existing := range r.s.submissions {
		if existing.EventID == eventID {
			out = append(out, storedSubmission(existing))
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ElapsedTimeMs < out[j].ElapsedTimeMs })
	return out, nil
}
