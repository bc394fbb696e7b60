package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Shivanand-hulikatti/event-checkin/internal/model"
	"github.com/Shivanand-hulikatti/event-checkin/internal/repository"
)

var t0 = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

func newStore(t *testing.T) *Store {
	t.Helper()
	s := New(func() time.Time { return t0 })
	ctx := context.Background()
	if err := s.Events().Upsert(ctx, &model.Event{EventID: "evt_001", Name: "RoboWars", Category: "Robotics", Status: model.StatusUpcoming}); err != nil {
		t.Fatal(err)
	}
	if err := s.Participants().Upsert(ctx, &model.Participant{
		ParticipantID: "p_001", Name: "Alice", RegistrationID: "REG_1001", Token: "TKN_ABC1", EventID: "evt_001",
	}); err != nil {
		t.Fatal(err)
	}
	return s
}

func TestMarkVerifiedIsConditional(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	ps := s.Participants()

	if _, err := ps.MarkVerified(ctx, "TKN_ABC1", "evt_002", t0); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("wrong event: err = %v", err)
	}
	p, err := ps.MarkVerified(ctx, "TKN_ABC1", "evt_001", t0)
	if err != nil {
		t.Fatalf("MarkVerified: %v", err)
	}
	if !p.Verified || !p.VerifiedAt.Equal(t0) {
		t.Fatalf("participant = %+v", p)
	}
	if _, err := ps.MarkVerified(ctx, "TKN_ABC1", "evt_001", t0.Add(time.Hour)); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("second call: err = %v", err)
	}
	stored, _ := ps.GetByToken(ctx, "TKN_ABC1")
	if !stored.VerifiedAt.Equal(t0) {
		t.Errorf("verifiedAt overwritten: %v", stored.VerifiedAt)
	}
}

func TestParticipantUpsertPreservesVerification(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	ps := s.Participants()
	if _, err := ps.MarkVerified(ctx, "TKN_ABC1", "evt_001", t0); err != nil {
		t.Fatal(err)
	}
	if err := ps.Upsert(ctx, &model.Participant{
		ParticipantID: "p_001", Name: "Alice C", RegistrationID: "REG_1001", Token: "TKN_ABC1", EventID: "evt_001",
	}); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	p, _ := ps.GetForEvent(ctx, "p_001", "evt_001")
	if !p.Verified || p.Name != "Alice C" {
		t.Errorf("participant = %+v", p)
	}

	err := ps.Upsert(ctx, &model.Participant{ParticipantID: "p_002", Token: "TKN_ABC1", EventID: "evt_001"})
	if !errors.Is(err, repository.ErrConflict) {
		t.Errorf("token reuse: err = %v", err)
	}
	err = ps.Upsert(ctx, &model.Participant{ParticipantID: "p_003", Token: "TKN_NEW", EventID: "evt_404"})
	if !errors.Is(err, repository.ErrUnknownReference) {
		t.Errorf("unknown event: err = %v", err)
	}
}

func TestUpdateStatusTimestamps(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	es := s.Events()

	live, err := es.UpdateStatus(ctx, "evt_001", model.StatusLive, t0)
	if err != nil {
		t.Fatal(err)
	}
	if live.StartedAt == nil || !live.StartedAt.Equal(t0) {
		t.Fatalf("startedAt = %v", live.StartedAt)
	}
	again, _ := es.UpdateStatus(ctx, "evt_001", model.StatusLive, t0.Add(time.Minute))
	if !again.StartedAt.Equal(t0) {
		t.Errorf("live to live restarted the clock: %v", again.StartedAt)
	}
	done, _ := es.UpdateStatus(ctx, "evt_001", model.StatusCompleted, t0.Add(time.Hour))
	if done.EndedAt == nil || !done.EndedAt.Equal(t0.Add(time.Hour)) {
		t.Errorf("endedAt = %v", done.EndedAt)
	}
	if _, err := es.UpdateStatus(ctx, "evt_404", model.StatusLive, t0); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("missing: err = %v", err)
	}
}

func TestSubmissionsUniqueAndOrdered(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	subs := s.Submissions()

	first := &model.Submission{EventID: "evt_001", ParticipantID: "p_001", ElapsedTimeMs: 900}
	if err := subs.Create(ctx, first); err != nil {
		t.Fatal(err)
	}
	if first.ID == "" {
		t.Error("expected generated id")
	}
	if err := subs.Create(ctx, &model.Submission{EventID: "evt_001", ParticipantID: "p_001"}); !errors.Is(err, repository.ErrAlreadySubmitted) {
		t.Fatalf("duplicate: err = %v", err)
	}
	if err := subs.Create(ctx, &model.Submission{EventID: "evt_001", ParticipantID: "p_002", ElapsedTimeMs: 100}); err != nil {
		t.Fatal(err)
	}
	list, _ := subs.ListByEvent(ctx, "evt_001")
	if len(list) != 2 || list[0].ParticipantID != "p_002" {
		t.Errorf("list = %+v", list)
	}
}

func TestSetAssignments(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	ids := s.Identities()
	if err := ids.UpsertCoordinator(ctx, &model.Principal{Email: "c@x", Name: "C"}); err != nil {
		t.Fatal(err)
	}
	if err := ids.SetAssignments(ctx, "c@x", []string{"evt_001", "evt_001"}); err != nil {
		t.Fatal(err)
	}
	p, _ := ids.FindCoordinator(ctx, "c@x")
	if len(p.AssignedEventIDs) != 1 || p.Role != model.RoleCoordinator {
		t.Errorf("coordinator = %+v", p)
	}
	if err := ids.SetAssignments(ctx, "nobody@x", nil); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("unknown: err = %v", err)
	}
	if err := ids.SetAssignments(ctx, "c@x", []string{"evt_404"}); !errors.Is(err, repository.ErrUnknownReference) {
		t.Errorf("unknown event: err = %v", err)
	}
}

func TestPrincipalEmailsAreDisjoint(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	ids := s.Identities()
	if err := ids.UpsertAdmin(ctx, &model.Principal{Email: "a@x", Name: "A"}); err != nil {
		t.Fatal(err)
	}
	if err := ids.UpsertCoordinator(ctx, &model.Principal{Email: "c@x", Name: "C"}); err != nil {
		t.Fatal(err)
	}

	if err := ids.CreateCoordinator(ctx, &model.Principal{Email: "a@x", Name: "Shadow"}); !errors.Is(err, repository.ErrConflict) {
		t.Errorf("CreateCoordinator over admin: err = %v", err)
	}
	if err := ids.UpsertCoordinator(ctx, &model.Principal{Email: "a@x", Name: "Shadow"}); !errors.Is(err, repository.ErrConflict) {
		t.Errorf("UpsertCoordinator over admin: err = %v", err)
	}
	if err := ids.UpsertAdmin(ctx, &model.Principal{Email: "c@x", Name: "Shadow"}); !errors.Is(err, repository.ErrConflict) {
		t.Errorf("UpsertAdmin over coordinator: err = %v", err)
	}
	if _, err := ids.FindCoordinator(ctx, "a@x"); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("coordinator row created for admin email: %v", err)
	}
	if err := ids.UpsertAdmin(ctx, &model.Principal{Email: "a@x", Name: "A2"}); err != nil {
		t.Errorf("refreshing the admin itself: %v", err)
	}
}

func TestReset(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	if err := s.Reset(ctx); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Events().GetByID(ctx, "evt_001"); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("event survived reset: %v", err)
	}
}
