package timing

import (
	"testing"
	"time"

	"github.com/Shivanand-hulikatti/event-checkin/internal/clock"
	"github.com/Shivanand-hulikatti/event-checkin/internal/model"
)

var now = time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)

func at(d time.Duration) *time.Time {
	t := now.Add(d)
	return &t
}

func TestProject(t *testing.T) {
	projector := NewProjector(clock.Fake(now))

	tests := []struct {
		name   string
		ref    *time.Time
		active bool
		want   int64
	}{
		{"inactive with nil ref", nil, false, 0},
		{"inactive with past ref", at(-time.Hour), false, 0},
		{"active with nil ref", nil, true, 0},
		{"active 125s ago", at(-125 * time.Second), true, 125},
		{"floors partial seconds", at(-(2*time.Second + 900*time.Millisecond)), true, 2},
		{"future ref clamps to zero", at(30 * time.Second), true, 0},
		{"exactly now", at(0), true, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := projector.Project(tt.ref, tt.active); got != tt.want {
				t.Fatalf("Project() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestProjectRecomputesOnEveryRead(t *testing.T) {
	fake := clock.Fake(now)
	projector := NewProjector(fake)
	ref := at(-10 * time.Second)

	if got := projector.Project(ref, true); got != 10 {
		t.Fatalf("first read = %d, want 10", got)
	}
	fake.Advance(5 * time.Second)
	if got := projector.Project(ref, true); got != 15 {
		t.Fatalf("second read = %d, want 15", got)
	}
}

func TestEventOnlyRunsWhileLive(t *testing.T) {
	projector := NewProjector(clock.Fake(now))

	event := model.Event{Status: model.StatusLive, StartedAt: at(-90 * time.Second)}
	projector.Event(&event)
	if event.ElapsedSeconds != 90 {
		t.Fatalf("live event elapsed = %d, want 90", event.ElapsedSeconds)
	}

	event.Status = model.StatusCompleted
	projector.Event(&event)
	if event.ElapsedSeconds != 0 {
		t.Fatalf("completed event elapsed = %d, want 0", event.ElapsedSeconds)
	}
}

func TestParticipantsRequireVerifiedAndLive(t *testing.T) {
	projector := NewProjector(clock.Fake(now))
	participants := []model.Participant{
		{ParticipantID: "p_001", Verified: true, VerifiedAt: at(-30 * time.Second)},
		{ParticipantID: "p_002", Verified: false},
	}

	projector.Participants(true, participants)
	if participants[0].ElapsedSeconds != 30 {
		t.Errorf("verified participant elapsed = %d, want 30", participants[0].ElapsedSeconds)
	}
	if participants[1].ElapsedSeconds != 0 {
		t.Errorf("unverified participant elapsed = %d, want 0", participants[1].ElapsedSeconds)
	}

	projector.Participants(false, participants)
	if participants[0].ElapsedSeconds != 0 {
		t.Errorf("participant of non-live event elapsed = %d, want 0", participants[0].ElapsedSeconds)
	}
}
