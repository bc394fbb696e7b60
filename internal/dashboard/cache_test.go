package dashboard

import (
	"testing"
	"time"

	"github.com/Shivanand-hulikatti/event-checkin/internal/model"
)

var t0 = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

func liveSnapshot(seq uint64, eventSeconds, participantSeconds int64) Snapshot {
	verifiedAt := t0
	return Snapshot{
		Seq: seq,
		At:  t0,
		Events: []model.Event{
			{EventID: "evt_002", Name: "CodeMarathon", Status: model.StatusLive, ElapsedSeconds: eventSeconds},
			{EventID: "evt_003", Name: "Debate", Status: model.StatusUpcoming},
		},
		EventID: "evt_002",
		Participants: []model.Participant{
			{ParticipantID: "p_003", Name: "Charlie", EventID: "evt_002", Verified: true, VerifiedAt: &verifiedAt, ElapsedSeconds: participantSeconds},
			{ParticipantID: "p_004", Name: "Dana", EventID: "evt_002"},
		},
	}
}

func TestCacheTickAdvancesOnlyRunningCounters(t *testing.T) {
	c := NewCache()
	if !c.Apply(liveSnapshot(c.NextSeq(), 100, 40)) {
		t.Fatal("first snapshot rejected")
	}
	c.Tick()
	c.Tick()

	live, _ := c.Event("evt_002")
	upcoming, _ := c.Event("evt_003")
	if live.Seconds != 102 || upcoming.Seconds != 0 {
		t.Errorf("event seconds = %d/%d, want 102/0", live.Seconds, upcoming.Seconds)
	}
	ps := c.Participants()
	if ps[0].Seconds != 42 || ps[1].Seconds != 0 {
		t.Errorf("participant seconds = %d/%d, want 42/0", ps[0].Seconds, ps[1].Seconds)
	}
}

func TestCacheReplaceOverwritesLocalCounters(t *testing.T) {
	c := NewCache()
	c.Apply(liveSnapshot(c.NextSeq(), 100, 40))
	for i := 0; i < 10; i++ {
		c.Tick()
	}

	c.Apply(liveSnapshot(c.NextSeq(), 105, 45))
	live, _ := c.Event("evt_002")
	if live.Seconds != 105 {
		t.Errorf("event seconds = %d, want server value 105", live.Seconds)
	}
	if got := c.Participants()[0].Seconds; got != 45 {
		t.Errorf("participant seconds = %d, want server value 45", got)
	}
}

func TestCacheDiscardsStaleSnapshots(t *testing.T) {
	c := NewCache()
	older := c.NextSeq()
	newer := c.NextSeq()

	if !c.Apply(liveSnapshot(newer, 200, 0)) {
		t.Fatal("newer snapshot rejected")
	}
	if c.Apply(liveSnapshot(older, 10, 0)) {
		t.Fatal("older snapshot applied after newer one")
	}
	live, _ := c.Event("evt_002")
	if live.Seconds != 200 {
		t.Errorf("seconds = %d, want 200", live.Seconds)
	}
}

func TestCacheStopsParticipantsWhenEventNotLive(t *testing.T) {
	c := NewCache()
	snap := liveSnapshot(c.NextSeq(), 0, 30)
	snap.Events[0].Status = model.StatusCompleted
	c.Apply(snap)
	c.Tick()
	if got := c.Participants()[0].Seconds; got != 30 {
		t.Errorf("participant seconds = %d, want 30", got)
	}
}

func TestCacheUpsertParticipantIgnoresOtherEvents(t *testing.T) {
	c := NewCache()
	c.Apply(liveSnapshot(c.NextSeq(), 0, 0))
	c.UpsertParticipant(model.Participant{ParticipantID: "p_001", EventID: "evt_001"}, t0)
	if len(c.Participants()) != 2 {
		t.Errorf("participants = %d, want 2", len(c.Participants()))
	}
	c.UpsertParticipant(model.Participant{ParticipantID: "p_004", EventID: "evt_002", Verified: true}, t0)
	if !c.Participants()[1].Participant.Verified {
		t.Error("upsert did not replace p_004")
	}
}

func TestFormatSeconds(t *testing.T) {
	tests := map[int64]string{0: "00:00:00", 125: "00:02:05", 3725: "01:02:05", -3: "00:00:00"}
	for in, want := range tests {
		if got := formatSeconds(in); got != want {
			t.Errorf("formatSeconds(%d) = %q, want %q", in, got, want)
		}
	}
}
