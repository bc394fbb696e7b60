package seed

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/Shivanand-hulikatti/event-checkin/internal/clock"
	"github.com/Shivanand-hulikatti/event-checkin/internal/model"
	"github.com/Shivanand-hulikatti/event-checkin/internal/repository/memory"
)

func TestDefaultFixtures(t *testing.T) {
	f, err := Default()
	if err != nil {
		t.Fatalf("Default: %v", err)
	}
	if len(f.Events) != 3 || len(f.Admins) != 1 || len(f.Coordinators) != 2 || len(f.Participants) != 3 {
		t.Fatalf("unexpected fixture counts: %d events, %d admins, %d coordinators, %d participants",
			len(f.Events), len(f.Admins), len(f.Coordinators), len(f.Participants))
	}
	if f.Events[1].Status != model.StatusLive {
		t.Errorf("evt_002 status = %s, want live", f.Events[1].Status)
	}
}

func TestParseRejectsBadReferences(t *testing.T) {
	tests := []struct {
		name string
		data string
		want string
	}{
		{"unknown assigned event", `{
			"events": [],
			"coordinators": [{"email": "c@x", "password": "p", "assignedEventIds": ["evt_9"]}],
		}`, "evt_9"},
		{"participant without event", `{
			"participants": [{"participantId": "p1", "token": "T", "eventId": "evt_9"}],
		}`, "not declared"},
		{"shared token", `{
			"events": [{"eventId": "e", "name": "E"}],
			"participants": [
				{"participantId": "p1", "token": "T", "eventId": "e"},
				{"participantId": "p2", "token": "T", "eventId": "e"},
			],
		}`, "share token"},
		{"admin and coordinator", `{
			"admins": [{"email": "Both@x", "password": "p"}],
			"coordinators": [{"email": "both@x", "password": "p"}],
		}`, "both admin and coordinator"},
		{"bad status", `{"events": [{"eventId": "e", "name": "E", "status": "paused"}]}`, "paused"},
		{"malformed", `{"events": [`, "parsing fixtures"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("Parse() = %v, want error containing %q", err, tt.want)
			}
		})
	}
}

func TestReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fixtures.jsonc")
	data := `// one event
{"events": [{"eventId": "e1", "name": "Solo", "category": "Tech"},],}`
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}
	f, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if len(f.Events) != 1 || f.Events[0].EventID != "e1" {
		t.Errorf("events = %+v", f.Events)
	}
}

func TestApplyIsIdempotent(t *testing.T) {
	ctx := context.Background()
	start := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	fc := clock.Fake(start)
	store := memory.New(fc.Now)
	seeder := NewSeeder(store.Identities(), store.Events(), store.Participants(), fc,
		bcrypt.MinCost, slog.New(slog.NewTextHandler(io.Discard, nil)))

	f, err := Default()
	if err != nil {
		t.Fatal(err)
	}
	if err := seeder.Apply(ctx, f); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if _, err := store.Participants().MarkVerified(ctx, "TKN_XYZ1", "evt_002", start); err != nil {
		t.Fatalf("MarkVerified: %v", err)
	}

	fc.Advance(time.Hour)
	if err := seeder.Apply(ctx, f); err != nil {
		t.Fatalf("second Apply: %v", err)
	}

	p, err := store.Participants().GetByToken(ctx, "TKN_XYZ1")
	if err != nil || !p.Verified {
		t.Errorf("verification lost: p=%+v err=%v", p, err)
	}
	e, err := store.Events().GetByID(ctx, "evt_002")
	if err != nil {
		t.Fatal(err)
	}
	if e.StartedAt == nil || !e.StartedAt.Equal(start) {
		t.Errorf("live event start moved: %v", e.StartedAt)
	}

	admin, err := store.Identities().FindAdmin(ctx, "admin@college.edu")
	if err != nil {
		t.Fatal(err)
	}
	if bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte("adminpassword123")) != nil {
		t.Error("admin password not hashed from fixture")
	}
	jane, err := store.Identities().FindCoordinator(ctx, "abc@tecxp")
	if err != nil {
		t.Fatal(err)
	}
	if len(jane.AssignedEventIDs) != 2 {
		t.Errorf("jane assignments = %v", jane.AssignedEventIDs)
	}
}
