package report

import (
	"strings"
	"testing"
	"time"

	"github.com/Shivanand-hulikatti/event-checkin/internal/model"
)

var verified = time.Date(2026, 3, 14, 9, 5, 0, 0, time.UTC)

func TestToCSVEmpty(t *testing.T) {
	if got := NewExporter(nil).ToCSV(nil); got != "" {
		t.Fatalf("ToCSV(nil) = %q, want empty string", got)
	}
	if got := NewExporter(nil).ToCSV([]model.Submission{}); got != "" {
		t.Fatalf("ToCSV([]) = %q, want empty string", got)
	}
}

func TestToCSVIncompleteRow(t *testing.T) {
	out := NewExporter(nil).ToCSV([]model.Submission{{
		Name:           "Alice Cooper",
		RegistrationID: "REG_1001",
		VerifiedAt:     verified,
		ElapsedTimeMs:  0,
		SubmittedBy:    "john@college.edu",
	}})

	lines := strings.Split(out, "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2:\n%s", len(lines), out)
	}
	if !strings.HasPrefix(lines[0], "Participant Name,Registration ID,Status,") {
		t.Errorf("unexpected header %q", lines[0])
	}
	fields := strings.Split(lines[1], ",")
	if fields[2] != "Incomplete" {
		t.Errorf("status field = %q, want Incomplete", fields[2])
	}
	if fields[3] != `"N/A"` || fields[4] != `"N/A"` {
		t.Errorf("missing start/end should render N/A, got %q %q", fields[3], fields[4])
	}
	if fields[5] != "0.00" {
		t.Errorf("elapsed = %q, want 0.00", fields[5])
	}
}

func TestToCSVCompletedRow(t *testing.T) {
	started := verified.Add(time.Minute)
	ended := started.Add(83*time.Second + 450*time.Millisecond)
	out := NewExporter(time.UTC).ToCSV([]model.Submission{{
		Name:           "Bob Marley",
		RegistrationID: "REG_1002",
		VerifiedAt:     verified,
		StartedAt:      &started,
		EndedAt:        &ended,
		ElapsedTimeMs:  83450,
		SubmittedBy:    "john@college.edu",
	}})

	want := `"Bob Marley","REG_1002",Completed,"3/14/2026, 9:06:00 AM","3/14/2026, 9:07:23 AM",83.45,"3/14/2026, 9:05:00 AM","john@college.edu"`
	lines := strings.Split(out, "\n")
	if lines[1] != want {
		t.Fatalf("row =\n%s\nwant\n%s", lines[1], want)
	}
}

func TestToCSVKeepsCallerOrder(t *testing.T) {
	out := NewExporter(nil).ToCSV([]model.Submission{
		{Name: "fast", ElapsedTimeMs: 1000, VerifiedAt: verified},
		{Name: "slow", ElapsedTimeMs: 9000, VerifiedAt: verified},
	})
	lines := strings.Split(out, "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want 3", len(lines))
	}
	if !strings.HasPrefix(lines[1], `"fast"`) || !strings.HasPrefix(lines[2], `"slow"`) {
		t.Fatalf("rows reordered:\n%s", out)
	}
}

func TestToCSVUsesLocation(t *testing.T) {
	loc := time.FixedZone("IST", 5*3600+1800)
	out := NewExporter(loc).ToCSV([]model.Submission{{Name: "x", VerifiedAt: verified}})
	if !strings.Contains(out, `"3/14/2026, 2:35:00 PM"`) {
		t.Fatalf("verified time not rendered in location:\n%s", out)
	}
}

func TestEmbeddedQuotesAreNotEscaped(t *testing.T) {
	if got := quote(`Robert "Bob" Tables`); got != `"Robert "Bob" Tables"` {
		t.Fatalf("quote() = %s", got)
	}
	out := NewExporter(time.UTC).ToCSV([]model.Submission{{
		Name: `Robert "Bob" Tables`, RegistrationID: "R1", ElapsedTimeMs: 1500, VerifiedAt: verified,
	}})
	row := strings.Split(out, "\n")[1]
	if !strings.HasPrefix(row, `"Robert "Bob" Tables","R1",Completed,`) {
		t.Fatalf("row = %s", row)
	}
}
