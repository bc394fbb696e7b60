// Package report renders submissions as a downloadable CSV text blob.
package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/Shivanand-hulikatti/event-checkin/internal/model"
)

// TimeLayout matches the en-US locale string the dashboard shows.
const TimeLayout = "1/2/2006, 3:04:05 PM"

var header = []string{
	"Participant Name",
	"Registration ID",
	"Status",
	"Start Time",
	"End Time",
	"Elapsed Time (Seconds)",
	"Verified At",
	"Submitted By",
}

// Exporter formats timestamps in a fixed location.
type Exporter struct {
	loc *time.Location
}

// NewExporter constructs an Exporter. A nil location means UTC.
func NewExporter(loc *time.Location) *Exporter {
	if loc == nil {
		loc = time.UTC
	}
	return &Exporter{loc: loc}
}

// ToCSV renders submissions in the order given. Empty input yields the
// empty string rather than a header-only file.
func (e *Exporter) ToCSV(submissions []model.Submission) string {
	if len(submissions) == 0 {
		return ""
	}

	lines := make([]string, 0, len(submissions)+1)
	lines = append(lines, strings.Join(header, ","))
	for i := range submissions {
		lines = append(lines, e.row(&submissions[i]))
	}
	return strings.Join(lines, "\n")
}

func (e *Exporter) row(s *model.Submission) string {
	verifiedAt := s.VerifiedAt
	return strings.Join([]string{
		quote(s.Name),
		quote(s.RegistrationID),
		Status(s),
		quote(e.formatTime(s.StartedAt)),
		quote(e.formatTime(s.EndedAt)),
		fmt.Sprintf("%.2f", float64(s.ElapsedTimeMs)/1000),
		quote(e.formatTime(&verifiedAt)),
		quote(s.SubmittedBy),
	}, ",")
}

// Status is "Completed" when a positive elapsed time was recorded.
func Status(s *model.Submission) string {
	if s.ElapsedTimeMs > 0 {
		return "Completed"
	}
	return "Incomplete"
}

func (e *Exporter) formatTime(t *time.Time) string {
	if t == nil || t.IsZero() {
		return "N/A"
	}
	return t.In(e.loc).Format(TimeLayout)
}

// quote wraps v in double quotes. Embedded quotes are written as is.
func quote(v string) string {
	return `"` + v + `"`
}
