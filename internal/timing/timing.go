// Package timing derives live durations from stored timestamps. Values
// are recomputed on every read from an absolute reference instant; no
// tick is ever accumulated server-side.
package timing

import (
	"time"

	"github.com/Shivanand-hulikatti/event-checkin/internal/clock"
	"github.com/Shivanand-hulikatti/event-checkin/internal/model"
)

// Projector computes elapsed seconds against an injected clock.
type Projector struct {
	clock clock.Clock
}

// NewProjector constructs a Projector.
func NewProjector(c clock.Clock) *Projector {
	return &Projector{clock: c}
}

// Project returns whole seconds elapsed since ref, or 0 when the timer
// is inactive, ref is nil, or ref lies in the future.
func (p *Projector) Project(ref *time.Time, active bool) int64 {
	if !active || ref == nil {
		return 0
	}
	elapsed := p.clock.Now().Sub(*ref)
	if elapsed <= 0 {
		return 0
	}
	return int64(elapsed / time.Second)
}

// Event stamps e.ElapsedSeconds from its start time while it is live.
func (p *Projector) Event(e *model.Event) {
	e.ElapsedSeconds = p.Project(e.StartedAt, e.IsLive())
}

// Participants stamps each participant's elapsed seconds from its
// verification time. The timer only runs while the owning event is live.
func (p *Projector) Participants(eventLive bool, participants []model.Participant) {
	for i := range participants {
		pt := &participants[i]
		pt.ElapsedSeconds = p.Project(pt.VerifiedAt, pt.Verified && eventLive)
	}
}
