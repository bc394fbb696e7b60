package dashboard

import (
	"time"

	"github.com/Shivanand-hulikatti/event-checkin/internal/model"
)

// EventEntry is the cached view of one event. Seconds starts from the
// server-projected value and is advanced locally by Tick.
type EventEntry struct {
	Event    model.Event
	Seconds  int64
	SyncedAt time.Time
}

// ParticipantEntry is the cached view of one participant of the
// selected event.
type ParticipantEntry struct {
	Participant model.Participant
	Seconds     int64
	SyncedAt    time.Time
}

// Snapshot is one poll's worth of server state.
type Snapshot struct {
	Seq          uint64
	At           time.Time
	Events       []model.Event
	EventID      string
	Participants []model.Participant
}

// Cache holds the dashboard's local state. Server data always replaces
// local counters; the local tick only fills the gap between polls.
// Snapshots older than the newest applied one are discarded.
type Cache struct {
	issued  uint64
	applied uint64

	events       map[string]*EventEntry
	eventOrder   []string
	eventID      string
	participants map[string]*ParticipantEntry
	partOrder    []string
}

// NewCache returns an empty Cache.
func NewCache() *Cache {
	return &Cache{
		events:       map[string]*EventEntry{},
		participants: map[string]*ParticipantEntry{},
	}
}

// NextSeq issues the sequence number for a new poll.
func (c *Cache) NextSeq() uint64 {
	c.issued++
	return c.issued
}

// Apply replaces the cached state with snap. It returns false, leaving
// the cache untouched, when a newer snapshot was already applied.
func (c *Cache) Apply(snap Snapshot) bool {
	if snap.Seq <= c.applied {
		return false
	}
	c.applied = snap.Seq
	c.ReplaceEvents(snap.Events, snap.At)
	c.ReplaceParticipants(snap.EventID, snap.Participants, snap.At)
	return true
}

// ReplaceEvents overwrites the event set with the server's view.
func (c *Cache) ReplaceEvents(events []model.Event, at time.Time) {
	c.events = make(map[string]*EventEntry, len(events))
	c.eventOrder = c.eventOrder[:0]
	for _, e := range events {
		c.events[e.EventID] = &EventEntry{Event: e, Seconds: e.ElapsedSeconds, SyncedAt: at}
		c.eventOrder = append(c.eventOrder, e.EventID)
	}
}

// ReplaceParticipants overwrites the participant set of eventID.
func (c *Cache) ReplaceParticipants(eventID string, participants []model.Participant, at time.Time) {
	c.eventID = eventID
	c.participants = make(map[string]*ParticipantEntry, len(participants))
	c.partOrder = c.partOrder[:0]
	for _, p := range participants {
		c.participants[p.ParticipantID] = &ParticipantEntry{Participant: p, Seconds: p.ElapsedSeconds, SyncedAt: at}
		c.partOrder = append(c.partOrder, p.ParticipantID)
	}
}

// UpsertEvent replaces a single event, as returned by a mutation.
func (c *Cache) UpsertEvent(e model.Event, at time.Time) {
	if _, ok := c.events[e.EventID]; !ok {
		c.eventOrder = append(c.eventOrder, e.EventID)
	}
	c.events[e.EventID] = &EventEntry{Event: e, Seconds: e.ElapsedSeconds, SyncedAt: at}
}

// UpsertParticipant replaces a single participant of the current event.
func (c *Cache) UpsertParticipant(p model.Participant, at time.Time) {
	if p.EventID != c.eventID {
		return
	}
	if _, ok := c.participants[p.ParticipantID]; !ok {
		c.partOrder = append(c.partOrder, p.ParticipantID)
	}
	c.participants[p.ParticipantID] = &ParticipantEntry{Participant: p, Seconds: p.ElapsedSeconds, SyncedAt: at}
}

// Tick advances every running counter by one second. Events run while
// live; participants run while verified and their event is live.
func (c *Cache) Tick() {
	for _, e := range c.events {
		if e.Event.IsLive() {
			e.Seconds++
		}
	}
	current, ok := c.events[c.eventID]
	if !ok || !current.Event.IsLive() {
		return
	}
	for _, p := range c.participants {
		if p.Participant.Verified {
			p.Seconds++
		}
	}
}

// Events returns the cached events in server order.
func (c *Cache) Events() []*EventEntry {
	out := make([]*EventEntry, 0, len(c.eventOrder))
	for _, id := range c.eventOrder {
		out = append(out, c.events[id])
	}
	return out
}

// Event returns one cached event.
func (c *Cache) Event(id string) (*EventEntry, bool) {
	e, ok := c.events[id]
	return e, ok
}

// Participants returns the cached participants of the current event.
func (c *Cache) Participants() []*ParticipantEntry {
	out := make([]*ParticipantEntry, 0, len(c.partOrder))
	for _, id := range c.partOrder {
		out = append(out, c.participants[id])
	}
	return out
}

// EventID is the event whose participants are cached.
func (c *Cache) EventID() string { return c.eventID }
