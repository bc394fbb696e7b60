package dashboard

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Shivanand-hulikatti/event-checkin/internal/clock"
	"github.com/Shivanand-hulikatti/event-checkin/internal/model"
)

const requestTimeout = 10 * time.Second

// Options configures a Model.
type Options struct {
	Client *Client
	Clock  clock.Clock
	// Poll is the interval between full refreshes from the server.
	Poll time.Duration
	// EventID preselects an event. Empty selects the first one listed.
	EventID string
	// ExportDir receives exported CSV files.
	ExportDir string
}

type (
	tickMsg     time.Time
	pollMsg     time.Time
	snapshotMsg struct {
		snap Snapshot
		err  error
	}
	verifiedMsg struct {
		participant *model.Participant
		err         error
	}
	statusChangedMsg struct {
		event *model.Event
		err   error
	}
	submittedMsg struct {
		total    int
		ok       int
		already  int
		failures []string
	}
	exportedMsg struct {
		path string
		err  error
	}
)

// Model is the bubbletea model of the dashboard.
type Model struct {
	client    *Client
	cache     *Cache
	clock     clock.Clock
	keys      KeyMap
	poll      time.Duration
	exportDir string

	selected  string
	verifying bool
	input     textinput.Model

	status  string
	failure bool
	width   int
}

// NewModel builds a Model. The client must already be logged in.
func NewModel(opts Options) Model {
	if opts.Clock == nil {
		opts.Clock = clock.Real()
	}
	if opts.Poll <= 0 {
		opts.Poll = 5 * time.Second
	}
	if opts.ExportDir == "" {
		opts.ExportDir = "."
	}
	input := textinput.New()
	input.Placeholder = "participant token"
	input.CharLimit = 64
	input.Prompt = "token> "

	return Model{
		client:    opts.Client,
		cache:     NewCache(),
		clock:     opts.Clock,
		keys:      keysFor(opts.Client.Role()),
		poll:      opts.Poll,
		exportDir: opts.ExportDir,
		selected:  opts.EventID,
		input:     input,
	}
}

// Init starts the first refresh, the one-second display tick and the
// poll timer.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.refresh(), tickCmd(), pollCmd(m.poll))
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func pollCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg { return pollMsg(t) })
}

// refresh fetches events and the selected event's participants under a
// new poll sequence number.
func (m Model) refresh() tea.Cmd {
	seq := m.cache.NextSeq()
	client, selected, now := m.client, m.selected, m.clock.Now
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		events, err := client.Events(ctx)
		if err != nil {
			return snapshotMsg{err: err}
		}
		eventID := selected
		if eventID == "" && len(events) > 0 {
			eventID = events[0].EventID
		}
		var participants []model.Participant
		if eventID != "" {
			if participants, err = client.Participants(ctx, eventID); err != nil {
				return snapshotMsg{err: err}
			}
		}
		return snapshotMsg{snap: Snapshot{
			Seq:          seq,
			At:           now(),
			Events:       events,
			EventID:      eventID,
			Participants: participants,
		}}
	}
}

// Update handles a message and returns the next command.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case tickMsg:
		m.cache.Tick()
		return m, tickCmd()

	case pollMsg:
		return m, tea.Batch(m.refresh(), pollCmd(m.poll))

	case snapshotMsg:
		if msg.err != nil {
			m.setError(msg.err)
			return m, nil
		}
		if m.cache.Apply(msg.snap) && m.selected == "" {
			m.selected = msg.snap.EventID
		}
		return m, nil

	case verifiedMsg:
		if msg.err != nil {
			m.setError(msg.err)
			return m, nil
		}
		m.cache.UpsertParticipant(*msg.participant, m.clock.Now())
		m.setStatus(fmt.Sprintf("Verified %s (%s)", msg.participant.Name, msg.participant.RegistrationID))
		return m, m.refresh()

	case statusChangedMsg:
		if msg.err != nil {
			m.setError(msg.err)
			return m, nil
		}
		m.cache.UpsertEvent(*msg.event, m.clock.Now())
		m.setStatus(fmt.Sprintf("%s is now %s", msg.event.Name, msg.event.Status))
		return m, m.refresh()

	case submittedMsg:
		summary := fmt.Sprintf("Submitted %d/%d", msg.ok, msg.total)
		if msg.already > 0 {
			summary += fmt.Sprintf(", %d already submitted", msg.already)
		}
		if len(msg.failures) > 0 {
			m.failure = true
			m.status = summary + "; failed: " + strings.Join(msg.failures, "; ")
			return m, nil
		}
		m.setStatus(summary)
		return m, nil

	case exportedMsg:
		if msg.err != nil {
			m.setError(msg.err)
			return m, nil
		}
		m.setStatus("Exported " + msg.path)
		return m, nil

	case tea.KeyMsg:
		if m.verifying {
			return m.updateVerifying(msg)
		}
		return m.updateNormal(msg)
	}
	return m, nil
}

func (m Model) updateVerifying(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Cancel):
		m.verifying = false
		m.input.Blur()
		m.input.Reset()
		return m, nil
	case key.Matches(msg, m.keys.Confirm):
		token := strings.TrimSpace(m.input.Value())
		m.verifying = false
		m.input.Blur()
		m.input.Reset()
		if token == "" {
			return m, nil
		}
		return m, m.verify(token)
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Up):
		return m.moveSelection(-1)
	case key.Matches(msg, m.keys.Down):
		return m.moveSelection(1)
	case key.Matches(msg, m.keys.Refresh):
		return m, m.refresh()
	}

	if m.selected == "" {
		return m, nil
	}
	switch {
	case key.Matches(msg, m.keys.Verify):
		m.verifying = true
		return m, m.input.Focus()
	case key.Matches(msg, m.keys.Start):
		return m, m.changeStatus(model.StatusLive)
	case key.Matches(msg, m.keys.Stop):
		return m, m.changeStatus(model.StatusCompleted)
	case key.Matches(msg, m.keys.SubmitAll):
		return m, m.submitAll()
	case key.Matches(msg, m.keys.Export):
		return m, m.export()
	}
	return m, nil
}

func (m Model) moveSelection(delta int) (tea.Model, tea.Cmd) {
	events := m.cache.Events()
	if len(events) == 0 {
		return m, nil
	}
	idx := 0
	for i, e := range events {
		if e.Event.EventID == m.selected {
			idx = i
		}
	}
	idx = (idx + delta + len(events)) % len(events)
	if events[idx].Event.EventID == m.selected {
		return m, nil
	}
	m.selected = events[idx].Event.EventID
	return m, m.refresh()
}

func (m Model) verify(token string) tea.Cmd {
	client, eventID := m.client, m.selected
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		p, err := client.Verify(ctx, token, eventID)
		return verifiedMsg{participant: p, err: err}
	}
}

func (m Model) changeStatus(status model.EventStatus) tea.Cmd {
	client, eventID := m.client, m.selected
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		e, err := client.UpdateStatus(ctx, eventID, status)
		return statusChangedMsg{event: e, err: err}
	}
}

// submitAll posts one submission per participant of the selected event
// using the locally displayed timers. Unverified participants are
// submitted with zero elapsed time.
func (m Model) submitAll() tea.Cmd {
	if m.cache.EventID() != m.selected {
		return nil
	}
	now := m.clock.Now()
	var reqs []model.SubmitRequest
	names := map[string]string{}
	for _, entry := range m.cache.Participants() {
		p := entry.Participant
		req := model.SubmitRequest{
			EventID:       m.selected,
			ParticipantID: p.ParticipantID,
			SubmittedBy:   m.client.Principal(),
		}
		if p.Verified {
			ended := now
			req.ElapsedTimeMs = entry.Seconds * 1000
			req.StartedAt = p.VerifiedAt
			req.EndedAt = &ended
		}
		reqs = append(reqs, req)
		names[p.ParticipantID] = p.Name
	}
	client := m.client
	return func() tea.Msg {
		res := submittedMsg{total: len(reqs)}
		for _, req := range reqs {
			ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
			_, err := client.Submit(ctx, req)
			cancel()

			var apiErr *APIError
			switch {
			case err == nil:
				res.ok++
			case errors.As(err, &apiErr) && apiErr.Status == http.StatusConflict:
				res.already++
			default:
				res.failures = append(res.failures, names[req.ParticipantID]+": "+errorText(err))
			}
		}
		return res
	}
}

func (m Model) export() tea.Cmd {
	client, eventID, dir := m.client, m.selected, m.exportDir
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		name, data, err := client.Export(ctx, eventID)
		if err != nil {
			return exportedMsg{err: err}
		}
		path := filepath.Join(dir, filepath.Base(name))
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return exportedMsg{err: fmt.Errorf("write %s: %w", path, err)}
		}
		return exportedMsg{path: path}
	}
}

func (m *Model) setStatus(s string) {
	m.status = s
	m.failure = false
}

func (m *Model) setError(err error) {
	m.status = errorText(err)
	m.failure = true
}

func errorText(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return err.Error()
}
