package dashboard

import (
	"github.com/charmbracelet/bubbles/key"

	"github.com/Shivanand-hulikatti/event-checkin/internal/model"
)

// KeyMap defines the dashboard key bindings.
type KeyMap struct {
	Up        key.Binding
	Down      key.Binding
	Verify    key.Binding
	Start     key.Binding
	Stop      key.Binding
	SubmitAll key.Binding
	Export    key.Binding
	Refresh   key.Binding
	Confirm   key.Binding
	Cancel    key.Binding
	Quit      key.Binding
}

// DefaultKeyMap is the built-in key binding set.
var DefaultKeyMap = KeyMap{
	Up: key.NewBinding(
		key.WithKeys("k", "up"),
		key.WithHelp("k/↑", "prev event"),
	),
	Down: key.NewBinding(
		key.WithKeys("j", "down"),
		key.WithHelp("j/↓", "next event"),
	),
	Verify: key.NewBinding(
		key.WithKeys("v"),
		key.WithHelp("v", "verify token"),
	),
	Start: key.NewBinding(
		key.WithKeys("s"),
		key.WithHelp("s", "start"),
	),
	Stop: key.NewBinding(
		key.WithKeys("x"),
		key.WithHelp("x", "stop"),
	),
	SubmitAll: key.NewBinding(
		key.WithKeys("u"),
		key.WithHelp("u", "submit all"),
	),
	Export: key.NewBinding(
		key.WithKeys("e"),
		key.WithHelp("e", "export csv"),
	),
	Refresh: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "refresh"),
	),
	Confirm: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "confirm"),
	),
	Cancel: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "cancel"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

// keysFor disables the bindings whose API routes role may not call.
// Export is admin-only; status, verify and submit are coordinator-only.
func keysFor(role model.Role) KeyMap {
	k := DefaultKeyMap
	admin := role == model.RoleAdmin
	k.Export.SetEnabled(admin)
	for _, b := range []*key.Binding{&k.Verify, &k.Start, &k.Stop, &k.SubmitAll} {
		b.SetEnabled(!admin)
	}
	return k
}

// shortHelp lists the enabled bindings shown in the footer.
func (k KeyMap) shortHelp() []key.Binding {
	all := []key.Binding{k.Up, k.Down, k.Verify, k.Start, k.Stop, k.SubmitAll, k.Export, k.Refresh, k.Quit}
	out := all[:0]
	for _, b := range all {
		if b.Enabled() {
			out = append(out, b)
		}
	}
	return out
}
