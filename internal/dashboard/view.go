package dashboard

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/Shivanand-hulikatti/event-checkin/internal/model"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	headerStyle   = lipgloss.NewStyle().Bold(true).Underline(true)
	selectedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("14"))
	faintStyle    = lipgloss.NewStyle().Faint(true)
	okStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	statusStyles  = map[model.EventStatus]lipgloss.Style{
		model.StatusUpcoming:  lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
		model.StatusLive:      lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10")),
		model.StatusCompleted: lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
	}
)

// View renders the dashboard.
func (m Model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Event Check-in"))
	if who := m.client.Principal(); who != "" {
		b.WriteString(faintStyle.Render("  " + who))
	}
	b.WriteString("\n\n")

	b.WriteString(headerStyle.Render("Events"))
	b.WriteString("\n")
	events := m.cache.Events()
	if len(events) == 0 {
		b.WriteString(faintStyle.Render("  no events"))
		b.WriteString("\n")
	}
	for _, e := range events {
		line := fmt.Sprintf("%-10s %-24s %s  %s",
			e.Event.EventID, e.Event.Name,
			statusStyles[e.Event.Status].Render(fmt.Sprintf("%-9s", e.Event.Status)),
			formatSeconds(e.Seconds))
		if e.Event.EventID == m.selected {
			b.WriteString(selectedStyle.Render("› " + line))
		} else {
			b.WriteString("  " + line)
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(headerStyle.Render("Participants"))
	b.WriteString("\n")
	if m.cache.EventID() != m.selected || len(m.cache.Participants()) == 0 {
		b.WriteString(faintStyle.Render("  no participants"))
		b.WriteString("\n")
	} else {
		now := m.clock.Now()
		for _, p := range m.cache.Participants() {
			state := faintStyle.Render("pending ")
			verified := ""
			if p.Participant.Verified {
				state = okStyle.Render("verified")
				if p.Participant.VerifiedAt != nil {
					verified = humanize.RelTime(*p.Participant.VerifiedAt, now, "ago", "from now")
				}
			}
			fmt.Fprintf(&b, "  %-20s %-10s %s  %s  %s\n",
				p.Participant.Name, p.Participant.RegistrationID, state,
				formatSeconds(p.Seconds), faintStyle.Render(verified))
		}
	}

	b.WriteString("\n")
	if m.verifying {
		b.WriteString(m.input.View())
		b.WriteString("\n")
	}
	if m.status != "" {
		if m.failure {
			b.WriteString(errorStyle.Render(m.status))
		} else {
			b.WriteString(okStyle.Render(m.status))
		}
		b.WriteString("\n")
	}
	b.WriteString(faintStyle.Render(m.helpLine()))
	if m.width > 0 {
		return lipgloss.NewStyle().MaxWidth(m.width).Render(b.String())
	}
	return b.String()
}

func (m Model) helpLine() string {
	if m.verifying {
		return fmt.Sprintf("%s %s · %s %s",
			m.keys.Confirm.Help().Key, m.keys.Confirm.Help().Desc,
			m.keys.Cancel.Help().Key, m.keys.Cancel.Help().Desc)
	}
	parts := make([]string, 0, 9)
	for _, k := range m.keys.shortHelp() {
		parts = append(parts, k.Help().Key+" "+k.Help().Desc)
	}
	return strings.Join(parts, " · ")
}

// formatSeconds renders a counter as HH:MM:SS.
func formatSeconds(s int64) string {
	if s < 0 {
		s = 0
	}
	return fmt.Sprintf("%02d:%02d:%02d", s/3600, (s/60)%60, s%60)
}
