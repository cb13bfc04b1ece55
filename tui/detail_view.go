// ABOUTME: Task detail view
// ABOUTME: Completes, skips, snoozes or flags the selected task
package tui

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/harperreed/tend/apperr"
	"github.com/harperreed/tend/models"
)

var (
	fieldLabelStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("170")).
			Width(14)

	fieldValueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))
)

func (m Model) renderDetailView() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render("TASK"))
	s.WriteString("\n\n")

	t := m.selectedTask()
	if t == nil {
		s.WriteString("Task no longer in today's plan\n")
	} else {
		field := func(label, value string) {
			s.WriteString(fieldLabelStyle.Render(label))
			s.WriteString(fieldValueStyle.Render(value))
			s.WriteString("\n")
		}
		field("Person", strings.TrimSpace(t.Person.FirstName+" "+t.Person.LastName))
		field("Do this", t.CallToAction)
		field("Why", t.Context)
		field("Action", string(t.SuggestedActionType))
		field("Due", t.EndAt.Format("Mon Jan 2"))
		field("Status", t.Status)
		if t.BadSuggestion {
			field("Flagged", "bad suggestion")
		}

		payload, err := json.MarshalIndent(t.SuggestedAction, "", "  ")
		if err == nil {
			s.WriteString("\n")
			s.WriteString(fieldValueStyle.Render(string(payload)))
			s.WriteString("\n")
		}
	}

	s.WriteString("\n")
	s.WriteString(m.renderStatus())
	s.WriteString(m.renderDetailHelp())

	return s.String()
}

func (m Model) renderDetailHelp() string {
	help := []string{
		"c: Complete",
		"s: Skip",
		"z: Snooze a day",
		"b: Bad suggestion",
		"Esc: Back",
		"q: Quit",
	}
	return helpStyle.Render(strings.Join(help, " • "))
}

func (m Model) handleDetailKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	t := m.selectedTask()
	if msg.String() == "esc" || t == nil {
		m.viewMode = ViewList
		return m, nil
	}

	ctx := context.Background()
	now := m.deps.Now()
	var (
		err  error
		verb string
	)
	switch msg.String() {
	case "c":
		_, err = m.deps.Tasks.Complete(ctx, m.deps.UserID, t.ID, now)
		verb = "completed"
	case "s":
		_, err = m.deps.Tasks.Skip(ctx, m.deps.UserID, t.ID, now)
		verb = "skipped"
	case "z":
		_, err = m.deps.Tasks.Snooze(ctx, m.deps.UserID, t.ID, models.EndOfDay(now.AddDate(0, 0, 1)), now)
		verb = "snoozed until tomorrow"
	case "b":
		_, err = m.deps.Tasks.FlagBad(ctx, m.deps.UserID, t.ID, now)
		verb = "flagged"
	default:
		return m, nil
	}

	name := t.Person.FirstName
	m = m.reload()
	if err != nil {
		m.status = ""
		m.err = fmt.Errorf("%s", apperr.Display(err))
		return m, nil
	}
	m.status = fmt.Sprintf("Task for %s %s", name, verb)
	return m, nil
}
