// ABOUTME: List view with the plan and follow-up tabs
// ABOUTME: Renders bubbles tables and handles navigation keys
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/harperreed/tend/models"
)

func (m Model) renderListView() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render("TEND"))
	s.WriteString("\n\n")

	s.WriteString(m.renderTabs())
	s.WriteString("\n\n")

	if m.tab == TabPlan {
		s.WriteString(m.renderPlanHeader())
		s.WriteString(m.renderPlanTable())
	} else {
		s.WriteString(m.renderFollowupsTable())
	}
	s.WriteString("\n")

	s.WriteString(m.renderStatus())
	s.WriteString(m.renderListHelp())

	return s.String()
}

func (m Model) renderTabs() string {
	tabs := []string{"Today's plan", "Follow-ups"}
	var rendered []string

	for i, tab := range tabs {
		if Tab(i) == m.tab {
			rendered = append(rendered, tabActiveStyle.Render(tab))
		} else {
			rendered = append(rendered, tabInactiveStyle.Render(tab))
		}
	}

	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
}

func (m Model) renderPlanHeader() string {
	if m.plan == nil {
		return "No plan yet today. Run 'tend plan generate'.\n"
	}
	ap := m.plan.ActionPlan
	var s strings.Builder
	fmt.Fprintf(&s, "%s\n", lipgloss.NewStyle().Bold(true).Render(ap.ExecutiveSummary.Title))
	if ap.ExecutiveSummary.Content != "" {
		fmt.Fprintf(&s, "%s\n", ap.ExecutiveSummary.Content)
	}
	if ap.Quote.Text != "" {
		fmt.Fprintf(&s, "%s\n", helpStyle.Render(fmt.Sprintf("\"%s\" (%s)", ap.Quote.Text, ap.Quote.Author)))
	}
	s.WriteString("\n")
	return s.String()
}

func statusIndicator(status string) string {
	switch status {
	case models.TaskStatusCompleted:
		return "✅"
	case models.TaskStatusSkipped:
		return "⏭"
	case models.TaskStatusSnoozed:
		return "💤"
	}
	return "⬜"
}

func (m Model) renderPlanTable() string {
	if m.plan == nil {
		return ""
	}

	columns := []table.Column{
		{Title: "", Width: 3},
		{Title: "Person", Width: 20},
		{Title: "Action", Width: 14},
		{Title: "Due", Width: 11},
		{Title: "Do this", Width: 45},
	}

	var rows []table.Row
	for _, t := range m.plan.Tasks {
		rows = append(rows, table.Row{
			statusIndicator(t.Status),
			strings.TrimSpace(t.Person.FirstName + " " + t.Person.LastName),
			string(t.SuggestedActionType),
			t.EndAt.Format("2006-01-02"),
			t.CallToAction,
		})
	}

	return m.table(columns, rows)
}

func (m Model) renderFollowupsTable() string {
	columns := []table.Column{
		{Title: "", Width: 3},
		{Title: "Name", Width: 25},
		{Title: "Score", Width: 7},
		{Title: "Reason", Width: 55},
	}

	var rows []table.Row
	for _, p := range m.people {
		indicator := "🟢"
		if p.FollowUpScore >= 0.7 {
			indicator = "🔴"
		} else if p.FollowUpScore >= 0.4 {
			indicator = "🟡"
		}
		rows = append(rows, table.Row{
			indicator,
			p.FullName(),
			fmt.Sprintf("%.2f", p.FollowUpScore),
			p.FollowUpReason,
		})
	}

	return m.table(columns, rows)
}

func (m Model) table(columns []table.Column, rows []table.Row) string {
	height := m.height - 12
	if height < 3 {
		height = 3
	}
	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithFocused(true),
		table.WithHeight(height),
	)

	if m.selectedRow < len(rows) {
		t.SetCursor(m.selectedRow)
	}

	return t.View()
}

func (m Model) renderStatus() string {
	if m.err != nil {
		return errorStyle.Render("Error: "+m.err.Error()) + "\n"
	}
	if m.status != "" {
		return statusStyle.Render(m.status) + "\n"
	}
	return ""
}

func (m Model) renderListHelp() string {
	help := []string{
		"↑/↓: Navigate",
		"Tab: Switch tabs",
		"Enter: View task",
		"r: Reload",
		"q: Quit",
	}
	return helpStyle.Render(strings.Join(help, " • "))
}

func (m Model) handleListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if m.selectedRow > 0 {
			m.selectedRow--
		}
	case "down", "j":
		if m.selectedRow < m.rowCount()-1 {
			m.selectedRow++
		}
	case "tab":
		m.tab = (m.tab + 1) % 2
		m.selectedRow = 0
		m.status = ""
	case "enter":
		if m.selectedTask() != nil {
			m.viewMode = ViewDetail
			m.status = ""
		}
	}

	return m, nil
}
