// ABOUTME: Terminal User Interface using bubbletea framework
// ABOUTME: Browse today's plan and follow-up scores and act on tasks
package tui

import (
	"context"
	"database/sql"
	"sort"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/harperreed/tend/apperr"
	"github.com/harperreed/tend/db"
	"github.com/harperreed/tend/models"
	"github.com/harperreed/tend/plan"
	"github.com/harperreed/tend/tasks"
)

// ViewMode represents the current TUI view
type ViewMode int

const (
	ViewList ViewMode = iota
	ViewDetail
)

type Tab int

const (
	TabPlan Tab = iota
	TabFollowups
)

// Deps is what the TUI reads from and acts through.
type Deps struct {
	DB     *sql.DB
	Plans  *plan.Service
	Tasks  *tasks.Service
	UserID uuid.UUID
	Now    func() time.Time
}

// Model is the main bubbletea model
type Model struct {
	deps     Deps
	viewMode ViewMode
	tab      Tab

	selectedRow int

	// plan is nil when no plan exists today
	plan   *plan.View
	people []models.Person

	status string
	err    error

	width  int
	height int
}

// NewModel creates a new TUI model and loads today's data.
func NewModel(deps Deps) Model {
	if deps.Now == nil {
		deps.Now = func() time.Time { return time.Now().UTC() }
	}
	m := Model{
		deps:     deps,
		viewMode: ViewList,
		tab:      TabPlan,
		width:    100,
		height:   24,
	}
	return m.reload()
}

// Run starts the full-screen program.
func Run(deps Deps) error {
	_, err := tea.NewProgram(NewModel(deps), tea.WithAltScreen()).Run()
	return err
}

func (m Model) reload() Model {
	ctx := context.Background()
	m.err = nil

	view, err := m.deps.Plans.GetActionPlan(ctx, m.deps.UserID, m.deps.Now())
	switch {
	case apperr.IsNotFound(err):
		m.plan = nil
	case err != nil:
		m.err = err
	default:
		m.plan = view
	}

	people, err := db.ListPeople(ctx, m.deps.DB, m.deps.UserID, "", 0)
	if err != nil {
		m.err = err
	}
	sort.SliceStable(people, func(i, j int) bool { return people[i].FollowUpScore > people[j].FollowUpScore })
	m.people = people
	return m
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	}
	return m, nil
}

func (m Model) View() string {
	if m.viewMode == ViewDetail {
		return m.renderDetailView()
	}
	return m.renderListView()
}

func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "r":
		m = m.reload()
		m.status = "Reloaded"
		return m, nil
	}

	if m.viewMode == ViewDetail {
		return m.handleDetailKeys(msg)
	}
	return m.handleListKeys(msg)
}

func (m Model) rowCount() int {
	if m.tab == TabFollowups {
		return len(m.people)
	}
	if m.plan == nil {
		return 0
	}
	return len(m.plan.Tasks)
}

// selectedTask returns the task under the cursor on the plan tab.
func (m Model) selectedTask() *tasks.TaskView {
	if m.tab != TabPlan || m.plan == nil || m.selectedRow >= len(m.plan.Tasks) {
		return nil
	}
	return &m.plan.Tasks[m.selectedRow]
}

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("170")).
			MarginBottom(1)

	tabActiveStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("170")).
			Background(lipgloss.Color("235")).
			Padding(0, 2)

	tabInactiveStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("240")).
				Padding(0, 2)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			MarginTop(1)

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))
)
