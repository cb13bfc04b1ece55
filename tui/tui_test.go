// ABOUTME: Tests for the plan and follow-up views
// ABOUTME: Drives the model with key messages against a real database
package tui

import (
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harperreed/tend/config"
	"github.com/harperreed/tend/db"
	"github.com/harperreed/tend/llm/llmtest"
	"github.com/harperreed/tend/models"
	"github.com/harperreed/tend/plan"
	"github.com/harperreed/tend/tasks"
)

var now = time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(t *testing.T, m Model, keys ...string) Model {
	t.Helper()
	for _, k := range keys {
		next, _ := m.Update(key(k))
		m = next.(Model)
	}
	return m
}

func setupDeps(t *testing.T, withPlan bool) Deps {
	t.Helper()
	database, err := db.OpenDatabase(filepath.Join(t.TempDir(), "tend.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })
	ctx := context.Background()

	user := &models.User{Name: "Ada"}
	require.NoError(t, db.CreateUser(ctx, database, user, now))
	grace := &models.Person{UserID: user.ID, FirstName: "Grace", LastName: "Hopper", FollowUpScore: 0.2}
	require.NoError(t, db.CreatePerson(ctx, database, grace, now))
	alan := &models.Person{UserID: user.ID, FirstName: "Alan", FollowUpScore: 0.9, FollowUpReason: "Two months quiet"}
	require.NoError(t, db.CreatePerson(ctx, database, alan, now))

	ap := models.ActionPlan{
		BuildDate:        "2026-03-14",
		ExecutiveSummary: models.ExecutiveSummary{Title: "Two catch-ups", Description: "d", Content: "Grace and Alan"},
		GroupSections: []models.GroupSection{{
			Title: "Reconnect", Icon: "👋", Description: "d",
			Tasks: []models.TaskDraft{
				{PersonID: grace.ID.String(), PersonName: "Grace Hopper", TaskContext: "c", TaskType: models.ActionSendMessage, CallToAction: "Text Grace", TaskDueDate: "2026-03-15"},
				{PersonID: alan.ID.String(), PersonName: "Alan", TaskContext: "c", TaskType: models.ActionSendMessage, CallToAction: "Call Alan", TaskDueDate: "2026-03-16"},
			},
		}},
		Quote: models.Quote{Text: "Stay close.", Author: "Anon"},
	}
	data, err := json.Marshal(ap)
	require.NoError(t, err)

	gen := llmtest.New().
		Reply(plan.RequestActionPlan, string(data)).
		Reply(tasks.RequestSendMessage, llmtest.MessagesJSON)
	taskSvc := tasks.NewService(database, gen, tasks.Options{Prompts: config.DefaultPrompts()}, zerolog.Nop())
	planSvc := plan.NewService(database, gen, taskSvc, plan.Options{}, zerolog.Nop())

	if withPlan {
		_, err := planSvc.RunDaily(ctx, user.ID, now)
		require.NoError(t, err)
	}

	return Deps{DB: database, Plans: planSvc, Tasks: taskSvc, UserID: user.ID, Now: func() time.Time { return now }}
}

func TestPlanViewWithoutPlan(t *testing.T) {
	m := NewModel(setupDeps(t, false))
	out := m.View()
	assert.Contains(t, out, "No plan yet today")
	assert.NoError(t, m.err)

	m = press(t, m, "enter")
	assert.Equal(t, ViewList, m.viewMode)
}

func TestPlanViewListsTasks(t *testing.T) {
	m := NewModel(setupDeps(t, true))
	require.NotNil(t, m.plan)
	require.Len(t, m.plan.Tasks, 2)

	out := m.View()
	assert.Contains(t, out, "Two catch-ups")
	assert.Contains(t, out, "Text Grace")
	assert.Contains(t, out, "Call Alan")

	m = press(t, m, "down", "down", "down")
	assert.Equal(t, 1, m.selectedRow)
}

func TestDetailActions(t *testing.T) {
	m := NewModel(setupDeps(t, true))

	m = press(t, m, "enter")
	require.Equal(t, ViewDetail, m.viewMode)
	assert.Contains(t, m.View(), "Text Grace")

	m = press(t, m, "c")
	assert.Equal(t, "Task for Grace completed", m.status)
	assert.Equal(t, models.TaskStatusCompleted, m.plan.Tasks[0].Status)

	m = press(t, m, "s")
	require.Error(t, m.err)
	assert.Contains(t, m.err.Error(), "already closed")

	m = press(t, m, "esc", "down", "enter", "z")
	assert.Equal(t, models.TaskStatusSnoozed, m.plan.Tasks[1].Status)
	assert.Equal(t, "2026-03-15", m.plan.Tasks[1].EndAt.Format("2006-01-02"))
}

func TestFollowupsTab(t *testing.T) {
	m := NewModel(setupDeps(t, false))
	m = press(t, m, "tab")
	assert.Equal(t, TabFollowups, m.tab)

	out := m.View()
	alan := strings.Index(out, "Alan")
	grace := strings.Index(out, "Grace Hopper")
	require.True(t, alan >= 0 && grace >= 0)
	assert.Less(t, alan, grace)
	assert.Contains(t, out, "Two months quiet")

	m = press(t, m, "enter")
	assert.Equal(t, ViewList, m.viewMode)
}
