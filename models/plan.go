// ABOUTME: Action plan model generated once per user per day
// ABOUTME: Holds group sections of task drafts and the raw/injected state machine
package models

import (
	"time"

	"github.com/google/uuid"
)

type PlanState string

const (
	PlanStateRaw      PlanState = "raw"
	PlanStateInjected PlanState = "injected"
)

type ActionPlan struct {
	BuildDate        string           `json:"buildDate" jsonschema:"the date this plan is for, YYYY-MM-DD"`
	ExecutiveSummary ExecutiveSummary `json:"executiveSummary"`
	GroupSections    []GroupSection   `json:"groupSections" jsonschema:"thematic groups of recommended tasks"`
	Quote            Quote            `json:"quote" jsonschema:"an inspirational quote about relationships"`
}

type ExecutiveSummary struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Content     string `json:"content"`
}

type Quote struct {
	Text   string `json:"text"`
	Author string `json:"author"`
}

type GroupSection struct {
	Title       string      `json:"title"`
	Icon        string      `json:"icon" jsonschema:"a single emoji"`
	Description string      `json:"description"`
	Tasks       []TaskDraft `json:"tasks"`
}

// TaskDraft is a recommended task inside a plan. ID is empty until the task row exists.
type TaskDraft struct {
	ID           string     `json:"id,omitempty" jsonschema:"leave empty"`
	PersonID     string     `json:"personId" jsonschema:"id of the person this task is about"`
	PersonName   string     `json:"personName"`
	TaskContext  string     `json:"taskContext" jsonschema:"why this task matters today"`
	TaskType     ActionType `json:"taskType" jsonschema:"slug of the action to take"`
	CallToAction string     `json:"callToAction"`
	TaskDueDate  string     `json:"taskDueDate" jsonschema:"due date, YYYY-MM-DD"`
}

// DraftKey locates a draft inside a plan.
type DraftKey struct {
	Section int
	Index   int
}

type DraftRef struct {
	Key   DraftKey
	Draft TaskDraft
}

// Drafts flattens every task draft across all group sections, in order.
func (p ActionPlan) Drafts() []DraftRef {
	var refs []DraftRef
	for s, section := range p.GroupSections {
		for i, d := range section.Tasks {
			refs = append(refs, DraftRef{Key: DraftKey{Section: s, Index: i}, Draft: d})
		}
	}
	return refs
}

// WithTaskIDs returns a copy of the plan where every draft in ids carries its task id.
// Drafts without an entry keep no id. The receiver is not modified.
func (p ActionPlan) WithTaskIDs(ids map[DraftKey]uuid.UUID) ActionPlan {
	out := p
	out.GroupSections = make([]GroupSection, len(p.GroupSections))
	for s, section := range p.GroupSections {
		cp := section
		cp.Tasks = make([]TaskDraft, len(section.Tasks))
		for i, d := range section.Tasks {
			d.ID = ""
			if id, ok := ids[DraftKey{Section: s, Index: i}]; ok {
				d.ID = id.String()
			}
			cp.Tasks[i] = d
		}
		out.GroupSections[s] = cp
	}
	return out
}

// WithoutTaskIDs returns a copy with every draft id cleared.
func (p ActionPlan) WithoutTaskIDs() ActionPlan {
	return p.WithTaskIDs(nil)
}

// StoredPlan is an action plan row.
type StoredPlan struct {
	ID        string     `json:"id"`
	UserID    uuid.UUID  `json:"user_id"`
	State     PlanState  `json:"state"`
	Plan      ActionPlan `json:"action_plan"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}
