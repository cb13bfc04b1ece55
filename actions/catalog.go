// ABOUTME: Catalog of the follow-up actions a task can suggest
// ABOUTME: Serialized into generation prompts and used as the closed set of action types
package actions

import (
	"encoding/json"

	"github.com/harperreed/tend/models"
)

// Action describes one kind of suggested follow-up.
type Action struct {
	Slug                            models.ActionType `json:"slug"`
	Description                     string            `json:"description"`
	WhenToUse                       string            `json:"whenToUse"`
	ExpectedContextToGenerateOutput string            `json:"expectedContextToGenerateOutput"`
	Tags                            []string          `json:"tags"`
}

var catalog = []Action{
	{
		Slug:                            models.ActionSendMessage,
		Description:                     "Send a short personal message.",
		WhenToUse:                       "Default way to stay in touch, especially with more distant contacts or when it has simply been a while.",
		ExpectedContextToGenerateOutput: "What is going on in their life and the last time you spoke.",
		Tags:                            []string{"low-effort", "outreach"},
	},
	{
		Slug:                            models.ActionShareContent,
		Description:                     "Share an article, video, podcast or book they would enjoy.",
		WhenToUse:                       "When you know their interests and want a natural reason to reach out.",
		ExpectedContextToGenerateOutput: "Their interests, work and recent topics of conversation.",
		Tags:                            []string{"outreach", "interests"},
	},
	{
		Slug:                            models.ActionAddNote,
		Description:                     "Learn more about them and record it on their profile.",
		WhenToUse:                       "When the profile is sparse and you would struggle to personalize anything else.",
		ExpectedContextToGenerateOutput: "Which parts of the profile are missing.",
		Tags:                            []string{"profile", "onboarding"},
	},
	{
		Slug:                            models.ActionBuyGift,
		Description:                     "Buy and send a thoughtful gift.",
		WhenToUse:                       "Birthdays and milestones for close relationships.",
		ExpectedContextToGenerateOutput: "Their interests, the occasion and how close you are.",
		Tags:                            []string{"high-touch", "birthday"},
	},
}

// Catalog returns a copy of every action, in a fixed order.
func Catalog() []Action {
	out := make([]Action, len(catalog))
	for i, a := range catalog {
		a.Tags = append([]string(nil), a.Tags...)
		out[i] = a
	}
	return out
}

func Lookup(slug models.ActionType) (Action, bool) {
	for _, a := range catalog {
		if a.Slug == slug {
			return a, true
		}
	}
	return Action{}, false
}

// Slugs returns the catalog slugs, the closed set a generated taskType may take.
func Slugs() []models.ActionType {
	out := make([]models.ActionType, len(catalog))
	for i, a := range catalog {
		out[i] = a.Slug
	}
	return out
}

// Enum returns the slugs in the form a JSON schema enum expects.
func Enum() []any {
	out := make([]any, len(catalog))
	for i, a := range catalog {
		out[i] = string(a.Slug)
	}
	return out
}

// JSON renders the catalog for inclusion in a prompt.
func JSON() string {
	data, err := json.MarshalIndent(catalog, "", "  ")
	if err != nil {
		// catalog is static and always encodable
		panic(err)
	}
	return string(data)
}
