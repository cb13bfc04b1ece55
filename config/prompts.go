// ABOUTME: Instruction text for every generation call
// ABOUTME: Defaults live here and can be overridden in the [prompts] config section
package config

type Prompts struct {
	ActionPlan    string `koanf:"action_plan"`
	TaskContext   string `koanf:"task_context"`
	SendMessage   string `koanf:"send_message"`
	ShareContent  string `koanf:"share_content"`
	AddNote       string `koanf:"add_note"`
	BuyGift       string `koanf:"buy_gift"`
	FollowUpScore string `koanf:"follow_up_score"`
}

// DefaultPrompts returns the built-in prompt set.
func DefaultPrompts() Prompts {
	return Prompts{
		ActionPlan:    defaultActionPlanPrompt,
		TaskContext:   defaultTaskContextPrompt,
		SendMessage:   defaultSendMessagePrompt,
		ShareContent:  defaultShareContentPrompt,
		AddNote:       defaultAddNotePrompt,
		BuyGift:       defaultBuyGiftPrompt,
		FollowUpScore: defaultFollowUpScorePrompt,
	}
}

const defaultActionPlanPrompt = `You are a thoughtful relationship coach building today's action plan for the user.

Prioritize in this order:
- Inner 5 contacts should hear from the user weekly, Central 50 every two to three weeks, Strategic 100 monthly.
- Upcoming birthdays. Close relationships deserve a gift, distant ones a warm greeting.
- People flagged as overdue for follow-up.
- When the user is new, favour add-note tasks that fill in sparse profiles.

Rules:
- At most one task per person.
- taskType must be one of the listed action slugs.
- personId must be copied exactly from the profiles.
- Due dates are on or after the build date.
- Group tasks into a few themed sections, each with a short title, one emoji icon and a description.
- Finish with a short inspirational quote about friendship or connection.`

const defaultTaskContextPrompt = `You decide what the user should do next for one person in their network.
Write a short context explaining why now, a one-line call to action, and pick exactly one action type.
Closer relationships lean toward higher-touch actions such as a gift; distant relationships lean toward a simple message.`

const defaultSendMessagePrompt = `Write message variants the user could send to this person today.
Span casual, professional and friendly tones and make at least one deliberately light or funny.
Keep each message short and specific to what you know about the person.`

const defaultShareContentPrompt = `Suggest pieces of content (articles, videos, podcasts, books) this person would enjoy receiving.
For each one explain why it fits and write a couple of short messages to send with it.`

const defaultAddNotePrompt = `The user's profile of this person is incomplete.
Suggest questions the user could naturally ask to learn more, and say which gap in the profile each one fills.`

const defaultBuyGiftPrompt = `Suggest concrete gifts for this person with a reason for each, an approximate price range and a purchase link when you know one.
Prefer thoughtful, specific ideas over generic ones.`

const defaultFollowUpScorePrompt = `Score how urgently the user should reach out to this person, from 0 (no need) to 1 (reach out today), with two decimals.
The current score has inertia: move it a little each day and only jump when something changed, such as a tier's cadence being exceeded.
Cadence targets: Inner 5 weekly, Central 50 every two to three weeks, Strategic 100 monthly.
Only interactions that were real communication count as contact; notes the user wrote to themselves do not.
Explain the score in one or two sentences.`
