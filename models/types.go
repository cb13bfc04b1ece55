// ABOUTME: Data models for people, groups, interactions and profile details
// ABOUTME: Defines Person, Group, Interaction, User and the reserved group cadence tiers
package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID              uuid.UUID `json:"id"`
	Name            string    `json:"name"`
	Email           string    `json:"email,omitempty"`
	Timezone        string    `json:"timezone,omitempty"`
	OnboardingStage string    `json:"onboarding_stage"`
	CreatedAt       time.Time `json:"created_at"`
}

// Onboarding stages.
const (
	OnboardingNew         = "new"
	OnboardingGrowing     = "growing"
	OnboardingEstablished = "established"
)

type Person struct {
	ID             uuid.UUID  `json:"id"`
	UserID         uuid.UUID  `json:"user_id"`
	FirstName      string     `json:"first_name"`
	LastName       string     `json:"last_name,omitempty"`
	Bio            string     `json:"bio,omitempty"`
	Birthday       *time.Time `json:"birthday,omitempty"`
	FollowUpScore  float64    `json:"follow_up_score"`
	FollowUpReason string     `json:"follow_up_reason,omitempty"`
	AISummary      *AISummary `json:"ai_summary,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// AISummary is the generated narrative kept on a person row.
type AISummary struct {
	Summary       string    `json:"summary"`
	Interests     []string  `json:"interests,omitempty"`
	Relationship  string    `json:"relationship,omitempty"`
	OpenQuestions []string  `json:"open_questions,omitempty"`
	GeneratedAt   time.Time `json:"generated_at"`
}

func (p Person) FullName() string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}

// BirthdayOn reports whether the person's birthday falls on day (month and day, UTC).
func (p Person) BirthdayOn(day time.Time) bool {
	if p.Birthday == nil {
		return false
	}
	b := p.Birthday.UTC()
	d := day.UTC()
	return b.Month() == d.Month() && b.Day() == d.Day()
}

// NextBirthday returns the next occurrence of the birthday on or after from's UTC date.
// A Feb 29 birthday lands on Mar 1 in non-leap years.
func (p Person) NextBirthday(from time.Time) (time.Time, bool) {
	if p.Birthday == nil {
		return time.Time{}, false
	}
	b := p.Birthday.UTC()
	today := StartOfDay(from)
	next := time.Date(today.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	if next.Before(today) {
		next = time.Date(today.Year()+1, b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	}
	return next, true
}

// StartOfDay truncates t to midnight UTC.
func StartOfDay(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// EndOfDay returns the last nanosecond of t's UTC day.
func EndOfDay(t time.Time) time.Time {
	return StartOfDay(t).AddDate(0, 0, 1).Add(-time.Nanosecond)
}

type Group struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	CreatedAt time.Time `json:"created_at"`
}

// Reserved group slugs.
const (
	GroupInner5       = "inner-5"
	GroupCentral50    = "central-50"
	GroupStrategic100 = "strategic-100"
)

// Tier describes the follow-up cadence attached to a reserved group.
type Tier struct {
	Slug        string `json:"slug"`
	Name        string `json:"name"`
	Cadence     string `json:"cadence"`
	CadenceDays int    `json:"cadence_days"`
}

// ReservedTiers is ordered from closest to most distant.
var ReservedTiers = []Tier{
	{Slug: GroupInner5, Name: "Inner 5", Cadence: "weekly", CadenceDays: 7},
	{Slug: GroupCentral50, Name: "Central 50", Cadence: "every 2-3 weeks", CadenceDays: 21},
	{Slug: GroupStrategic100, Name: "Strategic 100", Cadence: "monthly", CadenceDays: 30},
}

func ReservedTier(slug string) (Tier, bool) {
	for _, t := range ReservedTiers {
		if t.Slug == slug {
			return t, true
		}
	}
	return Tier{}, false
}

func IsReservedSlug(slug string) bool {
	_, ok := ReservedTier(slug)
	return ok
}

// TightestTier picks the closest reserved tier among groups and reports how many
// reserved groups were present. More than one means the exclusivity rule was broken upstream.
func TightestTier(groups []Group) (Tier, int) {
	var best Tier
	count := 0
	bestRank := len(ReservedTiers)
	for _, g := range groups {
		for rank, t := range ReservedTiers {
			if t.Slug != g.Slug {
				continue
			}
			count++
			if rank < bestRank {
				bestRank = rank
				best = t
			}
		}
	}
	return best, count
}

// Slugify lowercases a group name and joins its words with dashes.
func Slugify(name string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		default:
			if !dash && b.Len() > 0 {
				b.WriteByte('-')
				dash = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

// InteractionType constants.
const (
	InteractionMessage = "message"
	InteractionCall    = "call"
	InteractionMeeting = "meeting"
	InteractionEmail   = "email"
	InteractionEvent   = "event"
	InteractionNote    = "note"
)

var interactionTypes = map[string]bool{
	InteractionMessage: true,
	InteractionCall:    true,
	InteractionMeeting: true,
	InteractionEmail:   true,
	InteractionEvent:   true,
	InteractionNote:    true,
}

func ValidInteractionType(t string) bool {
	return interactionTypes[t]
}

type Interaction struct {
	ID         uuid.UUID `json:"id"`
	UserID     uuid.UUID `json:"user_id"`
	PersonID   uuid.UUID `json:"person_id"`
	Type       string    `json:"type"`
	Note       string    `json:"note,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
	CreatedAt  time.Time `json:"created_at"`
}

// IsCommunication is false for notes-to-self, which never count as contact.
func (i Interaction) IsCommunication() bool {
	return i.Type != InteractionNote
}

type ContactMethod struct {
	ID       uuid.UUID `json:"id"`
	PersonID uuid.UUID `json:"person_id"`
	Kind     string    `json:"kind"`
	Value    string    `json:"value"`
	Label    string    `json:"label,omitempty"`
}

type Address struct {
	ID         uuid.UUID `json:"id"`
	PersonID   uuid.UUID `json:"person_id"`
	Label      string    `json:"label,omitempty"`
	Line1      string    `json:"line1,omitempty"`
	City       string    `json:"city,omitempty"`
	Region     string    `json:"region,omitempty"`
	PostalCode string    `json:"postal_code,omitempty"`
	Country    string    `json:"country,omitempty"`
}

func (a Address) String() string {
	var parts []string
	for _, p := range []string{a.Line1, a.City, a.Region, a.PostalCode, a.Country} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

type Website struct {
	ID       uuid.UUID `json:"id"`
	PersonID uuid.UUID `json:"person_id"`
	URL      string    `json:"url"`
	Label    string    `json:"label,omitempty"`
}

type Organization struct {
	ID       uuid.UUID `json:"id"`
	PersonID uuid.UUID `json:"person_id"`
	Name     string    `json:"name"`
	Title    string    `json:"title,omitempty"`
}

type PersonRelation struct {
	ID              uuid.UUID `json:"id"`
	PersonID        uuid.UUID `json:"person_id"`
	RelatedPersonID uuid.UUID `json:"related_person_id"`
	RelatedName     string    `json:"related_name"`
	Label           string    `json:"label,omitempty"`
}
