// ABOUTME: Renders a profile as plain text for generation prompts
// ABOUTME: Only sections that were loaded are written out
package profile

import (
	"fmt"
	"strings"
	"time"

	"github.com/harperreed/tend/models"
)

// Narrative writes the profile as a compact text block. now anchors relative dates.
func (p *Profile) Narrative(now time.Time) string {
	var b strings.Builder
	person := p.Person

	fmt.Fprintf(&b, "## %s (id: %s)\n", person.FullName(), person.ID)
	if person.Bio != "" {
		fmt.Fprintf(&b, "Bio: %s\n", person.Bio)
	}
	if person.Birthday != nil {
		next, _ := person.NextBirthday(now)
		days := int(next.Sub(models.StartOfDay(now)).Hours() / 24)
		fmt.Fprintf(&b, "Birthday: %s (in %d days)\n", person.Birthday.Format("January 2"), days)
	}
	fmt.Fprintf(&b, "Profile completeness: %.0f%%\n", p.Completeness()*100)
	fmt.Fprintf(&b, "Follow-up score: %.2f", person.FollowUpScore)
	if person.FollowUpReason != "" {
		fmt.Fprintf(&b, " (%s)", person.FollowUpReason)
	}
	b.WriteString("\n")

	if p.Groups != nil {
		names := make([]string, 0, len(p.Groups))
		for _, g := range p.Groups {
			names = append(names, g.Name)
		}
		fmt.Fprintf(&b, "Groups: %s\n", orNone(strings.Join(names, ", ")))
		if tier, n := p.Tier(); n > 0 {
			fmt.Fprintf(&b, "Tier: %s, reach out %s\n", tier.Name, tier.Cadence)
		}
	}

	if p.ContactMethods != nil {
		var parts []string
		for _, m := range p.ContactMethods {
			parts = append(parts, fmt.Sprintf("%s %s", m.Kind, m.Value))
		}
		fmt.Fprintf(&b, "Contact methods: %s\n", orNone(strings.Join(parts, "; ")))
	}
	if p.Addresses != nil {
		var parts []string
		for _, a := range p.Addresses {
			parts = append(parts, a.String())
		}
		fmt.Fprintf(&b, "Addresses: %s\n", orNone(strings.Join(parts, "; ")))
	}
	if p.Websites != nil {
		var parts []string
		for _, w := range p.Websites {
			parts = append(parts, w.URL)
		}
		fmt.Fprintf(&b, "Websites: %s\n", orNone(strings.Join(parts, ", ")))
	}
	if p.Organizations != nil {
		var parts []string
		for _, o := range p.Organizations {
			if o.Title != "" {
				parts = append(parts, fmt.Sprintf("%s at %s", o.Title, o.Name))
			} else {
				parts = append(parts, o.Name)
			}
		}
		fmt.Fprintf(&b, "Organizations: %s\n", orNone(strings.Join(parts, "; ")))
	}
	if p.Relations != nil {
		var parts []string
		for _, r := range p.Relations {
			if r.Label != "" {
				parts = append(parts, fmt.Sprintf("%s (%s)", r.RelatedName, r.Label))
			} else {
				parts = append(parts, r.RelatedName)
			}
		}
		fmt.Fprintf(&b, "Relations: %s\n", orNone(strings.Join(parts, ", ")))
	}

	if p.Interactions != nil {
		if len(p.Interactions) == 0 {
			b.WriteString("Recent interactions: none on record\n")
		} else {
			b.WriteString("Recent interactions:\n")
			for _, i := range p.Interactions {
				days := int(now.Sub(i.OccurredAt).Hours() / 24)
				kind := i.Type
				if !i.IsCommunication() {
					kind = "note to self"
				}
				fmt.Fprintf(&b, "- %s, %d days ago", kind, days)
				if i.Note != "" {
					fmt.Fprintf(&b, ": %s", i.Note)
				}
				b.WriteString("\n")
			}
		}
	}

	if p.Tasks != nil {
		open := 0
		for i := range p.Tasks {
			if !p.Tasks[i].IsClosed() {
				open++
			}
		}
		fmt.Fprintf(&b, "Open tasks: %d\n", open)
	}

	if s := person.AISummary; s != nil {
		fmt.Fprintf(&b, "Summary: %s\n", s.Summary)
		if len(s.Interests) > 0 {
			fmt.Fprintf(&b, "Interests: %s\n", strings.Join(s.Interests, ", "))
		}
		if s.Relationship != "" {
			fmt.Fprintf(&b, "Relationship: %s\n", s.Relationship)
		}
	}

	return b.String()
}

func orNone(s string) string {
	if s == "" {
		return "none"
	}
	return s
}
