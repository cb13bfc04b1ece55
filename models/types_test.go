// ABOUTME: Tests for people, groups and reserved tier helpers
// ABOUTME: Validates birthday matching, next birthday and tier selection
package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestBirthdayOnIgnoresYear(t *testing.T) {
	b := date(1988, time.October, 15)
	p := Person{Birthday: &b}

	assert.True(t, p.BirthdayOn(time.Date(2026, time.October, 15, 18, 30, 0, 0, time.UTC)))
	assert.False(t, p.BirthdayOn(date(2026, time.October, 16)))
	assert.False(t, Person{}.BirthdayOn(date(2026, time.October, 15)))
}

func TestNextBirthday(t *testing.T) {
	tests := []struct {
		name     string
		birthday time.Time
		from     time.Time
		want     time.Time
	}{
		{"later this year", date(1990, time.November, 2), date(2026, time.October, 15), date(2026, time.November, 2)},
		{"today", date(1990, time.October, 15), time.Date(2026, time.October, 15, 23, 0, 0, 0, time.UTC), date(2026, time.October, 15)},
		{"already passed", date(1990, time.January, 3), date(2026, time.October, 15), date(2027, time.January, 3)},
		{"leap day in common year", date(1992, time.February, 29), date(2027, time.February, 1), date(2027, time.March, 1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := tt.birthday
			got, ok := Person{Birthday: &b}.NextBirthday(tt.from)
			assert.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTightestTier(t *testing.T) {
	tier, count := TightestTier([]Group{{Slug: "book-club"}, {Slug: GroupStrategic100}, {Slug: GroupInner5}})
	assert.Equal(t, GroupInner5, tier.Slug)
	assert.Equal(t, 2, count)

	_, count = TightestTier([]Group{{Slug: "book-club"}})
	assert.Equal(t, 0, count)
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "central-50", Slugify("Central 50"))
	assert.Equal(t, "book-club", Slugify("  Book   Club! "))
	assert.Equal(t, "", Slugify("!!!"))
}

func TestInteractionIsCommunication(t *testing.T) {
	assert.True(t, Interaction{Type: InteractionCall}.IsCommunication())
	assert.False(t, Interaction{Type: InteractionNote}.IsCommunication())
}
