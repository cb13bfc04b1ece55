// ABOUTME: Birthday adapter surfacing contacts with a birthday in the next 30 days
// ABOUTME: Contacts that already have an open birthday reminder are left out
package signals

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/harperreed/tend/db"
	"github.com/harperreed/tend/models"
)

const BirthdayWindowDays = 30

type BirthdayEntry struct {
	PersonID     uuid.UUID `json:"personId"`
	PersonName   string    `json:"personName"`
	BirthdayDate string    `json:"birthdayDate"`
}

// BirthdayAdapter reports people whose birthday falls in the next BirthdayWindowDays
// and who have no open birthday reminder task.
type BirthdayAdapter struct {
	db  *sql.DB
	log zerolog.Logger
}

func NewBirthdayAdapter(database *sql.DB, log zerolog.Logger) *BirthdayAdapter {
	return &BirthdayAdapter{db: database, log: log}
}

func (a *BirthdayAdapter) Name() string { return "upcoming-birthdays" }

func (a *BirthdayAdapter) Fragments(ctx context.Context, userID uuid.UUID, now time.Time) Fragment {
	return absorb(a.Name(), a.log, userID, func() (Fragment, error) {
		return a.scan(ctx, userID, now)
	})
}

func (a *BirthdayAdapter) scan(ctx context.Context, userID uuid.UUID, now time.Time) (Fragment, error) {
	people, err := db.ListPeopleWithBirthdays(ctx, a.db, userID)
	if err != nil {
		return Fragment{}, err
	}
	reminded, err := db.OpenTaskPersonIDs(ctx, a.db, userID, models.TriggerBirthdayReminder, now)
	if err != nil {
		return Fragment{}, err
	}

	today := models.StartOfDay(now)
	limit := today.AddDate(0, 0, BirthdayWindowDays)

	type upcoming struct {
		entry BirthdayEntry
		next  time.Time
	}
	var found []upcoming
	for _, p := range people {
		if reminded[p.ID] {
			continue
		}
		next, ok := p.NextBirthday(now)
		if !ok || next.After(limit) {
			continue
		}
		found = append(found, upcoming{
			entry: BirthdayEntry{PersonID: p.ID, PersonName: p.FullName(), BirthdayDate: next.Format("January 2")},
			next:  next,
		})
	}
	if len(found) == 0 {
		return Fragment{}, nil
	}
	sort.SliceStable(found, func(i, j int) bool { return found[i].next.Before(found[j].next) })

	f := Fragment{}
	entries := make([]BirthdayEntry, 0, len(found))
	var b strings.Builder
	fmt.Fprintf(&b, "Upcoming birthdays in the next %d days:\n", BirthdayWindowDays)
	for _, u := range found {
		entries = append(entries, u.entry)
		f.PeopleIDs = append(f.PeopleIDs, u.entry.PersonID)
		days := int(u.next.Sub(today).Hours() / 24)
		fmt.Fprintf(&b, "- %s (id: %s) on %s, in %d days\n", u.entry.PersonName, u.entry.PersonID, u.entry.BirthdayDate, days)
	}
	f.Data = entries
	f.Text = b.String()
	return f, nil
}
