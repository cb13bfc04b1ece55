// ABOUTME: Needs-follow-up adapter for Central 50 contacts gone quiet
// ABOUTME: Quiet means no communication in the trailing 14 days
package signals

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/harperreed/tend/db"
	"github.com/harperreed/tend/models"
)

const InactivityWindowDays = 14

// NeedsFollowUpAdapter reports Central 50 members with no communication in the
// last InactivityWindowDays, including members never contacted at all.
type NeedsFollowUpAdapter struct {
	db  *sql.DB
	log zerolog.Logger
}

func NewNeedsFollowUpAdapter(database *sql.DB, log zerolog.Logger) *NeedsFollowUpAdapter {
	return &NeedsFollowUpAdapter{db: database, log: log}
}

func (a *NeedsFollowUpAdapter) Name() string { return "needs-follow-up" }

func (a *NeedsFollowUpAdapter) Fragments(ctx context.Context, userID uuid.UUID, now time.Time) Fragment {
	return absorb(a.Name(), a.log, userID, func() (Fragment, error) {
		return a.scan(ctx, userID, now)
	})
}

func (a *NeedsFollowUpAdapter) scan(ctx context.Context, userID uuid.UUID, now time.Time) (Fragment, error) {
	since := now.AddDate(0, 0, -InactivityWindowDays)
	people, err := db.ListPeopleInGroupWithoutContactSince(ctx, a.db, userID, models.GroupCentral50, since)
	if err != nil {
		return Fragment{}, err
	}
	if len(people) == 0 {
		return Fragment{}, nil
	}

	ids := make([]uuid.UUID, 0, len(people))
	strs := make([]string, 0, len(people))
	for _, p := range people {
		ids = append(ids, p.ID)
		strs = append(strs, p.ID.String())
	}
	return Fragment{
		PeopleIDs: ids,
		Data:      ids,
		Text: fmt.Sprintf("Central 50 contacts with no contact in the last %d days: %s\n",
			InactivityWindowDays, strings.Join(strs, ", ")),
	}, nil
}
