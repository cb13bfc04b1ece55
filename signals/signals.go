// ABOUTME: Signal adapters that scan the store for reasons to reach out
// ABOUTME: Adapters absorb their own failures and never write
package signals

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Fragment is what one adapter found. Data is nil when the adapter found nothing or failed.
type Fragment struct {
	Adapter   string      `json:"adapter"`
	PeopleIDs []uuid.UUID `json:"peopleIds"`
	Data      any         `json:"data"`
	Text      string      `json:"text,omitempty"`
}

// Empty reports whether the fragment contributes nothing.
func (f Fragment) Empty() bool {
	return f.Data == nil
}

// InputAdapter surfaces one category of relationship signal for a user.
type InputAdapter interface {
	Name() string
	Fragments(ctx context.Context, userID uuid.UUID, now time.Time) Fragment
}

// Default returns the adapters used for plan generation, in order.
func Default(database *sql.DB, log zerolog.Logger) []InputAdapter {
	return []InputAdapter{
		NewBirthdayAdapter(database, log),
		NewNeedsFollowUpAdapter(database, log),
	}
}

// absorb runs fn and turns any error or panic into an empty fragment.
func absorb(name string, log zerolog.Logger, userID uuid.UUID, fn func() (Fragment, error)) (f Fragment) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Str("adapter", name).Str("user_id", userID.String()).
				Err(fmt.Errorf("panic: %v", r)).Msg("signal adapter panicked")
			f = Fragment{Adapter: name}
		}
	}()

	f, err := fn()
	if err != nil {
		log.Warn().Str("adapter", name).Str("user_id", userID.String()).Err(err).Msg("signal adapter failed")
		return Fragment{Adapter: name}
	}
	f.Adapter = name
	return f
}
