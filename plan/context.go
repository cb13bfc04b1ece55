// ABOUTME: Assembles the plan input from signal adapters and narrative profiles
// ABOUTME: Adapter and profile failures shrink the context instead of failing it
package plan

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/harperreed/tend/apperr"
	"github.com/harperreed/tend/profile"
	"github.com/harperreed/tend/signals"
)

// InputContext is what the plan generator sees. Order of both fields is not stable.
type InputContext struct {
	Text      string      `json:"inputContext"`
	Profiles  []string    `json:"peopleProfiles"`
	PeopleIDs []uuid.UUID `json:"peopleIds"`
}

// BuildInputContext runs every adapter concurrently, then builds a profile for each person they surfaced.
func (s *Service) BuildInputContext(ctx context.Context, userID uuid.UUID, now time.Time) (ic InputContext, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = apperr.Generation(apperr.CodeGeneratingActionPlanFailed, "Could not build today's plan", fmt.Errorf("context assembly panicked: %v", r))
		}
	}()

	fragments := make([]signals.Fragment, len(s.adapters))
	var g errgroup.Group
	for i, a := range s.adapters {
		i, a := i, a
		g.Go(func() error {
			defer func() {
				if r := recover(); r != nil {
					s.log.Error().Str("adapter", a.Name()).Str("user_id", userID.String()).
						Err(fmt.Errorf("panic: %v", r)).Msg("signal adapter panicked")
					fragments[i] = signals.Fragment{Adapter: a.Name()}
				}
			}()
			fragments[i] = a.Fragments(ctx, userID, now)
			return nil
		})
	}
	_ = g.Wait()

	var (
		texts []string
		ids   []uuid.UUID
		seen  = map[uuid.UUID]bool{}
	)
	for _, f := range fragments {
		if f.Empty() {
			continue
		}
		if f.Text != "" {
			texts = append(texts, f.Text)
		}
		for _, id := range f.PeopleIDs {
			if !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
	}

	var (
		mu       sync.Mutex
		profiles []string
	)
	var pg errgroup.Group
	for _, id := range ids {
		id := id
		pg.Go(func() error {
			defer func() {
				if r := recover(); r != nil {
					s.log.Error().Str("person_id", id.String()).Err(fmt.Errorf("panic: %v", r)).Msg("profile build panicked")
				}
			}()
			p, err := s.profiles.GetPerson(ctx, userID, id, profile.All(s.profileInteractions))
			if err != nil {
				s.log.Warn().Err(err).Str("user_id", userID.String()).Str("person_id", id.String()).Msg("dropping profile")
				return nil
			}
			if _, n := p.Tier(); n > 1 {
				s.log.Warn().Str("person_id", id.String()).Int("reserved_groups", n).Msg("person is in more than one reserved group")
			}
			text := p.Narrative(now)
			mu.Lock()
			profiles = append(profiles, text)
			mu.Unlock()
			return nil
		})
	}
	_ = pg.Wait()

	return InputContext{
		Text:      strings.Join(texts, "\n"),
		Profiles:  profiles,
		PeopleIDs: ids,
	}, nil
}
