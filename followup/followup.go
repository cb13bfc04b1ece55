// ABOUTME: Follow-up scoring for contacts
// ABOUTME: Birthdays short-circuit to 1; everything else is scored by the generative backend
package followup

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/harperreed/tend/apperr"
	"github.com/harperreed/tend/db"
	"github.com/harperreed/tend/llm"
	"github.com/harperreed/tend/models"
	"github.com/harperreed/tend/profile"
)

// RequestScore names the generation call made for each score.
const RequestScore = "follow_up_score"

const (
	BirthdayReason = "Today is their birthday"
	ManualReason   = "Manually set score"
)

const defaultInteractionWindow = 10

// Score is a 0-1 urgency value with a short explanation.
type Score struct {
	Score  float64 `json:"score" jsonschema:"urgency from 0 to 1 with two decimals"`
	Reason string  `json:"reason" jsonschema:"one or two sentences explaining the score"`
}

type Service struct {
	db       *sql.DB
	gen      llm.Generator
	profiles *profile.Builder
	prompt   string
	// window is how many recent interactions the scorer sees.
	window int
	log    zerolog.Logger
}

type Options struct {
	Prompt            string
	InteractionWindow int
}

func NewService(database *sql.DB, gen llm.Generator, opts Options, log zerolog.Logger) *Service {
	window := opts.InteractionWindow
	if window <= 0 {
		window = defaultInteractionWindow
	}
	return &Service{
		db:       database,
		gen:      gen,
		profiles: profile.NewBuilder(database),
		prompt:   opts.Prompt,
		window:   window,
		log:      log.With().Str("component", "followup").Logger(),
	}
}

// Calculate scores one person without persisting anything.
func (s *Service) Calculate(ctx context.Context, userID, personID uuid.UUID, now time.Time) (Score, error) {
	prof, err := s.profiles.GetPerson(ctx, userID, personID, profile.Options{
		Groups:           true,
		Interactions:     true,
		InteractionLimit: s.window,
	})
	if errors.Is(err, db.ErrNotFound) {
		return Score{}, apperr.NotFound(apperr.CodePersonNotFound, "Person not found")
	}
	if err != nil {
		s.log.Error().Err(err).Str("person_id", personID.String()).Msg("failed to load person for scoring")
		return Score{}, apperr.Persistence(apperr.CodeFetchingFailed, "Could not load this person", err)
	}

	if prof.Person.BirthdayOn(now) {
		return Score{Score: 1, Reason: BirthdayReason}, nil
	}

	schema, err := llm.SchemaFor[Score]()
	if err != nil {
		return Score{}, apperr.Generation(apperr.CodeGenerationFailed, "Could not score this contact", err)
	}
	lo, hi := 0.0, 1.0
	schema.Properties["score"].Minimum = &lo
	schema.Properties["score"].Maximum = &hi

	out, err := llm.GenerateObject[Score](ctx, s.gen, llm.Request{
		Name:   RequestScore,
		System: s.prompt,
		Prompt: scorePrompt(prof, now),
		Schema: schema,
	})
	if err != nil {
		s.log.Error().Err(err).Str("person_id", personID.String()).Msg("follow-up scoring failed")
		return Score{}, apperr.Generation(apperr.CodeGenerationFailed, "Could not score this contact", err)
	}
	out.Score = math.Round(out.Score*100) / 100
	return out, nil
}

func scorePrompt(prof *profile.Profile, now time.Time) string {
	var b strings.Builder
	p := prof.Person

	fmt.Fprintf(&b, "Today is %s.\n", now.UTC().Format("2006-01-02"))
	fmt.Fprintf(&b, "Person: %s\n", p.FullName())
	fmt.Fprintf(&b, "Current score: %.2f\n", p.FollowUpScore)
	if p.FollowUpReason != "" {
		fmt.Fprintf(&b, "Current reason: %s\n", p.FollowUpReason)
	}

	if tier, n := prof.Tier(); n > 0 {
		fmt.Fprintf(&b, "Tier: %s, target cadence %s (%d days)\n", tier.Name, tier.Cadence, tier.CadenceDays)
	} else {
		b.WriteString("Tier: none\n")
	}

	var last *models.Interaction
	for i := range prof.Interactions {
		if prof.Interactions[i].IsCommunication() {
			last = &prof.Interactions[i]
			break
		}
	}
	if last != nil {
		days := int(models.StartOfDay(now).Sub(models.StartOfDay(last.OccurredAt)).Hours() / 24)
		fmt.Fprintf(&b, "Days since last real contact: %d\n", days)
	} else {
		b.WriteString("Days since last real contact: never\n")
	}

	b.WriteString("\nRecent interactions, newest first:\n")
	if len(prof.Interactions) == 0 {
		b.WriteString("none\n")
	}
	for _, i := range prof.Interactions {
		kind := i.Type
		if !i.IsCommunication() {
			kind = "note to self, not contact"
		}
		fmt.Fprintf(&b, "- %s [%s] %s\n", i.OccurredAt.UTC().Format("2006-01-02"), kind, i.Note)
	}
	return b.String()
}

// Update persists a score on the person. A non-nil manual score skips the scorer.
func (s *Service) Update(ctx context.Context, userID, personID uuid.UUID, manual *float64, now time.Time) (Score, error) {
	var (
		score Score
		err   error
	)
	if manual != nil {
		if *manual < 0 || *manual > 1 || math.IsNaN(*manual) {
			return Score{}, apperr.Validation(apperr.CodeInvalidInput, "Scores must be between 0 and 1", nil)
		}
		score = Score{Score: *manual, Reason: ManualReason}
	} else {
		score, err = s.Calculate(ctx, userID, personID, now)
		if err != nil {
			return Score{}, err
		}
	}

	err = db.UpdateFollowUpScore(ctx, s.db, userID, personID, score.Score, score.Reason, now)
	if errors.Is(err, db.ErrNotFound) {
		return Score{}, apperr.NotFound(apperr.CodePersonNotFound, "Person not found")
	}
	if err != nil {
		s.log.Error().Err(err).Str("person_id", personID.String()).Msg("failed to save follow-up score")
		return Score{}, apperr.Persistence(apperr.CodeUpdatingScoreFailed, "Could not save the score", err)
	}

	s.log.Debug().
		Str("person_id", personID.String()).
		Float64("score", score.Score).
		Bool("manual", manual != nil).
		Msg("follow-up score updated")
	return score, nil
}

type RefreshSummary struct {
	Scored int `json:"scored"`
	Failed int `json:"failed"`
}

// RefreshAll rescores every contact of the user in turn. Per-contact failures are counted.
func (s *Service) RefreshAll(ctx context.Context, userID uuid.UUID, now time.Time) (RefreshSummary, error) {
	people, err := db.ListPeople(ctx, s.db, userID, "", 0)
	if err != nil {
		return RefreshSummary{}, apperr.Persistence(apperr.CodeFetchingFailed, "Could not load contacts", err)
	}

	var sum RefreshSummary
	for _, p := range people {
		if err := ctx.Err(); err != nil {
			return sum, apperr.Generation(apperr.CodeGenerationFailed, "Scoring was interrupted", err)
		}
		if _, err := s.Update(ctx, userID, p.ID, nil, now); err != nil {
			sum.Failed++
			s.log.Warn().Err(err).Str("person_id", p.ID.String()).Msg("skipping contact")
			continue
		}
		sum.Scored++
	}

	s.log.Info().
		Str("user_id", userID.String()).
		Int("scored", sum.Scored).
		Int("failed", sum.Failed).
		Msg("follow-up scores refreshed")
	return sum, nil
}
