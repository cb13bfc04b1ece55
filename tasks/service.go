// ABOUTME: Task building pipeline: infer context and action, generate the action payload, persist
// ABOUTME: Also serves task retrieval and status transitions
package tasks

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/harperreed/tend/actions"
	"github.com/harperreed/tend/apperr"
	"github.com/harperreed/tend/config"
	"github.com/harperreed/tend/db"
	"github.com/harperreed/tend/llm"
	"github.com/harperreed/tend/models"
	"github.com/harperreed/tend/profile"
)

// Request names, one per generation call this package makes.
const (
	RequestTaskContext  = "task_context"
	RequestSendMessage  = "send_message"
	RequestShareContent = "share_content"
	RequestAddNote      = "add_note"
	RequestBuyGift      = "buy_gift"
)

// DefaultDueDays is how far out an ad hoc task is due when no end date is given.
const DefaultDueDays = 3

const dateLayout = "2006-01-02"

type Service struct {
	db       *sql.DB
	gen      llm.Generator
	search   llm.Searcher
	profiles *profile.Builder
	prompts  config.Prompts
	// profileInteractions caps the interactions included in prompts.
	profileInteractions int
	log                 zerolog.Logger
}

type Options struct {
	// Search enables grounded gift suggestions. Nil disables it.
	Search              llm.Searcher
	Prompts             config.Prompts
	ProfileInteractions int
}

func NewService(database *sql.DB, gen llm.Generator, opts Options, log zerolog.Logger) *Service {
	return &Service{
		db:                  database,
		gen:                 gen,
		search:              opts.Search,
		profiles:            profile.NewBuilder(database),
		prompts:             opts.Prompts,
		profileInteractions: opts.ProfileInteractions,
		log:                 log.With().Str("component", "tasks").Logger(),
	}
}

// Inference is the result of stage A.
type Inference struct {
	Context      string            `json:"context" jsonschema:"why the user should act now, two or three sentences"`
	CallToAction string            `json:"callToAction" jsonschema:"one line telling the user what to do"`
	ActionType   models.ActionType `json:"actionType" jsonschema:"slug of the chosen action"`
}

type BuildTaskInput struct {
	UserID   uuid.UUID
	PersonID uuid.UUID
	Trigger  models.Trigger
	// TaskContext is optional free text from the caller.
	TaskContext string
	// EndAt defaults to the end of the day DefaultDueDays from now.
	EndAt time.Time
}

// BuildTask runs the full pipeline for one person: infer, generate, persist.
func (s *Service) BuildTask(ctx context.Context, in BuildTaskInput, now time.Time) (*models.Task, error) {
	if in.UserID == uuid.Nil || in.PersonID == uuid.Nil {
		return nil, apperr.Validation(apperr.CodeInvalidInput, "A user and a person are required", nil)
	}
	if !in.Trigger.Valid() {
		return nil, apperr.Validation(apperr.CodeInvalidTrigger, "Unknown task trigger", fmt.Errorf("trigger %q", in.Trigger))
	}
	endAt := in.EndAt
	if endAt.IsZero() {
		endAt = models.EndOfDay(now.AddDate(0, 0, DefaultDueDays))
	}
	if !endAt.After(now) {
		return nil, apperr.Validation(apperr.CodeInvalidEndDate, "The end date must be in the future", nil)
	}

	prof, err := s.loadProfile(ctx, in.UserID, in.PersonID)
	if err != nil {
		return nil, err
	}

	inf, err := s.infer(ctx, prof, in.Trigger, in.TaskContext, now)
	if err != nil {
		return nil, err
	}

	action, err := s.generateAction(ctx, prof, inf.ActionType, inf.Context, now)
	if err != nil {
		return nil, err
	}

	task := &models.Task{
		UserID:              in.UserID,
		PersonID:            in.PersonID,
		Trigger:             in.Trigger,
		Context:             inf.Context,
		CallToAction:        inf.CallToAction,
		SuggestedActionType: inf.ActionType,
		SuggestedAction:     action,
		EndAt:               endAt,
	}
	if err := s.persist(ctx, task, now); err != nil {
		return nil, err
	}
	return task, nil
}

// InferContext is stage A on its own: pick the context, call to action and action type for a person.
func (s *Service) InferContext(ctx context.Context, userID, personID uuid.UUID, trigger models.Trigger, taskContext string, now time.Time) (Inference, error) {
	if !trigger.Valid() {
		return Inference{}, apperr.Validation(apperr.CodeInvalidTrigger, "Unknown task trigger", fmt.Errorf("trigger %q", trigger))
	}
	prof, err := s.loadProfile(ctx, userID, personID)
	if err != nil {
		return Inference{}, err
	}
	return s.infer(ctx, prof, trigger, taskContext, now)
}

// BuildFromDraft materializes one plan draft. The action type was already chosen,
// so this starts at payload generation. The task is due at the end of the draft's due date.
func (s *Service) BuildFromDraft(ctx context.Context, userID uuid.UUID, draft models.TaskDraft, now time.Time) (*models.Task, error) {
	personID, err := uuid.Parse(draft.PersonID)
	if err != nil {
		return nil, apperr.Validation(apperr.CodeInvalidInput, "The task refers to an unknown person", err)
	}
	if !draft.TaskType.Valid() {
		return nil, apperr.Validation(apperr.CodeInvalidActionType, "Unsupported action type", fmt.Errorf("action type %q", draft.TaskType))
	}
	endAt := models.EndOfDay(now)
	if draft.TaskDueDate != "" {
		due, err := time.Parse(dateLayout, draft.TaskDueDate)
		if err != nil {
			return nil, apperr.Validation(apperr.CodeInvalidEndDate, "The task due date is not a date", err)
		}
		endAt = models.EndOfDay(due)
	}
	if !endAt.After(now) {
		return nil, apperr.Validation(apperr.CodeInvalidEndDate, "The end date must be in the future", nil)
	}

	prof, err := s.loadProfile(ctx, userID, personID)
	if err != nil {
		return nil, err
	}

	action, err := s.generateAction(ctx, prof, draft.TaskType, draft.TaskContext, now)
	if err != nil {
		return nil, err
	}

	task := &models.Task{
		UserID:              userID,
		PersonID:            personID,
		Trigger:             models.TriggerFollowUp,
		Context:             draft.TaskContext,
		CallToAction:        draft.CallToAction,
		SuggestedActionType: draft.TaskType,
		SuggestedAction:     action,
		EndAt:               endAt,
	}
	if err := s.persist(ctx, task, now); err != nil {
		return nil, err
	}
	return task, nil
}

func (s *Service) loadProfile(ctx context.Context, userID, personID uuid.UUID) (*profile.Profile, error) {
	prof, err := s.profiles.GetPerson(ctx, userID, personID, profile.All(s.profileInteractions))
	if errors.Is(err, db.ErrNotFound) {
		return nil, apperr.NotFound(apperr.CodePersonNotFound, "Person not found")
	}
	if err != nil {
		s.log.Error().Err(err).Str("person_id", personID.String()).Msg("failed to load profile")
		return nil, apperr.Persistence(apperr.CodeFetchingFailed, "Could not load this person", err)
	}
	return prof, nil
}

func (s *Service) infer(ctx context.Context, prof *profile.Profile, trigger models.Trigger, taskContext string, now time.Time) (Inference, error) {
	schema, err := llm.SchemaFor[Inference]()
	if err != nil {
		return Inference{}, apperr.Generation(apperr.CodeGenerationFailed, "Could not suggest a task", err)
	}
	schema.Properties["actionType"].Enum = actions.Enum()

	var b strings.Builder
	fmt.Fprintf(&b, "Today is %s.\n", now.UTC().Format(dateLayout))
	fmt.Fprintf(&b, "Trigger: %s\n", trigger)
	if taskContext != "" {
		fmt.Fprintf(&b, "Context from the user: %s\n", taskContext)
	}
	if tier, n := prof.Tier(); n > 0 {
		fmt.Fprintf(&b, "Relationship tier: %s\n", tier.Name)
	}
	b.WriteString("\nAvailable actions:\n")
	b.WriteString(actions.JSON())
	b.WriteString("\n\nProfile:\n")
	b.WriteString(prof.Narrative(now))

	inf, err := llm.GenerateObject[Inference](ctx, s.gen, llm.Request{
		Name:   RequestTaskContext,
		System: s.prompts.TaskContext,
		Prompt: b.String(),
		Schema: schema,
	})
	if err != nil {
		s.log.Error().Err(err).Str("person_id", prof.Person.ID.String()).Msg("task context inference failed")
		return Inference{}, apperr.Generation(apperr.CodeGenerationFailed, "Could not suggest a task", err)
	}
	return inf, nil
}

// persist validates the task, checks the person belongs to the user and inserts it.
func (s *Service) persist(ctx context.Context, task *models.Task, now time.Time) error {
	if err := validate(task, now); err != nil {
		return err
	}

	if _, err := db.GetPerson(ctx, s.db, task.UserID, task.PersonID); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return apperr.NotFound(apperr.CodePersonNotFound, "Person not found")
		}
		return apperr.Persistence(apperr.CodeFetchingFailed, "Could not load this person", err)
	}

	if err := db.InsertTask(ctx, s.db, task, now); err != nil {
		s.log.Error().Err(err).Str("person_id", task.PersonID.String()).Msg("failed to insert task")
		return apperr.Persistence(apperr.CodeSavingTaskFailed, "Could not save the task", err)
	}
	s.log.Info().
		Str("task_id", task.ID.String()).
		Str("person_id", task.PersonID.String()).
		Str("action_type", string(task.SuggestedActionType)).
		Msg("task created")
	return nil
}

func validate(task *models.Task, now time.Time) error {
	switch {
	case task.UserID == uuid.Nil || task.PersonID == uuid.Nil:
		return apperr.Validation(apperr.CodeInvalidInput, "A user and a person are required", nil)
	case !task.Trigger.Valid():
		return apperr.Validation(apperr.CodeInvalidTrigger, "Unknown task trigger", fmt.Errorf("trigger %q", task.Trigger))
	case !task.SuggestedActionType.Valid():
		return apperr.Validation(apperr.CodeInvalidActionType, "Unsupported action type", fmt.Errorf("action type %q", task.SuggestedActionType))
	case !task.EndAt.After(now):
		return apperr.Validation(apperr.CodeInvalidEndDate, "The end date must be in the future", nil)
	case task.SuggestedAction == nil || task.SuggestedAction.ActionType() != task.SuggestedActionType:
		return apperr.Validation(apperr.CodeInvalidSuggestedAction, "The suggested action does not match its type", nil)
	}
	if err := task.SuggestedAction.Validate(); err != nil {
		return apperr.Validation(apperr.CodeInvalidSuggestedAction, "The suggested action is incomplete", err)
	}
	if err := task.Validate(now); err != nil {
		return apperr.Validation(apperr.CodeInvalidInput, "The task is missing required fields", err)
	}
	return nil
}
