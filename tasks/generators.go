// ABOUTME: Action payload generators, one per action type
// ABOUTME: Each reply is schema-checked and must meet the payload's minimum variant count
package tasks

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/jsonschema-go/jsonschema"

	"github.com/harperreed/tend/apperr"
	"github.com/harperreed/tend/llm"
	"github.com/harperreed/tend/models"
	"github.com/harperreed/tend/profile"
)

// GenerateSuggestedAction is stage B on its own, for a person the caller has already loaded.
func (s *Service) GenerateSuggestedAction(ctx context.Context, prof *profile.Profile, actionType models.ActionType, taskContext string, now time.Time) (models.SuggestedAction, error) {
	return s.generateAction(ctx, prof, actionType, taskContext, now)
}

func (s *Service) generateAction(ctx context.Context, prof *profile.Profile, actionType models.ActionType, taskContext string, now time.Time) (models.SuggestedAction, error) {
	prompt := actionPrompt(prof, taskContext, now)

	var (
		action models.SuggestedAction
		err    error
	)
	switch actionType {
	case models.ActionSendMessage:
		action, err = generatePayload[models.MessageAction](ctx, s.gen, RequestSendMessage, s.prompts.SendMessage, prompt, "messages", models.MinMessageVariants)
	case models.ActionShareContent:
		action, err = generatePayload[models.ContentAction](ctx, s.gen, RequestShareContent, s.prompts.ShareContent, prompt, "contents", models.MinContentVariants)
	case models.ActionAddNote:
		action, err = generatePayload[models.NoteAction](ctx, s.gen, RequestAddNote, s.prompts.AddNote, prompt, "questions", models.MinNoteQuestions)
	case models.ActionBuyGift:
		action, err = s.generateGifts(ctx, prof, prompt)
	default:
		return nil, apperr.Validation(apperr.CodeInvalidActionType, "Unsupported action type", fmt.Errorf("action type %q", actionType))
	}
	if err != nil {
		s.log.Error().Err(err).
			Str("person_id", prof.Person.ID.String()).
			Str("action_type", string(actionType)).
			Msg("action generation failed")
		return nil, apperr.Generation(apperr.CodeGenerationFailed, "Could not generate a suggestion", err)
	}
	return action, nil
}

func actionPrompt(prof *profile.Profile, taskContext string, now time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Today is %s.\n", now.UTC().Format(dateLayout))
	if taskContext != "" {
		fmt.Fprintf(&b, "Why the user is reaching out: %s\n", taskContext)
	}
	b.WriteString("\nProfile:\n")
	b.WriteString(prof.Narrative(now))
	return b.String()
}

// payloadSchema derives T's schema and sets a minimum length on its list property.
func payloadSchema[T any](listField string, min int) (*jsonschema.Schema, error) {
	schema, err := llm.SchemaFor[T]()
	if err != nil {
		return nil, err
	}
	prop, ok := schema.Properties[listField]
	if !ok {
		return nil, fmt.Errorf("schema has no %q property", listField)
	}
	prop.MinItems = &min
	return schema, nil
}

type payload interface {
	models.SuggestedAction
}

func generatePayload[T payload](ctx context.Context, gen llm.Generator, name, system, prompt, listField string, min int) (models.SuggestedAction, error) {
	schema, err := payloadSchema[T](listField, min)
	if err != nil {
		return nil, err
	}
	out, err := llm.GenerateObject[T](ctx, gen, llm.Request{
		Name:   name,
		System: system,
		Prompt: prompt,
		Schema: schema,
	})
	if err != nil {
		return nil, err
	}
	if err := out.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", llm.ErrNonConforming, err)
	}
	return out, nil
}

// generateGifts grounds suggestions in web search when available and falls back to plain generation.
func (s *Service) generateGifts(ctx context.Context, prof *profile.Profile, prompt string) (models.SuggestedAction, error) {
	if s.search == nil {
		return generatePayload[models.GiftAction](ctx, s.gen, RequestBuyGift, s.prompts.BuyGift, prompt, "gifts", models.MinGiftSuggestions)
	}

	schema, err := payloadSchema[models.GiftAction]("gifts", models.MinGiftSuggestions)
	if err != nil {
		return nil, err
	}
	grounded, err := llm.GenerateGrounded[models.GiftAction](ctx, s.gen, s.search, giftQuery(prof), llm.Request{
		Name:   RequestBuyGift,
		System: s.prompts.BuyGift,
		Prompt: prompt,
		Schema: schema,
	})
	if err == nil {
		err = grounded.Data.Validate()
	}
	if err == nil {
		return grounded.Data, nil
	}
	s.log.Warn().Err(err).Str("person_id", prof.Person.ID.String()).Msg("grounded gift search failed, generating without search")
	return generatePayload[models.GiftAction](ctx, s.gen, RequestBuyGift, s.prompts.BuyGift, prompt, "gifts", models.MinGiftSuggestions)
}

func giftQuery(prof *profile.Profile) string {
	if s := prof.Person.AISummary; s != nil && len(s.Interests) > 0 {
		return "gift ideas for someone who likes " + strings.Join(s.Interests, ", ")
	}
	if prof.Person.Bio != "" {
		return "gift ideas for " + prof.Person.Bio
	}
	return "thoughtful birthday gift ideas"
}
