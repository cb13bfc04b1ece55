// ABOUTME: Suggested action types and their payloads
// ABOUTME: SuggestedAction is a closed union keyed by ActionType
package models

import (
	"encoding/json"
	"fmt"
)

type ActionType string

const (
	ActionSendMessage  ActionType = "send-message"
	ActionShareContent ActionType = "share-content"
	ActionAddNote      ActionType = "add-note"
	ActionBuyGift      ActionType = "buy-gift"
)

// ActionTypes lists every supported action type in catalog order.
func ActionTypes() []ActionType {
	return []ActionType{ActionSendMessage, ActionShareContent, ActionAddNote, ActionBuyGift}
}

func (t ActionType) Valid() bool {
	switch t {
	case ActionSendMessage, ActionShareContent, ActionAddNote, ActionBuyGift:
		return true
	}
	return false
}

// Minimum variant counts per payload.
const (
	MinMessageVariants = 4
	MinContentVariants = 3
	MinNoteQuestions   = 3
	MinGiftSuggestions = 3
)

// SuggestedAction is implemented only by the four payload types in this file.
type SuggestedAction interface {
	ActionType() ActionType
	Validate() error
	isSuggestedAction()
}

type MessageVariant struct {
	Tone    string `json:"tone" jsonschema:"casual, professional, friendly or funny"`
	Message string `json:"message" jsonschema:"the message text, ready to send"`
}

type MessageAction struct {
	Messages []MessageVariant `json:"messages" jsonschema:"message variants spanning tone"`
}

func (MessageAction) ActionType() ActionType { return ActionSendMessage }
func (MessageAction) isSuggestedAction()     {}

func (a MessageAction) Validate() error {
	if len(a.Messages) < MinMessageVariants {
		return fmt.Errorf("send-message needs at least %d variants, got %d", MinMessageVariants, len(a.Messages))
	}
	for i, m := range a.Messages {
		if m.Message == "" {
			return fmt.Errorf("message variant %d is empty", i)
		}
	}
	return nil
}

type ContentVariant struct {
	Title       string           `json:"title" jsonschema:"what to share"`
	Description string           `json:"description" jsonschema:"why this content fits the person"`
	URL         string           `json:"url,omitempty" jsonschema:"link to the content when known"`
	Messages    []MessageVariant `json:"messages" jsonschema:"messages to send along with the content"`
}

type ContentAction struct {
	Contents []ContentVariant `json:"contents"`
}

func (ContentAction) ActionType() ActionType { return ActionShareContent }
func (ContentAction) isSuggestedAction()     {}

func (a ContentAction) Validate() error {
	if len(a.Contents) < MinContentVariants {
		return fmt.Errorf("share-content needs at least %d variants, got %d", MinContentVariants, len(a.Contents))
	}
	for i, c := range a.Contents {
		if c.Title == "" {
			return fmt.Errorf("content variant %d has no title", i)
		}
		if len(c.Messages) == 0 {
			return fmt.Errorf("content variant %d has no messages", i)
		}
	}
	return nil
}

type NoteQuestion struct {
	Question string `json:"question"`
	Why      string `json:"why" jsonschema:"which gap in the profile this fills"`
}

type NoteAction struct {
	Questions []NoteQuestion `json:"questions"`
}

func (NoteAction) ActionType() ActionType { return ActionAddNote }
func (NoteAction) isSuggestedAction()     {}

func (a NoteAction) Validate() error {
	if len(a.Questions) < MinNoteQuestions {
		return fmt.Errorf("add-note needs at least %d questions, got %d", MinNoteQuestions, len(a.Questions))
	}
	for i, q := range a.Questions {
		if q.Question == "" {
			return fmt.Errorf("question %d is empty", i)
		}
	}
	return nil
}

type GiftSuggestion struct {
	Name       string `json:"name"`
	Reason     string `json:"reason"`
	PriceRange string `json:"price_range,omitempty"`
	URL        string `json:"url,omitempty" jsonschema:"purchase link when known"`
}

type GiftAction struct {
	Gifts []GiftSuggestion `json:"gifts"`
}

func (GiftAction) ActionType() ActionType { return ActionBuyGift }
func (GiftAction) isSuggestedAction()     {}

func (a GiftAction) Validate() error {
	if len(a.Gifts) < MinGiftSuggestions {
		return fmt.Errorf("buy-gift needs at least %d suggestions, got %d", MinGiftSuggestions, len(a.Gifts))
	}
	for i, g := range a.Gifts {
		if g.Name == "" || g.Reason == "" {
			return fmt.Errorf("gift suggestion %d needs a name and a reason", i)
		}
	}
	return nil
}

// DecodeSuggestedAction rebuilds the payload stored for actionType.
func DecodeSuggestedAction(actionType ActionType, raw []byte) (SuggestedAction, error) {
	var (
		action SuggestedAction
		err    error
	)
	switch actionType {
	case ActionSendMessage:
		var a MessageAction
		err = json.Unmarshal(raw, &a)
		action = a
	case ActionShareContent:
		var a ContentAction
		err = json.Unmarshal(raw, &a)
		action = a
	case ActionAddNote:
		var a NoteAction
		err = json.Unmarshal(raw, &a)
		action = a
	case ActionBuyGift:
		var a GiftAction
		err = json.Unmarshal(raw, &a)
		action = a
	default:
		return nil, fmt.Errorf("unknown action type %q", actionType)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s payload: %w", actionType, err)
	}
	return action, nil
}
