// ABOUTME: Error kinds and codes returned across component boundaries
// ABOUTME: Keeps the raw cause for logs and a safe message for display
package apperr

import (
	"errors"
	"fmt"
)

type Kind string

const (
	KindValidation  Kind = "validation"
	KindNotFound    Kind = "not_found"
	KindGeneration  Kind = "generation"
	KindPersistence Kind = "persistence"
)

// Codes.
const (
	CodeInvalidInput               = "INVALID_INPUT"
	CodeInvalidActionType          = "INVALID_ACTION_TYPE"
	CodeInvalidTrigger             = "INVALID_TRIGGER"
	CodeInvalidEndDate             = "INVALID_END_DATE"
	CodeInvalidSuggestedAction     = "INVALID_SUGGESTED_ACTION"
	CodeNotFound                   = "NOT_FOUND"
	CodePersonNotFound             = "PERSON_NOT_FOUND"
	CodeTaskNotFound               = "TASK_NOT_FOUND"
	CodePlanNotFound               = "PLAN_NOT_FOUND"
	CodeGenerationFailed           = "GENERATION_FAILED"
	CodeGeneratingActionPlanFailed = "GENERATING_ACTION_PLAN_FAILED"
	CodeSavingActionPlanFailed     = "SAVING_ACTION_PLAN_FAILED"
	CodeSavingTaskFailed           = "SAVING_TASK_FAILED"
	CodeFetchingFailed             = "FETCHING_FAILED"
	CodeUpdatingScoreFailed        = "UPDATING_SCORE_FAILED"
)

// Error is the only error type returned from service entry points.
// Message is safe to show to an end user; Err is for logs only.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

func New(kind Kind, code, message string, err error) *Error {
	return &Error{Kind: kind, Code: code, Message: message, Err: err}
}

func Validation(code, message string, err error) *Error {
	return New(KindValidation, code, message, err)
}

func NotFound(code, message string) *Error {
	return New(KindNotFound, code, message, nil)
}

func Generation(code, message string, err error) *Error {
	return New(KindGeneration, code, message, err)
}

func Persistence(code, message string, err error) *Error {
	return New(KindPersistence, code, message, err)
}

func as(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// KindOf returns the kind of err, or "" when err is not an *Error.
func KindOf(err error) Kind {
	if e, ok := as(err); ok {
		return e.Kind
	}
	return ""
}

// CodeOf returns the code of err, or "" when err is not an *Error.
func CodeOf(err error) string {
	if e, ok := as(err); ok {
		return e.Code
	}
	return ""
}

func IsNotFound(err error) bool {
	return KindOf(err) == KindNotFound
}

// Display returns the message that may be shown to an end user.
func Display(err error) string {
	if err == nil {
		return ""
	}
	if e, ok := as(err); ok {
		return e.Message
	}
	return "Something went wrong"
}
