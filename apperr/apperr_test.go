package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindAndCodeSurviveWrapping(t *testing.T) {
	cause := errors.New("pq: connection refused")
	err := fmt.Errorf("outer: %w", Persistence(CodeSavingActionPlanFailed, "Could not save your plan", cause))

	assert.Equal(t, KindPersistence, KindOf(err))
	assert.Equal(t, CodeSavingActionPlanFailed, CodeOf(err))
	assert.ErrorIs(t, err, cause)
	assert.False(t, IsNotFound(err))
}

func TestDisplayNeverLeaksCause(t *testing.T) {
	err := Generation(CodeGenerationFailed, "Could not score this contact", errors.New("openai: 500 internal secret"))

	assert.Equal(t, "Could not score this contact", Display(err))
	assert.NotContains(t, Display(err), "openai")
	assert.Equal(t, "Something went wrong", Display(errors.New("raw")))
	assert.Equal(t, "", Display(nil))
}

func TestNotFound(t *testing.T) {
	err := NotFound(CodeNotFound, "No plan yet today")
	assert.True(t, IsNotFound(err))
	assert.Equal(t, "NOT_FOUND: No plan yet today", err.Error())
	assert.Equal(t, Kind(""), KindOf(errors.New("plain")))
}
