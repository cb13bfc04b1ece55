// ABOUTME: Shared helpers for the MCP tool handlers
// ABOUTME: Maps service errors to safe tool errors and formats ids and timestamps
package handlers

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/harperreed/tend/apperr"
)

// Clock returns the current time. Handlers take one so tests can pin "today".
type Clock func() time.Time

func systemClock() time.Time { return time.Now().UTC() }

func clockOrSystem(c Clock) Clock {
	if c == nil {
		return systemClock
	}
	return c
}

// toolError keeps the code and the display message and drops the raw cause.
func toolError(err error) error {
	if code := apperr.CodeOf(err); code != "" {
		return fmt.Errorf("%s: %s", code, apperr.Display(err))
	}
	return err
}

func parseID(field, value string) (uuid.UUID, error) {
	if value == "" {
		return uuid.Nil, fmt.Errorf("%s is required", field)
	}
	id, err := uuid.Parse(value)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid %s: %w", field, err)
	}
	return id, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func formatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := formatTime(*t)
	return &s
}

// parseDay accepts YYYY-MM-DD or RFC3339.
func parseDay(value string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", value); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: use YYYY-MM-DD", value)
	}
	return t, nil
}
