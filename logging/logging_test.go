package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harperreed/tend/config"
)

func TestNewJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := New(config.LogConfig{Level: "warn", Format: "json"}, &buf)

	logger.Info().Msg("dropped")
	logger.Warn().Str("user_id", "u1").Msg("kept")

	var line map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &line))
	assert.Equal(t, "kept", line["message"])
	assert.Equal(t, "u1", line["user_id"])
	assert.Equal(t, "warn", line["level"])
}

func TestNewBadLevelFallsBackToInfo(t *testing.T) {
	logger := New(config.LogConfig{Level: "shouty"}, &bytes.Buffer{})
	assert.Equal(t, zerolog.InfoLevel, logger.GetLevel())
}

func TestConsoleFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := New(config.LogConfig{Level: "debug", Format: "console"}, &buf)
	logger.Debug().Msg("hello")
	assert.Contains(t, buf.String(), "hello")
	assert.False(t, json.Valid(bytes.TrimSpace(buf.Bytes())))
}
