package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ProviderOpenAI, cfg.LLM.Provider)
	assert.Equal(t, 90*time.Second, cfg.LLM.Timeout)
	assert.Equal(t, 4, cfg.Plan.Concurrency)
	assert.Equal(t, DefaultPrompts(), cfg.Prompts)
	assert.NoError(t, cfg.Validate())
}

func TestLoadFileAndEnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[llm]
provider = "ollama"
model = "llama3.1"

[prompts]
add_note = "Ask about hobbies."
`), 0644))

	t.Setenv("TEND_LLM_API_KEY", "sk-test")
	t.Setenv("TEND_PLAN_CONCURRENCY", "8")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ProviderOllama, cfg.LLM.Provider)
	assert.Equal(t, "llama3.1", cfg.LLM.Model)
	assert.Equal(t, "sk-test", cfg.LLM.APIKey)
	assert.Equal(t, 8, cfg.Plan.Concurrency)
	assert.Equal(t, "Ask about hobbies.", cfg.Prompts.AddNote)
	assert.Equal(t, DefaultPrompts().SendMessage, cfg.Prompts.SendMessage)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := &Config{
		Database: DatabaseConfig{Path: "x.db"},
		LLM:      LLMConfig{Provider: "carrier-pigeon", Model: "m"},
		Plan:     PlanConfig{Concurrency: 1},
	}
	assert.Error(t, cfg.Validate())

	cfg.LLM.Provider = ProviderAnthropic
	assert.NoError(t, cfg.Validate())

	cfg.Plan.Concurrency = 0
	assert.Error(t, cfg.Validate())
}
