// ABOUTME: Application configuration loaded from defaults, a TOML file and the environment
// ABOUTME: Uses koanf with XDG default locations and TEND_ prefixed env overrides
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const AppName = "tend"

type Config struct {
	Database DatabaseConfig `koanf:"database"`
	LLM      LLMConfig      `koanf:"llm"`
	Search   SearchConfig   `koanf:"search"`
	Plan     PlanConfig     `koanf:"plan"`
	FollowUp FollowUpConfig `koanf:"followup"`
	Log      LogConfig      `koanf:"log"`
	Prompts  Prompts        `koanf:"prompts"`
}

type DatabaseConfig struct {
	Path string `koanf:"path"`
}

type LLMConfig struct {
	Provider    string        `koanf:"provider"`
	Model       string        `koanf:"model"`
	APIKey      string        `koanf:"api_key"`
	BaseURL     string        `koanf:"base_url"`
	Temperature float64       `koanf:"temperature"`
	Timeout     time.Duration `koanf:"timeout"`
}

type SearchConfig struct {
	Enabled    bool          `koanf:"enabled"`
	Endpoint   string        `koanf:"endpoint"`
	MaxResults int           `koanf:"max_results"`
	Timeout    time.Duration `koanf:"timeout"`
	UserAgent  string        `koanf:"user_agent"`
}

type PlanConfig struct {
	// Concurrency bounds how many users the nightly run processes at once.
	Concurrency int `koanf:"concurrency"`
	// ProfileInteractions is how many recent interactions go into each profile.
	ProfileInteractions int `koanf:"profile_interactions"`
}

type FollowUpConfig struct {
	InteractionWindow int `koanf:"interaction_window"`
}

type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// Providers supported by the llm package.
const (
	ProviderOpenAI    = "openai"
	ProviderOllama    = "ollama"
	ProviderAnthropic = "anthropic"
)

// DefaultConfigPath is where Load looks when no path is given.
func DefaultConfigPath() string {
	return filepath.Join(xdg.ConfigHome, AppName, "config.toml")
}

// DefaultDatabasePath is the sqlite file used when database.path is unset.
func DefaultDatabasePath() string {
	return filepath.Join(xdg.DataHome, AppName, AppName+".db")
}

func defaults() map[string]interface{} {
	return map[string]interface{}{
		"database.path":               DefaultDatabasePath(),
		"llm.provider":                ProviderOpenAI,
		"llm.model":                   "gpt-4o-mini",
		"llm.temperature":             0.4,
		"llm.timeout":                 "90s",
		"search.enabled":              false,
		"search.endpoint":             "https://html.duckduckgo.com/html/",
		"search.max_results":          5,
		"search.timeout":              "15s",
		"search.user_agent":           "Mozilla/5.0 (compatible; tend/1.0)",
		"plan.concurrency":            4,
		"plan.profile_interactions":   10,
		"followup.interaction_window": 10,
		"log.level":                   "info",
		"log.format":                  "json",
		"prompts.action_plan":         defaultActionPlanPrompt,
		"prompts.task_context":        defaultTaskContextPrompt,
		"prompts.send_message":        defaultSendMessagePrompt,
		"prompts.share_content":       defaultShareContentPrompt,
		"prompts.add_note":            defaultAddNotePrompt,
		"prompts.buy_gift":            defaultBuyGiftPrompt,
		"prompts.follow_up_score":     defaultFollowUpScorePrompt,
	}
}

// Load builds the configuration. An explicit path must exist; the default path is optional.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("error loading defaults: %w", err)
	}

	if path != "" {
		if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
			return nil, fmt.Errorf("error loading config %s: %w", path, err)
		}
	} else if _, err := os.Stat(DefaultConfigPath()); err == nil {
		if err := k.Load(file.Provider(DefaultConfigPath()), toml.Parser()); err != nil {
			return nil, fmt.Errorf("error loading config %s: %w", DefaultConfigPath(), err)
		}
	}

	// TEND_LLM_API_KEY -> llm.api_key
	if err := k.Load(env.Provider("TEND_", ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("error loading environment: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}

	if cfg.LLM.APIKey == "" {
		cfg.LLM.APIKey = providerKeyFromEnv(cfg.LLM.Provider)
	}

	return &cfg, nil
}

func envKey(s string) string {
	return strings.Replace(strings.ToLower(strings.TrimPrefix(s, "TEND_")), "_", ".", 1)
}

func providerKeyFromEnv(provider string) string {
	switch provider {
	case ProviderOpenAI:
		return os.Getenv("OPENAI_API_KEY")
	case ProviderAnthropic:
		return os.Getenv("ANTHROPIC_API_KEY")
	}
	return ""
}

// Validate checks the fields every command depends on.
func (c *Config) Validate() error {
	switch c.LLM.Provider {
	case ProviderOpenAI, ProviderOllama, ProviderAnthropic:
	default:
		return fmt.Errorf("unknown llm provider %q", c.LLM.Provider)
	}
	if c.LLM.Model == "" {
		return fmt.Errorf("llm.model is required")
	}
	if c.Plan.Concurrency <= 0 {
		return fmt.Errorf("plan.concurrency must be positive")
	}
	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}
	return nil
}
