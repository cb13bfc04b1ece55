// ABOUTME: Generator backed by langchaingo chat models
// ABOUTME: Supports OpenAI-compatible, Ollama and Anthropic providers from config
package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/anthropic"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/harperreed/tend/config"
)

type Client struct {
	model       llms.Model
	temperature float64
	timeout     time.Duration
	log         zerolog.Logger
}

func NewClient(cfg config.LLMConfig, log zerolog.Logger) (*Client, error) {
	model, err := newModel(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s model: %w", cfg.Provider, err)
	}
	return &Client{
		model:       model,
		temperature: cfg.Temperature,
		timeout:     cfg.Timeout,
		log:         log.With().Str("component", "llm").Str("provider", cfg.Provider).Str("model", cfg.Model).Logger(),
	}, nil
}

func newModel(cfg config.LLMConfig) (llms.Model, error) {
	switch cfg.Provider {
	case config.ProviderOpenAI:
		opts := []openai.Option{
			openai.WithModel(cfg.Model),
			openai.WithToken(cfg.APIKey),
		}
		if cfg.BaseURL != "" {
			opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
		}
		return openai.New(opts...)
	case config.ProviderAnthropic:
		opts := []anthropic.Option{
			anthropic.WithToken(cfg.APIKey),
			anthropic.WithModel(cfg.Model),
		}
		if cfg.BaseURL != "" {
			opts = append(opts, anthropic.WithBaseURL(cfg.BaseURL))
		}
		return anthropic.New(opts...)
	case config.ProviderOllama:
		url := cfg.BaseURL
		if url == "" {
			url = "http://localhost:11434"
		}
		return ollama.New(ollama.WithServerURL(url), ollama.WithModel(cfg.Model))
	}
	return nil, fmt.Errorf("unknown provider %q", cfg.Provider)
}

// Generate sends the request as a chat conversation and returns the first choice.
func (c *Client) Generate(ctx context.Context, req Request) (string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	opts := []llms.CallOption{llms.WithTemperature(c.temperature)}
	if req.JSON {
		opts = append(opts, llms.WithJSONMode())
	}

	start := time.Now()
	resp, err := c.model.GenerateContent(ctx, toMessages(req), opts...)
	if err != nil {
		c.log.Error().Err(err).Str("request", req.Name).Dur("elapsed", time.Since(start)).Msg("generation failed")
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("model returned no choices")
	}

	c.log.Debug().Str("request", req.Name).Dur("elapsed", time.Since(start)).Msg("generation complete")
	return resp.Choices[0].Content, nil
}

func toMessages(req Request) []llms.MessageContent {
	var msgs []llms.MessageContent
	if req.System != "" {
		msgs = append(msgs, llms.TextParts(llms.ChatMessageTypeSystem, req.System))
	}
	if req.Prompt != "" {
		msgs = append(msgs, llms.TextParts(llms.ChatMessageTypeHuman, req.Prompt))
	}
	for _, m := range req.Messages {
		role := llms.ChatMessageTypeHuman
		switch m.Role {
		case RoleSystem:
			role = llms.ChatMessageTypeSystem
		case RoleAssistant:
			role = llms.ChatMessageTypeAI
		}
		msgs = append(msgs, llms.TextParts(role, m.Content))
	}
	return msgs
}
