// ABOUTME: Structured generation on top of a plain text model
// ABOUTME: Derives a JSON schema from the target type and rejects replies that do not conform
package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/jsonschema-go/jsonschema"
)

type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type Message struct {
	Role    Role
	Content string
}

// Request is one generation call. Name identifies the call in logs and test fakes.
// Messages, when set, follow Prompt in the conversation.
type Request struct {
	Name     string
	System   string
	Prompt   string
	Messages []Message
	// Schema overrides the schema derived from the target type.
	Schema *jsonschema.Schema
	// JSON asks the backend for a JSON-only reply.
	JSON bool
}

// Generator returns the raw text reply for a request.
type Generator interface {
	Generate(ctx context.Context, req Request) (string, error)
}

var (
	// ErrGeneration wraps failures of the backend call itself.
	ErrGeneration = errors.New("generation failed")
	// ErrNonConforming means the reply was not valid JSON for the schema.
	ErrNonConforming = errors.New("response does not conform to schema")
)

// SchemaFor derives the JSON schema of T.
func SchemaFor[T any]() (*jsonschema.Schema, error) {
	return jsonschema.For[T](nil)
}

// GenerateObject asks g for a JSON object matching T's schema (or req.Schema) and decodes it.
// The reply is validated against the schema before decoding; nothing is coerced.
func GenerateObject[T any](ctx context.Context, g Generator, req Request) (T, error) {
	var zero T

	schema := req.Schema
	if schema == nil {
		var err error
		if schema, err = SchemaFor[T](); err != nil {
			return zero, fmt.Errorf("failed to derive schema for %s: %w", req.Name, err)
		}
	}
	resolved, err := schema.Resolve(nil)
	if err != nil {
		return zero, fmt.Errorf("failed to resolve schema for %s: %w", req.Name, err)
	}
	schemaJSON, err := json.Marshal(schema)
	if err != nil {
		return zero, fmt.Errorf("failed to encode schema for %s: %w", req.Name, err)
	}

	req.Schema = schema
	req.JSON = true
	req.System = strings.TrimSpace(req.System + "\n\nRespond with a single JSON object and nothing else. It must conform to this JSON Schema:\n" + string(schemaJSON))

	reply, err := g.Generate(ctx, req)
	if err != nil {
		return zero, fmt.Errorf("%w: %s: %w", ErrGeneration, req.Name, err)
	}

	raw := ExtractJSON(reply)
	var instance any
	if err := json.Unmarshal([]byte(raw), &instance); err != nil {
		return zero, fmt.Errorf("%w: %s: invalid JSON: %w", ErrNonConforming, req.Name, err)
	}
	if err := resolved.Validate(instance); err != nil {
		return zero, fmt.Errorf("%w: %s: %w", ErrNonConforming, req.Name, err)
	}

	var out T
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return zero, fmt.Errorf("%w: %s: %w", ErrNonConforming, req.Name, err)
	}
	return out, nil
}

// ExtractJSON strips a surrounding markdown code fence, if any.
func ExtractJSON(reply string) string {
	s := strings.TrimSpace(reply)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
