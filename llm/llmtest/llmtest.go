// ABOUTME: Scripted Generator for tests
// ABOUTME: Replies with canned JSON per request name and records every call
package llmtest

import (
	"context"
	"fmt"
	"sync"

	"github.com/harperreed/tend/llm"
)

// Fake is safe for concurrent use.
type Fake struct {
	mu      sync.Mutex
	replies map[string]string
	errs    map[string]error
	// FailIf, when set, is consulted before the scripted reply.
	FailIf func(req llm.Request) error
	calls   []llm.Request
}

func New() *Fake {
	return &Fake{replies: map[string]string{}, errs: map[string]error{}}
}

// Reply scripts the reply for requests named name.
func (f *Fake) Reply(name, reply string) *Fake {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.replies[name] = reply
	return f
}

// Fail makes requests named name return err.
func (f *Fake) Fail(name string, err error) *Fake {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errs[name] = err
	return f
}

func (f *Fake) Generate(_ context.Context, req llm.Request) (string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, req)
	reply, ok := f.replies[req.Name]
	err := f.errs[req.Name]
	failIf := f.FailIf
	f.mu.Unlock()

	if failIf != nil {
		if err := failIf(req); err != nil {
			return "", err
		}
	}
	if err != nil {
		return "", err
	}
	if !ok {
		return "", fmt.Errorf("no scripted reply for %q", req.Name)
	}
	return reply, nil
}

// Calls returns the recorded requests, optionally filtered by name.
func (f *Fake) Calls(name string) []llm.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []llm.Request
	for _, c := range f.calls {
		if name == "" || c.Name == name {
			out = append(out, c)
		}
	}
	return out
}

// Canned replies that satisfy the payload schemas.
const (
	MessagesJSON = `{"messages": [
		{"tone": "casual", "message": "Hey! How have you been?"},
		{"tone": "professional", "message": "Hope the quarter is going well."},
		{"tone": "friendly", "message": "Thinking of you, let's catch up soon."},
		{"tone": "funny", "message": "Are you still alive or did the inbox win?"}
	]}`
	ContentsJSON = `{"contents": [
		{"title": "The Mythical Man-Month", "description": "Classic essays", "url": "https://example.com/mmm", "messages": [{"tone": "friendly", "message": "Thought of you"}]},
		{"title": "Grace Hopper on Letterman", "description": "Interview", "url": "https://example.com/video", "messages": [{"tone": "casual", "message": "This is great"}]},
		{"title": "COBOL at 60", "description": "Article", "messages": [{"tone": "funny", "message": "Saw this and smiled"}]}
	]}`
	NotesJSON = `{"questions": [
		{"question": "Where are you living now?", "why": "No address on file"},
		{"question": "What are you working on?", "why": "No organization on file"},
		{"question": "How is the family?", "why": "No relations on file"}
	]}`
	GiftsJSON = `{"gifts": [
		{"name": "Brass desk clock", "reason": "Loves clocks", "price_range": "$40-60", "url": "https://example.com/clock"},
		{"name": "Vintage COBOL manual", "reason": "Nostalgia"},
		{"name": "Navy mug", "reason": "Service pride", "price_range": "$15"}
	]}`
)
