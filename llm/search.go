// ABOUTME: Search-grounded structured generation
// ABOUTME: Web results are added to the prompt and returned as sources
package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/harperreed/tend/websearch"
)

// Searcher finds web pages for a query.
type Searcher interface {
	Search(ctx context.Context, query string) ([]websearch.Result, error)
}

// Grounded is a generated object together with the pages it was grounded on.
type Grounded[T any] struct {
	Data    T
	Sources []websearch.Result
}

// GenerateGrounded searches for query, adds the results to the prompt and generates T.
// A failed or empty search is an error; callers decide whether to fall back to GenerateObject.
func GenerateGrounded[T any](ctx context.Context, g Generator, s Searcher, query string, req Request) (Grounded[T], error) {
	var out Grounded[T]

	results, err := s.Search(ctx, query)
	if err != nil {
		return out, fmt.Errorf("search %q: %w", query, err)
	}
	if len(results) == 0 {
		return out, fmt.Errorf("search %q returned no results", query)
	}

	var b strings.Builder
	b.WriteString(req.Prompt)
	b.WriteString("\n\nWeb search results you may use. Prefer linking to these pages:\n")
	for _, r := range results {
		fmt.Fprintf(&b, "- %s (%s)", r.Title, r.URL)
		if r.Snippet != "" {
			fmt.Fprintf(&b, ": %s", r.Snippet)
		}
		b.WriteString("\n")
	}
	req.Prompt = b.String()

	data, err := GenerateObject[T](ctx, g, req)
	if err != nil {
		return out, err
	}
	out.Data = data
	out.Sources = results
	return out, nil
}
