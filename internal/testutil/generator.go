package testutil

import (
	"context"
	"strings"
	"sync"
)

// Generator is a deterministic generation stub.
// It matches the prompt and query against registered patterns
// (case-insensitive substring, first match wins) and returns the associated
// response, or the fallback when nothing matches.
//
// Thread-safe for concurrent use.
type Generator struct {
	mu       sync.Mutex
	rules    []generatorRule
	fallback string
	calls    []GeneratorCall
}

type generatorRule struct {
	pattern  string
	response string
}

// GeneratorCall records a single Generate invocation.
type GeneratorCall struct {
	Prompt string
	Query  string
}

// NewGenerator creates a generation stub with the given fallback response.
func NewGenerator(fallback string) *Generator {
	return &Generator{fallback: fallback}
}

// AddResponse registers a pattern-response pair.
func (g *Generator) AddResponse(pattern, response string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.rules = append(g.rules, generatorRule{
		pattern:  strings.ToLower(pattern),
		response: response,
	})
}

// Calls returns a copy of all recorded calls.
func (g *Generator) Calls() []GeneratorCall {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]GeneratorCall(nil), g.calls...)
}

// Generate returns the first registered response whose pattern appears in
// the prompt or query.
func (g *Generator) Generate(_ context.Context, prompt, query string) string {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.calls = append(g.calls, GeneratorCall{Prompt: prompt, Query: query})

	haystack := strings.ToLower(prompt + "\n" + query)
	for _, rule := range g.rules {
		if strings.Contains(haystack, rule.pattern) {
			return rule.response
		}
	}
	return g.fallback
}
