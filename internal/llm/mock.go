package llm

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
)

// MockCompleter returns canned responses without network calls. Useful
// for local development and dry runs.
type MockCompleter struct {
	calls atomic.Int64
}

func NewMockCompleter() *MockCompleter {
	return &MockCompleter{}
}

// Model identifies the canned backend in report provenance.
func (m *MockCompleter) Model() string { return "mock" }

// Calls returns how many completions have been served.
func (m *MockCompleter) Calls() int64 {
	return m.calls.Load()
}

// Complete answers extraction and digest prompts (which ask for a JSON
// array) with fragments, and synthesis prompts with sectioned Markdown.
func (m *MockCompleter) Complete(_ context.Context, _, prompt string) (string, error) {
	n := m.calls.Add(1)
	if strings.Contains(prompt, "JSON array") {
		return fmt.Sprintf(`[
  {"text": "Mock lesson %d from transcript segment", "kind": "lesson"},
  {"text": "Mock actionable step %d", "kind": "action"}
]`, n, n), nil
	}
	return fmt.Sprintf(`## Key Career Lessons

- Mock synthesized lesson (call %d).

## Actionable Career Moves

- Mock actionable move.

## Lessons from Top Operators & Investors

- Mock operator lesson.

## Opportunities to Apply These Insights

- Mock opportunity.
`, n), nil
}
