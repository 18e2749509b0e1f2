// Package insight defines the extraction fragments, synthesis prompts,
// and the final report produced from a transcript.
package insight

import (
	"regexp"
	"strings"
)

// Fragment is a single career insight pulled from one transcript chunk.
type Fragment struct {
	Text string `json:"text"`
	Kind string `json:"kind"`
	Page int    `json:"page,omitempty"`
}

var validKinds = map[string]bool{
	"lesson": true,
	"quote":  true,
	"fact":   true,
	"action": true,
}

var injectionPattern = regexp.MustCompile(
	`(?i)(ignore\s+(previous|all|above)|system\s*prompt|you\s+are\s+now|` +
		`act\s+as\s+|pretend\s+|forget\s+(everything|all)|override|` +
		`new\s+instructions)`,
)

// ValidateFragment checks a fragment for validity. Returns true if valid.
// An unknown kind is normalized to "lesson" rather than rejected since
// models occasionally invent labels.
func ValidateFragment(f *Fragment) bool {
	if f == nil {
		return false
	}
	text := strings.TrimSpace(f.Text)
	if len(text) < 3 || len(text) > 500 {
		return false
	}
	if injectionPattern.MatchString(text) {
		return false
	}
	f.Text = text
	f.Kind = strings.ToLower(strings.TrimSpace(f.Kind))
	if !validKinds[f.Kind] {
		f.Kind = "lesson"
	}
	if f.Page < 0 {
		f.Page = 0
	}
	return true
}

// ExtractionResult holds the validated fragments from one chunk.
type ExtractionResult struct {
	Index     int
	Fragments []Fragment
}
