package insight

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

var codeBlockRe = regexp.MustCompile("(?s)^```(?:json|markdown)?\\s*(.*?)\\s*```$")

func stripCodeBlock(s string) string {
	s = strings.TrimSpace(s)
	if m := codeBlockRe.FindStringSubmatch(s); len(m) > 1 {
		return m[1]
	}
	return s
}

// ParseFragments decodes a model response into validated fragments.
// Invalid fragments are dropped rather than failing the whole chunk.
func ParseFragments(raw string) ([]Fragment, error) {
	text := stripCodeBlock(raw)

	var fragments []Fragment
	if err := json.Unmarshal([]byte(text), &fragments); err != nil {
		return nil, fmt.Errorf("parse fragments json: %w (raw: %s)", err, truncate(text, 200))
	}

	valid := fragments[:0]
	for i := range fragments {
		if ValidateFragment(&fragments[i]) {
			valid = append(valid, fragments[i])
		}
	}
	return valid, nil
}

// ParseSections splits a Markdown synthesis response into sections on
// "## " headings. Text before the first heading becomes an untitled
// preamble section.
func ParseSections(raw string) []Section {
	text := stripCodeBlock(raw)

	var sections []Section
	current := Section{}
	flush := func() {
		body := strings.TrimSpace(current.Body)
		if current.Title != "" || body != "" {
			current.Body = body
			sections = append(sections, current)
		}
	}

	for _, line := range strings.Split(text, "\n") {
		if strings.HasPrefix(line, "## ") {
			flush()
			current = Section{Title: strings.TrimSpace(strings.TrimPrefix(line, "## "))}
			continue
		}
		if current.Body != "" {
			current.Body += "\n"
		}
		current.Body += line
	}
	flush()

	return sections
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
