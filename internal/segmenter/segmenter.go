// Package segmenter splits transcript text into bounded, overlapping
// chunks suitable for per-chunk LLM extraction.
package segmenter

import (
	"errors"

	"github.com/arifaulakh/AscentCast/internal/transcript"
)

var (
	ErrEmptyText      = errors.New("segmenter: empty text")
	ErrInvalidBudget  = errors.New("segmenter: chunk size must be positive")
	ErrInvalidOverlap = errors.New("segmenter: overlap must be non-negative and smaller than chunk size")
)

// maxLookback caps how far back a cut may be moved to land on a
// sentence boundary.
const maxLookback = 200

// Split breaks text into chunks of at most budget runes, consecutive
// chunks sharing overlap runes. Cuts prefer sentence boundaries near
// the budget limit. Offsets in the returned chunks are rune offsets
// into text.
func Split(text string, budget, overlap int) ([]transcript.Chunk, error) {
	if budget <= 0 {
		return nil, ErrInvalidBudget
	}
	if overlap < 0 || overlap >= budget {
		return nil, ErrInvalidOverlap
	}

	runes := []rune(text)
	n := len(runes)
	if n == 0 {
		return nil, ErrEmptyText
	}

	if n <= budget {
		return []transcript.Chunk{{Index: 0, Start: 0, End: n, Text: text}}, nil
	}

	lookback := budget / 8
	if lookback > maxLookback {
		lookback = maxLookback
	}

	var chunks []transcript.Chunk
	start := 0
	for start < n {
		end := start + budget
		if end >= n {
			end = n
		} else {
			// Snap back to a sentence or line boundary, but only
			// if the next chunk still starts past this one.
			if cut := boundaryBefore(runes, end, lookback); cut > start && cut-overlap > start {
				end = cut
			}
		}

		chunks = append(chunks, transcript.Chunk{
			Index: len(chunks),
			Start: start,
			End:   end,
			Text:  string(runes[start:end]),
		})

		if end >= n {
			break
		}
		start = end - overlap
	}

	return chunks, nil
}

// boundaryBefore looks back at most lookback runes before end for a
// sentence terminator or newline, returning the offset just after it.
// Returns 0 if no boundary is found in the window.
func boundaryBefore(runes []rune, end, lookback int) int {
	limit := end - lookback
	if limit < 0 {
		limit = 0
	}
	for i := end - 1; i >= limit; i-- {
		r := runes[i]
		if r == '\n' {
			return i + 1
		}
		if (r == '.' || r == '!' || r == '?') && i+1 < len(runes) {
			next := runes[i+1]
			if next == ' ' || next == '\n' || next == '\t' {
				return i + 2
			}
		}
	}
	return 0
}
