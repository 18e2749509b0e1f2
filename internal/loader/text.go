package loader

import (
	"bufio"
	"io"
	"strings"

	"github.com/arifaulakh/AscentCast/internal/transcript"
)

// TextParser handles plain text transcripts.
type TextParser struct{}

func (p *TextParser) Parse(r io.Reader, filename string) (*transcript.Document, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var paragraphs []string
	var current strings.Builder

	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			if current.Len() > 0 {
				paragraphs = append(paragraphs, current.String())
				current.Reset()
			}
		} else {
			if current.Len() > 0 {
				current.WriteString("\n")
			}
			current.WriteString(line)
		}
	}
	if current.Len() > 0 {
		paragraphs = append(paragraphs, current.String())
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return singlePageDocument(strings.TrimSuffix(filename, ".txt"), strings.Join(paragraphs, "\n\n")), nil
}

// singlePageDocument builds a Document for formats without page structure.
func singlePageDocument(title, text string) *transcript.Document {
	doc := &transcript.Document{Title: title, Text: text}
	if text != "" {
		doc.Pages = []transcript.PageMarker{{Page: 1, Offset: 0}}
	}
	return doc
}
