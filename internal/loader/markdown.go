package loader

import (
	"bytes"
	"io"
	"strings"

	"github.com/arifaulakh/AscentCast/internal/transcript"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// MarkdownParser handles Markdown transcripts using goldmark. Headings
// (often speaker or segment labels in exported transcripts) are kept
// inline so surrounding context survives chunking.
type MarkdownParser struct{}

func (p *MarkdownParser) Parse(r io.Reader, filename string) (*transcript.Document, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	md := goldmark.New()
	reader := text.NewReader(src)
	doc := md.Parser().Parse(reader)

	fallbackTitle := strings.TrimSuffix(strings.TrimSuffix(filename, ".md"), ".markdown")
	title := fallbackTitle
	var out strings.Builder

	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		var block string
		if h, ok := n.(*ast.Heading); ok {
			block = string(h.Text(src))
			if h.Level == 1 && title == fallbackTitle && block != "" {
				title = block
			}
		} else {
			block = extractText(n, src)
		}
		if block == "" {
			continue
		}
		if out.Len() > 0 {
			out.WriteString("\n\n")
		}
		out.WriteString(block)
	}

	return singlePageDocument(title, out.String()), nil
}

// extractText gets the text content of a goldmark AST node. Leaf
// blocks are read from their source lines; container blocks (lists,
// blockquotes) recurse into their children.
func extractText(n ast.Node, src []byte) string {
	var buf bytes.Buffer
	if n.Type() == ast.TypeBlock && n.Lines().Len() > 0 {
		lines := n.Lines()
		for i := 0; i < lines.Len(); i++ {
			line := lines.At(i)
			buf.Write(line.Value(src))
		}
		return strings.TrimSpace(buf.String())
	}
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if t, ok := c.(*ast.Text); ok {
			buf.Write(t.Value(src))
			if t.HardLineBreak() || t.SoftLineBreak() {
				buf.WriteByte('\n')
			}
			continue
		}
		if s := extractText(c, src); s != "" {
			if buf.Len() > 0 {
				buf.WriteByte('\n')
			}
			buf.WriteString(s)
		}
	}
	return strings.TrimSpace(buf.String())
}
