package insight

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Section is one titled block of the synthesized report.
type Section struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// Omission records a chunk whose extraction was skipped after
// exhausting retries.
type Omission struct {
	Index  int    `json:"index"`
	Reason string `json:"reason"`
}

// Provenance describes how a report was produced.
type Provenance struct {
	Title         string     `json:"title"`
	Model         string     `json:"model"`
	ChunkCount    int        `json:"chunk_count"`
	FragmentCount int        `json:"fragment_count"`
	Omitted       []Omission `json:"omitted,omitempty"`
	DurationMs    int64      `json:"duration_ms"`
	GeneratedAt   time.Time  `json:"generated_at"`
}

// Report is the final synthesized output for one transcript.
type Report struct {
	Sections   []Section  `json:"sections"`
	Partial    bool       `json:"partial"`
	Provenance Provenance `json:"provenance"`
}

// Markdown renders the report as a Markdown document, including a
// provenance footer.
func (r *Report) Markdown() string {
	var sb strings.Builder
	if r.Provenance.Title != "" {
		sb.WriteString("# Career Insights: ")
		sb.WriteString(r.Provenance.Title)
		sb.WriteString("\n\n")
	}
	if r.Partial {
		sb.WriteString("> **Note:** this report is partial. ")
		sb.WriteString(fmt.Sprintf("%d of %d transcript segments could not be analyzed.\n\n",
			len(r.Provenance.Omitted), r.Provenance.ChunkCount))
	}
	for _, s := range r.Sections {
		if s.Title != "" {
			sb.WriteString("## ")
			sb.WriteString(s.Title)
			sb.WriteString("\n\n")
		}
		sb.WriteString(s.Body)
		sb.WriteString("\n\n")
	}

	sb.WriteString("---\n\n")
	sb.WriteString(fmt.Sprintf("*Generated %s by %s from %d segments (%d insights)",
		r.Provenance.GeneratedAt.Format(time.RFC3339),
		r.Provenance.Model,
		r.Provenance.ChunkCount,
		r.Provenance.FragmentCount))
	if len(r.Provenance.Omitted) > 0 {
		var idx []string
		for _, o := range r.Provenance.Omitted {
			idx = append(idx, fmt.Sprintf("%d", o.Index+1))
		}
		sb.WriteString(fmt.Sprintf("; segments %s omitted", strings.Join(idx, ", ")))
	}
	sb.WriteString(".*\n")
	return sb.String()
}

// WriteMarkdownAtomic writes the rendered report via a temp file and
// rename, so readers never observe a half-written report.
func (r *Report) WriteMarkdownAtomic(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create report dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, "tmp-report-*.md")
	if err != nil {
		return fmt.Errorf("create temp report: %w", err)
	}
	if _, err := tmp.WriteString(r.Markdown()); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("write temp report: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp report: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename temp report: %w", err)
	}
	return nil
}
