package transcript

// PageMarker records where a source page begins within Document.Text,
// measured in runes.
type PageMarker struct {
	Page   int
	Offset int
}

// Document is a loaded transcript: the full ordered text plus page
// markers pointing back into the source file. Immutable once built.
type Document struct {
	Title string
	Text  string
	Pages []PageMarker
}

// PageAt returns the source page containing the given rune offset,
// or 0 when the document carries no page information.
func (d *Document) PageAt(offset int) int {
	page := 0
	for _, m := range d.Pages {
		if m.Offset > offset {
			break
		}
		page = m.Page
	}
	return page
}

// Chunk is a contiguous rune span of a Document prepared for one
// inference call. Start/End are rune offsets into Document.Text.
type Chunk struct {
	Index int
	Start int
	End   int
	Text  string
}
