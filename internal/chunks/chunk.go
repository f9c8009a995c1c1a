package chunks

// Kind tags a metadata entry so merges can filter by type.
type Kind string

const (
	KindInclude  Kind = "include"
	KindWikiLink Kind = "wiki_link"
	KindRedirect Kind = "redirect"
	KindCategory Kind = "category"
	KindHeading  Kind = "heading"
)

// Chunk is a typed fact extracted from page markup, kept apart from the
// rendered text.
type Chunk struct {
	Kind Kind
	// Text is the raw markup the chunk was extracted from.
	Text string
	// Web is the web qualifier written in the markup, if any.
	Web string
	// Target is the referenced page, redirect target, category or heading text.
	Target string
	// Level and Anchor are set on headings only.
	Level  int
	Anchor string
}
