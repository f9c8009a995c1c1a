package render

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"

	"github.com/goliatone/go-wiki/internal/chunks"
)

// MarkdownOptions configures the goldmark engine.
type MarkdownOptions struct {
	Extensions []string
	HardWraps  bool
}

// Heading is a table of contents entry taken from the document tree.
type Heading struct {
	Level  int
	Text   string
	Anchor string
	// Offset is where the heading text starts in the converted source.
	Offset int
}

// markdownEngine is stateless and safe to share between renders.
type markdownEngine struct {
	md goldmark.Markdown
}

func newMarkdownEngine(opts MarkdownOptions) *markdownEngine {
	rendererOptions := []renderer.Option{
		// Chunk output is substituted after conversion and may carry raw HTML.
		html.WithUnsafe(),
	}
	if opts.HardWraps {
		rendererOptions = append(rendererOptions, html.WithHardWraps())
	}

	engineOptions := []goldmark.Option{
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
		goldmark.WithRendererOptions(rendererOptions...),
	}
	if exts := collectExtensions(opts.Extensions); len(exts) > 0 {
		engineOptions = append(engineOptions, goldmark.WithExtensions(exts...))
	}

	return &markdownEngine{md: goldmark.New(engineOptions...)}
}

// convert renders source and returns the headings found on the way.
func (e *markdownEngine) convert(source []byte) (string, []Heading, error) {
	doc := e.md.Parser().Parse(text.NewReader(source))

	var (
		headings []Heading
		offset   int
	)
	err := ast.Walk(doc, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		heading, ok := node.(*ast.Heading)
		if !ok {
			return ast.WalkContinue, nil
		}
		if lines := heading.Lines(); lines.Len() > 0 {
			offset = lines.At(0).Start
		}
		entry := Heading{
			Level:  heading.Level,
			Text:   strings.TrimSpace(chunks.StripPlaceholders(nodeText(heading, source))),
			Offset: offset,
		}
		if id, ok := heading.AttributeString("id"); ok {
			if value, ok := id.([]byte); ok {
				entry.Anchor = string(value)
			}
		}
		headings = append(headings, entry)
		return ast.WalkSkipChildren, nil
	})
	if err != nil {
		return "", nil, fmt.Errorf("markdown walk: %w", err)
	}

	var buf bytes.Buffer
	if err := e.md.Renderer().Render(&buf, source, doc); err != nil {
		return "", nil, fmt.Errorf("markdown render: %w", err)
	}
	return buf.String(), headings, nil
}

func nodeText(node ast.Node, source []byte) string {
	var b strings.Builder
	_ = ast.Walk(node, func(child ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch n := child.(type) {
		case *ast.Text:
			b.Write(n.Segment.Value(source))
		case *ast.String:
			b.Write(n.Value)
		}
		return ast.WalkContinue, nil
	})
	return b.String()
}

var extensionRegistry = map[string]goldmark.Extender{
	"gfm":           extension.GFM,
	"table":         extension.Table,
	"tables":        extension.Table,
	"strikethrough": extension.Strikethrough,
	"linkify":       extension.Linkify,
	"autolink":      extension.Linkify,
	"tasklist":      extension.TaskList,
	"definition":    extension.DefinitionList,
	"footnote":      extension.Footnote,
	"typographer":   extension.Typographer,
}

// collectExtensions maps names to goldmark extenders. Unknown names are
// ignored; an empty list selects GFM.
func collectExtensions(names []string) []goldmark.Extender {
	if len(names) == 0 {
		return []goldmark.Extender{extension.GFM}
	}

	var extenders []goldmark.Extender
	seen := map[string]struct{}{}
	for _, name := range names {
		key := strings.ToLower(strings.TrimSpace(name))
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		ext, ok := extensionRegistry[key]
		if !ok {
			continue
		}
		extenders = append(extenders, ext)
		seen[key] = struct{}{}
	}
	return extenders
}

// KnownExtension reports whether name maps to a goldmark extension.
func KnownExtension(name string) bool {
	_, ok := extensionRegistry[strings.ToLower(strings.TrimSpace(name))]
	return ok
}
