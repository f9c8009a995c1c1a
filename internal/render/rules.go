package render

import (
	"context"
	"fmt"
	"html"
	"net/url"
	"regexp"
	"strings"

	"github.com/goliatone/go-slug"

	"github.com/goliatone/go-wiki/internal/chunks"
	"github.com/goliatone/go-wiki/internal/include"
	"github.com/goliatone/go-wiki/internal/pages"
	"github.com/goliatone/go-wiki/internal/webs"
)

var (
	redirectPattern = regexp.MustCompile(`(?i)\[\[!redirects\s+([^\]\s][^\]]*?)\s*\]\]`)
	categoryPattern = regexp.MustCompile(`(?mi)^:category\s*:(.*)$`)
	wikiLinkPattern = regexp.MustCompile(`\[\[([^\]|!\s][^\]|]*?)\s*(?:\|\s*([^\]]*?)\s*)?\]\]`)
)

func redirectRule() chunks.Rule {
	return chunks.Rule{
		Kind:    chunks.KindRedirect,
		Pattern: redirectPattern,
		Handler: func(_ context.Context, m chunks.Match, content *chunks.Content) (string, error) {
			content.AddChunk(&chunks.Chunk{
				Kind:   chunks.KindRedirect,
				Text:   m.Text,
				Target: strings.TrimSpace(m.Groups[1]),
			})
			return "", nil
		},
	}
}

func categoryRule() chunks.Rule {
	return chunks.Rule{
		Kind:      chunks.KindCategory,
		Pattern:   categoryPattern,
		LineStart: true,
		Handler: func(_ context.Context, m chunks.Match, content *chunks.Content) (string, error) {
			var names []string
			for _, name := range strings.Split(m.Groups[1], ",") {
				name = strings.TrimSpace(name)
				if name == "" {
					continue
				}
				names = append(names, name)
				content.AddChunk(&chunks.Chunk{Kind: chunks.KindCategory, Text: m.Text, Target: name})
			}
			if len(names) == 0 {
				return "", chunks.ErrSkip
			}
			return fmt.Sprintf(`<div class="property">category: %s</div>`, html.EscapeString(strings.Join(names, ", "))), nil
		},
	}
}

// linker builds wiki link markup for one web and mode.
type linker struct {
	pages  include.PageLookup
	web    *webs.Web
	mode   include.Mode
	routes *Routes
}

func (l linker) rule() chunks.Rule {
	return chunks.Rule{
		Kind:    chunks.KindWikiLink,
		Pattern: wikiLinkPattern,
		Handler: l.handle,
	}
}

func (l linker) handle(ctx context.Context, m chunks.Match, content *chunks.Content) (string, error) {
	name := strings.TrimSpace(m.Groups[1])
	label := name
	if len(m.Groups) > 2 && strings.TrimSpace(m.Groups[2]) != "" {
		label = strings.TrimSpace(m.Groups[2])
	}

	content.AddChunk(&chunks.Chunk{Kind: chunks.KindWikiLink, Text: m.Text, Target: name})

	exists, err := l.exists(ctx, name)
	if err != nil {
		return "", err
	}
	return l.markup(name, label, exists), nil
}

func (l linker) exists(ctx context.Context, name string) (bool, error) {
	if l.web == nil || l.pages == nil {
		return false, nil
	}
	if _, err := l.pages.FindPage(ctx, l.web.ID, name); err != nil {
		if pages.IsNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (l linker) markup(name, label string, exists bool) string {
	escaped := html.EscapeString(label)
	if !exists {
		if l.mode == include.ModeShow || l.mode == include.ModeS5 {
			return fmt.Sprintf(`<span class="newWikiWord">%s<a href="%s">?</a></span>`, escaped, html.EscapeString(l.href(name)))
		}
		return fmt.Sprintf(`<span class="newWikiWord">%s</span>`, escaped)
	}
	return fmt.Sprintf(`<a class="existingWikiWord" href="%s">%s</a>`, html.EscapeString(l.href(name)), escaped)
}

func (l linker) href(name string) string {
	address := ""
	if l.web != nil {
		address = l.web.Address
	}
	if l.mode == include.ModeExport {
		return exportFileName(name)
	}
	if href, ok := l.routes.href(l.mode, address, name); ok {
		return href
	}
	switch l.mode {
	case include.ModePublish:
		return "/" + address + "/published/" + url.PathEscape(name)
	default:
		return "/" + address + "/show/" + url.PathEscape(name)
	}
}

func exportFileName(name string) string {
	normalized, err := slug.Normalize(name)
	if err != nil || normalized == "" {
		normalized = url.PathEscape(name)
	}
	return normalized + ".html"
}
