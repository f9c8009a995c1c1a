package include

import (
	"errors"
	"regexp"
	"strings"
)

// Pattern matches an include marker. Group 1 holds the directive body
// (optional qualifier and the page name). Bodies made only of whitespace
// never match.
var Pattern = regexp.MustCompile(`(?i)\[\[!include\s+([^\]\s][^\]]*?)\s*\]\]`)

// ErrMalformedDirective reports a directive without a page name.
var ErrMalformedDirective = errors.New("include: malformed directive")

// Directive is the parsed form of one include marker.
type Directive struct {
	// Qualifier names the target web. Empty means the includer's own web.
	Qualifier string
	PageName  string
}

// HasQualifier reports whether the marker named a web explicitly.
func (d Directive) HasQualifier() bool {
	return d.Qualifier != ""
}

// Parse reads a directive body such as "Other Web: Page". The qualifier is
// the text before the last unescaped colon; `\:` stands for a literal colon.
func Parse(body string) (Directive, error) {
	qualifier, page := splitQualifier(body)
	directive := Directive{
		Qualifier: strings.TrimSpace(qualifier),
		PageName:  strings.TrimSpace(page),
	}
	if directive.PageName == "" {
		return Directive{}, ErrMalformedDirective
	}
	return directive, nil
}

// ParseMarker parses a full `[[!include ...]]` marker.
func ParseMarker(marker string) (Directive, error) {
	groups := Pattern.FindStringSubmatch(strings.TrimSpace(marker))
	if groups == nil {
		return Directive{}, ErrMalformedDirective
	}
	return Parse(groups[1])
}

func splitQualifier(body string) (string, string) {
	split := -1
	for i := 0; i < len(body); i++ {
		switch body[i] {
		case '\\':
			i++
		case ':':
			split = i
		}
	}
	if split < 0 {
		return "", unescapeColons(body)
	}
	return unescapeColons(body[:split]), unescapeColons(body[split+1:])
}

func unescapeColons(value string) string {
	return strings.ReplaceAll(value, `\:`, ":")
}
