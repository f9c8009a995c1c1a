package chunks

import (
	"context"
	"errors"
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"
)

// placeholderFormat marks a replaced chunk in the masked source. The token is
// plain text so markdown keeps it inside the surrounding paragraph.
const placeholderFormat = "WIKICHUNK%dEND"

var placeholderPattern = regexp.MustCompile(`WIKICHUNK\d+END`)

// ErrSkip tells the engine to leave the matched text unchanged.
var ErrSkip = errors.New("chunks: skip match")

// Match is one pattern hit inside the page source.
type Match struct {
	Kind   Kind
	Text   string
	Groups []string
	Start  int
	End    int
}

// Handler turns a match into replacement text. Handlers record metadata on
// content themselves.
type Handler func(ctx context.Context, match Match, content *Content) (string, error)

// Rule binds a pattern to its handler. Earlier rules win overlapping matches
// that start at the same offset.
type Rule struct {
	Kind    Kind
	Pattern *regexp.Regexp
	Handler Handler
	// LineStart restricts matches to the beginning of a line.
	LineStart bool
}

// Engine discovers chunks in page source and masks them with placeholders.
type Engine struct {
	rules []Rule
}

// NewEngine builds an engine applying rules in order of precedence.
func NewEngine(rules ...Rule) *Engine {
	return &Engine{rules: rules}
}

// Masked is page source with chunks replaced by placeholders.
type Masked struct {
	Source       string
	replacements []string
	// offsets[i] is where placeholder i starts in Source. headingMarks[i]
	// counts the heading chunks on content once handler i returned.
	offsets      []int
	headingMarks []int
	headingBase  int
}

// Placed is a chunk anchored at an offset of Masked.Source.
type Placed struct {
	Offset int
	Chunk  *Chunk
}

// Process runs every rule over source. Handlers run in document order.
func (e *Engine) Process(ctx context.Context, source string, content *Content) (*Masked, error) {
	matches := e.collect(source)

	var (
		builder      strings.Builder
		replacements []string
		offsets      []int
		marks        []int
		position     int
	)
	base := headingCount(content)
	for _, m := range matches {
		rule := e.rules[m.rule]
		text, err := rule.Handler(ctx, m.Match, content)
		if errors.Is(err, ErrSkip) {
			continue
		}
		if err != nil {
			return nil, err
		}

		builder.WriteString(source[position:m.Start])
		offsets = append(offsets, builder.Len())
		marks = append(marks, headingCount(content))
		builder.WriteString(fmt.Sprintf(placeholderFormat, len(replacements)))
		replacements = append(replacements, text)
		position = m.End
	}
	builder.WriteString(source[position:])

	return &Masked{
		Source:       builder.String(),
		replacements: replacements,
		offsets:      offsets,
		headingMarks: marks,
		headingBase:  base,
	}, nil
}

// PlaceHeadings puts the heading chunks of content in document order. own
// holds the page's headings anchored in Source; headings merged by a
// handler take the offset of that handler's placeholder.
func (m *Masked) PlaceHeadings(content *Content, own []Placed) {
	if content == nil {
		return
	}
	merged := content.ChunksOf(KindHeading)
	content.DeleteChunks(KindHeading)

	placed := make([]Placed, 0, len(merged)+len(own))
	prev := 0
	if m != nil {
		prev = min(m.headingBase, len(merged))
		for _, chunk := range merged[:prev] {
			placed = append(placed, Placed{Offset: -1, Chunk: chunk})
		}
		for idx, mark := range m.headingMarks {
			mark = min(max(mark, prev), len(merged))
			for _, chunk := range merged[prev:mark] {
				placed = append(placed, Placed{Offset: m.offsets[idx], Chunk: chunk})
			}
			prev = mark
		}
	}
	for _, chunk := range merged[prev:] {
		placed = append(placed, Placed{Offset: math.MaxInt, Chunk: chunk})
	}
	placed = append(placed, own...)

	sort.SliceStable(placed, func(i, j int) bool {
		return placed[i].Offset < placed[j].Offset
	})
	for _, p := range placed {
		content.AddChunk(p.Chunk)
	}
}

func headingCount(content *Content) int {
	if content == nil {
		return 0
	}
	return len(content.ChunksOf(KindHeading))
}

// Unmask swaps placeholders in rendered for the handler output. A paragraph
// holding nothing but one placeholder is replaced as a whole, so block output
// is not wrapped in <p>.
func (m *Masked) Unmask(rendered string) string {
	if m == nil || len(m.replacements) == 0 {
		return rendered
	}
	pairs := make([]string, 0, len(m.replacements)*4)
	for idx, text := range m.replacements {
		placeholder := fmt.Sprintf(placeholderFormat, idx)
		pairs = append(pairs, "<p>"+placeholder+"</p>", text)
	}
	for idx, text := range m.replacements {
		pairs = append(pairs, fmt.Sprintf(placeholderFormat, idx), text)
	}
	return strings.NewReplacer(pairs...).Replace(rendered)
}

// StripPlaceholders removes every placeholder from text.
func StripPlaceholders(text string) string {
	return placeholderPattern.ReplaceAllString(text, "")
}

// Len reports how many chunks were masked.
func (m *Masked) Len() int {
	if m == nil {
		return 0
	}
	return len(m.replacements)
}

type ruleMatch struct {
	Match
	rule int
}

func (e *Engine) collect(source string) []ruleMatch {
	var found []ruleMatch
	for idx, rule := range e.rules {
		for _, loc := range rule.Pattern.FindAllStringSubmatchIndex(source, -1) {
			if rule.LineStart && loc[0] > 0 && source[loc[0]-1] != '\n' {
				continue
			}
			groups := make([]string, 0, len(loc)/2)
			for g := 0; g < len(loc); g += 2 {
				if loc[g] < 0 {
					groups = append(groups, "")
					continue
				}
				groups = append(groups, source[loc[g]:loc[g+1]])
			}
			found = append(found, ruleMatch{
				Match: Match{
					Kind:   rule.Kind,
					Text:   groups[0],
					Groups: groups,
					Start:  loc[0],
					End:    loc[1],
				},
				rule: idx,
			})
		}
	}

	sort.SliceStable(found, func(i, j int) bool {
		if found[i].Start != found[j].Start {
			return found[i].Start < found[j].Start
		}
		return found[i].rule < found[j].rule
	})

	out := found[:0]
	end := 0
	for _, m := range found {
		if m.Start < end {
			continue
		}
		out = append(out, m)
		end = m.End
	}
	return out
}
