package render

import (
	"regexp"
	"strings"
)

var slideBoundary = regexp.MustCompile(`<h[12][\s>]`)

// slideshow frames html as an S5 presentation with one slide per level one
// or level two section.
func slideshow(html string) string {
	var b strings.Builder
	b.WriteString(`<div class="presentation">` + "\n")

	starts := slideBoundary.FindAllStringIndex(html, -1)
	bounds := make([]int, 0, len(starts)+2)
	bounds = append(bounds, 0)
	for _, loc := range starts {
		if loc[0] > 0 {
			bounds = append(bounds, loc[0])
		}
	}
	bounds = append(bounds, len(html))

	for i := 0; i+1 < len(bounds); i++ {
		section := strings.TrimSpace(html[bounds[i]:bounds[i+1]])
		if section == "" {
			continue
		}
		b.WriteString(`<div class="slide">` + "\n")
		b.WriteString(section)
		b.WriteString("\n</div>\n")
	}

	b.WriteString("</div>\n")
	return b.String()
}
