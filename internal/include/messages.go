package include

import (
	"fmt"
	"html"
)

func missingMessage(page string) string {
	return "Could not include " + page
}

func missingMarkup(page string) string {
	return "<em>Could not include " + html.EscapeString(page) + "</em>\n"
}

func cycleMessage(includer string) string {
	return fmt.Sprintf("Recursive include detected: %s -> %s", includer, includer)
}

func cycleMarkup(includer string) string {
	escaped := html.EscapeString(includer)
	return "<em>Recursive include detected: " + escaped + " &#x2192; " + escaped + "</em>\n"
}

func forbiddenMessage(web, page string) string {
	return fmt.Sprintf("Access to %s:%s forbidden.", web, page)
}

func forbiddenMarkup(web, page string) string {
	return html.EscapeString(forbiddenMessage(web, page))
}

func depthMessage(page string) string {
	return "Include depth limit exceeded: " + page
}

func depthMarkup(page string) string {
	return "<em>Include depth limit exceeded: " + html.EscapeString(page) + "</em>\n"
}
