package render

import (
	"strings"
	"testing"
)

func TestSlideshowKeepsIntroAsOwnSlide(t *testing.T) {
	out := slideshow("<p>intro</p>\n<h1>A</h1>\n<p>a</p>\n<h2 id=\"b\">B</h2>\n<h3>sub</h3>")

	if got := strings.Count(out, `<div class="slide">`); got != 3 {
		t.Fatalf("expected three slides, got %d: %q", got, out)
	}
	if !strings.Contains(out, "<h2 id=\"b\">B</h2>\n<h3>sub</h3>") {
		t.Fatalf("expected level three heading to stay in its slide: %q", out)
	}
}

func TestCollectExtensions(t *testing.T) {
	if got := collectExtensions(nil); len(got) != 1 {
		t.Fatalf("expected GFM default, got %d extensions", len(got))
	}
	if got := collectExtensions([]string{"table", "TABLE", "unknown", "footnote"}); len(got) != 2 {
		t.Fatalf("expected two extensions, got %d", len(got))
	}
	if !KnownExtension("Footnote") || KnownExtension("nope") {
		t.Fatalf("unexpected KnownExtension result")
	}
}
