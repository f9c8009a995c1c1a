package render

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/goliatone/go-wiki/internal/include"
)

func TestServiceRenderPageByAddressAndName(t *testing.T) {
	f := newRenderFixture(t)
	f.page(t, "HomePage", "hello *world*")
	service := NewService(f.webs, f.pages, f.renderer, "")

	for _, ref := range []string{"Wiki", "wiki"} {
		content, err := service.RenderPage(context.Background(), ref, "HomePage", "")
		if err != nil {
			t.Fatalf("render via %q: %v", ref, err)
		}
		if !strings.Contains(content.PreRendered, "<em>world</em>") {
			t.Fatalf("unexpected output: %q", content.PreRendered)
		}
	}
}

func TestServiceRenderPageErrors(t *testing.T) {
	f := newRenderFixture(t)
	service := NewService(f.webs, f.pages, f.renderer, include.ModeShow)

	if _, err := service.RenderPage(context.Background(), "nowhere", "HomePage", ""); !errors.Is(err, ErrWebNotFound) {
		t.Fatalf("expected ErrWebNotFound, got %v", err)
	}
	if _, err := service.RenderPage(context.Background(), "wiki", "Missing", ""); !errors.Is(err, ErrPageNotFound) {
		t.Fatalf("expected ErrPageNotFound, got %v", err)
	}
	if _, err := service.RenderPage(context.Background(), "nowhere", "HomePage", "html"); !errors.Is(err, include.ErrUnsupportedMode) {
		t.Fatalf("expected mode to be validated first, got %v", err)
	}
}
