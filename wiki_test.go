package wiki_test

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/goliatone/go-command/dispatcher"

	wiki "github.com/goliatone/go-wiki"
	"github.com/goliatone/go-wiki/internal/webs"
)

func newFixtureModule(t *testing.T, mutate func(*wiki.Config)) *wiki.Module {
	t.Helper()

	cfg := wiki.DefaultConfig()
	if mutate != nil {
		mutate(&cfg)
	}
	module, err := wiki.New(cfg)
	if err != nil {
		t.Fatalf("new module: %v", err)
	}
	t.Cleanup(func() { _ = module.Close() })

	result, err := module.LoadFixtures(context.Background(), os.DirFS("internal/fixtures/testdata/wiki"))
	if err != nil {
		t.Fatalf("load fixtures: %v", err)
	}
	if len(result.Webs) != 2 {
		t.Fatalf("expected 2 fixture webs, got %d", len(result.Webs))
	}
	return module
}

func TestModuleRendersIncludesAcrossWebs(t *testing.T) {
	module := newFixtureModule(t, nil)

	content, err := module.Render(context.Background(), "main", "HomePage", wiki.ModeShow)
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	html := content.PreRendered
	for _, want := range []string{
		"Welcome",
		"Access to Private:Plans forbidden.",
		"Could not include NoSuchPage",
		`class="existingWikiWord"`,
	} {
		if !strings.Contains(html, want) {
			t.Fatalf("expected %q in output, got %q", want, html)
		}
	}
	if strings.Contains(html, ":category:") {
		t.Fatalf("expected category marker to be consumed, got %q", html)
	}
	if got := content.Categories(); len(got) != 0 {
		t.Fatalf("expected included categories to be dropped, got %v", got)
	}

	refs := content.References()
	if !containsRef(refs, "Menu") {
		t.Fatalf("expected Menu in references, got %v", refs)
	}
}

func TestModulePublishedWebAllowsInclude(t *testing.T) {
	module := newFixtureModule(t, nil)
	ctx := context.Background()

	private, err := module.Webs().GetByAddress(ctx, "private")
	if err != nil {
		t.Fatalf("get private web: %v", err)
	}
	published := true
	if _, err := module.Webs().UpdateWeb(ctx, webs.UpdateWebInput{ID: private.ID, Published: &published}); err != nil {
		t.Fatalf("publish web: %v", err)
	}

	content, err := module.Render(ctx, "Main", "HomePage", "")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(content.PreRendered, "Top secret plans.") {
		t.Fatalf("expected published page to be included, got %q", content.PreRendered)
	}
}

func TestModuleRejectsUnsupportedMode(t *testing.T) {
	module := newFixtureModule(t, nil)

	_, err := module.Render(context.Background(), "main", "HomePage", wiki.Mode("print"))
	if !errors.Is(err, wiki.ErrUnsupportedMode) {
		t.Fatalf("expected ErrUnsupportedMode, got %v", err)
	}
}

func TestModuleRejectsInvalidConfig(t *testing.T) {
	cfg := wiki.DefaultConfig()
	cfg.Render.DefaultMode = "print"

	if _, err := wiki.New(cfg); !errors.Is(err, wiki.ErrRenderModeInvalid) {
		t.Fatalf("expected ErrRenderModeInvalid, got %v", err)
	}
}

func TestModuleDispatchesRenderCommand(t *testing.T) {
	module := newFixtureModule(t, func(cfg *wiki.Config) {
		cfg.Render.ChainPolicy = string(wiki.PolicyReset)
	})

	unsubscribe := module.RegisterCommands(0)
	t.Cleanup(unsubscribe)

	result := &wiki.RenderResult{}
	cmd := wiki.RenderPageCommand{Web: "main", Page: "Menu", Mode: "export", Result: result}
	if err := dispatcher.Dispatch(context.Background(), cmd); err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if result.Content == nil {
		t.Fatalf("expected dispatched command to populate result")
	}
	if !strings.Contains(result.Content.PreRendered, `.html"`) {
		t.Fatalf("expected export link, got %q", result.Content.PreRendered)
	}
}

func containsRef(refs []string, name string) bool {
	for _, ref := range refs {
		if ref == name {
			return true
		}
	}
	return false
}
