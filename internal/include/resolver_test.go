package include

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/goliatone/go-wiki/internal/chunks"
	"github.com/goliatone/go-wiki/internal/pages"
	"github.com/goliatone/go-wiki/internal/webs"
	"github.com/google/uuid"
)

var (
	redirectPattern = regexp.MustCompile(`\[\[!redirects\s+([^\]]+?)\s*\]\]`)
	categoryPattern = regexp.MustCompile(`(?m):category:\s*(\w+)`)
	headingPattern  = regexp.MustCompile(`(?m)^# (.+)$`)
)

// stubRenderer renders a revision through the chunk engine with the include
// rule plus minimal metadata rules, tagging output with the entry point.
type stubRenderer struct {
	resolver *Resolver

	mu    sync.Mutex
	calls map[string]int
}

func newStubRenderer() *stubRenderer {
	return &stubRenderer{calls: map[string]int{}}
}

func (s *stubRenderer) Display(ctx context.Context, rc *ResolutionContext, target Target) (*chunks.Content, error) {
	return s.render(ctx, rc, target, "display")
}

func (s *stubRenderer) DisplayPublished(ctx context.Context, rc *ResolutionContext, target Target) (*chunks.Content, error) {
	return s.render(ctx, rc, target, "published")
}

func (s *stubRenderer) DisplayForExport(ctx context.Context, rc *ResolutionContext, target Target) (*chunks.Content, error) {
	return s.render(ctx, rc, target, "export")
}

func (s *stubRenderer) DisplaySlideshow(ctx context.Context, rc *ResolutionContext, target Target) (*chunks.Content, error) {
	return s.render(ctx, rc, target, "slideshow")
}

func (s *stubRenderer) count(entry string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[entry]
}

func (s *stubRenderer) render(ctx context.Context, rc *ResolutionContext, target Target, entry string) (*chunks.Content, error) {
	s.mu.Lock()
	s.calls[entry]++
	s.mu.Unlock()

	content := chunks.NewContent(target.Web, target.Page.Name)
	body := ""
	if target.Revision != nil {
		body = target.Revision.Content
	}
	html, err := renderBody(ctx, s.resolver, rc, content, body)
	if err != nil {
		return nil, err
	}
	content.PreRendered = entry + "(" + html + ")"
	return content, nil
}

func metadataRule(kind chunks.Kind, pattern *regexp.Regexp) chunks.Rule {
	return chunks.Rule{
		Kind:    kind,
		Pattern: pattern,
		Handler: func(_ context.Context, m chunks.Match, content *chunks.Content) (string, error) {
			content.AddChunk(&chunks.Chunk{Kind: kind, Text: m.Text, Target: m.Groups[1]})
			return "", nil
		},
	}
}

func renderBody(ctx context.Context, resolver *Resolver, rc *ResolutionContext, content *chunks.Content, body string) (string, error) {
	engine := chunks.NewEngine(
		resolver.Rule(rc),
		metadataRule(chunks.KindRedirect, redirectPattern),
		metadataRule(chunks.KindCategory, categoryPattern),
		metadataRule(chunks.KindHeading, headingPattern),
	)
	masked, err := engine.Process(ctx, body, content)
	if err != nil {
		return "", err
	}
	return masked.Unmask(masked.Source), nil
}

type countingWebs struct {
	webs.Service
	lookups atomic.Int32
}

func (c *countingWebs) GetByName(ctx context.Context, name string) (*webs.Web, error) {
	c.lookups.Add(1)
	return c.Service.GetByName(ctx, name)
}

func (c *countingWebs) GetByAddress(ctx context.Context, address string) (*webs.Web, error) {
	c.lookups.Add(1)
	return c.Service.GetByAddress(ctx, address)
}

type countingPages struct {
	pages.Service
	lookups atomic.Int32
}

func (c *countingPages) FindPage(ctx context.Context, webID uuid.UUID, name string) (*pages.Page, error) {
	c.lookups.Add(1)
	return c.Service.FindPage(ctx, webID, name)
}

type recordingMetrics struct {
	mu     sync.Mutex
	states []State
}

func (m *recordingMetrics) ObserveResolution(state State, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.states = append(m.states, state)
}

type resolverFixture struct {
	webs     *countingWebs
	pages    *countingPages
	renderer *stubRenderer
	resolver *Resolver
	metrics  *recordingMetrics
}

func newResolverFixture(t *testing.T, opts ...Option) *resolverFixture {
	t.Helper()
	f := &resolverFixture{
		webs:     &countingWebs{Service: webs.NewService(webs.NewMemoryRepository())},
		pages:    &countingPages{Service: pages.NewService(pages.NewMemoryPageRepository(), pages.NewMemoryRevisionRepository())},
		renderer: newStubRenderer(),
		metrics:  &recordingMetrics{},
	}
	opts = append([]Option{WithMetrics(f.metrics)}, opts...)
	f.resolver = NewResolver(f.webs, f.pages, f.renderer, opts...)
	f.renderer.resolver = f.resolver
	return f
}

func (f *resolverFixture) web(t *testing.T, name, password string, published bool) *webs.Web {
	t.Helper()
	web, err := f.webs.CreateWeb(context.Background(), webs.CreateWebInput{
		Name:      name,
		Address:   strings.ToLower(strings.ReplaceAll(name, " ", "-")),
		Password:  password,
		Published: published,
	})
	if err != nil {
		t.Fatalf("create web %s: %v", name, err)
	}
	return web
}

func (f *resolverFixture) page(t *testing.T, web *webs.Web, name, body string) {
	t.Helper()
	if _, err := f.pages.CreatePage(context.Background(), pages.CreatePageInput{
		WebID:   web.ID,
		Name:    name,
		Content: body,
	}); err != nil {
		t.Fatalf("create page %s: %v", name, err)
	}
}

// renderTop renders page in web the way a top-level request does.
func (f *resolverFixture) renderTop(t *testing.T, web *webs.Web, page string, mode Mode, policy Policy) (*chunks.Content, *ResolutionContext) {
	t.Helper()
	ctx := context.Background()
	rc := NewResolutionContext(web, page, mode, policy)
	found, err := f.pages.FindPage(ctx, web.ID, page)
	if err != nil {
		t.Fatalf("find %s: %v", page, err)
	}
	content, err := f.resolver.dispatcher.Render(ctx, rc, Target{Web: web, Page: found, Revision: found.Revision}, mode)
	if err != nil {
		t.Fatalf("render %s: %v", page, err)
	}
	return content, rc
}

func TestResolveSelfInclusionDetectsCycleInEveryMode(t *testing.T) {
	for _, mode := range Modes() {
		f := newResolverFixture(t)
		web := f.web(t, "Wiki", "", false)
		f.page(t, web, "Loop", "before [[!include Loop]] after")

		content, rc := f.renderTop(t, web, "Loop", mode, PolicyStack)
		want := "<em>Recursive include detected: Loop &#x2192; Loop</em>\n"
		if !strings.Contains(content.PreRendered, want) {
			t.Fatalf("mode %s: expected cycle diagnostic, got %q", mode, content.PreRendered)
		}
		if len(content.ChunksOf(chunks.KindInclude)) != 0 {
			t.Fatalf("mode %s: expected include chunk to be removed, got %+v", mode, content.Chunks())
		}
		if rc.Chain().Len() != 1 {
			t.Fatalf("mode %s: expected only the top-level frame to remain, got %v", mode, rc.Chain().Frames())
		}
	}
}

func TestResolveMutualInclusionTerminatesAtChainLengthTwo(t *testing.T) {
	f := newResolverFixture(t)
	web := f.web(t, "Wiki", "", false)
	f.page(t, web, "A", "a[[!include B]]")
	f.page(t, web, "B", "b[[!include A]]")

	rc := NewResolutionContext(web, "A", ModeShow, PolicyStack)
	including := chunks.NewContent(web, "A")
	var chainAtCycle int
	f.resolver.SetRenderer(&depthProbe{stubRenderer: f.renderer, seen: &chainAtCycle})

	result, err := f.resolver.Resolve(context.Background(), rc, Directive{PageName: "B"}, including)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if result.State != StateResolved {
		t.Fatalf("expected B to resolve, got %s", result.State)
	}
	if !strings.Contains(result.UnmaskText, "Recursive include detected: B &#x2192; B") {
		t.Fatalf("expected nested cycle diagnostic, got %q", result.UnmaskText)
	}
	if chainAtCycle != 2 {
		t.Fatalf("expected cycle to be caught with a chain of 2, got %d", chainAtCycle)
	}
	if rc.Chain().Len() != 1 {
		t.Fatalf("expected chain to unwind to the top-level page, got %v", rc.Chain().Frames())
	}
}

// depthProbe records the chain length seen while rendering nested pages.
type depthProbe struct {
	*stubRenderer
	seen *int
}

func (d *depthProbe) Display(ctx context.Context, rc *ResolutionContext, target Target) (*chunks.Content, error) {
	*d.seen = rc.Chain().Len()
	return d.stubRenderer.Display(ctx, rc, target)
}

func TestResolveAccessControl(t *testing.T) {
	f := newResolverFixture(t)
	home := f.web(t, "Home", "", false)
	secret := f.web(t, "Secret", "hunter2", false)
	f.page(t, secret, "Plans", "classified")

	including := chunks.NewContent(home, "Index")
	rc := NewResolutionContext(home, "Index", ModeShow, PolicyStack)
	result, err := f.resolver.Resolve(context.Background(), rc, Directive{Qualifier: "Secret", PageName: "Plans"}, including)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if result.State != StateForbidden || result.UnmaskText != "Access to Secret:Plans forbidden." {
		t.Fatalf("expected forbidden result, got %+v", result)
	}

	published := true
	if _, err := f.webs.UpdateWeb(context.Background(), webs.UpdateWebInput{ID: secret.ID, Published: &published}); err != nil {
		t.Fatalf("publish web: %v", err)
	}
	result, err = f.resolver.Resolve(context.Background(), rc, Directive{Qualifier: "Secret", PageName: "Plans"}, including)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if result.State != StateResolved || result.UnmaskText != "display(classified)" {
		t.Fatalf("expected published web to resolve, got %+v", result)
	}
}

func TestResolveFindsWebByAddress(t *testing.T) {
	f := newResolverFixture(t)
	home := f.web(t, "Home", "", false)
	docs := f.web(t, "Team Docs", "", false)
	f.page(t, docs, "Menu", "menu")

	rc := NewResolutionContext(home, "Index", ModeShow, PolicyStack)
	result, err := f.resolver.Resolve(context.Background(), rc, Directive{Qualifier: "team-docs", PageName: "Menu"}, chunks.NewContent(home, "Index"))
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if result.State != StateResolved || result.Target.Web.ID != docs.ID {
		t.Fatalf("expected address lookup to resolve docs web, got %+v", result)
	}
}

func TestResolveExcludesRedirectAndCategoryMetadata(t *testing.T) {
	f := newResolverFixture(t)
	web := f.web(t, "Wiki", "", false)
	f.page(t, web, "Host", "[[!include Part]]")
	f.page(t, web, "Part", "# Overview\n[[!redirects OldPart]]\n:category: drafts\nbody")

	content, _ := f.renderTop(t, web, "Host", ModeShow, PolicyStack)

	if got := content.ChunksOf(chunks.KindRedirect); len(got) != 0 {
		t.Fatalf("expected no redirect metadata, got %+v", got)
	}
	if got := content.ChunksOf(chunks.KindCategory); len(got) != 0 {
		t.Fatalf("expected no category metadata, got %+v", got)
	}
	headings := content.ChunksOf(chunks.KindHeading)
	if len(headings) != 1 || headings[0].Target != "Overview" {
		t.Fatalf("expected heading metadata to be merged, got %+v", content.Chunks())
	}
	if refs := content.References(); len(refs) != 1 || refs[0] != "Part" {
		t.Fatalf("expected include reference to Part, got %v", refs)
	}
}

func TestResolveMissingTargetForEachPolicy(t *testing.T) {
	for _, policy := range []Policy{PolicyStack, PolicyReset} {
		f := newResolverFixture(t)
		web := f.web(t, "Wiki", "", false)
		rc := NewResolutionContext(web, "Index", ModeShow, policy)

		result, err := f.resolver.Resolve(context.Background(), rc, Directive{PageName: "NoSuchPage"}, chunks.NewContent(web, "Index"))
		if err != nil {
			t.Fatalf("%s: resolve: %v", policy, err)
		}
		if result.State != StateTargetMissing || result.Message != "Could not include NoSuchPage" {
			t.Fatalf("%s: unexpected result %+v", policy, result)
		}
		if result.UnmaskText != "<em>Could not include NoSuchPage</em>\n" {
			t.Fatalf("%s: unexpected markup %q", policy, result.UnmaskText)
		}

		want := 1
		if policy == PolicyReset {
			want = 0
		}
		if rc.Chain().Len() != want {
			t.Fatalf("%s: expected chain length %d, got %v", policy, want, rc.Chain().Frames())
		}
	}
}

func TestResolveUnknownWebIsMissingTarget(t *testing.T) {
	f := newResolverFixture(t)
	web := f.web(t, "Wiki", "", false)
	rc := NewResolutionContext(web, "Index", ModeShow, PolicyStack)

	result, err := f.resolver.Resolve(context.Background(), rc, Directive{Qualifier: "Nowhere", PageName: "Page"}, chunks.NewContent(web, "Index"))
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if result.State != StateTargetMissing {
		t.Fatalf("expected missing target, got %+v", result)
	}
}

func TestResolveDispatchesEachModeToItsEntryPoint(t *testing.T) {
	entries := map[Mode]string{
		ModeShow:    "display",
		ModePublish: "published",
		ModeExport:  "export",
		ModeS5:      "slideshow",
	}
	for mode, entry := range entries {
		f := newResolverFixture(t)
		web := f.web(t, "Wiki", "", false)
		f.page(t, web, "Part", "text")

		rc := NewResolutionContext(web, "Index", mode, PolicyStack)
		result, err := f.resolver.Resolve(context.Background(), rc, Directive{PageName: "Part"}, chunks.NewContent(web, "Index"))
		if err != nil {
			t.Fatalf("%s: resolve: %v", mode, err)
		}
		if result.UnmaskText != entry+"(text)" {
			t.Fatalf("%s: expected %s entry point, got %q", mode, entry, result.UnmaskText)
		}
		for other, otherEntry := range entries {
			if other != mode && f.renderer.count(otherEntry) != 0 {
				t.Fatalf("%s: unexpected call to %s", mode, otherEntry)
			}
		}
	}
}

func TestResolveUnsupportedModeFailsBeforeLookup(t *testing.T) {
	f := newResolverFixture(t)
	web := f.web(t, "Wiki", "", false)
	f.page(t, web, "Part", "text")
	f.webs.lookups.Store(0)
	f.pages.lookups.Store(0)

	rc := NewResolutionContext(web, "Index", Mode("html"), PolicyStack)
	_, err := f.resolver.Resolve(context.Background(), rc, Directive{Qualifier: "Wiki", PageName: "Part"}, chunks.NewContent(web, "Index"))
	if !errors.Is(err, ErrUnsupportedMode) {
		t.Fatalf("expected ErrUnsupportedMode, got %v", err)
	}
	if f.webs.lookups.Load() != 0 || f.pages.lookups.Load() != 0 {
		t.Fatalf("expected no lookups, got webs=%d pages=%d", f.webs.lookups.Load(), f.pages.lookups.Load())
	}
}

func TestResolveDepthLimit(t *testing.T) {
	f := newResolverFixture(t, WithMaxDepth(2))
	web := f.web(t, "Wiki", "", false)
	f.page(t, web, "P0", "0[[!include P1]]")
	f.page(t, web, "P1", "1[[!include P2]]")
	f.page(t, web, "P2", "2[[!include P3]]")
	f.page(t, web, "P3", "3")

	content, rc := f.renderTop(t, web, "P0", ModeShow, PolicyStack)
	if !strings.Contains(content.PreRendered, "<em>Include depth limit exceeded: P3</em>") {
		t.Fatalf("expected depth diagnostic, got %q", content.PreRendered)
	}
	if rc.Depth() != 0 || rc.Chain().Len() != 1 {
		t.Fatalf("expected context to unwind, depth=%d chain=%v", rc.Depth(), rc.Chain().Frames())
	}
}

func TestResetPolicyCatchesCycleAfterSibling(t *testing.T) {
	// The sibling clears the chain; the next directive re-anchors A.
	f := newResolverFixture(t)
	web := f.web(t, "Wiki", "", false)
	f.page(t, web, "A", "[[!include Leaf]][[!include B]]")
	f.page(t, web, "B", "[[!include A]]")
	f.page(t, web, "Leaf", "leaf")

	content, rc := f.renderTop(t, web, "A", ModeShow, PolicyReset)
	if !strings.Contains(content.PreRendered, "display(leaf)") {
		t.Fatalf("expected sibling include to render, got %q", content.PreRendered)
	}
	if !strings.Contains(content.PreRendered, "Recursive include detected") {
		t.Fatalf("expected cycle to be detected, got %q", content.PreRendered)
	}
	if rc.Chain().Len() != 0 {
		t.Fatalf("expected reset policy to leave chain empty, got %v", rc.Chain().Frames())
	}
}

func TestConcurrentRendersDoNotShareChains(t *testing.T) {
	f := newResolverFixture(t)
	web := f.web(t, "Wiki", "", false)
	for i := 0; i < 8; i++ {
		f.page(t, web, fmt.Sprintf("Top%d", i), fmt.Sprintf("[[!include Shared]] top %d", i))
	}
	f.page(t, web, "Shared", "shared [[!include Leaf]]")
	f.page(t, web, "Leaf", "leaf")

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ctx := context.Background()
			name := fmt.Sprintf("Top%d", i)
			rc := NewResolutionContext(web, name, ModeShow, PolicyStack)
			page, err := f.pages.Service.FindPage(ctx, web.ID, name)
			if err != nil {
				errs <- err
				return
			}
			content, err := f.renderer.Display(ctx, rc, Target{Web: web, Page: page, Revision: page.Revision})
			if err != nil {
				errs <- err
				return
			}
			if strings.Contains(content.PreRendered, "Recursive include") {
				errs <- fmt.Errorf("%s: spurious cycle: %q", name, content.PreRendered)
				return
			}
			if rc.Chain().Len() != 1 {
				errs <- fmt.Errorf("%s: chain leaked: %v", name, rc.Chain().Frames())
			}
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatal(err)
	}
}

func TestHandlerSkipsMalformedMarkers(t *testing.T) {
	f := newResolverFixture(t)
	web := f.web(t, "Wiki", "", false)
	rc := NewResolutionContext(web, "Index", ModeShow, PolicyStack)
	content := chunks.NewContent(web, "Index")

	_, err := f.resolver.Handler(rc)(context.Background(), chunks.Match{Text: "[[!include web:]]", Groups: []string{"[[!include web:]]", "web:"}}, content)
	if !errors.Is(err, chunks.ErrSkip) {
		t.Fatalf("expected ErrSkip, got %v", err)
	}
	if len(content.Chunks()) != 0 {
		t.Fatalf("expected no chunk for malformed marker")
	}
}

func TestMetricsObserveEveryDirective(t *testing.T) {
	f := newResolverFixture(t)
	web := f.web(t, "Wiki", "", false)
	f.page(t, web, "Host", "[[!include Part]] [[!include Missing]] [[!include Host]]")
	f.page(t, web, "Part", "part")

	f.renderTop(t, web, "Host", ModeShow, PolicyStack)

	want := []State{StateResolved, StateTargetMissing, StateCycleDetected}
	if fmt.Sprint(f.metrics.states) != fmt.Sprint(want) {
		t.Fatalf("expected states %v, got %v", want, f.metrics.states)
	}
}
