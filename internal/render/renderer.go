package render

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goliatone/go-wiki/internal/chunks"
	"github.com/goliatone/go-wiki/internal/include"
	"github.com/goliatone/go-wiki/internal/logging"
	"github.com/goliatone/go-wiki/internal/pages"
	"github.com/goliatone/go-wiki/internal/webs"
	"github.com/goliatone/go-wiki/pkg/interfaces"
)

var (
	ErrResolverRequired = errors.New("render: include resolver required")
	ErrPageRequired     = errors.New("render: page required")
)

// Option customises a Renderer.
type Option func(*Renderer)

// WithMarkdown sets the goldmark extensions and wrapping behaviour.
func WithMarkdown(opts MarkdownOptions) Option {
	return func(r *Renderer) {
		r.markdown = newMarkdownEngine(opts)
	}
}

// WithPolicy selects the inclusion chain policy used by Render.
func WithPolicy(policy include.Policy) Option {
	return func(r *Renderer) {
		if policy != "" {
			r.policy = policy
		}
	}
}

// WithLogger attaches a logger used for structured diagnostics.
func WithLogger(logger interfaces.Logger) Option {
	return func(r *Renderer) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithRoutes builds show and publish links from go-urlkit routes.
func WithRoutes(routes *Routes) Option {
	return func(r *Renderer) {
		r.routes = routes
	}
}

// WithNow overrides the clock used for render timings.
func WithNow(now func() time.Time) Option {
	return func(r *Renderer) {
		if now != nil {
			r.now = now
		}
	}
}

// Renderer turns page revisions into HTML with chunk metadata. It implements
// include.PageRenderer and registers itself with the resolver.
type Renderer struct {
	resolver *include.Resolver
	pages    include.PageLookup
	markdown *markdownEngine
	policy   include.Policy
	routes   *Routes
	logger   interfaces.Logger
	now      func() time.Time
}

// New builds a renderer and attaches it to resolver so nested includes are
// rendered by the same instance.
func New(resolver *include.Resolver, pageLookup include.PageLookup, opts ...Option) (*Renderer, error) {
	if resolver == nil {
		return nil, ErrResolverRequired
	}
	r := &Renderer{
		resolver: resolver,
		pages:    pageLookup,
		markdown: newMarkdownEngine(MarkdownOptions{}),
		policy:   include.PolicyStack,
		logger:   logging.NoOp(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	resolver.SetRenderer(r)
	return r, nil
}

// Render renders page as the top-level page of a request. A fresh
// resolution context is created for every call.
func (r *Renderer) Render(ctx context.Context, web *webs.Web, page *pages.Page, mode include.Mode) (*chunks.Content, error) {
	if mode == "" {
		mode = include.ModeShow
	}
	if err := mode.Validate(); err != nil {
		return nil, err
	}
	if page == nil {
		return nil, ErrPageRequired
	}

	rc := include.NewResolutionContext(web, page.Name, mode, r.policy)
	target := include.Target{Web: web, Page: page, Revision: page.Revision}
	return include.NewDispatcher(r).Render(ctx, rc, target, mode)
}

func (r *Renderer) Display(ctx context.Context, rc *include.ResolutionContext, target include.Target) (*chunks.Content, error) {
	return r.render(ctx, rc, target, include.ModeShow)
}

func (r *Renderer) DisplayPublished(ctx context.Context, rc *include.ResolutionContext, target include.Target) (*chunks.Content, error) {
	return r.render(ctx, rc, target, include.ModePublish)
}

func (r *Renderer) DisplayForExport(ctx context.Context, rc *include.ResolutionContext, target include.Target) (*chunks.Content, error) {
	return r.render(ctx, rc, target, include.ModeExport)
}

// DisplaySlideshow renders an S5 presentation. Included pages contribute
// their body only; the slide framing is applied once at the top level.
func (r *Renderer) DisplaySlideshow(ctx context.Context, rc *include.ResolutionContext, target include.Target) (*chunks.Content, error) {
	return r.render(ctx, rc, target, include.ModeS5)
}

func (r *Renderer) render(ctx context.Context, rc *include.ResolutionContext, target include.Target, mode include.Mode) (*chunks.Content, error) {
	if target.Page == nil {
		return nil, ErrPageRequired
	}
	started := r.now()
	logger := logging.WithFields(r.logger.WithContext(ctx), map[string]any{
		"web":   webAddress(target.Web),
		"page":  target.Page.Name,
		"mode":  mode.String(),
		"depth": rc.Depth(),
	})

	content := chunks.NewContent(target.Web, target.Page.Name)
	body := ""
	if target.Revision != nil {
		body = target.Revision.Content
	}

	engine := chunks.NewEngine(
		r.resolver.Rule(rc),
		redirectRule(),
		categoryRule(),
		linker{pages: r.pages, web: target.Web, mode: mode, routes: r.routes}.rule(),
	)
	masked, err := engine.Process(ctx, body, content)
	if err != nil {
		logger.Error("render.page.chunks_failed", "error", err)
		return nil, fmt.Errorf("render %s: %w", target.Page.Name, err)
	}

	converted, headings, err := r.markdown.convert([]byte(masked.Source))
	if err != nil {
		logger.Error("render.page.markdown_failed", "error", err)
		return nil, fmt.Errorf("render %s: %w", target.Page.Name, err)
	}
	own := make([]chunks.Placed, 0, len(headings))
	for _, heading := range headings {
		own = append(own, chunks.Placed{
			Offset: heading.Offset,
			Chunk: &chunks.Chunk{
				Kind:   chunks.KindHeading,
				Target: heading.Text,
				Level:  heading.Level,
				Anchor: heading.Anchor,
			},
		})
	}
	masked.PlaceHeadings(content, own)

	output := masked.Unmask(converted)
	if mode == include.ModeS5 && rc.Depth() == 0 {
		output = slideshow(output)
	}
	content.PreRendered = output

	logger.Debug("render.page.completed",
		"chunks", masked.Len(),
		"duration_ms", r.now().Sub(started).Milliseconds(),
	)
	return content, nil
}

func webAddress(web *webs.Web) string {
	if web == nil {
		return ""
	}
	return web.Address
}
