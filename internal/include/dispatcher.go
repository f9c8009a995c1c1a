package include

import (
	"context"
	"errors"

	"github.com/goliatone/go-wiki/internal/chunks"
	"github.com/goliatone/go-wiki/internal/pages"
	"github.com/goliatone/go-wiki/internal/webs"
)

// ErrRendererRequired reports a dispatcher built without a page renderer.
var ErrRendererRequired = errors.New("include: page renderer required")

// Target is a page resolved for inclusion, with its current revision.
type Target struct {
	Web      *webs.Web
	Page     *pages.Page
	Revision *pages.Revision
}

// PageRenderer renders a page revision into content. Each mode has its own
// entry point.
type PageRenderer interface {
	Display(ctx context.Context, rc *ResolutionContext, target Target) (*chunks.Content, error)
	DisplayPublished(ctx context.Context, rc *ResolutionContext, target Target) (*chunks.Content, error)
	DisplayForExport(ctx context.Context, rc *ResolutionContext, target Target) (*chunks.Content, error)
	DisplaySlideshow(ctx context.Context, rc *ResolutionContext, target Target) (*chunks.Content, error)
}

// Dispatcher routes a render to the entry point matching the mode.
type Dispatcher struct {
	renderer PageRenderer
}

func NewDispatcher(renderer PageRenderer) *Dispatcher {
	return &Dispatcher{renderer: renderer}
}

// Render validates mode before touching the renderer.
func (d *Dispatcher) Render(ctx context.Context, rc *ResolutionContext, target Target, mode Mode) (*chunks.Content, error) {
	if err := mode.Validate(); err != nil {
		return nil, err
	}
	if d == nil || d.renderer == nil {
		return nil, ErrRendererRequired
	}

	switch mode {
	case ModePublish:
		return d.renderer.DisplayPublished(ctx, rc, target)
	case ModeExport:
		return d.renderer.DisplayForExport(ctx, rc, target)
	case ModeS5:
		return d.renderer.DisplaySlideshow(ctx, rc, target)
	default:
		return d.renderer.Display(ctx, rc, target)
	}
}
