package render

import (
	"context"
	"errors"
	"strings"

	"github.com/goliatone/go-wiki/internal/chunks"
	"github.com/goliatone/go-wiki/internal/include"
	"github.com/goliatone/go-wiki/internal/pages"
	"github.com/goliatone/go-wiki/internal/webs"
)

var (
	ErrWebNotFound  = errors.New("render: web not found")
	ErrPageNotFound = errors.New("render: page not found")
)

// WebResolver finds a web by name or address.
type WebResolver interface {
	Lookup(ctx context.Context, ref string) (*webs.Web, error)
}

// Service renders pages addressed by web reference and page name.
type Service struct {
	webs        WebResolver
	pages       include.PageLookup
	renderer    *Renderer
	defaultMode include.Mode
}

// NewService builds a page service. An empty default mode selects show.
func NewService(webResolver WebResolver, pageLookup include.PageLookup, renderer *Renderer, defaultMode include.Mode) *Service {
	if defaultMode == "" {
		defaultMode = include.ModeShow
	}
	return &Service{
		webs:        webResolver,
		pages:       pageLookup,
		renderer:    renderer,
		defaultMode: defaultMode,
	}
}

// RenderPage renders pageName from the web named or addressed by webRef.
// The mode is validated before any lookup.
func (s *Service) RenderPage(ctx context.Context, webRef, pageName string, mode include.Mode) (*chunks.Content, error) {
	if mode == "" {
		mode = s.defaultMode
	}
	if err := mode.Validate(); err != nil {
		return nil, err
	}

	web, err := s.webs.Lookup(ctx, webRef)
	if err != nil {
		if webs.IsNotFound(err) {
			return nil, errors.Join(ErrWebNotFound, err)
		}
		return nil, err
	}
	page, err := s.pages.FindPage(ctx, web.ID, strings.TrimSpace(pageName))
	if err != nil {
		if pages.IsNotFound(err) {
			return nil, errors.Join(ErrPageNotFound, err)
		}
		return nil, err
	}
	return s.renderer.Render(ctx, web, page, mode)
}
