package rendercmd

import (
	"context"
	"errors"
	"fmt"
	"testing"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-wiki/internal/chunks"
	"github.com/goliatone/go-wiki/internal/commands"
	"github.com/goliatone/go-wiki/internal/include"
	"github.com/goliatone/go-wiki/internal/render"
)

type renderCall struct {
	web, page string
	mode      include.Mode
}

type stubRenderer struct {
	calls []renderCall
	err   error
}

func (s *stubRenderer) RenderPage(_ context.Context, webRef, pageName string, mode include.Mode) (*chunks.Content, error) {
	s.calls = append(s.calls, renderCall{web: webRef, page: pageName, mode: mode})
	if s.err != nil {
		return nil, s.err
	}
	content := chunks.NewContent(nil, pageName)
	content.PreRendered = "<p>" + pageName + "</p>"
	return content, nil
}

func TestRenderPageHandlerStoresResult(t *testing.T) {
	renderer := &stubRenderer{}
	handler := NewRenderPageHandler(renderer, commands.CommandLogger(nil, "render"))

	result := &RenderResult{}
	msg := RenderPageCommand{Web: " main ", Page: "HomePage", Mode: "Publish", Result: result}
	if err := handler.Execute(context.Background(), msg); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if len(renderer.calls) != 1 {
		t.Fatalf("expected one render call, got %d", len(renderer.calls))
	}
	call := renderer.calls[0]
	if call.web != "main" || call.page != "HomePage" || call.mode != include.ModePublish {
		t.Fatalf("unexpected call %+v", call)
	}
	if result.Content == nil || result.Content.PreRendered != "<p>HomePage</p>" {
		t.Fatalf("expected rendered content in result, got %+v", result.Content)
	}
}

func TestRenderPageHandlerLeavesDefaultModeToRenderer(t *testing.T) {
	renderer := &stubRenderer{}
	handler := NewRenderPageHandler(renderer, nil)

	if err := handler.Execute(context.Background(), RenderPageCommand{Web: "main", Page: "HomePage"}); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if renderer.calls[0].mode != "" {
		t.Fatalf("expected empty mode to pass through, got %q", renderer.calls[0].mode)
	}
}

func TestRenderPageHandlerValidationError(t *testing.T) {
	renderer := &stubRenderer{}
	handler := NewRenderPageHandler(renderer, nil)

	for _, msg := range []RenderPageCommand{
		{Page: "HomePage"},
		{Web: "main", Page: "   "},
		{Web: "main", Page: "HomePage", Mode: "pdf"},
	} {
		err := handler.Execute(context.Background(), msg)
		if !goerrors.IsCategory(err, goerrors.CategoryValidation) {
			t.Fatalf("expected validation error for %+v, got %v", msg, err)
		}
	}
	if len(renderer.calls) != 0 {
		t.Fatalf("expected renderer not to be called, got %d calls", len(renderer.calls))
	}
}

func TestRenderPageHandlerWrapsRendererError(t *testing.T) {
	renderErr := errors.New("storage offline")
	handler := NewRenderPageHandler(&stubRenderer{err: renderErr}, nil)

	err := handler.Execute(context.Background(), RenderPageCommand{Web: "main", Page: "HomePage"})
	if !errors.Is(err, renderErr) {
		t.Fatalf("expected renderer error, got %v", err)
	}
	if !goerrors.IsCategory(err, goerrors.CategoryCommand) {
		t.Fatalf("expected command category, got %v", err)
	}
}

func TestRenderPageHandlerTagsMissingPage(t *testing.T) {
	missing := fmt.Errorf("%w: HomePage", render.ErrPageNotFound)
	handler := NewRenderPageHandler(&stubRenderer{err: missing}, nil)

	err := handler.Execute(context.Background(), RenderPageCommand{Web: "main", Page: "HomePage"})
	if !errors.Is(err, render.ErrPageNotFound) {
		t.Fatalf("expected ErrPageNotFound, got %v", err)
	}
	if !goerrors.IsCategory(err, goerrors.CategoryCommand) {
		t.Fatalf("expected command category, got %v", err)
	}
}
