package rendercmd

import (
	"context"
	"strings"

	"github.com/goliatone/go-wiki/internal/chunks"
	"github.com/goliatone/go-wiki/internal/commands"
	"github.com/goliatone/go-wiki/internal/include"
	"github.com/goliatone/go-wiki/internal/render"
	"github.com/goliatone/go-wiki/pkg/interfaces"
)

// PageRenderer is the rendering surface the handler drives.
type PageRenderer interface {
	RenderPage(ctx context.Context, webRef, pageName string, mode include.Mode) (*chunks.Content, error)
}

// RenderPageHandler renders pages through the shared command handler foundation.
type RenderPageHandler struct {
	inner *commands.Handler[RenderPageCommand]
}

// NewRenderPageHandler constructs a handler wired to renderer.
func NewRenderPageHandler(renderer PageRenderer, logger interfaces.Logger, opts ...commands.HandlerOption[RenderPageCommand]) *RenderPageHandler {
	baseLogger := commands.Logger(logger)

	exec := func(ctx context.Context, msg RenderPageCommand) error {
		mode, err := include.ParseMode(msg.Mode)
		if err != nil {
			return err
		}
		if strings.TrimSpace(msg.Mode) == "" {
			mode = ""
		}
		content, err := renderer.RenderPage(ctx, strings.TrimSpace(msg.Web), strings.TrimSpace(msg.Page), mode)
		if err != nil {
			return err
		}
		if msg.Result != nil {
			msg.Result.Content = content
		}
		return nil
	}

	handlerOpts := []commands.HandlerOption[RenderPageCommand]{
		commands.WithLogger[RenderPageCommand](baseLogger),
		commands.WithOperation[RenderPageCommand]("render.page"),
		commands.WithMessageFields(func(msg RenderPageCommand) map[string]any {
			fields := map[string]any{
				"web":  strings.TrimSpace(msg.Web),
				"page": strings.TrimSpace(msg.Page),
			}
			if mode := strings.TrimSpace(msg.Mode); mode != "" {
				fields["mode"] = mode
			}
			return fields
		}),
		commands.WithReporter(commands.LogReports[RenderPageCommand](baseLogger)),
		commands.WithFailureCodes[RenderPageCommand](
			commands.FailureCode{Target: render.ErrWebNotFound, Message: "wiki web not found", Code: "WIKI_WEB_NOT_FOUND"},
			commands.FailureCode{Target: render.ErrPageNotFound, Message: "wiki page not found", Code: "WIKI_PAGE_NOT_FOUND"},
		),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &RenderPageHandler{
		inner: commands.NewHandler(exec, handlerOpts...),
	}
}

// Execute satisfies command.Commander[RenderPageCommand].Execute.
func (h *RenderPageHandler) Execute(ctx context.Context, msg RenderPageCommand) error {
	return h.inner.Execute(ctx, msg)
}
