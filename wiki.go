package wiki

import (
	"context"
	"io/fs"

	"github.com/goliatone/go-command/dispatcher"
	"github.com/goliatone/go-command/runner"
	"github.com/goliatone/go-wiki/internal/chunks"
	rendercmd "github.com/goliatone/go-wiki/internal/commands/render"
	"github.com/goliatone/go-wiki/internal/di"
	"github.com/goliatone/go-wiki/internal/fixtures"
	"github.com/goliatone/go-wiki/internal/pages"
	"github.com/goliatone/go-wiki/internal/webs"
)

// WebService exports the web management contract.
type WebService = webs.Service

// PageService exports the page management contract.
type PageService = pages.Service

// Content is a rendered page with its reference, category and redirect chunks.
type Content = chunks.Content

// FixtureResult lists the webs and pages created by LoadFixtures.
type FixtureResult = fixtures.Result

// RenderPageCommand renders a page through the command dispatcher.
type RenderPageCommand = rendercmd.RenderPageCommand

// RenderResult receives the output of a dispatched RenderPageCommand.
type RenderResult = rendercmd.RenderResult

// Module represents the top level wiki runtime facade.
type Module struct {
	container *di.Container
}

// New constructs a wiki module using the provided configuration and optional DI overrides.
func New(cfg Config, opts ...di.Option) (*Module, error) {
	container, err := di.NewContainer(cfg, opts...)
	if err != nil {
		return nil, err
	}
	return &Module{container: container}, nil
}

// Container exposes the underlying DI container for advanced integrations.
func (m *Module) Container() *di.Container {
	return m.container
}

func (m *Module) Webs() WebService {
	return m.container.WebService()
}

func (m *Module) Pages() PageService {
	return m.container.PageService()
}

// Render renders the named page of the web referenced by name or address.
// An empty mode falls back to the configured default.
func (m *Module) Render(ctx context.Context, webRef, pageName string, mode Mode) (*Content, error) {
	return m.container.RenderService().RenderPage(ctx, webRef, pageName, mode)
}

// LoadFixtures creates one web per top-level directory of fsys and one page
// per markdown file inside it.
func (m *Module) LoadFixtures(ctx context.Context, fsys fs.FS) (*FixtureResult, error) {
	return m.container.FixtureLoader().Load(ctx, fsys)
}

// RegisterCommands subscribes the render handler to the go-command
// dispatcher. Failed renders are retried up to retries times. The returned
// func removes the subscription.
func (m *Module) RegisterCommands(retries int) func() {
	sub := dispatcher.SubscribeCommand(m.container.RenderPageHandler(), runner.WithMaxRetries(retries))
	return sub.Unsubscribe
}

// Close releases storage opened by the module.
func (m *Module) Close() error {
	return m.container.Close()
}
