package di

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	repocache "github.com/goliatone/go-repository-cache/cache"
	urlkit "github.com/goliatone/go-urlkit"
	"github.com/goliatone/go-wiki/internal/commands"
	rendercmd "github.com/goliatone/go-wiki/internal/commands/render"
	"github.com/goliatone/go-wiki/internal/fixtures"
	"github.com/goliatone/go-wiki/internal/include"
	"github.com/goliatone/go-wiki/internal/logging"
	"github.com/goliatone/go-wiki/internal/logging/gologger"
	"github.com/goliatone/go-wiki/internal/pages"
	"github.com/goliatone/go-wiki/internal/render"
	"github.com/goliatone/go-wiki/internal/runtimeconfig"
	"github.com/goliatone/go-wiki/internal/storage"
	"github.com/goliatone/go-wiki/internal/webs"
	"github.com/goliatone/go-wiki/pkg/interfaces"
	"github.com/uptrace/bun"
)

// ErrBunDBRequired is returned when postgres storage is selected without a
// connection supplied through WithBunDB.
var ErrBunDBRequired = errors.New("di: postgres storage requires a bun connection")

// Container wires the wiki services together.
type Container struct {
	Config runtimeconfig.Config

	loggerProvider interfaces.LoggerProvider
	logger         interfaces.Logger
	metrics        include.Metrics

	bunDB  *bun.DB
	ownsDB bool

	cacheTTL      time.Duration
	cacheService  repocache.CacheService
	keySerializer repocache.KeySerializer

	webRepo      webs.WebRepository
	pageRepo     pages.PageRepository
	revisionRepo pages.RevisionRepository

	routeManager *urlkit.RouteManager

	webSvc        webs.Service
	pageSvc       pages.Service
	resolver      *include.Resolver
	renderer      *render.Renderer
	renderSvc     *render.Service
	fixtureLoader *fixtures.Loader
	renderHandler *rendercmd.RenderPageHandler
}

// Option mutates the container before services are built.
type Option func(*Container)

// WithBunDB supplies an open bun connection. The container does not close it.
func WithBunDB(db *bun.DB) Option {
	return func(c *Container) {
		c.bunDB = db
	}
}

// WithCache overrides the cache service used by bun repositories.
func WithCache(service repocache.CacheService, serializer repocache.KeySerializer) Option {
	return func(c *Container) {
		c.cacheService = service
		c.keySerializer = serializer
	}
}

// WithLoggerProvider overrides the logger provider.
func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return func(c *Container) {
		if provider != nil {
			c.loggerProvider = provider
		}
	}
}

// WithMetrics records include resolution outcomes.
func WithMetrics(metrics include.Metrics) Option {
	return func(c *Container) {
		if metrics != nil {
			c.metrics = metrics
		}
	}
}

// WithWebService replaces the web service, skipping the web repository.
func WithWebService(svc webs.Service) Option {
	return func(c *Container) {
		c.webSvc = svc
	}
}

// WithPageService replaces the page service, skipping the page repositories.
func WithPageService(svc pages.Service) Option {
	return func(c *Container) {
		c.pageSvc = svc
	}
}

// NewContainer validates cfg and builds every wiki service.
func NewContainer(cfg runtimeconfig.Config, opts ...Option) (*Container, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &Container{
		Config:   cfg,
		cacheTTL: cfg.Cache.DefaultTTL,
		metrics:  include.NoOpMetrics(),
	}
	for _, opt := range opts {
		opt(c)
	}

	if err := c.configureLoggerProvider(); err != nil {
		return nil, err
	}
	if err := c.configureStorage(context.Background()); err != nil {
		return nil, err
	}
	c.configureCacheDefaults()
	c.configureRepositories()

	if err := c.configureServices(); err != nil {
		_ = c.closeOwned()
		return nil, err
	}
	return c, nil
}

func (c *Container) configureLoggerProvider() error {
	if c.loggerProvider == nil && c.Config.Features.Logger {
		provider, err := gologger.NewProvider(gologger.Config{
			Level:     c.Config.Logging.Level,
			Format:    c.Config.Logging.Format,
			AddSource: c.Config.Logging.AddSource,
			Focus:     c.Config.Logging.Focus,
		})
		if err != nil {
			return fmt.Errorf("di: configure logger: %w", err)
		}
		c.loggerProvider = provider
	}
	c.logger = logging.StorageLogger(c.loggerProvider)
	return nil
}

func (c *Container) configureStorage(ctx context.Context) error {
	if !strings.EqualFold(c.Config.Storage.Provider, "bun") || c.bunDB != nil {
		return nil
	}
	if dialect := strings.ToLower(strings.TrimSpace(c.Config.Storage.Dialect)); dialect == storage.DialectPostgres || dialect == "pg" {
		return ErrBunDBRequired
	}

	db, err := storage.Open(c.Config.Storage.DSN)
	if err != nil {
		return err
	}
	if err := storage.CreateSchema(ctx, db); err != nil {
		_ = db.Close()
		return err
	}
	c.bunDB = db
	c.ownsDB = true
	c.logger.Info("storage.opened", "dialect", storage.DialectSQLite)
	return nil
}

func (c *Container) configureCacheDefaults() {
	if !c.Config.Cache.Enabled || c.bunDB == nil {
		return
	}

	if c.cacheService == nil {
		cfg := repocache.DefaultConfig()
		if c.cacheTTL > 0 {
			cfg.TTL = c.cacheTTL
		}
		service, err := repocache.NewCacheService(cfg)
		if err != nil {
			c.logger.Warn("storage.cache.disabled", "error", err)
		} else {
			c.cacheService = service
		}
	}

	if c.cacheService != nil && c.keySerializer == nil {
		c.keySerializer = repocache.NewDefaultKeySerializer()
	}
}

func (c *Container) configureRepositories() {
	if c.bunDB == nil {
		c.webRepo = webs.NewMemoryRepository()
		c.pageRepo = pages.NewMemoryPageRepository()
		c.revisionRepo = pages.NewMemoryRevisionRepository()
		c.logger.Debug("storage.configured", "provider", "memory")
		return
	}

	if c.cacheService != nil && c.keySerializer != nil {
		c.webRepo = webs.NewBunWebRepositoryWithCache(c.bunDB, c.cacheService, c.keySerializer)
		c.pageRepo = pages.NewBunPageRepositoryWithCache(c.bunDB, c.cacheService, c.keySerializer)
		c.revisionRepo = pages.NewBunRevisionRepositoryWithCache(c.bunDB, c.cacheService, c.keySerializer)
		c.logger.Debug("storage.configured", "provider", "bun", "cache", true)
		return
	}

	c.webRepo = webs.NewBunWebRepository(c.bunDB)
	c.pageRepo = pages.NewBunPageRepository(c.bunDB)
	c.revisionRepo = pages.NewBunRevisionRepository(c.bunDB)
	c.logger.Debug("storage.configured", "provider", "bun", "cache", false)
}

func (c *Container) configureServices() error {
	if c.webSvc == nil {
		c.webSvc = webs.NewService(c.webRepo)
	}
	if c.pageSvc == nil {
		c.pageSvc = pages.NewService(c.pageRepo, c.revisionRepo)
	}

	policy, err := include.ParsePolicy(c.Config.Render.ChainPolicy)
	if err != nil {
		return err
	}
	defaultMode, err := include.ParseMode(c.Config.Render.DefaultMode)
	if err != nil {
		return err
	}

	c.resolver = include.NewResolver(c.webSvc, c.pageSvc, nil,
		include.WithLogger(logging.IncludeLogger(c.loggerProvider)),
		include.WithMetrics(c.metrics),
		include.WithMaxDepth(c.Config.Render.MaxIncludeDepth),
	)

	renderOpts := []render.Option{
		render.WithPolicy(policy),
		render.WithMarkdown(render.MarkdownOptions{
			Extensions: c.Config.Markdown.Extensions,
			HardWraps:  c.Config.Markdown.HardWraps,
		}),
		render.WithLogger(logging.RenderLogger(c.loggerProvider)),
	}
	if c.Config.Routes.Config != nil {
		c.routeManager = urlkit.NewRouteManager(c.Config.Routes.Config)
		routes, err := render.NewRoutes(c.routeManager, c.Config.Routes.Group)
		if err != nil {
			return err
		}
		renderOpts = append(renderOpts, render.WithRoutes(routes))
	}

	renderer, err := render.New(c.resolver, c.pageSvc, renderOpts...)
	if err != nil {
		return err
	}
	c.renderer = renderer
	c.renderSvc = render.NewService(c.webSvc, c.pageSvc, renderer, defaultMode)

	c.fixtureLoader = fixtures.NewLoader(c.webSvc, c.pageSvc,
		fixtures.WithLogger(logging.ModuleLogger(c.loggerProvider, "wiki.fixtures")),
	)
	c.renderHandler = rendercmd.NewRenderPageHandler(c.renderSvc, commands.CommandLogger(c.loggerProvider, "render"))
	return nil
}

// WebService returns the configured web service.
func (c *Container) WebService() webs.Service {
	return c.webSvc
}

// PageService returns the configured page service.
func (c *Container) PageService() pages.Service {
	return c.pageSvc
}

func (c *Container) Resolver() *include.Resolver {
	return c.resolver
}

func (c *Container) Renderer() *render.Renderer {
	return c.renderer
}

// RenderService resolves webs and pages by reference before rendering.
func (c *Container) RenderService() *render.Service {
	return c.renderSvc
}

func (c *Container) FixtureLoader() *fixtures.Loader {
	return c.fixtureLoader
}

// RenderPageHandler returns the command handler for wiki.render.page.
func (c *Container) RenderPageHandler() *rendercmd.RenderPageHandler {
	return c.renderHandler
}

// RouteManager returns the go-urlkit manager, nil when no routes are configured.
func (c *Container) RouteManager() *urlkit.RouteManager {
	return c.routeManager
}

func (c *Container) LoggerProvider() interfaces.LoggerProvider {
	return c.loggerProvider
}

// BunDB returns the active bun connection, nil for in-memory storage.
func (c *Container) BunDB() *bun.DB {
	return c.bunDB
}

// Close releases the database opened by the container. Connections passed
// through WithBunDB are left open.
func (c *Container) Close() error {
	return c.closeOwned()
}

func (c *Container) closeOwned() error {
	if !c.ownsDB || c.bunDB == nil {
		return nil
	}
	err := c.bunDB.Close()
	c.bunDB = nil
	c.ownsDB = false
	return err
}
