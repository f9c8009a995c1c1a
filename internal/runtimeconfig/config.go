package runtimeconfig

import (
	"errors"
	"fmt"
	"strings"
	"time"

	urlkit "github.com/goliatone/go-urlkit"

	"github.com/goliatone/go-wiki/internal/include"
)

var (
	ErrRenderModeInvalid       = errors.New("wiki config: default render mode is invalid")
	ErrChainPolicyInvalid      = errors.New("wiki config: include chain policy is invalid")
	ErrMaxIncludeDepthInvalid  = errors.New("wiki config: max include depth must be zero or positive")
	ErrStorageProviderUnknown  = errors.New("wiki config: storage provider is invalid")
	ErrStorageDialectUnknown   = errors.New("wiki config: storage dialect is invalid")
	ErrCacheRequiresBun        = errors.New("wiki config: repository cache requires the bun storage provider")
	ErrCacheTTLInvalid         = errors.New("wiki config: cache ttl must be zero or positive")
	ErrRouteGroupRequired      = errors.New("wiki config: route group is required when routes are configured")
	ErrLoggingProviderRequired = errors.New("wiki config: logging provider is required when logging feature is enabled")
	ErrLoggingProviderUnknown  = errors.New("wiki config: logging provider is invalid")
	ErrLoggingLevelInvalid     = errors.New("wiki config: logging level is invalid")
	ErrLoggingFormatInvalid    = errors.New("wiki config: logging format is invalid")
)

// Config aggregates the knobs of the wiki runtime.
type Config struct {
	Render   RenderConfig
	Storage  StorageConfig
	Cache    CacheConfig
	Markdown MarkdownConfig
	Routes   RoutesConfig
	Logging  LoggingConfig
	Features Features
}

// RenderConfig controls include resolution.
type RenderConfig struct {
	DefaultMode string
	// ChainPolicy is "stack" or "reset".
	ChainPolicy string
	// MaxIncludeDepth bounds nested includes; zero disables the limit.
	MaxIncludeDepth int
}

// StorageConfig selects the repository backend.
type StorageConfig struct {
	// Provider is "memory" or "bun".
	Provider string
	Dialect  string
	// DSN opens a sqlite database when no connection is supplied by the host.
	DSN string
}

// CacheConfig wraps bun repositories with go-repository-cache.
type CacheConfig struct {
	Enabled    bool
	DefaultTTL time.Duration
}

// MarkdownConfig mirrors render.MarkdownOptions.
type MarkdownConfig struct {
	Extensions []string
	HardWraps  bool
}

// RoutesConfig builds show and publish links through go-urlkit. Routes in
// Group are named "show" and "publish" and take :web and :page params.
type RoutesConfig struct {
	Config *urlkit.Config
	Group  string
}

// Features toggles optional functionality.
type Features struct {
	Logger bool
}

// LoggingConfig captures provider-specific options for runtime logging.
type LoggingConfig struct {
	Provider  string
	Level     string
	Format    string
	AddSource bool
	Focus     []string
}

// DefaultConfig returns in-memory storage with stack discipline includes.
func DefaultConfig() Config {
	return Config{
		Render: RenderConfig{
			DefaultMode:     string(include.ModeShow),
			ChainPolicy:     string(include.PolicyStack),
			MaxIncludeDepth: include.DefaultMaxDepth,
		},
		Storage: StorageConfig{
			Provider: "memory",
			Dialect:  "sqlite",
		},
		Cache: CacheConfig{
			DefaultTTL: time.Minute,
		},
		Logging: LoggingConfig{
			Provider: "gologger",
			Level:    "info",
			Format:   "console",
		},
	}
}

// Validate performs high-level consistency checks.
func (cfg Config) Validate() error {
	if _, err := include.ParseMode(cfg.Render.DefaultMode); err != nil {
		return fmt.Errorf("%w: %w", ErrRenderModeInvalid, err)
	}
	if _, err := include.ParsePolicy(cfg.Render.ChainPolicy); err != nil {
		return fmt.Errorf("%w: %w", ErrChainPolicyInvalid, err)
	}
	if cfg.Render.MaxIncludeDepth < 0 {
		return ErrMaxIncludeDepthInvalid
	}

	provider := normalize(cfg.Storage.Provider)
	switch provider {
	case "", "memory":
	case "bun":
		if !isSupportedDialect(cfg.Storage.Dialect) {
			return fmt.Errorf("%w: %s", ErrStorageDialectUnknown, cfg.Storage.Dialect)
		}
	default:
		return fmt.Errorf("%w: %s", ErrStorageProviderUnknown, provider)
	}
	if cfg.Cache.Enabled && provider != "bun" {
		return ErrCacheRequiresBun
	}
	if cfg.Cache.DefaultTTL < 0 {
		return ErrCacheTTLInvalid
	}

	if cfg.Routes.Config != nil && strings.TrimSpace(cfg.Routes.Group) == "" {
		return ErrRouteGroupRequired
	}

	if cfg.Features.Logger {
		logProvider := normalize(cfg.Logging.Provider)
		if logProvider == "" {
			return ErrLoggingProviderRequired
		}
		if logProvider != "gologger" {
			return fmt.Errorf("%w: %s", ErrLoggingProviderUnknown, logProvider)
		}
		if level := strings.TrimSpace(cfg.Logging.Level); level != "" && !isSupportedLevel(level) {
			return fmt.Errorf("%w: %s", ErrLoggingLevelInvalid, level)
		}
		if format := strings.TrimSpace(cfg.Logging.Format); format != "" && !isSupportedFormat(format) {
			return fmt.Errorf("%w: %s", ErrLoggingFormatInvalid, format)
		}
	}
	return nil
}

func normalize(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

func isSupportedDialect(dialect string) bool {
	switch normalize(dialect) {
	case "", "sqlite", "sqlite3", "postgres", "pg":
		return true
	default:
		return false
	}
}

func isSupportedLevel(level string) bool {
	switch normalize(level) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal":
		return true
	default:
		return false
	}
}

func isSupportedFormat(format string) bool {
	switch normalize(format) {
	case "json", "console", "pretty":
		return true
	default:
		return false
	}
}
