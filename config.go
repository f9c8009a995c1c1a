package wiki

import (
	"github.com/goliatone/go-wiki/internal/include"
	"github.com/goliatone/go-wiki/internal/runtimeconfig"
)

var (
	ErrRenderModeInvalid       = runtimeconfig.ErrRenderModeInvalid
	ErrChainPolicyInvalid      = runtimeconfig.ErrChainPolicyInvalid
	ErrMaxIncludeDepthInvalid  = runtimeconfig.ErrMaxIncludeDepthInvalid
	ErrStorageProviderUnknown  = runtimeconfig.ErrStorageProviderUnknown
	ErrStorageDialectUnknown   = runtimeconfig.ErrStorageDialectUnknown
	ErrCacheRequiresBun        = runtimeconfig.ErrCacheRequiresBun
	ErrCacheTTLInvalid         = runtimeconfig.ErrCacheTTLInvalid
	ErrRouteGroupRequired      = runtimeconfig.ErrRouteGroupRequired
	ErrLoggingProviderRequired = runtimeconfig.ErrLoggingProviderRequired
	ErrLoggingProviderUnknown  = runtimeconfig.ErrLoggingProviderUnknown
	ErrLoggingLevelInvalid     = runtimeconfig.ErrLoggingLevelInvalid
	ErrLoggingFormatInvalid    = runtimeconfig.ErrLoggingFormatInvalid
	ErrUnsupportedMode         = include.ErrUnsupportedMode
)

type (
	Config         = runtimeconfig.Config
	RenderConfig   = runtimeconfig.RenderConfig
	StorageConfig  = runtimeconfig.StorageConfig
	CacheConfig    = runtimeconfig.CacheConfig
	MarkdownConfig = runtimeconfig.MarkdownConfig
	RoutesConfig   = runtimeconfig.RoutesConfig
	LoggingConfig  = runtimeconfig.LoggingConfig
	Features       = runtimeconfig.Features
)

// Mode selects the page renderer entry point used for includes.
type Mode = include.Mode

const (
	ModeShow    = include.ModeShow
	ModePublish = include.ModePublish
	ModeExport  = include.ModeExport
	ModeS5      = include.ModeS5
)

// Chain policies accepted by RenderConfig.ChainPolicy.
const (
	PolicyStack = include.PolicyStack
	PolicyReset = include.PolicyReset
)

func DefaultConfig() Config {
	return runtimeconfig.DefaultConfig()
}
