package logging

import (
	"context"
	"strings"

	"github.com/goliatone/go-wiki/pkg/interfaces"
)

const (
	rootModule    = "wiki"
	includeModule = "wiki.include"
	renderModule  = "wiki.render"
	storageModule = "wiki.storage"
	commandModule = "wiki.commands"
)

const (
	fieldWeb  = "web"
	fieldPage = "page"
	fieldMode = "mode"
)

// ModuleLogger returns a logger scoped to module. Without a provider it
// falls back to NoOp. The module name is attached as the "module" field.
func ModuleLogger(provider interfaces.LoggerProvider, module string) interfaces.Logger {
	if module == "" {
		module = rootModule
	}

	logger := NoOp()
	if provider != nil {
		if provided := provider.GetLogger(module); provided != nil {
			logger = provided
		}
	}

	return WithFields(logger, map[string]any{
		"module": module,
	})
}

// IncludeLogger returns the logger used by the include resolver.
func IncludeLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, includeModule)
}

// RenderLogger returns the logger used by the page renderer.
func RenderLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, renderModule)
}

// StorageLogger returns the logger used by repository bootstrapping.
func StorageLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, storageModule)
}

// CommandLogger returns the logger used by command handlers.
func CommandLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, commandModule)
}

// WithPageContext attaches the web, page and rendering mode fields. Empty
// values are skipped.
func WithPageContext(logger interfaces.Logger, web, page, mode string) interfaces.Logger {
	fields := map[string]any{}
	if trimmed := strings.TrimSpace(web); trimmed != "" {
		fields[fieldWeb] = trimmed
	}
	if trimmed := strings.TrimSpace(page); trimmed != "" {
		fields[fieldPage] = trimmed
	}
	if trimmed := strings.TrimSpace(mode); trimmed != "" {
		fields[fieldMode] = trimmed
	}
	return WithFields(logger, fields)
}

// NoOp returns a logger that drops every entry.
func NoOp() interfaces.Logger {
	return noopLogger{}
}

type noopLogger struct{}

var _ interfaces.Logger = noopLogger{}

func (noopLogger) Trace(string, ...any) {}
func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
func (noopLogger) Fatal(string, ...any) {}

func (n noopLogger) WithFields(map[string]any) interfaces.Logger {
	return n
}

func (n noopLogger) WithContext(context.Context) interfaces.Logger {
	return n
}
