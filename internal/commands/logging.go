package commands

import (
	"strings"

	"github.com/goliatone/go-wiki/internal/logging"
	"github.com/goliatone/go-wiki/pkg/interfaces"
)

const commandModuleRoot = "wiki.commands"

// CommandLogger returns a module-scoped logger for command handlers. An empty
// module name yields the root command logger.
func CommandLogger(provider interfaces.LoggerProvider, module string) interfaces.Logger {
	name := strings.TrimSpace(module)
	logger := logging.CommandLogger(provider)
	if name != "" {
		logger = logging.ModuleLogger(provider, commandModuleRoot+"."+name)
	}
	return logging.WithFields(logger, map[string]any{
		"component":      "command",
		"command_module": name,
	})
}
