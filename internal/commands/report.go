package commands

import (
	"context"
	"time"

	command "github.com/goliatone/go-command"
	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-wiki/internal/logging"
	"github.com/goliatone/go-wiki/pkg/interfaces"
)

// Outcome classifies a finished command.
type Outcome string

const (
	OutcomeSucceeded Outcome = "succeeded"
	OutcomeFailed    Outcome = "failed"
	// OutcomeInterrupted covers cancellation and deadline expiry.
	OutcomeInterrupted Outcome = "interrupted"
)

// Report is handed to a Reporter once a command returns.
type Report struct {
	Command   string
	Operation string
	Fields    map[string]any
	Duration  time.Duration
	Error     error
	Outcome   Outcome
	Logger    interfaces.Logger
}

// Reporter observes finished commands. It replaces the handler's own
// outcome logging.
type Reporter[T command.Message] func(ctx context.Context, msg T, report Report)

// LogReports logs one entry per command. Rejected messages are flagged so
// they can be told apart from render failures.
func LogReports[T command.Message](logger interfaces.Logger) Reporter[T] {
	logger = orNoOp(logger)
	return func(_ context.Context, _ T, report Report) {
		entry := logging.WithFields(logger, report.Fields)
		args := []any{"outcome", string(report.Outcome), "duration_ms", report.Duration.Milliseconds()}
		if report.Outcome == OutcomeSucceeded {
			entry.Info("command.completed", args...)
			return
		}
		args = append(args, "error", report.Error)
		if goerrors.IsCategory(report.Error, goerrors.CategoryValidation) {
			args = append(args, "rejected", true)
		}
		entry.Error("command.completed", args...)
	}
}

// DefaultTimeout bounds a command when WithTimeout is not given.
const DefaultTimeout = 30 * time.Second

func withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if ctx == nil {
		ctx = context.Background()
	}
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}

func orNoOp(logger interfaces.Logger) interfaces.Logger {
	if logger == nil {
		return logging.NoOp()
	}
	return logger
}

// Logger returns logger, or a no-op logger when nil.
func Logger(logger interfaces.Logger) interfaces.Logger {
	return orNoOp(logger)
}
