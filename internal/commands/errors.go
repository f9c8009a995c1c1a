package commands

import (
	"context"
	"errors"

	goerrors "github.com/goliatone/go-errors"
)

const (
	codeValidation = "WIKI_COMMAND_INVALID"
	codeCanceled   = "WIKI_COMMAND_CANCELED"
	codeTimeout    = "WIKI_COMMAND_TIMEOUT"
	codeContext    = "WIKI_COMMAND_CONTEXT_ERROR"
	codeFailed     = "WIKI_COMMAND_FAILED"
)

// FailureCode tags execution errors matching Target with a stable text code.
type FailureCode struct {
	Target  error
	Message string
	Code    string
}

var contextFailures = []FailureCode{
	{Target: context.Canceled, Message: "wiki command cancelled", Code: codeCanceled},
	{Target: context.DeadlineExceeded, Message: "wiki command deadline exceeded", Code: codeTimeout},
}

func wrapValidationError(err error) error {
	if err == nil || goerrors.IsWrapped(err) {
		return err
	}
	return goerrors.Wrap(err, goerrors.CategoryValidation, "wiki command validation failed").
		WithTextCode(codeValidation)
}

func wrapContextError(err error) error {
	return wrapCommandError(err, contextFailures, FailureCode{Message: "wiki command context error", Code: codeContext})
}

func wrapExecuteError(err error, failures []FailureCode) error {
	return wrapCommandError(err, failures, FailureCode{Message: "wiki command execution failed", Code: codeFailed})
}

// wrapCommandError leaves go-errors values untouched. The first matching
// failure code wins; fallback applies otherwise.
func wrapCommandError(err error, failures []FailureCode, fallback FailureCode) error {
	if err == nil || goerrors.IsWrapped(err) {
		return err
	}
	selected := fallback
	for _, failure := range failures {
		if failure.Target != nil && errors.Is(err, failure.Target) {
			selected = failure
			break
		}
	}
	return goerrors.Wrap(err, goerrors.CategoryCommand, selected.Message).
		WithTextCode(selected.Code)
}
