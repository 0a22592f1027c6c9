package main

import (
	"context"
	"errors"
)

// Exit codes returned by the nodeops CLI.
const (
	// ExitSuccess indicates the operation completed and met its success policy.
	ExitSuccess = 0

	// ExitFailure indicates the operation ran but failed: npm exited outside
	// the success policy, or a package source could not be resolved.
	ExitFailure = 1

	// ExitFatal indicates the operation could not run at all (npm not found,
	// unreachable agent) or the command line or configuration is invalid.
	ExitFatal = 2

	// ExitCancelled indicates the run was interrupted.
	ExitCancelled = 130
)

// errOperationFailed is returned by operation commands whose failure has
// already been logged.
var errOperationFailed = errors.New("operation failed")

func exitCodeFor(err error) int {
	switch {
	case err == nil:
		return ExitSuccess
	case errors.Is(err, errOperationFailed):
		return ExitFailure
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return ExitCancelled
	default:
		return ExitFatal
	}
}
