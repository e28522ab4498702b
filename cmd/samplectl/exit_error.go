// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"

	"samplectl/internal/samplerun"
)

// Exit codes returned by samplectl.
const (
	ExitOK = 0
	// ExitFailure means at least one sample failed or the run was interrupted.
	ExitFailure = 1
	// ExitUsage means configuration, flags or the environment prevented a run.
	ExitUsage = 2
)

// ExitError signals a non-zero exit code without forcing os.Exit in RunE handlers.
type ExitError struct {
	Code int
	Err  error
}

// Error returns the error message for ExitError.
func (e *ExitError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("exit status %d", e.Code)
}

// Unwrap returns the underlying error, if any.
func (e *ExitError) Unwrap() error {
	return e.Err
}

// classifyExitCode maps a run error to the process exit code.
func classifyExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, samplerun.ErrExecutionFailed), errors.Is(err, context.Canceled):
		return ExitFailure
	default:
		return ExitUsage
	}
}
