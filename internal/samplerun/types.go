// SPDX-License-Identifier: MPL-2.0

package samplerun

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"samplectl/internal/runtime"
	"samplectl/internal/sample"
)

const (
	// StrategyAbort stops the traversal at the first failed target.
	StrategyAbort FailureStrategy = "abort"
	// StrategyCollect runs every target and reports all failures together.
	StrategyCollect FailureStrategy = "collect"
)

var (
	// ErrInvalidStrategy is the sentinel error wrapped by InvalidStrategyError.
	ErrInvalidStrategy = errors.New("invalid failure strategy")
	// ErrExecutionFailed is matched by every *ExecutionError via errors.Is.
	ErrExecutionFailed = errors.New("sample execution failed")
)

type (
	// FailureStrategy decides how the traversal reacts to a failed target.
	FailureStrategy string

	// InvalidStrategyError is returned when a FailureStrategy value is not recognized.
	InvalidStrategyError struct {
		Value FailureStrategy
	}

	// CommandSpec is the script to run in every target directory.
	CommandSpec struct {
		// Script is the script runner invocation, e.g. "npm run build".
		Script string
		// ExtraArgs are forwarded to the script after "--" when non-empty.
		ExtraArgs string
	}

	// ExecutionError reports a failed target. Launch failures, non-zero exits
	// and runner errors all surface as this one type.
	ExecutionError struct {
		Dir      string
		Script   string
		ExitCode runtime.ExitCode
		Stdout   string
		Stderr   string
		// Err is the launch or runner error, nil for a plain non-zero exit.
		Err error
	}

	// TargetResult is the outcome of one target directory.
	TargetResult struct {
		Dir      string
		Sample   sample.Dir
		Success  bool
		ExitCode runtime.ExitCode
		Duration time.Duration
		Err      error
	}

	// Report summarizes a run.
	Report struct {
		Command   CommandSpec
		Strategy  FailureStrategy
		HostMajor int
		Targets   []TargetResult
		Skipped   []sample.Entry
		// Aborted is true when the traversal stopped before visiting every
		// sample and target.
		Aborted       bool
		TotalDuration time.Duration
	}
)

// Error implements the error interface.
func (e *InvalidStrategyError) Error() string {
	return fmt.Sprintf("invalid failure strategy %q (valid: abort, collect)", e.Value)
}

// Unwrap returns ErrInvalidStrategy for errors.Is() compatibility.
func (e *InvalidStrategyError) Unwrap() error { return ErrInvalidStrategy }

// Validate returns an error if the strategy is not one of the known values.
func (s FailureStrategy) Validate() error {
	switch s {
	case StrategyAbort, StrategyCollect:
		return nil
	default:
		return &InvalidStrategyError{Value: s}
	}
}

// String returns the string representation of the FailureStrategy.
func (s FailureStrategy) String() string { return string(s) }

// Validate checks that a script is set.
func (c CommandSpec) Validate() error {
	if strings.TrimSpace(c.Script) == "" {
		return runtime.ErrEmptyScript
	}
	return nil
}

// String renders the command as it appears on the command line.
func (c CommandSpec) String() string {
	if strings.TrimSpace(c.ExtraArgs) == "" {
		return c.Script
	}
	return c.Script + " -- " + c.ExtraArgs
}

// Error implements the error interface.
func (e *ExecutionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("running %q in %s failed: %v", e.Script, e.Dir, e.Err)
	}
	return fmt.Sprintf("running %q in %s failed with exit code %d", e.Script, e.Dir, e.ExitCode)
}

// Unwrap returns the launch or runner error, if any.
func (e *ExecutionError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrExecutionFailed) true for every ExecutionError.
func (e *ExecutionError) Is(target error) bool { return target == ErrExecutionFailed }

// Passed returns the number of successful targets.
func (r *Report) Passed() int {
	n := 0
	for _, t := range r.Targets {
		if t.Success {
			n++
		}
	}
	return n
}

// Failures returns the failed targets in execution order.
func (r *Report) Failures() []TargetResult {
	var failed []TargetResult
	for _, t := range r.Targets {
		if !t.Success {
			failed = append(failed, t)
		}
	}
	return failed
}

// Success reports whether every executed target succeeded and none were left out.
func (r *Report) Success() bool {
	return !r.Aborted && len(r.Failures()) == 0
}
