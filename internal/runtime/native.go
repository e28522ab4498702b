// SPDX-License-Identifier: MPL-2.0

package runtime

import (
	"context"
	"fmt"
	"os"
	"os/exec"
)

// CommandNotFoundError is returned when the invocation's program cannot be resolved.
type CommandNotFoundError struct {
	Name string
	Err  error
}

// Error implements the error interface.
func (e *CommandNotFoundError) Error() string {
	return fmt.Sprintf("failed to locate %q: %v", e.Name, e.Err)
}

// Unwrap returns the underlying lookup error.
func (e *CommandNotFoundError) Unwrap() error { return e.Err }

// NativeExecutor spawns the invocation's program directly, without a shell.
type NativeExecutor struct {
	// lookPath resolves the program; overridable in tests.
	lookPath func(file string) (string, error)
}

// NewNativeExecutor creates a new native executor
func NewNativeExecutor() *NativeExecutor {
	return &NativeExecutor{lookPath: exec.LookPath}
}

// Name returns the executor name
func (e *NativeExecutor) Name() string {
	return string(ExecutorNative)
}

// Available returns whether this executor is available.
// Program resolution happens per invocation, so the native executor is always usable.
func (e *NativeExecutor) Available() bool {
	return true
}

// Execute runs the invocation and captures its output.
func (e *NativeExecutor) Execute(ctx context.Context, inv Invocation) *Result {
	if err := inv.Validate(); err != nil {
		return NewErrorResult(1, err)
	}

	program, err := e.lookPath(inv.Args[0])
	if err != nil {
		return NewErrorResult(1, &CommandNotFoundError{Name: inv.Args[0], Err: err})
	}

	cmd := exec.CommandContext(ctx, program, inv.Args[1:]...)
	if inv.Dir != "" {
		cmd.Dir = inv.Dir
	}
	cmd.Env = append(os.Environ(), inv.Env...)

	captured := &capturedOutput{}
	cmd.Stdout = &captured.stdout
	cmd.Stderr = &captured.stderr

	return extractExitCode(cmd.Run(), captured)
}
