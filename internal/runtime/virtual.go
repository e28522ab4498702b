// SPDX-License-Identifier: MPL-2.0

package runtime

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"
)

// VirtualExecutor runs invocations through the embedded mvdan/sh interpreter.
// External programs are still resolved from PATH by the interpreter's
// default exec handler; the shell itself never leaves the process.
type VirtualExecutor struct{}

// NewVirtualExecutor creates a new virtual executor
func NewVirtualExecutor() *VirtualExecutor {
	return &VirtualExecutor{}
}

// Name returns the executor name
func (e *VirtualExecutor) Name() string {
	return string(ExecutorVirtual)
}

// Available returns whether this executor is available.
// The interpreter is built in, so it always is.
func (e *VirtualExecutor) Available() bool {
	return true
}

// Execute renders the invocation as a shell command line, interprets it and
// captures its output.
func (e *VirtualExecutor) Execute(ctx context.Context, inv Invocation) *Result {
	if err := inv.Validate(); err != nil {
		return NewErrorResult(1, err)
	}

	script, err := QuoteArgs(inv.Args)
	if err != nil {
		return NewErrorResult(1, err)
	}

	prog, err := syntax.NewParser().Parse(strings.NewReader(script), "invocation")
	if err != nil {
		return NewErrorResult(1, fmt.Errorf("failed to parse invocation: %w", err))
	}

	captured := &capturedOutput{}
	opts := []interp.RunnerOption{
		interp.Env(expand.ListEnviron(append(os.Environ(), inv.Env...)...)),
		interp.StdIO(nil, &captured.stdout, &captured.stderr),
	}
	if inv.Dir != "" {
		opts = append(opts, interp.Dir(inv.Dir))
	}

	runner, err := interp.New(opts...)
	if err != nil {
		return NewErrorResult(1, fmt.Errorf("failed to create interpreter: %w", err))
	}

	err = runner.Run(ctx, prog)
	result := &Result{
		Output:    captured.stdout.String(),
		ErrOutput: captured.stderr.String(),
	}
	if err != nil {
		var exitStatus interp.ExitStatus
		if errors.As(err, &exitStatus) {
			result.ExitCode = ExitCode(exitStatus)
		} else {
			result.ExitCode = 1
			result.Error = fmt.Errorf("invocation failed: %w", err)
		}
	}

	return result
}

// QuoteArgs renders an argument vector as a single bash command line.
func QuoteArgs(args []string) (string, error) {
	quoted := make([]string, 0, len(args))
	for _, arg := range args {
		q, err := syntax.Quote(arg, syntax.LangBash)
		if err != nil {
			return "", fmt.Errorf("failed to quote argument %q: %w", arg, err)
		}
		quoted = append(quoted, q)
	}
	return strings.Join(quoted, " "), nil
}
