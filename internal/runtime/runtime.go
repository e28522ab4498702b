// SPDX-License-Identifier: MPL-2.0

package runtime

import (
	"context"
	"errors"
	"fmt"
	"slices"
)

// Executor type constants for the supported execution backends.
const (
	ExecutorNative  ExecutorType = "native"
	ExecutorVirtual ExecutorType = "virtual"
)

// ErrInvalidExecutorType is the sentinel error wrapped by InvalidExecutorTypeError.
var ErrInvalidExecutorType = errors.New("invalid executor type")

type (
	// Invocation describes a single external process to run.
	Invocation struct {
		// Args is the full argument vector; Args[0] is the program.
		Args []string
		// Dir is the working directory. Empty means the current directory.
		Dir string
		// Env holds extra KEY=VALUE entries appended to the host environment.
		Env []string
	}

	// Result contains the outcome of an invocation.
	Result struct {
		// ExitCode is the exit code of the process
		ExitCode ExitCode
		// Error is set when the process could not be launched or the runner failed
		Error error
		// Output contains captured stdout
		Output string
		// ErrOutput contains captured stderr
		ErrOutput string
	}

	// Executor runs invocations to completion and captures their output.
	Executor interface {
		// Name returns the executor name
		Name() string
		// Available returns whether this executor can run on the current system
		Available() bool
		// Execute blocks until the invocation completes or ctx is cancelled.
		Execute(ctx context.Context, inv Invocation) *Result
	}

	// ExecutorType identifies an executor backend.
	ExecutorType string

	// InvalidExecutorTypeError is returned when an ExecutorType value is not recognized.
	InvalidExecutorTypeError struct {
		Value ExecutorType
	}

	// Registry holds the available executors.
	Registry struct {
		executors map[ExecutorType]Executor
	}
)

// Error implements the error interface.
func (e *InvalidExecutorTypeError) Error() string {
	return fmt.Sprintf("invalid executor type %q (valid: native, virtual)", e.Value)
}

// Unwrap returns ErrInvalidExecutorType for errors.Is() compatibility.
func (e *InvalidExecutorTypeError) Unwrap() error { return ErrInvalidExecutorType }

// Validate returns an error if the ExecutorType is not one of the known values.
func (t ExecutorType) Validate() error {
	switch t {
	case ExecutorNative, ExecutorVirtual:
		return nil
	default:
		return &InvalidExecutorTypeError{Value: t}
	}
}

// String returns the string representation of the ExecutorType.
func (t ExecutorType) String() string { return string(t) }

// Success returns true if the invocation exited with code 0 and no error.
func (r *Result) Success() bool {
	return r.ExitCode.IsSuccess() && r.Error == nil
}

// Validate checks that the invocation names a program.
func (inv Invocation) Validate() error {
	if len(inv.Args) == 0 || inv.Args[0] == "" {
		return errors.New("invocation has no program to execute")
	}
	return nil
}

// NewRegistry creates an empty executor registry.
func NewRegistry() *Registry {
	return &Registry{
		executors: make(map[ExecutorType]Executor),
	}
}

// NewDefaultRegistry creates a registry with the native and virtual executors.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(ExecutorNative, NewNativeExecutor())
	r.Register(ExecutorVirtual, NewVirtualExecutor())
	return r
}

// Register adds an executor to the registry
func (r *Registry) Register(typ ExecutorType, ex Executor) {
	r.executors[typ] = ex
}

// Get returns an available executor by type.
func (r *Registry) Get(typ ExecutorType) (Executor, error) {
	if err := typ.Validate(); err != nil {
		return nil, err
	}
	ex, ok := r.executors[typ]
	if !ok {
		return nil, fmt.Errorf("executor '%s' not registered", typ)
	}
	if !ex.Available() {
		return nil, fmt.Errorf("executor '%s' is not available on this system", ex.Name())
	}
	return ex, nil
}

// Available returns the registered executors that can run here, sorted by name.
func (r *Registry) Available() []ExecutorType {
	var types []ExecutorType
	for typ, ex := range r.executors {
		if ex.Available() {
			types = append(types, typ)
		}
	}
	slices.Sort(types)
	return types
}
