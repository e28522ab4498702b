// SPDX-License-Identifier: MPL-2.0

package samplerun

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"samplectl/internal/issue"
	"samplectl/internal/runtime"
	"samplectl/internal/sample"

	"github.com/charmbracelet/log"
)

// DefaultRuntimeName names the host runtime in skip notices.
const DefaultRuntimeName = "Node.js"

type (
	// Clock abstracts time for run duration measurement.
	Clock interface {
		Now() time.Time
		Since(t time.Time) time.Duration
	}

	// VersionSource reports the host runtime major version.
	VersionSource interface {
		Major(ctx context.Context) (int, error)
	}

	// Locker serializes runs over the same sample root across processes.
	// Lock blocks until the root is free or ctx is done.
	Locker interface {
		Lock(ctx context.Context, root string) (unlock func() error, err error)
	}

	// Options configures a Runner.
	Options struct {
		// SamplesRoot is the directory whose immediate children are samples.
		SamplesRoot string
		// ProjectRoot is the base for the relative directories shown in logs.
		// The working directory is used when empty.
		ProjectRoot string
		// Manifest marks single-application samples; sample.DefaultManifest when empty.
		Manifest string
		Policy   sample.Policy
		// Strategy defaults to StrategyAbort when empty.
		Strategy FailureStrategy
		// RuntimeName is the host runtime named in skip notices.
		RuntimeName string
		// Env is appended to the inherited environment of every target process.
		Env []string
	}

	// Option customizes a Runner.
	Option func(*Runner)

	// Runner executes a CommandSpec across a sample tree.
	Runner struct {
		opts     Options
		executor runtime.Executor
		version  VersionSource
		logger   *log.Logger
		clock    Clock
		locker   Locker
	}

	realClock struct{}

	// fileLocker takes the flock returned by runtime.RunLockPath.
	fileLocker struct {
		logger func() *log.Logger
	}
)

// WithLogger sets the logger used for progress and captured output.
func WithLogger(l *log.Logger) Option {
	return func(r *Runner) { r.logger = l }
}

// WithClock replaces the wall clock, mostly for tests.
func WithClock(c Clock) Option {
	return func(r *Runner) { r.clock = c }
}

// WithLocker replaces the cross-process run lock.
func WithLocker(l Locker) Option {
	return func(r *Runner) { r.locker = l }
}

// New creates a Runner. The executor runs every target; version reports the
// host major version once per RunAcrossSamples call.
func New(opts Options, executor runtime.Executor, version VersionSource, options ...Option) *Runner {
	if opts.Strategy == "" {
		opts.Strategy = StrategyAbort
	}
	if opts.RuntimeName == "" {
		opts.RuntimeName = DefaultRuntimeName
	}
	r := &Runner{
		opts:     opts,
		executor: executor,
		version:  version,
		logger:   log.NewWithOptions(os.Stderr, log.Options{Prefix: "samplectl"}),
		clock:    realClock{},
	}
	r.locker = fileLocker{logger: func() *log.Logger { return r.logger }}
	for _, opt := range options {
		opt(r)
	}
	return r
}

// walk is a sample root ready to be traversed: located, version detected
// and listed, with exclusions removed.
type walk struct {
	resolver  *sample.Resolver
	hostMajor int
	samples   []sample.Dir
	excluded  []string
}

// prepare locates the sample root, detects the host version when any gate is
// configured and lists the top-level samples.
func (r *Runner) prepare(ctx context.Context) (*walk, error) {
	root, err := r.samplesRoot()
	if err != nil {
		return nil, err
	}

	hostMajor := 0
	if r.opts.Policy.IsGated() {
		hostMajor, err = r.version.Major(ctx)
		if err != nil {
			return nil, err
		}
		r.logger.Debug("host runtime detected", "major", hostMajor)
	}

	resolver := &sample.Resolver{Root: root, Manifest: r.opts.Manifest, Policy: r.opts.Policy}
	samples, excluded, err := resolver.Samples()
	if err != nil {
		return nil, resolveError(root, err)
	}
	return &walk{resolver: resolver, hostMajor: hostMajor, samples: samples, excluded: excluded}, nil
}

// Plan detects the host version and resolves the whole sample tree without
// executing anything. Without version gates the host runtime is not queried
// and the plan's HostMajor is 0.
func (r *Runner) Plan(ctx context.Context) (*sample.Plan, error) {
	w, err := r.prepare(ctx)
	if err != nil {
		return nil, err
	}

	plan := &sample.Plan{Root: w.resolver.Root, HostMajor: w.hostMajor, Excluded: w.excluded}
	for _, dir := range w.samples {
		entry, err := w.resolver.ResolveSample(dir, w.hostMajor)
		if err != nil {
			return nil, resolveError(dir.Path, err)
		}
		plan.Entries = append(plan.Entries, entry)
	}
	return plan, nil
}

// RunAcrossSamples runs spec in every eligible target of the sample tree, one
// at a time and in enumeration order. Version-gated samples are skipped with
// an informational notice; excluded samples are dropped silently. Each
// sample is inspected only when the traversal reaches it.
//
// The returned Report is non-nil whenever execution started. Under
// StrategyAbort the error is the first *ExecutionError; under StrategyCollect
// it joins every *ExecutionError of the run.
func (r *Runner) RunAcrossSamples(ctx context.Context, spec CommandSpec) (*Report, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	if err := r.opts.Strategy.Validate(); err != nil {
		return nil, err
	}

	w, err := r.prepare(ctx)
	if err != nil {
		return nil, err
	}

	unlock, err := r.locker.Lock(ctx, w.resolver.Root)
	if err != nil {
		return nil, issue.NewErrorContext().
			WithOperation("lock sample root").
			WithResource(w.resolver.Root).
			WithSuggestion("Wait for the other samplectl run on this sample root to finish").
			Wrap(err).
			BuildError()
	}
	defer func() {
		if err := unlock(); err != nil {
			r.logger.Debug("releasing run lock failed", "error", err)
		}
	}()

	start := r.clock.Now()
	report := &Report{Command: spec, Strategy: r.opts.Strategy, HostMajor: w.hostMajor}
	defer func() { report.TotalDuration = r.clock.Since(start) }()

	var failures []error
	for i, dir := range w.samples {
		entry, err := w.resolver.ResolveSample(dir, w.hostMajor)
		if err != nil {
			report.Aborted = true
			return report, resolveError(dir.Path, err)
		}
		if entry.Skipped {
			r.logSkip(entry)
			report.Skipped = append(report.Skipped, entry)
			continue
		}

		for j, target := range entry.Targets {
			if err := ctx.Err(); err != nil {
				report.Aborted = true
				return report, fmt.Errorf("run interrupted before %s: %w", r.relative(target), err)
			}

			result, err := r.runTarget(ctx, entry.Sample, target, spec)
			report.Targets = append(report.Targets, result)
			if err == nil {
				continue
			}
			if r.opts.Strategy == StrategyAbort {
				report.Aborted = j < len(entry.Targets)-1 || i < len(w.samples)-1
				return report, err
			}
			failures = append(failures, err)
		}
	}
	return report, errors.Join(failures...)
}

func resolveError(path string, err error) error {
	return issue.NewErrorContext().
		WithOperation("resolve samples").
		WithResource(path).
		WithSuggestion("Check that every sample directory is readable").
		Wrap(err).
		BuildError()
}

// RunInDirectory runs spec once in dir, logging progress and captured output.
// Any failure (launch error, runner error, non-zero exit) is returned as an
// *ExecutionError alongside the raw result.
func (r *Runner) RunInDirectory(ctx context.Context, dir string, spec CommandSpec) (*runtime.Result, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve target directory %s: %w", dir, err)
	}

	rel := r.relative(abs)
	label := scriptStyle.Render(spec.Script) + " in " + dirStyle.Render(rel)

	inv, err := runtime.BuildInvocation(spec.Script, abs, spec.ExtraArgs)
	if err != nil {
		return nil, err
	}
	inv.Dir = abs
	inv.Env = r.opts.Env

	r.logger.Info("Running " + label)
	r.logger.Debug("invocation", "command", inv.String())

	result := r.executor.Execute(ctx, inv)
	if !result.Success() {
		r.logger.Error("Failed running "+label, "exit_code", result.ExitCode)
		r.logOutput(r.logger.Error, result.ErrOutput)
		r.logOutput(r.logger.Error, result.Output)
		return result, r.executionError(abs, spec, result)
	}

	r.logger.Info("Finished running " + label)
	r.logOutput(r.logger.Error, result.ErrOutput)
	r.logOutput(r.logger.Info, result.Output)
	return result, nil
}

func (r *Runner) runTarget(ctx context.Context, owner sample.Dir, target string, spec CommandSpec) (TargetResult, error) {
	start := r.clock.Now()
	result, err := r.RunInDirectory(ctx, target, spec)

	tr := TargetResult{
		Dir:      target,
		Sample:   owner,
		Success:  err == nil,
		Duration: r.clock.Since(start),
		Err:      err,
	}
	if result != nil {
		tr.ExitCode = result.ExitCode
	}
	return tr, err
}

func (r *Runner) executionError(dir string, spec CommandSpec, result *runtime.Result) *ExecutionError {
	execErr := &ExecutionError{
		Dir:      dir,
		Script:   spec.Script,
		ExitCode: result.ExitCode,
		Stdout:   result.Output,
		Stderr:   result.ErrOutput,
		Err:      result.Error,
	}

	var notFound *runtime.CommandNotFoundError
	if errors.As(result.Error, &notFound) {
		execErr.Err = issue.NewErrorContext().
			WithOperation("launch script runner").
			WithResource(notFound.Name).
			WithSuggestion(fmt.Sprintf("Install %s or make sure it is on PATH", notFound.Name)).
			WithSuggestion("Override the script in the operations section of the config file").
			WithIssue(issue.ScriptRunnerNotFoundId).
			Wrap(result.Error).
			BuildError()
	}
	return execErr
}

func (r *Runner) logSkip(entry sample.Entry) {
	r.logger.Info(fmt.Sprintf("Skipping sample %s because it requires %s version %s",
		entry.Sample.ID, r.opts.RuntimeName, versionStyle.Render(fmt.Sprintf("v%d", entry.Required))))
}

func (r *Runner) logOutput(logFn func(msg any, keyvals ...any), output string) {
	output = strings.TrimRight(output, "\r\n")
	if strings.TrimSpace(output) == "" {
		return
	}
	logFn(output)
}

func (r *Runner) samplesRoot() (string, error) {
	root, err := filepath.Abs(r.opts.SamplesRoot)
	if err != nil {
		return "", err
	}

	info, err := os.Stat(root)
	if err == nil && !info.IsDir() {
		err = fmt.Errorf("%s is not a directory", root)
	}
	if err != nil {
		return "", issue.NewErrorContext().
			WithOperation("locate sample root").
			WithResource(root).
			WithSuggestion("Pass --samples-root or set samples_root in the config file").
			WithSuggestion("Run samplectl from the repository root").
			WithIssue(issue.SampleRootNotFoundId).
			Wrap(err).
			BuildError()
	}
	return root, nil
}

// relative returns dir relative to the project root, or dir unchanged when
// no relative form exists.
func (r *Runner) relative(dir string) string {
	base := r.opts.ProjectRoot
	if base == "" {
		wd, err := os.Getwd()
		if err != nil {
			return dir
		}
		base = wd
	}
	base, err := filepath.Abs(base)
	if err != nil {
		return dir
	}
	rel, err := filepath.Rel(base, dir)
	if err != nil || strings.HasPrefix(rel, "..") {
		return dir
	}
	return rel
}

func (l fileLocker) Lock(ctx context.Context, root string) (func() error, error) {
	lock, err := runtime.AcquireRunLock(ctx, runtime.RunLockPath(root), func() {
		l.logger().Warn("Waiting for another samplectl run on " + dirStyle.Render(root))
	})
	if errors.Is(err, runtime.ErrRunLockUnavailable) {
		return func() error { return nil }, nil
	}
	if err != nil {
		return nil, err
	}
	return lock.Release, nil
}

func (realClock) Now() time.Time                  { return time.Now() }
func (realClock) Since(t time.Time) time.Duration { return time.Since(t) }
