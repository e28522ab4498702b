// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"samplectl/internal/config"
	"samplectl/internal/hostversion"
	"samplectl/internal/issue"
	"samplectl/internal/runtime"
	"samplectl/internal/sample"
	"samplectl/internal/samplerun"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

type (
	// ConfigProvider loads configuration using explicit options.
	ConfigProvider interface {
		Load(ctx context.Context, opts config.LoadOptions) (*config.Config, error)
	}

	// App wires CLI services and shared dependencies. Every command handler
	// receives the App and reaches configuration and executors through it.
	App struct {
		Config    ConfigProvider
		Executors *runtime.Registry
		stdout    io.Writer
		stderr    io.Writer
		flags     rootFlags
	}

	// Dependencies defines the injection points for building an App. Nil fields
	// are replaced with production defaults by NewApp.
	Dependencies struct {
		Config    ConfigProvider
		Executors *runtime.Registry
		Stdout    io.Writer
		Stderr    io.Writer
	}

	// rootFlags holds the persistent flag values.
	rootFlags struct {
		configFile  string
		verbose     bool
		samplesRoot string
		strategy    string
		executor    string
		hostVersion int
	}

	// session is everything one command invocation needs after configuration
	// and flags have been merged.
	session struct {
		cfg    *config.Config
		logger *log.Logger
		runner *samplerun.Runner
	}
)

// NewApp creates an App, filling unset dependencies with production defaults.
func NewApp(deps Dependencies) *App {
	app := &App{
		Config:    deps.Config,
		Executors: deps.Executors,
		stdout:    deps.Stdout,
		stderr:    deps.Stderr,
	}
	if app.Config == nil {
		app.Config = config.NewProvider()
	}
	if app.Executors == nil {
		app.Executors = runtime.NewDefaultRegistry()
	}
	if app.stdout == nil {
		app.stdout = os.Stdout
	}
	if app.stderr == nil {
		app.stderr = os.Stderr
	}
	return app
}

// loadConfig loads configuration and applies the persistent flags that were
// set explicitly on the command line.
func (a *App) loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := a.Config.Load(cmd.Context(), config.LoadOptions{ConfigFilePath: a.flags.configFile})
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("samples-root") {
		cfg.SamplesRoot = a.flags.samplesRoot
	}
	if flags.Changed("strategy") {
		cfg.Strategy = config.Strategy(a.flags.strategy)
	}
	if flags.Changed("executor") {
		cfg.Executor = config.ExecutorMode(a.flags.executor)
	}
	if flags.Changed("host-version") {
		cfg.HostRuntime.MajorVersion = a.flags.hostVersion
	}
	if a.flags.verbose {
		cfg.UI.Verbose = true
	}

	if valid, errs := cfg.IsValid(); !valid {
		return nil, issue.NewErrorContext().
			WithOperation("apply command-line flags").
			WithSuggestion("Valid strategies: abort, collect. Valid executors: native, virtual").
			WithIssue(issue.InvalidConfigValueId).
			Wrap(errors.Join(errs...)).
			BuildError()
	}
	return cfg, nil
}

// newSession loads configuration and builds the runner for one invocation.
func (a *App) newSession(cmd *cobra.Command) (*session, error) {
	cfg, err := a.loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	logger := newLogger(a.stderr, cfg.UI.Verbose)

	executor, err := a.Executors.Get(runtime.ExecutorType(cfg.Executor))
	if err != nil {
		return nil, issue.NewErrorContext().
			WithOperation("select executor").
			WithResource(string(cfg.Executor)).
			WithSuggestion(fmt.Sprintf("Available executors: %v", a.Executors.Available())).
			Wrap(err).
			BuildError()
	}

	env, err := processEnv(cfg)
	if err != nil {
		return nil, issue.NewErrorContext().
			WithOperation("load env files").
			WithSuggestion("Check the env_files entries in the config file; suffix a path with '?' to make it optional").
			WithIssue(issue.InvalidConfigValueId).
			Wrap(err).
			BuildError()
	}

	detector := &hostversion.Detector{
		Binary:   cfg.HostRuntime.Binary,
		Override: cfg.HostRuntime.MajorVersion,
		Executor: executor,
	}

	runner := samplerun.New(samplerun.Options{
		SamplesRoot: cfg.SamplesRoot,
		ProjectRoot: cfg.ProjectRoot,
		Manifest:    cfg.Manifest,
		Policy:      policyFromConfig(cfg),
		Strategy:    samplerun.FailureStrategy(cfg.Strategy),
		RuntimeName: cfg.HostRuntime.Name,
		Env:         env,
	}, executor, detector, samplerun.WithLogger(logger))

	logger.Debug("configuration loaded",
		"samples_root", cfg.SamplesRoot,
		"executor", cfg.Executor,
		"strategy", cfg.Strategy)

	return &session{cfg: cfg, logger: logger, runner: runner}, nil
}

func newLogger(w io.Writer, verbose bool) *log.Logger {
	level := log.InfoLevel
	if verbose {
		level = log.DebugLevel
	}
	return log.NewWithOptions(w, log.Options{Prefix: "samplectl", Level: level})
}

// processEnv merges env_files (in order) with the inline env entries, which win.
func processEnv(cfg *config.Config) ([]string, error) {
	if len(cfg.EnvFiles) == 0 {
		return cfg.Env, nil
	}

	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}
	fromFiles, err := runtime.LoadEnvFiles(cfg.EnvFiles, wd)
	if err != nil {
		return nil, err
	}
	return append(runtime.EnvToSlice(fromFiles), cfg.Env...), nil
}

func policyFromConfig(cfg *config.Config) sample.Policy {
	minVersions := make(map[sample.Identifier]int, len(cfg.MinHostVersions))
	for id, v := range cfg.MinHostVersions {
		minVersions[sample.Identifier(id)] = v
	}
	return sample.Policy{Exclusions: cfg.Exclude, MinVersions: minVersions}
}

// formatErrorForDisplay formats an error for user display.
// If the error is an ActionableError, it uses the Format method. When the
// ActionableError sits inside a failed target, the target's message leads so
// the failing directory and script stay visible.
func formatErrorForDisplay(err error, verbose bool) string {
	var ae *issue.ActionableError
	if !errors.As(err, &ae) {
		return err.Error()
	}
	var execErr *samplerun.ExecutionError
	if errors.As(err, &execErr) {
		return err.Error() + ae.Details(verbose)
	}
	return ae.Format(verbose)
}

// renderIssue renders the catalog entry linked to err, if any. Rendering
// failures fall back to nothing; the formatted error has already been shown.
func renderIssue(err error, scheme config.ColorScheme) string {
	var id issue.Id
	var ae *issue.ActionableError
	switch {
	case errors.As(err, &ae) && ae.Issue != 0:
		id = ae.Issue
	case errors.Is(err, samplerun.ErrExecutionFailed):
		id = issue.ExecutionFailedId
	default:
		return ""
	}
	entry := issue.Get(id)
	if entry == nil {
		return ""
	}
	out, renderErr := entry.Render(string(scheme))
	if renderErr != nil {
		return ""
	}
	return out
}

// fail prints err to stderr and returns the ExitError for it.
func (a *App) fail(cmd *cobra.Command, err error, verbose bool, scheme config.ColorScheme) error {
	cmd.SilenceErrors = true
	cmd.SilenceUsage = true

	fmt.Fprintln(a.stderr, ErrorStyle.Render("Error: ")+formatErrorForDisplay(err, verbose))
	if verbose {
		if rendered := renderIssue(err, scheme); rendered != "" {
			fmt.Fprint(a.stderr, rendered)
		}
	}
	return &ExitError{Code: classifyExitCode(err), Err: err}
}
