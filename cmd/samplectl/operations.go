// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"strings"

	"samplectl/internal/config"
	"samplectl/internal/runtime"
	"samplectl/internal/samplerun"

	"github.com/spf13/cobra"
)

// newOperationCommand creates one of the built-in operation commands
// (install, build, test, e2e). The script behind it comes from configuration.
func newOperationCommand(app *App, name, short string) *cobra.Command {
	return &cobra.Command{
		Use:   name,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.runOperation(cmd, func(cfg *config.Config) (samplerun.CommandSpec, error) {
				op, ok := cfg.Operations.Named(name)
				if !ok {
					return samplerun.CommandSpec{}, fmt.Errorf("unknown operation %q", name)
				}
				return samplerun.CommandSpec{Script: op.Script, ExtraArgs: op.ExtraArgs}, nil
			})
		},
	}
}

// newRunCommand creates `samplectl run <script> [-- extra args]`.
func newRunCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "run <script> [-- extra args...]",
		Short: "Run an arbitrary script in every sample",
		Long: `Run an arbitrary script in every eligible sample.

The script is split into words like a shell would, then run with
"--prefix <sample dir>". Arguments after "--" are forwarded to the script.`,
		Example: `  samplectl run "npm run lint"
  samplectl run "npm run test" -- --coverage`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			script, extraArgs := splitRunArgs(args, cmd.ArgsLenAtDash())
			return app.runOperation(cmd, func(*config.Config) (samplerun.CommandSpec, error) {
				extra, err := runtime.QuoteArgs(extraArgs)
				if err != nil {
					return samplerun.CommandSpec{}, fmt.Errorf("invalid extra arguments: %w", err)
				}
				return samplerun.CommandSpec{Script: script, ExtraArgs: extra}, nil
			})
		},
	}
}

// splitRunArgs separates the script words from the arguments after "--".
// dash is cobra's ArgsLenAtDash (-1 when there is no "--").
func splitRunArgs(args []string, dash int) (script string, extra []string) {
	if dash < 0 || dash > len(args) {
		return strings.Join(args, " "), nil
	}
	return strings.Join(args[:dash], " "), args[dash:]
}

// runOperation is the shared pipeline of every command that executes scripts.
func (a *App) runOperation(cmd *cobra.Command, specFor func(*config.Config) (samplerun.CommandSpec, error)) error {
	sess, err := a.newSession(cmd)
	if err != nil {
		return a.fail(cmd, err, a.flags.verbose, config.ColorSchemeAuto)
	}
	verbose, scheme := sess.cfg.UI.Verbose, sess.cfg.UI.ColorScheme

	spec, err := specFor(sess.cfg)
	if err != nil {
		return a.fail(cmd, err, verbose, scheme)
	}

	report, err := sess.runner.RunAcrossSamples(cmd.Context(), spec)
	if report != nil {
		renderReport(a.stdout, report)
	}
	if err != nil {
		return a.fail(cmd, err, verbose, scheme)
	}
	return nil
}
