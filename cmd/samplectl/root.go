// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"
)

// NewRootCommand builds the samplectl command tree around app.
func NewRootCommand(app *App) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "samplectl",
		Short: "Run package-manager scripts across a tree of sample projects",
		Long: TitleStyle.Render("samplectl") + SubtitleStyle.Render(" - run scripts across sample projects") + `

samplectl walks the immediate subdirectories of the sample root and runs a
package-manager script in each one, one at a time. A sample with its own
package.json runs once; a sample without one runs once per subdirectory.
Samples that need a newer host runtime are skipped with a notice, and
excluded samples are skipped silently.

` + SubtitleStyle.Render("Examples:") + `
  samplectl install                    Install dependencies in every sample
  samplectl build --strategy collect   Build everything, report all failures
  samplectl test --host-version 18     Test as if running on Node.js 18
  samplectl run "npm run lint"         Run an arbitrary script
  samplectl plan build                 Show what build would run
  samplectl config show                Show the effective configuration`,
		SilenceUsage: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&app.flags.configFile, "config", "", "config file, .cue or .toml (default is $HOME/.config/samplectl/config.cue)")
	flags.BoolVarP(&app.flags.verbose, "verbose", "v", false, "enable debug logging and detailed errors")
	flags.StringVar(&app.flags.samplesRoot, "samples-root", "", "directory containing the samples (default \"sample\")")
	flags.StringVar(&app.flags.strategy, "strategy", "", "failure strategy: abort or collect (default \"abort\")")
	flags.StringVar(&app.flags.executor, "executor", "", "executor: native or virtual (default \"native\")")
	flags.IntVar(&app.flags.hostVersion, "host-version", 0, "host runtime major version; skips detection when set")

	rootCmd.AddCommand(
		newOperationCommand(app, "install", "Install dependencies in every sample"),
		newOperationCommand(app, "build", "Build every sample"),
		newOperationCommand(app, "test", "Run the unit tests of every sample"),
		newOperationCommand(app, "e2e", "Run the end-to-end tests of every sample"),
		newRunCommand(app),
		newPlanCommand(app),
		newConfigCommand(app),
	)

	return rootCmd
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute builds the production command tree and runs it. It is called by
// main.main() and exits the process with the mapped exit code on failure.
func Execute() {
	rootCmd := NewRootCommand(NewApp(Dependencies{}))

	// fang overrides rootCmd.Version, so the version goes through fang.WithVersion.
	if err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		os.Exit(ExitUsage)
	}
}
