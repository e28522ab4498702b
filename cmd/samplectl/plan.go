// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"io"
	"path/filepath"

	"samplectl/internal/config"
	"samplectl/internal/sample"

	"github.com/spf13/cobra"
)

// newPlanCommand creates `samplectl plan [operation]`, a dry run that
// resolves the sample tree without executing anything.
func newPlanCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:       "plan [operation]",
		Short:     "Show which samples an operation would run in",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: config.OperationNames(),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := app.newSession(cmd)
			if err != nil {
				return app.fail(cmd, err, app.flags.verbose, config.ColorSchemeAuto)
			}

			script := ""
			if len(args) == 1 {
				op, ok := sess.cfg.Operations.Named(args[0])
				if !ok {
					return app.fail(cmd, fmt.Errorf("unknown operation %q (valid: %v)", args[0], config.OperationNames()), sess.cfg.UI.Verbose, sess.cfg.UI.ColorScheme)
				}
				script = op.Script
				if op.ExtraArgs != "" {
					script += " -- " + op.ExtraArgs
				}
			}

			plan, err := sess.runner.Plan(cmd.Context())
			if err != nil {
				return app.fail(cmd, err, sess.cfg.UI.Verbose, sess.cfg.UI.ColorScheme)
			}
			renderPlan(app.stdout, plan, script)
			return nil
		},
	}
}

func renderPlan(w io.Writer, plan *sample.Plan, script string) {
	fmt.Fprintf(w, "%s %s\n", TitleStyle.Render("Sample root:"), plan.Root)
	if plan.HostMajor > 0 {
		fmt.Fprintf(w, "%s v%d\n", TitleStyle.Render("Host runtime:"), plan.HostMajor)
	} else {
		fmt.Fprintf(w, "%s %s\n", TitleStyle.Render("Host runtime:"), SubtitleStyle.Render("not queried, no version gates"))
	}
	if script != "" {
		fmt.Fprintf(w, "%s %s\n", TitleStyle.Render("Script:"), CmdStyle.Render(script))
	}
	fmt.Fprintln(w)

	for _, e := range plan.Entries {
		if e.Skipped {
			fmt.Fprintf(w, "  %s %s %s\n", skipIcon, PathStyle.Render(e.Sample.Name),
				WarningStyle.Render(fmt.Sprintf("skipped, requires v%d", e.Required)))
			continue
		}
		fmt.Fprintf(w, "  %s %s %s\n", successIcon, PathStyle.Render(e.Sample.Name), SubtitleStyle.Render(string(e.Kind)))
		if e.Kind == sample.KindMulti {
			for _, target := range e.Targets {
				fmt.Fprintf(w, "      %s\n", PathStyle.Render(filepath.Base(target)))
			}
		}
	}
	for _, ex := range plan.Excluded {
		fmt.Fprintf(w, "  %s %s %s\n", skipIcon, PathStyle.Render(filepath.Base(ex)), SubtitleStyle.Render("excluded"))
	}

	fmt.Fprintf(w, "\n%d target(s), %d skipped, %d excluded\n", len(plan.Targets()), len(plan.Skipped()), len(plan.Excluded))
}
