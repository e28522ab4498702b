// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"io"
	"path/filepath"
	"time"

	"samplectl/internal/samplerun"
)

// renderReport prints the run summary: one line per executed target, the
// skipped samples, then the totals.
func renderReport(w io.Writer, report *samplerun.Report) {
	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s %s\n", TitleStyle.Render("Summary:"), CmdStyle.Render(report.Command.String()))

	for _, t := range report.Targets {
		icon := successIcon
		if !t.Success {
			icon = errorIcon
		}
		fmt.Fprintf(w, "  %s %s %s\n", icon, PathStyle.Render(targetLabel(t)), SubtitleStyle.Render(formatDuration(t.Duration)))
	}
	for _, s := range report.Skipped {
		fmt.Fprintf(w, "  %s %s %s\n", skipIcon, PathStyle.Render(s.Sample.Name),
			WarningStyle.Render(fmt.Sprintf("(skipped, requires v%d)", s.Required)))
	}

	failed := len(report.Failures())
	line := fmt.Sprintf("%d passed, %d failed, %d skipped in %s",
		report.Passed(), failed, len(report.Skipped), formatDuration(report.TotalDuration))
	switch {
	case failed > 0:
		fmt.Fprintln(w, ErrorStyle.Render(line))
	case report.Aborted:
		fmt.Fprintln(w, WarningStyle.Render(line+" (interrupted)"))
	default:
		fmt.Fprintln(w, SuccessStyle.Render(line))
	}
}

// targetLabel names a target by its sample, plus the subdirectory for
// multi-application samples.
func targetLabel(t samplerun.TargetResult) string {
	if t.Sample.Path == "" || t.Sample.Path == t.Dir {
		return filepath.Base(t.Dir)
	}
	return filepath.Join(t.Sample.Name, filepath.Base(t.Dir))
}

func formatDuration(d time.Duration) string {
	return d.Round(time.Millisecond).String()
}
