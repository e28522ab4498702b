// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"samplectl/internal/config"

	"github.com/spf13/cobra"
)

// newConfigCommand creates the `samplectl config` command tree.
func newConfigCommand(app *App) *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage samplectl configuration",
		Long: `Manage samplectl configuration.

Configuration is read from the first file found among:
  - the --config flag (.cue or .toml)
  - <config dir>/config.cue, then <config dir>/config.toml
  - ./samplectl.cue, then ./samplectl.toml

The config dir is ~/.config/samplectl on Linux,
~/Library/Application Support/samplectl on macOS and
%APPDATA%\samplectl on Windows. SAMPLECTL_* environment variables
override file values (e.g. SAMPLECTL_SAMPLES_ROOT).`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	var showFormat string
	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := app.loadConfig(cmd)
			if err != nil {
				return app.fail(cmd, err, app.flags.verbose, config.ColorSchemeAuto)
			}
			out, err := config.Generate(cfg, config.Format(showFormat))
			if err != nil {
				return app.fail(cmd, err, cfg.UI.Verbose, cfg.UI.ColorScheme)
			}
			_, err = app.stdout.Write(out)
			return err
		},
	}
	showCmd.Flags().StringVar(&showFormat, "format", string(config.FormatCUE), "output format: cue or toml")

	var initFormat string
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Create a default configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, created, err := config.CreateDefaultConfig(config.Format(initFormat))
			if err != nil {
				return app.fail(cmd, err, app.flags.verbose, config.ColorSchemeAuto)
			}
			if !created {
				fmt.Fprintf(app.stdout, "%s Configuration already exists at %s\n", skipIcon, PathStyle.Render(path))
				return nil
			}
			fmt.Fprintf(app.stdout, "%s Created %s\n", successIcon, PathStyle.Render(path))
			return nil
		},
	}
	initCmd.Flags().StringVar(&initFormat, "format", string(config.FormatCUE), "file format: cue or toml")

	pathCmd := &cobra.Command{
		Use:   "path",
		Short: "Show the configuration file path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			res, err := config.LoadWithPath(cmd.Context(), config.LoadOptions{ConfigFilePath: app.flags.configFile})
			if err != nil {
				return app.fail(cmd, err, app.flags.verbose, config.ColorSchemeAuto)
			}
			if res.Path != "" {
				fmt.Fprintln(app.stdout, res.Path)
				return nil
			}
			path, err := config.DefaultConfigPath(config.FormatCUE)
			if err != nil {
				return app.fail(cmd, err, app.flags.verbose, config.ColorSchemeAuto)
			}
			fmt.Fprintf(app.stdout, "%s %s\n", path, SubtitleStyle.Render("(not found, using defaults)"))
			return nil
		},
	}

	cfgCmd.AddCommand(showCmd, initCmd, pathCmd)
	return cfgCmd
}
