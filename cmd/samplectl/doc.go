// SPDX-License-Identifier: MPL-2.0

// Package cmd contains the samplectl command tree.
//
// The operation commands (install, build, test, e2e) and the generic run
// command share one pipeline: load configuration, apply flag overrides, build
// a samplerun.Runner, run the script across the sample tree and map the
// outcome to an exit code through ExitError.
package cmd
