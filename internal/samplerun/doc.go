// SPDX-License-Identifier: MPL-2.0

// Package samplerun runs a package-manager script across every eligible
// sample of a sample tree.
//
// A Runner resolves the sample plan once per run (host version detection,
// exclusions, version gating, multi-application expansion) and then executes
// the script in each target directory strictly one after another. What
// happens after a failed target is decided by the FailureStrategy: abort
// stops at the first failure, collect keeps going and joins every failure.
//
// Progress is logged through charmbracelet/log. Captured stdout of a
// successful target is logged at info level, captured stderr at error level.
package samplerun
