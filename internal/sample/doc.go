// SPDX-License-Identifier: MPL-2.0

// Package sample models the sample tree that samplectl walks.
//
// A sample root contains one directory per sample. A sample is either a
// single-application sample (it holds a package manifest itself) or a
// multi-application sample whose immediate subdirectories are independent
// projects. Samples are keyed by an identifier taken from the first run of
// digits in their directory name ("34-graphql" -> "34"), which a Policy uses
// to gate execution on the host runtime's major version.
//
// Resolve turns a root, a Policy and the host major version into a Plan: the
// ordered list of samples with their execution targets or the reason they
// were skipped.
package sample
