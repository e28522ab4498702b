// SPDX-License-Identifier: MPL-2.0

// Package runtime provides the process execution layer for samplectl.
//
// Two executor implementations are available:
//   - native: spawns the script runner directly with os/exec
//   - virtual: runs the invocation through an embedded shell interpreter (mvdan/sh)
//
// Both implement the Executor interface and always capture stdout and stderr
// into the returned Result. An Invocation is built once per target directory
// by BuildInvocation and has the shape
//
//	<script fields...> --prefix <abs dir> [-- <extra args fields...>]
package runtime
