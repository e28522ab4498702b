// SPDX-License-Identifier: MPL-2.0

// Package issue provides actionable error handling with user-friendly messages.
//
// ActionableError carries the failed operation, the resource involved and
// suggestions for the user. The Issue catalog holds longer Markdown guidance
// for well-known failure classes, rendered for the terminal with glamour.
package issue
