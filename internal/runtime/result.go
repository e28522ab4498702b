// SPDX-License-Identifier: MPL-2.0

package runtime

// NewErrorResult creates a Result with the given exit code and error.
func NewErrorResult(code ExitCode, err error) *Result {
	return &Result{ExitCode: code, Error: err}
}

// NewSuccessResult creates a Result with exit code 0 and the captured streams.
func NewSuccessResult(stdout, stderr string) *Result {
	return &Result{Output: stdout, ErrOutput: stderr}
}

// NewExitCodeResult creates a Result with the given exit code and captured streams.
// Use this for non-zero exits that represent normal process termination
// rather than launch failures.
func NewExitCodeResult(code ExitCode, stdout, stderr string) *Result {
	return &Result{ExitCode: code, Output: stdout, ErrOutput: stderr}
}
