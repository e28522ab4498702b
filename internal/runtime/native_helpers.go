// SPDX-License-Identifier: MPL-2.0

package runtime

import (
	"bytes"
	"errors"
	"os/exec"
)

// capturedOutput holds the captured stdout and stderr buffers of one invocation.
type capturedOutput struct {
	stdout bytes.Buffer
	stderr bytes.Buffer
}

// extractExitCode determines the exit code from a command execution error.
// Returns a Result with exit code, captured output strings, and any error.
func extractExitCode(err error, captured *capturedOutput) *Result {
	var stdout, stderr string
	if captured != nil {
		stdout = captured.stdout.String()
		stderr = captured.stderr.String()
	}

	if err == nil {
		return NewSuccessResult(stdout, stderr)
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		// Command executed but returned non-zero exit code
		exitCode := ExitCode(exitErr.ExitCode())
		if validateErr := exitCode.Validate(); validateErr != nil {
			result := NewExitCodeResult(1, stdout, stderr)
			result.Error = errors.Join(err, validateErr)
			return result
		}
		return NewExitCodeResult(exitCode, stdout, stderr)
	}

	// Some other error (e.g., command not found, permission denied)
	result := NewExitCodeResult(1, stdout, stderr)
	result.Error = err
	return result
}
