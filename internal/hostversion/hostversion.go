// SPDX-License-Identifier: MPL-2.0

// Package hostversion determines the major version of the host runtime
// (Node.js by default) that version-gated samples are checked against.
package hostversion

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"samplectl/internal/issue"
	"samplectl/internal/runtime"
)

// DefaultBinary is the runtime queried when no binary is configured.
const DefaultBinary = "node"

// ErrUnparsableVersion is returned when a version string has no leading major number.
var ErrUnparsableVersion = errors.New("unparsable version")

// Detector reports the host runtime major version.
type Detector struct {
	// Binary is the runtime executable; DefaultBinary when empty.
	Binary string
	// Override, when positive, is returned as-is and no process is spawned.
	Override int
	// Executor runs "<Binary> --version".
	Executor runtime.Executor
}

// Major returns the host runtime major version.
func (d *Detector) Major(ctx context.Context) (int, error) {
	if d.Override > 0 {
		return d.Override, nil
	}

	binary := d.Binary
	if binary == "" {
		binary = DefaultBinary
	}

	result := d.Executor.Execute(ctx, runtime.Invocation{Args: []string{binary, "--version"}})
	if !result.Success() {
		cause := result.Error
		if cause == nil {
			cause = fmt.Errorf("%s --version exited with code %d: %s", binary, result.ExitCode, strings.TrimSpace(result.ErrOutput))
		}
		return 0, detectError(binary, cause)
	}

	major, err := ParseMajor(result.Output)
	if err != nil {
		return 0, detectError(binary, err)
	}
	return major, nil
}

func detectError(binary string, cause error) error {
	return issue.NewErrorContext().
		WithOperation("detect host runtime version").
		WithResource(binary).
		WithSuggestion(fmt.Sprintf("Check that '%s --version' works in this shell", binary)).
		WithSuggestion("Pass the major version explicitly with --host-version").
		WithIssue(issue.HostVersionUnknownId).
		Wrap(cause).
		BuildError()
}

// ParseMajor extracts the leading major number from a version string such as
// "v18.19.0", "20.11.1" or "22". Surrounding whitespace and a leading "v" are ignored.
func ParseMajor(version string) (int, error) {
	s := strings.TrimPrefix(strings.TrimSpace(version), "v")

	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0, fmt.Errorf("%w: %q", ErrUnparsableVersion, strings.TrimSpace(version))
	}

	major, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0, fmt.Errorf("%w: %q: %w", ErrUnparsableVersion, version, err)
	}
	return major, nil
}
