// SPDX-License-Identifier: MPL-2.0

package runtime

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"mvdan.cc/sh/v3/shell"
)

const (
	// PrefixFlag scopes the script runner to a project directory.
	PrefixFlag = "--prefix"
	// ArgsSeparator separates runner flags from arguments forwarded to the script.
	ArgsSeparator = "--"
)

// ErrEmptyScript is returned when a script splits into no fields.
var ErrEmptyScript = errors.New("script is empty")

// SplitFields splits a script or argument string into words using POSIX
// shell quoting rules. Variables are expanded from the host environment.
func SplitFields(s string) ([]string, error) {
	fields, err := shell.Fields(s, os.Getenv)
	if err != nil {
		return nil, fmt.Errorf("failed to split %q: %w", s, err)
	}
	return fields, nil
}

// BuildInvocation builds "<script> --prefix <dir> [-- <extraArgs>]".
// dir must already be absolute; extraArgs may be empty.
func BuildInvocation(script, dir, extraArgs string) (Invocation, error) {
	args, err := SplitFields(script)
	if err != nil {
		return Invocation{}, err
	}
	if len(args) == 0 {
		return Invocation{}, ErrEmptyScript
	}

	args = append(args, PrefixFlag, dir)

	if strings.TrimSpace(extraArgs) != "" {
		extra, err := SplitFields(extraArgs)
		if err != nil {
			return Invocation{}, err
		}
		args = append(args, ArgsSeparator)
		args = append(args, extra...)
	}

	return Invocation{Args: args}, nil
}

// String renders the invocation as a readable command line.
func (inv Invocation) String() string {
	if line, err := QuoteArgs(inv.Args); err == nil {
		return line
	}
	return strings.Join(inv.Args, " ")
}
