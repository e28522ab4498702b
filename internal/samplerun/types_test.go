// SPDX-License-Identifier: MPL-2.0

package samplerun

import (
	"errors"
	"strings"
	"testing"
)

func TestFailureStrategy_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		value   FailureStrategy
		wantErr bool
	}{
		{StrategyAbort, false},
		{StrategyCollect, false},
		{"", true},
		{"ABORT", true},
		{"retry", true},
	}

	for _, tt := range tests {
		t.Run(string(tt.value), func(t *testing.T) {
			t.Parallel()
			err := tt.value.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidStrategy) {
				t.Errorf("error does not wrap ErrInvalidStrategy: %v", err)
			}
		})
	}
}

func TestCommandSpec_String(t *testing.T) {
	t.Parallel()

	if got := (CommandSpec{Script: "npm run build"}).String(); got != "npm run build" {
		t.Errorf("String() = %q", got)
	}
	if got := (CommandSpec{Script: "npm run test", ExtraArgs: "--passWithNoTests"}).String(); got != "npm run test -- --passWithNoTests" {
		t.Errorf("String() = %q", got)
	}
}

func TestExecutionError_Message(t *testing.T) {
	t.Parallel()

	exitErr := &ExecutionError{Dir: "/s/10-a", Script: "npm run build", ExitCode: 2}
	if msg := exitErr.Error(); !strings.Contains(msg, "exit code 2") || !strings.Contains(msg, "/s/10-a") {
		t.Errorf("Error() = %q", msg)
	}

	cause := errors.New("spawn failed")
	launchErr := &ExecutionError{Dir: "/s/10-a", Script: "npm run build", ExitCode: 1, Err: cause}
	if !errors.Is(launchErr, cause) || !errors.Is(launchErr, ErrExecutionFailed) {
		t.Error("launch error should match both its cause and ErrExecutionFailed")
	}
	if !strings.Contains(launchErr.Error(), "spawn failed") {
		t.Errorf("Error() = %q", launchErr.Error())
	}
}
