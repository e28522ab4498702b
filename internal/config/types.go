// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
)

const (
	// ExecutorNative spawns the script runner directly as a host process.
	// Defined locally to avoid coupling config to internal/runtime.
	ExecutorNative ExecutorMode = "native"
	// ExecutorVirtual runs the script runner through the embedded mvdan/sh interpreter.
	ExecutorVirtual ExecutorMode = "virtual"

	// StrategyAbort stops at the first failed sample.
	StrategyAbort Strategy = "abort"
	// StrategyCollect runs every sample and reports all failures at the end.
	StrategyCollect Strategy = "collect"

	// ColorSchemeAuto detects the terminal color scheme automatically.
	ColorSchemeAuto ColorScheme = "auto"
	// ColorSchemeDark forces dark color scheme.
	ColorSchemeDark ColorScheme = "dark"
	// ColorSchemeLight forces light color scheme.
	ColorSchemeLight ColorScheme = "light"
)

var (
	// ErrInvalidExecutorMode is returned when an ExecutorMode value is not recognized.
	ErrInvalidExecutorMode = errors.New("invalid executor mode")
	// ErrInvalidStrategy is returned when a Strategy value is not recognized.
	ErrInvalidStrategy = errors.New("invalid failure strategy")
	// ErrInvalidColorScheme is returned when a ColorScheme value is not recognized.
	ErrInvalidColorScheme = errors.New("invalid color scheme")
	// ErrInvalidMinHostVersion is returned for a malformed version table entry.
	ErrInvalidMinHostVersion = errors.New("invalid minimum host version")
	// ErrInvalidEnvEntry is returned for an env entry that is not KEY=VALUE.
	ErrInvalidEnvEntry = errors.New("invalid env entry")
	// ErrInvalidOperation is the sentinel error wrapped by InvalidOperationError.
	ErrInvalidOperation = errors.New("invalid operation")
	// ErrInvalidConfig is the sentinel error wrapped by InvalidConfigError.
	ErrInvalidConfig = errors.New("invalid config")
)

type (
	// ExecutorMode selects how scripts are launched.
	ExecutorMode string

	// InvalidExecutorModeError is returned when an ExecutorMode value is not recognized.
	// It wraps ErrInvalidExecutorMode for errors.Is() compatibility.
	InvalidExecutorModeError struct {
		Value ExecutorMode
	}

	// Strategy selects what happens after a sample fails.
	Strategy string

	// InvalidStrategyError is returned when a Strategy value is not recognized.
	InvalidStrategyError struct {
		Value Strategy
	}

	// ColorScheme specifies the terminal color scheme preference.
	ColorScheme string

	// InvalidColorSchemeError is returned when a ColorScheme value is not recognized.
	InvalidColorSchemeError struct {
		Value ColorScheme
	}

	// InvalidMinHostVersionError reports a version table entry whose key is not
	// a sample identifier or whose version is not positive.
	InvalidMinHostVersionError struct {
		Identifier string
		Version    int
	}

	// InvalidEnvEntryError reports an env entry that is not KEY=VALUE.
	InvalidEnvEntryError struct {
		Value string
	}

	// InvalidOperationError reports an operation with an empty script.
	InvalidOperationError struct {
		Name string
	}

	// InvalidConfigError is returned when a Config has invalid fields.
	// It wraps ErrInvalidConfig for errors.Is() compatibility and collects
	// field-level validation errors from all sub-components.
	InvalidConfigError struct {
		FieldErrors []error
	}

	// Config holds the application configuration.
	Config struct {
		// SamplesRoot is the directory whose immediate children are samples.
		SamplesRoot string `json:"samples_root" toml:"samples_root" mapstructure:"samples_root"`
		// ProjectRoot is the base for the relative paths shown in logs (default: working directory).
		ProjectRoot string `json:"project_root,omitempty" toml:"project_root,omitempty" mapstructure:"project_root"`
		// Manifest is the file marking a single-application sample.
		Manifest string `json:"manifest" toml:"manifest" mapstructure:"manifest"`
		// Executor selects the native or virtual executor.
		Executor ExecutorMode `json:"executor" toml:"executor" mapstructure:"executor"`
		// Strategy selects abort-on-first-failure or collect-all-failures.
		Strategy Strategy `json:"strategy" toml:"strategy" mapstructure:"strategy"`
		// HostRuntime configures host version detection.
		HostRuntime HostRuntimeConfig `json:"host_runtime" toml:"host_runtime" mapstructure:"host_runtime"`
		// Exclude lists sample path suffixes that never run.
		Exclude []string `json:"exclude" toml:"exclude" mapstructure:"exclude"`
		// MinHostVersions maps sample identifiers to the minimum host major version.
		MinHostVersions map[string]int `json:"min_host_versions" toml:"min_host_versions" mapstructure:"min_host_versions"`
		// Operations configures the scripts behind install, build, test and e2e.
		Operations OperationsConfig `json:"operations" toml:"operations" mapstructure:"operations"`
		// Env holds extra KEY=VALUE entries for every script process.
		Env []string `json:"env,omitempty" toml:"env,omitempty" mapstructure:"env"`
		// EnvFiles are dotenv files loaded into every script process; a trailing "?" marks one optional.
		EnvFiles []string `json:"env_files,omitempty" toml:"env_files,omitempty" mapstructure:"env_files"`
		// UI configures the user interface.
		UI UIConfig `json:"ui" toml:"ui" mapstructure:"ui"`
	}

	// HostRuntimeConfig configures host runtime version detection.
	HostRuntimeConfig struct {
		// Name is shown in skip notices.
		Name string `json:"name" toml:"name" mapstructure:"name"`
		// Binary is queried with --version.
		Binary string `json:"binary" toml:"binary" mapstructure:"binary"`
		// MajorVersion skips detection when positive.
		MajorVersion int `json:"major_version,omitempty" toml:"major_version,omitempty" mapstructure:"major_version"`
	}

	// OperationsConfig holds one OperationConfig per built-in operation.
	OperationsConfig struct {
		Install OperationConfig `json:"install" toml:"install" mapstructure:"install"`
		Build   OperationConfig `json:"build" toml:"build" mapstructure:"build"`
		Test    OperationConfig `json:"test" toml:"test" mapstructure:"test"`
		E2E     OperationConfig `json:"e2e" toml:"e2e" mapstructure:"e2e"`
	}

	// OperationConfig is the script behind one operation.
	OperationConfig struct {
		// Script is the script runner invocation, e.g. "npm run build".
		Script string `json:"script" toml:"script" mapstructure:"script"`
		// ExtraArgs are forwarded to the script after "--".
		ExtraArgs string `json:"extra_args,omitempty" toml:"extra_args,omitempty" mapstructure:"extra_args"`
	}

	// UIConfig configures the user interface.
	UIConfig struct {
		// ColorScheme sets the color scheme
		ColorScheme ColorScheme `json:"color_scheme" toml:"color_scheme" mapstructure:"color_scheme"`
		// Verbose enables debug logging and detailed error output
		Verbose bool `json:"verbose" toml:"verbose" mapstructure:"verbose"`
	}
)

// Error implements the error interface for InvalidExecutorModeError.
func (e *InvalidExecutorModeError) Error() string {
	return fmt.Sprintf("invalid executor mode %q (valid: native, virtual)", e.Value)
}

// Unwrap returns the sentinel error for errors.Is() compatibility.
func (e *InvalidExecutorModeError) Unwrap() error { return ErrInvalidExecutorMode }

// String returns the string representation of the ExecutorMode.
func (m ExecutorMode) String() string { return string(m) }

// IsValid returns whether the ExecutorMode is one of the defined modes,
// and a list of validation errors if it is not.
func (m ExecutorMode) IsValid() (bool, []error) {
	switch m {
	case ExecutorNative, ExecutorVirtual:
		return true, nil
	default:
		return false, []error{&InvalidExecutorModeError{Value: m}}
	}
}

// Error implements the error interface for InvalidStrategyError.
func (e *InvalidStrategyError) Error() string {
	return fmt.Sprintf("invalid failure strategy %q (valid: abort, collect)", e.Value)
}

// Unwrap returns the sentinel error for errors.Is() compatibility.
func (e *InvalidStrategyError) Unwrap() error { return ErrInvalidStrategy }

// String returns the string representation of the Strategy.
func (s Strategy) String() string { return string(s) }

// IsValid returns whether the Strategy is one of the defined strategies.
func (s Strategy) IsValid() (bool, []error) {
	switch s {
	case StrategyAbort, StrategyCollect:
		return true, nil
	default:
		return false, []error{&InvalidStrategyError{Value: s}}
	}
}

// Error implements the error interface for InvalidColorSchemeError.
func (e *InvalidColorSchemeError) Error() string {
	return fmt.Sprintf("invalid color scheme %q (valid: auto, dark, light)", e.Value)
}

// Unwrap returns the sentinel error for errors.Is() compatibility.
func (e *InvalidColorSchemeError) Unwrap() error { return ErrInvalidColorScheme }

// String returns the string representation of the ColorScheme.
func (cs ColorScheme) String() string { return string(cs) }

// IsValid returns whether the ColorScheme is one of the defined color schemes.
func (cs ColorScheme) IsValid() (bool, []error) {
	switch cs {
	case ColorSchemeAuto, ColorSchemeDark, ColorSchemeLight:
		return true, nil
	default:
		return false, []error{&InvalidColorSchemeError{Value: cs}}
	}
}

// Error implements the error interface for InvalidMinHostVersionError.
func (e *InvalidMinHostVersionError) Error() string {
	return fmt.Sprintf("invalid minimum host version %q: %d (keys must be digits, versions positive)", e.Identifier, e.Version)
}

// Unwrap returns the sentinel error for errors.Is() compatibility.
func (e *InvalidMinHostVersionError) Unwrap() error { return ErrInvalidMinHostVersion }

// Error implements the error interface for InvalidEnvEntryError.
func (e *InvalidEnvEntryError) Error() string {
	return fmt.Sprintf("invalid env entry %q: expected KEY=VALUE", e.Value)
}

// Unwrap returns the sentinel error for errors.Is() compatibility.
func (e *InvalidEnvEntryError) Unwrap() error { return ErrInvalidEnvEntry }

// Error implements the error interface for InvalidOperationError.
func (e *InvalidOperationError) Error() string {
	return fmt.Sprintf("invalid operation %q: script must not be empty", e.Name)
}

// Unwrap returns the sentinel error for errors.Is() compatibility.
func (e *InvalidOperationError) Unwrap() error { return ErrInvalidOperation }

// Error implements the error interface for InvalidConfigError.
func (e *InvalidConfigError) Error() string {
	msgs := make([]string, 0, len(e.FieldErrors))
	for _, err := range e.FieldErrors {
		msgs = append(msgs, err.Error())
	}
	return fmt.Sprintf("invalid config: %s", strings.Join(msgs, "; "))
}

// Unwrap returns ErrInvalidConfig followed by the field errors, so errors.Is()
// matches both the config-level sentinel and each field sentinel.
func (e *InvalidConfigError) Unwrap() []error {
	return append([]error{ErrInvalidConfig}, e.FieldErrors...)
}

// Named returns the operation config for name ("install", "build", "test", "e2e").
func (o OperationsConfig) Named(name string) (OperationConfig, bool) {
	switch name {
	case "install":
		return o.Install, true
	case "build":
		return o.Build, true
	case "test":
		return o.Test, true
	case "e2e":
		return o.E2E, true
	default:
		return OperationConfig{}, false
	}
}

// IsValid checks that every operation names a script.
func (o OperationsConfig) IsValid() (bool, []error) {
	var errs []error
	for _, name := range OperationNames() {
		op, _ := o.Named(name)
		if strings.TrimSpace(op.Script) == "" {
			errs = append(errs, &InvalidOperationError{Name: name})
		}
	}
	return len(errs) == 0, errs
}

// OperationNames lists the built-in operations in their canonical order.
func OperationNames() []string {
	return []string{"install", "build", "test", "e2e"}
}

// IsValid returns whether the Config has valid fields, collecting every
// field error rather than stopping at the first.
func (c Config) IsValid() (bool, []error) {
	var errs []error
	if strings.TrimSpace(c.SamplesRoot) == "" {
		errs = append(errs, errors.New("samples_root must not be empty"))
	}
	if strings.TrimSpace(c.Manifest) == "" {
		errs = append(errs, errors.New("manifest must not be empty"))
	}
	if valid, fieldErrs := c.Executor.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if valid, fieldErrs := c.Strategy.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if c.HostRuntime.MajorVersion < 0 {
		errs = append(errs, fmt.Errorf("host_runtime.major_version must not be negative, got %d", c.HostRuntime.MajorVersion))
	}
	for _, id := range slices.Sorted(maps.Keys(c.MinHostVersions)) {
		version := c.MinHostVersions[id]
		if !isDigits(id) || version <= 0 {
			errs = append(errs, &InvalidMinHostVersionError{Identifier: id, Version: version})
		}
	}
	for _, entry := range c.Env {
		if key, _, ok := strings.Cut(entry, "="); !ok || strings.TrimSpace(key) == "" {
			errs = append(errs, &InvalidEnvEntryError{Value: entry})
		}
	}
	if valid, fieldErrs := c.Operations.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if valid, fieldErrs := c.UI.ColorScheme.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if len(errs) > 0 {
		return false, []error{&InvalidConfigError{FieldErrors: errs}}
	}
	return true, nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		SamplesRoot: "sample",
		Manifest:    "package.json",
		Executor:    ExecutorNative,
		Strategy:    StrategyAbort,
		HostRuntime: HostRuntimeConfig{
			Name:   "Node.js",
			Binary: "node",
		},
		Exclude: []string{"22-graphql-prisma"},
		MinHostVersions: map[string]int{
			"34": 18,
			"35": 22,
		},
		Operations: OperationsConfig{
			Install: OperationConfig{Script: "npm install --legacy-peer-deps"},
			Build:   OperationConfig{Script: "npm run build"},
			Test:    OperationConfig{Script: "npm run test", ExtraArgs: "--passWithNoTests"},
			E2E:     OperationConfig{Script: "npm run test:e2e", ExtraArgs: "--passWithNoTests"},
		},
		Env:      []string{},
		EnvFiles: []string{},
		UI: UIConfig{
			ColorScheme: ColorSchemeAuto,
			Verbose:     false,
		},
	}
}
