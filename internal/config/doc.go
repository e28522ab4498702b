// SPDX-License-Identifier: MPL-2.0

// Package config handles samplectl configuration using Viper with CUE or TOML
// as the file format.
//
// Configuration is loaded from an explicit --config file, else from
// config.cue or config.toml in the user config directory
// (~/.config/samplectl on Linux, ~/Library/Application Support/samplectl on
// macOS, %APPDATA%\samplectl on Windows), else from samplectl.cue or
// samplectl.toml in the working directory. Built-in defaults cover every
// setting, so running without any file is the normal case.
//
// CUE files are validated against the embedded schema (config_schema.cue).
// TOML files are decoded strictly, so unknown keys are rejected. Environment
// variables prefixed with SAMPLECTL_ override file values.
package config
