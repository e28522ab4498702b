// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"

	"samplectl/internal/issue"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"
)

const (
	// AppName is the application name.
	AppName = "samplectl"
	// ConfigFileName is the name of the config file in the config directory (without extension).
	ConfigFileName = "config"
	// LocalConfigFileName is the name of the config file in the working directory (without extension).
	LocalConfigFileName = AppName
	// EnvPrefix prefixes environment variable overrides (SAMPLECTL_SAMPLES_ROOT, ...).
	EnvPrefix = "SAMPLECTL"

	// FormatCUE is the CUE config file format.
	FormatCUE Format = "cue"
	// FormatTOML is the TOML config file format.
	FormatTOML Format = "toml"

	// maxConfigFileSize bounds config files read from disk.
	maxConfigFileSize = 1 << 20
)

// ErrUnsupportedFormat is returned for config files that are neither CUE nor TOML.
var ErrUnsupportedFormat = errors.New("unsupported config format")

//go:embed config_schema.cue
var configSchema string

// Format is a config file format, named after its file extension.
type Format string

// FormatForPath returns the format implied by the file extension of path.
func FormatForPath(path string) (Format, error) {
	switch Format(strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")) {
	case FormatCUE:
		return FormatCUE, nil
	case FormatTOML:
		return FormatTOML, nil
	default:
		return "", fmt.Errorf("%w: %s (expected .cue or .toml)", ErrUnsupportedFormat, path)
	}
}

// ConfigDir returns the samplectl configuration directory using platform-specific
// conventions: Windows uses %APPDATA%, macOS uses ~/Library/Application Support,
// and Linux/others use $XDG_CONFIG_HOME (defaulting to ~/.config).
//
//nolint:revive // ConfigDir is more descriptive than Dir for external callers
func ConfigDir() (string, error) {
	if configDirOverride != "" {
		return configDirOverride, nil
	}

	var configDir string

	switch runtime.GOOS {
	case "windows":
		configDir = os.Getenv("APPDATA")
		if configDir == "" {
			configDir = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		configDir = filepath.Join(home, "Library", "Application Support")
	default:
		configDir = os.Getenv("XDG_CONFIG_HOME")
		if configDir == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", fmt.Errorf("failed to get home directory: %w", err)
			}
			configDir = filepath.Join(home, ".config")
		}
	}

	return filepath.Join(configDir, AppName), nil
}

// newViper returns a Viper instance holding the defaults and the
// SAMPLECTL_ environment binding.
func newViper() *viper.Viper {
	v := viper.New()

	defaults := DefaultConfig()
	v.SetDefault("samples_root", defaults.SamplesRoot)
	v.SetDefault("project_root", defaults.ProjectRoot)
	v.SetDefault("manifest", defaults.Manifest)
	v.SetDefault("executor", defaults.Executor)
	v.SetDefault("strategy", defaults.Strategy)
	v.SetDefault("host_runtime.name", defaults.HostRuntime.Name)
	v.SetDefault("host_runtime.binary", defaults.HostRuntime.Binary)
	v.SetDefault("host_runtime.major_version", defaults.HostRuntime.MajorVersion)
	v.SetDefault("exclude", defaults.Exclude)
	for _, name := range OperationNames() {
		op, _ := defaults.Operations.Named(name)
		v.SetDefault("operations."+name+".script", op.Script)
		v.SetDefault("operations."+name+".extra_args", op.ExtraArgs)
	}
	v.SetDefault("env", defaults.Env)
	v.SetDefault("env_files", defaults.EnvFiles)
	v.SetDefault("ui.color_scheme", defaults.UI.ColorScheme)
	v.SetDefault("ui.verbose", defaults.UI.Verbose)
	// min_host_versions has no Viper default: Viper merges nested maps key by
	// key, which would make the built-in gates impossible to remove from a file.

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v
}

// loadWithOptions performs option-driven config loading without mutating
// package-level state.
func loadWithOptions(ctx context.Context, opts LoadOptions) (*Config, string, error) {
	select {
	case <-ctx.Done():
		return nil, "", fmt.Errorf("load config canceled: %w", ctx.Err())
	default:
	}

	v := newViper()

	resolvedPath, err := resolveConfigPath(opts)
	if err != nil {
		return nil, "", err
	}
	if resolvedPath != "" {
		if err := loadFileIntoViper(v, resolvedPath); err != nil {
			return nil, "", issue.NewErrorContext().
				WithOperation("load configuration").
				WithResource(resolvedPath).
				WithSuggestion("Check that the file contains valid CUE or TOML syntax").
				WithSuggestion("Verify the configuration values match the expected schema").
				WithSuggestion("Run 'samplectl config show' to see the effective configuration").
				WithIssue(issue.ConfigLoadFailedId).
				Wrap(err).
				BuildError()
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, "", fmt.Errorf("failed to parse config: %w", err)
	}
	if cfg.MinHostVersions == nil {
		if v.InConfig("min_host_versions") {
			cfg.MinHostVersions = map[string]int{}
		} else {
			cfg.MinHostVersions = DefaultConfig().MinHostVersions
		}
	}

	if valid, errs := cfg.IsValid(); !valid {
		return nil, "", issue.NewErrorContext().
			WithOperation("validate configuration").
			WithResource(resolvedPath).
			WithSuggestion("Fix the reported fields in the config file or SAMPLECTL_* environment").
			WithIssue(issue.InvalidConfigValueId).
			Wrap(errors.Join(errs...)).
			BuildError()
	}

	return &cfg, resolvedPath, nil
}

// resolveConfigPath picks the config file: the explicit path, else the first
// of config.cue/config.toml in the config directory, else the first of
// samplectl.cue/samplectl.toml in the working directory. An empty result
// means "defaults only".
func resolveConfigPath(opts LoadOptions) (string, error) {
	if opts.ConfigFilePath != "" {
		if !fileExists(opts.ConfigFilePath) {
			return "", issue.NewErrorContext().
				WithOperation("load configuration").
				WithResource(opts.ConfigFilePath).
				WithSuggestion("Verify the file path is correct").
				WithSuggestion("Use 'samplectl config init' to create a default configuration").
				WithIssue(issue.ConfigLoadFailedId).
				Wrap(fmt.Errorf("config file not found: %s", opts.ConfigFilePath)).
				BuildError()
		}
		return opts.ConfigFilePath, nil
	}

	cfgDir, err := configDirWithOverride(opts.ConfigDirPath)
	if err != nil {
		return "", err
	}
	workDir := opts.WorkDir
	if workDir == "" {
		workDir = "."
	}

	candidates := []string{
		filepath.Join(cfgDir, ConfigFileName+"."+string(FormatCUE)),
		filepath.Join(cfgDir, ConfigFileName+"."+string(FormatTOML)),
		filepath.Join(workDir, LocalConfigFileName+"."+string(FormatCUE)),
		filepath.Join(workDir, LocalConfigFileName+"."+string(FormatTOML)),
	}
	for _, path := range candidates {
		if fileExists(path) {
			return path, nil
		}
	}
	return "", nil
}

// configDirWithOverride resolves the configuration directory, honoring
// explicit provider options before platform defaults.
func configDirWithOverride(configDirPath string) (string, error) {
	if configDirPath != "" {
		return configDirPath, nil
	}
	return ConfigDir()
}

// loadFileIntoViper reads a CUE or TOML file, validates it against the
// #Config schema and merges it over the defaults.
func loadFileIntoViper(v *viper.Viper, path string) error {
	format, err := FormatForPath(path)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if len(data) > maxConfigFileSize {
		return fmt.Errorf("%s: file size %d bytes exceeds maximum %d bytes", path, len(data), maxConfigFileSize)
	}

	ctx := cuecontext.New()
	var userValue cue.Value
	switch format {
	case FormatTOML:
		var raw map[string]any
		if err := toml.Unmarshal(data, &raw); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		userValue = ctx.Encode(raw)
	default:
		userValue = ctx.CompileBytes(data, cue.Filename(path))
	}
	if userValue.Err() != nil {
		return formatCUEError(userValue.Err(), path)
	}

	configMap, err := validateAgainstSchema(ctx, userValue, path)
	if err != nil {
		return err
	}

	if err := v.MergeConfigMap(configMap); err != nil {
		return fmt.Errorf("failed to merge config: %w", err)
	}
	return nil
}

// validateAgainstSchema unifies a user value with #Config and decodes the
// result for Viper. Fields stay optional, so values need not be concrete.
func validateAgainstSchema(ctx *cue.Context, userValue cue.Value, path string) (map[string]any, error) {
	schemaValue := ctx.CompileString(configSchema)
	if schemaValue.Err() != nil {
		return nil, fmt.Errorf("internal error: failed to compile config schema: %w", schemaValue.Err())
	}

	schema := schemaValue.LookupPath(cue.ParsePath("#Config"))
	unified := schema.Unify(userValue)
	if err := unified.Validate(cue.Concrete(false)); err != nil {
		return nil, formatCUEError(err, path)
	}

	var configMap map[string]any
	if err := unified.Decode(&configMap); err != nil {
		return nil, formatCUEError(err, path)
	}
	return configMap, nil
}

// fileExists checks if a file exists and is not a directory
func fileExists(path string) bool {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return false
	}
	return err == nil && !info.IsDir()
}

// DefaultConfigPath returns where CreateDefaultConfig writes a file of the given format.
func DefaultConfigPath(format Format) (string, error) {
	cfgDir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(cfgDir, ConfigFileName+"."+string(format)), nil
}

// CreateDefaultConfig writes the default configuration in the given format to
// the config directory. An existing file is left untouched and reported with
// created == false.
func CreateDefaultConfig(format Format) (path string, created bool, err error) {
	path, err = DefaultConfigPath(format)
	if err != nil {
		return "", false, err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", false, fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err == nil {
		return path, false, nil
	}

	content, err := Generate(DefaultConfig(), format)
	if err != nil {
		return "", false, err
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return "", false, fmt.Errorf("failed to write config file: %w", err)
	}
	return path, true, nil
}

// Generate renders cfg in the given format.
func Generate(cfg *Config, format Format) ([]byte, error) {
	switch format {
	case FormatCUE:
		return []byte(GenerateCUE(cfg)), nil
	case FormatTOML:
		return GenerateTOML(cfg)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

// GenerateTOML renders cfg as TOML.
func GenerateTOML(cfg *Config) ([]byte, error) {
	data, err := toml.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to encode config as TOML: %w", err)
	}
	return data, nil
}

// GenerateCUE generates a CUE representation of the configuration
func GenerateCUE(cfg *Config) string {
	var sb strings.Builder

	sb.WriteString("// samplectl configuration\n\n")

	fmt.Fprintf(&sb, "samples_root: %q\n", cfg.SamplesRoot)
	if cfg.ProjectRoot != "" {
		fmt.Fprintf(&sb, "project_root: %q\n", cfg.ProjectRoot)
	}
	fmt.Fprintf(&sb, "manifest: %q\n", cfg.Manifest)
	fmt.Fprintf(&sb, "executor: %q\n", cfg.Executor)
	fmt.Fprintf(&sb, "strategy: %q\n", cfg.Strategy)

	sb.WriteString("\nhost_runtime: {\n")
	fmt.Fprintf(&sb, "\tname: %q\n", cfg.HostRuntime.Name)
	fmt.Fprintf(&sb, "\tbinary: %q\n", cfg.HostRuntime.Binary)
	if cfg.HostRuntime.MajorVersion > 0 {
		fmt.Fprintf(&sb, "\tmajor_version: %d\n", cfg.HostRuntime.MajorVersion)
	}
	sb.WriteString("}\n")

	sb.WriteString("\nexclude: [")
	writeCUEStrings(&sb, cfg.Exclude)
	sb.WriteString("]\n")

	sb.WriteString("\nmin_host_versions: {\n")
	for _, id := range slices.Sorted(maps.Keys(cfg.MinHostVersions)) {
		fmt.Fprintf(&sb, "\t%q: %d\n", id, cfg.MinHostVersions[id])
	}
	sb.WriteString("}\n")

	sb.WriteString("\noperations: {\n")
	for _, name := range OperationNames() {
		op, _ := cfg.Operations.Named(name)
		fmt.Fprintf(&sb, "\t%s: {script: %q", name, op.Script)
		if op.ExtraArgs != "" {
			fmt.Fprintf(&sb, ", extra_args: %q", op.ExtraArgs)
		}
		sb.WriteString("}\n")
	}
	sb.WriteString("}\n")

	if len(cfg.Env) > 0 {
		sb.WriteString("\nenv: [")
		writeCUEStrings(&sb, cfg.Env)
		sb.WriteString("]\n")
	}
	if len(cfg.EnvFiles) > 0 {
		sb.WriteString("\nenv_files: [")
		writeCUEStrings(&sb, cfg.EnvFiles)
		sb.WriteString("]\n")
	}

	sb.WriteString("\nui: {\n")
	fmt.Fprintf(&sb, "\tcolor_scheme: %q\n", cfg.UI.ColorScheme)
	fmt.Fprintf(&sb, "\tverbose: %v\n", cfg.UI.Verbose)
	sb.WriteString("}\n")

	return sb.String()
}

func writeCUEStrings(sb *strings.Builder, values []string) {
	for i, s := range values {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(sb, "%q", s)
	}
}
