// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"testing"

	"samplectl/internal/issue"
	"samplectl/internal/testutil"
)

// loadFrom loads configuration with an isolated config dir and work dir.
func loadFrom(t *testing.T, cfgDir, workDir string) (*LoadResult, error) {
	t.Helper()
	return LoadWithPath(context.Background(), LoadOptions{ConfigDirPath: cfgDir, WorkDir: workDir})
}

func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()

	if cfg.SamplesRoot != "sample" || cfg.Manifest != "package.json" {
		t.Errorf("samples_root = %q, manifest = %q", cfg.SamplesRoot, cfg.Manifest)
	}
	if cfg.Executor != ExecutorNative || cfg.Strategy != StrategyAbort {
		t.Errorf("executor = %q, strategy = %q", cfg.Executor, cfg.Strategy)
	}
	if !slices.Equal(cfg.Exclude, []string{"22-graphql-prisma"}) {
		t.Errorf("exclude = %v", cfg.Exclude)
	}
	if cfg.MinHostVersions["34"] != 18 || cfg.MinHostVersions["35"] != 22 || len(cfg.MinHostVersions) != 2 {
		t.Errorf("min_host_versions = %v", cfg.MinHostVersions)
	}
	if cfg.Operations.Install.Script != "npm install --legacy-peer-deps" {
		t.Errorf("install script = %q", cfg.Operations.Install.Script)
	}
	if cfg.Operations.Test.ExtraArgs != "--passWithNoTests" || cfg.Operations.E2E.Script != "npm run test:e2e" {
		t.Errorf("test/e2e operations = %+v / %+v", cfg.Operations.Test, cfg.Operations.E2E)
	}
	if cfg.HostRuntime.Binary != "node" || cfg.HostRuntime.MajorVersion != 0 {
		t.Errorf("host_runtime = %+v", cfg.HostRuntime)
	}
	if valid, errs := cfg.IsValid(); !valid {
		t.Errorf("DefaultConfig() is invalid: %v", errs)
	}
}

func TestConfigDir(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("XDG lookup is Linux-only")
	}

	t.Cleanup(testutil.MustSetenv(t, "XDG_CONFIG_HOME", "/tmp/test-xdg-config"))
	dir, err := ConfigDir()
	if err != nil {
		t.Fatalf("ConfigDir() returned error: %v", err)
	}
	if want := filepath.Join("/tmp/test-xdg-config", AppName); dir != want {
		t.Errorf("ConfigDir() = %s, want %s", dir, want)
	}

	t.Cleanup(testutil.MustUnsetenv(t, "XDG_CONFIG_HOME"))
	dir, err = ConfigDir()
	if err != nil {
		t.Fatalf("ConfigDir() returned error: %v", err)
	}
	home, _ := os.UserHomeDir()
	if want := filepath.Join(home, ".config", AppName); dir != want {
		t.Errorf("ConfigDir() = %s, want %s", dir, want)
	}
}

func TestConfigDirOverride(t *testing.T) {
	override := t.TempDir()
	SetConfigDirOverride(override)
	t.Cleanup(Reset)

	dir, err := ConfigDir()
	if err != nil || dir != override {
		t.Errorf("ConfigDir() = %q, %v; want %q", dir, err, override)
	}
}

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	res, err := loadFrom(t, t.TempDir(), t.TempDir())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if res.Path != "" {
		t.Errorf("Path = %q, want empty", res.Path)
	}
	if res.Config.SamplesRoot != "sample" || res.Config.MinHostVersions["34"] != 18 {
		t.Errorf("config = %+v, want defaults", res.Config)
	}
}

func TestLoad_CUEFile(t *testing.T) {
	cfgDir := t.TempDir()
	testutil.MustWriteFile(t, filepath.Join(cfgDir, "config.cue"), `
samples_root: "examples"
strategy: "collect"
exclude: ["10-legacy", "nested/old"]
min_host_versions: {"40": 20}
operations: build: {script: "pnpm run build"}
ui: verbose: true
`)

	res, err := loadFrom(t, cfgDir, t.TempDir())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	cfg := res.Config

	if res.Path != filepath.Join(cfgDir, "config.cue") {
		t.Errorf("Path = %q", res.Path)
	}
	if cfg.SamplesRoot != "examples" || cfg.Strategy != StrategyCollect || !cfg.UI.Verbose {
		t.Errorf("config = %+v", cfg)
	}
	if !slices.Equal(cfg.Exclude, []string{"10-legacy", "nested/old"}) {
		t.Errorf("exclude = %v", cfg.Exclude)
	}
	if len(cfg.MinHostVersions) != 1 || cfg.MinHostVersions["40"] != 20 {
		t.Errorf("min_host_versions = %v, want file table to replace defaults", cfg.MinHostVersions)
	}
	if cfg.Operations.Build.Script != "pnpm run build" {
		t.Errorf("build script = %q", cfg.Operations.Build.Script)
	}
	if cfg.Operations.Test.Script != "npm run test" {
		t.Errorf("test script = %q, want default kept", cfg.Operations.Test.Script)
	}
}

func TestLoad_EmptyVersionTableDisablesGates(t *testing.T) {
	cfgDir := t.TempDir()
	testutil.MustWriteFile(t, filepath.Join(cfgDir, "config.cue"), "min_host_versions: {}\n")

	res, err := loadFrom(t, cfgDir, t.TempDir())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(res.Config.MinHostVersions) != 0 {
		t.Errorf("min_host_versions = %v, want empty", res.Config.MinHostVersions)
	}
}

func TestLoad_TOMLFile(t *testing.T) {
	workDir := t.TempDir()
	testutil.MustWriteFile(t, filepath.Join(workDir, "samplectl.toml"), `
executor = "virtual"
env = ["CI=true"]

[host_runtime]
major_version = 20

[operations.e2e]
script = "yarn test:e2e"
`)

	res, err := loadFrom(t, t.TempDir(), workDir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	cfg := res.Config

	if res.Path != filepath.Join(workDir, "samplectl.toml") {
		t.Errorf("Path = %q", res.Path)
	}
	if cfg.Executor != ExecutorVirtual || cfg.HostRuntime.MajorVersion != 20 {
		t.Errorf("config = %+v", cfg)
	}
	if !slices.Equal(cfg.Env, []string{"CI=true"}) {
		t.Errorf("env = %v", cfg.Env)
	}
	if cfg.Operations.E2E.Script != "yarn test:e2e" || cfg.Operations.E2E.ExtraArgs != "" {
		t.Errorf("e2e = %+v", cfg.Operations.E2E)
	}
}

func TestLoad_ConfigDirWinsOverWorkDir(t *testing.T) {
	cfgDir, workDir := t.TempDir(), t.TempDir()
	testutil.MustWriteFile(t, filepath.Join(cfgDir, "config.toml"), "samples_root = \"from-dir\"\n")
	testutil.MustWriteFile(t, filepath.Join(workDir, "samplectl.cue"), "samples_root: \"from-work\"\n")

	res, err := loadFrom(t, cfgDir, workDir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if res.Config.SamplesRoot != "from-dir" {
		t.Errorf("samples_root = %q, want from-dir", res.Config.SamplesRoot)
	}
}

func TestLoad_ExplicitFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.cue")
	testutil.MustWriteFile(t, path, "manifest: \"deno.json\"\n")

	cfg, err := NewProvider().Load(context.Background(), LoadOptions{ConfigFilePath: path, ConfigDirPath: t.TempDir()})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Manifest != "deno.json" {
		t.Errorf("manifest = %q", cfg.Manifest)
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
		wantId  issue.Id
		wantMsg string
	}{
		{"schema violation", "config.cue", "executor: \"docker\"\n", issue.ConfigLoadFailedId, "executor"},
		{"unknown CUE field", "config.cue", "sample_root: \"x\"\n", issue.ConfigLoadFailedId, "sample_root"},
		{"bad version key", "config.cue", "min_host_versions: {\"abc\": 3}\n", issue.ConfigLoadFailedId, "abc"},
		{"CUE syntax", "config.cue", "samples_root: \n", issue.ConfigLoadFailedId, "config.cue"},
		{"unknown TOML key", "config.toml", "verbose = true\n", issue.ConfigLoadFailedId, "verbose"},
		{"TOML syntax", "config.toml", "samples_root = \n", issue.ConfigLoadFailedId, "config.toml"},
		{"bad env entry", "config.toml", "env = [\"NOEQUALS\"]\n", issue.ConfigLoadFailedId, "env"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfgDir := t.TempDir()
			testutil.MustWriteFile(t, filepath.Join(cfgDir, tt.file), tt.content)

			_, err := loadFrom(t, cfgDir, t.TempDir())
			if err == nil {
				t.Fatal("Load() succeeded, want error")
			}
			var ae *issue.ActionableError
			if !errors.As(err, &ae) {
				t.Fatalf("error = %T %v, want *issue.ActionableError", err, err)
			}
			if ae.Issue != tt.wantId {
				t.Errorf("Issue = %v, want %v", ae.Issue, tt.wantId)
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("error %q does not mention %q", err.Error(), tt.wantMsg)
			}
		})
	}
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := LoadWithPath(context.Background(), LoadOptions{ConfigFilePath: filepath.Join(t.TempDir(), "nope.cue")})
	var ae *issue.ActionableError
	if !errors.As(err, &ae) || !strings.Contains(err.Error(), "config file not found") {
		t.Fatalf("error = %v, want config file not found", err)
	}
}

func TestLoad_UnsupportedExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	testutil.MustWriteFile(t, path, "samples_root: x\n")

	_, err := LoadWithPath(context.Background(), LoadOptions{ConfigFilePath: path})
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("error = %v, want ErrUnsupportedFormat", err)
	}
}

func TestLoad_SemanticValidation(t *testing.T) {
	t.Cleanup(testutil.MustSetenv(t, "SAMPLECTL_STRATEGY", "retry"))

	_, err := loadFrom(t, t.TempDir(), t.TempDir())
	var ae *issue.ActionableError
	if !errors.As(err, &ae) || ae.Issue != issue.InvalidConfigValueId {
		t.Fatalf("error = %v, want InvalidConfigValueId", err)
	}
	if !errors.Is(err, ErrInvalidStrategy) || !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("error chain = %v, want ErrInvalidStrategy and ErrInvalidConfig", err)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	cfgDir := t.TempDir()
	testutil.MustWriteFile(t, filepath.Join(cfgDir, "config.cue"), "samples_root: \"from-file\"\n")
	t.Cleanup(testutil.MustSetenv(t, "SAMPLECTL_SAMPLES_ROOT", "from-env"))
	t.Cleanup(testutil.MustSetenv(t, "SAMPLECTL_HOST_RUNTIME_MAJOR_VERSION", "22"))
	t.Cleanup(testutil.MustSetenv(t, "SAMPLECTL_UI_VERBOSE", "true"))

	res, err := loadFrom(t, cfgDir, t.TempDir())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	cfg := res.Config
	if cfg.SamplesRoot != "from-env" || cfg.HostRuntime.MajorVersion != 22 || !cfg.UI.Verbose {
		t.Errorf("config = %+v, want env overrides applied", cfg)
	}
}

func TestLoad_Canceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := LoadWithPath(ctx, LoadOptions{ConfigDirPath: t.TempDir()}); !errors.Is(err, context.Canceled) {
		t.Fatalf("error = %v, want context.Canceled", err)
	}
}

func TestGenerate_RoundTrip(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SamplesRoot = "demo"
	cfg.Env = []string{"FOO=bar baz"}
	cfg.MinHostVersions = map[string]int{"7": 16}
	cfg.HostRuntime.MajorVersion = 18

	for _, format := range []Format{FormatCUE, FormatTOML} {
		t.Run(string(format), func(t *testing.T) {
			data, err := Generate(cfg, format)
			if err != nil {
				t.Fatalf("Generate() error = %v", err)
			}
			path := filepath.Join(t.TempDir(), "roundtrip."+string(format))
			testutil.MustWriteFile(t, path, string(data))

			got, err := NewProvider().Load(context.Background(), LoadOptions{ConfigFilePath: path})
			if err != nil {
				t.Fatalf("Load() of generated %s error = %v\n%s", format, err, data)
			}
			if got.SamplesRoot != "demo" || got.HostRuntime.MajorVersion != 18 {
				t.Errorf("loaded = %+v", got)
			}
			if !slices.Equal(got.Env, cfg.Env) || len(got.MinHostVersions) != 1 || got.MinHostVersions["7"] != 16 {
				t.Errorf("env = %v, min_host_versions = %v", got.Env, got.MinHostVersions)
			}
			if got.Operations != cfg.Operations {
				t.Errorf("operations = %+v, want %+v", got.Operations, cfg.Operations)
			}
		})
	}
}

func TestCreateDefaultConfig(t *testing.T) {
	SetConfigDirOverride(t.TempDir())
	t.Cleanup(Reset)

	path, created, err := CreateDefaultConfig(FormatCUE)
	if err != nil || !created {
		t.Fatalf("CreateDefaultConfig() = %q, %v, %v", path, created, err)
	}
	if filepath.Base(path) != "config.cue" {
		t.Errorf("path = %q", path)
	}

	testutil.MustWriteFile(t, path, "samples_root: \"kept\"\n")
	_, created, err = CreateDefaultConfig(FormatCUE)
	if err != nil || created {
		t.Fatalf("second CreateDefaultConfig() created = %v, err = %v", created, err)
	}
	data, err := os.ReadFile(path)
	if err != nil || !strings.Contains(string(data), "kept") {
		t.Errorf("existing config overwritten: %q, %v", data, err)
	}
}

func TestFormatForPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path    string
		want    Format
		wantErr bool
	}{
		{"config.cue", FormatCUE, false},
		{"/etc/x/Config.TOML", FormatTOML, false},
		{"config.yaml", "", true},
		{"config", "", true},
	}
	for _, tt := range tests {
		got, err := FormatForPath(tt.path)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("FormatForPath(%q) = %q, %v; want %q, err %v", tt.path, got, err, tt.want, tt.wantErr)
		}
	}
}

func TestLoadOptions_Validate(t *testing.T) {
	t.Parallel()

	if err := (LoadOptions{}).Validate(); err != nil {
		t.Errorf("empty LoadOptions should be valid, got %v", err)
	}
	err := (LoadOptions{ConfigFilePath: "  ", WorkDir: "\t"}).Validate()
	var loadErr *InvalidLoadOptionsError
	if !errors.As(err, &loadErr) || len(loadErr.FieldErrors) != 2 {
		t.Fatalf("error = %v, want 2 field errors", err)
	}
	if !errors.Is(err, ErrInvalidLoadOptions) {
		t.Error("error should wrap ErrInvalidLoadOptions")
	}
}
