// SPDX-License-Identifier: MPL-2.0

package runtime

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// LoadEnvFiles reads dotenv files in order and merges them into one map.
// Relative paths resolve against baseDir. A path suffixed with '?' is
// optional and silently skipped when missing. Later files override earlier ones.
func LoadEnvFiles(paths []string, baseDir string) (map[string]string, error) {
	env := make(map[string]string)
	for _, p := range paths {
		if err := LoadEnvFile(env, p, baseDir); err != nil {
			return nil, err
		}
	}
	return env, nil
}

// LoadEnvFile loads a single dotenv file into env.
func LoadEnvFile(env map[string]string, path, baseDir string) error {
	path, optional := strings.CutSuffix(path, "?")

	fullPath := filepath.FromSlash(path)
	if !filepath.IsAbs(fullPath) {
		fullPath = filepath.Join(baseDir, fullPath)
	}

	content, err := os.ReadFile(fullPath)
	if err != nil {
		if optional && errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to read env file '%s': %w", path, err)
	}

	return ParseEnvFile(env, content, path)
}

// ParseEnvFile parses dotenv content into env. Supported lines:
//   - blank lines and # comments
//   - KEY=value, optionally prefixed with "export "
//   - KEY="value" with \n, \t, \\ and \" escapes
//   - KEY='value' taken literally
//
// The filename parameter is used for error messages.
func ParseEnvFile(env map[string]string, content []byte, filename string) error {
	for i, line := range strings.Split(string(content), "\n") {
		line = strings.TrimSpace(strings.TrimSuffix(line, "\r"))
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		line = strings.TrimSpace(strings.TrimPrefix(line, "export "))

		key, value, found := strings.Cut(line, "=")
		if !found {
			return fmt.Errorf("%s:%d: invalid format (missing '=')", filename, i+1)
		}
		key = strings.TrimSpace(key)
		if key == "" {
			return fmt.Errorf("%s:%d: empty variable name", filename, i+1)
		}

		parsed, err := parseEnvValue(strings.TrimSpace(value))
		if err != nil {
			return fmt.Errorf("%s:%d: %w", filename, i+1, err)
		}
		env[key] = parsed
	}
	return nil
}

func parseEnvValue(value string) (string, error) {
	switch {
	case value == "":
		return "", nil
	case value[0] == '"':
		if len(value) < 2 || !strings.HasSuffix(value, `"`) {
			return "", errors.New("unterminated double quote")
		}
		return unescapeDoubleQuoted(value[1 : len(value)-1]), nil
	case value[0] == '\'':
		if len(value) < 2 || !strings.HasSuffix(value, "'") {
			return "", errors.New("unterminated single quote")
		}
		return value[1 : len(value)-1], nil
	}

	// Unquoted values may carry a trailing " # comment".
	if before, _, found := strings.Cut(value, " #"); found {
		value = strings.TrimSpace(before)
	}
	return value, nil
}

var doubleQuoteEscapes = strings.NewReplacer(
	`\n`, "\n",
	`\r`, "\r",
	`\t`, "\t",
	`\"`, `"`,
	`\\`, `\`,
)

func unescapeDoubleQuoted(s string) string {
	return doubleQuoteEscapes.Replace(s)
}

// EnvToSlice converts an env map into KEY=VALUE entries sorted by key.
func EnvToSlice(env map[string]string) []string {
	keys := make([]string, 0, len(env))
	for k := range env {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	result := make([]string, 0, len(env))
	for _, k := range keys {
		result = append(result, k+"="+env[k])
	}
	return result
}
