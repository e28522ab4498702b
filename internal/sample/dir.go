// SPDX-License-Identifier: MPL-2.0

package sample

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// DefaultManifest is the file whose presence marks a single-application sample.
const DefaultManifest = "package.json"

// Dir is one enumerated sample directory.
type Dir struct {
	// Path is the absolute path of the directory.
	Path string
	// Name is the final path element.
	Name string
	// ID is the identifier parsed from Name; empty when Name has no digits.
	ID Identifier
}

// NewDir builds a Dir for path, parsing its identifier from the leaf name.
func NewDir(path string) Dir {
	name := filepath.Base(path)
	return Dir{Path: path, Name: name, ID: ParseIdentifier(name)}
}

// ListDirs returns the absolute paths of the immediate subdirectories of root,
// in lexical order. Symlinks that resolve to directories are included.
func ListDirs(root string) ([]string, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", root, err)
	}

	entries, err := os.ReadDir(abs)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", abs, err)
	}

	dirs := make([]string, 0, len(entries))
	for _, entry := range entries {
		full := filepath.Join(abs, entry.Name())
		if entry.IsDir() {
			dirs = append(dirs, full)
			continue
		}
		if entry.Type()&fs.ModeSymlink != 0 {
			if info, err := os.Stat(full); err == nil && info.IsDir() {
				dirs = append(dirs, full)
			}
		}
	}
	return dirs, nil
}

// HasManifest reports whether dir directly contains a regular file named manifest.
func HasManifest(dir, manifest string) (bool, error) {
	info, err := os.Stat(filepath.Join(dir, manifest))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check %s in %s: %w", manifest, dir, err)
	}
	return !info.IsDir(), nil
}
