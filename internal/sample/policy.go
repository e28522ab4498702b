// SPDX-License-Identifier: MPL-2.0

package sample

import (
	"path"
	"path/filepath"
	"strings"
)

// Policy decides which samples take part in a run.
type Policy struct {
	// Exclusions lists path suffixes (usually directory names) removed from
	// the sample set before anything else happens.
	Exclusions []string
	// MinVersions maps a sample identifier to the minimum host runtime major
	// version required to run any script in that sample.
	MinVersions map[Identifier]int
}

// IsExcluded reports whether dir matches one of the exclusion suffixes.
// A suffix matches whole path elements only: "prisma" does not exclude
// "22-graphql-prisma".
func (p Policy) IsExcluded(dir string) bool {
	clean := filepath.ToSlash(filepath.Clean(dir))
	for _, ex := range p.Exclusions {
		ex = strings.Trim(path.Clean(filepath.ToSlash(ex)), "/")
		if ex == "" || ex == "." {
			continue
		}
		if clean == ex || strings.HasSuffix(clean, "/"+ex) {
			return true
		}
	}
	return false
}

// MinVersion returns the required host major version for id and whether the
// sample is gated at all. Samples without an identifier are never gated.
func (p Policy) MinVersion(id Identifier) (int, bool) {
	if id.IsZero() {
		return 0, false
	}
	v, ok := p.MinVersions[id]
	return v, ok
}

// Allows reports whether a sample with identifier id may run on a host whose
// runtime major version is hostMajor. The required version is returned for
// use in skip notices.
func (p Policy) Allows(id Identifier, hostMajor int) (bool, int) {
	required, gated := p.MinVersion(id)
	if !gated {
		return true, 0
	}
	return hostMajor >= required, required
}

// IsGated reports whether any version requirement is configured.
func (p Policy) IsGated() bool {
	return len(p.MinVersions) > 0
}
