// SPDX-License-Identifier: MPL-2.0

package sample

import "fmt"

const (
	// KindSingle is a sample that is itself a runnable project.
	KindSingle Kind = "single"
	// KindMulti is a sample whose subdirectories are runnable projects.
	KindMulti Kind = "multi"
)

type (
	// Kind classifies an eligible sample.
	Kind string

	// Entry is the resolution of one top-level sample directory.
	Entry struct {
		Sample Dir
		// Skipped is true when the host runtime is older than Required.
		Skipped bool
		// Required is the minimum host major version, or 0 when ungated.
		Required int
		// Kind is empty for skipped samples.
		Kind Kind
		// Targets are the directories the command runs in, in order.
		// Empty for skipped samples.
		Targets []string
	}

	// Plan is the ordered outcome of resolving a sample root.
	Plan struct {
		Root      string
		HostMajor int
		Entries   []Entry
		// Excluded lists directories removed by the policy, in enumeration order.
		Excluded []string
	}

	// Resolver turns a sample root into a Plan.
	Resolver struct {
		// Root is the sample root directory.
		Root string
		// Manifest is the single-application marker file; DefaultManifest when empty.
		Manifest string
		Policy   Policy
	}
)

// Resolve enumerates the sample root and applies the policy:
//  1. excluded directories are dropped before identifiers are parsed
//  2. gated samples on a too-old host are marked skipped and never inspected further
//  3. eligible samples become one target (manifest present) or one target per
//     immediate subdirectory (manifest absent)
func (r *Resolver) Resolve(hostMajor int) (*Plan, error) {
	samples, excluded, err := r.Samples()
	if err != nil {
		return nil, err
	}

	plan := &Plan{Root: r.Root, HostMajor: hostMajor, Excluded: excluded}
	for _, dir := range samples {
		entry, err := r.ResolveSample(dir, hostMajor)
		if err != nil {
			return nil, err
		}
		plan.Entries = append(plan.Entries, entry)
	}
	return plan, nil
}

// Samples lists the sample root and drops excluded directories. Both the
// remaining samples and the excluded paths keep enumeration order. Nothing
// below the top level is read.
func (r *Resolver) Samples() (samples []Dir, excluded []string, err error) {
	dirs, err := ListDirs(r.Root)
	if err != nil {
		return nil, nil, err
	}
	for _, path := range dirs {
		if r.Policy.IsExcluded(path) {
			excluded = append(excluded, path)
			continue
		}
		samples = append(samples, NewDir(path))
	}
	return samples, excluded, nil
}

// ResolveSample applies the version gate to one top-level sample and, when
// it is eligible, classifies it and lists its targets.
func (r *Resolver) ResolveSample(dir Dir, hostMajor int) (Entry, error) {
	allowed, required := r.Policy.Allows(dir.ID, hostMajor)
	entry := Entry{Sample: dir, Required: required}
	if !allowed {
		entry.Skipped = true
		return entry, nil
	}

	single, err := HasManifest(dir.Path, r.manifest())
	if err != nil {
		return Entry{}, err
	}
	if single {
		entry.Kind = KindSingle
		entry.Targets = []string{dir.Path}
		return entry, nil
	}

	subDirs, err := ListDirs(dir.Path)
	if err != nil {
		return Entry{}, fmt.Errorf("failed to expand multi-application sample %s: %w", dir.Name, err)
	}
	entry.Kind = KindMulti
	entry.Targets = subDirs
	return entry, nil
}

func (r *Resolver) manifest() string {
	if r.Manifest == "" {
		return DefaultManifest
	}
	return r.Manifest
}

// Targets returns every execution target of the plan in order.
func (p *Plan) Targets() []string {
	var targets []string
	for _, e := range p.Entries {
		targets = append(targets, e.Targets...)
	}
	return targets
}

// Skipped returns the entries skipped because of version requirements.
func (p *Plan) Skipped() []Entry {
	var skipped []Entry
	for _, e := range p.Entries {
		if e.Skipped {
			skipped = append(skipped, e)
		}
	}
	return skipped
}
