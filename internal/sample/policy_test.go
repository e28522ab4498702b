// SPDX-License-Identifier: MPL-2.0

package sample

import "testing"

func TestPolicyIsExcluded(t *testing.T) {
	t.Parallel()

	p := Policy{Exclusions: []string{"22-graphql-prisma", "nested/legacy/"}}

	tests := []struct {
		dir  string
		want bool
	}{
		{dir: "/repo/sample/22-graphql-prisma", want: true},
		{dir: "/repo/sample/22-graphql-prisma/", want: true},
		{dir: "/repo/sample/23-graphql-code-first", want: false},
		{dir: "/repo/sample/x22-graphql-prisma", want: false},
		{dir: "/repo/sample/nested/legacy", want: true},
		{dir: "/repo/sample/legacy", want: false},
	}

	for _, tt := range tests {
		if got := p.IsExcluded(tt.dir); got != tt.want {
			t.Errorf("IsExcluded(%q) = %v, want %v", tt.dir, got, tt.want)
		}
	}
}

func TestPolicyIsExcluded_IgnoresBlankEntries(t *testing.T) {
	t.Parallel()

	p := Policy{Exclusions: []string{"", "/", "."}}
	if p.IsExcluded("/repo/sample/01-cats-app") {
		t.Error("blank exclusion entries must not match anything")
	}
}

func TestPolicyAllows(t *testing.T) {
	t.Parallel()

	p := Policy{MinVersions: map[Identifier]int{"34": 18, "35": 22}}

	tests := []struct {
		name         string
		id           Identifier
		host         int
		wantAllowed  bool
		wantRequired int
	}{
		{name: "below requirement", id: "34", host: 16, wantAllowed: false, wantRequired: 18},
		{name: "at requirement", id: "34", host: 18, wantAllowed: true, wantRequired: 18},
		{name: "above requirement", id: "35", host: 24, wantAllowed: true, wantRequired: 22},
		{name: "not in table", id: "01", host: 4, wantAllowed: true, wantRequired: 0},
		{name: "no identifier", id: "", host: 0, wantAllowed: true, wantRequired: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			allowed, required := p.Allows(tt.id, tt.host)
			if allowed != tt.wantAllowed || required != tt.wantRequired {
				t.Errorf("Allows(%q, %d) = (%v, %d), want (%v, %d)",
					tt.id, tt.host, allowed, required, tt.wantAllowed, tt.wantRequired)
			}
		})
	}
}

func TestPolicyIsGated(t *testing.T) {
	t.Parallel()

	if (Policy{}).IsGated() {
		t.Error("empty policy reported as gated")
	}
	if !(Policy{MinVersions: map[Identifier]int{"34": 18}}).IsGated() {
		t.Error("policy with a version table reported as ungated")
	}
}
