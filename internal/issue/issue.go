// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/slices"
)

// Catalog identifiers.
const (
	SampleRootNotFoundId Id = iota + 1
	ScriptRunnerNotFoundId
	HostVersionUnknownId
	ExecutionFailedId
	ConfigLoadFailedId
	InvalidConfigValueId
)

type (
	// Id identifies a catalog issue.
	Id int

	// MarkdownMsg is Markdown text rendered for the terminal.
	MarkdownMsg string

	// HttpLink is a reference URL shown under an issue.
	HttpLink string

	// Issue is an extended explanation of a failure class.
	Issue struct {
		id       Id
		mdMsg    MarkdownMsg
		extLinks []HttpLink
	}
)

var (
	render = glamour.Render

	sampleRootNotFoundIssue = &Issue{
		id: SampleRootNotFoundId,
		mdMsg: `
# Sample root not found!

samplectl could not list the directory that should contain the samples.

## Things you can try:
- Run samplectl from the repository root
- Point it at the samples explicitly:
~~~
$ samplectl build --samples-root ./sample
~~~
- Or set ` + "`samples_root`" + ` in your config file:
~~~
$ samplectl config init
~~~`,
	}

	scriptRunnerNotFoundIssue = &Issue{
		id: ScriptRunnerNotFoundId,
		mdMsg: `
# Script runner not found!

The package manager used to run sample scripts is not on your PATH.

## Things you can try:
- Install Node.js, which ships with npm
- Check that ` + "`npm --version`" + ` works in this shell
- Override the scripts in the ` + "`operations`" + ` section of your config file`,
		extLinks: []HttpLink{"https://nodejs.org/en/download"},
	}

	hostVersionUnknownIssue = &Issue{
		id: HostVersionUnknownId,
		mdMsg: `
# Could not detect the host runtime version!

Version-gated samples need the major version of the host runtime.

## Things you can try:
- Make sure ` + "`node --version`" + ` prints something like ` + "`v20.11.1`" + `
- Pass the version explicitly:
~~~
$ samplectl test --host-version 20
~~~`,
	}

	executionFailedIssue = &Issue{
		id: ExecutionFailedId,
		mdMsg: `
# A sample script failed!

The script runner exited with an error in one of the samples. Its captured
output is printed above.

## Things you can try:
- Re-run the failing script by hand in the sample directory
- Use ` + "`--strategy collect`" + ` to see every failing sample in one run
- Exclude a known-broken sample with ` + "`exclude`" + ` in your config file`,
	}

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Failed to load configuration!

The config file could not be read or parsed.

## Things you can try:
- Check the file syntax (CUE or TOML)
- Print the effective defaults:
~~~
$ samplectl config show
~~~`,
	}

	invalidConfigValueIssue = &Issue{
		id: InvalidConfigValueId,
		mdMsg: `
# Invalid configuration value!

A configuration value is outside the allowed set.

## Allowed values:
- ` + "`executor`" + `: native, virtual
- ` + "`strategy`" + `: abort, collect
- ` + "`ui.color_scheme`" + `: auto, dark, light`,
	}

	issues = map[Id]*Issue{
		sampleRootNotFoundIssue.Id():   sampleRootNotFoundIssue,
		scriptRunnerNotFoundIssue.Id(): scriptRunnerNotFoundIssue,
		hostVersionUnknownIssue.Id():   hostVersionUnknownIssue,
		executionFailedIssue.Id():      executionFailedIssue,
		configLoadFailedIssue.Id():     configLoadFailedIssue,
		invalidConfigValueIssue.Id():   invalidConfigValueIssue,
	}
)

// Id returns the issue identifier.
func (i *Issue) Id() Id {
	return i.id
}

// MarkdownMsg returns the raw Markdown text.
func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

// ExtLinks returns a copy of the external links.
func (i *Issue) ExtLinks() []HttpLink {
	return slices.Clone(i.extLinks)
}

// Render renders the issue for the terminal using the given glamour style
// ("dark", "light", "notty", ...).
func (i *Issue) Render(stylePath string) (string, error) {
	var md strings.Builder
	md.WriteString(string(i.mdMsg))
	if len(i.extLinks) > 0 {
		md.WriteString("\n\n## See also:\n")
		for _, link := range i.extLinks {
			md.WriteString("- [" + string(link) + "](" + string(link) + ")\n")
		}
	}
	return render(md.String(), stylePath)
}

// Get returns the catalog issue for id, or nil.
func Get(id Id) *Issue {
	return issues[id]
}

// Values returns every catalog issue ordered by Id.
func Values() []*Issue {
	values := make([]*Issue, 0, len(issues))
	for _, i := range issues {
		values = append(values, i)
	}
	slices.SortFunc(values, func(a, b *Issue) int { return int(a.id) - int(b.id) })
	return values
}
