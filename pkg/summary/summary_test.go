package summary_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/specsync/pkg/differ"
	"github.com/agentstation/specsync/pkg/document"
	"github.com/agentstation/specsync/pkg/provenance"
	"github.com/agentstation/specsync/pkg/reconcile"
	"github.com/agentstation/specsync/pkg/summary"
)

func mustParse(t *testing.T, input string) *document.Node {
	t.Helper()
	n, err := document.ParseString(input)
	require.NoError(t, err)
	return n
}

func diffOf(t *testing.T, base, candidate string) *differ.Changeset {
	t.Helper()
	return differ.New().Diff(mustParse(t, base), mustParse(t, candidate))
}

func TestGroupsBySection(t *testing.T) {
	cs := diffOf(t, `
info:
  title: Old Title
paths:
  /books:
    get:
      summary: old
`, `
info:
  title: New Title
paths:
  /books:
    get:
      summary: new
    post:
      summary: Add a book
`)

	groups := summary.Groups(cs)
	require.Len(t, groups, 2)
	assert.Equal(t, "info", groups[0].Section)
	assert.Equal(t, []string{"changed /info/title: Old Title -> New Title"}, groups[0].Lines)
	assert.Equal(t, "paths", groups[1].Section)
	require.Len(t, groups[1].Lines, 2)
	assert.Equal(t, "changed /paths//books/get/summary: old -> new", groups[1].Lines[0])
	assert.Contains(t, groups[1].Lines[1], "added /paths//books/post")
}

func TestGroupsEmptyChangeset(t *testing.T) {
	assert.Nil(t, summary.Groups(nil))
	assert.Nil(t, summary.Groups(diffOf(t, "a: 1\n", "a: 1\n")))
}

func TestLineFormats(t *testing.T) {
	path := document.Path{}.Child("info").Child("title")

	assert.Equal(t, "added /info/title: v",
		summary.Line(differ.Change{Path: path, Kind: differ.ChangeKindAdd, New: "v"}))
	assert.Equal(t, "removed /info/title (was v)",
		summary.Line(differ.Change{Path: path, Kind: differ.ChangeKindRemove, Old: "v"}))
	assert.Equal(t, "changed /info/title: a -> b",
		summary.Line(differ.Change{Path: path, Kind: differ.ChangeKindChange, Old: "a", New: "b"}))
}

func TestSummarizeIncludesSkips(t *testing.T) {
	base := mustParse(t, "info:\n  title: curated\n")
	generated := mustParse(t, "info:\n  title: generated\n  version: 1.0.0\n")

	prov := provenance.Table{}
	prov.Set(document.Path{}.Child("info").Child("title"), provenance.TagManual)

	result, err := reconcile.New().Reconcile(base, generated, prov)
	require.NoError(t, err)

	lines := summary.Summarize(result)
	require.NotEmpty(t, lines)
	assert.Equal(t, "skipped /info/title (manually curated)", lines[len(lines)-1])
}

func TestPRBody(t *testing.T) {
	base := mustParse(t, "paths:\n  /books:\n    get:\n      summary: old\n")
	generated := mustParse(t, "paths:\n  /books:\n    get:\n      summary: new\n")

	result, err := reconcile.New().Reconcile(base, generated, provenance.Table{})
	require.NoError(t, err)

	body, err := summary.PRBody(result)
	require.NoError(t, err)
	assert.Contains(t, body, "## Specification Changes")
	assert.Contains(t, body, "### Paths")
	assert.Contains(t, body, "changed /paths//books/get/summary: old -> new")
}

func TestPRBodyNoOp(t *testing.T) {
	base := mustParse(t, "a: 1\n")
	generated := mustParse(t, "a: 1\n")

	result, err := reconcile.New().Reconcile(base, generated, provenance.Table{})
	require.NoError(t, err)
	require.True(t, result.IsNoOp)

	body, err := summary.PRBody(result)
	require.NoError(t, err)
	assert.Empty(t, strings.TrimSpace(body))
}
