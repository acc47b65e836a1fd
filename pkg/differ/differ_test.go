package differ_test

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/specsync/pkg/differ"
	"github.com/agentstation/specsync/pkg/document"
)

func mustParse(t *testing.T, input string) *document.Node {
	t.Helper()
	n, err := document.ParseString(input)
	require.NoError(t, err)
	return n
}

func TestDiffIdenticalDocuments(t *testing.T) {
	doc := mustParse(t, "paths:\n  /books:\n    get:\n      summary: List books\n")

	cs := differ.New().Diff(doc, doc)

	assert.True(t, cs.IsEmpty())
	assert.Empty(t, cs.Changes)
	assert.Equal(t, "No changes detected", cs.String())
}

func TestDiffAddedAndChanged(t *testing.T) {
	base := mustParse(t, `
paths:
  /books:
    get:
      summary: old
`)
	candidate := mustParse(t, `
paths:
  /books:
    get:
      summary: new
    post:
      summary: Add a book
`)

	cs := differ.New().Diff(base, candidate)

	require.Len(t, cs.Changes, 2)

	assert.Equal(t, "/paths//books/get/summary", cs.Changes[0].Path.String())
	assert.Equal(t, differ.ChangeKindChange, cs.Changes[0].Kind)
	assert.Equal(t, "old", cs.Changes[0].Old)
	assert.Equal(t, "new", cs.Changes[0].New)

	assert.Equal(t, "/paths//books/post", cs.Changes[1].Path.String())
	assert.Equal(t, differ.ChangeKindAdd, cs.Changes[1].Kind)
	assert.Empty(t, cs.Changes[1].Old)

	assert.Equal(t, 1, cs.Summary.Added)
	assert.Equal(t, 1, cs.Summary.Changed)
	assert.Equal(t, 2, cs.Summary.Total)
}

func TestDiffRemoved(t *testing.T) {
	base := mustParse(t, "a: 1\nb: 2\n")
	candidate := mustParse(t, "a: 1\n")

	cs := differ.New().Diff(base, candidate)

	require.Len(t, cs.Changes, 1)
	assert.Equal(t, "/b", cs.Changes[0].Path.String())
	assert.Equal(t, differ.ChangeKindRemove, cs.Changes[0].Kind)
	assert.Equal(t, "2", cs.Changes[0].Old)
}

func TestDiffKindMismatchIsSingleChange(t *testing.T) {
	base := mustParse(t, "config: simple\n")
	candidate := mustParse(t, "config:\n  nested: true\n")

	cs := differ.New().Diff(base, candidate)

	require.Len(t, cs.Changes, 1)
	assert.Equal(t, "/config", cs.Changes[0].Path.String())
	assert.Equal(t, differ.ChangeKindChange, cs.Changes[0].Kind)
	assert.Equal(t, "simple", cs.Changes[0].Old)
	assert.Equal(t, "{nested: true}", cs.Changes[0].New)
}

func TestDiffSequencesByIndex(t *testing.T) {
	base := mustParse(t, "tags:\n  - books\n  - authors\n")
	candidate := mustParse(t, "tags:\n  - books\n  - readers\n  - authors\n")

	cs := differ.New().Diff(base, candidate)

	// Index-positional policy: an insertion reports as a change at index 1
	// and an addition at index 2, not a move.
	require.Len(t, cs.Changes, 2)
	assert.Equal(t, "/tags/1", cs.Changes[0].Path.String())
	assert.Equal(t, differ.ChangeKindChange, cs.Changes[0].Kind)
	assert.Equal(t, "/tags/2", cs.Changes[1].Path.String())
	assert.Equal(t, differ.ChangeKindAdd, cs.Changes[1].Kind)
}

func TestDiffUnionKeyOrderDeterministic(t *testing.T) {
	base := mustParse(t, "b: 1\na: 2\n")
	candidate := mustParse(t, "c: 3\nb: 9\n")

	first := differ.New().Diff(base, candidate)
	second := differ.New().Diff(base, candidate)

	require.Len(t, first.Changes, 3)
	// Base order first (b changed, a removed), then candidate-only keys (c).
	assert.Equal(t, "/b", first.Changes[0].Path.String())
	assert.Equal(t, "/a", first.Changes[1].Path.String())
	assert.Equal(t, "/c", first.Changes[2].Path.String())
	assert.Equal(t, first.Changes, second.Changes)
}

func TestDiffCompleteness(t *testing.T) {
	base := mustParse(t, "a: 1\nb: same\nc:\n  d: 2\n")
	candidate := mustParse(t, "a: 9\nb: same\nc:\n  d: 2\ne: new\n")

	cs := differ.New().Diff(base, candidate)

	// Exactly one entry per differing path, none for equal paths.
	paths := make(map[string]int)
	for _, change := range cs.Changes {
		paths[change.Path.String()]++
	}
	assert.Equal(t, map[string]int{"/a": 1, "/e": 1}, paths)
}

func TestDiffSnapshotTruncation(t *testing.T) {
	long := "value: aaaaaaaaaaaaaaaaaaaaaaaaaaaaaa\n"
	base := mustParse(t, "value: short\n")
	candidate := mustParse(t, long)

	cs := differ.New(differ.WithSnapshotLimit(10)).Diff(base, candidate)

	require.Len(t, cs.Changes, 1)
	assert.LessOrEqual(t, len(cs.Changes[0].New), 10)
}

func TestDiffSnapshotTruncationKeepsValidUTF8(t *testing.T) {
	base := mustParse(t, "value: short\n")
	candidate := mustParse(t, "value: електронна книга\n")

	cs := differ.New(differ.WithSnapshotLimit(10)).Diff(base, candidate)

	require.Len(t, cs.Changes, 1)
	snapshot := cs.Changes[0].New
	assert.True(t, utf8.ValidString(snapshot))
	assert.LessOrEqual(t, len(snapshot), 10)
	assert.True(t, strings.HasSuffix(snapshot, "..."))
}
