package provenance_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/specsync/pkg/document"
	"github.com/agentstation/specsync/pkg/provenance"
)

func TestTableTagAndManual(t *testing.T) {
	table := provenance.Table{}
	path := document.Path{}.Child("paths").Child("/books").Child("get").Child("summary")

	assert.Equal(t, provenance.Tag(""), table.Tag(path))
	assert.False(t, table.Manual(path))

	table.Set(path, provenance.TagManual)
	assert.Equal(t, provenance.TagManual, table.Tag(path))
	assert.True(t, table.Manual(path))

	table.Set(path, provenance.TagGenerated)
	assert.False(t, table.Manual(path))
}

func TestNilTableIsUntagged(t *testing.T) {
	var table provenance.Table
	assert.Equal(t, provenance.Tag(""), table.Tag(document.Path{}.Child("x")))
	assert.False(t, table.Manual(document.Path{}.Child("x")))
}

func TestCarryPreservesEntry(t *testing.T) {
	prior := provenance.Table{}
	path := document.Path{}.Child("info").Child("title")
	prior.Set(path, provenance.TagManual)

	next := provenance.Table{}
	next.Carry(path, prior)

	assert.Equal(t, prior[path.String()], next[path.String()])

	// Carrying an untracked path records nothing.
	next.Carry(document.Path{}.Child("untracked"), prior)
	_, ok := next["/untracked"]
	assert.False(t, ok)
}

func TestPathFor(t *testing.T) {
	assert.Equal(t, "openapi.provenance.yaml", provenance.PathFor("openapi.yaml"))
	assert.Equal(t, "docs/spec.provenance.yaml", provenance.PathFor("docs/spec.yml"))
	assert.Equal(t, "spec.provenance.yaml", provenance.PathFor("spec.json"))
	assert.Equal(t, "openapi.provenance.yaml", provenance.PathFor("openapi"))
}

func TestLoadMissingFileReturnsEmptyTable(t *testing.T) {
	table, err := provenance.Load(filepath.Join(t.TempDir(), "absent.provenance.yaml"))
	require.NoError(t, err)
	assert.NotNil(t, table)
	assert.Empty(t, table)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "spec.provenance.yaml")

	table := provenance.Table{}
	table.Set(document.Path{}.Child("paths").Child("/books").Child("get").Child("summary"), provenance.TagManual)
	table.Set(document.Path{}.Child("info").Child("title"), provenance.TagGenerated)

	require.NoError(t, provenance.Save(path, table))

	loaded, err := provenance.Load(path)
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	assert.Equal(t, provenance.TagManual, loaded["/paths//books/get/summary"].Tag)
	assert.Equal(t, provenance.TagGenerated, loaded["/info/title"].Tag)
}

func TestSaveDeterministic(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "a.provenance.yaml")
	second := filepath.Join(dir, "b.provenance.yaml")

	table := provenance.Table{
		"/b": {Tag: provenance.TagGenerated},
		"/a": {Tag: provenance.TagManual},
		"/c": {Tag: provenance.TagGenerated},
	}

	require.NoError(t, provenance.Save(first, table))
	require.NoError(t, provenance.Save(second, table))

	firstData, err := os.ReadFile(first)
	require.NoError(t, err)
	secondData, err := os.ReadFile(second)
	require.NoError(t, err)
	assert.Equal(t, firstData, secondData)
}

func TestLoadMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.provenance.yaml")
	require.NoError(t, os.WriteFile(path, []byte("provenance: [not: a map\n"), 0o644))

	_, err := provenance.Load(path)
	assert.Error(t, err)
}
