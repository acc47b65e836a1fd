package document_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/specsync/pkg/document"
	"github.com/agentstation/specsync/pkg/errors"
)

func TestParsePreservesKeyOrder(t *testing.T) {
	input := []byte("zebra: 1\napple: 2\nmiddle:\n  c: 3\n  a: 4\n")

	root, err := document.Parse(input)
	require.NoError(t, err)
	require.Equal(t, document.KindMap, root.Kind())

	assert.Equal(t, []string{"zebra", "apple", "middle"}, root.Keys())

	middle, ok := root.Get("middle")
	require.True(t, ok)
	assert.Equal(t, []string{"c", "a"}, middle.Keys())
}

func TestParseEmptyInput(t *testing.T) {
	root, err := document.Parse(nil)
	require.NoError(t, err)
	assert.Equal(t, document.KindMap, root.Kind())
	assert.Equal(t, 0, root.Len())
}

func TestParseMalformedInput(t *testing.T) {
	_, err := document.Parse([]byte("key: [unclosed\n  nope"))
	require.Error(t, err)
	assert.True(t, errors.IsParseError(err))
}

func TestMarshalRoundTripStability(t *testing.T) {
	inputs := []string{
		"paths:\n  /books:\n    get:\n      summary: List books\n",
		"servers:\n  - url: https://api.example.com\n  - url: https://staging.example.com\n",
		"info:\n  title: Books API\n  version: 1.0.0\ncount: 5\nratio: 0.25\nenabled: true\nempty: null\n",
	}

	for _, input := range inputs {
		first, err := document.Parse([]byte(input))
		require.NoError(t, err)

		once, err := document.Marshal(first)
		require.NoError(t, err)

		second, err := document.Parse(once)
		require.NoError(t, err)

		twice, err := document.Marshal(second)
		require.NoError(t, err)

		// serialize(parse(serialize(parse(x)))) == serialize(parse(x))
		assert.Equal(t, string(once), string(twice), "round trip not stable for %q", input)
		assert.True(t, first.Equal(second), "re-parsed tree differs for %q", input)
	}
}

func TestMarshalDeterministic(t *testing.T) {
	root := document.Map(
		document.Pair{Key: "b", Value: document.Scalar("two")},
		document.Pair{Key: "a", Value: document.Scalar("one")},
	)

	first, err := document.Marshal(root)
	require.NoError(t, err)
	second, err := document.Marshal(root)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestNodeEqualNumericNormalization(t *testing.T) {
	assert.True(t, document.Scalar(int64(5)).Equal(document.Scalar(uint64(5))))
	assert.True(t, document.Scalar(float64(5)).Equal(document.Scalar(uint64(5))))
	assert.False(t, document.Scalar("5").Equal(document.Scalar(uint64(5))))
	assert.False(t, document.Scalar(nil).Equal(document.Scalar("null")))
}

func TestMapDuplicateKeyKeepsPosition(t *testing.T) {
	root := document.Map(
		document.Pair{Key: "a", Value: document.Scalar(1)},
		document.Pair{Key: "b", Value: document.Scalar(2)},
		document.Pair{Key: "a", Value: document.Scalar(3)},
	)

	assert.Equal(t, []string{"a", "b"}, root.Keys())
	a, _ := root.Get("a")
	assert.True(t, a.Equal(document.Scalar(3)))
}

func TestPathString(t *testing.T) {
	p := document.Path{}.Child("paths").Child("/books").Child("get").Child("summary")
	assert.Equal(t, "/paths//books/get/summary", p.String())
	assert.Equal(t, "paths", p.Top())

	indexed := document.Path{}.Child("servers").At(0).Child("url")
	assert.Equal(t, "/servers/0/url", indexed.String())

	assert.Equal(t, "/", document.Path{}.String())
}

func TestPathChildDoesNotAliasParent(t *testing.T) {
	base := document.Path{}.Child("paths")
	first := base.Child("/books")
	second := base.Child("/authors")

	assert.Equal(t, "/paths//books", first.String())
	assert.Equal(t, "/paths//authors", second.String())
	assert.True(t, base.Equal(document.Path{}.Child("paths")))
}
