package docstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jasmin-lang/jasmin-lsp/cst"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	pool, err := cst.NewParserPool()
	require.NoError(t, err)
	return New(pool)
}

func TestOpenThenGet(t *testing.T) {
	s := newStore(t)
	doc, err := s.Open("file:///a.jazz", "/a.jazz", []byte("param int N = 1;\n"), 1)
	require.NoError(t, err)
	assert.Equal(t, int32(1), doc.Version)

	got, ok := s.Get("/a.jazz")
	require.True(t, ok)
	assert.Same(t, doc, got)
}

func TestChange_ReleasesPreviousTree(t *testing.T) {
	s := newStore(t)
	doc, err := s.Open("file:///a.jazz", "/a.jazz", []byte("param int N = 1;\n"), 1)
	require.NoError(t, err)

	oldTree := doc.tree
	_, err = s.Change("/a.jazz", []byte("param int N = 2;\n"), 2)
	require.NoError(t, err)

	assert.True(t, oldTree.Closed())
	assert.Equal(t, int32(2), doc.Version)
}

func TestRemove_ReleasesTreeAndDrops(t *testing.T) {
	s := newStore(t)
	doc, err := s.Open("file:///a.jazz", "/a.jazz", []byte("param int N = 1;\n"), 1)
	require.NoError(t, err)

	tree := doc.tree
	s.Remove("/a.jazz")

	_, ok := s.Get("/a.jazz")
	assert.False(t, ok)
	assert.True(t, tree.Closed())
}

func TestLookup_RetainsForDependencyGraph(t *testing.T) {
	s := newStore(t)
	_, err := s.Open("file:///a.jazz", "/a.jazz", []byte("param int N = 1;\n"), 1)
	require.NoError(t, err)

	tree, ok := s.Lookup("/a.jazz")
	require.True(t, ok)
	defer tree.Release()

	assert.False(t, tree.Closed())
}
