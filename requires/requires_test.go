package requires

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jasmin-lang/jasmin-lsp/cst"
)

func parse(t *testing.T, src string) *cst.Tree {
	t.Helper()
	pool, err := cst.NewParserPool()
	require.NoError(t, err)
	tree, err := pool.Parse([]byte(src), nil)
	require.NoError(t, err)
	t.Cleanup(tree.Release)
	return tree
}

func TestExtract_SinglePathForm(t *testing.T) {
	tree := parse(t, `require "util.jinc";`)
	paths := Extract(tree)
	require.Len(t, paths, 1)
	assert.Equal(t, "util.jinc", paths[0].Literal)
	assert.Equal(t, "", paths[0].Namespace)
}

func TestExtract_MultiPathForm(t *testing.T) {
	tree := parse(t, `require "a.jinc", "b.jinc";`)
	paths := Extract(tree)
	require.Len(t, paths, 2)
	assert.Equal(t, "a.jinc", paths[0].Literal)
	assert.Equal(t, "b.jinc", paths[1].Literal)
}

func TestExtract_NamespacedFormCarriesNamespace(t *testing.T) {
	tree := parse(t, `from Common require "hashing.jinc";`)
	paths := Extract(tree)
	require.Len(t, paths, 1)
	assert.Equal(t, "hashing.jinc", paths[0].Literal)
	assert.Equal(t, "Common", paths[0].Namespace)
}

func TestResolver_PlainFormJoinsRequiringFileDirectory(t *testing.T) {
	dir := t.TempDir()
	r := NewResolver()
	got := r.Resolve(filepath.Join(dir, "main.jazz"), "", "sibling.jinc")
	assert.Equal(t, filepath.Join(dir, "sibling.jinc"), got)
}

func TestResolver_DotDotSegmentsAreCleaned(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "sub")
	require.NoError(t, os.MkdirAll(sub, 0o755))

	r := NewResolver()
	got := r.Resolve(filepath.Join(sub, "main.jazz"), "", "../up.jinc")
	assert.Equal(t, filepath.Join(dir, "up.jinc"), got)
}

// TestResolver_NamespaceSiblingResolution exercises the `from NAMESPACE
// require "F"` search: avx2/ml_dsa_65/main.jazz names "Common", which lives
// as a sibling directory under avx2/ (the parent of main.jazz's own
// directory), lowercased.
func TestResolver_NamespaceSiblingResolution(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "avx2", "common"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "avx2", "ml_dsa_65"), 0o755))

	target := filepath.Join(dir, "avx2", "common", "hashing.jinc")
	require.NoError(t, os.WriteFile(target, []byte("param int N = 1;\n"), 0o644))

	requiringFile := filepath.Join(dir, "avx2", "ml_dsa_65", "main.jazz")

	r := NewResolver()
	got := r.Resolve(requiringFile, "Common", "hashing.jinc")
	assert.Equal(t, target, got)
}

func TestResolver_NamespaceSearchTriesExactCaseBeforeLowercase(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "Common"), 0o755))
	target := filepath.Join(dir, "Common", "hashing.jinc")
	require.NoError(t, os.WriteFile(target, []byte("param int N = 1;\n"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "common"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "common", "hashing.jinc"), []byte("param int N = 1;\n"), 0o644))

	requiringFile := filepath.Join(dir, "main.jazz")
	r := NewResolver()
	got := r.Resolve(requiringFile, "Common", "hashing.jinc")
	assert.Equal(t, target, got)
}

func TestResolver_NamespaceSearchFallsBackToGrandparent(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "common"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "a", "b"), 0o755))

	target := filepath.Join(dir, "common", "hashing.jinc")
	require.NoError(t, os.WriteFile(target, []byte("param int N = 1;\n"), 0o644))

	requiringFile := filepath.Join(dir, "a", "b", "main.jazz")
	r := NewResolver()
	got := r.Resolve(requiringFile, "Common", "hashing.jinc")
	assert.Equal(t, target, got)
}

func TestResolver_NamespaceFallsBackToBestEffortPath(t *testing.T) {
	dir := t.TempDir()
	r := NewResolver()
	got := r.Resolve(filepath.Join(dir, "main.jazz"), "Missing", "nope.jinc")
	assert.Equal(t, filepath.Join(dir, "Missing", "nope.jinc"), got)
}
