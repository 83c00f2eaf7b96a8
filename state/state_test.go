package state

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jasmin-lang/jasmin-lsp/cst"
)

func newTestServer(t *testing.T) (*Server, string) {
	t.Helper()
	pool, err := cst.NewParserPool()
	require.NoError(t, err)
	dir := t.TempDir()
	return New(pool, dir), dir
}

func TestServer_MasterFileRoundTrip(t *testing.T) {
	srv, _ := newTestServer(t)
	assert.Equal(t, "", srv.MasterFile())

	srv.SetMasterFile("/tmp/main.jazz")
	assert.Equal(t, "/tmp/main.jazz", srv.MasterFile())
}

func TestServer_ClosureNilWithoutMaster(t *testing.T) {
	srv, _ := newTestServer(t)
	assert.Nil(t, srv.Closure())
}

func TestServer_ShouldRetainOnClose(t *testing.T) {
	srv, dir := newTestServer(t)

	main := filepath.Join(dir, "main.jazz")
	dep := filepath.Join(dir, "dep.jinc")
	other := filepath.Join(dir, "other.jinc")

	require.NoError(t, os.WriteFile(main, []byte(`require "dep.jinc";`+"\n"), 0o644))
	require.NoError(t, os.WriteFile(dep, []byte("param int N = 1;\n"), 0o644))
	require.NoError(t, os.WriteFile(other, []byte("param int M = 2;\n"), 0o644))

	srv.SetMasterFile(main)

	assert.True(t, srv.ShouldRetainOnClose(dep))
	assert.False(t, srv.ShouldRetainOnClose(other))
}

func TestServer_RelevantFilesUnionsOpenDocsOutsideClosure(t *testing.T) {
	srv, dir := newTestServer(t)

	main := filepath.Join(dir, "main.jazz")
	require.NoError(t, os.WriteFile(main, []byte("param int N = 1;\n"), 0o644))
	srv.SetMasterFile(main)

	stray := filepath.Join(dir, "stray.jazz")
	_, err := srv.Docs.Open("file://"+stray, stray, []byte("param int K = 9;\n"), 1)
	require.NoError(t, err)

	closure, openOnly := srv.RelevantFiles()
	defer func() {
		if closure != nil {
			closure.Release()
		}
	}()

	require.Len(t, openOnly, 1)
	assert.Equal(t, stray, openOnly[0])
	assert.True(t, closure.Contains(main))
}

func TestServer_FindSymbolAcrossClosure(t *testing.T) {
	srv, dir := newTestServer(t)

	main := filepath.Join(dir, "main.jazz")
	dep := filepath.Join(dir, "dep.jinc")
	require.NoError(t, os.WriteFile(main, []byte(`require "dep.jinc";`+"\n"), 0o644))
	require.NoError(t, os.WriteFile(dep, []byte("param int N = 42;\n"), 0o644))

	srv.SetMasterFile(main)

	sym, path, ok := srv.FindSymbol("N")
	require.True(t, ok)
	assert.Equal(t, dep, path)
	assert.Equal(t, "N", sym.Name)
}

func TestServer_FindSymbolMissingReturnsFalse(t *testing.T) {
	srv, dir := newTestServer(t)
	main := filepath.Join(dir, "main.jazz")
	require.NoError(t, os.WriteFile(main, []byte("param int N = 1;\n"), 0o644))
	srv.SetMasterFile(main)

	_, _, ok := srv.FindSymbol("doesnotexist")
	assert.False(t, ok)
}

func TestServer_SetWorkspaceRootIfUnset(t *testing.T) {
	pool, err := cst.NewParserPool()
	require.NoError(t, err)
	srv := New(pool, "")
	assert.Equal(t, "", srv.WorkspaceRoot())

	srv.SetWorkspaceRootIfUnset("/workspace")
	assert.Equal(t, "/workspace", srv.WorkspaceRoot())

	srv.SetWorkspaceRootIfUnset("/other")
	assert.Equal(t, "/workspace", srv.WorkspaceRoot())
}

func TestServer_ResolveWorkspacePath(t *testing.T) {
	srv, dir := newTestServer(t)
	assert.Equal(t, filepath.Join(dir, "main.jazz"), srv.ResolveWorkspacePath("main.jazz"))
	assert.Equal(t, filepath.Clean("/abs/main.jazz"), srv.ResolveWorkspacePath("/abs/main.jazz"))
}

func TestServer_AllSymbolsFallsBackToOpenDocsWithoutMaster(t *testing.T) {
	srv, dir := newTestServer(t)
	stray := filepath.Join(dir, "stray.jazz")
	_, err := srv.Docs.Open("file://"+stray, stray, []byte("param int K = 9;\n"), 1)
	require.NoError(t, err)

	all := srv.AllSymbols()
	require.Contains(t, all, stray)
	assert.NotEmpty(t, all[stray])
}
