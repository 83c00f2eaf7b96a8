package lsp

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jasmin-lang/jasmin-lsp/cst"
	"github.com/jasmin-lang/jasmin-lsp/state"
)

// parse builds a standalone Tree for tests that only need one in-memory
// source string, not a full on-disk relevant set.
func parse(t *testing.T, src string) *cst.Tree {
	t.Helper()
	pool, err := cst.NewParserPool()
	require.NoError(t, err)
	tree, err := pool.Parse([]byte(src), nil)
	require.NoError(t, err)
	t.Cleanup(tree.Release)
	return tree
}

// newTestServer builds a Server backed by a real temp-directory workspace,
// the same fixture shape state's own tests use.
func newTestServer(t *testing.T) (*Server, *state.Server, string) {
	t.Helper()
	pool, err := cst.NewParserPool()
	require.NoError(t, err)
	dir := t.TempDir()
	st := state.New(pool, dir)
	return NewServer(st, zap.NewNop()), st, dir
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}
