package diagnostics

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jasmin-lang/jasmin-lsp/consteval"
	"github.com/jasmin-lang/jasmin-lsp/cst"
	"github.com/jasmin-lang/jasmin-lsp/requires"
)

func TestParseDiagnostics_ReportsSyntaxErrorNode(t *testing.T) {
	pool, err := cst.NewParserPool()
	require.NoError(t, err)

	tree, err := pool.Parse([]byte("@@@ garbage @@@\n"), nil)
	require.NoError(t, err)
	defer tree.Release()

	diags := ParseDiagnostics(tree)
	assert.NotEmpty(t, diags)
}

func TestRequireDiagnostics_FlagsMissingFile(t *testing.T) {
	dir := t.TempDir()
	docPath := filepath.Join(dir, "main.jazz")
	resolver := requires.NewResolver()

	paths := []requires.Path{{Literal: "missing.jinc"}}
	diags := RequireDiagnostics(paths, resolver, docPath, nil)
	assert.Len(t, diags, 1)
}

func TestRequireDiagnostics_SkipsExistingFile(t *testing.T) {
	dir := t.TempDir()
	docPath := filepath.Join(dir, "main.jazz")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "present.jinc"), []byte("param int N=1;\n"), 0o644))
	resolver := requires.NewResolver()

	paths := []requires.Path{{Literal: "present.jinc"}}
	diags := RequireDiagnostics(paths, resolver, docPath, nil)
	assert.Empty(t, diags)
}

func TestConstEvalDiagnostics_SkipsSilentlyUnevaluated(t *testing.T) {
	result := consteval.Evaluate([]consteval.Decl{{Name: "N", Expr: "1 / 0"}})
	diags := ConstEvalDiagnostics(result, map[string]cst.Range{})
	assert.Empty(t, diags)
}
