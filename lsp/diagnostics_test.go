package lsp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstDecls_ExtractsNameExprAndRange(t *testing.T) {
	tree := parse(t, "param int A = 2;\nparam int B = A + 3;\n")

	decls, ranges := constDecls(tree)
	require.Len(t, decls, 2)

	byName := make(map[string]string, len(decls))
	for _, d := range decls {
		byName[d.Name] = d.Expr
	}
	assert.Equal(t, "2", byName["A"])
	assert.Equal(t, "A + 3", byName["B"])

	require.Contains(t, ranges, "A")
	require.Contains(t, ranges, "B")
}

func TestConstDecls_EmptyWhenNoParamDeclarations(t *testing.T) {
	tree := parse(t, "fn f() -> reg u64 {\n  return 1;\n}\n")
	decls, ranges := constDecls(tree)
	assert.Empty(t, decls)
	assert.Empty(t, ranges)
}
