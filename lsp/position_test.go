package lsp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.lsp.dev/protocol"

	"github.com/jasmin-lang/jasmin-lsp/cst"
)

func TestToPointAndToProtocolRange_RoundTrip(t *testing.T) {
	pos := protocol.Position{Line: 3, Character: 7}
	pt := toPoint(pos)
	assert.Equal(t, cst.Point{Row: 3, Column: 7}, pt)

	r := cst.Range{Start: cst.Point{Row: 1, Column: 2}, End: cst.Point{Row: 1, Column: 5}}
	pr := toProtocolRange(r)
	assert.Equal(t, protocol.Range{
		Start: protocol.Position{Line: 1, Character: 2},
		End:   protocol.Position{Line: 1, Character: 5},
	}, pr)
}

func TestIdentifierAt_MatchesOnlyIdentifierNodes(t *testing.T) {
	tree := parse(t, "param int N = 1;\n")

	// The cursor over "N" should resolve to an identifier.
	_, name, ok := identifierAt(tree, cst.Point{Row: 0, Column: 10})
	assert.True(t, ok)
	assert.Equal(t, "N", name)

	// The cursor over the "param" keyword is not an identifier node.
	_, _, ok = identifierAt(tree, cst.Point{Row: 0, Column: 2})
	assert.False(t, ok)
}

func TestWordAt_ExtractsKeywordAndIdentifierByteScan(t *testing.T) {
	tree := parse(t, "param int N = 1;\n")

	word, ok := wordAt(tree, cst.Point{Row: 0, Column: 2})
	assert.True(t, ok)
	assert.Equal(t, "param", word)

	word, ok = wordAt(tree, cst.Point{Row: 0, Column: 10})
	assert.True(t, ok)
	assert.Equal(t, "N", word)
}

func TestWordAt_NoWordAtWhitespaceOrPunctuation(t *testing.T) {
	tree := parse(t, "param int N = 1;\n")

	_, ok := wordAt(tree, cst.Point{Row: 0, Column: 16})
	assert.False(t, ok)
}

func TestWordAt_OutOfRangeRowIsFalse(t *testing.T) {
	tree := parse(t, "param int N = 1;\n")
	_, ok := wordAt(tree, cst.Point{Row: 50, Column: 0})
	assert.False(t, ok)
}

func TestRequireLiteralAt_UnquotesOnlyInsideRequireDirective(t *testing.T) {
	tree := parse(t, `require "dep.jinc";`+"\n")

	// column inside the quoted literal text
	lit, namespace, ok := requireLiteralAt(tree, cst.Point{Row: 0, Column: 10})
	assert.True(t, ok)
	assert.Equal(t, "dep.jinc", lit)
	assert.Equal(t, "", namespace)
}

func TestRequireLiteralAt_CarriesNamespaceForFromForm(t *testing.T) {
	tree := parse(t, `from Common require "hashing.jinc";`+"\n")

	lit, namespace, ok := requireLiteralAt(tree, cst.Point{Row: 0, Column: 25})
	assert.True(t, ok)
	assert.Equal(t, "hashing.jinc", lit)
	assert.Equal(t, "Common", namespace)
}

func TestRequireLiteralAt_FalseOutsideRequireDirective(t *testing.T) {
	tree := parse(t, "param int N = 1;\n")
	_, _, ok := requireLiteralAt(tree, cst.Point{Row: 0, Column: 10})
	assert.False(t, ok)
}

func TestUnquoteLiteral(t *testing.T) {
	assert.Equal(t, "dep.jinc", unquoteLiteral(`"dep.jinc"`))
	assert.Equal(t, "bare", unquoteLiteral("bare"))
}

func TestContainsRange(t *testing.T) {
	outer := cst.Range{Start: cst.Point{Row: 0, Column: 0}, End: cst.Point{Row: 5, Column: 0}}
	inner := cst.Range{Start: cst.Point{Row: 1, Column: 0}, End: cst.Point{Row: 2, Column: 0}}
	assert.True(t, containsRange(outer, inner))

	outside := cst.Range{Start: cst.Point{Row: 6, Column: 0}, End: cst.Point{Row: 7, Column: 0}}
	assert.False(t, containsRange(outer, outside))
}

func TestBefore(t *testing.T) {
	a := cst.Point{Row: 1, Column: 5}
	b := cst.Point{Row: 2, Column: 0}
	assert.True(t, before(a, b))
	assert.False(t, before(b, a))

	same := cst.Point{Row: 1, Column: 5}
	assert.False(t, before(a, same))
}

func TestEnclosingFunction_FindsNearestFunctionDefinition(t *testing.T) {
	tree := parse(t, "fn sum(reg u64 a, reg u64 b) -> reg u64 {\n  return a;\n}\n")

	node, name, ok := identifierAt(tree, cst.Point{Row: 1, Column: 9})
	assert.True(t, ok)
	assert.Equal(t, "a", name)

	fnNode, found := enclosingFunction(node)
	assert.True(t, found)
	assert.Equal(t, "function_definition", fnNode.Kind())
}

func TestEnclosingFunction_FalseAtTopLevel(t *testing.T) {
	tree := parse(t, "param int N = 1;\n")
	node, _, ok := identifierAt(tree, cst.Point{Row: 0, Column: 10})
	assert.True(t, ok)

	_, found := enclosingFunction(node)
	assert.False(t, found)
}
