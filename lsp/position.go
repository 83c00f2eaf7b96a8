package lsp

import (
	"strings"

	"go.lsp.dev/protocol"

	"github.com/jasmin-lang/jasmin-lsp/cst"
)

func toPoint(pos protocol.Position) cst.Point {
	return cst.Point{Row: pos.Line, Column: pos.Character}
}

func toProtocolRange(r cst.Range) protocol.Range {
	return protocol.Range{
		Start: protocol.Position{Line: r.Start.Row, Character: r.Start.Column},
		End:   protocol.Position{Line: r.End.Row, Character: r.End.Column},
	}
}

// identifierAt returns the innermost identifier-bearing node at a cursor
// position, and its text. Jasmin's grammar surfaces every name reference
// (a declaration, a use, a type name) as an "identifier" node, so a single
// node-kind check is enough; whitespace, punctuation, and the rest of the
// grammar's anonymous tokens never match.
func identifierAt(tree *cst.Tree, point cst.Point) (cst.Node, string, bool) {
	n := tree.NodeAt(point)
	if !n.Valid() {
		return cst.Node{}, "", false
	}
	if n.Kind() != "identifier" {
		return cst.Node{}, "", false
	}
	return n, n.Text(), true
}

// wordAt extracts the maximal run of identifier characters touching point,
// directly off the source bytes rather than the CST: Jasmin's keywords are
// anonymous tokens with no named node of their own, so NodeAt can't be
// used to recognize them the way it recognizes an "identifier" node.
func wordAt(tree *cst.Tree, point cst.Point) (string, bool) {
	lines := strings.Split(string(tree.Source()), "\n")
	if int(point.Row) >= len(lines) {
		return "", false
	}
	line := lines[point.Row]
	col := int(point.Column)
	if col > len(line) {
		col = len(line)
	}

	isWord := func(b byte) bool {
		return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
	}

	start := col
	for start > 0 && isWord(line[start-1]) {
		start--
	}
	end := col
	for end < len(line) && isWord(line[end]) {
		end++
	}
	if start == end {
		return "", false
	}
	return line[start:end], true
}

// requireLiteralAt reports whether point falls inside the string literal
// of a require directive, and if so, the unquoted literal text and, for a
// `from NAMESPACE require "F"` directive, the namespace identifier ("" for
// the plain form).
func requireLiteralAt(tree *cst.Tree, point cst.Point) (literal, namespace string, ok bool) {
	n := tree.NodeAt(point)
	if !n.Valid() || n.Kind() != "string_literal" {
		return "", "", false
	}
	parent := n.Parent()
	if !parent.Valid() || parent.Kind() != "require_directive" {
		return "", "", false
	}
	if ns := parent.ChildByFieldName("namespace"); ns.Valid() {
		namespace = ns.Text()
	}
	return unquoteLiteral(n.Text()), namespace, true
}

func unquoteLiteral(s string) string {
	if len(s) >= 2 && strings.HasPrefix(s, `"`) && strings.HasSuffix(s, `"`) {
		return s[1 : len(s)-1]
	}
	return s
}

// enclosingFunction walks a node's ancestors to find the nearest
// function_definition, returning that node (used to scope
// textDocument/definition's Parameter/Variable priority to "defined in
// the containing function").
func enclosingFunction(n cst.Node) (cst.Node, bool) {
	for p := n.Parent(); p.Valid(); p = p.Parent() {
		if p.Kind() == "function_definition" {
			return p, true
		}
	}
	return cst.Node{}, false
}

// containsRange reports whether inner falls within outer (inclusive of
// outer's own bounds), used to test "declared inside the containing
// function" from a Symbol's Range against the function node's Range.
func containsRange(outer, inner cst.Range) bool {
	if before(inner.Start, outer.Start) || before(outer.End, inner.End) {
		return false
	}
	return true
}

func before(a, b cst.Point) bool {
	if a.Row != b.Row {
		return a.Row < b.Row
	}
	return a.Column < b.Column
}
