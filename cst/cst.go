// Package cst wraps the tree-sitter concrete syntax tree for a single Jasmin
// source file and gives it reference-counted ownership so the same parsed
// tree can be shared between an open editor buffer and the request-scoped
// dependency traversal that reads the same file off disk.
package cst

import (
	"fmt"
	"sync"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_jasmin "github.com/tree-sitter-grammars/tree-sitter-jasmin/bindings/go"
)

// Point is a zero-based (row, column) position addressed in UTF-8 bytes,
// matching tree-sitter's own coordinate system.
type Point struct {
	Row    uint32
	Column uint32
}

// Range is a half-open [Start, End) span.
type Range struct {
	Start Point
	End   Point
}

func fromTSPoint(p tree_sitter.Point) Point {
	return Point{Row: p.Row, Column: p.Column}
}

// Node is a handle into a Tree's parsed structure. It stays valid for as
// long as the owning Tree has not been released to zero refcount; callers
// that hold a Node across a suspension point must hold a Retain on the Tree.
type Node struct {
	raw   *tree_sitter.Node
	owner *Tree
}

// IsError reports whether the node is tree-sitter's generic ERROR node.
func (n Node) IsError() bool {
	if n.raw == nil {
		return false
	}
	return n.raw.IsError()
}

// IsMissing reports whether the node was synthesized by error recovery.
func (n Node) IsMissing() bool {
	if n.raw == nil {
		return false
	}
	return n.raw.IsMissing()
}

// Kind returns the grammar's node kind name (e.g. "function_definition").
func (n Node) Kind() string {
	if n.raw == nil {
		return ""
	}
	return n.raw.Kind()
}

// IsNamed reports whether the node corresponds to a named grammar rule
// rather than an anonymous token (punctuation, keywords).
func (n Node) IsNamed() bool {
	if n.raw == nil {
		return false
	}
	return n.raw.IsNamed()
}

// StartPosition returns the node's start point.
func (n Node) StartPosition() Point {
	if n.raw == nil {
		return Point{}
	}
	return fromTSPoint(n.raw.StartPosition())
}

// EndPosition returns the node's end point.
func (n Node) EndPosition() Point {
	if n.raw == nil {
		return Point{}
	}
	return fromTSPoint(n.raw.EndPosition())
}

// Range returns the node's [start, end) span.
func (n Node) Range() Range {
	return Range{Start: n.StartPosition(), End: n.EndPosition()}
}

// ChildCount returns the number of children, named and anonymous.
func (n Node) ChildCount() uint {
	if n.raw == nil {
		return 0
	}
	return uint(n.raw.ChildCount())
}

// Child returns the i-th child, or the zero Node if out of range.
func (n Node) Child(i uint) Node {
	if n.raw == nil {
		return Node{}
	}
	c := n.raw.Child(uint(i))
	if c == nil {
		return Node{}
	}
	return Node{raw: c, owner: n.owner}
}

// NamedChildCount returns the number of named children.
func (n Node) NamedChildCount() uint {
	if n.raw == nil {
		return 0
	}
	return uint(n.raw.NamedChildCount())
}

// NamedChild returns the i-th named child, or the zero Node if out of range.
func (n Node) NamedChild(i uint) Node {
	if n.raw == nil {
		return Node{}
	}
	c := n.raw.NamedChild(uint(i))
	if c == nil {
		return Node{}
	}
	return Node{raw: c, owner: n.owner}
}

// ChildByFieldName returns the child bound to the given grammar field, or
// the zero Node (check with Valid()) if the field isn't present.
func (n Node) ChildByFieldName(name string) Node {
	if n.raw == nil {
		return Node{}
	}
	c := n.raw.ChildByFieldName(name)
	if c == nil {
		return Node{}
	}
	return Node{raw: c, owner: n.owner}
}

// Parent returns the node's parent, or the zero Node at the root.
func (n Node) Parent() Node {
	if n.raw == nil {
		return Node{}
	}
	p := n.raw.Parent()
	if p == nil {
		return Node{}
	}
	return Node{raw: p, owner: n.owner}
}

// Valid reports whether this Node refers to an actual tree-sitter node.
func (n Node) Valid() bool {
	return n.raw != nil
}

// Text returns the node's source text, sliced out of the owning Tree's
// source buffer by byte offset.
func (n Node) Text() string {
	if n.raw == nil || n.owner == nil {
		return ""
	}
	start := n.raw.StartByte()
	end := n.raw.EndByte()
	src := n.owner.Source()
	if int(end) > len(src) || start > end {
		return ""
	}
	return string(src[start:end])
}

// Tree is a reference-counted handle around a parsed tree-sitter tree plus
// the source bytes it was parsed from. The same *Tree can be retained by
// multiple owners (an open Document and one or more dependency-graph
// closures); the underlying tree-sitter memory is released only once every
// retainer has released its handle.
type Tree struct {
	mu     sync.Mutex
	refs   int
	raw    *tree_sitter.Tree
	source []byte
	closed bool
}

func newTree(raw *tree_sitter.Tree, source []byte) *Tree {
	return &Tree{raw: raw, source: source, refs: 1}
}

// Retain increments the refcount and returns the same Tree, so callers can
// write `dep := cst.Retain()` at the point they start depending on it.
func (t *Tree) Retain() *Tree {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		panic("cst: Retain called on a released Tree")
	}
	t.refs++
	return t
}

// Release decrements the refcount, freeing the underlying tree-sitter tree
// once no owner remains. Release is idempotent-safe only for the exact
// number of prior Retain/construction calls; calling it more times than
// that is a programming error and will panic rather than double-free.
func (t *Tree) Release() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		panic("cst: Release called on an already-released Tree")
	}
	t.refs--
	if t.refs <= 0 {
		t.raw.Close()
		t.raw = nil
		t.closed = true
	}
}

// Closed reports whether the tree has been fully released.
func (t *Tree) Closed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.closed
}

// Source returns the byte slice the tree was parsed from.
func (t *Tree) Source() []byte {
	return t.source
}

// RootNode returns the tree's root node.
func (t *Tree) RootNode() Node {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return Node{}
	}
	root := t.raw.RootNode()
	if root == nil {
		return Node{}
	}
	return Node{raw: root, owner: t}
}

// HasError reports whether the root node's subtree contains any ERROR or
// MISSING nodes, mirroring tree-sitter's own HasError but routed through
// our wrapper so callers never touch the raw tree directly.
func (t *Tree) HasError() bool {
	root := t.RootNode()
	if !root.Valid() {
		return false
	}
	return root.raw.HasError()
}

// NamedDescendantForPointRange returns the smallest named node spanning the
// given point range, used to answer hover/definition/reference queries at a
// cursor position.
func (t *Tree) NamedDescendantForPointRange(start, end Point) Node {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return Node{}
	}
	root := t.raw.RootNode()
	if root == nil {
		return Node{}
	}
	d := root.NamedDescendantForPointRange(
		tree_sitter.Point{Row: start.Row, Column: start.Column},
		tree_sitter.Point{Row: end.Row, Column: end.Column},
	)
	if d == nil {
		return Node{}
	}
	return Node{raw: d, owner: t}
}

// NodeAt returns the smallest named node at a single point (a zero-width
// range at that point).
func (t *Tree) NodeAt(p Point) Node {
	return t.NamedDescendantForPointRange(p, p)
}

// ParserPool owns the single tree-sitter parser configured for the Jasmin
// grammar plus the compiled structural queries from queries.go (require
// strings and top-level declaration shapes). Jasmin is the only language this server
// ever parses, so unlike a multi-language tool there is exactly one parser
// and one language, kept behind a mutex because *tree_sitter.Parser is not
// safe for concurrent Parse calls.
type ParserPool struct {
	mu       sync.Mutex
	parser   *tree_sitter.Parser
	language *tree_sitter.Language
	queries  map[string]*tree_sitter.Query
}

// NewParserPool builds the pool, compiling the grammar binding and every
// query in structuralQueries.
func NewParserPool() (*ParserPool, error) {
	parser := tree_sitter.NewParser()
	language := tree_sitter.NewLanguage(tree_sitter_jasmin.Language())
	if err := parser.SetLanguage(language); err != nil {
		return nil, fmt.Errorf("cst: configuring jasmin grammar: %w", err)
	}

	pool := &ParserPool{
		parser:   parser,
		language: language,
		queries:  make(map[string]*tree_sitter.Query),
	}

	for name, src := range structuralQueries {
		q, err := tree_sitter.NewQuery(language, src)
		if err != nil {
			return nil, fmt.Errorf("cst: compiling %s query: %w", name, err)
		}
		pool.queries[name] = q
	}

	return pool, nil
}

// Parse parses src into a fresh Tree. old, if non-nil, is used by
// tree-sitter as the basis for incremental reparsing; its retained refcount
// is untouched by this call, the caller remains responsible for releasing
// whichever of old/new it no longer needs.
func (p *ParserPool) Parse(src []byte, old *Tree) (*Tree, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	var oldRaw *tree_sitter.Tree
	if old != nil {
		old.mu.Lock()
		oldRaw = old.raw
		old.mu.Unlock()
	}

	raw := p.parser.Parse(src, oldRaw)
	if raw == nil {
		return nil, fmt.Errorf("cst: parser returned no tree")
	}

	return newTree(raw, src), nil
}

// Query returns a compiled structural query by name (see queries.go), or
// nil if no such query was registered.
func (p *ParserPool) Query(name string) *tree_sitter.Query {
	return p.queries[name]
}

// Language exposes the configured tree-sitter language, for callers (query
// cursors) that need it directly.
func (p *ParserPool) Language() *tree_sitter.Language {
	return p.language
}

// NewQueryCursor is a thin pass-through so callers stay inside this package
// for every tree-sitter type they touch.
func NewQueryCursor() *tree_sitter.QueryCursor {
	return tree_sitter.NewQueryCursor()
}
