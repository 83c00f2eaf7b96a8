// Package depgraph computes the transitive closure of `require`d files
// reachable from a root document, following the resolution rules in the
// requires package and sourcing bytes from whichever of an open editor
// buffer or disk currently holds the file.
package depgraph

import (
	"github.com/jasmin-lang/jasmin-lsp/cst"
	"github.com/jasmin-lang/jasmin-lsp/requires"
	"github.com/jasmin-lang/jasmin-lsp/walker"
)

// MaxFileSize bounds how large a single disk-loaded dependency is allowed
// to be; see walker.ReadFile.
const MaxFileSize = 32 << 20

// OpenLookup is satisfied by the document store: it lets the graph reuse
// an already-parsed, already-retained Tree for a file that's open in an
// editor buffer instead of rereading and reparsing it from disk.
type OpenLookup interface {
	// Lookup returns the open document's tree for absPath, retained on the
	// caller's behalf (the caller must still Release it when done), or
	// false if no open document has that path.
	Lookup(absPath string) (*cst.Tree, bool)
}

// Entry is one file reachable from a closure's root.
type Entry struct {
	Path string
	Tree *cst.Tree
	// Open is true when Tree came from an open document; the graph did not
	// retain it beyond what OpenLookup already did, so Closure.Release
	// will not release it again.
	Open bool
	// Err holds a read or parse failure for this file; Tree is nil when
	// Err is set.
	Err error
}

// Closure is the transitive require-reachable file set computed from one
// root file, in BFS discovery order.
type Closure struct {
	Root    string
	Entries []Entry
	byPath  map[string]int
}

// Contains reports whether path is part of this closure.
func (c *Closure) Contains(path string) bool {
	_, ok := c.byPath[path]
	return ok
}

// Release drops this closure's retained disk-loaded trees. Open-document
// entries are left untouched: their lifetime belongs to the document
// store, not to this request-scoped traversal.
func (c *Closure) Release() {
	for _, e := range c.Entries {
		if e.Tree != nil && !e.Open {
			e.Tree.Release()
		}
	}
}

// Graph computes closures for a fixed parser/resolver pair. It holds no
// per-request state itself; every Compute call is independent and returns
// a Closure the caller owns and must Release.
type Graph struct {
	pool     *cst.ParserPool
	resolver *requires.Resolver
}

// New builds a Graph.
func New(pool *cst.ParserPool, resolver *requires.Resolver) *Graph {
	return &Graph{pool: pool, resolver: resolver}
}

// Compute performs a breadth-first traversal of rootPath's require graph.
// A file that fails to resolve, read, or parse still gets an Entry (with
// Err set) so the caller can turn that into a diagnostic on the requiring
// file, but traversal does not follow edges out of it.
func (g *Graph) Compute(open OpenLookup, rootPath string) *Closure {
	c := &Closure{Root: rootPath, byPath: make(map[string]int)}

	queue := []string{rootPath}
	for len(queue) > 0 {
		path := queue[0]
		queue = queue[1:]

		if _, seen := c.byPath[path]; seen {
			continue
		}

		entry := g.Load(open, path)
		c.byPath[path] = len(c.Entries)
		c.Entries = append(c.Entries, entry)

		if entry.Tree == nil {
			continue
		}

		for _, req := range requires.Extract(entry.Tree) {
			target := g.resolver.Resolve(path, req.Namespace, req.Literal)
			if _, seen := c.byPath[target]; !seen {
				queue = append(queue, target)
			}
		}
	}

	return c
}

// Load fetches a single file's Entry - from the open lookup if it's an
// editor buffer, otherwise from disk - without following its requires.
// Exposed so callers that only need one file's symbols (hover, a single
// didOpen) don't have to run a full closure traversal.
func (g *Graph) Load(open OpenLookup, path string) Entry {
	if open != nil {
		if tree, ok := open.Lookup(path); ok {
			return Entry{Path: path, Tree: tree, Open: true}
		}
	}

	data, err := walker.ReadFile(path, MaxFileSize)
	if err != nil {
		return Entry{Path: path, Err: err}
	}

	tree, err := g.pool.Parse(data, nil)
	if err != nil {
		return Entry{Path: path, Err: err}
	}

	return Entry{Path: path, Tree: tree}
}
