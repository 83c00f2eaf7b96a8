// Package docstore holds every document currently open in an editor
// buffer, each one paired with its live, incrementally-reparsed CST.
//
// Grounded on the lifecycle pattern of a tree-sitter-backed LSP document
// manager: hold a lock only across the state mutation, release it before
// anything that might call back into the client (publishing diagnostics),
// and release the previous CST only after its replacement is installed.
package docstore

import (
	"fmt"
	"sync"

	"github.com/jasmin-lang/jasmin-lsp/cst"
)

// Document is one open editor buffer.
type Document struct {
	URI     string
	Path    string
	Content []byte
	Version int32

	mu   sync.RWMutex
	tree *cst.Tree
}

// Tree returns the document's current parsed tree, retained on the
// caller's behalf. Call Release on it when done.
func (d *Document) Tree() *cst.Tree {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.tree == nil {
		return nil
	}
	return d.tree.Retain()
}

func (d *Document) snapshotVersion() int32 {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.Version
}

// Store is the document table, keyed by absolute filesystem path.
type Store struct {
	mu   sync.RWMutex
	docs map[string]*Document
	pool *cst.ParserPool
}

// New builds an empty Store backed by pool for (re)parsing.
func New(pool *cst.ParserPool) *Store {
	return &Store{docs: make(map[string]*Document), pool: pool}
}

// Open registers a newly-opened document and parses it for the first time.
func (s *Store) Open(uri, path string, content []byte, version int32) (*Document, error) {
	tree, err := s.pool.Parse(content, nil)
	if err != nil {
		return nil, fmt.Errorf("docstore: parsing %s: %w", path, err)
	}

	doc := &Document{URI: uri, Path: path, Content: content, Version: version, tree: tree}

	s.mu.Lock()
	s.docs[path] = doc
	s.mu.Unlock()

	return doc, nil
}

// Change applies a full-document replacement (this server only advertises
// TextDocumentSyncKindFull) and reparses, installing the new tree and then
// releasing the document's previous one.
func (s *Store) Change(path string, content []byte, version int32) (*Document, error) {
	s.mu.RLock()
	doc, ok := s.docs[path]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("docstore: document not open: %s", path)
	}

	old := doc.tree
	newTree, err := s.pool.Parse(content, old)
	if err != nil {
		return nil, fmt.Errorf("docstore: reparsing %s: %w", path, err)
	}

	doc.mu.Lock()
	doc.Content = content
	doc.Version = version
	doc.tree = newTree
	doc.mu.Unlock()

	if old != nil {
		old.Release()
	}

	return doc, nil
}

// Remove drops a document and releases its tree. It's a no-op if the path
// isn't open.
func (s *Store) Remove(path string) {
	s.mu.Lock()
	doc, ok := s.docs[path]
	if ok {
		delete(s.docs, path)
	}
	s.mu.Unlock()

	if ok && doc.tree != nil {
		doc.tree.Release()
	}
}

// Get returns the open document at path, if any.
func (s *Store) Get(path string) (*Document, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.docs[path]
	return doc, ok
}

// Lookup implements depgraph.OpenLookup: it hands the dependency graph a
// retained reference to an open document's tree instead of making it
// reread and reparse the file from disk.
func (s *Store) Lookup(path string) (*cst.Tree, bool) {
	s.mu.RLock()
	doc, ok := s.docs[path]
	s.mu.RUnlock()
	if !ok {
		return nil, false
	}
	tree := doc.Tree()
	if tree == nil {
		return nil, false
	}
	return tree, true
}

// All returns every currently-open document's path.
func (s *Store) All() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	paths := make([]string, 0, len(s.docs))
	for p := range s.docs {
		paths = append(paths, p)
	}
	return paths
}
