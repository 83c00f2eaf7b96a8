// Package state owns the server-wide session state: which file is the
// master (set either from .jasmin-lsp.yaml or the jasmin/setMasterFile
// notification), the open document table, and the cross-file symbol
// resolution built on top of the dependency graph.
package state

import (
	"path/filepath"
	"sync"

	"github.com/jasmin-lang/jasmin-lsp/cst"
	"github.com/jasmin-lang/jasmin-lsp/depgraph"
	"github.com/jasmin-lang/jasmin-lsp/docstore"
	"github.com/jasmin-lang/jasmin-lsp/requires"
	"github.com/jasmin-lang/jasmin-lsp/symbols"
)

// Server is the process-wide session state (C8). There is exactly one
// instance per running server process. LSP handlers reach the document
// table, dependency graph and resolver through its exported fields; the
// master-file and close-policy decisions live in the methods here.
type Server struct {
	mu            sync.RWMutex
	workspaceRoot string
	masterFile    string

	Docs     *docstore.Store
	Graph    *depgraph.Graph
	Resolver *requires.Resolver
	Pool     *cst.ParserPool
}

// New builds a Server for a given workspace root.
func New(pool *cst.ParserPool, workspaceRoot string) *Server {
	resolver := requires.NewResolver()
	return &Server{
		workspaceRoot: workspaceRoot,
		Docs:          docstore.New(pool),
		Graph:         depgraph.New(pool, resolver),
		Resolver:      resolver,
		Pool:          pool,
	}
}

// WorkspaceRoot returns the single root folder this session was opened
// against.
func (s *Server) WorkspaceRoot() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.workspaceRoot
}

// SetWorkspaceRootIfUnset records the workspace folder reported by the
// client's initialize request. The CLI constructs the Server before the
// transport has received that request, so the workspace root starts out
// empty and is backfilled here the first (and only) time initialize runs.
func (s *Server) SetWorkspaceRootIfUnset(root string) {
	if root == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.workspaceRoot != "" {
		return
	}
	s.workspaceRoot = root
}

// ResolveWorkspacePath turns a path that may be relative (to the
// workspace root) or already absolute into an absolute path, for
// configuration values like workspace/configuration's "jasmin-root".
func (s *Server) ResolveWorkspacePath(p string) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Clean(filepath.Join(s.WorkspaceRoot(), p))
}

// SetMasterFile records the file whose require-closure defines the
// "relevant file set" for workspace-wide features. It is called from
// .jasmin-lsp.yaml's `root`, from workspace/configuration's `jasmin-root`,
// and from the jasmin/setMasterFile notification - all three funnel
// through here so there is exactly one code path that can change it.
func (s *Server) SetMasterFile(absPath string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.masterFile = absPath
}

// MasterFile returns the current master file path, or "" if unset.
func (s *Server) MasterFile() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.masterFile
}

// Closure computes the master file's current require-closure. It returns
// nil if no master file is set. The caller owns the result and must call
// Release on it.
func (s *Server) Closure() *depgraph.Closure {
	master := s.MasterFile()
	if master == "" {
		return nil
	}
	return s.Graph.Compute(s.Docs, master)
}

// RelevantFiles returns every file in §4.3.1's relevant set: the master
// file's closure, unioned with every currently-open document (so an open
// buffer outside the master's reach still gets diagnostics and features).
// The caller owns the returned closure (if any) and must Release it;
// the open-only paths carry no such obligation.
func (s *Server) RelevantFiles() (closure *depgraph.Closure, openOnly []string) {
	closure = s.Closure()

	for _, p := range s.Docs.All() {
		if closure == nil || !closure.Contains(p) {
			openOnly = append(openOnly, p)
		}
	}

	return closure, openOnly
}

// ShouldRetainOnClose implements the close policy: a document being closed
// is retained (kept parsed, diagnostics republished) if it's still in the
// master file's relevant closure; otherwise it should be fully removed.
func (s *Server) ShouldRetainOnClose(path string) bool {
	closure := s.Closure()
	if closure == nil {
		return false
	}
	defer closure.Release()
	return closure.Contains(path)
}

// SymbolsInFile returns the declared symbols for one file, loading it from
// the open document table if it's a buffer or from disk otherwise. The
// returned tree, if non-nil, must be released by the caller unless it came
// from an open document (Entry.Open is true).
func (s *Server) SymbolsInFile(path string) ([]symbols.Symbol, depgraph.Entry) {
	entry := s.Graph.Load(s.Docs, path)
	if entry.Tree == nil {
		return nil, entry
	}
	return symbols.Extract(entry.Tree), entry
}

// FindSymbol searches the relevant set (the master's closure, if a master
// is set, followed by every open document outside it) for a symbol with
// the given name, returning the first match and the absolute path of the
// file that declared it. Function parameters are never matched.
func (s *Server) FindSymbol(name string) (symbols.Symbol, string, bool) {
	for _, path := range s.searchScope() {
		syms, entry := s.SymbolsInFile(path)
		closeIfOwned(entry)
		for _, sym := range syms {
			if sym.Name == name && (sym.Kind == symbols.KindFunction || sym.Kind == symbols.KindParam || sym.Kind == symbols.KindVar || sym.Kind == symbols.KindGlobal || sym.Kind == symbols.KindType) {
				return sym, path, true
			}
		}
	}
	return symbols.Symbol{}, "", false
}

// AllSymbols returns every symbol across the search scope, each paired
// with the file path it was declared in - the backing data for
// workspace/symbol.
func (s *Server) AllSymbols() map[string][]symbols.Symbol {
	out := make(map[string][]symbols.Symbol)
	for _, path := range s.searchScope() {
		syms, entry := s.SymbolsInFile(path)
		closeIfOwned(entry)
		if len(syms) > 0 {
			out[path] = syms
		}
	}
	return out
}

func (s *Server) searchScope() []string {
	closure, openOnly := s.RelevantFiles()
	var paths []string
	if closure != nil {
		for _, e := range closure.Entries {
			paths = append(paths, e.Path)
		}
		closure.Release()
	}
	paths = append(paths, openOnly...)
	return paths
}

func closeIfOwned(e depgraph.Entry) {
	if e.Tree != nil && !e.Open {
		e.Tree.Release()
	}
}
