package lsp

import (
	"context"

	"go.lsp.dev/protocol"

	"github.com/jasmin-lang/jasmin-lsp/consteval"
	"github.com/jasmin-lang/jasmin-lsp/cst"
	"github.com/jasmin-lang/jasmin-lsp/diagnostics"
)

// publishAllRelevant recomputes and republishes diagnostics for every
// currently open file whose union with the relevant file set is
// non-empty - which, since every open file is already unioned into
// RelevantFiles by construction, means every open file, full stop. Files
// that exist only on disk are never sent a publishDiagnostics
// notification, per the C10 publish policy: only open files receive one.
func (s *Server) publishAllRelevant(ctx context.Context) {
	s.mu.RLock()
	client := s.client
	s.mu.RUnlock()
	if client == nil {
		return
	}

	for _, path := range s.state.Docs.All() {
		s.publishFile(ctx, client, path)
	}
}

// publishFile computes and sends one file's diagnostics. It loads the
// file fresh (from the open doc table if it's a buffer, from disk
// otherwise) rather than reusing the relevant-set traversal's entries, so
// a single file can be republished in isolation (didClose's retained
// file, and each open file in publishAllRelevant) without recomputing the
// whole closure.
func (s *Server) publishFile(ctx context.Context, client protocol.Client, path string) {
	entry := s.state.Graph.Load(s.state.Docs, path)
	defer func() {
		if entry.Tree != nil && !entry.Open {
			entry.Tree.Release()
		}
	}()

	var diags []protocol.Diagnostic
	if entry.Err != nil || entry.Tree == nil {
		_ = client.PublishDiagnostics(ctx, &protocol.PublishDiagnosticsParams{
			URI:         pathToURI(path),
			Diagnostics: diags,
		})
		return
	}

	// §3/§7: only Error-severity syntax diagnostics are ever published.
	// Unresolved requires and failed constant evaluations are real
	// conditions (diagnostics.RequireDiagnostics and
	// diagnostics.ConstEvalDiagnostics both still exist and are exercised
	// by their own package tests) but per the error-handling design they
	// degrade silently - a missing require or an unevaluated param never
	// propagates to the editor as a problem marker.
	diags = append(diags, diagnostics.ParseDiagnostics(entry.Tree)...)

	_ = client.PublishDiagnostics(ctx, &protocol.PublishDiagnosticsParams{
		URI:         pathToURI(path),
		Diagnostics: diags,
	})
}

// constDecls walks every top-level param_declaration and pulls out each
// declarator's name, initializer expression text, and range - the raw
// material consteval.Evaluate and diagnostics.ConstEvalDiagnostics need.
// symbols.Extract can't be reused here: its Symbol.Detail holds the
// declared type, not the "= EXPR" initializer.
func constDecls(tree *cst.Tree) ([]consteval.Decl, map[string]cst.Range) {
	var decls []consteval.Decl
	ranges := make(map[string]cst.Range)

	root := tree.RootNode()
	if !root.Valid() {
		return decls, ranges
	}

	n := root.ChildCount()
	for i := uint(0); i < n; i++ {
		decl := root.Child(i)
		if !decl.Valid() || decl.Kind() != "param_declaration" {
			continue
		}

		dc := decl.ChildCount()
		for j := uint(0); j < dc; j++ {
			c := decl.Child(j)
			if !c.Valid() || c.Kind() != "declarator" {
				continue
			}
			name := c.ChildByFieldName("name")
			value := c.ChildByFieldName("value")
			if !name.Valid() || !value.Valid() {
				continue
			}
			decls = append(decls, consteval.Decl{Name: name.Text(), Expr: value.Text()})
			ranges[name.Text()] = c.Range()
		}
	}

	return decls, ranges
}
