// Package diagnostics converts parse errors, unresolved requires, and
// constant-expression parse failures into LSP protocol.Diagnostic values.
// Which files get a fresh publishDiagnostics round is decided by the lsp
// package, not here.
//
// Grounded on the teacher's lsp/diagnostics.go publish flow: build the
// diagnostic list first, release any locks, then call the client.
package diagnostics

import (
	"os"

	"go.lsp.dev/protocol"

	"github.com/jasmin-lang/jasmin-lsp/consteval"
	"github.com/jasmin-lang/jasmin-lsp/cst"
	"github.com/jasmin-lang/jasmin-lsp/requires"
)

const source = "jasmin-lsp"

func severity(s protocol.DiagnosticSeverity) *protocol.DiagnosticSeverity { return &s }
func sourceStr() *string                                                 { s := source; return &s }

func toRange(r cst.Range) protocol.Range {
	return protocol.Range{
		Start: protocol.Position{Line: r.Start.Row, Character: r.Start.Column},
		End:   protocol.Position{Line: r.End.Row, Character: r.End.Column},
	}
}

// ParseDiagnostics walks a parsed tree's full node set and reports every
// node flagged by any of the three syntax-error checks: an explicit
// tree-sitter ERROR node, a synthesized MISSING node, or a node whose kind
// string is literally "ERROR". All three are required because a grammar
// can surface a broken parse through any of them depending on where
// recovery kicked in.
func ParseDiagnostics(tree *cst.Tree) []protocol.Diagnostic {
	var out []protocol.Diagnostic
	root := tree.RootNode()
	if !root.Valid() {
		return out
	}
	walkForErrors(root, &out)
	return out
}

func walkForErrors(n cst.Node, out *[]protocol.Diagnostic) {
	if n.IsError() || n.IsMissing() || n.Kind() == "ERROR" {
		msg := "syntax error"
		if n.IsMissing() {
			msg = "missing expected token"
		}
		*out = append(*out, protocol.Diagnostic{
			Range:    toRange(n.Range()),
			Severity: severity(protocol.DiagnosticSeverityError),
			Source:   sourceStr(),
			Message:  msg,
		})
		return
	}

	count := n.ChildCount()
	for i := uint(0); i < count; i++ {
		walkForErrors(n.Child(i), out)
	}
}

// RequireDiagnostics reports one diagnostic per require literal whose
// resolved path doesn't exist on disk (and isn't open in an editor buffer
// either - isOpen lets the caller treat an open-but-unsaved new file as
// resolved).
func RequireDiagnostics(paths []requires.Path, resolver *requires.Resolver, docPath string, isOpen func(path string) bool) []protocol.Diagnostic {
	var out []protocol.Diagnostic
	for _, p := range paths {
		resolved := resolver.Resolve(docPath, p.Namespace, p.Literal)
		if isOpen != nil && isOpen(resolved) {
			continue
		}
		if _, err := os.Stat(resolved); err == nil {
			continue
		}
		out = append(out, protocol.Diagnostic{
			Range:    toRange(p.Range),
			Severity: severity(protocol.DiagnosticSeverityError),
			Source:   sourceStr(),
			Message:  "cannot find required file \"" + p.Literal + "\"",
		})
	}
	return out
}

// ConstEvalDiagnostics reports one diagnostic per param declaration whose
// expression failed to even parse. A declaration that parsed but never
// reduced to a value (div/mod-by-zero, or a reference cycle) is left
// silently unevaluated per spec and produces no diagnostic here.
func ConstEvalDiagnostics(result consteval.Result, ranges map[string]cst.Range) []protocol.Diagnostic {
	var out []protocol.Diagnostic
	for name, err := range result.ParseErrors {
		r, ok := ranges[name]
		if !ok {
			continue
		}
		out = append(out, protocol.Diagnostic{
			Range:    toRange(r),
			Severity: severity(protocol.DiagnosticSeverityError),
			Source:   sourceStr(),
			Message:  err.Error(),
		})
	}
	return out
}
