package lsp

import (
	"context"

	"go.lsp.dev/jsonrpc2"
	"go.lsp.dev/protocol"

	"github.com/jasmin-lang/jasmin-lsp/cst"
	"github.com/jasmin-lang/jasmin-lsp/depgraph"
	"github.com/jasmin-lang/jasmin-lsp/symbols"
)

func (s *Server) handleDefinition(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params protocol.DefinitionParams
	if err := unmarshalParams(req, &params); err != nil {
		return s.replyError(ctx, reply, jsonrpc2.InvalidParams, "definition: "+err.Error())
	}

	path := uriToPath(params.TextDocument.URI)
	point := toPoint(params.Position)

	entry := s.state.Graph.Load(s.state.Docs, path)
	defer closeIfNotOwned(entry)
	if entry.Tree == nil {
		return reply(ctx, nil, nil)
	}

	if literal, namespace, ok := requireLiteralAt(entry.Tree, point); ok {
		resolved := s.state.Resolver.Resolve(path, namespace, literal)
		loc := protocol.Location{
			URI: pathToURI(resolved),
			Range: protocol.Range{
				Start: protocol.Position{Line: 0, Character: 0},
				End:   protocol.Position{Line: 0, Character: 0},
			},
		}
		return reply(ctx, []protocol.Location{loc}, nil)
	}

	node, name, ok := identifierAt(entry.Tree, point)
	if !ok {
		return reply(ctx, nil, nil)
	}

	fnNode, hasFn := enclosingFunction(node)

	localSyms := symbols.Extract(entry.Tree)

	if hasFn {
		fnRange := fnNode.Range()
		if sym, ok := findByNameAndKind(localSyms, name, fnRange, symbols.KindFuncParam); ok {
			return reply(ctx, []protocol.Location{symbolLocation(path, sym)}, nil)
		}
		if sym, ok := findByNameAndKind(localSyms, name, fnRange, symbols.KindVar); ok {
			return reply(ctx, []protocol.Location{symbolLocation(path, sym)}, nil)
		}
	}

	if sym, ok := findByName(localSyms, name); ok {
		return reply(ctx, []protocol.Location{symbolLocation(path, sym)}, nil)
	}

	for _, other := range s.otherRelevantFiles(path) {
		syms, otherEntry := s.state.SymbolsInFile(other)
		closeIfNotOwned(otherEntry)
		if sym, ok := findByName(syms, name); ok {
			return reply(ctx, []protocol.Location{symbolLocation(other, sym)}, nil)
		}
	}

	return reply(ctx, nil, nil)
}

func findByNameAndKind(syms []symbols.Symbol, name string, scope cst.Range, kind symbols.Kind) (symbols.Symbol, bool) {
	for _, sym := range syms {
		if sym.Kind == kind && sym.Name == name && containsRange(scope, sym.Range) {
			return sym, true
		}
	}
	return symbols.Symbol{}, false
}

func findByName(syms []symbols.Symbol, name string) (symbols.Symbol, bool) {
	for _, sym := range syms {
		if sym.Name == name {
			return sym, true
		}
	}
	return symbols.Symbol{}, false
}

func symbolLocation(path string, sym symbols.Symbol) protocol.Location {
	return protocol.Location{
		URI:   pathToURI(path),
		Range: toProtocolRange(sym.NameRange),
	}
}

// otherRelevantFiles returns every path in the current relevant set other
// than excludePath, in the set's iteration order (closure first, then
// open-only files), for the "no scope filtering, first match wins" fallback
// search used by definition/hover.
func (s *Server) otherRelevantFiles(excludePath string) []string {
	closure, openOnly := s.state.RelevantFiles()
	var out []string
	if closure != nil {
		for _, e := range closure.Entries {
			if e.Path != excludePath {
				out = append(out, e.Path)
			}
		}
		closure.Release()
	}
	for _, p := range openOnly {
		if p != excludePath {
			out = append(out, p)
		}
	}
	return out
}

// closeIfNotOwned releases a disk-loaded dependency's tree once a handler
// is done with it; an open document's tree is left alone, its lifetime
// belongs to the document store.
func closeIfNotOwned(e depgraph.Entry) {
	if e.Tree != nil && !e.Open {
		e.Tree.Release()
	}
}
