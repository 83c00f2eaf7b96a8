package lsp

import (
	"context"

	"go.lsp.dev/jsonrpc2"
	"go.lsp.dev/protocol"

	"github.com/jasmin-lang/jasmin-lsp/cst"
)

func (s *Server) handleReferences(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params protocol.ReferenceParams
	if err := unmarshalParams(req, &params); err != nil {
		return s.replyError(ctx, reply, jsonrpc2.InvalidParams, "references: "+err.Error())
	}

	path := uriToPath(params.TextDocument.URI)
	point := toPoint(params.Position)

	entry := s.state.Graph.Load(s.state.Docs, path)
	defer closeIfNotOwned(entry)
	if entry.Tree == nil {
		return reply(ctx, nil, nil)
	}

	_, name, ok := identifierAt(entry.Tree, point)
	if !ok {
		return reply(ctx, nil, nil)
	}

	locs := s.findReferences(name, path)

	if !params.Context.IncludeDeclaration {
		if sym, symPath, ok := s.state.FindSymbol(name); ok {
			declLoc := protocol.Location{URI: pathToURI(symPath), Range: toProtocolRange(sym.NameRange)}
			locs = excludeLocation(locs, declLoc)
		}
	}

	return reply(ctx, locs, nil)
}

// excludeLocation drops the one Location matching decl (by URI and
// range) from locs - the chosen interpretation of include_declaration is
// "excludes the declaration range" when false.
func excludeLocation(locs []protocol.Location, decl protocol.Location) []protocol.Location {
	out := locs[:0:0]
	for _, l := range locs {
		if l.URI == decl.URI && l.Range == decl.Range {
			continue
		}
		out = append(out, l)
	}
	return out
}

// findReferences scans every file in the relevant set for identifier
// nodes whose text matches name, returning one Location per occurrence.
// Comments and string literals never match: identifiersByName walks every
// child but only matches nodes of the "identifier" kind, so a require path
// or a doc comment that happens to contain the same text never contributes
// a false hit.
func (s *Server) findReferences(name, currentPath string) []protocol.Location {
	var out []protocol.Location

	entry := s.state.Graph.Load(s.state.Docs, currentPath)
	if entry.Tree != nil {
		for _, r := range identifiersByName(entry.Tree, name) {
			out = append(out, protocol.Location{URI: pathToURI(currentPath), Range: toProtocolRange(r)})
		}
	}
	closeIfNotOwned(entry)

	for _, other := range s.otherRelevantFiles(currentPath) {
		oe := s.state.Graph.Load(s.state.Docs, other)
		if oe.Tree != nil {
			for _, r := range identifiersByName(oe.Tree, name) {
				out = append(out, protocol.Location{URI: pathToURI(other), Range: toProtocolRange(r)})
			}
		}
		closeIfNotOwned(oe)
	}

	return out
}

func identifiersByName(tree *cst.Tree, name string) []cst.Range {
	var out []cst.Range
	root := tree.RootNode()
	if !root.Valid() {
		return out
	}
	walkIdentifiers(root, name, &out)
	return out
}

func walkIdentifiers(n cst.Node, name string, out *[]cst.Range) {
	if n.Kind() == "identifier" {
		if n.Text() == name {
			*out = append(*out, n.Range())
		}
		return
	}
	count := n.ChildCount()
	for i := uint(0); i < count; i++ {
		walkIdentifiers(n.Child(i), name, out)
	}
}
